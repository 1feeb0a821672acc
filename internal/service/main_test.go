package service

import (
	"testing"

	"go.uber.org/goleak"
)

// lruJanitor — фоновая горутина expirable.LRU, очищающая просроченные записи.
// Живёт до завершения процесса, остановить её нельзя.
const lruJanitor = "github.com/hashicorp/golang-lru/v2/expirable.NewLRU[...].func1"

// leakOptions — общие опции проверки утечек горутин для тестов пакета.
func leakOptions(extra ...goleak.Option) []goleak.Option {
	return append([]goleak.Option{goleak.IgnoreTopFunction(lruJanitor)}, extra...)
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, leakOptions()...)
}
