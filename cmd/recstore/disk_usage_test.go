package main

import "testing"

func TestStatfsUsage(t *testing.T) {
	total, used, available, err := statfsUsage(t.TempDir())
	if err != nil {
		t.Fatalf("ошибка statfs: %v", err)
	}
	if total <= 0 {
		t.Errorf("total должен быть положительным, получено %d", total)
	}
	if used+available != total {
		t.Errorf("used + available != total: %d + %d != %d", used, available, total)
	}
}

func TestStatfsUsage_MissingDir(t *testing.T) {
	if _, _, _, err := statfsUsage("/nonexistent/recstore"); err == nil {
		t.Error("ожидалась ошибка для несуществующей директории")
	}
}

func TestDiskUsageFn(t *testing.T) {
	fn := diskUsageFn(t.TempDir())
	if _, _, _, err := fn(); err != nil {
		t.Fatalf("ошибка: %v", err)
	}
}
