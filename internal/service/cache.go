// cache.go — LRU-кэш метаданных записей с TTL.
// Обёртка над hashicorp/golang-lru/v2/expirable; промахи объединяются
// через singleflight, чтобы параллельные запросы одного id шли в SQLite один раз.
package service

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"

	"github.com/bigkaa/recstore/internal/domain/model"
	"github.com/bigkaa/recstore/internal/repository"
)

// Prometheus-метрики кэша.
var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rs_cache_hits_total",
		Help: "Общее количество попаданий в LRU-кэш метаданных записей.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rs_cache_misses_total",
		Help: "Общее количество промахов LRU-кэша метаданных записей.",
	})
)

// RecordingCache — кэш Recording по id поверх репозитория.
// Recording неизменяем, поэтому инвалидация нужна только при удалении.
// expirable.LRU запускает горутину очистки, которая живёт до завершения процесса:
// кэш создаётся один раз в main и передаётся сервисам, а не на каждый запрос.
type RecordingCache struct {
	repo  repository.RecordingRepository
	cache *expirable.LRU[int64, *model.Recording]
	group singleflight.Group
	// gen увеличивается при каждой инвалидации; загрузка, начатая до неё,
	// не кладёт результат в кэш
	gen atomic.Uint64
}

// NewRecordingCache создаёт кэш с указанным максимальным размером и TTL.
// maxSize <= 0 отключает кэширование: каждый Get идёт в репозиторий.
func NewRecordingCache(repo repository.RecordingRepository, maxSize int, ttl time.Duration) *RecordingCache {
	c := &RecordingCache{repo: repo}
	if maxSize > 0 {
		c.cache = expirable.NewLRU[int64, *model.Recording](maxSize, nil, ttl)
	}
	return c
}

// Get возвращает запись по id из кэша или репозитория.
// Ошибки репозитория (включая repository.ErrNotFound) возвращаются как есть
// и не кэшируются.
func (c *RecordingCache) Get(ctx context.Context, id int64) (*model.Recording, error) {
	if c.cache != nil {
		if rec, ok := c.cache.Get(id); ok {
			cacheHitsTotal.Inc()
			return rec, nil
		}
		cacheMissesTotal.Inc()
	}

	gen := c.gen.Load()
	ch := c.group.DoChan(strconv.FormatInt(id, 10), func() (any, error) {
		// Загрузка не должна прерываться отменой запроса одного из ожидающих
		rec, err := c.repo.GetByID(context.WithoutCancel(ctx), id)
		if err != nil {
			return nil, err
		}
		if c.cache != nil && c.gen.Load() == gen {
			c.cache.Add(id, rec)
		}
		return rec, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*model.Recording), nil
	}
}

// Invalidate удаляет запись из кэша.
func (c *RecordingCache) Invalidate(id int64) {
	c.gen.Add(1)
	c.group.Forget(strconv.FormatInt(id, 10))
	if c.cache != nil {
		c.cache.Remove(id)
	}
}

// Len возвращает количество записей в кэше.
func (c *RecordingCache) Len() int {
	if c.cache == nil {
		return 0
	}
	return c.cache.Len()
}
