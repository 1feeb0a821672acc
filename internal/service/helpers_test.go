package service

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bigkaa/recstore/internal/domain/model"
	"github.com/bigkaa/recstore/internal/repository"
)

// testLogger возвращает логгер, подавляющий вывод в тестах.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeRepo — in-memory реализация RecordingRepository для тестов сервисов.
type fakeRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*model.Recording

	// insertErr / readErr — принудительные ошибки
	insertErr error
	readErr   error
	// getCalls — количество вызовов GetByID
	getCalls atomic.Int64
	// getGate — если задан, GetByID ждёт закрытия канала
	getGate chan struct{}
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: make(map[int64]*model.Recording)}
}

func (f *fakeRepo) Insert(_ context.Context, filename, filepath string, filesize int64) (*model.Recording, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.nextID++
	rec := &model.Recording{
		ID:        f.nextID,
		Filename:  filename,
		Filepath:  filepath,
		Filesize:  filesize,
		CreatedAt: time.Now().Add(time.Duration(f.nextID) * time.Millisecond),
	}
	f.rows[rec.ID] = rec
	return rec, nil
}

func (f *fakeRepo) ListAll(_ context.Context) ([]*model.Recording, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	list := make([]*model.Recording, 0, len(f.rows))
	for _, rec := range f.rows {
		list = append(list, rec)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return list, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id int64) (*model.Recording, error) {
	f.getCalls.Add(1)
	if f.getGate != nil {
		<-f.getGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	rec, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return rec, nil
}

func (f *fakeRepo) Delete(_ context.Context, id int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return 0, nil
	}
	delete(f.rows, id)
	return 1, nil
}

func (f *fakeRepo) Stats(_ context.Context) (int64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total int64
	for _, rec := range f.rows {
		total += rec.Filesize
	}
	return int64(len(f.rows)), total, nil
}

// count возвращает количество строк.
func (f *fakeRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

// put добавляет строку напрямую, минуя Insert.
func (f *fakeRepo) put(rec *model.Recording) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[rec.ID] = rec
	if rec.ID > f.nextID {
		f.nextID = rec.ID
	}
}

var _ repository.RecordingRepository = (*fakeRepo)(nil)
