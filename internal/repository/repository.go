// Пакет repository — слой доступа к метаданным записей в SQLite.
// Все запросы — чистый SQL через database/sql, без ORM.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Ошибки слоя репозиториев.
var (
	// ErrNotFound — запись не найдена.
	ErrNotFound = errors.New("запись не найдена")
	// ErrWrite — ошибка записи в хранилище метаданных (I/O или constraint).
	ErrWrite = errors.New("ошибка записи метаданных")
	// ErrRead — ошибка чтения из хранилища метаданных.
	ErrRead = errors.New("ошибка чтения метаданных")
)

// DBTX — интерфейс для выполнения SQL-запросов.
// Реализуется как *sql.DB, так и *sql.Tx, что позволяет
// использовать репозитории как внутри, так и вне транзакций.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Форматы createdAt: текущий (миллисекунды) и datetime('now') старых баз.
var storeTimeLayouts = []string{
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
}

// parseStoreTime разбирает createdAt, записанный SQLite в локальном времени.
func parseStoreTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range storeTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("некорректное значение createdAt: %q", s)
}
