package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bigkaa/recstore/internal/domain/model"
)

// RecordingRepository — интерфейс CRUD для таблицы recordings.
type RecordingRepository interface {
	// Insert создаёт строку; id и createdAt назначает хранилище.
	Insert(ctx context.Context, filename, filepath string, filesize int64) (*model.Recording, error)
	// ListAll возвращает все записи, новые первыми.
	ListAll(ctx context.Context) ([]*model.Recording, error)
	// GetByID возвращает запись по id или ErrNotFound.
	GetByID(ctx context.Context, id int64) (*model.Recording, error)
	// Delete удаляет строку и возвращает количество удалённых строк (0 или 1).
	Delete(ctx context.Context, id int64) (int64, error)
	// Stats возвращает количество записей и суммарный размер blob-файлов.
	Stats(ctx context.Context) (count int64, totalBytes int64, err error)
}

// recordingRepo — реализация RecordingRepository.
type recordingRepo struct {
	db DBTX
}

// NewRecordingRepository создаёт репозиторий записей.
func NewRecordingRepository(db DBTX) RecordingRepository {
	return &recordingRepo{db: db}
}

// CAST убирает decltype DATETIME: драйвер отдаёт строку как есть,
// разбор локального времени выполняет parseStoreTime.
const recordingColumns = `id, filename, filepath, filesize, CAST(createdAt AS TEXT)`

func (r *recordingRepo) Insert(ctx context.Context, filename, filepath string, filesize int64) (*model.Recording, error) {
	query := `
		INSERT INTO recordings (filename, filepath, filesize)
		VALUES (?, ?, ?)
		RETURNING ` + recordingColumns

	rec, err := scanRecording(r.db.QueryRowContext(ctx, query, filename, filepath, filesize))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return rec, nil
}

func (r *recordingRepo) ListAll(ctx context.Context) ([]*model.Recording, error) {
	query := `
		SELECT ` + recordingColumns + `
		FROM recordings
		ORDER BY createdAt DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	defer rows.Close()

	result := make([]*model.Recording, 0)
	for rows.Next() {
		rec, scanErr := scanRecording(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrRead, scanErr)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	return result, nil
}

func (r *recordingRepo) GetByID(ctx context.Context, id int64) (*model.Recording, error) {
	query := `
		SELECT ` + recordingColumns + `
		FROM recordings
		WHERE id = ?`

	rec, err := scanRecording(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	return rec, nil
}

func (r *recordingRepo) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recordings WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return n, nil
}

func (r *recordingRepo) Stats(ctx context.Context) (int64, int64, error) {
	var count, total int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(filesize), 0) FROM recordings`,
	).Scan(&count, &total)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrRead, err)
	}
	return count, total, nil
}

// rowScanner — общий интерфейс *sql.Row и *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecording читает одну строку recordings.
func scanRecording(row rowScanner) (*model.Recording, error) {
	rec := &model.Recording{}
	var createdAt sql.NullString
	if err := row.Scan(&rec.ID, &rec.Filename, &rec.Filepath, &rec.Filesize, &createdAt); err != nil {
		return nil, err
	}
	if createdAt.Valid {
		t, err := parseStoreTime(createdAt.String)
		if err != nil {
			return nil, err
		}
		rec.CreatedAt = t
	}
	return rec, nil
}
