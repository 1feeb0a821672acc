// Пакет filestore — операции с blob-файлами записей на диске.
// Обеспечивает streaming-запись с ограничением размера, чтение диапазонов,
// удаление и перечисление файлов для reconciliation.
package filestore

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Ошибки файлового хранилища.
var (
	// ErrNotFound — blob-файл отсутствует на диске.
	ErrNotFound = errors.New("файл не найден")
	// ErrTooLarge — поток превысил допустимый размер.
	ErrTooLarge = errors.New("размер файла превышает лимит")
	// ErrInvalidRange — диапазон вне границ файла.
	ErrInvalidRange = errors.New("некорректный диапазон")
)

const (
	// namePrefix — префикс имён blob-файлов.
	namePrefix = "recording_"
	// tmpPattern — шаблон временных файлов; точка в начале скрывает их от List.
	tmpPattern = ".upload-*.tmp"
	// copyBufferSize — размер буфера записи.
	copyBufferSize = 32 * 1024
	// maxExtLen — максимальная длина расширения (без точки).
	maxExtLen = 10
	// publishAttempts — число попыток опубликовать файл под уникальным именем.
	publishAttempts = 5
)

// FileStore — управление blob-файлами в директории загрузок.
type FileStore struct {
	// dataDir — директория хранения (RS_DATA_DIR)
	dataDir string
	// now — источник времени для имён файлов (подменяется в тестах)
	now func() time.Time
}

// WriteResult — результат сохранения blob-файла.
type WriteResult struct {
	// Filename — сгенерированное имя файла
	Filename string
	// Path — путь к файлу (dataDir + Filename)
	Path string
	// Size — количество записанных байт
	Size int64
}

// BlobInfo — описание файла в директории загрузок.
type BlobInfo struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// New создаёт FileStore. Директория создаётся, если не существует.
func New(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию данных %s: %w", dataDir, err)
	}

	return &FileStore{dataDir: dataDir, now: time.Now}, nil
}

// Write записывает поток на диск под именем recording_<unix-millis><ext>.
// limit > 0 ограничивает размер: при превышении возвращается ErrTooLarge.
//
// Паттерн: temp файл → запись → fsync → link под итоговым именем.
// Link не перезаписывает существующий файл; при коллизии к имени
// добавляется короткий uuid. При любой ошибке temp файл удаляется.
func (s *FileStore) Write(reader io.Reader, originalFilename string, limit int64) (*WriteResult, error) {
	f, err := os.CreateTemp(s.dataDir, tmpPattern)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания временного файла: %w", err)
	}
	tmpPath := f.Name()
	defer os.Remove(tmpPath)

	src := reader
	if limit > 0 {
		// +1 байт позволяет отличить «ровно limit» от превышения
		src = io.LimitReader(reader, limit+1)
	}

	size, err := io.CopyBuffer(f, src, make([]byte, copyBufferSize))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("ошибка записи данных: %w", err)
	}
	if limit > 0 && size > limit {
		f.Close()
		return nil, ErrTooLarge
	}

	if err := f.Chmod(0o640); err != nil {
		f.Close()
		return nil, fmt.Errorf("ошибка установки прав файла: %w", err)
	}

	// fsync для гарантии записи на диск
	if err := f.Sync(); err != nil {
		f.Close()
		return nil, fmt.Errorf("ошибка fsync: %w", err)
	}

	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("ошибка закрытия файла: %w", err)
	}

	name, err := s.publish(tmpPath, originalFilename)
	if err != nil {
		return nil, err
	}

	return &WriteResult{
		Filename: name,
		Path:     filepath.Join(s.dataDir, name),
		Size:     size,
	}, nil
}

// publish создаёт жёсткую ссылку на temp файл под свободным итоговым именем.
func (s *FileStore) publish(tmpPath, originalFilename string) (string, error) {
	base := generateName(originalFilename, s.now())
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	name := base
	for attempt := 0; attempt < publishAttempts; attempt++ {
		err := os.Link(tmpPath, filepath.Join(s.dataDir, name))
		if err == nil {
			return name, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("ошибка публикации файла %s: %w", name, err)
		}
		name = fmt.Sprintf("%s_%s%s", stem, uuid.New().String()[:8], ext)
	}
	return "", fmt.Errorf("не удалось подобрать свободное имя для %s", base)
}

// OpenRange открывает срез файла [start, end] включительно.
// Вызывающий код обязан закрыть ReadCloser.
func (s *FileStore) OpenRange(path string, start, end int64) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка открытия файла %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("ошибка получения информации о файле %s: %w", path, err)
	}

	if start < 0 || start > end || end >= info.Size() {
		f.Close()
		return nil, fmt.Errorf("%w: %d-%d при размере %d", ErrInvalidRange, start, end, info.Size())
	}

	return &sectionReadCloser{
		Reader: io.NewSectionReader(f, start, end-start+1),
		Closer: f,
	}, nil
}

// sectionReadCloser связывает срез файла с его дескриптором.
type sectionReadCloser struct {
	io.Reader
	io.Closer
}

// Stat возвращает размер файла или ErrNotFound.
func (s *FileStore) Stat(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("ошибка получения информации о файле %s: %w", path, err)
	}
	if info.IsDir() {
		return 0, ErrNotFound
	}
	return info.Size(), nil
}

// Delete удаляет файл с диска. Возвращает nil, если файла уже нет.
func (s *FileStore) Delete(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("ошибка удаления файла %s: %w", path, err)
	}
	return nil
}

// List перечисляет blob-файлы в директории загрузок.
// Пропускает поддиректории, скрытые и временные файлы.
func (s *FileStore) List() ([]BlobInfo, error) {
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения директории %s: %w", s.dataDir, err)
	}

	blobs := make([]BlobInfo, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".tmp") {
			continue
		}

		info, infoErr := entry.Info()
		if infoErr != nil {
			// Файл удалён между ReadDir и Info
			continue
		}

		blobs = append(blobs, BlobInfo{
			Name:    name,
			Path:    filepath.Join(s.dataDir, name),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return blobs, nil
}

// DataDir возвращает путь к директории данных.
func (s *FileStore) DataDir() string {
	return s.dataDir
}

// generateName генерирует имя blob-файла.
// Формат: recording_<unix-millis><ext>
// Пример: recording_1760870400123.webm
func generateName(originalFilename string, now time.Time) string {
	return fmt.Sprintf("%s%d%s", namePrefix, now.UnixMilli(), sanitizeExt(filepath.Ext(originalFilename)))
}

// sanitizeExt оставляет в расширении только латинские буквы и цифры.
// Пустой результат означает файл без расширения.
func sanitizeExt(ext string) string {
	ext = strings.TrimPrefix(ext, ".")

	var result strings.Builder
	for _, r := range ext {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			result.WriteRune(r)
		}
	}
	if result.Len() == 0 || result.Len() > maxExtLen {
		return ""
	}
	return "." + result.String()
}
