// disk_usage.go — ёмкость файловой системы директории загрузок для /api/info.
// Платформозависимый код для Unix-подобных систем.
package main

import (
	"fmt"
	"syscall"

	"github.com/bigkaa/recstore/internal/api/handlers"
)

// statfsUsage возвращает total, used, available в байтах для файловой системы path.
// available — место, доступное непривилегированному процессу (Bavail).
func statfsUsage(path string) (total, used, available int64, err error) {
	var st syscall.Statfs_t
	if err := syscall.Statfs(path, &st); err != nil {
		return 0, 0, 0, fmt.Errorf("ошибка statfs %s: %w", path, err)
	}

	blockSize := int64(st.Bsize)
	total = int64(st.Blocks) * blockSize
	available = int64(st.Bavail) * blockSize
	used = total - available
	if used < 0 {
		used = 0
	}
	return total, used, available, nil
}

// diskUsageFn привязывает statfsUsage к директории загрузок.
func diskUsageFn(dataDir string) handlers.DiskUsageFunc {
	return func() (int64, int64, int64, error) {
		return statfsUsage(dataDir)
	}
}
