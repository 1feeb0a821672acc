// Пакет model — доменные модели сервиса записей.
// Recording — единственная сущность: метаданные загруженного видео.
package model

import "time"

// Recording — метаданные одной загруженной записи. Соответствует строке
// таблицы recordings. Все поля неизменяемы после создания.
type Recording struct {
	// ID — идентификатор, назначается хранилищем (AUTOINCREMENT), не переиспользуется
	ID int64 `json:"id"`

	// Filename — сгенерированное имя blob-файла (recording_<timestamp><ext>).
	// Не совпадает с именем файла клиента.
	Filename string `json:"filename"`

	// Filepath — расположение blob-файла на диске
	Filepath string `json:"filepath"`

	// Filesize — размер blob-файла в байтах на момент загрузки
	Filesize int64 `json:"filesize"`

	// CreatedAt — время вставки строки (локальное время хранилища)
	CreatedAt time.Time `json:"createdAt"`
}
