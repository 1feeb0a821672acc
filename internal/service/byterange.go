// byterange.go — разбор заголовка Range (один диапазон байт).
package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Ошибки разбора Range.
var (
	errRangeSyntax      = errors.New("некорректный формат Range")
	errMultiRange       = errors.New("несколько диапазонов не поддерживаются")
	errRangeOutOfBounds = errors.New("диапазон вне границ файла")
)

// ByteRange — диапазон байт [Start, End] включительно.
type ByteRange struct {
	Start int64
	End   int64
}

// Length возвращает количество байт в диапазоне.
func (r ByteRange) Length() int64 {
	return r.End - r.Start + 1
}

// ContentRange форматирует заголовок Content-Range для ответа 206.
func (r ByteRange) ContentRange(size int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", r.Start, r.End, size)
}

// UnsatisfiedContentRange форматирует Content-Range для ответа 416.
func UnsatisfiedContentRange(size int64) string {
	return fmt.Sprintf("bytes */%d", size)
}

// ParseRange разбирает заголовок Range для ресурса размером size.
// Поддерживаемые формы: bytes=S-E, bytes=S- (до конца файла), bytes=-N (последние N байт).
// Несколько диапазонов через запятую отклоняются. Конец диапазона не обрезается
// до размера файла: start > end или end >= size считаются ошибкой.
func ParseRange(header string, size int64) (ByteRange, error) {
	const prefix = "bytes="
	header = strings.TrimSpace(header)
	if !strings.HasPrefix(header, prefix) {
		return ByteRange{}, errRangeSyntax
	}

	spec := strings.TrimPrefix(header, prefix)
	if strings.Contains(spec, ",") {
		return ByteRange{}, errMultiRange
	}

	startStr, endStr, found := strings.Cut(spec, "-")
	if !found {
		return ByteRange{}, errRangeSyntax
	}
	startStr = strings.TrimSpace(startStr)
	endStr = strings.TrimSpace(endStr)

	if startStr == "" {
		// Суффиксная форма: bytes=-500 (последние 500 байт)
		n, err := parseRangeInt(endStr)
		if err != nil || n == 0 {
			return ByteRange{}, errRangeSyntax
		}
		if size == 0 {
			return ByteRange{}, errRangeOutOfBounds
		}
		if n > size {
			n = size
		}
		return ByteRange{Start: size - n, End: size - 1}, nil
	}

	start, err := parseRangeInt(startStr)
	if err != nil {
		return ByteRange{}, errRangeSyntax
	}

	end := size - 1
	if endStr != "" {
		end, err = parseRangeInt(endStr)
		if err != nil {
			return ByteRange{}, errRangeSyntax
		}
	}

	if start > end || end >= size {
		return ByteRange{}, errRangeOutOfBounds
	}
	return ByteRange{Start: start, End: end}, nil
}

// parseRangeInt разбирает неотрицательное десятичное число без знака.
func parseRangeInt(s string) (int64, error) {
	if s == "" || s[0] == '+' || s[0] == '-' {
		return 0, errRangeSyntax
	}
	return strconv.ParseInt(s, 10, 64)
}
