package uploads

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Допустимые типы аватаров и ограничение размера.
const MaxAvatarSize = 2 * 1024 * 1024 // 2 МБ

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// AllowedType сообщает, принимается ли такой Content-Type файла,
// и возвращает расширение для сохранения.
func AllowedType(contentType string) (string, bool) {
	ext, ok := allowedTypes[contentType]
	return ext, ok
}

// Uploader сохраняет аватар и возвращает публичный URL.
// Продакшен-хранилище (CDN) подключается отдельной реализацией.
type Uploader interface {
	Save(file *multipart.FileHeader, contentType string) (string, error)
}

// LocalUploader складывает файлы на диск; отдаются они через /uploads/.
type LocalUploader struct {
	Dir     string
	BaseURL string
}

func NewLocalUploader(dir, baseURL string) (*LocalUploader, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("не удалось создать каталог загрузок %s: %w", dir, err)
	}
	return &LocalUploader{Dir: dir, BaseURL: baseURL}, nil
}

func (u *LocalUploader) Save(file *multipart.FileHeader, contentType string) (string, error) {
	ext, ok := AllowedType(contentType)
	if !ok {
		return "", fmt.Errorf("недопустимый тип файла: %s", contentType)
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	name := uuid.New().String() + ext
	dst, err := os.Create(filepath.Join(u.Dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}

	return u.BaseURL + "/uploads/" + name, nil
}
