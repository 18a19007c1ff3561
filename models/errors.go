package models

import "errors"

// Классы ошибок, по которым контроллеры выбирают HTTP-статус.
// Внутренние детали (текст ошибки Redis и т. п.) наружу не отдаются.
var (
	ErrUnauthorized = errors.New("нет авторизации")
	ErrInvalidInput = errors.New("некорректные входные данные")
	ErrNotFound     = errors.New("запись не найдена")
	ErrConflict     = errors.New("запись уже существует")
	ErrStorage      = errors.New("ошибка хранилища")
	ErrDecode       = errors.New("ошибка декодирования сохраненного значения")
)
