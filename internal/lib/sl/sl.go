// Package sl содержит вспомогательные функции для работы с логгером slog.
// Нужен для того, чтобы держать единообразными ключи структурированных полей лога.
package sl

import "log/slog"

// Err возвращает slog.Attr с ключом "error" и текстом ошибки.
//
// Пример:
//
//	log.Error("failed to add subscription", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.String("error", err.Error())
}

// Op возвращает атрибут с именем операции, в которой пишется лог.
func Op(op string) slog.Attr {
	return slog.String("op", op)
}

// UserID возвращает атрибут с идентификатором пользователя.
func UserID(id int64) slog.Attr {
	return slog.Int64("user_id", id)
}
