// Package models содержит доменные структуры трекера подписок:
// пользователя, запись подписки и строку отчёта о выручке.
package models

// User представляет зарегистрированного пользователя.
type User struct {
	ID       int64  // Идентификатор, назначается хранилищем
	Username string // Имя пользователя (уникальное)
	Password string // Пароль в том виде, в котором его сохранила схема паролей
}
