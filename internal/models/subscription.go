package models

import "time"

// DateLayout формат, в котором даты вводятся пользователем и хранятся в базе.
const DateLayout = time.DateOnly

// Subscription представляет запись о подписке пользователя на сторонний сервис.
// Даты хранятся как календарные (полночь UTC).
type Subscription struct {
	ID          int64     // Идентификатор подписки
	UserID      int64     // Владелец подписки
	ServiceName string    // Название сервиса, например Spotify
	PlanName    string    // Название тарифа, не сверяется с каталогом
	StartDate   time.Time // Дата начала
	EndDate     time.Time // Дата окончания
}

// DummySubscription используется для приёма строкового ввода из CLI
// до валидации и разбора дат.
type DummySubscription struct {
	ServiceName string
	PlanName    string
	StartDate   string `validate:"required"`
	EndDate     string `validate:"required"`
}

// DummyDates принимает новые даты подписки при обновлении.
type DummyDates struct {
	StartDate string `validate:"required"`
	EndDate   string `validate:"required"`
}

// DummyCredentials принимает имя и пароль при регистрации и входе.
type DummyCredentials struct {
	Username string `validate:"required"`
	Password string
}
