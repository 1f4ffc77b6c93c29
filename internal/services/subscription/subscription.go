// Package subscription содержит бизнес-логику журнала подписок: валидацию
// при создании, удаление и обновление в пределах владельца, выборки и
// оповещение об истекающих сегодня подписках.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/subscription-tracker/internal/catalog"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// DefaultMaxStartAgeDays сколько дней назад может начинаться новая подписка (9 * 30).
const DefaultMaxStartAgeDays = 270

var (
	// ErrInvalidDate дата не в формате YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date format")
	// ErrStartTooOld дата начала старше допустимого окна.
	ErrStartTooOld = errors.New("start date is too far in the past")
	// ErrEndInPast дата окончания раньше сегодняшнего дня.
	ErrEndInPast = errors.New("end date is earlier than today")
)

// Repository определяет методы для работы с подписками в хранилище.
type Repository interface {
	// CreateEntry добавляет новую подписку и возвращает её ID.
	CreateEntry(ctx context.Context, entry models.Subscription) (int64, error)
	// RemoveEntry удаляет подписку владельца и возвращает количество удалённых строк.
	RemoveEntry(ctx context.Context, userID, id int64) (int64, error)
	// UpdateEntryDates перезаписывает даты подписки владельца.
	UpdateEntryDates(ctx context.Context, userID, id int64, start, end time.Time) (int64, error)
	// ListEntrys возвращает подписки пользователя.
	ListEntrys(ctx context.Context, userID int64) ([]*models.Subscription, error)
	// ListAllEntrys возвращает подписки всех пользователей.
	ListAllEntrys(ctx context.Context) ([]*models.Subscription, error)
	// FindEntrysExpiringOn возвращает подписки пользователя, заканчивающиеся в указанный день.
	FindEntrysExpiringOn(ctx context.Context, userID int64, day time.Time) ([]*models.Subscription, error)
}

// Service реализует операции журнала подписок.
type Service struct {
	repo        Repository
	catalog     catalog.Catalog
	maxStartAge time.Duration
	now         func() time.Time
	log         *slog.Logger
}

// Option настраивает Service.
type Option func(*Service)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithMaxStartAgeDays задаёт окно допустимой даты начала в днях.
func WithMaxStartAgeDays(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.maxStartAge = time.Duration(days) * 24 * time.Hour
		}
	}
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, cat catalog.Catalog, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		catalog:     cat,
		maxStartAge: DefaultMaxStartAgeDays * 24 * time.Hour,
		now:         time.Now,
		log:         log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Plans возвращает тарифы сервиса для отображения. Неизвестный сервис даёт пустой список.
func (s *Service) Plans(service string) []catalog.Plan {
	return s.catalog.Plans(service)
}

// CheckStart проверяет только дату начала: формат и окно допустимой давности.
// Оболочка вызывает её до того, как спросить дату окончания.
func (s *Service) CheckStart(startText string) error {
	start, err := ParseDate(startText)
	if err != nil {
		return err
	}
	if s.today().Sub(start) > s.maxStartAge {
		return ErrStartTooOld
	}
	return nil
}

// Add проверяет даты и создаёт подписку для пользователя userID.
//
// Название сервиса и тарифа с каталогом не сверяются. Дата окончания
// раньше даты начала допускается.
func (s *Service) Add(ctx context.Context, userID int64, service, plan, startText, endText string) (int64, error) {
	const op = "services.subscription.Add"
	log := s.log.With(sl.Op(op), sl.UserID(userID))

	if err := s.CheckStart(startText); err != nil {
		log.Info("start date rejected", slog.String("start", startText), sl.Err(err))
		return 0, err
	}
	start, _ := ParseDate(startText)

	end, err := ParseDate(endText)
	if err != nil {
		return 0, err
	}
	if end.Before(s.today()) {
		log.Info("end date rejected", slog.String("end", endText))
		return 0, ErrEndInPast
	}

	id, err := s.repo.CreateEntry(ctx, models.Subscription{
		UserID:      userID,
		ServiceName: service,
		PlanName:    plan,
		StartDate:   start,
		EndDate:     end,
	})
	if err != nil {
		log.Error("failed to create subscription", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("created new subscription", slog.Int64("id", id))
	return id, nil
}

// Delete удаляет подписку пользователя. Возвращает количество удалённых строк;
// ноль означает, что подписки нет или она чужая.
func (s *Service) Delete(ctx context.Context, userID, id int64) (int64, error) {
	const op = "services.subscription.Delete"
	log := s.log.With(sl.Op(op), sl.UserID(userID), slog.Int64("id", id))

	count, err := s.repo.RemoveEntry(ctx, userID, id)
	if err != nil {
		log.Error("failed to remove subscription", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	log.Info("removed subscription", slog.Int64("rows", count))
	return count, nil
}

// Update перезаписывает обе даты подписки пользователя.
//
// В отличие от Add, окно даты начала и прошедшая дата окончания здесь
// не проверяются, проверяется только формат.
func (s *Service) Update(ctx context.Context, userID, id int64, startText, endText string) (int64, error) {
	const op = "services.subscription.Update"
	log := s.log.With(sl.Op(op), sl.UserID(userID), slog.Int64("id", id))

	start, err := ParseDate(startText)
	if err != nil {
		return 0, err
	}
	end, err := ParseDate(endText)
	if err != nil {
		return 0, err
	}

	count, err := s.repo.UpdateEntryDates(ctx, userID, id, start, end)
	if err != nil {
		log.Error("failed to update subscription", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	log.Info("updated subscription in storage", slog.Int64("rows", count))
	return count, nil
}

// ListForUser возвращает подписки пользователя.
func (s *Service) ListForUser(ctx context.Context, userID int64) ([]*models.Subscription, error) {
	const op = "services.subscription.ListForUser"
	entries, err := s.repo.ListEntrys(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return entries, nil
}

// ListAll возвращает подписки всех пользователей.
func (s *Service) ListAll(ctx context.Context) ([]*models.Subscription, error) {
	const op = "services.subscription.ListAll"
	entries, err := s.repo.ListAllEntrys(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return entries, nil
}

// ExpiringToday возвращает подписки пользователя, дата окончания которых ровно сегодня.
func (s *Service) ExpiringToday(ctx context.Context, userID int64) ([]*models.Subscription, error) {
	const op = "services.subscription.ExpiringToday"
	entries, err := s.repo.FindEntrysExpiringOn(ctx, userID, s.today())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return entries, nil
}

// today возвращает текущую календарную дату в локальной зоне, приведённую к полуночи UTC.
func (s *Service) today() time.Time {
	n := s.now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate разбирает дату в формате YYYY-MM-DD.
func ParseDate(text string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, text)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %w", ErrInvalidDate, text, err)
	}
	return t, nil
}
