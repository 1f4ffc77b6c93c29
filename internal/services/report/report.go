// Package report строит оценочный отчёт о выручке по сервисам.
//
// Для каждого сервиса считаются количество подписок и суммарное число
// календарных месяцев между датами начала и окончания. Выручка оценивается
// как количество * месяцы * цена одного тарифа (по умолчанию Premium),
// независимо от тарифа, указанного в самой подписке.
package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/magabrotheeeer/subscription-tracker/internal/catalog"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/month"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// DefaultPlan тариф, по цене которого оценивается выручка.
const DefaultPlan = "Premium"

var (
	// ErrUnknownService в журнале есть сервис, которого нет в каталоге.
	ErrUnknownService = errors.New("service is missing from the plan catalog")
	// ErrUnknownPlan у сервиса в каталоге нет тарифа для оценки выручки.
	ErrUnknownPlan = errors.New("report plan is missing from the plan catalog")
)

// Repository источник записей журнала.
type Repository interface {
	ListAllEntrys(ctx context.Context) ([]*models.Subscription, error)
}

// Service строит отчёт о выручке.
type Service struct {
	repo    Repository
	catalog catalog.Catalog
	plan    string
	log     *slog.Logger
}

// NewService создает новый экземпляр Service. Пустой plan означает DefaultPlan.
func NewService(repo Repository, cat catalog.Catalog, plan string, log *slog.Logger) *Service {
	if plan == "" {
		plan = DefaultPlan
	}
	return &Service{
		repo:    repo,
		catalog: cat,
		plan:    plan,
		log:     log,
	}
}

// Revenue группирует все подписки по сервису и возвращает строки отчёта,
// отсортированные по названию сервиса.
//
// Если сервиса из журнала (или его тарифа для оценки) нет в каталоге,
// отчёт целиком не строится.
func (s *Service) Revenue(ctx context.Context) ([]models.ServiceRevenue, error) {
	const op = "services.report.Revenue"
	log := s.log.With(sl.Op(op))

	entries, err := s.repo.ListAllEntrys(ctx)
	if err != nil {
		log.Error("failed to list subscriptions", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	groups := make(map[string]*models.ServiceRevenue)
	for _, e := range entries {
		g, ok := groups[e.ServiceName]
		if !ok {
			g = &models.ServiceRevenue{ServiceName: e.ServiceName}
			groups[e.ServiceName] = g
		}
		g.TotalSubscriptions++
		g.TotalMonths += month.Between(e.StartDate, e.EndDate)
	}

	result := make([]models.ServiceRevenue, 0, len(groups))
	for name, g := range groups {
		if !s.catalog.HasService(name) {
			log.Error("service missing from catalog", slog.String("service", name))
			return nil, fmt.Errorf("%s: %w: %q", op, ErrUnknownService, name)
		}
		price, ok := s.catalog.Price(name, s.plan)
		if !ok {
			log.Error("report plan missing from catalog", slog.String("service", name), slog.String("plan", s.plan))
			return nil, fmt.Errorf("%s: %w: %q/%q", op, ErrUnknownPlan, name, s.plan)
		}
		g.PlanPrice = price
		g.TotalRevenue = float64(g.TotalSubscriptions) * float64(g.TotalMonths) * price
		result = append(result, *g)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].ServiceName < result[j].ServiceName })

	log.Info("revenue report built", slog.Int("services", len(result)))
	return result, nil
}
