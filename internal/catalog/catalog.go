// Package catalog реализует неизменяемый каталог тарифов: сервис -> тариф -> цена.
//
// Каталог строится один раз при старте приложения и передаётся в сервисы
// подписок и отчётов. Используется только для отображения тарифов при
// добавлении подписки и для оценки выручки.
package catalog

import (
	"fmt"
	"sort"
)

// Plan тариф сервиса и его цена за месяц.
type Plan struct {
	Name  string
	Price float64
}

// Catalog неизменяемое отображение сервисов на их тарифы.
// Нулевое значение соответствует пустому каталогу.
type Catalog struct {
	services map[string]map[string]float64
}

// Default возвращает каталог, с которым приложение работает без конфигурации.
func Default() Catalog {
	c, _ := New(map[string]map[string]float64{
		"Spotify": {"Free": 0, "Premium": 9.99, "Family": 14.99},
		"Netflix": {"Basic": 8.99, "Standard": 12.99, "Premium": 15.99},
		"Hotstar": {"VIP": 5.99, "Premium": 9.99},
	})
	return c
}

// New копирует переданное отображение в новый каталог.
// Отрицательная цена считается ошибкой конфигурации.
func New(services map[string]map[string]float64) (Catalog, error) {
	const op = "catalog.New"

	copied := make(map[string]map[string]float64, len(services))
	for service, plans := range services {
		p := make(map[string]float64, len(plans))
		for plan, price := range plans {
			if price < 0 {
				return Catalog{}, fmt.Errorf("%s: negative price for %s/%s", op, service, plan)
			}
			p[plan] = price
		}
		copied[service] = p
	}
	return Catalog{services: copied}, nil
}

// Plans возвращает тарифы сервиса, отсортированные по имени.
// Для неизвестного сервиса возвращает пустой срез.
func (c Catalog) Plans(service string) []Plan {
	plans := c.services[service]
	result := make([]Plan, 0, len(plans))
	for name, price := range plans {
		result = append(result, Plan{Name: name, Price: price})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Price возвращает цену тарифа. Второе значение false, если сервис или тариф не найдены.
func (c Catalog) Price(service, plan string) (float64, bool) {
	plans, ok := c.services[service]
	if !ok {
		return 0, false
	}
	price, ok := plans[plan]
	return price, ok
}

// HasService сообщает, есть ли сервис в каталоге.
func (c Catalog) HasService(service string) bool {
	_, ok := c.services[service]
	return ok
}

// Services возвращает имена всех сервисов каталога в алфавитном порядке.
func (c Catalog) Services() []string {
	names := make([]string, 0, len(c.services))
	for name := range c.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
