// Package response формирует текстовые ответы интерактивной оболочки:
// таблицы подписок и пользователей, строки отчёта и сообщения валидации.
package response

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/subscription-tracker/internal/catalog"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

// Subscriptions рисует таблицу подписок. Для пустого списка возвращает пустую строку.
func Subscriptions(entries []*models.Subscription) string {
	if len(entries) == 0 {
		return ""
	}
	t := newTable("ID", "USER ID", "SERVICE", "PLAN", "START", "END")
	for _, e := range entries {
		t.Row(
			strconv.FormatInt(e.ID, 10),
			strconv.FormatInt(e.UserID, 10),
			e.ServiceName,
			e.PlanName,
			e.StartDate.Format(models.DateLayout),
			e.EndDate.Format(models.DateLayout),
		)
	}
	return t.String()
}

// Users рисует таблицу пользователей. Пароли не выводятся.
func Users(users []*models.User) string {
	if len(users) == 0 {
		return ""
	}
	t := newTable("ID", "USERNAME")
	for _, u := range users {
		t.Row(strconv.FormatInt(u.ID, 10), u.Username)
	}
	return t.String()
}

// Plans возвращает строки вида "Premium: $9.99".
func Plans(plans []catalog.Plan) []string {
	lines := make([]string, 0, len(plans))
	for _, p := range plans {
		lines = append(lines, fmt.Sprintf("%s: $%s", p.Name, strconv.FormatFloat(p.Price, 'f', -1, 64)))
	}
	return lines
}

// Revenue возвращает строку отчёта по одному сервису.
func Revenue(r models.ServiceRevenue) string {
	return fmt.Sprintf("Service: %s, Total Subscriptions: %d, Total Months: %d, Total Revenue: $%.2f",
		r.ServiceName, r.TotalSubscriptions, r.TotalMonths, r.TotalRevenue)
}

// ValidationError формирует сообщение на основе ошибок валидации.
// Каждое нарушение формируется в человеко-читаемый текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) string {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "numeric":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s can contain only numbers", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not valid", err.Field()))
		}
	}
	return strings.Join(errsMsgs, ", ")
}
