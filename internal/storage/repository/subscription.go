package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

const subscriptionColumns = `id, user_id, service_name, plan_name,
	subscription_start_date, subscription_end_date`

// CreateEntry вставляет новую подписку и возвращает её ID.
func (s *Storage) CreateEntry(ctx context.Context, entry models.Subscription) (int64, error) {
	const op = "storage.CreateEntry"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscriptions (user_id, service_name, plan_name,
			      subscription_start_date, subscription_end_date)
			  VALUES (?, ?, ?, ?, ?)`
	result, err := s.DB.ExecContext(ctx, query,
		entry.UserID, entry.ServiceName, entry.PlanName,
		formatDate(entry.StartDate), formatDate(entry.EndDate))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// RemoveEntry удаляет подписку владельца userID и возвращает количество удалённых строк.
// Чужая или несуществующая подписка даёт 0 без ошибки.
func (s *Storage) RemoveEntry(ctx context.Context, userID, id int64) (int64, error) {
	const op = "storage.RemoveEntry"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM subscriptions WHERE id = ? AND user_id = ?`
	result, err := s.DB.ExecContext(ctx, query, id, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}

// UpdateEntryDates перезаписывает даты подписки владельца userID
// и возвращает количество изменённых строк.
func (s *Storage) UpdateEntryDates(ctx context.Context, userID, id int64, start, end time.Time) (int64, error) {
	const op = "storage.UpdateEntryDates"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET subscription_start_date = ?, subscription_end_date = ?
			  WHERE id = ? AND user_id = ?`
	result, err := s.DB.ExecContext(ctx, query, formatDate(start), formatDate(end), id, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}

// ListEntrys возвращает все подписки пользователя.
func (s *Storage) ListEntrys(ctx context.Context, userID int64) ([]*models.Subscription, error) {
	const op = "storage.ListEntrys"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions
			  WHERE user_id = ?
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result, err := scanEntries(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListAllEntrys возвращает подписки всех пользователей.
func (s *Storage) ListAllEntrys(ctx context.Context) ([]*models.Subscription, error) {
	const op = "storage.ListAllEntrys"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result, err := scanEntries(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// FindEntrysExpiringOn находит подписки пользователя, дата окончания которых равна day.
func (s *Storage) FindEntrysExpiringOn(ctx context.Context, userID int64, day time.Time) ([]*models.Subscription, error) {
	const op = "storage.FindEntrysExpiringOn"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions
			  WHERE subscription_end_date = ? AND user_id = ?
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, formatDate(day), userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result, err := scanEntries(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func scanEntries(rows *sql.Rows) ([]*models.Subscription, error) {
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Subscription
	for rows.Next() {
		var item models.Subscription
		var planName sql.NullString
		if err := rows.Scan(&item.ID, &item.UserID, &item.ServiceName, &planName,
			dateColumn{&item.StartDate}, dateColumn{&item.EndDate}); err != nil {
			return nil, err
		}
		item.PlanName = planName.String
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
