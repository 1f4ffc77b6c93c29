package repository

import (
	"fmt"
	"time"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// formatDate приводит дату к виду, в котором она хранится в колонках DATE.
func formatDate(t time.Time) string {
	return t.Format(models.DateLayout)
}

// dateColumn сканирует колонку DATE. Драйвер может вернуть как строку,
// так и time.Time в зависимости от объявленного типа колонки.
type dateColumn struct {
	dst *time.Time
}

func (d dateColumn) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d.dst = time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC)
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	case nil:
		*d.dst = time.Time{}
		return nil
	default:
		return fmt.Errorf("unsupported date column type %T", src)
	}
}

func (d dateColumn) parse(s string) error {
	if len(s) > len(models.DateLayout) {
		s = s[:len(models.DateLayout)]
	}
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date column value %q: %w", s, err)
	}
	*d.dst = t
	return nil
}
