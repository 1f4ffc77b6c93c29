// Package repository реализует хранилище трекера подписок на основе SQLite.
// Предоставляет методы создания, чтения, обновления и удаления подписок,
// а также регистрацию и поиск пользователей. Каждая запись выполняется
// отдельным запросом и фиксируется сразу.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound запись не найдена.
	ErrNotFound = errors.New("record not found")
	// ErrConflict нарушено ограничение уникальности.
	ErrConflict = errors.New("unique constraint violated")
)

// pragmas применяются к каждому соединению через DSN.
var pragmas = []string{
	"busy_timeout(5000)",
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
	"foreign_keys(OFF)",
}

// Storage инкапсулирует соединение с базой данных SQLite
// и реализует методы работы с подписками и пользователями.
type Storage struct {
	DB *sql.DB
}

// New открывает (или создаёт) файл базы данных по пути path.
// База используется одним процессом, поэтому пул ограничен одним соединением.
func New(ctx context.Context, path string) (*Storage, error) {
	const op = "storage.New"

	if path == "" {
		return nil, fmt.Errorf("%s: storage path is empty", op)
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	db.SetMaxOpenConns(1)

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// Close закрывает соединение с базой.
func (s *Storage) Close() error {
	return s.DB.Close()
}

// CheckDatabaseReady проверяет, что миграции применены и таблицы на месте.
func CheckDatabaseReady(ctx context.Context, storage *Storage) error {
	var count int
	err := storage.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master
		WHERE type = 'table' AND name IN ('users', 'subscriptions')`).Scan(&count)
	if err != nil {
		return fmt.Errorf("required tables query error: %w", err)
	}
	if count != 2 {
		return errors.New("required tables users and subscriptions are missing")
	}
	return nil
}

func dsn(path string) string {
	var b strings.Builder
	b.WriteString(path)
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	for _, p := range pragmas {
		b.WriteString(sep)
		b.WriteString("_pragma=")
		b.WriteString(p)
		sep = "&"
	}
	return b.String()
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
