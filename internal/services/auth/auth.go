// Package auth содержит логику регистрации и аутентификации пользователей.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/password"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
	"github.com/magabrotheeeer/subscription-tracker/internal/storage/repository"
)

var (
	// ErrUserExists имя пользователя уже зарегистрировано.
	ErrUserExists = errors.New("user is already registered")
	// ErrInvalidCredentials неверное имя пользователя или пароль.
	// Намеренно не различает, какое из полей не совпало.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его ID.
	RegisterUser(ctx context.Context, user models.User) (int64, error)
	// GetUserByUsername возвращает пользователя по имени или repository.ErrNotFound.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	// ListUsers возвращает всех пользователей.
	ListUsers(ctx context.Context) ([]*models.User, error)
}

// Service отвечает за регистрацию и вход пользователей.
type Service struct {
	users  UserRepository
	hasher password.Hasher
	log    *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(users UserRepository, hasher password.Hasher, log *slog.Logger) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
		log:    log,
	}
}

// Register создает нового пользователя и возвращает его ID.
//
// Если имя уже занято, возвращает ErrUserExists и ничего не записывает.
// Проверка выполняется заранее, а уникальный индекс в базе страхует от гонки.
func (s *Service) Register(ctx context.Context, username, rawPassword string) (int64, error) {
	const op = "services.auth.Register"
	log := s.log.With(sl.Op(op), slog.String("username", username))

	_, err := s.users.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		log.Info("username already taken")
		return 0, ErrUserExists
	case !errors.Is(err, repository.ErrNotFound):
		log.Error("failed to look up user", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	stored, err := s.hasher.Hash(rawPassword)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.users.RegisterUser(ctx, models.User{Username: username, Password: stored})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			log.Info("username taken concurrently")
			return 0, ErrUserExists
		}
		log.Error("failed to register user", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user registered", sl.UserID(id))
	return id, nil
}

// Authenticate возвращает ID пользователя, если имя и пароль совпадают.
// Иначе возвращает ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, rawPassword string) (int64, error) {
	const op = "services.auth.Authenticate"
	log := s.log.With(sl.Op(op), slog.String("username", username))

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Info("login rejected")
			return 0, ErrInvalidCredentials
		}
		log.Error("failed to look up user", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.hasher.Compare(user.Password, rawPassword); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			log.Info("login rejected")
			return 0, ErrInvalidCredentials
		}
		log.Error("failed to compare password", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("login accepted", sl.UserID(user.ID))
	return user.ID, nil
}

// ListUsers возвращает всех зарегистрированных пользователей.
func (s *Service) ListUsers(ctx context.Context) ([]*models.User, error) {
	const op = "services.auth.ListUsers"

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		s.log.Error("failed to list users", sl.Op(op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}
