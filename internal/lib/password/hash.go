// Package password реализует схемы хранения паролей.
//
// Схема "plain" сохраняет пароль как есть и сравнивает его посимвольно.
// Схема "bcrypt" хранит bcrypt-хеш и сравнивает введённый пароль с хешем.
package password

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Названия поддерживаемых схем.
const (
	SchemePlain  = "plain"
	SchemeBcrypt = "bcrypt"
)

// ErrMismatch возвращается, если введённый пароль не совпадает с сохранённым.
var ErrMismatch = errors.New("password mismatch")

// Hasher кодирует пароль для хранения и проверяет введённый пароль.
type Hasher interface {
	// Hash возвращает строку, которая будет записана в хранилище.
	Hash(password string) (string, error)
	// Compare возвращает nil, если password соответствует stored.
	Compare(stored, password string) error
}

// New возвращает Hasher по имени схемы.
func New(scheme string) (Hasher, error) {
	switch scheme {
	case SchemePlain, "":
		return Plain{}, nil
	case SchemeBcrypt:
		return Bcrypt{Cost: bcrypt.DefaultCost}, nil
	default:
		return nil, fmt.Errorf("password.New: unknown scheme %q", scheme)
	}
}

// Plain хранит пароль без изменений.
type Plain struct{}

// Hash возвращает пароль как есть.
func (Plain) Hash(password string) (string, error) {
	return password, nil
}

// Compare требует точного совпадения строк.
func (Plain) Compare(stored, password string) error {
	if subtle.ConstantTimeCompare([]byte(stored), []byte(password)) != 1 {
		return ErrMismatch
	}
	return nil
}

// Bcrypt хранит bcrypt-хеш пароля.
type Bcrypt struct {
	Cost int
}

// Hash принимает пароль пользователя и возвращает его bcrypt-хеш.
func (b Bcrypt) Hash(password string) (string, error) {
	const op = "password.Bcrypt.Hash"
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

// Compare сравнивает bcrypt-хеш с введённым паролем.
func (Bcrypt) Compare(stored, password string) error {
	const op = "password.Bcrypt.Compare"
	if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatch
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
