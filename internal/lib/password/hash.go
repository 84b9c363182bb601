// Package password реализует хеширование и проверку паролей пользователей библиотеки.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// maxLength — ограничение bcrypt: всё, что длиннее 72 байт, молча отбрасывается.
const maxLength = 72

var (
	// ErrEmpty возвращается для пустого пароля.
	ErrEmpty = errors.New("password is empty")
	// ErrTooLong возвращается для пароля длиннее 72 байт.
	ErrTooLong = errors.New("password is longer than 72 bytes")
)

// GetHash возвращает bcrypt-хэш пароля для хранения в базе данных.
func GetHash(password string) (string, error) {
	const op = "password.GetHash"
	switch {
	case password == "":
		return "", fmt.Errorf("%s: %w", op, ErrEmpty)
	case len(password) > maxLength:
		return "", fmt.Errorf("%s: %w", op, ErrTooLong)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

// CompareHash сравнивает сохранённый хэш с введённым паролем.
// Возвращает nil, если пароль подходит.
func CompareHash(hash, password string) error {
	const op = "password.CompareHash"
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
