// Package jwt реализует генерацию и разбор JWT токенов пользователей библиотеки.
//
// В токене хранятся идентификатор пользователя, email и роль (Admin или Student).
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken возвращается для токена с неверной подписью, истёкшего или повреждённого.
var ErrInvalidToken = errors.New("invalid token")

// CustomClaims описывает пользовательские данные, хранящиеся в JWT.
type CustomClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Maker описывает генерацию и разбор токенов.
type Maker interface {
	GenerateToken(userID, email, role string) (string, error)
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl подписывает токены секретным ключом по HS256.
type MakerImpl struct {
	secretKey []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

// NewJWTMaker создаёт MakerImpl на основе секретного ключа и времени жизни токена.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: []byte(secretKey),
		tokenTTL:  ttl,
		now:       time.Now,
	}
}

// GenerateToken создаёт подписанный токен. Subject совпадает с userID.
func (j *MakerImpl) GenerateToken(userID, email, role string) (string, error) {
	const op = "jwt.GenerateToken"
	now := j.now()
	claims := CustomClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.tokenTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secretKey)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// ParseToken проверяет подпись и срок действия токена и возвращает его claims.
func (j *MakerImpl) ParseToken(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return j.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	return claims, nil
}
