// Package jwt реализует генерацию и парсинг JWT токенов с пользовательскими claim полями.
//
// MakerImpl подписывает токены HS256 одним секретом и с одним временем жизни.
// Для каждого класса токенов (access, refresh, recovery) создаётся свой MakerImpl.
package jwt

import (
	"errors"
	"time"
)

// ErrInvalidToken возвращается, если подпись неверна, токен повреждён,
// истёк или подписан другим алгоритмом.
var ErrInvalidToken = errors.New("invalid token")

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
type Maker interface {
	GenerateToken(id int64, email, role string) (string, error)
	ParseToken(tokenStr string) (*IdentityClaims, error)
	GenerateRecoveryToken(email string) (string, error)
	ParseRecoveryToken(tokenStr string) (*RecoveryClaims, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey string        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
	now       func() time.Time
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
		now:       time.Now,
	}
}

// TTL время жизни выпускаемых токенов.
func (j *MakerImpl) TTL() time.Duration {
	return j.tokenTTL
}
