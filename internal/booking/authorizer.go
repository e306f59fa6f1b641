package booking

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Общий секрет отмены по умолчанию.
const DefaultCancelSecret = "2410"

// Authorizer решает, можно ли отменить бронирование с данным секретом.
// Владельца у бронирования нет: кто знает секрет, отменяет любое.
type Authorizer interface {
	AuthorizeCancel(credential string) bool
}

// SharedSecret — единый секрет, сравнивается точно.
type SharedSecret string

func (s SharedSecret) AuthorizeCancel(credential string) bool {
	if s == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(credential), []byte(s)) == 1
}

// BcryptSecret — тот же единый секрет, но в конфигурации хранится только bcrypt-хеш.
type BcryptSecret struct {
	hash []byte
}

func NewBcryptSecret(hash string) (*BcryptSecret, error) {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("invalid bcrypt hash: %w", err)
	}
	return &BcryptSecret{hash: []byte(hash)}, nil
}

func (s *BcryptSecret) AuthorizeCancel(credential string) bool {
	return bcrypt.CompareHashAndPassword(s.hash, []byte(credential)) == nil
}
