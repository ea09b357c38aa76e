package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Code is a pending one-time code. Only the bcrypt hash is stored.
type Code struct {
	AccountID string    `json:"account_id"`
	Email     string    `json:"email"`
	Hash      []byte    `json:"hash"`
	Attempts  int       `json:"attempts"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *Code) expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// generateDigits returns n uniformly random decimal digits.
func generateDigits(n int) (string, error) {
	if n <= 0 {
		n = 6
	}
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
	v, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", errors.Join(ErrCodeGeneration, err)
	}
	return fmt.Sprintf("%0*d", n, v), nil
}

func hashCode(code string, cost int) ([]byte, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(code), cost)
	if err != nil {
		return nil, errors.Join(ErrCodeGeneration, err)
	}
	return h, nil
}

func matchCode(hash []byte, code string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(code)) == nil
}
