package user

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"
)

const resetTokenBytes = 32

var (
	nowFunc = time.Now // mockable

	ErrInvalidResetToken = errors.New("invalid or expired reset token")
)

// makeResetToken generates a random password reset token. The token only
// proves control of an account's email; it is stored on the User with a
// short expiry and consumed exactly once.
func makeResetToken() (string, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
