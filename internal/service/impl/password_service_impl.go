package impl

import (
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost 12 keeps hashing slow enough for credential storage.
const bcryptCost = 12

type PasswordServiceBcrypt struct {
	cost int
}

func NewPasswordServiceBcrypt() *PasswordServiceBcrypt {
	return &PasswordServiceBcrypt{cost: bcryptCost}
}

func (p *PasswordServiceBcrypt) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (p *PasswordServiceBcrypt) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
