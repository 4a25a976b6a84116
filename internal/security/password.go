package security

import "golang.org/x/crypto/bcrypt"

// PasswordHasher is the one-way credential hashing contract consumed by the
// auth service. Raw passwords are never stored or compared directly.
type PasswordHasher interface {
	Hash(raw string) (string, error)
	Verify(raw, hashed string) bool
}

type BcryptHasher struct {
	cost int
}

func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: bcrypt.DefaultCost}
}

func (h *BcryptHasher) Hash(raw string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(raw), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (h *BcryptHasher) Verify(raw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(raw)) == nil
}
