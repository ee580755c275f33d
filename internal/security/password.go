// Package security wraps credential handling primitives. Profiles store only
// bcrypt hashes; the login endpoint verifies a submitted password against the
// stored hash without issuing any session or token.
package security

import "golang.org/x/crypto/bcrypt"

// PasswordHasher wraps bcrypt hashing and verification.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher with the given bcrypt cost. A cost of 0
// falls back to bcrypt.DefaultCost.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash derives a bcrypt hash from the plaintext password.
func (h *PasswordHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether plain matches the stored hash. A nil error means
// the password is correct.
func (h *PasswordHasher) Verify(plain, hashed string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
