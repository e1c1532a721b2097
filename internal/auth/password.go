package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost is the bcrypt work factor for stored passwords.
const defaultCost = 12

// ErrInvalidPassword is returned by Verify when the password doesn't match.
var ErrInvalidPassword = errors.New("auth: invalid password")

// PasswordService hashes and checks passwords with bcrypt.
//
// The cost is a field rather than a constant so tests can run at the bcrypt
// minimum (4) instead of paying ~250ms per hash.
type PasswordService struct {
	cost int

	// decoy is a hash of a random-looking string compared against when the
	// username doesn't exist, so "no such user" takes as long as "wrong
	// password".
	decoy []byte
}

// NewPasswordService creates a PasswordService with cost 12.
func NewPasswordService() *PasswordService {
	return NewPasswordServiceWithCost(defaultCost)
}

// NewPasswordServiceWithCost creates a PasswordService with a custom cost.
// Anything below bcrypt.MinCost is raised to it. Do not go below 12 in
// production.
func NewPasswordServiceWithCost(cost int) *PasswordService {
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	decoy, _ := bcrypt.GenerateFromPassword([]byte("storyblog-decoy-password"), cost)
	return &PasswordService{cost: cost, decoy: decoy}
}

// Hash returns the bcrypt hash of plaintext. bcrypt silently truncates input
// past 72 bytes, so longer passwords are rejected instead.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", fmt.Errorf("auth: password must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify returns nil when plaintext matches hash and ErrInvalidPassword when
// it doesn't. The comparison is constant-time.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidPassword
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}

// VerifyMissingUser burns the same bcrypt time as Verify and always fails.
func (p *PasswordService) VerifyMissingUser(plaintext string) error {
	_ = bcrypt.CompareHashAndPassword(p.decoy, []byte(plaintext))
	return ErrInvalidPassword
}
