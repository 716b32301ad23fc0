package users

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordScheme controls how passwords are stored and compared.
type PasswordScheme interface {
	Name() string
	Hash(password string) (string, error)
	Matches(stored, candidate string) bool
}

// PlaintextPasswords stores passwords as given and compares them for
// equality. It is the compatibility default and must not be used where stored
// credentials need protection.
type PlaintextPasswords struct{}

func (PlaintextPasswords) Name() string { return "plaintext" }

func (PlaintextPasswords) Hash(password string) (string, error) {
	return password, nil
}

func (PlaintextPasswords) Matches(stored, candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}

// BcryptPasswords stores bcrypt hashes.
type BcryptPasswords struct {
	Cost int
}

func (BcryptPasswords) Name() string { return "bcrypt" }

func (b BcryptPasswords) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = BcryptCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (BcryptPasswords) Matches(stored, candidate string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate))
	return err == nil
}

// BcryptCost is the cost factor for bcrypt password hashing
const BcryptCost = 12

var ErrUnknownPasswordScheme = errors.New("unknown password scheme")

// PasswordSchemeByName resolves a configured scheme name.
func PasswordSchemeByName(name string) (PasswordScheme, error) {
	switch name {
	case "", "plaintext":
		return PlaintextPasswords{}, nil
	case "bcrypt":
		return BcryptPasswords{Cost: BcryptCost}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPasswordScheme, name)
	}
}
