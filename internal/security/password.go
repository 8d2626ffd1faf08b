package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// adminHashCost is the bcrypt work factor for console credentials. Admin
// logins are rare, so the cost leans above the library default.
const adminHashCost = 12

// HashPassword hashes an admin password with bcrypt.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("empty password")
	}
	hash, errHash := bcrypt.GenerateFromPassword([]byte(password), adminHashCost)
	if errHash != nil {
		return "", errHash
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
