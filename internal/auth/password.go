package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// scrypt parameters, 64 byte derived key
const (
	scryptN      = 16384
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 64
	saltLen      = 16
)

// absentHash stands in for users without a stored password so failed logins
// spend the same scrypt work whether or not the username exists.
var absentHash = strings.Repeat("5a", scryptKeyLen) + "." + strings.Repeat("c3", saltLen)

var deriveKey = scrypt.Key

// HashPassword derives a salted scrypt hash stored as "<hex hash>.<hex salt>".
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	hash, err := deriveKey([]byte(password), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return hex.EncodeToString(hash) + "." + hex.EncodeToString(salt), nil
}

// VerifyPassword recomputes the hash with the stored salt and compares in constant time.
// Malformed stored values never match.
func VerifyPassword(password, stored string) bool {
	hashHex, saltHex, ok := strings.Cut(stored, ".")
	if !ok {
		return false
	}

	expected, err := hex.DecodeString(hashHex)
	if err != nil || len(expected) == 0 {
		return false
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil || len(salt) == 0 {
		return false
	}

	actual, err := deriveKey([]byte(password), salt, scryptN, scryptR, scryptP, len(expected))
	if err != nil {
		return false
	}

	return subtle.ConstantTimeCompare(actual, expected) == 1
}

// CheckPassword is VerifyPassword for login. An empty stored value is still
// hashed against absentHash and always fails.
func CheckPassword(password, stored string) bool {
	if stored == "" {
		VerifyPassword(password, absentHash)
		return false
	}
	return VerifyPassword(password, stored)
}
