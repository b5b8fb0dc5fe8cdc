// ABOUTME: Password hashing and verification for admin users
// ABOUTME: bcrypt with constant-time behavior for unknown usernames

package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when the username does not exist, so a
// login attempt costs the same whether or not the account is real.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMye1VdLZHUlvO6FQfPqfFpB4sWZGmCjgDu"

// HashPassword hashes a plaintext password with bcrypt at the default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password against a stored bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// CheckPasswordDummy burns a bcrypt comparison against a throwaway hash.
// Call it on the username-not-found path to keep login timing constant.
func CheckPasswordDummy(password string) {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
}
