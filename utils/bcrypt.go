package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes a plaintext password with the default bcrypt cost.
func HashPassword(plain string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
}

// ComparePassword reports whether plain matches the stored bcrypt hash.
// A nil error means the password is correct.
func ComparePassword(hashed string, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
