package auth

import "golang.org/x/crypto/bcrypt"

// HashKey hashes an admin API key with bcrypt.
func HashKey(key string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckKeyHash compares a plain API key against its bcrypt hash.
func CheckKeyHash(key, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key))
	return err == nil
}
