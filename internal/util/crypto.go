package util

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/pbkdf2"
)

// CryptoRandomBytes reads length bytes from crypto/rand.
func CryptoRandomBytes(length int64) ([]byte, error) {
	buf := make([]byte, length)
	_, err := rand.Read(buf)
	return buf, err
}

// CryptoRandomString returns length random hex characters. Used for
// link salts and CSRF tokens.
func CryptoRandomString(length int) (string, error) {
	bytes, err := CryptoRandomBytes(int64((length + 1) / 2))
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes)[:length], nil
}

// HashToken returns the PBKDF2 hash of a sign-in link secret with salt.
func HashToken(token, salt string) string {
	hash := pbkdf2.Key([]byte(token), []byte(salt), 10000, 50, sha256.New)
	return hex.EncodeToString(hash)
}

// VerifyToken compares a secret against a stored PBKDF2 hash in constant time.
func VerifyToken(token, salt, hash string) bool {
	return subtle.ConstantTimeCompare([]byte(HashToken(token, salt)), []byte(hash)) == 1
}
