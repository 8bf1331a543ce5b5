package util

import "net/mail"

// IsValidEmail reports whether email is a bare address such as
// "name@example.com". Display names and angle brackets are rejected.
func IsValidEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
