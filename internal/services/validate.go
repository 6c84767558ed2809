package services

import (
	"net/mail"
	"strings"
)

// normalizeEmail trims the address and rejects anything net/mail cannot parse as a bare address.
func normalizeEmail(field, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", invalid(field, field+" is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", invalid(field, field+" is not a valid email address")
	}
	return email, nil
}

func required(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", invalid(field, field+" is required")
	}
	return value, nil
}
