package service

import (
	"strings"

	"storefront/internal/model"
)

// validEmail accepts anything shaped local@domain without whitespace.
func validEmail(email string) bool {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || domain == "" {
		return false
	}
	return !strings.ContainsAny(email, " \t\r\n") && !strings.Contains(domain, "@")
}

// requireFields returns a MISSING_FIELD error for the first blank value.
// fields alternates name and value.
func requireFields(fields ...string) error {
	for i := 0; i+1 < len(fields); i += 2 {
		if strings.TrimSpace(fields[i+1]) == "" {
			return model.NewFieldError(model.ErrCodeMissingField, fields[i], "is required")
		}
	}
	return nil
}
