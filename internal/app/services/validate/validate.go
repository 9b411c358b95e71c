// Package validate holds the input checks shared by the entity services.
package validate

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/R3E-Network/library_service/internal/errors"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

var (
	phonePattern = regexp.MustCompile(`^\d{10}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// ID parses a positive integer identifier.
func ID(field, raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errors.Validation("%s is required", field)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Validation("%s must be a positive integer", field)
	}
	return id, nil
}

// Field is a named input value used by Required.
type Field struct {
	Name  string
	Value string
}

// Required fails listing every field that is empty after trimming.
func Required(fields ...Field) error {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.Value) == "" {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		return errors.Validation("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Date checks a YYYY-MM-DD calendar date and returns it normalised.
func Date(field, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.Validation("%s is required", field)
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return "", errors.Validation("%s must be a date in YYYY-MM-DD format", field)
	}
	return t.Format(DateLayout), nil
}

// Phone checks for exactly ten digits.
func Phone(raw string) error {
	if !phonePattern.MatchString(raw) {
		return errors.Validation("phone must be exactly 10 digits")
	}
	return nil
}

// Email checks the local@domain.tld shape.
func Email(raw string) error {
	if !emailPattern.MatchString(raw) {
		return errors.Validation("invalid email format")
	}
	return nil
}
