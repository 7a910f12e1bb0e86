package db

import (
	"fmt"
	"regexp"
)

var schemaPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// ValidateSchema rejects schema names that cannot be interpolated into SQL
// as a bare identifier.
func ValidateSchema(schema string) error {
	if !schemaPattern.MatchString(schema) {
		return fmt.Errorf("invalid schema identifier: %q", schema)
	}
	return nil
}
