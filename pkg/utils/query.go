package utils

import (
	"fmt"
	"strings"
)

// RemoveSemicolon strips a trailing semicolon from a query so it can be
// embedded into a COPY INTO or subselect.
func RemoveSemicolon(query string) string {
	return strings.TrimSuffix(strings.TrimSpace(query), ";")
}

// LimitQuery wraps a query into a subselect with a LIMIT clause.
func LimitQuery(query string, limit int) string {
	return fmt.Sprintf("SELECT * FROM (%s) LIMIT %d", RemoveSemicolon(query), limit)
}

// SplitTableFQN splits a full-qualified table name into schema and table name
// e.g. "myschema.mytable" -> "myschema", "mytable"
// Note: this function does not check if the input is a valid table name
func SplitTableFQN(tableFQN string) (string, string) {
	parts := strings.SplitN(tableFQN, ".", 2)
	if len(parts) < 2 {
		return "", ""
	}
	return parts[0], parts[1]
}
