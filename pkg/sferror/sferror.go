package sferror

import (
	"fmt"

	"github.com/pingcap/errors"
	"github.com/snowflakedb/gosnowflake"
)

// TroubleshootingURL is included in surfaced error messages so that
// pipeline operators can look up the vendor error themselves.
const TroubleshootingURL = "https://docs.snowflake.com/en/user-guide/client-connectivity-troubleshooting/error-messages"

// Error is a classified Snowflake failure. It keeps the vendor error
// number and SQLSTATE so the host runtime can report them verbatim.
type Error struct {
	Kind     Kind
	Category Category
	Number   int
	SQLState string
	Reason   string
	cause    error
}

func (e *Error) Error() string {
	if e.SQLState == "" {
		return fmt.Sprintf("%s: %v", e.Reason, e.cause)
	}
	return fmt.Sprintf("%s (SQLSTATE %s, error %d, category %s): %v. For more details see %s",
		e.Reason, e.SQLState, e.Number, e.Category, e.cause, TroubleshootingURL)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Classify resolves the kind and category for an error. The error number
// table wins over the SQLSTATE table; a bare SQLSTATE falls back to its
// two-byte class. Anything unrecognized is KindUnknown/CategoryGeneric.
func Classify(err error) (Kind, Category) {
	var se *gosnowflake.SnowflakeError
	if !errors.As(err, &se) {
		return KindUnknown, CategoryGeneric
	}
	if c, ok := errorNumberTable[se.Number]; ok {
		return c.Kind, c.Category
	}
	if c, ok := sqlStateTable[se.SQLState]; ok {
		return c.Kind, c.Category
	}
	if len(se.SQLState) >= 2 {
		if c, ok := sqlStateTable[se.SQLState[:2]]; ok {
			return c.Kind, c.Category
		}
	}
	return KindUnknown, CategoryGeneric
}

// WrapSQL classifies a failed statement and wraps it with a reason. The
// reason should name the operation, not restate the SQL error.
func WrapSQL(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	kind, category := Classify(err)
	wrapped := &Error{
		Kind:     kind,
		Category: category,
		Reason:   fmt.Sprintf(format, args...),
		cause:    err,
	}
	var se *gosnowflake.SnowflakeError
	if errors.As(err, &se) {
		wrapped.Number = se.Number
		wrapped.SQLState = se.SQLState
	}
	return wrapped
}
