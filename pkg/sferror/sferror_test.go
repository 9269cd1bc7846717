package sferror_test

import (
	"testing"

	"github.com/pingcap/errors"
	"github.com/snowflakedb/gosnowflake"
	"github.com/stretchr/testify/require"

	"github.com/etlcraft/snowbridge/pkg/sferror"
)

func TestClassifyByErrorNumber(t *testing.T) {
	kind, category := sferror.Classify(&gosnowflake.SnowflakeError{
		Number:   390100,
		SQLState: "08001",
		Message:  "Incorrect username or password was specified.",
	})
	// the error number table takes precedence over the SQLSTATE
	require.Equal(t, sferror.KindUser, kind)
	require.Equal(t, sferror.CategoryInvalidAuth, category)

	kind, category = sferror.Classify(&gosnowflake.SnowflakeError{Number: 1003})
	require.Equal(t, sferror.KindUser, kind)
	require.Equal(t, sferror.CategorySyntaxError, category)

	kind, category = sferror.Classify(&gosnowflake.SnowflakeError{Number: 604})
	require.Equal(t, sferror.KindSystem, kind)
	require.Equal(t, sferror.CategoryQueryCanceled, category)
}

func TestClassifyBySQLState(t *testing.T) {
	kind, category := sferror.Classify(&gosnowflake.SnowflakeError{SQLState: "0A000"})
	require.Equal(t, sferror.KindUser, kind)
	require.Equal(t, sferror.CategoryFeatureNotSupported, category)

	// unlisted SQLSTATEs fall back to their two-byte class
	kind, category = sferror.Classify(&gosnowflake.SnowflakeError{SQLState: "22018"})
	require.Equal(t, sferror.KindUser, kind)
	require.Equal(t, sferror.CategoryDataException, category)

	kind, category = sferror.Classify(&gosnowflake.SnowflakeError{SQLState: "08003"})
	require.Equal(t, sferror.KindSystem, kind)
	require.Equal(t, sferror.CategoryConnectionError, category)
}

func TestClassifyUnknown(t *testing.T) {
	kind, category := sferror.Classify(&gosnowflake.SnowflakeError{SQLState: "99999"})
	require.Equal(t, sferror.KindUnknown, kind)
	require.Equal(t, sferror.CategoryGeneric, category)

	kind, category = sferror.Classify(errors.New("not a snowflake error"))
	require.Equal(t, sferror.KindUnknown, kind)
	require.Equal(t, sferror.CategoryGeneric, category)
}

func TestClassifyWrapped(t *testing.T) {
	cause := &gosnowflake.SnowflakeError{Number: 2003, SQLState: "42S02"}
	kind, category := sferror.Classify(errors.Annotate(cause, "query failed"))
	require.Equal(t, sferror.KindUser, kind)
	require.Equal(t, sferror.CategorySyntaxError, category)
}

func TestWrapSQL(t *testing.T) {
	require.NoError(t, sferror.WrapSQL(nil, "should pass through"))

	cause := &gosnowflake.SnowflakeError{
		Number:   390100,
		SQLState: "28000",
		Message:  "Incorrect username or password was specified.",
	}
	err := sferror.WrapSQL(cause, "Failed to open connection to %s", "myaccount")
	require.Error(t, err)

	var classified *sferror.Error
	require.ErrorAs(t, err, &classified)
	require.Equal(t, sferror.KindUser, classified.Kind)
	require.Equal(t, sferror.CategoryInvalidAuth, classified.Category)
	require.Equal(t, 390100, classified.Number)
	require.Equal(t, "28000", classified.SQLState)

	require.Contains(t, err.Error(), "Failed to open connection to myaccount")
	require.Contains(t, err.Error(), "SQLSTATE 28000")
	require.Contains(t, err.Error(), "INVALID_AUTHORIZATION_SPECIFICATION")
	require.Contains(t, err.Error(), sferror.TroubleshootingURL)

	// the driver error stays reachable for callers that need it
	var se *gosnowflake.SnowflakeError
	require.ErrorAs(t, err, &se)
	require.Equal(t, 390100, se.Number)
}
