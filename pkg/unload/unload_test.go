package unload_test

import (
	"testing"

	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/stretchr/testify/require"

	"github.com/etlcraft/snowbridge/pkg/plugin"
	"github.com/etlcraft/snowbridge/pkg/snowsql"
	"github.com/etlcraft/snowbridge/pkg/unload"
)

func validSnowflakeConfig() *snowsql.Config {
	return &snowsql.Config{
		AccountId: "myorg-myaccount",
		User:      "loader",
		Pass:      "secret",
	}
}

func TestGenUnloadStatementFromTable(t *testing.T) {
	stmt := unload.GenUnloadStatement("mystage/export", &unload.Config{
		SourceTable: "users",
		Header:      true,
		Overwrite:   true,
	})
	require.Equal(t, `COPY INTO @mystage/export
FROM users
FILE_FORMAT = (TYPE = 'CSV' COMPRESSION = GZIP FIELD_OPTIONALLY_ENCLOSED_BY = '"' NULL_IF = '' EMPTY_FIELD_AS_NULL = FALSE)
HEADER = true OVERWRITE = true SINGLE = false`, stmt)
}

func TestGenUnloadStatementFromQuery(t *testing.T) {
	stmt := unload.GenUnloadStatement("mystage/export", &unload.Config{
		SourceQuery: "SELECT id FROM users;",
	})
	require.Contains(t, stmt, "FROM (SELECT id FROM users)")
}

func TestGenUnloadOptions(t *testing.T) {
	opts := unload.GenUnloadOptions(&unload.Config{
		Header:         true,
		SingleFile:     true,
		IncludeQueryId: true,
		MaxFileSize:    5000000,
	})
	require.Equal(t, "HEADER = true OVERWRITE = false SINGLE = true INCLUDE_QUERY_ID = TRUE MAX_FILE_SIZE = 5000000", opts)

	opts = unload.GenUnloadOptions(&unload.Config{
		PartitionBy: "to_date(created_at)",
	})
	require.Contains(t, opts, "PARTITION BY (to_date(created_at))")
}

func TestConfigValidate(t *testing.T) {
	fc := plugin.NewFailureCollector()
	config := &unload.Config{
		Snowflake:   validSnowflakeConfig(),
		SourceTable: "users",
		StorageURL:  "s3://bucket/export",
		Credentials: &credentials.Value{AccessKeyID: "AKIA", SecretAccessKey: "secret"},
	}
	config.Validate(fc)
	require.True(t, fc.Empty())
}

func TestConfigValidateSource(t *testing.T) {
	// neither table nor query
	fc := plugin.NewFailureCollector()
	config := &unload.Config{
		Snowflake:        validSnowflakeConfig(),
		DestinationStage: "mystage",
	}
	config.Validate(fc)
	require.False(t, fc.Empty())

	// both table and query
	fc = plugin.NewFailureCollector()
	config.SourceTable = "users"
	config.SourceQuery = "SELECT 1"
	config.Validate(fc)
	require.False(t, fc.Empty())
}

func TestConfigValidateStorage(t *testing.T) {
	// not an s3 url
	fc := plugin.NewFailureCollector()
	config := &unload.Config{
		Snowflake:   validSnowflakeConfig(),
		SourceTable: "users",
		StorageURL:  "gs://bucket/export",
		Credentials: &credentials.Value{},
	}
	config.Validate(fc)
	require.False(t, fc.Empty())

	// missing credentials
	fc = plugin.NewFailureCollector()
	config.StorageURL = "s3://bucket/export"
	config.Credentials = nil
	config.Validate(fc)
	require.False(t, fc.Empty())

	// no destination at all
	fc = plugin.NewFailureCollector()
	config.StorageURL = ""
	config.Validate(fc)
	require.False(t, fc.Empty())
}

func TestConfigValidateSingleFilePartitionConflict(t *testing.T) {
	fc := plugin.NewFailureCollector()
	config := &unload.Config{
		Snowflake:        validSnowflakeConfig(),
		SourceTable:      "users",
		DestinationStage: "mystage",
		SingleFile:       true,
		PartitionBy:      "to_date(created_at)",
	}
	config.Validate(fc)
	require.False(t, fc.Empty())
}
