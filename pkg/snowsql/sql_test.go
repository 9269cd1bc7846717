package snowsql_test

import (
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/etlcraft/snowbridge/pkg/plugin"
	"github.com/etlcraft/snowbridge/pkg/snowsql"
)

func TestGenUnloadQuery(t *testing.T) {
	stmt := snowsql.GenUnloadQuery("~/snowbridge_stage/result_abc", "SELECT id, name FROM users;", 0)
	require.True(t, strings.HasPrefix(stmt, "COPY INTO @~/snowbridge_stage/result_abc/data_\nFROM (SELECT id, name FROM users)\n"))
	require.Contains(t, stmt, "TYPE = 'CSV'")
	require.Contains(t, stmt, "COMPRESSION = GZIP")
	require.Contains(t, stmt, `TIMESTAMP_FORMAT = 'YYYY-MM-DD"T"HH24:MI:SSTZH:TZM'`)
	require.Contains(t, stmt, "OVERWRITE = TRUE HEADER = TRUE SINGLE = FALSE")
	require.NotContains(t, stmt, "MAX_FILE_SIZE")
}

func TestGenUnloadQueryMaxFileSize(t *testing.T) {
	stmt := snowsql.GenUnloadQuery("~/snowbridge_stage/result_abc", "SELECT 1", 10000000)
	require.Contains(t, stmt, "MAX_FILE_SIZE = 10000000")
}

func TestGenCreateTable(t *testing.T) {
	schema := plugin.Schema{
		{Name: "ID", Type: plugin.FieldTypeInt, Nullable: false},
		{Name: "NAME", Type: plugin.FieldTypeString, Nullable: true},
		{Name: "CREATED_AT", Type: plugin.FieldTypeTimestamp, Nullable: true},
	}
	stmt, err := snowsql.GenCreateTable("users", schema)
	require.NoError(t, err)
	require.Equal(t, `CREATE TABLE IF NOT EXISTS users (
    ID NUMBER(38,0) NOT NULL,
    NAME VARCHAR,
    CREATED_AT TIMESTAMP_NTZ
)`, stmt)
}

func TestCopyIntoTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("(?s)COPY INTO users.*FROM @~/snowbridge_stage/sink_abc.*SKIP_HEADER = 1.*ON_ERROR = CONTINUE").
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, snowsql.CopyIntoTable(db, "users", "~/snowbridge_stage/sink_abc", snowsql.OnErrorContinue))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGenCreateTableEmptySchema(t *testing.T) {
	_, err := snowsql.GenCreateTable("users", plugin.Schema{})
	require.Error(t, err)
}

func TestGenCreateTableUnknownType(t *testing.T) {
	_, err := snowsql.GenCreateTable("users", plugin.Schema{
		{Name: "X", Type: plugin.FieldType("geometry")},
	})
	require.Error(t, err)
}
