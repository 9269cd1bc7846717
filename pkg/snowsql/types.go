package snowsql

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/pingcap/errors"

	"github.com/etlcraft/snowbridge/pkg/plugin"
)

// Snowflake2FieldTypeMap maps the driver's DatabaseTypeName to connector
// field types. FIXED is resolved separately since it covers both integers
// and decimals.
var Snowflake2FieldTypeMap = map[string]plugin.FieldType{
	"TEXT":          plugin.FieldTypeString,
	"REAL":          plugin.FieldTypeFloat,
	"BOOLEAN":       plugin.FieldTypeBoolean,
	"BINARY":        plugin.FieldTypeBytes,
	"DATE":          plugin.FieldTypeDate,
	"TIME":          plugin.FieldTypeTime,
	"TIMESTAMP_NTZ": plugin.FieldTypeTimestamp,
	"TIMESTAMP_LTZ": plugin.FieldTypeTimestamp,
	"TIMESTAMP_TZ":  plugin.FieldTypeTimestamp,
	// semi-structured values travel as text through the CSV stage
	"VARIANT": plugin.FieldTypeString,
	"OBJECT":  plugin.FieldTypeString,
	"ARRAY":   plugin.FieldTypeString,
}

// FieldType2SnowflakeMap maps connector field types to the column type
// used when the sink creates the target table.
var FieldType2SnowflakeMap = map[plugin.FieldType]string{
	plugin.FieldTypeString:    "VARCHAR",
	plugin.FieldTypeInt:       "NUMBER(38,0)",
	plugin.FieldTypeFloat:     "FLOAT",
	plugin.FieldTypeDecimal:   "NUMBER",
	plugin.FieldTypeBoolean:   "BOOLEAN",
	plugin.FieldTypeBytes:     "BINARY",
	plugin.FieldTypeDate:      "DATE",
	plugin.FieldTypeTime:      "TIME",
	plugin.FieldTypeTimestamp: "TIMESTAMP_NTZ",
}

// FieldTypeOf resolves the connector field type of one result column.
func FieldTypeOf(ct *sql.ColumnType) (plugin.FieldType, error) {
	dbType := strings.ToUpper(ct.DatabaseTypeName())
	if dbType == "FIXED" {
		if _, scale, ok := ct.DecimalSize(); ok && scale == 0 {
			return plugin.FieldTypeInt, nil
		}
		return plugin.FieldTypeDecimal, nil
	}
	if t, ok := Snowflake2FieldTypeMap[dbType]; ok {
		return t, nil
	}
	return "", errors.Errorf("Unsupported data type: %s", ct.DatabaseTypeName())
}

// GenCreateTable builds a CREATE TABLE IF NOT EXISTS statement for the
// sink target from a connector schema.
func GenCreateTable(targetTable string, schema plugin.Schema) (string, error) {
	if len(schema) == 0 {
		return "", errors.New("Columns in schema is empty")
	}
	columnRows := make([]string, 0, len(schema))
	for _, field := range schema {
		columnType, ok := FieldType2SnowflakeMap[field.Type]
		if !ok {
			return "", errors.Errorf("Unsupported data type: %s", field.Type)
		}
		row := fmt.Sprintf("    %s %s", field.Name, columnType)
		if !field.Nullable {
			row += " NOT NULL"
		}
		columnRows = append(columnRows, row)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n)", targetTable, strings.Join(columnRows, ",\n")), nil
}
