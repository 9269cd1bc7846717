package plugin

// Record is one tabular row moving through the pipeline. Values are kept in
// CSV text form; Null marks which positions carried SQL NULL.
type Record struct {
	Columns []string
	Values  []string
	Null    []bool
}

// Field describes one column of a query result or a target table.
type Field struct {
	Name     string
	Type     FieldType
	Nullable bool
}

// FieldType is the connector-level data type of a field.
type FieldType string

const (
	FieldTypeString    FieldType = "string"
	FieldTypeInt       FieldType = "int"
	FieldTypeFloat     FieldType = "float"
	FieldTypeDecimal   FieldType = "decimal"
	FieldTypeBoolean   FieldType = "boolean"
	FieldTypeBytes     FieldType = "bytes"
	FieldTypeDate      FieldType = "date"
	FieldTypeTime      FieldType = "time"
	FieldTypeTimestamp FieldType = "timestamp"
)

// Schema is the ordered field list of a record stream.
type Schema []Field

// ColumnNames returns the field names in schema order.
func (s Schema) ColumnNames() []string {
	names := make([]string, 0, len(s))
	for _, f := range s {
		names = append(names, f.Name)
	}
	return names
}
