package snowsql

import (
	"context"
	"database/sql"
	"io"

	"github.com/pingcap/errors"

	"github.com/etlcraft/snowbridge/pkg/plugin"
	"github.com/etlcraft/snowbridge/pkg/sferror"
	"github.com/etlcraft/snowbridge/pkg/utils"
)

// one row is enough to resolve the result metadata
const describeLimitRows = 1

// Accessor wraps a Snowflake connection with the small set of operations
// the source and sink plugins need.
type Accessor struct {
	db     *sql.DB
	config *Config
}

func NewAccessor(config *Config) (*Accessor, error) {
	db, err := config.OpenDB()
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &Accessor{db: db, config: config}, nil
}

// NewAccessorWithDB wraps an already-open connection pool.
func NewAccessorWithDB(db *sql.DB) *Accessor {
	return &Accessor{db: db}
}

// DB exposes the underlying pool for the SQL helpers.
func (a *Accessor) DB() *sql.DB {
	return a.db
}

// UploadStream uploads the reader's content to the stage path through a
// streamed PUT on this connection.
func (a *Accessor) UploadStream(ctx context.Context, r io.Reader, stagePath, fileName string) error {
	return UploadStream(ctx, a.db, r, stagePath, fileName)
}

// RunSQL executes one statement and classifies any failure.
func (a *Accessor) RunSQL(ctx context.Context, query string) error {
	_, err := a.db.ExecContext(ctx, query)
	return sferror.WrapSQL(err, "Statement %q failed", query)
}

// CheckConnection verifies the connection is still usable.
func (a *Accessor) CheckConnection(ctx context.Context) error {
	if err := a.db.PingContext(ctx); err != nil {
		return sferror.WrapSQL(err, "Cannot reach Snowflake")
	}
	return nil
}

// DescribeQuery resolves the output schema of an import query by running
// it with LIMIT 1 and reading the result metadata.
func (a *Accessor) DescribeQuery(ctx context.Context, query string) (plugin.Schema, error) {
	rows, err := a.db.QueryContext(ctx, utils.LimitQuery(query, describeLimitRows))
	if err != nil {
		return nil, sferror.WrapSQL(err, "Failed to describe query %q", query)
	}
	defer rows.Close()

	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, errors.Annotate(err, "Failed to read result metadata")
	}
	schema := make(plugin.Schema, 0, len(columnTypes))
	for _, ct := range columnTypes {
		fieldType, err := FieldTypeOf(ct)
		if err != nil {
			return nil, errors.Trace(err)
		}
		nullable, _ := ct.Nullable()
		schema = append(schema, plugin.Field{
			Name:     ct.Name(),
			Type:     fieldType,
			Nullable: nullable,
		})
	}
	return schema, nil
}

func (a *Accessor) Close() error {
	return a.db.Close()
}
