package sink

import (
	"github.com/etlcraft/snowbridge/pkg/metrics"
	"github.com/etlcraft/snowbridge/pkg/plugin"
	"github.com/etlcraft/snowbridge/pkg/snowsql"
)

type Config struct {
	Snowflake *snowsql.Config

	// TargetTable is where staged batches are loaded on Close.
	TargetTable string

	// MaxFileSize bounds a staged batch in bytes. A batch is flushed
	// before the write that would exceed it. Zero means a single batch.
	MaxFileSize int

	// StageName names an internal stage to create and use for batches.
	// Empty means a per-run directory under the user stage.
	StageName string

	// AutoCreateTable creates the target table from the record schema if
	// it does not exist yet.
	AutoCreateTable bool

	// OnError is the COPY INTO ON_ERROR mode. Empty means ABORT_STATEMENT.
	OnError snowsql.OnErrorMode

	// Metrics is optional; nil disables reporting.
	Metrics *metrics.Metrics
}

func (c *Config) Validate(fc *plugin.FailureCollector) {
	c.Snowflake.Validate(fc)
	if c.TargetTable == "" {
		fc.Addf("target table is required")
	}
	if c.MaxFileSize < 0 {
		fc.Addf("max file size must not be negative")
	}
	switch c.OnError {
	case "", snowsql.OnErrorAbort, snowsql.OnErrorContinue, snowsql.OnErrorSkipFile:
	default:
		fc.Addf("unknown on-error mode %q", c.OnError)
	}
}

func (c *Config) onError() snowsql.OnErrorMode {
	if c.OnError == "" {
		return snowsql.OnErrorAbort
	}
	return c.OnError
}
