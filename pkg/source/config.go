package source

import (
	"strings"

	"github.com/etlcraft/snowbridge/pkg/plugin"
	"github.com/etlcraft/snowbridge/pkg/snowsql"
)

type Config struct {
	Snowflake *snowsql.Config

	// ImportQuery is the SELECT whose result the source emits.
	ImportQuery string

	// MaxSplitSize bounds the size of each staged result file in bytes.
	// Zero keeps the warehouse default.
	MaxSplitSize int64

	// CleanupSplits removes each staged file after it has been fully read.
	CleanupSplits bool

	// WorkDir is where staged files are downloaded before parsing.
	// Empty means the system temp directory.
	WorkDir string
}

func (c *Config) Validate(fc *plugin.FailureCollector) {
	c.Snowflake.Validate(fc)
	if strings.TrimSpace(c.ImportQuery) == "" {
		fc.Addf("import query is required")
	}
	if c.MaxSplitSize < 0 {
		fc.Addf("max split size must not be negative")
	}
}
