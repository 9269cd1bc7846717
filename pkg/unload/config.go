package unload

import (
	"net/url"

	"github.com/aws/aws-sdk-go/aws/credentials"

	"github.com/etlcraft/snowbridge/pkg/plugin"
	"github.com/etlcraft/snowbridge/pkg/snowsql"
)

type Config struct {
	Snowflake *snowsql.Config

	// Exactly one of SourceTable and SourceQuery must be set.
	SourceTable string
	SourceQuery string

	// StorageURL is an s3://<bucket>/<path> destination. Empty means the
	// unload goes to DestinationStage instead.
	StorageURL string
	// Credentials authorize the external stage backing StorageURL.
	Credentials *credentials.Value

	// DestinationStage is a stage path ("mystage/dir" or "~/dir") used
	// when no cloud storage URL is given.
	DestinationStage string

	// Output options, mirrored onto the COPY INTO statement.
	Header         bool
	SingleFile     bool
	Overwrite      bool
	IncludeQueryId bool
	MaxFileSize    int64
	PartitionBy    string
}

func (c *Config) Validate(fc *plugin.FailureCollector) {
	c.Snowflake.Validate(fc)
	if (c.SourceTable == "") == (c.SourceQuery == "") {
		fc.Addf("exactly one of source table and source query is required")
	}
	if c.StorageURL == "" && c.DestinationStage == "" {
		fc.Addf("a cloud storage url or a destination stage is required")
	}
	if c.StorageURL != "" {
		uri, err := url.Parse(c.StorageURL)
		if err != nil || uri.Scheme != "s3" {
			fc.Addf("storage url must be s3://<bucket>/<path>")
		}
		if c.Credentials == nil {
			fc.Addf("credentials are required for a cloud storage destination")
		}
	}
	if c.SingleFile && c.PartitionBy != "" {
		fc.Addf("partition-by cannot be combined with a single-file unload")
	}
	if c.MaxFileSize < 0 {
		fc.Addf("max file size must not be negative")
	}
}
