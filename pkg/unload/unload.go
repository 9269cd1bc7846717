package unload

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"

	"github.com/etlcraft/snowbridge/pkg/plugin"
	"github.com/etlcraft/snowbridge/pkg/sferror"
	"github.com/etlcraft/snowbridge/pkg/snowsql"
	"github.com/etlcraft/snowbridge/pkg/utils"
)

// Action unloads a table or query into files, either on cloud storage
// (through a throwaway external stage) or on an existing stage.
type Action struct {
	accessor *snowsql.Accessor
	config   *Config
}

func NewAction(config *Config) (*Action, error) {
	fc := plugin.NewFailureCollector()
	config.Validate(fc)
	if err := fc.OrError(); err != nil {
		return nil, errors.Trace(err)
	}
	accessor, err := snowsql.NewAccessor(config.Snowflake)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &Action{accessor: accessor, config: config}, nil
}

// GenUnloadOptions renders the COPY INTO output options of a config.
func GenUnloadOptions(config *Config) string {
	opts := []string{
		fmt.Sprintf("HEADER = %t", config.Header),
		fmt.Sprintf("OVERWRITE = %t", config.Overwrite),
		fmt.Sprintf("SINGLE = %t", config.SingleFile),
	}
	if config.IncludeQueryId {
		opts = append(opts, "INCLUDE_QUERY_ID = TRUE")
	}
	if config.MaxFileSize > 0 {
		opts = append(opts, fmt.Sprintf("MAX_FILE_SIZE = %d", config.MaxFileSize))
	}
	if config.PartitionBy != "" {
		opts = append(opts, fmt.Sprintf("PARTITION BY (%s)", config.PartitionBy))
	}
	return strings.Join(opts, " ")
}

// GenUnloadStatement builds the COPY INTO <location> statement.
func GenUnloadStatement(target string, config *Config) string {
	source := config.SourceTable
	if source == "" {
		source = "(" + utils.RemoveSemicolon(config.SourceQuery) + ")"
	}
	return fmt.Sprintf(`COPY INTO @%s
FROM %s
FILE_FORMAT = (TYPE = 'CSV' COMPRESSION = GZIP FIELD_OPTIONALLY_ENCLOSED_BY = '"' NULL_IF = '' EMPTY_FIELD_AS_NULL = FALSE)
%s`, target, source, GenUnloadOptions(config))
}

// Run executes the unload. A cloud storage destination gets a temporary
// external stage that is dropped afterwards.
func (a *Action) Run(ctx context.Context) error {
	db := a.accessor.DB()
	target := a.config.DestinationStage
	if a.config.StorageURL != "" {
		stageName := "snowbridge_unload_" + strings.ReplaceAll(uuid.NewString(), "-", "")
		if err := snowsql.CreateExternalStage(db, stageName, a.config.StorageURL, a.config.Credentials); err != nil {
			return errors.Annotate(err, "Failed to create stage")
		}
		defer func() {
			if err := snowsql.DropStage(db, stageName); err != nil {
				log.Warn("Failed to drop unload stage", zap.String("stage", stageName), zap.Error(err))
			}
		}()
		target = stageName
	}
	stmt := GenUnloadStatement(target, a.config)
	log.Info("Unloading", zap.String("target", "@"+target))
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return sferror.WrapSQL(err, "Failed to unload into @%s", target)
	}
	return nil
}

func (a *Action) Close() error {
	return a.accessor.Close()
}
