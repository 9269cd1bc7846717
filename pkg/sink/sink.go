package sink

import (
	"context"

	"github.com/google/uuid"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"

	"github.com/etlcraft/snowbridge/pkg/plugin"
	"github.com/etlcraft/snowbridge/pkg/snowsql"
)

const sinkStagePrefix = "snowbridge_stage/sink_"

// Sink buffers records into CSV batches, uploads them to a stage and
// loads them into the target table on Close. It implements the
// plugin.Sink interface.
type Sink struct {
	accessor   *snowsql.Accessor
	config     *Config
	writer     *RecordWriter
	stagePath  string
	namedStage bool
}

// NewSink opens the connection, prepares the stage and, if configured,
// creates the target table from the record schema.
func NewSink(config *Config, schema plugin.Schema) (*Sink, error) {
	fc := plugin.NewFailureCollector()
	config.Validate(fc)
	if err := fc.OrError(); err != nil {
		return nil, errors.Trace(err)
	}
	accessor, err := snowsql.NewAccessor(config.Snowflake)
	if err != nil {
		return nil, errors.Trace(err)
	}
	s := &Sink{
		accessor: accessor,
		config:   config,
	}
	if config.StageName != "" {
		if err := snowsql.CreateInternalStage(accessor.DB(), config.StageName); err != nil {
			accessor.Close()
			return nil, errors.Trace(err)
		}
		s.stagePath = config.StageName
		s.namedStage = true
	} else {
		s.stagePath = "~/" + sinkStagePrefix + uuid.NewString()
	}
	if config.AutoCreateTable {
		createQuery, err := snowsql.GenCreateTable(config.TargetTable, schema)
		if err != nil {
			accessor.Close()
			return nil, errors.Trace(err)
		}
		log.Info("Creating target table", zap.String("query", createQuery))
		if err := accessor.RunSQL(context.Background(), createQuery); err != nil {
			accessor.Close()
			return nil, errors.Trace(err)
		}
	}
	s.writer = NewRecordWriter(accessor, s.stagePath, config)
	return s, nil
}

func (s *Sink) Write(ctx context.Context, record plugin.Record) error {
	return s.writer.Write(ctx, record)
}

// Close flushes the remaining batch, loads all staged batches into the
// target table and cleans up the stage. The stage cleanup and the
// connection are not skipped when the flush or the load fails.
func (s *Sink) Close(ctx context.Context) error {
	if err := s.writer.Flush(ctx); err != nil {
		s.cleanupStage()
		s.accessor.Close()
		return errors.Trace(err)
	}
	if s.writer.batchSeq > 0 {
		if err := snowsql.CopyIntoTable(s.accessor.DB(), s.config.TargetTable, s.stagePath, s.config.onError()); err != nil {
			s.cleanupStage()
			s.accessor.Close()
			return errors.Trace(err)
		}
		log.Info("Loaded staged batches into table",
			zap.String("table", s.config.TargetTable),
			zap.Int("batches", s.writer.batchSeq))
	}
	s.cleanupStage()
	return s.accessor.Close()
}

func (s *Sink) cleanupStage() {
	db := s.accessor.DB()
	if s.namedStage {
		if err := snowsql.DropStage(db, s.stagePath); err != nil {
			log.Warn("Failed to drop sink stage", zap.String("stage", s.stagePath), zap.Error(err))
		}
	} else {
		if err := snowsql.RemoveStageFile(db, s.stagePath); err != nil {
			log.Warn("Failed to clean up sink stage path", zap.String("stage", s.stagePath), zap.Error(err))
		}
	}
}
