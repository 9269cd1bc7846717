package source

import (
	"context"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"

	"github.com/etlcraft/snowbridge/pkg/plugin"
	"github.com/etlcraft/snowbridge/pkg/snowsql"
)

// Stage directory must be unique per run, so that parallel pipelines do
// not mix their result files and a failed run leaves no stale files for
// the next one to pick up.
const stageDirPrefix = "snowbridge_stage/result_"

// Accessor implements the batch source: it unloads the import query into
// a per-run user stage directory and streams each staged file back as
// records. It implements the plugin.Source interface.
type Accessor struct {
	accessor  *snowsql.Accessor
	config    *Config
	stagePath string
	workDir   string
}

func NewAccessor(config *Config) (*Accessor, error) {
	fc := plugin.NewFailureCollector()
	config.Validate(fc)
	if err := fc.OrError(); err != nil {
		return nil, errors.Trace(err)
	}
	accessor, err := snowsql.NewAccessor(config.Snowflake)
	if err != nil {
		return nil, errors.Trace(err)
	}
	workDir, err := os.MkdirTemp(config.WorkDir, "snowbridge-source-")
	if err != nil {
		accessor.Close()
		return nil, errors.Annotate(err, "Failed to create work directory")
	}
	return &Accessor{
		accessor:  accessor,
		config:    config,
		stagePath: "~/" + stageDirPrefix + uuid.NewString(),
		workDir:   workDir,
	}, nil
}

// Schema derives the output schema of the import query.
func (s *Accessor) Schema(ctx context.Context) (plugin.Schema, error) {
	return s.accessor.DescribeQuery(ctx, s.config.ImportQuery)
}

// PrepareSplits copies the query result into staged files and returns one
// split per file. An empty result yields zero splits.
func (s *Accessor) PrepareSplits(ctx context.Context) ([]plugin.Split, error) {
	log.Info("Unloading query into stage", zap.String("stage", s.stagePath))
	db := s.accessor.DB()
	if err := snowsql.UnloadQueryToStage(db, s.stagePath, s.config.ImportQuery, s.config.MaxSplitSize); err != nil {
		return nil, errors.Trace(err)
	}
	files, err := snowsql.ListStage(db, s.stagePath)
	if err != nil {
		return nil, errors.Trace(err)
	}
	splits := make([]plugin.Split, 0, len(files))
	for _, f := range files {
		// LIST on the user stage reports paths relative to the stage root
		splits = append(splits, plugin.Split{File: f.Name, Size: f.Size})
	}
	log.Info("Stage splits prepared",
		zap.String("stage", s.stagePath), zap.Int("splits", len(splits)))
	return splits, nil
}

// OpenSplit downloads one staged file and opens a record stream over it.
// When cleanup is enabled the staged file is removed once the stream is
// closed.
func (s *Accessor) OpenSplit(ctx context.Context, split plugin.Split) (plugin.RecordReader, error) {
	db := s.accessor.DB()
	if err := snowsql.GetStageFile(ctx, db, "~/"+split.File, s.workDir); err != nil {
		return nil, errors.Trace(err)
	}
	localPath := filepath.Join(s.workDir, path.Base(split.File))
	reader, err := newSplitReader(localPath, func() error {
		if !s.config.CleanupSplits {
			return nil
		}
		return snowsql.RemoveStageFile(db, "~/"+split.File)
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return reader, nil
}

// Close removes the stage directory and releases the connection.
func (s *Accessor) Close() error {
	db := s.accessor.DB()
	if err := snowsql.RemoveStageFile(db, s.stagePath); err != nil {
		log.Warn("Failed to clean up stage directory",
			zap.String("stage", s.stagePath), zap.Error(err))
	}
	if err := os.RemoveAll(s.workDir); err != nil {
		log.Warn("Failed to clean up work directory",
			zap.String("dir", s.workDir), zap.Error(err))
	}
	return s.accessor.Close()
}
