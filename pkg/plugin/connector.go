package plugin

import (
	"context"
)

/// Source and Sink are the contracts the host pipeline runtime drives.
/// The host supplies scheduling and parallelism; implementations only
/// move rows and classify failures.

// Split is one unit of source work, backed by a staged result file.
type Split struct {
	// File is the stage-relative path of the result file.
	File string
	// Size is the compressed file size in bytes as reported by the stage listing.
	Size int64
}

// RecordReader iterates the records of one split. Next returns io.EOF
// after the last record.
type RecordReader interface {
	Next() (Record, error)
	Close() error
}

type Source interface {
	// Schema derives the output schema of the configured import query.
	Schema(ctx context.Context) (Schema, error)
	// PrepareSplits unloads the import query into staged files and returns
	// one split per file.
	PrepareSplits(ctx context.Context) ([]Split, error)
	// OpenSplit opens a record stream over one staged file.
	OpenSplit(ctx context.Context, split Split) (RecordReader, error)
	// Close releases the connection and any remaining staged files.
	Close() error
}

type Sink interface {
	// Write buffers one record, flushing a batch upstream when the
	// configured byte threshold would be exceeded.
	Write(ctx context.Context, record Record) error
	// Close flushes the remaining batch and loads all staged batches into
	// the target table.
	Close(ctx context.Context) error
}
