package sink

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/etlcraft/snowbridge/pkg/metrics"
	"github.com/etlcraft/snowbridge/pkg/plugin"
)

// Uploader uploads one finished batch to the stage path.
type Uploader interface {
	UploadStream(ctx context.Context, r io.Reader, stagePath, fileName string) error
}

// RecordWriter batches records into size-bounded CSV files and uploads
// each finished batch to the destination stage path.
type RecordWriter struct {
	uploader    Uploader
	stagePath   string
	maxFileSize int

	buffer *CSVBuffer
	// sizeCheck renders the next record in isolation so the flush decision
	// can be made before the main buffer grows past the limit.
	sizeCheck *CSVBuffer
	batchSeq  int

	pipeline       string
	bytesCounter   *prometheus.CounterVec
	batchesCounter *prometheus.CounterVec
	rowsCounter    *prometheus.CounterVec
	errorCounter   *prometheus.CounterVec
}

func NewRecordWriter(uploader Uploader, stagePath string, config *Config) *RecordWriter {
	w := &RecordWriter{
		uploader:    uploader,
		stagePath:   stagePath,
		maxFileSize: config.MaxFileSize,
		buffer:      NewCSVBuffer(true),
		sizeCheck:   NewCSVBuffer(false),
		pipeline:    config.TargetTable,
	}
	if config.Metrics != nil {
		w.bytesCounter = config.Metrics.BytesStagedCounter
		w.batchesCounter = config.Metrics.BatchesUploadedCounter
		w.rowsCounter = config.Metrics.RowsWrittenCounter
		w.errorCounter = config.Metrics.ErrorCounter
	}
	return w
}

// Write buffers one record. The batch is flushed first when adding the
// record would push the buffered size past the limit.
func (w *RecordWriter) Write(ctx context.Context, record plugin.Record) error {
	w.sizeCheck.Reset()
	if err := w.sizeCheck.Write(record); err != nil {
		return errors.Annotate(err, "Failed to render record for the size check")
	}
	if w.maxFileSize > 0 && w.buffer.Size()+w.sizeCheck.Size() > w.maxFileSize {
		if err := w.Flush(ctx); err != nil {
			return errors.Trace(err)
		}
	}
	if err := w.buffer.Write(record); err != nil {
		return errors.Trace(err)
	}
	metrics.AddCounter(w.rowsCounter, 1, w.pipeline)
	return nil
}

// Flush uploads the current batch, if any, and starts a new one.
func (w *RecordWriter) Flush(ctx context.Context) error {
	if w.buffer.RecordCount() == 0 {
		return nil
	}
	fileName := fmt.Sprintf("batch_%06d.csv", w.batchSeq)
	size := w.buffer.Size()
	if err := w.uploader.UploadStream(ctx, bytes.NewReader(w.buffer.Bytes()), w.stagePath, fileName); err != nil {
		metrics.AddCounter(w.errorCounter, 1, w.pipeline)
		return errors.Trace(err)
	}
	log.Info("Uploaded batch to stage",
		zap.String("stage", w.stagePath),
		zap.String("file", fileName),
		zap.Int("records", w.buffer.RecordCount()),
		zap.Int("bytes", size))
	metrics.AddCounter(w.bytesCounter, float64(size), w.pipeline)
	metrics.AddCounter(w.batchesCounter, 1, w.pipeline)
	w.batchSeq++
	w.buffer.Reset()
	return nil
}
