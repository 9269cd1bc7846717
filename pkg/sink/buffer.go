package sink

import (
	"bytes"
	"encoding/csv"

	"github.com/pingcap/errors"

	"github.com/etlcraft/snowbridge/pkg/plugin"
)

// nullMarker is what NULL values become in a staged batch. It matches the
// NULL_IF option of the COPY INTO file format.
const nullMarker = `\N`

// CSVBuffer accumulates records as CSV text before a batch is sent to the
// stage. The header row counts toward Size.
type CSVBuffer struct {
	buf         bytes.Buffer
	writer      *csv.Writer
	printHeader bool
	headerDone  bool
	records     int
}

func NewCSVBuffer(printHeader bool) *CSVBuffer {
	b := &CSVBuffer{printHeader: printHeader}
	b.Reset()
	return b
}

// Write appends one record, emitting the header row first if configured.
func (b *CSVBuffer) Write(record plugin.Record) error {
	if !b.headerDone {
		if err := b.writer.Write(record.Columns); err != nil {
			return errors.Annotate(err, "Failed to write CSV header")
		}
		b.headerDone = true
	}
	row := make([]string, len(record.Values))
	for i, v := range record.Values {
		if i < len(record.Null) && record.Null[i] {
			row[i] = nullMarker
		} else {
			row[i] = v
		}
	}
	if err := b.writer.Write(row); err != nil {
		return errors.Annotate(err, "Failed to write CSV record")
	}
	// flush to the byte buffer, otherwise Size lags behind
	b.writer.Flush()
	if err := b.writer.Error(); err != nil {
		return errors.Trace(err)
	}
	b.records++
	return nil
}

// Size is the buffered batch size in bytes.
func (b *CSVBuffer) Size() int {
	return b.buf.Len()
}

// RecordCount is the number of records in the batch, header excluded.
func (b *CSVBuffer) RecordCount() int {
	return b.records
}

// Bytes returns the batch content. The slice is invalidated by Reset.
func (b *CSVBuffer) Bytes() []byte {
	return b.buf.Bytes()
}

// Reset drops the batch and starts a new one.
func (b *CSVBuffer) Reset() {
	b.buf.Reset()
	b.writer = csv.NewWriter(&b.buf)
	b.headerDone = !b.printHeader
	b.records = 0
}
