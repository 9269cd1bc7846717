package sink

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/etlcraft/snowbridge/pkg/metrics"
	"github.com/etlcraft/snowbridge/pkg/plugin"
)

type captureUploader struct {
	names []string
	files map[string][]byte
	err   error
}

func newCaptureUploader() *captureUploader {
	return &captureUploader{files: make(map[string][]byte)}
}

func (u *captureUploader) UploadStream(_ context.Context, r io.Reader, _, fileName string) error {
	if u.err != nil {
		return u.err
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	u.names = append(u.names, fileName)
	u.files[fileName] = content
	return nil
}

func testRecord(id string) plugin.Record {
	return plugin.Record{
		Columns: []string{"id", "name"},
		Values:  []string{id, "name" + id},
		Null:    []bool{false, false},
	}
}

func TestRecordWriterSingleBatch(t *testing.T) {
	uploader := newCaptureUploader()
	w := NewRecordWriter(uploader, "~/test_stage", &Config{TargetTable: "t", MaxFileSize: 0})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, w.Write(ctx, testRecord(fmt.Sprint(i))))
	}
	// nothing is uploaded until the batch is flushed
	require.Empty(t, uploader.names)

	require.NoError(t, w.Flush(ctx))
	require.Equal(t, []string{"batch_000000.csv"}, uploader.names)
	require.Equal(t, "id,name\n0,name0\n1,name1\n2,name2\n",
		string(uploader.files["batch_000000.csv"]))
}

func TestRecordWriterFlushBeforeOverflow(t *testing.T) {
	uploader := newCaptureUploader()
	// header (8 bytes) plus one record fits, a second record does not
	maxFileSize := len("id,name\n") + len("0,name0\n")
	w := NewRecordWriter(uploader, "~/test_stage", &Config{TargetTable: "t", MaxFileSize: maxFileSize})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, w.Write(ctx, testRecord(fmt.Sprint(i))))
	}
	require.NoError(t, w.Flush(ctx))

	require.Equal(t, []string{"batch_000000.csv", "batch_000001.csv", "batch_000002.csv"}, uploader.names)
	for _, content := range uploader.files {
		require.LessOrEqual(t, len(content), maxFileSize)
	}
	// every batch restarts with the header row
	require.Equal(t, "id,name\n1,name1\n", string(uploader.files["batch_000001.csv"]))
}

func TestRecordWriterEmptyBatchNotUploaded(t *testing.T) {
	uploader := newCaptureUploader()
	w := NewRecordWriter(uploader, "~/test_stage", &Config{TargetTable: "t"})

	require.NoError(t, w.Flush(context.Background()))
	require.Empty(t, uploader.names)

	// flushing twice in a row must not produce an empty file either
	require.NoError(t, w.Write(context.Background(), testRecord("0")))
	require.NoError(t, w.Flush(context.Background()))
	require.NoError(t, w.Flush(context.Background()))
	require.Equal(t, []string{"batch_000000.csv"}, uploader.names)
}

func TestRecordWriterUploadError(t *testing.T) {
	uploader := newCaptureUploader()
	uploader.err = fmt.Errorf("stage unavailable")
	m := metrics.NewMetrics()
	w := NewRecordWriter(uploader, "~/test_stage", &Config{TargetTable: "t", Metrics: m})

	require.NoError(t, w.Write(context.Background(), testRecord("0")))
	require.Error(t, w.Flush(context.Background()))
	// the batch is kept so a retry of Flush can resend it
	require.Equal(t, 1, w.buffer.RecordCount())
	require.Equal(t, float64(1), metrics.ReadCounter(m.ErrorCounter, "t"))

	require.Error(t, w.Flush(context.Background()))
	require.Equal(t, float64(2), metrics.ReadCounter(m.ErrorCounter, "t"))
}
