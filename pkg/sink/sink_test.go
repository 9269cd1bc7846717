package sink

import (
	"context"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/etlcraft/snowbridge/pkg/snowsql"
)

func newTestSink(t *testing.T, uploader Uploader) (*Sink, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	config := &Config{TargetTable: "users"}
	s := &Sink{
		accessor:  snowsql.NewAccessorWithDB(db),
		config:    config,
		stagePath: "~/snowbridge_stage/sink_test",
	}
	s.writer = NewRecordWriter(uploader, s.stagePath, config)
	return s, mock
}

func TestSinkClose(t *testing.T) {
	s, mock := newTestSink(t, newCaptureUploader())
	require.NoError(t, s.Write(context.Background(), testRecord("0")))

	mock.ExpectExec("(?s)COPY INTO users.*ON_ERROR = ABORT_STATEMENT").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("REMOVE").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectClose()

	require.NoError(t, s.Close(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSinkCloseFlushFailure(t *testing.T) {
	uploader := newCaptureUploader()
	uploader.err = fmt.Errorf("stage unavailable")
	s, mock := newTestSink(t, uploader)
	require.NoError(t, s.Write(context.Background(), testRecord("0")))

	// the stage is still cleaned up and the connection released
	mock.ExpectExec("REMOVE").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectClose()

	require.Error(t, s.Close(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSinkCloseCopyFailure(t *testing.T) {
	s, mock := newTestSink(t, newCaptureUploader())
	require.NoError(t, s.Write(context.Background(), testRecord("0")))

	mock.ExpectExec("COPY INTO users").WillReturnError(fmt.Errorf("load failed"))
	mock.ExpectExec("REMOVE").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectClose()

	require.Error(t, s.Close(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSinkCloseEmptyInput(t *testing.T) {
	s, mock := newTestSink(t, newCaptureUploader())

	// nothing staged, so no COPY INTO is issued
	mock.ExpectExec("REMOVE").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectClose()

	require.NoError(t, s.Close(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
