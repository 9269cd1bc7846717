package source

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeGzipFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())
	return path
}

func TestSplitReader(t *testing.T) {
	path := writeGzipFile(t, t.TempDir(), "data_0_0_0.csv.gz",
		"id,name\n1,alice\n2,bob\n")

	r, err := newSplitReader(path, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"id", "name"}, r.Columns())

	record, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, []string{"1", "alice"}, record.Values)
	require.Equal(t, []bool{false, false}, record.Null)

	record, err = r.Next()
	require.NoError(t, err)
	require.Equal(t, []string{"2", "bob"}, record.Values)

	_, err = r.Next()
	require.Equal(t, io.EOF, err)

	require.NoError(t, r.Close())
	// the local copy is deleted once the split is consumed
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestSplitReaderPlainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data_0_0_0.csv")
	require.NoError(t, os.WriteFile(path, []byte("id\n1\n"), 0o644))

	r, err := newSplitReader(path, nil)
	require.NoError(t, err)
	record, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, []string{"1"}, record.Values)
	require.NoError(t, r.Close())
}

func TestSplitReaderEmptyFieldIsNull(t *testing.T) {
	path := writeGzipFile(t, t.TempDir(), "data_0_0_0.csv.gz",
		"id,name\n1,\n")

	r, err := newSplitReader(path, nil)
	require.NoError(t, err)
	defer r.Close()

	record, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, []bool{false, true}, record.Null)
}

func TestSplitReaderOnClose(t *testing.T) {
	path := writeGzipFile(t, t.TempDir(), "data_0_0_0.csv.gz", "id\n1\n")

	closed := false
	r, err := newSplitReader(path, func() error {
		closed = true
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, r.Close())
	require.True(t, closed)
}

func TestSplitReaderEmptyFile(t *testing.T) {
	path := writeGzipFile(t, t.TempDir(), "data_0_0_0.csv.gz", "")

	_, err := newSplitReader(path, nil)
	require.Error(t, err)
}
