package source

import (
	"compress/gzip"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/pingcap/errors"

	"github.com/etlcraft/snowbridge/pkg/plugin"
)

// splitReader streams the records of one downloaded split file: gzip on
// the outside, CSV with a header row on the inside. It implements the
// plugin.RecordReader interface.
type splitReader struct {
	file    *os.File
	gz      *gzip.Reader
	csv     *csv.Reader
	columns []string
	onClose func() error
}

func newSplitReader(localPath string, onClose func() error) (*splitReader, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return nil, errors.Annotate(err, "Failed to open downloaded split")
	}
	var gz *gzip.Reader
	var raw io.Reader = file
	if strings.HasSuffix(localPath, ".gz") {
		gz, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, errors.Annotate(err, "Downloaded split is not valid gzip")
		}
		raw = gz
	}
	csvReader := csv.NewReader(raw)
	header, err := csvReader.Read()
	if err != nil {
		if gz != nil {
			gz.Close()
		}
		file.Close()
		if err == io.EOF {
			return nil, errors.New("Split file has no header row")
		}
		return nil, errors.Annotate(err, "Failed to read split header")
	}
	return &splitReader{
		file:    file,
		gz:      gz,
		csv:     csvReader,
		columns: header,
		onClose: onClose,
	}, nil
}

// Columns returns the header of the split.
func (r *splitReader) Columns() []string {
	return r.columns
}

// Next returns the next record, or io.EOF after the last one. Empty
// fields are reported as NULL, matching the NULL_IF='' unload option.
func (r *splitReader) Next() (plugin.Record, error) {
	row, err := r.csv.Read()
	if err == io.EOF {
		return plugin.Record{}, io.EOF
	}
	if err != nil {
		return plugin.Record{}, errors.Annotate(err, "Failed to parse split record")
	}
	null := make([]bool, len(row))
	for i, v := range row {
		null[i] = v == ""
	}
	return plugin.Record{Columns: r.columns, Values: row, Null: null}, nil
}

func (r *splitReader) Close() error {
	name := r.file.Name()
	if r.gz != nil {
		r.gz.Close()
	}
	r.file.Close()
	// drop the local copy, the staged file is the source of truth
	if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
		return errors.Trace(err)
	}
	if r.onClose != nil {
		return r.onClose()
	}
	return nil
}
