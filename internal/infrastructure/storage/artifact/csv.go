package artifact

import (
	"bytes"
	"encoding/csv"
	"os"

	"github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
)

// SaveCSV writes a header row followed by data rows to path, atomically.
func SaveCSV(path string, header []string, rows [][]string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(header); err != nil {
		return errors.Wrapf(err, errors.ErrCodeSerialization, "failed to encode CSV header for %s", path)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return errors.Wrapf(err, errors.ErrCodeSerialization, "failed to encode CSV row for %s", path)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrapf(err, errors.ErrCodeSerialization, "failed to flush CSV for %s", path)
	}

	return writeAtomic(path, buf.Bytes())
}

// LoadCSV reads a CSV file written by SaveCSV and returns the header row and
// the data rows separately.
func LoadCSV(path string) (header []string, rows [][]string, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.Wrapf(err, errors.ErrCodeNotFound, "artifact not found: %s", path)
		}
		return nil, nil, errors.Wrapf(err, errors.ErrCodeStorageError, "failed to read artifact %s", path)
	}

	r := csv.NewReader(bytes.NewReader(raw))
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, errors.Wrapf(err, errors.ErrCodeDataFormat, "malformed CSV artifact %s", path)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}
	return records[0], records[1:], nil
}
