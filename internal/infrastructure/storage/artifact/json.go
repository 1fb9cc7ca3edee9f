// Package artifact reads and writes the pipeline's persisted artifacts: JSON
// arrays for case bases, query sets and retrieval results, and CSV tables
// for predictions and metric pivots.  Writes are atomic (temp file + rename)
// so a crashed stage never leaves a half-written artifact behind, and loads
// of malformed artifacts fail with a data-format error rather than a decode
// panic downstream.
package artifact

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
)

// LoadJSONArray decodes the artifact at path into a slice of T.  The backing
// file must hold a top-level JSON array of objects; anything else fails with
// ErrCodeDataFormat.
func LoadJSONArray[T any](path string) ([]T, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(err, errors.ErrCodeNotFound, "artifact %s does not exist", path)
		}
		return nil, errors.Wrapf(err, errors.ErrCodeStorageError, "failed to read artifact %s", path)
	}

	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errors.Newf(errors.ErrCodeDataFormat,
			"artifact %s must contain a JSON array", path)
	}

	var records []T
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeDataFormat,
			"artifact %s is not a parseable array", path)
	}
	return records, nil
}

// SaveJSON writes v to path as indented JSON, creating parent directories and
// replacing any existing file atomically.
func SaveJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, errors.ErrCodeSerialization, "failed to encode artifact %s", path)
	}
	return writeAtomic(path, append(data, '\n'))
}

// BackupIfExists renames an existing artifact to path+".backup" before it is
// overwritten, replacing any older backup.  It returns the backup path, or
// "" when there was nothing to back up.
func BackupIfExists(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.Wrapf(err, errors.ErrCodeStorageError, "failed to stat artifact %s", path)
	}

	backup := path + ".backup"
	if err := os.Rename(path, backup); err != nil {
		return "", errors.Wrapf(err, errors.ErrCodeStorageError, "failed to back up artifact %s", path)
	}
	return backup, nil
}

// writeAtomic writes data to a temp file in the target directory and renames
// it over path.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, errors.ErrCodeStorageError, "failed to create artifact directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrapf(err, errors.ErrCodeStorageError, "failed to create temp file for %s", path)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrapf(err, errors.ErrCodeStorageError, "failed to write artifact %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, errors.ErrCodeStorageError, "failed to close artifact %s", path)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, errors.ErrCodeStorageError, "failed to replace artifact %s", path)
	}
	return nil
}
