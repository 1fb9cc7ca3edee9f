package ingestion

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
)

// DirSource reads ruling text files from a local directory.
type DirSource struct {
	dir string
}

// NewDirSource validates the directory up front so a typo fails fast.
func NewDirSource(dir string) (*DirSource, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeBadRequest, "input directory %s", dir)
	}
	if !info.IsDir() {
		return nil, errors.Newf(errors.ErrCodeBadRequest, "input path %s is not a directory", dir)
	}
	return &DirSource{dir: dir}, nil
}

// List returns the .txt file names in the directory, non-recursive.
func (d *DirSource) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeStorageError, "read directory %s", d.dir)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".txt") {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// Read returns one document's raw bytes.
func (d *DirSource) Read(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(d.dir, name))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeStorageError, "read %s", name)
	}
	return data, nil
}

// objectStore is the slice of the MinIO document store the object source
// needs.
type objectStore interface {
	ListDocuments(ctx context.Context, prefix string) ([]string, error)
	ReadDocument(ctx context.Context, key string) ([]byte, error)
}

// ObjectSource reads ruling text files from an object-storage prefix.
type ObjectSource struct {
	store  objectStore
	prefix string
}

// NewObjectSource wraps an object store under a key prefix.
func NewObjectSource(store objectStore, prefix string) *ObjectSource {
	return &ObjectSource{store: store, prefix: prefix}
}

// List returns the object keys under the prefix.
func (o *ObjectSource) List(ctx context.Context) ([]string, error) {
	return o.store.ListDocuments(ctx, o.prefix)
}

// Read returns one object's raw bytes.
func (o *ObjectSource) Read(ctx context.Context, key string) ([]byte, error) {
	return o.store.ReadDocument(ctx, key)
}
