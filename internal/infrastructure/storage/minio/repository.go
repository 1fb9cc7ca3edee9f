package minio

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
)

// DocumentStore reads raw ruling documents and archives pipeline
// artifacts. The raw bucket is the ingest source when the input is a
// minio:// URL; the artifacts bucket mirrors the local JSON/CSV outputs.
type DocumentStore struct {
	api             StorageAPI
	rawBucket       string
	artifactsBucket string
	logger          logging.Logger
}

// NewDocumentStore builds a store on a connected client.
func NewDocumentStore(client *Client, log logging.Logger) *DocumentStore {
	return newDocumentStore(client, client.RawBucket(), client.ArtifactsBucket(), log)
}

func newDocumentStore(api StorageAPI, rawBucket, artifactsBucket string, log logging.Logger) *DocumentStore {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &DocumentStore{
		api:             api,
		rawBucket:       rawBucket,
		artifactsBucket: artifactsBucket,
		logger:          log.Named("documents"),
	}
}

// ListDocuments returns the .txt object keys under prefix, sorted.
func (s *DocumentStore) ListDocuments(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	for info := range s.api.ListObjects(ctx, s.rawBucket, prefix) {
		if info.Err != nil {
			return nil, errors.Wrap(info.Err, errors.ErrCodeStorageError, "list documents")
		}
		if strings.HasSuffix(info.Key, ".txt") {
			keys = append(keys, info.Key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// ReadDocument loads one raw ruling text.
func (s *DocumentStore) ReadDocument(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.api.GetObject(ctx, s.rawBucket, key)
	if err != nil {
		if isNoSuchKey(err) {
			return nil, errors.Newf(errors.ErrCodeNotFound, "document %s not found", key)
		}
		return nil, errors.Wrapf(err, errors.ErrCodeStorageError, "open document %s", key)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if isNoSuchKey(err) {
			return nil, errors.Newf(errors.ErrCodeNotFound, "document %s not found", key)
		}
		return nil, errors.Wrapf(err, errors.ErrCodeStorageError, "read document %s", key)
	}
	return data, nil
}

// SaveArtifact uploads one pipeline artifact (JSON or CSV) to the
// artifacts bucket.
func (s *DocumentStore) SaveArtifact(ctx context.Context, key string, data []byte) error {
	contentType := "application/json"
	if strings.HasSuffix(key, ".csv") {
		contentType = "text/csv"
	}
	err := s.api.PutObject(ctx, s.artifactsBucket, key, bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		return errors.Wrapf(err, errors.ErrCodeStorageError, "save artifact %s", key)
	}
	s.logger.Debug("artifact uploaded",
		logging.String("key", key),
		logging.Int("bytes", len(data)))
	return nil
}

// ReadArtifact downloads one archived artifact.
func (s *DocumentStore) ReadArtifact(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.api.GetObject(ctx, s.artifactsBucket, key)
	if err != nil {
		if isNoSuchKey(err) {
			return nil, errors.Newf(errors.ErrCodeNotFound, "artifact %s not found", key)
		}
		return nil, errors.Wrapf(err, errors.ErrCodeStorageError, "open artifact %s", key)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if isNoSuchKey(err) {
			return nil, errors.Newf(errors.ErrCodeNotFound, "artifact %s not found", key)
		}
		return nil, errors.Wrapf(err, errors.ErrCodeStorageError, "read artifact %s", key)
	}
	return data, nil
}

// ArtifactExists reports whether an artifact is already archived.
func (s *DocumentStore) ArtifactExists(ctx context.Context, key string) (bool, error) {
	_, err := s.api.StatObject(ctx, s.artifactsBucket, key)
	if err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, errors.ErrCodeStorageError, "stat artifact %s", key)
	}
	return true, nil
}

// DeleteArtifact removes one archived artifact.
func (s *DocumentStore) DeleteArtifact(ctx context.Context, key string) error {
	if err := s.api.RemoveObject(ctx, s.artifactsBucket, key); err != nil {
		return errors.Wrapf(err, errors.ErrCodeStorageError, "delete artifact %s", key)
	}
	return nil
}

// PresignArtifact returns a time-limited download URL for an artifact.
func (s *DocumentStore) PresignArtifact(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := s.api.PresignedGet(ctx, s.artifactsBucket, key, expiry)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrCodeStorageError, "presign artifact %s", key)
	}
	return u, nil
}

func isNoSuchKey(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket"
}
