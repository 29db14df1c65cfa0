package minio

import (
	"bytes"
	"context"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/minio/minio-go/v7"

	"github.com/jurisio/casebrain/internal/infrastructure/monitoring/logging"
	"github.com/jurisio/casebrain/pkg/errors"
)

// maxTextBytes caps how much extracted text a single document may contribute
// to an analysis.  Larger objects are truncated at read time.
const maxTextBytes = 2 * 1024 * 1024

const textContentType = "text/plain; charset=utf-8"

var ErrObjectNotFound = errors.New(errors.ErrCodeDocumentNotFound, "document text not found in object store")

// BlobStore reads and writes extracted document text in the documents bucket
// and analysis exports in the exports bucket.  It implements
// document.BlobStore for the analysis orchestrator.
type BlobStore struct {
	client *Client
	logger logging.Logger
}

func NewBlobStore(client *Client, logger logging.Logger) *BlobStore {
	return &BlobStore{client: client, logger: logger}
}

// FetchText returns the extracted plain text stored under storageKey.
func (s *BlobStore) FetchText(ctx context.Context, storageKey string) (string, error) {
	if storageKey == "" {
		return "", errors.New(errors.ErrCodeValidation, "storage key is empty")
	}
	bucket := s.client.Config().Buckets.Documents

	stat, err := s.client.API().StatObject(ctx, bucket, storageKey, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return "", ErrObjectNotFound.WithDetail(storageKey)
		}
		return "", errors.Wrap(err, errors.ErrCodeDocumentFetchFailed, "failed to stat document text")
	}

	obj, err := s.client.API().GetObject(ctx, bucket, storageKey, minio.GetObjectOptions{})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeDocumentFetchFailed, "failed to open document text")
	}
	defer obj.Close()

	data, err := io.ReadAll(io.LimitReader(obj, maxTextBytes))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeDocumentFetchFailed, "failed to read document text")
	}
	if stat.Size > maxTextBytes {
		s.logger.Warn("Document text truncated",
			logging.String("storage_key", storageKey),
			logging.Int64("size", stat.Size))
	}
	return sanitizeText(data), nil
}

// PutText stores extracted plain text under storageKey in the documents
// bucket and returns the key.
func (s *BlobStore) PutText(ctx context.Context, storageKey, text string) error {
	if storageKey == "" {
		return errors.New(errors.ErrCodeValidation, "storage key is empty")
	}
	bucket := s.client.Config().Buckets.Documents
	reader := strings.NewReader(text)
	_, err := s.client.API().PutObject(ctx, bucket, storageKey, reader, int64(reader.Len()), minio.PutObjectOptions{
		ContentType: textContentType,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "failed to store document text")
	}
	return nil
}

// Exists reports whether an object is present under storageKey.
func (s *BlobStore) Exists(ctx context.Context, storageKey string) (bool, error) {
	bucket := s.client.Config().Buckets.Documents
	_, err := s.client.API().StatObject(ctx, bucket, storageKey, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, errors.Wrap(err, errors.ErrCodeExternalService, "failed to stat object")
	}
	return true, nil
}

// Delete removes the object under storageKey.  Deleting a missing object is
// not an error.
func (s *BlobStore) Delete(ctx context.Context, storageKey string) error {
	bucket := s.client.Config().Buckets.Documents
	if err := s.client.API().RemoveObject(ctx, bucket, storageKey, minio.RemoveObjectOptions{}); err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "failed to delete object")
	}
	return nil
}

// PresignedDownloadURL returns a time-limited download link for the document
// text.  A zero expiry falls back to the configured default.
func (s *BlobStore) PresignedDownloadURL(ctx context.Context, storageKey string, expiry time.Duration) (string, error) {
	if expiry == 0 {
		expiry = s.client.Config().PresignExpiry
	}
	bucket := s.client.Config().Buckets.Documents
	u, err := s.client.API().PresignedGetObject(ctx, bucket, storageKey, expiry, nil)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeExternalService, "failed to presign download URL")
	}
	return u.String(), nil
}

// StoreExport writes a generated artifact (summary dumps, reports) into the
// exports bucket, where the lifecycle rule expires it.
func (s *BlobStore) StoreExport(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if name == "" {
		return "", errors.New(errors.ErrCodeValidation, "export name is empty")
	}
	bucket := s.client.Config().Buckets.Exports
	_, err := s.client.API().PutObject(ctx, bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeExternalService, "failed to store export")
	}
	return bucket + "/" + name, nil
}

// sanitizeText drops a trailing partial rune left by truncation and trims
// surrounding whitespace.  Truncation can split at most one rune, so at most
// utf8.UTFMax-1 bytes are stripped.
func sanitizeText(data []byte) string {
	for i := 0; i < utf8.UTFMax-1 && len(data) > 0; i++ {
		if utf8.Valid(data) {
			break
		}
		data = data[:len(data)-1]
	}
	return strings.TrimSpace(string(data))
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
