package document

import (
	"context"

	"github.com/jurisio/casebrain/pkg/types/common"
)

// Repository is the persistence port for document metadata.
type Repository interface {
	// ListDocuments returns all document records for a case, upload date ascending.
	ListDocuments(ctx context.Context, caseID common.ID) ([]Document, error)
}

// BlobStore is the object-storage port used to load document text for
// analysis.  The minio adapter implements it; tests use in-memory fakes.
type BlobStore interface {
	// FetchText returns the extracted plain text for the given storage key.
	// A missing object yields an ErrCodeDocumentNotFound AppError.
	FetchText(ctx context.Context, storageKey string) (string, error)
}
