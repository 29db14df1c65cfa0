package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jurisio/casebrain/internal/domain/document"
	"github.com/jurisio/casebrain/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/jurisio/casebrain/pkg/errors"
	"github.com/jurisio/casebrain/pkg/types/common"
)

// DocumentRepository is the PostgreSQL implementation of document.Repository.
type DocumentRepository struct {
	pool *pgxpool.Pool
	log  logging.Logger
}

// NewDocumentRepository constructs a ready-to-use DocumentRepository.
func NewDocumentRepository(pool *pgxpool.Pool, log logging.Logger) *DocumentRepository {
	return &DocumentRepository{pool: pool, log: log}
}

// ListDocuments returns all document records for a case, upload date ascending.
func (r *DocumentRepository) ListDocuments(ctx context.Context, caseID common.ID) ([]document.Document, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, case_id, name, mime_type, storage_key, size_bytes, uploaded_at
		 FROM documents WHERE case_id = $1 ORDER BY uploaded_at`, caseID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "failed to list documents")
	}
	defer rows.Close()

	var out []document.Document
	for rows.Next() {
		var d document.Document
		if err := rows.Scan(&d.ID, &d.CaseID, &d.Name, &d.MimeType,
			&d.StorageKey, &d.SizeBytes, &d.UploadedAt); err != nil {
			return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "failed to scan document")
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
