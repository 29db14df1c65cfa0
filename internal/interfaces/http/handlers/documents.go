package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jurisio/casebrain/internal/domain/document"
	"github.com/jurisio/casebrain/internal/infrastructure/monitoring/logging"
	"github.com/jurisio/casebrain/pkg/errors"
	"github.com/jurisio/casebrain/pkg/types/common"
)

// URLSigner issues time-limited download links; the minio blob store
// implements it.
type URLSigner interface {
	PresignedDownloadURL(ctx context.Context, storageKey string, expiry time.Duration) (string, error)
}

// DocumentHandler serves case document metadata and download links.
type DocumentHandler struct {
	docs   document.Repository
	signer URLSigner
	logger logging.Logger
}

func NewDocumentHandler(docs document.Repository, signer URLSigner, logger logging.Logger) *DocumentHandler {
	return &DocumentHandler{docs: docs, signer: signer, logger: logger}
}

// List handles GET /cases/{caseID}/documents.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	caseID := common.ID(chi.URLParam(r, "caseID"))
	docs, err := h.docs.ListDocuments(r.Context(), caseID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if docs == nil {
		docs = []document.Document{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// DownloadURL handles GET /cases/{caseID}/documents/{documentID}/url.  It
// resolves the document's storage key and returns a presigned link.
func (h *DocumentHandler) DownloadURL(w http.ResponseWriter, r *http.Request) {
	caseID := common.ID(chi.URLParam(r, "caseID"))
	documentID := common.ID(chi.URLParam(r, "documentID"))

	docs, err := h.docs.ListDocuments(r.Context(), caseID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var target *document.Document
	for i := range docs {
		if docs[i].ID == documentID {
			target = &docs[i]
			break
		}
	}
	if target == nil {
		writeError(w, h.logger, errors.New(errors.ErrCodeDocumentNotFound, "document not found").WithDetail(string(documentID)))
		return
	}
	if target.StorageKey == "" {
		writeError(w, h.logger, errors.New(errors.ErrCodeDocumentNotFound, "document has no stored content").WithDetail(string(documentID)))
		return
	}

	url, err := h.signer.PresignedDownloadURL(r.Context(), target.StorageKey, 0)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
