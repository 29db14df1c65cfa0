package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jurisio/casebrain/internal/domain/document"
	"github.com/jurisio/casebrain/internal/infrastructure/monitoring/logging"
	"github.com/jurisio/casebrain/pkg/types/common"
)

type stubDocRepo struct {
	docs []document.Document
	err  error
}

func (s *stubDocRepo) ListDocuments(_ context.Context, caseID common.ID) ([]document.Document, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []document.Document
	for _, d := range s.docs {
		if d.CaseID == caseID {
			out = append(out, d)
		}
	}
	return out, nil
}

type stubSigner struct {
	url string
	err error
	key string
}

func (s *stubSigner) PresignedDownloadURL(_ context.Context, storageKey string, _ time.Duration) (string, error) {
	s.key = storageKey
	return s.url, s.err
}

func serveDocs(h *DocumentHandler, target string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Get("/cases/{caseID}/documents", h.List)
	r.Get("/cases/{caseID}/documents/{documentID}/url", h.DownloadURL)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestListDocuments(t *testing.T) {
	repo := &stubDocRepo{docs: []document.Document{
		{ID: "d-1", CaseID: "c-1", Name: "conclusions.pdf", StorageKey: "cases/c-1/d-1.txt"},
		{ID: "d-2", CaseID: "c-2", Name: "other.pdf"},
	}}
	h := NewDocumentHandler(repo, &stubSigner{}, logging.NewNopLogger())

	rec := serveDocs(h, "/cases/c-1/documents")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Documents []document.Document `json:"documents"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Documents, 1)
	assert.Equal(t, "conclusions.pdf", body.Documents[0].Name)
}

func TestListDocumentsEmptyIsArray(t *testing.T) {
	h := NewDocumentHandler(&stubDocRepo{}, &stubSigner{}, logging.NewNopLogger())

	rec := serveDocs(h, "/cases/c-9/documents")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"documents":[]}`, rec.Body.String())
}

func TestDownloadURL(t *testing.T) {
	repo := &stubDocRepo{docs: []document.Document{
		{ID: "d-1", CaseID: "c-1", Name: "conclusions.pdf", StorageKey: "cases/c-1/d-1.txt"},
	}}
	signer := &stubSigner{url: "https://minio.local/docs/signed"}
	h := NewDocumentHandler(repo, signer, logging.NewNopLogger())

	rec := serveDocs(h, "/cases/c-1/documents/d-1/url")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"url":"https://minio.local/docs/signed"}`, rec.Body.String())
	assert.Equal(t, "cases/c-1/d-1.txt", signer.key)
}

func TestDownloadURLUnknownDocument(t *testing.T) {
	h := NewDocumentHandler(&stubDocRepo{}, &stubSigner{}, logging.NewNopLogger())

	rec := serveDocs(h, "/cases/c-1/documents/d-404/url")

	require.Equal(t, http.StatusNotFound, rec.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "DOC_001", body.Code)
}

func TestDownloadURLNoStoredContent(t *testing.T) {
	repo := &stubDocRepo{docs: []document.Document{
		{ID: "d-1", CaseID: "c-1", Name: "scan.pdf"},
	}}
	h := NewDocumentHandler(repo, &stubSigner{}, logging.NewNopLogger())

	rec := serveDocs(h, "/cases/c-1/documents/d-1/url")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
