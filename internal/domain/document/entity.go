// Package document defines stored case documents and the ports used to
// retrieve their metadata and content.
package document

import (
	"time"

	"github.com/jurisio/casebrain/pkg/types/common"
)

// Document is the metadata record of a file attached to a case.  The content
// itself lives in object storage under StorageKey.
type Document struct {
	ID         common.ID `json:"id"`
	CaseID     common.ID `json:"case_id"`
	Name       string    `json:"name"`
	MimeType   string    `json:"mime_type,omitempty"`
	StorageKey string    `json:"storage_key,omitempty"`
	SizeBytes  int64     `json:"size_bytes,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}
