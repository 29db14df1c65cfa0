package brain

import "github.com/jurisio/casebrain/pkg/types/common"

// DocumentType is one of the eight recognized legal document categories, or
// "unknown" when no pattern scored.
type DocumentType string

const (
	DocContract        DocumentType = "contract"
	DocJudgment        DocumentType = "judgment"
	DocSummons         DocumentType = "summons"
	DocConclusions     DocumentType = "conclusions"
	DocCorrespondence  DocumentType = "correspondence"
	DocInvoice         DocumentType = "invoice"
	DocPowerOfAttorney DocumentType = "power_of_attorney"
	DocExpertReport    DocumentType = "expert_report"
	DocUnknown         DocumentType = "unknown"
)

// ClauseCategory names a clause extraction rule family.
type ClauseCategory string

const (
	ClauseObligation      ClauseCategory = "obligation"
	ClauseDeadline        ClauseCategory = "deadline"
	ClausePenalty         ClauseCategory = "penalty"
	ClauseTermination     ClauseCategory = "termination"
	ClauseJurisdiction    ClauseCategory = "jurisdiction"
	ClauseConfidentiality ClauseCategory = "confidentiality"
)

// DocumentClassification is the outcome of type/sub-type/language detection.
// Confidence is the winning score normalized by the total score over all
// types, in [0,1]; an unintelligible text yields DocUnknown with confidence 0.
type DocumentClassification struct {
	Type       DocumentType `json:"type"`
	SubType    string       `json:"sub_type,omitempty"`
	Language   string       `json:"language"` // fr | nl | en | de | unknown
	Confidence float64      `json:"confidence"`
}

// Clause is one extracted clause, truncated at 500 characters and
// de-duplicated by normalized text.
type Clause struct {
	Category ClauseCategory `json:"category"`
	Text     string         `json:"text"`
}

// ExtractedEntities carries the parties, dates, amounts and legal references
// found in a document.  Dates are normalized to ISO 8601 (YYYY-MM-DD);
// amounts are normalized from Belgian thousands/decimal separators.
type ExtractedEntities struct {
	Parties   []string  `json:"parties,omitempty"`
	Dates     []string  `json:"dates,omitempty"`
	Amounts   []float64 `json:"amounts,omitempty"`
	LegalRefs []string  `json:"legal_refs,omitempty"`
}

// DocumentRisk flags a concerning clause or pattern.
type DocumentRisk struct {
	Label    string           `json:"label"`
	Severity common.RiskLevel `json:"severity"`
	Excerpt  string           `json:"excerpt,omitempty"`
}

// DocumentAnalysisResult is the full analysis of one document.
type DocumentAnalysisResult struct {
	DocumentName    string                 `json:"document_name,omitempty"`
	Classification  DocumentClassification `json:"classification"`
	Clauses         []Clause               `json:"clauses,omitempty"`
	Entities        ExtractedEntities      `json:"entities"`
	Risks           []DocumentRisk         `json:"risks,omitempty"`
	MissingElements []string               `json:"missing_elements,omitempty"`
	Summary         []string               `json:"summary,omitempty"`
}
