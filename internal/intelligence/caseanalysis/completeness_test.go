package caseanalysis

import (
	"testing"

	"github.com/jurisio/casebrain/internal/domain/caserecord"
	"github.com/jurisio/casebrain/internal/domain/document"
	"github.com/jurisio/casebrain/pkg/types/brain"
)

func doc(name string) document.Document {
	return document.Document{Name: name}
}

func TestCompletenessEmptyCase(t *testing.T) {
	a := newTestAnalyzer()
	report := a.AnalyzeCompleteness(civilCase(), nil, nil, "")
	if report.Score != 0 {
		t.Errorf("score = %v, want 0 with no documents", report.Score)
	}
	if len(report.MissingCritical) == 0 {
		t.Error("expected missing critical elements on an empty civil case")
	}
	for _, item := range report.Items {
		if item.Present {
			t.Errorf("item %s present without documents", item.Name)
		}
	}
}

func TestCompletenessKeywordMatch(t *testing.T) {
	a := newTestAnalyzer()
	docs := []document.Document{
		doc("Citation introductive d'instance.pdf"),
		doc("Conclusions de synthèse.docx"),
	}
	report := a.AnalyzeCompleteness(civilCase(), nil, docs, "")

	byName := map[string]brain.ChecklistItem{}
	for _, item := range report.Items {
		byName[item.Name] = item
	}
	if !byName["initiating_act"].Present {
		t.Error("citation document must satisfy initiating_act")
	}
	if !byName["conclusions"].Present {
		t.Error("conclusions document must satisfy conclusions")
	}
	if byName["mandate"].Present {
		t.Error("mandate must stay missing")
	}
	if report.Score <= 0 || report.Score >= 100 {
		t.Errorf("score = %v, want strictly between 0 and 100", report.Score)
	}
}

func TestCompletenessMonotonicInCoverage(t *testing.T) {
	a := newTestAnalyzer()
	docs := []document.Document{doc("Citation.pdf")}
	before := a.AnalyzeCompleteness(civilCase(), nil, docs, "")

	docs = append(docs, doc("Mandat de représentation.pdf"))
	after := a.AnalyzeCompleteness(civilCase(), nil, docs, "")

	if presentCount(after.Items) != presentCount(before.Items)+1 {
		t.Errorf("present count %d → %d, want exactly +1",
			presentCount(before.Items), presentCount(after.Items))
	}
	if after.Score <= before.Score {
		t.Errorf("score must strictly increase: %v → %v", before.Score, after.Score)
	}
}

func TestCompletenessMatterOverride(t *testing.T) {
	a := newTestAnalyzer()
	docs := []document.Document{doc("Contrat de travail.pdf")}
	report := a.AnalyzeCompleteness(civilCase(), nil, docs, caserecord.MatterSocial)
	if report.MatterType != string(caserecord.MatterSocial) {
		t.Errorf("matter = %s, want social override", report.MatterType)
	}
	var found bool
	for _, item := range report.Items {
		if item.Name == "employment_contract" && item.Present {
			found = true
		}
	}
	if !found {
		t.Error("employment contract must be present under the social checklist")
	}
}

func TestCompletenessUnknownMatterFallsBack(t *testing.T) {
	a := newTestAnalyzer()
	report := a.AnalyzeCompleteness(nil, nil, nil, caserecord.MatterType("maritime"))
	if len(report.Items) == 0 {
		t.Fatal("unknown matter must use the fallback checklist")
	}
}

func TestCompletenessAccentInsensitiveViaNFC(t *testing.T) {
	a := newTestAnalyzer()
	// Same accents, decomposed differently at the byte level.
	docs := []document.Document{doc("Requête unilatérale.pdf")} // ê as e + combining circumflex
	report := a.AnalyzeCompleteness(nil, nil, docs, caserecord.MatterFamily)
	var present bool
	for _, item := range report.Items {
		if item.Name == "petition" && item.Present {
			present = true
		}
	}
	if !present {
		t.Error("NFC normalization must match decomposed accents")
	}
}
