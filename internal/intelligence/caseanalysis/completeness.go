package caseanalysis

import (
	"strings"

	"github.com/jurisio/casebrain/internal/domain/caserecord"
	"github.com/jurisio/casebrain/internal/domain/document"
	intcommon "github.com/jurisio/casebrain/internal/intelligence/common"
	"github.com/jurisio/casebrain/pkg/types/brain"
)

// defaultChecklists is the per-matter expected-document table.  Keywords are
// matched against the normalized concatenation of all document names; the
// fallback checklist (MatterOther) covers matters without a dedicated table.
func defaultChecklists() map[caserecord.MatterType][]ChecklistSpec {
	return map[caserecord.MatterType][]ChecklistSpec{
		caserecord.MatterCivil: {
			{Name: "initiating_act", Label: "Acte introductif (citation ou requête)", Importance: brain.ImportanceCritical, Keywords: []string{"citation", "requête"}},
			{Name: "mandate", Label: "Mandat ou procuration", Importance: brain.ImportanceCritical, Keywords: []string{"mandat", "procuration"}},
			{Name: "conclusions", Label: "Conclusions", Importance: brain.ImportanceCritical, Keywords: []string{"conclusions"}},
			{Name: "exhibits", Label: "Inventaire des pièces", Importance: brain.ImportanceImportant, Keywords: []string{"pièces", "inventaire"}},
			{Name: "judgment", Label: "Jugement ou ordonnance", Importance: brain.ImportanceImportant, Keywords: []string{"jugement", "ordonnance"}},
			{Name: "correspondence", Label: "Correspondance", Importance: brain.ImportanceImportant, Keywords: []string{"courrier", "correspondance", "lettre"}},
		},
		caserecord.MatterCommercial: {
			{Name: "contract", Label: "Contrat", Importance: brain.ImportanceCritical, Keywords: []string{"contrat", "convention"}},
			{Name: "formal_notice", Label: "Mise en demeure", Importance: brain.ImportanceCritical, Keywords: []string{"mise en demeure"}},
			{Name: "invoices", Label: "Factures", Importance: brain.ImportanceImportant, Keywords: []string{"facture"}},
			{Name: "conclusions", Label: "Conclusions", Importance: brain.ImportanceImportant, Keywords: []string{"conclusions"}},
			{Name: "correspondence", Label: "Correspondance", Importance: brain.ImportanceImportant, Keywords: []string{"courrier", "correspondance", "lettre"}},
		},
		caserecord.MatterFamily: {
			{Name: "petition", Label: "Requête", Importance: brain.ImportanceCritical, Keywords: []string{"requête"}},
			{Name: "civil_status", Label: "Actes d'état civil", Importance: brain.ImportanceCritical, Keywords: []string{"acte de mariage", "acte de naissance", "état civil"}},
			{Name: "agreement", Label: "Convention", Importance: brain.ImportanceImportant, Keywords: []string{"convention", "accord"}},
			{Name: "income_proof", Label: "Preuves de revenus", Importance: brain.ImportanceImportant, Keywords: []string{"revenus", "fiche de paie", "avertissement-extrait"}},
		},
		caserecord.MatterPenal: {
			{Name: "summons", Label: "Citation à comparaître", Importance: brain.ImportanceCritical, Keywords: []string{"citation"}},
			{Name: "police_report", Label: "Procès-verbal", Importance: brain.ImportanceCritical, Keywords: []string{"procès-verbal", "pv "}},
			{Name: "criminal_record", Label: "Extrait de casier judiciaire", Importance: brain.ImportanceImportant, Keywords: []string{"casier"}},
			{Name: "judgment", Label: "Jugement", Importance: brain.ImportanceImportant, Keywords: []string{"jugement"}},
		},
		caserecord.MatterFiscal: {
			{Name: "assessment", Label: "Avertissement-extrait de rôle", Importance: brain.ImportanceCritical, Keywords: []string{"avertissement-extrait", "rôle"}},
			{Name: "objection", Label: "Réclamation", Importance: brain.ImportanceCritical, Keywords: []string{"réclamation"}},
			{Name: "tax_return", Label: "Déclaration fiscale", Importance: brain.ImportanceImportant, Keywords: []string{"déclaration"}},
		},
		caserecord.MatterSocial: {
			{Name: "employment_contract", Label: "Contrat de travail", Importance: brain.ImportanceCritical, Keywords: []string{"contrat de travail"}},
			{Name: "dismissal_letter", Label: "Lettre de licenciement", Importance: brain.ImportanceCritical, Keywords: []string{"licenciement"}},
			{Name: "c4", Label: "Formulaire C4", Importance: brain.ImportanceImportant, Keywords: []string{"c4"}},
			{Name: "payslips", Label: "Fiches de paie", Importance: brain.ImportanceImportant, Keywords: []string{"fiche de paie", "paie"}},
		},
		caserecord.MatterOther: {
			{Name: "mandate", Label: "Mandat ou procuration", Importance: brain.ImportanceCritical, Keywords: []string{"mandat", "procuration"}},
			{Name: "correspondence", Label: "Correspondance", Importance: brain.ImportanceImportant, Keywords: []string{"courrier", "correspondance", "lettre"}},
		},
	}
}

// AnalyzeCompleteness checks the case's documents against the checklist of
// its matter type.  The matter parameter overrides the case's own matter
// type when non-empty; unknown matters use the fallback checklist.  Score is
// the fraction of present elements, 0 with an empty document set.
func (a *Analyzer) AnalyzeCompleteness(
	c *caserecord.Case,
	contacts []caserecord.CaseContact,
	docs []document.Document,
	matter caserecord.MatterType,
) *brain.CompletenessReport {
	if matter == "" && c != nil {
		matter = c.MatterType
	}
	specs, ok := a.cfg.Checklists[matter]
	if !ok {
		specs = a.cfg.Checklists[caserecord.MatterOther]
	}

	var names []string
	for i := range docs {
		names = append(names, docs[i].Name)
	}
	corpus := intcommon.NormalizeText(strings.Join(names, " "))

	report := &brain.CompletenessReport{MatterType: string(matter)}
	if c != nil {
		report.CaseID = string(c.ID)
	}

	var present int
	for _, spec := range specs {
		item := brain.ChecklistItem{
			Name:       spec.Name,
			Label:      spec.Label,
			Importance: spec.Importance,
		}
		for _, kw := range spec.Keywords {
			if corpus != "" && strings.Contains(corpus, intcommon.NormalizeText(kw)) {
				item.Present = true
				item.MatchedBy = kw
				break
			}
		}
		if item.Present {
			present++
		} else {
			switch spec.Importance {
			case brain.ImportanceCritical:
				report.MissingCritical = append(report.MissingCritical, spec.Name)
			default:
				report.MissingImportant = append(report.MissingImportant, spec.Name)
			}
		}
		report.Items = append(report.Items, item)
	}

	if len(specs) > 0 {
		report.Score = intcommon.Clamp(float64(present) / float64(len(specs)) * 100)
	}
	return report
}
