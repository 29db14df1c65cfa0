package docintel

import (
	"reflect"
	"strings"
	"testing"

	intcommon "github.com/jurisio/casebrain/internal/intelligence/common"
	"github.com/jurisio/casebrain/pkg/types/brain"
)

const leaseContract = `Entre les soussignés, la société Immobel SA, ci-après dénommée « le Bailleur », et Monsieur Jean Dupont, ci-après dénommé « le Preneur », il est convenu ce qui suit.

Le présent contrat de bail a pour objet la location d'un appartement situé à Bruxelles. Le bail est conclu pour une durée déterminée de neuf ans à dater du 01/09/2025.

Le preneur s'engage à payer un loyer mensuel de 850,00 € au plus tard le cinquième jour de chaque mois. À défaut de paiement, une clause pénale de 10% sera appliquée.

Le bailleur pourra résilier le contrat en cas de manquement grave. Les tribunaux de l'arrondissement de Bruxelles sont seuls compétents.

Fait à Bruxelles, le 01/08/2025, en deux exemplaires.`

func TestClassifyContract(t *testing.T) {
	c := NewClassifier()
	got := c.Classify(leaseContract, "contrat_bail.pdf")

	if got.Type != brain.DocContract {
		t.Fatalf("Type = %s, want %s", got.Type, brain.DocContract)
	}
	if got.SubType != "lease" {
		t.Errorf("SubType = %q, want %q", got.SubType, "lease")
	}
	if got.Language != "fr" {
		t.Errorf("Language = %q, want %q", got.Language, "fr")
	}
	if got.Confidence <= 0.5 {
		t.Errorf("Confidence = %v, want > 0.5", got.Confidence)
	}
}

func TestClassifyUnknown(t *testing.T) {
	c := NewClassifier()
	for _, text := range []string{"", "xyzzy plugh 12345 foobar"} {
		got := c.Classify(text, "")
		if got.Type != brain.DocUnknown {
			t.Errorf("Classify(%q).Type = %s, want %s", text, got.Type, brain.DocUnknown)
		}
		if got.Confidence != 0 {
			t.Errorf("Classify(%q).Confidence = %v, want 0", text, got.Confidence)
		}
	}
}

func TestClassifyFilenameHint(t *testing.T) {
	c := NewClassifier()
	got := c.Classify("zzz zzz zzz", "Facture_2025-06.pdf")
	if got.Type != brain.DocInvoice {
		t.Fatalf("Type = %s, want %s", got.Type, brain.DocInvoice)
	}
}

func TestClassifyTypes(t *testing.T) {
	tests := []struct {
		name string
		text string
		want brain.DocumentType
	}{
		{
			name: "judgment",
			text: "En cause de Dupont contre Janssens. Par ces motifs, le tribunal condamne la partie défenderesse aux dépens. Jugement prononcé le 12 mars 2025.",
			want: brain.DocJudgment,
		},
		{
			name: "summons",
			text: "L'an deux mille vingt-cinq, à la requête de la SA Immobel, je soussigné huissier de justice signifie la présente citation à comparaître devant le tribunal.",
			want: brain.DocSummons,
		},
		{
			name: "conclusions",
			text: "Conclusions principales pour le concluant. À ces causes, plaise au tribunal de déclarer la demande recevable et fondée.",
			want: brain.DocConclusions,
		},
		{
			name: "correspondence",
			text: "Cher Confrère, suite à notre entretien de ce jour, je vous confirme la position de ma cliente. Je vous prie d'agréer, Cher Confrère, mes salutations distinguées.",
			want: brain.DocCorrespondence,
		},
		{
			name: "invoice",
			text: "Note d'honoraires. Numéro de facture: 2025-042. Montant total: 1.250,00 € TVA comprise. Conditions de paiement: trente jours.",
			want: brain.DocInvoice,
		},
		{
			name: "power of attorney",
			text: "Procuration. Le mandant donne pouvoir au mandataire de le représenter. Le présent mandat spécial est valable six mois.",
			want: brain.DocPowerOfAttorney,
		},
		{
			name: "expert report",
			text: "Rapport d'expertise. L'expert soussigné, désigné par ordonnance, a exécuté sa mission d'expertise et consigne ses constatations ci-après.",
			want: brain.DocExpertReport,
		},
	}
	c := NewClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.text, "")
			if got.Type != tt.want {
				t.Errorf("Type = %s, want %s", got.Type, tt.want)
			}
		})
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"le tribunal est dans la ville pour que les parties", "fr"},
		{"het hof een vonnis van de rechtbank niet voor deze partijen", "nl"},
		{"the court of appeal shall decide that this contract is void with costs", "en"},
		{"der vertrag wird nicht für die parteien mit einer frist ist", "de"},
		{"zzz 123", "unknown"},
		// equal marker counts fall back to French
		{"le the", "fr"},
	}
	c := NewClassifier()
	for _, tt := range tests {
		got := c.detectLanguage(intcommon.NormalizeText(tt.text))
		if got != tt.want {
			t.Errorf("detectLanguage(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestAnalyzeComposition(t *testing.T) {
	c := NewClassifier()
	got := c.Analyze(leaseContract, "contrat_bail.pdf")

	if got.Classification.Type != brain.DocContract {
		t.Fatalf("Classification.Type = %s, want %s", got.Classification.Type, brain.DocContract)
	}
	if len(got.Clauses) == 0 {
		t.Error("Clauses is empty")
	}
	wantParties := []string{"le Bailleur", "le Preneur", "Jean Dupont", "Immobel SA"}
	if !reflect.DeepEqual(got.Entities.Parties, wantParties) {
		t.Errorf("Parties = %v, want %v", got.Entities.Parties, wantParties)
	}
	wantDates := []string{"2025-09-01", "2025-08-01"}
	if !reflect.DeepEqual(got.Entities.Dates, wantDates) {
		t.Errorf("Dates = %v, want %v", got.Entities.Dates, wantDates)
	}
	if len(got.Entities.Amounts) != 1 || got.Entities.Amounts[0] != 850 {
		t.Errorf("Amounts = %v, want [850]", got.Entities.Amounts)
	}
	foundPenalty := false
	for _, r := range got.Risks {
		if r.Label == "clause pénale" {
			foundPenalty = true
		}
	}
	if !foundPenalty {
		t.Errorf("Risks = %v, want a clause pénale entry", got.Risks)
	}
	if len(got.MissingElements) != 0 {
		t.Errorf("MissingElements = %v, want none", got.MissingElements)
	}
	if len(got.Summary) < 3 {
		t.Fatalf("Summary = %v, want at least 3 points", got.Summary)
	}
	if !strings.Contains(got.Summary[0], "classé") {
		t.Errorf("Summary[0] = %q, want classification point", got.Summary[0])
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	c := NewClassifier()
	first := c.Analyze(leaseContract, "contrat_bail.pdf")
	for i := 0; i < 3; i++ {
		again := c.Analyze(leaseContract, "contrat_bail.pdf")
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs from first run", i+2)
		}
	}
}
