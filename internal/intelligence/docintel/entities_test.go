package docintel

import (
	"reflect"
	"strings"
	"testing"
)

func TestExtractParties(t *testing.T) {
	text := "Entre les soussignés: la société Immobel SA, ci-après dénommée « le Bailleur », et Monsieur Jean Dupont, ci-après dénommé « le Preneur »."
	c := NewClassifier()
	got := c.extractEntities(text).Parties
	want := []string{"le Bailleur", "le Preneur", "Jean Dupont", "Immobel SA"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parties = %v, want %v", got, want)
	}
}

func TestExtractDatesNormalizedToISO(t *testing.T) {
	c := NewClassifier()

	t.Run("all formats converge", func(t *testing.T) {
		text := "L'audience est fixée au 12/01/2025. Le bail signé le 12 janvier 2025 prend effet le 2025-01-12 et non le 45/13/2025."
		got := c.extractEntities(text).Dates
		want := []string{"2025-01-12"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Dates = %v, want %v", got, want)
		}
	})

	t.Run("distinct dates kept in order", func(t *testing.T) {
		text := "Signé le 01/02/2025, prenant effet le 15 mars 2025."
		got := c.extractEntities(text).Dates
		want := []string{"2025-02-01", "2025-03-15"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Dates = %v, want %v", got, want)
		}
	})

	t.Run("premier du mois", func(t *testing.T) {
		got := c.extractEntities("échéance au 1er avril 2026").Dates
		want := []string{"2026-04-01"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Dates = %v, want %v", got, want)
		}
	})
}

func TestExtractAmountsBelgianFormat(t *testing.T) {
	text := "Le loyer s'élève à 1.234,56 € par mois, plus une garantie de 500 EUR et des frais de 75,00 euros."
	c := NewClassifier()
	got := c.extractEntities(text).Amounts
	want := []float64{1234.56, 500, 75}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Amounts = %v, want %v", got, want)
	}
}

func TestExtractLegalRefs(t *testing.T) {
	text := "Conformément à l'art. 1051 C. jud., le délai d'appel est d'un mois. La loi du 15 juin 1935 s'applique."
	c := NewClassifier()
	got := c.extractEntities(text).LegalRefs
	if len(got) != 2 {
		t.Fatalf("LegalRefs = %v, want 2 entries", got)
	}
	if got[0] != "art. 1051 C. jud." {
		t.Errorf("LegalRefs[0] = %q, want %q", got[0], "art. 1051 C. jud.")
	}
	if !strings.HasPrefix(got[1], "loi du 15 juin 1935") {
		t.Errorf("LegalRefs[1] = %q, want loi du 15 juin 1935 reference", got[1])
	}
}

func TestExtractEntitiesEmptyText(t *testing.T) {
	c := NewClassifier()
	got := c.extractEntities("")
	if got.Parties != nil || got.Dates != nil || got.Amounts != nil || got.LegalRefs != nil {
		t.Errorf("entities of empty text = %+v, want all nil", got)
	}
}
