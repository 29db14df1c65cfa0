// Package docintel implements the document classifier: weighted-pattern type
// detection with sub-type and language identification, clause and entity
// extraction, risk detection and per-type completeness checks for French
// (Belgian) legal documents.
//
// All pattern tables are compiled once at construction and shared by
// reference; the classifier itself is pure and safe for concurrent use.
// Classification is deterministic: identical input always yields an
// identical result.
package docintel

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	intcommon "github.com/jurisio/casebrain/internal/intelligence/common"
	"github.com/jurisio/casebrain/pkg/types/brain"
)

// PatternSpec is one weighted regex contributing to a document type's score.
type PatternSpec struct {
	Pattern string
	Weight  float64
}

// TypeSpec declares the recognition table for one document type.
type TypeSpec struct {
	Type          brain.DocumentType
	Patterns      []PatternSpec
	FilenameHints []string
	SubTypes      map[string][]string // sub-type name -> trigger keywords
}

// Per-pattern match counts saturate so one repeated phrase cannot dominate.
const (
	maxMatchesPerPattern = 3
	filenameHintBonus    = 3.0

	// confidenceBoostThreshold is the absolute winning score above which the
	// normalized confidence gets a fixed boost.
	confidenceBoostThreshold = 5.0
	confidenceBoost          = 0.1
)

// defaultTypeSpecs is the recognition table for the eight document types.
func defaultTypeSpecs() []TypeSpec {
	return []TypeSpec{
		{
			Type: brain.DocContract,
			Patterns: []PatternSpec{
				{Pattern: `entre les soussign[ée]s`, Weight: 3},
				{Pattern: `il est convenu ce qui suit`, Weight: 3},
				{Pattern: `les parties conviennent`, Weight: 2.5},
				{Pattern: `\bcontrat\b`, Weight: 1.5},
				{Pattern: `\bconvention\b`, Weight: 1},
				{Pattern: `s'engage à`, Weight: 1},
			},
			FilenameHints: []string{"contrat", "convention", "bail"},
			SubTypes: map[string][]string{
				"employment": {"contrat de travail", "employeur", "travailleur"},
				"lease":      {"bail", "bailleur", "preneur", "loyer"},
				"sale":       {"vente", "vendeur", "acquéreur", "acheteur"},
				"loan":       {"prêt", "prêteur", "emprunteur"},
				"services":   {"prestations", "prestataire", "mission"},
			},
		},
		{
			Type: brain.DocJudgment,
			Patterns: []PatternSpec{
				{Pattern: `par ces motifs`, Weight: 3},
				{Pattern: `le tribunal.{0,40}(dit pour droit|condamne|déclare)`, Weight: 3},
				{Pattern: `\bjugement\b`, Weight: 2},
				{Pattern: `\bordonnance\b`, Weight: 1.5},
				{Pattern: `en cause de`, Weight: 1},
				{Pattern: `\barrêt\b`, Weight: 1},
			},
			FilenameHints: []string{"jugement", "ordonnance", "arrêt", "arret"},
			SubTypes: map[string][]string{
				"default":  {"par défaut", "défaut"},
				"interim":  {"référé", "provisoire"},
				"appeal":   {"cour d'appel", "en degré d'appel"},
				"on_merit": {"au fond", "contradictoire"},
			},
		},
		{
			Type: brain.DocSummons,
			Patterns: []PatternSpec{
				{Pattern: `citation à comparaître`, Weight: 3},
				{Pattern: `huissier de justice`, Weight: 2.5},
				{Pattern: `l'an deux mille`, Weight: 2},
				{Pattern: `\bcitation\b`, Weight: 1.5},
				{Pattern: `\bexploit\b`, Weight: 1.5},
				{Pattern: `comparaître devant`, Weight: 2},
			},
			FilenameHints: []string{"citation", "exploit", "signification"},
			SubTypes: map[string][]string{
				"direct":      {"citation directe"},
				"intervening": {"intervention forcée"},
			},
		},
		{
			Type: brain.DocConclusions,
			Patterns: []PatternSpec{
				{Pattern: `\bconclusions\b`, Weight: 2.5},
				{Pattern: `plaise au tribunal`, Weight: 3},
				{Pattern: `pour le concluant`, Weight: 2.5},
				{Pattern: `à ces causes`, Weight: 1.5},
				{Pattern: `\bdispositif\b`, Weight: 1},
			},
			FilenameHints: []string{"conclusions"},
			SubTypes: map[string][]string{
				"synthesis":  {"conclusions de synthèse"},
				"additional": {"conclusions additionnelles"},
				"main":       {"conclusions principales"},
			},
		},
		{
			Type: brain.DocCorrespondence,
			Patterns: []PatternSpec{
				{Pattern: `(cher|chère) (maître|monsieur|madame|confrère|consœur)`, Weight: 3},
				{Pattern: `je vous prie d'agréer`, Weight: 2.5},
				{Pattern: `veuillez agréer`, Weight: 2.5},
				{Pattern: `suite à (votre|notre) (courrier|entretien|conversation)`, Weight: 2},
				{Pattern: `\bcourrier\b`, Weight: 1},
			},
			FilenameHints: []string{"courrier", "lettre", "correspondance"},
			SubTypes: map[string][]string{
				"formal_notice": {"mise en demeure"},
				"to_counsel":    {"cher confrère", "chère consœur", "cher maître"},
			},
		},
		{
			Type: brain.DocInvoice,
			Patterns: []PatternSpec{
				{Pattern: `\bfacture\b`, Weight: 3},
				{Pattern: `note d'honoraires`, Weight: 3},
				{Pattern: `\btva\b`, Weight: 2},
				{Pattern: `montant (total|dû|à payer)`, Weight: 2},
				{Pattern: `numéro de facture`, Weight: 2.5},
				{Pattern: `conditions de paiement`, Weight: 1.5},
			},
			FilenameHints: []string{"facture", "honoraires", "invoice"},
			SubTypes: map[string][]string{
				"fee_note":    {"note d'honoraires", "honoraires"},
				"credit_note": {"note de crédit"},
			},
		},
		{
			Type: brain.DocPowerOfAttorney,
			Patterns: []PatternSpec{
				{Pattern: `\bprocuration\b`, Weight: 3},
				{Pattern: `\bmandant\b`, Weight: 2.5},
				{Pattern: `\bmandataire\b`, Weight: 2.5},
				{Pattern: `donne (pouvoir|mandat)`, Weight: 3},
				{Pattern: `\bmandat\b`, Weight: 1.5},
			},
			FilenameHints: []string{"procuration", "mandat", "pouvoir"},
			SubTypes: map[string][]string{
				"general": {"mandat général", "procuration générale"},
				"special": {"mandat spécial", "procuration spéciale"},
			},
		},
		{
			Type: brain.DocExpertReport,
			Patterns: []PatternSpec{
				{Pattern: `rapport d'expertise`, Weight: 3},
				{Pattern: `l'expert (soussigné|désigné)`, Weight: 3},
				{Pattern: `\bexpertise\b`, Weight: 2},
				{Pattern: `mission d'expertise`, Weight: 2.5},
				{Pattern: `constatations`, Weight: 1},
			},
			FilenameHints: []string{"expertise", "rapport"},
			SubTypes: map[string][]string{
				"medical":    {"expertise médicale", "médical"},
				"accounting": {"expertise comptable", "comptable"},
				"technical":  {"expertise technique"},
			},
		},
	}
}

// compiledType is a TypeSpec with its regexes compiled.
type compiledType struct {
	spec     TypeSpec
	patterns []*regexp.Regexp
	weights  []float64
}

// Classifier detects document types, clauses, entities and risks.
type Classifier struct {
	types     []compiledType
	languages []languageSpec
	clauses   []clauseRule
	entities  entityPatterns
	risks     []riskRule
	required  map[brain.DocumentType][]requiredElement
}

// NewClassifier compiles the default pattern tables.  The cost is paid once;
// the returned Classifier is immutable and safe to share.
func NewClassifier() *Classifier {
	specs := defaultTypeSpecs()
	compiled := make([]compiledType, len(specs))
	for i, spec := range specs {
		ct := compiledType{spec: spec}
		for _, p := range spec.Patterns {
			ct.patterns = append(ct.patterns, regexp.MustCompile(p.Pattern))
			ct.weights = append(ct.weights, p.Weight)
		}
		compiled[i] = ct
	}
	return &Classifier{
		types:     compiled,
		languages: defaultLanguageSpecs(),
		clauses:   compileClauseRules(),
		entities:  compileEntityPatterns(),
		risks:     compileRiskRules(),
		required:  defaultRequiredElements(),
	}
}

// Classify detects the document's type, sub-type and language.  A text that
// matches no pattern at all classifies as unknown with confidence 0; the
// result depends only on the (text, filename) pair.
func (c *Classifier) Classify(text, filename string) brain.DocumentClassification {
	normalized := intcommon.NormalizeText(text)
	normalizedName := intcommon.NormalizeText(filename)

	var total float64
	best := -1
	var bestScore float64
	for i := range c.types {
		score := c.typeScore(&c.types[i], normalized, normalizedName)
		total += score
		if score > bestScore {
			bestScore = score
			best = i
		}
	}

	if best < 0 || total <= 0 {
		return brain.DocumentClassification{
			Type:     brain.DocUnknown,
			Language: c.detectLanguage(normalized),
		}
	}

	confidence := bestScore / total
	if bestScore >= confidenceBoostThreshold {
		confidence += confidenceBoost
	}

	winner := &c.types[best]
	return brain.DocumentClassification{
		Type:       winner.spec.Type,
		SubType:    c.detectSubType(winner, normalized),
		Language:   c.detectLanguage(normalized),
		Confidence: intcommon.Clamp01(confidence),
	}
}

// typeScore sums weight × min(matches, cap) over the type's patterns, plus
// the filename bonus when a hint keyword appears in the filename.
func (c *Classifier) typeScore(ct *compiledType, text, filename string) float64 {
	var score float64
	for i, re := range ct.patterns {
		matches := len(re.FindAllStringIndex(text, maxMatchesPerPattern))
		score += ct.weights[i] * float64(matches)
	}
	if filename != "" {
		for _, hint := range ct.spec.FilenameHints {
			if strings.Contains(filename, hint) {
				score += filenameHintBonus
				break
			}
		}
	}
	return score
}

// detectSubType returns the first sub-type whose trigger keywords occur in
// the text, scanning sub-types in deterministic name order.
func (c *Classifier) detectSubType(ct *compiledType, text string) string {
	names := make([]string, 0, len(ct.spec.SubTypes))
	for name := range ct.spec.SubTypes {
		names = append(names, name)
	}
	// map iteration order is random; sort for a deterministic result
	sort.Strings(names)
	for _, name := range names {
		for _, kw := range ct.spec.SubTypes[name] {
			if strings.Contains(text, kw) {
				return name
			}
		}
	}
	return ""
}

// languageSpec scores a language by its most frequent function words.
type languageSpec struct {
	code    string
	markers *regexp.Regexp
}

func defaultLanguageSpecs() []languageSpec {
	// Listed in tie-break priority order: fr first, the firm's working
	// language.
	return []languageSpec{
		{code: "fr", markers: regexp.MustCompile(`\b(le|la|les|des|une|est|dans|pour|que|avec|être|sont)\b`)},
		{code: "nl", markers: regexp.MustCompile(`\b(het|een|van|niet|voor|wordt|zijn|deze|naar|ook)\b`)},
		{code: "en", markers: regexp.MustCompile(`\b(the|of|and|to|is|that|with|shall|this|hereby)\b`)},
		{code: "de", markers: regexp.MustCompile(`\b(der|die|das|und|nicht|für|mit|ist|wird|einer)\b`)},
	}
}

// detectLanguage counts language marker words and returns the code with the
// most hits; earlier specs win ties, no hit at all is unknown.
func (c *Classifier) detectLanguage(text string) string {
	bestCode := "unknown"
	bestCount := 0
	for _, spec := range c.languages {
		count := len(spec.markers.FindAllStringIndex(text, -1))
		if count > bestCount {
			bestCount = count
			bestCode = spec.code
		}
	}
	return bestCode
}

// Analyze composes classification with clause, entity, risk and completeness
// analysis, and derives the summary from the aggregate.
func (c *Classifier) Analyze(text, filename string) *brain.DocumentAnalysisResult {
	normalized := intcommon.NormalizeText(text)

	result := &brain.DocumentAnalysisResult{
		DocumentName:   filename,
		Classification: c.Classify(text, filename),
	}
	result.Clauses = c.extractClauses(normalized)
	result.Entities = c.extractEntities(text)
	result.Risks = c.detectRisks(normalized, result.Classification.Type)
	result.MissingElements = c.missingElements(normalized, result.Classification.Type)
	result.Summary = c.summarize(result)
	return result
}

// summarize distills the aggregate analysis into display-ready points.  It
// reads only the already-computed result, never the raw text.
func (c *Classifier) summarize(r *brain.DocumentAnalysisResult) []string {
	var out []string

	if r.Classification.Type == brain.DocUnknown {
		out = append(out, "Type de document non reconnu.")
	} else {
		point := fmt.Sprintf("Document classé %s (confiance %.0f%%).",
			r.Classification.Type, r.Classification.Confidence*100)
		if r.Classification.SubType != "" {
			point = fmt.Sprintf("Document classé %s/%s (confiance %.0f%%).",
				r.Classification.Type, r.Classification.SubType, r.Classification.Confidence*100)
		}
		out = append(out, point)
	}

	if n := len(r.Clauses); n > 0 {
		out = append(out, fmt.Sprintf("%d clause(s) extraite(s).", n))
	}
	if n := len(r.Entities.Parties); n > 0 {
		out = append(out, fmt.Sprintf("%d partie(s) identifiée(s): %s.",
			n, strings.Join(r.Entities.Parties, ", ")))
	}
	if n := len(r.Entities.Dates); n > 0 {
		out = append(out, fmt.Sprintf("%d date(s) relevée(s).", n))
	}
	if len(r.Risks) > 0 {
		worst := r.Risks[0]
		for _, risk := range r.Risks[1:] {
			if risk.Severity.Order() > worst.Severity.Order() {
				worst = risk
			}
		}
		out = append(out, fmt.Sprintf("%d risque(s) détecté(s), le plus sévère: %s (%s).",
			len(r.Risks), worst.Label, worst.Severity))
	}
	if n := len(r.MissingElements); n > 0 {
		out = append(out, fmt.Sprintf("%d élément(s) attendu(s) manquant(s): %s.",
			n, strings.Join(r.MissingElements, ", ")))
	}
	return out
}
