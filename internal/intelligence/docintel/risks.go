package docintel

import (
	"regexp"

	intcommon "github.com/jurisio/casebrain/internal/intelligence/common"
	"github.com/jurisio/casebrain/pkg/types/brain"
	"github.com/jurisio/casebrain/pkg/types/common"
)

const riskExcerptLen = 160

// riskRule flags a concerning pattern.  A rule scoped to a document type
// only fires on documents classified as that type; an unscoped rule fires
// on every document.
type riskRule struct {
	label     string
	severity  common.RiskLevel
	appliesTo brain.DocumentType // empty means any type
	pattern   *regexp.Regexp
}

func compileRiskRules() []riskRule {
	return []riskRule{
		// generic
		{
			label:    "clause pénale",
			severity: common.RiskHigh,
			pattern:  regexp.MustCompile(`clause pénale|astreinte de|pénalité de`),
		},
		{
			label:    "renonciation à recours",
			severity: common.RiskHigh,
			pattern:  regexp.MustCompile(`renonc\w+ (?:à tout recours|à recours|au droit)`),
		},
		{
			label:    "résiliation unilatérale",
			severity: common.RiskMedium,
			pattern:  regexp.MustCompile(`résili\w+ (?:unilatérale\w*|de plein droit|sans préavis)`),
		},
		{
			label:    "reconduction tacite",
			severity: common.RiskMedium,
			pattern:  regexp.MustCompile(`tacite reconduction|reconduction tacite|renouvel\w+ automatique\w*`),
		},
		{
			label:    "solidarité entre débiteurs",
			severity: common.RiskMedium,
			pattern:  regexp.MustCompile(`solidaire\w*|solidarité|indivisib\w+`),
		},
		{
			label:    "compétence exclusive",
			severity: common.RiskLow,
			pattern:  regexp.MustCompile(`compétence exclusive|seuls? compétents?|exclusivement compétent`),
		},
		// contract-specific
		{
			label:     "exclusion de responsabilité",
			severity:  common.RiskHigh,
			appliesTo: brain.DocContract,
			pattern:   regexp.MustCompile(`exonér\w+ de (?:toute )?responsabilité|ne pourra être tenu\w* responsable|exclusion de responsabilité`),
		},
		{
			label:     "délai de paiement court",
			severity:  common.RiskLow,
			appliesTo: brain.DocContract,
			pattern:   regexp.MustCompile(`payable\w* (?:immédiatement|à réception|sous huitaine)`),
		},
		// judgment-specific
		{
			label:     "exécution provisoire",
			severity:  common.RiskHigh,
			appliesTo: brain.DocJudgment,
			pattern:   regexp.MustCompile(`exécutoire par provision|exécution provisoire`),
		},
		{
			label:     "condamnation aux dépens",
			severity:  common.RiskMedium,
			appliesTo: brain.DocJudgment,
			pattern:   regexp.MustCompile(`condamn\w+ aux dépens|indemnité de procédure`),
		},
		// summons-specific
		{
			label:     "comparution à bref délai",
			severity:  common.RiskHigh,
			appliesTo: brain.DocSummons,
			pattern:   regexp.MustCompile(`bref délai|extrême urgence|comparaître .{0,40}(?:huit|quinze) jours`),
		},
		// invoice-specific
		{
			label:     "intérêts de retard",
			severity:  common.RiskLow,
			appliesTo: brain.DocInvoice,
			pattern:   regexp.MustCompile(`intérêts? de retard|intérêts? moratoires?`),
		},
	}
}

// detectRisks runs every applicable rule on the normalized text and carries
// an excerpt around the first match of each firing rule.
func (c *Classifier) detectRisks(normalized string, docType brain.DocumentType) []brain.DocumentRisk {
	var risks []brain.DocumentRisk
	for _, rule := range c.risks {
		if rule.appliesTo != "" && rule.appliesTo != docType {
			continue
		}
		loc := rule.pattern.FindStringIndex(normalized)
		if loc == nil {
			continue
		}
		risks = append(risks, brain.DocumentRisk{
			Label:    rule.label,
			Severity: rule.severity,
			Excerpt:  excerptAround(normalized, loc[0], loc[1]),
		})
	}
	return risks
}

// excerptAround widens a match to surrounding context, capped at
// riskExcerptLen runes.
func excerptAround(text string, start, end int) string {
	const margin = 60
	lo := start - margin
	if lo < 0 {
		lo = 0
	}
	hi := end + margin
	if hi > len(text) {
		hi = len(text)
	}
	// avoid splitting multi-byte runes at the window edges
	for lo > 0 && !isASCIIBoundary(text[lo]) {
		lo--
	}
	for hi < len(text) && !isASCIIBoundary(text[hi]) {
		hi++
	}
	return intcommon.Truncate(text[lo:hi], riskExcerptLen)
}

func isASCIIBoundary(b byte) bool { return b < 0x80 || b >= 0xC0 }

// requiredElement is one item of a per-type completeness check: a document
// of that type is expected to contain the pattern somewhere in its text.
type requiredElement struct {
	label   string
	pattern *regexp.Regexp
}

func defaultRequiredElements() map[brain.DocumentType][]requiredElement {
	return map[brain.DocumentType][]requiredElement{
		brain.DocContract: {
			{label: "identification des parties", pattern: regexp.MustCompile(`entre les soussignés|d'une part|ci-après dénommé`)},
			{label: "objet du contrat", pattern: regexp.MustCompile(`objet du (?:présent )?contrat|a pour objet`)},
			{label: "durée", pattern: regexp.MustCompile(`durée (?:du contrat|de la convention|déterminée|indéterminée)`)},
			{label: "signatures", pattern: regexp.MustCompile(`fait à .{0,60}\ble\b|\bsignatures?\b|\bsigné`)},
		},
		brain.DocJudgment: {
			{label: "juridiction", pattern: regexp.MustCompile(`tribunal|cour d'appel|justice de paix`)},
			{label: "dispositif", pattern: regexp.MustCompile(`par ces motifs`)},
			{label: "date du prononcé", pattern: regexp.MustCompile(`prononcé\w* (?:le|en audience)`)},
		},
		brain.DocSummons: {
			{label: "date d'audience", pattern: regexp.MustCompile(`audience du|comparaître le`)},
			{label: "juridiction saisie", pattern: regexp.MustCompile(`tribunal|justice de paix`)},
			{label: "exploit d'huissier", pattern: regexp.MustCompile(`huissier de justice|exploit`)},
		},
		brain.DocConclusions: {
			{label: "dispositif", pattern: regexp.MustCompile(`par ces motifs|plaise au tribunal`)},
			{label: "numéro de rôle", pattern: regexp.MustCompile(`r\.?g\.?\s*(?:n°|numéro)|rôle général`)},
		},
		brain.DocPowerOfAttorney: {
			{label: "identité du mandant", pattern: regexp.MustCompile(`soussigné|mandant`)},
			{label: "étendue du mandat", pattern: regexp.MustCompile(`pouvoir\w* de|aux fins de|mandat\w* (?:général|spécial)`)},
		},
		brain.DocInvoice: {
			{label: "numéro de facture", pattern: regexp.MustCompile(`facture (?:n°|numéro|no\.?)`)},
			{label: "numéro de TVA", pattern: regexp.MustCompile(`tva|be\s?0\d{3}`)},
			{label: "échéance de paiement", pattern: regexp.MustCompile(`échéance|payable|date limite de paiement`)},
		},
	}
}

// missingElements lists the expected elements absent from a document of the
// classified type.  Types with no checklist (correspondence, expert reports,
// unknown) yield nil.
func (c *Classifier) missingElements(normalized string, docType brain.DocumentType) []string {
	var missing []string
	for _, elem := range c.required[docType] {
		if !elem.pattern.MatchString(normalized) {
			missing = append(missing, elem.label)
		}
	}
	return missing
}
