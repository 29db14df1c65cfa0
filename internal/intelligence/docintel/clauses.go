package docintel

import (
	"regexp"
	"strings"

	intcommon "github.com/jurisio/casebrain/internal/intelligence/common"
	"github.com/jurisio/casebrain/pkg/types/brain"
)

// clauseMaxLen bounds each extracted clause; longer sentences are truncated.
const clauseMaxLen = 500

// clauseRule ties a clause category to the trigger patterns that mark a
// sentence as belonging to it.  Rules run in order; each sentence can feed
// several categories but is reported once per category.
type clauseRule struct {
	category brain.ClauseCategory
	triggers *regexp.Regexp
}

func compileClauseRules() []clauseRule {
	return []clauseRule{
		{brain.ClauseObligation, regexp.MustCompile(
			`s'engagent? à|s'obligent? à|est tenue? de|sont tenue?s de|doit|devront?|il incombe à`)},
		{brain.ClauseDeadline, regexp.MustCompile(
			`dans un délai de|au plus tard le|avant le \d|endéans les?|à dater de la|dans les \d+ jours`)},
		{brain.ClausePenalty, regexp.MustCompile(
			`clause pénale|astreinte|pénalité|dommages et intérêts|intérêts de retard|à titre de sanction`)},
		{brain.ClauseTermination, regexp.MustCompile(
			`résiliation|résilier|résolution de plein droit|mettre fin a[u ]|rupture du contrat|prendra fin`)},
		{brain.ClauseJurisdiction, regexp.MustCompile(
			`tribunaux de l'arrondissement|seuls compétents|droit belge|droit applicable|attribution de compétence|for judiciaire`)},
		{brain.ClauseConfidentiality, regexp.MustCompile(
			`confidentialité|confidentiel(le)?s?|non-divulgation|ne pas divulguer|secret des affaires`)},
	}
}

// extractClauses splits the normalized text into sentences and tags each one
// against the clause rule table.  Clauses are de-duplicated by their
// normalized text per category and truncated at clauseMaxLen runes.
func (c *Classifier) extractClauses(normalized string) []brain.Clause {
	sentences := splitSentences(normalized)

	var out []brain.Clause
	seen := make(map[string]bool)
	for _, rule := range c.clauses {
		for _, sentence := range sentences {
			if !rule.triggers.MatchString(sentence) {
				continue
			}
			text := intcommon.Truncate(strings.TrimSpace(sentence), clauseMaxLen)
			key := string(rule.category) + "\x00" + text
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, brain.Clause{Category: rule.category, Text: text})
		}
	}
	return out
}

// ExtractObligations runs only the obligation rule over the text.  It is the
// standalone form of the clause extraction used by callers that do not need
// a full analysis.
func (c *Classifier) ExtractObligations(text string) []brain.Clause {
	normalized := intcommon.NormalizeText(text)
	var out []brain.Clause
	for _, clause := range c.extractClauses(normalized) {
		if clause.Category == brain.ClauseObligation {
			out = append(out, clause)
		}
	}
	return out
}

var sentenceSplit = regexp.MustCompile(`[.;!?]\s+|\n+`)

// splitSentences cuts text into sentence-like fragments, dropping empty or
// trivially short ones.
func splitSentences(text string) []string {
	parts := sentenceSplit.Split(text, -1)
	out := parts[:0]
	for _, p := range parts {
		// trailing punctuation varies with the splitter; strip it so the
		// same sentence always yields the same fragment
		p = strings.TrimRight(strings.TrimSpace(p), ".;!? ")
		if len(p) >= 10 {
			out = append(out, p)
		}
	}
	return out
}
