package docintel

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jurisio/casebrain/pkg/types/brain"
)

// entityPatterns holds the compiled extraction regexes for parties, dates,
// amounts and legal references.
type entityPatterns struct {
	namedParty   *regexp.Regexp
	titledPerson *regexp.Regexp
	company      *regexp.Regexp
	numericDate  *regexp.Regexp
	frenchDate   *regexp.Regexp
	isoDate      *regexp.Regexp
	amount       *regexp.Regexp
	article      *regexp.Regexp
	statute      *regexp.Regexp
}

func compileEntityPatterns() entityPatterns {
	return entityPatterns{
		// «X», "X" or X after a ci-après dénommé(e) marker
		namedParty: regexp.MustCompile(
			`ci-après dénommée?s?\s+(?:«\s*([^»]+?)\s*»|"([^"]+)"|([A-ZÀ-Ÿ][\wÀ-ÿ' -]{1,60}?)[,.;])`),
		titledPerson: regexp.MustCompile(
			`(?:Monsieur|Madame|Maître|M\.|Mme)\s+([A-ZÀ-Ÿ][\wÀ-ÿ'-]+(?:\s+[A-ZÀ-Ÿ][\wÀ-ÿ'-]+)?)`),
		company: regexp.MustCompile(
			`\b([A-ZÀ-Ÿ][\wÀ-ÿ&'-]*(?:\s+[A-ZÀ-Ÿ&][\wÀ-ÿ&'-]*){0,3})\s+(SA|SRL|SPRL|SCRL|ASBL|SNC|SC)\b`),
		numericDate: regexp.MustCompile(
			`\b(\d{1,2})[/-](\d{1,2})[/-](\d{4})\b`),
		frenchDate: regexp.MustCompile(
			`\b(\d{1,2}|1er)\s+(janvier|février|mars|avril|mai|juin|juillet|août|septembre|octobre|novembre|décembre)\s+(\d{4})\b`),
		isoDate: regexp.MustCompile(
			`\b(\d{4})-(\d{2})-(\d{2})\b`),
		// Belgian format: 1.234.567,89 with € / EUR / euros
		amount: regexp.MustCompile(
			`\b(\d{1,3}(?:\.\d{3})*|\d+)(?:,(\d{1,2}))?\s*(?:€|EUR\b|euros?\b)`),
		article: regexp.MustCompile(
			`\b[Aa]rt(?:icle)?\.?\s*\d+[a-z]*(?:bis|ter|quater)?(?:,?\s*§\s*\d+(?:er)?)?(?:\s+(?:du|de la|C\.|CIR|[A-Z][\w.]*)[\w. ]{0,30})?`),
		statute: regexp.MustCompile(
			`\b[Ll]oi du \d{1,2}(?:er)?\s+[\wà-ÿ]+\s+\d{4}[^,.;]{0,60}`),
	}
}

var frenchMonths = map[string]int{
	"janvier": 1, "février": 2, "mars": 3, "avril": 4, "mai": 5, "juin": 6,
	"juillet": 7, "août": 8, "septembre": 9, "octobre": 10,
	"novembre": 11, "décembre": 12,
}

// extractEntities pulls parties, dates, amounts and legal references from
// the raw (non-normalized) text: capitalization carries signal for names.
// Unparsable candidates are skipped, never fatal.
func (c *Classifier) extractEntities(text string) brain.ExtractedEntities {
	var entities brain.ExtractedEntities
	entities.Parties = c.extractParties(text)
	entities.Dates = c.extractDates(text)
	entities.Amounts = c.extractAmounts(text)
	entities.LegalRefs = c.extractLegalRefs(text)
	return entities
}

func (c *Classifier) extractParties(text string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		key := strings.ToLower(name)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, name)
	}

	for _, m := range c.entities.namedParty.FindAllStringSubmatch(text, -1) {
		for _, group := range m[1:] {
			if group != "" {
				add(group)
				break
			}
		}
	}
	for _, m := range c.entities.titledPerson.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	for _, m := range c.entities.company.FindAllStringSubmatch(text, -1) {
		add(m[1] + " " + m[2])
	}
	return out
}

// extractDates normalizes every recognized date to ISO YYYY-MM-DD,
// de-duplicated in first-seen order.
func (c *Classifier) extractDates(text string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(iso string) {
		if iso == "" || seen[iso] {
			return
		}
		seen[iso] = true
		out = append(out, iso)
	}

	for _, m := range c.entities.numericDate.FindAllStringSubmatch(text, -1) {
		add(isoDate(m[3], m[2], m[1]))
	}
	for _, m := range c.entities.frenchDate.FindAllStringSubmatch(text, -1) {
		day := m[1]
		if day == "1er" {
			day = "1"
		}
		month, ok := frenchMonths[strings.ToLower(m[2])]
		if !ok {
			continue
		}
		add(isoDate(m[3], strconv.Itoa(month), day))
	}
	for _, m := range c.entities.isoDate.FindAllStringSubmatch(text, -1) {
		add(isoDate(m[1], m[2], m[3]))
	}
	return out
}

// isoDate validates the parts and renders YYYY-MM-DD, or "" when the parts
// do not form a plausible calendar date.
func isoDate(year, month, day string) string {
	y, err := strconv.Atoi(year)
	if err != nil || y < 1900 || y > 2200 {
		return ""
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return ""
	}
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > 31 {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d)
}

// extractAmounts parses Belgian-formatted monetary amounts (dots as
// thousands separators, comma as the decimal mark) into floats.
func (c *Classifier) extractAmounts(text string) []float64 {
	var out []float64
	seen := make(map[float64]bool)
	for _, m := range c.entities.amount.FindAllStringSubmatch(text, -1) {
		whole := strings.ReplaceAll(m[1], ".", "")
		raw := whole
		if m[2] != "" {
			raw = whole + "." + m[2]
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil || value <= 0 || seen[value] {
			continue
		}
		seen[value] = true
		out = append(out, value)
	}
	return out
}

func (c *Classifier) extractLegalRefs(text string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(ref string) {
		// keep trailing dots: they belong to citations like "C. jud."
		ref = strings.TrimRight(strings.TrimSpace(ref), " ,;")
		if ref == "" {
			return
		}
		key := strings.ToLower(ref)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, ref)
	}
	for _, m := range c.entities.article.FindAllString(text, -1) {
		add(m)
	}
	for _, m := range c.entities.statute.FindAllString(text, -1) {
		add(m)
	}
	return out
}
