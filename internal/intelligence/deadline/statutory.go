package deadline

import (
	"sort"
	"strings"
	"time"

	"github.com/jurisio/casebrain/internal/domain/caserecord"
	intcommon "github.com/jurisio/casebrain/internal/intelligence/common"
	"github.com/jurisio/casebrain/pkg/types/brain"
)

// StatutoryRule is one (event type → deadline) entry of the Belgian
// procedural table.  Offsets are calendar days from the triggering event.
type StatutoryRule struct {
	Label      string
	OffsetDays int
	LegalBasis string
}

// PrescriptionRule is one prescription period for a matter type.
type PrescriptionRule struct {
	Label      string
	Years      float64
	LegalBasis string
}

// defaultStatutoryRules returns the built-in procedural table, keyed by
// triggering event type as it appears on the timeline ("jugement",
// "signification", ...).  The engine receives the table through Config so
// a revised edition can be injected without touching this file.
func defaultStatutoryRules() map[string][]StatutoryRule {
	return map[string][]StatutoryRule{
		"jugement": {
			{Label: "Délai d'opposition", OffsetDays: 30, LegalBasis: "art. 1048 C. jud."},
			{Label: "Délai d'appel", OffsetDays: 30, LegalBasis: "art. 1051 C. jud."},
			{Label: "Pourvoi en cassation", OffsetDays: 90, LegalBasis: "art. 1073 C. jud."},
		},
		"signification": {
			{Label: "Délai d'appel après signification", OffsetDays: 30, LegalBasis: "art. 1051 C. jud."},
			{Label: "Délai d'opposition après signification", OffsetDays: 30, LegalBasis: "art. 1048 C. jud."},
		},
		"citation": {
			{Label: "Comparution à l'audience d'introduction", OffsetDays: 8, LegalBasis: "art. 707 C. jud."},
		},
		"conclusions": {
			{Label: "Conclusions en réponse", OffsetDays: 30, LegalBasis: "art. 747 C. jud."},
		},
		"mise_en_demeure": {
			{Label: "Réponse à la mise en demeure", OffsetDays: 15, LegalBasis: "usage"},
		},
		"ordonnance": {
			{Label: "Appel d'ordonnance de référé", OffsetDays: 30, LegalBasis: "art. 1051 C. jud."},
		},
	}
}

func defaultPrescriptionRules() map[caserecord.MatterType][]PrescriptionRule {
	return map[caserecord.MatterType][]PrescriptionRule{
		caserecord.MatterCivil: {
			{Label: "Prescription action personnelle", Years: 10, LegalBasis: "art. 2262bis, §1er C. civ."},
			{Label: "Prescription responsabilité extracontractuelle", Years: 5, LegalBasis: "art. 2262bis, §1er, al. 2 C. civ."},
		},
		caserecord.MatterCommercial: {
			{Label: "Prescription action commerciale", Years: 10, LegalBasis: "art. 2262bis C. civ."},
		},
		caserecord.MatterPenal: {
			{Label: "Prescription de l'action publique (délit)", Years: 5, LegalBasis: "art. 21 T.P. C.I.Cr."},
		},
		caserecord.MatterFiscal: {
			{Label: "Délai d'imposition ordinaire", Years: 3, LegalBasis: "art. 354 CIR 92"},
		},
		caserecord.MatterSocial: {
			{Label: "Prescription action issue du contrat de travail", Years: 5, LegalBasis: "art. 15 loi du 3 juillet 1978"},
		},
		caserecord.MatterFamily: {
			{Label: "Prescription action personnelle", Years: 10, LegalBasis: "art. 2262bis, §1er C. civ."},
		},
	}
}

// hoursPerYear converts prescription years to a duration using the civil
// 365.25-day year so leap years accumulate correctly over long periods.
const hoursPerYear = 365.25 * 24

// LegalDeadlines returns the statutory deadlines opened by an event of the
// given type on the given date, merged with the matter's prescription
// boundaries, sorted by date ascending.  Unknown event types contribute no
// procedural entries; unknown matter types contribute no prescription
// entries.  Both empty is a valid, empty result.
func (e *Engine) LegalDeadlines(matter caserecord.MatterType, eventType string, eventDate time.Time) []brain.LegalDeadline {
	var out []brain.LegalDeadline

	for _, rule := range e.cfg.StatutoryRules[eventType] {
		out = append(out, brain.LegalDeadline{
			Label:      rule.Label,
			Date:       eventDate.AddDate(0, 0, rule.OffsetDays),
			LegalBasis: rule.LegalBasis,
			Category:   "procedural",
		})
	}
	for _, rule := range e.cfg.PrescriptionRules[matter] {
		out = append(out, brain.LegalDeadline{
			Label:      rule.Label,
			Date:       eventDate.Add(time.Duration(rule.Years * hoursPerYear * float64(time.Hour))),
			LegalBasis: rule.LegalBasis,
			Category:   "prescription",
		})
	}

	sortLegalDeadlines(out)
	return out
}

// LegalDeadlinesFromTimeline computes the statutory picture of a whole
// timeline: every validated or key event whose title names a triggering
// event type opens its deadlines.  Repeated events collapse to one entry
// per (label, date) pair; the result is sorted by date ascending.
func (e *Engine) LegalDeadlinesFromTimeline(matter caserecord.MatterType, timeline []caserecord.TimelineEvent) []brain.LegalDeadline {
	seen := make(map[string]bool)
	var out []brain.LegalDeadline

	for _, ev := range timeline {
		if !ev.IsValidated && !ev.IsKeyEvent {
			continue
		}
		for _, eventType := range e.triggerTypes(ev.Title) {
			for _, ld := range e.LegalDeadlines(matter, eventType, ev.EventDate) {
				key := ld.Label + "\x00" + ld.Date.Format(time.RFC3339)
				if seen[key] {
					continue
				}
				seen[key] = true
				out = append(out, ld)
			}
		}
	}

	sortLegalDeadlines(out)
	return out
}

// triggerTypes returns, sorted for determinism, the statutory table keys
// named in the event title.  Keys match with underscores read as spaces, so
// "mise_en_demeure" matches "Mise en demeure du 3 mars".
func (e *Engine) triggerTypes(title string) []string {
	normalized := intcommon.NormalizeText(title)
	var out []string
	for key := range e.cfg.StatutoryRules {
		if strings.Contains(normalized, strings.ReplaceAll(key, "_", " ")) {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

func sortLegalDeadlines(out []brain.LegalDeadline) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].Label < out[j].Label
		}
		return out[i].Date.Before(out[j].Date)
	})
}
