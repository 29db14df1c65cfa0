package caseanalysis

import (
	"fmt"
	"sort"
	"time"

	"github.com/jurisio/casebrain/internal/domain/caserecord"
	intcommon "github.com/jurisio/casebrain/internal/intelligence/common"
	"github.com/jurisio/casebrain/pkg/types/brain"
	"github.com/jurisio/casebrain/pkg/types/common"
)

// SuggestStrategy applies the strategy rule table: each rule inspects the
// case status, matter type, contact roles and timeline recency, and emits at
// most one suggestion.  The result is sorted by priority, most urgent first.
// The matter parameter overrides the case's own matter type when non-empty.
func (a *Analyzer) SuggestStrategy(
	c *caserecord.Case,
	contacts []caserecord.CaseContact,
	timeline []caserecord.TimelineEvent,
	matter caserecord.MatterType,
) []brain.StrategySuggestion {
	now := a.clock.Now()
	if matter == "" && c != nil {
		matter = c.MatterType
	}

	var hasClient, hasAdverse, adverseCounsel bool
	for _, contact := range contacts {
		switch contact.Role {
		case caserecord.RoleClient:
			hasClient = true
		case caserecord.RoleAdverse:
			hasAdverse = true
			if contact.IsCounsel {
				adverseCounsel = true
			}
		}
	}

	var out []brain.StrategySuggestion

	if !hasClient {
		out = append(out, brain.StrategySuggestion{
			Title:       "Lier le client au dossier",
			Description: "Aucun contact avec le rôle client n'est associé au dossier.",
			Priority:    common.PriorityCritical,
			Rationale:   "Sans client identifié, ni la facturation ni les communications ne peuvent être suivies.",
		})
	}
	if !hasAdverse {
		out = append(out, brain.StrategySuggestion{
			Title:       "Identifier la partie adverse",
			Description: "Aucune partie adverse n'est enregistrée sur le dossier.",
			Priority:    common.PriorityHigh,
			Rationale:   "L'analyse de risque et la stratégie procédurale supposent une partie adverse connue.",
		})
	}
	if hasAdverse && !adverseCounsel {
		out = append(out, brain.StrategySuggestion{
			Title:       "Vérifier la représentation adverse",
			Description: "La partie adverse n'a pas de conseil enregistré.",
			Priority:    common.PriorityMedium,
			Rationale:   "Un conseil adverse non renseigné fausse l'évaluation du rapport de force.",
		})
	}

	if len(timeline) == 0 {
		out = append(out, brain.StrategySuggestion{
			Title:       "Reconstituer l'historique procédural",
			Description: "Le dossier ne contient aucun événement de timeline.",
			Priority:    common.PriorityMedium,
			Rationale:   "Sans historique, ni les échéances ni l'activité du dossier ne sont analysables.",
		})
	} else if c != nil && c.Status == caserecord.StatusPending {
		if days := a.daysSinceLastEvent(timeline, now); days > a.cfg.StalePendingDays {
			out = append(out, brain.StrategySuggestion{
				Title:       "Relancer le dossier en attente",
				Description: fmt.Sprintf("Dossier en attente sans activité depuis %d jours.", days),
				Priority:    common.PriorityHigh,
				Rationale:   fmt.Sprintf("Un dossier pending inactif plus de %d jours risque la péremption.", a.cfg.StalePendingDays),
			})
		}
	}

	if c != nil {
		if expected, ok := a.cfg.ExpectedDurationDays[c.Status]; ok && expected > 0 {
			if age := int(c.Age(now).Hours() / 24); age > expected {
				out = append(out, brain.StrategySuggestion{
					Title:       "Revoir le calendrier du dossier",
					Description: fmt.Sprintf("Le dossier dépasse la durée attendue pour son statut (%d jours sur %d).", age, expected),
					Priority:    common.PriorityMedium,
					Rationale:   "Les dossiers au-delà de leur durée attendue méritent un point de stratégie.",
				})
			}
		}
	}

	if matter == caserecord.MatterCommercial && !hasFormalNotice(timeline) {
		out = append(out, brain.StrategySuggestion{
			Title:       "Envoyer une mise en demeure",
			Description: "Aucune mise en demeure n'apparaît dans l'historique du dossier commercial.",
			Priority:    common.PriorityMedium,
			Rationale:   "En matière commerciale, la mise en demeure précède utilement toute citation.",
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority.Order() > out[j].Priority.Order()
	})
	return out
}

func (a *Analyzer) daysSinceLastEvent(timeline []caserecord.TimelineEvent, now time.Time) int {
	var last time.Time
	for i := range timeline {
		if timeline[i].EventDate.After(last) && !timeline[i].EventDate.After(now) {
			last = timeline[i].EventDate
		}
	}
	if last.IsZero() {
		return a.cfg.StalePendingDays + 1
	}
	return intcommon.DaysBetween(last, now)
}

func hasFormalNotice(timeline []caserecord.TimelineEvent) bool {
	for i := range timeline {
		if intcommon.ContainsAny(intcommon.NormalizeText(timeline[i].Title), []string{"mise en demeure"}) {
			return true
		}
	}
	return false
}
