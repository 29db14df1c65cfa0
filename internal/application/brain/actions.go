package brain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/jurisio/casebrain/internal/domain/caserecord"
	"github.com/jurisio/casebrain/internal/domain/communication"
	"github.com/jurisio/casebrain/internal/domain/insight"
	braintypes "github.com/jurisio/casebrain/pkg/types/brain"
	"github.com/jurisio/casebrain/pkg/types/common"
)

// Action sources, carried on every suggestion so the UI can group them.
const (
	SourceStrategy      = "strategy"
	SourceDeadline      = "deadline"
	SourceCommunication = "communication"
	SourceBilling       = "billing"
	SourceDocuments     = "documents"
)

// confidenceForPriority is the fixed confidence attached to rule-derived
// strategy actions.  More urgent rules carry more certainty because their
// trigger conditions are narrower.
func confidenceForPriority(p common.Priority) float64 {
	switch p {
	case common.PriorityCritical:
		return 0.9
	case common.PriorityHigh:
		return 0.8
	case common.PriorityMedium:
		return 0.7
	default:
		return 0.6
	}
}

// suggestActions derives the priority-ranked action set for one analyzed
// case from strategy, deadlines, communication gaps, billing and document
// completeness.
func (o *Orchestrator) suggestActions(d *caseData, a *braintypes.CaseAnalysis) []insight.ActionSuggestion {
	var out []insight.ActionSuggestion
	add := func(act insight.ActionSuggestion) {
		act.ID = common.ID(uuid.NewString())
		act.CaseID = d.c.ID
		act.Status = insight.ActionPending
		act.CreatedAt = o.opts.Clock.Now()
		out = append(out, act)
	}

	for _, s := range a.Strategy {
		add(insight.ActionSuggestion{
			Title:       s.Title,
			Description: s.Description,
			Priority:    s.Priority,
			Confidence:  confidenceForPriority(s.Priority),
			Source:      SourceStrategy,
		})
	}
	o.deadlineActions(a.Deadlines, add)
	o.communicationActions(a.Communication, add)
	o.commitmentActions(d, add)
	o.billingActions(a.Billing, add)
	o.documentActions(a.Completeness, add)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority.Order() != out[j].Priority.Order() {
			return out[i].Priority.Order() > out[j].Priority.Order()
		}
		return out[i].Confidence > out[j].Confidence
	})
	return out
}

type addAction func(insight.ActionSuggestion)

func (o *Orchestrator) deadlineActions(da *braintypes.DeadlineAnalysis, add addAction) {
	if da == nil {
		return
	}
	urgencies := make(map[string]braintypes.Urgency, len(da.Deadlines))
	for _, item := range da.Deadlines {
		urgencies[item.Title] = item.Urgency
	}
	for _, fs := range da.FilingSuggestions {
		suggested := fs.SuggestedDate
		add(insight.ActionSuggestion{
			Title: fmt.Sprintf("Préparer le dépôt: %s", fs.DeadlineTitle),
			Description: fmt.Sprintf("Échéance le %s, dépôt conseillé au plus tard le %s.",
				fs.DeadlineDate.Format("02/01/2006"), suggested.Format("02/01/2006")),
			Priority:   priorityForUrgency(urgencies[fs.DeadlineTitle]),
			Confidence: 0.9,
			Source:     SourceDeadline,
			DueHint:    &suggested,
		})
	}
}

func priorityForUrgency(u braintypes.Urgency) common.Priority {
	switch u {
	case braintypes.UrgencyCritical:
		return common.PriorityCritical
	case braintypes.UrgencyUrgent:
		return common.PriorityHigh
	case braintypes.UrgencyAttention:
		return common.PriorityMedium
	default:
		return common.PriorityLow
	}
}

func (o *Orchestrator) communicationActions(health *braintypes.CommunicationHealth, add addAction) {
	if health == nil {
		return
	}
	for _, party := range health.Parties {
		if party.Role != string(caserecord.RoleClient) {
			continue
		}
		switch party.Status {
		case braintypes.PartyCritical:
			add(insight.ActionSuggestion{
				Title: fmt.Sprintf("Recontacter le client %s", party.Name),
				Description: fmt.Sprintf("Dernier échange il y a %s, au-delà du seuil critique.",
					frenchDays(party.DaysSince)),
				Priority:   common.PriorityHigh,
				Confidence: 0.85,
				Source:     SourceCommunication,
			})
		case braintypes.PartyAbsent:
			add(insight.ActionSuggestion{
				Title:       fmt.Sprintf("Établir le contact avec %s", party.Name),
				Description: "Aucun échange enregistré avec ce client.",
				Priority:    common.PriorityMedium,
				Confidence:  0.6,
				Source:      SourceCommunication,
			})
		}
	}
}

// commitmentActions surfaces written commitments found in the case's email
// bodies so they can be tracked to completion.  Quoted replies repeat the
// same sentence, so excerpts are de-duplicated across messages.
func (o *Orchestrator) commitmentActions(d *caseData, add addAction) {
	seen := make(map[string]bool)
	var excerpts []string
	for i := range d.messages {
		m := &d.messages[i]
		if m.Kind != communication.KindEmail || m.Body == "" {
			continue
		}
		for _, clause := range o.opts.Classifier.ExtractObligations(m.Body) {
			if seen[clause.Text] {
				continue
			}
			seen[clause.Text] = true
			excerpts = append(excerpts, clause.Text)
		}
	}
	if len(excerpts) == 0 {
		return
	}

	shown := excerpts
	if len(shown) > maxCommitmentExcerpts {
		shown = shown[:maxCommitmentExcerpts]
	}
	add(insight.ActionSuggestion{
		Title: "Suivre les engagements pris par écrit",
		Description: fmt.Sprintf("%d engagement(s) relevé(s) dans la correspondance: %s",
			len(excerpts), strings.Join(shown, "; ")),
		Priority:   common.PriorityMedium,
		Confidence: 0.7,
		Source:     SourceCommunication,
	})
}

const maxCommitmentExcerpts = 3

func (o *Orchestrator) billingActions(report *braintypes.BillingReport, add addAction) {
	if report == nil {
		return
	}
	for _, s := range report.Suggestions {
		var priority common.Priority
		switch s.Urgency {
		case braintypes.InvoiceOverdueTier:
			priority = common.PriorityHigh
		case braintypes.InvoiceRecommendedTier:
			priority = common.PriorityMedium
		default:
			continue
		}
		add(insight.ActionSuggestion{
			Title: fmt.Sprintf("Facturer %.1f heures prestées", s.UnbilledHours),
			Description: fmt.Sprintf("Montant estimé %.2f €, palier %s.",
				s.EstimatedAmount, s.Urgency),
			Priority:   priority,
			Confidence: 0.75,
			Source:     SourceBilling,
		})
	}
}

func (o *Orchestrator) documentActions(report *braintypes.CompletenessReport, add addAction) {
	if report == nil || len(report.MissingCritical) == 0 {
		return
	}
	add(insight.ActionSuggestion{
		Title: "Réclamer les pièces manquantes",
		Description: fmt.Sprintf("Pièces critiques absentes du dossier: %s.",
			strings.Join(report.MissingCritical, ", ")),
		Priority:   common.PriorityHigh,
		Confidence: 0.8,
		Source:     SourceDocuments,
	})
}
