package brain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/jurisio/casebrain/internal/domain/caserecord"
	"github.com/jurisio/casebrain/internal/domain/communication"
	"github.com/jurisio/casebrain/internal/domain/insight"
	"github.com/jurisio/casebrain/internal/intelligence/comms"
	intcommon "github.com/jurisio/casebrain/internal/intelligence/common"
	braintypes "github.com/jurisio/casebrain/pkg/types/brain"
	"github.com/jurisio/casebrain/pkg/types/common"
)

// generateInsights derives the severity-ranked insight set for one analyzed
// case.  Every rule reads the already-computed analysis; dismissed insights
// are preserved by the repository, not here.
func (o *Orchestrator) generateInsights(d *caseData, a *braintypes.CaseAnalysis) []insight.Insight {
	var out []insight.Insight
	add := func(typ insight.InsightType, severity common.RiskLevel, title, desc string) {
		out = append(out, insight.Insight{
			ID:          common.ID(uuid.NewString()),
			CaseID:      d.c.ID,
			Type:        typ,
			Severity:    severity,
			Title:       title,
			Description: desc,
			Status:      insight.InsightNew,
			CreatedAt:   o.opts.Clock.Now(),
		})
	}

	o.deadlineInsights(a.Deadlines, add)
	o.riskInsight(a.Risk, add)
	o.documentGapInsight(a.Completeness, add)
	o.billingInsights(a.Billing, add)
	o.communicationInsights(d, a, add)
	o.contactGapInsights(d.contacts, add)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity.Order() > out[j].Severity.Order()
	})
	return out
}

type addInsight func(typ insight.InsightType, severity common.RiskLevel, title, desc string)

func (o *Orchestrator) deadlineInsights(da *braintypes.DeadlineAnalysis, add addInsight) {
	if da == nil {
		return
	}
	for _, item := range da.Deadlines {
		switch {
		case item.DaysRemaining < 0:
			add(insight.InsightDeadline, common.RiskCritical,
				fmt.Sprintf("Échéance dépassée: %s", item.Title),
				fmt.Sprintf("Échéance du %s dépassée de %s.",
					item.Date.Format("02/01/2006"), frenchDays(-item.DaysRemaining)))
		case item.Urgency == braintypes.UrgencyCritical:
			add(insight.InsightDeadline, common.RiskCritical,
				fmt.Sprintf("Échéance critique: %s", item.Title),
				fmt.Sprintf("Échéance le %s, dans %s.",
					item.Date.Format("02/01/2006"), frenchDays(item.DaysRemaining)))
		case item.Urgency == braintypes.UrgencyUrgent:
			add(insight.InsightDeadline, common.RiskHigh,
				fmt.Sprintf("Échéance proche: %s", item.Title),
				fmt.Sprintf("Échéance le %s, dans %s.",
					item.Date.Format("02/01/2006"), frenchDays(item.DaysRemaining)))
		}
	}
	for _, conflict := range da.Conflicts {
		add(insight.InsightDeadline, conflict.Severity,
			"Conflit d'échéances",
			fmt.Sprintf("« %s » et « %s » à %s d'écart.",
				conflict.FirstTitle, conflict.SecondTitle, frenchDays(conflict.DaysApart)))
	}

	now := o.opts.Clock.Now()
	for _, ld := range da.Legal {
		if ld.Category != "procedural" {
			continue
		}
		days := intcommon.DaysBetween(now, ld.Date)
		if days < 0 || days > legalDeadlineHorizonDays {
			continue
		}
		add(insight.InsightDeadline, common.RiskHigh,
			fmt.Sprintf("Échéance légale: %s", ld.Label),
			fmt.Sprintf("Expire le %s (%s), dans %s.",
				ld.Date.Format("02/01/2006"), ld.LegalBasis, frenchDays(days)))
	}
}

// legalDeadlineHorizonDays bounds how far ahead a statutory deadline is
// surfaced as an insight.  Prescription boundaries are excluded: they sit
// years out and would drown the list.
const legalDeadlineHorizonDays = 30

func (o *Orchestrator) riskInsight(risk *braintypes.RiskAssessment, add addInsight) {
	if risk == nil || risk.Level.Order() < common.RiskHigh.Order() {
		return
	}
	title := "Risque élevé du dossier"
	if risk.Level == common.RiskCritical {
		title = "Risque critique du dossier"
	}
	desc := fmt.Sprintf("Score de risque %.0f/100.", risk.OverallScore)
	if top := topFactor(risk.Factors); top != nil {
		desc = fmt.Sprintf("Score de risque %.0f/100, facteur dominant: %s.",
			risk.OverallScore, top.Label)
	}
	add(insight.InsightRisk, risk.Level, title, desc)
}

// topFactor returns the factor with the largest weighted contribution.
func topFactor(factors []braintypes.RiskFactor) *braintypes.RiskFactor {
	var top *braintypes.RiskFactor
	var best float64
	for i := range factors {
		contribution := factors[i].Score * factors[i].Weight
		if top == nil || contribution > best {
			top = &factors[i]
			best = contribution
		}
	}
	return top
}

func (o *Orchestrator) documentGapInsight(report *braintypes.CompletenessReport, add addInsight) {
	if report == nil {
		return
	}
	switch {
	case len(report.MissingCritical) > 0:
		add(insight.InsightDocumentGap, common.RiskHigh,
			"Pièces critiques manquantes",
			fmt.Sprintf("Pièces manquantes: %s.", strings.Join(report.MissingCritical, ", ")))
	case len(report.MissingImportant) > 0:
		add(insight.InsightDocumentGap, common.RiskMedium,
			"Pièces attendues manquantes",
			fmt.Sprintf("Pièces manquantes: %s.", strings.Join(report.MissingImportant, ", ")))
	}
}

func (o *Orchestrator) billingInsights(report *braintypes.BillingReport, add addInsight) {
	if report == nil {
		return
	}
	var medium int
	for _, anomaly := range report.Anomalies {
		if anomaly.Severity.Order() >= common.RiskHigh.Order() {
			add(insight.InsightBilling, anomaly.Severity,
				"Anomalie de facturation", anomaly.Description)
		} else if anomaly.Severity == common.RiskMedium {
			medium++
		}
	}
	if medium > 0 {
		add(insight.InsightBilling, common.RiskMedium,
			"Anomalies de facturation à vérifier",
			fmt.Sprintf("%d anomalie(s) de sévérité moyenne détectée(s).", medium))
	}
}

func (o *Orchestrator) communicationInsights(d *caseData, a *braintypes.CaseAnalysis, add addInsight) {
	if health := a.Communication; health != nil {
		var otherCritical int
		for _, party := range health.Parties {
			if party.Status != braintypes.PartyCritical {
				continue
			}
			if party.Role == string(caserecord.RoleClient) {
				add(insight.InsightCommunication, common.RiskHigh,
					"Client sans contact récent",
					fmt.Sprintf("Aucun échange avec %s depuis %s.",
						party.Name, frenchDays(party.DaysSince)))
			} else {
				otherCritical++
			}
		}
		if otherCritical > 0 {
			add(insight.InsightCommunication, common.RiskMedium,
				"Parties sans contact récent",
				fmt.Sprintf("%d partie(s) au-delà du seuil critique de relance.", otherCritical))
		}
	}

	trend := o.opts.CommScorer.DetectSentimentTrend(d.messages)
	if trend.AlertLevel.Order() >= common.RiskHigh.Order() {
		add(insight.InsightCommunication, trend.AlertLevel,
			"Ton de la correspondance dégradé",
			fmt.Sprintf("Ton actuel %s, tendance %s.", trend.Current, trend.Trend))
	}

	o.urgentMessageInsight(d, a, add)
}

// urgentMessageInsight flags the latest inbound message when it reads as
// urgent and no reply has gone out since.  The urgency score is raised by
// an imminent deadline or an elevated case risk.
func (o *Orchestrator) urgentMessageInsight(d *caseData, a *braintypes.CaseAnalysis, add addInsight) {
	last := -1
	for i := range d.messages {
		if d.messages[i].Direction != communication.Inbound {
			continue
		}
		if last == -1 || d.messages[i].Timestamp.After(d.messages[last].Timestamp) {
			last = i
		}
	}
	if last == -1 {
		return
	}
	msg := &d.messages[last]
	for i := range d.messages {
		if d.messages[i].Direction == communication.Outbound && d.messages[i].Timestamp.After(msg.Timestamp) {
			return
		}
	}

	uctx := &comms.UrgencyContext{}
	if a.Risk != nil {
		uctx.CaseRisk = a.Risk.Level
	}
	if a.Deadlines != nil {
		// deadlines are sorted by date, so the first non-overdue one is next
		for _, item := range a.Deadlines.Deadlines {
			if item.DaysRemaining >= 0 {
				days := item.DaysRemaining
				uctx.DaysToNextDeadline = &days
				break
			}
		}
	}

	score := o.opts.CommScorer.AnalyzeUrgency(msg.Subject, msg.Body, uctx)
	if score.Category.Order() < common.RiskHigh.Order() {
		return
	}
	desc := fmt.Sprintf("Dernier message entrant du %s sans réponse, urgence %.0f/100.",
		msg.Timestamp.Format("02/01/2006"), score.Score)
	if len(score.Matched) > 0 {
		desc = fmt.Sprintf("%s Signaux: %s.", desc, strings.Join(score.Matched, ", "))
	}
	add(insight.InsightCommunication, score.Category, "Message urgent sans réponse", desc)
}

func (o *Orchestrator) contactGapInsights(contacts []caserecord.CaseContact, add addInsight) {
	var hasClient, hasAdverse bool
	for _, contact := range contacts {
		switch contact.Role {
		case caserecord.RoleClient:
			hasClient = true
		case caserecord.RoleAdverse:
			hasAdverse = true
		}
	}
	if !hasClient {
		add(insight.InsightContactGap, common.RiskCritical,
			"Aucun client lié au dossier",
			"Le dossier ne référence aucun contact avec le rôle client.")
	}
	if !hasAdverse {
		add(insight.InsightContactGap, common.RiskHigh,
			"Partie adverse non identifiée",
			"Le dossier ne référence aucune partie adverse.")
	}
}
