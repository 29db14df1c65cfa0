package kafka

import (
	"context"
	"time"

	"github.com/jurisio/casebrain/internal/domain/insight"
	"github.com/jurisio/casebrain/internal/infrastructure/monitoring/logging"
	"github.com/jurisio/casebrain/pkg/types/common"
)

// Publisher adapts the Producer to the orchestrator's event port.  Every
// event is keyed by case ID so a case's events stay ordered within one
// partition.
type Publisher struct {
	producer *Producer
	source   string
	log      logging.Logger
}

func NewPublisher(producer *Producer, source string, log logging.Logger) *Publisher {
	if source == "" {
		source = "casebrain"
	}
	return &Publisher{producer: producer, source: source, log: log}
}

func (p *Publisher) InsightsReplaced(ctx context.Context, caseID common.ID, insights []insight.Insight) error {
	critical := 0
	for _, ins := range insights {
		if ins.Severity == common.RiskCritical {
			critical++
		}
	}
	return p.publish(ctx, TopicInsightsReplaced, "insights.replaced", string(caseID), InsightsReplacedPayload{
		CaseID:        string(caseID),
		InsightCount:  len(insights),
		CriticalCount: critical,
		ReplacedAt:    time.Now().UTC(),
	})
}

func (p *Publisher) ActionsReplaced(ctx context.Context, caseID common.ID, actions []insight.ActionSuggestion) error {
	top := ""
	for _, act := range actions {
		if top == "" || act.Priority.Order() > common.Priority(top).Order() {
			top = string(act.Priority)
		}
	}
	return p.publish(ctx, TopicActionsReplaced, "actions.replaced", string(caseID), ActionsReplacedPayload{
		CaseID:      string(caseID),
		ActionCount: len(actions),
		TopPriority: top,
		ReplacedAt:  time.Now().UTC(),
	})
}

func (p *Publisher) InsightDismissed(ctx context.Context, ins *insight.Insight) error {
	payload := InsightDismissedPayload{
		InsightID:   string(ins.ID),
		CaseID:      string(ins.CaseID),
		InsightType: string(ins.Type),
		DismissedBy: string(ins.DismissedBy),
	}
	if ins.DismissedAt != nil {
		payload.DismissedAt = *ins.DismissedAt
	}
	return p.publish(ctx, TopicInsightDismissed, "insight.dismissed", string(ins.CaseID), payload)
}

func (p *Publisher) ActionResolved(ctx context.Context, act *insight.ActionSuggestion) error {
	payload := ActionResolvedPayload{
		ActionID:   string(act.ID),
		CaseID:     string(act.CaseID),
		Status:     string(act.Status),
		ResolvedBy: string(act.ResolvedBy),
	}
	if act.ResolvedAt != nil {
		payload.ResolvedAt = *act.ResolvedAt
	}
	return p.publish(ctx, TopicActionResolved, "action.resolved", string(act.CaseID), payload)
}

func (p *Publisher) publish(ctx context.Context, topic, eventType, key string, payload interface{}) error {
	env, err := NewEventEnvelope(eventType, p.source, payload)
	if err != nil {
		return err
	}
	msg, err := env.ToMessage(topic)
	if err != nil {
		return err
	}
	msg.Key = []byte(key)
	return p.producer.Publish(ctx, msg)
}
