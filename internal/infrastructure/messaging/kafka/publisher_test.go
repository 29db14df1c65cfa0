package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jurisio/casebrain/internal/domain/insight"
	"github.com/jurisio/casebrain/internal/infrastructure/monitoring/logging"
	"github.com/jurisio/casebrain/pkg/types/common"
)

func capturingPublisher(t *testing.T) (*Publisher, *[]kafka.Message) {
	t.Helper()
	var captured []kafka.Message
	producer := newTestProducer(&mockKafkaWriter{
		writeFunc: func(ctx context.Context, msgs ...kafka.Message) error {
			captured = append(captured, msgs...)
			return nil
		},
	})
	return NewPublisher(producer, "casebrain-test", logging.NewNopLogger()), &captured
}

func decodeEnvelope(t *testing.T, msg kafka.Message) *EventEnvelope {
	t.Helper()
	var env EventEnvelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	return &env
}

func TestPublisherInsightsReplaced(t *testing.T) {
	p, captured := capturingPublisher(t)

	insights := []insight.Insight{
		{ID: "i1", CaseID: "c1", Severity: common.RiskCritical},
		{ID: "i2", CaseID: "c1", Severity: common.RiskMedium},
	}
	require.NoError(t, p.InsightsReplaced(context.Background(), "c1", insights))

	require.Len(t, *captured, 1)
	msg := (*captured)[0]
	assert.Equal(t, TopicInsightsReplaced, msg.Topic)
	assert.Equal(t, "c1", string(msg.Key))

	env := decodeEnvelope(t, msg)
	assert.Equal(t, "insights.replaced", env.EventType)
	assert.Equal(t, "casebrain-test", env.Source)

	var payload InsightsReplacedPayload
	require.NoError(t, env.DecodePayload(&payload))
	assert.Equal(t, "c1", payload.CaseID)
	assert.Equal(t, 2, payload.InsightCount)
	assert.Equal(t, 1, payload.CriticalCount)
}

func TestPublisherActionsReplaced(t *testing.T) {
	p, captured := capturingPublisher(t)

	actions := []insight.ActionSuggestion{
		{ID: "a1", CaseID: "c1", Priority: common.PriorityMedium},
		{ID: "a2", CaseID: "c1", Priority: common.PriorityCritical},
	}
	require.NoError(t, p.ActionsReplaced(context.Background(), "c1", actions))

	require.Len(t, *captured, 1)
	env := decodeEnvelope(t, (*captured)[0])

	var payload ActionsReplacedPayload
	require.NoError(t, env.DecodePayload(&payload))
	assert.Equal(t, 2, payload.ActionCount)
	assert.Equal(t, string(common.PriorityCritical), payload.TopPriority)
}

func TestPublisherInsightDismissed(t *testing.T) {
	p, captured := capturingPublisher(t)

	at := time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC)
	ins := &insight.Insight{
		ID:          "i1",
		CaseID:      "c1",
		Type:        "deadline",
		Status:      insight.InsightDismissed,
		DismissedBy: "user-7",
		DismissedAt: &at,
	}
	require.NoError(t, p.InsightDismissed(context.Background(), ins))

	require.Len(t, *captured, 1)
	msg := (*captured)[0]
	assert.Equal(t, TopicInsightDismissed, msg.Topic)
	assert.Equal(t, "c1", string(msg.Key))

	var payload InsightDismissedPayload
	require.NoError(t, decodeEnvelope(t, msg).DecodePayload(&payload))
	assert.Equal(t, "i1", payload.InsightID)
	assert.Equal(t, "user-7", payload.DismissedBy)
	assert.True(t, payload.DismissedAt.Equal(at))
}

func TestPublisherActionResolved(t *testing.T) {
	p, captured := capturingPublisher(t)

	at := time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC)
	act := &insight.ActionSuggestion{
		ID:         "a1",
		CaseID:     "c1",
		Status:     insight.ActionApproved,
		ResolvedBy: "user-7",
		ResolvedAt: &at,
	}
	require.NoError(t, p.ActionResolved(context.Background(), act))

	require.Len(t, *captured, 1)
	msg := (*captured)[0]
	assert.Equal(t, TopicActionResolved, msg.Topic)

	var payload ActionResolvedPayload
	require.NoError(t, decodeEnvelope(t, msg).DecodePayload(&payload))
	assert.Equal(t, "a1", payload.ActionID)
	assert.Equal(t, string(insight.ActionApproved), payload.Status)
}

func TestPublisherDefaultSource(t *testing.T) {
	producer := newTestProducer(&mockKafkaWriter{})
	p := NewPublisher(producer, "", logging.NewNopLogger())
	assert.Equal(t, "casebrain", p.source)
}
