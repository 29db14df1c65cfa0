package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jurisio/casebrain/internal/domain/insight"
	"github.com/jurisio/casebrain/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/jurisio/casebrain/pkg/errors"
	"github.com/jurisio/casebrain/pkg/types/common"
)

// InsightRepository is the PostgreSQL implementation of insight.Repository.
// It is the only repository the engine writes through; the replace operations
// run in a transaction so a re-analysis never leaves a half-replaced set.
type InsightRepository struct {
	pool *pgxpool.Pool
	log  logging.Logger
}

// NewInsightRepository constructs a ready-to-use InsightRepository.
func NewInsightRepository(pool *pgxpool.Pool, log logging.Logger) *InsightRepository {
	return &InsightRepository{pool: pool, log: log}
}

const insightColumns = `id, case_id, type, severity, title, description,
	status, created_at, dismissed_at, dismissed_by`

const actionColumns = `id, case_id, title, description, priority, confidence,
	source, status, due_hint, created_at, resolved_at, resolved_by`

// ReplaceInsights atomically replaces all non-dismissed insights for a case
// with the freshly derived set.  Dismissed insights survive re-analysis.
func (r *InsightRepository) ReplaceInsights(ctx context.Context, caseID common.ID, insights []insight.Insight) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM insights WHERE case_id = $1 AND status <> 'dismissed'`, caseID); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "failed to clear insights")
	}

	batch := &pgx.Batch{}
	for i := range insights {
		ins := &insights[i]
		batch.Queue(`
			INSERT INTO insights (`+insightColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			ins.ID, ins.CaseID, ins.Type, ins.Severity, ins.Title, ins.Description,
			ins.Status, ins.CreatedAt, ins.DismissedAt, ins.DismissedBy)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "failed to insert insights")
	}

	if err := tx.Commit(ctx); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "failed to commit insights")
	}
	r.log.Debug("insights replaced",
		logging.String("case_id", string(caseID)), logging.Int("count", len(insights)))
	return nil
}

// ReplaceActions atomically replaces all pending action suggestions for a
// case.  Approved and rejected suggestions survive re-analysis.
func (r *InsightRepository) ReplaceActions(ctx context.Context, caseID common.ID, actions []insight.ActionSuggestion) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM action_suggestions WHERE case_id = $1 AND status = 'pending'`, caseID); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "failed to clear actions")
	}

	batch := &pgx.Batch{}
	for i := range actions {
		act := &actions[i]
		batch.Queue(`
			INSERT INTO action_suggestions (`+actionColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
			act.ID, act.CaseID, act.Title, act.Description, act.Priority, act.Confidence,
			act.Source, act.Status, act.DueHint, act.CreatedAt, act.ResolvedAt, act.ResolvedBy)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "failed to insert actions")
	}

	if err := tx.Commit(ctx); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "failed to commit actions")
	}
	r.log.Debug("actions replaced",
		logging.String("case_id", string(caseID)), logging.Int("count", len(actions)))
	return nil
}

// ListInsights returns all insights for a case, newest first.
func (r *InsightRepository) ListInsights(ctx context.Context, caseID common.ID) ([]insight.Insight, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+insightColumns+` FROM insights
		 WHERE case_id = $1 ORDER BY created_at DESC, id`, caseID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "failed to list insights")
	}
	defer rows.Close()

	var out []insight.Insight
	for rows.Next() {
		ins, err := scanInsight(rows)
		if err != nil {
			return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "failed to scan insight")
		}
		out = append(out, *ins)
	}
	return out, rows.Err()
}

// ListActions returns all action suggestions for a case, newest first.
func (r *InsightRepository) ListActions(ctx context.Context, caseID common.ID) ([]insight.ActionSuggestion, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+actionColumns+` FROM action_suggestions
		 WHERE case_id = $1 ORDER BY created_at DESC, id`, caseID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "failed to list actions")
	}
	defer rows.Close()

	var out []insight.ActionSuggestion
	for rows.Next() {
		act, err := scanAction(rows)
		if err != nil {
			return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "failed to scan action")
		}
		out = append(out, *act)
	}
	return out, rows.Err()
}

// GetInsight returns a single insight by ID.
func (r *InsightRepository) GetInsight(ctx context.Context, id common.ID) (*insight.Insight, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+insightColumns+` FROM insights WHERE id = $1`, id)
	ins, err := scanInsight(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pkgerrors.New(pkgerrors.ErrCodeInsightNotFound, "insight not found").
				WithDetail("id=" + string(id))
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "failed to load insight")
	}
	return ins, nil
}

// GetAction returns a single action suggestion by ID.
func (r *InsightRepository) GetAction(ctx context.Context, id common.ID) (*insight.ActionSuggestion, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+actionColumns+` FROM action_suggestions WHERE id = $1`, id)
	act, err := scanAction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pkgerrors.New(pkgerrors.ErrCodeActionNotFound, "action suggestion not found").
				WithDetail("id=" + string(id))
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "failed to load action")
	}
	return act, nil
}

// UpdateInsight persists a lifecycle transition.
func (r *InsightRepository) UpdateInsight(ctx context.Context, ins *insight.Insight) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE insights SET status = $2, dismissed_at = $3, dismissed_by = $4 WHERE id = $1`,
		ins.ID, ins.Status, ins.DismissedAt, ins.DismissedBy)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "failed to update insight")
	}
	if tag.RowsAffected() == 0 {
		return pkgerrors.New(pkgerrors.ErrCodeInsightNotFound, "insight not found").
			WithDetail("id=" + string(ins.ID))
	}
	return nil
}

// UpdateAction persists a lifecycle transition.
func (r *InsightRepository) UpdateAction(ctx context.Context, act *insight.ActionSuggestion) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE action_suggestions SET status = $2, resolved_at = $3, resolved_by = $4 WHERE id = $1`,
		act.ID, act.Status, act.ResolvedAt, act.ResolvedBy)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "failed to update action")
	}
	if tag.RowsAffected() == 0 {
		return pkgerrors.New(pkgerrors.ErrCodeActionNotFound, "action suggestion not found").
			WithDetail("id=" + string(act.ID))
	}
	return nil
}

// CountPendingActions returns the number of pending suggestions across the
// given cases.
func (r *InsightRepository) CountPendingActions(ctx context.Context, caseIDs []common.ID) (int, error) {
	if len(caseIDs) == 0 {
		return 0, nil
	}
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM action_suggestions
		 WHERE status = 'pending' AND case_id = ANY($1)`, caseIDs).Scan(&count)
	if err != nil {
		return 0, pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "failed to count pending actions")
	}
	return count, nil
}

func scanInsight(row pgx.Row) (*insight.Insight, error) {
	var ins insight.Insight
	if err := row.Scan(&ins.ID, &ins.CaseID, &ins.Type, &ins.Severity, &ins.Title,
		&ins.Description, &ins.Status, &ins.CreatedAt, &ins.DismissedAt, &ins.DismissedBy); err != nil {
		return nil, err
	}
	return &ins, nil
}

func scanAction(row pgx.Row) (*insight.ActionSuggestion, error) {
	var act insight.ActionSuggestion
	if err := row.Scan(&act.ID, &act.CaseID, &act.Title, &act.Description, &act.Priority,
		&act.Confidence, &act.Source, &act.Status, &act.DueHint, &act.CreatedAt,
		&act.ResolvedAt, &act.ResolvedBy); err != nil {
		return nil, err
	}
	return &act, nil
}
