package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jurisio/casebrain/internal/domain/communication"
	"github.com/jurisio/casebrain/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/jurisio/casebrain/pkg/errors"
	"github.com/jurisio/casebrain/pkg/types/common"
)

// MessageRepository is the PostgreSQL implementation of
// communication.Repository.
type MessageRepository struct {
	pool *pgxpool.Pool
	log  logging.Logger
}

// NewMessageRepository constructs a ready-to-use MessageRepository.
func NewMessageRepository(pool *pgxpool.Pool, log logging.Logger) *MessageRepository {
	return &MessageRepository{pool: pool, log: log}
}

// ListMessages returns all emails and calls for a case, timestamp ascending.
func (r *MessageRepository) ListMessages(ctx context.Context, caseID common.ID) ([]communication.Message, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, case_id, kind, direction, occurred_at, subject, body,
		        from_addr, to_addrs, phone, duration_sec
		 FROM messages WHERE case_id = $1 ORDER BY occurred_at`, caseID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "failed to list messages")
	}
	defer rows.Close()

	var out []communication.Message
	for rows.Next() {
		var m communication.Message
		if err := rows.Scan(&m.ID, &m.CaseID, &m.Kind, &m.Direction, &m.Timestamp,
			&m.Subject, &m.Body, &m.FromAddr, &m.ToAddrs, &m.Phone, &m.DurationSec); err != nil {
			return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "failed to scan message")
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
