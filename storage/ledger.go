package storage

import (
	"context"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/cozn1l/gorosso/core/logger"
	"github.com/cozn1l/gorosso/domain"
)

// Reserve inserts a single-use payment reservation. The payload is the
// primary key, so a duplicate fails atomically.
func (s *Store) Reserve(ctx context.Context, pending domain.PendingOrder) error {
	const op = "ledger.reserve"
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pending_orders (payload, user_id, amount, cart, created_at)
		 VALUES ($1, $2, $3, $4, now())`,
		pending.Payload, pending.UserID, pending.Amount, pending.Cart)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.E(domain.KindDuplicatePayload, op, "payload already reserved")
		}
		return domain.Wrap(domain.KindInternal, op, err)
	}
	logger.SVCOrders.Info("reservation created",
		slog.String("event", "ledger.reserve"),
		slog.Int64("user_id", pending.UserID),
		slog.Int64("amount", pending.Amount),
		slog.String("payload", pending.Payload),
	)
	return nil
}

// Peek reads a reservation without consuming it.
func (s *Store) Peek(ctx context.Context, payload string) (domain.PendingOrder, error) {
	const op = "ledger.peek"
	var pending domain.PendingOrder
	err := s.db.GetContext(ctx, &pending,
		`SELECT payload, user_id, amount, cart, created_at
		   FROM pending_orders WHERE payload = $1`, payload)
	if err != nil {
		if isNoRows(err) {
			return domain.PendingOrder{}, domain.E(domain.KindNotFound, op, "reservation not found")
		}
		return domain.PendingOrder{}, domain.Wrap(domain.KindInternal, op, err)
	}
	return pending, nil
}

// consumePending atomically deletes the reservation and returns it. The
// single DELETE..RETURNING guarantees exactly one caller wins under
// concurrent delivery of the same confirmation. Capture runs it inside the
// order transaction so a failed order write rolls the consume back.
func consumePending(ctx context.Context, q sqlx.QueryerContext, payload string) (domain.PendingOrder, error) {
	const op = "ledger.consume"
	var pending domain.PendingOrder
	err := sqlx.GetContext(ctx, q, &pending,
		`DELETE FROM pending_orders WHERE payload = $1
		 RETURNING payload, user_id, amount, cart, created_at`, payload)
	if err != nil {
		if isNoRows(err) {
			return domain.PendingOrder{}, domain.E(domain.KindNotFound, op, "reservation not found")
		}
		return domain.PendingOrder{}, domain.Wrap(domain.KindInternal, op, err)
	}
	return pending, nil
}

// DeleteExpired drops reservations created before the cutoff. Rows already
// consumed by a capture are gone, so a late capture that got there first
// always wins.
func (s *Store) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	const op = "ledger.delete_expired"
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM pending_orders WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, domain.Wrap(domain.KindInternal, op, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
