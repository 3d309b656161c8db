package repo

import (
	"context"
	"database/sql"
	"time"
)

// Transition is a persisted deferred status change. Rows survive process
// restarts; the scheduler polls for due ones.
type Transition struct {
	ID         int64
	OrderID    int64
	FromStatus string
	ToStatus   string
	DueAt      time.Time
	CreatedAt  time.Time
}

// TransitionsRepo stores scheduled order transitions. New rows are
// inserted by OrdersRepo inside the same transaction as the status
// change they follow up on.
type TransitionsRepo struct {
	db *sql.DB
}

// NewTransitionsRepo constructs a new TransitionsRepo.
func NewTransitionsRepo(db *sql.DB) *TransitionsRepo {
	return &TransitionsRepo{db: db}
}

// ListDue returns pending transitions whose due time has passed.
func (r *TransitionsRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]Transition, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, order_id, from_status, to_status, due_at, created_at FROM order_transitions WHERE done = 0 AND due_at <= ? ORDER BY due_at LIMIT ?`, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var due []Transition
	for rows.Next() {
		var t Transition
		if err := rows.Scan(&t.ID, &t.OrderID, &t.FromStatus, &t.ToStatus, &t.DueAt, &t.CreatedAt); err != nil {
			return nil, err
		}
		due = append(due, t)
	}
	return due, rows.Err()
}

// Finish marks a transition as handled.
func (r *TransitionsRepo) Finish(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE order_transitions SET done = 1 WHERE id = ?`, id)
	return err
}

// VoidForOrder discards every pending transition for an order. Called on
// cancellation so a stale schedule cannot resurrect the order.
func (r *TransitionsRepo) VoidForOrder(ctx context.Context, orderID int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE order_transitions SET done = 1 WHERE order_id = ? AND done = 0`, orderID)
	return err
}
