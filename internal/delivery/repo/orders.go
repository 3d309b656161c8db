package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"tamaqBack/internal/delivery/geo"
	"tamaqBack/internal/delivery/lifecycle"
)

// Order is the lifecycle-facing projection of a persisted order.
type Order struct {
	ID             int64
	PublicID       string
	UserID         int64
	StoreID        int64
	TotalAmount    float64
	ApplicationFee sql.NullFloat64
	Status         string
	AddressText    string
	AddressLat     float64
	AddressLon     float64
	AcceptedAt     sql.NullTime
	MinTime        sql.NullTime
	MaxTime        sql.NullTime
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// StoreInfo carries the store fields the engine needs at transition time.
type StoreInfo struct {
	ID      int64
	OwnerID int64
	Name    string
	Email   string
	Point   geo.Point
}

// UserContact identifies the ordering user for notifications.
type UserContact struct {
	ID    int64
	Name  string
	Email string
}

// OrdersRepo provides lifecycle persistence for orders.
type OrdersRepo struct {
	db *sql.DB
}

// NewOrdersRepo constructs a new OrdersRepo.
func NewOrdersRepo(db *sql.DB) *OrdersRepo {
	return &OrdersRepo{db: db}
}

const orderColumns = `id, public_id, user_id, store_id, total_amount, application_fee, status, address_text, address_lat, address_lon, accepted_at, min_time, max_time, created_at, updated_at`

// Get returns an order by its numeric identifier.
func (r *OrdersRepo) Get(ctx context.Context, id int64) (Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	return scanOrder(row)
}

// GetByPublicID returns an order by its public UUID.
func (r *OrdersRepo) GetByPublicID(ctx context.Context, publicID string) (Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE public_id = ?`, publicID)
	return scanOrder(row)
}

func scanOrder(row *sql.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.PublicID, &o.UserID, &o.StoreID, &o.TotalAmount, &o.ApplicationFee, &o.Status, &o.AddressText, &o.AddressLat, &o.AddressLon, &o.AcceptedAt, &o.MinTime, &o.MaxTime, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}
	return o, nil
}

// Accept atomically moves a pending order to accepted, stamping the
// acceptance instant, application fee and estimated delivery window, and
// queues the follow-up into preparing at prepareDue. All of it commits in
// one transaction: a crash cannot leave an accepted order without its
// scheduled follow-up. accepted_at is written exactly once here and never
// touched again. Returns ErrConflict when the order is no longer pending.
func (r *OrdersRepo) Accept(ctx context.Context, orderID int64, fee float64, acceptedAt, minTime, maxTime, prepareDue time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, execErr := tx.ExecContext(ctx, `UPDATE orders SET status = ?, accepted_at = ?, application_fee = ?, min_time = ?, max_time = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`,
		lifecycle.StatusAccepted, acceptedAt, fee, minTime, maxTime, orderID, lifecycle.StatusPending)
	if execErr != nil {
		err = execErr
		return err
	}
	if err = ensureUpdated(ctx, tx, res, orderID); err != nil {
		return err
	}

	if err = insertStatusHistory(ctx, tx, orderID, lifecycle.StatusAccepted, ""); err != nil {
		return err
	}
	if err = insertTransition(ctx, tx, orderID, lifecycle.StatusAccepted, lifecycle.StatusPreparing, prepareDue); err != nil {
		return err
	}

	return tx.Commit()
}

// UpdateStatusCAS moves an order from one status to another only when it
// still holds the expected current status, recording a history row.
// Returns ErrConflict when the guard fails.
func (r *OrdersRepo) UpdateStatusCAS(ctx context.Context, orderID int64, fromStatus, toStatus string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, execErr := tx.ExecContext(ctx, `UPDATE orders SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`, toStatus, orderID, fromStatus)
	if execErr != nil {
		err = execErr
		return err
	}
	if err = ensureUpdated(ctx, tx, res, orderID); err != nil {
		return err
	}

	if err = insertStatusHistory(ctx, tx, orderID, toStatus, ""); err != nil {
		return err
	}

	return tx.Commit()
}

// Dispatch moves an order to out_for_delivery with a freshly derived
// delivery window and queues the follow-up into delivered at deliverDue,
// all in one transaction. The window is recomputed only here and at
// acceptance.
func (r *OrdersRepo) Dispatch(ctx context.Context, orderID int64, fromStatus string, minTime, maxTime, deliverDue time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, execErr := tx.ExecContext(ctx, `UPDATE orders SET status = ?, min_time = ?, max_time = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`,
		lifecycle.StatusOutForDelivery, minTime, maxTime, orderID, fromStatus)
	if execErr != nil {
		err = execErr
		return err
	}
	if err = ensureUpdated(ctx, tx, res, orderID); err != nil {
		return err
	}

	if err = insertStatusHistory(ctx, tx, orderID, lifecycle.StatusOutForDelivery, ""); err != nil {
		return err
	}
	if err = insertTransition(ctx, tx, orderID, lifecycle.StatusOutForDelivery, lifecycle.StatusDelivered, deliverDue); err != nil {
		return err
	}

	return tx.Commit()
}

// PrepMinutes returns the order's aggregate kitchen prep time: the sum of
// the per-line-item prep estimates snapshotted at checkout.
func (r *OrdersRepo) PrepMinutes(ctx context.Context, orderID int64) (int, error) {
	var minutes int
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(prep_minutes), 0) FROM order_items WHERE order_id = ?`, orderID).Scan(&minutes)
	if err != nil {
		return 0, err
	}
	return minutes, nil
}

// StoreInfo returns the store identity and coordinates for an order's store.
func (r *OrdersRepo) StoreInfo(ctx context.Context, storeID int64) (StoreInfo, error) {
	var s StoreInfo
	err := r.db.QueryRowContext(ctx, `SELECT id, owner_id, name, email, lat, lon FROM stores WHERE id = ?`, storeID).
		Scan(&s.ID, &s.OwnerID, &s.Name, &s.Email, &s.Point.Lat, &s.Point.Lon)
	if errors.Is(err, sql.ErrNoRows) {
		return StoreInfo{}, ErrNotFound
	}
	if err != nil {
		return StoreInfo{}, err
	}
	return s, nil
}

// UserContact returns the ordering user's name and email.
func (r *OrdersRepo) UserContact(ctx context.Context, userID int64) (UserContact, error) {
	var u UserContact
	err := r.db.QueryRowContext(ctx, `SELECT id, name, email FROM users WHERE id = ?`, userID).
		Scan(&u.ID, &u.Name, &u.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return UserContact{}, ErrNotFound
	}
	if err != nil {
		return UserContact{}, err
	}
	return u, nil
}

func ensureUpdated(ctx context.Context, tx *sql.Tx, res sql.Result, orderID int64) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}
	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM orders WHERE id = ?`, orderID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ErrConflict
}

func insertTransition(ctx context.Context, tx *sql.Tx, orderID int64, fromStatus, toStatus string, dueAt time.Time) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO order_transitions (order_id, from_status, to_status, due_at, done, created_at) VALUES (?,?,?,?,0,?)`,
		orderID, fromStatus, toStatus, dueAt, time.Now())
	return err
}

func insertStatusHistory(ctx context.Context, tx *sql.Tx, orderID int64, status, note string) error {
	var n interface{}
	if note != "" {
		n = note
	}
	_, err := tx.ExecContext(ctx, `INSERT INTO order_status_history (order_id, status, note, created_at) VALUES (?,?,?,?)`, orderID, status, n, time.Now())
	return err
}
