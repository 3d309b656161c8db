package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"tamaqBack/internal/delivery"
	"tamaqBack/internal/delivery/geo"
	"tamaqBack/internal/delivery/lifecycle"
	"tamaqBack/internal/delivery/repo"
	"tamaqBack/internal/delivery/ws"
)

// ErrInvalidStatus indicates an operation was attempted against an order
// whose current status does not allow it.
var ErrInvalidStatus = errors.New("delivery: invalid order status")

// Logger provides minimal logging for the engine.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// OrdersRepository covers the order persistence operations the engine needs.
type OrdersRepository interface {
	Get(ctx context.Context, id int64) (repo.Order, error)
	Accept(ctx context.Context, orderID int64, fee float64, acceptedAt, minTime, maxTime, prepareDue time.Time) error
	UpdateStatusCAS(ctx context.Context, orderID int64, fromStatus, toStatus string) error
	Dispatch(ctx context.Context, orderID int64, fromStatus string, minTime, maxTime, deliverDue time.Time) error
	PrepMinutes(ctx context.Context, orderID int64) (int, error)
	StoreInfo(ctx context.Context, storeID int64) (repo.StoreInfo, error)
	UserContact(ctx context.Context, userID int64) (repo.UserContact, error)
}

// TransitionsRepository voids deferred transitions on cancellation.
// Scheduling happens inside the OrdersRepository write transactions.
type TransitionsRepository interface {
	VoidForOrder(ctx context.Context, orderID int64) error
}

// Publisher fans status events out to live subscribers.
type Publisher interface {
	Broadcast(event string, payload interface{})
	BroadcastToStore(storeID int64, event string, payload interface{})
}

// Mailer sends transactional email on behalf of a store.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody, fromName, fromAddr string) error
}

// StatusEvent is the ORDER_STATUS payload shape. EstimatedDeliveryTime is
// present on accept and dispatch events and absent on cancellations.
type StatusEvent struct {
	OrderID               string          `json:"orderId"`
	StoreName             string          `json:"storeName"`
	EstimatedDeliveryTime *EstimateWindow `json:"estimatedDeliveryTime,omitempty"`
	Status                string          `json:"status"`
}

// EstimateWindow carries the absolute delivery window as RFC 3339 strings.
type EstimateWindow struct {
	MinTime string `json:"minTime"`
	MaxTime string `json:"maxTime"`
}

// Engine drives the order lifecycle: acceptance with fee and delivery
// window derivation, cancellation, dispatch and the deferred follow-up
// transitions applied by the scheduler. The engine is the only writer of
// an order's status and timing fields between acceptance and dispatch.
type Engine struct {
	orders      OrdersRepository
	transitions TransitionsRepository
	hub         Publisher
	mailer      Mailer
	logger      Logger
	cfg         delivery.Config
}

// New constructs an Engine.
func New(orders OrdersRepository, transitions TransitionsRepository, hub Publisher, mailer Mailer, logger Logger, cfg delivery.Config) *Engine {
	return &Engine{orders: orders, transitions: transitions, hub: hub, mailer: mailer, logger: logger, cfg: cfg}
}

// Accept moves a pending order to accepted. It derives the application
// fee, the store-to-address distance, the aggregate prep time and the
// estimated delivery window, persists all of it atomically together with
// the deferred move to preparing, and broadcasts the status event.
func (e *Engine) Accept(ctx context.Context, orderID int64) (repo.Order, error) {
	order, err := e.orders.Get(ctx, orderID)
	if err != nil {
		return repo.Order{}, err
	}
	if order.Status != lifecycle.StatusPending {
		return repo.Order{}, ErrInvalidStatus
	}

	store, err := e.orders.StoreInfo(ctx, order.StoreID)
	if err != nil {
		return repo.Order{}, err
	}
	prep, err := e.orders.PrepMinutes(ctx, orderID)
	if err != nil {
		return repo.Order{}, err
	}

	distance := store.Point.DistanceTo(geo.Point{Lat: order.AddressLat, Lon: order.AddressLon})
	window := e.cfg.Estimate.Window(float64(prep), distance)

	now := time.Now()
	fee := roundMoney(order.TotalAmount * e.cfg.ApplicationFeeRate)
	minTime := now.Add(time.Duration(window.Min) * time.Minute)
	maxTime := now.Add(time.Duration(window.Max) * time.Minute)

	if err := e.orders.Accept(ctx, orderID, fee, now, minTime, maxTime, now.Add(e.cfg.PrepareDelay)); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return repo.Order{}, ErrInvalidStatus
		}
		return repo.Order{}, err
	}

	order.Status = lifecycle.StatusAccepted
	order.ApplicationFee.Float64, order.ApplicationFee.Valid = fee, true
	order.AcceptedAt.Time, order.AcceptedAt.Valid = now, true
	order.MinTime.Time, order.MinTime.Valid = minTime, true
	order.MaxTime.Time, order.MaxTime.Valid = maxTime, true

	e.hub.Broadcast(ws.EventOrderStatus, e.statusEvent(order, store.Name))

	e.logger.Infof("order %d accepted: fee=%.2f window=%d-%d min distance=%.2f mi prep=%d min", orderID, fee, window.Min, window.Max, distance, prep)
	return order, nil
}

// Cancel moves a still-cancelable order to canceled, voids its pending
// scheduled transitions, emails the ordering user from the store's
// identity and notifies the store channel only.
func (e *Engine) Cancel(ctx context.Context, orderID int64) (repo.Order, error) {
	order, err := e.orders.Get(ctx, orderID)
	if err != nil {
		return repo.Order{}, err
	}
	if !lifecycle.Cancelable(order.Status) {
		return repo.Order{}, ErrInvalidStatus
	}

	if err := e.orders.UpdateStatusCAS(ctx, orderID, order.Status, lifecycle.StatusCanceled); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return repo.Order{}, ErrInvalidStatus
		}
		return repo.Order{}, err
	}
	order.Status = lifecycle.StatusCanceled

	if err := e.transitions.VoidForOrder(ctx, orderID); err != nil {
		return repo.Order{}, fmt.Errorf("void scheduled transitions: %w", err)
	}

	store, err := e.orders.StoreInfo(ctx, order.StoreID)
	if err != nil {
		return repo.Order{}, err
	}
	user, err := e.orders.UserContact(ctx, order.UserID)
	if err != nil {
		return repo.Order{}, err
	}

	subject := fmt.Sprintf("Your order at %s was canceled", store.Name)
	body := fmt.Sprintf("<p>Hi %s,</p><p>%s canceled your order <b>%s</b>. You have not been charged.</p>", user.Name, store.Name, order.PublicID)
	if err := e.mailer.Send(ctx, user.Email, subject, body, store.Name, store.Email); err != nil {
		return repo.Order{}, fmt.Errorf("send cancellation email: %w", err)
	}

	e.hub.BroadcastToStore(order.StoreID, ws.EventOrderStatus, StatusEvent{
		OrderID:   order.PublicID,
		StoreName: store.Name,
		Status:    lifecycle.StatusCanceled,
	})

	e.logger.Infof("order %d canceled", orderID)
	return order, nil
}

// OutForDelivery dispatches an order: it persists a freshly recomputed
// delivery window and the deferred move to delivered together with the
// status change, then broadcasts the event.
func (e *Engine) OutForDelivery(ctx context.Context, orderID int64) (repo.Order, error) {
	order, err := e.orders.Get(ctx, orderID)
	if err != nil {
		return repo.Order{}, err
	}
	if !lifecycle.CanTransition(order.Status, lifecycle.StatusOutForDelivery) || order.Status == lifecycle.StatusOutForDelivery {
		return repo.Order{}, ErrInvalidStatus
	}

	store, err := e.orders.StoreInfo(ctx, order.StoreID)
	if err != nil {
		return repo.Order{}, err
	}
	prep, err := e.orders.PrepMinutes(ctx, orderID)
	if err != nil {
		return repo.Order{}, err
	}

	distance := store.Point.DistanceTo(geo.Point{Lat: order.AddressLat, Lon: order.AddressLon})
	window := e.cfg.Estimate.Window(float64(prep), distance)

	now := time.Now()
	minTime := now.Add(time.Duration(window.Min) * time.Minute)
	maxTime := now.Add(time.Duration(window.Max) * time.Minute)

	if err := e.orders.Dispatch(ctx, orderID, order.Status, minTime, maxTime, now.Add(e.cfg.DeliverDelay)); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return repo.Order{}, ErrInvalidStatus
		}
		return repo.Order{}, err
	}

	order.Status = lifecycle.StatusOutForDelivery
	order.MinTime.Time, order.MinTime.Valid = minTime, true
	order.MaxTime.Time, order.MaxTime.Valid = maxTime, true

	e.hub.Broadcast(ws.EventOrderStatus, e.statusEvent(order, store.Name))

	e.logger.Infof("order %d out for delivery: window=%d-%d min", orderID, window.Min, window.Max)
	return order, nil
}

// ApplyTransition executes one deferred transition on behalf of the
// scheduler. The compare-and-swap guard means a transition scheduled
// before a cancellation (or any other concurrent move) is skipped
// silently instead of overwriting the newer status.
func (e *Engine) ApplyTransition(ctx context.Context, t repo.Transition) error {
	if err := e.orders.UpdateStatusCAS(ctx, t.OrderID, t.FromStatus, t.ToStatus); err != nil {
		if errors.Is(err, repo.ErrConflict) || errors.Is(err, repo.ErrNotFound) {
			e.logger.Infof("order %d skipped stale transition %s -> %s", t.OrderID, t.FromStatus, t.ToStatus)
			return nil
		}
		return err
	}

	order, err := e.orders.Get(ctx, t.OrderID)
	if err != nil {
		return err
	}
	store, err := e.orders.StoreInfo(ctx, order.StoreID)
	if err != nil {
		return err
	}

	e.hub.Broadcast(ws.EventOrderStatus, e.statusEvent(order, store.Name))
	e.logger.Infof("order %d advanced %s -> %s", t.OrderID, t.FromStatus, t.ToStatus)
	return nil
}

func (e *Engine) statusEvent(order repo.Order, storeName string) StatusEvent {
	ev := StatusEvent{
		OrderID:   order.PublicID,
		StoreName: storeName,
		Status:    order.Status,
	}
	if order.MinTime.Valid && order.MaxTime.Valid {
		ev.EstimatedDeliveryTime = &EstimateWindow{
			MinTime: order.MinTime.Time.UTC().Format(time.RFC3339),
			MaxTime: order.MaxTime.Time.UTC().Format(time.RFC3339),
		}
	}
	return ev
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
