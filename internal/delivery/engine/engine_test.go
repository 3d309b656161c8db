package engine

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"tamaqBack/internal/delivery"
	"tamaqBack/internal/delivery/geo"
	"tamaqBack/internal/delivery/lifecycle"
	"tamaqBack/internal/delivery/repo"
)

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}

type fakeOrders struct {
	orders    map[int64]*repo.Order
	prep      map[int64]int
	stores    map[int64]repo.StoreInfo
	users     map[int64]repo.UserContact
	scheduled []repo.Transition
}

func (f *fakeOrders) Get(ctx context.Context, id int64) (repo.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return repo.Order{}, repo.ErrNotFound
	}
	return *o, nil
}

func (f *fakeOrders) Accept(ctx context.Context, orderID int64, fee float64, acceptedAt, minTime, maxTime, prepareDue time.Time) error {
	o, ok := f.orders[orderID]
	if !ok {
		return repo.ErrNotFound
	}
	if o.Status != lifecycle.StatusPending {
		return repo.ErrConflict
	}
	o.Status = lifecycle.StatusAccepted
	o.ApplicationFee.Float64, o.ApplicationFee.Valid = fee, true
	o.AcceptedAt.Time, o.AcceptedAt.Valid = acceptedAt, true
	o.MinTime.Time, o.MinTime.Valid = minTime, true
	o.MaxTime.Time, o.MaxTime.Valid = maxTime, true
	f.scheduled = append(f.scheduled, repo.Transition{OrderID: orderID, FromStatus: lifecycle.StatusAccepted, ToStatus: lifecycle.StatusPreparing, DueAt: prepareDue})
	return nil
}

func (f *fakeOrders) UpdateStatusCAS(ctx context.Context, orderID int64, fromStatus, toStatus string) error {
	o, ok := f.orders[orderID]
	if !ok {
		return repo.ErrNotFound
	}
	if o.Status != fromStatus {
		return repo.ErrConflict
	}
	o.Status = toStatus
	return nil
}

func (f *fakeOrders) Dispatch(ctx context.Context, orderID int64, fromStatus string, minTime, maxTime, deliverDue time.Time) error {
	o, ok := f.orders[orderID]
	if !ok {
		return repo.ErrNotFound
	}
	if o.Status != fromStatus {
		return repo.ErrConflict
	}
	o.Status = lifecycle.StatusOutForDelivery
	o.MinTime.Time, o.MinTime.Valid = minTime, true
	o.MaxTime.Time, o.MaxTime.Valid = maxTime, true
	f.scheduled = append(f.scheduled, repo.Transition{OrderID: orderID, FromStatus: lifecycle.StatusOutForDelivery, ToStatus: lifecycle.StatusDelivered, DueAt: deliverDue})
	return nil
}

func (f *fakeOrders) PrepMinutes(ctx context.Context, orderID int64) (int, error) {
	return f.prep[orderID], nil
}

func (f *fakeOrders) StoreInfo(ctx context.Context, storeID int64) (repo.StoreInfo, error) {
	s, ok := f.stores[storeID]
	if !ok {
		return repo.StoreInfo{}, repo.ErrNotFound
	}
	return s, nil
}

func (f *fakeOrders) UserContact(ctx context.Context, userID int64) (repo.UserContact, error) {
	u, ok := f.users[userID]
	if !ok {
		return repo.UserContact{}, repo.ErrNotFound
	}
	return u, nil
}

type fakeTransitions struct {
	voided []int64
}

func (f *fakeTransitions) VoidForOrder(ctx context.Context, orderID int64) error {
	f.voided = append(f.voided, orderID)
	return nil
}

type publishedEvent struct {
	storeID int64
	event   string
	payload interface{}
}

type fakeHub struct {
	broadcasts []publishedEvent
	storecasts []publishedEvent
}

func (f *fakeHub) Broadcast(event string, payload interface{}) {
	f.broadcasts = append(f.broadcasts, publishedEvent{event: event, payload: payload})
}

func (f *fakeHub) BroadcastToStore(storeID int64, event string, payload interface{}) {
	f.storecasts = append(f.storecasts, publishedEvent{storeID: storeID, event: event, payload: payload})
}

type sentMail struct {
	to, subject, fromName, fromAddr string
}

type fakeMailer struct {
	sent []sentMail
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, htmlBody, fromName, fromAddr string) error {
	f.sent = append(f.sent, sentMail{to: to, subject: subject, fromName: fromName, fromAddr: fromAddr})
	return nil
}

func testConfig() delivery.Config {
	cfg, _ := delivery.LoadConfig()
	return cfg
}

type fixture struct {
	orders      *fakeOrders
	transitions *fakeTransitions
	hub         *fakeHub
	mailer      *fakeMailer
	engine      *Engine
}

func newFixture() *fixture {
	point := geo.Point{Lat: 51.128207, Lon: 71.430411}
	orders := &fakeOrders{
		orders: map[int64]*repo.Order{
			1: {ID: 1, PublicID: "ord-1", UserID: 7, StoreID: 3, TotalAmount: 100, Status: lifecycle.StatusPending, AddressLat: point.Lat, AddressLon: point.Lon},
			2: {ID: 2, PublicID: "ord-2", UserID: 8, StoreID: 3, TotalAmount: 40, Status: lifecycle.StatusAccepted, AddressLat: point.Lat, AddressLon: point.Lon},
		},
		prep:   map[int64]int{1: 20, 2: 10},
		stores: map[int64]repo.StoreInfo{3: {ID: 3, OwnerID: 9, Name: "Dastarkhan", Email: "orders@dastarkhan.kz", Point: point}},
		users: map[int64]repo.UserContact{
			7: {ID: 7, Name: "Aruzhan", Email: "aruzhan@example.com"},
			8: {ID: 8, Name: "Miras", Email: "miras@example.com"},
		},
	}
	transitions := &fakeTransitions{}
	hub := &fakeHub{}
	mailer := &fakeMailer{}
	return &fixture{
		orders:      orders,
		transitions: transitions,
		hub:         hub,
		mailer:      mailer,
		engine:      New(orders, transitions, hub, mailer, nopLogger{}, testConfig()),
	}
}

func TestAcceptPendingOrder(t *testing.T) {
	fx := newFixture()
	before := time.Now()

	order, err := fx.engine.Accept(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if order.Status != lifecycle.StatusAccepted {
		t.Fatalf("expected accepted, got %s", order.Status)
	}
	if !order.ApplicationFee.Valid || order.ApplicationFee.Float64 != 5.00 {
		t.Fatalf("expected fee 5.00 for 100.00 total, got %+v", order.ApplicationFee)
	}
	if !order.AcceptedAt.Valid || order.AcceptedAt.Time.Before(before) || order.AcceptedAt.Time.After(time.Now()) {
		t.Fatalf("acceptedAt not stamped correctly: %+v", order.AcceptedAt)
	}

	// Store and address share a coordinate, so distance is 0 and prep is
	// 20 minutes: window must be exactly {25, 30} relative to acceptance.
	wantMin := order.AcceptedAt.Time.Add(25 * time.Minute)
	wantMax := order.AcceptedAt.Time.Add(30 * time.Minute)
	if !order.MinTime.Time.Equal(wantMin) || !order.MaxTime.Time.Equal(wantMax) {
		t.Fatalf("unexpected window: min=%v max=%v", order.MinTime.Time, order.MaxTime.Time)
	}

	if len(fx.hub.broadcasts) != 1 {
		t.Fatalf("expected one broadcast, got %d", len(fx.hub.broadcasts))
	}
	ev := fx.hub.broadcasts[0].payload.(StatusEvent)
	if ev.OrderID != "ord-1" || ev.StoreName != "Dastarkhan" || ev.Status != lifecycle.StatusAccepted {
		t.Fatalf("unexpected event %+v", ev)
	}
	if ev.EstimatedDeliveryTime == nil {
		t.Fatal("accept event must carry the estimated delivery window")
	}

	// The follow-up row is written by the same repository call as the
	// status change, so a crash after acceptance cannot lose it.
	if len(fx.orders.scheduled) != 1 {
		t.Fatalf("expected one scheduled transition, got %d", len(fx.orders.scheduled))
	}
	tr := fx.orders.scheduled[0]
	if tr.FromStatus != lifecycle.StatusAccepted || tr.ToStatus != lifecycle.StatusPreparing {
		t.Fatalf("unexpected transition %+v", tr)
	}
	if d := tr.DueAt.Sub(order.AcceptedAt.Time); math.Abs(d.Seconds()-20) > 1 {
		t.Fatalf("expected preparing due ~20s after acceptance, got %s", d)
	}
}

func TestAcceptNonPendingOrder(t *testing.T) {
	fx := newFixture()
	if _, err := fx.engine.Accept(context.Background(), 2); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if len(fx.hub.broadcasts) != 0 || len(fx.orders.scheduled) != 0 {
		t.Fatal("failed accept must not publish or schedule")
	}
}

func TestAcceptMissingOrder(t *testing.T) {
	fx := newFixture()
	if _, err := fx.engine.Accept(context.Background(), 99); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCancelAcceptedOrder(t *testing.T) {
	fx := newFixture()

	order, err := fx.engine.Cancel(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Status != lifecycle.StatusCanceled {
		t.Fatalf("expected canceled, got %s", order.Status)
	}

	if len(fx.mailer.sent) != 1 {
		t.Fatalf("expected exactly one email, got %d", len(fx.mailer.sent))
	}
	mail := fx.mailer.sent[0]
	if mail.to != "miras@example.com" || mail.fromName != "Dastarkhan" {
		t.Fatalf("unexpected mail %+v", mail)
	}

	if len(fx.hub.broadcasts) != 0 {
		t.Fatal("cancellation must not broadcast globally")
	}
	if len(fx.hub.storecasts) != 1 || fx.hub.storecasts[0].storeID != 3 {
		t.Fatalf("expected one store-channel event, got %+v", fx.hub.storecasts)
	}
	ev := fx.hub.storecasts[0].payload.(StatusEvent)
	if ev.Status != lifecycle.StatusCanceled || ev.EstimatedDeliveryTime != nil {
		t.Fatalf("cancellation event must omit the window: %+v", ev)
	}

	if len(fx.transitions.voided) != 1 || fx.transitions.voided[0] != 2 {
		t.Fatalf("expected pending transitions voided for order 2, got %v", fx.transitions.voided)
	}
}

func TestCancelDoesNotTouchOtherOrders(t *testing.T) {
	fx := newFixture()

	if _, err := fx.engine.Cancel(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	other := fx.orders.orders[2]
	if other.Status != lifecycle.StatusAccepted {
		t.Fatalf("order 2 status changed to %s", other.Status)
	}
	for _, id := range fx.transitions.voided {
		if id != 1 {
			t.Fatalf("unexpected void for order %d", id)
		}
	}
}

func TestCancelDeliveredOrder(t *testing.T) {
	fx := newFixture()
	fx.orders.orders[2].Status = lifecycle.StatusDelivered

	if _, err := fx.engine.Cancel(context.Background(), 2); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if len(fx.mailer.sent) != 0 {
		t.Fatal("failed cancel must not email")
	}
}

func TestOutForDelivery(t *testing.T) {
	fx := newFixture()
	fx.orders.orders[2].Status = lifecycle.StatusPreparing

	order, err := fx.engine.OutForDelivery(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Status != lifecycle.StatusOutForDelivery {
		t.Fatalf("expected out_for_delivery, got %s", order.Status)
	}
	if !order.MinTime.Valid || !order.MaxTime.Valid {
		t.Fatal("dispatch must persist a fresh window")
	}

	if len(fx.hub.broadcasts) != 1 {
		t.Fatalf("expected one broadcast, got %d", len(fx.hub.broadcasts))
	}
	ev := fx.hub.broadcasts[0].payload.(StatusEvent)
	if ev.Status != lifecycle.StatusOutForDelivery || ev.EstimatedDeliveryTime == nil {
		t.Fatalf("unexpected event %+v", ev)
	}

	if len(fx.orders.scheduled) != 1 {
		t.Fatalf("expected one scheduled transition, got %d", len(fx.orders.scheduled))
	}
	tr := fx.orders.scheduled[0]
	if tr.ToStatus != lifecycle.StatusDelivered {
		t.Fatalf("expected delivered follow-up, got %+v", tr)
	}
}

func TestApplyTransitionAdvancesOrder(t *testing.T) {
	fx := newFixture()

	err := fx.engine.ApplyTransition(context.Background(), repo.Transition{
		OrderID: 2, FromStatus: lifecycle.StatusAccepted, ToStatus: lifecycle.StatusPreparing,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fx.orders.orders[2].Status != lifecycle.StatusPreparing {
		t.Fatalf("expected preparing, got %s", fx.orders.orders[2].Status)
	}
	if len(fx.hub.broadcasts) != 1 {
		t.Fatalf("expected one broadcast, got %d", len(fx.hub.broadcasts))
	}
}

func TestApplyTransitionSkipsStaleSchedule(t *testing.T) {
	fx := newFixture()
	fx.orders.orders[2].Status = lifecycle.StatusCanceled

	err := fx.engine.ApplyTransition(context.Background(), repo.Transition{
		OrderID: 2, FromStatus: lifecycle.StatusAccepted, ToStatus: lifecycle.StatusPreparing,
	})
	if err != nil {
		t.Fatalf("stale transition must be skipped silently, got %v", err)
	}
	if fx.orders.orders[2].Status != lifecycle.StatusCanceled {
		t.Fatal("stale transition must not resurrect a canceled order")
	}
	if len(fx.hub.broadcasts) != 0 {
		t.Fatal("skipped transition must not publish")
	}
}
