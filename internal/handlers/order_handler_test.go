package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tamaqBack/internal/delivery/repo"
)

type fakeTracker struct {
	orders map[string]repo.Order
}

func (f *fakeTracker) GetByPublicID(ctx context.Context, publicID string) (repo.Order, error) {
	o, ok := f.orders[publicID]
	if !ok {
		return repo.Order{}, repo.ErrNotFound
	}
	return o, nil
}

func trackRequest(t *testing.T, h *OrderHandler, publicID string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/order/track/x?:public_id="+publicID, nil)
	w := httptest.NewRecorder()
	h.Track(w, r)
	return w
}

func TestTrackOrderWithWindow(t *testing.T) {
	min := time.Date(2026, 3, 1, 12, 25, 0, 0, time.UTC)
	max := min.Add(5 * time.Minute)
	h := &OrderHandler{Tracker: &fakeTracker{orders: map[string]repo.Order{
		"ord-1": {
			ID:       1,
			PublicID: "ord-1",
			Status:   "accepted",
			MinTime:  sql.NullTime{Time: min, Valid: true},
			MaxTime:  sql.NullTime{Time: max, Valid: true},
		},
	}}}

	w := trackRequest(t, h, "ord-1")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body struct {
		OrderID               string `json:"orderId"`
		Status                string `json:"status"`
		EstimatedDeliveryTime *struct {
			Min string `json:"min"`
			Max string `json:"max"`
		} `json:"estimatedDeliveryTime"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.OrderID != "ord-1" || body.Status != "accepted" {
		t.Fatalf("unexpected body %+v", body)
	}
	if body.EstimatedDeliveryTime == nil {
		t.Fatal("expected the delivery window in the response")
	}
	if body.EstimatedDeliveryTime.Min != "2026-03-01T12:25:00Z" || body.EstimatedDeliveryTime.Max != "2026-03-01T12:30:00Z" {
		t.Fatalf("unexpected window %+v", body.EstimatedDeliveryTime)
	}
}

func TestTrackOrderWithoutWindow(t *testing.T) {
	h := &OrderHandler{Tracker: &fakeTracker{orders: map[string]repo.Order{
		"ord-2": {ID: 2, PublicID: "ord-2", Status: "pending"},
	}}}

	w := trackRequest(t, h, "ord-2")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if _, ok := body["estimatedDeliveryTime"]; ok {
		t.Fatal("pending order must not carry a delivery window")
	}
}

func TestTrackUnknownOrder(t *testing.T) {
	h := &OrderHandler{Tracker: &fakeTracker{orders: map[string]repo.Order{}}}

	if w := trackRequest(t, h, "nope"); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
