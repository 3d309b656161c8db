package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"tamaqBack/internal/delivery/engine"
	"tamaqBack/internal/delivery/repo"
	"tamaqBack/internal/models"
	"tamaqBack/internal/services"
)

// OrderTracker looks up an order by the public id carried in status
// events, so clients can follow a link without knowing row ids.
type OrderTracker interface {
	GetByPublicID(ctx context.Context, publicID string) (repo.Order, error)
}

type OrderHandler struct {
	Service *services.OrderService
	Engine  *engine.Engine
	Tracker OrderTracker
}

func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req models.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid body", http.StatusBadRequest)
		return
	}
	order, err := h.Service.Checkout(r.Context(), userIDFromContext(r), req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrStoreNotFound), errors.Is(err, models.ErrMenuItemNotFound), errors.Is(err, models.ErrChoiceNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, models.ErrStoreClosed), errors.Is(err, models.ErrEmptyOrder):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			http.Error(w, "Failed to create order", http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(order)
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := paramInt64(r, "id")
	if err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}
	order, err := h.Service.GetOrder(r.Context(), id)
	if err != nil {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(order)
}

// Track resolves an order by its public id and returns the current
// status together with the estimated delivery window, if any.
func (h *OrderHandler) Track(w http.ResponseWriter, r *http.Request) {
	publicID := getParam(r, "public_id")
	if publicID == "" {
		http.Error(w, "Invalid order id", http.StatusBadRequest)
		return
	}
	order, err := h.Tracker.GetByPublicID(r.Context(), publicID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "Order not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to fetch order", http.StatusInternalServerError)
		return
	}
	resp := map[string]interface{}{
		"orderId": order.PublicID,
		"status":  order.Status,
	}
	if order.MinTime.Valid && order.MaxTime.Valid {
		resp["estimatedDeliveryTime"] = map[string]string{
			"min": order.MinTime.Time.UTC().Format(time.RFC3339),
			"max": order.MaxTime.Time.UTC().Format(time.RFC3339),
		}
	}
	json.NewEncoder(w).Encode(resp)
}

func (h *OrderHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Service.ListUserOrders(r.Context(), userIDFromContext(r), queryInt(r, "limit", 20), queryInt(r, "offset", 0))
	if err != nil {
		http.Error(w, "Failed to fetch orders", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(orders)
}

func (h *OrderHandler) StoreOrders(w http.ResponseWriter, r *http.Request) {
	storeID, err := paramInt64(r, "store_id")
	if err != nil {
		http.Error(w, "Invalid store id", http.StatusBadRequest)
		return
	}
	orders, err := h.Service.ListStoreOrders(r.Context(), storeID, queryInt(r, "limit", 20), queryInt(r, "offset", 0))
	if err != nil {
		http.Error(w, "Failed to fetch orders", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(orders)
}

// Accept confirms a pending order, charging the application fee and
// publishing the delivery window.
func (h *OrderHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.lifecycleCall(w, r, h.Engine.Accept)
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.lifecycleCall(w, r, h.Engine.Cancel)
}

func (h *OrderHandler) OutForDelivery(w http.ResponseWriter, r *http.Request) {
	h.lifecycleCall(w, r, h.Engine.OutForDelivery)
}

func (h *OrderHandler) lifecycleCall(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, orderID int64) (repo.Order, error)) {
	id, err := paramInt64(r, "id")
	if err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}
	order, err := fn(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			http.Error(w, "Order not found", http.StatusNotFound)
		case errors.Is(err, engine.ErrInvalidStatus), errors.Is(err, repo.ErrConflict):
			http.Error(w, "Order is not in a valid status for this action", http.StatusConflict)
		default:
			http.Error(w, "Failed to update order", http.StatusInternalServerError)
		}
		return
	}
	h.Service.NotifyStatusChange(r.Context(), order.UserID, order.PublicID, order.Status)
	json.NewEncoder(w).Encode(order)
}
