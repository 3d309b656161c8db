package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"tamaqBack/internal/delivery/lifecycle"
	"tamaqBack/internal/models"
	"tamaqBack/internal/repositories"

	"github.com/google/uuid"
)

// Pusher sends a push notification about an order to a device.
type Pusher interface {
	Send(ctx context.Context, token, title, body, orderPublicID string) error
}

type OrderService struct {
	Orders *repositories.OrderRepository
	Menu   *repositories.MenuRepository
	Stores *repositories.StoreRepository
	Users  *repositories.UserRepository
	Push   Pusher
	Logger Logger
}

// Checkout prices the requested items against the current menu, snapshots
// them into a pending order and notifies the store owner's device.
func (s *OrderService) Checkout(ctx context.Context, userID int64, req models.CheckoutRequest) (models.Order, error) {
	if len(req.Items) == 0 {
		return models.Order{}, models.ErrEmptyOrder
	}
	if strings.TrimSpace(req.AddressText) == "" {
		return models.Order{}, fmt.Errorf("checkout: empty address")
	}
	if req.AddressLat < -90 || req.AddressLat > 90 || req.AddressLon < -180 || req.AddressLon > 180 {
		return models.Order{}, fmt.Errorf("checkout: invalid address coords")
	}

	store, err := s.Stores.GetStoreByID(ctx, req.StoreID)
	if err != nil {
		return models.Order{}, err
	}
	if !store.IsOpen {
		return models.Order{}, models.ErrStoreClosed
	}

	ids := make([]int64, 0, len(req.Items))
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return models.Order{}, fmt.Errorf("checkout: quantity must be positive for item %d", it.MenuItemID)
		}
		ids = append(ids, it.MenuItemID)
	}
	menuItems, err := s.Menu.GetMenuItemsByIDs(ctx, ids)
	if err != nil {
		return models.Order{}, err
	}
	byID := make(map[int64]models.MenuItem, len(menuItems))
	for _, mi := range menuItems {
		byID[mi.ID] = mi
	}

	order := models.Order{
		PublicID:    uuid.NewString(),
		UserID:      userID,
		StoreID:     store.ID,
		Status:      lifecycle.StatusPending,
		AddressText: req.AddressText,
		AddressLat:  req.AddressLat,
		AddressLon:  req.AddressLon,
	}

	var total float64
	for _, it := range req.Items {
		mi, ok := byID[it.MenuItemID]
		if !ok || mi.StoreID != store.ID {
			return models.Order{}, models.ErrMenuItemNotFound
		}
		if !mi.Available {
			return models.Order{}, fmt.Errorf("checkout: item %q is unavailable", mi.Name)
		}
		unitPrice := mi.Price
		options, err := resolveChoices(mi, it.ChoiceIDs)
		if err != nil {
			return models.Order{}, err
		}
		for _, opt := range options {
			unitPrice += opt.PriceDelta
		}
		total += unitPrice * float64(it.Quantity)
		order.Items = append(order.Items, models.OrderItem{
			MenuItemID:  mi.ID,
			Name:        mi.Name,
			Quantity:    it.Quantity,
			UnitPrice:   roundMoney(unitPrice),
			PrepMinutes: mi.PrepMinutes,
			Options:     options,
		})
	}
	order.TotalAmount = roundMoney(total)

	created, err := s.Orders.CreateOrder(ctx, order)
	if err != nil {
		return models.Order{}, err
	}

	s.notifyStoreOwner(ctx, store, created)
	return created, nil
}

func (s *OrderService) notifyStoreOwner(ctx context.Context, store models.Store, order models.Order) {
	if s.Push == nil {
		return
	}
	token, err := s.Users.GetDeviceToken(ctx, store.OwnerID)
	if err != nil || token == "" {
		return
	}
	body := fmt.Sprintf("New order for %.2f at %s", order.TotalAmount, store.Name)
	if err := s.Push.Send(ctx, token, "New order", body, order.PublicID); err != nil {
		s.Logger.Errorf("push to store owner %d failed: %v", store.OwnerID, err)
	}
}

// NotifyStatusChange pushes an order status update to the customer's
// device. Failures are logged, never surfaced to the caller.
func (s *OrderService) NotifyStatusChange(ctx context.Context, userID int64, orderPublicID, status string) {
	if s.Push == nil {
		return
	}
	token, err := s.Users.GetDeviceToken(ctx, userID)
	if err != nil || token == "" {
		return
	}
	body := fmt.Sprintf("Your order is now %s", strings.ReplaceAll(status, "_", " "))
	if err := s.Push.Send(ctx, token, "Order update", body, orderPublicID); err != nil {
		s.Logger.Errorf("push to user %d failed: %v", userID, err)
	}
}

func (s *OrderService) GetOrder(ctx context.Context, id int64) (models.Order, error) {
	return s.Orders.GetOrderByID(ctx, id)
}

func (s *OrderService) ListUserOrders(ctx context.Context, userID int64, limit, offset int) ([]models.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.Orders.ListByUser(ctx, userID, limit, offset)
}

func (s *OrderService) ListStoreOrders(ctx context.Context, storeID int64, limit, offset int) ([]models.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.Orders.ListByStore(ctx, storeID, limit, offset)
}

// resolveChoices maps requested choice ids to snapshots, at most one
// choice per option group.
func resolveChoices(mi models.MenuItem, choiceIDs []int64) ([]models.OrderItemOption, error) {
	if len(choiceIDs) == 0 {
		return nil, nil
	}
	taken := make(map[int64]bool, len(choiceIDs))
	var options []models.OrderItemOption
	for _, choiceID := range choiceIDs {
		found := false
		for _, opt := range mi.Options {
			for _, ch := range opt.Choices {
				if ch.ID != choiceID {
					continue
				}
				if taken[opt.ID] {
					return nil, fmt.Errorf("checkout: multiple choices for option %q on %q", opt.Name, mi.Name)
				}
				taken[opt.ID] = true
				options = append(options, models.OrderItemOption{
					OptionName: opt.Name,
					ChoiceName: ch.Name,
					PriceDelta: ch.PriceDelta,
				})
				found = true
			}
		}
		if !found {
			return nil, models.ErrChoiceNotFound
		}
	}
	return options, nil
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
