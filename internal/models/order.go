package models

import "time"

type Order struct {
	ID             int64       `json:"id"`
	PublicID       string      `json:"public_id"`
	UserID         int64       `json:"user_id"`
	StoreID        int64       `json:"store_id"`
	StoreName      string      `json:"store_name,omitempty"`
	Items          []OrderItem `json:"items,omitempty"`
	TotalAmount    float64     `json:"total_amount"`
	ApplicationFee *float64    `json:"application_fee,omitempty"`
	Status         string      `json:"status"`
	AddressText    string      `json:"address_text"`
	AddressLat     float64     `json:"address_lat"`
	AddressLon     float64     `json:"address_lon"`
	AcceptedAt     *time.Time  `json:"accepted_at,omitempty"`
	MinTime        *time.Time  `json:"min_time,omitempty"`
	MaxTime        *time.Time  `json:"max_time,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      *time.Time  `json:"updated_at,omitempty"`
}

type OrderItem struct {
	ID          int64             `json:"id"`
	OrderID     int64             `json:"order_id"`
	MenuItemID  int64             `json:"menu_item_id"`
	Name        string            `json:"name"`
	Quantity    int               `json:"quantity"`
	UnitPrice   float64           `json:"unit_price"`
	PrepMinutes int               `json:"prep_minutes"`
	Options     []OrderItemOption `json:"options,omitempty"`
}

// OrderItemOption is the snapshot of a selected choice at checkout time.
type OrderItemOption struct {
	ID         int64   `json:"id"`
	ItemID     int64   `json:"item_id"`
	OptionName string  `json:"option_name"`
	ChoiceName string  `json:"choice_name"`
	PriceDelta float64 `json:"price_delta"`
}

type CheckoutRequest struct {
	StoreID     int64          `json:"store_id"`
	AddressText string         `json:"address_text"`
	AddressLat  float64        `json:"address_lat"`
	AddressLon  float64        `json:"address_lon"`
	Items       []CheckoutItem `json:"items"`
}

type CheckoutItem struct {
	MenuItemID int64   `json:"menu_item_id"`
	Quantity   int     `json:"quantity"`
	ChoiceIDs  []int64 `json:"choice_ids,omitempty"`
}
