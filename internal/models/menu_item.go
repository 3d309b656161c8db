package models

import "time"

type MenuItem struct {
	ID          int64        `json:"id"`
	StoreID     int64        `json:"store_id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Price       float64      `json:"price"`
	PrepMinutes int          `json:"prep_minutes"`
	ImageURL    string       `json:"image_url,omitempty"`
	Available   bool         `json:"available"`
	Options     []MenuOption `json:"options,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   *time.Time   `json:"updated_at,omitempty"`
}

// MenuOption is a customization group on a menu item, e.g. "Size".
type MenuOption struct {
	ID      int64          `json:"id"`
	ItemID  int64          `json:"item_id"`
	Name    string         `json:"name"`
	Choices []OptionChoice `json:"choices,omitempty"`
}

// OptionChoice is one selectable value inside an option group, with the
// price delta it adds to the item's base price.
type OptionChoice struct {
	ID         int64   `json:"id"`
	OptionID   int64   `json:"option_id"`
	Name       string  `json:"name"`
	PriceDelta float64 `json:"price_delta"`
}
