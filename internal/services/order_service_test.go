package services

import (
	"errors"
	"testing"

	"tamaqBack/internal/models"
)

func pizzaItem() models.MenuItem {
	return models.MenuItem{
		ID:      1,
		StoreID: 3,
		Name:    "Pizza",
		Price:   8.50,
		Options: []models.MenuOption{
			{
				ID:   10,
				Name: "Size",
				Choices: []models.OptionChoice{
					{ID: 100, OptionID: 10, Name: "Small", PriceDelta: 0},
					{ID: 101, OptionID: 10, Name: "Large", PriceDelta: 3.00},
				},
			},
			{
				ID:   11,
				Name: "Crust",
				Choices: []models.OptionChoice{
					{ID: 110, OptionID: 11, Name: "Thin", PriceDelta: 0},
					{ID: 111, OptionID: 11, Name: "Stuffed", PriceDelta: 1.50},
				},
			},
		},
	}
}

func TestResolveChoices(t *testing.T) {
	opts, err := resolveChoices(pizzaItem(), []int64{101, 111})
	if err != nil {
		t.Fatalf("resolveChoices: %v", err)
	}
	if len(opts) != 2 {
		t.Fatalf("expected 2 options, got %d", len(opts))
	}
	var delta float64
	for _, o := range opts {
		delta += o.PriceDelta
	}
	if delta != 4.50 {
		t.Errorf("expected total delta 4.50, got %.2f", delta)
	}
	if opts[0].OptionName != "Size" || opts[0].ChoiceName != "Large" {
		t.Errorf("unexpected first option snapshot: %+v", opts[0])
	}
}

func TestResolveChoicesNone(t *testing.T) {
	opts, err := resolveChoices(pizzaItem(), nil)
	if err != nil {
		t.Fatalf("resolveChoices: %v", err)
	}
	if opts != nil {
		t.Errorf("expected no options, got %+v", opts)
	}
}

func TestResolveChoicesUnknownChoice(t *testing.T) {
	_, err := resolveChoices(pizzaItem(), []int64{999})
	if !errors.Is(err, models.ErrChoiceNotFound) {
		t.Errorf("expected ErrChoiceNotFound, got %v", err)
	}
}

func TestResolveChoicesDuplicateOption(t *testing.T) {
	_, err := resolveChoices(pizzaItem(), []int64{100, 101})
	if err == nil {
		t.Error("expected error for two choices in one option group")
	}
}

func TestRoundMoney(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{0.1 + 0.2, 0.30},
		{11.499999999, 11.50},
		{100 * 0.05, 5.00},
	}
	for _, c := range cases {
		if got := roundMoney(c.in); got != c.want {
			t.Errorf("roundMoney(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}
