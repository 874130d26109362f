package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Clients read prices as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product represents an item in the storefront catalogue.
type Product struct {
	ID         int64           `json:"id" db:"id"`
	Name       string          `json:"name" db:"name"`
	Price      decimal.Decimal `json:"price" db:"price"`
	Image      string          `json:"image" db:"image"`
	BadgeText  string          `json:"badge_text" db:"badge_text"`
	BadgeColor string          `json:"badge_color" db:"badge_color"`
	CreatedAt  time.Time       `json:"createdAt" db:"created_at"`
}
