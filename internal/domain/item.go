package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type InventoryItem struct {
	ID          uint            `json:"id"`
	OwnerID     uint            `json:"-"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	DateAdded   time.Time       `json:"date_added"`
	LastUpdated time.Time       `json:"last_updated"`
}

// ItemPatch is the set of fields an update writes. A nil field is left
// untouched; ClearDescription sets the description to null.
type ItemPatch struct {
	Name             *string
	Description      *string
	ClearDescription bool
	Quantity         *int
	Price            *decimal.Decimal
	Category         *string
}

func (p ItemPatch) Apply(item *InventoryItem) {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.ClearDescription {
		item.Description = nil
	} else if p.Description != nil {
		d := *p.Description
		item.Description = &d
	}
	if p.Quantity != nil {
		item.Quantity = *p.Quantity
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
}

// ItemQuantity is the reduced view used by dashboards.
type ItemQuantity struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type OrderField struct {
	Column string
	Desc   bool
}

var orderableColumns = map[string]bool{
	"name":       true,
	"quantity":   true,
	"price":      true,
	"date_added": true,
}

// DefaultOrdering applies when the caller gives no usable ordering.
var DefaultOrdering = []OrderField{{Column: "name"}}

// ParseOrdering reads a comma separated list such as "-price,name".
// Unknown fields are dropped.
func ParseOrdering(raw string) []OrderField {
	var fields []OrderField
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		desc := strings.HasPrefix(part, "-")
		column := strings.TrimPrefix(part, "-")
		if !orderableColumns[column] {
			continue
		}
		fields = append(fields, OrderField{Column: column, Desc: desc})
	}

	if len(fields) == 0 {
		return DefaultOrdering
	}

	return fields
}

type ItemFilter struct {
	Category *string
	Price    *decimal.Decimal
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	LowStock *int
	Search   string
	Ordering []OrderField
}

// SearchTerms splits the search string on whitespace. Every term has to
// match the name or the description.
func (f ItemFilter) SearchTerms() []string {
	return strings.Fields(f.Search)
}
