package request

import (
	"encoding/json"
	"errors"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"

	"github.com/vietanh2810/inventory-api/internal/domain"
)

var (
	maxPrice = decimal.RequireFromString("99999999.99")

	errNegativePrice  = errors.New("must be no less than 0")
	errPriceDecimals  = errors.New("ensure that there are no more than 2 decimal places")
	errPriceTooLarge  = errors.New("ensure that there are no more than 10 digits in total")
	errInvalidNumber  = errors.New("a valid number is required")
	errInvalidInteger = errors.New("a valid integer is required")
)

// NullableString tells an explicit JSON null apart from an absent field.
type NullableString struct {
	Set   bool
	Value *string
}

func (n *NullableString) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	n.Value = &s

	return nil
}

var priceRule = validation.By(func(value interface{}) error {
	p, ok := value.(*decimal.Decimal)
	if !ok || p == nil {
		return nil
	}
	if p.IsNegative() {
		return errNegativePrice
	}
	if p.Exponent() < -2 && !p.Equal(p.Truncate(2)) {
		return errPriceDecimals
	}
	if p.GreaterThan(maxPrice) {
		return errPriceTooLarge
	}
	return nil
})

// ItemRequest is the body of POST and PUT on items. Every field except
// description is required; on PATCH only the fields present are written.
type ItemRequest struct {
	Name        *string          `json:"name"`
	Description NullableString   `json:"description" swaggertype:"string"`
	Quantity    *int             `json:"quantity"`
	Price       *decimal.Decimal `json:"price" swaggertype:"string" example:"5.00"`
	Category    *string          `json:"category"`
}

// UnmarshalJSON reports a malformed quantity or price as a field error
// instead of a decoder error.
func (req *ItemRequest) UnmarshalJSON(b []byte) error {
	var raw struct {
		Name        *string         `json:"name"`
		Description NullableString  `json:"description"`
		Quantity    json.RawMessage `json:"quantity"`
		Price       json.RawMessage `json:"price"`
		Category    *string         `json:"category"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*req = ItemRequest{
		Name:        raw.Name,
		Description: raw.Description,
		Category:    raw.Category,
	}
	errs := validation.Errors{}

	if !isNull(raw.Quantity) {
		n, err := parseInteger(raw.Quantity)
		if err != nil {
			errs["quantity"] = errInvalidInteger
		} else {
			req.Quantity = &n
		}
	}
	if !isNull(raw.Price) {
		var p decimal.Decimal
		if err := p.UnmarshalJSON(raw.Price); err != nil {
			errs["price"] = errInvalidNumber
		} else {
			req.Price = &p
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// parseInteger accepts a JSON integer or a string holding one.
func parseInteger(raw json.RawMessage) (int, error) {
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, err
	}

	return strconv.Atoi(s)
}

func (req *ItemRequest) Validate(partial bool) error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, present(partial, validation.NilOrNotEmpty, validation.RuneLength(1, 100))...),
		validation.Field(&req.Quantity, present(partial)...),
		validation.Field(&req.Price, present(partial, priceRule)...),
		validation.Field(&req.Category, present(partial, validation.NilOrNotEmpty, validation.RuneLength(1, 100))...),
	)
}

func (req *ItemRequest) ToDomain() domain.InventoryItem {
	item := domain.InventoryItem{}
	req.ToPatch().Apply(&item)

	return item
}

func (req *ItemRequest) ToPatch() domain.ItemPatch {
	patch := domain.ItemPatch{
		Name:     req.Name,
		Quantity: req.Quantity,
		Price:    req.Price,
		Category: req.Category,
	}
	if req.Description.Set {
		if req.Description.Value == nil {
			patch.ClearDescription = true
		} else {
			patch.Description = req.Description.Value
		}
	}
	if patch.Price != nil {
		rounded := patch.Price.Round(2)
		patch.Price = &rounded
	}

	return patch
}

// ListItemsQuery holds the raw query string of GET /items/.
type ListItemsQuery struct {
	Category *string `form:"category"`
	Price    *string `form:"price"`
	MinPrice *string `form:"min_price"`
	MaxPrice *string `form:"max_price"`
	LowStock *string `form:"low_stock"`
	Search   string  `form:"search"`
	Ordering string  `form:"ordering"`
}

// ToFilter parses the numeric parameters. Malformed values are reported
// per parameter.
func (q *ListItemsQuery) ToFilter() (domain.ItemFilter, error) {
	filter := domain.ItemFilter{
		Category: q.Category,
		Search:   q.Search,
		Ordering: domain.ParseOrdering(q.Ordering),
	}
	errs := validation.Errors{}

	parseDecimal := func(field string, raw *string) *decimal.Decimal {
		if raw == nil {
			return nil
		}
		d, err := decimal.NewFromString(*raw)
		if err != nil {
			errs[field] = errInvalidNumber
			return nil
		}
		return &d
	}
	filter.Price = parseDecimal("price", q.Price)
	filter.MinPrice = parseDecimal("min_price", q.MinPrice)
	filter.MaxPrice = parseDecimal("max_price", q.MaxPrice)

	if q.LowStock != nil {
		n, err := strconv.Atoi(*q.LowStock)
		if err != nil {
			errs["low_stock"] = errInvalidInteger
		} else {
			filter.LowStock = &n
		}
	}

	if len(errs) > 0 {
		return domain.ItemFilter{}, errs
	}

	return filter, nil
}
