package response

import (
	"time"

	"github.com/vietanh2810/inventory-api/internal/domain"
)

type Item struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Quantity    int       `json:"quantity"`
	Price       string    `json:"price" example:"5.00"`
	Category    string    `json:"category"`
	DateAdded   time.Time `json:"date_added"`
	LastUpdated time.Time `json:"last_updated"`
}

func NewItem(i domain.InventoryItem) Item {
	return Item{
		ID:          i.ID,
		Name:        i.Name,
		Description: i.Description,
		Quantity:    i.Quantity,
		Price:       i.Price.StringFixed(2),
		Category:    i.Category,
		DateAdded:   i.DateAdded,
		LastUpdated: i.LastUpdated,
	}
}

func NewItems(items []domain.InventoryItem) []Item {
	out := make([]Item, 0, len(items))
	for _, i := range items {
		out = append(out, NewItem(i))
	}

	return out
}

type ChangeLog struct {
	InventoryItem  uint      `json:"inventory_item"`
	User           string    `json:"user"`
	QuantityChange int       `json:"quantity_change"`
	Timestamp      time.Time `json:"timestamp"`
}

func NewChangeLogs(entries []domain.ChangeLog) []ChangeLog {
	out := make([]ChangeLog, 0, len(entries))
	for _, e := range entries {
		out = append(out, ChangeLog{
			InventoryItem:  e.ItemID,
			User:           e.Username,
			QuantityChange: e.QuantityChange,
			Timestamp:      e.Timestamp,
		})
	}

	return out
}

type User struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func NewUser(u domain.User) User {
	return User{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type AccessToken struct {
	Access string `json:"access"`
}

type Health struct {
	Status string `json:"status" example:"ok"`
}
