package pantry

import "time"

// LowStockThreshold is the quantity below which an item is running out.
const LowStockThreshold = 3

// Status labels shown next to pantry items.
const (
	StatusPlenty  = "充足"
	StatusRunning = "快用完"
)

// Item is one ingredient a user keeps at home. Quantity never drops below
// one: an item used up is removed.
type Item struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"user_id"`
	Ingredient string    `json:"ingredient"`
	Quantity   int       `json:"quantity"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Status reports whether the item is plentiful or running out.
func (i Item) Status() string {
	if i.Quantity >= LowStockThreshold {
		return StatusPlenty
	}
	return StatusRunning
}
