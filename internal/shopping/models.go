package shopping

import "time"

// Item is one line of a user's shopping list.
type Item struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"item_name"`
	Quantity  int       `json:"quantity"`
	Category  string    `json:"category"`
	Bought    bool      `json:"is_bought"`
	CreatedAt time.Time `json:"created_at"`
}

// Progress is the share of list items already bought, as a percentage.
func Progress(items []Item) int {
	if len(items) == 0 {
		return 0
	}
	bought := 0
	for _, it := range items {
		if it.Bought {
			bought++
		}
	}
	return bought * 100 / len(items)
}
