package departments

import "time"

// Department groups employees and shelf photos within a store.
type Department struct {
	ID          int64     `json:"id"`
	StoreID     int64     `json:"storeId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
