package announcements

import "time"

// Announcement is a store-wide message posted by the manager.
type Announcement struct {
	ID        int64     `json:"id"`
	StoreID   int64     `json:"storeId"`
	AuthorID  int64     `json:"authorId"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// IsRead is filled per caller when listing.
	IsRead bool `json:"isRead"`
}
