package items

import (
	"time"

	"github.com/google/uuid"
)

// Item represents a sellable good owned by a user.
// Availability is never stored: an item is available when it is not linked
// to any open auction and was never sold in a closed one.
type Item struct {
	ID          uuid.UUID `db:"id"`
	Code        string    `db:"code"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	ImageKey    string    `db:"image_key"`
	BasePrice   int64     `db:"base_price"` // in cents
	OwnerID     uuid.UUID `db:"owner_id"`
	CreatedAt   time.Time `db:"created_at"`
}

// IsOwnedBy reports whether the item belongs to the given user
func (i *Item) IsOwnedBy(userID uuid.UUID) bool {
	return i.OwnerID == userID
}
