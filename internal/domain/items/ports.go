package items

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for item persistence
type Repository interface {
	// CreateItem creates a new item
	CreateItem(ctx context.Context, item *Item) error

	// GetItemByID retrieves an item by its ID
	// Returns (nil, nil) when no item exists
	GetItemByID(ctx context.Context, itemID uuid.UUID) (*Item, error)

	// GetItemByCode retrieves an item by its unique code
	// Returns (nil, nil) when no item has the code
	GetItemByCode(ctx context.Context, code string) (*Item, error)

	// IsAvailable reports whether the item exists, is in no open auction,
	// and was never sold in a closed one
	IsAvailable(ctx context.Context, itemID uuid.UUID) (bool, error)

	// ListAvailableByOwner retrieves the owner's items that can still be auctioned
	ListAvailableByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Item, error)
}
