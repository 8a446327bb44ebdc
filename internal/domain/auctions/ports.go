package auctions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmarzotto/asta/internal/domain/items"
	"github.com/dmarzotto/asta/pkg/events"
)

// AuctionRepository defines the interface for auction persistence
type AuctionRepository interface {
	// CreateAuction inserts the auction and its item links within a transaction
	CreateAuction(ctx context.Context, tx pgx.Tx, auction *Auction, itemIDs []uuid.UUID) error

	// GetAuctionByID retrieves an auction by its ID
	// Returns (nil, nil) when no auction exists
	GetAuctionByID(ctx context.Context, auctionID uuid.UUID) (*Auction, error)

	// GetAuctionByIDForUpdate retrieves an auction and locks its row,
	// serializing bids and closes per auction
	// Must be called within a transaction; returns (nil, nil) when no auction exists
	GetAuctionByIDForUpdate(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) (*Auction, error)

	// CloseAuction marks an open, expired auction as closed and records the
	// outcome. Returns false when the row was no longer open or its deadline
	// had not passed at the given instant.
	CloseAuction(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID, winnerID *uuid.UUID, finalPrice *int64, now time.Time) (bool, error)

	// ListByCreator retrieves auctions created by the user, oldest first.
	// A non-empty status narrows the list to that lifecycle state.
	ListByCreator(ctx context.Context, creatorID uuid.UUID, status Status) ([]*Auction, error)

	// ListWonByUser retrieves closed auctions the user won, most recent deadline first
	ListWonByUser(ctx context.Context, userID uuid.UUID) ([]*Auction, error)

	// SearchOpen retrieves open, unexpired auctions whose items match the
	// keyword, nearest deadline first
	SearchOpen(ctx context.Context, keyword string, now time.Time) ([]*Auction, error)

	// ListOpenByIDs retrieves the open, unexpired auctions among the given IDs
	ListOpenByIDs(ctx context.Context, auctionIDs []uuid.UUID, now time.Time) ([]*Auction, error)
}

// BidRepository defines the interface for bid persistence
type BidRepository interface {
	// SaveBid saves a bid within a transaction
	SaveBid(ctx context.Context, tx pgx.Tx, bid *Bid) error

	// GetHighestBid retrieves the winning candidate for an auction: highest
	// amount, earliest placed on a tie
	// Returns (nil, nil) when there are no bids
	GetHighestBid(ctx context.Context, auctionID uuid.UUID) (*Bid, error)

	// GetHighestBidTx is GetHighestBid within a transaction
	GetHighestBidTx(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) (*Bid, error)

	// GetBidsByAuctionID retrieves all bids for an auction, newest first
	GetBidsByAuctionID(ctx context.Context, auctionID uuid.UUID) ([]*Bid, error)
}

// ItemRepository defines the item lookups the auction service needs
type ItemRepository interface {
	// GetItemsByIDsForUpdate retrieves the given items and locks their rows
	// in ascending ID order
	// Must be called within a transaction
	GetItemsByIDsForUpdate(ctx context.Context, tx pgx.Tx, itemIDs []uuid.UUID) ([]*items.Item, error)

	// IsAvailableTx reports whether the item is in no open auction and was
	// never sold, as seen from within the transaction
	IsAvailableTx(ctx context.Context, tx pgx.Tx, itemID uuid.UUID) (bool, error)

	// GetItemsByAuctionID retrieves the items linked to an auction
	GetItemsByAuctionID(ctx context.Context, auctionID uuid.UUID) ([]*items.Item, error)
}

// OutboxRepository defines the interface for outbox event persistence
type OutboxRepository interface {
	// SaveEvent saves an outbox event within a transaction
	SaveEvent(ctx context.Context, tx pgx.Tx, event *events.OutboxEvent) error
}
