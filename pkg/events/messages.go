package events

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Event types routed on the auction.events exchange.
const (
	TypeUserRegistered = "user.registered"
	TypeAuctionCreated = "auction.created"
	TypeBidPlaced      = "bid.placed"
	TypeAuctionClosed  = "auction.closed"
)

// UserRegistered is emitted when a new account is created.
type UserRegistered struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// AuctionCreated is emitted when a new auction opens for bidding.
type AuctionCreated struct {
	AuctionID    string    `json:"auction_id"`
	CreatorID    string    `json:"creator_id"`
	ItemIDs      []string  `json:"item_ids"`
	InitialPrice int64     `json:"initial_price"` // in cents
	Deadline     time.Time `json:"deadline"`
	CreatedAt    time.Time `json:"created_at"`
}

// BidPlaced is emitted for every admitted bid.
type BidPlaced struct {
	BidID     string    `json:"bid_id"`
	AuctionID string    `json:"auction_id"`
	BidderID  string    `json:"bidder_id"`
	Amount    int64     `json:"amount"` // in cents
	Timestamp time.Time `json:"timestamp"`
}

// AuctionClosed is emitted when an auction is finalized. Winner fields are
// absent when the auction closed without bids.
type AuctionClosed struct {
	AuctionID  string    `json:"auction_id"`
	WinnerID   *string   `json:"winner_id,omitempty"`
	FinalPrice *int64    `json:"final_price,omitempty"` // in cents
	ClosedAt   time.Time `json:"closed_at"`
}

// NewOutboxEvent serializes a payload into a pending outbox row, ready to be
// saved in the caller's transaction.
func NewOutboxEvent(eventType string, payload any) (*OutboxEvent, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}

	return &OutboxEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Payload:   body,
		Status:    OutboxStatusPending,
		CreatedAt: time.Now(),
	}, nil
}
