package auctions

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of an auction
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// DeadlineGrace is the minimum distance between creation time and deadline
const DeadlineGrace = 3 * time.Minute

// Auction represents a sale of one or more items with a deadline.
// Money fields are integer cents.
type Auction struct {
	ID           uuid.UUID  `db:"id"`
	CreatorID    uuid.UUID  `db:"creator_id"`
	InitialPrice int64      `db:"initial_price"` // sum of the item base prices
	MinIncrement int64      `db:"min_increment"` // whole euros only
	Deadline     time.Time  `db:"deadline"`
	Status       Status     `db:"status"`
	WinnerID     *uuid.UUID `db:"winner_id"`
	FinalPrice   *int64     `db:"final_price"`
	CreatedAt    time.Time  `db:"created_at"`
}

// IsOpen reports whether the auction still accepts bids
func (a *Auction) IsOpen() bool {
	return a.Status == StatusOpen
}

// HasExpired reports whether the deadline has passed at the given instant.
// An auction expires exactly at its deadline.
func (a *Auction) HasExpired(now time.Time) bool {
	return !now.Before(a.Deadline)
}

// MinNextBid returns the lowest admissible bid amount given the current
// highest bid, or the initial price when there are no bids yet.
func (a *Auction) MinNextBid(highest *Bid) int64 {
	if highest == nil {
		return a.InitialPrice
	}
	return highest.Amount + a.MinIncrement
}

// Bid represents an offer on an auction
type Bid struct {
	ID        uuid.UUID `db:"id"`
	AuctionID uuid.UUID `db:"auction_id"`
	BidderID  uuid.UUID `db:"bidder_id"`
	Amount    int64     `db:"amount"` // in cents
	CreatedAt time.Time `db:"created_at"`
}
