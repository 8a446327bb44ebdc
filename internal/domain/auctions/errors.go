package auctions

import (
	"errors"
	"fmt"
)

// Service errors
var (
	ErrAuctionNotFound    = errors.New("auction not found")
	ErrAuctionNotOpen     = errors.New("auction is not open")
	ErrAuctionExpired     = errors.New("auction deadline has passed")
	ErrCreatorCannotBid   = errors.New("creator cannot bid on their own auction")
	ErrNotCreator         = errors.New("only the creator can close the auction")
	ErrAlreadyClosed      = errors.New("auction is already closed")
	ErrDeadlineNotReached = errors.New("auction deadline has not been reached")
	ErrBidTooLow          = errors.New("bid amount is below the minimum admissible bid")
	ErrNoItems            = errors.New("auction must include at least one item")
	ErrInvalidIncrement   = errors.New("minimum increment must be a positive whole euro amount")
	ErrDeadlineTooSoon    = errors.New("deadline must be at least three minutes away")
	ErrEmptyKeyword       = errors.New("search keyword cannot be empty")
	ErrInvalidStatus      = errors.New("status filter must be open or closed")
)

// BidTooLowError reports a rejected bid together with the minimum the
// auction would have accepted
type BidTooLowError struct {
	Offered int64
	Minimum int64
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("bid of %.2f is below the minimum admissible bid of %.2f",
		FromCents(e.Offered), FromCents(e.Minimum))
}

// Is lets errors.Is match ErrBidTooLow
func (e *BidTooLowError) Is(target error) bool {
	return target == ErrBidTooLow
}
