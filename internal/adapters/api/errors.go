package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dmarzotto/asta/internal/domain/auctions"
	"github.com/dmarzotto/asta/internal/domain/items"
	"github.com/dmarzotto/asta/internal/domain/users"
)

// errorResponse is the wire shape of every error reply. The bid fields are
// set only on rejected bids so clients can show the minimum to offer.
type errorResponse struct {
	Error      string   `json:"error"`
	MinimumBid *float64 `json:"minimum_bid,omitempty"`
	Offered    *float64 `json:"offered,omitempty"`
}

// writeDomainError maps domain errors onto HTTP statuses. Anything
// unrecognized is logged and masked as an opaque 500.
func writeDomainError(c echo.Context, logger *slog.Logger, err error) error {
	var tooLow *auctions.BidTooLowError
	if errors.As(err, &tooLow) {
		minimum := auctions.FromCents(tooLow.Minimum)
		offered := auctions.FromCents(tooLow.Offered)
		return c.JSON(http.StatusBadRequest, errorResponse{
			Error:      tooLow.Error(),
			MinimumBid: &minimum,
			Offered:    &offered,
		})
	}

	status := domainStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
		return c.JSON(status, errorResponse{Error: "internal server error"})
	}
	return c.JSON(status, errorResponse{Error: err.Error()})
}

func domainStatus(err error) int {
	switch {
	case errors.Is(err, auctions.ErrNoItems),
		errors.Is(err, auctions.ErrInvalidIncrement),
		errors.Is(err, auctions.ErrDeadlineTooSoon),
		errors.Is(err, auctions.ErrBidTooLow),
		errors.Is(err, auctions.ErrEmptyKeyword),
		errors.Is(err, auctions.ErrInvalidStatus),
		errors.Is(err, items.ErrInvalidBasePrice),
		errors.Is(err, items.ErrMissingFields),
		errors.Is(err, users.ErrInvalidInput):
		return http.StatusBadRequest

	case errors.Is(err, users.ErrInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, auctions.ErrCreatorCannotBid),
		errors.Is(err, auctions.ErrNotCreator),
		errors.Is(err, items.ErrNotOwner):
		return http.StatusForbidden

	case errors.Is(err, auctions.ErrAuctionNotFound),
		errors.Is(err, items.ErrItemNotFound),
		errors.Is(err, users.ErrUserNotFound):
		return http.StatusNotFound

	case errors.Is(err, auctions.ErrAuctionNotOpen),
		errors.Is(err, auctions.ErrAuctionExpired),
		errors.Is(err, auctions.ErrAlreadyClosed),
		errors.Is(err, auctions.ErrDeadlineNotReached),
		errors.Is(err, items.ErrItemUnavailable),
		errors.Is(err, items.ErrCodeTaken),
		errors.Is(err, users.ErrEmailTaken):
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}
