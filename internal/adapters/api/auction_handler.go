package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dmarzotto/asta/internal/adapters/cache"
	"github.com/dmarzotto/asta/internal/domain/auctions"
	"github.com/dmarzotto/asta/pkg/auth"
)

// AuctionHandler serves the auction lifecycle and query endpoints
type AuctionHandler struct {
	auctions *auctions.Service
	recent   *cache.RecentlyViewed // nil disables view tracking
	logger   *slog.Logger
}

// NewAuctionHandler creates a new auction handler
func NewAuctionHandler(auctionService *auctions.Service, recent *cache.RecentlyViewed, logger *slog.Logger) *AuctionHandler {
	return &AuctionHandler{auctions: auctionService, recent: recent, logger: logger}
}

// Create opens a new auction over the caller's items
func (h *AuctionHandler) Create(c echo.Context) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing user identity")
	}

	var req createAuctionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	itemIDs := make([]uuid.UUID, 0, len(req.ItemIDs))
	for _, raw := range req.ItemIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid item id: " + raw})
		}
		itemIDs = append(itemIDs, id)
	}

	auction, err := h.auctions.CreateAuction(c.Request().Context(), auctions.CreateAuctionCommand{
		CreatorID:    userID,
		ItemIDs:      itemIDs,
		MinIncrement: auctions.ToCents(req.MinIncrement),
		Deadline:     req.Deadline,
	})
	if err != nil {
		return writeDomainError(c, h.logger, err)
	}

	return c.JSON(http.StatusCreated, toAuctionResponse(auction))
}

// Get returns the auction detail: the auction, its items, its bids, the
// current highest bid and the minimum admissible next bid
func (h *AuctionHandler) Get(c echo.Context) error {
	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid auction id"})
	}

	ctx := c.Request().Context()

	auction, err := h.auctions.GetAuction(ctx, auctionID)
	if err != nil {
		return writeDomainError(c, h.logger, err)
	}

	linked, err := h.auctions.ListItems(ctx, auctionID)
	if err != nil {
		return writeDomainError(c, h.logger, err)
	}

	bids, err := h.auctions.ListBids(ctx, auctionID)
	if err != nil {
		return writeDomainError(c, h.logger, err)
	}

	highest, err := h.auctions.HighestBid(ctx, auctionID)
	if err != nil {
		return writeDomainError(c, h.logger, err)
	}

	detail := auctionDetailResponse{
		Auction:    toAuctionResponse(auction),
		Items:      toItemResponses(linked),
		Bids:       toBidResponses(bids),
		MinNextBid: auctions.FromCents(auction.MinNextBid(highest)),
	}
	if highest != nil {
		hb := toBidResponse(highest)
		detail.HighestBid = &hb
	}

	// A failed view record never fails the request
	if userID, ok := auth.UserID(c); ok && h.recent != nil {
		if recErr := h.recent.Record(ctx, userID, auctionID); recErr != nil {
			h.logger.Warn("failed to record auction view", "error", recErr)
		}
	}

	return c.JSON(http.StatusOK, detail)
}

// PlaceBid places a bid on an auction
func (h *AuctionHandler) PlaceBid(c echo.Context) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing user identity")
	}

	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid auction id"})
	}

	var req placeBidRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if req.Amount <= 0 {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "bid amount must be positive"})
	}

	bid, err := h.auctions.PlaceBid(c.Request().Context(), auctions.PlaceBidCommand{
		AuctionID: auctionID,
		BidderID:  userID,
		Amount:    auctions.ToCents(req.Amount),
	})
	if err != nil {
		return writeDomainError(c, h.logger, err)
	}

	return c.JSON(http.StatusCreated, toBidResponse(bid))
}

// ListBids returns the bids placed on an auction, newest first
func (h *AuctionHandler) ListBids(c echo.Context) error {
	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid auction id"})
	}

	bids, err := h.auctions.ListBids(c.Request().Context(), auctionID)
	if err != nil {
		return writeDomainError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, toBidResponses(bids))
}

// ListItems returns the items attached to an auction
func (h *AuctionHandler) ListItems(c echo.Context) error {
	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid auction id"})
	}

	linked, err := h.auctions.ListItems(c.Request().Context(), auctionID)
	if err != nil {
		return writeDomainError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, toItemResponses(linked))
}

// Close finalizes an expired auction on behalf of its creator
func (h *AuctionHandler) Close(c echo.Context) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing user identity")
	}

	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid auction id"})
	}

	auction, err := h.auctions.CloseAuction(c.Request().Context(), auctions.CloseAuctionCommand{
		AuctionID:   auctionID,
		RequesterID: userID,
	})
	if err != nil {
		return writeDomainError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, toAuctionResponse(auction))
}

// Search returns open auctions whose items match the keyword
func (h *AuctionHandler) Search(c echo.Context) error {
	found, err := h.auctions.SearchOpen(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return writeDomainError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, toAuctionResponses(found))
}

// Recent returns the caller's recently viewed auctions that are still open
func (h *AuctionHandler) Recent(c echo.Context) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing user identity")
	}

	if h.recent == nil {
		return c.JSON(http.StatusOK, []auctionResponse{})
	}

	ctx := c.Request().Context()
	ids, err := h.recent.List(ctx, userID)
	if err != nil {
		return writeDomainError(c, h.logger, err)
	}

	open, err := h.auctions.ListOpenByIDs(ctx, ids)
	if err != nil {
		return writeDomainError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, toAuctionResponses(open))
}

// ListMine returns the caller's own auctions, oldest first. An optional
// status query narrows the list to open or closed auctions.
func (h *AuctionHandler) ListMine(c echo.Context) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing user identity")
	}

	status := auctions.Status(c.QueryParam("status"))
	mine, err := h.auctions.ListByCreator(c.Request().Context(), userID, status)
	if err != nil {
		return writeDomainError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, toAuctionResponses(mine))
}

// ListWon returns the closed auctions the caller won
func (h *AuctionHandler) ListWon(c echo.Context) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing user identity")
	}

	won, err := h.auctions.ListWon(c.Request().Context(), userID)
	if err != nil {
		return writeDomainError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, toAuctionResponses(won))
}
