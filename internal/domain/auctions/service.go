package auctions

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmarzotto/asta/internal/domain/items"
	"github.com/dmarzotto/asta/pkg/database"
	"github.com/dmarzotto/asta/pkg/events"
)

// CreateAuctionCommand represents the command to open a new auction
type CreateAuctionCommand struct {
	CreatorID    uuid.UUID
	ItemIDs      []uuid.UUID
	MinIncrement int64
	Deadline     time.Time
}

// PlaceBidCommand represents the command to place a bid
type PlaceBidCommand struct {
	AuctionID uuid.UUID
	BidderID  uuid.UUID
	Amount    int64
}

// CloseAuctionCommand represents the command to close an expired auction.
// Now defaults to the wall clock when zero.
type CloseAuctionCommand struct {
	AuctionID   uuid.UUID
	RequesterID uuid.UUID
	Now         time.Time
}

// Service implements the auction lifecycle: creation, bidding, closing
type Service struct {
	txManager   database.TransactionManager
	auctionRepo AuctionRepository
	bidRepo     BidRepository
	itemRepo    ItemRepository
	outboxRepo  OutboxRepository
}

// NewService creates a new auction service
func NewService(
	txManager database.TransactionManager,
	auctionRepo AuctionRepository,
	bidRepo BidRepository,
	itemRepo ItemRepository,
	outboxRepo OutboxRepository,
) *Service {
	return &Service{
		txManager:   txManager,
		auctionRepo: auctionRepo,
		bidRepo:     bidRepo,
		itemRepo:    itemRepo,
		outboxRepo:  outboxRepo,
	}
}

// validateCreateAuction checks the command against the creation rules
func validateCreateAuction(cmd CreateAuctionCommand, now time.Time) error {
	if len(cmd.ItemIDs) == 0 {
		return ErrNoItems
	}
	if cmd.MinIncrement < 100 || cmd.MinIncrement%100 != 0 {
		return ErrInvalidIncrement
	}
	if !cmd.Deadline.After(now.Add(DeadlineGrace)) {
		return ErrDeadlineTooSoon
	}
	return nil
}

// CreateAuction opens a new auction over the given items. The initial price
// is the sum of the item base prices. Item rows are locked in ascending ID
// order so that concurrent creations over overlapping sets cannot deadlock;
// the loser sees the winner's link and fails on availability.
func (s *Service) CreateAuction(ctx context.Context, cmd CreateAuctionCommand) (*Auction, error) {
	now := time.Now()
	if err := validateCreateAuction(cmd, now); err != nil {
		return nil, err
	}

	itemIDs := dedupeAndSortIDs(cmd.ItemIDs)

	tx, err := s.txManager.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	lockedItems, err := s.itemRepo.GetItemsByIDsForUpdate(ctx, tx, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to lock items: %w", err)
	}
	if len(lockedItems) != len(itemIDs) {
		return nil, items.ErrItemNotFound
	}

	var initialPrice int64
	for _, item := range lockedItems {
		if !item.IsOwnedBy(cmd.CreatorID) {
			return nil, items.ErrNotOwner
		}
		available, availErr := s.itemRepo.IsAvailableTx(ctx, tx, item.ID)
		if availErr != nil {
			return nil, fmt.Errorf("failed to check item availability: %w", availErr)
		}
		if !available {
			return nil, items.ErrItemUnavailable
		}
		initialPrice += item.BasePrice
	}

	auction := &Auction{
		ID:           uuid.New(),
		CreatorID:    cmd.CreatorID,
		InitialPrice: initialPrice,
		MinIncrement: cmd.MinIncrement,
		Deadline:     cmd.Deadline,
		Status:       StatusOpen,
		CreatedAt:    now,
	}

	if err := s.auctionRepo.CreateAuction(ctx, tx, auction, itemIDs); err != nil {
		return nil, fmt.Errorf("failed to create auction: %w", err)
	}

	ids := make([]string, len(itemIDs))
	for i, id := range itemIDs {
		ids[i] = id.String()
	}
	outboxEvent, err := events.NewOutboxEvent(events.TypeAuctionCreated, events.AuctionCreated{
		AuctionID:    auction.ID.String(),
		CreatorID:    auction.CreatorID.String(),
		ItemIDs:      ids,
		InitialPrice: auction.InitialPrice,
		Deadline:     auction.Deadline,
		CreatedAt:    auction.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build outbox event: %w", err)
	}
	if err := s.outboxRepo.SaveEvent(ctx, tx, outboxEvent); err != nil {
		return nil, fmt.Errorf("failed to save outbox event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return auction, nil
}

// PlaceBid admits a bid when the auction is open, not past its deadline,
// the bidder is not the creator, and the amount reaches the minimum
// admissible bid. The auction row lock serializes concurrent bids.
func (s *Service) PlaceBid(ctx context.Context, cmd PlaceBidCommand) (*Bid, error) {
	tx, err := s.txManager.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Every bid and close for this auction queues on the row lock
	auction, err := s.auctionRepo.GetAuctionByIDForUpdate(ctx, tx, cmd.AuctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}
	if auction == nil {
		return nil, ErrAuctionNotFound
	}
	if !auction.IsOpen() {
		return nil, ErrAuctionNotOpen
	}
	now := time.Now()
	if auction.HasExpired(now) {
		return nil, ErrAuctionExpired
	}
	if auction.CreatorID == cmd.BidderID {
		return nil, ErrCreatorCannotBid
	}

	highest, err := s.bidRepo.GetHighestBidTx(ctx, tx, cmd.AuctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get highest bid: %w", err)
	}

	minNext := auction.MinNextBid(highest)
	if cmd.Amount < minNext {
		return nil, &BidTooLowError{Offered: cmd.Amount, Minimum: minNext}
	}

	bid := &Bid{
		ID:        uuid.New(),
		AuctionID: cmd.AuctionID,
		BidderID:  cmd.BidderID,
		Amount:    cmd.Amount,
		CreatedAt: now,
	}

	if err := s.bidRepo.SaveBid(ctx, tx, bid); err != nil {
		return nil, fmt.Errorf("failed to save bid: %w", err)
	}

	outboxEvent, err := events.NewOutboxEvent(events.TypeBidPlaced, events.BidPlaced{
		BidID:     bid.ID.String(),
		AuctionID: bid.AuctionID.String(),
		BidderID:  bid.BidderID.String(),
		Amount:    bid.Amount,
		Timestamp: bid.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build outbox event: %w", err)
	}
	if err := s.outboxRepo.SaveEvent(ctx, tx, outboxEvent); err != nil {
		return nil, fmt.Errorf("failed to save outbox event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return bid, nil
}

// CloseAuction finalizes an expired auction on behalf of its creator. The
// highest bid at close time determines winner and final price; with no bids
// the auction closes without a winner and its items become available again.
func (s *Service) CloseAuction(ctx context.Context, cmd CloseAuctionCommand) (*Auction, error) {
	now := cmd.Now
	if now.IsZero() {
		now = time.Now()
	}

	tx, err := s.txManager.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	auction, err := s.auctionRepo.GetAuctionByIDForUpdate(ctx, tx, cmd.AuctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}
	if auction == nil {
		return nil, ErrAuctionNotFound
	}
	if auction.CreatorID != cmd.RequesterID {
		return nil, ErrNotCreator
	}
	if !auction.IsOpen() {
		return nil, ErrAlreadyClosed
	}
	if now.Before(auction.Deadline) {
		return nil, ErrDeadlineNotReached
	}

	highest, err := s.bidRepo.GetHighestBidTx(ctx, tx, cmd.AuctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get highest bid: %w", err)
	}

	var winnerID *uuid.UUID
	var finalPrice *int64
	if highest != nil {
		winnerID = &highest.BidderID
		finalPrice = &highest.Amount
	}

	// The UPDATE re-asserts status and deadline; zero rows means another
	// request closed this auction first
	closed, err := s.auctionRepo.CloseAuction(ctx, tx, cmd.AuctionID, winnerID, finalPrice, now)
	if err != nil {
		return nil, fmt.Errorf("failed to close auction: %w", err)
	}
	if !closed {
		return nil, ErrAlreadyClosed
	}

	auction.Status = StatusClosed
	auction.WinnerID = winnerID
	auction.FinalPrice = finalPrice

	var winner *string
	if winnerID != nil {
		w := winnerID.String()
		winner = &w
	}
	outboxEvent, err := events.NewOutboxEvent(events.TypeAuctionClosed, events.AuctionClosed{
		AuctionID:  auction.ID.String(),
		WinnerID:   winner,
		FinalPrice: finalPrice,
		ClosedAt:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build outbox event: %w", err)
	}
	if err := s.outboxRepo.SaveEvent(ctx, tx, outboxEvent); err != nil {
		return nil, fmt.Errorf("failed to save outbox event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return auction, nil
}

// GetAuction retrieves an auction by ID
func (s *Service) GetAuction(ctx context.Context, auctionID uuid.UUID) (*Auction, error) {
	auction, err := s.auctionRepo.GetAuctionByID(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}
	if auction == nil {
		return nil, ErrAuctionNotFound
	}
	return auction, nil
}

// ListBids retrieves the bids placed on an auction, newest first
func (s *Service) ListBids(ctx context.Context, auctionID uuid.UUID) ([]*Bid, error) {
	if _, err := s.GetAuction(ctx, auctionID); err != nil {
		return nil, err
	}
	bids, err := s.bidRepo.GetBidsByAuctionID(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bids: %w", err)
	}
	return bids, nil
}

// HighestBid retrieves the current winning candidate, nil when there are no bids
func (s *Service) HighestBid(ctx context.Context, auctionID uuid.UUID) (*Bid, error) {
	highest, err := s.bidRepo.GetHighestBid(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get highest bid: %w", err)
	}
	return highest, nil
}

// ListItems retrieves the items attached to an auction
func (s *Service) ListItems(ctx context.Context, auctionID uuid.UUID) ([]*items.Item, error) {
	if _, err := s.GetAuction(ctx, auctionID); err != nil {
		return nil, err
	}
	linked, err := s.itemRepo.GetItemsByAuctionID(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list auction items: %w", err)
	}
	return linked, nil
}

// ListByCreator retrieves the user's own auctions, oldest first. A non-empty
// status narrows the list to open or closed auctions.
func (s *Service) ListByCreator(ctx context.Context, creatorID uuid.UUID, status Status) ([]*Auction, error) {
	if status != "" && status != StatusOpen && status != StatusClosed {
		return nil, ErrInvalidStatus
	}
	auctions, err := s.auctionRepo.ListByCreator(ctx, creatorID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list auctions: %w", err)
	}
	return auctions, nil
}

// ListWon retrieves closed auctions won by the user, most recent deadline first
func (s *Service) ListWon(ctx context.Context, userID uuid.UUID) ([]*Auction, error) {
	auctions, err := s.auctionRepo.ListWonByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list won auctions: %w", err)
	}
	return auctions, nil
}

// SearchOpen retrieves open, unexpired auctions whose items match the
// keyword, nearest deadline first
func (s *Service) SearchOpen(ctx context.Context, keyword string) ([]*Auction, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, ErrEmptyKeyword
	}
	found, err := s.auctionRepo.SearchOpen(ctx, keyword, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to search auctions: %w", err)
	}
	return found, nil
}

// ListOpenByIDs retrieves the still-open, unexpired auctions among the
// given IDs, preserving the input order
func (s *Service) ListOpenByIDs(ctx context.Context, auctionIDs []uuid.UUID) ([]*Auction, error) {
	if len(auctionIDs) == 0 {
		return nil, nil
	}
	open, err := s.auctionRepo.ListOpenByIDs(ctx, auctionIDs, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to list auctions: %w", err)
	}

	byID := make(map[uuid.UUID]*Auction, len(open))
	for _, a := range open {
		byID[a.ID] = a
	}
	ordered := make([]*Auction, 0, len(open))
	for _, id := range auctionIDs {
		if a, ok := byID[id]; ok {
			ordered = append(ordered, a)
		}
	}
	return ordered, nil
}

// dedupeAndSortIDs removes duplicates and orders IDs by their byte value,
// fixing the lock acquisition order
func dedupeAndSortIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i][:], out[j][:]) < 0
	})
	return out
}
