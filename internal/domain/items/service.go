package items

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service errors
var (
	ErrItemNotFound     = fmt.Errorf("item not found")
	ErrCodeTaken        = fmt.Errorf("item code is already in use")
	ErrInvalidBasePrice = fmt.Errorf("base price must be greater than 0")
	ErrMissingFields    = fmt.Errorf("code and name are required")
	ErrNotOwner         = fmt.Errorf("only the owner can perform this action")
	ErrItemUnavailable  = fmt.Errorf("item is already in an auction or has been sold")
)

// CreateItemCommand represents the command to create a new item
type CreateItemCommand struct {
	Code        string
	Name        string
	Description string
	ImageKey    string
	BasePrice   int64
	OwnerID     uuid.UUID
}

// Service implements the core business logic for items
type Service struct {
	repo Repository
}

// NewService creates a new item service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateItem registers a new item for the owner
func (s *Service) CreateItem(ctx context.Context, cmd CreateItemCommand) (*Item, error) {
	if strings.TrimSpace(cmd.Code) == "" || strings.TrimSpace(cmd.Name) == "" {
		return nil, ErrMissingFields
	}
	if cmd.BasePrice <= 0 {
		return nil, ErrInvalidBasePrice
	}

	// Check the code upfront for a friendly error; the unique constraint
	// still catches concurrent inserts
	existing, err := s.repo.GetItemByCode(ctx, cmd.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to check item code: %w", err)
	}
	if existing != nil {
		return nil, ErrCodeTaken
	}

	item := &Item{
		ID:          uuid.New(),
		Code:        cmd.Code,
		Name:        cmd.Name,
		Description: cmd.Description,
		ImageKey:    cmd.ImageKey,
		BasePrice:   cmd.BasePrice,
		OwnerID:     cmd.OwnerID,
		CreatedAt:   time.Now(),
	}

	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	return item, nil
}

// GetItem retrieves an item by ID
func (s *Service) GetItem(ctx context.Context, itemID uuid.UUID) (*Item, error) {
	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	return item, nil
}

// IsAvailable reports whether the item can be put up for auction.
// A missing item is simply not available.
func (s *Service) IsAvailable(ctx context.Context, itemID uuid.UUID) (bool, error) {
	available, err := s.repo.IsAvailable(ctx, itemID)
	if err != nil {
		return false, fmt.Errorf("failed to check availability: %w", err)
	}
	return available, nil
}

// ListAvailableByOwner retrieves the owner's items not tied up in an auction
func (s *Service) ListAvailableByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Item, error) {
	available, err := s.repo.ListAvailableByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list available items: %w", err)
	}
	return available, nil
}
