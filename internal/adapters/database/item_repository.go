package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmarzotto/asta/internal/domain/items"
	pkgdb "github.com/dmarzotto/asta/pkg/database"
)

const itemColumns = `id, code, name, description, image_key, base_price, owner_id, created_at`

// availabilityPredicate is true when the item is in no open auction and was
// never sold in a closed one
const availabilityPredicate = `
	NOT EXISTS (
		SELECT 1 FROM auction_items ai
		JOIN auctions a ON a.id = ai.auction_id
		WHERE ai.item_id = %[1]s AND a.status = 'open'
	)
	AND NOT EXISTS (
		SELECT 1 FROM auction_items ai
		JOIN auctions a ON a.id = ai.auction_id
		WHERE ai.item_id = %[1]s AND a.status = 'closed' AND a.winner_id IS NOT NULL
	)`

// PostgresItemRepository implements items.Repository and the item lookups
// of auctions.ItemRepository using pgx
type PostgresItemRepository struct {
	pool *pgxpool.Pool // pool for read-only operations; locking reads go through tx
}

// NewPostgresItemRepository creates a new PostgreSQL item repository
func NewPostgresItemRepository(pool *pgxpool.Pool) *PostgresItemRepository {
	return &PostgresItemRepository{pool: pool}
}

// CreateItem creates a new item
func (r *PostgresItemRepository) CreateItem(ctx context.Context, item *items.Item) error {
	query := `
		INSERT INTO items (id, code, name, description, image_key, base_price, owner_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		item.ID,
		item.Code,
		item.Name,
		item.Description,
		item.ImageKey,
		item.BasePrice,
		item.OwnerID,
		item.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return items.ErrCodeTaken
		}
		return fmt.Errorf("failed to insert item: %w", err)
	}
	return nil
}

// GetItemByID retrieves an item by its ID
func (r *PostgresItemRepository) GetItemByID(ctx context.Context, itemID uuid.UUID) (*items.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	return scanItemRow(r.pool.QueryRow(ctx, query, itemID))
}

// GetItemByCode retrieves an item by its unique code
func (r *PostgresItemRepository) GetItemByCode(ctx context.Context, code string) (*items.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE code = $1`
	return scanItemRow(r.pool.QueryRow(ctx, query, code))
}

// GetItemsByIDsForUpdate retrieves the given items and locks their rows.
// The ORDER BY fixes the lock acquisition order across transactions.
func (r *PostgresItemRepository) GetItemsByIDsForUpdate(ctx context.Context, tx pgx.Tx, itemIDs []uuid.UUID) ([]*items.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE id = ANY($1)
		ORDER BY id ASC
		FOR UPDATE
	`
	return queryItems(ctx, tx, query, itemIDs)
}

// IsAvailable reports whether the item exists and can be auctioned
func (r *PostgresItemRepository) IsAvailable(ctx context.Context, itemID uuid.UUID) (bool, error) {
	return isAvailable(ctx, r.pool, itemID)
}

// IsAvailableTx is IsAvailable as seen from within the transaction
func (r *PostgresItemRepository) IsAvailableTx(ctx context.Context, tx pgx.Tx, itemID uuid.UUID) (bool, error) {
	return isAvailable(ctx, tx, itemID)
}

func isAvailable(ctx context.Context, q pkgdb.DBTX, itemID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM items WHERE id = $1) AND ` +
		fmt.Sprintf(availabilityPredicate, "$1")
	var available bool
	if err := q.QueryRow(ctx, query, itemID).Scan(&available); err != nil {
		return false, fmt.Errorf("failed to check availability: %w", err)
	}
	return available, nil
}

// ListAvailableByOwner retrieves the owner's items that can still be auctioned
func (r *PostgresItemRepository) ListAvailableByOwner(ctx context.Context, ownerID uuid.UUID) ([]*items.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE owner_id = $1 AND ` + fmt.Sprintf(availabilityPredicate, "items.id") + `
		ORDER BY created_at ASC
	`
	return queryItems(ctx, r.pool, query, ownerID)
}

// GetItemsByAuctionID retrieves the items linked to an auction
func (r *PostgresItemRepository) GetItemsByAuctionID(ctx context.Context, auctionID uuid.UUID) ([]*items.Item, error) {
	query := `
		SELECT i.id, i.code, i.name, i.description, i.image_key, i.base_price, i.owner_id, i.created_at
		FROM items i
		JOIN auction_items ai ON ai.item_id = i.id
		WHERE ai.auction_id = $1
		ORDER BY i.code ASC
	`
	return queryItems(ctx, r.pool, query, auctionID)
}

func scanItemRow(row pgx.Row) (*items.Item, error) {
	var item items.Item
	err := row.Scan(
		&item.ID,
		&item.Code,
		&item.Name,
		&item.Description,
		&item.ImageKey,
		&item.BasePrice,
		&item.OwnerID,
		&item.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // let the service decide what missing means
		}
		return nil, fmt.Errorf("failed to scan item: %w", err)
	}
	return &item, nil
}

func queryItems(ctx context.Context, q pkgdb.DBTX, query string, args ...any) ([]*items.Item, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var result []*items.Item
	for rows.Next() {
		var item items.Item
		if err := rows.Scan(
			&item.ID,
			&item.Code,
			&item.Name,
			&item.Description,
			&item.ImageKey,
			&item.BasePrice,
			&item.OwnerID,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		result = append(result, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}

	return result, nil
}
