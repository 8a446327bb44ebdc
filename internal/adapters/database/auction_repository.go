package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmarzotto/asta/internal/domain/auctions"
)

const auctionColumns = `id, creator_id, initial_price, min_increment, deadline, status, winner_id, final_price, created_at`

// PostgresAuctionRepository implements auctions.AuctionRepository using pgx
type PostgresAuctionRepository struct {
	pool *pgxpool.Pool // pool for read-only operations; writes go through tx
}

// NewPostgresAuctionRepository creates a new PostgreSQL auction repository
func NewPostgresAuctionRepository(pool *pgxpool.Pool) *PostgresAuctionRepository {
	return &PostgresAuctionRepository{pool: pool}
}

// CreateAuction inserts the auction and its item links within a transaction
func (r *PostgresAuctionRepository) CreateAuction(ctx context.Context, tx pgx.Tx, auction *auctions.Auction, itemIDs []uuid.UUID) error {
	query := `
		INSERT INTO auctions (id, creator_id, initial_price, min_increment, deadline, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6::auction_status, $7)
	`
	_, err := tx.Exec(ctx, query,
		auction.ID,
		auction.CreatorID,
		auction.InitialPrice,
		auction.MinIncrement,
		auction.Deadline,
		auction.Status,
		auction.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert auction: %w", err)
	}

	linkQuery := `INSERT INTO auction_items (auction_id, item_id) VALUES ($1, $2)`
	for _, itemID := range itemIDs {
		if _, err := tx.Exec(ctx, linkQuery, auction.ID, itemID); err != nil {
			return fmt.Errorf("failed to link item %s: %w", itemID, err)
		}
	}
	return nil
}

// GetAuctionByID retrieves an auction by its ID
func (r *PostgresAuctionRepository) GetAuctionByID(ctx context.Context, auctionID uuid.UUID) (*auctions.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE id = $1`
	return r.scanAuctionRow(r.pool.QueryRow(ctx, query, auctionID))
}

// GetAuctionByIDForUpdate retrieves an auction and locks its row
func (r *PostgresAuctionRepository) GetAuctionByIDForUpdate(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) (*auctions.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE id = $1 FOR UPDATE`
	return r.scanAuctionRow(tx.QueryRow(ctx, query, auctionID))
}

// CloseAuction closes the auction, re-asserting that it is still open and
// expired at the given instant. Zero rows updated means a concurrent close won.
func (r *PostgresAuctionRepository) CloseAuction(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID, winnerID *uuid.UUID, finalPrice *int64, now time.Time) (bool, error) {
	query := `
		UPDATE auctions
		SET status = 'closed', winner_id = $2, final_price = $3
		WHERE id = $1 AND status = 'open' AND deadline <= $4
	`
	result, err := tx.Exec(ctx, query, auctionID, winnerID, finalPrice, now)
	if err != nil {
		return false, fmt.Errorf("failed to close auction: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// ListByCreator retrieves auctions created by the user, oldest first,
// optionally narrowed to one lifecycle state
func (r *PostgresAuctionRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID, status auctions.Status) ([]*auctions.Auction, error) {
	query := `
		SELECT ` + auctionColumns + `
		FROM auctions
		WHERE creator_id = $1
	`
	args := []any{creatorID}
	if status != "" {
		query += ` AND status = $2::auction_status`
		args = append(args, status)
	}
	query += ` ORDER BY created_at ASC`
	return r.queryAuctions(ctx, query, args...)
}

// ListWonByUser retrieves closed auctions the user won, most recent deadline first
func (r *PostgresAuctionRepository) ListWonByUser(ctx context.Context, userID uuid.UUID) ([]*auctions.Auction, error) {
	query := `
		SELECT ` + auctionColumns + `
		FROM auctions
		WHERE status = 'closed' AND winner_id = $1
		ORDER BY deadline DESC
	`
	return r.queryAuctions(ctx, query, userID)
}

// SearchOpen retrieves open, unexpired auctions whose items match the keyword
func (r *PostgresAuctionRepository) SearchOpen(ctx context.Context, keyword string, now time.Time) ([]*auctions.Auction, error) {
	query := `
		SELECT DISTINCT a.id, a.creator_id, a.initial_price, a.min_increment, a.deadline, a.status, a.winner_id, a.final_price, a.created_at
		FROM auctions a
		JOIN auction_items ai ON ai.auction_id = a.id
		JOIN items i ON i.id = ai.item_id
		WHERE a.status = 'open'
		  AND a.deadline > $2
		  AND (i.name ILIKE '%' || $1 || '%' OR i.description ILIKE '%' || $1 || '%')
		ORDER BY a.deadline ASC
	`
	return r.queryAuctions(ctx, query, keyword, now)
}

// ListOpenByIDs retrieves the open, unexpired auctions among the given IDs
func (r *PostgresAuctionRepository) ListOpenByIDs(ctx context.Context, auctionIDs []uuid.UUID, now time.Time) ([]*auctions.Auction, error) {
	query := `
		SELECT ` + auctionColumns + `
		FROM auctions
		WHERE id = ANY($1) AND status = 'open' AND deadline > $2
	`
	return r.queryAuctions(ctx, query, auctionIDs, now)
}

func (r *PostgresAuctionRepository) scanAuctionRow(row pgx.Row) (*auctions.Auction, error) {
	var auction auctions.Auction
	err := row.Scan(
		&auction.ID,
		&auction.CreatorID,
		&auction.InitialPrice,
		&auction.MinIncrement,
		&auction.Deadline,
		&auction.Status,
		&auction.WinnerID,
		&auction.FinalPrice,
		&auction.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // let the service decide what missing means
		}
		return nil, fmt.Errorf("failed to scan auction: %w", err)
	}
	return &auction, nil
}

func (r *PostgresAuctionRepository) queryAuctions(ctx context.Context, query string, args ...any) ([]*auctions.Auction, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query auctions: %w", err)
	}
	defer rows.Close()

	var result []*auctions.Auction
	for rows.Next() {
		var auction auctions.Auction
		if err := rows.Scan(
			&auction.ID,
			&auction.CreatorID,
			&auction.InitialPrice,
			&auction.MinIncrement,
			&auction.Deadline,
			&auction.Status,
			&auction.WinnerID,
			&auction.FinalPrice,
			&auction.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan auction: %w", err)
		}
		result = append(result, &auction)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating auctions: %w", err)
	}

	return result, nil
}
