package users

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmarzotto/asta/pkg/events"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// CreateUser creates a new user within a transaction
	CreateUser(ctx context.Context, tx pgx.Tx, user *User) error

	// GetUserByEmail retrieves a user by email
	// Returns (nil, nil) when no user exists
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// GetUserByID retrieves a user by ID
	// Returns (nil, nil) when no user exists
	GetUserByID(ctx context.Context, userID uuid.UUID) (*User, error)
}

// OutboxRepository defines the interface for outbox event persistence
type OutboxRepository interface {
	// SaveEvent saves an outbox event within a transaction
	SaveEvent(ctx context.Context, tx pgx.Tx, event *events.OutboxEvent) error
}
