package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmarzotto/asta/pkg/auth"
	"github.com/dmarzotto/asta/pkg/database"
	"github.com/dmarzotto/asta/pkg/events"
)

var (
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidInput       = errors.New("invalid input")
)

type Service struct {
	userRepo   UserRepository
	outboxRepo OutboxRepository
	signer     *auth.Signer
	txManager  database.TransactionManager
}

func NewService(
	userRepo UserRepository,
	outboxRepo OutboxRepository,
	signer *auth.Signer,
	txManager database.TransactionManager,
) *Service {
	return &Service{
		userRepo:   userRepo,
		outboxRepo: outboxRepo,
		signer:     signer,
		txManager:  txManager,
	}
}

func (s *Service) Register(ctx context.Context, email, password, fullName string) (*User, error) {
	if err := validateUser(email, password, fullName); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// Check if user already exists
	existing, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	// Hash password
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// Transaction: save user and outbox event together
	tx, err := s.txManager.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.userRepo.CreateUser(ctx, tx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	outboxEvent, err := events.NewOutboxEvent(events.TypeUserRegistered, events.UserRegistered{
		UserID:    user.ID.String(),
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
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

	return user, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (string, time.Time, *User, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return "", time.Time{}, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return "", time.Time{}, nil, ErrInvalidCredentials
	}

	valid, err := auth.VerifyPassword(user.PasswordHash, password)
	if err != nil {
		return "", time.Time{}, nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return "", time.Time{}, nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.signer.GenerateToken(user.ID, user.Email, user.FullName)
	if err != nil {
		return "", time.Time{}, nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return token, expiresAt, user, nil
}

func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func validateUser(email, password, fullName string) error {
	if !strings.Contains(email, "@") || len(email) < 3 {
		return errors.New("invalid email format")
	}
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if strings.TrimSpace(fullName) == "" {
		return errors.New("full name cannot be empty")
	}
	return nil
}
