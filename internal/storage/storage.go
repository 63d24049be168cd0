// Package storage defines persistence contracts for the jersey bot.
package storage

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"jersey-bot/internal/models"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates a one-time flag was already set when the write landed.
	ErrConflict = errors.New("record state conflict")
)

// Store persists users, orders, designs and the deadline singleton.
type Store interface {
	EnsureUser(ctx context.Context, userID int64) error
	GetUser(ctx context.Context, userID int64) (models.User, error)

	GetDeadlines(ctx context.Context) (models.Deadlines, error)
	SetVoteDeadline(ctx context.Context, t time.Time) error
	SetPaymentDeadline(ctx context.Context, t time.Time) error

	// CreateOrder inserts the order and flips the owner's has_ordered flag in
	// one transaction. It returns ErrConflict if the flag was already set.
	CreateOrder(ctx context.Context, o models.Order) (models.Order, error)
	CountOrders(ctx context.Context) (int, error)
	// ListOrders returns all orders newest first.
	ListOrders(ctx context.Context) ([]models.Order, error)

	// RecordVote sets the vote choice and has_voted. It returns ErrConflict if
	// the user had already voted.
	RecordVote(ctx context.Context, userID, designID int64) error
	VoteTally(ctx context.Context) (models.VoteTally, error)

	CreateDesign(ctx context.Context, d models.Design) (models.Design, error)
	GetDesign(ctx context.Context, id int64) (models.Design, error)
	ListActiveDesigns(ctx context.Context) ([]models.Design, error)
	UpdateDesign(ctx context.Context, id int64, patch models.DesignPatch) error
}
