// Package store defines persistence for cycle reports and the scheduler's
// fired-hour marker.
package store

import (
	"context"
	"time"

	"strikebot/internal/store/model"
)

// UnitOfWork defines a transaction scope.
type UnitOfWork interface {
	// Commit commits the transaction.
	Commit() error
	// Rollback rolls back the transaction.
	Rollback() error

	// Cycles returns the cycle repository within this transaction.
	Cycles() CycleRepository
	// Hours returns the fired-hour repository within this transaction.
	Hours() HourRepository
}

// Store is the entry point for database access.
type Store interface {
	// Begin starts a new UnitOfWork (transaction).
	Begin(ctx context.Context) (UnitOfWork, error)
	// Close closes the store connection.
	Close() error
}

// CycleRepository handles cycle log persistence. Save stores the attempts
// with the cycle.
type CycleRepository interface {
	Save(ctx context.Context, cycle *model.CycleModel) error
	FindByTraceID(ctx context.Context, traceID string) (*model.CycleModel, error)
	ListRecent(ctx context.Context, limit int) ([]model.CycleModel, error)
}

// HourRepository handles the fired-hour marker.
type HourRepository interface {
	Exists(ctx context.Context, hour time.Time) (bool, error)
	Mark(ctx context.Context, hour time.Time) error
}
