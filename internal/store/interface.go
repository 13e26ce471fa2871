package store

import (
	"context"
	"database/sql"

	"github.com/maloquacious/mealmax/internal/meal"
)

// StoreState represents the initialization state of the datastore.
type StoreState int

const (
	StateMissing         StoreState = iota // File doesn't exist
	StateUninitialized                     // File exists but no schema
	StateVersionMismatch                   // Schema exists but wrong version
	StateReady                             // Initialized and correct version
)

func (s StoreState) String() string {
	switch s {
	case StateMissing:
		return "missing"
	case StateUninitialized:
		return "uninitialized"
	case StateVersionMismatch:
		return "version_mismatch"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// ConnProvider hands out one connection per operation. *sql.DB satisfies it.
type ConnProvider interface {
	Conn(ctx context.Context) (*sql.Conn, error)
}

// Store defines the mealmax datastore lifecycle contract.
// Implementations must be safe for concurrent use.
type Store interface {
	// Open opens the datastore connection
	Open() error

	// Close closes the datastore connection
	Close() error

	// InitSchema creates the schema_migrations and meals tables
	InitSchema(version string) error

	// CheckState returns the current state of the datastore
	CheckState() (StoreState, error)

	// GetSchemaVersion returns the current schema version from the database
	GetSchemaVersion() (string, error)
}

// Catalogue is the meal catalogue contract. Every failure is a *meal.Error.
type Catalogue interface {
	CreateMeal(ctx context.Context, name, cuisine string, price float64, difficulty string) (int64, error)
	DeleteMeal(ctx context.Context, id int64) error
	GetMealByID(ctx context.Context, id int64) (meal.Meal, error)
	GetMealByName(ctx context.Context, name string) (meal.Meal, error)
	UpdateMealStats(ctx context.Context, id int64, result string) error
	GetLeaderboard(ctx context.Context, sortBy string) ([]meal.LeaderboardEntry, error)

	// ClearMeals recreates the meals table from the configured schema script.
	ClearMeals(ctx context.Context) error
}
