// Package services orchestrates the domain operations on top of the
// storage layer. Each service owns one concern: the ledger, goals, the
// dashboard, and auth.
package services

import (
	"context"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// LedgerStore is the storage surface the ledger and dashboard services need.
type LedgerStore interface {
	CreateCategory(ctx context.Context, c *core.Category) error
	GetCategory(ctx context.Context, id int64, userID string) (core.Category, error)
	ListCategories(ctx context.Context, userID string) ([]core.Category, error)
	DeleteCategory(ctx context.Context, id int64, userID string) error

	CreateTransaction(ctx context.Context, t *core.Transaction) error
	GetTransaction(ctx context.Context, id int64, userID string) (core.Transaction, error)
	ListTransactions(ctx context.Context, userID string, f storage.TransactionFilter) ([]core.Transaction, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) error
	DeleteTransaction(ctx context.Context, id int64, userID string) error
}

// GoalStore is the storage surface the goal service needs.
type GoalStore interface {
	CreateGoal(ctx context.Context, g *core.Goal) error
	GetGoal(ctx context.Context, id int64, userID string) (core.Goal, error)
	ListGoals(ctx context.Context, userID string) ([]core.Goal, error)
	UpdateGoal(ctx context.Context, g core.Goal) error
	DeleteGoal(ctx context.Context, id int64, userID string) error
	AddToGoalCurrent(ctx context.Context, id int64, userID string, deltaCents int64) (int64, error)
}

// AuthStore is the storage surface the auth service needs.
type AuthStore interface {
	CreateUser(ctx context.Context, u core.User) error
	GetUserByUsername(ctx context.Context, username string) (core.User, error)
	CreateCategory(ctx context.Context, c *core.Category) error

	CreateSession(ctx context.Context, s storage.Session) error
	GetSession(ctx context.Context, token string) (storage.Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}
