// Package http exposes the JSON API. Routing uses the standard mux with
// method and path patterns; every /api route except signup and login sits
// behind the session middleware.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

// Auth is the part of the auth service the server needs.
type Auth interface {
	Signup(ctx context.Context, username, password string) (core.User, string, error)
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (string, error)
}

// Ledger covers transactions, categories and the analytics views.
type Ledger interface {
	CreateTransaction(ctx context.Context, userID string, in services.TransactionInput) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, userID string, id int64, in services.TransactionInput) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, userID string, id int64) error
	GetTransaction(ctx context.Context, userID string, id int64) (core.Transaction, error)
	Transactions(ctx context.Context, userID string, f storage.TransactionFilter) ([]core.Transaction, error)

	CreateCategory(ctx context.Context, userID, name string, isIncome bool) (core.Category, error)
	Categories(ctx context.Context, userID string) ([]core.Category, error)
	DeleteCategory(ctx context.Context, userID string, id int64) error

	Analytics(ctx context.Context, userID string, year int) (services.Analytics, error)
	ExpensesByCategory(ctx context.Context, userID string) (core.CategoryBreakdown, error)
	MonthlyBalance(ctx context.Context, userID string, year int) (core.MonthlySeries, error)
	AvailableYears(ctx context.Context, userID string) ([]int, error)
}

// Goals is the goal service surface.
type Goals interface {
	CreateGoal(ctx context.Context, userID string, in services.GoalInput) (core.Goal, error)
	UpdateGoal(ctx context.Context, userID string, id int64, in services.GoalInput) (core.Goal, bool, error)
	DeleteGoal(ctx context.Context, userID string, id int64) error
	GetGoal(ctx context.Context, userID string, id int64) (core.Goal, error)
	Goals(ctx context.Context, userID string) ([]core.Goal, error)
	AddFunds(ctx context.Context, userID string, goalID int64, amount core.Money) (services.AddFundsResult, error)
}

// Dashboards assembles the landing page.
type Dashboards interface {
	Assemble(ctx context.Context, userID string, q services.DashboardQuery) (services.Dashboard, error)
}

type Server struct {
	http.Server

	auth       Auth
	ledger     Ledger
	goals      Goals
	dashboards Dashboards

	logger       *log.Logger
	rateLimiter  *rateLimiter
	sessionTTL   time.Duration
	shutdownOnce sync.Once
}

// Options tunes the server independently of the service wiring.
type Options struct {
	Addr               string
	RateLimitPerMinute int
	SessionTTL         time.Duration
}

func NewServer(opts Options, auth Auth, ledger Ledger, goals Goals, dashboards Dashboards, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:         opts.Addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		auth:        auth,
		ledger:      ledger,
		goals:       goals,
		dashboards:  dashboards,
		logger:      logger.WithComponent(log.ComponentHTTP),
		rateLimiter: newRateLimiter(opts.RateLimitPerMinute),
		sessionTTL:  opts.SessionTTL,
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	public := func(h http.HandlerFunc) http.HandlerFunc { return s.withRequestSetup(h) }
	private := func(h http.HandlerFunc) http.HandlerFunc { return s.withRequestSetup(s.requireSession(h)) }

	mux.HandleFunc("POST /api/signup", public(s.handleSignup))
	mux.HandleFunc("POST /api/login", public(s.handleLogin))
	mux.HandleFunc("POST /api/logout", public(s.handleLogout))

	mux.HandleFunc("GET /api/dashboard", private(s.handleDashboard))

	mux.HandleFunc("GET /api/transactions", private(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", private(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions/{id}", private(s.handleGetTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", private(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", private(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/categories", private(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", private(s.handleCreateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", private(s.handleDeleteCategory))

	mux.HandleFunc("GET /api/goals", private(s.handleListGoals))
	mux.HandleFunc("POST /api/goals", private(s.handleCreateGoal))
	mux.HandleFunc("GET /api/goals/{id}", private(s.handleGetGoal))
	mux.HandleFunc("PUT /api/goals/{id}", private(s.handleUpdateGoal))
	mux.HandleFunc("DELETE /api/goals/{id}", private(s.handleDeleteGoal))
	mux.HandleFunc("POST /api/goals/{id}/add", private(s.handleAddFunds))

	mux.HandleFunc("GET /api/analytics", private(s.handleAnalytics))
	mux.HandleFunc("GET /api/analytics/expenses-by-category", private(s.handleExpensesByCategory))
	mux.HandleFunc("GET /api/analytics/monthly-balance", private(s.handleMonthlyBalance))
	mux.HandleFunc("GET /api/analytics/years", private(s.handleAvailableYears))

	mux.HandleFunc("GET /api/charts/categories.png", private(s.handleCategoryChart))
	mux.HandleFunc("GET /api/charts/monthly.png", private(s.handleMonthlyChart))

	return s
}

// Shutdown stops the background cleanup and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
