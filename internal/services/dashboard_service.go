package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

const (
	dashboardTransactionLimit = 5
	dashboardGoalLimit        = 3
)

// DashboardQuery holds the raw, untrusted query inputs. Anything that does
// not parse falls back silently to the defaults; the dashboard never fails
// on bad filters.
type DashboardQuery struct {
	DateFrom string
	DateTo   string
	Type     string
	Category string
}

// Dashboard is the assembled landing-page data for one user.
type Dashboard struct {
	DateFrom     core.Date
	DateTo       core.Date
	Transactions []core.Transaction // most recent 5 of the filtered set
	IncomeTotal  core.Money         // over the date range only
	ExpenseTotal core.Money         // over the date range only
	Balance      core.Money         // income - expense, may be negative
	ByCategory   []core.CategoryTotal
	Goals        []core.Goal // up to 3 newest, unfiltered by date
}

// DashboardService combines the ledger and goal stores into the
// presentation-ready dashboard structure.
type DashboardService struct {
	ledger LedgerStore
	goals  GoalStore
	logger *log.Logger
	now    func() time.Time
}

func NewDashboardService(ledger LedgerStore, goals GoalStore, logger *log.Logger) *DashboardService {
	return &DashboardService{
		ledger: ledger,
		goals:  goals,
		logger: logger.WithComponent(log.ComponentDashboard),
		now:    time.Now,
	}
}

// Assemble builds the dashboard for the effective date range. The default
// range runs from the first day of the current month through today.
func (s *DashboardService) Assemble(ctx context.Context, userID string, q DashboardQuery) (Dashboard, error) {
	today := core.DateOf(s.now())
	defaultFrom := core.NewDate(today.Year(), int(today.Month()), 1)

	dateFrom := parseDateOr(q.DateFrom, defaultFrom)
	dateTo := parseDateOr(q.DateTo, today)

	filter := storage.TransactionFilter{DateFrom: dateFrom, DateTo: dateTo}
	if t := core.TransactionType(q.Type); t.Valid() {
		filter.Type = t
	}
	if id, err := strconv.ParseInt(q.Category, 10, 64); err == nil && id > 0 {
		filter.CategoryID = id
	}

	filtered, err := s.ledger.ListTransactions(ctx, userID, filter)
	if err != nil {
		return Dashboard{}, fmt.Errorf("load filtered transactions: %w", err)
	}

	// The three sums ignore the type/category filters and cover the whole
	// date range, while the list and breakdown reflect every filter.
	inRange := filtered
	if filter.Type != "" || filter.CategoryID != 0 {
		inRange, err = s.ledger.ListTransactions(ctx, userID, storage.TransactionFilter{
			DateFrom: dateFrom,
			DateTo:   dateTo,
		})
		if err != nil {
			return Dashboard{}, fmt.Errorf("load range transactions: %w", err)
		}
	}

	income := core.SumByType(inRange, core.Income)
	expense := core.SumByType(inRange, core.Expense)

	recent := filtered
	if len(recent) > dashboardTransactionLimit {
		recent = recent[:dashboardTransactionLimit]
	}

	goals, err := s.goals.ListGoals(ctx, userID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("load goals: %w", err)
	}
	if len(goals) > dashboardGoalLimit {
		goals = goals[:dashboardGoalLimit]
	}

	return Dashboard{
		DateFrom:     dateFrom,
		DateTo:       dateTo,
		Transactions: recent,
		IncomeTotal:  income,
		ExpenseTotal: expense,
		Balance:      income.Sub(expense),
		ByCategory:   core.CategoryTotals(filtered),
		Goals:        goals,
	}, nil
}

func parseDateOr(s string, fallback core.Date) core.Date {
	if s == "" {
		return fallback
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return fallback
	}
	return d
}
