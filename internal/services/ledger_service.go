package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// TransactionInput carries the user-editable transaction fields.
type TransactionInput struct {
	CategoryID  *int64
	Type        core.TransactionType
	Amount      core.Money
	Date        core.Date
	Description string
}

// Analytics bundles the three reporting views for one user.
type Analytics struct {
	ByCategory   core.CategoryBreakdown
	Monthly      core.MonthlySeries
	Years        []int
	MainCategory string // label with the largest expense sum, empty when none
	SelectedYear int    // 0 means all years
}

// LedgerService owns transactions, categories and the reporting views.
type LedgerService struct {
	store  LedgerStore
	logger *log.Logger
	now    func() time.Time
}

func NewLedgerService(store LedgerStore, logger *log.Logger) *LedgerService {
	return &LedgerService{
		store:  store,
		logger: logger.WithComponent(log.ComponentLedger),
		now:    time.Now,
	}
}

func (s *LedgerService) today() core.Date {
	return core.DateOf(s.now())
}

// resolveCategory checks that the referenced category belongs to the user.
// A foreign or missing category is a validation error on the input, not a
// NotFound on the transaction.
func (s *LedgerService) resolveCategory(ctx context.Context, userID string, categoryID *int64) error {
	if categoryID == nil {
		return nil
	}
	_, err := s.store.GetCategory(ctx, *categoryID, userID)
	if errors.Is(err, core.ErrNotFound) {
		return core.NewValidationError("category", "unknown category")
	}
	return err
}

func (s *LedgerService) CreateTransaction(ctx context.Context, userID string, in TransactionInput) (core.Transaction, error) {
	tx := core.Transaction{
		UserID:      userID,
		CategoryID:  in.CategoryID,
		Type:        in.Type,
		Amount:      in.Amount,
		Date:        in.Date,
		Description: in.Description,
	}
	if err := tx.Validate(s.today()); err != nil {
		return core.Transaction{}, err
	}
	if err := s.resolveCategory(ctx, userID, in.CategoryID); err != nil {
		return core.Transaction{}, err
	}
	if err := s.store.CreateTransaction(ctx, &tx); err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	s.logger.InfoContext(ctx, "Transaction created",
		log.FieldUserID, userID,
		log.FieldTransactionID, tx.ID,
		log.FieldAmountCents, tx.Amount.Cents,
		"type", tx.Type)
	return s.store.GetTransaction(ctx, tx.ID, userID)
}

func (s *LedgerService) UpdateTransaction(ctx context.Context, userID string, id int64, in TransactionInput) (core.Transaction, error) {
	existing, err := s.store.GetTransaction(ctx, id, userID)
	if err != nil {
		return core.Transaction{}, err
	}

	existing.CategoryID = in.CategoryID
	existing.Type = in.Type
	existing.Amount = in.Amount
	existing.Date = in.Date
	existing.Description = in.Description

	if err := existing.Validate(s.today()); err != nil {
		return core.Transaction{}, err
	}
	if err := s.resolveCategory(ctx, userID, in.CategoryID); err != nil {
		return core.Transaction{}, err
	}
	if err := s.store.UpdateTransaction(ctx, existing); err != nil {
		return core.Transaction{}, err
	}
	return s.store.GetTransaction(ctx, id, userID)
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, userID string, id int64) error {
	if err := s.store.DeleteTransaction(ctx, id, userID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Transaction deleted",
		log.FieldUserID, userID, log.FieldTransactionID, id)
	return nil
}

func (s *LedgerService) GetTransaction(ctx context.Context, userID string, id int64) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, id, userID)
}

// Transactions lists the user's transactions matching the filter, newest
// first.
func (s *LedgerService) Transactions(ctx context.Context, userID string, f storage.TransactionFilter) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx, userID, f)
}

func (s *LedgerService) CreateCategory(ctx context.Context, userID, name string, isIncome bool) (core.Category, error) {
	c := core.Category{UserID: userID, Name: name, IsIncome: isIncome}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	if err := s.store.CreateCategory(ctx, &c); err != nil {
		return core.Category{}, err
	}
	return c, nil
}

func (s *LedgerService) Categories(ctx context.Context, userID string) ([]core.Category, error) {
	return s.store.ListCategories(ctx, userID)
}

func (s *LedgerService) DeleteCategory(ctx context.Context, userID string, id int64) error {
	if err := s.store.DeleteCategory(ctx, id, userID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Category deleted",
		log.FieldUserID, userID, log.FieldCategoryID, id)
	return nil
}

// ExpensesByCategory groups all of the user's expenses by category name.
func (s *LedgerService) ExpensesByCategory(ctx context.Context, userID string) (core.CategoryBreakdown, error) {
	txs, err := s.store.ListTransactions(ctx, userID, storage.TransactionFilter{Type: core.Expense})
	if err != nil {
		return core.CategoryBreakdown{}, fmt.Errorf("load expenses: %w", err)
	}
	return core.ExpensesByCategory(txs), nil
}

// MonthlyBalance buckets the user's transactions by month, optionally
// restricted to one year (0 means all).
func (s *LedgerService) MonthlyBalance(ctx context.Context, userID string, year int) (core.MonthlySeries, error) {
	txs, err := s.store.ListTransactions(ctx, userID, storage.TransactionFilter{})
	if err != nil {
		return core.MonthlySeries{}, fmt.Errorf("load transactions: %w", err)
	}
	return core.MonthlyBalance(txs, year), nil
}

// AvailableYears lists the years the user has any transactions in.
func (s *LedgerService) AvailableYears(ctx context.Context, userID string) ([]int, error) {
	txs, err := s.store.ListTransactions(ctx, userID, storage.TransactionFilter{})
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	return core.AvailableYears(txs), nil
}

// Analytics assembles the reporting page data in one call.
func (s *LedgerService) Analytics(ctx context.Context, userID string, year int) (Analytics, error) {
	txs, err := s.store.ListTransactions(ctx, userID, storage.TransactionFilter{})
	if err != nil {
		return Analytics{}, fmt.Errorf("load transactions: %w", err)
	}

	byCat := core.ExpensesByCategory(txs)

	main := ""
	var max int64 = -1
	for i, sum := range byCat.Sums {
		if sum.Cents > max {
			max = sum.Cents
			main = byCat.Labels[i]
		}
	}

	return Analytics{
		ByCategory:   byCat,
		Monthly:      core.MonthlyBalance(txs, year),
		Years:        core.AvailableYears(txs),
		MainCategory: main,
		SelectedYear: year,
	}, nil
}
