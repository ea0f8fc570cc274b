package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

func newLedgerService(store LedgerStore, now time.Time) *LedgerService {
	s := NewLedgerService(store, newTestLogger())
	s.now = func() time.Time { return now }
	return s
}

func TestCreateTransactionResolvesCategory(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := newLedgerService(store, now)
	ctx := context.Background()

	food, err := svc.CreateCategory(ctx, "u1", "Food", false)
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	tx, err := svc.CreateTransaction(ctx, "u1", TransactionInput{
		CategoryID: &food.ID,
		Type:       core.Expense,
		Amount:     core.Money{Cents: 1234},
		Date:       core.NewDate(2025, 3, 10),
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if tx.CategoryName != "Food" {
		t.Errorf("CategoryName = %q, want Food", tx.CategoryName)
	}
}

func TestCreateTransactionForeignCategoryIsValidationError(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := newLedgerService(store, now)
	ctx := context.Background()

	other, err := svc.CreateCategory(ctx, "u2", "Their Food", false)
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	_, err = svc.CreateTransaction(ctx, "u1", TransactionInput{
		CategoryID: &other.ID,
		Type:       core.Expense,
		Amount:     core.Money{Cents: 100},
		Date:       core.NewDate(2025, 3, 10),
	})
	var verr *core.ValidationError
	if !errors.As(err, &verr) || verr.Field != "category" {
		t.Fatalf("expected category validation error, got %v", err)
	}
}

func TestCreateTransactionDateBoundary(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC)
	svc := newLedgerService(store, now)
	ctx := context.Background()

	// Dated today: fine even late in the evening.
	_, err := svc.CreateTransaction(ctx, "u1", TransactionInput{
		Type:   core.Expense,
		Amount: core.Money{Cents: 100},
		Date:   core.NewDate(2025, 3, 10),
	})
	if err != nil {
		t.Fatalf("today must be allowed: %v", err)
	}

	// Dated tomorrow: rejected.
	_, err = svc.CreateTransaction(ctx, "u1", TransactionInput{
		Type:   core.Expense,
		Amount: core.Money{Cents: 100},
		Date:   core.NewDate(2025, 3, 11),
	})
	var verr *core.ValidationError
	if !errors.As(err, &verr) || verr.Field != "date" {
		t.Fatalf("expected date validation error, got %v", err)
	}
}

func TestUpdateTransactionCrossUser(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := newLedgerService(store, now)
	ctx := context.Background()

	tx, err := svc.CreateTransaction(ctx, "u1", TransactionInput{
		Type:   core.Expense,
		Amount: core.Money{Cents: 100},
		Date:   core.NewDate(2025, 3, 10),
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	_, err = svc.UpdateTransaction(ctx, "u2", tx.ID, TransactionInput{
		Type:   core.Expense,
		Amount: core.Money{Cents: 999},
		Date:   core.NewDate(2025, 3, 10),
	})
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected NotFound for foreign transaction, got %v", err)
	}
	if err := svc.DeleteTransaction(ctx, "u2", tx.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected NotFound on foreign delete, got %v", err)
	}
}

func TestAnalytics(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := newLedgerService(store, now)
	ctx := context.Background()

	food, _ := svc.CreateCategory(ctx, "u1", "Food", false)
	rent, _ := svc.CreateCategory(ctx, "u1", "Rent", false)

	seed := []TransactionInput{
		{CategoryID: &food.ID, Type: core.Expense, Amount: core.Money{Cents: 5000}, Date: core.NewDate(2025, 1, 5)},
		{CategoryID: &food.ID, Type: core.Expense, Amount: core.Money{Cents: 3000}, Date: core.NewDate(2025, 2, 5)},
		{CategoryID: &rent.ID, Type: core.Expense, Amount: core.Money{Cents: 90000}, Date: core.NewDate(2025, 2, 1)},
		{Type: core.Expense, Amount: core.Money{Cents: 2000}, Date: core.NewDate(2024, 12, 31)},
		{Type: core.Income, Amount: core.Money{Cents: 150000}, Date: core.NewDate(2025, 1, 1)},
	}
	for _, in := range seed {
		if _, err := svc.CreateTransaction(ctx, "u1", in); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	a, err := svc.Analytics(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("Analytics: %v", err)
	}

	wantLabels := []string{"Food", "Rent", core.UncategorizedLabel}
	if len(a.ByCategory.Labels) != len(wantLabels) {
		t.Fatalf("labels = %v, want %v", a.ByCategory.Labels, wantLabels)
	}
	for i, l := range wantLabels {
		if a.ByCategory.Labels[i] != l {
			t.Errorf("labels[%d] = %q, want %q", i, a.ByCategory.Labels[i], l)
		}
	}
	if a.MainCategory != "Rent" {
		t.Errorf("MainCategory = %q, want Rent", a.MainCategory)
	}

	wantYears := []int{2024, 2025}
	if len(a.Years) != 2 || a.Years[0] != wantYears[0] || a.Years[1] != wantYears[1] {
		t.Errorf("Years = %v, want %v", a.Years, wantYears)
	}

	// All-years series covers only months with activity, in order.
	wantMonths := []string{"2024-12", "2025-01", "2025-02"}
	if len(a.Monthly.Months) != len(wantMonths) {
		t.Fatalf("months = %v, want %v", a.Monthly.Months, wantMonths)
	}
	for i, m := range wantMonths {
		if a.Monthly.Months[i] != m {
			t.Errorf("months[%d] = %q, want %q", i, a.Monthly.Months[i], m)
		}
	}

	// Restricting to one year drops the other buckets.
	a, err = svc.Analytics(ctx, "u1", 2024)
	if err != nil {
		t.Fatalf("Analytics(2024): %v", err)
	}
	if len(a.Monthly.Months) != 1 || a.Monthly.Months[0] != "2024-12" {
		t.Errorf("2024 months = %v, want [2024-12]", a.Monthly.Months)
	}
	if a.SelectedYear != 2024 {
		t.Errorf("SelectedYear = %d, want 2024", a.SelectedYear)
	}
}

func TestExpensesByCategoryService(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := newLedgerService(store, now)
	ctx := context.Background()

	if _, err := svc.CreateTransaction(ctx, "u1", TransactionInput{
		Type: core.Income, Amount: core.Money{Cents: 100000}, Date: core.NewDate(2025, 3, 1),
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	breakdown, err := svc.ExpensesByCategory(ctx, "u1")
	if err != nil {
		t.Fatalf("ExpensesByCategory: %v", err)
	}
	if len(breakdown.Labels) != 0 {
		t.Errorf("income-only ledger must yield empty breakdown, got %v", breakdown.Labels)
	}
}

func TestDeleteCategoryDetaches(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := newLedgerService(store, now)
	ctx := context.Background()

	food, _ := svc.CreateCategory(ctx, "u1", "Food", false)
	tx, err := svc.CreateTransaction(ctx, "u1", TransactionInput{
		CategoryID: &food.ID,
		Type:       core.Expense,
		Amount:     core.Money{Cents: 100},
		Date:       core.NewDate(2025, 3, 10),
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	if err := svc.DeleteCategory(ctx, "u1", food.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}

	got, err := svc.GetTransaction(ctx, "u1", tx.ID)
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if got.CategoryID != nil {
		t.Error("transaction still references deleted category")
	}

	txs, err := svc.Transactions(ctx, "u1", storage.TransactionFilter{})
	if err != nil {
		t.Fatalf("Transactions: %v", err)
	}
	if len(txs) != 1 {
		t.Errorf("transaction count = %d, want 1 after category delete", len(txs))
	}
}
