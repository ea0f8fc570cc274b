package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedUser(t *testing.T, repo *SQLiteRepository, id, username string) {
	t.Helper()
	err := repo.CreateUser(context.Background(), core.User{
		ID:           id,
		Username:     username,
		PasswordHash: "x",
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
}

func TestUsers(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedUser(t, repo, "u1", "alice")

	u, err := repo.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u.ID != "u1" {
		t.Fatalf("expected u1, got %s", u.ID)
	}

	if _, err := repo.GetUserByUsername(ctx, "nobody"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	err = repo.CreateUser(ctx, core.User{ID: "u2", Username: "alice", PasswordHash: "y", CreatedAt: time.Now()})
	if !core.IsValidationError(err) {
		t.Fatalf("duplicate username should be a validation error, got %v", err)
	}
}

func TestSessions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedUser(t, repo, "u1", "alice")

	now := time.Now().UTC()
	live := Session{Token: "tok-live", UserID: "u1", ExpiresAt: now.Add(time.Hour)}
	stale := Session{Token: "tok-stale", UserID: "u1", ExpiresAt: now.Add(-time.Hour)}
	for _, s := range []Session{live, stale} {
		if err := repo.CreateSession(ctx, s); err != nil {
			t.Fatalf("create session: %v", err)
		}
	}

	got, err := repo.GetSession(ctx, "tok-live")
	if err != nil || got.UserID != "u1" {
		t.Fatalf("get session: %v (user=%s)", err, got.UserID)
	}

	purged, err := repo.DeleteExpiredSessions(ctx, now)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if purged != 1 {
		t.Fatalf("expected 1 purged session, got %d", purged)
	}
	if _, err := repo.GetSession(ctx, "tok-stale"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("stale session should be gone, got %v", err)
	}

	if err := repo.DeleteSession(ctx, "tok-live"); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, err := repo.GetSession(ctx, "tok-live"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("deleted session should be gone, got %v", err)
	}
}

func TestCategories(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedUser(t, repo, "u1", "alice")
	seedUser(t, repo, "u2", "bob")

	food := core.Category{UserID: "u1", Name: "Food"}
	if err := repo.CreateCategory(ctx, &food); err != nil {
		t.Fatalf("create category: %v", err)
	}
	if food.ID == 0 {
		t.Fatal("expected category id to be set")
	}

	dup := core.Category{UserID: "u1", Name: "Food"}
	if err := repo.CreateCategory(ctx, &dup); !core.IsValidationError(err) {
		t.Fatalf("duplicate (user, name) should be a validation error, got %v", err)
	}

	// Same name for another user is fine.
	other := core.Category{UserID: "u2", Name: "Food"}
	if err := repo.CreateCategory(ctx, &other); err != nil {
		t.Fatalf("same name for different user: %v", err)
	}

	// Owner scoping: bob cannot see or delete alice's category.
	if _, err := repo.GetCategory(ctx, food.ID, "u2"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("cross-user get should be NotFound, got %v", err)
	}
	if err := repo.DeleteCategory(ctx, food.ID, "u2"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("cross-user delete should be NotFound, got %v", err)
	}

	list, err := repo.ListCategories(ctx, "u1")
	if err != nil || len(list) != 1 {
		t.Fatalf("list categories: %v (n=%d)", err, len(list))
	}
}

func TestTransactionsFilterAndOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedUser(t, repo, "u1", "alice")
	seedUser(t, repo, "u2", "bob")

	food := core.Category{UserID: "u1", Name: "Food"}
	if err := repo.CreateCategory(ctx, &food); err != nil {
		t.Fatalf("create category: %v", err)
	}

	mk := func(userID string, catID *int64, txType core.TransactionType, cents int64, date core.Date) core.Transaction {
		tx := core.Transaction{UserID: userID, CategoryID: catID, Type: txType, Amount: core.Money{Cents: cents}, Date: date}
		if err := repo.CreateTransaction(ctx, &tx); err != nil {
			t.Fatalf("create transaction: %v", err)
		}
		return tx
	}

	first := mk("u1", &food.ID, core.Expense, 5000, core.NewDate(2025, 3, 10))
	second := mk("u1", &food.ID, core.Expense, 3000, core.NewDate(2025, 3, 10))
	income := mk("u1", nil, core.Income, 200000, core.NewDate(2025, 3, 1))
	older := mk("u1", nil, core.Expense, 700, core.NewDate(2025, 2, 20))
	mk("u2", nil, core.Expense, 9999, core.NewDate(2025, 3, 10))

	t.Run("default ordering is date desc then id desc", func(t *testing.T) {
		all, err := repo.ListTransactions(ctx, "u1", TransactionFilter{})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		wantIDs := []int64{second.ID, first.ID, income.ID, older.ID}
		if len(all) != len(wantIDs) {
			t.Fatalf("expected %d rows, got %d", len(wantIDs), len(all))
		}
		for i, want := range wantIDs {
			if all[i].ID != want {
				t.Fatalf("position %d: expected id %d, got %d", i, want, all[i].ID)
			}
		}
	})

	t.Run("date range is inclusive", func(t *testing.T) {
		got, err := repo.ListTransactions(ctx, "u1", TransactionFilter{
			DateFrom: core.NewDate(2025, 3, 1),
			DateTo:   core.NewDate(2025, 3, 10),
		})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 rows in range, got %d", len(got))
		}
	})

	t.Run("type and category filters", func(t *testing.T) {
		got, err := repo.ListTransactions(ctx, "u1", TransactionFilter{Type: core.Income})
		if err != nil || len(got) != 1 || got[0].ID != income.ID {
			t.Fatalf("type filter: err=%v rows=%d", err, len(got))
		}
		got, err = repo.ListTransactions(ctx, "u1", TransactionFilter{CategoryID: food.ID})
		if err != nil || len(got) != 2 {
			t.Fatalf("category filter: err=%v rows=%d", err, len(got))
		}
		for _, tx := range got {
			if tx.CategoryName != "Food" {
				t.Fatalf("expected joined category name, got %q", tx.CategoryName)
			}
		}
	})

	t.Run("no filter combination leaks other users", func(t *testing.T) {
		got, err := repo.ListTransactions(ctx, "u1", TransactionFilter{
			DateFrom: core.NewDate(2025, 3, 10),
			DateTo:   core.NewDate(2025, 3, 10),
			Type:     core.Expense,
		})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		for _, tx := range got {
			if tx.UserID != "u1" {
				t.Fatalf("leaked row of user %s", tx.UserID)
			}
		}
	})
}

func TestTransactionLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedUser(t, repo, "u1", "alice")

	tx := core.Transaction{UserID: "u1", Type: core.Expense, Amount: core.Money{Cents: 100}, Date: core.NewDate(2025, 1, 1), Description: "coffee"}
	if err := repo.CreateTransaction(ctx, &tx); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetTransaction(ctx, tx.ID, "u1")
	if err != nil || got.Description != "coffee" || got.Amount.Cents != 100 {
		t.Fatalf("get: %v (%+v)", err, got)
	}

	got.Amount = core.Money{Cents: 250}
	got.Description = "lunch"
	if err := repo.UpdateTransaction(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = repo.GetTransaction(ctx, tx.ID, "u1")
	if got.Amount.Cents != 250 || got.Description != "lunch" {
		t.Fatalf("update not persisted: %+v", got)
	}

	if _, err := repo.GetTransaction(ctx, tx.ID, "u2"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("cross-user get should be NotFound, got %v", err)
	}
	if err := repo.UpdateTransaction(ctx, core.Transaction{ID: tx.ID, UserID: "u2", Type: core.Expense, Amount: core.Money{Cents: 1}, Date: core.NewDate(2025, 1, 1)}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("cross-user update should be NotFound, got %v", err)
	}

	if err := repo.DeleteTransaction(ctx, tx.ID, "u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.DeleteTransaction(ctx, tx.ID, "u1"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete should be NotFound, got %v", err)
	}
}

func TestDeleteCategoryDetachesTransactions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedUser(t, repo, "u1", "alice")

	cat := core.Category{UserID: "u1", Name: "Food"}
	if err := repo.CreateCategory(ctx, &cat); err != nil {
		t.Fatalf("create category: %v", err)
	}
	tx := core.Transaction{UserID: "u1", CategoryID: &cat.ID, Type: core.Expense, Amount: core.Money{Cents: 100}, Date: core.NewDate(2025, 1, 1)}
	if err := repo.CreateTransaction(ctx, &tx); err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	if err := repo.DeleteCategory(ctx, cat.ID, "u1"); err != nil {
		t.Fatalf("delete category: %v", err)
	}

	got, err := repo.GetTransaction(ctx, tx.ID, "u1")
	if err != nil {
		t.Fatalf("transaction must survive category deletion: %v", err)
	}
	if got.CategoryID != nil {
		t.Fatalf("expected null category reference, got %d", *got.CategoryID)
	}
	if got.CategoryName != "" {
		t.Fatalf("expected empty category name, got %q", got.CategoryName)
	}
}

func TestGoals(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedUser(t, repo, "u1", "alice")

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mk := func(name string, createdAt time.Time) core.Goal {
		g := core.Goal{
			UserID:        "u1",
			Name:          name,
			TargetAmount:  core.Money{Cents: 100000},
			CurrentAmount: core.Money{Cents: 0},
			CreatedAt:     createdAt,
		}
		if err := repo.CreateGoal(ctx, &g); err != nil {
			t.Fatalf("create goal %s: %v", name, err)
		}
		return g
	}

	mk("first", base)
	mk("second", base.Add(time.Hour))
	third := mk("third", base.Add(2*time.Hour))
	third.Deadline = core.NewDate(2026, 1, 1)
	if err := repo.UpdateGoal(ctx, third); err != nil {
		t.Fatalf("update goal: %v", err)
	}

	goals, err := repo.ListGoals(ctx, "u1")
	if err != nil {
		t.Fatalf("list goals: %v", err)
	}
	if len(goals) != 3 || goals[0].Name != "third" || goals[2].Name != "first" {
		t.Fatalf("expected newest-first ordering, got %+v", goals)
	}
	if goals[0].Deadline.String() != "2026-01-01" {
		t.Fatalf("deadline not persisted: %v", goals[0].Deadline)
	}
	if !goals[1].Deadline.IsZero() {
		t.Fatalf("expected zero deadline, got %v", goals[1].Deadline)
	}

	current, err := repo.AddToGoalCurrent(ctx, third.ID, "u1", 15000)
	if err != nil || current != 15000 {
		t.Fatalf("add to goal: %v (current=%d)", err, current)
	}
	if _, err := repo.AddToGoalCurrent(ctx, third.ID, "u2", 1); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("cross-user add should be NotFound, got %v", err)
	}

	if err := repo.DeleteGoal(ctx, third.ID, "u1"); err != nil {
		t.Fatalf("delete goal: %v", err)
	}
	if _, err := repo.GetGoal(ctx, third.ID, "u1"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("deleted goal should be NotFound, got %v", err)
	}
}
