package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

func newTestLogger() *log.Logger {
	return log.New(log.Config{
		Handler: slog.NewTextHandler(io.Discard, nil),
	})
}

// fakeStore is an in-memory implementation of the store interfaces with the
// same scoping and ordering semantics as the SQLite repository.
type fakeStore struct {
	mu           sync.Mutex
	nextID       int64
	users        map[string]core.User // keyed by username
	sessions     map[string]storage.Session
	categories   map[int64]core.Category
	transactions map[int64]core.Transaction
	goals        map[int64]core.Goal
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:        make(map[string]core.User),
		sessions:     make(map[string]storage.Session),
		categories:   make(map[int64]core.Category),
		transactions: make(map[int64]core.Transaction),
		goals:        make(map[int64]core.Goal),
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

// --- AuthStore ---

func (f *fakeStore) CreateUser(_ context.Context, u core.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[u.Username]; exists {
		return core.NewValidationError("username", "username is already taken")
	}
	f.users[u.Username] = u
	return nil
}

func (f *fakeStore) GetUserByUsername(_ context.Context, username string) (core.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[username]
	if !ok {
		return core.User{}, core.ErrNotFound
	}
	return u, nil
}

func (f *fakeStore) CreateSession(_ context.Context, s storage.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[s.Token] = s
	return nil
}

func (f *fakeStore) GetSession(_ context.Context, token string) (storage.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[token]
	if !ok {
		return storage.Session{}, core.ErrNotFound
	}
	return s, nil
}

func (f *fakeStore) DeleteSession(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, token)
	return nil
}

func (f *fakeStore) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for token, s := range f.sessions {
		if s.ExpiresAt.Before(now) {
			delete(f.sessions, token)
			n++
		}
	}
	return n, nil
}

// --- LedgerStore ---

func (f *fakeStore) CreateCategory(_ context.Context, c *core.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.categories {
		if existing.UserID == c.UserID && existing.Name == c.Name {
			return core.NewValidationError("name", "category with this name already exists")
		}
	}
	c.ID = f.id()
	f.categories[c.ID] = *c
	return nil
}

func (f *fakeStore) GetCategory(_ context.Context, id int64, userID string) (core.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.categories[id]
	if !ok || c.UserID != userID {
		return core.Category{}, core.ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) ListCategories(_ context.Context, userID string) ([]core.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []core.Category{}
	for _, c := range f.categories {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeStore) DeleteCategory(_ context.Context, id int64, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.categories[id]
	if !ok || c.UserID != userID {
		return core.ErrNotFound
	}
	delete(f.categories, id)
	for txID, tx := range f.transactions {
		if tx.CategoryID != nil && *tx.CategoryID == id {
			tx.CategoryID = nil
			tx.CategoryName = ""
			f.transactions[txID] = tx
		}
	}
	return nil
}

func (f *fakeStore) CreateTransaction(_ context.Context, t *core.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t.ID = f.id()
	if t.CategoryID != nil {
		if c, ok := f.categories[*t.CategoryID]; ok {
			t.CategoryName = c.Name
		}
	}
	f.transactions[t.ID] = *t
	return nil
}

func (f *fakeStore) GetTransaction(_ context.Context, id int64, userID string) (core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.transactions[id]
	if !ok || t.UserID != userID {
		return core.Transaction{}, core.ErrNotFound
	}
	return t, nil
}

func (f *fakeStore) ListTransactions(_ context.Context, userID string, filter storage.TransactionFilter) ([]core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []core.Transaction{}
	for _, t := range f.transactions {
		if t.UserID != userID {
			continue
		}
		if !filter.DateFrom.IsZero() && t.Date.Before(filter.DateFrom.Time) {
			continue
		}
		if !filter.DateTo.IsZero() && t.Date.After(filter.DateTo.Time) {
			continue
		}
		if filter.Type.Valid() && t.Type != filter.Type {
			continue
		}
		if filter.CategoryID != 0 && (t.CategoryID == nil || *t.CategoryID != filter.CategoryID) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (f *fakeStore) UpdateTransaction(_ context.Context, t core.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.transactions[t.ID]
	if !ok || existing.UserID != t.UserID {
		return core.ErrNotFound
	}
	t.CategoryName = ""
	if t.CategoryID != nil {
		if c, ok := f.categories[*t.CategoryID]; ok {
			t.CategoryName = c.Name
		}
	}
	f.transactions[t.ID] = t
	return nil
}

func (f *fakeStore) DeleteTransaction(_ context.Context, id int64, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.transactions[id]
	if !ok || t.UserID != userID {
		return core.ErrNotFound
	}
	delete(f.transactions, id)
	return nil
}

// --- GoalStore ---

func (f *fakeStore) CreateGoal(_ context.Context, g *core.Goal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g.ID = f.id()
	f.goals[g.ID] = *g
	return nil
}

func (f *fakeStore) GetGoal(_ context.Context, id int64, userID string) (core.Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.goals[id]
	if !ok || g.UserID != userID {
		return core.Goal{}, core.ErrNotFound
	}
	return g, nil
}

func (f *fakeStore) ListGoals(_ context.Context, userID string) ([]core.Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []core.Goal{}
	for _, g := range f.goals {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (f *fakeStore) UpdateGoal(_ context.Context, g core.Goal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.goals[g.ID]
	if !ok || existing.UserID != g.UserID {
		return core.ErrNotFound
	}
	g.CreatedAt = existing.CreatedAt
	f.goals[g.ID] = g
	return nil
}

func (f *fakeStore) DeleteGoal(_ context.Context, id int64, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.goals[id]
	if !ok || g.UserID != userID {
		return core.ErrNotFound
	}
	delete(f.goals, id)
	return nil
}

func (f *fakeStore) AddToGoalCurrent(_ context.Context, id int64, userID string, deltaCents int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.goals[id]
	if !ok || g.UserID != userID {
		return 0, core.ErrNotFound
	}
	g.CurrentAmount.Cents += deltaCents
	f.goals[id] = g
	return g.CurrentAmount.Cents, nil
}
