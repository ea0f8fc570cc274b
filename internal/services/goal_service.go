package services

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// GoalInput carries the user-editable goal fields.
type GoalInput struct {
	Name          string
	TargetAmount  core.Money
	CurrentAmount core.Money
	Deadline      core.Date // zero means no deadline
}

// AddFundsResult reports the outcome of an add-funds call. BecameCompleted
// is an informational signal for this call only; it is never persisted.
type AddFundsResult struct {
	NewCurrentAmount core.Money
	BecameCompleted  bool
}

// GoalService owns savings goals and their funding.
type GoalService struct {
	store  GoalStore
	logger *log.Logger
	now    func() time.Time
}

func NewGoalService(store GoalStore, logger *log.Logger) *GoalService {
	return &GoalService{
		store:  store,
		logger: logger.WithComponent(log.ComponentGoals),
		now:    time.Now,
	}
}

func (s *GoalService) CreateGoal(ctx context.Context, userID string, in GoalInput) (core.Goal, error) {
	g := core.Goal{
		UserID:        userID,
		Name:          in.Name,
		TargetAmount:  in.TargetAmount,
		CurrentAmount: in.CurrentAmount,
		Deadline:      in.Deadline,
		CreatedAt:     s.now().UTC(),
	}
	if err := g.Validate(core.DateOf(s.now())); err != nil {
		return core.Goal{}, err
	}
	if err := s.store.CreateGoal(ctx, &g); err != nil {
		return core.Goal{}, fmt.Errorf("create goal: %w", err)
	}
	s.logger.InfoContext(ctx, "Goal created",
		log.FieldUserID, userID, log.FieldGoalID, g.ID, "name", g.Name)
	return g, nil
}

// UpdateGoal rewrites the editable fields. The returned flag reports
// whether this edit moved the goal from active to completed; completion
// itself stays a derived property.
func (s *GoalService) UpdateGoal(ctx context.Context, userID string, id int64, in GoalInput) (core.Goal, bool, error) {
	existing, err := s.store.GetGoal(ctx, id, userID)
	if err != nil {
		return core.Goal{}, false, err
	}
	completedBefore := existing.IsCompleted()

	existing.Name = in.Name
	existing.TargetAmount = in.TargetAmount
	existing.CurrentAmount = in.CurrentAmount
	existing.Deadline = in.Deadline

	if err := existing.Validate(core.DateOf(s.now())); err != nil {
		return core.Goal{}, false, err
	}
	if err := s.store.UpdateGoal(ctx, existing); err != nil {
		return core.Goal{}, false, err
	}
	return existing, !completedBefore && existing.IsCompleted(), nil
}

func (s *GoalService) DeleteGoal(ctx context.Context, userID string, id int64) error {
	if err := s.store.DeleteGoal(ctx, id, userID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Goal deleted", log.FieldUserID, userID, log.FieldGoalID, id)
	return nil
}

func (s *GoalService) GetGoal(ctx context.Context, userID string, id int64) (core.Goal, error) {
	return s.store.GetGoal(ctx, id, userID)
}

func (s *GoalService) Goals(ctx context.Context, userID string) ([]core.Goal, error) {
	return s.store.ListGoals(ctx, userID)
}

// AddFunds increments the goal's current amount by a strictly positive
// amount. Adding to an already completed goal is a silent no-op that still
// reports success. Nothing is mutated when validation fails.
func (s *GoalService) AddFunds(ctx context.Context, userID string, goalID int64, amount core.Money) (AddFundsResult, error) {
	if amount.Cents <= 0 {
		return AddFundsResult{}, core.ErrInvalidAmount
	}

	g, err := s.store.GetGoal(ctx, goalID, userID)
	if err != nil {
		return AddFundsResult{}, err
	}

	if g.IsCompleted() {
		return AddFundsResult{NewCurrentAmount: g.CurrentAmount}, nil
	}

	newCents, err := s.store.AddToGoalCurrent(ctx, goalID, userID, amount.Cents)
	if err != nil {
		return AddFundsResult{}, fmt.Errorf("add funds: %w", err)
	}

	result := AddFundsResult{
		NewCurrentAmount: core.Money{Cents: newCents},
		BecameCompleted:  newCents >= g.TargetAmount.Cents,
	}
	s.logger.InfoContext(ctx, "Funds added to goal",
		log.FieldUserID, userID,
		log.FieldGoalID, goalID,
		log.FieldAmountCents, amount.Cents,
		"became_completed", result.BecameCompleted)
	return result, nil
}
