package http

import (
	"net/http"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

// goalRequest keeps the money and date fields as strings for field-level
// validation, same as transactions. current_amount may be omitted or "0".
type goalRequest struct {
	Name          string `json:"name"`
	TargetAmount  string `json:"target_amount"`
	CurrentAmount string `json:"current_amount"`
	Deadline      string `json:"deadline"`
}

type goalResponse struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	TargetAmount    core.Money `json:"target_amount"`
	CurrentAmount   core.Money `json:"current_amount"`
	Deadline        core.Date  `json:"deadline"`
	CreatedAt       time.Time  `json:"created_at"`
	Completed       bool       `json:"completed"`
	ProgressPercent float64    `json:"progress_percent"`
}

func toGoalResponse(g core.Goal) goalResponse {
	return goalResponse{
		ID:              g.ID,
		Name:            g.Name,
		TargetAmount:    g.TargetAmount,
		CurrentAmount:   g.CurrentAmount,
		Deadline:        g.Deadline,
		CreatedAt:       g.CreatedAt,
		Completed:       g.IsCompleted(),
		ProgressPercent: g.ProgressPercent(),
	}
}

func parseGoalInput(req goalRequest) (services.GoalInput, error) {
	target, err := core.ParseMoney(req.TargetAmount)
	if err != nil {
		return services.GoalInput{}, core.ErrInvalidTarget
	}

	var current core.Money
	if req.CurrentAmount != "" {
		current, err = core.ParseNonNegativeMoney(req.CurrentAmount)
		if err != nil {
			return services.GoalInput{}, core.ErrNegativeCurrent
		}
	}

	var deadline core.Date
	if req.Deadline != "" {
		deadline, err = core.ParseDate(req.Deadline)
		if err != nil {
			return services.GoalInput{}, core.NewValidationError("deadline", "invalid date")
		}
	}

	return services.GoalInput{
		Name:          req.Name,
		TargetAmount:  target,
		CurrentAmount: current,
		Deadline:      deadline,
	}, nil
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if !decodeBody(w, r, &req) {
		return
	}
	in, err := parseGoalInput(req)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	g, err := s.goals.CreateGoal(r.Context(), UserID(r.Context()), in)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toGoalResponse(g))
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.goals.Goals(r.Context(), UserID(r.Context()))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	out := make([]goalResponse, len(goals))
	for i, g := range goals {
		out[i] = toGoalResponse(g)
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		respondError(w, http.StatusNotFound, "", "not found")
		return
	}
	g, err := s.goals.GetGoal(r.Context(), UserID(r.Context()), id)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toGoalResponse(g))
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		respondError(w, http.StatusNotFound, "", "not found")
		return
	}
	var req goalRequest
	if !decodeBody(w, r, &req) {
		return
	}
	in, err := parseGoalInput(req)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	g, becameCompleted, err := s.goals.UpdateGoal(r.Context(), UserID(r.Context()), id, in)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	resp := struct {
		goalResponse
		BecameCompleted bool `json:"became_completed"`
	}{toGoalResponse(g), becameCompleted}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		respondError(w, http.StatusNotFound, "", "not found")
		return
	}
	if err := s.goals.DeleteGoal(r.Context(), UserID(r.Context()), id); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addFundsRequest struct {
	Amount string `json:"amount"`
}

type addFundsResponse struct {
	NewCurrentAmount core.Money `json:"new_current_amount"`
	BecameCompleted  bool       `json:"became_completed"`
}

func (s *Server) handleAddFunds(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		respondError(w, http.StatusNotFound, "", "not found")
		return
	}
	var req addFundsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	amount, err := core.ParseMoney(req.Amount)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	res, err := s.goals.AddFunds(r.Context(), UserID(r.Context()), id, amount)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, addFundsResponse{
		NewCurrentAmount: res.NewCurrentAmount,
		BecameCompleted:  res.BecameCompleted,
	})
}
