package http

import (
	"net/http"
	"strconv"

	"fintrack/internal/core"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

// transactionRequest keeps amount and date as strings so that parsing
// failures surface as field-level validation errors, not decode errors.
type transactionRequest struct {
	CategoryID  *int64 `json:"category_id"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

type transactionResponse struct {
	ID           int64      `json:"id"`
	CategoryID   *int64     `json:"category_id"`
	CategoryName string     `json:"category_name,omitempty"`
	Type         string     `json:"type"`
	Amount       core.Money `json:"amount"`
	Date         core.Date  `json:"date"`
	Description  string     `json:"description,omitempty"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:           t.ID,
		CategoryID:   t.CategoryID,
		CategoryName: t.CategoryName,
		Type:         string(t.Type),
		Amount:       t.Amount,
		Date:         t.Date,
		Description:  t.Description,
	}
}

func toTransactionResponses(txs []core.Transaction) []transactionResponse {
	out := make([]transactionResponse, len(txs))
	for i, t := range txs {
		out[i] = toTransactionResponse(t)
	}
	return out
}

// parseTransactionInput validates the two string fields up front. Amount
// must be a positive decimal and date a YYYY-MM-DD day.
func parseTransactionInput(req transactionRequest) (services.TransactionInput, error) {
	amount, err := core.ParseMoney(req.Amount)
	if err != nil {
		return services.TransactionInput{}, err
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return services.TransactionInput{}, err
	}
	return services.TransactionInput{
		CategoryID:  req.CategoryID,
		Type:        core.TransactionType(req.Type),
		Amount:      amount,
		Date:        date,
		Description: req.Description,
	}, nil
}

// pathID reads the {id} path segment. Zero means it did not parse.
func pathID(r *http.Request) int64 {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	in, err := parseTransactionInput(req)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	tx, err := s.ledger.CreateTransaction(r.Context(), UserID(r.Context()), in)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		respondError(w, http.StatusNotFound, "", "not found")
		return
	}
	tx, err := s.ledger.GetTransaction(r.Context(), UserID(r.Context()), id)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		respondError(w, http.StatusNotFound, "", "not found")
		return
	}
	var req transactionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	in, err := parseTransactionInput(req)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	tx, err := s.ledger.UpdateTransaction(r.Context(), UserID(r.Context()), id, in)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		respondError(w, http.StatusNotFound, "", "not found")
		return
	}
	if err := s.ledger.DeleteTransaction(r.Context(), UserID(r.Context()), id); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListTransactions lists the user's transactions newest first.
// Filter parameters that do not parse are dropped silently.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter storage.TransactionFilter
	if d, err := core.ParseDate(q.Get("date_from")); err == nil {
		filter.DateFrom = d
	}
	if d, err := core.ParseDate(q.Get("date_to")); err == nil {
		filter.DateTo = d
	}
	if t := core.TransactionType(q.Get("type")); t.Valid() {
		filter.Type = t
	}
	if id, err := strconv.ParseInt(q.Get("category"), 10, 64); err == nil && id > 0 {
		filter.CategoryID = id
	}

	txs, err := s.ledger.Transactions(r.Context(), UserID(r.Context()), filter)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toTransactionResponses(txs))
}

type categoryRequest struct {
	Name     string `json:"name"`
	IsIncome bool   `json:"is_income"`
}

type categoryResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	IsIncome bool   `json:"is_income"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	c, err := s.ledger.CreateCategory(r.Context(), UserID(r.Context()), req.Name, req.IsIncome)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, categoryResponse{ID: c.ID, Name: c.Name, IsIncome: c.IsIncome})
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.ledger.Categories(r.Context(), UserID(r.Context()))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	out := make([]categoryResponse, len(cats))
	for i, c := range cats {
		out[i] = categoryResponse{ID: c.ID, Name: c.Name, IsIncome: c.IsIncome}
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		respondError(w, http.StatusNotFound, "", "not found")
		return
	}
	if err := s.ledger.DeleteCategory(r.Context(), UserID(r.Context()), id); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
