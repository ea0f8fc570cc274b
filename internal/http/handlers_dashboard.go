package http

import (
	"errors"
	"net/http"
	"strconv"

	"fintrack/internal/charts"
	"fintrack/internal/core"
	"fintrack/internal/services"
)

type dashboardResponse struct {
	DateFrom     core.Date             `json:"date_from"`
	DateTo       core.Date             `json:"date_to"`
	Transactions []transactionResponse `json:"transactions"`
	IncomeTotal  core.Money            `json:"income_total"`
	ExpenseTotal core.Money            `json:"expense_total"`
	Balance      core.Money            `json:"balance"`
	ByCategory   []categoryTotalJSON   `json:"by_category"`
	Goals        []goalResponse        `json:"goals"`
}

type categoryTotalJSON struct {
	Name  string     `json:"name"`
	Total core.Money `json:"total"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dash, err := s.dashboards.Assemble(r.Context(), UserID(r.Context()), services.DashboardQuery{
		DateFrom: q.Get("date_from"),
		DateTo:   q.Get("date_to"),
		Type:     q.Get("type"),
		Category: q.Get("category"),
	})
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	resp := dashboardResponse{
		DateFrom:     dash.DateFrom,
		DateTo:       dash.DateTo,
		Transactions: toTransactionResponses(dash.Transactions),
		IncomeTotal:  dash.IncomeTotal,
		ExpenseTotal: dash.ExpenseTotal,
		Balance:      dash.Balance,
		ByCategory:   make([]categoryTotalJSON, len(dash.ByCategory)),
		Goals:        make([]goalResponse, len(dash.Goals)),
	}
	for i, ct := range dash.ByCategory {
		resp.ByCategory[i] = categoryTotalJSON{Name: ct.Name, Total: ct.Total}
	}
	for i, g := range dash.Goals {
		resp.Goals[i] = toGoalResponse(g)
	}
	respondJSON(w, http.StatusOK, resp)
}

// yearParam reads the optional ?year= filter; 0 means all years.
func yearParam(r *http.Request) int {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 0 {
		return 0
	}
	return year
}

type breakdownResponse struct {
	Labels []string     `json:"labels"`
	Sums   []core.Money `json:"sums"`
}

type monthlyResponse struct {
	Months  []string     `json:"months"`
	Income  []core.Money `json:"income"`
	Expense []core.Money `json:"expense"`
}

type analyticsResponse struct {
	ByCategory   breakdownResponse `json:"by_category"`
	Monthly      monthlyResponse   `json:"monthly"`
	Years        []int             `json:"years"`
	MainCategory string            `json:"main_category,omitempty"`
	SelectedYear int               `json:"selected_year"`
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	a, err := s.ledger.Analytics(r.Context(), UserID(r.Context()), yearParam(r))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, analyticsResponse{
		ByCategory:   breakdownResponse{Labels: a.ByCategory.Labels, Sums: a.ByCategory.Sums},
		Monthly:      monthlyResponse{Months: a.Monthly.Months, Income: a.Monthly.Income, Expense: a.Monthly.Expense},
		Years:        a.Years,
		MainCategory: a.MainCategory,
		SelectedYear: a.SelectedYear,
	})
}

func (s *Server) handleExpensesByCategory(w http.ResponseWriter, r *http.Request) {
	b, err := s.ledger.ExpensesByCategory(r.Context(), UserID(r.Context()))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, breakdownResponse{Labels: b.Labels, Sums: b.Sums})
}

func (s *Server) handleMonthlyBalance(w http.ResponseWriter, r *http.Request) {
	m, err := s.ledger.MonthlyBalance(r.Context(), UserID(r.Context()), yearParam(r))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, monthlyResponse{Months: m.Months, Income: m.Income, Expense: m.Expense})
}

func (s *Server) handleAvailableYears(w http.ResponseWriter, r *http.Request) {
	years, err := s.ledger.AvailableYears(r.Context(), UserID(r.Context()))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string][]int{"years": years})
}

func (s *Server) handleCategoryChart(w http.ResponseWriter, r *http.Request) {
	b, err := s.ledger.ExpensesByCategory(r.Context(), UserID(r.Context()))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.servePNG(w, r, func() ([]byte, error) { return charts.CategoryPie(b) })
}

func (s *Server) handleMonthlyChart(w http.ResponseWriter, r *http.Request) {
	m, err := s.ledger.MonthlyBalance(r.Context(), UserID(r.Context()), yearParam(r))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.servePNG(w, r, func() ([]byte, error) { return charts.MonthlyBalanceBars(m) })
}

// servePNG renders a chart, mapping no-data to 204 so clients can hide the
// image slot instead of showing a broken one.
func (s *Server) servePNG(w http.ResponseWriter, r *http.Request, render func() ([]byte, error)) {
	png, err := render()
	if errors.Is(err, charts.ErrNoData) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}
