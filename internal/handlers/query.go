package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"finance-tracker/internal/finance"
)

// recentQueryLimit bounds how many transactions feed the query context, so
// answer computation stays proportional to a small window.
const recentQueryLimit = 10

type queryRequest struct {
	Query string `json:"query"`
}

type queryResponse struct {
	Response string `json:"response"`
}

// Query answers a free-text finance question. The handler assembles a
// read-only snapshot of the user's aggregates and delegates to the engine's
// keyword router; the engine itself performs no storage access.
func (h *Handlers) Query(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	recent, err := h.db.RecentTransactions(user.ID, recentQueryLimit)
	if err != nil {
		log.Printf("RecentTransactions error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	goals, err := h.db.ListGoals(user.ID)
	if err != nil {
		log.Printf("ListGoals error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	budgets, err := h.db.ListBudgetsByMonth(user.ID, finance.MonthStart(time.Now()))
	if err != nil {
		log.Printf("ListBudgetsByMonth error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	debts, err := h.db.ListDebts(user.ID)
	if err != nil {
		log.Printf("ListDebts error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	totals := finance.ComputeTotals(recent)

	response := finance.AnswerQuery(req.Query, finance.QueryContext{
		RecentTransactions: recent,
		Goals:              goals,
		Budgets:            budgets,
		Debts:              debts,
		TotalIncome:        totals.Income,
		TotalExpenses:      totals.Expenses,
	})

	writeJSON(w, http.StatusOK, queryResponse{Response: response})
}
