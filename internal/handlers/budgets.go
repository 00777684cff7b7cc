package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"finance-tracker/internal/finance"
	"finance-tracker/internal/models"
	"finance-tracker/internal/storage"
)

// BudgetViewModel is the data passed to the budget template.
type BudgetViewModel struct {
	Budgets         []models.Budget
	TotalBudget     float64
	TotalSpent      float64
	RemainingBudget float64
	Error           string
}

// ListBudgets renders the budget page with spent amounts recomputed from
// this month's expense transactions rather than the cached column.
func (h *Handlers) ListBudgets(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	now := time.Now()

	budgets, err := h.db.ListBudgets(user.ID)
	if err != nil {
		log.Printf("ListBudgets error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	transactions, err := h.db.ListTransactions(user.ID)
	if err != nil {
		log.Printf("ListTransactions error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	monthTotals := make(map[string]float64)
	for _, tx := range finance.FilterMonth(transactions, now.Year(), now.Month()) {
		if tx.Kind == models.KindExpense {
			monthTotals[tx.Category] += tx.Amount
		}
	}

	var totalBudget, totalSpent float64
	for i := range budgets {
		budgets[i].Spent = monthTotals[budgets[i].Category]
		totalBudget += budgets[i].Limit
		totalSpent += budgets[i].Spent
	}

	h.render(w, r, "budget.html", BudgetViewModel{
		Budgets:         budgets,
		TotalBudget:     totalBudget,
		TotalSpent:      totalSpent,
		RemainingBudget: totalBudget - totalSpent,
	})
}

// AddBudget creates a budget category for the current month.
func (h *Handlers) AddBudget(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	category := strings.TrimSpace(r.FormValue("category"))
	limit, err := parsePositiveAmount(r.FormValue("limit"))
	if err != nil || category == "" {
		http.Error(w, "Category and limit are required", http.StatusBadRequest)
		return
	}

	budget := &models.Budget{
		Category: category,
		Limit:    limit,
		Spent:    0,
		Month:    finance.MonthStart(time.Now()),
		UserID:   user.ID,
	}

	if _, err := h.db.CreateBudget(budget); err != nil {
		log.Printf("CreateBudget error: %v", err)
		http.Error(w, "Could not add budget category. It may already exist for this month.", http.StatusBadRequest)
		return
	}

	http.Redirect(w, r, "/budget", http.StatusFound)
}

// UpdateBudget changes the limit of a budget owned by the current user.
func (h *Handlers) UpdateBudget(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid budget id", http.StatusBadRequest)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	limit, err := parsePositiveAmount(r.FormValue("limit"))
	if err != nil {
		http.Error(w, "Invalid limit", http.StatusBadRequest)
		return
	}

	if err := h.db.SetBudgetLimit(id, user.ID, limit); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		log.Printf("SetBudgetLimit error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/budget", http.StatusFound)
}

// DeleteBudget removes a budget owned by the current user.
func (h *Handlers) DeleteBudget(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid budget id", http.StatusBadRequest)
		return
	}

	if err := h.db.DeleteBudget(id, user.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		log.Printf("DeleteBudget error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/budget", http.StatusFound)
}
