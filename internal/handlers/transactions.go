package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"finance-tracker/internal/finance"
	"finance-tracker/internal/models"
)

// TransactionItem represents a transaction in the list view.
type TransactionItem struct {
	models.Transaction
	FormattedDate string
	IsIncome      bool
}

// TransactionsViewModel is the data passed to the transactions template.
type TransactionsViewModel struct {
	Transactions []TransactionItem
	Goals        []models.Goal
	Error        string
}

// ListTransactions renders the transaction list, newest first.
func (h *Handlers) ListTransactions(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	transactions, err := h.db.ListTransactions(user.ID)
	if err != nil {
		log.Printf("ListTransactions error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	goals, err := h.db.ListGoals(user.ID)
	if err != nil {
		log.Printf("ListGoals error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	items := make([]TransactionItem, 0, len(transactions))
	for _, t := range transactions {
		items = append(items, TransactionItem{
			Transaction:   t,
			FormattedDate: t.Date.Format("Jan 02, 2006 15:04"),
			IsIncome:      t.Kind == models.KindIncome,
		})
	}

	h.render(w, r, "transactions.html", TransactionsViewModel{Transactions: items, Goals: goals})
}

// AddTransaction handles the creation of a new transaction. Income
// transactions can contribute to a goal; expense transactions bump the cached
// spent amount of the matching current-month budget.
func (h *Handlers) AddTransaction(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	amount, err := parseAmount(r.FormValue("amount"))
	if err != nil {
		http.Error(w, "Invalid amount", http.StatusBadRequest)
		return
	}

	category := strings.TrimSpace(r.FormValue("category"))
	kind := r.FormValue("type")
	if category == "" || (kind != models.KindIncome && kind != models.KindExpense) {
		http.Error(w, "Category and type are required", http.StatusBadRequest)
		return
	}

	transaction := &models.Transaction{
		Amount:   amount,
		Category: category,
		Kind:     kind,
		Date:     time.Now(),
		UserID:   user.ID,
	}

	if _, err := h.db.CreateTransaction(transaction); err != nil {
		log.Printf("CreateTransaction error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Goal contribution: only income counts toward a goal, and only for
	// goals owned by the current user.
	if goalID, err := strconv.ParseInt(r.FormValue("goal_id"), 10, 64); err == nil && kind == models.KindIncome {
		if err := h.db.AddToGoal(goalID, user.ID, amount); err != nil {
			log.Printf("AddToGoal error: %v", err)
		}
	}

	if kind == models.KindExpense {
		month := finance.MonthStart(time.Now())
		if err := h.db.AddToBudgetSpent(user.ID, category, month, amount); err != nil {
			log.Printf("AddToBudgetSpent error: %v", err)
		}
	}

	http.Redirect(w, r, "/transactions", http.StatusFound)
}
