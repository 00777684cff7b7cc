package handlers

import (
	"log"
	"net/http"
	"time"

	"finance-tracker/internal/finance"
	"finance-tracker/internal/models"
)

// trendMonths is how many months of history feed the dashboard trends.
const trendMonths = 6

// DashboardViewModel is the data passed to the dashboard template.
type DashboardViewModel struct {
	User             *models.User
	Recent           []TransactionItem
	Totals           finance.Totals
	BiggestExpense   *models.Transaction
	HighestIncome    *models.Transaction
	Breakdown        []finance.CategoryShare
	MonthlyTrend     []finance.MonthStat
	CategoryTrends   map[string][]finance.MonthAmount
	SpendingPatterns []finance.Pattern
	Forecast         finance.Forecast
	BudgetStatus     finance.Status
	Budgets          []models.Budget
	Goals            []models.Goal
	Debts            []models.Debt
	Warnings         []finance.Warning
	Advice           []finance.Advice
	Tips             []finance.Tip
	Insights         []finance.Insight
	DailySeries      []finance.DailyPoint
}

// Dashboard renders the main dashboard: storage fetch, pure aggregation,
// then render. The engine receives explicit snapshots and never touches the
// database itself.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	now := time.Now()

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
	budgets, err := h.db.ListBudgetsByMonth(user.ID, finance.MonthStart(now))
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

	totals := finance.ComputeTotals(transactions)
	breakdown := finance.CategoryBreakdown(transactions, now.Year(), now.Month())
	trend := finance.MonthlyTrend(transactions, now, trendMonths)

	categoryTrends := make(map[string][]finance.MonthAmount, len(breakdown))
	for _, share := range breakdown {
		categoryTrends[share.Category] = finance.CategoryTrend(transactions, share.Category, now, trendMonths)
	}

	// Recompute cached spent amounts from this month's transactions.
	monthTotals := make(map[string]float64)
	for _, tx := range finance.FilterMonth(transactions, now.Year(), now.Month()) {
		if tx.Kind == models.KindExpense {
			monthTotals[tx.Category] += tx.Amount
		}
	}
	for i := range budgets {
		budgets[i].Spent = monthTotals[budgets[i].Category]
	}

	monthTotalsAll := finance.ComputeTotals(finance.FilterMonth(transactions, now.Year(), now.Month()))

	recent := transactions
	if len(recent) > 5 {
		recent = recent[:5]
	}
	recentItems := make([]TransactionItem, 0, len(recent))
	for _, t := range recent {
		recentItems = append(recentItems, TransactionItem{
			Transaction:   t,
			FormattedDate: t.Date.Format("Jan 02, 2006"),
			IsIncome:      t.Kind == models.KindIncome,
		})
	}

	h.render(w, r, "dashboard.html", DashboardViewModel{
		User:             user,
		Recent:           recentItems,
		Totals:           totals,
		BiggestExpense:   finance.BiggestExpense(transactions),
		HighestIncome:    finance.HighestIncome(transactions),
		Breakdown:        breakdown,
		MonthlyTrend:     trend,
		CategoryTrends:   categoryTrends,
		SpendingPatterns: finance.SpendingPatterns(breakdown),
		Forecast:         finance.ForecastCashflow(totals.Income, totals.Expenses, trend),
		BudgetStatus:     finance.BudgetStatus(totals.Income, totals.Expenses),
		Budgets:          budgets,
		Goals:            goals,
		Debts:            debts,
		Warnings:         finance.BudgetWarnings(budgets, transactions, now),
		Advice:           finance.SavingsAdvice(goals, monthTotalsAll.Income, monthTotalsAll.Expenses, now),
		Tips:             finance.BudgetTips(transactions, now),
		Insights:         finance.Insights(breakdown, totals.Balance),
		DailySeries:      finance.DailySeries(transactions),
	})
}
