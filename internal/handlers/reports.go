package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"finance-tracker/internal/finance"
)

// ReportsViewModel is the data passed to the reports template.
type ReportsViewModel struct {
	Year            int
	Month           int
	MonthYearLabel  string
	MonthlyIncome   float64
	MonthlyExpenses float64
	MonthlySavings  float64
	DailySeries     []finance.DailyPoint
	Breakdown       []finance.CategoryShare
}

// Reports renders the monthly report: totals, a zero-filled daily series
// covering every day of the month, and the category breakdown. Year and month
// default to the current month and can be overridden by query parameters.
func (h *Handlers) Reports(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	now := time.Now()
	year := now.Year()
	month := int(now.Month())

	if y, err := strconv.Atoi(r.URL.Query().Get("year")); err == nil {
		year = y
	}
	if m, err := strconv.Atoi(r.URL.Query().Get("month")); err == nil && m >= 1 && m <= 12 {
		month = m
	}

	transactions, err := h.db.ListTransactions(user.ID)
	if err != nil {
		log.Printf("ListTransactions error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	monthTx := finance.FilterMonth(transactions, year, time.Month(month))
	totals := finance.ComputeTotals(monthTx)

	h.render(w, r, "reports.html", ReportsViewModel{
		Year:            year,
		Month:           month,
		MonthYearLabel:  time.Month(month).String() + " " + strconv.Itoa(year),
		MonthlyIncome:   totals.Income,
		MonthlyExpenses: totals.Expenses,
		MonthlySavings:  totals.Balance,
		DailySeries:     finance.MonthReportSeries(transactions, year, time.Month(month)),
		Breakdown:       finance.CategoryBreakdown(transactions, year, time.Month(month)),
	})
}
