// Package finance computes derived views over a user's financial records.
// Every function is pure: it takes a snapshot of transactions, budgets,
// goals or debts and returns plain data, performing no I/O.
package finance

import (
	"sort"
	"time"

	"finance-tracker/internal/models"
)

// Totals holds income and expense sums for a set of transactions.
type Totals struct {
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Balance  float64 `json:"balance"`
}

// CategoryShare is a category's expense total and its share of all expenses.
type CategoryShare struct {
	Category   string  `json:"name"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// DailyPoint holds income and expense sums for a single calendar day.
type DailyPoint struct {
	Date    string  `json:"date"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

// ComputeTotals sums transaction amounts by kind. An empty input yields an
// all-zero result.
func ComputeTotals(transactions []models.Transaction) Totals {
	var t Totals
	for _, tx := range transactions {
		switch tx.Kind {
		case models.KindIncome:
			t.Income += tx.Amount
		case models.KindExpense:
			t.Expenses += tx.Amount
		}
	}
	t.Balance = t.Income - t.Expenses
	return t
}

// MonthStart returns the first-of-month timestamp for t in UTC.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// FilterMonth returns the transactions whose date falls within the given
// calendar month (first of month inclusive, first of next month exclusive).
func FilterMonth(transactions []models.Transaction, year int, month time.Month) []models.Transaction {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	var result []models.Transaction
	for _, tx := range transactions {
		if !tx.Date.Before(start) && tx.Date.Before(end) {
			result = append(result, tx)
		}
	}
	return result
}

// CategoryBreakdown computes per-category expense totals for the given month,
// sorted descending by amount. Percentages are of the month's total expenses
// and are zero when the month has no expenses. Ties keep encounter order.
func CategoryBreakdown(transactions []models.Transaction, year int, month time.Month) []CategoryShare {
	totals := make(map[string]float64)
	var order []string

	for _, tx := range FilterMonth(transactions, year, month) {
		if tx.Kind != models.KindExpense {
			continue
		}
		if _, seen := totals[tx.Category]; !seen {
			order = append(order, tx.Category)
		}
		totals[tx.Category] += tx.Amount
	}

	var total float64
	for _, amount := range totals {
		total += amount
	}

	shares := make([]CategoryShare, 0, len(order))
	for _, category := range order {
		percentage := 0.0
		if total > 0 {
			percentage = totals[category] / total * 100
		}
		shares = append(shares, CategoryShare{
			Category:   category,
			Amount:     totals[category],
			Percentage: percentage,
		})
	}

	sort.SliceStable(shares, func(i, j int) bool { return shares[i].Amount > shares[j].Amount })
	return shares
}

// DailySeries aggregates transactions into per-day income and expense sums,
// sorted ascending by date. Days with no transactions are absent; see
// MonthReportSeries for the zero-filled variant used by reports.
func DailySeries(transactions []models.Transaction) []DailyPoint {
	byDay := make(map[string]*DailyPoint)

	for _, tx := range transactions {
		day := tx.Date.Format("2006-01-02")
		point, ok := byDay[day]
		if !ok {
			point = &DailyPoint{Date: day}
			byDay[day] = point
		}
		switch tx.Kind {
		case models.KindIncome:
			point.Income += tx.Amount
		case models.KindExpense:
			point.Expense += tx.Amount
		}
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	series := make([]DailyPoint, 0, len(days))
	for _, day := range days {
		series = append(series, *byDay[day])
	}
	return series
}

// MonthReportSeries produces a day-indexed series covering every day of the
// given month, with zeros for days that have no transactions. February is
// leap-year aware.
func MonthReportSeries(transactions []models.Transaction, year int, month time.Month) []DailyPoint {
	// Day zero of the next month is the last day of this one.
	daysInMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()

	series := make([]DailyPoint, daysInMonth)
	index := make(map[string]int, daysInMonth)
	for day := 1; day <= daysInMonth; day++ {
		date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		series[day-1] = DailyPoint{Date: date}
		index[date] = day - 1
	}

	for _, tx := range FilterMonth(transactions, year, month) {
		i, ok := index[tx.Date.Format("2006-01-02")]
		if !ok {
			continue
		}
		switch tx.Kind {
		case models.KindIncome:
			series[i].Income += tx.Amount
		case models.KindExpense:
			series[i].Expense += tx.Amount
		}
	}

	return series
}

// BiggestExpense returns the largest single expense transaction, or nil when
// there are no expenses.
func BiggestExpense(transactions []models.Transaction) *models.Transaction {
	return largestOfKind(transactions, models.KindExpense)
}

// HighestIncome returns the largest single income transaction, or nil when
// there is no income.
func HighestIncome(transactions []models.Transaction) *models.Transaction {
	return largestOfKind(transactions, models.KindIncome)
}

func largestOfKind(transactions []models.Transaction, kind string) *models.Transaction {
	var best *models.Transaction
	for i := range transactions {
		tx := &transactions[i]
		if tx.Kind != kind {
			continue
		}
		if best == nil || tx.Amount > best.Amount {
			best = tx
		}
	}
	if best == nil {
		return nil
	}
	copy := *best
	return &copy
}
