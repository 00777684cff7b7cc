package finance

import (
	"fmt"
	"time"

	"finance-tracker/internal/models"
)

// MonthStat holds income, expense and savings-rate figures for one month.
type MonthStat struct {
	Month       string  `json:"month"`
	Income      float64 `json:"income"`
	Expenses    float64 `json:"expenses"`
	SavingsRate float64 `json:"savings_rate"`
}

// MonthAmount is a single category's total for one month.
type MonthAmount struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

// Pattern flags a category with unusually high spending.
type Pattern struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Message  string  `json:"message"`
}

// Projection holds projected income, expenses and balance for one horizon.
type Projection struct {
	ProjectedIncome   float64 `json:"projected_income"`
	ProjectedExpenses float64 `json:"projected_expenses"`
	ProjectedBalance  float64 `json:"projected_balance"`
}

// Forecast holds cashflow projections for the one, three and six month
// horizons.
type Forecast struct {
	NextMonth   Projection `json:"next_month"`
	ThreeMonths Projection `json:"three_months"`
	SixMonths   Projection `json:"six_months"`
}

// MonthlyTrend computes income, expenses and savings rate for each of the
// last monthsBack calendar months including the current one, oldest first.
// Month boundaries are true calendar boundaries, not 30-day blocks.
func MonthlyTrend(transactions []models.Transaction, now time.Time, monthsBack int) []MonthStat {
	stats := make([]MonthStat, 0, monthsBack)
	current := MonthStart(now)

	for i := monthsBack - 1; i >= 0; i-- {
		start := current.AddDate(0, -i, 0)
		totals := ComputeTotals(FilterMonth(transactions, start.Year(), start.Month()))

		rate := 0.0
		if totals.Income > 0 {
			rate = (totals.Income - totals.Expenses) / totals.Income * 100
		}

		stats = append(stats, MonthStat{
			Month:       start.Format("2006-01"),
			Income:      totals.Income,
			Expenses:    totals.Expenses,
			SavingsRate: rate,
		})
	}

	return stats
}

// CategoryTrend computes per-month expense totals for a single category over
// the last monthsBack calendar months including the current one, oldest first.
func CategoryTrend(transactions []models.Transaction, category string, now time.Time, monthsBack int) []MonthAmount {
	trend := make([]MonthAmount, 0, monthsBack)
	current := MonthStart(now)

	for i := monthsBack - 1; i >= 0; i-- {
		start := current.AddDate(0, -i, 0)

		var amount float64
		for _, tx := range FilterMonth(transactions, start.Year(), start.Month()) {
			if tx.Kind == models.KindExpense && tx.Category == category {
				amount += tx.Amount
			}
		}

		trend = append(trend, MonthAmount{Month: start.Format("2006-01"), Amount: amount})
	}

	return trend
}

// SpendingPatterns flags categories whose total exceeds 1.5 times the mean of
// all category totals. An empty input yields an empty result.
func SpendingPatterns(categoryTotals []CategoryShare) []Pattern {
	if len(categoryTotals) == 0 {
		return nil
	}

	var sum float64
	for _, ct := range categoryTotals {
		sum += ct.Amount
	}
	mean := sum / float64(len(categoryTotals))

	var patterns []Pattern
	for _, ct := range categoryTotals {
		if ct.Amount > mean*1.5 {
			patterns = append(patterns, Pattern{
				Category: ct.Category,
				Amount:   ct.Amount,
				Message:  fmt.Sprintf("High spending in %s category", ct.Category),
			})
		}
	}
	return patterns
}

// ForecastCashflow projects income, expenses and balance over one, three and
// six month horizons. The naive projection (current totals times the horizon)
// is adjusted linearly by the change between the two most recent months of
// trend data; with fewer than two months of trend the adjustment is skipped.
// The trend must be ordered oldest first, as MonthlyTrend returns it.
func ForecastCashflow(totalIncome, totalExpenses float64, trend []MonthStat) Forecast {
	var incomeDelta, expenseDelta float64
	if len(trend) >= 2 {
		last := trend[len(trend)-1]
		prev := trend[len(trend)-2]
		incomeDelta = last.Income - prev.Income
		expenseDelta = last.Expenses - prev.Expenses
	}

	project := func(months float64) Projection {
		p := Projection{
			ProjectedIncome:   totalIncome*months + incomeDelta*months,
			ProjectedExpenses: totalExpenses*months + expenseDelta*months,
		}
		p.ProjectedBalance = p.ProjectedIncome - p.ProjectedExpenses
		return p
	}

	return Forecast{
		NextMonth:   project(1),
		ThreeMonths: project(3),
		SixMonths:   project(6),
	}
}
