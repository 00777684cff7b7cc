package finance

import (
	"testing"

	"finance-tracker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthlyTrend(t *testing.T) {
	now := day(2024, 6, 15)
	transactions := []models.Transaction{
		tx(1000, "Salary", models.KindIncome, day(2024, 6, 1)),
		tx(400, "Rent", models.KindExpense, day(2024, 6, 5)),
		tx(800, "Salary", models.KindIncome, day(2024, 5, 1)),
		tx(800, "Rent", models.KindExpense, day(2024, 5, 5)),
		// Far outside the window
		tx(999, "Rent", models.KindExpense, day(2023, 1, 5)),
	}

	trend := MonthlyTrend(transactions, now, 6)
	require.Len(t, trend, 6)

	// Oldest first
	assert.Equal(t, "2024-01", trend[0].Month)
	assert.Equal(t, "2024-06", trend[5].Month)

	may := trend[4]
	assert.Equal(t, 800.0, may.Income)
	assert.Equal(t, 800.0, may.Expenses)
	assert.Equal(t, 0.0, may.SavingsRate)

	june := trend[5]
	assert.Equal(t, 1000.0, june.Income)
	assert.Equal(t, 400.0, june.Expenses)
	assert.InDelta(t, 60.0, june.SavingsRate, 1e-9)

	// Months with no income have a zero savings rate, not a division error
	january := trend[0]
	assert.Equal(t, 0.0, january.Income)
	assert.Equal(t, 0.0, january.SavingsRate)
}

func TestMonthlyTrendCalendarBoundaries(t *testing.T) {
	// March 31 exists; a 30-day window approximation would drift here.
	now := day(2024, 3, 31)
	transactions := []models.Transaction{
		tx(100, "Dining", models.KindExpense, day(2024, 3, 1)),
		tx(200, "Dining", models.KindExpense, day(2024, 2, 29)),
	}

	trend := MonthlyTrend(transactions, now, 2)
	require.Len(t, trend, 2)
	assert.Equal(t, "2024-02", trend[0].Month)
	assert.Equal(t, 200.0, trend[0].Expenses)
	assert.Equal(t, "2024-03", trend[1].Month)
	assert.Equal(t, 100.0, trend[1].Expenses)
}

func TestCategoryTrend(t *testing.T) {
	now := day(2024, 6, 15)
	transactions := []models.Transaction{
		tx(100, "Dining", models.KindExpense, day(2024, 6, 2)),
		tx(50, "Dining", models.KindExpense, day(2024, 6, 20)),
		tx(75, "Dining", models.KindExpense, day(2024, 5, 10)),
		tx(500, "Rent", models.KindExpense, day(2024, 6, 1)),
		tx(200, "Dining", models.KindIncome, day(2024, 6, 3)), // wrong kind, ignored
	}

	trend := CategoryTrend(transactions, "Dining", now, 3)
	require.Len(t, trend, 3)
	assert.Equal(t, "2024-04", trend[0].Month)
	assert.Equal(t, 0.0, trend[0].Amount)
	assert.Equal(t, 75.0, trend[1].Amount)
	assert.Equal(t, 150.0, trend[2].Amount)
}

func TestSpendingPatterns(t *testing.T) {
	totals := []CategoryShare{
		{Category: "Rent", Amount: 900},
		{Category: "Dining", Amount: 100},
		{Category: "Transport", Amount: 100},
	}

	// mean = 366.67; only Rent exceeds 1.5x mean
	patterns := SpendingPatterns(totals)
	require.Len(t, patterns, 1)
	assert.Equal(t, "Rent", patterns[0].Category)
	assert.Equal(t, 900.0, patterns[0].Amount)
	assert.Contains(t, patterns[0].Message, "Rent")
}

func TestSpendingPatternsEmpty(t *testing.T) {
	assert.Empty(t, SpendingPatterns(nil))
}

func TestSpendingPatternsUniform(t *testing.T) {
	totals := []CategoryShare{
		{Category: "A", Amount: 100},
		{Category: "B", Amount: 100},
	}
	assert.Empty(t, SpendingPatterns(totals), "uniform spending flags nothing")
}

func TestForecastCashflowNaive(t *testing.T) {
	// Fewer than 2 months of trend: no adjustment
	forecast := ForecastCashflow(1000, 600, []MonthStat{{Month: "2024-06", Income: 1000, Expenses: 600}})

	assert.Equal(t, 1000.0, forecast.NextMonth.ProjectedIncome)
	assert.Equal(t, 600.0, forecast.NextMonth.ProjectedExpenses)
	assert.Equal(t, 400.0, forecast.NextMonth.ProjectedBalance)

	assert.Equal(t, 3000.0, forecast.ThreeMonths.ProjectedIncome)
	assert.Equal(t, 6000.0, forecast.SixMonths.ProjectedIncome)
	assert.Equal(t, 2400.0, forecast.SixMonths.ProjectedBalance)
}

func TestForecastCashflowTrendAdjusted(t *testing.T) {
	trend := []MonthStat{
		{Month: "2024-05", Income: 900, Expenses: 500},
		{Month: "2024-06", Income: 1000, Expenses: 600},
	}

	// income delta +100/month, expense delta +100/month
	forecast := ForecastCashflow(1000, 600, trend)

	assert.Equal(t, 1100.0, forecast.NextMonth.ProjectedIncome)
	assert.Equal(t, 700.0, forecast.NextMonth.ProjectedExpenses)
	assert.Equal(t, 400.0, forecast.NextMonth.ProjectedBalance)

	assert.Equal(t, 3300.0, forecast.ThreeMonths.ProjectedIncome)
	assert.Equal(t, 2100.0, forecast.ThreeMonths.ProjectedExpenses)

	assert.Equal(t, 6600.0, forecast.SixMonths.ProjectedIncome)
	assert.Equal(t, 4200.0, forecast.SixMonths.ProjectedExpenses)
	assert.Equal(t, 2400.0, forecast.SixMonths.ProjectedBalance)
}
