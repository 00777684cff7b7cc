package finance

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"finance-tracker/internal/models"
)

// Warning severities and advice priorities.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Warning describes a budget or spending-pattern alert.
type Warning struct {
	Type     string `json:"type"`
	Category string `json:"category"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// Advice is a savings recommendation.
type Advice struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Priority string `json:"priority"`
}

// Tip is a category-specific budgeting suggestion.
type Tip struct {
	Category   string `json:"category"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion"`
}

// Status classifies the overall budget position for display.
type Status struct {
	Type    string `json:"type"`
	Icon    string `json:"icon"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Insight is a single dashboard insight card.
type Insight struct {
	Icon    string `json:"icon"`
	Message string `json:"message"`
}

// BudgetStatus classifies total expenses against total income. Pure threshold
// comparison, no hysteresis.
func BudgetStatus(totalIncome, totalExpenses float64) Status {
	if totalExpenses > totalIncome {
		return Status{
			Type:    "warning",
			Icon:    "exclamation-triangle",
			Title:   "Budget Alert",
			Message: "You are currently over budget!",
		}
	}
	return Status{
		Type:    "success",
		Icon:    "check-circle",
		Title:   "Budget Status",
		Message: "You are within budget!",
	}
}

// BudgetWarnings compares each budget's recomputed spend against its limit
// and checks current-month category spending against the average of prior
// months. Spent amounts are recomputed from the transactions, never read from
// the budget's cached field. now anchors the current month.
func BudgetWarnings(budgets []models.Budget, transactions []models.Transaction, now time.Time) []Warning {
	currentMonth := MonthStart(now)
	monthly := FilterMonth(transactions, currentMonth.Year(), currentMonth.Month())

	var warnings []Warning

	for _, budget := range budgets {
		var spent float64
		for _, tx := range monthly {
			if tx.Kind == models.KindExpense && tx.Category == budget.Category {
				spent += tx.Amount
			}
		}

		switch {
		case spent > budget.Limit:
			warnings = append(warnings, Warning{
				Type:     "budget_exceeded",
				Category: budget.Category,
				Message:  fmt.Sprintf("You have exceeded your %s budget by $%.2f", budget.Category, spent-budget.Limit),
				Severity: SeverityHigh,
			})
		case spent > budget.Limit*0.8:
			warnings = append(warnings, Warning{
				Type:     "budget_warning",
				Category: budget.Category,
				Message:  fmt.Sprintf("You are close to exceeding your %s budget ($%.2f remaining)", budget.Category, budget.Limit-spent),
				Severity: SeverityMedium,
			})
		}
	}

	// Spending-increase check: current month vs average of prior months.
	currentTotals := make(map[string]float64)
	var order []string
	for _, tx := range monthly {
		if tx.Kind != models.KindExpense {
			continue
		}
		if _, seen := currentTotals[tx.Category]; !seen {
			order = append(order, tx.Category)
		}
		currentTotals[tx.Category] += tx.Amount
	}

	for _, category := range order {
		avg := priorMonthlyAverage(transactions, category, currentMonth)
		if currentTotals[category] > avg*1.5 {
			warnings = append(warnings, Warning{
				Type:     "spending_increase",
				Category: category,
				Message:  fmt.Sprintf("Unusual increase in %s spending this month", category),
				Severity: SeverityMedium,
			})
		}
	}

	return warnings
}

// priorMonthlyAverage computes the mean per-month expense total for a
// category over calendar months strictly before the given month. With no
// prior months the average is zero, so any positive current spend flags.
func priorMonthlyAverage(transactions []models.Transaction, category string, before time.Time) float64 {
	monthTotals := make(map[string]float64)
	for _, tx := range transactions {
		if tx.Kind != models.KindExpense || tx.Category != category {
			continue
		}
		if !tx.Date.Before(before) {
			continue
		}
		monthTotals[tx.Date.Format("2006-01")] += tx.Amount
	}

	if len(monthTotals) == 0 {
		return 0
	}

	var sum float64
	for _, total := range monthTotals {
		sum += total
	}
	return sum / float64(len(monthTotals))
}

// SavingsAdvice generates advice from the monthly savings rate and from each
// goal's required monthly contribution. Goals whose target date has passed
// are skipped. Months remaining is real division by 30 days, not rounded.
func SavingsAdvice(goals []models.Goal, monthlyIncome, monthlyExpenses float64, now time.Time) []Advice {
	var advice []Advice

	rate := 0.0
	if monthlyIncome > 0 {
		rate = (monthlyIncome - monthlyExpenses) / monthlyIncome * 100
	}

	if rate < 20 {
		advice = append(advice, Advice{
			Type:     "savings_rate",
			Message:  "Your savings rate is below the recommended 20%. Consider reducing non-essential expenses.",
			Priority: PriorityHigh,
		})
	} else if rate > 50 {
		advice = append(advice, Advice{
			Type:     "savings_rate",
			Message:  "Great job! Your high savings rate puts you on track for financial independence.",
			Priority: PriorityLow,
		})
	}

	for _, goal := range goals {
		monthsRemaining := goal.TargetDate.Sub(now).Hours() / 24 / 30
		if monthsRemaining <= 0 {
			continue
		}

		requiredMonthly := (goal.TargetAmount - goal.CurrentAmount) / monthsRemaining
		if requiredMonthly > monthlyIncome-monthlyExpenses {
			advice = append(advice, Advice{
				Type:     "goal_progress",
				Message:  fmt.Sprintf("To reach your %s goal, you need to save $%.2f monthly", goal.Name, requiredMonthly),
				Priority: PriorityMedium,
			})
		}
	}

	return advice
}

// tipTemplate holds the message and suggestion for a tip category. Message
// takes the lowercased category name as its single format argument.
type tipTemplate struct {
	Message    string
	Suggestion string
}

// categoryTips maps spending categories to tip templates. Categories outside
// this table get no category-specific tip.
var categoryTips = map[string]tipTemplate{
	"Dining":         {"Consider reducing %s expenses by setting a weekly limit", "Try meal prepping or finding free entertainment options"},
	"Entertainment":  {"Consider reducing %s expenses by setting a weekly limit", "Try meal prepping or finding free entertainment options"},
	"Shopping":       {"Consider reducing %s expenses by setting a weekly limit", "Try meal prepping or finding free entertainment options"},
	"Transportation": {"Look for ways to optimize your %s expenses", "Compare service providers or consider carpooling"},
	"Bills":          {"Look for ways to optimize your %s expenses", "Compare service providers or consider carpooling"},
}

// generalTip always closes the tip list, so output is never empty.
var generalTip = Tip{
	Category:   "General",
	Message:    "Review your subscriptions and recurring payments",
	Suggestion: "Cancel unused subscriptions to save money",
}

// BudgetTips ranks expense categories over the 90 days before now, runs the
// top three through the tip table, and appends one general tip.
func BudgetTips(transactions []models.Transaction, now time.Time) []Tip {
	cutoff := MonthStart(now).AddDate(0, 0, -90)

	totals := make(map[string]float64)
	var order []string
	for _, tx := range transactions {
		if tx.Kind != models.KindExpense || tx.Date.Before(cutoff) {
			continue
		}
		if _, seen := totals[tx.Category]; !seen {
			order = append(order, tx.Category)
		}
		totals[tx.Category] += tx.Amount
	}

	sort.SliceStable(order, func(i, j int) bool { return totals[order[i]] > totals[order[j]] })
	if len(order) > 3 {
		order = order[:3]
	}

	var tips []Tip
	for _, category := range order {
		template, ok := categoryTips[category]
		if !ok {
			continue
		}
		tips = append(tips, Tip{
			Category:   category,
			Message:    fmt.Sprintf(template.Message, strings.ToLower(category)),
			Suggestion: template.Suggestion,
		})
	}

	return append(tips, generalTip)
}

// Insights builds the dashboard insight cards: a top-category callout when
// expense categories exist, projected annual savings, and the 50/30/20 rule.
func Insights(breakdown []CategoryShare, balance float64) []Insight {
	var insights []Insight

	if len(breakdown) > 0 {
		insights = append(insights, Insight{
			Icon:    "chart-line",
			Message: fmt.Sprintf("Your spending in %s category is higher than usual. Consider setting a budget.", breakdown[0].Category),
		})
	}

	insights = append(insights,
		Insight{
			Icon:    "piggy-bank",
			Message: fmt.Sprintf("Based on your current savings rate, you could save $%.2f annually.", balance*12),
		},
		Insight{
			Icon:    "lightbulb",
			Message: "Try the 50/30/20 rule: 50% needs, 30% wants, 20% savings.",
		},
	)

	return insights
}
