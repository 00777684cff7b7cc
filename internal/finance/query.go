package finance

import (
	"fmt"
	"strings"

	"finance-tracker/internal/models"
)

// QueryContext is a read-only snapshot of a user's aggregates used to answer
// finance questions. AnswerQuery performs no storage access of its own.
type QueryContext struct {
	RecentTransactions []models.Transaction
	Goals              []models.Goal
	Budgets            []models.Budget
	Debts              []models.Debt
	TotalIncome        float64
	TotalExpenses      float64
}

var (
	spendingWords = []string{"spend", "expense", "cost", "money"}
	savingsWords  = []string{"save", "savings", "goal"}
	budgetWords   = []string{"budget", "limit"}
	debtWords     = []string{"debt", "loan", "credit"}
)

func containsAny(query string, words []string) bool {
	for _, word := range words {
		if strings.Contains(query, word) {
			return true
		}
	}
	return false
}

// AnswerQuery routes a free-text question to a canned response computed from
// the context. Keyword sets are checked in priority order: spending, savings,
// budget, debt. Unmatched queries get a generic fallback.
func AnswerQuery(query string, ctx QueryContext) string {
	query = strings.ToLower(query)

	switch {
	case containsAny(query, spendingWords):
		return spendingAnswer(ctx)
	case containsAny(query, savingsWords):
		return savingsAnswer(ctx)
	case containsAny(query, budgetWords):
		return budgetAnswer(ctx)
	case containsAny(query, debtWords):
		return debtAnswer(ctx)
	}

	return "I can help you analyze your spending, savings goals, budgets, and debts. What would you like to know about?"
}

func spendingAnswer(ctx QueryContext) string {
	if ctx.TotalExpenses > ctx.TotalIncome {
		return fmt.Sprintf("Your expenses ($%.2f) are higher than your income ($%.2f). Consider reviewing your spending habits.",
			ctx.TotalExpenses, ctx.TotalIncome)
	}
	return fmt.Sprintf("Your spending looks healthy! You've spent $%.2f out of $%.2f income.",
		ctx.TotalExpenses, ctx.TotalIncome)
}

func savingsAnswer(ctx QueryContext) string {
	if len(ctx.Goals) == 0 {
		return "You haven't set any savings goals yet. Consider setting some to help track your progress!"
	}

	lines := make([]string, 0, len(ctx.Goals))
	for _, goal := range ctx.Goals {
		progress := 0.0
		if goal.TargetAmount > 0 {
			progress = goal.CurrentAmount / goal.TargetAmount * 100
		}
		lines = append(lines, fmt.Sprintf("%s: %.1f%% complete", goal.Name, progress))
	}
	return "Your savings goals:\n" + strings.Join(lines, "\n")
}

func budgetAnswer(ctx QueryContext) string {
	if len(ctx.Budgets) == 0 {
		return "You haven't set any budgets yet. Setting budgets can help you manage your spending better!"
	}

	lines := make([]string, 0, len(ctx.Budgets))
	for _, budget := range ctx.Budgets {
		usage := 0.0
		if budget.Limit > 0 {
			usage = budget.Spent / budget.Limit * 100
		}
		status := "under"
		if usage > 100 {
			status = "over"
		}
		lines = append(lines, fmt.Sprintf("%s: %.1f%% of budget (%s)", budget.Category, usage, status))
	}
	return "Your budget status:\n" + strings.Join(lines, "\n")
}

func debtAnswer(ctx QueryContext) string {
	if len(ctx.Debts) == 0 {
		return "You don't have any active debts recorded. That's great!"
	}

	var total float64
	for _, debt := range ctx.Debts {
		total += debt.Balance
	}
	return fmt.Sprintf("You have %d active debts totaling $%.2f. Consider focusing on paying off high-interest debts first.",
		len(ctx.Debts), total)
}
