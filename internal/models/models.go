package models

import "time"

// Transaction kinds. Aggregation logic branches on these values only.
const (
	KindIncome  = "income"
	KindExpense = "expense"
)

// Debt types. Recurring types advance their next payment date on payment.
const (
	DebtCreditCard = "credit_card"
	DebtLoan       = "loan"
	DebtMortgage   = "mortgage"
	DebtOther      = "other"
)

// User represents a user account.
type User struct {
	ID                 int64     `json:"id"`
	Username           string    `json:"username"`
	Email              string    `json:"email"`
	PasswordHash       string    `json:"-"`
	EmailNotifications bool      `json:"email_notifications"`
	BudgetAlerts       bool      `json:"budget_alerts"`
	GoalUpdates        bool      `json:"goal_updates"`
	CreatedAt          time.Time `json:"created_at"`
}

// Transaction represents a single income or expense record.
type Transaction struct {
	ID       int64     `json:"id"`
	Amount   float64   `json:"amount"`
	Category string    `json:"category"`
	Kind     string    `json:"type"`
	Date     time.Time `json:"date"`
	UserID   int64     `json:"user_id"`
}

// Goal represents a savings target with a progress amount and target date.
type Goal struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	TargetAmount  float64   `json:"target_amount"`
	CurrentAmount float64   `json:"current_amount"`
	TargetDate    time.Time `json:"target_date"`
	UserID        int64     `json:"user_id"`
}

// Budget represents a per-category monthly spending limit. Spent is a cached
// value; readers recompute it from expense transactions rather than trust it.
type Budget struct {
	ID       int64     `json:"id"`
	Category string    `json:"category"`
	Limit    float64   `json:"limit"`
	Spent    float64   `json:"spent"`
	Month    time.Time `json:"month"`
	UserID   int64     `json:"user_id"`
}

// Debt represents an outstanding debt and its payment schedule.
type Debt struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Type            string    `json:"type"`
	Balance         float64   `json:"balance"`
	OriginalAmount  float64   `json:"original_amount"`
	InterestRate    float64   `json:"interest_rate"`
	MinimumPayment  float64   `json:"minimum_payment"`
	NextPaymentDate time.Time `json:"next_payment_date"`
	PaidAmount      float64   `json:"paid_amount"`
	UserID          int64     `json:"user_id"`
}

// Session represents a user session.
type Session struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}
