package storage

import (
	"database/sql"
	"errors"
	"time"

	"finance-tracker/internal/models"

	// Import sqlite driver
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a record does not exist or belongs to a
// different user. Ownership violations are indistinguishable from missing
// records on purpose.
var ErrNotFound = errors.New("record not found")

// DB wraps a sql.DB connection.
type DB struct {
	conn *sql.DB
}

// NewDB opens a database connection and runs migrations.
func NewDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(); err != nil {
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		return nil, err
	}

	return db, nil
}

func (db *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT UNIQUE NOT NULL,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			email_notifications INTEGER NOT NULL DEFAULT 1,
			budget_alerts INTEGER NOT NULL DEFAULT 1,
			goal_updates INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			expires_at DATETIME NOT NULL,
			last_activity DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			amount REAL NOT NULL,
			category TEXT NOT NULL,
			kind TEXT NOT NULL,
			date DATETIME NOT NULL,
			user_id INTEGER NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_user_date
			ON transactions(user_id, date)`,
		`CREATE TABLE IF NOT EXISTS goals (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			target_amount REAL NOT NULL,
			current_amount REAL NOT NULL DEFAULT 0,
			target_date DATETIME NOT NULL,
			user_id INTEGER NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS budgets (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			category TEXT NOT NULL,
			spend_limit REAL NOT NULL,
			spent REAL NOT NULL DEFAULT 0,
			month DATETIME NOT NULL,
			user_id INTEGER NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_budgets_user_category_month
			ON budgets(user_id, category, month)`,
		`CREATE TABLE IF NOT EXISTS debts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			balance REAL NOT NULL,
			original_amount REAL NOT NULL,
			interest_rate REAL NOT NULL,
			minimum_payment REAL NOT NULL,
			next_payment_date DATETIME NOT NULL,
			paid_amount REAL NOT NULL DEFAULT 0,
			user_id INTEGER NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
	}

	for _, m := range migrations {
		if _, err := db.conn.Exec(m); err != nil {
			return err
		}
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// CreateTransaction inserts a new transaction and returns it with its ID set.
func (db *DB) CreateTransaction(t *models.Transaction) (*models.Transaction, error) {
	if t.Date.IsZero() {
		t.Date = time.Now()
	}
	result, err := db.conn.Exec(
		"INSERT INTO transactions (amount, category, kind, date, user_id) VALUES (?, ?, ?, ?, ?)",
		t.Amount, t.Category, t.Kind, t.Date, t.UserID,
	)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return db.GetTransaction(id, t.UserID)
}

// GetTransaction retrieves a single transaction owned by the given user.
func (db *DB) GetTransaction(id, userID int64) (*models.Transaction, error) {
	row := db.conn.QueryRow(
		"SELECT id, amount, category, kind, date, user_id FROM transactions WHERE id = ? AND user_id = ?",
		id, userID,
	)

	var t models.Transaction
	if err := row.Scan(&t.ID, &t.Amount, &t.Category, &t.Kind, &t.Date, &t.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// ListTransactions retrieves all transactions for a user, newest first.
func (db *DB) ListTransactions(userID int64) ([]models.Transaction, error) {
	rows, err := db.conn.Query(
		"SELECT id, amount, category, kind, date, user_id FROM transactions WHERE user_id = ? ORDER BY date DESC",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// RecentTransactions retrieves the most recent transactions for a user,
// newest first, up to limit.
func (db *DB) RecentTransactions(userID int64, limit int) ([]models.Transaction, error) {
	rows, err := db.conn.Query(
		"SELECT id, amount, category, kind, date, user_id FROM transactions WHERE user_id = ? ORDER BY date DESC LIMIT ?",
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func scanTransactions(rows *sql.Rows) ([]models.Transaction, error) {
	var transactions []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.Amount, &t.Category, &t.Kind, &t.Date, &t.UserID); err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// CreateGoal inserts a new savings goal and returns it with its ID set.
func (db *DB) CreateGoal(g *models.Goal) (*models.Goal, error) {
	result, err := db.conn.Exec(
		"INSERT INTO goals (name, target_amount, current_amount, target_date, user_id) VALUES (?, ?, ?, ?, ?)",
		g.Name, g.TargetAmount, g.CurrentAmount, g.TargetDate, g.UserID,
	)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return db.GetGoal(id, g.UserID)
}

// GetGoal retrieves a single goal owned by the given user.
func (db *DB) GetGoal(id, userID int64) (*models.Goal, error) {
	row := db.conn.QueryRow(
		"SELECT id, name, target_amount, current_amount, target_date, user_id FROM goals WHERE id = ? AND user_id = ?",
		id, userID,
	)

	var g models.Goal
	if err := row.Scan(&g.ID, &g.Name, &g.TargetAmount, &g.CurrentAmount, &g.TargetDate, &g.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

// ListGoals retrieves all goals for a user, ordered by target date.
func (db *DB) ListGoals(userID int64) ([]models.Goal, error) {
	rows, err := db.conn.Query(
		"SELECT id, name, target_amount, current_amount, target_date, user_id FROM goals WHERE user_id = ? ORDER BY target_date",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []models.Goal
	for rows.Next() {
		var g models.Goal
		if err := rows.Scan(&g.ID, &g.Name, &g.TargetAmount, &g.CurrentAmount, &g.TargetDate, &g.UserID); err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// SetGoalProgress sets the current amount of a goal owned by the given user.
func (db *DB) SetGoalProgress(id, userID int64, currentAmount float64) error {
	return db.ownedExec(
		"UPDATE goals SET current_amount = ? WHERE id = ? AND user_id = ?",
		currentAmount, id, userID,
	)
}

// AddToGoal adds a contribution to a goal owned by the given user.
func (db *DB) AddToGoal(id, userID int64, amount float64) error {
	return db.ownedExec(
		"UPDATE goals SET current_amount = current_amount + ? WHERE id = ? AND user_id = ?",
		amount, id, userID,
	)
}

// DeleteGoal removes a goal owned by the given user.
func (db *DB) DeleteGoal(id, userID int64) error {
	return db.ownedExec("DELETE FROM goals WHERE id = ? AND user_id = ?", id, userID)
}

// CreateBudget inserts a new budget category and returns it with its ID set.
// The (user, category, month) combination is unique; duplicates fail.
func (db *DB) CreateBudget(b *models.Budget) (*models.Budget, error) {
	result, err := db.conn.Exec(
		"INSERT INTO budgets (category, spend_limit, spent, month, user_id) VALUES (?, ?, ?, ?, ?)",
		b.Category, b.Limit, b.Spent, b.Month, b.UserID,
	)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return db.GetBudget(id, b.UserID)
}

// GetBudget retrieves a single budget owned by the given user.
func (db *DB) GetBudget(id, userID int64) (*models.Budget, error) {
	row := db.conn.QueryRow(
		"SELECT id, category, spend_limit, spent, month, user_id FROM budgets WHERE id = ? AND user_id = ?",
		id, userID,
	)

	var b models.Budget
	if err := row.Scan(&b.ID, &b.Category, &b.Limit, &b.Spent, &b.Month, &b.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// ListBudgets retrieves all budgets for a user.
func (db *DB) ListBudgets(userID int64) ([]models.Budget, error) {
	return db.queryBudgets(
		"SELECT id, category, spend_limit, spent, month, user_id FROM budgets WHERE user_id = ? ORDER BY category",
		userID,
	)
}

// ListBudgetsByMonth retrieves a user's budgets for a specific month.
// The month parameter must be a first-of-month timestamp.
func (db *DB) ListBudgetsByMonth(userID int64, month time.Time) ([]models.Budget, error) {
	return db.queryBudgets(
		"SELECT id, category, spend_limit, spent, month, user_id FROM budgets WHERE user_id = ? AND month = ? ORDER BY category",
		userID, month,
	)
}

func (db *DB) queryBudgets(query string, args ...any) ([]models.Budget, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var budgets []models.Budget
	for rows.Next() {
		var b models.Budget
		if err := rows.Scan(&b.ID, &b.Category, &b.Limit, &b.Spent, &b.Month, &b.UserID); err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// SetBudgetLimit updates the spending limit of a budget owned by the given user.
func (db *DB) SetBudgetLimit(id, userID int64, limit float64) error {
	return db.ownedExec(
		"UPDATE budgets SET spend_limit = ? WHERE id = ? AND user_id = ?",
		limit, id, userID,
	)
}

// AddToBudgetSpent bumps the cached spent amount for a user's budget in the
// given month and category. Missing budgets are ignored; readers recompute
// the cache from transactions anyway.
func (db *DB) AddToBudgetSpent(userID int64, category string, month time.Time, amount float64) error {
	_, err := db.conn.Exec(
		"UPDATE budgets SET spent = spent + ? WHERE user_id = ? AND category = ? AND month = ?",
		amount, userID, category, month,
	)
	return err
}

// DeleteBudget removes a budget owned by the given user.
func (db *DB) DeleteBudget(id, userID int64) error {
	return db.ownedExec("DELETE FROM budgets WHERE id = ? AND user_id = ?", id, userID)
}

// CreateDebt inserts a new debt and returns it with its ID set.
func (db *DB) CreateDebt(d *models.Debt) (*models.Debt, error) {
	result, err := db.conn.Exec(
		`INSERT INTO debts (name, type, balance, original_amount, interest_rate, minimum_payment, next_payment_date, paid_amount, user_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.Name, d.Type, d.Balance, d.OriginalAmount, d.InterestRate, d.MinimumPayment, d.NextPaymentDate, d.PaidAmount, d.UserID,
	)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return db.GetDebt(id, d.UserID)
}

// GetDebt retrieves a single debt owned by the given user.
func (db *DB) GetDebt(id, userID int64) (*models.Debt, error) {
	row := db.conn.QueryRow(
		`SELECT id, name, type, balance, original_amount, interest_rate, minimum_payment, next_payment_date, paid_amount, user_id
		 FROM debts WHERE id = ? AND user_id = ?`,
		id, userID,
	)

	var d models.Debt
	if err := row.Scan(&d.ID, &d.Name, &d.Type, &d.Balance, &d.OriginalAmount, &d.InterestRate,
		&d.MinimumPayment, &d.NextPaymentDate, &d.PaidAmount, &d.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// ListDebts retrieves all debts for a user, ordered by next payment date.
func (db *DB) ListDebts(userID int64) ([]models.Debt, error) {
	rows, err := db.conn.Query(
		`SELECT id, name, type, balance, original_amount, interest_rate, minimum_payment, next_payment_date, paid_amount, user_id
		 FROM debts WHERE user_id = ? ORDER BY next_payment_date`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var debts []models.Debt
	for rows.Next() {
		var d models.Debt
		if err := rows.Scan(&d.ID, &d.Name, &d.Type, &d.Balance, &d.OriginalAmount, &d.InterestRate,
			&d.MinimumPayment, &d.NextPaymentDate, &d.PaidAmount, &d.UserID); err != nil {
			return nil, err
		}
		debts = append(debts, d)
	}
	return debts, rows.Err()
}

// ApplyDebtPayment records a payment against a debt owned by the given user:
// the balance decreases, the paid amount increases, and recurring debt types
// advance their next payment date by 30 days.
func (db *DB) ApplyDebtPayment(id, userID int64, payment float64) error {
	debt, err := db.GetDebt(id, userID)
	if err != nil {
		return err
	}

	nextPayment := debt.NextPaymentDate
	switch debt.Type {
	case models.DebtCreditCard, models.DebtLoan, models.DebtMortgage:
		nextPayment = nextPayment.AddDate(0, 0, 30)
	}

	return db.ownedExec(
		"UPDATE debts SET balance = balance - ?, paid_amount = paid_amount + ?, next_payment_date = ? WHERE id = ? AND user_id = ?",
		payment, payment, nextPayment, id, userID,
	)
}

// DeleteDebt removes a debt owned by the given user.
func (db *DB) DeleteDebt(id, userID int64) error {
	return db.ownedExec("DELETE FROM debts WHERE id = ? AND user_id = ?", id, userID)
}

// ownedExec runs a mutation that must match exactly one owned row.
func (db *DB) ownedExec(query string, args ...any) error {
	result, err := db.conn.Exec(query, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateUser creates a new user with the given username, email and password hash.
func (db *DB) CreateUser(username, email, passwordHash string) (*models.User, error) {
	result, err := db.conn.Exec(
		"INSERT INTO users (username, email, password_hash) VALUES (?, ?, ?)",
		username, email, passwordHash,
	)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return db.GetUserByID(id)
}

const userColumns = "id, username, email, password_hash, email_notifications, budget_alerts, goal_updates, created_at"

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.EmailNotifications, &u.BudgetAlerts, &u.GoalUpdates, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetUserByID retrieves a user by ID.
func (db *DB) GetUserByID(id int64) (*models.User, error) {
	return scanUser(db.conn.QueryRow(
		"SELECT "+userColumns+" FROM users WHERE id = ?", id,
	))
}

// GetUserByUsername retrieves a user by username.
func (db *DB) GetUserByUsername(username string) (*models.User, error) {
	return scanUser(db.conn.QueryRow(
		"SELECT "+userColumns+" FROM users WHERE username = ?", username,
	))
}

// GetUserByEmail retrieves a user by email.
func (db *DB) GetUserByEmail(email string) (*models.User, error) {
	return scanUser(db.conn.QueryRow(
		"SELECT "+userColumns+" FROM users WHERE email = ?", email,
	))
}

// UpdateUserProfile updates a user's username and email.
func (db *DB) UpdateUserProfile(id int64, username, email string) error {
	return db.ownedExec(
		"UPDATE users SET username = ?, email = ? WHERE id = ?",
		username, email, id,
	)
}

// UpdateUserPassword replaces a user's password hash.
func (db *DB) UpdateUserPassword(id int64, passwordHash string) error {
	return db.ownedExec(
		"UPDATE users SET password_hash = ? WHERE id = ?",
		passwordHash, id,
	)
}

// UpdateUserPreferences updates a user's notification preference flags.
func (db *DB) UpdateUserPreferences(id int64, emailNotifications, budgetAlerts, goalUpdates bool) error {
	return db.ownedExec(
		"UPDATE users SET email_notifications = ?, budget_alerts = ?, goal_updates = ? WHERE id = ?",
		emailNotifications, budgetAlerts, goalUpdates, id,
	)
}

// UserCount returns the number of users in the database.
func (db *DB) UserCount() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}

// CreateSession creates a new session for a user.
func (db *DB) CreateSession(token string, userID int64, expiresAt time.Time) error {
	now := time.Now()
	_, err := db.conn.Exec(
		"INSERT INTO sessions (token, user_id, expires_at, last_activity) VALUES (?, ?, ?, ?)",
		token, userID, expiresAt, now,
	)
	return err
}

// SessionInfo holds session validation data.
type SessionInfo struct {
	User         *models.User
	LastActivity time.Time
	ExpiresAt    time.Time
}

// ValidateSession checks if a session token is valid and returns the associated user.
func (db *DB) ValidateSession(token string) (*models.User, error) {
	info, err := db.ValidateSessionWithInfo(token)
	if err != nil {
		return nil, err
	}
	return info.User, nil
}

// ValidateSessionWithInfo checks if a session token is valid and returns session details.
func (db *DB) ValidateSessionWithInfo(token string) (*SessionInfo, error) {
	row := db.conn.QueryRow(`
		SELECT u.id, u.username, u.email, u.password_hash, u.email_notifications, u.budget_alerts, u.goal_updates, u.created_at,
		       s.last_activity, s.expires_at
		FROM sessions s
		JOIN users u ON s.user_id = u.id
		WHERE s.token = ? AND s.expires_at > CURRENT_TIMESTAMP
	`, token)

	var u models.User
	var lastActivity, expiresAt time.Time
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.EmailNotifications, &u.BudgetAlerts, &u.GoalUpdates, &u.CreatedAt,
		&lastActivity, &expiresAt); err != nil {
		return nil, err
	}
	return &SessionInfo{
		User:         &u,
		LastActivity: lastActivity,
		ExpiresAt:    expiresAt,
	}, nil
}

// RenewSession updates the last_activity and expires_at for a session.
func (db *DB) RenewSession(token string, newExpiresAt time.Time) error {
	now := time.Now()
	_, err := db.conn.Exec(
		"UPDATE sessions SET last_activity = ?, expires_at = ? WHERE token = ?",
		now, newExpiresAt, token,
	)
	return err
}

// DeleteSession removes a session by token.
func (db *DB) DeleteSession(token string) error {
	_, err := db.conn.Exec("DELETE FROM sessions WHERE token = ?", token)
	return err
}

// CleanExpiredSessions removes all expired sessions.
func (db *DB) CleanExpiredSessions() error {
	_, err := db.conn.Exec("DELETE FROM sessions WHERE expires_at <= CURRENT_TIMESTAMP")
	return err
}
