package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"finance-tracker/internal/auth"
	"finance-tracker/internal/models"
	"finance-tracker/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const templateDir = "../../web/templates"

func newTestHandlers(t *testing.T) *Handlers {
	t.Helper()

	if _, err := os.Stat(templateDir); os.IsNotExist(err) {
		t.Skip("Template directory not found")
	}

	db, err := storage.NewDB(":memory:")
	require.NoError(t, err, "failed to create test database")
	t.Cleanup(func() { db.Close() })

	return NewHandlers(db, templateDir, false)
}

func createTestUser(t *testing.T, h *Handlers, username, email, password string) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	user, err := h.db.CreateUser(username, email, hash)
	require.NoError(t, err)
	return user
}

// authedRequest builds a request with the user already resolved, bypassing the
// middleware the way an in-process caller would after session validation.
func authedRequest(method, target string, body *strings.Reader, user *models.User) *http.Request {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, body)
	}
	ctx := context.WithValue(req.Context(), UserContextKey, user)
	return req.WithContext(ctx)
}

func formRequest(target string, form url.Values, user *models.User) *http.Request {
	req := authedRequest("POST", target, strings.NewReader(form.Encode()), user)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestLoginCreatesSession(t *testing.T) {
	h := newTestHandlers(t)
	createTestUser(t, h, "alice", "alice@example.com", "secret123")

	form := url.Values{"username": {"alice"}, "password": {"secret123"}}
	req := httptest.NewRequest("POST", "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	h.Login(w, req)

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))

	var sessionCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookieName {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie, "login should set a session cookie")

	user, err := h.db.ValidateSession(sessionCookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
}

func TestLoginWrongPassword(t *testing.T) {
	h := newTestHandlers(t)
	createTestUser(t, h, "alice", "alice@example.com", "secret123")

	form := url.Values{"username": {"alice"}, "password": {"wrong"}}
	req := httptest.NewRequest("POST", "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	h.Login(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid username or password")
	assert.Empty(t, w.Result().Cookies(), "failed login must not set a cookie")
}

func TestRegisterDuplicateUsername(t *testing.T) {
	h := newTestHandlers(t)
	createTestUser(t, h, "alice", "alice@example.com", "secret123")

	form := url.Values{
		"username": {"alice"},
		"email":    {"other@example.com"},
		"password": {"secret123"},
	}
	req := httptest.NewRequest("POST", "/register", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	h.Register(w, req)

	assert.Contains(t, w.Body.String(), "Username already exists")
}

func TestAuthMiddlewareRedirectsAnonymous(t *testing.T) {
	h := newTestHandlers(t)

	handler := h.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("protected handler must not run without a session")
	}))

	req := httptest.NewRequest("GET", "/dashboard", http.NoBody)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestAPIAuthMiddlewareReturnsJSON401(t *testing.T) {
	h := newTestHandlers(t)

	handler := h.APIAuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("protected handler must not run without a session")
	}))

	req := httptest.NewRequest("POST", "/api/query", http.NoBody)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Not authenticated", body["error"])
}

func TestAuthMiddlewareWithValidSession(t *testing.T) {
	h := newTestHandlers(t)
	user := createTestUser(t, h, "alice", "alice@example.com", "secret123")

	token, err := auth.GenerateSessionToken()
	require.NoError(t, err)
	require.NoError(t, h.db.CreateSession(token, user.ID, time.Now().Add(SessionDuration)))

	var seen *models.User
	handler := h.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUserFromContext(r)
	}))

	req := httptest.NewRequest("GET", "/dashboard", http.NoBody)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.NotNil(t, seen)
	assert.Equal(t, user.ID, seen.ID)
}

func TestAddTransactionContributesToGoalAndBudget(t *testing.T) {
	h := newTestHandlers(t)
	user := createTestUser(t, h, "alice", "alice@example.com", "secret123")

	goal, err := h.db.CreateGoal(&models.Goal{
		Name: "Vacation", TargetAmount: 1000,
		TargetDate: time.Now().AddDate(1, 0, 0), UserID: user.ID,
	})
	require.NoError(t, err)

	// Income routed to the goal
	income := url.Values{
		"amount":   {"250.00"},
		"category": {"Salary"},
		"type":     {"income"},
		"goal_id":  {"1"},
	}
	w := httptest.NewRecorder()
	h.AddTransaction(w, formRequest("/transactions", income, user))
	require.Equal(t, http.StatusFound, w.Code)

	updatedGoal, err := h.db.GetGoal(goal.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 250.0, updatedGoal.CurrentAmount)

	// Expense bumps the matching current-month budget cache
	month := time.Date(time.Now().Year(), time.Now().Month(), 1, 0, 0, 0, 0, time.UTC)
	budget, err := h.db.CreateBudget(&models.Budget{
		Category: "Dining", Limit: 300, Month: month, UserID: user.ID,
	})
	require.NoError(t, err)

	expense := url.Values{
		"amount":   {"40.00"},
		"category": {"Dining"},
		"type":     {"expense"},
	}
	w = httptest.NewRecorder()
	h.AddTransaction(w, formRequest("/transactions", expense, user))
	require.Equal(t, http.StatusFound, w.Code)

	updatedBudget, err := h.db.GetBudget(budget.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 40.0, updatedBudget.Spent)
}

func TestAddTransactionRejectsBadAmount(t *testing.T) {
	h := newTestHandlers(t)
	user := createTestUser(t, h, "alice", "alice@example.com", "secret123")

	for _, amount := range []string{"", "abc", "-5"} {
		form := url.Values{
			"amount":   {amount},
			"category": {"Dining"},
			"type":     {"expense"},
		}
		w := httptest.NewRecorder()
		h.AddTransaction(w, formRequest("/transactions", form, user))
		assert.Equal(t, http.StatusBadRequest, w.Code, "amount %q should be rejected", amount)
	}

	transactions, err := h.db.ListTransactions(user.ID)
	require.NoError(t, err)
	assert.Empty(t, transactions)
}

func TestUpdateGoalOwnershipRejected(t *testing.T) {
	h := newTestHandlers(t)
	owner := createTestUser(t, h, "alice", "alice@example.com", "secret123")
	intruder := createTestUser(t, h, "bob", "bob@example.com", "secret123")

	goal, err := h.db.CreateGoal(&models.Goal{
		Name: "Vacation", TargetAmount: 1000,
		TargetDate: time.Now().AddDate(1, 0, 0), UserID: owner.ID,
	})
	require.NoError(t, err)

	form := url.Values{"current_amount": {"999"}}
	req := formRequest("/goals/1", form, intruder)
	req.SetPathValue("id", "1")
	w := httptest.NewRecorder()
	h.UpdateGoal(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)

	unchanged, err := h.db.GetGoal(goal.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, unchanged.CurrentAmount)
}

func TestDebtAPILifecycle(t *testing.T) {
	h := newTestHandlers(t)
	user := createTestUser(t, h, "alice", "alice@example.com", "secret123")

	// Add
	body := `{"name":"Card","type":"credit_card","balance":1000,"interest_rate":19.9,"minimum_payment":50,"next_payment_date":"2026-10-01"}`
	w := httptest.NewRecorder()
	h.AddDebt(w, authedRequest("POST", "/api/debts", strings.NewReader(body), user))

	require.Equal(t, http.StatusOK, w.Code)
	var result debtResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, "Debt added successfully", result.Message)

	debts, err := h.db.ListDebts(user.ID)
	require.NoError(t, err)
	require.Len(t, debts, 1)
	assert.Equal(t, 1000.0, debts[0].OriginalAmount)

	// Pay
	payBody := `{"payment_amount":200}`
	req := authedRequest("POST", "/api/debts/1", strings.NewReader(payBody), user)
	req.SetPathValue("id", "1")
	w = httptest.NewRecorder()
	h.UpdateDebt(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Success)

	paid, err := h.db.GetDebt(debts[0].ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 800.0, paid.Balance)
	assert.Equal(t, 200.0, paid.PaidAmount)

	// Delete
	req = authedRequest("POST", "/api/debts/1/delete", nil, user)
	req.SetPathValue("id", "1")
	w = httptest.NewRecorder()
	h.DeleteDebt(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	remaining, err := h.db.ListDebts(user.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestDebtAPIOwnershipRejected(t *testing.T) {
	h := newTestHandlers(t)
	owner := createTestUser(t, h, "alice", "alice@example.com", "secret123")
	intruder := createTestUser(t, h, "bob", "bob@example.com", "secret123")

	debt, err := h.db.CreateDebt(&models.Debt{
		Name: "Card", Type: models.DebtCreditCard,
		Balance: 1000, OriginalAmount: 1000,
		NextPaymentDate: time.Now().AddDate(0, 1, 0), UserID: owner.ID,
	})
	require.NoError(t, err)

	req := authedRequest("POST", "/api/debts/1", strings.NewReader(`{"payment_amount":200}`), intruder)
	req.SetPathValue("id", "1")
	w := httptest.NewRecorder()
	h.UpdateDebt(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	var result debtResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.False(t, result.Success)
	assert.Equal(t, "Debt not found", result.Message)

	unchanged, err := h.db.GetDebt(debt.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, unchanged.Balance)
}

func TestDebtAPIRejectsInvalidType(t *testing.T) {
	h := newTestHandlers(t)
	user := createTestUser(t, h, "alice", "alice@example.com", "secret123")

	body := `{"name":"Card","type":"iou","balance":100,"next_payment_date":"2026-10-01"}`
	w := httptest.NewRecorder()
	h.AddDebt(w, authedRequest("POST", "/api/debts", strings.NewReader(body), user))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var result debtResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.False(t, result.Success)
}

func TestQueryEndpoint(t *testing.T) {
	h := newTestHandlers(t)
	user := createTestUser(t, h, "alice", "alice@example.com", "secret123")

	_, err := h.db.CreateDebt(&models.Debt{
		Name: "Card", Type: models.DebtCreditCard,
		Balance: 1500, OriginalAmount: 2000,
		NextPaymentDate: time.Now().AddDate(0, 1, 0), UserID: user.ID,
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	h.Query(w, authedRequest("POST", "/api/query", strings.NewReader(`{"query":"how much debt do I have"}`), user))

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["response"], "1 active debt")
	assert.Contains(t, resp["response"], "$1500.00")
}

func TestQueryEndpointFallback(t *testing.T) {
	h := newTestHandlers(t)
	user := createTestUser(t, h, "alice", "alice@example.com", "secret123")

	w := httptest.NewRecorder()
	h.Query(w, authedRequest("POST", "/api/query", strings.NewReader(`{"query":"hello there"}`), user))

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["response"], "What would you like to know")
}

func TestUpdateSettingsPassword(t *testing.T) {
	h := newTestHandlers(t)
	user := createTestUser(t, h, "alice", "alice@example.com", "secret123")

	form := url.Values{
		"current_password": {"secret123"},
		"new_password":     {"newsecret"},
		"confirm_password": {"newsecret"},
	}
	w := httptest.NewRecorder()
	h.UpdateSettings(w, formRequest("/settings", form, user))

	assert.Contains(t, w.Body.String(), "Password updated successfully!")

	updated, err := h.db.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword("newsecret", updated.PasswordHash))
}

func TestUpdateSettingsWrongCurrentPassword(t *testing.T) {
	h := newTestHandlers(t)
	user := createTestUser(t, h, "alice", "alice@example.com", "secret123")

	form := url.Values{
		"current_password": {"nope"},
		"new_password":     {"newsecret"},
		"confirm_password": {"newsecret"},
	}
	w := httptest.NewRecorder()
	h.UpdateSettings(w, formRequest("/settings", form, user))

	assert.Contains(t, w.Body.String(), "Current password is incorrect!")

	unchanged, err := h.db.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword("secret123", unchanged.PasswordHash))
}

func TestUpdateSettingsPreferences(t *testing.T) {
	h := newTestHandlers(t)
	user := createTestUser(t, h, "alice", "alice@example.com", "secret123")

	// Only budget alerts checked
	form := url.Values{
		"preferences":   {"1"},
		"budget_alerts": {"on"},
	}
	w := httptest.NewRecorder()
	h.UpdateSettings(w, formRequest("/settings", form, user))

	updated, err := h.db.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.False(t, updated.EmailNotifications)
	assert.True(t, updated.BudgetAlerts)
	assert.False(t, updated.GoalUpdates)
}

func TestDashboardRenders(t *testing.T) {
	h := newTestHandlers(t)
	user := createTestUser(t, h, "alice", "alice@example.com", "secret123")

	_, err := h.db.CreateTransaction(&models.Transaction{
		Amount: 100, Category: "Salary", Kind: models.KindIncome,
		Date: time.Now(), UserID: user.ID,
	})
	require.NoError(t, err)
	_, err = h.db.CreateTransaction(&models.Transaction{
		Amount: 40, Category: "Dining", Kind: models.KindExpense,
		Date: time.Now(), UserID: user.ID,
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	h.Dashboard(w, authedRequest("GET", "/dashboard", nil, user))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "alice")
	assert.Contains(t, body, "100.00")
	assert.Contains(t, body, "40.00")
	assert.Contains(t, body, "Dining")
}

func TestReportsRendersRequestedMonth(t *testing.T) {
	h := newTestHandlers(t)
	user := createTestUser(t, h, "alice", "alice@example.com", "secret123")

	_, err := h.db.CreateTransaction(&models.Transaction{
		Amount: 75, Category: "Dining", Kind: models.KindExpense,
		Date: time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC), UserID: user.ID,
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	h.Reports(w, authedRequest("GET", "/reports?year=2026&month=2", nil, user))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "February 2026")
	assert.Contains(t, body, "75.00")
}
