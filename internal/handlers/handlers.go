package handlers

import (
	"context"
	"encoding/json"
	"html/template"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"finance-tracker/internal/auth"
	"finance-tracker/internal/models"
	"finance-tracker/internal/storage"
)

// Context key type to avoid collisions.
type contextKey string

const (
	// UserContextKey is the context key for the authenticated user.
	UserContextKey contextKey = "user"
	// SessionCookieName is the name of the session cookie.
	SessionCookieName = "session"
	// SessionDuration is how long sessions last (30 days).
	SessionDuration = 30 * 24 * time.Hour
)

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	db           *storage.DB
	templateDir  string
	secureCookie bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *storage.DB, templateDir string, secureCookie bool) *Handlers {
	return &Handlers{db: db, templateDir: templateDir, secureCookie: secureCookie}
}

// GetUserFromContext retrieves the authenticated user from request context.
func GetUserFromContext(r *http.Request) *models.User {
	if user, ok := r.Context().Value(UserContextKey).(*models.User); ok {
		return user
	}
	return nil
}

// AuthMiddleware wraps handlers to require authentication.
// It also implements rolling sessions: if a session is past the halfway point
// of its lifetime, it automatically renews the session.
func (h *Handlers) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := h.resolveSession(w, r)
		if user == nil {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// APIAuthMiddleware is the JSON variant: unauthenticated requests get a 401
// JSON error instead of a redirect.
func (h *Handlers) APIAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := h.resolveSession(w, r)
		if user == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Not authenticated"})
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// resolveSession validates the session cookie and applies rolling renewal.
// It returns nil when there is no valid session.
func (h *Handlers) resolveSession(w http.ResponseWriter, r *http.Request) *models.User {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	sessionInfo, err := h.db.ValidateSessionWithInfo(cookie.Value)
	if err != nil {
		h.clearSessionCookie(w)
		return nil
	}

	// Rolling session: renew if past halfway point. This keeps active users
	// logged in while still expiring inactive sessions.
	now := time.Now()
	if sessionInfo.ExpiresAt.Sub(now) < SessionDuration/2 {
		newExpiresAt := now.Add(SessionDuration)
		if err := h.db.RenewSession(cookie.Value, newExpiresAt); err == nil {
			h.setSessionCookie(w, cookie.Value)
		}
		// If renewal fails, just continue with the current session
	}

	return sessionInfo.User
}

func (h *Handlers) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionDuration.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handlers) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// AuthViewModel holds data for the login, register and forgot-password pages.
type AuthViewModel struct {
	Error   string
	Message string
}

// LoginForm renders the login page.
func (h *Handlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	// If already logged in, redirect to the dashboard
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if _, err := h.db.ValidateSession(cookie.Value); err == nil {
			http.Redirect(w, r, "/dashboard", http.StatusFound)
			return
		}
	}
	h.render(w, r, "login.html", AuthViewModel{})
}

// Login handles the login form submission.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, "login.html", AuthViewModel{Error: "Invalid form submission"})
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	if username == "" || password == "" {
		h.render(w, r, "login.html", AuthViewModel{Error: "Username and password are required"})
		return
	}

	user, err := h.db.GetUserByUsername(username)
	if err != nil || !auth.CheckPassword(password, user.PasswordHash) {
		h.render(w, r, "login.html", AuthViewModel{Error: "Invalid username or password"})
		return
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		log.Printf("Failed to generate session token: %v", err)
		h.render(w, r, "login.html", AuthViewModel{Error: "An error occurred. Please try again."})
		return
	}

	expiresAt := time.Now().Add(SessionDuration)
	if err := h.db.CreateSession(token, user.ID, expiresAt); err != nil {
		log.Printf("Failed to create session: %v", err)
		h.render(w, r, "login.html", AuthViewModel{Error: "An error occurred. Please try again."})
		return
	}

	h.setSessionCookie(w, token)
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// RegisterForm renders the registration page.
func (h *Handlers) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "register.html", AuthViewModel{})
}

// Register handles the registration form submission.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, "register.html", AuthViewModel{Error: "Invalid form submission"})
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := strings.TrimSpace(r.FormValue("password"))

	if username == "" || email == "" || password == "" {
		h.render(w, r, "register.html", AuthViewModel{Error: "Please fill in all fields"})
		return
	}

	if _, err := h.db.GetUserByUsername(username); err == nil {
		h.render(w, r, "register.html", AuthViewModel{Error: "Username already exists"})
		return
	}
	if _, err := h.db.GetUserByEmail(email); err == nil {
		h.render(w, r, "register.html", AuthViewModel{Error: "Email already registered"})
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		h.render(w, r, "register.html", AuthViewModel{Error: "An error occurred during registration. Please try again."})
		return
	}

	if _, err := h.db.CreateUser(username, email, hash); err != nil {
		log.Printf("Failed to create user: %v", err)
		h.render(w, r, "register.html", AuthViewModel{Error: "An error occurred during registration. Please try again."})
		return
	}

	h.render(w, r, "login.html", AuthViewModel{Message: "Registration successful! Please login."})
}

// ForgotPasswordForm renders the password reset page.
func (h *Handlers) ForgotPasswordForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "forgot_password.html", AuthViewModel{})
}

// ForgotPassword resets a user's password by username.
func (h *Handlers) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, "forgot_password.html", AuthViewModel{Error: "Invalid form submission"})
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	newPassword := r.FormValue("new_password")

	user, err := h.db.GetUserByUsername(username)
	if err != nil {
		h.render(w, r, "forgot_password.html", AuthViewModel{Error: "Username not found"})
		return
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		h.render(w, r, "forgot_password.html", AuthViewModel{Error: "An error occurred. Please try again."})
		return
	}

	if err := h.db.UpdateUserPassword(user.ID, hash); err != nil {
		log.Printf("Failed to update password: %v", err)
		h.render(w, r, "forgot_password.html", AuthViewModel{Error: "An error occurred. Please try again."})
		return
	}

	h.render(w, r, "login.html", AuthViewModel{Message: "Password has been reset successfully"})
}

// Logout handles user logout.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if err := h.db.DeleteSession(cookie.Value); err != nil {
			log.Printf("Failed to delete session: %v", err)
		}
	}
	h.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, viewName string, data any) {
	tmpl, err := template.ParseFiles(filepath.Join(h.templateDir, "base.html"), filepath.Join(h.templateDir, viewName))
	if err != nil {
		log.Printf("Template error: %v", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		log.Printf("Template execution error: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("JSON encode error: %v", err)
	}
}
