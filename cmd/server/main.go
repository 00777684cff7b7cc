package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"finance-tracker/internal/auth"
	"finance-tracker/internal/config"
	"finance-tracker/internal/handlers"
	"finance-tracker/internal/storage"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db, err := storage.NewDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := bootstrapAdmin(db); err != nil {
		log.Fatalf("Failed to bootstrap admin user: %v", err)
	}

	go cleanSessionsLoop(db)

	h := handlers.NewHandlers(db, cfg.TemplateDir, cfg.SecureCookie)
	mux := setupRouter(h, cfg.StaticDir)

	log.Printf("Listening on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, mux); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// bootstrapAdmin creates an initial user from ADMIN_USER and ADMIN_PASSWORD
// when the database has no users yet. Useful for fresh deployments and test
// environments; a no-op otherwise.
func bootstrapAdmin(db *storage.DB) error {
	username := os.Getenv("ADMIN_USER")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		return nil
	}

	count, err := db.UserCount()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = username + "@localhost"
	}

	user, err := db.CreateUser(username, email, hash)
	if err != nil {
		return err
	}
	log.Printf("Created initial user %s (ID %d)", user.Username, user.ID)
	return nil
}

func cleanSessionsLoop(db *storage.DB) {
	for {
		if err := db.CleanExpiredSessions(); err != nil {
			log.Printf("Failed to clean expired sessions: %v", err)
		}
		time.Sleep(time.Hour)
	}
}

func setupRouter(h *handlers.Handlers, staticDir string) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	})

	// Auth pages
	mux.HandleFunc("GET /login", h.LoginForm)
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("GET /register", h.RegisterForm)
	mux.HandleFunc("POST /register", h.Register)
	mux.HandleFunc("GET /forgot-password", h.ForgotPasswordForm)
	mux.HandleFunc("POST /forgot-password", h.ForgotPassword)
	mux.HandleFunc("GET /logout", h.Logout)

	// HTML pages behind cookie auth
	authed := func(pattern string, handler http.HandlerFunc) {
		mux.Handle(pattern, h.AuthMiddleware(handler))
	}
	authed("GET /dashboard", h.Dashboard)
	authed("GET /transactions", h.ListTransactions)
	authed("POST /transactions", h.AddTransaction)
	authed("GET /reports", h.Reports)
	authed("GET /goals", h.ListGoals)
	authed("POST /goals", h.AddGoal)
	authed("POST /goals/{id}", h.UpdateGoal)
	authed("POST /goals/{id}/delete", h.DeleteGoal)
	authed("GET /budget", h.ListBudgets)
	authed("POST /budget", h.AddBudget)
	authed("POST /budget/{id}", h.UpdateBudget)
	authed("POST /budget/{id}/delete", h.DeleteBudget)
	authed("GET /settings", h.SettingsForm)
	authed("POST /settings", h.UpdateSettings)

	// JSON API behind the 401 variant of the middleware
	api := func(pattern string, handler http.HandlerFunc) {
		mux.Handle(pattern, h.APIAuthMiddleware(handler))
	}
	api("POST /api/debts", h.AddDebt)
	api("POST /api/debts/{id}", h.UpdateDebt)
	api("POST /api/debts/{id}/delete", h.DeleteDebt)
	api("POST /api/query", h.Query)

	return mux
}
