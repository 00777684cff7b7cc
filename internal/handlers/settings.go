package handlers

import (
	"log"
	"net/http"
	"strings"

	"finance-tracker/internal/auth"
	"finance-tracker/internal/models"
)

// SettingsViewModel is the data passed to the settings template.
type SettingsViewModel struct {
	User    *models.User
	Error   string
	Message string
}

// SettingsForm renders the settings page.
func (h *Handlers) SettingsForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "settings.html", SettingsViewModel{User: GetUserFromContext(r)})
}

// UpdateSettings dispatches the settings form: profile update, password
// change, or notification preferences, keyed by which fields are present.
func (h *Handlers) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	if err := r.ParseForm(); err != nil {
		h.render(w, r, "settings.html", SettingsViewModel{User: user, Error: "Invalid form submission"})
		return
	}

	switch {
	case r.Form.Has("username"):
		h.updateProfile(w, r, user)
	case r.Form.Has("current_password"):
		h.updatePassword(w, r, user)
	case r.Form.Has("preferences"):
		h.updatePreferences(w, r, user)
	default:
		h.render(w, r, "settings.html", SettingsViewModel{User: user, Error: "Nothing to update"})
	}
}

func (h *Handlers) updateProfile(w http.ResponseWriter, r *http.Request, user *models.User) {
	username := strings.TrimSpace(r.FormValue("username"))
	email := strings.TrimSpace(r.FormValue("email"))

	if username == "" || email == "" {
		h.render(w, r, "settings.html", SettingsViewModel{User: user, Error: "Username and email are required"})
		return
	}

	if err := h.db.UpdateUserProfile(user.ID, username, email); err != nil {
		log.Printf("UpdateUserProfile error: %v", err)
		h.render(w, r, "settings.html", SettingsViewModel{User: user, Error: "Could not update profile"})
		return
	}

	user.Username = username
	user.Email = email
	h.render(w, r, "settings.html", SettingsViewModel{User: user, Message: "Profile updated successfully!"})
}

func (h *Handlers) updatePassword(w http.ResponseWriter, r *http.Request, user *models.User) {
	currentPassword := r.FormValue("current_password")
	newPassword := r.FormValue("new_password")
	confirmPassword := r.FormValue("confirm_password")

	if !auth.CheckPassword(currentPassword, user.PasswordHash) {
		h.render(w, r, "settings.html", SettingsViewModel{User: user, Error: "Current password is incorrect!"})
		return
	}

	if newPassword != confirmPassword {
		h.render(w, r, "settings.html", SettingsViewModel{User: user, Error: "New passwords do not match!"})
		return
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		log.Printf("HashPassword error: %v", err)
		h.render(w, r, "settings.html", SettingsViewModel{User: user, Error: "An error occurred. Please try again."})
		return
	}

	if err := h.db.UpdateUserPassword(user.ID, hash); err != nil {
		log.Printf("UpdateUserPassword error: %v", err)
		h.render(w, r, "settings.html", SettingsViewModel{User: user, Error: "Could not update password"})
		return
	}

	h.render(w, r, "settings.html", SettingsViewModel{User: user, Message: "Password updated successfully!"})
}

func (h *Handlers) updatePreferences(w http.ResponseWriter, r *http.Request, user *models.User) {
	emailNotifications := r.Form.Has("email_notifications")
	budgetAlerts := r.Form.Has("budget_alerts")
	goalUpdates := r.Form.Has("goal_updates")

	if err := h.db.UpdateUserPreferences(user.ID, emailNotifications, budgetAlerts, goalUpdates); err != nil {
		log.Printf("UpdateUserPreferences error: %v", err)
		h.render(w, r, "settings.html", SettingsViewModel{User: user, Error: "Could not update preferences"})
		return
	}

	user.EmailNotifications = emailNotifications
	user.BudgetAlerts = budgetAlerts
	user.GoalUpdates = goalUpdates
	h.render(w, r, "settings.html", SettingsViewModel{User: user, Message: "Notification preferences updated!"})
}
