package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"finance-tracker/internal/models"
	"finance-tracker/internal/storage"
)

// GoalItem represents a goal in the goals view.
type GoalItem struct {
	models.Goal
	Progress float64
	Overdue  bool
}

// GoalsViewModel is the data passed to the goals template.
type GoalsViewModel struct {
	Goals []GoalItem
	Error string
}

// ListGoals renders the savings goals page.
func (h *Handlers) ListGoals(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	goals, err := h.db.ListGoals(user.ID)
	if err != nil {
		log.Printf("ListGoals error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	items := make([]GoalItem, 0, len(goals))
	for _, g := range goals {
		progress := 0.0
		if g.TargetAmount > 0 {
			progress = g.CurrentAmount / g.TargetAmount * 100
		}
		items = append(items, GoalItem{Goal: g, Progress: progress, Overdue: g.TargetDate.Before(now)})
	}

	h.render(w, r, "goals.html", GoalsViewModel{Goals: items})
}

// AddGoal handles the creation of a new savings goal.
func (h *Handlers) AddGoal(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	targetAmount, err := parsePositiveAmount(r.FormValue("target_amount"))
	if err != nil || name == "" {
		http.Error(w, "Name and target amount are required", http.StatusBadRequest)
		return
	}

	targetDate, err := time.Parse("2006-01-02", r.FormValue("target_date"))
	if err != nil {
		http.Error(w, "Invalid target date", http.StatusBadRequest)
		return
	}

	goal := &models.Goal{
		Name:          name,
		TargetAmount:  targetAmount,
		CurrentAmount: 0,
		TargetDate:    targetDate,
		UserID:        user.ID,
	}

	if _, err := h.db.CreateGoal(goal); err != nil {
		log.Printf("CreateGoal error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/goals", http.StatusFound)
}

// UpdateGoal sets the progress of a goal owned by the current user.
func (h *Handlers) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid goal id", http.StatusBadRequest)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	currentAmount, err := parseAmount(r.FormValue("current_amount"))
	if err != nil {
		http.Error(w, "Invalid amount", http.StatusBadRequest)
		return
	}

	if err := h.db.SetGoalProgress(id, user.ID, currentAmount); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		log.Printf("SetGoalProgress error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/goals", http.StatusFound)
}

// DeleteGoal removes a goal owned by the current user.
func (h *Handlers) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid goal id", http.StatusBadRequest)
		return
	}

	if err := h.db.DeleteGoal(id, user.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		log.Printf("DeleteGoal error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/goals", http.StatusFound)
}
