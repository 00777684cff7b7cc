package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"finance-tracker/internal/models"
	"finance-tracker/internal/storage"
)

// debtResult is the JSON response shape for all debt mutations.
type debtResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// addDebtRequest is the JSON payload for creating a debt. The initial
// balance doubles as the original amount.
type addDebtRequest struct {
	Name            string  `json:"name"`
	Type            string  `json:"type"`
	Balance         float64 `json:"balance"`
	InterestRate    float64 `json:"interest_rate"`
	MinimumPayment  float64 `json:"minimum_payment"`
	NextPaymentDate string  `json:"next_payment_date"`
}

// updateDebtRequest is the partial-update payload for a debt.
type updateDebtRequest struct {
	PaymentAmount *float64 `json:"payment_amount"`
}

func validDebtType(t string) bool {
	switch t {
	case models.DebtCreditCard, models.DebtLoan, models.DebtMortgage, models.DebtOther:
		return true
	}
	return false
}

// AddDebt creates a new debt from a JSON payload.
func (h *Handlers) AddDebt(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	var req addDebtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, debtResult{Success: false, Message: "Invalid request body"})
		return
	}

	if strings.TrimSpace(req.Name) == "" || !validDebtType(req.Type) || req.Balance < 0 {
		writeJSON(w, http.StatusBadRequest, debtResult{Success: false, Message: "Invalid debt details"})
		return
	}

	nextPayment, err := time.Parse("2006-01-02", req.NextPaymentDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, debtResult{Success: false, Message: "Invalid next payment date"})
		return
	}

	debt := &models.Debt{
		Name:            req.Name,
		Type:            req.Type,
		Balance:         req.Balance,
		OriginalAmount:  req.Balance,
		InterestRate:    req.InterestRate,
		MinimumPayment:  req.MinimumPayment,
		NextPaymentDate: nextPayment,
		PaidAmount:      0,
		UserID:          user.ID,
	}

	if _, err := h.db.CreateDebt(debt); err != nil {
		log.Printf("CreateDebt error: %v", err)
		writeJSON(w, http.StatusBadRequest, debtResult{Success: false, Message: "Could not add debt"})
		return
	}

	writeJSON(w, http.StatusOK, debtResult{Success: true, Message: "Debt added successfully"})
}

// UpdateDebt applies a partial update to a debt owned by the current user.
// A payment_amount decreases the balance, increases the paid amount, and
// advances the next payment date for recurring debt types.
func (h *Handlers) UpdateDebt(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, debtResult{Success: false, Message: "Invalid debt id"})
		return
	}

	var req updateDebtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, debtResult{Success: false, Message: "Invalid request body"})
		return
	}

	if req.PaymentAmount != nil {
		if *req.PaymentAmount <= 0 {
			writeJSON(w, http.StatusBadRequest, debtResult{Success: false, Message: "Payment amount must be positive"})
			return
		}
		if err := h.db.ApplyDebtPayment(id, user.ID, *req.PaymentAmount); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeJSON(w, http.StatusForbidden, debtResult{Success: false, Message: "Debt not found"})
				return
			}
			log.Printf("ApplyDebtPayment error: %v", err)
			writeJSON(w, http.StatusBadRequest, debtResult{Success: false, Message: "Could not update debt"})
			return
		}
	}

	writeJSON(w, http.StatusOK, debtResult{Success: true, Message: "Debt updated successfully"})
}

// DeleteDebt removes a debt owned by the current user.
func (h *Handlers) DeleteDebt(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, debtResult{Success: false, Message: "Invalid debt id"})
		return
	}

	if err := h.db.DeleteDebt(id, user.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusForbidden, debtResult{Success: false, Message: "Debt not found"})
			return
		}
		log.Printf("DeleteDebt error: %v", err)
		writeJSON(w, http.StatusBadRequest, debtResult{Success: false, Message: "Could not delete debt"})
		return
	}

	writeJSON(w, http.StatusOK, debtResult{Success: true, Message: "Debt deleted successfully"})
}
