package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"budget/internal/middleware"
	"budget/internal/models"
	"budget/internal/validator"

	"github.com/shopspring/decimal"
)

var (
	errInvalidIcon  = errors.New("invalid icon")
	errInvalidColor = errors.New("invalid color")
	errInvalidTheme = errors.New("invalid theme")
)

func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
	}
	return userID, ok
}

// validLimit accepts zero or a positive amount with at most two decimals.
func validLimit(field string, v decimal.Decimal) error {
	if v.IsNegative() || !v.Equal(v.Round(2)) {
		return fmt.Errorf("invalid %s", field)
	}
	return nil
}

func validateScope(s models.Scope) error {
	if err := validator.Required("name", s.Name); err != nil {
		return err
	}
	if err := validLimit("dailyLimit", s.DailyLimit); err != nil {
		return err
	}
	if s.MonthlyLimit.Valid {
		if err := validLimit("monthlyLimit", s.MonthlyLimit.Decimal); err != nil {
			return err
		}
	}
	if !s.Icon.Valid() {
		return errInvalidIcon
	}
	if !s.Color.Valid() {
		return errInvalidColor
	}
	return nil
}

func validateSettings(s *models.UserSettings) error {
	s.CurrentCurrency = strings.ToUpper(strings.TrimSpace(s.CurrentCurrency))
	if err := validator.ValidateCurrency(s.CurrentCurrency); err != nil {
		return err
	}
	if !s.Theme.Valid() {
		return errInvalidTheme
	}
	if !s.CurrentBalance.Equal(s.CurrentBalance.Round(2)) {
		return errors.New("invalid currentBalance")
	}
	return validLimit("currentSalary", s.CurrentSalary)
}
