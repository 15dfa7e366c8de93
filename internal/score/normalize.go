package score

import (
	"fmt"
	"math"

	"rottencompany/internal/models"
)

// Mode selects how a raw score is adjusted for company size.
type Mode string

// Normalization modes.
const (
	ModeNone      Mode = "none"
	ModeEmployees Mode = "employees"
	ModeRevenue   Mode = "revenue"
)

// ParseMode validates a normalization mode name. Empty input means ModeNone.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeNone:
		return ModeNone, nil
	case ModeEmployees:
		return ModeEmployees, nil
	case ModeRevenue:
		return ModeRevenue, nil
	}
	return ModeNone, fmt.Errorf("unknown normalization mode %q", s)
}

// Normalize dampens a raw score by ln(size + 10), where size is the employee
// count or annual revenue. Missing or non-positive sizes pass the score through.
func Normalize(raw float64, company *models.Entity, mode Mode) float64 {
	if company == nil {
		return raw
	}

	switch mode {
	case ModeEmployees:
		if company.EmployeeCount != nil && *company.EmployeeCount > 0 {
			return raw / math.Log(float64(*company.EmployeeCount)+10)
		}
	case ModeRevenue:
		if company.AnnualRevenue != nil && *company.AnnualRevenue > 0 {
			return raw / math.Log(*company.AnnualRevenue+10)
		}
	}
	return raw
}
