package services

import (
	"fmt"
	"math"
	"time"

	"github.com/ledgerbook/ledgerbook-api/internal/models"
)

// ScheduleService generates repayment schedules. It is a pure computation;
// callers are responsible for validating terms before invoking it and for
// persisting the result.
type ScheduleService struct{}

// NewScheduleService creates a new schedule service
func NewScheduleService() *ScheduleService {
	return &ScheduleService{}
}

// ScheduleTerms are the inputs to one schedule generation.
type ScheduleTerms struct {
	Principal         float64
	Tenure            int
	InstallmentAmount float64
	MarkupKind        string
	MarkupValue       float64
	StartDate         time.Time
}

// Generate builds the ordered installment list for the given terms. The
// schedule always has exactly Tenure entries, every entry pending and due
// Amount equal to InstallmentAmount, so the schedule total is
// InstallmentAmount * Tenure by construction.
func (s *ScheduleService) Generate(terms ScheduleTerms) (models.Schedule, error) {
	if terms.Principal <= 0 {
		return nil, fmt.Errorf("%w: principal must be positive", ErrValidation)
	}
	if terms.Tenure < 1 {
		return nil, fmt.Errorf("%w: tenure must be at least 1", ErrValidation)
	}
	if terms.InstallmentAmount < 0 {
		return nil, fmt.Errorf("%w: installment amount cannot be negative", ErrValidation)
	}

	start := terms.StartDate
	if start.IsZero() {
		start = time.Now()
	}

	monthlyFee := s.monthlyFee(terms)
	schedule := make(models.Schedule, 0, terms.Tenure)
	balance := terms.Principal

	for i := 1; i <= terms.Tenure; i++ {
		principalPart := math.Round(terms.InstallmentAmount - monthlyFee)
		balance = balance - principalPart
		if balance < 0 {
			balance = 0
		}
		// Per-step rounding can leave the last balance off by a few units;
		// the final installment is forced to land at zero.
		if i == terms.Tenure {
			balance = 0
		}

		schedule = append(schedule, models.Installment{
			InstallmentNumber: i,
			DueDate:           start.AddDate(0, i, 0),
			Amount:            terms.InstallmentAmount,
			Status:            models.InstallmentStatusPending,
			PrincipalPart:     principalPart,
			FeePart:           monthlyFee,
			BalanceAfter:      balance,
		})
	}

	return schedule, nil
}

// monthlyFee resolves the per-period fee component from the markup tag.
// Percent markups are an annualized rate on principal split over 12 months;
// amount markups are a resolved total fee spread evenly over the tenure.
func (s *ScheduleService) monthlyFee(terms ScheduleTerms) float64 {
	switch terms.MarkupKind {
	case models.MarkupKindPercent:
		return math.Round(terms.Principal * (terms.MarkupValue / 100) / 12)
	case models.MarkupKindAmount:
		if terms.Tenure > 0 {
			return math.Round(terms.MarkupValue / float64(terms.Tenure))
		}
	}
	return 0
}

// ResolveMarkup derives the total markup amount for edited terms: whatever
// the fixed installments collect beyond the principal, floored at zero.
func ResolveMarkup(principal float64, tenure int, installmentAmount float64) float64 {
	markup := installmentAmount*float64(tenure) - principal
	if markup < 0 {
		return 0
	}
	return markup
}
