package services

import (
	"testing"
	"time"

	"github.com/ledgerbook/ledgerbook-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestGenerateScheduleWorkedExample(t *testing.T) {
	svc := NewScheduleService()
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	// 50,000 over 10 months at 5,500/month: 5,000 total markup, 500/month fee.
	schedule, err := svc.Generate(ScheduleTerms{
		Principal:         50000,
		Tenure:            10,
		InstallmentAmount: 5500,
		MarkupKind:        models.MarkupKindAmount,
		MarkupValue:       5000,
		StartDate:         start,
	})

	assert.NoError(t, err)
	assert.Len(t, schedule, 10)

	first := schedule[0]
	assert.Equal(t, 1, first.InstallmentNumber)
	assert.Equal(t, start.AddDate(0, 1, 0), first.DueDate)
	assert.Equal(t, 5500.0, first.Amount)
	assert.Equal(t, models.InstallmentStatusPending, first.Status)
	assert.Equal(t, 5000.0, first.PrincipalPart)
	assert.Equal(t, 500.0, first.FeePart)
	assert.Equal(t, 45000.0, first.BalanceAfter)

	last := schedule[9]
	assert.Equal(t, 10, last.InstallmentNumber)
	assert.Equal(t, start.AddDate(0, 10, 0), last.DueDate)
	assert.Equal(t, 0.0, last.BalanceAfter)
}

func TestGenerateScheduleTotalEqualsInstallmentTimesTenure(t *testing.T) {
	svc := NewScheduleService()

	for _, tenure := range []int{1, 3, 7, 12, 24, 36} {
		schedule, err := svc.Generate(ScheduleTerms{
			Principal:         33333,
			Tenure:            tenure,
			InstallmentAmount: 1234.56,
			MarkupKind:        models.MarkupKindAmount,
			MarkupValue:       ResolveMarkup(33333, tenure, 1234.56),
			StartDate:         time.Now(),
		})
		assert.NoError(t, err)
		assert.Len(t, schedule, tenure)

		var total float64
		for i := range schedule {
			total += schedule[i].Amount
		}
		assert.InDelta(t, 1234.56*float64(tenure), total, 0.001, "tenure %d", tenure)
	}
}

func TestGenerateScheduleFinalBalanceAlwaysZero(t *testing.T) {
	svc := NewScheduleService()

	// Per-step rounding would otherwise leave the last balance a few units
	// off for awkward principal/tenure combinations.
	schedule, err := svc.Generate(ScheduleTerms{
		Principal:         100000,
		Tenure:            7,
		InstallmentAmount: 15300,
		MarkupKind:        models.MarkupKindAmount,
		MarkupValue:       ResolveMarkup(100000, 7, 15300),
		StartDate:         time.Now(),
	})

	assert.NoError(t, err)
	assert.Equal(t, 0.0, schedule[len(schedule)-1].BalanceAfter)
}

func TestGenerateSchedulePercentMarkup(t *testing.T) {
	svc := NewScheduleService()

	// 24% yearly on 60,000 principal: 1,200/month fee.
	schedule, err := svc.Generate(ScheduleTerms{
		Principal:         60000,
		Tenure:            12,
		InstallmentAmount: 6200,
		MarkupKind:        models.MarkupKindPercent,
		MarkupValue:       24,
		StartDate:         time.Now(),
	})

	assert.NoError(t, err)
	assert.Equal(t, 1200.0, schedule[0].FeePart)
	assert.Equal(t, 5000.0, schedule[0].PrincipalPart)
}

func TestGenerateScheduleValidation(t *testing.T) {
	svc := NewScheduleService()

	_, err := svc.Generate(ScheduleTerms{Principal: 0, Tenure: 10, InstallmentAmount: 100})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Generate(ScheduleTerms{Principal: 1000, Tenure: 0, InstallmentAmount: 100})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Generate(ScheduleTerms{Principal: 1000, Tenure: 10, InstallmentAmount: -1})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestResolveMarkup(t *testing.T) {
	assert.Equal(t, 5000.0, ResolveMarkup(50000, 10, 5500))
	assert.Equal(t, 0.0, ResolveMarkup(50000, 10, 5000))
	// Installments that undershoot the principal floor at zero.
	assert.Equal(t, 0.0, ResolveMarkup(50000, 10, 4000))
}
