package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInstallmentUnmarshalLegacyAliases(t *testing.T) {
	raw := []byte(`{
		"emiNumber": 4,
		"due_date": "2023-05-01T00:00:00Z",
		"amount": 5500,
		"status": "Paid",
		"amount_paid": 6000,
		"balance": 27500
	}`)

	var inst Installment
	assert.NoError(t, json.Unmarshal(raw, &inst))
	assert.Equal(t, 4, inst.InstallmentNumber)
	assert.Equal(t, InstallmentStatusPaid, inst.Status)
	assert.Equal(t, 6000.0, inst.AmountPaid)
	assert.Equal(t, 27500.0, inst.BalanceAfter)
}

func TestInstallmentUnmarshalCanonicalFieldsWin(t *testing.T) {
	raw := []byte(`{
		"installment_number": 2,
		"emiNumber": 9,
		"amount": 5500,
		"status": "pending",
		"balance_after": 44000,
		"balance": 1
	}`)

	var inst Installment
	assert.NoError(t, json.Unmarshal(raw, &inst))
	assert.Equal(t, 2, inst.InstallmentNumber)
	assert.Equal(t, 44000.0, inst.BalanceAfter)
}

func TestInstallmentUnmarshalMissingStatusDefaultsPending(t *testing.T) {
	var inst Installment
	assert.NoError(t, json.Unmarshal([]byte(`{"installment_number": 1, "amount": 100}`), &inst))
	assert.Equal(t, InstallmentStatusPending, inst.Status)
}

func TestInstallmentExtraAmount(t *testing.T) {
	paid := Installment{Status: InstallmentStatusPaid, Amount: 5500, AmountPaid: 6000}
	assert.Equal(t, 500.0, paid.ExtraAmount())

	exact := Installment{Status: InstallmentStatusPaid, Amount: 5500, AmountPaid: 5500}
	assert.Equal(t, 0.0, exact.ExtraAmount())

	pending := Installment{Status: InstallmentStatusPending, Amount: 5500}
	assert.Equal(t, 0.0, pending.ExtraAmount())
}

func TestInstallmentIsOverdue(t *testing.T) {
	due := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	inst := Installment{Status: InstallmentStatusPending, DueDate: due}

	assert.False(t, inst.IsOverdue(due))
	assert.True(t, inst.IsOverdue(due.AddDate(0, 0, 1)))

	inst.Status = InstallmentStatusPaid
	assert.False(t, inst.IsOverdue(due.AddDate(0, 0, 1)))
}
