package models

import (
	"strings"
	"time"
)

// LegacyRecord is the wire shape accepted by the import endpoint. Records
// exported from older clients carry years of schema drift (emi vs
// installmentAmount, interestRate vs rate, processingFee vs serviceCharge,
// topUpHistory vs addOnHistory). This is the single place those fallback
// chains are allowed to exist; the rest of the codebase only ever sees the
// canonical Record.
type LegacyRecord struct {
	CustomerID uint   `json:"customer_id"`
	CompanyID  uint   `json:"company_id"`
	Status     string `json:"status"`

	Amount float64 `json:"amount"`

	InstallmentAmount float64 `json:"installmentAmount"`
	EMI               float64 `json:"emi"`

	Rate         float64 `json:"rate"`
	InterestRate float64 `json:"interestRate"`

	Tenure int `json:"tenure"`

	ServiceCharge float64 `json:"serviceCharge"`
	ProcessingFee float64 `json:"processingFee"`

	ServiceChargePercentage float64 `json:"serviceChargePercentage"`
	ProcessingFeePct        float64 `json:"processingFeePercentage"`

	Date           string `json:"date"`
	EntryDate      string `json:"entryDate"`
	ActivationDate string `json:"activationDate"`

	RepaymentSchedule Schedule `json:"repaymentSchedule"`

	AddOnHistory []AddOn `json:"addOnHistory"`
	TopUpHistory []AddOn `json:"topUpHistory"`

	SettlementDetails  *SettlementDetails `json:"settlementDetails"`
	ForeclosureDetails *SettlementDetails `json:"foreclosureDetails"`
}

// Normalize maps a legacy record onto the canonical shape. Old records
// stored the markup under "rate"/"interestRate" as a percentage of
// principal; newer clients wrote a pre-computed fee amount into the same
// field. The importer cannot tell them apart reliably, so the heuristic the
// old readers used is made explicit: values small enough to be a yearly
// percentage are tagged percent, everything else is tagged amount.
func (l *LegacyRecord) Normalize(now time.Time) Record {
	rec := Record{
		CustomerID: l.CustomerID,
		CompanyID:  l.CompanyID,
		Principal:  l.Amount,
		Tenure:     l.Tenure,
	}

	rec.InstallmentAmount = l.InstallmentAmount
	if rec.InstallmentAmount == 0 {
		rec.InstallmentAmount = l.EMI
	}

	markup := l.Rate
	if markup == 0 {
		markup = l.InterestRate
	}
	rec.MarkupValue = markup
	if markup > 0 && markup <= 100 {
		rec.MarkupKind = MarkupKindPercent
	} else {
		rec.MarkupKind = MarkupKindAmount
	}

	rec.ServiceCharge = l.ServiceCharge
	if rec.ServiceCharge == 0 {
		rec.ServiceCharge = l.ProcessingFee
	}
	rec.ServiceChargePercentage = l.ServiceChargePercentage
	if rec.ServiceChargePercentage == 0 {
		rec.ServiceChargePercentage = l.ProcessingFeePct
	}

	rec.Status = normalizeRecordStatus(l.Status)

	rec.Date = parseLegacyDate(l.Date, now)
	if activation := firstNonEmpty(l.ActivationDate, l.EntryDate); activation != "" {
		d := parseLegacyDate(activation, now)
		rec.ActivationDate = &d
	}

	rec.RepaymentSchedule = l.RepaymentSchedule

	rec.AddOnHistory = l.AddOnHistory
	if len(rec.AddOnHistory) == 0 {
		rec.AddOnHistory = l.TopUpHistory
	}

	rec.Settlement = l.SettlementDetails
	if rec.Settlement == nil {
		rec.Settlement = l.ForeclosureDetails
	}

	return rec
}

func normalizeRecordStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return RecordStatusPending
	case "approved":
		return RecordStatusApproved
	case "active", "disbursed", "given":
		return RecordStatusActive
	case "overdue":
		return RecordStatusOverdue
	case "settled":
		return RecordStatusSettled
	case "completed", "closed":
		return RecordStatusCompleted
	case "rejected":
		return RecordStatusRejected
	}
	return strings.ToLower(strings.TrimSpace(s))
}

// parseLegacyDate accepts the date formats found in exported data and
// defaults to now when unparseable, matching the schedule generator's
// start-date behavior.
func parseLegacyDate(s string, now time.Time) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return now
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
