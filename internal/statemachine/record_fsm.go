package statemachine

import (
	"context"
	"fmt"

	"github.com/ledgerbook/ledgerbook-api/internal/models"
	"github.com/looplab/fsm"
)

// RecordFSM wraps a record with its lifecycle state machine
type RecordFSM struct {
	record *models.Record
	fsm    *fsm.FSM
}

// NewRecordFSM creates a new record state machine
func NewRecordFSM(record *models.Record) *RecordFSM {
	rfsm := &RecordFSM{
		record: record,
	}

	rfsm.fsm = fsm.NewFSM(
		record.Status,
		fsm.Events{
			// pending → approved
			{Name: "approve", Src: []string{models.RecordStatusPending}, Dst: models.RecordStatusApproved},

			// approved → active (disbursal)
			{Name: "activate", Src: []string{models.RecordStatusApproved}, Dst: models.RecordStatusActive},

			// active → overdue (derived from due dates by the scheduled scan)
			{Name: "mark_overdue", Src: []string{models.RecordStatusActive}, Dst: models.RecordStatusOverdue},

			// overdue → active (arrears cleared)
			{Name: "clear_overdue", Src: []string{models.RecordStatusOverdue}, Dst: models.RecordStatusActive},

			// active/overdue → settled (early settlement / foreclosure)
			{Name: "settle", Src: []string{models.RecordStatusActive, models.RecordStatusOverdue}, Dst: models.RecordStatusSettled},

			// active/overdue → completed (every installment collected)
			{Name: "complete", Src: []string{models.RecordStatusActive, models.RecordStatusOverdue}, Dst: models.RecordStatusCompleted},

			// pending → rejected
			{Name: "reject", Src: []string{models.RecordStatusPending}, Dst: models.RecordStatusRejected},
		},
		fsm.Callbacks{},
	)

	return rfsm
}

// Approve transitions the record to approved state
func (r *RecordFSM) Approve(ctx context.Context) error {
	if !r.record.MayApprove() {
		return fmt.Errorf("record cannot be approved in current state: %s", r.record.Status)
	}

	if err := r.fsm.Event(ctx, "approve"); err != nil {
		return fmt.Errorf("failed to approve record: %w", err)
	}

	r.record.Status = r.fsm.Current()
	return nil
}

// Activate transitions the record to active state
func (r *RecordFSM) Activate(ctx context.Context) error {
	if !r.record.MayActivate() {
		return fmt.Errorf("record cannot be activated in current state: %s", r.record.Status)
	}

	if err := r.fsm.Event(ctx, "activate"); err != nil {
		return fmt.Errorf("failed to activate record: %w", err)
	}

	r.record.Status = r.fsm.Current()
	return nil
}

// MarkOverdue transitions an active record to overdue
func (r *RecordFSM) MarkOverdue(ctx context.Context) error {
	if err := r.fsm.Event(ctx, "mark_overdue"); err != nil {
		return fmt.Errorf("failed to mark record overdue: %w", err)
	}

	r.record.Status = r.fsm.Current()
	return nil
}

// ClearOverdue transitions an overdue record back to active
func (r *RecordFSM) ClearOverdue(ctx context.Context) error {
	if err := r.fsm.Event(ctx, "clear_overdue"); err != nil {
		return fmt.Errorf("failed to clear overdue state: %w", err)
	}

	r.record.Status = r.fsm.Current()
	return nil
}

// Settle transitions the record to settled state
func (r *RecordFSM) Settle(ctx context.Context) error {
	if !r.record.MaySettle() {
		return fmt.Errorf("record cannot be settled in current state: %s", r.record.Status)
	}

	if err := r.fsm.Event(ctx, "settle"); err != nil {
		return fmt.Errorf("failed to settle record: %w", err)
	}

	r.record.Status = r.fsm.Current()
	return nil
}

// Complete transitions the record to completed state
func (r *RecordFSM) Complete(ctx context.Context) error {
	if !r.record.MayComplete() {
		return fmt.Errorf("record cannot be completed in current state: %s", r.record.Status)
	}

	if err := r.fsm.Event(ctx, "complete"); err != nil {
		return fmt.Errorf("failed to complete record: %w", err)
	}

	r.record.Status = r.fsm.Current()
	return nil
}

// Reject transitions the record to rejected state
func (r *RecordFSM) Reject(ctx context.Context) error {
	if !r.record.MayReject() {
		return fmt.Errorf("record cannot be rejected in current state: %s", r.record.Status)
	}

	if err := r.fsm.Event(ctx, "reject"); err != nil {
		return fmt.Errorf("failed to reject record: %w", err)
	}

	r.record.Status = r.fsm.Current()
	return nil
}

// Current returns the current state
func (r *RecordFSM) Current() string {
	return r.fsm.Current()
}

// Can checks if a transition is possible
func (r *RecordFSM) Can(event string) bool {
	return r.fsm.Can(event)
}
