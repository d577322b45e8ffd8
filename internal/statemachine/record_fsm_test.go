package statemachine

import (
	"context"
	"testing"

	"github.com/ledgerbook/ledgerbook-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestRecordLifecycleHappyPath(t *testing.T) {
	ctx := context.Background()
	record := &models.Record{Status: models.RecordStatusPending}

	fsm := NewRecordFSM(record)
	assert.NoError(t, fsm.Approve(ctx))
	assert.Equal(t, models.RecordStatusApproved, record.Status)

	assert.NoError(t, fsm.Activate(ctx))
	assert.Equal(t, models.RecordStatusActive, record.Status)

	assert.NoError(t, fsm.Complete(ctx))
	assert.Equal(t, models.RecordStatusCompleted, record.Status)
}

func TestRecordOverdueRoundTrip(t *testing.T) {
	ctx := context.Background()
	record := &models.Record{Status: models.RecordStatusActive}

	fsm := NewRecordFSM(record)
	assert.NoError(t, fsm.MarkOverdue(ctx))
	assert.Equal(t, models.RecordStatusOverdue, record.Status)

	assert.NoError(t, fsm.ClearOverdue(ctx))
	assert.Equal(t, models.RecordStatusActive, record.Status)
}

func TestOverdueRecordCanSettleAndComplete(t *testing.T) {
	ctx := context.Background()

	record := &models.Record{Status: models.RecordStatusOverdue}
	assert.NoError(t, NewRecordFSM(record).Settle(ctx))
	assert.Equal(t, models.RecordStatusSettled, record.Status)

	record = &models.Record{Status: models.RecordStatusOverdue}
	assert.NoError(t, NewRecordFSM(record).Complete(ctx))
	assert.Equal(t, models.RecordStatusCompleted, record.Status)
}

func TestInvalidTransitionsAreRejected(t *testing.T) {
	ctx := context.Background()

	// Pending records cannot be activated, settled or completed directly.
	record := &models.Record{Status: models.RecordStatusPending}
	fsm := NewRecordFSM(record)
	assert.Error(t, fsm.Activate(ctx))
	assert.Error(t, fsm.Settle(ctx))
	assert.Error(t, fsm.Complete(ctx))
	assert.Equal(t, models.RecordStatusPending, record.Status)

	// Terminal states have no outgoing transitions.
	for _, status := range []string{
		models.RecordStatusSettled,
		models.RecordStatusCompleted,
		models.RecordStatusRejected,
	} {
		record := &models.Record{Status: status}
		fsm := NewRecordFSM(record)
		assert.Error(t, fsm.Approve(ctx), "status %s", status)
		assert.Error(t, fsm.Settle(ctx), "status %s", status)
		assert.Equal(t, status, record.Status)
	}
}

func TestRejectOnlyFromPending(t *testing.T) {
	ctx := context.Background()

	record := &models.Record{Status: models.RecordStatusPending}
	assert.NoError(t, NewRecordFSM(record).Reject(ctx))
	assert.Equal(t, models.RecordStatusRejected, record.Status)

	record = &models.Record{Status: models.RecordStatusActive}
	assert.Error(t, NewRecordFSM(record).Reject(ctx))
	assert.Equal(t, models.RecordStatusActive, record.Status)
}

func TestCanReportsAvailableEvents(t *testing.T) {
	fsm := NewRecordFSM(&models.Record{Status: models.RecordStatusActive})

	assert.True(t, fsm.Can("settle"))
	assert.True(t, fsm.Can("complete"))
	assert.True(t, fsm.Can("mark_overdue"))
	assert.False(t, fsm.Can("approve"))
	assert.Equal(t, models.RecordStatusActive, fsm.Current())
}
