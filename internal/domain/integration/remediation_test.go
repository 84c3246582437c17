package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRemediationTask(t *testing.T) {
	t.Run("Platform errors become notes", func(t *testing.T) {
		job := newTestJob(t)
		resp := &DispatchResponse{Status: "rejected", Errors: []PlatformError{
			{Message: "CIF inválido", DocumentID: "D-1"},
			{Message: "Falta firma", DocumentID: "D-1"},
		}}
		require.NoError(t, job.ApplyDispatchOutcome(ClassifyDispatch(resp, nil), jobClock))

		task := NewRemediationTask(job, jobClock)
		assert.Equal(t, RemediationTaskID(job.ID), task.ID)
		assert.Equal(t, job.TenantID, task.TenantID)
		assert.Equal(t, RemediationTypeSubsanar, task.Type)
		assert.Equal(t, "GestorDocumental", task.AssigneeRole)
		assert.Equal(t, jobClock.Add(RemediationDueIn), task.DueAt)
		assert.Equal(t, "CIF inválido; Falta firma", task.Notes)
		assert.Equal(t, "D-1", task.DocumentID)
		assert.Equal(t, "S-01", task.SiteCode)
	})

	t.Run("Mixed documents leave the reference empty", func(t *testing.T) {
		job := newTestJob(t)
		resp := &DispatchResponse{Status: "rejected", Errors: []PlatformError{
			{Message: "a", DocumentID: "D-1"},
			{Message: "b", DocumentID: "D-2"},
		}}
		require.NoError(t, job.ApplyDispatchOutcome(ClassifyDispatch(resp, nil), jobClock))
		assert.Empty(t, NewRemediationTask(job, jobClock).DocumentID)
	})

	t.Run("Transport failure falls back to last error", func(t *testing.T) {
		job := newTestJob(t)
		require.NoError(t, job.ApplyDispatchOutcome(DispatchOutcome{Kind: OutcomeTransient, Reason: "timeout"}, jobClock))
		assert.Equal(t, "timeout", NewRemediationTask(job, jobClock).Notes)
	})

	t.Run("No messages at all", func(t *testing.T) {
		job := newTestJob(t)
		require.NoError(t, job.ApplyDispatchOutcome(DispatchOutcome{Kind: OutcomeRejected}, jobClock))
		assert.Equal(t, "Nalanda dispatch ended in state rejected after 1 attempt(s)", NewRemediationTask(job, jobClock).Notes)
	})
}

func TestRemediationTaskID_Deterministic(t *testing.T) {
	job := newTestJob(t)
	other := newTestJob(t)
	assert.Equal(t, RemediationTaskID(job.ID), RemediationTaskID(job.ID))
	assert.NotEqual(t, RemediationTaskID(job.ID), RemediationTaskID(other.ID))
}
