package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplicationStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    ApplicationStatus
		to      ApplicationStatus
		allowed bool
	}{
		{"applied to shortlisted", ApplicationStatusApplied, ApplicationStatusShortlisted, true},
		{"applied to rejected", ApplicationStatusApplied, ApplicationStatusRejected, true},
		{"applied skips to interview", ApplicationStatusApplied, ApplicationStatusInterview, false},
		{"shortlisted to assessment", ApplicationStatusShortlisted, ApplicationStatusAssessment, true},
		{"assessment to interview", ApplicationStatusAssessment, ApplicationStatusInterview, true},
		{"interview to offer", ApplicationStatusInterview, ApplicationStatusOffer, true},
		{"offer to hired", ApplicationStatusOffer, ApplicationStatusHired, true},
		{"offer to rejected", ApplicationStatusOffer, ApplicationStatusRejected, true},
		{"hired is terminal", ApplicationStatusHired, ApplicationStatusRejected, false},
		{"rejected is terminal", ApplicationStatusRejected, ApplicationStatusApplied, false},
		{"no backward move", ApplicationStatusInterview, ApplicationStatusShortlisted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransition(tt.to))
		})
	}
}

func TestApplicationStatusTerminal(t *testing.T) {
	assert.True(t, ApplicationStatusHired.IsTerminal())
	assert.True(t, ApplicationStatusRejected.IsTerminal())
	assert.False(t, ApplicationStatusOffer.IsTerminal())
	assert.False(t, ApplicationStatus("bogus").IsValid())
}

func TestOfferStatusSequence(t *testing.T) {
	// The full happy path advances one step at a time
	path := []OfferStatus{
		OfferStatusDraft,
		OfferStatusPendingApproval,
		OfferStatusApproved,
		OfferStatusSent,
		OfferStatusAccepted,
	}
	for i := 0; i < len(path)-1; i++ {
		assert.True(t, path[i].CanTransition(path[i+1]),
			"expected %s -> %s to be allowed", path[i], path[i+1])
	}

	// No skipping stages
	assert.False(t, OfferStatusDraft.CanTransition(OfferStatusApproved))
	assert.False(t, OfferStatusDraft.CanTransition(OfferStatusSent))
	assert.False(t, OfferStatusApproved.CanTransition(OfferStatusAccepted))

	// Approval rejection returns to draft
	assert.True(t, OfferStatusPendingApproval.CanTransition(OfferStatusDraft))

	// Terminal states
	assert.False(t, OfferStatusAccepted.CanTransition(OfferStatusDraft))
	assert.False(t, OfferStatusDeclined.CanTransition(OfferStatusSent))
}

func TestOfferNextApprover(t *testing.T) {
	offer := &Offer{
		Approvers: []Approver{
			{Email: "b@corp.test", Order: 2, Decision: ApproverPending},
			{Email: "a@corp.test", Order: 1, Decision: ApproverPending},
			{Email: "c@corp.test", Order: 3, Decision: ApproverPending},
		},
	}

	next := offer.NextApprover()
	assert.NotNil(t, next)
	assert.Equal(t, "a@corp.test", next.Email)

	next.Decision = ApproverApproved
	next = offer.NextApprover()
	assert.Equal(t, "b@corp.test", next.Email)

	for i := range offer.Approvers {
		offer.Approvers[i].Decision = ApproverApproved
	}
	assert.Nil(t, offer.NextApprover())
	assert.True(t, offer.AllApproved())
}

func TestOfferAllApprovedEmptyChain(t *testing.T) {
	offer := &Offer{}
	assert.False(t, offer.AllApproved())
}

func TestOfferResetApprovalsAfterRejection(t *testing.T) {
	decided := time.Now()
	offer := &Offer{
		Status: OfferStatusDraft,
		Approvers: []Approver{
			{Email: "a@corp.test", Order: 1, Decision: ApproverApproved, DecidedAt: &decided},
			{Email: "b@corp.test", Order: 2, Decision: ApproverRejected, Comment: "salary too high", DecidedAt: &decided},
		},
	}

	// With the old decisions in place the chain is a dead end
	assert.Nil(t, offer.NextApprover())
	assert.False(t, offer.AllApproved())

	offer.ResetApprovals()

	next := offer.NextApprover()
	assert.NotNil(t, next)
	assert.Equal(t, "a@corp.test", next.Email)
	for _, a := range offer.Approvers {
		assert.Equal(t, ApproverPending, a.Decision)
		assert.Empty(t, a.Comment)
		assert.Nil(t, a.DecidedAt)
	}
}

func TestJobStatusTransitions(t *testing.T) {
	assert.True(t, JobStatusDraft.CanTransition(JobStatusActive))
	assert.True(t, JobStatusActive.CanTransition(JobStatusClosed))
	assert.False(t, JobStatusClosed.CanTransition(JobStatusActive))
	assert.False(t, JobStatusActive.CanTransition(JobStatusDraft))
}

func TestAssignmentStatusTransitions(t *testing.T) {
	assert.True(t, AssignmentStatusAssigned.CanTransition(AssignmentStatusInProgress))
	assert.True(t, AssignmentStatusInProgress.CanTransition(AssignmentStatusSubmitted))
	assert.True(t, AssignmentStatusSubmitted.CanTransition(AssignmentStatusGraded))
	assert.False(t, AssignmentStatusAssigned.CanTransition(AssignmentStatusSubmitted))
	assert.False(t, AssignmentStatusGraded.CanTransition(AssignmentStatusAssigned))
}

func TestDeviceCheckPassed(t *testing.T) {
	check := &DeviceCheck{
		Internet:   true,
		Webcam:     true,
		Microphone: true,
		Fullscreen: true,
		CheckedAt:  time.Now(),
	}
	assert.True(t, check.Passed())

	check.Microphone = false
	assert.False(t, check.Passed())

	var nilCheck *DeviceCheck
	assert.False(t, nilCheck.Passed())
}

func TestTrainingProgress(t *testing.T) {
	training := &NewHireTraining{
		AssignedModules:  []string{"m1", "m2", "m3", "m4"},
		CompletedModules: []string{"m1", "m3"},
	}
	assert.Equal(t, 50, training.Progress())
	assert.False(t, training.IsComplete())

	// Completing a module that was never assigned does not count
	training.CompletedModules = append(training.CompletedModules, "m99")
	assert.Equal(t, 50, training.Progress())

	training.CompletedModules = []string{"m1", "m2", "m3", "m4"}
	assert.Equal(t, 100, training.Progress())
	assert.True(t, training.IsComplete())
}

func TestTrainingProgressNoModules(t *testing.T) {
	training := &NewHireTraining{}
	assert.Equal(t, 0, training.Progress())
	assert.False(t, training.IsComplete())
}

func TestProctoringEventTypeValid(t *testing.T) {
	assert.True(t, ProctoringEventTabSwitch.IsValid())
	assert.True(t, ProctoringEventMultipleFaces.IsValid())
	assert.False(t, ProctoringEventType("yawning").IsValid())
}
