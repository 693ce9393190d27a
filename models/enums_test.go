package models

import "testing"

func TestSlotRequestTransitions(t *testing.T) {
	cases := []struct {
		from    SlotRequestStatus
		to      SlotRequestStatus
		allowed bool
	}{
		{SlotRequestStatusRequested, SlotRequestStatusNegotiating, true},
		{SlotRequestStatusRequested, SlotRequestStatusAccepted, true},
		{SlotRequestStatusRequested, SlotRequestStatusRejected, true},
		{SlotRequestStatusRequested, SlotRequestStatusExpired, true},
		{SlotRequestStatusNegotiating, SlotRequestStatusAccepted, true},
		{SlotRequestStatusNegotiating, SlotRequestStatusRejected, true},
		{SlotRequestStatusNegotiating, SlotRequestStatusExpired, true},
		{SlotRequestStatusNegotiating, SlotRequestStatusRequested, false},
		{SlotRequestStatusAccepted, SlotRequestStatusRejected, false},
		{SlotRequestStatusRejected, SlotRequestStatusAccepted, false},
		{SlotRequestStatusExpired, SlotRequestStatusNegotiating, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: expected allowed=%v, got %v", tc.from, tc.to, tc.allowed, got)
		}
	}
}

func TestSlotRequestTerminalStates(t *testing.T) {
	terminal := []SlotRequestStatus{SlotRequestStatusAccepted, SlotRequestStatusRejected, SlotRequestStatusExpired}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	open := []SlotRequestStatus{SlotRequestStatusRequested, SlotRequestStatusNegotiating}
	for _, s := range open {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestSlotTransitions(t *testing.T) {
	if !SlotStatusActive.CanTransitionTo(SlotStatusCompleted) {
		t.Error("Active -> Completed should be allowed")
	}
	if !SlotStatusActive.CanTransitionTo(SlotStatusCancelled) {
		t.Error("Active -> Cancelled should be allowed")
	}
	if SlotStatusCompleted.CanTransitionTo(SlotStatusActive) {
		t.Error("Completed -> Active should be rejected")
	}
	if SlotStatusCancelled.CanTransitionTo(SlotStatusCompleted) {
		t.Error("Cancelled -> Completed should be rejected")
	}
}

func TestHoldingTransitions(t *testing.T) {
	// Repeated partial releases must stay legal until the holding closes.
	if !HoldingStatusPartialReleased.CanTransitionTo(HoldingStatusPartialReleased) {
		t.Error("PartialReleased -> PartialReleased should be allowed")
	}
	if !HoldingStatusHolding.CanTransitionTo(HoldingStatusRefunded) {
		t.Error("Holding -> Refunded should be allowed")
	}
	if HoldingStatusCompleted.CanTransitionTo(HoldingStatusRefunded) {
		t.Error("Completed -> Refunded should be rejected")
	}
	if HoldingStatusRefunded.CanTransitionTo(HoldingStatusHolding) {
		t.Error("Refunded -> Holding should be rejected")
	}
}

func TestInquiryTransitions(t *testing.T) {
	if !InquiryStatusOpen.CanTransitionTo(InquiryStatusInProgress) {
		t.Error("Open -> InProgress should be allowed")
	}
	if !InquiryStatusResolved.CanTransitionTo(InquiryStatusInProgress) {
		t.Error("Resolved -> InProgress (reopen) should be allowed")
	}
	if InquiryStatusClosed.CanTransitionTo(InquiryStatusOpen) {
		t.Error("Closed is terminal")
	}
}
