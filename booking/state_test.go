package booking

import (
	"testing"

	"dorax/models"
)

var allStatuses = []models.BookingStatus{
	models.BookingPending,
	models.BookingConfirmed,
	models.BookingPaid,
	models.BookingFailed,
	models.BookingCompleted,
	models.BookingRejected,
	models.BookingCancelled,
}

func TestTerminalStatuses(t *testing.T) {
	terminal := map[models.BookingStatus]bool{
		models.BookingRejected:  true,
		models.BookingCancelled: true,
		models.BookingCompleted: true,
	}
	for _, s := range allStatuses {
		if IsTerminal(s) != terminal[s] {
			t.Fatalf("IsTerminal(%s) = %v, want %v", s, IsTerminal(s), terminal[s])
		}
	}
}

func TestNoTransitionOutOfTerminalStatuses(t *testing.T) {
	for _, from := range allStatuses {
		if !IsTerminal(from) {
			continue
		}
		for _, to := range allStatuses {
			if CanTransition(from, to) {
				t.Fatalf("terminal status %s allows transition to %s", from, to)
			}
		}
	}
}

func TestLifecycleTransitions(t *testing.T) {
	cases := []struct {
		from, to models.BookingStatus
		want     bool
	}{
		{models.BookingPending, models.BookingConfirmed, true},
		{models.BookingPending, models.BookingRejected, true},
		{models.BookingPending, models.BookingCancelled, true},
		{models.BookingPending, models.BookingPaid, true},
		{models.BookingPending, models.BookingFailed, true},
		{models.BookingConfirmed, models.BookingPaid, true},
		{models.BookingConfirmed, models.BookingFailed, true},
		{models.BookingConfirmed, models.BookingCancelled, true},
		{models.BookingFailed, models.BookingPaid, true}, // failed payments are retryable
		{models.BookingFailed, models.BookingCancelled, true},
		{models.BookingPaid, models.BookingCompleted, true},

		{models.BookingPaid, models.BookingCancelled, false},
		{models.BookingPaid, models.BookingPending, false},
		{models.BookingConfirmed, models.BookingRejected, false},
		{models.BookingCompleted, models.BookingPaid, false},
		{models.BookingCancelled, models.BookingConfirmed, false},
		{models.BookingRejected, models.BookingPaid, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Fatalf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestSourcesOfMatchesTable(t *testing.T) {
	for _, to := range allStatuses {
		sources := sourcesOf(to)
		for _, from := range sources {
			if !CanTransition(from, to) {
				t.Fatalf("sourcesOf(%s) lists %s but the table forbids it", to, from)
			}
		}
		for _, from := range allStatuses {
			if !CanTransition(from, to) {
				continue
			}
			found := false
			for _, s := range sources {
				if s == from {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("sourcesOf(%s) misses legal source %s", to, from)
			}
		}
	}
}
