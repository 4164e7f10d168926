package booking

import (
	"errors"

	"dorax/models"
)

var (
	ErrNotFound       = errors.New("booking not found")
	ErrInvalidState   = errors.New("transition not allowed from current status")
	ErrInvalidRequest = errors.New("missing or invalid fields")
	ErrLocked         = errors.New("settlement already in progress")
)

// transitions is the exhaustive legal-move table. Statuses absent as keys are
// terminal.
var transitions = map[models.BookingStatus][]models.BookingStatus{
	models.BookingPending: {
		models.BookingConfirmed,
		models.BookingRejected,
		models.BookingCancelled,
		models.BookingPaid,
		models.BookingFailed,
	},
	models.BookingConfirmed: {
		models.BookingPaid,
		models.BookingFailed,
		models.BookingCancelled,
	},
	// failed is retryable: another verification attempt may still settle it
	models.BookingFailed: {
		models.BookingPaid,
		models.BookingFailed,
		models.BookingCancelled,
	},
	models.BookingPaid: {
		models.BookingCompleted,
	},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to models.BookingStatus) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves the given status.
func IsTerminal(s models.BookingStatus) bool {
	return len(transitions[s]) == 0
}

// sourcesOf lists every status from which the target is reachable; transition
// filters are built from this so the guard and the table cannot drift apart.
func sourcesOf(to models.BookingStatus) []models.BookingStatus {
	var from []models.BookingStatus
	for s, outs := range transitions {
		for _, t := range outs {
			if t == to {
				from = append(from, s)
				break
			}
		}
	}
	return from
}
