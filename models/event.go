package models

import "time"

// BookingEvent is published on the booking-events channel whenever a booking
// changes status.
type BookingEvent struct {
	Event      string        `json:"event"` // created, confirmed, rejected, cancelled, paid, failed, completed
	BookingID  string        `json:"booking_id"`
	MerchantID string        `json:"merchant_id,omitempty"`
	Status     BookingStatus `json:"status"`
	At         time.Time     `json:"at"`
}
