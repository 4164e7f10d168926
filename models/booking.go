package models

import "time"

// BookingStatus is the canonical booking lifecycle vocabulary. The state
// machine in the booking package owns which transitions between these are
// legal.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingPaid      BookingStatus = "paid"
	BookingFailed    BookingStatus = "failed"
	BookingCompleted BookingStatus = "completed"
	BookingRejected  BookingStatus = "rejected"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking is a reservation request for an experience slot, carrying its own
// payment linkage and status lifecycle. Contact fields are captured at booking
// time (guest checkout); they are independent of any user account.
type Booking struct {
	BookingID    string        `bson:"bookingid" json:"bookingId"`
	BookingToken string        `bson:"bookingtoken" json:"bookingToken,omitempty"`
	ExperienceID string        `bson:"experienceid" json:"experienceId"`
	MerchantID   string        `bson:"merchantid,omitempty" json:"merchantId,omitempty"`
	UserID       string        `bson:"userid,omitempty" json:"userId,omitempty"`
	Name         string        `bson:"name" json:"name"`
	Email        string        `bson:"email,omitempty" json:"email,omitempty"`
	Phone        string        `bson:"phone" json:"phone"`
	Participants int           `bson:"participants" json:"participants"`
	TravelDate   string        `bson:"traveldate,omitempty" json:"travelDate,omitempty"`
	Slot         string        `bson:"slot,omitempty" json:"slot,omitempty"`
	Amount       float64       `bson:"amount" json:"amount"`
	Currency     string        `bson:"currency" json:"currency"`
	Notes        string        `bson:"notes,omitempty" json:"notes,omitempty"`
	Status       BookingStatus `bson:"status" json:"status"`

	// Gateway linkage; paymentid and signature are both set or both unset.
	RazorpayOrderID   string `bson:"razorpayorderid,omitempty" json:"razorpayOrderId,omitempty"`
	RazorpayPaymentID string `bson:"razorpaypaymentid,omitempty" json:"razorpayPaymentId,omitempty"`
	RazorpaySignature string `bson:"razorpaysignature,omitempty" json:"-"`

	RejectionReason string `bson:"rejectionreason,omitempty" json:"rejectionReason,omitempty"`

	Rating   int    `bson:"rating,omitempty" json:"rating,omitempty"`
	Feedback string `bson:"feedback,omitempty" json:"feedback,omitempty"`

	CreatedAt   time.Time  `bson:"createdat" json:"createdAt"`
	ConfirmedAt *time.Time `bson:"confirmedat,omitempty" json:"confirmedAt,omitempty"`
	RejectedAt  *time.Time `bson:"rejectedat,omitempty" json:"rejectedAt,omitempty"`
	CancelledAt *time.Time `bson:"cancelledat,omitempty" json:"cancelledAt,omitempty"`
	PaidAt      *time.Time `bson:"paidat,omitempty" json:"paidAt,omitempty"`
	FailedAt    *time.Time `bson:"failedat,omitempty" json:"failedAt,omitempty"`
	CompletedAt *time.Time `bson:"completedat,omitempty" json:"completedAt,omitempty"`
}

// MerchantView strips guest contact details down to what a merchant needs to
// run the experience.
func (b Booking) MerchantView() Booking {
	v := b
	v.Email = ""
	v.Notes = ""
	v.BookingToken = ""
	v.RazorpayOrderID = ""
	v.RazorpayPaymentID = ""
	return v
}
