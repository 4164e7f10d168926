package models

import "time"

// Feedback is a post-trip rating left against a paid booking.
type Feedback struct {
	FeedbackID   string    `bson:"feedbackid" json:"feedbackId"`
	BookingID    string    `bson:"bookingid" json:"bookingId"`
	ExperienceID string    `bson:"experienceid" json:"experienceId"`
	MerchantID   string    `bson:"merchantid" json:"merchantId"`
	UserID       string    `bson:"userid,omitempty" json:"userId,omitempty"`
	Rating       int       `bson:"rating" json:"rating"`
	Comment      string    `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt    time.Time `bson:"createdat" json:"createdAt"`
}
