package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"dorax/experiences"
	"dorax/models"
	"dorax/mq"
	"dorax/payment"
	"dorax/rdx"
	"dorax/utils"
)

const settleLockTTL = 5 * time.Second

// ExperienceDirectory is the read-only collaborator supplying price and
// capacity data. The booking core never writes through it. A missing
// experience is reported as experiences.ErrNotFound; any other error is an
// infrastructure failure.
type ExperienceDirectory interface {
	GetExperience(ctx context.Context, id string) (models.Experience, error)
}

// PaymentGateway is the slice of the payment client the booking core uses.
// *payment.Client satisfies it.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amountMajor float64, receipt string) (payment.Order, error)
	VerifyPaymentSignature(orderID, paymentID, signature string) (bool, error)
	KeyID() string
}

// Service owns every booking status transition. It is the sole writer of
// booking records.
type Service struct {
	store       Store
	gateway     PaymentGateway
	experiences ExperienceDirectory

	// lock serializes settlement attempts per booking; returns a release
	// func and whether the lock was acquired.
	lock func(bookingID string) (func(), bool)
	// emit publishes lifecycle events; never blocks the request path.
	emit func(models.BookingEvent)
}

func NewService(store Store, gateway PaymentGateway, experiences ExperienceDirectory) *Service {
	return &Service{
		store:       store,
		gateway:     gateway,
		experiences: experiences,
		lock:        redisSettleLock,
		// Fan-out to WebSocket subscribers happens only in the event worker;
		// emitting here as well would deliver every frame twice.
		emit: func(e models.BookingEvent) {
			mq.Emit(context.Background(), e)
		},
	}
}

func redisSettleLock(bookingID string) (func(), bool) {
	key := "booking_settle:" + bookingID
	acquired, err := rdx.RdxSetNX(key, "1", settleLockTTL)
	if err != nil {
		// Redis being down must not wedge settlements; the conditional write
		// still guarantees correctness, the lock only reduces contention.
		log.Printf("[booking] settle lock unavailable: %v", err)
		return func() {}, true
	}
	if !acquired {
		return func() {}, false
	}
	return func() { rdx.RdxDel(key) }, true
}

// CreateRequest carries the guest-checkout payload for a new booking.
type CreateRequest struct {
	ExperienceID string  `json:"experienceId"`
	UserID       string  `json:"userId,omitempty"`
	Name         string  `json:"name"`
	Email        string  `json:"email,omitempty"`
	Phone        string  `json:"phone"`
	Participants int     `json:"participants,omitempty"`
	TravelDate   string  `json:"travelDate,omitempty"`
	Slot         string  `json:"slot,omitempty"`
	Amount       float64 `json:"amount,omitempty"`
	Notes        string  `json:"notes,omitempty"`
}

// Create validates the request, defaults the amount from the experience price
// and inserts the booking in pending.
func (s *Service) Create(ctx context.Context, req CreateRequest) (models.Booking, error) {
	if req.ExperienceID == "" || req.Name == "" || req.Phone == "" {
		return models.Booking{}, fmt.Errorf("%w: experienceId, name and phone are required", ErrInvalidRequest)
	}
	if req.Participants < 0 || req.Amount < 0 {
		return models.Booking{}, fmt.Errorf("%w: negative participants or amount", ErrInvalidRequest)
	}

	exp, err := s.experiences.GetExperience(ctx, req.ExperienceID)
	if errors.Is(err, experiences.ErrNotFound) {
		return models.Booking{}, fmt.Errorf("experience %s: %w", req.ExperienceID, ErrNotFound)
	}
	if err != nil {
		// directory outage, not a missing experience
		return models.Booking{}, fmt.Errorf("experience lookup: %w", err)
	}

	participants := req.Participants
	if participants == 0 {
		participants = 1
	}
	if exp.MaxParticipants > 0 && participants > exp.MaxParticipants {
		return models.Booking{}, fmt.Errorf("%w: group larger than %d", ErrInvalidRequest, exp.MaxParticipants)
	}

	amount := req.Amount
	if amount == 0 {
		amount = exp.Price * float64(participants)
	}
	if amount <= 0 {
		return models.Booking{}, fmt.Errorf("%w: amount must be positive", ErrInvalidRequest)
	}

	b := models.Booking{
		BookingID:    utils.GetUUID(),
		BookingToken: utils.GenerateRandomString(24),
		ExperienceID: exp.ExperienceID,
		MerchantID:   exp.MerchantID,
		UserID:       req.UserID,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Participants: participants,
		TravelDate:   req.TravelDate,
		Slot:         req.Slot,
		Amount:       amount,
		Currency:     "INR",
		Notes:        req.Notes,
		Status:       models.BookingPending,
		CreatedAt:    time.Now(),
	}

	if err := s.store.Insert(ctx, b); err != nil {
		return models.Booking{}, err
	}

	s.emit(models.BookingEvent{
		Event: "created", BookingID: b.BookingID, MerchantID: b.MerchantID,
		Status: b.Status, At: b.CreatedAt,
	})
	return b, nil
}

// CreateWithOrder is the instant-checkout flow: create the booking and open a
// gateway order for it in one call.
func (s *Service) CreateWithOrder(ctx context.Context, req CreateRequest) (models.Booking, payment.Order, error) {
	b, err := s.Create(ctx, req)
	if err != nil {
		return models.Booking{}, payment.Order{}, err
	}

	order, err := s.gateway.CreateOrder(ctx, b.Amount, "booking_"+b.BookingID)
	if err != nil {
		// Booking stays pending with no order attached; a later retry simply
		// opens a fresh order instead of duplicating the booking.
		return b, payment.Order{}, err
	}

	b, err = s.AttachPaymentOrder(ctx, b.BookingID, order.ID)
	return b, order, err
}

func (s *Service) transition(ctx context.Context, id string, to models.BookingStatus, upd StatusUpdate, event string) (models.Booking, error) {
	upd.Status = to
	b, err := s.store.UpdateStatusIf(ctx, id, sourcesOf(to), upd)
	if err != nil {
		return models.Booking{}, err
	}
	s.emit(models.BookingEvent{
		Event: event, BookingID: b.BookingID, MerchantID: b.MerchantID,
		Status: b.Status, At: time.Now(),
	})
	return b, nil
}

// Confirm is the merchant accepting a pending request.
func (s *Service) Confirm(ctx context.Context, id string) (models.Booking, error) {
	now := time.Now()
	return s.transition(ctx, id, models.BookingConfirmed, StatusUpdate{Timestamp: &now}, "confirmed")
}

// Reject is the merchant declining a pending request. Terminal.
func (s *Service) Reject(ctx context.Context, id, reason string) (models.Booking, error) {
	now := time.Now()
	return s.transition(ctx, id, models.BookingRejected, StatusUpdate{Timestamp: &now, RejectionReason: reason}, "rejected")
}

// Cancel is the requester backing out before service is rendered.
func (s *Service) Cancel(ctx context.Context, id string) (models.Booking, error) {
	now := time.Now()
	return s.transition(ctx, id, models.BookingCancelled, StatusUpdate{Timestamp: &now}, "cancelled")
}

// Complete marks a paid booking as rendered, making it feedback-eligible.
func (s *Service) Complete(ctx context.Context, id string) (models.Booking, error) {
	now := time.Now()
	return s.transition(ctx, id, models.BookingCompleted, StatusUpdate{Timestamp: &now}, "completed")
}

// AttachPaymentOrder stores the gateway order id when a payment attempt
// begins. It is not a status transition; it is only legal while the booking
// can still be paid.
func (s *Service) AttachPaymentOrder(ctx context.Context, id, orderID string) (models.Booking, error) {
	if orderID == "" {
		return models.Booking{}, fmt.Errorf("%w: orderId required", ErrInvalidRequest)
	}
	return s.store.UpdateStatusIf(ctx, id, sourcesOf(models.BookingPaid), StatusUpdate{OrderID: orderID})
}

// VerifyAndSettle checks the gateway signature for a payment result and moves
// the booking to paid on success or failed (retryable) on mismatch. The
// returned bool is the verification verdict; a mismatch is not an error.
// Re-settling an already-paid booking with the same payment id is a no-op
// success.
func (s *Service) VerifyAndSettle(ctx context.Context, id, orderID, paymentID, signature string) (models.Booking, bool, error) {
	if orderID == "" || paymentID == "" || signature == "" {
		return models.Booking{}, false, payment.ErrMissingPaymentFields
	}

	release, acquired := s.lock(id)
	if !acquired {
		return models.Booking{}, false, ErrLocked
	}
	defer release()

	b, err := s.store.FindByID(ctx, id)
	if err != nil {
		return models.Booking{}, false, err
	}

	if b.Status == models.BookingPaid {
		if b.RazorpayPaymentID == paymentID {
			// Already settled by an earlier delivery of the same result.
			return b, true, nil
		}
		return models.Booking{}, false, ErrInvalidState
	}

	// Verification runs against the stored order; a result for some other
	// order cannot settle this booking.
	if b.RazorpayOrderID != "" && b.RazorpayOrderID != orderID {
		return s.markFailed(ctx, id)
	}

	ok, err := s.gateway.VerifyPaymentSignature(orderID, paymentID, signature)
	if err != nil {
		return models.Booking{}, false, err
	}
	if !ok {
		log.Printf("[booking] signature mismatch for booking %s order %s", id, orderID)
		return s.markFailed(ctx, id)
	}

	now := time.Now()
	settled, err := s.store.UpdateStatusIf(ctx, id, sourcesOf(models.BookingPaid), StatusUpdate{
		Status:    models.BookingPaid,
		Timestamp: &now,
		OrderID:   orderID,
		PaymentID: paymentID,
		Signature: signature,
	})
	if err != nil {
		return models.Booking{}, false, err
	}

	s.emit(models.BookingEvent{
		Event: "paid", BookingID: settled.BookingID, MerchantID: settled.MerchantID,
		Status: settled.Status, At: now,
	})
	return settled, true, nil
}

func (s *Service) markFailed(ctx context.Context, id string) (models.Booking, bool, error) {
	now := time.Now()
	failed, err := s.store.UpdateStatusIf(ctx, id, sourcesOf(models.BookingFailed), StatusUpdate{
		Status:    models.BookingFailed,
		Timestamp: &now,
	})
	if err != nil {
		return models.Booking{}, false, err
	}
	s.emit(models.BookingEvent{
		Event: "failed", BookingID: failed.BookingID, MerchantID: failed.MerchantID,
		Status: failed.Status, At: now,
	})
	return failed, false, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (models.Booking, error) {
	return s.store.FindByID(ctx, id)
}

func (s *Service) GetByToken(ctx context.Context, token string) (models.Booking, error) {
	return s.store.FindByToken(ctx, token)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	return s.store.ListByUser(ctx, userID)
}

// ListByMerchant returns the merchant's bookings with guest contact details
// redacted.
func (s *Service) ListByMerchant(ctx context.Context, merchantID string) ([]models.Booking, error) {
	bookings, err := s.store.ListByMerchant(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	return merchantViews(bookings), nil
}

// ListByExperience returns one experience's bookings, redacted like the
// merchant listing.
func (s *Service) ListByExperience(ctx context.Context, experienceID string) ([]models.Booking, error) {
	bookings, err := s.store.ListByExperience(ctx, experienceID)
	if err != nil {
		return nil, err
	}
	return merchantViews(bookings), nil
}

func merchantViews(bookings []models.Booking) []models.Booking {
	views := make([]models.Booking, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, b.MerchantView())
	}
	return views
}
