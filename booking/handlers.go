package booking

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"dorax/models"
	"dorax/payment"
	"dorax/utils"

	"github.com/julienschmidt/httprouter"
)

// Handlers exposes the booking lifecycle over HTTP.
type Handlers struct {
	Svc         *Service
	Gateway     PaymentGateway
	Experiences ExperienceDirectory
}

func NewHandlers(svc *Service, gateway PaymentGateway, experiences ExperienceDirectory) *Handlers {
	return &Handlers{Svc: svc, Gateway: gateway, Experiences: experiences}
}

func respondErr(w http.ResponseWriter, err error) {
	var gwErr *payment.GatewayError
	switch {
	case errors.Is(err, ErrNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidState):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, payment.ErrInvalidAmount),
		errors.Is(err, payment.ErrMissingPaymentFields):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrLocked):
		utils.RespondWithError(w, http.StatusTooManyRequests, "settlement in progress, retry shortly")
	case errors.As(err, &gwErr):
		log.Printf("[booking] gateway failure: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "payment gateway error")
	default:
		log.Printf("[booking] internal error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "internal error")
	}
}

// RequestBooking handles POST /api/booking/request: the user asks a merchant
// to host them; payment happens after the merchant confirms.
func (h *Handlers) RequestBooking(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.UserID == "" {
		req.UserID = utils.GetUserIDFromRequest(r)
	}

	b, err := h.Svc.Create(r.Context(), req)
	if err != nil {
		respondErr(w, err)
		return
	}

	resp := utils.M{
		"message":      "Booking requested successfully",
		"bookingId":    b.BookingID,
		"bookingToken": b.BookingToken,
		"status":       b.Status,
	}
	if exp, err := h.Experiences.GetExperience(r.Context(), b.ExperienceID); err == nil {
		resp["experience"] = utils.M{"title": exp.Title, "area": exp.Area}
	}
	utils.RespondWithJSON(w, http.StatusCreated, resp)
}

// CreateBooking handles POST /api/booking/create: instant checkout — create
// the booking and a gateway order in one go.
func (h *Handlers) CreateBooking(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.UserID == "" {
		req.UserID = utils.GetUserIDFromRequest(r)
	}

	b, order, err := h.Svc.CreateWithOrder(r.Context(), req)
	if err != nil {
		if b.BookingID != "" {
			// The booking was persisted; only the gateway order failed. The
			// client must get the ids back so its retry pays for this booking
			// instead of creating a second one.
			log.Printf("[booking] order creation failed for %s: %v", b.BookingID, err)
			utils.RespondWithJSON(w, http.StatusInternalServerError, utils.M{
				"error":        "payment gateway error",
				"bookingId":    b.BookingID,
				"bookingToken": b.BookingToken,
				"status":       b.Status,
				"message":      "Booking saved; the payment order could not be opened. Retry payment for this booking.",
			})
			return
		}
		respondErr(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"bookingId":    b.BookingID,
		"bookingToken": b.BookingToken,
		"status":       b.Status,
		"order": utils.M{
			"id":       order.ID,
			"amount":   order.Amount,
			"currency": order.Currency,
			"key_id":   h.Gateway.KeyID(),
		},
	})
}

// ConfirmBooking handles PUT /api/booking/:id/confirm (merchant).
func (h *Handlers) ConfirmBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	b, err := h.Svc.Confirm(r.Context(), ps.ByName("id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message":     "Booking confirmed by merchant",
		"bookingId":   b.BookingID,
		"status":      b.Status,
		"confirmedAt": b.ConfirmedAt,
		"nextStep":    "User will proceed to payment",
	})
}

// RejectBooking handles PUT /api/booking/:id/reject (merchant).
func (h *Handlers) RejectBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Reason string `json:"reason"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	b, err := h.Svc.Reject(r.Context(), ps.ByName("id"), body.Reason)
	if err != nil {
		respondErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message":   "Booking rejected",
		"bookingId": b.BookingID,
		"status":    b.Status,
	})
}

// CancelBooking handles PUT /api/booking/:id/cancel (requester).
func (h *Handlers) CancelBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	b, err := h.Svc.Cancel(r.Context(), ps.ByName("id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message": "Booking cancelled successfully",
		"booking": b,
	})
}

// CompleteBooking handles PUT /api/booking/:id/complete (merchant, after the
// experience is rendered).
func (h *Handlers) CompleteBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	b, err := h.Svc.Complete(r.Context(), ps.ByName("id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message":   "Booking completed",
		"bookingId": b.BookingID,
		"status":    b.Status,
	})
}

// VerifyPayment handles POST /api/payment/verify: validate the gateway's
// signature and settle the booking.
func (h *Handlers) VerifyPayment(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		BookingID string `json:"bookingId"`
		OrderID   string `json:"razorpay_order_id"`
		PaymentID string `json:"razorpay_payment_id"`
		Signature string `json:"razorpay_signature"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if body.BookingID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "bookingId is required")
		return
	}

	b, verified, err := h.Svc.VerifyAndSettle(r.Context(), body.BookingID, body.OrderID, body.PaymentID, body.Signature)
	if err != nil {
		respondErr(w, err)
		return
	}
	if !verified {
		utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{
			"verified": false,
			"message":  "Payment verification failed - Signature mismatch",
		})
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"verified": true,
		"message":  "Payment verified",
		"booking":  b,
	})
}

// GetBooking handles GET /api/booking/:id.
func (h *Handlers) GetBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	b, err := h.Svc.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, b)
}

// GetConfirmation handles GET /api/bookings/confirmed/:ref where ref is the
// booking id or the public booking token.
func (h *Handlers) GetConfirmation(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ref := ps.ByName("ref")
	b, err := h.Svc.GetByID(r.Context(), ref)
	if errors.Is(err, ErrNotFound) {
		b, err = h.Svc.GetByToken(r.Context(), ref)
	}
	if err != nil {
		respondErr(w, err)
		return
	}

	if b.Status != models.BookingPaid && b.Status != models.BookingCompleted {
		utils.RespondWithError(w, http.StatusBadRequest, "Booking not confirmed. Payment pending.")
		return
	}

	resp := utils.M{
		"success":            true,
		"bookingId":          b.BookingID,
		"confirmationNumber": ConfirmationNumber(b.BookingID),
		"name":               b.Name,
		"email":              b.Email,
		"phone":              b.Phone,
		"participants":       b.Participants,
		"amount":             b.Amount,
		"currency":           b.Currency,
		"status":             b.Status,
		"createdAt":          b.CreatedAt,
		"razorpayPaymentId":  b.RazorpayPaymentID,
		"message":            "Your booking is confirmed! Check your email for details.",
	}
	if exp, err := h.Experiences.GetExperience(r.Context(), b.ExperienceID); err == nil {
		resp["experience"] = utils.M{
			"title":        exp.Title,
			"area":         exp.Area,
			"meetingPoint": exp.MeetingPoint,
			"duration":     exp.Duration,
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ListUserBookings handles GET /api/bookings/user/:userId.
func (h *Handlers) ListUserBookings(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bookings, err := h.Svc.ListByUser(r.Context(), ps.ByName("userId"))
	if err != nil {
		respondErr(w, err)
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	utils.RespondWithJSON(w, http.StatusOK, bookings)
}

// ListMerchantBookings handles GET /api/bookings/merchant/:merchantId with
// guest contact details redacted.
func (h *Handlers) ListMerchantBookings(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bookings, err := h.Svc.ListByMerchant(r.Context(), ps.ByName("merchantId"))
	if err != nil {
		respondErr(w, err)
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	utils.RespondWithJSON(w, http.StatusOK, bookings)
}

// ListExperienceBookings handles GET /api/bookings/experience/:experienceId
// (merchant), redacted like the merchant listing.
func (h *Handlers) ListExperienceBookings(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bookings, err := h.Svc.ListByExperience(r.Context(), ps.ByName("experienceId"))
	if err != nil {
		respondErr(w, err)
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	utils.RespondWithJSON(w, http.StatusOK, bookings)
}

// ConfirmationNumber derives the human-facing reference from the booking id.
func ConfirmationNumber(bookingID string) string {
	clean := strings.ReplaceAll(bookingID, "-", "")
	if len(clean) > 8 {
		clean = clean[len(clean)-8:]
	}
	return "CONF_" + strings.ToUpper(clean)
}
