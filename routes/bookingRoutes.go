package routes

import (
	"dorax/booking"
	"dorax/db"
	"dorax/experiences"
	"dorax/middleware"
	"dorax/payment"
	"dorax/ratelim"

	"github.com/julienschmidt/httprouter"
)

// AddBookingRoutes wires the booking lifecycle and the payment adapter.
// Payment POSTs go through the Idempotency-Key middleware so client retries
// replay the original response instead of creating duplicates.
func AddBookingRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	gateway := payment.NewClientFromEnv()
	directory := experiences.NewDirectory(db.ExperiencesCollection)
	store := booking.NewMongoStore(db.BookingsCollection)
	svc := booking.NewService(store, gateway, directory)

	bh := booking.NewHandlers(svc, gateway, directory)
	ph := payment.NewHandlers(gateway)

	// lifecycle
	router.POST("/api/booking/request",
		middleware.Chain(
			rateLimiter.Limit,
			middleware.OptionalAuth,
		)(bh.RequestBooking),
	)
	router.POST("/api/booking/create",
		middleware.Chain(
			rateLimiter.Limit,
			middleware.OptionalAuth,
			payment.Idempotent,
		)(bh.CreateBooking),
	)
	router.PUT("/api/booking/:id/confirm",
		middleware.Chain(
			middleware.Authenticate,
			middleware.RequireRoles("merchant", "admin"),
		)(bh.ConfirmBooking),
	)
	router.PUT("/api/booking/:id/reject",
		middleware.Chain(
			middleware.Authenticate,
			middleware.RequireRoles("merchant", "admin"),
		)(bh.RejectBooking),
	)
	router.PUT("/api/booking/:id/cancel", middleware.OptionalAuth(bh.CancelBooking))
	router.PUT("/api/booking/:id/complete",
		middleware.Chain(
			middleware.Authenticate,
			middleware.RequireRoles("merchant", "admin"),
		)(bh.CompleteBooking),
	)

	// reads
	router.GET("/api/booking/:id", middleware.OptionalAuth(bh.GetBooking))
	router.GET("/api/booking/:id/receipt", bh.Receipt)
	router.GET("/api/bookings/confirmed/:ref", bh.GetConfirmation)
	router.GET("/api/bookings/user/:userId", middleware.Authenticate(bh.ListUserBookings))
	router.GET("/api/bookings/merchant/:merchantId",
		middleware.Chain(
			middleware.Authenticate,
			middleware.RequireRoles("merchant", "admin"),
		)(bh.ListMerchantBookings),
	)
	router.GET("/api/bookings/experience/:experienceId",
		middleware.Chain(
			middleware.Authenticate,
			middleware.RequireRoles("merchant", "admin"),
		)(bh.ListExperienceBookings),
	)

	// live status updates
	router.GET("/ws/:scope/:id", booking.HandleWS)

	// payment adapter
	router.POST("/api/payment/create-order",
		middleware.Chain(
			rateLimiter.Limit,
			middleware.OptionalAuth,
			payment.Idempotent,
		)(ph.CreateOrder),
	)
	router.POST("/api/payment/verify",
		middleware.Chain(
			rateLimiter.Limit,
			middleware.OptionalAuth,
		)(bh.VerifyPayment),
	)
	router.GET("/api/payment/:paymentId", middleware.Authenticate(ph.GetPaymentDetails))
}
