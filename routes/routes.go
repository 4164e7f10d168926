package routes

import (
	"net/http"

	"dorax/auth"
	"dorax/experiences"
	"dorax/feedback"
	"dorax/itinerary"
	"dorax/merchants"
	"dorax/middleware"
	"dorax/ratelim"

	"github.com/julienschmidt/httprouter"
)

func AddStaticRoutes(router *httprouter.Router) {
	router.ServeFiles("/static/experiencepic/*filepath", http.Dir("static/experiencepic"))
}

func AddAuthRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	router.POST("/api/auth/register", rateLimiter.Limit(auth.Register))
	router.POST("/api/auth/login", rateLimiter.Limit(auth.Login))
	router.POST("/api/auth/refresh", rateLimiter.Limit(auth.Refresh))
	router.POST("/api/auth/logout", middleware.Authenticate(auth.Logout))
}

func AddExperienceRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	router.GET("/api/experiences", experiences.Discover)
	router.GET("/api/experiences/stats", experiences.Stats)
	router.GET("/api/experience/:id", experiences.GetExperience)

	router.POST("/api/experiences",
		middleware.Chain(
			rateLimiter.Limit,
			middleware.Authenticate,
			middleware.RequireRoles("merchant", "admin"),
		)(experiences.CreateExperience),
	)
	router.PUT("/api/experience/:id",
		middleware.Chain(
			middleware.Authenticate,
			middleware.RequireRoles("merchant", "admin"),
		)(experiences.UpdateExperience),
	)
	router.DELETE("/api/experience/:id",
		middleware.Chain(
			middleware.Authenticate,
			middleware.RequireRoles("merchant", "admin"),
		)(experiences.DeleteExperience),
	)
	router.POST("/api/experience/:id/image",
		middleware.Chain(
			middleware.Authenticate,
			middleware.RequireRoles("merchant", "admin"),
		)(experiences.UploadImage),
	)
}

func AddMerchantRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	router.POST("/api/merchant/onboard", rateLimiter.Limit(merchants.Onboard))
	router.GET("/api/merchant/:id", middleware.OptionalAuth(merchants.GetMerchant))
	router.PUT("/api/merchant/:id",
		middleware.Chain(
			middleware.Authenticate,
			middleware.RequireRoles("merchant", "admin"),
		)(merchants.Update),
	)

	router.GET("/api/merchants",
		middleware.Chain(
			middleware.Authenticate,
			middleware.RequireRoles("admin"),
		)(merchants.ListMerchants),
	)
	router.PUT("/api/merchant/:id/approve",
		middleware.Chain(
			middleware.Authenticate,
			middleware.RequireRoles("admin"),
		)(merchants.Approve),
	)
	router.PUT("/api/merchant/:id/reject",
		middleware.Chain(
			middleware.Authenticate,
			middleware.RequireRoles("admin"),
		)(merchants.Reject),
	)
}

func AddItineraryRoutes(router *httprouter.Router) {
	router.GET("/api/itineraries", itinerary.List)
	router.GET("/api/itinerary/:id", itinerary.Get)
	router.POST("/api/itineraries", middleware.Authenticate(itinerary.Create))
	router.PUT("/api/itinerary/:id", middleware.Authenticate(itinerary.Update))
	router.DELETE("/api/itinerary/:id", middleware.Authenticate(itinerary.Delete))
}

func AddFeedbackRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	router.POST("/api/feedback",
		middleware.Chain(
			rateLimiter.Limit,
			middleware.OptionalAuth,
		)(feedback.Submit),
	)
	router.GET("/api/feedback/experience/:experienceId", feedback.ListForExperience)
}
