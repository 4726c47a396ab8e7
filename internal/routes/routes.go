package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/jortega/verid/internal/auth"
	"github.com/jortega/verid/internal/handlers"
	"github.com/jortega/verid/internal/middleware"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	enrollmentHandler *handlers.EnrollmentHandler,
	adminHandler *handlers.AdminHandler,
	tokenManager *auth.TokenManager,
) {
	authRateLimit := middleware.RateLimitByIP(middleware.DefaultAuthRateLimit())
	enrollRateLimit := middleware.RateLimitByIP(middleware.DefaultEnrollmentRateLimit())

	// Public routes, no authentication required
	router.With(authRateLimit).Post("/auth/register", authHandler.Register)
	router.With(authRateLimit).Post("/auth/login", authHandler.LoginCredential)
	router.With(authRateLimit).Post("/auth/login/biometric", authHandler.LoginBiometric)
	router.With(authRateLimit).Post("/auth/step-up", authHandler.StepUp)
	router.Post("/auth/logout", authHandler.Logout)
	router.Post("/sessions/introspect", authHandler.IntrospectSession)

	// Protected routes, bearer access token required
	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(tokenManager))

		r.Post("/auth/logout-all", authHandler.LogoutAll)
		r.Post("/auth/totp/setup", authHandler.SetupTOTP)
		r.Post("/auth/totp/activate", authHandler.ActivateTOTP)

		r.Group(func(r chi.Router) {
			r.Use(enrollRateLimit)
			r.Post("/biometric/enroll", enrollmentHandler.Enroll)
			r.Put("/biometric/enroll", enrollmentHandler.Supersede)
		})
		r.Get("/biometric/status", enrollmentHandler.Status)
		r.Delete("/biometric/signatures/{signatureID}", enrollmentHandler.Revoke)

		// Operator endpoints
		r.Route("/admin/accounts/{accountID}", func(r chi.Router) {
			r.Post("/unlock", adminHandler.Unlock)
			r.Post("/disable", adminHandler.Disable)
			r.Post("/reactivate", adminHandler.Reactivate)
			r.Get("/attempts", adminHandler.Attempts)
		})
	})
}
