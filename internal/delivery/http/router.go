package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventmanagement/internal/delivery/http/controllers"
	"eventmanagement/internal/delivery/http/middleware"
	"eventmanagement/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(
	logger *slog.Logger,
	verifier domain.TokenVerifier,
	authController *controllers.AuthController,
	eventController *controllers.EventController,
	attendanceController *controllers.AttendanceController,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Auth
	mux.HandleFunc("POST /auth/register", authController.Register)
	mux.HandleFunc("POST /auth/login", authController.Login)
	mux.HandleFunc("GET /users/me", auth(authController.Me))

	// Events
	mux.HandleFunc("POST /events", auth(eventController.CreateEvent))
	mux.HandleFunc("GET /events", auth(eventController.ListEvents))
	mux.HandleFunc("GET /events/upcoming", auth(eventController.ListUpcoming))
	mux.HandleFunc("GET /events/{eventID}", auth(eventController.GetEvent))
	mux.HandleFunc("PATCH /events/{eventID}", auth(eventController.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", auth(eventController.DeleteEvent))
	mux.HandleFunc("GET /users/me/events/hosting", auth(eventController.ListHosting))
	mux.HandleFunc("GET /users/me/events/attending", auth(eventController.ListAttending))

	// Attendance
	mux.HandleFunc("POST /events/{eventID}/attendance", auth(attendanceController.Respond))
	mux.HandleFunc("PATCH /events/{eventID}/attendance", auth(attendanceController.UpdateStatus))
	mux.HandleFunc("GET /events/{eventID}/attendance", auth(attendanceController.GetStatus))
	mux.HandleFunc("GET /events/{eventID}/attendance/count", auth(attendanceController.GetCount))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
