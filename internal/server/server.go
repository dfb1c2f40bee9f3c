package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/royalbikeclub/royalbike/internal/auth"
	"github.com/royalbikeclub/royalbike/internal/email"
	"github.com/royalbikeclub/royalbike/internal/handler"
	"github.com/royalbikeclub/royalbike/internal/middleware"
	"github.com/royalbikeclub/royalbike/internal/store"
	ws "github.com/royalbikeclub/royalbike/internal/websocket"
)

type Server struct {
	db           *sql.DB
	hub          *ws.Hub
	authH        *handler.AuthHandler
	pageH        *handler.PageHandler
	bikeH        *handler.BikeHandler
	tripH        *handler.TripHandler
	adminH       *handler.AdminHandler
	sessionStore *store.SessionStore
	rateLimiter  *middleware.RateLimiter
	logger       *slog.Logger
}

func New(db *sql.DB, emailClient *email.Client, adminEmail string, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	bikeStore := store.NewBikeStore(db)
	tripStore := store.NewTripStore(db)
	orderStore := store.NewOrderStore(db)

	flow := auth.NewFlow(userStore, sessionStore, emailClient, adminEmail, logger.With("component", "auth"))

	return &Server{
		db:           db,
		hub:          hub,
		authH:        handler.NewAuthHandler(flow, sessionStore, logger.With("component", "auth_handler")),
		pageH:        handler.NewPageHandler(bikeStore, orderStore, sessionStore, logger.With("component", "pages")),
		bikeH:        handler.NewBikeHandler(bikeStore, orderStore, emailClient, hub, logger.With("component", "bikes")),
		tripH:        handler.NewTripHandler(tripStore, hub, logger.With("component", "trips")),
		adminH:       handler.NewAdminHandler(bikeStore, tripStore, orderStore, hub, logger.With("component", "admin")),
		sessionStore: sessionStore,
		rateLimiter:  middleware.NewRateLimiter(),
		logger:       logger,
	}
}

// Hub returns the websocket hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("GET /", s.pageH.Home)
	outerMux.HandleFunc("GET /register", s.authH.RegisterPage)
	outerMux.HandleFunc("POST /register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("GET /login", s.authH.LoginPage)
	outerMux.HandleFunc("POST /login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /verify-otp", s.authH.VerifyOTPPage)
	outerMux.HandleFunc("POST /verify-otp", s.rateLimitedHandler(s.authH.VerifyOTP))
	outerMux.HandleFunc("GET /forgot-password", s.authH.ForgotPasswordPage)
	outerMux.HandleFunc("POST /forgot-password", s.rateLimitedHandler(s.authH.ForgotPassword))
	outerMux.HandleFunc("GET /reset-password", s.authH.ResetPasswordPage)
	outerMux.HandleFunc("POST /reset-password", s.authH.ResetPassword)
	outerMux.HandleFunc("GET /logout", s.authH.Logout)
	outerMux.HandleFunc("POST /logout", s.authH.Logout)

	outerMux.HandleFunc("GET /bikes", s.bikeH.Bikes)
	outerMux.HandleFunc("GET /rentals", s.bikeH.Rentals)
	outerMux.HandleFunc("GET /trips", s.tripH.Trips)

	outerMux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir("web/static"))))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Authenticated routes
	authedMux := http.NewServeMux()
	authedMux.HandleFunc("GET /user-dashboard", s.pageH.UserDashboard)
	authedMux.HandleFunc("GET /rent/{id}", s.bikeH.RentForm)
	authedMux.HandleFunc("POST /rent/confirm", s.bikeH.RentConfirm)
	authedMux.HandleFunc("POST /book-trip/{id}", s.tripH.BookTrip)

	requireAuth := middleware.RequireAuth(s.sessionStore)
	outerMux.Handle("/user-dashboard", requireAuth(authedMux))
	outerMux.Handle("/rent/", requireAuth(authedMux))
	outerMux.Handle("/book-trip/", requireAuth(authedMux))

	// Admin routes — authenticated and gated on the session's admin role
	adminMux := http.NewServeMux()
	adminMux.HandleFunc("GET /admin/dashboard", s.adminH.Dashboard)
	adminMux.HandleFunc("GET /admin/add-bike-form", s.adminH.AddBikeForm)
	adminMux.HandleFunc("POST /admin/add-bike", s.adminH.AddBike)
	adminMux.HandleFunc("GET /admin/view-bikes", s.adminH.ViewBikes)
	adminMux.HandleFunc("GET /admin/view-bike/{id}", s.adminH.ViewBike)
	adminMux.HandleFunc("GET /admin/update-bike/{id}", s.adminH.UpdateBikeForm)
	adminMux.HandleFunc("POST /admin/update-bike/{id}", s.adminH.UpdateBike)
	adminMux.HandleFunc("POST /admin/delete-bike/{id}", s.adminH.DeleteBike)
	adminMux.HandleFunc("GET /admin/add-trip", s.adminH.AddTripForm)
	adminMux.HandleFunc("POST /admin/add-trip", s.adminH.AddTrip)
	adminMux.HandleFunc("GET /admin/view-trips", s.adminH.ViewTrips)
	adminMux.HandleFunc("GET /admin/view-trip/{id}", s.adminH.ViewTrip)
	adminMux.HandleFunc("GET /admin/update-trip/{id}", s.adminH.UpdateTripForm)
	adminMux.HandleFunc("POST /admin/update-trip/{id}", s.adminH.UpdateTrip)
	adminMux.HandleFunc("POST /admin/delete-trip/{id}", s.adminH.DeleteTrip)
	adminMux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))

	outerMux.Handle("/admin/", requireAuth(middleware.RequireAdmin(adminMux)))
	outerMux.Handle("/ws", requireAuth(middleware.RequireAdmin(adminMux)))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
