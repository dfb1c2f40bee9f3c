package handler

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/royalbikeclub/royalbike/internal/auth"
	"github.com/royalbikeclub/royalbike/internal/middleware"
	"github.com/royalbikeclub/royalbike/internal/model"
	"github.com/royalbikeclub/royalbike/internal/store"
)

// PageHandler renders the public pages and the user dashboard.
type PageHandler struct {
	bikeStore    *store.BikeStore
	orderStore   *store.OrderStore
	sessionStore *store.SessionStore
	templates    *template.Template
	logger       *slog.Logger
}

func NewPageHandler(bs *store.BikeStore, os *store.OrderStore, ss *store.SessionStore, logger *slog.Logger) *PageHandler {
	tmpl := template.Must(template.ParseGlob("web/templates/*.html"))
	return &PageHandler{
		bikeStore:    bs,
		orderStore:   os,
		sessionStore: ss,
		templates:    tmpl,
		logger:       logger,
	}
}

// currentUser resolves the optional authenticated identity for public pages
// that render differently when logged in.
func (h *PageHandler) currentUser(r *http.Request) *model.Session {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	sess, err := h.sessionStore.GetByToken(cookie.Value)
	if err != nil || sess == nil || !sess.Authenticated() {
		return nil
	}
	return sess
}

func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	featured, err := h.bikeStore.ListFeatured()
	if err != nil {
		h.logger.Error("list featured bikes", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.templates.ExecuteTemplate(w, "index.html", map[string]any{
		"Title":         "Royal Bike Club",
		"FeaturedBikes": featured,
		"User":          h.currentUser(r),
	})
}

func (h *PageHandler) UserDashboard(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	featured, err := h.bikeStore.ListFeatured()
	if err != nil {
		h.logger.Error("list featured bikes", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	orders, err := h.orderStore.ListByUser(ac.UserID)
	if err != nil {
		h.logger.Error("list user orders", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.templates.ExecuteTemplate(w, "index.html", map[string]any{
		"Title":         "Royal Bike Club",
		"FeaturedBikes": featured,
		"User":          ac,
		"Orders":        orders,
	})
}
