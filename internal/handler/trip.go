package handler

import (
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/royalbikeclub/royalbike/internal/store"
	ws "github.com/royalbikeclub/royalbike/internal/websocket"
)

// TripHandler serves the trip catalog and seat booking.
type TripHandler struct {
	tripStore *store.TripStore
	hub       *ws.Hub
	templates *template.Template
	logger    *slog.Logger
}

func NewTripHandler(ts *store.TripStore, hub *ws.Hub, logger *slog.Logger) *TripHandler {
	tmpl := template.Must(template.ParseGlob("web/templates/*.html"))
	return &TripHandler{
		tripStore: ts,
		hub:       hub,
		templates: tmpl,
		logger:    logger,
	}
}

func (h *TripHandler) Trips(w http.ResponseWriter, r *http.Request) {
	trips, err := h.tripStore.List()
	if err != nil {
		h.logger.Error("list trips", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.templates.ExecuteTemplate(w, "trips.html", map[string]any{
		"Title": "Trips — Royal Bike Club",
		"Trips": trips,
	})
}

// BookTrip reserves seats. The decrement is conditional on enough seats
// remaining, so two bookings cannot both take the last ones.
func (h *TripHandler) BookTrip(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "Invalid trip ID", http.StatusBadRequest)
		return
	}

	seats, err := strconv.Atoi(r.FormValue("seats"))
	if err != nil || seats < 1 {
		http.Error(w, "Invalid seat count", http.StatusBadRequest)
		return
	}

	trip, err := h.tripStore.GetByID(id)
	if err != nil {
		h.logger.Error("get trip", "error", err)
		http.Error(w, "Error booking trip", http.StatusInternalServerError)
		return
	}
	if trip == nil {
		http.Error(w, "Trip not found", http.StatusNotFound)
		return
	}

	booked, err := h.tripStore.BookSeats(id, seats)
	if err != nil {
		h.logger.Error("book seats", "error", err)
		http.Error(w, "Error booking trip", http.StatusInternalServerError)
		return
	}
	if !booked {
		http.Error(w, "Not enough seats available for booking", http.StatusBadRequest)
		return
	}

	h.hub.Broadcast(ws.NewEvent("trip", "booked", id, map[string]any{
		"seats": seats,
	}))

	http.Redirect(w, r, "/trips", http.StatusSeeOther)
}
