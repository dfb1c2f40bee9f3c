package handler

import (
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/royalbikeclub/royalbike/internal/auth"
	"github.com/royalbikeclub/royalbike/internal/model"
	"github.com/royalbikeclub/royalbike/internal/store"
	ws "github.com/royalbikeclub/royalbike/internal/websocket"
)

// ConfirmationMailer sends the rental confirmation. Satisfied by email.Client.
type ConfirmationMailer interface {
	SendBookingConfirmation(order *model.Order, bikeName string) error
}

// BikeHandler serves the bike catalog and the rental flow.
type BikeHandler struct {
	bikeStore  *store.BikeStore
	orderStore *store.OrderStore
	mailer     ConfirmationMailer
	hub        *ws.Hub
	templates  *template.Template
	logger     *slog.Logger
}

func NewBikeHandler(bs *store.BikeStore, os *store.OrderStore, mailer ConfirmationMailer, hub *ws.Hub, logger *slog.Logger) *BikeHandler {
	tmpl := template.Must(template.ParseGlob("web/templates/*.html"))
	return &BikeHandler{
		bikeStore:  bs,
		orderStore: os,
		mailer:     mailer,
		hub:        hub,
		templates:  tmpl,
		logger:     logger,
	}
}

func (h *BikeHandler) Bikes(w http.ResponseWriter, r *http.Request) {
	bikes, err := h.bikeStore.List()
	if err != nil {
		h.logger.Error("list bikes", "error", err)
		http.Error(w, "Error fetching bikes", http.StatusInternalServerError)
		return
	}
	h.templates.ExecuteTemplate(w, "bikes.html", map[string]any{
		"Title": "Bikes — Royal Bike Club",
		"Bikes": bikes,
	})
}

func (h *BikeHandler) Rentals(w http.ResponseWriter, r *http.Request) {
	bikes, err := h.bikeStore.List()
	if err != nil {
		h.logger.Error("list rentals", "error", err)
		http.Error(w, "Error fetching rentals", http.StatusInternalServerError)
		return
	}
	h.templates.ExecuteTemplate(w, "rentals.html", map[string]any{
		"Title":   "Rentals — Royal Bike Club",
		"Rentals": bikes,
	})
}

// RentForm shows the rental form for one bike with a fresh booking reference.
func (h *BikeHandler) RentForm(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "Invalid bike ID", http.StatusBadRequest)
		return
	}

	bike, err := h.bikeStore.GetByID(id)
	if err != nil {
		h.logger.Error("get bike", "error", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	if bike == nil {
		http.Error(w, "Bike not found", http.StatusNotFound)
		return
	}

	h.templates.ExecuteTemplate(w, "rent_bike.html", map[string]any{
		"Title":  "Rent a Bike — Royal Bike Club",
		"Bike":   bike,
		"RentID": store.NewReference(),
	})
}

// RentConfirm books one unit of the bike: the quantity decrement is
// conditional, so the last unit cannot be rented twice.
func (h *BikeHandler) RentConfirm(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	bikeID, err := strconv.ParseInt(r.FormValue("bikeId"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid bike ID", http.StatusBadRequest)
		return
	}
	reference := strings.TrimSpace(r.FormValue("rentId"))
	renterName := strings.TrimSpace(r.FormValue("renterName"))
	renterMail := strings.TrimSpace(r.FormValue("renterMail"))
	paymentMethod := strings.TrimSpace(r.FormValue("paymentMethod"))
	rentalDays, err := strconv.Atoi(r.FormValue("rentalDays"))
	if err != nil || rentalDays < 1 {
		http.Error(w, "Invalid rental days", http.StatusBadRequest)
		return
	}
	if reference == "" {
		reference = store.NewReference()
	}
	if renterName == "" || renterMail == "" || paymentMethod == "" {
		http.Error(w, "All fields are required.", http.StatusBadRequest)
		return
	}

	bike, err := h.bikeStore.GetByID(bikeID)
	if err != nil {
		h.logger.Error("get bike", "error", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	if bike == nil {
		http.Error(w, "Bike is not available", http.StatusNotFound)
		return
	}

	reserved, err := h.bikeStore.DecrementQuantity(bikeID)
	if err != nil {
		h.logger.Error("decrement quantity", "error", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	if !reserved {
		http.Error(w, "Bike is not available", http.StatusNotFound)
		return
	}

	totalCost := bike.RentalPricePerDay * float64(rentalDays)
	order, err := h.orderStore.Create(reference, ac.UserID, bikeID, renterName, renterMail, rentalDays, totalCost, paymentMethod)
	if err != nil {
		h.logger.Error("create order", "error", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	emailSent := true
	if err := h.mailer.SendBookingConfirmation(order, bike.Name); err != nil {
		h.logger.Error("send booking confirmation", "error", err, "order", order.Reference)
		emailSent = false
	}

	h.hub.Broadcast(ws.NewEvent("bike", "rented", bikeID, map[string]any{
		"order_id":  order.ID,
		"reference": order.Reference,
		"quantity":  bike.Quantity - 1,
	}))

	h.templates.ExecuteTemplate(w, "rent_confirmed.html", map[string]any{
		"Title":     "Booking Confirmed — Royal Bike Club",
		"Order":     order,
		"Bike":      bike,
		"EmailSent": emailSent,
	})
}

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}
