package handler

import (
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/royalbikeclub/royalbike/internal/store"
	ws "github.com/royalbikeclub/royalbike/internal/websocket"
)

const dateLayout = "2006-01-02"

// AdminHandler serves the inventory management panel.
type AdminHandler struct {
	bikeStore  *store.BikeStore
	tripStore  *store.TripStore
	orderStore *store.OrderStore
	hub        *ws.Hub
	templates  *template.Template
	logger     *slog.Logger
}

func NewAdminHandler(bs *store.BikeStore, ts *store.TripStore, os *store.OrderStore, hub *ws.Hub, logger *slog.Logger) *AdminHandler {
	tmpl := template.Must(template.ParseGlob("web/templates/admin_*.html"))
	return &AdminHandler{
		bikeStore:  bs,
		tripStore:  ts,
		orderStore: os,
		hub:        hub,
		templates:  tmpl,
		logger:     logger,
	}
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	bikes, err := h.bikeStore.List()
	if err != nil {
		h.logger.Error("list bikes", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	trips, err := h.tripStore.List()
	if err != nil {
		h.logger.Error("list trips", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	orders, err := h.orderStore.List()
	if err != nil {
		h.logger.Error("list orders", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.templates.ExecuteTemplate(w, "admin_dashboard.html", map[string]any{
		"Title":  "Admin Dashboard — Royal Bike Club",
		"Bikes":  bikes,
		"Trips":  trips,
		"Orders": orders,
	})
}

// --- Bikes ---

func (h *AdminHandler) AddBikeForm(w http.ResponseWriter, r *http.Request) {
	h.templates.ExecuteTemplate(w, "admin_add_bike.html", map[string]any{})
}

// bikeForm extracts and validates the bike fields shared by add and update.
func bikeForm(r *http.Request) (name, bikeType string, sellingPrice, rentalPrice float64, quantity int, imageURL string, ok bool) {
	name = strings.TrimSpace(r.FormValue("name"))
	bikeType = strings.TrimSpace(r.FormValue("type"))
	imageURL = strings.TrimSpace(r.FormValue("imageUrl"))

	var err error
	sellingPrice, err = strconv.ParseFloat(r.FormValue("sellingPrice"), 64)
	if err != nil || sellingPrice < 0 {
		return
	}
	rentalPrice, err = strconv.ParseFloat(r.FormValue("rentalPricePerDay"), 64)
	if err != nil || rentalPrice < 0 {
		return
	}
	quantity, err = strconv.Atoi(r.FormValue("quantity"))
	if err != nil || quantity < 0 {
		return
	}

	ok = name != "" && bikeType != "" && imageURL != ""
	return
}

func (h *AdminHandler) AddBike(w http.ResponseWriter, r *http.Request) {
	name, bikeType, sellingPrice, rentalPrice, quantity, imageURL, ok := bikeForm(r)
	if !ok {
		h.templates.ExecuteTemplate(w, "admin_add_bike.html", map[string]any{
			"Message": "All fields are required.",
		})
		return
	}

	bike, err := h.bikeStore.Create(name, bikeType, sellingPrice, rentalPrice, quantity, imageURL)
	if err != nil {
		h.logger.Error("add bike", "error", err)
		h.templates.ExecuteTemplate(w, "admin_add_bike.html", map[string]any{
			"Message": "Failed to add bike.",
		})
		return
	}

	if r.FormValue("featured") != "" {
		if err := h.bikeStore.SetFeatured(bike.ID, true); err != nil {
			h.logger.Error("set featured", "error", err)
		}
	}

	h.hub.Broadcast(ws.NewEvent("bike", "created", bike.ID, nil))
	http.Redirect(w, r, "/admin/view-bikes", http.StatusSeeOther)
}

func (h *AdminHandler) ViewBikes(w http.ResponseWriter, r *http.Request) {
	bikes, err := h.bikeStore.List()
	if err != nil {
		h.logger.Error("list bikes", "error", err)
		http.Error(w, "Error fetching bikes", http.StatusInternalServerError)
		return
	}
	h.templates.ExecuteTemplate(w, "admin_view_bikes.html", map[string]any{
		"Title": "Bikes — Admin",
		"Bikes": bikes,
	})
}

func (h *AdminHandler) ViewBike(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "Invalid Bike ID", http.StatusBadRequest)
		return
	}
	bike, err := h.bikeStore.GetByID(id)
	if err != nil {
		h.logger.Error("get bike", "error", err)
		http.Error(w, "Error fetching bike details", http.StatusInternalServerError)
		return
	}
	if bike == nil {
		http.Error(w, "Bike not found", http.StatusNotFound)
		return
	}
	h.templates.ExecuteTemplate(w, "admin_view_bike.html", map[string]any{
		"Title": bike.Name + " — Admin",
		"Bike":  bike,
	})
}

func (h *AdminHandler) UpdateBikeForm(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "Invalid Bike ID", http.StatusBadRequest)
		return
	}
	bike, err := h.bikeStore.GetByID(id)
	if err != nil {
		h.logger.Error("get bike", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if bike == nil {
		http.Error(w, "Bike not found", http.StatusNotFound)
		return
	}
	h.templates.ExecuteTemplate(w, "admin_edit_bike.html", map[string]any{
		"Title": "Edit " + bike.Name + " — Admin",
		"Bike":  bike,
	})
}

func (h *AdminHandler) UpdateBike(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "Invalid Bike ID", http.StatusBadRequest)
		return
	}
	existing, err := h.bikeStore.GetByID(id)
	if err != nil {
		h.logger.Error("get bike", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if existing == nil {
		http.Error(w, "Bike not found", http.StatusNotFound)
		return
	}

	name, bikeType, sellingPrice, rentalPrice, quantity, imageURL, ok := bikeForm(r)
	if imageURL == "" {
		// Keep the current image when the form leaves it blank
		imageURL = existing.ImageURL
		ok = name != "" && bikeType != ""
	}
	if !ok {
		http.Error(w, "All fields are required.", http.StatusBadRequest)
		return
	}

	if _, err := h.bikeStore.Update(id, name, bikeType, sellingPrice, rentalPrice, quantity, imageURL); err != nil {
		h.logger.Error("update bike", "error", err)
		http.Error(w, "Error updating bike", http.StatusInternalServerError)
		return
	}
	if err := h.bikeStore.SetFeatured(id, r.FormValue("featured") != ""); err != nil {
		h.logger.Error("set featured", "error", err)
	}

	h.hub.Broadcast(ws.NewEvent("bike", "updated", id, nil))
	http.Redirect(w, r, "/admin/view-bikes", http.StatusSeeOther)
}

func (h *AdminHandler) DeleteBike(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "Invalid bike ID format", http.StatusBadRequest)
		return
	}
	if err := h.bikeStore.Delete(id); err != nil {
		h.logger.Error("delete bike", "error", err)
		http.Error(w, "An error occurred while deleting the bike.", http.StatusInternalServerError)
		return
	}

	h.hub.Broadcast(ws.NewEvent("bike", "deleted", id, nil))
	http.Redirect(w, r, "/admin/view-bikes", http.StatusSeeOther)
}

// --- Trips ---

func (h *AdminHandler) AddTripForm(w http.ResponseWriter, r *http.Request) {
	h.templates.ExecuteTemplate(w, "admin_add_trip.html", map[string]any{})
}

func tripForm(r *http.Request) (title, description string, price float64, imageURL string, startDate, endDate time.Time, totalSeats, seatsLeft int, ok bool) {
	title = strings.TrimSpace(r.FormValue("title"))
	description = strings.TrimSpace(r.FormValue("description"))
	imageURL = strings.TrimSpace(r.FormValue("imageUrl"))

	var err error
	price, err = strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil || price < 0 {
		return
	}
	startDate, err = time.Parse(dateLayout, r.FormValue("startDate"))
	if err != nil {
		return
	}
	endDate, err = time.Parse(dateLayout, r.FormValue("endDate"))
	if err != nil {
		return
	}
	totalSeats, err = strconv.Atoi(r.FormValue("totalSeats"))
	if err != nil || totalSeats < 0 {
		return
	}

	// Optional: defaults to totalSeats when omitted
	seatsLeft = -1
	if v := r.FormValue("seatsLeft"); v != "" {
		seatsLeft, err = strconv.Atoi(v)
		if err != nil || seatsLeft < 0 {
			return
		}
	}

	ok = title != "" && description != "" && imageURL != ""
	return
}

func (h *AdminHandler) AddTrip(w http.ResponseWriter, r *http.Request) {
	title, description, price, imageURL, startDate, endDate, totalSeats, seatsLeft, ok := tripForm(r)
	if !ok {
		h.templates.ExecuteTemplate(w, "admin_add_trip.html", map[string]any{
			"Message": "All fields are required.",
		})
		return
	}

	trip, err := h.tripStore.Create(title, description, price, imageURL, startDate, endDate, totalSeats, seatsLeft)
	if err != nil {
		h.logger.Error("add trip", "error", err)
		h.templates.ExecuteTemplate(w, "admin_add_trip.html", map[string]any{
			"Message": "Failed to add trip. Please try again.",
		})
		return
	}

	h.hub.Broadcast(ws.NewEvent("trip", "created", trip.ID, nil))
	http.Redirect(w, r, "/admin/view-trips", http.StatusSeeOther)
}

func (h *AdminHandler) ViewTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := h.tripStore.List()
	if err != nil {
		h.logger.Error("list trips", "error", err)
		http.Error(w, "Error fetching trips", http.StatusInternalServerError)
		return
	}
	h.templates.ExecuteTemplate(w, "admin_view_trips.html", map[string]any{
		"Title": "Trips — Admin",
		"Trips": trips,
	})
}

func (h *AdminHandler) ViewTrip(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "Invalid trip ID", http.StatusBadRequest)
		return
	}
	trip, err := h.tripStore.GetByID(id)
	if err != nil {
		h.logger.Error("get trip", "error", err)
		http.Error(w, "Error fetching trip details", http.StatusInternalServerError)
		return
	}
	if trip == nil {
		http.Error(w, "Trip not found", http.StatusNotFound)
		return
	}
	h.templates.ExecuteTemplate(w, "admin_view_trip.html", map[string]any{
		"Title": trip.Title + " — Admin",
		"Trip":  trip,
	})
}

func (h *AdminHandler) UpdateTripForm(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "Invalid trip ID", http.StatusBadRequest)
		return
	}
	trip, err := h.tripStore.GetByID(id)
	if err != nil {
		h.logger.Error("get trip", "error", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	if trip == nil {
		http.Error(w, "Trip not found", http.StatusNotFound)
		return
	}
	h.templates.ExecuteTemplate(w, "admin_edit_trip.html", map[string]any{
		"Title": "Edit " + trip.Title + " — Admin",
		"Trip":  trip,
	})
}

func (h *AdminHandler) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "Invalid trip ID", http.StatusBadRequest)
		return
	}
	existing, err := h.tripStore.GetByID(id)
	if err != nil {
		h.logger.Error("get trip", "error", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	if existing == nil {
		http.Error(w, "Trip not found", http.StatusNotFound)
		return
	}

	title, description, price, imageURL, startDate, endDate, totalSeats, seatsLeft, ok := tripForm(r)
	if !ok {
		http.Error(w, "All fields are required.", http.StatusBadRequest)
		return
	}
	if seatsLeft < 0 {
		seatsLeft = existing.SeatsLeft
	}

	if _, err := h.tripStore.Update(id, title, description, price, imageURL, startDate, endDate, totalSeats, seatsLeft); err != nil {
		h.logger.Error("update trip", "error", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	h.hub.Broadcast(ws.NewEvent("trip", "updated", id, nil))
	http.Redirect(w, r, "/admin/view-trips", http.StatusSeeOther)
}

func (h *AdminHandler) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "Invalid trip ID format", http.StatusBadRequest)
		return
	}
	if err := h.tripStore.Delete(id); err != nil {
		h.logger.Error("delete trip", "error", err)
		http.Error(w, "An error occurred while deleting the trip.", http.StatusInternalServerError)
		return
	}

	h.hub.Broadcast(ws.NewEvent("trip", "deleted", id, nil))
	http.Redirect(w, r, "/admin/view-trips", http.StatusSeeOther)
}
