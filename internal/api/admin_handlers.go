package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"rentalcar/internal/service"
)

type AdminHandler struct {
	Bookings *service.BookingService
	Cars     service.CarAdmin
}

func NewAdminHandler(bookings *service.BookingService, cars service.CarAdmin) *AdminHandler {
	return &AdminHandler{Bookings: bookings, Cars: cars}
}

func (h *AdminHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	var carID int64
	if v := r.URL.Query().Get("car_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			http.Error(w, "Invalid car_id", http.StatusBadRequest)
			return
		}
		carID = id
	}

	bookings, err := h.Bookings.ListBookings(status, carID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

// UpdateBookingStatus drives an administrative lifecycle transition; illegal
// moves come back as a conflict, not a silent overwrite.
func (h *AdminHandler) UpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	booking, err := h.Bookings.UpdateStatus(id, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *AdminHandler) SetCarAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid car id", http.StatusBadRequest)
		return
	}
	var req struct {
		Available bool `json:"available"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if err := h.Cars.SetAvailability(id, req.Available); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Car availability updated"})
}
