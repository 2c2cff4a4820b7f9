package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"rentalcar/internal/db"
	apperr "rentalcar/internal/errors"
	"rentalcar/internal/service"
)

type BookingHandler struct {
	Service *service.BookingService
}

func NewBookingHandler(svc *service.BookingService) *BookingHandler {
	return &BookingHandler{Service: svc}
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	booking, err := h.Service.CreateBooking(service.CreateBookingRequest{
		CarID:       req.CarID,
		HolderID:    req.HolderID,
		HolderEmail: req.HolderEmail,
		HolderPhone: req.HolderPhone,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateBookingResponse{
		BookingID:       booking.ID,
		Status:          string(booking.Status),
		TotalPriceCents: booking.TotalPriceCents,
		Currency:        booking.Currency,
	})
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	booking, err := h.Service.GetBooking(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	booking, err := h.Service.CancelBooking(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	carID, err := strconv.ParseInt(r.URL.Query().Get("car_id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid car_id", http.StatusBadRequest)
		return
	}
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeError(w, err)
		return
	}

	available, err := h.Service.IsAvailable(carID, start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AvailabilityResponse{Available: available})
}

func (h *BookingHandler) GetBusyDates(w http.ResponseWriter, r *http.Request) {
	carID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid car id", http.StatusBadRequest)
		return
	}

	bookings, err := h.Service.BusyDates(carID)
	if err != nil {
		writeError(w, err)
		return
	}

	busy := make([]BusyDate, 0, len(bookings))
	for _, b := range bookings {
		busy = append(busy, BusyDate{StartTime: b.StartTime, EndTime: b.EndTime})
	}
	writeJSON(w, http.StatusOK, busy)
}

// ListHolderBookings returns every booking a holder has ever made, terminal
// ones included.
func (h *BookingHandler) ListHolderBookings(w http.ResponseWriter, r *http.Request) {
	holderID := mux.Vars(r)["id"]
	bookings, err := h.Service.ListBookingsByHolder(holderID)
	if err != nil {
		writeError(w, err)
		return
	}
	if bookings == nil {
		bookings = []db.Booking{}
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (h *BookingHandler) ListCars(w http.ResponseWriter, r *http.Request) {
	cars, err := h.Service.ListCars()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cars)
}

func (h *BookingHandler) GetCar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid car id", http.StatusBadRequest)
		return
	}
	car, err := h.Service.GetCar(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, car)
}

func parseTimeRange(r *http.Request) (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start_time"))
	if err != nil {
		return time.Time{}, time.Time{}, apperr.ErrInvalidInterval
	}
	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end_time"))
	if err != nil {
		return time.Time{}, time.Time{}, apperr.ErrInvalidInterval
	}
	return start, end, nil
}
