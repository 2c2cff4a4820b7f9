package api

import (
	"encoding/json"
	"net/http"
	"time"

	"rentalcar/internal/db"
	apperr "rentalcar/internal/errors"
)

type CreateBookingRequest struct {
	CarID       int64     `json:"car_id"`
	HolderID    string    `json:"holder_id"`
	HolderEmail string    `json:"holder_email"`
	HolderPhone string    `json:"holder_phone"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
}

type CreateBookingResponse struct {
	BookingID       string `json:"booking_id"`
	Status          string `json:"status"`
	TotalPriceCents int64  `json:"total_price_cents"`
	Currency        string `json:"currency"`
}

type AvailabilityResponse struct {
	Available bool `json:"available"`
}

type BusyDate struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type UpdateStatusRequest struct {
	Status db.BookingStatus `json:"status"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	httpErr := apperr.ToHTTP(err)
	writeJSON(w, httpErr.Code, httpErr)
}
