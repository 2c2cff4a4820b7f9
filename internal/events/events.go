package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EventBookingCreated   = "BookingCreated"
	EventBookingConfirmed = "BookingConfirmed"
	EventBookingCancelled = "BookingCancelled"
	EventBookingCompleted = "BookingCompleted"
	EventPaymentFailed    = "PaymentFailed"
)

// Envelope is the immutable fact emitted on every booking state transition.
type Envelope struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	BookingID  string          `json:"booking_id"`
	Payload    json.RawMessage `json:"payload"`
}

type BookingPayload struct {
	BookingID       string    `json:"booking_id"`
	CarID           int64     `json:"car_id"`
	HolderID        string    `json:"holder_id"`
	HolderEmail     string    `json:"holder_email,omitempty"`
	HolderPhone     string    `json:"holder_phone,omitempty"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	TotalPriceCents int64     `json:"total_price_cents"`
	Currency        string    `json:"currency"`
	Status          string    `json:"status"`
}

type PaymentFailedPayload struct {
	BookingID   string `json:"booking_id"`
	HolderID    string `json:"holder_id"`
	HolderEmail string `json:"holder_email,omitempty"`
	HolderPhone string `json:"holder_phone,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

func NewEnvelope(eventType, bookingID string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:    uuid.New().String(),
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		BookingID:  bookingID,
		Payload:    raw,
	}, nil
}
