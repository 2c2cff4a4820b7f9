package db

import "time"

type Car struct {
	ID               int64     `json:"id"`
	Brand            string    `json:"brand"`
	Model            string    `json:"model"`
	Year             int       `json:"year"`
	PricePerDayCents int64     `json:"price_per_day_cents"`
	Available        bool      `json:"available"`
	CreatedAt        time.Time `json:"created_at"`
}

type Booking struct {
	ID              string        `json:"id"`
	CarID           int64         `json:"car_id"`
	HolderID        string        `json:"holder_id"`
	HolderEmail     string        `json:"holder_email"`
	HolderPhone     string        `json:"holder_phone"`
	StartTime       time.Time     `json:"start_time"`
	EndTime         time.Time     `json:"end_time"`
	TotalPriceCents int64         `json:"total_price_cents"`
	Currency        string        `json:"currency"`
	Status          BookingStatus `json:"status"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// Payment is the shadow of a Stripe PaymentIntent. At most one non-failed
// payment exists per booking.
type Payment struct {
	ID                    int64     `json:"id"`
	BookingID             string    `json:"booking_id"`
	StripePaymentIntentID string    `json:"stripe_payment_intent_id"`
	AmountCents           int64     `json:"amount_cents"`
	Currency              string    `json:"currency"`
	Status                string    `json:"status"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

type AdminUser struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
