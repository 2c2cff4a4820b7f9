package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"rentalcar/internal/db"
)

type PaymentRepository struct {
	DB *sql.DB
}

func NewPaymentRepository(database *sql.DB) *PaymentRepository {
	return &PaymentRepository{DB: database}
}

// Upsert records the intent for a booking. Retrying payment initiation
// replaces the previous non-completed intent row, so a booking never carries
// more than one live payment.
func (r *PaymentRepository) Upsert(p *db.Payment) error {
	existing, err := r.GetByBookingID(p.BookingID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	if existing != nil {
		query := `UPDATE payments
			SET stripe_payment_intent_id = $1, amount_cents = $2, currency = $3, status = $4, updated_at = now()
			WHERE booking_id = $5
			RETURNING id, created_at, updated_at`
		err = r.DB.QueryRow(query,
			p.StripePaymentIntentID, p.AmountCents, p.Currency, p.Status, p.BookingID,
		).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	} else {
		query := `INSERT INTO payments (booking_id, stripe_payment_intent_id, amount_cents, currency, status)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at, updated_at`
		err = r.DB.QueryRow(query,
			p.BookingID, p.StripePaymentIntentID, p.AmountCents, p.Currency, p.Status,
		).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	}
	if err != nil {
		return fmt.Errorf("error saving payment: %w", err)
	}
	return nil
}

func (r *PaymentRepository) GetByBookingID(bookingID string) (*db.Payment, error) {
	return r.getBy(`booking_id = $1`, bookingID)
}

func (r *PaymentRepository) GetByIntentID(intentID string) (*db.Payment, error) {
	return r.getBy(`stripe_payment_intent_id = $1`, intentID)
}

func (r *PaymentRepository) UpdateStatusByIntentID(intentID, status string) error {
	_, err := r.DB.Exec(
		`UPDATE payments SET status = $1, updated_at = now() WHERE stripe_payment_intent_id = $2`,
		status, intentID,
	)
	if err != nil {
		return fmt.Errorf("error updating payment status: %w", err)
	}
	return nil
}

func (r *PaymentRepository) getBy(where string, arg interface{}) (*db.Payment, error) {
	var p db.Payment
	query := `SELECT id, booking_id, stripe_payment_intent_id, amount_cents, currency, status, created_at, updated_at
		FROM payments WHERE ` + where
	err := r.DB.QueryRow(query, arg).Scan(
		&p.ID, &p.BookingID, &p.StripePaymentIntentID, &p.AmountCents, &p.Currency,
		&p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("error querying payment: %w", err)
	}
	return &p, nil
}
