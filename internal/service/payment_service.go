package service

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	"rentalcar/internal/db"
	"rentalcar/internal/repository"
)

// PaymentService is the bridge between bookings and the payment processor.
// It implements PaymentBridge for the outbound side and resolves webhook
// callbacks back to booking ids on the inbound side.
type PaymentService struct {
	stripe *StripeService
	repo   *repository.PaymentRepository
}

func NewPaymentService(stripeService *StripeService, repo *repository.PaymentRepository) *PaymentService {
	return &PaymentService{stripe: stripeService, repo: repo}
}

func (s *PaymentService) InitiatePayment(b *db.Booking) error {
	existing, err := s.repo.GetByBookingID(b.ID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if existing != nil && existing.Status == db.PaymentStatusCompleted {
		return fmt.Errorf("booking %s is already paid", b.ID)
	}

	pi, err := s.stripe.CreatePaymentIntent(b.TotalPriceCents, b.Currency, b.ID)
	if err != nil {
		return err
	}

	payment := &db.Payment{
		BookingID:             b.ID,
		StripePaymentIntentID: pi.ID,
		AmountCents:           b.TotalPriceCents,
		Currency:              b.Currency,
		Status:                db.PaymentStatusPending,
	}
	if err := s.repo.Upsert(payment); err != nil {
		return err
	}

	log.Printf("payment intent %s created for booking %s", pi.ID, b.ID)
	return nil
}

func (s *PaymentService) Refund(bookingID string) error {
	payment, err := s.repo.GetByBookingID(bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("no payment recorded for booking %s", bookingID)
		}
		return err
	}
	if payment.Status != db.PaymentStatusCompleted {
		// Nothing was charged; no money to move back.
		return nil
	}
	if err := s.stripe.RefundPaymentIntent(payment.StripePaymentIntentID); err != nil {
		return err
	}
	return s.repo.UpdateStatusByIntentID(payment.StripePaymentIntentID, db.PaymentStatusRefunded)
}

// HandleSucceeded marks the payment row completed and returns the booking it
// belongs to so the caller can confirm it.
func (s *PaymentService) HandleSucceeded(paymentIntentID string) (string, error) {
	payment, err := s.repo.GetByIntentID(paymentIntentID)
	if err != nil {
		return "", fmt.Errorf("payment not found for intent %s: %w", paymentIntentID, err)
	}
	if err := s.repo.UpdateStatusByIntentID(paymentIntentID, db.PaymentStatusCompleted); err != nil {
		return "", err
	}
	return payment.BookingID, nil
}

func (s *PaymentService) HandleFailed(paymentIntentID string) (string, error) {
	payment, err := s.repo.GetByIntentID(paymentIntentID)
	if err != nil {
		return "", fmt.Errorf("payment not found for intent %s: %w", paymentIntentID, err)
	}
	if err := s.repo.UpdateStatusByIntentID(paymentIntentID, db.PaymentStatusFailed); err != nil {
		return "", err
	}
	return payment.BookingID, nil
}

// HandleRefunded records an out-of-band refund (issued from the Stripe
// dashboard or by the processor itself) and returns the booking it belongs to
// so the caller can release the slot.
func (s *PaymentService) HandleRefunded(paymentIntentID string) (string, error) {
	payment, err := s.repo.GetByIntentID(paymentIntentID)
	if err != nil {
		return "", fmt.Errorf("payment not found for intent %s: %w", paymentIntentID, err)
	}
	if err := s.repo.UpdateStatusByIntentID(paymentIntentID, db.PaymentStatusRefunded); err != nil {
		return "", err
	}
	return payment.BookingID, nil
}
