package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"rentalcar/internal/db"
	apperr "rentalcar/internal/errors"
)

// PaymentOutcomes resolves processor callbacks to their booking and keeps the
// payment rows in step with what the processor reports.
type PaymentOutcomes interface {
	HandleSucceeded(paymentIntentID string) (string, error)
	HandleFailed(paymentIntentID string) (string, error)
	HandleRefunded(paymentIntentID string) (string, error)
	Refund(bookingID string) error
}

// BookingLifecycle is the slice of the booking service the webhook drives.
type BookingLifecycle interface {
	ConfirmBooking(id string) (*db.Booking, error)
	CancelBooking(id string) (*db.Booking, error)
	MarkPaymentFailed(id, reason string) error
}

type StripeWebhookHandler struct {
	WebhookSecret string
	payments      PaymentOutcomes
	bookings      BookingLifecycle
}

func NewStripeWebhookHandler(webhookSecret string, payments PaymentOutcomes, bookings BookingLifecycle) *StripeWebhookHandler {
	return &StripeWebhookHandler{
		WebhookSecret: webhookSecret,
		payments:      payments,
		bookings:      bookings,
	}
}

// HandleWebhook relays payment outcomes into the booking lifecycle. Stripe
// retries deliveries, so every branch has to tolerate duplicates, and a
// callback the ledger can no longer act on is answered 200 rather than
// leaving Stripe retrying forever.
func (h *StripeWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	const maxBodyBytes = int64(65536)
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("Error reading webhook body: %v", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	sigHeader := r.Header.Get("Stripe-Signature")
	event, err := webhook.ConstructEvent(payload, sigHeader, h.WebhookSecret)
	if err != nil {
		log.Printf("Webhook signature verification failed: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch event.Type {
	case "payment_intent.succeeded":
		pi, ok := h.parseIntent(w, event.Data.Raw)
		if !ok {
			return
		}
		bookingID, err := h.payments.HandleSucceeded(pi.ID)
		if err != nil {
			log.Printf("Webhook: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if _, err := h.bookings.ConfirmBooking(bookingID); err != nil {
			if !errors.Is(err, apperr.ErrInvalidTransition) {
				log.Printf("Webhook: could not confirm booking %s: %v", bookingID, err)
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			// Payment landed on a booking that is no longer pending
			// (cancelled in the meantime). The ledger wins; send the money
			// back instead of failing the callback.
			log.Printf("Webhook: booking %s not confirmable, refunding", bookingID)
			if err := h.payments.Refund(bookingID); err != nil {
				log.Printf("Webhook: refund failed for booking %s: %v", bookingID, err)
			}
		}

	case "payment_intent.payment_failed":
		pi, ok := h.parseIntent(w, event.Data.Raw)
		if !ok {
			return
		}
		bookingID, err := h.payments.HandleFailed(pi.ID)
		if err != nil {
			log.Printf("Webhook: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		reason := ""
		if pi.LastPaymentError != nil {
			reason = string(pi.LastPaymentError.Code)
		}
		if err := h.bookings.MarkPaymentFailed(bookingID, reason); err != nil {
			log.Printf("Webhook: could not mark payment failed for booking %s: %v", bookingID, err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

	case "charge.refunded":
		var ch stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &ch); err != nil {
			log.Printf("Error parsing charge: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if ch.PaymentIntent == nil || ch.PaymentIntent.ID == "" {
			log.Printf("No payment intent on refunded charge %s", ch.ID)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		bookingID, err := h.payments.HandleRefunded(ch.PaymentIntent.ID)
		if err != nil {
			log.Printf("Webhook: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if _, err := h.bookings.CancelBooking(bookingID); err != nil {
			if !errors.Is(err, apperr.ErrInvalidTransition) {
				log.Printf("Webhook: could not cancel booking %s after refund: %v", bookingID, err)
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			// Cancelling a confirmed booking refunds it, which makes Stripe
			// fire this event back at us. The booking is already released.
		}

	default:
		log.Printf("Unhandled event type: %s", event.Type)
	}

	w.WriteHeader(http.StatusOK)
}

func (h *StripeWebhookHandler) parseIntent(w http.ResponseWriter, raw json.RawMessage) (*stripe.PaymentIntent, bool) {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(raw, &pi); err != nil {
		log.Printf("Error parsing payment_intent: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return nil, false
	}
	if pi.ID == "" {
		log.Printf("No payment intent ID in webhook event")
		w.WriteHeader(http.StatusBadRequest)
		return nil, false
	}
	return &pi, true
}
