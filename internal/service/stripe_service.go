package service

import (
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/refund"
)

type StripeService struct{}

func NewStripeService(apiKey string) *StripeService {
	stripe.Key = apiKey
	return &StripeService{}
}

// CreatePaymentIntent opens a charge for the booking. The booking id rides
// along as metadata so webhook events can always be traced back.
func (s *StripeService) CreatePaymentIntent(amountCents int64, currency, bookingID string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("booking_id", bookingID)

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("error creating payment intent: %w", err)
	}
	return pi, nil
}

func (s *StripeService) RefundPaymentIntent(paymentIntentID string) error {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentIntentID),
	}
	_, err := refund.New(params)
	if err != nil {
		return fmt.Errorf("error refunding payment intent %s: %w", paymentIntentID, err)
	}
	return nil
}
