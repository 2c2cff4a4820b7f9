package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"rentalcar/internal/events"
)

// NotifierSink delivers lifecycle events to the booking holder over email
// and SMS. Delivery is best-effort: any failure is logged and never reaches
// the booking flow.
type NotifierSink struct{}

func NewNotifierSink() *NotifierSink {
	return &NotifierSink{}
}

func (n *NotifierSink) Publish(_ context.Context, ev events.Envelope) {
	switch ev.EventType {
	case events.EventPaymentFailed:
		var p events.PaymentFailedPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			log.Printf("notifier: bad %s payload for booking %s: %v", ev.EventType, ev.BookingID, err)
			return
		}
		subject := "Payment failed for your booking"
		body := fmt.Sprintf(
			"Hello,\n\nYour payment for booking %s has failed. Please try again.\n\nRentalCar",
			p.BookingID,
		)
		n.send(p.HolderEmail, p.HolderID, p.HolderPhone, subject, body,
			fmt.Sprintf("RentalCar: payment for booking %s failed. Please try again.", shortID(p.BookingID)))
	default:
		var p events.BookingPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			log.Printf("notifier: bad %s payload for booking %s: %v", ev.EventType, ev.BookingID, err)
			return
		}
		subject := fmt.Sprintf("Your RentalCar booking is %s", p.Status)
		body := fmt.Sprintf(
			"Hello,\n\nYour booking %s is now %s.\n\n"+
				"Pick-up: %s\n"+
				"Drop-off: %s\n"+
				"Total: %d.%02d %s\n\n"+
				"Thank you for choosing RentalCar.",
			p.BookingID, p.Status,
			p.StartTime.Format("02 Jan 2006 15:04 MST"),
			p.EndTime.Format("02 Jan 2006 15:04 MST"),
			p.TotalPriceCents/100, p.TotalPriceCents%100, p.Currency,
		)
		n.send(p.HolderEmail, p.HolderID, p.HolderPhone, subject, body,
			fmt.Sprintf("RentalCar: booking %s is now %s. Pick-up %s. Details in your email.",
				shortID(p.BookingID), p.Status, p.StartTime.Format("02/01 15:04")))
	}
}

func (n *NotifierSink) send(email, name, phone, subject, body, sms string) {
	if email != "" {
		if err := SendEmailWithSendGrid(email, name, subject, body); err != nil {
			log.Printf("notifier: email to %s failed: %v", email, err)
		}
	}
	if phone != "" {
		if err := SendSMS(phone, sms); err != nil {
			log.Printf("notifier: SMS to %s failed: %v", phone, err)
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
