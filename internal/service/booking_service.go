package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"rentalcar/internal/db"
	apperr "rentalcar/internal/errors"
	"rentalcar/internal/events"
)

// BookingLedger is the reservation store. The insert must be atomic with
// respect to the no-overlap invariant: Create fails with ErrBookingConflict
// when an active booking already intersects the interval.
type BookingLedger interface {
	Create(b *db.Booking) error
	GetByID(id string) (*db.Booking, error)
	FindOverlapping(carID int64, start, end time.Time) ([]db.Booking, error)
	FindActiveByCar(carID int64) ([]db.Booking, error)
	UpdateStatusFrom(id string, from, to db.BookingStatus) (bool, error)
	List(status string, carID int64) ([]db.Booking, error)
	ListByHolder(holderID string) ([]db.Booking, error)
}

type CarCatalog interface {
	GetByID(id int64) (*db.Car, error)
	List() ([]db.Car, error)
}

// CarAdmin is the admin-only write surface of the catalog: the manual
// kill-switch that disables a car independent of its schedule.
type CarAdmin interface {
	SetAvailability(id int64, available bool) error
}

// PaymentBridge is the outbound port to the payment processor. Failures are
// recoverable: a booking without a payment handle stays pending and payment
// initiation can be retried.
type PaymentBridge interface {
	InitiatePayment(b *db.Booking) error
	Refund(bookingID string) error
}

type CreateBookingRequest struct {
	CarID       int64
	HolderID    string
	HolderEmail string
	HolderPhone string
	StartTime   time.Time
	EndTime     time.Time
}

type BookingService struct {
	ledger   BookingLedger
	cars     CarCatalog
	payments PaymentBridge
	sink     events.Sink
	currency string
}

func NewBookingService(ledger BookingLedger, cars CarCatalog, payments PaymentBridge, sink events.Sink, currency string) *BookingService {
	if currency == "" {
		currency = "usd"
	}
	return &BookingService{
		ledger:   ledger,
		cars:     cars,
		payments: payments,
		sink:     sink,
		currency: currency,
	}
}

// CreateBooking validates the interval, prices the rental and persists the
// booking as pending. The ledger insert is the authoritative overlap guard;
// the availability pre-check only exists to fail fast with a friendly error
// before touching the payment processor.
func (s *BookingService) CreateBooking(req CreateBookingRequest) (*db.Booking, error) {
	if err := ValidateInterval(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	car, err := s.cars.GetByID(req.CarID)
	if err != nil {
		return nil, err
	}
	if !car.Available {
		return nil, apperr.ErrCarUnavailable
	}

	total, err := PriceCents(car.PricePerDayCents, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	overlapping, err := s.ledger.FindOverlapping(req.CarID, req.StartTime, req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("error checking availability: %w", err)
	}
	if len(overlapping) > 0 {
		return nil, apperr.ErrBookingConflict
	}

	now := time.Now().UTC()
	booking := &db.Booking{
		ID:              uuid.New().String(),
		CarID:           req.CarID,
		HolderID:        req.HolderID,
		HolderEmail:     req.HolderEmail,
		HolderPhone:     req.HolderPhone,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		TotalPriceCents: total,
		Currency:        s.currency,
		Status:          db.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.ledger.Create(booking); err != nil {
		return nil, err
	}

	if err := s.payments.InitiatePayment(booking); err != nil {
		// Booking stays pending without a payment handle; initiation can be
		// retried without re-reserving the slot.
		log.Printf("payment initiation failed for booking %s: %v", booking.ID, err)
	}

	s.emit(events.EventBookingCreated, booking)
	return booking, nil
}

// ConfirmBooking moves a pending booking to confirmed. Payment webhooks can
// be delivered more than once, so confirming an already-confirmed booking is
// a no-op and emits nothing.
func (s *BookingService) ConfirmBooking(id string) (*db.Booking, error) {
	booking, _, err := s.transition(id, db.StatusConfirmed, events.EventBookingConfirmed, true)
	return booking, err
}

// CancelBooking cancels a pending or confirmed booking, releasing its slot.
// The refund decision follows the status the update actually moved from, so a
// confirmation racing the cancel still gets its money back.
func (s *BookingService) CancelBooking(id string) (*db.Booking, error) {
	booking, from, err := s.transition(id, db.StatusCancelled, events.EventBookingCancelled, false)
	if err != nil {
		return nil, err
	}

	if from == db.StatusConfirmed {
		if err := s.payments.Refund(id); err != nil {
			log.Printf("refund failed for booking %s: %v", id, err)
		}
	}
	return booking, nil
}

// CompleteBooking closes out a confirmed rental after the car is returned.
func (s *BookingService) CompleteBooking(id string) (*db.Booking, error) {
	booking, _, err := s.transition(id, db.StatusCompleted, events.EventBookingCompleted, false)
	return booking, err
}

// MarkPaymentFailed records a failed payment attempt. The booking stays
// pending: whether to cancel is a human or retry-flow decision, not an
// automatic one.
func (s *BookingService) MarkPaymentFailed(id, reason string) error {
	booking, err := s.ledger.GetByID(id)
	if err != nil {
		return err
	}
	if booking.Status != db.StatusPending {
		// Late or duplicate failure callback; nothing to record.
		return nil
	}

	ev, err := events.NewEnvelope(events.EventPaymentFailed, booking.ID, events.PaymentFailedPayload{
		BookingID:   booking.ID,
		HolderID:    booking.HolderID,
		HolderEmail: booking.HolderEmail,
		HolderPhone: booking.HolderPhone,
		Reason:      reason,
	})
	if err != nil {
		log.Printf("could not build PaymentFailed event for booking %s: %v", booking.ID, err)
		return nil
	}
	s.sink.Publish(context.Background(), ev)
	return nil
}

// UpdateStatus drives an administrative transition through the same state
// machine as the payment callbacks.
func (s *BookingService) UpdateStatus(id string, newStatus db.BookingStatus) (*db.Booking, error) {
	switch newStatus {
	case db.StatusConfirmed:
		return s.ConfirmBooking(id)
	case db.StatusCancelled:
		return s.CancelBooking(id)
	case db.StatusCompleted:
		return s.CompleteBooking(id)
	}
	return nil, apperr.ErrInvalidTransition
}

// IsAvailable reports whether the car has no active booking intersecting
// [start, end). Read-only; the create path re-checks under the ledger's
// atomic insert.
func (s *BookingService) IsAvailable(carID int64, start, end time.Time) (bool, error) {
	if err := ValidateInterval(start, end); err != nil {
		return false, err
	}
	if _, err := s.cars.GetByID(carID); err != nil {
		return false, err
	}
	overlapping, err := s.ledger.FindOverlapping(carID, start, end)
	if err != nil {
		return false, fmt.Errorf("error checking availability: %w", err)
	}
	return len(overlapping) == 0, nil
}

// BusyDates returns the intervals currently held by active bookings.
func (s *BookingService) BusyDates(carID int64) ([]db.Booking, error) {
	if _, err := s.cars.GetByID(carID); err != nil {
		return nil, err
	}
	return s.ledger.FindActiveByCar(carID)
}

func (s *BookingService) GetBooking(id string) (*db.Booking, error) {
	return s.ledger.GetByID(id)
}

func (s *BookingService) ListBookings(status string, carID int64) ([]db.Booking, error) {
	return s.ledger.List(status, carID)
}

func (s *BookingService) ListBookingsByHolder(holderID string) ([]db.Booking, error) {
	return s.ledger.ListByHolder(holderID)
}

func (s *BookingService) GetCar(id int64) (*db.Car, error) {
	return s.cars.GetByID(id)
}

func (s *BookingService) ListCars() ([]db.Car, error) {
	return s.cars.List()
}

// transition performs one validated status move with compare-and-set
// semantics and returns the status the booking actually moved from. With
// idempotent set, finding the booking already on the target status is a no-op
// (duplicate payment callbacks); otherwise it is an illegal move. A lost race
// re-reads and retries from the fresh status, so the returned prior status is
// the one the update really displaced.
func (s *BookingService) transition(id string, to db.BookingStatus, eventType string, idempotent bool) (*db.Booking, db.BookingStatus, error) {
	booking, err := s.ledger.GetByID(id)
	if err != nil {
		return nil, "", err
	}

	for {
		if booking.Status == to {
			if idempotent {
				return booking, to, nil
			}
			return nil, "", apperr.ErrInvalidTransition
		}
		if !db.CanTransition(booking.Status, to) {
			return nil, "", apperr.ErrInvalidTransition
		}

		from := booking.Status
		moved, err := s.ledger.UpdateStatusFrom(id, from, to)
		if err != nil {
			return nil, "", err
		}
		if moved {
			booking.Status = to
			booking.UpdatedAt = time.Now().UTC()
			s.emit(eventType, booking)
			return booking, from, nil
		}

		booking, err = s.ledger.GetByID(id)
		if err != nil {
			return nil, "", err
		}
	}
}

func (s *BookingService) emit(eventType string, booking *db.Booking) {
	ev, err := events.NewEnvelope(eventType, booking.ID, events.BookingPayload{
		BookingID:       booking.ID,
		CarID:           booking.CarID,
		HolderID:        booking.HolderID,
		HolderEmail:     booking.HolderEmail,
		HolderPhone:     booking.HolderPhone,
		StartTime:       booking.StartTime,
		EndTime:         booking.EndTime,
		TotalPriceCents: booking.TotalPriceCents,
		Currency:        booking.Currency,
		Status:          string(booking.Status),
	})
	if err != nil {
		log.Printf("could not build %s event for booking %s: %v", eventType, booking.ID, err)
		return
	}
	s.sink.Publish(context.Background(), ev)
}
