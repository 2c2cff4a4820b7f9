package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"

	"rentalcar/internal/db"
	apperr "rentalcar/internal/errors"
)

const testWebhookSecret = "whsec_test"

type fakeOutcomes struct {
	bookingByIntent map[string]string
	succeeded       []string
	failed          []string
	refundedIntents []string
	refunded        []string
}

func (f *fakeOutcomes) resolve(intentID string) (string, error) {
	id, ok := f.bookingByIntent[intentID]
	if !ok {
		return "", fmt.Errorf("payment not found for intent %s", intentID)
	}
	return id, nil
}

func (f *fakeOutcomes) HandleSucceeded(intentID string) (string, error) {
	f.succeeded = append(f.succeeded, intentID)
	return f.resolve(intentID)
}

func (f *fakeOutcomes) HandleFailed(intentID string) (string, error) {
	f.failed = append(f.failed, intentID)
	return f.resolve(intentID)
}

func (f *fakeOutcomes) HandleRefunded(intentID string) (string, error) {
	f.refundedIntents = append(f.refundedIntents, intentID)
	return f.resolve(intentID)
}

func (f *fakeOutcomes) Refund(bookingID string) error {
	f.refunded = append(f.refunded, bookingID)
	return nil
}

type fakeLifecycle struct {
	confirmed   []string
	cancelled   []string
	failedMarks []string
	confirmErr  error
	cancelErr   error
}

func (f *fakeLifecycle) ConfirmBooking(id string) (*db.Booking, error) {
	if f.confirmErr != nil {
		return nil, f.confirmErr
	}
	f.confirmed = append(f.confirmed, id)
	return &db.Booking{ID: id, Status: db.StatusConfirmed}, nil
}

func (f *fakeLifecycle) CancelBooking(id string) (*db.Booking, error) {
	if f.cancelErr != nil {
		return nil, f.cancelErr
	}
	f.cancelled = append(f.cancelled, id)
	return &db.Booking{ID: id, Status: db.StatusCancelled}, nil
}

func (f *fakeLifecycle) MarkPaymentFailed(id, reason string) error {
	f.failedMarks = append(f.failedMarks, id+":"+reason)
	return nil
}

func newWebhookFixture() (*StripeWebhookHandler, *fakeOutcomes, *fakeLifecycle) {
	outcomes := &fakeOutcomes{bookingByIntent: map[string]string{"pi_1": "b1"}}
	lifecycle := &fakeLifecycle{}
	return NewStripeWebhookHandler(testWebhookSecret, outcomes, lifecycle), outcomes, lifecycle
}

func eventPayload(eventType, dataObject string) string {
	return fmt.Sprintf(`{"id":"evt_1","object":"event","api_version":%q,"type":%q,"data":{"object":%s}}`,
		stripe.APIVersion, eventType, dataObject)
}

func postSignedWebhook(t *testing.T, h *StripeWebhookHandler, payload string) *httptest.ResponseRecorder {
	t.Helper()
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)

	req := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", strings.NewReader(payload))
	req.Header.Set("Stripe-Signature",
		fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil))))

	w := httptest.NewRecorder()
	h.HandleWebhook(w, req)
	return w
}

func TestStripeWebhook_RejectsBadSignature(t *testing.T) {
	h, _, lifecycle := newWebhookFixture()

	payload := eventPayload("payment_intent.succeeded", `{"id":"pi_1","object":"payment_intent"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", strings.NewReader(payload))
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")

	w := httptest.NewRecorder()
	h.HandleWebhook(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, lifecycle.confirmed)
}

func TestStripeWebhook_SucceededConfirmsBooking(t *testing.T) {
	h, outcomes, lifecycle := newWebhookFixture()

	w := postSignedWebhook(t, h,
		eventPayload("payment_intent.succeeded", `{"id":"pi_1","object":"payment_intent"}`))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"pi_1"}, outcomes.succeeded)
	assert.Equal(t, []string{"b1"}, lifecycle.confirmed)
	assert.Empty(t, outcomes.refunded)
}

// A payment landing on a booking that was cancelled in the meantime is
// unactionable: the callback is acknowledged and the money goes back.
func TestStripeWebhook_SucceededOnDeadBookingRefunds(t *testing.T) {
	h, outcomes, lifecycle := newWebhookFixture()
	lifecycle.confirmErr = apperr.ErrInvalidTransition

	w := postSignedWebhook(t, h,
		eventPayload("payment_intent.succeeded", `{"id":"pi_1","object":"payment_intent"}`))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"b1"}, outcomes.refunded)
}

func TestStripeWebhook_FailedMarksBooking(t *testing.T) {
	h, outcomes, lifecycle := newWebhookFixture()

	w := postSignedWebhook(t, h, eventPayload("payment_intent.payment_failed",
		`{"id":"pi_1","object":"payment_intent","last_payment_error":{"code":"card_declined"}}`))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"pi_1"}, outcomes.failed)
	assert.Equal(t, []string{"b1:card_declined"}, lifecycle.failedMarks)
}

// An out-of-band refund releases the slot: the payment row moves to refunded
// and the booking is cancelled.
func TestStripeWebhook_ChargeRefundedCancelsBooking(t *testing.T) {
	h, outcomes, lifecycle := newWebhookFixture()

	w := postSignedWebhook(t, h, eventPayload("charge.refunded",
		`{"id":"ch_1","object":"charge","payment_intent":"pi_1"}`))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"pi_1"}, outcomes.refundedIntents)
	assert.Equal(t, []string{"b1"}, lifecycle.cancelled)
}

// Cancelling a confirmed booking refunds it, which makes Stripe echo a
// charge.refunded back; the already-cancelled booking is not an error.
func TestStripeWebhook_ChargeRefundedToleratesCancelled(t *testing.T) {
	h, _, lifecycle := newWebhookFixture()
	lifecycle.cancelErr = apperr.ErrInvalidTransition

	w := postSignedWebhook(t, h, eventPayload("charge.refunded",
		`{"id":"ch_1","object":"charge","payment_intent":"pi_1"}`))

	assert.Equal(t, http.StatusOK, w.Code)
}
