package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	all := []BookingStatus{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted}

	allowed := map[[2]BookingStatus]bool{
		{StatusPending, StatusConfirmed}:   true,
		{StatusPending, StatusCancelled}:   true,
		{StatusConfirmed, StatusCancelled}: true,
		{StatusConfirmed, StatusCompleted}: true,
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]BookingStatus{from, to}]
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestCanTransition_UnknownStatus(t *testing.T) {
	assert.False(t, CanTransition("bogus", StatusConfirmed))
	assert.False(t, CanTransition(StatusPending, "bogus"))
}

func TestTerminal(t *testing.T) {
	assert.False(t, BookingStatus("bogus").Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusConfirmed.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.True(t, StatusCompleted.Terminal())
}

func TestValid(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.False(t, BookingStatus("active").Valid())
}
