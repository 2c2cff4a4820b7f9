package service

import (
	"fmt"
	"log"
	"time"

	"rentalcar/internal/repository"
)

type JobService struct {
	Repo     *repository.JobRepository
	Bookings *BookingService
}

func NewJobService(repo *repository.JobRepository, bookings *BookingService) *JobService {
	return &JobService{Repo: repo, Bookings: bookings}
}

// CompleteFinishedBookings closes out confirmed rentals whose end time has
// passed. Each one goes through the lifecycle manager so the transition is
// validated and its event emitted.
func (s *JobService) CompleteFinishedBookings() error {
	ids, err := s.Repo.GetConfirmedIDsPastEndTime()
	if err != nil {
		return fmt.Errorf("cron job: failed to get confirmed bookings past end time: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	log.Printf("Cron Job: completing %d finished bookings", len(ids))
	for _, id := range ids {
		if _, err := s.Bookings.CompleteBooking(id); err != nil {
			log.Printf("Cron Job: could not complete booking %s: %v", id, err)
		}
	}
	return nil
}

// ExpireStalePendingBookings cancels pending bookings older than the TTL,
// releasing their slots. A TTL of zero disables the sweep.
func (s *JobService) ExpireStalePendingBookings(ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	ids, err := s.Repo.GetPendingIDsOlderThan(time.Now().UTC().Add(-ttl))
	if err != nil {
		return fmt.Errorf("cron job: failed to get stale pending bookings: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	log.Printf("Cron Job: expiring %d stale pending bookings", len(ids))
	for _, id := range ids {
		if _, err := s.Bookings.CancelBooking(id); err != nil {
			log.Printf("Cron Job: could not cancel booking %s: %v", id, err)
		}
	}
	return nil
}
