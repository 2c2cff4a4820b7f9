package repository

import (
	"database/sql"
	"fmt"
	"time"

	"rentalcar/internal/db"
)

type JobRepository struct {
	DB *sql.DB
}

func NewJobRepository(database *sql.DB) *JobRepository {
	return &JobRepository{DB: database}
}

// GetConfirmedIDsPastEndTime returns confirmed bookings whose rental period
// is already over. The job service pushes each one through the lifecycle
// manager so the transition stays validated and emits its event.
func (r *JobRepository) GetConfirmedIDsPastEndTime() ([]string, error) {
	return r.queryIDs(`SELECT id FROM bookings WHERE status = $1 AND end_time < now()`, db.StatusConfirmed)
}

func (r *JobRepository) GetPendingIDsOlderThan(before time.Time) ([]string, error) {
	return r.queryIDs(`SELECT id FROM bookings WHERE status = $1 AND created_at < $2`, db.StatusPending, before)
}

func (r *JobRepository) queryIDs(query string, args ...interface{}) ([]string, error) {
	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying booking ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning booking ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rows: %w", err)
	}
	return ids, nil
}
