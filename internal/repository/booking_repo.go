package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/lib/pq"

	"rentalcar/internal/db"
	apperr "rentalcar/internal/errors"
)

const bookingColumns = `id, car_id, holder_id, holder_email, holder_phone,
	start_time, end_time, total_price_cents, currency, status, created_at, updated_at`

type BookingRepository struct {
	DB *sql.DB
}

func NewBookingRepository(database *sql.DB) *BookingRepository {
	return &BookingRepository{DB: database}
}

// Create inserts the booking as a single atomic statement. An exclusion
// violation means another active booking already holds an intersecting
// range; that is the expected loser of a race, not a crash.
func (r *BookingRepository) Create(b *db.Booking) error {
	query := `
		INSERT INTO bookings
		(id, car_id, holder_id, holder_email, holder_phone, start_time, end_time,
		 total_price_cents, currency, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`
	err := r.DB.QueryRow(query,
		b.ID,
		b.CarID,
		b.HolderID,
		b.HolderEmail,
		b.HolderPhone,
		b.StartTime,
		b.EndTime,
		b.TotalPriceCents,
		b.Currency,
		b.Status,
		b.CreatedAt,
		b.UpdatedAt,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23P01" {
			return apperr.ErrBookingConflict
		}
		return fmt.Errorf("error inserting booking: %w", err)
	}
	return nil
}

func (r *BookingRepository) GetByID(id string) (*db.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	b, err := scanBooking(r.DB.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrBookingNotFound
		}
		return nil, fmt.Errorf("error querying booking: %w", err)
	}
	return b, nil
}

// FindOverlapping returns active bookings on the car intersecting the
// half-open range [start, end). Same predicate the exclusion constraint
// enforces: a.start < b.end AND b.start < a.end.
func (r *BookingRepository) FindOverlapping(carID int64, start, end time.Time) ([]db.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE car_id = $1
		  AND status = ANY($2)
		  AND start_time < $4
		  AND end_time > $3
		ORDER BY start_time`
	return r.queryBookings(query, carID, pq.Array(activeStatusStrings()), start, end)
}

func (r *BookingRepository) FindActiveByCar(carID int64) ([]db.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE car_id = $1 AND status = ANY($2)
		ORDER BY start_time`
	return r.queryBookings(query, carID, pq.Array(activeStatusStrings()))
}

// UpdateStatusFrom moves a booking to the new status only if it still holds
// the expected current status. Returns false when no row matched, which the
// caller resolves by re-reading (duplicate webhook or lost race).
func (r *BookingRepository) UpdateStatusFrom(id string, from, to db.BookingStatus) (bool, error) {
	res, err := r.DB.Exec(
		`UPDATE bookings SET status = $1, updated_at = now() WHERE id = $2 AND status = $3`,
		to, id, from,
	)
	if err != nil {
		return false, fmt.Errorf("error updating booking status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *BookingRepository) List(status string, carID int64) ([]db.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if status != "" {
		query += " AND status = $" + strconv.Itoa(idx)
		args = append(args, status)
		idx++
	}
	if carID != 0 {
		query += " AND car_id = $" + strconv.Itoa(idx)
		args = append(args, carID)
		idx++
	}
	query += " ORDER BY start_time DESC"

	return r.queryBookings(query, args...)
}

func (r *BookingRepository) ListByHolder(holderID string) ([]db.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE holder_id = $1 ORDER BY start_time DESC`
	return r.queryBookings(query, holderID)
}

func (r *BookingRepository) queryBookings(query string, args ...interface{}) ([]db.Booking, error) {
	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying bookings: %w", err)
	}
	defer rows.Close()

	var bookings []db.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating booking rows: %w", err)
	}
	return bookings, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*db.Booking, error) {
	var b db.Booking
	err := row.Scan(
		&b.ID, &b.CarID, &b.HolderID, &b.HolderEmail, &b.HolderPhone,
		&b.StartTime, &b.EndTime, &b.TotalPriceCents, &b.Currency, &b.Status,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func activeStatusStrings() []string {
	out := make([]string, len(db.ActiveStatuses))
	for i, s := range db.ActiveStatuses {
		out[i] = string(s)
	}
	return out
}
