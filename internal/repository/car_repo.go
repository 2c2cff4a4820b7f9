package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"rentalcar/internal/db"
	apperr "rentalcar/internal/errors"
)

type CarRepository struct {
	DB *sql.DB
}

func NewCarRepository(database *sql.DB) *CarRepository {
	return &CarRepository{DB: database}
}

func (r *CarRepository) GetByID(id int64) (*db.Car, error) {
	var c db.Car
	query := `SELECT id, brand, model, year, price_per_day_cents, available, created_at
		FROM cars WHERE id = $1`
	err := r.DB.QueryRow(query, id).Scan(
		&c.ID, &c.Brand, &c.Model, &c.Year, &c.PricePerDayCents, &c.Available, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrCarNotFound
		}
		return nil, fmt.Errorf("error querying car: %w", err)
	}
	return &c, nil
}

func (r *CarRepository) List() ([]db.Car, error) {
	rows, err := r.DB.Query(`SELECT id, brand, model, year, price_per_day_cents, available, created_at
		FROM cars ORDER BY brand, model`)
	if err != nil {
		return nil, fmt.Errorf("error querying cars: %w", err)
	}
	defer rows.Close()

	var cars []db.Car
	for rows.Next() {
		var c db.Car
		if err := rows.Scan(&c.ID, &c.Brand, &c.Model, &c.Year, &c.PricePerDayCents, &c.Available, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning car: %w", err)
		}
		cars = append(cars, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating car rows: %w", err)
	}
	return cars, nil
}

func (r *CarRepository) SetAvailability(id int64, available bool) error {
	res, err := r.DB.Exec(`UPDATE cars SET available = $1 WHERE id = $2`, available, id)
	if err != nil {
		return fmt.Errorf("error updating car availability: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.ErrCarNotFound
	}
	return nil
}
