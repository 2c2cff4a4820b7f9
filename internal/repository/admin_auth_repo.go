package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"rentalcar/internal/db"
)

type AdminAuthRepository struct {
	DB *sql.DB
}

func NewAdminAuthRepository(database *sql.DB) *AdminAuthRepository {
	return &AdminAuthRepository{DB: database}
}

func (r *AdminAuthRepository) GetByEmail(email string) (*db.AdminUser, error) {
	var admin db.AdminUser
	query := `SELECT id, email, password_hash, created_at FROM admin_users WHERE email = $1`
	err := r.DB.QueryRow(query, email).Scan(&admin.ID, &admin.Email, &admin.PasswordHash, &admin.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying admin user: %w", err)
	}
	return &admin, nil
}

func (r *AdminAuthRepository) CreateAdmin(email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	_, err = r.DB.Exec(
		`INSERT INTO admin_users (email, password_hash) VALUES ($1, $2) ON CONFLICT (email) DO NOTHING`,
		email, string(hash),
	)
	if err != nil {
		return fmt.Errorf("error inserting admin user: %w", err)
	}
	return nil
}
