package repository

import "database/sql"

// The exclusion constraint on bookings is the authority for the no-overlap
// invariant: two active bookings for the same car can never hold intersecting
// half-open ranges, no matter how many server replicas race on the insert.
const schemaSQL = `
CREATE EXTENSION IF NOT EXISTS btree_gist;

CREATE TABLE IF NOT EXISTS cars (
	id BIGSERIAL PRIMARY KEY,
	brand TEXT NOT NULL,
	model TEXT NOT NULL,
	year INT NOT NULL DEFAULT 0,
	price_per_day_cents BIGINT NOT NULL,
	available BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS bookings (
	id TEXT PRIMARY KEY,
	car_id BIGINT NOT NULL REFERENCES cars(id),
	holder_id TEXT NOT NULL,
	holder_email TEXT NOT NULL DEFAULT '',
	holder_phone TEXT NOT NULL DEFAULT '',
	start_time TIMESTAMPTZ NOT NULL,
	end_time TIMESTAMPTZ NOT NULL,
	total_price_cents BIGINT NOT NULL,
	currency TEXT NOT NULL DEFAULT 'usd',
	status TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CHECK (end_time > start_time),
	CONSTRAINT bookings_no_overlap EXCLUDE USING gist (
		car_id WITH =,
		tstzrange(start_time, end_time) WITH &&
	) WHERE (status IN ('pending', 'confirmed'))
);

CREATE INDEX IF NOT EXISTS idx_bookings_car_status ON bookings(car_id, status);
CREATE INDEX IF NOT EXISTS idx_bookings_holder ON bookings(holder_id);

CREATE TABLE IF NOT EXISTS payments (
	id BIGSERIAL PRIMARY KEY,
	booking_id TEXT NOT NULL REFERENCES bookings(id),
	stripe_payment_intent_id TEXT NOT NULL UNIQUE,
	amount_cents BIGINT NOT NULL,
	currency TEXT NOT NULL,
	status TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_payments_booking ON payments(booking_id);

CREATE TABLE IF NOT EXISTS admin_users (
	id BIGSERIAL PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

func Migrate(database *sql.DB) error {
	_, err := database.Exec(schemaSQL)
	return err
}
