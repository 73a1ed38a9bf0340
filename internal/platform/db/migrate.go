package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate runs all table creation statements. Safe to call multiple times
// due to IF NOT EXISTS clauses.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("platform/db: migrate: %w", err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL,
		ip TEXT,
		ua TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS services (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		base_price NUMERIC(12,2) NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'Active',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS agents (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		mobile TEXT NOT NULL DEFAULT '',
		type TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'Active',
		agent_discount_percent NUMERIC(5,2) NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS discounts (
		id BIGSERIAL PRIMARY KEY,
		code TEXT NOT NULL,
		discount_type TEXT NOT NULL DEFAULT 'percentage',
		percent NUMERIC(5,2) NOT NULL DEFAULT 0,
		amount NUMERIC(12,2) NOT NULL DEFAULT 0,
		is_base_discount BOOLEAN NOT NULL DEFAULT FALSE,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		valid_from DATE,
		valid_to DATE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS drivers (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		license_number TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS vehicles (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		number TEXT NOT NULL UNIQUE,
		type TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'Available',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS jobs (
		id BIGSERIAL PRIMARY KEY,
		customer_name TEXT NOT NULL DEFAULT '',
		customer_email TEXT NOT NULL DEFAULT '',
		customer_mobile TEXT NOT NULL DEFAULT '',
		customer_reference TEXT NOT NULL DEFAULT '',
		passenger_name TEXT NOT NULL DEFAULT '',
		passenger_email TEXT NOT NULL DEFAULT '',
		passenger_mobile TEXT NOT NULL DEFAULT '',
		type_of_service TEXT NOT NULL DEFAULT '',
		service_id BIGINT REFERENCES services(id),
		pickup_date TEXT NOT NULL DEFAULT '',
		pickup_time TEXT NOT NULL DEFAULT '',
		pickup_location TEXT NOT NULL DEFAULT '',
		dropoff_location TEXT NOT NULL DEFAULT '',
		vehicle_type TEXT NOT NULL DEFAULT '',
		vehicle_number TEXT NOT NULL DEFAULT '',
		driver_contact TEXT NOT NULL DEFAULT '',
		payment_mode TEXT NOT NULL DEFAULT '',
		payment_status TEXT NOT NULL DEFAULT 'Unpaid',
		order_status TEXT NOT NULL DEFAULT 'Pending',
		message TEXT NOT NULL DEFAULT '',
		remarks TEXT NOT NULL DEFAULT '',
		additional_stops TEXT NOT NULL DEFAULT '',
		reference TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'Inactive',
		driver_id BIGINT REFERENCES drivers(id),
		agent_id BIGINT REFERENCES agents(id),
		base_price NUMERIC(12,2) NOT NULL DEFAULT 0,
		base_discount_percent NUMERIC(5,2) NOT NULL DEFAULT 0,
		agent_discount_percent NUMERIC(5,2) NOT NULL DEFAULT 0,
		additional_discount_percent NUMERIC(5,2) NOT NULL DEFAULT 0,
		additional_charges NUMERIC(12,2) NOT NULL DEFAULT 0,
		final_price NUMERIC(12,2) NOT NULL DEFAULT 0,
		invoice_number TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS billings (
		id BIGSERIAL PRIMARY KEY,
		job_id BIGINT NOT NULL REFERENCES jobs(id),
		invoice_number TEXT NOT NULL UNIQUE,
		invoice_date TIMESTAMPTZ NOT NULL,
		due_date TIMESTAMPTZ NOT NULL,
		base_price NUMERIC(12,2) NOT NULL DEFAULT 0,
		base_discount_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
		agent_discount_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
		additional_discount_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
		additional_charges NUMERIC(12,2) NOT NULL DEFAULT 0,
		subtotal NUMERIC(12,2) NOT NULL DEFAULT 0,
		tax_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
		total_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
		payment_status TEXT NOT NULL DEFAULT 'Unpaid',
		payment_date TIMESTAMPTZ,
		payment_method TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		terms_conditions TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_jobs_order_status ON jobs(order_status)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_payment_status ON jobs(payment_status)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_driver ON jobs(driver_id)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_agent ON jobs(agent_id)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_service ON jobs(service_id)`,
	`CREATE INDEX IF NOT EXISTS idx_billings_job ON billings(job_id)`,
	`CREATE INDEX IF NOT EXISTS idx_discounts_base ON discounts(is_base_discount) WHERE is_base_discount`,
}
