package db

import (
	"context"
	"fmt"
	"log"
)

var schema = []struct {
	table string
	ddl   string
}{
	{"users", `
CREATE TABLE IF NOT EXISTS users (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	email VARCHAR(255) NOT NULL,
	password_hash VARCHAR(255) NOT NULL DEFAULT '',
	role VARCHAR(20) NOT NULL DEFAULT 'user',
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_email (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"properties", `
CREATE TABLE IF NOT EXISTS properties (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	title VARCHAR(255) NOT NULL,
	description TEXT,
	address VARCHAR(512) NOT NULL DEFAULT '',
	price_per_night DECIMAL(12,2) NOT NULL DEFAULT 0,
	capacity INT NOT NULL DEFAULT 1,
	image_url VARCHAR(1024) NOT NULL DEFAULT '',
	video_url VARCHAR(1024) NOT NULL DEFAULT '',
	available_from DATE NULL,
	available_to DATE NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"bookings", `
CREATE TABLE IF NOT EXISTS bookings (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	property_id BIGINT NOT NULL,
	start_date DATE NOT NULL,
	end_date DATE NOT NULL,
	guest_name VARCHAR(255) NOT NULL,
	guest_email VARCHAR(255) NOT NULL,
	guests INT NOT NULL DEFAULT 1,
	status VARCHAR(20) NOT NULL DEFAULT 'pending',
	total DECIMAL(12,2) NOT NULL DEFAULT 0,
	payment_link VARCHAR(1024) NOT NULL DEFAULT '',
	revision BIGINT NOT NULL DEFAULT 1,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	KEY idx_property_range (property_id, status, start_date, end_date),
	KEY idx_guest_email (guest_email),
	CONSTRAINT fk_bookings_property FOREIGN KEY (property_id) REFERENCES properties(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"availability", `
CREATE TABLE IF NOT EXISTS availability (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	property_id BIGINT NOT NULL,
	start_date DATE NOT NULL,
	end_date DATE NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	KEY idx_property_range (property_id, start_date, end_date),
	CONSTRAINT fk_availability_property FOREIGN KEY (property_id) REFERENCES properties(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"property_media", `
CREATE TABLE IF NOT EXISTS property_media (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	property_id BIGINT NOT NULL,
	url VARCHAR(1024) NOT NULL,
	type VARCHAR(10) NOT NULL,
	position INT NOT NULL DEFAULT 0,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	KEY idx_property (property_id),
	CONSTRAINT fk_media_property FOREIGN KEY (property_id) REFERENCES properties(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"expenses", `
CREATE TABLE IF NOT EXISTS expenses (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	property_id BIGINT NULL,
	date DATE NOT NULL,
	amount DECIMAL(12,2) NOT NULL DEFAULT 0,
	label VARCHAR(255) NOT NULL DEFAULT '',
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	KEY idx_property_date (property_id, date),
	CONSTRAINT fk_expenses_property FOREIGN KEY (property_id) REFERENCES properties(id) ON DELETE SET NULL
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
}

// EnsureSchema creates missing tables and backfills columns added after the first release.
func EnsureSchema(ctx context.Context, q DBTX) error {
	for _, s := range schema {
		if HasTable(ctx, q, s.table) {
			continue
		}
		if _, err := q.ExecContext(ctx, s.ddl); err != nil {
			return fmt.Errorf("create table %s: %w", s.table, err)
		}
		log.Printf("[SCHEMA] action=create table=%s", s.table)
	}

	// bookings created before the live feed have no revision column
	if !HasColumn(ctx, q, "bookings", "revision") {
		if _, err := q.ExecContext(ctx, `ALTER TABLE bookings ADD COLUMN revision BIGINT NOT NULL DEFAULT 1`); err != nil {
			return fmt.Errorf("add bookings.revision: %w", err)
		}
		log.Printf("[SCHEMA] action=alter table=bookings column=revision")
	}
	return nil
}
