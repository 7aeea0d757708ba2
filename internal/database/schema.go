package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema creates the three tables the service owns.  bookings.event_id
// cascades on event deletion; the event repository also deletes bookings
// explicitly inside its transaction so the behaviour does not depend on
// the engine honouring foreign keys.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(120) NOT NULL,
		email VARCHAR(191) NOT NULL,
		password VARCHAR(255) NOT NULL,
		role ENUM('user','admin') NOT NULL DEFAULT 'user',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS events (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		title VARCHAR(200) NOT NULL,
		date DATETIME NOT NULL,
		category VARCHAR(100) NOT NULL DEFAULT '',
		location VARCHAR(200) NOT NULL DEFAULT '',
		capacity INT UNSIGNED NOT NULL,
		booked_seats INT UNSIGNED NOT NULL DEFAULT 0,
		event_code VARCHAR(32) NOT NULL,
		UNIQUE KEY uq_events_code (event_code),
		CONSTRAINT chk_events_seats CHECK (booked_seats <= capacity)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		event_id BIGINT UNSIGNED NOT NULL,
		seats TINYINT UNSIGNED NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_bookings_event_user (event_id, user_id),
		KEY idx_bookings_user (user_id),
		CONSTRAINT fk_bookings_event FOREIGN KEY (event_id) REFERENCES events (id) ON DELETE CASCADE,
		CONSTRAINT fk_bookings_user FOREIGN KEY (user_id) REFERENCES users (id),
		CONSTRAINT chk_bookings_seats CHECK (seats BETWEEN 1 AND 2)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates missing tables.  Existing tables are left untouched.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
