package repository

import (
	"context"
	"fmt"
	"time"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS schedule_meta (
		id INTEGER PRIMARY KEY,
		version BIGINT NOT NULL
	)`,
	`INSERT INTO schedule_meta (id, version) VALUES (1, 0) ON CONFLICT (id) DO NOTHING`,
	`CREATE TABLE IF NOT EXISTS slot_requirements (
		client_id TEXT NOT NULL,
		slot_date TEXT NOT NULL,
		required_count INTEGER NOT NULL CHECK (required_count >= 0),
		PRIMARY KEY (client_id, slot_date)
	)`,
	`CREATE TABLE IF NOT EXISTS slot_assignments (
		client_id TEXT NOT NULL,
		slot_date TEXT NOT NULL,
		worker_id TEXT NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('confirmed', 'tentative')),
		position INTEGER NOT NULL,
		PRIMARY KEY (client_id, slot_date, worker_id)
	)`,
	// one confirmed assignment per worker per day
	`CREATE UNIQUE INDEX IF NOT EXISTS slot_assignments_confirmed_worker_date
		ON slot_assignments (worker_id, slot_date) WHERE status = 'confirmed'`,
}

// Migrate creates the schedule tables if they do not exist yet.
func (r *Repository) Migrate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	for i, stmt := range schema {
		if _, err := r.dbpool.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i+1, err)
		}
	}
	return nil
}
