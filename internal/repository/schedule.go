package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sugukuru-dev/dispatch-manager/backend/internal/domain"
)

// LoadSchedule reads the committed version and every stored slot.
func (r *Repository) LoadSchedule(ctx context.Context) (int64, []domain.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	var version int64
	query := `SELECT version FROM schedule_meta WHERE id = 1`
	if err := r.dbpool.QueryRowContext(ctx, query).Scan(&version); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, nil, err
	}

	slots := map[domain.SlotKey]*domain.Slot{}
	slotFor := func(clientID string, date domain.Date) *domain.Slot {
		key := domain.SlotKey{ClientID: clientID, Date: date}
		s, ok := slots[key]
		if !ok {
			s = &domain.Slot{ClientID: clientID, Date: date}
			slots[key] = s
		}
		return s
	}

	query = `SELECT client_id, slot_date, required_count FROM slot_requirements`
	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return 0, nil, err
	}
	for rows.Next() {
		var (
			clientID string
			date     domain.Date
			required int
		)
		if err := rows.Scan(&clientID, &date, &required); err != nil {
			rows.Close()
			return 0, nil, err
		}
		slotFor(clientID, date).RequiredCount = required
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, nil, err
	}
	rows.Close()

	query = `
		SELECT client_id, slot_date, worker_id, status
		FROM slot_assignments
		ORDER BY client_id, slot_date, position
	`
	rows, err = r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return 0, nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			clientID string
			date     domain.Date
			a        domain.Assignment
		)
		if err := rows.Scan(&clientID, &date, &a.WorkerID, &a.Status); err != nil {
			return 0, nil, err
		}
		s := slotFor(clientID, date)
		s.Assignments = append(s.Assignments, a)
	}
	if err := rows.Err(); err != nil {
		return 0, nil, err
	}

	out := make([]domain.Slot, 0, len(slots))
	for _, s := range slots {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].ClientID < out[j].ClientID
	})

	return version, out, nil
}

// SaveSchedule replaces the given slots and moves the version from baseVersion to newVersion in
// one transaction. Another writer having moved the version first yields *domain.ConflictError.
func (r *Repository) SaveSchedule(ctx context.Context, baseVersion, newVersion int64, slots []domain.Slot) error {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := r.rebind(`UPDATE schedule_meta SET version = $1 WHERE id = 1 AND version = $2`)
	res, err := tx.ExecContext(ctx, query, newVersion, baseVersion)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var current int64
		if err := tx.QueryRowContext(ctx, `SELECT version FROM schedule_meta WHERE id = 1`).Scan(&current); err != nil {
			return fmt.Errorf("read schedule version: %w", err)
		}
		return &domain.ConflictError{ExpectedVersion: baseVersion, CurrentVersion: current}
	}

	// delete touched slots first so moves do not trip the unique index
	for _, s := range slots {
		query := r.rebind(`DELETE FROM slot_assignments WHERE client_id = $1 AND slot_date = $2`)
		if _, err := tx.ExecContext(ctx, query, s.ClientID, s.Date); err != nil {
			return err
		}
		query = r.rebind(`DELETE FROM slot_requirements WHERE client_id = $1 AND slot_date = $2`)
		if _, err := tx.ExecContext(ctx, query, s.ClientID, s.Date); err != nil {
			return err
		}
	}

	for _, s := range slots {
		if s.RequiredCount > 0 {
			query := r.rebind(`
				INSERT INTO slot_requirements (client_id, slot_date, required_count)
				VALUES ($1, $2, $3)
			`)
			if _, err := tx.ExecContext(ctx, query, s.ClientID, s.Date, s.RequiredCount); err != nil {
				return err
			}
		}

		for i, a := range s.Assignments {
			query := r.rebind(`
				INSERT INTO slot_assignments (client_id, slot_date, worker_id, status, position)
				VALUES ($1, $2, $3, $4, $5)
			`)
			if _, err := tx.ExecContext(ctx, query, s.ClientID, s.Date, a.WorkerID, a.Status, i); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}
