package store

import (
	"fmt"
	"time"

	"github.com/sadopc/fleetwatch/internal/model"
)

// UpsertFleetPoint writes one day of the fleet-wide series. Writing an
// existing date overwrites it, which keeps the today entry live.
func (s *Store) UpsertFleetPoint(date string, p model.HistoryPoint) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO fleet_history (date, income, balance, withdrawal, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(date) DO UPDATE SET
		   income = excluded.income,
		   balance = excluded.balance,
		   withdrawal = excluded.withdrawal,
		   updated_at = excluded.updated_at`,
		date, p.Income, p.Balance, p.Withdrawal, now,
	)
	if err != nil {
		return fmt.Errorf("upsert fleet point %s: %w", date, err)
	}
	return nil
}

// ReplaceFleetHistory swaps in the full server-provided series.
func (s *Store) ReplaceFleetHistory(points map[string]model.HistoryPoint) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM fleet_history`); err != nil {
		return fmt.Errorf("clear fleet history: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	for date, p := range points {
		if _, err := tx.Exec(
			`INSERT INTO fleet_history (date, income, balance, withdrawal, updated_at) VALUES (?, ?, ?, ?, ?)`,
			date, p.Income, p.Balance, p.Withdrawal, now,
		); err != nil {
			return fmt.Errorf("insert fleet point %s: %w", date, err)
		}
	}
	return tx.Commit()
}

// LoadFleetHistory reads the cached fleet series.
func (s *Store) LoadFleetHistory() (map[string]model.HistoryPoint, error) {
	rows, err := s.db.Query(`SELECT date, income, balance, withdrawal FROM fleet_history`)
	if err != nil {
		return nil, fmt.Errorf("load fleet history: %w", err)
	}
	defer rows.Close()

	out := make(map[string]model.HistoryPoint)
	for rows.Next() {
		var date string
		var p model.HistoryPoint
		if err := rows.Scan(&date, &p.Income, &p.Balance, &p.Withdrawal); err != nil {
			return nil, err
		}
		out[date] = p
	}
	return out, rows.Err()
}

// ReplacePnlHistory swaps in the daily PnL series.
func (s *Store) ReplacePnlHistory(points map[string]int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM pnl_history`); err != nil {
		return fmt.Errorf("clear pnl history: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	for date, amount := range points {
		if _, err := tx.Exec(
			`INSERT INTO pnl_history (date, amount, updated_at) VALUES (?, ?, ?)`,
			date, amount, now,
		); err != nil {
			return fmt.Errorf("insert pnl point %s: %w", date, err)
		}
	}
	return tx.Commit()
}

// LoadPnlHistory reads the cached daily PnL series.
func (s *Store) LoadPnlHistory() (map[string]int64, error) {
	rows, err := s.db.Query(`SELECT date, amount FROM pnl_history`)
	if err != nil {
		return nil, fmt.Errorf("load pnl history: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var date string
		var amount int64
		if err := rows.Scan(&date, &amount); err != nil {
			return nil, err
		}
		out[date] = amount
	}
	return out, rows.Err()
}
