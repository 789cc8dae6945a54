package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cardbill/cardbill/domain/fee"
	"github.com/cardbill/cardbill/ports"
)

// HistoryStore implements ports.HistoryStore using SQLite. It is read-only:
// ledger rows are written inside the invoice commit transaction.
type HistoryStore struct {
	db *DB
}

// NewHistoryStore creates a new SQLite fee history store.
func NewHistoryStore(db *DB) *HistoryStore {
	return &HistoryStore{db: db}
}

// Charged reports whether any entry exists for (client, fee), regardless
// of date. One-time fees use this unbounded predicate.
func (s *HistoryStore) Charged(ctx context.Context, clientID, feeID string) (bool, error) {
	return s.exists(ctx, `
		SELECT 1 FROM fee_history WHERE client_id = ? AND fee_id = ? LIMIT 1
	`, clientID, feeID)
}

// ChargedInYear reports whether an entry exists with the given charge year.
func (s *HistoryStore) ChargedInYear(ctx context.Context, clientID, feeID string, year int) (bool, error) {
	return s.exists(ctx, `
		SELECT 1 FROM fee_history
		WHERE client_id = ? AND fee_id = ? AND substr(charge_date, 1, 4) = ?
		LIMIT 1
	`, clientID, feeID, fmt.Sprintf("%04d", year))
}

// ChargedInMonth reports whether an entry exists with the given charge year
// and month.
func (s *HistoryStore) ChargedInMonth(ctx context.Context, clientID, feeID string, year int, month time.Month) (bool, error) {
	return s.exists(ctx, `
		SELECT 1 FROM fee_history
		WHERE client_id = ? AND fee_id = ? AND substr(charge_date, 1, 7) = ?
		LIMIT 1
	`, clientID, feeID, fmt.Sprintf("%04d-%02d", year, month))
}

// ListByClient returns the client's ledger, newest first.
func (s *HistoryStore) ListByClient(ctx context.Context, clientID string) ([]fee.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT fee_history_id, client_id, issuer_id, fee_id, charge_date, period_key, units, total, created_at
		FROM fee_history
		WHERE client_id = ?
		ORDER BY charge_date DESC, fee_history_id DESC
	`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []fee.HistoryEntry
	for rows.Next() {
		var e fee.HistoryEntry
		var chargeDate string
		if err := rows.Scan(&e.ID, &e.ClientID, &e.IssuerID, &e.FeeID, &chargeDate, &e.PeriodKey, &e.Units, &e.Total, &e.CreatedAt); err != nil {
			return nil, err
		}
		if e.ChargeDate, err = parseDate(chargeDate); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *HistoryStore) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Ensure interface compliance.
var _ ports.HistoryStore = (*HistoryStore)(nil)
