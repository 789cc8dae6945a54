package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cardbill/cardbill/domain/billing"
	"github.com/cardbill/cardbill/ports"
)

// InterchangeStore implements ports.InterchangeStore using SQLite.
type InterchangeStore struct {
	db *DB
}

// NewInterchangeStore creates a new SQLite interchange store.
func NewInterchangeStore(db *DB) *InterchangeStore {
	return &InterchangeStore{db: db}
}

const interchangeColumns = `interchange_fee_id, client_id, start_date, end_date, charge_date, gross_amount, minimum_guarantee, created_at`

// Latest returns the record for (client, exact window) with the most recent
// charge date.
func (s *InterchangeStore) Latest(ctx context.Context, clientID string, start, end time.Time) (billing.InterchangeRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+interchangeColumns+`
		FROM interchange_fees
		WHERE client_id = ? AND start_date = ? AND end_date = ?
		ORDER BY charge_date DESC, interchange_fee_id DESC
		LIMIT 1
	`, clientID, dateString(start), dateString(end))
	return scanInterchange(row)
}

// List returns all interchange records, newest charge first.
func (s *InterchangeStore) List(ctx context.Context) ([]billing.InterchangeRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+interchangeColumns+`
		FROM interchange_fees
		ORDER BY charge_date DESC, interchange_fee_id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []billing.InterchangeRecord
	for rows.Next() {
		rec, err := scanInterchange(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Create stores a new interchange record and returns its assigned ID.
func (s *InterchangeStore) Create(ctx context.Context, rec billing.InterchangeRecord) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO interchange_fees
			(client_id, start_date, end_date, charge_date, gross_amount, minimum_guarantee, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ClientID, dateString(rec.Start), dateString(rec.End), dateString(rec.ChargeDate),
		rec.GrossAmount, rec.MinimumGuarantee, time.Now().UTC())
	if err != nil {
		return 0, storeError(err)
	}
	return result.LastInsertId()
}

func scanInterchange(row rowScanner) (billing.InterchangeRecord, error) {
	var rec billing.InterchangeRecord
	var start, end, charge string
	err := row.Scan(&rec.ID, &rec.ClientID, &start, &end, &charge, &rec.GrossAmount, &rec.MinimumGuarantee, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return billing.InterchangeRecord{}, ports.ErrNotFound
	}
	if err != nil {
		return billing.InterchangeRecord{}, err
	}
	if rec.Start, err = parseDate(start); err != nil {
		return billing.InterchangeRecord{}, err
	}
	if rec.End, err = parseDate(end); err != nil {
		return billing.InterchangeRecord{}, err
	}
	if rec.ChargeDate, err = parseDate(charge); err != nil {
		return billing.InterchangeRecord{}, err
	}
	return rec, nil
}

// Ensure interface compliance.
var _ ports.InterchangeStore = (*InterchangeStore)(nil)
