package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cardbill/cardbill/domain/fee"
	"github.com/cardbill/cardbill/ports"
)

// FeeStore implements ports.FeeStore using SQLite.
type FeeStore struct {
	db *DB
}

// NewFeeStore creates a new SQLite fee store.
func NewFeeStore(db *DB) *FeeStore {
	return &FeeStore{db: db}
}

// Get retrieves a fee by ID.
func (s *FeeStore) Get(ctx context.Context, id string) (fee.Fee, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT fee_id, name, fee_type, fee_frequency, hsn_code, created_at, updated_at
		FROM fee_master WHERE fee_id = ?
	`, id)
	return scanFee(row)
}

// List returns the full fee catalog.
func (s *FeeStore) List(ctx context.Context) ([]fee.Fee, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT fee_id, name, fee_type, fee_frequency, hsn_code, created_at, updated_at
		FROM fee_master ORDER BY fee_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fees []fee.Fee
	for rows.Next() {
		f, err := scanFee(rows)
		if err != nil {
			return nil, err
		}
		fees = append(fees, f)
	}
	return fees, rows.Err()
}

// Create stores a new fee. The frequency and type enumerations are checked
// here and again by the schema.
func (s *FeeStore) Create(ctx context.Context, f fee.Fee) error {
	if err := f.Validate(); err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fee_master (fee_id, name, fee_type, fee_frequency, hsn_code, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, f.ID, f.Name, string(f.Type), string(f.Frequency), f.HSNCode, now, now)
	return storeError(err)
}

// Update modifies an existing fee.
func (s *FeeStore) Update(ctx context.Context, f fee.Fee) error {
	if err := f.Validate(); err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE fee_master
		SET name = ?, fee_type = ?, fee_frequency = ?, hsn_code = ?, updated_at = ?
		WHERE fee_id = ?
	`, f.Name, string(f.Type), string(f.Frequency), f.HSNCode, time.Now().UTC(), f.ID)
	if err != nil {
		return storeError(err)
	}
	return requireRowsAffected(result)
}

// Delete removes a fee. Fails with ErrReferenced while mappings or history
// entries reference it.
func (s *FeeStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM fee_master WHERE fee_id = ?`, id)
	if err != nil {
		return storeError(err)
	}
	return requireRowsAffected(result)
}

func scanFee(row rowScanner) (fee.Fee, error) {
	var f fee.Fee
	var feeType, frequency string
	err := row.Scan(&f.ID, &f.Name, &feeType, &frequency, &f.HSNCode, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fee.Fee{}, ports.ErrNotFound
	}
	if err != nil {
		return fee.Fee{}, err
	}
	f.Type = fee.Type(feeType)
	f.Frequency = fee.Frequency(frequency)
	return f, nil
}

// Ensure interface compliance.
var _ ports.FeeStore = (*FeeStore)(nil)
