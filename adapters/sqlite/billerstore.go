package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cardbill/cardbill/domain/party"
	"github.com/cardbill/cardbill/ports"
)

// BillerStore implements ports.BillerStore using SQLite.
type BillerStore struct {
	db *DB
}

// NewBillerStore creates a new SQLite biller store.
func NewBillerStore(db *DB) *BillerStore {
	return &BillerStore{db: db}
}

// Get retrieves a biller by ID.
func (s *BillerStore) Get(ctx context.Context, id string) (party.Biller, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT biller_id, name, address, gstin, email, contact, created_at, updated_at
		FROM billers WHERE biller_id = ?
	`, id)
	return scanBiller(row)
}

// Default returns the biller invoices are issued under (the oldest row,
// matching the single-biller deployment model).
func (s *BillerStore) Default(ctx context.Context) (party.Biller, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT biller_id, name, address, gstin, email, contact, created_at, updated_at
		FROM billers ORDER BY created_at, biller_id LIMIT 1
	`)
	return scanBiller(row)
}

// List returns all billers.
func (s *BillerStore) List(ctx context.Context) ([]party.Biller, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT biller_id, name, address, gstin, email, contact, created_at, updated_at
		FROM billers ORDER BY biller_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var billers []party.Biller
	for rows.Next() {
		b, err := scanBiller(rows)
		if err != nil {
			return nil, err
		}
		billers = append(billers, b)
	}
	return billers, rows.Err()
}

// Create stores a new biller.
func (s *BillerStore) Create(ctx context.Context, b party.Biller) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO billers (biller_id, name, address, gstin, email, contact, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, b.ID, b.Name, b.Address, b.GSTIN, b.Email, b.Contact, now, now)
	return storeError(err)
}

// Update modifies an existing biller.
func (s *BillerStore) Update(ctx context.Context, b party.Biller) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE billers
		SET name = ?, address = ?, gstin = ?, email = ?, contact = ?, updated_at = ?
		WHERE biller_id = ?
	`, b.Name, b.Address, b.GSTIN, b.Email, b.Contact, time.Now().UTC(), b.ID)
	if err != nil {
		return err
	}
	return requireRowsAffected(result)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBiller(row rowScanner) (party.Biller, error) {
	var b party.Biller
	err := row.Scan(&b.ID, &b.Name, &b.Address, &b.GSTIN, &b.Email, &b.Contact, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return party.Biller{}, ports.ErrNotFound
	}
	if err != nil {
		return party.Biller{}, err
	}
	return b, nil
}

func requireRowsAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// Ensure interface compliance.
var _ ports.BillerStore = (*BillerStore)(nil)
