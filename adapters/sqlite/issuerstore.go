package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cardbill/cardbill/domain/party"
	"github.com/cardbill/cardbill/ports"
)

// IssuerStore implements ports.IssuerStore using SQLite.
type IssuerStore struct {
	db *DB
}

// NewIssuerStore creates a new SQLite issuer store.
func NewIssuerStore(db *DB) *IssuerStore {
	return &IssuerStore{db: db}
}

// Get retrieves an issuer by ID.
func (s *IssuerStore) Get(ctx context.Context, id string) (party.Issuer, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT issuer_id, name, created_at, updated_at FROM issuers WHERE issuer_id = ?
	`, id)
	return scanIssuer(row)
}

// List returns all issuers.
func (s *IssuerStore) List(ctx context.Context) ([]party.Issuer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT issuer_id, name, created_at, updated_at FROM issuers ORDER BY issuer_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var issuers []party.Issuer
	for rows.Next() {
		i, err := scanIssuer(rows)
		if err != nil {
			return nil, err
		}
		issuers = append(issuers, i)
	}
	return issuers, rows.Err()
}

// Create stores a new issuer.
func (s *IssuerStore) Create(ctx context.Context, i party.Issuer) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO issuers (issuer_id, name, created_at, updated_at) VALUES (?, ?, ?, ?)
	`, i.ID, i.Name, now, now)
	return storeError(err)
}

// Update modifies an existing issuer.
func (s *IssuerStore) Update(ctx context.Context, i party.Issuer) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE issuers SET name = ?, updated_at = ? WHERE issuer_id = ?
	`, i.Name, time.Now().UTC(), i.ID)
	if err != nil {
		return err
	}
	return requireRowsAffected(result)
}

// Delete removes an issuer. Fails with ErrReferenced while clients or
// products point at it.
func (s *IssuerStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM issuers WHERE issuer_id = ?`, id)
	if err != nil {
		return storeError(err)
	}
	return requireRowsAffected(result)
}

func scanIssuer(row rowScanner) (party.Issuer, error) {
	var i party.Issuer
	err := row.Scan(&i.ID, &i.Name, &i.CreatedAt, &i.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return party.Issuer{}, ports.ErrNotFound
	}
	if err != nil {
		return party.Issuer{}, err
	}
	return i, nil
}

// Ensure interface compliance.
var _ ports.IssuerStore = (*IssuerStore)(nil)
