package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cardbill/cardbill/domain/fee"
	"github.com/cardbill/cardbill/ports"
)

// MappingStore implements ports.MappingStore using SQLite.
type MappingStore struct {
	db *DB
}

// NewMappingStore creates a new SQLite mapping store.
func NewMappingStore(db *DB) *MappingStore {
	return &MappingStore{db: db}
}

const mappingColumns = `mapping_id, client_id, product_id, fee_id, unit_price, start_date, end_date, created_at, updated_at`

// Get retrieves a mapping by ID.
func (s *MappingStore) Get(ctx context.Context, id int64) (fee.Mapping, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+mappingColumns+` FROM client_product_fee_mappings WHERE mapping_id = ?
	`, id)
	return scanMapping(row)
}

// ListOverlapping returns the client's mappings whose inclusive windows
// intersect [start, end]. Ordered by fee ID then mapping ID so fee
// resolution is deterministic across calls.
func (s *MappingStore) ListOverlapping(ctx context.Context, clientID string, start, end time.Time) ([]fee.Mapping, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+mappingColumns+`
		FROM client_product_fee_mappings
		WHERE client_id = ? AND start_date <= ? AND end_date >= ?
		ORDER BY fee_id, mapping_id
	`, clientID, dateString(end), dateString(start))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMappings(rows)
}

// ActiveFor returns the first mapping for (client, fee) overlapping
// [start, end].
func (s *MappingStore) ActiveFor(ctx context.Context, clientID, feeID string, start, end time.Time) (fee.Mapping, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+mappingColumns+`
		FROM client_product_fee_mappings
		WHERE client_id = ? AND fee_id = ? AND start_date <= ? AND end_date >= ?
		ORDER BY fee_id, mapping_id
		LIMIT 1
	`, clientID, feeID, dateString(end), dateString(start))
	return scanMapping(row)
}

// List returns all mappings.
func (s *MappingStore) List(ctx context.Context) ([]fee.Mapping, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+mappingColumns+` FROM client_product_fee_mappings ORDER BY mapping_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMappings(rows)
}

// Create stores a new mapping and returns its assigned ID.
func (s *MappingStore) Create(ctx context.Context, m fee.Mapping) (int64, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO client_product_fee_mappings
			(client_id, product_id, fee_id, unit_price, start_date, end_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ClientID, m.ProductID, m.FeeID, m.UnitPrice, dateString(m.Start), dateString(m.End), now, now)
	if err != nil {
		return 0, storeError(err)
	}
	return result.LastInsertId()
}

// Delete removes a mapping (full replacement is create-then-delete).
func (s *MappingStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM client_product_fee_mappings WHERE mapping_id = ?`, id)
	if err != nil {
		return err
	}
	return requireRowsAffected(result)
}

func collectMappings(rows *sql.Rows) ([]fee.Mapping, error) {
	var mappings []fee.Mapping
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, m)
	}
	return mappings, rows.Err()
}

func scanMapping(row rowScanner) (fee.Mapping, error) {
	var m fee.Mapping
	var start, end string
	err := row.Scan(&m.ID, &m.ClientID, &m.ProductID, &m.FeeID, &m.UnitPrice, &start, &end, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fee.Mapping{}, ports.ErrNotFound
	}
	if err != nil {
		return fee.Mapping{}, err
	}
	if m.Start, err = parseDate(start); err != nil {
		return fee.Mapping{}, err
	}
	if m.End, err = parseDate(end); err != nil {
		return fee.Mapping{}, err
	}
	return m, nil
}

// Ensure interface compliance.
var _ ports.MappingStore = (*MappingStore)(nil)
