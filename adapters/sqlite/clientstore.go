package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cardbill/cardbill/domain/party"
	"github.com/cardbill/cardbill/ports"
)

// ClientStore implements ports.ClientStore using SQLite.
type ClientStore struct {
	db *DB
}

// NewClientStore creates a new SQLite client store.
func NewClientStore(db *DB) *ClientStore {
	return &ClientStore{db: db}
}

// Get retrieves a client by ID.
func (s *ClientStore) Get(ctx context.Context, id string) (party.Client, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT client_id, name, issuer_id, address, gstin, email, contact, client_type, created_at, updated_at
		FROM clients WHERE client_id = ?
	`, id)
	return scanClient(row)
}

// List returns all clients.
func (s *ClientStore) List(ctx context.Context) ([]party.Client, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT client_id, name, issuer_id, address, gstin, email, contact, client_type, created_at, updated_at
		FROM clients ORDER BY client_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []party.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// Create stores a new client.
func (s *ClientStore) Create(ctx context.Context, c party.Client) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO clients (client_id, name, issuer_id, address, gstin, email, contact, client_type, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.IssuerID, c.Address, c.GSTIN, c.Email, c.Contact, string(c.Type), now, now)
	return storeError(err)
}

// Update modifies an existing client.
func (s *ClientStore) Update(ctx context.Context, c party.Client) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE clients
		SET name = ?, issuer_id = ?, address = ?, gstin = ?, email = ?, contact = ?, client_type = ?, updated_at = ?
		WHERE client_id = ?
	`, c.Name, c.IssuerID, c.Address, c.GSTIN, c.Email, c.Contact, string(c.Type), time.Now().UTC(), c.ID)
	if err != nil {
		return storeError(err)
	}
	return requireRowsAffected(result)
}

// Delete removes a client. Fails with ErrReferenced while mappings,
// invoices, or history entries point at it.
func (s *ClientStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM clients WHERE client_id = ?`, id)
	if err != nil {
		return storeError(err)
	}
	return requireRowsAffected(result)
}

func scanClient(row rowScanner) (party.Client, error) {
	var c party.Client
	var clientType string
	err := row.Scan(&c.ID, &c.Name, &c.IssuerID, &c.Address, &c.GSTIN, &c.Email, &c.Contact, &clientType, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return party.Client{}, ports.ErrNotFound
	}
	if err != nil {
		return party.Client{}, err
	}
	c.Type = party.ClientType(clientType)
	return c, nil
}

// Ensure interface compliance.
var _ ports.ClientStore = (*ClientStore)(nil)
