package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cardbill/cardbill/domain/party"
	"github.com/cardbill/cardbill/ports"
)

// ProductStore implements ports.ProductStore using SQLite.
type ProductStore struct {
	db *DB
}

// NewProductStore creates a new SQLite product store.
func NewProductStore(db *DB) *ProductStore {
	return &ProductStore{db: db}
}

// Get retrieves a product by ID.
func (s *ProductStore) Get(ctx context.Context, id string) (party.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT product_id, name, issuer_id, created_at, updated_at FROM products WHERE product_id = ?
	`, id)
	return scanProduct(row)
}

// List returns all products.
func (s *ProductStore) List(ctx context.Context) ([]party.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, name, issuer_id, created_at, updated_at FROM products ORDER BY product_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []party.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Create stores a new product.
func (s *ProductStore) Create(ctx context.Context, p party.Product) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (product_id, name, issuer_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.IssuerID, now, now)
	return storeError(err)
}

// Update modifies an existing product.
func (s *ProductStore) Update(ctx context.Context, p party.Product) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE products SET name = ?, issuer_id = ?, updated_at = ? WHERE product_id = ?
	`, p.Name, p.IssuerID, time.Now().UTC(), p.ID)
	if err != nil {
		return storeError(err)
	}
	return requireRowsAffected(result)
}

// Delete removes a product. Fails with ErrReferenced while mappings point
// at it.
func (s *ProductStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE product_id = ?`, id)
	if err != nil {
		return storeError(err)
	}
	return requireRowsAffected(result)
}

func scanProduct(row rowScanner) (party.Product, error) {
	var p party.Product
	err := row.Scan(&p.ID, &p.Name, &p.IssuerID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return party.Product{}, ports.ErrNotFound
	}
	if err != nil {
		return party.Product{}, err
	}
	return p, nil
}

// Ensure interface compliance.
var _ ports.ProductStore = (*ProductStore)(nil)
