package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cardbill/cardbill/domain/billing"
	"github.com/cardbill/cardbill/domain/fee"
	"github.com/cardbill/cardbill/ports"
)

// InvoiceStore implements ports.InvoiceStore using SQLite.
type InvoiceStore struct {
	db *DB
}

// NewInvoiceStore creates a new SQLite invoice store.
func NewInvoiceStore(db *DB) *InvoiceStore {
	return &InvoiceStore{db: db}
}

const invoiceColumns = `invoice_id, invoice_number, biller_id, issuer_id, client_id,
		invoice_date, invoice_type, invoice_month, charge_date,
		invoice_amount, tax_rate, tax_amount, total_amount, taxable_amount,
		rounding_up, grand_total, amount_in_words, created_at`

// CreateWithItems stores the invoice, its line items, and the fee history
// entries it implies in one atomic transaction. A history uniqueness
// violation (same client, fee, and charge period — a concurrent duplicate
// run) fails the whole write with ErrDuplicate and rolls everything back.
func (s *InvoiceStore) CreateWithItems(ctx context.Context, inv billing.Invoice, history []fee.HistoryEntry) error {
	now := time.Now().UTC()
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = now
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO invoices (`+invoiceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		inv.ID, inv.Number, inv.BillerID, inv.IssuerID, inv.ClientID,
		dateString(inv.InvoiceDate), inv.InvoiceType, dateString(inv.InvoiceMonth), dateString(inv.ChargeDate),
		inv.InvoiceAmount, inv.TaxRate, inv.TaxAmount, inv.TotalAmount, inv.TaxableAmount,
		inv.RoundingUp, inv.GrandTotal, inv.AmountInWords, inv.CreatedAt,
	)
	if err != nil {
		return storeError(err)
	}

	for _, it := range inv.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO invoice_line_items
				(invoice_id, fee_id, description, units, unit_price, total, gst_amount, final_amount)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, inv.ID, nullString(it.FeeID), it.Description, it.Units, it.UnitPrice, it.Total, it.GSTAmount, it.FinalAmount)
		if err != nil {
			return storeError(err)
		}
	}

	for _, h := range history {
		createdAt := h.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO fee_history
				(fee_history_id, client_id, issuer_id, fee_id, charge_date, period_key, units, total, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, h.ID, h.ClientID, h.IssuerID, h.FeeID, dateString(h.ChargeDate), h.PeriodKey, h.Units, h.Total, createdAt)
		if err != nil {
			return storeError(err)
		}
	}

	return tx.Commit()
}

// Get retrieves an invoice with its line items in persisted order.
func (s *InvoiceStore) Get(ctx context.Context, id string) (billing.Invoice, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE invoice_id = ?`, id)
	inv, err := scanInvoice(row)
	if err != nil {
		return billing.Invoice{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT line_item_id, invoice_id, fee_id, description, units, unit_price, total, gst_amount, final_amount
		FROM invoice_line_items
		WHERE invoice_id = ?
		ORDER BY line_item_id
	`, id)
	if err != nil {
		return billing.Invoice{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var it billing.LineItem
		var feeID sql.NullString
		if err := rows.Scan(&it.ID, &it.InvoiceID, &feeID, &it.Description, &it.Units,
			&it.UnitPrice, &it.Total, &it.GSTAmount, &it.FinalAmount); err != nil {
			return billing.Invoice{}, err
		}
		if feeID.Valid {
			it.FeeID = feeID.String
		}
		inv.Items = append(inv.Items, it)
	}
	return inv, rows.Err()
}

// List returns invoices newest first; clientID empty means all clients.
// Line items are not populated.
func (s *InvoiceStore) List(ctx context.Context, clientID string, limit int) ([]billing.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices`
	args := []any{}
	if clientID != "" {
		query += ` WHERE client_id = ?`
		args = append(args, clientID)
	}
	query += ` ORDER BY created_at DESC, invoice_id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []billing.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func scanInvoice(row rowScanner) (billing.Invoice, error) {
	var inv billing.Invoice
	var invoiceDate, invoiceMonth, chargeDate string
	err := row.Scan(
		&inv.ID, &inv.Number, &inv.BillerID, &inv.IssuerID, &inv.ClientID,
		&invoiceDate, &inv.InvoiceType, &invoiceMonth, &chargeDate,
		&inv.InvoiceAmount, &inv.TaxRate, &inv.TaxAmount, &inv.TotalAmount, &inv.TaxableAmount,
		&inv.RoundingUp, &inv.GrandTotal, &inv.AmountInWords, &inv.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return billing.Invoice{}, ports.ErrNotFound
	}
	if err != nil {
		return billing.Invoice{}, err
	}
	if inv.InvoiceDate, err = parseDate(invoiceDate); err != nil {
		return billing.Invoice{}, err
	}
	if inv.InvoiceMonth, err = parseDate(invoiceMonth); err != nil {
		return billing.Invoice{}, err
	}
	if inv.ChargeDate, err = parseDate(chargeDate); err != nil {
		return billing.Invoice{}, err
	}
	return inv, nil
}

// Ensure interface compliance.
var _ ports.InvoiceStore = (*InvoiceStore)(nil)
