package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/cardbill/cardbill/app"
	"github.com/cardbill/cardbill/domain/billing"
)

// GenerateInvoiceRequest represents an invoice generation request.
type GenerateInvoiceRequest struct {
	ClientID     string           `json:"client_id"`
	StartDate    string           `json:"start_date"`
	EndDate      string           `json:"end_date"`
	SharePercent decimal.Decimal  `json:"share_percent"`
	Units        map[string]int64 `json:"units,omitempty"`
}

// LineItemResponse represents an invoice line item.
type LineItemResponse struct {
	FeeID       string          `json:"fee_id,omitempty"`
	Description string          `json:"description"`
	Units       int64           `json:"units"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
	GSTAmount   decimal.Decimal `json:"gst_amount"`
	FinalAmount decimal.Decimal `json:"final_amount"`
}

// InvoiceResponse represents an invoice, optionally with line items.
type InvoiceResponse struct {
	ID            string             `json:"id"`
	Number        string             `json:"invoice_number"`
	BillerID      string             `json:"biller_id"`
	IssuerID      string             `json:"issuer_id"`
	ClientID      string             `json:"client_id"`
	InvoiceDate   string             `json:"invoice_date"`
	InvoiceType   string             `json:"invoice_type"`
	InvoiceMonth  string             `json:"invoice_month"`
	InvoiceAmount decimal.Decimal    `json:"invoice_amount"`
	TaxRate       decimal.Decimal    `json:"tax_rate"`
	TaxAmount     decimal.Decimal    `json:"tax_amount"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	TaxableAmount decimal.Decimal    `json:"taxable_amount"`
	RoundingUp    decimal.Decimal    `json:"rounding_up"`
	GrandTotal    decimal.Decimal    `json:"grand_total"`
	AmountInWords string             `json:"amount_in_words"`
	Items         []LineItemResponse `json:"line_items,omitempty"`
}

func invoiceResponse(inv billing.Invoice, withItems bool) InvoiceResponse {
	resp := InvoiceResponse{
		ID:            inv.ID,
		Number:        inv.Number,
		BillerID:      inv.BillerID,
		IssuerID:      inv.IssuerID,
		ClientID:      inv.ClientID,
		InvoiceDate:   inv.InvoiceDate.Format(dateLayout),
		InvoiceType:   inv.InvoiceType,
		InvoiceMonth:  inv.InvoiceMonth.Format("2006-01"),
		InvoiceAmount: inv.InvoiceAmount,
		TaxRate:       inv.TaxRate,
		TaxAmount:     inv.TaxAmount,
		TotalAmount:   inv.TotalAmount,
		TaxableAmount: inv.TaxableAmount,
		RoundingUp:    inv.RoundingUp,
		GrandTotal:    inv.GrandTotal,
		AmountInWords: inv.AmountInWords,
	}
	if withItems {
		resp.Items = make([]LineItemResponse, len(inv.Items))
		for i, it := range inv.Items {
			resp.Items[i] = LineItemResponse{
				FeeID:       it.FeeID,
				Description: it.Description,
				Units:       it.Units,
				UnitPrice:   it.UnitPrice,
				Total:       it.Total,
				GSTAmount:   it.GSTAmount,
				FinalAmount: it.FinalAmount,
			}
		}
	}
	return resp
}

// GenerateInvoice computes and persists an invoice for a billing period.
// Fees that resolved as applicable but had no active price mapping come
// back as warnings alongside the invoice.
func (h *Handler) GenerateInvoice(w http.ResponseWriter, r *http.Request) {
	var req GenerateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "start_date must be a date in YYYY-MM-DD form")
		return
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "end_date must be a date in YYYY-MM-DD form")
		return
	}

	res, err := h.billing.GenerateInvoice(r.Context(), app.GenerateParams{
		ClientID:     req.ClientID,
		Start:        start,
		End:          end,
		SharePercent: req.SharePercent,
		Units:        req.Units,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	warnings := make([]string, len(res.Unpriced))
	for i, feeID := range res.Unpriced {
		warnings[i] = fmt.Sprintf("fee %s is applicable but has no active price mapping", feeID)
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"invoice":  invoiceResponse(res.Invoice, true),
		"warnings": warnings,
	})
}

// ListInvoices returns invoices newest first, optionally filtered by
// client.
func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("client_id")
	limit := parseIntQuery(r, "limit", 100)

	invoices, err := h.invoices.List(r.Context(), clientID, limit)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	out := make([]InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		out[i] = invoiceResponse(inv, false)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"invoices": out,
		"total":    len(out),
	})
}

// GetInvoice returns an invoice with its line items.
func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.invoices.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, invoiceResponse(inv, true))
}

// InvoicePDF renders a persisted invoice as a PDF download. Rendering is
// repeatable: a failed render never affects the stored invoice.
func (h *Handler) InvoicePDF(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pdf, err := h.billing.RenderInvoicePDF(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=invoice_%s.pdf", id))
	w.Write(pdf)
}
