package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/cardbill/cardbill/domain/billing"
	"github.com/cardbill/cardbill/domain/fee"
)

// FeeResponse represents a catalog fee in API responses.
type FeeResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"fee_type"`
	Frequency string `json:"fee_frequency"`
	HSNCode   string `json:"hsn_code,omitempty"`
}

// FeeRequest represents a request to create or update a fee.
type FeeRequest struct {
	Name      string `json:"name"`
	Type      string `json:"fee_type"`
	Frequency string `json:"fee_frequency"`
	HSNCode   string `json:"hsn_code"`
}

func feeResponse(f fee.Fee) FeeResponse {
	return FeeResponse{
		ID:        f.ID,
		Name:      f.Name,
		Type:      string(f.Type),
		Frequency: string(f.Frequency),
		HSNCode:   f.HSNCode,
	}
}

// ListFees returns the fee catalog.
func (h *Handler) ListFees(w http.ResponseWriter, r *http.Request) {
	fees, err := h.fees.List(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	out := make([]FeeResponse, len(fees))
	for i, f := range fees {
		out[i] = feeResponse(f)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"fees":  out,
		"total": len(out),
	})
}

// GetFee returns one fee.
func (h *Handler) GetFee(w http.ResponseWriter, r *http.Request) {
	f, err := h.fees.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, feeResponse(f))
}

// CreateFee creates a new catalog fee.
func (h *Handler) CreateFee(w http.ResponseWriter, r *http.Request) {
	var req FeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	now := h.clock.Now()
	f := fee.Fee{
		ID:        h.ids.New("FEE"),
		Name:      req.Name,
		Type:      fee.Type(req.Type),
		Frequency: fee.Frequency(req.Frequency),
		HSNCode:   req.HSNCode,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := f.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if err := h.fees.Create(r.Context(), f); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, feeResponse(f))
}

// UpdateFee modifies an existing fee.
func (h *Handler) UpdateFee(w http.ResponseWriter, r *http.Request) {
	f, err := h.fees.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	var req FeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if req.Name != "" {
		f.Name = req.Name
	}
	if req.Type != "" {
		f.Type = fee.Type(req.Type)
	}
	if req.Frequency != "" {
		f.Frequency = fee.Frequency(req.Frequency)
	}
	if req.HSNCode != "" {
		f.HSNCode = req.HSNCode
	}
	f.UpdatedAt = h.clock.Now()

	if err := f.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if err := h.fees.Update(r.Context(), f); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, feeResponse(f))
}

// DeleteFee removes a fee unless mappings or history reference it.
func (h *Handler) DeleteFee(w http.ResponseWriter, r *http.Request) {
	if err := h.fees.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MappingResponse represents a price mapping in API responses.
type MappingResponse struct {
	ID        int64           `json:"id"`
	ClientID  string          `json:"client_id"`
	ProductID string          `json:"product_id"`
	FeeID     string          `json:"fee_id"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	StartDate string          `json:"start_date"`
	EndDate   string          `json:"end_date"`
}

// MappingRequest represents a request to create a price mapping.
type MappingRequest struct {
	ClientID  string          `json:"client_id"`
	ProductID string          `json:"product_id"`
	FeeID     string          `json:"fee_id"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	StartDate string          `json:"start_date"`
	EndDate   string          `json:"end_date"`
}

func mappingResponse(m fee.Mapping) MappingResponse {
	return MappingResponse{
		ID:        m.ID,
		ClientID:  m.ClientID,
		ProductID: m.ProductID,
		FeeID:     m.FeeID,
		UnitPrice: m.UnitPrice,
		StartDate: m.Start.Format(dateLayout),
		EndDate:   m.End.Format(dateLayout),
	}
}

// ListMappings returns all price mappings.
func (h *Handler) ListMappings(w http.ResponseWriter, r *http.Request) {
	mappings, err := h.mappings.List(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	out := make([]MappingResponse, len(mappings))
	for i, m := range mappings {
		out[i] = mappingResponse(m)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"mappings": out,
		"total":    len(out),
	})
}

// GetMapping returns one price mapping.
func (h *Handler) GetMapping(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Mapping id must be an integer")
		return
	}
	m, err := h.mappings.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mappingResponse(m))
}

// CreateMapping creates a new price mapping.
func (h *Handler) CreateMapping(w http.ResponseWriter, r *http.Request) {
	var req MappingRequest
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

	// Referential checks up front so the operator gets a 404 naming the
	// missing entity instead of a bare constraint failure.
	if _, err := h.clients.Get(r.Context(), req.ClientID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	if _, err := h.products.Get(r.Context(), req.ProductID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	if _, err := h.fees.Get(r.Context(), req.FeeID); err != nil {
		h.writeServiceError(w, err)
		return
	}

	now := h.clock.Now()
	m := fee.Mapping{
		ClientID:  req.ClientID,
		ProductID: req.ProductID,
		FeeID:     req.FeeID,
		UnitPrice: req.UnitPrice,
		Start:     start,
		End:       end,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	id, err := h.mappings.Create(r.Context(), m)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	m.ID = id
	writeJSON(w, http.StatusCreated, mappingResponse(m))
}

// DeleteMapping removes a price mapping.
func (h *Handler) DeleteMapping(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Mapping id must be an integer")
		return
	}
	if err := h.mappings.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// InterchangeResponse represents an interchange revenue record.
type InterchangeResponse struct {
	ID               int64           `json:"id"`
	ClientID         string          `json:"client_id"`
	StartDate        string          `json:"start_date"`
	EndDate          string          `json:"end_date"`
	ChargeDate       string          `json:"charge_date"`
	GrossAmount      decimal.Decimal `json:"interchange_amount"`
	MinimumGuarantee decimal.Decimal `json:"minimum_interchange"`
}

// InterchangeRequest represents a request to record interchange revenue.
type InterchangeRequest struct {
	ClientID         string          `json:"client_id"`
	StartDate        string          `json:"start_date"`
	EndDate          string          `json:"end_date"`
	GrossAmount      decimal.Decimal `json:"interchange_amount"`
	MinimumGuarantee decimal.Decimal `json:"minimum_interchange"`
}

func interchangeResponse(rec billing.InterchangeRecord) InterchangeResponse {
	return InterchangeResponse{
		ID:               rec.ID,
		ClientID:         rec.ClientID,
		StartDate:        rec.Start.Format(dateLayout),
		EndDate:          rec.End.Format(dateLayout),
		ChargeDate:       rec.ChargeDate.Format(dateLayout),
		GrossAmount:      rec.GrossAmount,
		MinimumGuarantee: rec.MinimumGuarantee,
	}
}

// ListInterchangeFees returns all interchange revenue records.
func (h *Handler) ListInterchangeFees(w http.ResponseWriter, r *http.Request) {
	records, err := h.interchange.List(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	out := make([]InterchangeResponse, len(records))
	for i, rec := range records {
		out[i] = interchangeResponse(rec)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"interchange_fees": out,
		"total":            len(out),
	})
}

// CreateInterchangeFee records an interchange revenue figure for a client
// and billing window.
func (h *Handler) CreateInterchangeFee(w http.ResponseWriter, r *http.Request) {
	var req InterchangeRequest
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
	if start.After(end) {
		writeError(w, http.StatusBadRequest, "invalid_request", "start_date is after end_date")
		return
	}
	if req.GrossAmount.IsNegative() || req.MinimumGuarantee.IsNegative() {
		writeError(w, http.StatusBadRequest, "invalid_request", "amounts must not be negative")
		return
	}
	if _, err := h.clients.Get(r.Context(), req.ClientID); err != nil {
		h.writeServiceError(w, err)
		return
	}

	now := h.clock.Now()
	rec := billing.InterchangeRecord{
		ClientID:         req.ClientID,
		Start:            start,
		End:              end,
		ChargeDate:       now,
		GrossAmount:      req.GrossAmount,
		MinimumGuarantee: req.MinimumGuarantee,
		CreatedAt:        now,
	}
	id, err := h.interchange.Create(r.Context(), rec)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	rec.ID = id
	writeJSON(w, http.StatusCreated, interchangeResponse(rec))
}

// ApplicableFees previews which fees would be charged for a period. It
// goes through the same resolver invoice generation uses.
func (h *Handler) ApplicableFees(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")
	start, err := parseDateParam(r, "start")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	end, err := parseDateParam(r, "end")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if _, err := h.clients.Get(r.Context(), clientID); err != nil {
		h.writeServiceError(w, err)
		return
	}

	fees, err := h.billing.ResolveFees(r.Context(), clientID, start, end, true)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	out := make([]FeeResponse, len(fees))
	for i, f := range fees {
		out[i] = feeResponse(f)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"applicable_fees": out,
		"total":           len(out),
	})
}

// HistoryResponse represents a charge ledger entry.
type HistoryResponse struct {
	ID         string          `json:"id"`
	ClientID   string          `json:"client_id"`
	IssuerID   string          `json:"issuer_id"`
	FeeID      string          `json:"fee_id"`
	ChargeDate string          `json:"charge_date"`
	PeriodKey  string          `json:"period_key"`
	Units      int64           `json:"units"`
	Total      decimal.Decimal `json:"total"`
}

// FeeHistory returns the client's charge ledger, newest first.
func (h *Handler) FeeHistory(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")
	if _, err := h.clients.Get(r.Context(), clientID); err != nil {
		h.writeServiceError(w, err)
		return
	}

	entries, err := h.history.ListByClient(r.Context(), clientID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	out := make([]HistoryResponse, len(entries))
	for i, e := range entries {
		out[i] = HistoryResponse{
			ID:         e.ID,
			ClientID:   e.ClientID,
			IssuerID:   e.IssuerID,
			FeeID:      e.FeeID,
			ChargeDate: e.ChargeDate.Format(dateLayout),
			PeriodKey:  e.PeriodKey,
			Units:      e.Units,
			Total:      e.Total,
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"fee_history": out,
		"total":       len(out),
	})
}
