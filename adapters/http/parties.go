package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cardbill/cardbill/domain/party"
)

// BillerResponse represents a biller in API responses.
type BillerResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	GSTIN   string `json:"gstin,omitempty"`
	Email   string `json:"email,omitempty"`
	Contact string `json:"contact,omitempty"`
}

// BillerRequest represents a request to create or update a biller.
type BillerRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	GSTIN   string `json:"gstin"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

func billerResponse(b party.Biller) BillerResponse {
	return BillerResponse{
		ID:      b.ID,
		Name:    b.Name,
		Address: b.Address,
		GSTIN:   b.GSTIN,
		Email:   b.Email,
		Contact: b.Contact,
	}
}

// ListBillers returns all billers.
func (h *Handler) ListBillers(w http.ResponseWriter, r *http.Request) {
	billers, err := h.billers.List(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	out := make([]BillerResponse, len(billers))
	for i, b := range billers {
		out[i] = billerResponse(b)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"billers": out,
		"total":   len(out),
	})
}

// GetBiller returns one biller.
func (h *Handler) GetBiller(w http.ResponseWriter, r *http.Request) {
	b, err := h.billers.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, billerResponse(b))
}

// CreateBiller creates a new biller.
func (h *Handler) CreateBiller(w http.ResponseWriter, r *http.Request) {
	var req BillerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "Biller name is required")
		return
	}

	now := h.clock.Now()
	b := party.Biller{
		ID:        h.ids.New("BILLER"),
		Name:      req.Name,
		Address:   req.Address,
		GSTIN:     req.GSTIN,
		Email:     req.Email,
		Contact:   req.Contact,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.billers.Create(r.Context(), b); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, billerResponse(b))
}

// UpdateBiller modifies an existing biller.
func (h *Handler) UpdateBiller(w http.ResponseWriter, r *http.Request) {
	b, err := h.billers.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	var req BillerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if req.Name != "" {
		b.Name = req.Name
	}
	if req.Address != "" {
		b.Address = req.Address
	}
	if req.GSTIN != "" {
		b.GSTIN = req.GSTIN
	}
	if req.Email != "" {
		b.Email = req.Email
	}
	if req.Contact != "" {
		b.Contact = req.Contact
	}
	b.UpdatedAt = h.clock.Now()

	if err := h.billers.Update(r.Context(), b); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, billerResponse(b))
}

// IssuerResponse represents an issuer in API responses.
type IssuerResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// IssuerRequest represents a request to create or update an issuer.
type IssuerRequest struct {
	Name string `json:"name"`
}

// ListIssuers returns all issuers.
func (h *Handler) ListIssuers(w http.ResponseWriter, r *http.Request) {
	issuers, err := h.issuers.List(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	out := make([]IssuerResponse, len(issuers))
	for i, is := range issuers {
		out[i] = IssuerResponse{ID: is.ID, Name: is.Name}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"issuers": out,
		"total":   len(out),
	})
}

// GetIssuer returns one issuer.
func (h *Handler) GetIssuer(w http.ResponseWriter, r *http.Request) {
	is, err := h.issuers.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, IssuerResponse{ID: is.ID, Name: is.Name})
}

// CreateIssuer creates a new issuer.
func (h *Handler) CreateIssuer(w http.ResponseWriter, r *http.Request) {
	var req IssuerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "Issuer name is required")
		return
	}

	now := h.clock.Now()
	is := party.Issuer{
		ID:        h.ids.New("ISSUER"),
		Name:      req.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.issuers.Create(r.Context(), is); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, IssuerResponse{ID: is.ID, Name: is.Name})
}

// UpdateIssuer modifies an existing issuer.
func (h *Handler) UpdateIssuer(w http.ResponseWriter, r *http.Request) {
	is, err := h.issuers.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	var req IssuerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if req.Name != "" {
		is.Name = req.Name
	}
	is.UpdatedAt = h.clock.Now()

	if err := h.issuers.Update(r.Context(), is); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, IssuerResponse{ID: is.ID, Name: is.Name})
}

// DeleteIssuer removes an issuer.
func (h *Handler) DeleteIssuer(w http.ResponseWriter, r *http.Request) {
	if err := h.issuers.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClientResponse represents a client in API responses.
type ClientResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IssuerID string `json:"issuer_id"`
	Address  string `json:"address,omitempty"`
	GSTIN    string `json:"gstin,omitempty"`
	Email    string `json:"email,omitempty"`
	Contact  string `json:"contact,omitempty"`
	Type     string `json:"client_type"`
}

// ClientRequest represents a request to create or update a client.
type ClientRequest struct {
	Name     string `json:"name"`
	IssuerID string `json:"issuer_id"`
	Address  string `json:"address"`
	GSTIN    string `json:"gstin"`
	Email    string `json:"email"`
	Contact  string `json:"contact"`
	Type     string `json:"client_type"`
}

func clientResponse(c party.Client) ClientResponse {
	return ClientResponse{
		ID:       c.ID,
		Name:     c.Name,
		IssuerID: c.IssuerID,
		Address:  c.Address,
		GSTIN:    c.GSTIN,
		Email:    c.Email,
		Contact:  c.Contact,
		Type:     string(c.Type),
	}
}

// ListClients returns all clients.
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.clients.List(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	out := make([]ClientResponse, len(clients))
	for i, c := range clients {
		out[i] = clientResponse(c)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"clients": out,
		"total":   len(out),
	})
}

// GetClient returns one client.
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	c, err := h.clients.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, clientResponse(c))
}

// CreateClient creates a new client.
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req ClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	if _, err := h.issuers.Get(r.Context(), req.IssuerID); err != nil {
		h.writeServiceError(w, err)
		return
	}

	now := h.clock.Now()
	c := party.Client{
		ID:        h.ids.New("CLIENT"),
		Name:      req.Name,
		IssuerID:  req.IssuerID,
		Address:   req.Address,
		GSTIN:     req.GSTIN,
		Email:     req.Email,
		Contact:   req.Contact,
		Type:      party.ClientType(req.Type),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if err := h.clients.Create(r.Context(), c); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, clientResponse(c))
}

// UpdateClient modifies an existing client.
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	c, err := h.clients.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	var req ClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if req.Name != "" {
		c.Name = req.Name
	}
	if req.IssuerID != "" {
		if _, err := h.issuers.Get(r.Context(), req.IssuerID); err != nil {
			h.writeServiceError(w, err)
			return
		}
		c.IssuerID = req.IssuerID
	}
	if req.Address != "" {
		c.Address = req.Address
	}
	if req.GSTIN != "" {
		c.GSTIN = req.GSTIN
	}
	if req.Email != "" {
		c.Email = req.Email
	}
	if req.Contact != "" {
		c.Contact = req.Contact
	}
	if req.Type != "" {
		c.Type = party.ClientType(req.Type)
	}
	c.UpdatedAt = h.clock.Now()

	if err := c.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if err := h.clients.Update(r.Context(), c); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, clientResponse(c))
}

// DeleteClient removes a client.
func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	if err := h.clients.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ProductResponse represents a product in API responses.
type ProductResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IssuerID string `json:"issuer_id"`
}

// ProductRequest represents a request to create or update a product.
type ProductRequest struct {
	Name     string `json:"name"`
	IssuerID string `json:"issuer_id"`
}

// ListProducts returns all products.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	out := make([]ProductResponse, len(products))
	for i, p := range products {
		out[i] = ProductResponse{ID: p.ID, Name: p.Name, IssuerID: p.IssuerID}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"products": out,
		"total":    len(out),
	})
}

// GetProduct returns one product.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ProductResponse{ID: p.ID, Name: p.Name, IssuerID: p.IssuerID})
}

// CreateProduct creates a new product.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "Product name is required")
		return
	}
	if _, err := h.issuers.Get(r.Context(), req.IssuerID); err != nil {
		h.writeServiceError(w, err)
		return
	}

	now := h.clock.Now()
	p := party.Product{
		ID:        h.ids.New("PRODUCT"),
		Name:      req.Name,
		IssuerID:  req.IssuerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.products.Create(r.Context(), p); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ProductResponse{ID: p.ID, Name: p.Name, IssuerID: p.IssuerID})
}

// UpdateProduct modifies an existing product.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if req.Name != "" {
		p.Name = req.Name
	}
	if req.IssuerID != "" {
		if _, err := h.issuers.Get(r.Context(), req.IssuerID); err != nil {
			h.writeServiceError(w, err)
			return
		}
		p.IssuerID = req.IssuerID
	}
	p.UpdatedAt = h.clock.Now()

	if err := h.products.Update(r.Context(), p); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ProductResponse{ID: p.ID, Name: p.Name, IssuerID: p.IssuerID})
}

// DeleteProduct removes a product.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
