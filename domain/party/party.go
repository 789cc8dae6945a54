// Package party provides the parties that appear on an invoice: the biller
// issuing it, the issuer whose card program is billed, the client receiving
// it, and the products sold under a program.
package party

import (
	"errors"
	"strings"
	"time"
)

// ClientType is the commercial model a client operates under.
type ClientType string

const (
	ClientTypeTSP            ClientType = "TSP Model"
	ClientTypeProgramManager ClientType = "Program Manager Model"
)

// Valid reports whether the client type is a known model.
func (t ClientType) Valid() bool {
	return t == ClientTypeTSP || t == ClientTypeProgramManager
}

// Biller is the invoicing entity. A deployment normally has exactly one.
type Biller struct {
	ID        string
	Name      string
	Address   string
	GSTIN     string
	Email     string
	Contact   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Issuer is the card-issuing bank a client and its products belong to.
type Issuer struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Client is a billed customer of the biller.
type Client struct {
	ID        string
	Name      string
	IssuerID  string
	Address   string
	GSTIN     string
	Email     string
	Contact   string
	Type      ClientType
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks required fields and the closed client-type enumeration.
func (c Client) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("client name is required")
	}
	if !c.Type.Valid() {
		return errors.New("invalid client type")
	}
	return nil
}

// Product is an offering of an issuer that fees can be mapped against.
type Product struct {
	ID        string
	Name      string
	IssuerID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
