// Package render produces invoice documents. HTML comes from an embedded
// template; PDF conversion drives headless Chrome through the DevTools
// protocol.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cardbill/cardbill/ports"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer implements ports.Renderer.
type Renderer struct {
	tmpl *template.Template
	opts Options
}

// Options controls PDF conversion.
type Options struct {
	// ChromePath overrides the browser binary; empty uses chromedp's
	// default lookup.
	ChromePath string

	// Timeout bounds a single PDF conversion. Zero means 30s.
	Timeout time.Duration
}

// New parses the embedded invoice template.
func New(opts Options) (*Renderer, error) {
	tmpl, err := template.New("invoice").Funcs(template.FuncMap{
		"money":  func(d decimal.Decimal) string { return d.StringFixed(2) },
		"date":   func(t time.Time) string { return t.Format("02-01-2006") },
		"month":  func(t time.Time) string { return t.Format("January 2006") },
		"addOne": func(i int) int { return i + 1 },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse invoice template: %w", err)
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Renderer{tmpl: tmpl, opts: opts}, nil
}

// RenderHTML renders the invoice document as HTML.
func (r *Renderer) RenderHTML(in ports.RenderInput) (string, error) {
	if in.Invoice.ID == "" {
		return "", fmt.Errorf("render: invoice has no ID")
	}
	if len(in.Invoice.Items) == 0 {
		return "", fmt.Errorf("render: invoice %s has no line items", in.Invoice.ID)
	}
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "invoice.html", in); err != nil {
		return "", fmt.Errorf("render invoice %s: %w", in.Invoice.ID, err)
	}
	return buf.String(), nil
}

// Ensure interface compliance.
var _ ports.Renderer = (*Renderer)(nil)
