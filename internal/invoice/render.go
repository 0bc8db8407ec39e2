package invoice

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
)

// Renderer produces a byte document from an invoice snapshot. Rendering
// failure is a hard error and is never retried.
type Renderer interface {
	Render(rec Record) ([]byte, error)
}

//go:embed invoice.html.tmpl
var invoiceTemplate string

// HTMLRenderer renders an invoice snapshot as a standalone HTML document.
type HTMLRenderer struct {
	tmpl *template.Template
}

func NewHTMLRenderer() (*HTMLRenderer, error) {
	tmpl, err := template.New("invoice").Funcs(template.FuncMap{
		"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	}).Parse(invoiceTemplate)
	if err != nil {
		return nil, fmt.Errorf("invoice: parsing template: %w", err)
	}
	return &HTMLRenderer{tmpl: tmpl}, nil
}

func (r *HTMLRenderer) Render(rec Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, rec); err != nil {
		return nil, fmt.Errorf("invoice: rendering: %w", err)
	}
	return buf.Bytes(), nil
}
