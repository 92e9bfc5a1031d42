package domain

import "fmt"

type Template struct {
	Key          string
	Title        string
	Description  string
	DocumentType DocumentType
}

// Catalog is the ordered, read-only set of templates a document can be
// rendered with. Order is significant: it breaks ties between equal match
// scores.
type Catalog struct {
	templates []Template
	byKey     map[string]int
}

func NewCatalog(templates []Template) (*Catalog, error) {
	c := &Catalog{
		templates: make([]Template, 0, len(templates)),
		byKey:     make(map[string]int, len(templates)),
	}
	for _, t := range templates {
		if t.Key == "" {
			return nil, fmt.Errorf("template without key")
		}
		if _, dup := c.byKey[t.Key]; dup {
			return nil, fmt.Errorf("duplicate template key: %s", t.Key)
		}
		if !t.DocumentType.Valid() {
			return nil, fmt.Errorf("template %s: unknown document type %q", t.Key, t.DocumentType)
		}
		c.byKey[t.Key] = len(c.templates)
		c.templates = append(c.templates, t)
	}
	return c, nil
}

// DefaultTemplates returns the built-in invoice, agreement and application
// templates.
func DefaultTemplates() []Template {
	return []Template{
		{
			Key:          "invoice",
			Title:        "INVOICE",
			Description:  "Invoice for payment including client details, amount, and services rendered",
			DocumentType: DocumentTypeInvoice,
		},
		{
			Key:          "agreement",
			Title:        "SERVICE AGREEMENT",
			Description:  "Service level agreement with customer details and service terms",
			DocumentType: DocumentTypeAgreement,
		},
		{
			Key:          "application",
			Title:        "APPLICATION FORM",
			Description:  "Application form with personal information including name, contact details",
			DocumentType: DocumentTypeApplication,
		},
	}
}

func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultTemplates())
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) Len() int {
	return len(c.templates)
}

// Templates returns a copy of the templates in catalog order.
func (c *Catalog) Templates() []Template {
	out := make([]Template, len(c.templates))
	copy(out, c.templates)
	return out
}

func (c *Catalog) Lookup(key string) (Template, bool) {
	i, ok := c.byKey[key]
	if !ok {
		return Template{}, false
	}
	return c.templates[i], true
}

// ForType returns the first template rendering the given document type.
func (c *Catalog) ForType(t DocumentType) (Template, bool) {
	for _, tmpl := range c.templates {
		if tmpl.DocumentType == t {
			return tmpl, true
		}
	}
	return Template{}, false
}
