package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type DocumentType string

const (
	DocumentTypeInvoice     DocumentType = "Invoice"
	DocumentTypeAgreement   DocumentType = "Agreement"
	DocumentTypeApplication DocumentType = "Application"
)

func (t DocumentType) Valid() bool {
	switch t {
	case DocumentTypeInvoice, DocumentTypeAgreement, DocumentTypeApplication:
		return true
	}
	return false
}

// ParseDocumentType accepts the canonical name in any letter case.
func ParseDocumentType(s string) (DocumentType, error) {
	for _, t := range []DocumentType{DocumentTypeInvoice, DocumentTypeAgreement, DocumentTypeApplication} {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown document type: %q", s)
}

type Field string

const (
	FieldName         Field = "Name"
	FieldDate         Field = "Date"
	FieldOrganization Field = "Organization"
	FieldLocation     Field = "Location"
	FieldAmount       Field = "Amount"
	FieldPhone        Field = "Phone"
	FieldEmail        Field = "Email"
	FieldDocumentType Field = "Document_Type"
)

// fieldOrder is the serialization order of the optional fields.
var fieldOrder = []Field{
	FieldName,
	FieldDate,
	FieldOrganization,
	FieldLocation,
	FieldAmount,
	FieldPhone,
	FieldEmail,
}

// FieldMap is the structured record extracted from one transcript. An empty
// string means the field was not found.
type FieldMap struct {
	Name         string
	Date         string
	Organization string
	Location     string
	Amount       string
	Phone        string
	Email        string
	DocumentType DocumentType
}

// Entry is one populated field, as shown in the rendered table.
type Entry struct {
	Field Field
	Value string
}

func (m *FieldMap) slot(f Field) *string {
	switch f {
	case FieldName:
		return &m.Name
	case FieldDate:
		return &m.Date
	case FieldOrganization:
		return &m.Organization
	case FieldLocation:
		return &m.Location
	case FieldAmount:
		return &m.Amount
	case FieldPhone:
		return &m.Phone
	case FieldEmail:
		return &m.Email
	}
	return nil
}

// Get returns the value of an optional field and whether it is set.
func (m FieldMap) Get(f Field) (string, bool) {
	if f == FieldDocumentType {
		return string(m.DocumentType), m.DocumentType != ""
	}
	p := m.slot(f)
	if p == nil || *p == "" {
		return "", false
	}
	return *p, true
}

// SetOnce stores value in f unless f already holds a value. It reports
// whether the value was stored.
func (m *FieldMap) SetOnce(f Field, value string) bool {
	if value == "" {
		return false
	}
	p := m.slot(f)
	if p == nil || *p != "" {
		return false
	}
	*p = value
	return true
}

// Entries lists the populated fields with Date first, excluding Document_Type.
func (m FieldMap) Entries() []Entry {
	entries := make([]Entry, 0, len(fieldOrder))
	if v, ok := m.Get(FieldDate); ok {
		entries = append(entries, Entry{Field: FieldDate, Value: v})
	}
	for _, f := range fieldOrder {
		if f == FieldDate {
			continue
		}
		if v, ok := m.Get(f); ok {
			entries = append(entries, Entry{Field: f, Value: v})
		}
	}
	return entries
}

func (m FieldMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	write := func(key Field, value string) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, err := json.Marshal(string(key))
		if err != nil {
			return err
		}
		v, err := json.Marshal(value)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
		return nil
	}

	for _, f := range fieldOrder {
		if v, ok := m.Get(f); ok {
			if err := write(f, v); err != nil {
				return nil, err
			}
		}
	}
	if m.DocumentType != "" {
		if err := write(FieldDocumentType, string(m.DocumentType)); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (m *FieldMap) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding field map: %w", err)
	}

	var out FieldMap
	for key, value := range raw {
		f := Field(key)
		if f == FieldDocumentType {
			t, err := ParseDocumentType(value)
			if err != nil {
				return err
			}
			out.DocumentType = t
			continue
		}
		p := out.slot(f)
		if p == nil {
			return fmt.Errorf("unknown field: %q", key)
		}
		*p = value
	}
	*m = out
	return nil
}
