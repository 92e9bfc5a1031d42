package domain_test

import (
	"encoding/json"
	"strings"
	"testing"

	"dictation-pdf/internal/domain"
)

func TestFieldMap_SetOnce(t *testing.T) {
	var m domain.FieldMap

	if !m.SetOnce(domain.FieldName, "John Smith") {
		t.Fatal("first SetOnce should store the value")
	}
	if m.SetOnce(domain.FieldName, "Jane Doe") {
		t.Error("second SetOnce should be refused")
	}
	if m.Name != "John Smith" {
		t.Errorf("Name: got %q, want John Smith", m.Name)
	}
	if m.SetOnce(domain.FieldEmail, "") {
		t.Error("empty value should not be stored")
	}
	if m.SetOnce(domain.FieldDocumentType, "Invoice") {
		t.Error("Document_Type is not settable through SetOnce")
	}
}

func TestFieldMap_Entries(t *testing.T) {
	m := domain.FieldMap{
		Name:         "John Smith",
		Date:         "April 10, 2025",
		Amount:       "$1,500",
		Email:        "john.smith@example.com",
		DocumentType: domain.DocumentTypeInvoice,
	}

	entries := m.Entries()

	want := []domain.Field{domain.FieldDate, domain.FieldName, domain.FieldAmount, domain.FieldEmail}
	if len(entries) != len(want) {
		t.Fatalf("entries: got %d, want %d", len(entries), len(want))
	}
	for i, f := range want {
		if entries[i].Field != f {
			t.Errorf("entry %d: got %s, want %s", i, entries[i].Field, f)
		}
	}
}

func TestFieldMap_JSONRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   domain.FieldMap
	}{
		{
			name: "full",
			in: domain.FieldMap{
				Name:         "Sarah Johnson",
				Date:         "May 15, 2025",
				Organization: "ABC Company",
				Location:     "New York",
				Amount:       "$2,000",
				Phone:        "800-555-7890",
				Email:        "sarah@abc.example",
				DocumentType: domain.DocumentTypeAgreement,
			},
		},
		{
			name: "minimal",
			in: domain.FieldMap{
				Date:         "October 16, 2026",
				DocumentType: domain.DocumentTypeApplication,
			},
		},
		{
			name: "escaped characters",
			in: domain.FieldMap{
				Name:         `O"Brien <Jr>`,
				Date:         "today",
				DocumentType: domain.DocumentTypeInvoice,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.MarshalIndent(tt.in, "", "    ")
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}

			var out domain.FieldMap
			if err := json.Unmarshal(data, &out); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}

			if out != tt.in {
				t.Errorf("round trip mismatch:\n got %+v\nwant %+v", out, tt.in)
			}
		})
	}
}

func TestFieldMap_JSONKeyOrder(t *testing.T) {
	m := domain.FieldMap{
		Email:        "a@b.co",
		Name:         "John",
		Date:         "May 1, 2025",
		DocumentType: domain.DocumentTypeInvoice,
	}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := `{"Name":"John","Date":"May 1, 2025","Email":"a@b.co","Document_Type":"Invoice"}`
	if string(data) != want {
		t.Errorf("json: got %s, want %s", data, want)
	}
}

func TestFieldMap_UnmarshalRejectsUnknown(t *testing.T) {
	tests := map[string]string{
		"unknown field":         `{"Nickname":"JJ"}`,
		"unknown document type": `{"Document_Type":"Receipt"}`,
		"not an object":         `["Name"]`,
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			var m domain.FieldMap
			if err := json.Unmarshal([]byte(input), &m); err == nil {
				t.Errorf("expected error for %s", input)
			}
		})
	}
}

func TestParseDocumentType(t *testing.T) {
	got, err := domain.ParseDocumentType("invoice")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != domain.DocumentTypeInvoice {
		t.Errorf("got %s, want Invoice", got)
	}

	if _, err := domain.ParseDocumentType("memo"); err == nil || !strings.Contains(err.Error(), "memo") {
		t.Errorf("expected error naming the type, got %v", err)
	}
}
