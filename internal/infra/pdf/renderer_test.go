package pdf_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dictation-pdf/internal/domain"
	"dictation-pdf/internal/infra/pdf"
)

func fixedClock() time.Time {
	return time.Unix(1700000000, 0).UTC()
}

func render(t *testing.T, fields domain.FieldMap, tmpl domain.Template) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), tmpl.Key+"_form.pdf")
	r := pdf.NewRenderer(pdf.WithClock(fixedClock), pdf.WithoutCompression())

	if err := r.Render(context.Background(), path, fields, tmpl); err != nil {
		t.Fatalf("Render: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("not a pdf: %q", data[:min(len(data), 16)])
	}
	return string(data)
}

func lookup(t *testing.T, key string) domain.Template {
	t.Helper()
	tmpl, ok := domain.DefaultCatalog().Lookup(key)
	if !ok {
		t.Fatalf("no template %s", key)
	}
	return tmpl
}

func TestRenderer_Invoice(t *testing.T) {
	fields := domain.FieldMap{
		Name:         "John Smith",
		Date:         "April 10, 2025",
		Amount:       "$1,500",
		Phone:        "555-123-4567",
		Email:        "john.smith@example.com",
		DocumentType: domain.DocumentTypeInvoice,
	}

	out := render(t, fields, lookup(t, "invoice"))

	for _, want := range []string{
		"INVOICE",
		"REF: 1700000000",
		"Date:",
		"April 10, 2025",
		"John Smith",
		"john.smith@example.com",
		"Payment Details",
		"Bank Transfer",
		"Routing #: 987654321",
		"www.example.com/pay",
		"Signature:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q", want)
		}
	}

	if strings.Contains(out, "Document_Type") {
		t.Error("Document_Type should not be rendered")
	}
}

func TestRenderer_Agreement(t *testing.T) {
	fields := domain.FieldMap{
		Name:         "Sarah Johnson",
		Organization: "ABC Company",
		DocumentType: domain.DocumentTypeAgreement,
	}

	out := render(t, fields, lookup(t, "agreement"))

	for _, want := range []string{"SERVICE AGREEMENT", "Agreement Terms", "3. TERM:", "ABC Company"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q", want)
		}
	}
	if strings.Contains(out, "Payment Details") {
		t.Error("agreement should not carry payment details")
	}
}

func TestRenderer_ApplicationWithNoFields(t *testing.T) {
	out := render(t, domain.FieldMap{}, lookup(t, "application"))

	for _, want := range []string{"APPLICATION FORM", "Application Details", "Thank you for your application."} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q", want)
		}
	}
}

func TestRenderer_LongValueWraps(t *testing.T) {
	fields := domain.FieldMap{
		Location:     strings.Repeat("123 Business Street, ", 20),
		DocumentType: domain.DocumentTypeApplication,
	}

	render(t, fields, lookup(t, "application"))
}

func TestRenderer_Errors(t *testing.T) {
	r := pdf.NewRenderer()
	tmpl := domain.DefaultTemplates()[0]

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.Render(ctx, filepath.Join(t.TempDir(), "x.pdf"), domain.FieldMap{}, tmpl); err == nil {
		t.Error("expected error for cancelled context")
	}

	missing := filepath.Join(t.TempDir(), "no", "such", "dir", "x.pdf")
	if err := r.Render(context.Background(), missing, domain.FieldMap{}, tmpl); err == nil {
		t.Error("expected error for unwritable path")
	}
}
