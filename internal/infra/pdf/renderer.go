package pdf

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"dictation-pdf/internal/application"
	"dictation-pdf/internal/domain"
)

var _ application.Renderer = (*Renderer)(nil)

const (
	labelWidth = 120.0
	valueWidth = 350.0
	lineHeight = 14.0
	cellPad    = 6.0
)

var paymentMethods = [][2]string{
	{"Bank Transfer", "Account #: 12345678\nBank: Example Bank\nRouting #: 987654321"},
	{"Check", "Please mail to: 123 Business St., City, State ZIP"},
	{"Online", "www.example.com/pay"},
}

var agreementTerms = []string{
	"1. SERVICES: The service provider agrees to perform the services as discussed.",
	"2. PAYMENT: Payment shall be made according to the agreed terms.",
	"3. TERM: This agreement shall commence on the date specified above.",
}

type Renderer struct {
	now      func() time.Time
	compress bool
}

type Option func(*Renderer)

// WithClock sets the time used for the reference number and PDF metadata.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		r.now = now
	}
}

// WithoutCompression writes page content streams uncompressed.
func WithoutCompression() Option {
	return func(r *Renderer) {
		r.compress = false
	}
}

func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{now: time.Now, compress: true}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Renderer) Render(ctx context.Context, path string, fields domain.FieldMap, tmpl domain.Template) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := r.now()
	title := tmpl.Title
	if title == "" {
		title = strings.ToUpper(string(tmpl.DocumentType))
	}

	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetCompression(r.compress)
	pdf.SetCreationDate(now)
	pdf.SetModificationDate(now)
	pdf.SetTitle(title, true)
	pdf.SetCreator("dictation-pdf", true)
	pdf.SetMargins(72, 72, 72)
	pdf.SetAutoPageBreak(true, 72)
	pdf.AddPage()

	w := &writer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	w.title(title)
	w.space(20)
	w.bold("REF: " + strconv.FormatInt(now.Unix(), 10))
	w.space(20)
	w.fieldTable(fields.Entries())
	w.space(20)

	switch tmpl.DocumentType {
	case domain.DocumentTypeInvoice:
		w.heading("Payment Details")
		w.paragraph("Please make payment within 30 days of the invoice date.")
		w.space(10)
		w.paymentTable()
	case domain.DocumentTypeAgreement:
		w.heading("Agreement Terms")
		w.paragraph("This agreement sets forth the terms and conditions of the service to be provided.")
		w.space(10)
		for _, term := range agreementTerms {
			w.paragraph(term)
		}
	default:
		w.heading("Application Details")
		w.paragraph("Thank you for your application. We will review your information and contact you shortly.")
	}

	w.space(50)
	w.paragraph("Signature: _______________________________")
	w.space(20)
	w.paragraph("Date: _______________________________")

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}

type writer struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (w *writer) space(h float64) {
	w.pdf.Ln(h)
}

func (w *writer) title(text string) {
	w.pdf.SetFont("Helvetica", "B", 20)
	w.pdf.CellFormat(0, 24, w.tr(text), "", 1, "C", false, 0, "")
}

func (w *writer) heading(text string) {
	w.pdf.SetFont("Helvetica", "B", 14)
	w.pdf.CellFormat(0, 20, w.tr(text), "", 1, "L", false, 0, "")
}

func (w *writer) bold(text string) {
	w.pdf.SetFont("Helvetica", "B", 10)
	w.pdf.CellFormat(0, lineHeight, w.tr(text), "", 1, "L", false, 0, "")
}

func (w *writer) paragraph(text string) {
	w.pdf.SetFont("Helvetica", "", 10)
	w.pdf.MultiCell(0, lineHeight, w.tr(text), "", "L", false)
}

// fieldTable draws the label/value grid with a grey label column.
func (w *writer) fieldTable(entries []domain.Entry) {
	w.pdf.SetDrawColor(128, 128, 128)
	w.pdf.SetLineWidth(0.5)
	for _, e := range entries {
		w.row(string(e.Field)+":", e.Value, rowStyle{
			labelFill:  [3]int{211, 211, 211},
			labelAlign: "R",
			labelFont:  "B",
		})
	}
}

func (w *writer) paymentTable() {
	w.pdf.SetDrawColor(128, 128, 128)
	w.pdf.SetLineWidth(1)

	w.pdf.SetFont("Helvetica", "B", 12)
	w.pdf.SetFillColor(128, 128, 128)
	w.pdf.SetTextColor(245, 245, 245)
	w.pdf.CellFormat(labelWidth, 28, "Payment Method", "1", 0, "C", true, 0, "")
	w.pdf.CellFormat(valueWidth, 28, "Details", "1", 1, "C", true, 0, "")
	w.pdf.SetTextColor(0, 0, 0)

	for _, m := range paymentMethods {
		w.row(m[0], m[1], rowStyle{labelAlign: "L"})
	}
}

type rowStyle struct {
	labelFill  [3]int
	labelAlign string
	labelFont  string
}

func (w *writer) row(label, value string, style rowStyle) {
	w.pdf.SetFont("Helvetica", "", 10)
	lines := w.wrap(value, valueWidth-2*cellPad)
	height := float64(len(lines))*lineHeight + 2*cellPad

	_, pageH := w.pdf.GetPageSize()
	_, _, _, bottom := w.pdf.GetMargins()
	if w.pdf.GetY()+height > pageH-bottom {
		w.pdf.AddPage()
	}

	x, y := w.pdf.GetXY()
	fill := style.labelFill != [3]int{}
	if fill {
		w.pdf.SetFillColor(style.labelFill[0], style.labelFill[1], style.labelFill[2])
	}

	w.pdf.SetFont("Helvetica", style.labelFont, 10)
	w.pdf.CellFormat(labelWidth, height, w.tr(label), "1", 0, style.labelAlign, fill, 0, "")

	w.pdf.Rect(x+labelWidth, y, valueWidth, height, "D")
	w.pdf.SetFont("Helvetica", "", 10)
	for i, line := range lines {
		w.pdf.SetXY(x+labelWidth+cellPad, y+cellPad+float64(i)*lineHeight)
		w.pdf.CellFormat(valueWidth-2*cellPad, lineHeight, line, "", 0, "L", false, 0, "")
	}

	w.pdf.SetXY(x, y+height)
}

// wrap splits text on newlines and then to the given width.
func (w *writer) wrap(text string, width float64) []string {
	var out []string
	for _, para := range strings.Split(w.tr(text), "\n") {
		if para == "" {
			out = append(out, "")
			continue
		}
		for _, line := range w.pdf.SplitLines([]byte(para), width) {
			out = append(out, string(line))
		}
	}
	if len(out) == 0 {
		out = []string{""}
	}
	return out
}
