// Package invoice renders tour invoices to PDF and stores the resulting
// artifacts.  Rendering is pure: the same document data always produces
// the same layout, and nothing here touches the database.
package invoice

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Document carries everything printed on one invoice.  Monetary values
// are pence; formatting to pounds happens only at render time.
type Document struct {
	InvoiceNo          string
	GuideName          string
	ClientName         string
	InvoiceDate        time.Time
	BookingRef         string
	TourLabel          string
	PersonsTotal       int64
	GrossPence         int64
	VICCommissionPence int64
	TotalPayablePence  int64
	BankPayeeName      string
	BankSortCode       string
	BankAccountNumber  string
	BankEmail          string
}

// Number derives the invoice reference for a slot.
func Number(slotID uint64) string {
	return fmt.Sprintf("INV-%08d", slotID)
}

// money formats pence as whole pounds, matching the agreed invoice
// layout which shows no decimals.
func money(pence int64) string {
	return fmt.Sprintf("£%d", pence/100)
}

// prettyDate renders "2nd January 2026" style dates for the fee table.
func prettyDate(t time.Time) string {
	day := t.Day()
	suffix := "th"
	switch {
	case day%10 == 1 && day != 11:
		suffix = "st"
	case day%10 == 2 && day != 12:
		suffix = "nd"
	case day%10 == 3 && day != 13:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s %s %d", day, suffix, t.Month().String(), t.Year())
}

// Render produces the invoice PDF as bytes.  Layout: header with the
// invoice reference, the guide block, the client line, a three-column
// fee table (date, booking reference, fee), the gross and VIC commission
// lines, the total payable, and the BACS footer.
func Render(doc Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	usable := pageW - left - right
	col2 := usable * 0.33
	feeW := usable * 0.22

	// Header
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(usable, 9, "INVOICE", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(usable, 5, tr(fmt.Sprintf("Invoice reference: %s", doc.InvoiceNo)), "", 1, "L", false, 0, "")
	pdf.Ln(8)

	// Guide block
	name := doc.GuideName
	if name == "" {
		name = "—"
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(usable, 6, tr(name), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(usable, 5, "Registered Green Badge Tourist Guide", "", 1, "L", false, 0, "")
	pdf.Ln(8)

	client := doc.ClientName
	if client == "" {
		client = "Marketing Cheshire"
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(usable, 5, tr(fmt.Sprintf("TO: %s", client)), "", 1, "L", false, 0, "")
	pdf.Ln(10)

	// Fee table header
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(col2, 5, "Date", "", 0, "L", false, 0, "")
	pdf.CellFormat(usable-col2-feeW, 5, "Booking Reference", "", 0, "L", false, 0, "")
	pdf.CellFormat(feeW, 5, "Fee", "", 1, "R", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(col2, 5, prettyDate(doc.InvoiceDate), "", 0, "L", false, 0, "")
	pdf.CellFormat(usable-col2-feeW, 5, tr(doc.BookingRef), "", 0, "L", false, 0, "")
	pdf.CellFormat(feeW, 5, "", "", 1, "R", false, 0, "")
	pdf.Ln(6)

	label := doc.TourLabel
	if label == "" {
		label = "Chester Tour"
	}
	pdf.CellFormat(col2, 5, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(usable-col2-feeW, 5, tr(fmt.Sprintf("%s - %d visitors", label, doc.PersonsTotal)), "", 0, "L", false, 0, "")
	pdf.CellFormat(feeW, 5, tr(money(doc.GrossPence)), "", 1, "R", false, 0, "")
	pdf.Ln(2)

	pdf.CellFormat(col2, 5, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(usable-col2-feeW, 5, "VIC Commission", "", 0, "L", false, 0, "")
	pdf.CellFormat(feeW, 5, tr("-"+money(doc.VICCommissionPence)), "", 1, "R", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(col2, 6, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(usable-col2-feeW, 6, "TOTAL PAYABLE", "", 0, "L", false, 0, "")
	pdf.CellFormat(feeW, 6, tr(money(doc.TotalPayablePence)), "", 1, "R", false, 0, "")
	pdf.Ln(10)

	// BACS footer
	payee := doc.BankPayeeName
	if payee == "" {
		payee = name
	}
	sort := doc.BankSortCode
	if sort == "" {
		sort = "—"
	}
	acct := doc.BankAccountNumber
	if acct == "" {
		acct = "—"
	}
	pdf.SetFont("Helvetica", "", 10)
	bacs := fmt.Sprintf("BACS Payment: %s  Sort code: %s  Account: %s", payee, sort, acct)
	pdf.CellFormat(usable, 5, tr(bacs), "", 1, "L", false, 0, "")
	if doc.BankEmail != "" {
		pdf.CellFormat(usable, 5, tr(doc.BankEmail), "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}
