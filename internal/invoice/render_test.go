package invoice

import (
	"bytes"
	"testing"
	"time"
)

func TestRender_ProducesPDF(t *testing.T) {
	doc := Document{
		InvoiceNo:          Number(42),
		GuideName:          "Jo Bloggs",
		InvoiceDate:        time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC),
		PersonsTotal:       4,
		GrossPence:         4000,
		VICCommissionPence: 800,
		TotalPayablePence:  3200,
		BankSortCode:       "01-02-03",
		BankAccountNumber:  "12345678",
	}
	data, err := Render(doc)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output does not start with %%PDF magic")
	}
	if len(data) < 500 {
		t.Fatalf("suspiciously small PDF: %d bytes", len(data))
	}
}

func TestNumber(t *testing.T) {
	if got := Number(42); got != "INV-00000042" {
		t.Fatalf("Number(42) = %q", got)
	}
}

func TestPrettyDate(t *testing.T) {
	cases := []struct {
		day  int
		want string
	}{
		{1, "1st March 2026"},
		{2, "2nd March 2026"},
		{3, "3rd March 2026"},
		{4, "4th March 2026"},
		{11, "11th March 2026"},
		{12, "12th March 2026"},
		{13, "13th March 2026"},
		{21, "21st March 2026"},
		{22, "22nd March 2026"},
		{23, "23rd March 2026"},
	}
	for _, tc := range cases {
		d := time.Date(2026, time.March, tc.day, 0, 0, 0, 0, time.UTC)
		if got := prettyDate(d); got != tc.want {
			t.Fatalf("prettyDate(day=%d) = %q, want %q", tc.day, got, tc.want)
		}
	}
}

func TestNormalizePath(t *testing.T) {
	cases := []struct{ in, want string }{
		{"42/invoice-42.pdf", "42/invoice-42.pdf"},
		{"invoices/42/invoice-42.pdf", "42/invoice-42.pdf"},
		{"invoices/invoices/42/invoice-42.pdf", "42/invoice-42.pdf"},
	}
	for _, tc := range cases {
		if got := NormalizePath(tc.in); got != tc.want {
			t.Fatalf("NormalizePath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
