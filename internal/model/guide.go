package model

import "time"

// Guide represents a registered tourist guide.  UserID is the subject
// issued by the identity provider and links the guide to bearer tokens
// and push registrations.  The bank fields feed the invoice footer and
// are optional.
//
// Fields:
//  ID                – primary key identifier.
//  UserID            – identity-provider subject for this guide.
//  Name              – display name printed on invoices.
//  BankPayeeName     – BACS payee, falls back to Name when empty.
//  BankSortCode      – BACS sort code.
//  BankAccountNumber – BACS account number.
//  BankEmail         – remittance email address.
//  CreatedAt         – creation timestamp.
type Guide struct {
	ID                uint64    // guides.id
	UserID            string    // guides.user_id
	Name              string    // guides.name
	BankPayeeName     *string   // guides.bank_payee_name (nullable)
	BankSortCode      *string   // guides.bank_sort_code (nullable)
	BankAccountNumber *string   // guides.bank_account_number (nullable)
	BankEmail         *string   // guides.bank_email (nullable)
	CreatedAt         time.Time // guides.created_at
}
