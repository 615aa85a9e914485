package domain

// Party is a counterparty (vendor, customer, insurer) referenced by ledger entries.
type Party struct {
	PartyID string `json:"partyID"` // Primary Key (UUID)
	Name    string `json:"name"`
	IsActive bool  `json:"isActive"`
	AuditFields
}

// Head is a transaction category used to classify ledger entries.
type Head struct {
	HeadID   string `json:"headID"` // Primary Key (UUID)
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
	AuditFields
}

// PaymentType classifies how a payment was made (cash, cheque, UPI, ...).
type PaymentType struct {
	PaymentTypeID string `json:"paymentTypeID"` // Primary Key (UUID)
	Name          string `json:"name"`
	IsActive      bool   `json:"isActive"`
	AuditFields
}
