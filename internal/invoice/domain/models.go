// Package domain contains the booking invoice data model shared by the
// totals calculator, the PDF layout engine and the HTTP surface.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one billable row on an invoice.
type LineItem struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// Total returns quantity times unit price at full precision.
func (li LineItem) Total() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// InvoiceRecord is one fully validated booking record. It is owned by a
// single request and never mutated after construction.
type InvoiceRecord struct {
	InvoiceNumber   string
	CustomerName    string
	CustomerEmail   string
	CustomerAddress string
	BookingDate     time.Time
	DueDate         time.Time
	GuideName       string
	Items           []LineItem
	TaxRate         decimal.Decimal
	Discount        decimal.Decimal
	Notes           string
	Currency        string
}

// TotalsSummary holds the monetary breakdown derived from an InvoiceRecord.
// All values are kept at full precision; rounding happens only when a value
// is formatted for display.
type TotalsSummary struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxableBase    decimal.Decimal
	TaxAmount      decimal.Decimal
	GrandTotal     decimal.Decimal
}

// RenderedInvoice is the finished document handed back to the transport
// layer. Ownership transfers to the caller on return.
type RenderedInvoice struct {
	Bytes       []byte
	Pages       int
	Filename    string
	ContentType string
}
