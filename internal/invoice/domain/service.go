package domain

import "context"

type Service interface {
	CreateInvoice(ctx context.Context, record InvoiceRecord) (RenderedInvoice, error)
}
