package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/guidebooker/invoice-service/internal/invoice/domain"
	"github.com/guidebooker/invoice-service/internal/invoice/render"
	"github.com/guidebooker/invoice-service/internal/invoice/totals"
	"github.com/guidebooker/invoice-service/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const pdfContentType = "application/pdf"

type ServiceParam struct {
	fx.In

	Log      *zap.Logger
	Renderer render.Renderer
	Metrics  *metrics.Metrics `optional:"true"`
}

type Service struct {
	log      *zap.Logger
	renderer render.Renderer
	metrics  *metrics.Metrics
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		log:      p.Log,
		renderer: p.Renderer,
		metrics:  p.Metrics,
	}
}

// CreateInvoice computes the totals for the record, renders the document and
// hands the bytes back with the attachment metadata the transport layer
// needs. Each call works on its own state; nothing is shared or retried.
func (s *Service) CreateInvoice(ctx context.Context, record domain.InvoiceRecord) (domain.RenderedInvoice, error) {
	summary, err := totals.Compute(record.Items, record.Discount, record.TaxRate)
	if err != nil {
		s.metrics.RecordRenderFailure(ctx, "invalid_amount")
		return domain.RenderedInvoice{}, err
	}

	out, err := s.renderer.Render(record, summary)
	if err != nil {
		var layoutErr *domain.LayoutError
		if errors.As(err, &layoutErr) {
			s.log.Error("invoice layout failed",
				zap.String("invoice_number", record.InvoiceNumber),
				zap.String("field", layoutErr.Field),
				zap.Error(err),
			)
			s.metrics.RecordRenderFailure(ctx, "layout")
		} else {
			s.metrics.RecordRenderFailure(ctx, "render")
		}
		return domain.RenderedInvoice{}, err
	}

	s.metrics.RecordInvoiceRendered(ctx, record.Currency, out.Pages)

	return domain.RenderedInvoice{
		Bytes:       out.PDF,
		Pages:       out.Pages,
		Filename:    fmt.Sprintf("invoice-%s.pdf", record.InvoiceNumber),
		ContentType: pdfContentType,
	}, nil
}
