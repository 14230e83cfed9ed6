package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/guidebooker/invoice-service/internal/invoice/domain"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type lineItemRequest struct {
	Description string          `json:"description" binding:"required"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type createInvoiceRequest struct {
	InvoiceNumber   string            `json:"invoice_number" binding:"required"`
	CustomerName    string            `json:"customer_name" binding:"required"`
	CustomerEmail   string            `json:"customer_email" binding:"required,email"`
	CustomerAddress string            `json:"customer_address" binding:"required"`
	BookingDate     string            `json:"booking_date" binding:"required,datetime=2006-01-02"`
	DueDate         string            `json:"due_date" binding:"required,datetime=2006-01-02"`
	GuideName       string            `json:"guide_name"`
	Items           []lineItemRequest `json:"items" binding:"required,min=1,dive"`
	TaxRate         decimal.Decimal   `json:"tax_rate"`
	Discount        decimal.Decimal   `json:"discount"`
	Notes           string            `json:"notes"`
	Currency        string            `json:"currency"`
}

func (r createInvoiceRequest) toDomain() (invoicedomain.InvoiceRecord, error) {
	bookingDate, err := time.Parse(dateLayout, r.BookingDate)
	if err != nil {
		return invoicedomain.InvoiceRecord{}, &ValidationErrors{
			Errors: []ValidationError{{Field: "booking_date", Code: "invalid_date", Message: "must be a date formatted YYYY-MM-DD"}},
		}
	}
	dueDate, err := time.Parse(dateLayout, r.DueDate)
	if err != nil {
		return invoicedomain.InvoiceRecord{}, &ValidationErrors{
			Errors: []ValidationError{{Field: "due_date", Code: "invalid_date", Message: "must be a date formatted YYYY-MM-DD"}},
		}
	}

	currency := strings.ToUpper(strings.TrimSpace(r.Currency))
	if currency == "" {
		currency = "USD"
	}

	items := make([]invoicedomain.LineItem, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, invoicedomain.LineItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}

	return invoicedomain.InvoiceRecord{
		InvoiceNumber:   strings.TrimSpace(r.InvoiceNumber),
		CustomerName:    r.CustomerName,
		CustomerEmail:   r.CustomerEmail,
		CustomerAddress: r.CustomerAddress,
		BookingDate:     bookingDate,
		DueDate:         dueDate,
		GuideName:       r.GuideName,
		Items:           items,
		TaxRate:         r.TaxRate,
		Discount:        r.Discount,
		Notes:           r.Notes,
		Currency:        currency,
	}, nil
}

// CreateInvoice accepts a booking record and replies with the rendered PDF
// as a download attachment.
func (s *Server) CreateInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	record, err := req.toDomain()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	rendered, err := s.invoiceSvc.CreateInvoice(c.Request.Context(), record)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rendered.Filename))
	c.Header("Content-Length", strconv.Itoa(len(rendered.Bytes)))
	c.Data(http.StatusOK, rendered.ContentType, rendered.Bytes)
}
