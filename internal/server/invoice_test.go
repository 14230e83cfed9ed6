package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/guidebooker/invoice-service/internal/config"
	"github.com/guidebooker/invoice-service/internal/invoice/render"
	invoiceservice "github.com/guidebooker/invoice-service/internal/invoice/service"
	"github.com/guidebooker/invoice-service/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		AppName:      "invoice-service",
		HTTPAddr:     ":0",
		AllowOrigins: []string{"*"},
	}
	obsCfg := observability.Config{LogLevel: "error", Environment: "test"}

	engine := NewEngine(obsCfg, cfg, nil)
	svc := invoiceservice.NewService(invoiceservice.ServiceParam{
		Log:      zap.NewNop(),
		Renderer: render.NewRenderer(),
	})
	srv := NewServer(ServerParams{
		Gin:        engine,
		Cfg:        cfg,
		Log:        zap.NewNop(),
		InvoiceSvc: svc,
	})
	srv.RegisterRoutes()
	return engine
}

func validPayload() map[string]any {
	return map[string]any{
		"invoice_number":   "INV-2026-001",
		"customer_name":    "Jane Doe",
		"customer_email":   "jane@example.com",
		"customer_address": "123 Main St, Jakarta 10110",
		"booking_date":     "2026-02-17",
		"due_date":         "2026-03-17",
		"guide_name":       "Budi Santoso",
		"items": []map[string]any{
			{"description": "City Walking Tour", "quantity": 2, "unit_price": 75.00},
			{"description": "Museum Tour", "quantity": 1, "unit_price": 45.00},
		},
		"tax_rate": 7.0,
		"discount": 10.00,
		"notes":    "Thank you for choosing Guide Booker!",
		"currency": "USD",
	}
}

func postInvoice(t *testing.T, engine *gin.Engine, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/invoices", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	engine := newTestServer(t)

	for _, path := range []string{"/", "/health"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	}
}

func TestCreateInvoice_ReturnsPDFAttachment(t *testing.T) {
	engine := newTestServer(t)

	rec := postInvoice(t, engine, validPayload())

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="invoice-INV-2026-001.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
	// The computed grand total is embedded in the document text.
	assert.Contains(t, rec.Body.String(), "$197.95")
}

func TestCreateInvoice_MissingFields(t *testing.T) {
	engine := newTestServer(t)

	payload := validPayload()
	delete(payload, "customer_email")

	rec := postInvoice(t, engine, payload)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error struct {
			Type   string `json:"type"`
			Errors []struct {
				Field string `json:"field"`
				Code  string `json:"code"`
			} `json:"errors"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "validation_error", resp.Error.Type)
	require.Len(t, resp.Error.Errors, 1)
	assert.Equal(t, "customer_email", resp.Error.Errors[0].Field)
	assert.Equal(t, "required", resp.Error.Errors[0].Code)
}

func TestCreateInvoice_EmptyItems(t *testing.T) {
	engine := newTestServer(t)

	payload := validPayload()
	payload["items"] = []map[string]any{}

	rec := postInvoice(t, engine, payload)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"items"`)
}

func TestCreateInvoice_InvalidTaxRate(t *testing.T) {
	engine := newTestServer(t)

	payload := validPayload()
	payload["tax_rate"] = 150

	rec := postInvoice(t, engine, payload)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"type":"validation_error"`)
	assert.Contains(t, rec.Body.String(), `"field":"tax_rate"`)
	assert.Contains(t, rec.Body.String(), `"code":"invalid_amount"`)
}

func TestCreateInvoice_ZeroQuantity(t *testing.T) {
	engine := newTestServer(t)

	payload := validPayload()
	payload["items"] = []map[string]any{
		{"description": "City Walking Tour", "quantity": 0, "unit_price": 75.00},
	}

	rec := postInvoice(t, engine, payload)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"items[0].quantity"`)
}

func TestCreateInvoice_MalformedJSON(t *testing.T) {
	engine := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/invoices", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"type":"validation_error"`)
}

func TestCreateInvoice_LayoutErrorIsServerError(t *testing.T) {
	engine := newTestServer(t)

	payload := validPayload()
	payload["items"] = []map[string]any{
		{"description": strings.Repeat("lorem ipsum dolor sit amet ", 600), "quantity": 1, "unit_price": 10.00},
	}

	rec := postInvoice(t, engine, payload)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"type":"layout_error"`)
	// The offending field is logged, never echoed back to the client.
	assert.NotContains(t, rec.Body.String(), "items[0]")
}

func TestCreateInvoice_DefaultsCurrencyToUSD(t *testing.T) {
	engine := newTestServer(t)

	payload := validPayload()
	delete(payload, "currency")

	rec := postInvoice(t, engine, payload)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "$197.95")
}
