package render

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/guidebooker/invoice-service/internal/invoice/domain"
	"github.com/guidebooker/invoice-service/internal/invoice/totals"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord(items []domain.LineItem) domain.InvoiceRecord {
	return domain.InvoiceRecord{
		InvoiceNumber:   "INV-2026-001",
		CustomerName:    "Jane Doe",
		CustomerEmail:   "jane@example.com",
		CustomerAddress: "123 Main St, Jakarta 10110",
		BookingDate:     time.Date(2026, time.February, 17, 0, 0, 0, 0, time.UTC),
		DueDate:         time.Date(2026, time.March, 17, 0, 0, 0, 0, time.UTC),
		GuideName:       "Budi Santoso",
		Items:           items,
		TaxRate:         decimal.RequireFromString("7.0"),
		Discount:        decimal.RequireFromString("10.00"),
		Notes:           "Thank you for choosing Guide Booker!",
		Currency:        "USD",
	}
}

func nItems(n int) []domain.LineItem {
	items := make([]domain.LineItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, domain.LineItem{
			Description: fmt.Sprintf("City Walking Tour day %d", i+1),
			Quantity:    1,
			UnitPrice:   decimal.RequireFromString("75.00"),
		})
	}
	return items
}

func mustRender(t *testing.T, record domain.InvoiceRecord) Output {
	t.Helper()
	summary, err := totals.Compute(record.Items, record.Discount, record.TaxRate)
	require.NoError(t, err)
	out, err := NewRenderer().Render(record, summary)
	require.NoError(t, err)
	require.NotEmpty(t, out.PDF)
	return out
}

func TestRender_Deterministic(t *testing.T) {
	record := testRecord(nItems(3))

	// The font catalog is the only part of the document written from a map;
	// a single lucky comparison can mask unordered output, so compare a
	// batch of renders against the first.
	first := mustRender(t, record)
	for i := 0; i < 20; i++ {
		next := mustRender(t, record)
		require.True(t, bytes.Equal(first.PDF, next.PDF),
			"render %d of the same record must be byte-identical to the first", i+2)
	}
}

func TestRender_GrandTotalAppearsInDocument(t *testing.T) {
	record := testRecord([]domain.LineItem{
		{Description: "City Walking Tour", Quantity: 2, UnitPrice: decimal.RequireFromString("75.00")},
		{Description: "Museum Tour", Quantity: 1, UnitPrice: decimal.RequireFromString("45.00")},
	})

	out := mustRender(t, record)

	// Streams are uncompressed, so the totals text is visible in the bytes.
	assert.Contains(t, string(out.PDF), "$197.95")
	assert.Contains(t, string(out.PDF), "$195.00")
	assert.Contains(t, string(out.PDF), "-$10.00")
	assert.Contains(t, string(out.PDF), "$12.95")
}

func TestRender_PaginationBoundary(t *testing.T) {
	// Find the largest single-line item count that still fits one page.
	capacity := 0
	for n := 1; n <= 80; n++ {
		out := mustRender(t, testRecord(nItems(n)))
		if out.Pages > 1 {
			capacity = n - 1
			break
		}
	}
	require.Greater(t, capacity, 0, "expected some item count to overflow the first page")

	one := mustRender(t, testRecord(nItems(capacity)))
	assert.Equal(t, 1, one.Pages)

	two := mustRender(t, testRecord(nItems(capacity+1)))
	assert.Equal(t, 2, two.Pages)

	// Column headers are re-drawn on the continuation page.
	assert.GreaterOrEqual(t, strings.Count(string(two.PDF), "Unit Price"), 2)
	assert.Contains(t, string(two.PDF), "Page 1 of 2")
	assert.Contains(t, string(two.PDF), "Page 2 of 2")
}

func TestRender_SinglePagePageNumber(t *testing.T) {
	out := mustRender(t, testRecord(nItems(1)))
	assert.Equal(t, 1, out.Pages)
	assert.Contains(t, string(out.PDF), "Page 1 of 1")
}

func TestRender_LongDescriptionGrowsRow(t *testing.T) {
	short := testRecord(nItems(1))
	long := testRecord([]domain.LineItem{{
		Description: strings.Repeat("guided sunrise volcano trek with breakfast ", 8) + "ENDMARKER",
		Quantity:    1,
		UnitPrice:   decimal.RequireFromString("250.00"),
	}})

	shortOut := mustRender(t, short)
	longOut := mustRender(t, long)

	// The wrapped tail is rendered rather than truncated.
	assert.Contains(t, string(longOut.PDF), "ENDMARKER")
	assert.GreaterOrEqual(t, len(longOut.PDF), len(shortOut.PDF))
}

func TestRender_OverlongDescriptionFailsLayout(t *testing.T) {
	record := testRecord([]domain.LineItem{{
		Description: strings.Repeat("lorem ipsum dolor sit amet ", 600),
		Quantity:    1,
		UnitPrice:   decimal.RequireFromString("10.00"),
	}})
	summary, err := totals.Compute(record.Items, record.Discount, record.TaxRate)
	require.NoError(t, err)

	_, err = NewRenderer().Render(record, summary)
	require.Error(t, err)

	var layoutErr *domain.LayoutError
	require.ErrorAs(t, err, &layoutErr)
	assert.Equal(t, "items[0].description", layoutErr.Field)
}

func TestRender_TotalsBlockNeverSplits(t *testing.T) {
	// Walk across the page boundary; whatever the row count, the grand total
	// and the footer lines always land on the same page (the last one).
	for n := 20; n <= 40; n++ {
		out := mustRender(t, testRecord(nItems(n)))
		body := string(out.PDF)

		totalIdx := strings.LastIndex(body, "TOTAL")
		footerIdx := strings.LastIndex(body, "computer-generated invoice")
		require.Greater(t, totalIdx, 0)
		require.Greater(t, footerIdx, totalIdx)

		// No page break marker between the totals block and the footer.
		between := body[totalIdx:footerIdx]
		assert.NotContains(t, between, "/Type /Page")
	}
}

func TestRender_NonUSDCurrencyPrefix(t *testing.T) {
	record := testRecord(nItems(1))
	record.Currency = "IDR"

	out := mustRender(t, record)
	assert.Contains(t, string(out.PDF), "IDR 75.00")
}

func TestRender_MetaBlockOnFirstPageOnly(t *testing.T) {
	out := mustRender(t, testRecord(nItems(60)))
	require.Greater(t, out.Pages, 1)

	body := string(out.PDF)
	assert.Equal(t, 1, strings.Count(body, "Bill To:"))
	assert.Contains(t, body, "Booking Date:")
	assert.Contains(t, body, "February 17, 2026")
}
