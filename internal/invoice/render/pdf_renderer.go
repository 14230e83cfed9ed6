// Package render turns a booking record plus its totals summary into a
// paginated A4 invoice document.
package render

import (
	"bytes"
	"fmt"
	"time"

	"github.com/guidebooker/invoice-service/internal/invoice/domain"
	"github.com/guidebooker/invoice-service/internal/invoice/format"
	"github.com/jung-kurt/gofpdf"
)

// Output is the finished document plus the page count settled during layout.
type Output struct {
	PDF   []byte
	Pages int
}

type Renderer interface {
	Render(record domain.InvoiceRecord, totals domain.TotalsSummary) (Output, error)
}

// Page geometry in millimetres, A4 portrait.
const (
	pageWidth  = 210.0
	pageHeight = 297.0
	margin     = 20.0

	contentWidth  = pageWidth - 2*margin
	contentBottom = pageHeight - margin

	rowLineHeight = 5.5
	rowPadY       = 2.0
	cellPadX      = 2.0

	tableHeaderHeight = 8.0
	totalsRowHeight   = 7.0
	footerLineHeight  = 4.5
)

// Item table column widths as fractions of the content width.
var colFractions = [5]float64{0.08, 0.47, 0.12, 0.15, 0.18}

var colTitles = [5]string{"#", "Description", "Qty", "Unit Price", "Amount"}

// Brand palette.
var (
	brandDark      = rgb{26, 26, 46}
	brandHighlight = rgb{233, 69, 96}
	tableHeaderBG  = rgb{159, 159, 159}
	tableAltRow    = rgb{244, 246, 251}
	lightGray      = rgb{224, 224, 224}
	textGray       = rgb{128, 128, 128}
	white          = rgb{255, 255, 255}
)

type rgb struct{ r, g, b int }

const fontFamily = "Helvetica"

// A fixed creation date keeps two renders of the same record byte-identical.
var creationDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

const (
	footerLine1 = "Guide Booker · Professional Tour Guide Services · guidebooker.com"
	footerLine2 = "This is a computer-generated invoice. No signature required."
)

type pdfRenderer struct{}

func NewRenderer() Renderer {
	return &pdfRenderer{}
}

// Render lays the invoice out page by page. Page 1 carries the header band
// and the customer/meta block; every page re-draws the item table column
// headers above its rows; the totals/notes/footer block is placed after the
// last row and moves to a fresh page as a unit when it does not fit.
func (r *pdfRenderer) Render(record domain.InvoiceRecord, totals domain.TotalsSummary) (Output, error) {
	sym := format.CurrencySymbol(record.Currency)

	pdf := gofpdf.New("P", "mm", "A4", "")
	// Core fonts are cp1252; translate all free text up front.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	record = translated(record, tr)

	pdf.SetCreationDate(creationDate)
	// Font catalog objects are otherwise written in map order, which varies
	// between renders of the same record.
	pdf.SetCatalogSort(true)
	// Streams stay uncompressed so the rendered text is directly inspectable.
	pdf.SetCompression(false)
	pdf.SetMargins(margin, margin, margin)
	// The engine owns every page break.
	pdf.SetAutoPageBreak(false, 0)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		setFont(pdf, "", 8, textGray)
		pdf.CellFormat(0, footerLineHeight, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	r.drawHeader(pdf, record)
	r.drawMeta(pdf, record)
	r.drawTableHeader(pdf)

	descWidth := colFractions[1]*contentWidth - 2*cellPadX
	for i, item := range record.Items {
		setFont(pdf, "", 9, brandDark)
		lines := pdf.SplitText(item.Description, descWidth)
		if len(lines) == 0 {
			lines = []string{""}
		}
		rowH := float64(len(lines))*rowLineHeight + 2*rowPadY

		// The tallest row an empty continuation page can hold.
		if rowH > contentBottom-margin-tableHeaderHeight {
			return Output{}, &domain.LayoutError{
				Field:  fmt.Sprintf("items[%d].description", i),
				Reason: "wrapped description exceeds the table region of a full page",
			}
		}
		if pdf.GetY()+rowH > contentBottom {
			pdf.AddPage()
			pdf.SetY(margin)
			r.drawTableHeader(pdf)
		}
		r.drawRow(pdf, i, item, lines, rowH, sym)
	}

	trailerH, err := r.measureTrailer(pdf, record)
	if err != nil {
		return Output{}, err
	}
	if pdf.GetY()+trailerH > contentBottom {
		pdf.AddPage()
		pdf.SetY(margin)
	}
	r.drawTotals(pdf, record, totals, sym)
	r.drawNotes(pdf, record)
	r.drawFooterLines(pdf, tr)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return Output{}, fmt.Errorf("write pdf: %w", err)
	}
	return Output{PDF: buf.Bytes(), Pages: pdf.PageCount()}, nil
}

func (r *pdfRenderer) drawHeader(pdf *gofpdf.Fpdf, record domain.InvoiceRecord) {
	top := pdf.GetY()

	setFont(pdf, "B", 28, brandDark)
	pdf.CellFormat(contentWidth*0.6, 12, "Guide Booker", "", 0, "L", false, 0, "")

	setFont(pdf, "B", 14, brandHighlight)
	pdf.CellFormat(contentWidth*0.4, 7, "INVOICE", "", 2, "R", false, 0, "")
	pdf.CellFormat(contentWidth*0.4, 7, record.InvoiceNumber, "", 0, "R", false, 0, "")

	y := top + 16
	setDraw(pdf, brandHighlight)
	pdf.SetLineWidth(0.6)
	pdf.Line(margin, y, pageWidth-margin, y)
	pdf.SetY(y + 6)
}

func (r *pdfRenderer) drawMeta(pdf *gofpdf.Fpdf, record domain.InvoiceRecord) {
	top := pdf.GetY()
	leftWidth := contentWidth * 0.55

	setFont(pdf, "B", 10, brandDark)
	pdf.SetX(margin)
	pdf.CellFormat(leftWidth, 6, "Bill To:", "", 2, "L", false, 0, "")
	setFont(pdf, "", 10, brandDark)
	pdf.CellFormat(leftWidth, 6, record.CustomerName, "", 2, "L", false, 0, "")
	pdf.CellFormat(leftWidth, 6, record.CustomerEmail, "", 2, "L", false, 0, "")
	pdf.MultiCell(leftWidth, 6, record.CustomerAddress, "", "L", false)
	leftEnd := pdf.GetY()

	pdf.SetXY(margin+leftWidth, top)
	rightWidth := contentWidth - leftWidth
	r.metaLine(pdf, rightWidth, "Booking Date: ", record.BookingDate.Format("January 02, 2006"))
	r.metaLine(pdf, rightWidth, "Due Date: ", record.DueDate.Format("January 02, 2006"))
	if record.GuideName != "" {
		r.metaLine(pdf, rightWidth, "Guide Name: ", record.GuideName)
	}
	rightEnd := pdf.GetY()

	if leftEnd > rightEnd {
		pdf.SetY(leftEnd)
	} else {
		pdf.SetY(rightEnd)
	}
	pdf.SetY(pdf.GetY() + 8)
}

func (r *pdfRenderer) metaLine(pdf *gofpdf.Fpdf, width float64, label, value string) {
	x := pdf.GetX()
	setFont(pdf, "B", 10, brandDark)
	labelWidth := pdf.GetStringWidth(label) + 1
	pdf.CellFormat(labelWidth, 6, label, "", 0, "L", false, 0, "")
	setFont(pdf, "", 10, brandDark)
	pdf.CellFormat(width-labelWidth, 6, value, "", 0, "L", false, 0, "")
	pdf.SetXY(x, pdf.GetY()+6)
}

func (r *pdfRenderer) drawTableHeader(pdf *gofpdf.Fpdf) {
	setFont(pdf, "B", 9, white)
	setFill(pdf, tableHeaderBG)
	setDraw(pdf, lightGray)
	pdf.SetLineWidth(0.2)
	pdf.SetX(margin)
	for i, title := range colTitles {
		align := "L"
		if i >= 2 {
			align = "R"
		}
		pdf.CellFormat(colFractions[i]*contentWidth, tableHeaderHeight, title, "1", 0, align, true, 0, "")
	}
	pdf.SetXY(margin, pdf.GetY()+tableHeaderHeight)
}

func (r *pdfRenderer) drawRow(pdf *gofpdf.Fpdf, idx int, item domain.LineItem, descLines []string, rowH float64, sym string) {
	top := pdf.GetY()

	if idx%2 == 1 {
		setFill(pdf, tableAltRow)
		pdf.Rect(margin, top, contentWidth, rowH, "F")
	}

	setDraw(pdf, lightGray)
	pdf.SetLineWidth(0.2)
	x := margin
	for _, frac := range colFractions {
		pdf.Rect(x, top, frac*contentWidth, rowH, "D")
		x += frac * contentWidth
	}

	setFont(pdf, "", 9, brandDark)
	cells := [5]string{
		fmt.Sprintf("%d", idx+1),
		"", // description drawn line by line below
		fmt.Sprintf("%d", item.Quantity),
		format.Money(item.UnitPrice, sym),
		format.Money(item.Total(), sym),
	}
	x = margin
	for i, frac := range colFractions {
		width := frac * contentWidth
		if i == 1 {
			for k, line := range descLines {
				pdf.SetXY(x+cellPadX, top+rowPadY+float64(k)*rowLineHeight)
				pdf.CellFormat(width-2*cellPadX, rowLineHeight, line, "", 0, "L", false, 0, "")
			}
		} else {
			align := "L"
			if i >= 2 {
				align = "R"
			}
			pdf.SetXY(x+cellPadX, top+rowPadY)
			pdf.CellFormat(width-2*cellPadX, rowLineHeight, cells[i], "", 0, align, false, 0, "")
		}
		x += width
	}

	pdf.SetXY(margin, top+rowH)
}

// measureTrailer returns the height of the totals block, the optional notes
// line and the footer lines, which are always placed together.
func (r *pdfRenderer) measureTrailer(pdf *gofpdf.Fpdf, record domain.InvoiceRecord) (float64, error) {
	h := 6.0 + 4*totalsRowHeight

	if record.Notes != "" {
		setFont(pdf, "I", 9, textGray)
		notesLines := pdf.SplitText("Notes: "+record.Notes, contentWidth)
		h += 4 + float64(len(notesLines))*5
	}
	h += 12 + 2*footerLineHeight

	if h > contentBottom-margin {
		return 0, &domain.LayoutError{
			Field:  "notes",
			Reason: "totals and notes block exceeds a full page",
		}
	}
	return h, nil
}

func (r *pdfRenderer) drawTotals(pdf *gofpdf.Fpdf, record domain.InvoiceRecord, totals domain.TotalsSummary, sym string) {
	pdf.SetY(pdf.GetY() + 6)

	labelX := margin + contentWidth*0.52
	labelWidth := contentWidth * 0.28
	valueWidth := contentWidth * 0.20

	row := func(label, value string, emphasize bool) {
		pdf.SetX(labelX)
		if emphasize {
			setFont(pdf, "B", 13, brandHighlight)
		} else {
			setFont(pdf, "B", 10, brandDark)
		}
		pdf.CellFormat(labelWidth, totalsRowHeight, label, "", 0, "R", false, 0, "")
		if !emphasize {
			setFont(pdf, "", 10, brandDark)
		}
		pdf.CellFormat(valueWidth, totalsRowHeight, value, "", 0, "R", false, 0, "")
		pdf.SetXY(margin, pdf.GetY()+totalsRowHeight)
	}

	row("Subtotal", format.Money(totals.Subtotal, sym), false)
	row("Discount", "-"+format.Money(totals.DiscountAmount, sym), false)
	row(fmt.Sprintf("Tax (%s%%)", format.Percent(record.TaxRate)), format.Money(totals.TaxAmount, sym), false)

	setDraw(pdf, brandHighlight)
	pdf.SetLineWidth(0.6)
	pdf.Line(labelX, pdf.GetY(), pageWidth-margin, pdf.GetY())
	row("TOTAL", format.Money(totals.GrandTotal, sym), true)
}

func (r *pdfRenderer) drawNotes(pdf *gofpdf.Fpdf, record domain.InvoiceRecord) {
	if record.Notes == "" {
		return
	}
	pdf.SetY(pdf.GetY() + 4)
	pdf.SetX(margin)
	setFont(pdf, "I", 9, textGray)
	pdf.MultiCell(contentWidth, 5, "Notes: "+record.Notes, "", "L", false)
}

func (r *pdfRenderer) drawFooterLines(pdf *gofpdf.Fpdf, tr func(string) string) {
	pdf.SetY(pdf.GetY() + 12)
	setFont(pdf, "", 8, textGray)
	pdf.SetX(margin)
	pdf.CellFormat(contentWidth, footerLineHeight, tr(footerLine1), "", 2, "C", false, 0, "")
	pdf.CellFormat(contentWidth, footerLineHeight, footerLine2, "", 0, "C", false, 0, "")
}

// translated copies the record with every free-text field re-encoded for the
// document's code page, leaving the caller's value untouched.
func translated(record domain.InvoiceRecord, tr func(string) string) domain.InvoiceRecord {
	record.InvoiceNumber = tr(record.InvoiceNumber)
	record.CustomerName = tr(record.CustomerName)
	record.CustomerEmail = tr(record.CustomerEmail)
	record.CustomerAddress = tr(record.CustomerAddress)
	record.GuideName = tr(record.GuideName)
	record.Notes = tr(record.Notes)

	items := make([]domain.LineItem, len(record.Items))
	for i, item := range record.Items {
		item.Description = tr(item.Description)
		items[i] = item
	}
	record.Items = items
	return record
}

func setFont(pdf *gofpdf.Fpdf, style string, size float64, color rgb) {
	pdf.SetFont(fontFamily, style, size)
	pdf.SetTextColor(color.r, color.g, color.b)
}

func setFill(pdf *gofpdf.Fpdf, color rgb) {
	pdf.SetFillColor(color.r, color.g, color.b)
}

func setDraw(pdf *gofpdf.Fpdf, color rgb) {
	pdf.SetDrawColor(color.r, color.g, color.b)
}
