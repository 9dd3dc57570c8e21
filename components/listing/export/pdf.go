package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// TimestampLayout renders generation times as MM/DD/YYYY, hh:mm:ss AM/PM.
const TimestampLayout = "01/02/2006, 03:04:05 PM"

const (
	defaultPlaceholder = "Empty"
	defaultFontSize    = 8
	rowHeight          = 7.0
	headerTop          = 10.0
	logoSize           = 18.0
	tableTop           = 36.0
	lineHeight         = 4.0
	cellPadding        = 1.0
)

// RGB is a fill color.
type RGB struct{ R, G, B int }

// PDFOptions controls the fixed header region and table styling.
type PDFOptions struct {
	Title       string
	Logos       []string
	GeneratedAt time.Time
	Placeholder string
	HeaderFill  RGB
	FontSize    float64
}

// PDFReport summarizes what was written.
type PDFReport struct {
	Rows    int
	Columns int
	Pages   int
}

func (o *PDFOptions) normalize() {
	if o.Title == "" {
		o.Title = "Report"
	}
	if len(o.Logos) == 0 {
		o.Logos = []string{"NearByTask", "Admin"}
	}
	if o.GeneratedAt.IsZero() {
		o.GeneratedAt = time.Now()
	}
	if o.Placeholder == "" {
		o.Placeholder = defaultPlaceholder
	}
	if o.HeaderFill == (RGB{}) {
		o.HeaderFill = RGB{R: 22, G: 160, B: 133}
	}
	if o.FontSize <= 0 {
		o.FontSize = defaultFontSize
	}
}

// WritePDF renders table as an A4 landscape grid with a title region.
// Blank text cells print the placeholder so columns stay visibly aligned.
func WritePDF(w io.Writer, table Table, opts PDFOptions) (PDFReport, error) {
	if len(table.Headers) == 0 {
		return PDFReport{}, ErrNoColumns
	}
	opts.normalize()

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetCreationDate(opts.GeneratedAt)
	pdf.SetTitle(opts.Title, true)
	pdf.SetMargins(10, headerTop, 10)
	pdf.SetAutoPageBreak(false, 10)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, pageH := pdf.GetPageSize()
	left, _, right, bottom := pdf.GetMargins()
	usable := pageW - left - right
	colW := usable / float64(len(table.Headers))

	pdf.AddPage()
	writeHeaderRegion(pdf, tr, opts, pageW, left, right)
	pdf.SetY(tableTop)
	header := tableRow{cells: table.Headers, align: repeat("C", len(table.Headers)), header: true}
	writeRow(pdf, tr, header, colW, opts)

	for _, row := range table.Rows {
		r := tableRow{cells: make([]string, len(table.Headers)), align: repeat("L", len(table.Headers))}
		for i := range table.Headers {
			r.cells[i] = opts.Placeholder
			if i < len(row) && !row[i].IsEmpty() {
				r.cells[i] = row[i].String()
			}
			if i < len(row) && row[i].IsNumber() {
				r.align[i] = "R"
			}
		}
		pdf.SetFont("Helvetica", "", opts.FontSize)
		height := rowHeightFor(pdf, tr, r.cells, colW)
		if pdf.GetY()+height > pageH-bottom && pdf.GetY() > headerTop {
			pdf.AddPage()
			pdf.SetY(headerTop)
			writeRow(pdf, tr, header, colW, opts)
		}
		writeRow(pdf, tr, r, colW, opts)
	}

	if err := pdf.Error(); err != nil {
		return PDFReport{}, fmt.Errorf("export: render pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return PDFReport{}, fmt.Errorf("export: encode pdf: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return PDFReport{}, err
	}
	return PDFReport{Rows: len(table.Rows), Columns: len(table.Headers), Pages: pdf.PageCount()}, nil
}

func writeHeaderRegion(pdf *gofpdf.Fpdf, tr func(string) string, opts PDFOptions, pageW, left, right float64) {
	pdf.SetDrawColor(120, 120, 120)
	pdf.SetFont("Helvetica", "", 6)
	for i, label := range opts.Logos {
		if i > 1 {
			break
		}
		x := left
		if i == 1 {
			x = pageW - right - logoSize
		}
		pdf.Rect(x, headerTop, logoSize, logoSize, "D")
		pdf.SetXY(x, headerTop+logoSize/2-2)
		pdf.CellFormat(logoSize, 4, tr(label), "", 0, "C", false, 0, "")
	}

	inner := pageW - left - right - 2*(logoSize+4)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(left+logoSize+4, headerTop+2)
	pdf.CellFormat(inner, 8, tr(opts.Title), "", 0, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetXY(left+logoSize+4, headerTop+11)
	pdf.CellFormat(inner, 6, "Generated on "+opts.GeneratedAt.Format(TimestampLayout), "", 0, "C", false, 0, "")
}

type tableRow struct {
	cells  []string
	align  []string
	header bool
}

func repeat(v string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// writeRow draws one grid row. Cells wrap onto as many lines as their text
// needs and the row takes the height of its tallest cell.
func writeRow(pdf *gofpdf.Fpdf, tr func(string) string, row tableRow, colW float64, opts PDFOptions) {
	if row.header {
		pdf.SetFont("Helvetica", "B", opts.FontSize)
		pdf.SetFillColor(opts.HeaderFill.R, opts.HeaderFill.G, opts.HeaderFill.B)
		pdf.SetTextColor(255, 255, 255)
	} else {
		pdf.SetFont("Helvetica", "", opts.FontSize)
		pdf.SetTextColor(0, 0, 0)
	}
	height := rowHeightFor(pdf, tr, row.cells, colW)
	x, y := pdf.GetX(), pdf.GetY()
	style := "D"
	if row.header {
		style = "FD"
	}
	for i, cell := range row.cells {
		cellX := x + float64(i)*colW
		pdf.Rect(cellX, y, colW, height, style)
		lines := wrapText(pdf, tr, cell, colW-2*cellPadding)
		top := y + (height-float64(len(lines))*lineHeight)/2
		for j, line := range lines {
			pdf.SetXY(cellX+cellPadding, top+float64(j)*lineHeight)
			pdf.CellFormat(colW-2*cellPadding, lineHeight, tr(line), "", 0, row.align[i], false, 0, "")
		}
	}
	pdf.SetXY(x, y+height)
}

func rowHeightFor(pdf *gofpdf.Fpdf, tr func(string) string, cells []string, colW float64) float64 {
	height := rowHeight
	for _, cell := range cells {
		lines := wrapText(pdf, tr, cell, colW-2*cellPadding)
		if h := float64(len(lines))*lineHeight + 2*cellPadding; h > height {
			height = h
		}
	}
	return height
}

// wrapText breaks UTF-8 text into lines no wider than width. Words longer
// than a line are split between runes. Every character is kept; runs of
// whitespace collapse to single spaces.
func wrapText(pdf *gofpdf.Fpdf, tr func(string) string, s string, width float64) []string {
	fits := func(v string) bool { return pdf.GetStringWidth(tr(v)) <= width }
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		line := ""
		for _, word := range strings.Fields(para) {
			candidate := word
			if line != "" {
				candidate = line + " " + word
			}
			if fits(candidate) {
				line = candidate
				continue
			}
			if line != "" {
				lines = append(lines, line)
			}
			for !fits(word) {
				head, rest := splitWord(word, fits)
				lines = append(lines, head)
				word = rest
			}
			line = word
		}
		lines = append(lines, line)
	}
	return lines
}

// splitWord returns the longest rune prefix that fits, at least one rune.
func splitWord(word string, fits func(string) bool) (string, string) {
	runes := []rune(word)
	n := 1
	for n < len(runes) && fits(string(runes[:n+1])) {
		n++
	}
	return string(runes[:n]), string(runes[n:])
}
