package export

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payment struct {
	Payer  string
	Amount float64
	Status string
}

var paymentColumns = []Column[payment]{
	{Name: "Payer", Extract: func(p payment) Value { return Text(p.Payer) }},
	{Name: "Amount", Extract: func(p payment) Value { return Number(p.Amount) }},
	{Name: "Status", Extract: func(p payment) Value { return Text(p.Status) }},
}

func samplePayments() []payment {
	return []payment{
		{Payer: "Jenny Wilson", Amount: 120.5, Status: "Completed"},
		{Payer: "Wade Warren, Jr", Amount: 80, Status: "Pending"},
		{Payer: "Esther Howard", Amount: 42, Status: ""},
	}
}

func TestWriteCSVQuotesTextAndLeavesNumbersBare(t *testing.T) {
	table, err := BuildTable(paymentColumns, samplePayments())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, table))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, `"Payer","Amount","Status"`, lines[0])
	assert.Equal(t, `"Jenny Wilson",120.5,"Completed"`, lines[1])
	assert.Equal(t, `"Wade Warren, Jr",80,"Pending"`, lines[2])
	assert.Equal(t, `"Esther Howard",42,""`, lines[3])
}

func TestWriteCSVEscapesEmbeddedQuotes(t *testing.T) {
	table := Table{Headers: []string{"Comment"}, Rows: [][]Value{{Text(`said "hi"`)}}}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, table))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, `said "hi"`, records[1][0])
}

func TestBuildTableRequiresColumns(t *testing.T) {
	_, err := BuildTable[payment](nil, samplePayments())
	assert.ErrorIs(t, err, ErrNoColumns)

	var buf bytes.Buffer
	assert.ErrorIs(t, WriteCSV(&buf, Table{}), ErrNoColumns)
	assert.Zero(t, buf.Len())
}

func TestCSVAndPDFRowParity(t *testing.T) {
	rows := samplePayments()
	table, err := BuildTable(paymentColumns, rows)
	require.NoError(t, err)

	var csvBuf bytes.Buffer
	require.NoError(t, WriteCSV(&csvBuf, table))
	records, err := csv.NewReader(&csvBuf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, len(rows)+1)

	var pdfBuf bytes.Buffer
	report, err := WritePDF(&pdfBuf, table, PDFOptions{
		Title:       "Payments",
		GeneratedAt: time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, len(rows), report.Rows)
	assert.Equal(t, len(paymentColumns), report.Columns)
	assert.Equal(t, 1, report.Pages)

	for i, row := range table.Rows {
		for j, value := range row {
			assert.Equal(t, value.String(), records[i+1][j])
		}
	}

	text := pdfText(t, pdfBuf.Bytes())
	assert.Contains(t, text, "Payments")
	assert.Contains(t, text, "03/09/2024, 02:05:07 PM")
	for _, record := range records[1:] {
		for _, field := range record {
			if field == "" {
				continue
			}
			assert.Contains(t, text, field)
		}
	}
	assert.Contains(t, text, "Empty")
}

type feedback struct {
	Author  string
	Rating  int
	Comment string
}

var feedbackColumns = []Column[feedback]{
	{Name: "Author", Extract: func(f feedback) Value { return Text(f.Author) }},
	{Name: "Rating", Extract: func(f feedback) Value { return Int(f.Rating) }},
	{Name: "Comment", Extract: func(f feedback) Value { return Text(f.Comment) }},
}

func TestPDFCellsMatchCSVFieldsForLongAndAccentedText(t *testing.T) {
	rows := []feedback{
		{
			Author:  "Señora Peña Ibáñez",
			Rating:  5,
			Comment: "The tasker arrived early, assembled every shelf in the living room and even swept up afterwards.",
		},
		{
			Author:  "François Müller-Lüdenscheidt",
			Rating:  3,
			Comment: "Überpünktlich, aber die Rechnung enthielt eine zusätzliche Anfahrtspauschale ohne Erklärung.",
		},
		{Author: "Zoë", Rating: 4, Comment: "Supercalifragilisticexpialidocious-level-service-without-any-spaces-at-all"},
	}
	table, err := BuildTable(feedbackColumns, rows)
	require.NoError(t, err)

	var csvBuf bytes.Buffer
	require.NoError(t, WriteCSV(&csvBuf, table))
	records, err := csv.NewReader(&csvBuf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, len(rows)+1)

	var pdfBuf bytes.Buffer
	report, err := WritePDF(&pdfBuf, table, PDFOptions{Title: "Feedback", FontSize: 12})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Pages)

	text := squash(pdfText(t, pdfBuf.Bytes()))
	assert.NotContains(t, text, "..")
	for _, record := range records {
		for _, field := range record {
			assert.Contains(t, text, squash(field))
		}
	}
}

func TestWrapTextKeepsEveryRune(t *testing.T) {
	doc := gofpdf.New("L", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 8)
	tr := doc.UnicodeTranslatorFromDescriptor("")

	in := "Ibáñez wrote a comment that is much longer than the column width allows"
	lines := wrapText(doc, tr, in, 20)
	require.Greater(t, len(lines), 1)
	for _, line := range lines {
		assert.LessOrEqual(t, doc.GetStringWidth(tr(line)), 20.0)
	}
	assert.Equal(t, in, strings.Join(lines, " "))

	lines = wrapText(doc, tr, "ñññññññññññññññññññññññññññññ", 10)
	require.Greater(t, len(lines), 1)
	assert.Equal(t, "ñññññññññññññññññññññññññññññ", strings.Join(lines, ""))
}

func squash(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func TestWritePDFPaginatesLongTables(t *testing.T) {
	rows := make([]payment, 0, 80)
	for i := 0; i < 80; i++ {
		rows = append(rows, payment{Payer: "Payer", Amount: float64(i), Status: "Completed"})
	}
	table, err := BuildTable(paymentColumns, rows)
	require.NoError(t, err)

	var buf bytes.Buffer
	report, err := WritePDF(&buf, table, PDFOptions{Title: "Payments"})
	require.NoError(t, err)
	assert.Equal(t, 80, report.Rows)
	assert.Greater(t, report.Pages, 1)
}

func TestParseFormatAndFilename(t *testing.T) {
	f, err := ParseFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)
	assert.Equal(t, "application/pdf", f.ContentType())

	_, err = ParseFormat("xlsx")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	assert.Equal(t, "Payments.csv", Filename("Payments", FormatCSV))
	assert.Equal(t, "Export.pdf", Filename("  ", FormatPDF))
}

func pdfText(t *testing.T, data []byte) string {
	t.Helper()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	plain, err := reader.GetPlainText()
	require.NoError(t, err)
	out, err := io.ReadAll(plain)
	require.NoError(t, err)
	return string(out)
}
