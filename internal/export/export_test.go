package export

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alleghenyre/propsearch/internal/property"
	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func ptr(s string) *string { return &s }

func props() []property.Property {
	return []property.Property{
		{
			ParID:              "0001A00001000000",
			PropertyAddress:    ptr("100 MAIN ST"),
			PropertyCity:       ptr("PITTSBURGH"),
			SalePrice:          1234567,
			SaleDate:           ptr("2023-01-20"),
			FinishedLivingArea: 1850,
			SchoolDesc:         ptr("Pittsburgh"),
			MuniDesc:           ptr("Mt. Lebanon"),
		},
		{ParID: "0001A00002000000", SaleDate: ptr("2022-01-01")},
	}
}

func TestRow(t *testing.T) {
	p := props()
	assert.Equal(t, []string{"100 MAIN ST", "PITTSBURGH", "$1,234,567", "2023-01-20", "1,850", "Pittsburgh"}, row(p[0]))
	assert.Equal(t, []string{"N/A", "N/A", "N/A", "2022-01-01", "N/A", "N/A"}, row(p[1]))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("PDF")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)

	f, err = ParseFormat("excel")
	require.NoError(t, err)
	assert.Equal(t, FormatExcel, f)

	_, err = ParseFormat("word")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = ParseFormat("csv")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFileName(t *testing.T) {
	day := time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, "property-report-2024-03-09.pdf", FormatPDF.FileName(day))
	assert.Equal(t, "property-report-2024-03-09.xlsx", FormatExcel.FileName(day))
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, props(), time.Now()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestWritePDF_ManyPages(t *testing.T) {
	many := make([]property.Property, 200)
	for i := range many {
		many[i] = props()[0]
	}
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, many, time.Now()))
	assert.Greater(t, buf.Len(), 1000)
}

func TestFitCell_KeepsAccentedCharacters(t *testing.T) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 8)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	assert.Equal(t, tr("Peña"), fitCell(pdf, tr, "Peña", 40))

	long := "Calle de la Peña Señorío Montaña Niño Añejo Compañía"
	got := fitCell(pdf, tr, long, 40)
	assert.LessOrEqual(t, pdf.GetStringWidth(got), 40.0)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.NotContains(t, got, "\ufffd")
	assert.Contains(t, got, "\xf1", "ñ should be a single cp1252 byte")
}

func TestWriteExcel(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExcel(&buf, props()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, columns, rows[0])
	assert.Equal(t, "100 MAIN ST", rows[1][0])
	assert.Equal(t, "1234567", rows[1][2])
	assert.Equal(t, "N/A", rows[2][2])
}

func TestWrite_Empty(t *testing.T) {
	assert.ErrorIs(t, Write(&bytes.Buffer{}, FormatPDF, nil, time.Now()), ErrNothingToExport)
}

type memStore struct {
	property.Store
	props []property.Property
}

func (memStore) Name() string { return "test" }

func (m memStore) Search(_ context.Context, f property.Filter) ([]property.Property, error) {
	out := []property.Property{}
	for _, p := range m.props {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func newTestHandler() *Handler {
	h := NewHandler(memStore{props: props()}, zap.NewNop())
	h.now = func() time.Time { return time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC) }
	return h
}

func TestExportHandler(t *testing.T) {
	h := newTestHandler()

	body := `{"format":"pdf","parids":["0001A00001000000"]}`
	rr := httptest.NewRecorder()
	h.Export(rr, httptest.NewRequest(http.MethodPost, "/export", bytes.NewBufferString(body)))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="property-report-2024-03-09.pdf"`, rr.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF-")))
}

func TestExportHandler_Filter(t *testing.T) {
	h := newTestHandler()

	body := `{"format":"xlsx","filter":{"municipalities":["Mt. Lebanon"]}}`
	rr := httptest.NewRecorder()
	h.Export(rr, httptest.NewRequest(http.MethodPost, "/export", bytes.NewBufferString(body)))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Disposition"), ".xlsx")
}

func TestExportHandler_Rejections(t *testing.T) {
	h := newTestHandler()

	for _, body := range []string{
		`{"format":"word","parids":["0001A00001000000"]}`,
		`{"format":"pdf"}`,
		`{"format":"pdf","parids":["missing"]}`,
		`{"format":"pdf","filter":{"minPrice":1000000000}}`,
	} {
		rr := httptest.NewRecorder()
		h.Export(rr, httptest.NewRequest(http.MethodPost, "/export", bytes.NewBufferString(body)))
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
	}
}
