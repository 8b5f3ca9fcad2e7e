// Package export renders property lists as downloadable reports.
package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/alleghenyre/propsearch/internal/property"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type Format string

const (
	FormatPDF   Format = "pdf"
	FormatExcel Format = "xlsx"
	FormatWord  Format = "word"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrNothingToExport   = errors.New("no properties selected for export")
)

// ParseFormat accepts the format names the client sends.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pdf":
		return FormatPDF, nil
	case "xlsx", "excel":
		return FormatExcel, nil
	case "word", "docx":
		return FormatWord, fmt.Errorf("%w: word documents are not available yet", ErrUnsupportedFormat)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/octet-stream"
}

// FileName is property-report-YYYY-MM-DD.<ext> for the given day.
func (f Format) FileName(day time.Time) string {
	return fmt.Sprintf("property-report-%s.%s", day.Format("2006-01-02"), f)
}

// Write renders props in format f.
func Write(w io.Writer, f Format, props []property.Property, generated time.Time) error {
	if len(props) == 0 {
		return ErrNothingToExport
	}
	switch f {
	case FormatPDF:
		return WritePDF(w, props, generated)
	case FormatExcel:
		return WriteExcel(w, props)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}

const missing = "N/A"

var columns = []string{"Address", "City", "Sale Price", "Sale Date", "Sq Ft", "School District"}

var printer = message.NewPrinter(language.AmericanEnglish)

// row is the table line for one property.
func row(p property.Property) []string {
	return []string{
		orMissing(p.PropertyAddress),
		orMissing(p.PropertyCity),
		price(p.SalePrice),
		orMissing(p.SaleDate),
		area(p.FinishedLivingArea),
		orMissing(p.SchoolDesc),
	}
}

func orMissing(s *string) string {
	if v := property.Str(s); v != "" {
		return v
	}
	return missing
}

func price(v float64) string {
	if v <= 0 {
		return missing
	}
	return property.FormatPrice(v)
}

func area(v float64) string {
	if v <= 0 {
		return missing
	}
	return printer.Sprintf("%d", int64(math.Round(v)))
}
