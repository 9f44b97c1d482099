// Package export writes a company metadata record as CSV or PDF.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"

	"StockTerminal/internal/model"
)

// Download filenames offered to clients.
const (
	CSVFilename = "company_data.csv"
	PDFFilename = "company_data.pdf"
)

// Exporter renders metadata records. Fields that cannot be rendered are
// skipped and logged.
type Exporter struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Exporter {
	return &Exporter{logger: logger}
}

// CSV writes one row per field under an "index,Value" header.
func (e *Exporter) CSV(w io.Writer, info *model.CompanyInfo) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"index", "Value"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, f := range info.Fields() {
		v, err := formatValue(f.Value)
		if err != nil {
			e.skip("csv", f.Key, err)
			continue
		}
		if err := cw.Write([]string{f.Key, v}); err != nil {
			return fmt.Errorf("write csv row %s: %w", f.Key, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// PDF writes an A4 page titled "Stock Information" with one "key: value"
// line per field. Lines outside the core font's code page are skipped.
func (e *Exporter) PDF(w io.Writer, info *model.CompanyInfo) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Stock Information", true)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 12, "Stock Information", "", 1, "C", false, 0, "")
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 11)

	enc := charmap.Windows1252.NewEncoder()
	for _, f := range info.Fields() {
		v, err := formatValue(f.Value)
		if err != nil {
			e.skip("pdf", f.Key, err)
			continue
		}
		line, err := enc.String(f.Key + ": " + v)
		if err != nil {
			e.skip("pdf", f.Key, err)
			continue
		}
		pdf.MultiCell(0, 7, line, "", "L", false)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func (e *Exporter) skip(format, key string, err error) {
	e.logger.Warn("export field skipped",
		zap.String("format", format),
		zap.String("field", key),
		zap.Error(err))
}

// formatValue renders scalars directly and anything else as JSON.
func formatValue(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case time.Time:
		return x.Format(time.RFC3339), nil
	case fmt.Stringer:
		return x.String(), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("format %T: %w", v, err)
	}
	return string(b), nil
}
