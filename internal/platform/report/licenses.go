package report

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	"hospitalhr/internal/domain/alerts"
)

var licenseColumns = []struct {
	title string
	width float64
}{
	{"Employee", 35},
	{"License type", 45},
	{"Number", 40},
	{"Expiry", 30},
	{"Days", 20},
}

// LicenseAlertsPDF renders the Critical table followed by the Warning table.
func LicenseAlertsPDF(feed alerts.Feed, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("License expiry alerts", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "License expiry alerts")
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated %s", generatedAt.UTC().Format("2006-01-02 15:04 MST")))
	pdf.Ln(10)

	licenseTable(pdf, fmt.Sprintf("Critical (%d)", len(feed.Critical)), feed.Critical)
	licenseTable(pdf, fmt.Sprintf("Warning (%d)", len(feed.Warning)), feed.Warning)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func licenseTable(pdf *gofpdf.Fpdf, title string, entries []alerts.FeedEntry) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, title)
	pdf.Ln(9)

	if len(entries) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.Cell(0, 6, "No licenses in this tier.")
		pdf.Ln(10)
		return
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, col := range licenseColumns {
		pdf.CellFormat(col.width, 7, col.title, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, entry := range entries {
		expiry := "-"
		if entry.ExpiryDate != nil {
			expiry = entry.ExpiryDate.Format("2006-01-02")
		}
		cells := []string{entry.EmployeeRef, entry.LicenseType, entry.LicenseNumber, expiry, strconv.Itoa(entry.DaysUntilExpiry)}
		for i, col := range licenseColumns {
			pdf.CellFormat(col.width, 6, cells[i], "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(6)
}
