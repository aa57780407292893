// Package printer renders printable artifacts: per-device QR labels
// and the movement history PDF export.
package printer

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/nexfone/invtrack/internal/models"
)

// GenerateLabelPNG renders a single QR label for a device as a PNG.
// The QR payload is the bare IMEI so warehouse scanners resolve it
// without a URL prefix.
func GenerateLabelPNG(imei string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(imei, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR for %s: %w", imei, err)
	}
	return png, nil
}

// GenerateLabelPDF renders a one-page A4 label card for a device:
// QR code centered, IMEI and model printed below it.
func GenerateLabelPDF(item *models.InventoryItem) ([]byte, error) {
	qrPng, err := qrcode.Encode(item.IMEI, qrcode.Medium, 256)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 12)

	pageWidth := 210.0
	qrSize := 60.0
	qrX := (pageWidth - qrSize) / 2

	imgOptions := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
	_ = pdf.RegisterImageOptionsReader("qr_label", imgOptions, bytes.NewReader(qrPng))
	pdf.ImageOptions("qr_label", qrX, 30, qrSize, qrSize, false, imgOptions, 0, "")

	pdf.SetXY(0, 95)
	pdf.SetFontSize(14)
	pdf.CellFormat(pageWidth, 8, item.IMEI, "", 1, "C", false, 0, "")

	pdf.SetFontSize(10)
	detail := item.Model
	if item.Storage != "" {
		detail += " " + item.Storage
	}
	if item.Color != "" {
		detail += " " + item.Color
	}
	if item.Grade != "" {
		detail += " / Grade " + item.Grade
	}
	pdf.CellFormat(pageWidth, 6, detail, "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GenerateMovementReportPDF renders a movement history table as an
// A4 landscape PDF. Movements are printed in the order given.
func GenerateMovementReportPDF(movements []models.Movement, from, to *time.Time) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, "Movement Report", "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	rangeLine := reportRange(from, to)
	pdf.CellFormat(0, 5, rangeLine, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("%d movements, generated %s", len(movements), time.Now().UTC().Format("2006-01-02 15:04 UTC")), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	headers := []string{"When (UTC)", "IMEI", "Type", "Source", "Change", "By", "Notes"}
	widths := []float64{32, 32, 30, 26, 70, 40, 47}

	pdf.SetFont("Arial", "B", 8)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 6, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, m := range movements {
		by := ""
		if m.PerformedBy != nil {
			by = *m.PerformedBy
		}
		cells := []string{
			m.PerformedAt.UTC().Format("2006-01-02 15:04"),
			m.IMEI,
			string(m.MovementType),
			string(m.Source),
			describeChange(&m),
			by,
			m.Notes,
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 5, truncate(c, 60), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func reportRange(from, to *time.Time) string {
	switch {
	case from != nil && to != nil:
		return fmt.Sprintf("Period: %s to %s", from.Format("2006-01-02"), to.Format("2006-01-02"))
	case from != nil:
		return fmt.Sprintf("Period: from %s", from.Format("2006-01-02"))
	case to != nil:
		return fmt.Sprintf("Period: up to %s", to.Format("2006-01-02"))
	default:
		return "Period: all time"
	}
}

// describeChange flattens the populated before/after pairs into one
// readable cell.
func describeChange(m *models.Movement) string {
	var parts []string
	pair := func(label, from, to string) {
		if from == "" && to == "" {
			return
		}
		parts = append(parts, fmt.Sprintf("%s: %s -> %s", label, orDash(from), orDash(to)))
	}
	pair("status", m.FromStatus, m.ToStatus)
	pair("grade", m.FromGrade, m.ToGrade)
	pair("lock", m.FromLock, m.ToLock)
	pair("location", m.FromLocation, m.ToLocation)
	if len(parts) == 0 {
		return ""
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += "; " + p
	}
	return out
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
