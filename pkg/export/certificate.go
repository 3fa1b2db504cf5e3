package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Certificate carries the fields printed on a no-dues certificate.
type Certificate struct {
	SerialNumber string
	StudentName  string
	Batch        string
	Dept         string
	AcademicYear string
	TotalFee     int64
	IssuedAt     time.Time
}

// CertificateRenderer renders no-dues certificates as PDF documents.
type CertificateRenderer struct{}

// NewCertificateRenderer constructs a renderer.
func NewCertificateRenderer() *CertificateRenderer {
	return &CertificateRenderer{}
}

// Render produces the certificate PDF bytes.
func (r *CertificateRenderer) Render(cert Certificate) ([]byte, error) {
	if cert.StudentName == "" {
		return nil, fmt.Errorf("certificate requires a student name")
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(20, 25, 20)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 24)
	pdf.CellFormat(0, 14, "NO-DUES CERTIFICATE", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 7, "APEC Digital No-Dues System", "", 1, "C", false, 0, "")
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 13)
	body := fmt.Sprintf(
		"This is to certify that %s (Batch %s, Department of %s) has cleared all fee dues for the academic year %s.",
		cert.StudentName, cert.Batch, cert.Dept, cert.AcademicYear,
	)
	pdf.MultiCell(0, 8, body, "", "C", false)
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	details := [][2]string{
		{"Certificate No.", cert.SerialNumber},
		{"Total Fee Cleared", fmt.Sprintf("INR %d", cert.TotalFee)},
		{"Issued On", cert.IssuedAt.Format("02 Jan 2006")},
	}
	for _, row := range details {
		pdf.CellFormat(90, 7, row[0], "", 0, "R", false, 0, "")
		pdf.CellFormat(10, 7, "", "", 0, "C", false, 0, "")
		pdf.CellFormat(0, 7, row[1], "", 1, "L", false, 0, "")
	}

	pdf.Ln(16)
	pdf.SetFont("Arial", "I", 9)
	pdf.CellFormat(0, 6, "This certificate is system generated and does not require a signature.", "", 1, "C", false, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render certificate: %w", err)
	}
	return buf.Bytes(), nil
}
