package render

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"coursehub-backend/internal/model"
	"coursehub-backend/utilities"
)

// Renderer is the collaborator that turns a finished Certificate
// record into a downloadable artifact. The engine itself never depends
// on it; it only publishes the issued event this package listens on.
type Renderer interface {
	Render(cert *model.Certificate) ([]byte, error)
}

type pdfRenderer struct{}

func NewPDFRenderer() Renderer {
	return &pdfRenderer{}
}

func (r *pdfRenderer) Render(cert *model.Certificate) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 28)
	pdf.CellFormat(0, 30, "Certificate of Completion", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 14)
	pdf.CellFormat(0, 10, "This certifies that", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "B", 22)
	pdf.CellFormat(0, 14, cert.StudentName, "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 14)
	pdf.CellFormat(0, 10, "has completed the course requirements", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Overall completion: %d%%", cert.Percentage), "", 1, "C", false, 0, "")
	if cert.TotalScore > 0 {
		pdf.CellFormat(0, 8, fmt.Sprintf("Score: %d / %d", cert.AchievedScore, cert.TotalScore), "", 1, "C", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "I", 11)
	pdf.CellFormat(0, 8, fmt.Sprintf("Issued %s", cert.IssueDate.Format("January 2, 2006")), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Verification code: %s", cert.VerificationCode), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render certificate pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// InitCertificateEventListeners pre-renders certificates as they are
// issued. Rendering failures are logged and retried on the next
// download; they never affect issuance.
func InitCertificateEventListeners(events *utilities.EventBus, renderer Renderer) {
	events.Subscribe(utilities.EventCertificateIssued, func(data interface{}) {
		cert, ok := data.(*model.Certificate)
		if !ok {
			utilities.Warn("certificate.issued event carried unexpected payload %v", data)
			return
		}
		if _, err := renderer.Render(cert); err != nil {
			utilities.Error("render certificate %s: %v", cert.VerificationCode, err)
		}
	})
}
