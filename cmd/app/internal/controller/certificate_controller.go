package controller

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"coursehub-backend/internal/render"
	"coursehub-backend/internal/service"
	"coursehub-backend/utilities"
)

type CertificateController struct {
	CertificationService service.CertificationService
	Renderer             render.Renderer
}

func NewCertificateController(certificationService service.CertificationService, renderer render.Renderer) *CertificateController {
	return &CertificateController{CertificationService: certificationService, Renderer: renderer}
}

func (cc *CertificateController) CheckEligibility(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	courseID, ok := paramUint(c, "course_id")
	if !ok {
		return
	}

	eligibility, err := cc.CertificationService.Evaluate(c.Request.Context(), userID, courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, eligibility)
}

func (cc *CertificateController) IssueOrGet(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	courseID, ok := paramUint(c, "course_id")
	if !ok {
		return
	}

	cert, err := cc.CertificationService.IssueOrGet(c.Request.Context(), userID, courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cert)
}

func (cc *CertificateController) ListMine(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	certs, err := cc.CertificationService.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, certs)
}

// Verify is public: third parties check authenticity by code.
func (cc *CertificateController) Verify(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing verification code"})
		return
	}

	cert, err := cc.CertificationService.Verify(c.Request.Context(), code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"valid":        true,
		"student_name": cert.StudentName,
		"course_id":    cert.CourseID,
		"percentage":   cert.Percentage,
		"issue_date":   cert.IssueDate,
	})
}

func (cc *CertificateController) Download(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	code := c.Param("code")

	cert, err := cc.CertificationService.Verify(c.Request.Context(), code)
	if err != nil {
		respondError(c, err)
		return
	}
	if cert.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "certificate belongs to another user"})
		return
	}

	pdfBytes, err := cc.Renderer.Render(cert)
	if err != nil {
		utilities.Error("render certificate %s: %v", cert.VerificationCode, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render certificate"})
		return
	}

	filename := fmt.Sprintf("certificate-%s.pdf", cert.VerificationCode)
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
