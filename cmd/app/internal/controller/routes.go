package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"coursehub-backend/internal/apperr"
	"coursehub-backend/internal/render"
	"coursehub-backend/internal/repository"
	"coursehub-backend/internal/service"
	"coursehub-backend/utilities"
)

// RegisterRoutes binds every engine operation. Write endpoints carry
// the per-client rate limiter.
func RegisterRoutes(
	r *gin.Engine,
	progressService service.ProgressService,
	examService service.ExamService,
	certificationService service.CertificationService,
	submissionService service.SubmissionService,
	factService service.FactService,
	catalogRepo repository.CatalogRepository,
	submissionRepo repository.SubmissionRepository,
	renderer render.Renderer,
	writeLimiter gin.HandlerFunc,
) {
	progressCtrl := NewProgressController(progressService)
	r.GET("/courses/:course_id/progress", progressCtrl.GetCourseProgress)

	examCtrl := NewExamController(examService)
	examRoutes := r.Group("/final-exams")
	{
		examRoutes.POST("/:exam_id/attempts", writeLimiter, examCtrl.SubmitAttempt)
		examRoutes.GET("/:exam_id/attempts", examCtrl.ListAttempts)
	}
	r.GET("/courses/:course_id/final-exam", examCtrl.GetCourseExam)

	certCtrl := NewCertificateController(certificationService, renderer)
	r.GET("/courses/:course_id/certificate/eligibility", certCtrl.CheckEligibility)
	r.POST("/courses/:course_id/certificate", certCtrl.IssueOrGet)
	certRoutes := r.Group("/certificates")
	{
		certRoutes.GET("/", certCtrl.ListMine)
		certRoutes.GET("/verify/:code", certCtrl.Verify)
		certRoutes.GET("/:code/download", certCtrl.Download)
	}

	submissionCtrl := NewSubmissionController(submissionService, catalogRepo, submissionRepo)
	r.POST("/assignments/:assignment_id/submissions", writeLimiter, submissionCtrl.Submit)
	submissionRoutes := r.Group("/submissions")
	{
		submissionRoutes.POST("/:submission_id/grade", submissionCtrl.Grade)
		submissionRoutes.GET("/:submission_id/plagiarism", submissionCtrl.GetPlagiarismReport)
	}

	factCtrl := NewFactController(factService)
	factRoutes := r.Group("/facts")
	{
		factRoutes.POST("/video", writeLimiter, factCtrl.RecordVideoWatched)
		factRoutes.POST("/quiz", writeLimiter, factCtrl.RecordQuizAttempt)
	}
}

// currentUserID reads the identity the auth middleware stored.
func currentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get("user_id")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return 0, false
	}
	id, ok := v.(uint)
	if !ok || id == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return 0, false
	}
	return id, true
}

func paramUint(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	parsed, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || parsed == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(parsed), true
}

// respondError maps engine errors onto HTTP statuses. Not-eligible
// responses always name the failing check so the UI can guide the
// learner.
func respondError(c *gin.Context, err error) {
	if ne, ok := apperr.IsNotEligible(err); ok {
		c.JSON(http.StatusForbidden, gin.H{
			"error":  "not eligible for certificate",
			"check":  ne.Check,
			"reason": ne.Detail,
		})
		return
	}
	switch {
	case errors.Is(err, apperr.ErrCourseNotFound),
		errors.Is(err, apperr.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrExamNotAvailable):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrInvalidExam):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		utilities.Error("request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
