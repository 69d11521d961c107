package controller

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"coursehub-backend/internal/repository"
	"coursehub-backend/internal/service"
)

type SubmissionController struct {
	SubmissionService service.SubmissionService
	CatalogRepo       repository.CatalogRepository
	SubmissionRepo    repository.SubmissionRepository
}

func NewSubmissionController(submissionService service.SubmissionService, catalogRepo repository.CatalogRepository, submissionRepo repository.SubmissionRepository) *SubmissionController {
	return &SubmissionController{
		SubmissionService: submissionService,
		CatalogRepo:       catalogRepo,
		SubmissionRepo:    submissionRepo,
	}
}

func (sc *SubmissionController) Submit(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	assignmentID, ok := paramUint(c, "assignment_id")
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: content is required"})
		return
	}

	assignment, err := sc.CatalogRepo.GetAssignment(c.Request.Context(), assignmentID)
	if err != nil {
		respondError(c, err)
		return
	}

	sub, err := sc.SubmissionService.Submit(c.Request.Context(), userID, assignment, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (sc *SubmissionController) Grade(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	submissionID, ok := paramUint(c, "submission_id")
	if !ok {
		return
	}

	var req struct {
		Grade    *int   `json:"grade" binding:"required"`
		Feedback string `json:"feedback"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: grade is required"})
		return
	}
	if *req.Grade < 0 || *req.Grade > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "grade must be between 0 and 100"})
		return
	}

	sub, err := sc.SubmissionService.Grade(c.Request.Context(), submissionID, *req.Grade, req.Feedback)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (sc *SubmissionController) GetPlagiarismReport(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	submissionID, ok := paramUint(c, "submission_id")
	if !ok {
		return
	}

	sub, err := sc.SubmissionRepo.GetByID(c.Request.Context(), submissionID)
	if err != nil {
		respondError(c, err)
		return
	}

	var matches []service.PlagiarismMatch
	if len(sub.PlagiarismMatches) > 0 {
		if err := json.Unmarshal(sub.PlagiarismMatches, &matches); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "corrupt plagiarism report"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"submission_id":    sub.ID,
		"similarity_score": sub.SimilarityScore,
		"matches":          matches,
		"checked_at":       sub.PlagiarismCheckedAt,
	})
}
