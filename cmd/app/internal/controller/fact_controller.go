package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"coursehub-backend/internal/service"
)

// FactController is the upsert surface for the collaborators that
// observe learner interactions.
type FactController struct {
	FactService service.FactService
}

func NewFactController(factService service.FactService) *FactController {
	return &FactController{FactService: factService}
}

func (fc *FactController) RecordVideoWatched(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		ChapterID uint `json:"chapter_id" binding:"required"`
		CourseID  uint `json:"course_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: chapter_id and course_id are required"})
		return
	}

	if err := fc.FactService.RecordVideoWatched(c.Request.Context(), userID, req.ChapterID, req.CourseID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "video completion recorded"})
}

func (fc *FactController) RecordQuizAttempt(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		QuizID   uint `json:"quiz_id" binding:"required"`
		CourseID uint `json:"course_id" binding:"required"`
		Score    *int `json:"score" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: quiz_id, course_id and score are required"})
		return
	}
	if *req.Score < 0 || *req.Score > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "score must be between 0 and 100"})
		return
	}

	if err := fc.FactService.RecordQuizAttempt(c.Request.Context(), userID, req.QuizID, req.CourseID, *req.Score); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "quiz attempt recorded"})
}
