package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"coursehub-backend/internal/service"
)

type ExamController struct {
	ExamService service.ExamService
}

func NewExamController(examService service.ExamService) *ExamController {
	return &ExamController{ExamService: examService}
}

// GetCourseExam returns the course's published final exam without the
// answer key.
func (ec *ExamController) GetCourseExam(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	courseID, ok := paramUint(c, "course_id")
	if !ok {
		return
	}

	exam, err := ec.ExamService.GetExam(c.Request.Context(), courseID)
	if err != nil {
		respondError(c, err)
		return
	}

	type questionView struct {
		ID      uint        `json:"id"`
		Text    string      `json:"text"`
		Choices interface{} `json:"choices"`
		Points  int         `json:"points"`
	}
	questions := make([]questionView, 0, len(exam.Questions))
	for _, q := range exam.Questions {
		questions = append(questions, questionView{ID: q.ID, Text: q.Text, Choices: q.Choices, Points: q.Points})
	}
	c.JSON(http.StatusOK, gin.H{
		"id":            exam.ID,
		"course_id":     exam.CourseID,
		"title":         exam.Title,
		"passing_score": exam.PassingScore,
		"questions":     questions,
	})
}

func (ec *ExamController) SubmitAttempt(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	examID, ok := paramUint(c, "exam_id")
	if !ok {
		return
	}

	var req struct {
		Answers map[uint]string `json:"answers" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: answers are required"})
		return
	}

	attempt, err := ec.ExamService.SubmitExam(c.Request.Context(), userID, examID, req.Answers)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"attempt_uid":  attempt.AttemptUID,
		"score":        attempt.Score,
		"passed":       attempt.Passed,
		"grade":        attempt.Grade,
		"completed_at": attempt.CompletedAt,
	})
}

func (ec *ExamController) ListAttempts(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	examID, ok := paramUint(c, "exam_id")
	if !ok {
		return
	}

	attempts, err := ec.ExamService.ListAttempts(c.Request.Context(), userID, examID)
	if err != nil {
		respondError(c, err)
		return
	}

	// The stored attempt carries the graded question snapshot, answer
	// key included. Only the result leaves the building.
	type attemptView struct {
		AttemptUID  string    `json:"attempt_uid"`
		Score       int       `json:"score"`
		Passed      bool      `json:"passed"`
		Grade       string    `json:"grade"`
		CompletedAt time.Time `json:"completed_at"`
	}
	views := make([]attemptView, 0, len(attempts))
	for _, a := range attempts {
		views = append(views, attemptView{
			AttemptUID:  a.AttemptUID,
			Score:       a.Score,
			Passed:      a.Passed,
			Grade:       a.Grade,
			CompletedAt: a.CompletedAt,
		})
	}
	c.JSON(http.StatusOK, views)
}
