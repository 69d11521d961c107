package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"coursehub-backend/internal/service"
)

type ProgressController struct {
	ProgressService service.ProgressService
}

func NewProgressController(progressService service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

func (pc *ProgressController) GetCourseProgress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	courseID, ok := paramUint(c, "course_id")
	if !ok {
		return
	}

	progress, err := pc.ProgressService.ComputeCourseProgress(c.Request.Context(), userID, courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}
