package service

import (
	"context"
	"math"

	"coursehub-backend/internal/apperr"
	"coursehub-backend/internal/model"
	"coursehub-backend/internal/repository"
)

// ChapterProgress is derived on demand and never cached; it is a pure
// function of the catalog and the learner's current facts.
type ChapterProgress struct {
	ChapterID      uint   `json:"chapter_id"`
	Title          string `json:"title"`
	TotalUnits     int    `json:"total_units"`
	CompletedUnits int    `json:"completed_units"`
	Percent        int    `json:"percent"`
	IsComplete     bool   `json:"is_complete"`
}

// CourseProgress aggregates chapter progress plus the per-category
// counts the certification gate and issuer consume. All callers go
// through ComputeCourseProgress rather than re-deriving percentages
// locally.
type CourseProgress struct {
	CourseID             uint              `json:"course_id"`
	UserID               uint              `json:"user_id"`
	Chapters             []ChapterProgress `json:"chapters"`
	TotalUnits           int               `json:"total_units"`
	CompletedUnits       int               `json:"completed_units"`
	Percent              int               `json:"percent"`
	IsCompletelyFinished bool              `json:"is_completely_finished"`

	TotalChapters        int `json:"total_chapters"`
	CompletedChapters    int `json:"completed_chapters"`
	TotalQuizzes         int `json:"total_quizzes"`
	CompletedQuizzes     int `json:"completed_quizzes"`
	TotalAssignments     int `json:"total_assignments"`
	CompletedAssignments int `json:"completed_assignments"`
}

type ProgressService interface {
	ComputeCourseProgress(ctx context.Context, userID, courseID uint) (*CourseProgress, error)
}

type progressService struct {
	catalogRepo repository.CatalogRepository
	factRepo    repository.FactRepository
}

func NewProgressService(catalogRepo repository.CatalogRepository, factRepo repository.FactRepository) ProgressService {
	return &progressService{catalogRepo: catalogRepo, factRepo: factRepo}
}

// ComputeCourseProgress merges the learner's completion facts with the
// published catalog. It performs no writes.
func (s *progressService) ComputeCourseProgress(ctx context.Context, userID, courseID uint) (*CourseProgress, error) {
	chapters, err := s.catalogRepo.ListPublishedChapters(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if len(chapters) == 0 {
		return nil, apperr.ErrCourseNotFound
	}

	facts, err := s.factRepo.GetCompletionFacts(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	videoDone := make(map[uint]bool)
	quizDone := make(map[uint]bool)
	assignmentDone := make(map[uint]bool)
	for _, fact := range facts {
		switch fact.UnitKind {
		case model.UnitVideo:
			videoDone[fact.UnitID] = true
		case model.UnitQuiz:
			// Any attempt completes the unit; re-attempts only move score.
			quizDone[fact.UnitID] = true
		case model.UnitAssignment:
			if fact.Status == model.SubmissionSubmitted || fact.Status == model.SubmissionGraded {
				assignmentDone[fact.UnitID] = true
			}
		}
	}

	progress := &CourseProgress{
		CourseID: courseID,
		UserID:   userID,
		Chapters: make([]ChapterProgress, 0, len(chapters)),
	}

	for _, chapter := range chapters {
		cp := ChapterProgress{ChapterID: chapter.ID, Title: chapter.Title}

		if chapter.HasVideo {
			cp.TotalUnits++
			progress.TotalChapters++
			if videoDone[chapter.ID] {
				cp.CompletedUnits++
				progress.CompletedChapters++
			}
		}
		for _, quiz := range chapter.Quizzes {
			cp.TotalUnits++
			progress.TotalQuizzes++
			if quizDone[quiz.ID] {
				cp.CompletedUnits++
				progress.CompletedQuizzes++
			}
		}
		for _, assignment := range chapter.Assignments {
			cp.TotalUnits++
			progress.TotalAssignments++
			if assignmentDone[assignment.ID] {
				cp.CompletedUnits++
				progress.CompletedAssignments++
			}
		}

		// Content-free chapters count as complete and stay out of the
		// course denominator so they never penalize the learner.
		if cp.TotalUnits == 0 {
			cp.Percent = 100
			cp.IsComplete = true
			progress.Chapters = append(progress.Chapters, cp)
			continue
		}

		cp.Percent = roundPercent(cp.CompletedUnits, cp.TotalUnits)
		cp.IsComplete = cp.CompletedUnits == cp.TotalUnits
		progress.TotalUnits += cp.TotalUnits
		progress.CompletedUnits += cp.CompletedUnits
		progress.Chapters = append(progress.Chapters, cp)
	}

	// Course percent weights chapters by unit count, not an average of
	// chapter percentages.
	progress.Percent = roundPercent(progress.CompletedUnits, progress.TotalUnits)
	progress.IsCompletelyFinished = progress.Percent == 100

	return progress, nil
}

func roundPercent(completed, total int) int {
	if total == 0 {
		return 100
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}
