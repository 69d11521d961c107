package service

import (
	"context"
	"time"

	"coursehub-backend/internal/model"
	"coursehub-backend/internal/repository"
)

// FactService is the write surface for the external collaborators that
// observe learner interactions (video tracker, quiz handler). Each
// write is an idempotent upsert keyed by (user, unit, kind).
type FactService interface {
	RecordVideoWatched(ctx context.Context, userID, chapterID, courseID uint) error
	RecordQuizAttempt(ctx context.Context, userID, quizID, courseID uint, score int) error
}

type factService struct {
	factRepo repository.FactRepository
}

func NewFactService(factRepo repository.FactRepository) FactService {
	return &factService{factRepo: factRepo}
}

func (s *factService) RecordVideoWatched(ctx context.Context, userID, chapterID, courseID uint) error {
	now := time.Now().UTC()
	return s.factRepo.UpsertFact(ctx, &model.CompletionFact{
		UserID:      userID,
		UnitID:      chapterID,
		UnitKind:    model.UnitVideo,
		CourseID:    courseID,
		Status:      "watched",
		CompletedAt: &now,
	})
}

// RecordQuizAttempt marks the quiz unit complete; a later attempt only
// moves the stored score.
func (s *factService) RecordQuizAttempt(ctx context.Context, userID, quizID, courseID uint, score int) error {
	now := time.Now().UTC()
	return s.factRepo.UpsertFact(ctx, &model.CompletionFact{
		UserID:      userID,
		UnitID:      quizID,
		UnitKind:    model.UnitQuiz,
		CourseID:    courseID,
		Status:      "attempted",
		Score:       &score,
		CompletedAt: &now,
	})
}
