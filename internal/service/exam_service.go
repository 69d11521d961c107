package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"coursehub-backend/internal/apperr"
	"coursehub-backend/internal/model"
	"coursehub-backend/internal/repository"
)

// GradeResult is what grading a submitted answer set produces.
type GradeResult struct {
	Score        int    `json:"score"`
	CorrectCount int    `json:"correct_count"`
	TotalCount   int    `json:"total_count"`
	Passed       bool   `json:"passed"`
	Grade        string `json:"grade"`
}

type ExamService interface {
	GetExam(ctx context.Context, courseID uint) (*model.FinalExam, error)
	SubmitExam(ctx context.Context, userID, examID uint, answers map[uint]string) (*model.FinalExamAttempt, error)
	ListAttempts(ctx context.Context, userID, examID uint) ([]model.FinalExamAttempt, error)
}

type examService struct {
	catalogRepo repository.CatalogRepository
	examRepo    repository.ExamRepository
}

func NewExamService(catalogRepo repository.CatalogRepository, examRepo repository.ExamRepository) ExamService {
	return &examService{catalogRepo: catalogRepo, examRepo: examRepo}
}

func (s *examService) GetExam(ctx context.Context, courseID uint) (*model.FinalExam, error) {
	exam, err := s.catalogRepo.GetFinalExam(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if exam == nil || !exam.IsPublished {
		return nil, apperr.ErrExamNotAvailable
	}
	return exam, nil
}

// SubmitExam grades the answers against the exam's current question
// set and persists an immutable attempt carrying a snapshot of that
// set, so later question edits never change this score. Whether a
// learner may submit more than once is the caller's policy, not ours.
func (s *examService) SubmitExam(ctx context.Context, userID, examID uint, answers map[uint]string) (*model.FinalExamAttempt, error) {
	exam, err := s.catalogRepo.GetFinalExamByID(ctx, examID)
	if err != nil {
		return nil, err
	}
	if !exam.IsPublished {
		return nil, apperr.ErrExamNotAvailable
	}

	result, err := GradeAnswers(exam.Questions, answers, exam.PassingScore)
	if err != nil {
		return nil, err
	}

	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("encode answers: %w", err)
	}
	snapshotJSON, err := json.Marshal(snapshotQuestions(exam.Questions))
	if err != nil {
		return nil, fmt.Errorf("encode question snapshot: %w", err)
	}

	attempt := &model.FinalExamAttempt{
		AttemptUID:  uuid.New().String(),
		UserID:      userID,
		FinalExamID: exam.ID,
		CourseID:    exam.CourseID,
		Answers:     answersJSON,
		QuestionSet: snapshotJSON,
		Score:       result.Score,
		Passed:      result.Passed,
		Grade:       result.Grade,
		CompletedAt: time.Now().UTC(),
	}
	if err := s.examRepo.CreateAttempt(ctx, attempt); err != nil {
		return nil, fmt.Errorf("persist attempt: %w", err)
	}
	return attempt, nil
}

func (s *examService) ListAttempts(ctx context.Context, userID, examID uint) ([]model.FinalExamAttempt, error) {
	return s.examRepo.ListAttempts(ctx, userID, examID)
}

// GradeAnswers scores a submitted answer set. Correctness is exact
// match against the stored answer key; there is no partial credit.
func GradeAnswers(questions []model.FinalExamQuestion, answers map[uint]string, passingScore int) (GradeResult, error) {
	if len(questions) == 0 {
		return GradeResult{}, apperr.ErrInvalidExam
	}

	correct := 0
	for _, q := range questions {
		if submitted, ok := answers[q.ID]; ok {
			if strings.TrimSpace(submitted) == strings.TrimSpace(q.CorrectAnswer) {
				correct++
			}
		}
	}

	score := int(math.Round(100 * float64(correct) / float64(len(questions))))
	return GradeResult{
		Score:        score,
		CorrectCount: correct,
		TotalCount:   len(questions),
		Passed:       score >= passingScore,
		Grade:        LetterGrade(score),
	}, nil
}

// LetterGrade maps a 0-100 score to a letter. Boundaries resolve to
// the higher grade: exactly 93 is an A, exactly 65 a D.
func LetterGrade(score int) string {
	switch {
	case score >= 97:
		return "A+"
	case score >= 93:
		return "A"
	case score >= 90:
		return "A-"
	case score >= 87:
		return "B+"
	case score >= 83:
		return "B"
	case score >= 80:
		return "B-"
	case score >= 77:
		return "C+"
	case score >= 73:
		return "C"
	case score >= 70:
		return "C-"
	case score >= 67:
		return "D+"
	case score >= 65:
		return "D"
	default:
		return "F"
	}
}

type questionSnapshot struct {
	ID            uint   `json:"id"`
	Text          string `json:"text"`
	CorrectAnswer string `json:"correct_answer"`
	Points        int    `json:"points"`
}

func snapshotQuestions(questions []model.FinalExamQuestion) []questionSnapshot {
	snap := make([]questionSnapshot, 0, len(questions))
	for _, q := range questions {
		snap = append(snap, questionSnapshot{
			ID:            q.ID,
			Text:          q.Text,
			CorrectAnswer: q.CorrectAnswer,
			Points:        q.Points,
		})
	}
	return snap
}
