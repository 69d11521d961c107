package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"coursehub-backend/internal/model"
)

// ExamRepository persists final-exam attempts and finds the latest
// passing one for the certification gate. Attempts are never updated
// or deleted.
type ExamRepository interface {
	CreateAttempt(ctx context.Context, attempt *model.FinalExamAttempt) error
	GetLatestPassedAttempt(ctx context.Context, userID, courseID uint) (*model.FinalExamAttempt, error)
	GetLatestAttempt(ctx context.Context, userID, courseID uint) (*model.FinalExamAttempt, error)
	ListAttempts(ctx context.Context, userID, examID uint) ([]model.FinalExamAttempt, error)
}

type examRepository struct {
	db *gorm.DB
}

func NewExamRepository(db *gorm.DB) ExamRepository {
	return &examRepository{db: db}
}

func (r *examRepository) CreateAttempt(ctx context.Context, attempt *model.FinalExamAttempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r *examRepository) GetLatestPassedAttempt(ctx context.Context, userID, courseID uint) (*model.FinalExamAttempt, error) {
	var attempt model.FinalExamAttempt
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ? AND passed = ?", userID, courseID, true).
		Order("completed_at desc").
		First(&attempt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *examRepository) GetLatestAttempt(ctx context.Context, userID, courseID uint) (*model.FinalExamAttempt, error) {
	var attempt model.FinalExamAttempt
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Order("completed_at desc").
		First(&attempt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *examRepository) ListAttempts(ctx context.Context, userID, examID uint) ([]model.FinalExamAttempt, error) {
	var attempts []model.FinalExamAttempt
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND final_exam_id = ?", userID, examID).
		Order("completed_at desc").
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}
	return attempts, nil
}
