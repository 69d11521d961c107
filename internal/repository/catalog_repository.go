package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"coursehub-backend/internal/apperr"
	"coursehub-backend/internal/model"
)

// CatalogRepository is the read-only view of the course catalog
// maintained by the authoring store. Only published chapters and
// quizzes are visible through it.
type CatalogRepository interface {
	ListPublishedChapters(ctx context.Context, courseID uint) ([]model.Chapter, error)
	GetFinalExam(ctx context.Context, courseID uint) (*model.FinalExam, error)
	GetFinalExamByID(ctx context.Context, examID uint) (*model.FinalExam, error)
	GetAssignment(ctx context.Context, assignmentID uint) (*model.Assignment, error)
	GetPolicy(ctx context.Context, courseID uint) (model.CertificatePolicy, error)
}

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) ListPublishedChapters(ctx context.Context, courseID uint) ([]model.Chapter, error) {
	var chapters []model.Chapter
	err := r.db.WithContext(ctx).
		Preload("Quizzes", "is_published = ?", true).
		Preload("Assignments").
		Where("course_id = ? AND is_published = ?", courseID, true).
		Order("position asc").
		Find(&chapters).Error
	if err != nil {
		return nil, err
	}
	return chapters, nil
}

func (r *catalogRepository) GetFinalExam(ctx context.Context, courseID uint) (*model.FinalExam, error) {
	var exam model.FinalExam
	err := r.db.WithContext(ctx).
		Preload("Questions").
		Where("course_id = ?", courseID).
		First(&exam).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &exam, nil
}

func (r *catalogRepository) GetFinalExamByID(ctx context.Context, examID uint) (*model.FinalExam, error) {
	var exam model.FinalExam
	err := r.db.WithContext(ctx).
		Preload("Questions").
		Where("id = ?", examID).
		First(&exam).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &exam, nil
}

func (r *catalogRepository) GetAssignment(ctx context.Context, assignmentID uint) (*model.Assignment, error) {
	var assignment model.Assignment
	err := r.db.WithContext(ctx).
		Where("id = ?", assignmentID).
		First(&assignment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *catalogRepository) GetPolicy(ctx context.Context, courseID uint) (model.CertificatePolicy, error) {
	var policy model.CertificatePolicy
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		First(&policy).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.DefaultPolicy(courseID), nil
	}
	if err != nil {
		return model.CertificatePolicy{}, err
	}
	return policy, nil
}
