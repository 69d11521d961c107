package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"coursehub-backend/internal/apperr"
	"coursehub-backend/internal/model"
)

// SubmissionRepository stores assignment submissions and writes
// plagiarism reports back onto them.
type SubmissionRepository interface {
	Create(ctx context.Context, sub *model.Submission) error
	GetByID(ctx context.Context, id uint) (*model.Submission, error)
	GetByAssignmentAndUser(ctx context.Context, assignmentID, userID uint) (*model.Submission, error)
	ListByAssignment(ctx context.Context, assignmentID uint) ([]model.Submission, error)
	Update(ctx context.Context, sub *model.Submission) error
	SavePlagiarismReport(ctx context.Context, submissionID uint, score int, matches datatypes.JSON, checkedAt time.Time) error
}

type submissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, sub *model.Submission) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (*model.Submission, error) {
	var sub model.Submission
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *submissionRepository) GetByAssignmentAndUser(ctx context.Context, assignmentID, userID uint) (*model.Submission, error) {
	var sub model.Submission
	err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND user_id = ?", assignmentID, userID).
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *submissionRepository) ListByAssignment(ctx context.Context, assignmentID uint) ([]model.Submission, error) {
	var subs []model.Submission
	err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *submissionRepository) Update(ctx context.Context, sub *model.Submission) error {
	return r.db.WithContext(ctx).Save(sub).Error
}

// SavePlagiarismReport overwrites the prior report; reports are not
// versioned.
func (r *submissionRepository) SavePlagiarismReport(ctx context.Context, submissionID uint, score int, matches datatypes.JSON, checkedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Submission{}).
		Where("id = ?", submissionID).
		Updates(map[string]interface{}{
			"similarity_score":      score,
			"plagiarism_matches":    matches,
			"plagiarism_checked_at": checkedAt,
		}).Error
}
