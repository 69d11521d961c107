package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"coursehub-backend/internal/model"
)

// FactRepository reads and upserts completion facts. Facts are written
// by the collaborators that observe learner interactions (video
// tracker, quiz handler, submission handler); the progress path only
// reads them.
type FactRepository interface {
	GetCompletionFacts(ctx context.Context, userID, courseID uint) ([]model.CompletionFact, error)
	UpsertFact(ctx context.Context, fact *model.CompletionFact) error
}

type factRepository struct {
	db *gorm.DB
}

func NewFactRepository(db *gorm.DB) FactRepository {
	return &factRepository{db: db}
}

func (r *factRepository) GetCompletionFacts(ctx context.Context, userID, courseID uint) ([]model.CompletionFact, error) {
	var facts []model.CompletionFact
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Find(&facts).Error
	if err != nil {
		return nil, err
	}
	return facts, nil
}

// UpsertFact keeps at most one fact per (user, unit, kind). A later
// write overwrites status, score and completion time of the earlier one.
func (r *factRepository) UpsertFact(ctx context.Context, fact *model.CompletionFact) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "unit_id"}, {Name: "unit_kind"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status", "score", "completed_at", "updated_at",
			}),
		}).
		Create(fact).Error
}
