package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"coursehub-backend/internal/apperr"
	"coursehub-backend/internal/model"
)

const uniqueViolation = "23505"

// CertificateRepository persists issuance records. The (user, course)
// unique index is the authority on "at most one certificate"; the
// insert surfaces which constraint fired so the issuer can pick the
// right recovery (re-read vs. regenerate code).
type CertificateRepository interface {
	FindByUserAndCourse(ctx context.Context, userID, courseID uint) (*model.Certificate, error)
	FindByVerificationCode(ctx context.Context, code string) (*model.Certificate, error)
	InsertIfAbsent(ctx context.Context, cert *model.Certificate) error
	ListByUser(ctx context.Context, userID uint) ([]model.Certificate, error)
}

type certificateRepository struct {
	db *gorm.DB
}

func NewCertificateRepository(db *gorm.DB) CertificateRepository {
	return &certificateRepository{db: db}
}

func (r *certificateRepository) FindByUserAndCourse(ctx context.Context, userID, courseID uint) (*model.Certificate, error) {
	var cert model.Certificate
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&cert).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

func (r *certificateRepository) FindByVerificationCode(ctx context.Context, code string) (*model.Certificate, error) {
	var cert model.Certificate
	err := r.db.WithContext(ctx).
		Where("verification_code = ?", code).
		First(&cert).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

// InsertIfAbsent attempts the single atomic insert. It returns
// apperr.ErrStorageConflict when another issuer won the (user, course)
// race and apperr.ErrVerificationCodeCollision when only the code
// clashed.
func (r *certificateRepository) InsertIfAbsent(ctx context.Context, cert *model.Certificate) error {
	err := r.db.WithContext(ctx).Create(cert).Error
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		if strings.Contains(pgErr.ConstraintName, "verification_code") {
			return apperr.ErrVerificationCodeCollision
		}
		return apperr.ErrStorageConflict
	}
	// Some drivers (and gorm's translator) flatten the pg error.
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		if strings.Contains(err.Error(), "verification_code") {
			return apperr.ErrVerificationCodeCollision
		}
		return apperr.ErrStorageConflict
	}
	return err
}

func (r *certificateRepository) ListByUser(ctx context.Context, userID uint) ([]model.Certificate, error) {
	var certs []model.Certificate
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("issue_date desc").
		Find(&certs).Error
	if err != nil {
		return nil, err
	}
	return certs, nil
}
