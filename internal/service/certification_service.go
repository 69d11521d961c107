package service

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"coursehub-backend/internal/apperr"
	"coursehub-backend/internal/model"
	"coursehub-backend/internal/repository"
	"coursehub-backend/utilities"
)

// Eligibility is the gate's verdict. When not eligible, Check names
// the first failing condition (stable order: chapters, quizzes,
// assignments, final exam, percentage) and Reason is learner-facing.
type Eligibility struct {
	Eligible bool            `json:"eligible"`
	Check    string          `json:"check,omitempty"`
	Reason   string          `json:"reason,omitempty"`
	Progress *CourseProgress `json:"progress"`
}

type CertificationService interface {
	Evaluate(ctx context.Context, userID, courseID uint) (*Eligibility, error)
	IssueOrGet(ctx context.Context, userID, courseID uint) (*model.Certificate, error)
	Verify(ctx context.Context, code string) (*model.Certificate, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Certificate, error)
}

type certificationService struct {
	progress      ProgressService
	catalogRepo   repository.CatalogRepository
	examRepo      repository.ExamRepository
	certRepo      repository.CertificateRepository
	factRepo      repository.FactRepository
	userRepo      repository.UserRepository
	events        *utilities.EventBus
	insertRetries int
	codeRetries   int
}

func NewCertificationService(
	progress ProgressService,
	catalogRepo repository.CatalogRepository,
	examRepo repository.ExamRepository,
	certRepo repository.CertificateRepository,
	factRepo repository.FactRepository,
	userRepo repository.UserRepository,
	events *utilities.EventBus,
	insertRetries, codeRetries int,
) CertificationService {
	if insertRetries <= 0 {
		insertRetries = 3
	}
	if codeRetries <= 0 {
		codeRetries = 5
	}
	return &certificationService{
		progress:      progress,
		catalogRepo:   catalogRepo,
		examRepo:      examRepo,
		certRepo:      certRepo,
		factRepo:      factRepo,
		userRepo:      userRepo,
		events:        events,
		insertRetries: insertRetries,
		codeRetries:   codeRetries,
	}
}

// Evaluate applies the course's certificate policy to the learner's
// current progress. It is a pure read; the checks run in a fixed order
// so the reported reason is deterministic.
func (s *certificationService) Evaluate(ctx context.Context, userID, courseID uint) (*Eligibility, error) {
	progress, err := s.progress.ComputeCourseProgress(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	policy, err := s.catalogRepo.GetPolicy(ctx, courseID)
	if err != nil {
		return nil, err
	}

	if policy.RequireAllChapters && progress.CompletedChapters < progress.TotalChapters {
		return ineligible(progress, apperr.CheckChapters,
			fmt.Sprintf("all chapter videos must be watched (%d of %d complete)",
				progress.CompletedChapters, progress.TotalChapters)), nil
	}
	if policy.RequireAllQuizzes && progress.CompletedQuizzes < progress.TotalQuizzes {
		return ineligible(progress, apperr.CheckQuizzes,
			fmt.Sprintf("all quizzes must be attempted (%d of %d complete)",
				progress.CompletedQuizzes, progress.TotalQuizzes)), nil
	}
	if policy.RequireAllAssignments && progress.CompletedAssignments < progress.TotalAssignments {
		return ineligible(progress, apperr.CheckAssignments,
			fmt.Sprintf("all assignments must be submitted (%d of %d complete)",
				progress.CompletedAssignments, progress.TotalAssignments)), nil
	}

	exam, err := s.catalogRepo.GetFinalExam(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if exam != nil && exam.IsPublished {
		passed, err := s.examRepo.GetLatestPassedAttempt(ctx, userID, courseID)
		if err != nil {
			return nil, err
		}
		if passed == nil {
			return ineligible(progress, apperr.CheckFinalExam,
				"the final exam must be passed"), nil
		}
	}

	if progress.Percent < policy.MinPercentage {
		return ineligible(progress, apperr.CheckPercentage,
			fmt.Sprintf("course progress is %d%%, policy requires %d%%",
				progress.Percent, policy.MinPercentage)), nil
	}

	return &Eligibility{Eligible: true, Progress: progress}, nil
}

func ineligible(progress *CourseProgress, check, reason string) *Eligibility {
	return &Eligibility{Eligible: false, Check: check, Reason: reason, Progress: progress}
}

// IssueOrGet returns the learner's certificate, minting it when absent
// and eligible. Issuance is idempotent: the unique (user, course)
// index makes concurrent calls converge on one row, and the loser of
// the race re-reads instead of erroring. Certificates are never
// revoked here.
func (s *certificationService) IssueOrGet(ctx context.Context, userID, courseID uint) (*model.Certificate, error) {
	existing, err := s.certRepo.FindByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	elig, err := s.Evaluate(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if !elig.Eligible {
		return nil, apperr.NotEligible(elig.Check, elig.Reason)
	}

	cert, err := s.buildCertificate(ctx, userID, courseID, elig.Progress)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < s.insertRetries; attempt++ {
		insertErr := s.insertWithFreshCode(ctx, cert)
		if insertErr == nil {
			s.events.Publish(utilities.EventCertificateIssued, cert)
			return cert, nil
		}
		if errors.Is(insertErr, apperr.ErrStorageConflict) {
			// A concurrent request won; its row is the certificate.
			existing, err := s.certRepo.FindByUserAndCourse(ctx, userID, courseID)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				return existing, nil
			}
			continue
		}
		return nil, insertErr
	}
	return nil, fmt.Errorf("issue certificate for user %d course %d: %w", userID, courseID, apperr.ErrStorageConflict)
}

func (s *certificationService) insertWithFreshCode(ctx context.Context, cert *model.Certificate) error {
	var err error
	for attempt := 0; attempt < s.codeRetries; attempt++ {
		cert.VerificationCode = GenerateVerificationCode()
		err = s.certRepo.InsertIfAbsent(ctx, cert)
		if !errors.Is(err, apperr.ErrVerificationCodeCollision) {
			return err
		}
	}
	return err
}

func (s *certificationService) buildCertificate(ctx context.Context, userID, courseID uint, progress *CourseProgress) (*model.Certificate, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve student name: %w", err)
	}

	achieved, total, err := s.scoreSummary(ctx, userID, courseID, progress)
	if err != nil {
		return nil, err
	}

	return &model.Certificate{
		UserID:               userID,
		CourseID:             courseID,
		StudentName:          user.FullName(),
		TotalChapters:        progress.TotalChapters,
		CompletedChapters:    progress.CompletedChapters,
		TotalQuizzes:         progress.TotalQuizzes,
		CompletedQuizzes:     progress.CompletedQuizzes,
		TotalAssignments:     progress.TotalAssignments,
		CompletedAssignments: progress.CompletedAssignments,
		TotalScore:           total,
		AchievedScore:        achieved,
		Percentage:           progress.Percent,
		IssueDate:            time.Now().UTC(),
	}, nil
}

// scoreSummary prefers the most recent final-exam attempt; courses
// without one fall back to aggregated quiz scores against an
// equal-weighted maximum.
func (s *certificationService) scoreSummary(ctx context.Context, userID, courseID uint, progress *CourseProgress) (achieved, total int, err error) {
	attempt, err := s.examRepo.GetLatestAttempt(ctx, userID, courseID)
	if err != nil {
		return 0, 0, err
	}
	if attempt != nil {
		return attempt.Score, 100, nil
	}

	facts, err := s.factRepo.GetCompletionFacts(ctx, userID, courseID)
	if err != nil {
		return 0, 0, err
	}
	for _, fact := range facts {
		if fact.UnitKind == model.UnitQuiz && fact.Score != nil {
			achieved += *fact.Score
		}
	}
	return achieved, 100 * progress.TotalQuizzes, nil
}

func (s *certificationService) Verify(ctx context.Context, code string) (*model.Certificate, error) {
	return s.certRepo.FindByVerificationCode(ctx, code)
}

func (s *certificationService) ListByUser(ctx context.Context, userID uint) ([]model.Certificate, error) {
	return s.certRepo.ListByUser(ctx, userID)
}

// GenerateVerificationCode combines a timestamp component with random
// entropy so codes sort roughly by issue time but cannot be
// enumerated. Collisions are handled by the caller's retry.
func GenerateVerificationCode() string {
	ts := strings.ToUpper(strconv.FormatInt(time.Now().UTC().Unix(), 36))
	id := uuid.New()
	return fmt.Sprintf("CERT-%s-%s", ts, strings.ToUpper(hex.EncodeToString(id[:4])))
}
