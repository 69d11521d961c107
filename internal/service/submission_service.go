package service

import (
	"context"
	"fmt"
	"time"

	"coursehub-backend/internal/model"
	"coursehub-backend/internal/repository"
	"coursehub-backend/utilities"
)

// SubmissionService owns the assignment submission lifecycle:
//
//	submitted -> graded -> resubmitted -> graded
//
// Resubmission clears the prior grade instead of nulling fields ad
// hoc, and every state change keeps the learner's completion fact in
// step so the aggregator sees it.
type SubmissionService interface {
	Submit(ctx context.Context, userID uint, assignment *model.Assignment, content string) (*model.Submission, error)
	Grade(ctx context.Context, submissionID uint, grade int, feedback string) (*model.Submission, error)
}

type submissionService struct {
	submissionRepo repository.SubmissionRepository
	factRepo       repository.FactRepository
	events         *utilities.EventBus
}

func NewSubmissionService(submissionRepo repository.SubmissionRepository, factRepo repository.FactRepository, events *utilities.EventBus) SubmissionService {
	return &submissionService{submissionRepo: submissionRepo, factRepo: factRepo, events: events}
}

// Submit creates the learner's submission, or transitions an existing
// one to resubmitted. Plagiarism scoring is kicked off via the event
// bus so a scorer failure can never reject the submission.
func (s *submissionService) Submit(ctx context.Context, userID uint, assignment *model.Assignment, content string) (*model.Submission, error) {
	now := time.Now().UTC()

	existing, err := s.submissionRepo.GetByAssignmentAndUser(ctx, assignment.ID, userID)
	if err != nil {
		return nil, err
	}

	var sub *model.Submission
	event := utilities.EventSubmissionCreated
	if existing == nil {
		sub = &model.Submission{
			AssignmentID: assignment.ID,
			CourseID:     assignment.CourseID,
			UserID:       userID,
			Content:      content,
			Status:       model.SubmissionSubmitted,
			SubmittedAt:  now,
		}
		if err := s.submissionRepo.Create(ctx, sub); err != nil {
			return nil, fmt.Errorf("create submission: %w", err)
		}
	} else {
		sub = existing
		sub.Content = content
		sub.SubmittedAt = now
		if sub.Status == model.SubmissionGraded {
			sub.Status = model.SubmissionResubmitted
			event = utilities.EventSubmissionResubmitted
		} else {
			sub.Status = model.SubmissionSubmitted
		}
		// A resubmission clears the prior grade.
		sub.Grade = nil
		sub.Feedback = ""
		sub.GradedAt = nil
		if err := s.submissionRepo.Update(ctx, sub); err != nil {
			return nil, fmt.Errorf("update submission: %w", err)
		}
	}

	if err := s.recordFact(ctx, sub, now); err != nil {
		return nil, err
	}

	s.events.Publish(event, sub.ID)
	return sub, nil
}

// Grade moves a submitted or resubmitted submission to graded. Grading
// affects the displayed score only; eligibility already counts the
// submission itself.
func (s *submissionService) Grade(ctx context.Context, submissionID uint, grade int, feedback string) (*model.Submission, error) {
	sub, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if sub.Status != model.SubmissionSubmitted && sub.Status != model.SubmissionResubmitted {
		return nil, fmt.Errorf("submission %d cannot be graded from state %q", sub.ID, sub.Status)
	}

	now := time.Now().UTC()
	sub.Status = model.SubmissionGraded
	sub.Grade = &grade
	sub.Feedback = feedback
	sub.GradedAt = &now
	if err := s.submissionRepo.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("grade submission: %w", err)
	}

	if err := s.recordFact(ctx, sub, now); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *submissionService) recordFact(ctx context.Context, sub *model.Submission, at time.Time) error {
	status := sub.Status
	if status == model.SubmissionResubmitted {
		status = model.SubmissionSubmitted
	}
	fact := &model.CompletionFact{
		UserID:      sub.UserID,
		UnitID:      sub.AssignmentID,
		UnitKind:    model.UnitAssignment,
		CourseID:    sub.CourseID,
		Status:      status,
		Score:       sub.Grade,
		CompletedAt: &at,
	}
	if err := s.factRepo.UpsertFact(ctx, fact); err != nil {
		return fmt.Errorf("record submission fact: %w", err)
	}
	return nil
}
