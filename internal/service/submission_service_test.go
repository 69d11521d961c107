package service

import (
	"context"
	"testing"
	"time"

	"coursehub-backend/internal/model"
	"coursehub-backend/utilities"
)

type submissionFixture struct {
	subs   *fakeSubmissionRepo
	facts  *fakeFactRepo
	events *utilities.EventBus
	svc    SubmissionService
}

func newSubmissionFixture() *submissionFixture {
	f := &submissionFixture{
		subs:   newFakeSubmissionRepo(),
		facts:  newFakeFactRepo(),
		events: utilities.NewEventBus(),
	}
	f.svc = NewSubmissionService(f.subs, f.facts, f.events)
	return f
}

func (f *submissionFixture) captureEvent(event string) <-chan interface{} {
	ch := make(chan interface{}, 1)
	f.events.Subscribe(event, func(data interface{}) { ch <- data })
	return ch
}

func awaitEvent(t *testing.T, ch <-chan interface{}) interface{} {
	t.Helper()
	select {
	case data := <-ch:
		return data
	case <-time.After(2 * time.Second):
		t.Fatalf("event not published")
		return nil
	}
}

func (f *submissionFixture) factFor(t *testing.T, userID, assignmentID uint) model.CompletionFact {
	t.Helper()
	facts, err := f.facts.GetCompletionFacts(context.Background(), userID, 1)
	if err != nil {
		t.Fatalf("load facts: %v", err)
	}
	for _, fact := range facts {
		if fact.UnitID == assignmentID && fact.UnitKind == model.UnitAssignment {
			return fact
		}
	}
	t.Fatalf("no assignment fact recorded for unit %d", assignmentID)
	return model.CompletionFact{}
}

var demoAssignment = &model.Assignment{ID: 20, ChapterID: 2, CourseID: 1, Title: "Essay"}

func TestSubmit_CreatesAndRecordsFact(t *testing.T) {
	f := newSubmissionFixture()
	created := f.captureEvent(utilities.EventSubmissionCreated)

	sub, err := f.svc.Submit(context.Background(), 7, demoAssignment, "my first draft")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.Status != model.SubmissionSubmitted {
		t.Fatalf("expected submitted, got %q", sub.Status)
	}
	if sub.ID == 0 {
		t.Fatalf("submission was not persisted")
	}

	fact := f.factFor(t, 7, 20)
	if fact.Status != model.SubmissionSubmitted {
		t.Fatalf("fact status = %q, want submitted", fact.Status)
	}

	if got := awaitEvent(t, created); got != sub.ID {
		t.Fatalf("event payload = %v, want submission ID %d", got, sub.ID)
	}
}

func TestSubmit_BeforeGradingStaysSubmitted(t *testing.T) {
	f := newSubmissionFixture()

	first, err := f.svc.Submit(context.Background(), 7, demoAssignment, "draft one")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := f.svc.Submit(context.Background(), 7, demoAssignment, "draft two")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("re-submitting before grading must update the row, not create one")
	}
	if second.Status != model.SubmissionSubmitted {
		t.Fatalf("expected submitted, got %q", second.Status)
	}
	if second.Content != "draft two" {
		t.Fatalf("content not replaced: %q", second.Content)
	}
}

func TestGrade_TransitionsAndRecordsScore(t *testing.T) {
	f := newSubmissionFixture()

	sub, err := f.svc.Submit(context.Background(), 7, demoAssignment, "draft")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	graded, err := f.svc.Grade(context.Background(), sub.ID, 88, "solid work")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if graded.Status != model.SubmissionGraded {
		t.Fatalf("expected graded, got %q", graded.Status)
	}
	if graded.Grade == nil || *graded.Grade != 88 {
		t.Fatalf("grade not stored: %v", graded.Grade)
	}
	if graded.GradedAt == nil {
		t.Fatalf("graded timestamp not stored")
	}

	fact := f.factFor(t, 7, 20)
	if fact.Status != model.SubmissionGraded {
		t.Fatalf("fact status = %q, want graded", fact.Status)
	}
	if fact.Score == nil || *fact.Score != 88 {
		t.Fatalf("fact score not recorded: %v", fact.Score)
	}
}

func TestGrade_RejectsDoubleGrading(t *testing.T) {
	f := newSubmissionFixture()

	sub, err := f.svc.Submit(context.Background(), 7, demoAssignment, "draft")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.svc.Grade(context.Background(), sub.ID, 88, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.svc.Grade(context.Background(), sub.ID, 95, ""); err == nil {
		t.Fatalf("grading a graded submission must fail")
	}
}

func TestSubmit_AfterGradingResubmitsAndClearsGrade(t *testing.T) {
	f := newSubmissionFixture()
	resubmitted := f.captureEvent(utilities.EventSubmissionResubmitted)

	sub, err := f.svc.Submit(context.Background(), 7, demoAssignment, "draft")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.svc.Grade(context.Background(), sub.ID, 60, "needs work"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	redo, err := f.svc.Submit(context.Background(), 7, demoAssignment, "improved draft")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if redo.ID != sub.ID {
		t.Fatalf("resubmission must reuse the row")
	}
	if redo.Status != model.SubmissionResubmitted {
		t.Fatalf("expected resubmitted, got %q", redo.Status)
	}
	if redo.Grade != nil || redo.Feedback != "" || redo.GradedAt != nil {
		t.Fatalf("resubmission must clear the prior grade: %+v", redo)
	}
	if got := awaitEvent(t, resubmitted); got != redo.ID {
		t.Fatalf("event payload = %v, want submission ID %d", got, redo.ID)
	}

	// The fact maps resubmitted back to submitted so progress still counts it.
	fact := f.factFor(t, 7, 20)
	if fact.Status != model.SubmissionSubmitted {
		t.Fatalf("fact status = %q, want submitted", fact.Status)
	}
	if fact.Score != nil {
		t.Fatalf("cleared grade must clear the fact score, got %v", fact.Score)
	}

	// The cycle closes: the resubmission can be graded again.
	regraded, err := f.svc.Grade(context.Background(), redo.ID, 90, "much better")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if regraded.Status != model.SubmissionGraded || *regraded.Grade != 90 {
		t.Fatalf("regrade failed: %+v", regraded)
	}
}
