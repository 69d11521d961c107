package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrCourseNotFound is returned when a course has no published chapters.
	ErrCourseNotFound = errors.New("course not found")

	// ErrInvalidExam is returned when an exam has no questions to grade.
	ErrInvalidExam = errors.New("final exam has no questions")

	// ErrExamNotAvailable is returned for unpublished exams.
	ErrExamNotAvailable = errors.New("final exam is not available")

	// ErrRecordNotFound is the engine-level not-found, so callers don't
	// have to depend on gorm's sentinel.
	ErrRecordNotFound = errors.New("record not found")

	// ErrVerificationCodeCollision is internal: the issuer retries code
	// generation and never surfaces this to callers.
	ErrVerificationCodeCollision = errors.New("verification code collision")

	// ErrStorageConflict is internal: a concurrent writer won the unique
	// constraint race; the caller re-reads instead of failing.
	ErrStorageConflict = errors.New("storage conflict")
)

// Eligibility check identifiers, in the order the gate evaluates them.
const (
	CheckChapters    = "chapters"
	CheckQuizzes     = "quizzes"
	CheckAssignments = "assignments"
	CheckFinalExam   = "final_exam"
	CheckPercentage  = "percentage"
)

// NotEligibleError reports the first unmet certificate condition.
type NotEligibleError struct {
	Check  string
	Detail string
}

func (e *NotEligibleError) Error() string {
	return fmt.Sprintf("not eligible for certificate: %s (%s)", e.Check, e.Detail)
}

func NotEligible(check, detail string) *NotEligibleError {
	return &NotEligibleError{Check: check, Detail: detail}
}

// IsNotEligible unwraps err into a NotEligibleError if it is one.
func IsNotEligible(err error) (*NotEligibleError, bool) {
	var ne *NotEligibleError
	if errors.As(err, &ne) {
		return ne, true
	}
	return nil, false
}
