package model

import (
	"time"

	"gorm.io/datatypes"
)

// Unit kinds as recorded on completion facts.
const (
	UnitVideo      = "VIDEO"
	UnitQuiz       = "QUIZ"
	UnitAssignment = "ASSIGNMENT"
)

// Submission lifecycle states.
const (
	SubmissionSubmitted   = "submitted"
	SubmissionGraded      = "graded"
	SubmissionResubmitted = "resubmitted"
)

// User rows are owned by the external account system; the engine only
// reads them for certificate naming.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Chapter is part of the read-only content catalog written by the
// authoring store. A chapter's video counts as one gradable unit when
// HasVideo is set; its unit id is the chapter id.
type Chapter struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	CourseID    uint         `json:"course_id" gorm:"index;not null"`
	Title       string       `json:"title"`
	Position    int          `json:"position"`
	HasVideo    bool         `json:"has_video"`
	IsPublished bool         `json:"is_published"`
	Quizzes     []Quiz       `json:"quizzes" gorm:"foreignKey:ChapterID"`
	Assignments []Assignment `json:"assignments" gorm:"foreignKey:ChapterID"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type Quiz struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ChapterID   uint      `json:"chapter_id" gorm:"index;not null"`
	CourseID    uint      `json:"course_id" gorm:"index"`
	Title       string    `json:"title"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Assignment struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	ChapterID   uint       `json:"chapter_id" gorm:"index;not null"`
	CourseID    uint       `json:"course_id" gorm:"index"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CompletionFact records one learner interaction with a unit. At most
// one fact exists per (user, unit, kind); collaborators upsert, the
// engine otherwise only reads.
type CompletionFact struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	UserID      uint       `json:"user_id" gorm:"uniqueIndex:idx_fact_user_unit;not null"`
	UnitID      uint       `json:"unit_id" gorm:"uniqueIndex:idx_fact_user_unit;not null"`
	UnitKind    string     `json:"unit_kind" gorm:"uniqueIndex:idx_fact_user_unit;not null"`
	CourseID    uint       `json:"course_id" gorm:"index;not null"`
	Status      string     `json:"status"`
	Score       *int       `json:"score"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Submission is a learner's answer to an assignment, with its current
// lifecycle state and the last plagiarism report written back onto it.
type Submission struct {
	ID                  uint           `json:"id" gorm:"primaryKey"`
	AssignmentID        uint           `json:"assignment_id" gorm:"index;not null"`
	CourseID            uint           `json:"course_id" gorm:"index"`
	UserID              uint           `json:"user_id" gorm:"index;not null"`
	Content             string         `json:"content" gorm:"type:text"`
	Status              string         `json:"status" gorm:"default:'submitted'"`
	Grade               *int           `json:"grade"`
	Feedback            string         `json:"feedback"`
	SubmittedAt         time.Time      `json:"submitted_at"`
	GradedAt            *time.Time     `json:"graded_at"`
	SimilarityScore     int            `json:"similarity_score"`
	PlagiarismMatches   datatypes.JSON `json:"plagiarism_matches"`
	PlagiarismCheckedAt *time.Time     `json:"plagiarism_checked_at"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

type FinalExam struct {
	ID           uint                `json:"id" gorm:"primaryKey"`
	CourseID     uint                `json:"course_id" gorm:"uniqueIndex;not null"`
	Title        string              `json:"title"`
	PassingScore int                 `json:"passing_score" gorm:"default:70"`
	IsPublished  bool                `json:"is_published"`
	Questions    []FinalExamQuestion `json:"questions" gorm:"foreignKey:FinalExamID"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

type FinalExamQuestion struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	FinalExamID   uint           `json:"final_exam_id" gorm:"index;not null"`
	Text          string         `json:"text" gorm:"not null"`
	Choices       datatypes.JSON `json:"choices"`
	CorrectAnswer string         `json:"correct_answer" gorm:"not null"`
	Points        int            `json:"points" gorm:"default:1"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// FinalExamAttempt is immutable after creation. QuestionSet snapshots
// the question/answer-key rows used for grading so later exam edits
// cannot change a historical score.
type FinalExamAttempt struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	AttemptUID  string         `json:"attempt_uid" gorm:"uniqueIndex;not null"`
	UserID      uint           `json:"user_id" gorm:"index;not null"`
	FinalExamID uint           `json:"final_exam_id" gorm:"index;not null"`
	CourseID    uint           `json:"course_id" gorm:"index;not null"`
	Answers     datatypes.JSON `json:"answers"`
	QuestionSet datatypes.JSON `json:"question_set"`
	Score       int            `json:"score"`
	Passed      bool           `json:"passed"`
	Grade       string         `json:"grade"`
	CompletedAt time.Time      `json:"completed_at"`
	CreatedAt   time.Time      `json:"created_at"`
}

// CertificatePolicy holds the instructor-configured eligibility
// thresholds for a course. Absent rows fall back to DefaultPolicy.
type CertificatePolicy struct {
	ID                    uint      `json:"id" gorm:"primaryKey"`
	CourseID              uint      `json:"course_id" gorm:"uniqueIndex;not null"`
	MinPercentage         int       `json:"min_percentage" gorm:"default:70"`
	RequireAllChapters    bool      `json:"require_all_chapters" gorm:"default:true"`
	RequireAllQuizzes     bool      `json:"require_all_quizzes" gorm:"default:true"`
	RequireAllAssignments bool      `json:"require_all_assignments" gorm:"default:true"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// DefaultPolicy is applied when a course has no stored policy row.
func DefaultPolicy(courseID uint) CertificatePolicy {
	return CertificatePolicy{
		CourseID:              courseID,
		MinPercentage:         70,
		RequireAllChapters:    true,
		RequireAllQuizzes:     true,
		RequireAllAssignments: true,
	}
}

// Certificate is the single issuance record per (user, course). The
// composite unique index is the storage-level guarantee that two
// concurrent issuers can never both insert.
type Certificate struct {
	ID                   uint      `json:"id" gorm:"primaryKey"`
	UserID               uint      `json:"user_id" gorm:"uniqueIndex:idx_cert_user_course;not null"`
	CourseID             uint      `json:"course_id" gorm:"uniqueIndex:idx_cert_user_course;not null"`
	StudentName          string    `json:"student_name"`
	TotalChapters        int       `json:"total_chapters"`
	CompletedChapters    int       `json:"completed_chapters"`
	TotalQuizzes         int       `json:"total_quizzes"`
	CompletedQuizzes     int       `json:"completed_quizzes"`
	TotalAssignments     int       `json:"total_assignments"`
	CompletedAssignments int       `json:"completed_assignments"`
	TotalScore           int       `json:"total_score"`
	AchievedScore        int       `json:"achieved_score"`
	Percentage           int       `json:"percentage"`
	VerificationCode     string    `json:"verification_code" gorm:"uniqueIndex;not null"`
	IssueDate            time.Time `json:"issue_date"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}
