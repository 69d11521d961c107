package service

import (
	"context"
	"sync"
	"time"

	"gorm.io/datatypes"

	"coursehub-backend/internal/apperr"
	"coursehub-backend/internal/model"
)

type fakeCatalogRepo struct {
	chapters    []model.Chapter
	exam        *model.FinalExam
	policy      *model.CertificatePolicy
	assignments map[uint]*model.Assignment
}

func (f *fakeCatalogRepo) ListPublishedChapters(ctx context.Context, courseID uint) ([]model.Chapter, error) {
	var out []model.Chapter
	for _, ch := range f.chapters {
		if ch.CourseID == courseID && ch.IsPublished {
			out = append(out, ch)
		}
	}
	return out, nil
}

func (f *fakeCatalogRepo) GetFinalExam(ctx context.Context, courseID uint) (*model.FinalExam, error) {
	if f.exam != nil && f.exam.CourseID == courseID {
		return f.exam, nil
	}
	return nil, nil
}

func (f *fakeCatalogRepo) GetFinalExamByID(ctx context.Context, examID uint) (*model.FinalExam, error) {
	if f.exam != nil && f.exam.ID == examID {
		return f.exam, nil
	}
	return nil, apperr.ErrRecordNotFound
}

func (f *fakeCatalogRepo) GetAssignment(ctx context.Context, assignmentID uint) (*model.Assignment, error) {
	if a, ok := f.assignments[assignmentID]; ok {
		return a, nil
	}
	return nil, apperr.ErrRecordNotFound
}

func (f *fakeCatalogRepo) GetPolicy(ctx context.Context, courseID uint) (model.CertificatePolicy, error) {
	if f.policy != nil {
		return *f.policy, nil
	}
	return model.DefaultPolicy(courseID), nil
}

type factKey struct {
	userID uint
	unitID uint
	kind   string
}

type fakeFactRepo struct {
	mu    sync.Mutex
	facts map[factKey]model.CompletionFact
}

func newFakeFactRepo() *fakeFactRepo {
	return &fakeFactRepo{facts: make(map[factKey]model.CompletionFact)}
}

func (f *fakeFactRepo) GetCompletionFacts(ctx context.Context, userID, courseID uint) ([]model.CompletionFact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.CompletionFact
	for _, fact := range f.facts {
		if fact.UserID == userID && fact.CourseID == courseID {
			out = append(out, fact)
		}
	}
	return out, nil
}

func (f *fakeFactRepo) UpsertFact(ctx context.Context, fact *model.CompletionFact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.facts[factKey{fact.UserID, fact.UnitID, fact.UnitKind}] = *fact
	return nil
}

type fakeExamRepo struct {
	mu       sync.Mutex
	attempts []model.FinalExamAttempt
}

func (f *fakeExamRepo) CreateAttempt(ctx context.Context, attempt *model.FinalExamAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	attempt.ID = uint(len(f.attempts) + 1)
	f.attempts = append(f.attempts, *attempt)
	return nil
}

func (f *fakeExamRepo) GetLatestPassedAttempt(ctx context.Context, userID, courseID uint) (*model.FinalExamAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *model.FinalExamAttempt
	for i := range f.attempts {
		a := f.attempts[i]
		if a.UserID == userID && a.CourseID == courseID && a.Passed {
			if latest == nil || a.CompletedAt.After(latest.CompletedAt) {
				latest = &f.attempts[i]
			}
		}
	}
	return latest, nil
}

func (f *fakeExamRepo) GetLatestAttempt(ctx context.Context, userID, courseID uint) (*model.FinalExamAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *model.FinalExamAttempt
	for i := range f.attempts {
		a := f.attempts[i]
		if a.UserID == userID && a.CourseID == courseID {
			if latest == nil || a.CompletedAt.After(latest.CompletedAt) {
				latest = &f.attempts[i]
			}
		}
	}
	return latest, nil
}

func (f *fakeExamRepo) ListAttempts(ctx context.Context, userID, examID uint) ([]model.FinalExamAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.FinalExamAttempt
	for _, a := range f.attempts {
		if a.UserID == userID && a.FinalExamID == examID {
			out = append(out, a)
		}
	}
	return out, nil
}

type certKey struct {
	userID   uint
	courseID uint
}

// fakeCertRepo mimics the storage-level unique constraints so the
// issuer's retry paths can be exercised without Postgres.
type fakeCertRepo struct {
	mu     sync.Mutex
	certs  map[certKey]model.Certificate
	codes  map[string]bool
	nextID uint

	// forceCodeCollisions makes the next N inserts fail as if the
	// verification code already existed.
	forceCodeCollisions int
	inserts             int
}

func newFakeCertRepo() *fakeCertRepo {
	return &fakeCertRepo{certs: make(map[certKey]model.Certificate), codes: make(map[string]bool)}
}

func (f *fakeCertRepo) FindByUserAndCourse(ctx context.Context, userID, courseID uint) (*model.Certificate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cert, ok := f.certs[certKey{userID, courseID}]; ok {
		out := cert
		return &out, nil
	}
	return nil, nil
}

func (f *fakeCertRepo) FindByVerificationCode(ctx context.Context, code string) (*model.Certificate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, cert := range f.certs {
		if cert.VerificationCode == code {
			out := cert
			return &out, nil
		}
	}
	return nil, apperr.ErrRecordNotFound
}

func (f *fakeCertRepo) InsertIfAbsent(ctx context.Context, cert *model.Certificate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts++
	if f.forceCodeCollisions > 0 {
		f.forceCodeCollisions--
		return apperr.ErrVerificationCodeCollision
	}
	key := certKey{cert.UserID, cert.CourseID}
	if _, ok := f.certs[key]; ok {
		return apperr.ErrStorageConflict
	}
	if f.codes[cert.VerificationCode] {
		return apperr.ErrVerificationCodeCollision
	}
	f.nextID++
	cert.ID = f.nextID
	f.certs[key] = *cert
	f.codes[cert.VerificationCode] = true
	return nil
}

func (f *fakeCertRepo) ListByUser(ctx context.Context, userID uint) ([]model.Certificate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Certificate
	for _, cert := range f.certs {
		if cert.UserID == userID {
			out = append(out, cert)
		}
	}
	return out, nil
}

type fakeSubmissionRepo struct {
	mu     sync.Mutex
	subs   map[uint]model.Submission
	nextID uint
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{subs: make(map[uint]model.Submission)}
}

func (f *fakeSubmissionRepo) Create(ctx context.Context, sub *model.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	sub.ID = f.nextID
	f.subs[sub.ID] = *sub
	return nil
}

func (f *fakeSubmissionRepo) GetByID(ctx context.Context, id uint) (*model.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if sub, ok := f.subs[id]; ok {
		out := sub
		return &out, nil
	}
	return nil, apperr.ErrRecordNotFound
}

func (f *fakeSubmissionRepo) GetByAssignmentAndUser(ctx context.Context, assignmentID, userID uint) (*model.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sub := range f.subs {
		if sub.AssignmentID == assignmentID && sub.UserID == userID {
			out := sub
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeSubmissionRepo) ListByAssignment(ctx context.Context, assignmentID uint) ([]model.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Submission
	for _, sub := range f.subs {
		if sub.AssignmentID == assignmentID {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (f *fakeSubmissionRepo) Update(ctx context.Context, sub *model.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs[sub.ID] = *sub
	return nil
}

func (f *fakeSubmissionRepo) SavePlagiarismReport(ctx context.Context, submissionID uint, score int, matches datatypes.JSON, checkedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub, ok := f.subs[submissionID]
	if !ok {
		return apperr.ErrRecordNotFound
	}
	sub.SimilarityScore = score
	sub.PlagiarismMatches = matches
	sub.PlagiarismCheckedAt = &checkedAt
	f.subs[submissionID] = sub
	return nil
}

type fakeUserRepo struct {
	users map[uint]model.User
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	if u, ok := f.users[id]; ok {
		out := u
		return &out, nil
	}
	return nil, apperr.ErrRecordNotFound
}
