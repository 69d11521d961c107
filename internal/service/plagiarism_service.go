package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"coursehub-backend/internal/repository"
	"coursehub-backend/utilities"
)

// PlagiarismMatch is one suspicious peer submission.
type PlagiarismMatch struct {
	SubmissionID   uint   `json:"submission_id"`
	StudentName    string `json:"student_name,omitempty"`
	Similarity     int    `json:"similarity"`
	MatchedSnippet string `json:"matched_snippet,omitempty"`
}

// PlagiarismReport is recomputed and overwritten on every new text
// submission; it is not versioned.
type PlagiarismReport struct {
	SubmissionID    uint              `json:"submission_id"`
	SimilarityScore int               `json:"similarity_score"`
	Matches         []PlagiarismMatch `json:"matches"`
	CheckedAt       time.Time         `json:"checked_at"`
}

type PlagiarismService interface {
	Score(ctx context.Context, submissionID uint) (*PlagiarismReport, error)
}

type plagiarismService struct {
	submissionRepo  repository.SubmissionRepository
	userRepo        repository.UserRepository
	similarityFloor int
	minTokenLength  int
	minSnippetRun   int
}

func NewPlagiarismService(submissionRepo repository.SubmissionRepository, userRepo repository.UserRepository, similarityFloor, minTokenLength, minSnippetRun int) PlagiarismService {
	if similarityFloor <= 0 {
		similarityFloor = 20
	}
	if minTokenLength <= 0 {
		minTokenLength = 4
	}
	if minSnippetRun <= 0 {
		minSnippetRun = 5
	}
	return &plagiarismService{
		submissionRepo:  submissionRepo,
		userRepo:        userRepo,
		similarityFloor: similarityFloor,
		minTokenLength:  minTokenLength,
		minSnippetRun:   minSnippetRun,
	}
}

// Score compares a submission against its assignment's other
// submissions and writes the report back onto the submission row.
// Callers trigger it off the submission write path and only log
// failures; a scoring error never rejects the submission itself.
func (s *plagiarismService) Score(ctx context.Context, submissionID uint) (*PlagiarismReport, error) {
	sub, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.submissionRepo.ListByAssignment(ctx, sub.AssignmentID)
	if err != nil {
		return nil, err
	}

	ownTokens := TokenSet(sub.Content, s.minTokenLength)
	ownWords := NormalizeWords(sub.Content)

	matches := make([]PlagiarismMatch, 0)
	for _, candidate := range candidates {
		if candidate.ID == sub.ID || candidate.UserID == sub.UserID {
			continue
		}
		similarity := int(math.Round(100 * jaccard(ownTokens, TokenSet(candidate.Content, s.minTokenLength))))
		if similarity < s.similarityFloor {
			continue
		}
		matches = append(matches, PlagiarismMatch{
			SubmissionID: candidate.ID,
			StudentName:  s.studentName(ctx, candidate.UserID),
			Similarity:   similarity,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].SubmissionID < matches[j].SubmissionID
	})

	report := &PlagiarismReport{
		SubmissionID: sub.ID,
		Matches:      matches,
		CheckedAt:    time.Now().UTC(),
	}
	if len(matches) > 0 {
		report.SimilarityScore = matches[0].Similarity

		top, err := s.submissionRepo.GetByID(ctx, matches[0].SubmissionID)
		if err == nil {
			run := LongestCommonRun(ownWords, NormalizeWords(top.Content))
			if len(run) >= s.minSnippetRun {
				report.Matches[0].MatchedSnippet = strings.Join(run, " ")
			}
		}
	}

	matchesJSON, err := json.Marshal(report.Matches)
	if err != nil {
		return nil, fmt.Errorf("encode plagiarism matches: %w", err)
	}
	if err := s.submissionRepo.SavePlagiarismReport(ctx, sub.ID, report.SimilarityScore, matchesJSON, report.CheckedAt); err != nil {
		return nil, fmt.Errorf("persist plagiarism report: %w", err)
	}
	return report, nil
}

func (s *plagiarismService) studentName(ctx context.Context, userID uint) string {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return ""
	}
	return user.FullName()
}

// InitPlagiarismEventListeners scores submissions as they arrive.
// Errors are logged and swallowed; the submission write path already
// succeeded by the time this runs.
func InitPlagiarismEventListeners(events *utilities.EventBus, plagiarismService PlagiarismService) {
	handler := func(data interface{}) {
		submissionID, ok := data.(uint)
		if !ok {
			utilities.Warn("submission event carried unexpected payload %v", data)
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := plagiarismService.Score(ctx, submissionID); err != nil {
			utilities.Error("plagiarism check for submission %d failed: %v", submissionID, err)
		}
	}
	events.Subscribe(utilities.EventSubmissionCreated, handler)
	events.Subscribe(utilities.EventSubmissionResubmitted, handler)
}

// NormalizeWords lower-cases the text and splits it on whitespace and
// punctuation.
func NormalizeWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// TokenSet builds the distinct-token set used for Jaccard similarity.
// Tokens shorter than minLength are dropped to cut stop-word noise.
func TokenSet(text string, minLength int) map[string]struct{} {
	set := make(map[string]struct{})
	for _, word := range NormalizeWords(text) {
		if len(word) >= minLength {
			set[word] = struct{}{}
		}
	}
	return set
}

// JaccardSimilarity returns |A∩B| / |A∪B| over the two texts' token
// sets; two texts with no usable tokens score 0, never an error.
func JaccardSimilarity(a, b string, minTokenLength int) float64 {
	return jaccard(TokenSet(a, minTokenLength), TokenSet(b, minTokenLength))
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for token := range a {
		if _, ok := b[token]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// LongestCommonRun finds the longest contiguous word run shared by the
// two sequences, used as evidence for the top match.
func LongestCommonRun(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}

	best, bestEnd := 0, 0
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > best {
					best = curr[j]
					bestEnd = i
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
	}
	if best == 0 {
		return nil
	}
	return a[bestEnd-best : bestEnd]
}
