package service

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"coursehub-backend/internal/model"
)

func TestJaccardSimilarity(t *testing.T) {
	cases := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "distributed systems consensus protocol", "distributed systems consensus protocol", 1},
		{"disjoint", "gardening flowers tulips", "quantum entanglement physics", 0},
		{"both empty", "", "", 0},
		{"one empty", "distributed systems", "", 0},
		{"half overlap", "alpha bravo charlie delta", "alpha bravo echo foxtrot", 1.0 / 3.0},
		{"short tokens dropped", "go is ok it", "go is ok it", 0},
		{"punctuation and case ignored", "Hello, World! Testing.", "hello world testing", 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := JaccardSimilarity(tc.a, tc.b, 4)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("JaccardSimilarity(%q, %q) = %f, want %f", tc.a, tc.b, got, tc.want)
			}
			if sym := JaccardSimilarity(tc.b, tc.a, 4); math.Abs(sym-got) > 1e-9 {
				t.Fatalf("similarity is not symmetric: %f vs %f", got, sym)
			}
		})
	}
}

func TestNormalizeWords(t *testing.T) {
	got := NormalizeWords("The QUICK  brown-fox, jumps; over 42 dogs!")
	want := []string{"the", "quick", "brown", "fox", "jumps", "over", "42", "dogs"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("NormalizeWords = %v, want %v", got, want)
	}
}

func TestLongestCommonRun(t *testing.T) {
	a := NormalizeWords("the cache invalidation strategy uses a write through policy here")
	b := NormalizeWords("our design also uses a write through policy but adds sharding")
	run := LongestCommonRun(a, b)
	if strings.Join(run, " ") != "uses a write through policy" {
		t.Fatalf("unexpected run: %v", run)
	}

	if run := LongestCommonRun(nil, b); run != nil {
		t.Fatalf("expected nil run for empty input, got %v", run)
	}
	if run := LongestCommonRun(NormalizeWords("alpha beta"), NormalizeWords("gamma delta")); run != nil {
		t.Fatalf("expected nil run for disjoint input, got %v", run)
	}
}

func plagiarismFixture() (*fakeSubmissionRepo, *fakeUserRepo, PlagiarismService) {
	subs := newFakeSubmissionRepo()
	users := &fakeUserRepo{users: map[uint]model.User{
		1: {ID: 1, Username: "alice", FirstName: "Alice", LastName: "Ames"},
		2: {ID: 2, Username: "bob", FirstName: "Bob", LastName: "Burke"},
		3: {ID: 3, Username: "carol", FirstName: "Carol", LastName: "Cole"},
	}}
	svc := NewPlagiarismService(subs, users, 20, 4, 5)
	return subs, users, svc
}

func seedSubmission(t *testing.T, repo *fakeSubmissionRepo, userID uint, content string) uint {
	t.Helper()
	sub := &model.Submission{AssignmentID: 20, UserID: userID, Content: content, Status: model.SubmissionSubmitted}
	if err := repo.Create(context.Background(), sub); err != nil {
		t.Fatalf("seed submission: %v", err)
	}
	return sub.ID
}

func TestScore_RanksMatchesAndExtractsSnippet(t *testing.T) {
	subs, _, svc := plagiarismFixture()

	copied := "consistent hashing spreads keys across nodes while virtual nodes smooth the distribution curve"
	target := seedSubmission(t, subs, 1, copied)
	nearCopy := seedSubmission(t, subs, 2, copied+" with minor extra commentary appended afterwards")
	seedSubmission(t, subs, 3, "entirely unrelated essay about gardening tulips and seasonal watering schedules")

	report, err := svc.Score(context.Background(), target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Matches) != 1 {
		t.Fatalf("expected one match above the floor, got %d", len(report.Matches))
	}
	if report.Matches[0].SubmissionID != nearCopy {
		t.Fatalf("expected top match %d, got %d", nearCopy, report.Matches[0].SubmissionID)
	}
	if report.SimilarityScore != report.Matches[0].Similarity {
		t.Fatalf("report score %d must equal top match %d", report.SimilarityScore, report.Matches[0].Similarity)
	}
	if report.Matches[0].StudentName != "Bob Burke" {
		t.Fatalf("expected resolved peer name, got %q", report.Matches[0].StudentName)
	}
	if !strings.Contains(report.Matches[0].MatchedSnippet, "consistent hashing spreads keys across nodes") {
		t.Fatalf("expected shared snippet as evidence, got %q", report.Matches[0].MatchedSnippet)
	}

	// The report must also land on the submission row.
	stored, err := subs.GetByID(context.Background(), target)
	if err != nil {
		t.Fatalf("reload submission: %v", err)
	}
	if stored.SimilarityScore != report.SimilarityScore {
		t.Fatalf("persisted score %d, want %d", stored.SimilarityScore, report.SimilarityScore)
	}
	if stored.PlagiarismCheckedAt == nil {
		t.Fatalf("checked-at timestamp not persisted")
	}
	var persisted []PlagiarismMatch
	if err := json.Unmarshal(stored.PlagiarismMatches, &persisted); err != nil {
		t.Fatalf("decode persisted matches: %v", err)
	}
	if len(persisted) != 1 || persisted[0].SubmissionID != nearCopy {
		t.Fatalf("persisted matches do not mirror the report: %+v", persisted)
	}
}

func TestScore_IgnoresOwnSubmissions(t *testing.T) {
	subs, _, svc := plagiarismFixture()

	content := "identical answer text repeated verbatim across multiple submission rows for testing"
	target := seedSubmission(t, subs, 1, content)
	seedSubmission(t, subs, 1, content) // resubmission by the same learner

	report, err := svc.Score(context.Background(), target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Matches) != 0 {
		t.Fatalf("a learner must never match their own submissions, got %+v", report.Matches)
	}
	if report.SimilarityScore != 0 {
		t.Fatalf("expected zero score with no peers, got %d", report.SimilarityScore)
	}
}

func TestScore_FloorFiltersWeakMatches(t *testing.T) {
	subs, _, svc := plagiarismFixture()

	target := seedSubmission(t, subs, 1, "paxos elects leaders through ballots quorums and acceptors")
	seedSubmission(t, subs, 2, "raft chooses leaders using terms heartbeats and follower voting")

	report, err := svc.Score(context.Background(), target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Only "leaders" overlaps; well under 20%.
	if len(report.Matches) != 0 {
		t.Fatalf("expected weak overlap to stay below the floor, got %+v", report.Matches)
	}
}

func TestScore_SnippetRequiresMinimumRun(t *testing.T) {
	subs, _, svc := plagiarismFixture()

	// High token overlap but shuffled order: no contiguous run of 5.
	target := seedSubmission(t, subs, 1, "alpha bravo charlie delta echo foxtrot golf hotel india juliet")
	seedSubmission(t, subs, 2, "juliet india hotel golf foxtrot echo delta charlie bravo alpha")

	report, err := svc.Score(context.Background(), target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Matches) != 1 {
		t.Fatalf("expected one match, got %d", len(report.Matches))
	}
	if report.Matches[0].MatchedSnippet != "" {
		t.Fatalf("runs shorter than the minimum must not produce a snippet, got %q", report.Matches[0].MatchedSnippet)
	}
}

func TestScore_SortsBySimilarityThenID(t *testing.T) {
	subs, _, svc := plagiarismFixture()

	base := "observability pipelines collect metrics traces and structured logs from every service tier"
	target := seedSubmission(t, subs, 1, base)
	partial := seedSubmission(t, subs, 2, "observability pipelines collect metrics traces and structured logs plus alerting dashboards reviewed weekly")
	exact := seedSubmission(t, subs, 3, base)

	report, err := svc.Score(context.Background(), target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Matches) != 2 {
		t.Fatalf("expected two matches, got %d", len(report.Matches))
	}
	if report.Matches[0].SubmissionID != exact || report.Matches[1].SubmissionID != partial {
		t.Fatalf("matches out of order: %+v", report.Matches)
	}
	if report.Matches[0].Similarity != 100 {
		t.Fatalf("identical text must score 100, got %d", report.Matches[0].Similarity)
	}
	if report.Matches[0].Similarity <= report.Matches[1].Similarity {
		t.Fatalf("expected strictly higher similarity first: %+v", report.Matches)
	}
}
