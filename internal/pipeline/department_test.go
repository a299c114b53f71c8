package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/auditflow/auditflow/internal/domain"

	"go.uber.org/zap"
)

type stubSuggester struct {
	mu        sync.Mutex
	calls     []string
	inFlight  atomic.Int32
	maxSeen   atomic.Int32
	suggestFn func(title, description string) (string, error)
}

func (s *stubSuggester) SuggestDepartment(ctx context.Context, title, description string) (string, error) {
	current := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		seen := s.maxSeen.Load()
		if current <= seen || s.maxSeen.CompareAndSwap(seen, current) {
			break
		}
	}

	s.mu.Lock()
	s.calls = append(s.calls, title)
	s.mu.Unlock()

	if s.suggestFn != nil {
		return s.suggestFn(title, description)
	}
	return "", errors.New("no suggestion")
}

func TestDepartmentResolverExplicitDepartmentWins(t *testing.T) {
	suggester := &stubSuggester{}
	resolver := &departmentResolver{suggester: suggester, logger: zap.NewNop()}

	drafts := []domain.TicketDraft{
		{Title: "Patching", Description: "cybersecurity breach on servers", Department: "IT Department"},
	}
	report := domain.PipelineReport{}

	if err := resolver.resolve(context.Background(), drafts, nil, &report); err != nil {
		t.Fatalf("resolve returned error: %v", err)
	}

	if drafts[0].Department != "IT Department" {
		t.Fatalf("explicit department must win over inference, got %q", drafts[0].Department)
	}
	if len(suggester.calls) != 0 {
		t.Fatalf("suggester should not be called for resolved departments")
	}
}

func TestDepartmentResolverBatchSuggestionTier(t *testing.T) {
	batch := &domain.ClassificationResult{
		DepartmentClassifications: []domain.DepartmentClassification{
			{Row: 0, Suggested: "Finance"},
			{Row: 1, Suggested: domain.DepartmentOther},
		},
	}
	resolver := &departmentResolver{logger: zap.NewNop()}

	drafts := []domain.TicketDraft{
		{Title: "Budget", Description: "no keyword overlap here", Department: domain.DefaultDepartment},
		{Title: "Budget overruns", Description: "expenditure beyond approved budget", Department: domain.DefaultDepartment},
	}
	report := domain.PipelineReport{}

	if err := resolver.resolve(context.Background(), drafts, batch, &report); err != nil {
		t.Fatalf("resolve returned error: %v", err)
	}

	if drafts[0].Department != "Finance" {
		t.Fatalf("expected batch suggestion, got %q", drafts[0].Department)
	}
	// OTHER is not a usable suggestion; the keyword tier takes over.
	if drafts[1].Department != "Finance" {
		t.Fatalf("expected keyword fallback after OTHER sentinel, got %q", drafts[1].Department)
	}
	if report.DepartmentsFromBatch != 1 || report.DepartmentsFromKeywords != 1 {
		t.Fatalf("unexpected report counters: %+v", report)
	}
}

func TestDepartmentResolverSuggestionTierWritesBackByIndex(t *testing.T) {
	suggester := &stubSuggester{
		suggestFn: func(title, description string) (string, error) {
			// First rows answer slowest so completion order inverts row order.
			if title == "row 0" {
				time.Sleep(30 * time.Millisecond)
			}
			return "Suggested " + title, nil
		},
	}
	resolver := &departmentResolver{suggester: suggester, maxInFlight: 4, logger: zap.NewNop()}

	drafts := make([]domain.TicketDraft, 6)
	for i := range drafts {
		drafts[i] = domain.TicketDraft{
			Title:       fmt.Sprintf("row %d", i),
			Description: "no keyword overlap here",
			Department:  domain.DefaultDepartment,
		}
	}
	report := domain.PipelineReport{}

	if err := resolver.resolve(context.Background(), drafts, nil, &report); err != nil {
		t.Fatalf("resolve returned error: %v", err)
	}

	for i, draft := range drafts {
		want := fmt.Sprintf("Suggested row %d", i)
		if draft.Department != want {
			t.Fatalf("row %d department = %q, want %q", i, draft.Department, want)
		}
	}
	if report.DepartmentsFromAI != 6 {
		t.Fatalf("expected 6 AI suggestions, got %d", report.DepartmentsFromAI)
	}
	if max := suggester.maxSeen.Load(); max > 4 {
		t.Fatalf("concurrency bound exceeded: %d in flight", max)
	}
}

func TestDepartmentResolverSuggestionErrorFallsThrough(t *testing.T) {
	suggester := &stubSuggester{
		suggestFn: func(title, description string) (string, error) {
			return "", errors.New("timeout")
		},
	}
	resolver := &departmentResolver{suggester: suggester, logger: zap.NewNop()}

	drafts := []domain.TicketDraft{
		{Title: "Patching", Description: "cybersecurity breach on public servers", Department: domain.DefaultDepartment},
		{Title: "Misc", Description: "no keyword overlap here", Department: domain.DefaultDepartment},
	}
	report := domain.PipelineReport{}

	if err := resolver.resolve(context.Background(), drafts, nil, &report); err != nil {
		t.Fatalf("resolve returned error: %v", err)
	}

	if drafts[0].Department != "Security" {
		t.Fatalf("expected keyword fallback, got %q", drafts[0].Department)
	}
	if drafts[1].Department != domain.DefaultDepartment {
		t.Fatalf("expected General default, got %q", drafts[1].Department)
	}
	if report.DepartmentsFromKeywords != 1 || report.DepartmentsDefaulted != 1 {
		t.Fatalf("unexpected report counters: %+v", report)
	}
}

func TestDepartmentResolverDeterministicWithoutAI(t *testing.T) {
	run := func() []string {
		drafts := []domain.TicketDraft{
			{Title: "Patching", Description: "vulnerability exposure on endpoints", Department: domain.DefaultDepartment},
			{Title: "Hiring", Description: "recruitment records incomplete", Department: domain.DefaultDepartment},
		}
		report := domain.PipelineReport{}
		resolver := &departmentResolver{logger: zap.NewNop()}
		if err := resolver.resolve(context.Background(), drafts, nil, &report); err != nil {
			t.Fatalf("resolve returned error: %v", err)
		}
		return []string{drafts[0].Department, drafts[1].Department}
	}

	first := run()
	second := run()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("department inference not deterministic: %v vs %v", first, second)
		}
	}
}
