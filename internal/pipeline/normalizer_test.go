package pipeline

import (
	"strings"
	"testing"

	"github.com/auditflow/auditflow/internal/domain"
)

func TestCoercerPriority(t *testing.T) {
	coercer := NewCoercer(nil)

	cases := map[string]string{
		"low":      "low",
		"Medium":   "medium",
		"HIGH":     "high",
		" critical ": "critical",
		"urgent":   "medium",
		"3":        "medium",
		"":         "medium",
	}

	for raw, want := range cases {
		if got := coercer.Priority(raw); got != want {
			t.Fatalf("Priority(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestCoercerStatusDefaultVocabulary(t *testing.T) {
	coercer := NewCoercer(nil)

	cases := map[string]string{
		"open":        "open",
		"In_Progress": "in_progress",
		"resolved":    "resolved",
		"closed":      "closed",
		"pending":     "open",
		"done":        "open",
		"":            "open",
	}

	for raw, want := range cases {
		if got := coercer.Status(raw); got != want {
			t.Fatalf("Status(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestCoercerStatusConfiguredVocabulary(t *testing.T) {
	coercer := NewCoercer([]string{"open", "in_progress", "pending", "closed"})

	if got := coercer.Status("pending"); got != "pending" {
		t.Fatalf("expected configured vocabulary to accept pending, got %q", got)
	}
	if got := coercer.Status("resolved"); got != "open" {
		t.Fatalf("expected resolved outside configured vocabulary to coerce to open, got %q", got)
	}
}

func TestCoercerDueDate(t *testing.T) {
	coercer := NewCoercer(nil)

	cases := map[string]string{
		"2026-03-15":          "2026-03-15",
		"2026/03/15":          "2026-03-15",
		"03/15/2026":          "2026-03-15",
		"2026-03-15 10:30:00": "2026-03-15",
		"next quarter":        "",
		"":                    "",
	}

	for raw, want := range cases {
		if got := coercer.DueDate(raw); got != want {
			t.Fatalf("DueDate(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestResolveDraftDescriptionFallbackChain(t *testing.T) {
	coercer := NewCoercer(nil)

	row := func(fields map[string]string) domain.RawRow {
		return domain.RawRow{Index: 0, Fields: fields}
	}
	headers := func(fields map[string]string) []string {
		out := make([]string, 0, len(fields))
		for h := range fields {
			out = append(out, h)
		}
		return out
	}

	withDescription := map[string]string{
		"title":               "Patching",
		"description":         "primary text",
		"recommendation":      "apply patches",
		"management_response": "agreed",
	}
	draft := resolveDraft(row(withDescription), newFieldResolver(nil, headers(withDescription)), coercer)
	if draft.Description != "primary text" {
		t.Fatalf("expected direct description, got %q", draft.Description)
	}

	withoutDescription := map[string]string{
		"title":               "Patching",
		"recommendation":      "apply patches",
		"management_response": "agreed",
	}
	draft = resolveDraft(row(withoutDescription), newFieldResolver(nil, headers(withoutDescription)), coercer)
	if draft.Description != "apply patches" {
		t.Fatalf("expected recommendations fallback, got %q", draft.Description)
	}
	if draft.Recommendations != "apply patches" {
		t.Fatalf("recommendations field should still be populated, got %q", draft.Recommendations)
	}

	responseOnly := map[string]string{
		"title":               "Patching",
		"management_response": "agreed",
	}
	draft = resolveDraft(row(responseOnly), newFieldResolver(nil, headers(responseOnly)), coercer)
	if draft.Description != "agreed" {
		t.Fatalf("expected management response fallback, got %q", draft.Description)
	}
}

func TestResolveDraftDefaults(t *testing.T) {
	coercer := NewCoercer(nil)
	row := domain.RawRow{Index: 4, Fields: map[string]string{"remarks": "nothing mappable"}}

	draft := resolveDraft(row, newFieldResolver(nil, []string{"remarks"}), coercer)

	if draft.Title != "Audit Item 5" {
		t.Fatalf("expected synthesized title, got %q", draft.Title)
	}
	if draft.Department != domain.DefaultDepartment {
		t.Fatalf("expected General department, got %q", draft.Department)
	}
	if draft.Priority != "medium" || draft.Status != "open" {
		t.Fatalf("expected default enums, got %q/%q", draft.Priority, draft.Status)
	}
	if draft.Description != "" || draft.DueDate != "" {
		t.Fatalf("expected empty optional fields, got %+v", draft)
	}
}

func TestResolveDraftTruncatesTitle(t *testing.T) {
	coercer := NewCoercer(nil)
	long := strings.Repeat("x", 600)
	row := domain.RawRow{Index: 0, Fields: map[string]string{"title": long, "description": "long enough description"}}

	draft := resolveDraft(row, newFieldResolver(nil, []string{"title", "description"}), coercer)

	if len(draft.Title) != 500 {
		t.Fatalf("expected title truncated to 500, got %d", len(draft.Title))
	}
}

func TestFieldResolverAIMappingWinsAndIsRenormalized(t *testing.T) {
	coercer := NewCoercer(nil)
	// The service reports the original column label; the resolver must
	// normalize it before looking it up in the row.
	aiMapping := map[string]string{"description": " Remarks / Notes "}
	row := domain.RawRow{Index: 0, Fields: map[string]string{
		"title":         "Patching",
		"description":   "tier one text",
		"remarks_notes": "ai mapped text",
	}}

	resolver := newFieldResolver(aiMapping, []string{"title", "description", "remarks_notes"})
	draft := resolveDraft(row, resolver, coercer)

	if draft.Description != "ai mapped text" {
		t.Fatalf("expected AI mapping to take precedence, got %q", draft.Description)
	}
}

func TestFieldResolverAIMappingEmptyValueFallsThrough(t *testing.T) {
	coercer := NewCoercer(nil)
	aiMapping := map[string]string{"description": "remarks"}
	row := domain.RawRow{Index: 0, Fields: map[string]string{
		"title":       "Patching",
		"description": "tier one text",
		"remarks":     "",
	}}

	resolver := newFieldResolver(aiMapping, []string{"title", "description", "remarks"})
	draft := resolveDraft(row, resolver, coercer)

	if draft.Description != "tier one text" {
		t.Fatalf("expected fallback to tier-1 mapping, got %q", draft.Description)
	}
}
