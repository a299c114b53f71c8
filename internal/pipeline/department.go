package pipeline

import (
	"context"

	"github.com/auditflow/auditflow/internal/classify"
	"github.com/auditflow/auditflow/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// defaultMaxSuggestionsInFlight bounds concurrent per-row suggestion
// calls against the classification service.
const defaultMaxSuggestionsInFlight = 8

// DepartmentSuggester is the per-row Tier-2 capability: given finding
// text, suggest a department. Implementations must be safe for concurrent
// use.
type DepartmentSuggester interface {
	SuggestDepartment(ctx context.Context, title, description string) (string, error)
}

// departmentResolver fills in departments for drafts that still carry the
// General default after field resolution. An explicit department column
// always wins over inference, so resolved departments are left alone.
type departmentResolver struct {
	suggester   DepartmentSuggester // nil when AI is disabled
	maxInFlight int
	logger      *zap.Logger
}

// resolve applies the tiered fallback in place: batch suggestions, then
// bounded-concurrency per-row suggestion calls, then the keyword lexicon,
// then the General default. Suggestion results are written back by row
// index, so output ordering never depends on completion order.
func (r *departmentResolver) resolve(ctx context.Context, drafts []domain.TicketDraft, batch *domain.ClassificationResult, report *domain.PipelineReport) error {
	var pending []int
	for i := range drafts {
		if drafts[i].Department != "" && drafts[i].Department != domain.DefaultDepartment {
			continue
		}
		if suggested, ok := batch.BatchSuggestion(i); ok {
			drafts[i].Department = suggested
			report.DepartmentsFromBatch++
			continue
		}
		pending = append(pending, i)
	}

	suggestions := make([]string, len(drafts))
	if r.suggester != nil && len(pending) > 0 {
		limit := r.maxInFlight
		if limit <= 0 {
			limit = defaultMaxSuggestionsInFlight
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(limit)
		for _, idx := range pending {
			idx := idx
			g.Go(func() error {
				suggested, err := r.suggester.SuggestDepartment(gctx, drafts[idx].Title, drafts[idx].Description)
				if err != nil {
					// Non-fatal: the keyword tier picks this row up. No retries.
					r.logger.Warn("department suggestion failed",
						zap.Int("row", idx),
						zap.Error(err))
					return nil
				}
				suggestions[idx] = suggested
				return nil
			})
		}
		_ = g.Wait()
		if err := ctx.Err(); err != nil {
			return err
		}
	}

	for _, idx := range pending {
		if s := suggestions[idx]; s != "" && s != domain.DepartmentOther {
			drafts[idx].Department = s
			report.DepartmentsFromAI++
			continue
		}
		if dept, ok := classify.Department(drafts[idx].Title, drafts[idx].Description); ok {
			drafts[idx].Department = dept
			report.DepartmentsFromKeywords++
			continue
		}
		drafts[idx].Department = domain.DefaultDepartment
		report.DepartmentsDefaulted++
	}

	return nil
}
