// Package pipeline converts parsed audit spreadsheets into validated
// ticket drafts. The Pipeline orchestrator owns all failure and fallback
// policy; every other component is a pure function of its inputs.
package pipeline

import (
	"context"

	"github.com/auditflow/auditflow/internal/domain"
	"github.com/auditflow/auditflow/internal/ingestion"

	"go.uber.org/zap"
)

// Stage identifies where the pipeline is while processing one upload.
type Stage string

const (
	StageParsing             Stage = "parsing"
	StageBatchClassifying    Stage = "batch_classifying"
	StageRowResolving        Stage = "row_resolving"
	StageDepartmentResolving Stage = "department_resolving"
	StageValidating          Stage = "validating"
	StageDone                Stage = "done"
)

// ProgressEvent is delivered to the configured callback as rows move
// through the stages.
type ProgressEvent struct {
	Stage     Stage
	RowsDone  int
	RowsTotal int
}

// ProgressFunc receives progress events. Callbacks run on the pipeline
// goroutine and should return quickly.
type ProgressFunc func(ProgressEvent)

// BatchClassifier is the Tier-2 batch capability: classify the whole file
// in one call. Failures are absorbed, never fatal.
type BatchClassifier interface {
	Classify(ctx context.Context, fileName string, payload []byte) (*domain.ClassificationResult, error)
}

// Options tune one pipeline instance.
type Options struct {
	// Statuses overrides the accepted status vocabulary.
	Statuses []string
	// MaxSuggestionsInFlight bounds concurrent per-row department calls.
	MaxSuggestionsInFlight int
	// Progress receives stage/row progress events.
	Progress ProgressFunc
}

// Request is one upload to process.
type Request struct {
	FileName string
	Data     []byte
	// DisableAI skips both the batch classification call and the per-row
	// suggestion tier for this upload.
	DisableAI bool
}

// Result is the terminal artifact: the accepted drafts in original row
// order, plus aggregate diagnostics.
type Result struct {
	Drafts []domain.TicketDraft
	Report domain.PipelineReport
}

// Pipeline processes uploads. Instances hold no per-upload state and are
// safe to share across concurrent uploads.
type Pipeline struct {
	classifier  BatchClassifier
	suggester   DepartmentSuggester
	coercer     Coercer
	maxInFlight int
	progress    ProgressFunc
	logger      *zap.Logger
}

// New builds a pipeline. classifier and suggester may be nil to disable
// the corresponding AI tier entirely.
func New(classifier BatchClassifier, suggester DepartmentSuggester, opts Options, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	maxInFlight := opts.MaxSuggestionsInFlight
	if maxInFlight <= 0 {
		maxInFlight = defaultMaxSuggestionsInFlight
	}
	return &Pipeline{
		classifier:  classifier,
		suggester:   suggester,
		coercer:     NewCoercer(opts.Statuses),
		maxInFlight: maxInFlight,
		progress:    opts.Progress,
		logger:      logger,
	}
}

// Process runs one upload through parsing, classification, resolution,
// and validation. The only fatal conditions are unrecoverable parse
// corruption, caller cancellation, and zero rows surviving validation.
func (p *Pipeline) Process(ctx context.Context, req Request) (Result, error) {
	p.emit(StageParsing, 0, 0)
	table, err := ingestion.Parse(req.FileName, req.Data)
	if err != nil {
		return Result{}, err
	}

	report := domain.PipelineReport{RowsParsed: len(table.Rows)}
	total := len(table.Rows)

	var batch *domain.ClassificationResult
	if p.classifier != nil && !req.DisableAI {
		p.emit(StageBatchClassifying, 0, total)
		result, err := p.classifier.Classify(ctx, req.FileName, req.Data)
		if err != nil {
			p.logger.Warn("batch classification unavailable, continuing with local tiers",
				zap.String("file", req.FileName),
				zap.Error(err))
		} else {
			batch = result
			report.BatchClassifierUsed = true
			report.Statistics = result.Statistics
		}
	}

	var drafts []domain.TicketDraft
	if batch != nil && len(batch.ProcessedTickets) > 0 {
		// The service already resolved and normalized every row. Enum
		// membership and the General default are invariants of the output,
		// so they are re-established here; validation below still applies.
		report.ProcessedByAI = true
		drafts = make([]domain.TicketDraft, len(batch.ProcessedTickets))
		for i, draft := range batch.ProcessedTickets {
			draft.Priority = p.coercer.Priority(draft.Priority)
			draft.Status = p.coercer.Status(draft.Status)
			if draft.Department == "" {
				draft.Department = domain.DefaultDepartment
			}
			drafts[i] = draft
		}
	} else {
		var aiMapping map[string]string
		if batch != nil {
			aiMapping = batch.ColumnMapping
		}
		resolver := newFieldResolver(aiMapping, table.Headers)

		p.emit(StageRowResolving, 0, total)
		drafts = make([]domain.TicketDraft, 0, total)
		for _, row := range table.Rows {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
			drafts = append(drafts, resolveDraft(row, resolver, p.coercer))
			p.emit(StageRowResolving, len(drafts), total)
		}

		p.emit(StageDepartmentResolving, 0, total)
		suggester := p.suggester
		if req.DisableAI {
			suggester = nil
		}
		resolverTier := &departmentResolver{
			suggester:   suggester,
			maxInFlight: p.maxInFlight,
			logger:      p.logger,
		}
		if err := resolverTier.resolve(ctx, drafts, batch, &report); err != nil {
			return Result{}, err
		}
		p.emit(StageDepartmentResolving, total, total)
	}

	p.emit(StageValidating, 0, len(drafts))
	accepted := make([]domain.TicketDraft, 0, len(drafts))
	for _, draft := range drafts {
		if validateDraft(draft) {
			accepted = append(accepted, draft)
		} else {
			report.RowsRejected++
		}
	}
	report.RowsAccepted = len(accepted)

	if len(accepted) == 0 {
		return Result{Report: report}, ErrNoValidRows
	}

	p.logger.Info("upload processed",
		zap.String("file", req.FileName),
		zap.Int("parsed", report.RowsParsed),
		zap.Int("accepted", report.RowsAccepted),
		zap.Int("rejected", report.RowsRejected),
		zap.Bool("batch_classifier", report.BatchClassifierUsed))

	p.emit(StageDone, len(accepted), len(drafts))
	return Result{Drafts: accepted, Report: report}, nil
}

func (p *Pipeline) emit(stage Stage, done, total int) {
	if p.progress != nil {
		p.progress(ProgressEvent{Stage: stage, RowsDone: done, RowsTotal: total})
	}
}
