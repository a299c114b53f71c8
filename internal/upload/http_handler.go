// Package upload exposes the ingestion pipeline as an HTTP endpoint.
package upload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/auditflow/auditflow/internal/domain"
	"github.com/auditflow/auditflow/internal/ingestion"
	"github.com/auditflow/auditflow/internal/pipeline"
	"github.com/auditflow/auditflow/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler accepts multipart uploads, runs the pipeline, and persists the
// accepted drafts.
type Handler struct {
	pipeline *pipeline.Pipeline
	tickets  repository.TicketRepository
	logger   *zap.Logger
}

// Response is the upload result returned to clients.
type Response struct {
	UploadID uuid.UUID             `json:"upload_id"`
	Report   domain.PipelineReport `json:"report"`
	Tickets  []domain.Ticket       `json:"tickets"`
}

// NewHTTPHandler wraps the pipeline and repository with a POST endpoint.
func NewHTTPHandler(p *pipeline.Pipeline, tickets repository.TicketRepository, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{pipeline: p, tickets: tickets, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, fmt.Sprintf("invalid form data: %v", err), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, fmt.Sprintf("file required: %v", err), http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to read file: %v", err), http.StatusBadRequest)
		return
	}

	useAI := strings.ToLower(strings.TrimSpace(r.FormValue("useAI")))
	disableAI := useAI == "false" || useAI == "0"

	result, err := h.pipeline.Process(r.Context(), pipeline.Request{
		FileName:  header.Filename,
		Data:      data,
		DisableAI: disableAI,
	})
	if err != nil {
		switch {
		case errors.Is(err, ingestion.ErrUnsupportedFormat):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, pipeline.ErrNoValidRows):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			http.Error(w, err.Error(), http.StatusRequestTimeout)
		default:
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
		return
	}

	uploadID := uuid.New()
	tickets, err := h.tickets.CreateBatch(r.Context(), uploadID, result.Drafts)
	if err != nil {
		h.logger.Error("failed to persist tickets",
			zap.String("upload_id", uploadID.String()),
			zap.Error(err))
		http.Error(w, "failed to persist tickets", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, Response{
		UploadID: uploadID,
		Report:   result.Report,
		Tickets:  tickets,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
