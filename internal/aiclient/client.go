// Package aiclient talks to the external classification service (Tier 2).
// Every call carries an explicit timeout and is never retried: a timeout
// or error is a permanent failure for that call, and the pipeline falls
// back to its local tiers.
package aiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/auditflow/auditflow/internal/domain"

	"go.uber.org/zap"
)

// ErrServiceUnavailable wraps any transport, status, or payload failure
// from the classification service so callers can branch with errors.Is.
var ErrServiceUnavailable = errors.New("classification service unavailable")

// Config holds the service endpoint and per-call timeouts.
type Config struct {
	BaseURL      string
	BatchTimeout time.Duration
	RowTimeout   time.Duration
}

// DefaultConfig returns the reference timeouts: 30s for the batch upload,
// 10s for a per-row department suggestion.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:      baseURL,
		BatchTimeout: 30 * time.Second,
		RowTimeout:   10 * time.Second,
	}
}

// Client is safe for concurrent use; per-row suggestion calls share the
// single underlying http.Client.
type Client struct {
	baseURL      string
	batchTimeout time.Duration
	rowTimeout   time.Duration
	httpClient   *http.Client
	logger       *zap.Logger
}

// New creates a classification service client.
func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 30 * time.Second
	}
	if cfg.RowTimeout <= 0 {
		cfg.RowTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:      cfg.BaseURL,
		batchTimeout: cfg.BatchTimeout,
		rowTimeout:   cfg.RowTimeout,
		httpClient:   &http.Client{},
		logger:       logger,
	}
}

// Classify uploads the raw file and returns the batch classification
// result: a column mapping, optional per-row department suggestions, and
// optionally fully pre-built ticket drafts.
func (c *Client) Classify(ctx context.Context, fileName string, payload []byte) (*domain.ClassificationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.batchTimeout)
	defer cancel()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := part.Write(payload); err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/classify", body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var envelope struct {
		domain.ClassificationResult
		Error   string `json:"error"`
		Details string `json:"details"`
	}
	if err := c.do(req, &envelope); err != nil {
		return nil, err
	}
	if envelope.Error != "" {
		c.logger.Warn("classification service returned error payload",
			zap.String("error", envelope.Error),
			zap.String("details", envelope.Details))
		return nil, fmt.Errorf("%w: %s", ErrServiceUnavailable, envelope.Error)
	}

	c.logger.Debug("batch classification succeeded",
		zap.Int("mapped_columns", len(envelope.ColumnMapping)),
		zap.Int("department_suggestions", len(envelope.DepartmentClassifications)),
		zap.Int("processed_tickets", len(envelope.ProcessedTickets)))

	result := envelope.ClassificationResult
	return &result, nil
}

// SuggestDepartment asks the service for a department given finding text.
// The OTHER sentinel is returned verbatim; the caller decides whether it
// is usable.
func (c *Client) SuggestDepartment(ctx context.Context, title, description string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.rowTimeout)
	defer cancel()

	request := struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}{Title: title, Description: description}

	data, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/department", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var envelope struct {
		Department string `json:"department"`
		Error      string `json:"error"`
	}
	if err := c.do(req, &envelope); err != nil {
		return "", err
	}
	if envelope.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrServiceUnavailable, envelope.Error)
	}
	return envelope.Department, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", ErrServiceUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrServiceUnavailable, resp.StatusCode)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: malformed response: %v", ErrServiceUnavailable, err)
	}
	return nil
}
