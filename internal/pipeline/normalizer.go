package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/auditflow/auditflow/internal/classify"
	"github.com/auditflow/auditflow/internal/domain"
	"github.com/auditflow/auditflow/internal/ingestion"
)

const maxTitleLength = 500

var dueDateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"02/01/2006",
	"02-01-2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// Coercer forces free-text priority and status values onto their closed
// vocabularies. The status vocabulary is configurable because deployments
// disagree on the third state (resolved vs pending).
type Coercer struct {
	statuses map[string]struct{}
}

// NewCoercer builds a coercer over the given status vocabulary, falling
// back to the default set when none is configured.
func NewCoercer(statuses []string) Coercer {
	if len(statuses) == 0 {
		statuses = domain.DefaultStatuses
	}
	accepted := make(map[string]struct{}, len(statuses))
	for _, status := range statuses {
		accepted[strings.ToLower(strings.TrimSpace(status))] = struct{}{}
	}
	return Coercer{statuses: accepted}
}

// Priority lowercases the raw value and keeps it only if it is a member
// of the closed priority set; anything else becomes medium.
func (c Coercer) Priority(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	for _, priority := range domain.Priorities {
		if value == priority {
			return value
		}
	}
	return domain.PriorityMedium
}

// Status lowercases the raw value and keeps it only if the configured
// vocabulary contains it; anything else becomes open.
func (c Coercer) Status(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := c.statuses[value]; ok {
		return value
	}
	return domain.StatusOpen
}

// DueDate parses a raw date into ISO form. Unparseable dates are dropped,
// not errors: downstream persistence tolerates a missing due date.
func (c Coercer) DueDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, layout := range dueDateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.Format("2006-01-02")
		}
	}
	return ""
}

// fieldResolver resolves canonical categories for a row through the
// ordered fallback chain: AI column mapping, then the Tier-1 mapping
// built from the parsed headers, then the raw synonym names themselves.
type fieldResolver struct {
	aiMapping domain.ColumnMapping
	tierOne   domain.ColumnMapping
}

// newFieldResolver normalizes the AI-returned column names with the same
// function used on parsed headers before they are ever compared against
// row keys.
func newFieldResolver(aiMapping map[string]string, headers []string) fieldResolver {
	resolver := fieldResolver{
		tierOne: classify.Columns(headers),
	}
	if len(aiMapping) > 0 {
		resolver.aiMapping = make(domain.ColumnMapping, len(aiMapping))
		for category, column := range aiMapping {
			normalized := ingestion.NormalizeHeader(column)
			if normalized == "" {
				continue
			}
			resolver.aiMapping[domain.Category(category)] = normalized
		}
	}
	return resolver
}

// value resolves one category for one row; "" means unresolved.
func (r fieldResolver) value(row domain.RawRow, category domain.Category) string {
	if header, ok := r.aiMapping[category]; ok {
		if v := row.Value(header); v != "" {
			return v
		}
	}
	if header, ok := r.tierOne[category]; ok {
		if v := row.Value(header); v != "" {
			return v
		}
	}
	for _, synonym := range classify.Synonyms(category) {
		if v := row.Value(synonym); v != "" {
			return v
		}
	}
	return ""
}

// resolveDraft builds a draft from one raw row. The description has its
// own fallback chain because many source formats carry no dedicated
// description column.
func resolveDraft(row domain.RawRow, resolver fieldResolver, coercer Coercer) domain.TicketDraft {
	title := resolver.value(row, domain.CategoryTitle)
	if title == "" {
		title = fmt.Sprintf("Audit Item %d", row.Index+1)
	}
	if len(title) > maxTitleLength {
		title = title[:maxTitleLength]
	}

	recommendations := resolver.value(row, domain.CategoryRecommendations)
	managementResponse := resolver.value(row, domain.CategoryManagementResponse)

	description := resolver.value(row, domain.CategoryDescription)
	if description == "" {
		description = recommendations
	}
	if description == "" {
		description = managementResponse
	}

	department := resolver.value(row, domain.CategoryDepartment)
	if department == "" {
		department = domain.DefaultDepartment
	}

	return domain.TicketDraft{
		Title:              title,
		Description:        description,
		Department:         department,
		Priority:           coercer.Priority(resolver.value(row, domain.CategoryPriority)),
		Status:             coercer.Status(resolver.value(row, domain.CategoryStatus)),
		DueDate:            coercer.DueDate(resolver.value(row, domain.CategoryDueDate)),
		Recommendations:    recommendations,
		ManagementResponse: managementResponse,
		RiskLevel:          resolver.value(row, domain.CategoryRiskLevel),
		FindingStatus:      resolver.value(row, domain.CategoryFindingStatus),
		Responsibility:     resolver.value(row, domain.CategoryResponsibility),
		Followup:           resolver.value(row, domain.CategoryFollowup),
		FollowupResponse:   resolver.value(row, domain.CategoryFollowupResponse),
		ManagementUpdates:  resolver.value(row, domain.CategoryManagementUpdates),
	}
}
