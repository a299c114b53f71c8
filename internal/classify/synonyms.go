// Package classify holds the local (Tier-1) classification lexicons:
// header synonyms for column categorization and department keywords for
// content-based inference. Both are static, deterministic, and never touch
// the network.
package classify

import (
	"strings"

	"github.com/auditflow/auditflow/internal/domain"
)

// columnLexicon maps canonical categories to known header synonyms.
// Matching is substring-based over normalized headers, so declaration
// order is load-bearing: specific categories come before generic ones
// (description before title keeps finding_description off title,
// finding_status before status before title, risk_level before priority).
var columnLexicon = []struct {
	category domain.Category
	synonyms []string
}{
	{domain.CategoryDescription, []string{"description", "observation", "narrative", "detail"}},
	{domain.CategoryRecommendations, []string{"recommendation", "corrective_action", "action_plan"}},
	{domain.CategoryFollowupResponse, []string{"followup_response", "follow_up_response"}},
	{domain.CategoryFollowup, []string{"followup", "follow_up"}},
	{domain.CategoryManagementResponse, []string{"management_response", "mgmt_response", "auditee_response"}},
	{domain.CategoryManagementUpdates, []string{"management_update", "mgmt_update"}},
	{domain.CategoryFindingStatus, []string{"finding_status"}},
	{domain.CategoryStatus, []string{"status", "state", "progress"}},
	{domain.CategoryRiskLevel, []string{"risk_level", "risk_rating"}},
	{domain.CategoryPriority, []string{"priority", "severity", "risk", "rating", "impact", "criticality", "urgency"}},
	{domain.CategoryDueDate, []string{"due_date", "due", "deadline", "target_date"}},
	{domain.CategoryDepartment, []string{"department", "dept", "division", "unit", "responsibility", "owner", "section", "directorate"}},
	{domain.CategoryTitle, []string{"title", "audit_item", "finding", "issue", "seq", "sequence", "item", "subject", "name"}},
}

// Column classifies a single normalized header. The first category whose
// synonym list contains a substring of the header wins; headers matching
// nothing stay uncategorized under their own name.
func Column(header string) (domain.Category, bool) {
	for _, entry := range columnLexicon {
		for _, synonym := range entry.synonyms {
			if strings.Contains(header, synonym) {
				return entry.category, true
			}
		}
	}
	return "", false
}

// Columns builds the Tier-1 column mapping for a header set. At most one
// header maps to each category; the first matching header wins.
func Columns(headers []string) domain.ColumnMapping {
	mapping := make(domain.ColumnMapping)
	for _, header := range headers {
		category, ok := Column(header)
		if !ok {
			continue
		}
		if _, taken := mapping[category]; taken {
			continue
		}
		mapping[category] = header
	}
	return mapping
}

// Synonyms returns the fallback header names for a category, in match
// order. The row normalizer probes these as literal row keys when neither
// the AI mapping nor the Tier-1 mapping resolved the category.
func Synonyms(category domain.Category) []string {
	for _, entry := range columnLexicon {
		if entry.category == category {
			return entry.synonyms
		}
	}
	return nil
}
