package domain

// Category is a canonical ticket field that raw spreadsheet columns are
// mapped onto.
type Category string

const (
	CategoryTitle              Category = "title"
	CategoryDescription        Category = "description"
	CategoryDepartment         Category = "department"
	CategoryPriority           Category = "priority"
	CategoryStatus             Category = "status"
	CategoryDueDate            Category = "due_date"
	CategoryRecommendations    Category = "recommendations"
	CategoryManagementResponse Category = "management_response"
	CategoryRiskLevel          Category = "risk_level"
	CategoryFindingStatus      Category = "finding_status"
	CategoryResponsibility     Category = "responsibility"
	CategoryFollowup           Category = "followup"
	CategoryFollowupResponse   Category = "followup_response"
	CategoryManagementUpdates  Category = "management_updates"
)

// DepartmentOther is the sentinel the classification service returns when
// it cannot suggest a department with enough confidence.
const DepartmentOther = "OTHER"

// ColumnMapping maps a canonical category to a normalized header name.
type ColumnMapping map[Category]string

// DepartmentClassification is one per-row suggestion from the batch
// classification response.
type DepartmentClassification struct {
	Row       int    `json:"row"`
	Original  string `json:"original,omitempty"`
	Suggested string `json:"suggested"`
	Source    string `json:"source,omitempty"`
}

// ClassificationStatistics summarizes one batch classification run.
type ClassificationStatistics struct {
	TotalColumns             int `json:"total_columns"`
	ColumnsClassified        int `json:"columns_classified"`
	ColumnsNeedingReview     int `json:"columns_needing_review"`
	TotalRowsProcessed       int `json:"total_rows_processed"`
	DepartmentsNormalized    int `json:"departments_normalized"`
	DepartmentsInferred      int `json:"departments_inferred"`
	DepartmentsNeedingReview int `json:"departments_needing_review"`
}

// ClassificationResult is the batch classification service response.
// Column names in ColumnMapping are the service's originals and must be
// re-normalized before they are compared against parsed row keys.
type ClassificationResult struct {
	ColumnMapping             map[string]string          `json:"column_mapping"`
	DepartmentClassifications []DepartmentClassification `json:"department_classifications,omitempty"`
	ProcessedTickets          []TicketDraft              `json:"processed_tickets,omitempty"`
	Statistics                *ClassificationStatistics  `json:"statistics,omitempty"`
}

// BatchSuggestion returns the usable department suggestion for a row
// index, if any. The OTHER sentinel counts as no suggestion.
func (r *ClassificationResult) BatchSuggestion(rowIndex int) (string, bool) {
	if r == nil {
		return "", false
	}
	for _, dc := range r.DepartmentClassifications {
		if dc.Row == rowIndex && dc.Suggested != "" && dc.Suggested != DepartmentOther {
			return dc.Suggested, true
		}
	}
	return "", false
}
