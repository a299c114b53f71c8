package domain

// PipelineReport aggregates the outcome of one upload. Rejected rows are
// counted here, never surfaced individually.
type PipelineReport struct {
	RowsParsed   int `json:"rows_parsed"`
	RowsAccepted int `json:"rows_accepted"`
	RowsRejected int `json:"rows_rejected"`

	// Tier usage.
	BatchClassifierUsed  bool `json:"batch_classifier_used"`
	ProcessedByAI        bool `json:"processed_by_ai"`
	DepartmentsFromBatch int  `json:"departments_from_batch"`
	DepartmentsFromAI    int  `json:"departments_from_ai"`
	DepartmentsFromKeywords int `json:"departments_from_keywords"`
	DepartmentsDefaulted    int `json:"departments_defaulted"`

	Statistics *ClassificationStatistics `json:"statistics,omitempty"`
}
