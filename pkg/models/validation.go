package models

// IssueType is the severity of a validation issue.
type IssueType string

const (
	IssueTypeError      IssueType = "error"
	IssueTypeWarning    IssueType = "warning"
	IssueTypeSuggestion IssueType = "suggestion"
)

// ValidationIssue is a single finding produced by a validation pass.
type ValidationIssue struct {
	Type       IssueType `json:"type"`
	NodeID     string    `json:"node_id,omitempty"`
	NodeName   string    `json:"node_name,omitempty"`
	Parameter  string    `json:"parameter,omitempty"`
	Message    string    `json:"message"`
	Suggestion string    `json:"suggestion,omitempty"`
	AutoFix    bool      `json:"auto_fix"`
}

// WorkflowValidationResult is the outcome of validating a workflow document.
// IsValid is true iff no error-type issue was found.
type WorkflowValidationResult struct {
	IsValid            bool               `json:"is_valid"`
	Issues             []*ValidationIssue `json:"issues"`
	ModernizedWorkflow *WorkflowDocument  `json:"modernized_workflow,omitempty"`
}

// Count returns the number of issues of the given type.
func (r *WorkflowValidationResult) Count(issueType IssueType) int {
	count := 0

	for _, issue := range r.Issues {
		if issue.Type == issueType {
			count++
		}
	}

	return count
}

// Errors returns the error-type issues.
func (r *WorkflowValidationResult) Errors() []*ValidationIssue {
	return r.filter(IssueTypeError)
}

// Suggestions returns the suggestion-type issues.
func (r *WorkflowValidationResult) Suggestions() []*ValidationIssue {
	return r.filter(IssueTypeSuggestion)
}

func (r *WorkflowValidationResult) filter(issueType IssueType) []*ValidationIssue {
	issues := make([]*ValidationIssue, 0)

	for _, issue := range r.Issues {
		if issue.Type == issueType {
			issues = append(issues, issue)
		}
	}

	return issues
}

// AutofixResult is the outcome of running the auto-fixer on a document.
type AutofixResult struct {
	Fixed   *WorkflowDocument `json:"fixed"`
	Changes []string          `json:"changes"`
}

// Score holds the heuristic quality scores of a workflow. Recommendations are
// free text meant for display only.
type Score struct {
	Performance     int      `json:"performance"`
	Security        int      `json:"security"`
	Maintainability int      `json:"maintainability"`
	Recommendations []string `json:"recommendations"`
}

// Insights is a derived, non-authoritative summary of a generated workflow.
type Insights struct {
	WorkflowType           WorkflowType `json:"workflow_type"`
	Complexity             Complexity   `json:"complexity"`
	EstimatedExecutionTime string       `json:"estimated_execution_time"`
	Recommendations        []string     `json:"recommendations"`
	NodeCount              int          `json:"node_count"`
	ConnectionCount        int          `json:"connection_count"`
	MatchedPatterns        []string     `json:"matched_patterns"`
}
