package insights

import (
	"testing"

	"github.com/dukex/flowgen/pkg/analyzer"
	"github.com/dukex/flowgen/pkg/models"
	"github.com/dukex/flowgen/pkg/recommender"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInput() Input {
	doc := &models.WorkflowDocument{
		Name: "Sync Orders",
		Nodes: []*models.DocumentNode{
			{Name: "Schedule", Type: models.NodeTypeCron},
			{Name: "Fetch Data", Type: models.NodeTypeHTTPRequest},
			{Name: "Process Data", Type: models.NodeTypeCode},
		},
		Connections: map[string]*models.NodeConnections{
			"Schedule":   {Main: [][]*models.ConnectionTarget{{{Node: "Fetch Data", Type: "main"}}}},
			"Fetch Data": {Main: [][]*models.ConnectionTarget{{{Node: "Process Data", Type: "main"}}}},
		},
	}

	pattern, _ := analyzer.PatternByName(analyzer.PatternScheduledDataSync)

	return Input{
		Workflow: &models.GeneratedWorkflow{Name: "Sync Orders", Type: models.WorkflowTypeScheduled},
		Document: doc,
		Validation: &models.WorkflowValidationResult{
			IsValid: true,
			Issues: []*models.ValidationIssue{{
				Type:       models.IssueTypeSuggestion,
				Message:    "HTTP requests have no error handling",
				Suggestion: "Add an If node to branch on failed responses",
			}},
		},
		Score: &models.Score{
			Performance:     100,
			Security:        95,
			Maintainability: 85,
			Recommendations: []string{"Add error handling around HTTP requests"},
		},
		Patterns: []*models.WorkflowPattern{pattern},
		Recommendations: []*recommender.NodeRecommendation{
			{TypeID: models.NodeTypePostgres, DisplayName: "Postgres", Score: 20, Reasoning: "not yet in the workflow"},
			{TypeID: models.NodeTypeCode, DisplayName: "Code", Score: 20, Reasoning: "not yet in the workflow"},
		},
	}
}

func TestBuild(t *testing.T) {
	summary := Build(sampleInput())

	assert.Equal(t, models.WorkflowTypeScheduled, summary.WorkflowType)
	assert.Equal(t, 3, summary.NodeCount)
	assert.Equal(t, 2, summary.ConnectionCount)
	assert.Equal(t, models.ComplexitySimple, summary.Complexity)
	assert.Equal(t, "1-3 seconds", summary.EstimatedExecutionTime)
	assert.Equal(t, []string{analyzer.PatternScheduledDataSync}, summary.MatchedPatterns)
	assert.Equal(t, []string{
		"Add error handling around HTTP requests",
		"Add an If node to branch on failed responses",
		"Consider adding a Postgres node (not yet in the workflow)",
	}, summary.Recommendations)
}

func TestBuild_Empty(t *testing.T) {
	summary := Build(Input{})

	assert.Equal(t, models.WorkflowTypeBasic, summary.WorkflowType)
	assert.Zero(t, summary.NodeCount)
	assert.Equal(t, "under 1 second", summary.EstimatedExecutionTime)
	assert.Empty(t, summary.Recommendations)
}

func TestComplexityLabel(t *testing.T) {
	assert.Equal(t, models.ComplexitySimple, ComplexityLabel(0))
	assert.Equal(t, models.ComplexityMedium, ComplexityLabel(4))
	assert.Equal(t, models.ComplexityComplex, ComplexityLabel(8))
}

func TestEstimatedExecutionTime(t *testing.T) {
	assert.Equal(t, "under 1 second", EstimatedExecutionTime(2, 0))
	assert.Equal(t, "3-10 seconds", EstimatedExecutionTime(5, 3))
	assert.Equal(t, "more than 10 seconds", EstimatedExecutionTime(21, 0))
}

func TestCompose(t *testing.T) {
	in := sampleInput()

	reply, err := Compose(in, Build(in))
	require.NoError(t, err)

	assert.Contains(t, reply.Message, "## Sync Orders")
	assert.Contains(t, reply.Message, "**scheduled** workflow with 3 nodes and 2 connections")
	assert.Contains(t, reply.Message, "2. Fetch Data (`httpRequest`)")
	assert.Contains(t, reply.Message, "Validation passed with no errors.")
	assert.NotContains(t, reply.Message, DegradedNotice)

	assert.Contains(t, reply.MessageHTML, "<h2>Sync Orders</h2>")
	assert.Contains(t, reply.MessageHTML, "<table>")
	assert.Contains(t, reply.MessageHTML, "<code>httpRequest</code>")
}

func TestCompose_ErrorsAndDegraded(t *testing.T) {
	in := sampleInput()
	in.Degraded = true
	in.Validation = &models.WorkflowValidationResult{
		Issues: []*models.ValidationIssue{
			{Type: models.IssueTypeError, NodeName: "Fetch Data", Message: "Missing required parameter: url"},
			{Type: models.IssueTypeWarning, NodeName: "Legacy", Message: "Node type Function is deprecated", AutoFix: true},
		},
		ModernizedWorkflow: &models.WorkflowDocument{},
	}

	reply, err := Compose(in, Build(in))
	require.NoError(t, err)

	assert.Contains(t, reply.Message, "**1 errors** and 1 warnings")
	assert.Contains(t, reply.Message, "- Fetch Data: Missing required parameter: url")
	assert.Contains(t, reply.Message, "auto-fixed version")
	assert.Contains(t, reply.Message, DegradedNotice)
	assert.Contains(t, reply.MessageHTML, "<blockquote>")
}
