// Package insights turns pipeline output into the chat reply and the insights
// summary shown next to a generated workflow.
package insights

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dukex/flowgen/pkg/analyzer"
	"github.com/dukex/flowgen/pkg/models"
	"github.com/dukex/flowgen/pkg/recommender"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// DegradedNotice is appended to replies built from the fallback catalog.
const DegradedNotice = "The node catalog is currently unavailable, so this workflow was built from a reduced set of nodes. Regenerate it later for a complete result."

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Input is everything the assembler reads.
type Input struct {
	Workflow        *models.GeneratedWorkflow
	Document        *models.WorkflowDocument
	Validation      *models.WorkflowValidationResult
	Score           *models.Score
	Patterns        []*models.WorkflowPattern
	Recommendations []*recommender.NodeRecommendation
	Degraded        bool
}

// Reply is the user-facing text for a generation.
type Reply struct {
	Message     string `json:"message"`
	MessageHTML string `json:"message_html"`
}

// Build derives the insights summary.
func Build(in Input) *models.Insights {
	nodeCount := 0
	connectionCount := 0
	httpNodes := 0

	if in.Document != nil {
		nodeCount = len(in.Document.Nodes) - len(in.Document.NullNodes())
		connectionCount = in.Document.ConnectionCount()
		httpNodes = in.Document.CountType(models.NodeTypeHTTPRequest)
	}

	workflowType := models.WorkflowTypeBasic
	if in.Workflow != nil {
		workflowType = in.Workflow.Type
	}

	return &models.Insights{
		WorkflowType:           workflowType,
		Complexity:             ComplexityLabel(nodeCount),
		EstimatedExecutionTime: EstimatedExecutionTime(nodeCount, httpNodes),
		Recommendations:        recommendations(in),
		NodeCount:              nodeCount,
		ConnectionCount:        connectionCount,
		MatchedPatterns:        analyzer.PatternNames(in.Patterns),
	}
}

// ComplexityLabel buckets a workflow by its node count.
func ComplexityLabel(nodeCount int) models.Complexity {
	switch {
	case nodeCount <= 3:
		return models.ComplexitySimple
	case nodeCount <= 7:
		return models.ComplexityMedium
	default:
		return models.ComplexityComplex
	}
}

// EstimatedExecutionTime is a rough duration bucket driven by node count and
// network calls.
func EstimatedExecutionTime(nodeCount, httpNodes int) string {
	switch {
	case nodeCount > 20 || httpNodes > 5:
		return "more than 10 seconds"
	case httpNodes > 2:
		return "3-10 seconds"
	case httpNodes > 0:
		return "1-3 seconds"
	default:
		return "under 1 second"
	}
}

func recommendations(in Input) []string {
	out := make([]string, 0)
	seen := map[string]bool{}

	add := func(s string) {
		if s == "" || seen[s] {
			return
		}

		seen[s] = true
		out = append(out, s)
	}

	if in.Score != nil {
		for _, r := range in.Score.Recommendations {
			add(r)
		}
	}

	if in.Validation != nil {
		for _, issue := range in.Validation.Suggestions() {
			add(issue.Suggestion)
		}
	}

	for _, rec := range in.Recommendations {
		if in.Document != nil && in.Document.CountType(rec.TypeID) > 0 {
			continue
		}

		add(fmt.Sprintf("Consider adding a %s node (%s)", rec.DisplayName, rec.Reasoning))
	}

	return out
}

// Compose writes the chat reply as markdown and renders it to HTML.
func Compose(in Input, summary *models.Insights) (*Reply, error) {
	var b strings.Builder

	name := "Generated Workflow"
	if in.Workflow != nil && in.Workflow.Name != "" {
		name = in.Workflow.Name
	}

	fmt.Fprintf(&b, "## %s\n\n", name)
	fmt.Fprintf(&b, "I created a **%s** workflow with %d nodes and %d connections.\n\n",
		strings.ReplaceAll(string(summary.WorkflowType), "_", " "), summary.NodeCount, summary.ConnectionCount)

	if in.Document != nil && len(in.Document.Nodes) > 0 {
		b.WriteString("**Nodes**\n\n")

		i := 0

		for _, n := range in.Document.Nodes {
			if n == nil {
				continue
			}

			i++
			fmt.Fprintf(&b, "%d. %s (`%s`)\n", i, n.Name, models.ShortName(n.Type))
		}

		b.WriteString("\n")
	}

	writeValidation(&b, in.Validation)

	if in.Score != nil {
		b.WriteString("| Performance | Security | Maintainability |\n|---|---|---|\n")
		fmt.Fprintf(&b, "| %d | %d | %d |\n\n", in.Score.Performance, in.Score.Security, in.Score.Maintainability)
	}

	fmt.Fprintf(&b, "Complexity: %s. Estimated execution time: %s.\n\n", summary.Complexity, summary.EstimatedExecutionTime)

	if len(summary.MatchedPatterns) > 0 {
		fmt.Fprintf(&b, "Matched patterns: %s.\n\n", strings.Join(summary.MatchedPatterns, ", "))
	}

	if len(summary.Recommendations) > 0 {
		b.WriteString("**Recommendations**\n\n")

		for _, r := range summary.Recommendations {
			fmt.Fprintf(&b, "- %s\n", r)
		}

		b.WriteString("\n")
	}

	if in.Degraded {
		fmt.Fprintf(&b, "> %s\n", DegradedNotice)
	}

	message := strings.TrimSpace(b.String())

	var html bytes.Buffer
	if err := markdown.Convert([]byte(message), &html); err != nil {
		return nil, fmt.Errorf("failed to render reply: %w", err)
	}

	return &Reply{Message: message, MessageHTML: html.String()}, nil
}

func writeValidation(b *strings.Builder, result *models.WorkflowValidationResult) {
	if result == nil {
		return
	}

	errorCount := result.Count(models.IssueTypeError)
	warningCount := result.Count(models.IssueTypeWarning)

	switch {
	case errorCount > 0:
		fmt.Fprintf(b, "Validation found **%d errors** and %d warnings:\n\n", errorCount, warningCount)
	case warningCount > 0:
		fmt.Fprintf(b, "Validation passed with %d warnings:\n\n", warningCount)
	default:
		b.WriteString("Validation passed with no errors.\n\n")

		return
	}

	for _, issue := range result.Issues {
		if issue.Type == models.IssueTypeSuggestion {
			continue
		}

		line := issue.Message
		if issue.NodeName != "" {
			line = issue.NodeName + ": " + line
		}

		fmt.Fprintf(b, "- %s\n", line)
	}

	b.WriteString("\n")

	if result.ModernizedWorkflow != nil {
		b.WriteString("An auto-fixed version of this workflow is available.\n\n")
	}
}
