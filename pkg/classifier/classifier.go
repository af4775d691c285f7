// Package classifier picks a generation strategy for a workflow description.
package classifier

import (
	"regexp"

	"github.com/dukex/flowgen/pkg/models"
)

type rule struct {
	workflowType models.WorkflowType
	pattern      *regexp.Regexp
}

// Rules are unanchored and evaluated in order; the first match wins.
var rules = []rule{
	{models.WorkflowTypeWebhook, regexp.MustCompile(`(?i)webhook|api|receive|endpoint|trigger`)},
	{models.WorkflowTypeScheduled, regexp.MustCompile(`(?i)schedule|cron|timer|daily|hourly|periodic`)},
	{models.WorkflowTypeConditional, regexp.MustCompile(`(?i)condition|if|when|check|validate|filter`)},
	{models.WorkflowTypeDataProcessing, regexp.MustCompile(`(?i)process|transform|convert|format|parse|extract`)},
}

// Classify returns the workflow type for text, falling back to basic.
func Classify(text string) models.WorkflowType {
	for _, r := range rules {
		if r.pattern.MatchString(text) {
			return r.workflowType
		}
	}

	return models.WorkflowTypeBasic
}
