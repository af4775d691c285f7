package builder

import (
	"strings"

	"github.com/dukex/flowgen/pkg/models"
)

func mentions(description string, terms ...string) bool {
	lower := strings.ToLower(description)

	for _, term := range terms {
		if strings.Contains(lower, term) {
			return true
		}
	}

	return false
}

// webhook -> [if] -> [code] -> set
func webhookPlan(description string) plan {
	steps := []step{{typeID: models.NodeTypeWebhook, name: "Incoming Webhook"}}

	if mentions(description, "validate", "check") {
		steps = append(steps, step{typeID: models.NodeTypeIf, name: "Validate Input", field: "body"})
	}

	if mentions(description, "process", "transform") {
		steps = append(steps, step{typeID: models.NodeTypeCode, name: "Process Data"})
	}

	steps = append(steps, step{typeID: models.NodeTypeSet, name: "Format Response", field: "status", value: "received"})

	return plan{steps: steps}
}

// cron -> [httpRequest] -> code
func scheduledPlan(description string) plan {
	steps := []step{{typeID: models.NodeTypeCron, name: "Schedule"}}

	if mentions(description, "api", "fetch") {
		steps = append(steps, step{typeID: models.NodeTypeHTTPRequest, name: "Fetch Data"})
	}

	steps = append(steps, step{typeID: models.NodeTypeCode, name: "Process Data"})

	return plan{steps: steps}
}

// webhook -> if -> (true: set, false: set)
func conditionalPlan() plan {
	return plan{
		steps: []step{
			{typeID: models.NodeTypeWebhook, name: "Incoming Webhook"},
			{typeID: models.NodeTypeIf, name: "Check Condition", field: "status"},
			{typeID: models.NodeTypeSet, name: "True Branch", yOffset: -branchStep, field: "result", value: "matched"},
			{typeID: models.NodeTypeSet, name: "False Branch", yOffset: branchStep, field: "result", value: "not_matched"},
		},
		branch: true,
	}
}

// manualTrigger -> [httpRequest] -> code -> set
func dataProcessingPlan(description string) plan {
	steps := []step{{typeID: models.NodeTypeManualTrigger, name: "Manual Trigger"}}

	if mentions(description, "api", "fetch") {
		steps = append(steps, step{typeID: models.NodeTypeHTTPRequest, name: "Fetch Data"})
	}

	steps = append(steps,
		step{typeID: models.NodeTypeCode, name: "Process Data"},
		step{typeID: models.NodeTypeSet, name: "Format Output", field: "status", value: "processed"},
	)

	return plan{steps: steps}
}

// manualTrigger -> code
func basicPlan() plan {
	return plan{
		steps: []step{
			{typeID: models.NodeTypeManualTrigger, name: "Manual Trigger"},
			{typeID: models.NodeTypeCode, name: "Process Data"},
		},
	}
}
