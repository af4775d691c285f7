package builder

import (
	"strings"

	"github.com/dukex/flowgen/pkg/models"
	"github.com/dukex/flowgen/pkg/template"
)

var typeVersions = map[string]int{
	models.NodeTypeWebhook:          2,
	models.NodeTypeCode:             2,
	models.NodeTypeSet:              3,
	models.NodeTypeHTTPRequest:      4,
	models.NodeTypeIf:               2,
	models.NodeTypeSwitch:           3,
	models.NodeTypeCron:             1,
	models.NodeTypeManualTrigger:    1,
	models.NodeTypeScheduleTrigger:  1,
	models.NodeTypeEmailSend:        2,
	models.NodeTypePostgres:         2,
	models.NodeTypeSplitInBatches:   3,
	models.NodeTypeMerge:            3,
	models.NodeTypeRespondToWebhook: 1,
}

// TypeVersion returns the version emitted for typeID, 1 when unknown.
func TypeVersion(typeID string) int {
	if v, ok := typeVersions[typeID]; ok {
		return v
	}

	return 1
}

const processScript = `// {{ comment .Description }}
const results = [];

for (const item of $input.all()) {
  const data = item.json;

  results.push({
    json: {
      ...data,
      processed: true,
      processedAt: new Date().toISOString(),
    },
  });
}

return results;
`

const setFields = `{"values": [
  {"name": {{ quote .Field }}, "value": {{ quote .Value }}},
  {"name": "timestamp", "value": "={{ "{{" }} $now.toISO() {{ "}}" }}"}
]}`

const ifConditions = `{"conditions": [
  {"leftValue": "={{ "{{" }} $json.{{ .Field }} {{ "}}" }}", "rightValue": "", "operator": {"type": "string", "operation": "exists"}}
]}`

type paramContext struct {
	Description string
	Name        string
	Field       string
	Value       string
}

// defaultParameters returns the templated parameter body for a node type.
func defaultParameters(typeID string, ctx paramContext) map[string]any {
	switch typeID {
	case models.NodeTypeWebhook:
		path := template.Slug(ctx.Name)
		if path == "" {
			path = "webhook"
		}

		return map[string]any{
			"path":         path,
			"httpMethod":   "POST",
			"responseMode": "onReceived",
		}
	case models.NodeTypeCode:
		return map[string]any{
			"jsCode": renderText(processScript, ctx),
			"mode":   "runOnceForAllItems",
		}
	case models.NodeTypeHTTPRequest:
		return map[string]any{
			"url":            "https://api.example.com/data",
			"method":         "GET",
			"authentication": "none",
		}
	case models.NodeTypeSet:
		if ctx.Field == "" {
			ctx.Field = "status"
		}

		if ctx.Value == "" {
			ctx.Value = "processed"
		}

		return map[string]any{
			"mode":   "manual",
			"fields": renderValue(setFields, ctx),
		}
	case models.NodeTypeIf:
		if ctx.Field == "" {
			ctx.Field = "status"
		}

		return map[string]any{
			"conditions": renderValue(ifConditions, ctx),
		}
	case models.NodeTypeCron:
		return map[string]any{
			"cronExpression": CronExpression(ctx.Description),
		}
	case models.NodeTypeScheduleTrigger:
		return map[string]any{
			"rule": map[string]any{
				"interval": []any{map[string]any{"field": "hours"}},
			},
		}
	case models.NodeTypeEmailSend:
		return map[string]any{
			"fromEmail": "noreply@example.com",
			"toEmail":   "team@example.com",
			"subject":   ctx.Name,
			"text":      "={{ JSON.stringify($json) }}",
		}
	case models.NodeTypePostgres:
		return map[string]any{
			"operation": "executeQuery",
			"query":     "SELECT * FROM records LIMIT 100",
		}
	case models.NodeTypeSplitInBatches:
		return map[string]any{"batchSize": 10}
	case models.NodeTypeMerge:
		return map[string]any{"mode": "append"}
	case models.NodeTypeSwitch:
		return map[string]any{"mode": "rules"}
	case models.NodeTypeRespondToWebhook:
		return map[string]any{"respondWith": "firstIncomingItem"}
	default:
		return map[string]any{}
	}
}

// CronExpression derives a five-field schedule from a description, daily at
// 09:00 unless the text asks for minutely, hourly or weekly runs.
func CronExpression(description string) string {
	lower := strings.ToLower(description)

	switch {
	case strings.Contains(lower, "every minute"), strings.Contains(lower, "minutely"):
		return "* * * * *"
	case strings.Contains(lower, "hourly"), strings.Contains(lower, "every hour"):
		return "0 * * * *"
	case strings.Contains(lower, "weekly"), strings.Contains(lower, "every week"):
		return "0 9 * * 1"
	case strings.Contains(lower, "monthly"), strings.Contains(lower, "every month"):
		return "0 9 1 * *"
	default:
		return "0 9 * * *"
	}
}

// The templates are compiled-in, so a render failure leaves the parameter empty
// and surfaces later as a validation issue.
func renderText(tmpl string, ctx paramContext) string {
	out, err := template.Text(tmpl, ctx)
	if err != nil {
		return ""
	}

	return out
}

func renderValue(tmpl string, ctx paramContext) any {
	out, err := template.Render(tmpl, ctx)
	if err != nil {
		return map[string]any{}
	}

	return out
}
