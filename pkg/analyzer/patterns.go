package analyzer

import "github.com/dukex/flowgen/pkg/models"

// Pattern names.
const (
	PatternWebhookToAPI       = "Webhook to API Processing"
	PatternScheduledDataSync  = "Scheduled Data Sync"
	PatternConditionalRouting = "Conditional Routing"
	PatternDataTransformation = "Data Transformation Pipeline"
	PatternEmailNotification  = "Email Notification"
	PatternBatchProcessing    = "Batch Processing"
)

// Patterns returns the compiled-in workflow patterns. Each call returns fresh values.
func Patterns() []*models.WorkflowPattern {
	return []*models.WorkflowPattern{
		{
			Name:        PatternWebhookToAPI,
			Description: "Receive a webhook, process the payload and forward it to an external API",
			NodeTypes:   []string{models.NodeTypeWebhook, models.NodeTypeCode, models.NodeTypeHTTPRequest, models.NodeTypeRespondToWebhook},
			UseCase:     "receive webhook payloads, process them and forward the result to an external api",
			Complexity:  models.ComplexityMedium,
		},
		{
			Name:        PatternScheduledDataSync,
			Description: "Periodically fetch records from an API and store them in a database",
			NodeTypes:   []string{models.NodeTypeCron, models.NodeTypeHTTPRequest, models.NodeTypeCode, models.NodeTypePostgres},
			UseCase:     "fetch data from an api on a schedule and sync records into a database",
			Complexity:  models.ComplexityMedium,
		},
		{
			Name:        PatternConditionalRouting,
			Description: "Route incoming items to different branches based on a condition",
			NodeTypes:   []string{models.NodeTypeWebhook, models.NodeTypeIf, models.NodeTypeSet, models.NodeTypeSet},
			UseCase:     "route incoming requests to different branches depending on conditions",
			Complexity:  models.ComplexityMedium,
		},
		{
			Name:        PatternDataTransformation,
			Description: "Load data, reshape it with code and format the output",
			NodeTypes:   []string{models.NodeTypeManualTrigger, models.NodeTypeHTTPRequest, models.NodeTypeCode, models.NodeTypeSet},
			UseCase:     "transform, clean and format data between systems",
			Complexity:  models.ComplexitySimple,
		},
		{
			Name:        PatternEmailNotification,
			Description: "Send an email when an incoming event meets a condition",
			NodeTypes:   []string{models.NodeTypeWebhook, models.NodeTypeIf, models.NodeTypeEmailSend},
			UseCase:     "send email notifications when alerts or events arrive",
			Complexity:  models.ComplexitySimple,
		},
		{
			Name:        PatternBatchProcessing,
			Description: "Read rows from a database, process them in batches and merge the results",
			NodeTypes: []string{
				models.NodeTypeManualTrigger, models.NodeTypePostgres, models.NodeTypeSplitInBatches,
				models.NodeTypeCode, models.NodeTypeMerge,
			},
			UseCase:    "split large datasets into batches, process each batch and merge the results",
			Complexity: models.ComplexityComplex,
		},
	}
}

// PatternByName returns the pattern with the given name.
func PatternByName(name string) (*models.WorkflowPattern, bool) {
	for _, p := range Patterns() {
		if p.Name == name {
			return p, true
		}
	}

	return nil, false
}
