package catalog

import "github.com/dukex/flowgen/pkg/models"

var httpMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD"}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

// Builtin returns the reference node table used to seed the catalog.
// Each call returns fresh values that callers may mutate.
func Builtin() []*models.NodeTypeDefinition {
	return []*models.NodeTypeDefinition{
		webhookNode(),
		codeNode(),
		{
			TypeID:      models.NodeTypeFunction,
			DisplayName: "Function",
			Category:    models.CategoryTransform,
			Description: "Legacy JavaScript function node",
			Version:     1,
			Deprecated:  true,
			ReplacedBy:  models.NodeTypeCode,
			Keywords:    []string{"code", "process"},
			ParameterSchema: []*models.ParameterDef{
				{Name: "functionCode", Type: models.ParameterTypeString, Required: true, Description: "JavaScript run once for all items"},
			},
		},
		{
			TypeID:      models.NodeTypeFunctionItem,
			DisplayName: "Function Item",
			Category:    models.CategoryTransform,
			Description: "Legacy per-item JavaScript function node",
			Version:     1,
			Deprecated:  true,
			ReplacedBy:  models.NodeTypeCode,
			Keywords:    []string{"code", "process"},
			ParameterSchema: []*models.ParameterDef{
				{Name: "functionCode", Type: models.ParameterTypeString, Required: true, Description: "JavaScript run once per item"},
			},
		},
		httpRequestNode(),
		{
			TypeID:      models.NodeTypeSet,
			DisplayName: "Edit Fields (Set)",
			Category:    models.CategoryTransform,
			Description: "Add, modify or remove item fields",
			Version:     3,
			Keywords:    []string{"data", "process"},
			ParameterSchema: []*models.ParameterDef{
				{Name: "mode", Type: models.ParameterTypeOptions, Options: []string{"manual", "raw"}, DefaultValue: "manual"},
				{Name: "fields", Type: models.ParameterTypeCollection, Description: "Fields to set"},
				{Name: "includeOtherFields", Type: models.ParameterTypeBoolean, DefaultValue: false},
			},
		},
		{
			TypeID:      models.NodeTypeIf,
			DisplayName: "If",
			Category:    models.CategoryFlow,
			Description: "Route items to a true or false branch",
			Version:     2,
			Keywords:    []string{"condition"},
			ParameterSchema: []*models.ParameterDef{
				{Name: "conditions", Type: models.ParameterTypeCollection, Required: true, Description: "Conditions to evaluate"},
			},
		},
		{
			TypeID:      models.NodeTypeSwitch,
			DisplayName: "Switch",
			Category:    models.CategoryFlow,
			Description: "Route items to one of several outputs",
			Version:     3,
			Keywords:    []string{"condition", "split"},
			ParameterSchema: []*models.ParameterDef{
				{Name: "mode", Type: models.ParameterTypeOptions, Options: []string{"rules", "expression"}, DefaultValue: "rules"},
				{Name: "rules", Type: models.ParameterTypeCollection},
			},
		},
		{
			TypeID:      models.NodeTypeCron,
			DisplayName: "Cron",
			Category:    models.CategoryTrigger,
			Description: "Trigger the workflow on a cron schedule",
			Version:     1,
			Keywords:    []string{"schedule"},
			ParameterSchema: []*models.ParameterDef{
				{
					Name:            "cronExpression",
					Type:            models.ParameterTypeString,
					Required:        true,
					Description:     "Standard five-field cron expression",
					ValidationRules: &models.ValidationRules{Cron: true},
				},
			},
		},
		{
			TypeID:      models.NodeTypeScheduleTrigger,
			DisplayName: "Schedule Trigger",
			Category:    models.CategoryTrigger,
			Description: "Trigger the workflow at fixed intervals",
			Version:     1,
			Keywords:    []string{"schedule"},
			ParameterSchema: []*models.ParameterDef{
				{Name: "rule", Type: models.ParameterTypeCollection, Required: true},
			},
		},
		{
			TypeID:      models.NodeTypeManualTrigger,
			DisplayName: "Manual Trigger",
			Category:    models.CategoryTrigger,
			Description: "Start the workflow by hand",
			Version:     1,
		},
		{
			TypeID:      models.NodeTypeEmailSend,
			DisplayName: "Send Email",
			Category:    models.CategoryAction,
			Description: "Send an email over SMTP",
			Version:     2,
			Keywords:    []string{"email"},
			ParameterSchema: []*models.ParameterDef{
				{Name: "fromEmail", Type: models.ParameterTypeString, Required: true},
				{Name: "toEmail", Type: models.ParameterTypeString, Required: true},
				{Name: "subject", Type: models.ParameterTypeString},
				{Name: "text", Type: models.ParameterTypeString},
			},
		},
		{
			TypeID:      models.NodeTypePostgres,
			DisplayName: "Postgres",
			Category:    models.CategoryAction,
			Description: "Read and write rows in PostgreSQL",
			Version:     2,
			Keywords:    []string{"database", "data"},
			ParameterSchema: []*models.ParameterDef{
				{Name: "operation", Type: models.ParameterTypeOptions, Options: []string{"executeQuery", "insert", "update", "delete"}, DefaultValue: "executeQuery"},
				{Name: "query", Type: models.ParameterTypeString},
			},
		},
		{
			TypeID:      models.NodeTypeSplitInBatches,
			DisplayName: "Loop Over Items",
			Category:    models.CategoryFlow,
			Description: "Split items into batches",
			Version:     3,
			Keywords:    []string{"split"},
			ParameterSchema: []*models.ParameterDef{
				{Name: "batchSize", Type: models.ParameterTypeNumber, DefaultValue: 10, ValidationRules: &models.ValidationRules{Minimum: floatPtr(1)}},
			},
		},
		{
			TypeID:      models.NodeTypeMerge,
			DisplayName: "Merge",
			Category:    models.CategoryFlow,
			Description: "Merge data from multiple inputs",
			Version:     3,
			Keywords:    []string{"merge"},
			ParameterSchema: []*models.ParameterDef{
				{Name: "mode", Type: models.ParameterTypeOptions, Options: []string{"append", "combine", "chooseBranch"}, DefaultValue: "append"},
			},
		},
		{
			TypeID:      models.NodeTypeRespondToWebhook,
			DisplayName: "Respond to Webhook",
			Category:    models.CategoryCore,
			Description: "Return data to the webhook caller",
			Version:     1,
			Keywords:    []string{"webhook", "api"},
			ParameterSchema: []*models.ParameterDef{
				{Name: "respondWith", Type: models.ParameterTypeOptions, Options: []string{"allIncomingItems", "firstIncomingItem", "json", "text", "noData"}, DefaultValue: "firstIncomingItem"},
			},
		},
		{
			TypeID:      models.NodeTypeSpreadsheetFile,
			DisplayName: "Spreadsheet File",
			Category:    models.CategoryTransform,
			Description: "Read and write spreadsheet files",
			Version:     2,
			Deprecated:  true,
			Keywords:    []string{"data"},
		},
	}
}

// Fallback returns the minimal node set used when the catalog cannot be loaded.
func Fallback() []*models.NodeTypeDefinition {
	return []*models.NodeTypeDefinition{webhookNode(), codeNode(), httpRequestNode()}
}

func webhookNode() *models.NodeTypeDefinition {
	return &models.NodeTypeDefinition{
		TypeID:      models.NodeTypeWebhook,
		DisplayName: "Webhook",
		Category:    models.CategoryTrigger,
		Description: "Start the workflow when an HTTP request is received",
		Version:     2,
		Keywords:    []string{"webhook", "api"},
		ParameterSchema: []*models.ParameterDef{
			{Name: "path", Type: models.ParameterTypeString, Required: true, ValidationRules: &models.ValidationRules{MinLength: intPtr(1), Pattern: `^[A-Za-z0-9_\-/:{}.=$ ]+$`}},
			{Name: "httpMethod", Type: models.ParameterTypeOptions, Options: httpMethods, DefaultValue: "GET"},
			{Name: "responseMode", Type: models.ParameterTypeOptions, Options: []string{"onReceived", "lastNode", "responseNode"}, DefaultValue: "onReceived"},
			{Name: "options", Type: models.ParameterTypeCollection},
		},
	}
}

func codeNode() *models.NodeTypeDefinition {
	return &models.NodeTypeDefinition{
		TypeID:      models.NodeTypeCode,
		DisplayName: "Code",
		Category:    models.CategoryTransform,
		Description: "Run custom JavaScript or Python",
		Version:     2,
		Keywords:    []string{"code", "process", "data"},
		ParameterSchema: []*models.ParameterDef{
			{Name: "jsCode", Type: models.ParameterTypeString, Required: true, ValidationRules: &models.ValidationRules{MinLength: intPtr(1)}},
			{Name: "mode", Type: models.ParameterTypeOptions, Options: []string{"runOnceForAllItems", "runOnceForEachItem"}, DefaultValue: "runOnceForAllItems"},
			{Name: "language", Type: models.ParameterTypeOptions, Options: []string{"javaScript", "python"}, DefaultValue: "javaScript"},
		},
	}
}

func httpRequestNode() *models.NodeTypeDefinition {
	return &models.NodeTypeDefinition{
		TypeID:      models.NodeTypeHTTPRequest,
		DisplayName: "HTTP Request",
		Category:    models.CategoryAction,
		Description: "Make an HTTP request to any API",
		Version:     4,
		Keywords:    []string{"api", "data"},
		ParameterSchema: []*models.ParameterDef{
			{Name: "url", Type: models.ParameterTypeString, Required: true, ValidationRules: &models.ValidationRules{Pattern: `^(https?://|=)`}},
			{Name: "method", Type: models.ParameterTypeOptions, Options: httpMethods, DefaultValue: "GET"},
			{Name: "authentication", Type: models.ParameterTypeOptions, Options: []string{"none", "genericCredentialType", "predefinedCredentialType"}, DefaultValue: "none"},
			{Name: "sendBody", Type: models.ParameterTypeBoolean},
			{Name: "options", Type: models.ParameterTypeCollection},
		},
	}
}
