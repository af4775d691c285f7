package validator

import (
	"fmt"
	"strings"

	"github.com/dukex/flowgen/pkg/models"
	"github.com/robfig/cron/v3"
	"github.com/xeipuuv/gojsonschema"
)

// IsExpression reports whether v is an expression evaluated by the automation
// platform at run time. Expressions are not type checked.
func IsExpression(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}

	return strings.HasPrefix(s, "=") || strings.Contains(s, "{{")
}

// parameterSchema builds the JSON Schema for one parameter definition.
func parameterSchema(def *models.ParameterDef) map[string]any {
	schema := map[string]any{}

	switch def.Type {
	case models.ParameterTypeString:
		schema["type"] = "string"
	case models.ParameterTypeNumber:
		schema["type"] = "number"
	case models.ParameterTypeBoolean:
		schema["type"] = "boolean"
	case models.ParameterTypeOptions:
		options := make([]any, 0, len(def.Options))
		for _, o := range def.Options {
			options = append(options, o)
		}

		schema["enum"] = options
	case models.ParameterTypeCollection:
		schema["type"] = []any{"object", "array"}
	}

	rules := def.ValidationRules
	if rules == nil {
		return schema
	}

	if rules.MinLength != nil {
		schema["minLength"] = *rules.MinLength
	}

	if rules.MaxLength != nil {
		schema["maxLength"] = *rules.MaxLength
	}

	if rules.Pattern != "" {
		schema["pattern"] = rules.Pattern
	}

	if rules.Minimum != nil {
		schema["minimum"] = *rules.Minimum
	}

	if rules.Maximum != nil {
		schema["maximum"] = *rules.Maximum
	}

	return schema
}

// checkParameter validates value against def and returns the failure reasons.
func checkParameter(def *models.ParameterDef, value any) ([]string, error) {
	if IsExpression(value) {
		return nil, nil
	}

	schemaLoader := gojsonschema.NewGoLoader(parameterSchema(def))
	dataLoader := gojsonschema.NewGoLoader(value)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return nil, fmt.Errorf("failed to validate parameter %s: %w", def.Name, err)
	}

	reasons := make([]string, 0)
	for _, resultErr := range result.Errors() {
		reasons = append(reasons, resultErr.Description())
	}

	if def.ValidationRules != nil && def.ValidationRules.Cron {
		if s, ok := value.(string); ok {
			if _, err := cron.ParseStandard(s); err != nil {
				reasons = append(reasons, "invalid cron expression: "+err.Error())
			}
		}
	}

	return reasons, nil
}

// parameterHint describes what a valid value looks like.
func parameterHint(def *models.ParameterDef) string {
	switch def.Type {
	case models.ParameterTypeOptions:
		return fmt.Sprintf("Use one of: %s", strings.Join(def.Options, ", "))
	case models.ParameterTypeNumber:
		return "Provide a numeric value"
	case models.ParameterTypeBoolean:
		return "Provide true or false"
	case models.ParameterTypeCollection:
		return "Provide an object or a list"
	}

	if def.ValidationRules != nil && def.ValidationRules.Cron {
		return "Use a five-field cron expression such as \"0 9 * * *\""
	}

	if def.ValidationRules != nil && def.ValidationRules.Pattern != "" {
		return fmt.Sprintf("Value must match %s", def.ValidationRules.Pattern)
	}

	return "Provide a text value"
}
