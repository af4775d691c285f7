package models

// Complexity tags a workflow pattern or a generated workflow.
type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityMedium  Complexity = "medium"
	ComplexityComplex Complexity = "complex"
)

// WorkflowPattern is a named, fixed node-type sequence representing a common
// automation shape.
type WorkflowPattern struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	NodeTypes   []string   `json:"node_types"`
	UseCase     string     `json:"use_case"`
	Complexity  Complexity `json:"complexity"`
}

// Includes reports whether the pattern uses the given node type.
func (p *WorkflowPattern) Includes(typeID string) bool {
	for _, t := range p.NodeTypes {
		if t == typeID {
			return true
		}
	}

	return false
}

// WorkflowType is the generation strategy picked by the classifier.
type WorkflowType string

const (
	WorkflowTypeWebhook        WorkflowType = "webhook"
	WorkflowTypeScheduled      WorkflowType = "scheduled"
	WorkflowTypeConditional    WorkflowType = "conditional"
	WorkflowTypeDataProcessing WorkflowType = "data_processing"
	WorkflowTypeBasic          WorkflowType = "basic"
	WorkflowTypePattern        WorkflowType = "pattern"
)
