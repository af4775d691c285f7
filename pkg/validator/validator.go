// Package validator checks workflow documents against the node catalog and
// rewrites deprecated nodes that have a registered migration.
package validator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/dukex/flowgen/pkg/models"
)

const (
	// MissingNodesMessage is the single issue reported for documents without a nodes field.
	MissingNodesMessage = "Workflow must contain nodes array"

	maxSetNodes = 3
)

// ErrMissingNodes is returned by Autofix for documents without a nodes field.
var ErrMissingNodes = errors.New("workflow must contain nodes array")

// Catalog resolves node types.
type Catalog interface {
	Lookup(ctx context.Context, typeID string) (*models.NodeTypeDefinition, bool)
}

// Option configures a Validator.
type Option func(*Validator)

// WithRegistry replaces the default migration registry.
func WithRegistry(registry *Registry) Option {
	return func(v *Validator) { v.registry = registry }
}

// Validator runs the validation passes over workflow documents.
type Validator struct {
	catalog  Catalog
	registry *Registry
	logger   *slog.Logger
}

// New creates a validator.
func New(logger *slog.Logger, catalog Catalog, opts ...Option) *Validator {
	v := &Validator{
		catalog:  catalog,
		registry: DefaultRegistry(),
		logger:   logger,
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// Validate checks every node, every connection and the structural suggestions.
// Problems are reported as issues, never as errors.
func (v *Validator) Validate(ctx context.Context, doc *models.WorkflowDocument) *models.WorkflowValidationResult {
	if doc == nil || doc.Nodes == nil {
		return &models.WorkflowValidationResult{
			IsValid: false,
			Issues: []*models.ValidationIssue{{
				Type:    models.IssueTypeError,
				Message: MissingNodesMessage,
			}},
		}
	}

	issues := make([]*models.ValidationIssue, 0)

	for i, node := range doc.Nodes {
		if node == nil {
			issues = append(issues, &models.ValidationIssue{
				Type:       models.IssueTypeError,
				Message:    fmt.Sprintf("Node at index %d is null", i),
				Suggestion: "Remove the empty entry from the nodes array",
			})

			continue
		}

		issues = append(issues, v.validateNode(ctx, node)...)
	}

	issues = append(issues, validateNodeNames(doc)...)
	issues = append(issues, validateConnections(doc)...)
	issues = append(issues, suggestions(doc)...)

	result := &models.WorkflowValidationResult{Issues: issues}
	result.IsValid = result.Count(models.IssueTypeError) == 0

	for _, issue := range issues {
		if !issue.AutoFix {
			continue
		}

		fixed, err := v.Autofix(ctx, doc)
		if err != nil {
			v.logger.ErrorContext(ctx, "Failed to build modernized workflow", "error", err)

			break
		}

		result.ModernizedWorkflow = fixed.Fixed

		break
	}

	return result
}

// Autofix returns a patched deep copy of doc with every node that has a
// registered migration rewritten. The input is left untouched and running it
// again on the output yields no further changes.
func (v *Validator) Autofix(_ context.Context, doc *models.WorkflowDocument) (*models.AutofixResult, error) {
	if doc == nil || doc.Nodes == nil {
		return nil, ErrMissingNodes
	}

	fixed, err := doc.Clone()
	if err != nil {
		return nil, fmt.Errorf("failed to copy workflow: %w", err)
	}

	changes := make([]string, 0)

	for _, node := range fixed.Nodes {
		if node == nil {
			continue
		}

		migration, ok := v.registry.Lookup(node.Type)
		if !ok {
			continue
		}

		changes = append(changes, migration.Apply(node))
	}

	return &models.AutofixResult{Fixed: fixed, Changes: changes}, nil
}

func (v *Validator) validateNode(ctx context.Context, node *models.DocumentNode) []*models.ValidationIssue {
	issues := make([]*models.ValidationIssue, 0)

	def, ok := v.catalog.Lookup(ctx, node.Type)
	if !ok {
		return append(issues, &models.ValidationIssue{
			Type:       models.IssueTypeError,
			NodeID:     node.ID,
			NodeName:   node.Name,
			Message:    fmt.Sprintf("Unknown node type: %s", node.Type),
			Suggestion: "Use a node type from the catalog",
		})
	}

	if def.Deprecated {
		issues = append(issues, v.deprecationIssue(ctx, node, def))
	}

	for _, param := range def.ParameterSchema {
		value, present := node.Parameters[param.Name]
		empty := !present || value == nil || value == ""

		if empty {
			if param.Required {
				issues = append(issues, &models.ValidationIssue{
					Type:       models.IssueTypeError,
					NodeID:     node.ID,
					NodeName:   node.Name,
					Parameter:  param.Name,
					Message:    fmt.Sprintf("Missing required parameter: %s", param.Name),
					Suggestion: parameterHint(param),
				})
			}

			continue
		}

		reasons, err := checkParameter(param, value)
		if err != nil {
			v.logger.ErrorContext(ctx, "Parameter schema check failed", "node_type", def.TypeID, "parameter", param.Name, "error", err)

			continue
		}

		for _, reason := range reasons {
			issues = append(issues, &models.ValidationIssue{
				Type:       models.IssueTypeError,
				NodeID:     node.ID,
				NodeName:   node.Name,
				Parameter:  param.Name,
				Message:    fmt.Sprintf("Invalid value for parameter %s: %s", param.Name, reason),
				Suggestion: parameterHint(param),
			})
		}
	}

	return issues
}

func (v *Validator) deprecationIssue(ctx context.Context, node *models.DocumentNode, def *models.NodeTypeDefinition) *models.ValidationIssue {
	_, fixable := v.registry.Lookup(node.Type)

	suggestion := "This node type is deprecated; replace it with a supported alternative"

	if def.ReplacedBy != "" {
		name := def.ReplacedBy
		if successor, ok := v.catalog.Lookup(ctx, def.ReplacedBy); ok {
			name = successor.DisplayName
		}

		suggestion = fmt.Sprintf("Replace with the %s node", name)
	}

	return &models.ValidationIssue{
		Type:       models.IssueTypeWarning,
		NodeID:     node.ID,
		NodeName:   node.Name,
		Message:    fmt.Sprintf("Node type %s is deprecated", def.DisplayName),
		Suggestion: suggestion,
		AutoFix:    fixable,
	}
}

func validateNodeNames(doc *models.WorkflowDocument) []*models.ValidationIssue {
	issues := make([]*models.ValidationIssue, 0)

	for _, name := range doc.DuplicateNodeNames() {
		issues = append(issues, &models.ValidationIssue{
			Type:       models.IssueTypeError,
			NodeName:   name,
			Message:    fmt.Sprintf("Node name %q is used by more than one node", name),
			Suggestion: "Give every node a unique name; connections refer to nodes by name",
		})
	}

	return issues
}

func validateConnections(doc *models.WorkflowDocument) []*models.ValidationIssue {
	issues := make([]*models.ValidationIssue, 0)

	sources := make([]string, 0, len(doc.Connections))
	for name := range doc.Connections {
		sources = append(sources, name)
	}

	sort.Strings(sources)

	for _, source := range sources {
		if _, ok := doc.Node(source); !ok {
			issues = append(issues, &models.ValidationIssue{
				Type:       models.IssueTypeError,
				NodeName:   source,
				Message:    fmt.Sprintf("Connection source %q does not exist", source),
				Suggestion: "Remove the connection or add the missing node",
			})
		}

		conns := doc.Connections[source]
		if conns == nil {
			continue
		}

		for _, port := range conns.Main {
			for _, target := range port {
				if target == nil {
					continue
				}

				if _, ok := doc.Node(target.Node); ok {
					continue
				}

				issues = append(issues, &models.ValidationIssue{
					Type:       models.IssueTypeError,
					NodeName:   source,
					Message:    fmt.Sprintf("Connection target %q from %q does not exist", target.Node, source),
					Suggestion: "Remove the connection or add the missing node",
				})
			}
		}
	}

	return issues
}

func suggestions(doc *models.WorkflowDocument) []*models.ValidationIssue {
	issues := make([]*models.ValidationIssue, 0)

	if doc.CountType(models.NodeTypeSet) > maxSetNodes {
		issues = append(issues, &models.ValidationIssue{
			Type:       models.IssueTypeSuggestion,
			Message:    "Workflow uses many Set nodes",
			Suggestion: "Consolidate the Set nodes into a single Code node",
		})
	}

	conditionals := doc.CountType(models.NodeTypeIf) + doc.CountType(models.NodeTypeSwitch)
	if doc.CountType(models.NodeTypeHTTPRequest) > 0 && conditionals == 0 {
		issues = append(issues, &models.ValidationIssue{
			Type:       models.IssueTypeSuggestion,
			Message:    "HTTP requests have no error handling",
			Suggestion: "Add an If node to branch on failed responses",
		})
	}

	return issues
}
