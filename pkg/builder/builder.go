// Package builder instantiates generated workflows from a classification or a
// named pattern.
package builder

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/dukex/flowgen/pkg/models"
	"github.com/google/uuid"
)

const (
	// DefaultName is used when a description yields no usable words.
	DefaultName = "Generated Workflow"

	startX     = 250
	stepX      = 220
	baseY      = 300
	branchStep = 100
)

// Catalog reports which node types can be instantiated.
type Catalog interface {
	Lookup(ctx context.Context, typeID string) (*models.NodeTypeDefinition, bool)
}

// IDGenerator returns a new unique identifier.
type IDGenerator func() string

// Option configures a Builder.
type Option func(*Builder)

// WithIDGenerator replaces the uuid based id generator.
func WithIDGenerator(gen IDGenerator) Option {
	return func(b *Builder) { b.newID = gen }
}

// Builder turns a workflow type and description into a GeneratedWorkflow.
type Builder struct {
	catalog Catalog
	newID   IDGenerator
}

// New creates a builder. A nil catalog allows every node type.
func New(catalog Catalog, opts ...Option) *Builder {
	b := &Builder{
		catalog: catalog,
		newID:   uuid.NewString,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// step is one planned node.
type step struct {
	typeID  string
	name    string
	yOffset int
	field   string
	value   string
}

// plan is a strategy's node sequence and wiring.
type plan struct {
	steps  []step
	branch bool
}

// Build runs the strategy for workflowType. Node types missing from the
// catalog are skipped and the remaining nodes chained, so the result may be
// smaller than planned or empty, but Build never fails.
func (b *Builder) Build(ctx context.Context, workflowType models.WorkflowType, description string) *models.GeneratedWorkflow {
	var p plan

	switch workflowType {
	case models.WorkflowTypeWebhook:
		p = webhookPlan(description)
	case models.WorkflowTypeScheduled:
		p = scheduledPlan(description)
	case models.WorkflowTypeConditional:
		p = conditionalPlan()
	case models.WorkflowTypeDataProcessing:
		p = dataProcessingPlan(description)
	default:
		workflowType = models.WorkflowTypeBasic
		p = basicPlan()
	}

	return b.instantiate(ctx, workflowType, description, p)
}

// FromPattern chains the pattern's node types in order.
func (b *Builder) FromPattern(ctx context.Context, pattern *models.WorkflowPattern, description string) *models.GeneratedWorkflow {
	p := plan{steps: make([]step, 0, len(pattern.NodeTypes))}

	for _, typeID := range pattern.NodeTypes {
		p.steps = append(p.steps, step{typeID: typeID, name: b.displayName(ctx, typeID)})
	}

	if strings.TrimSpace(description) == "" {
		description = pattern.Description
	}

	wf := b.instantiate(ctx, models.WorkflowTypePattern, description, p)
	if Name(description) == DefaultName {
		wf.Name = pattern.Name
	}

	return wf
}

func (b *Builder) instantiate(ctx context.Context, workflowType models.WorkflowType, description string, p plan) *models.GeneratedWorkflow {
	name := Name(description)

	wf := &models.GeneratedWorkflow{
		ID:          b.newID(),
		Name:        name,
		Description: description,
		Type:        workflowType,
		Nodes:       make([]*models.GeneratedNode, 0, len(p.steps)),
		Connections: make([]*models.Connection, 0, len(p.steps)),
	}

	usedNames := make(map[string]int, len(p.steps))
	planned := make([]bool, len(p.steps))

	for i, s := range p.steps {
		if !b.available(ctx, s.typeID) {
			continue
		}

		planned[i] = true
		index := len(wf.Nodes)

		node := &models.GeneratedNode{
			ID:          b.newID(),
			Name:        uniqueName(usedNames, s.name),
			Type:        s.typeID,
			TypeVersion: TypeVersion(s.typeID),
			Position:    models.Position{startX + index*stepX, baseY + s.yOffset},
			Parameters: defaultParameters(s.typeID, paramContext{
				Description: description,
				Name:        name,
				Field:       s.field,
				Value:       s.value,
			}),
		}

		if s.typeID == models.NodeTypeWebhook {
			node.WebhookID = b.newID()
		}

		wf.Nodes = append(wf.Nodes, node)
	}

	complete := true
	for _, ok := range planned {
		complete = complete && ok
	}

	if p.branch && complete && len(wf.Nodes) == 4 {
		wf.Connections = branchConnections(wf.Nodes)
	} else {
		wf.Connections = linearConnections(wf.Nodes)
		resetBranchOffsets(wf.Nodes)
	}

	return wf
}

func (b *Builder) available(ctx context.Context, typeID string) bool {
	if b.catalog == nil {
		return true
	}

	_, ok := b.catalog.Lookup(ctx, typeID)

	return ok
}

func (b *Builder) displayName(ctx context.Context, typeID string) string {
	if b.catalog != nil {
		if def, ok := b.catalog.Lookup(ctx, typeID); ok && def.DisplayName != "" {
			return def.DisplayName
		}
	}

	return titleWord(models.ShortName(typeID))
}

func linearConnections(nodes []*models.GeneratedNode) []*models.Connection {
	conns := make([]*models.Connection, 0, len(nodes))

	for i := 0; i+1 < len(nodes); i++ {
		conns = append(conns, &models.Connection{From: nodes[i].ID, To: nodes[i+1].ID})
	}

	return conns
}

// branchConnections wires node0 -> node1, then node1 output 0 -> node2 and
// output 1 -> node3.
func branchConnections(nodes []*models.GeneratedNode) []*models.Connection {
	return []*models.Connection{
		{From: nodes[0].ID, To: nodes[1].ID},
		{From: nodes[1].ID, To: nodes[2].ID, Output: 0},
		{From: nodes[1].ID, To: nodes[3].ID, Output: 1},
	}
}

func resetBranchOffsets(nodes []*models.GeneratedNode) {
	for _, n := range nodes {
		n.Position[1] = baseY
	}
}

func uniqueName(used map[string]int, name string) string {
	used[name]++
	if used[name] == 1 {
		return name
	}

	for {
		candidate := fmt.Sprintf("%s %d", name, used[name])
		if _, taken := used[candidate]; !taken {
			used[candidate] = 1

			return candidate
		}

		used[name]++
	}
}

// Name capitalizes the first four words longer than two characters.
func Name(description string) string {
	words := make([]string, 0, 4)

	for _, field := range strings.Fields(description) {
		word := strings.TrimFunc(field, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})

		if len([]rune(word)) <= 2 {
			continue
		}

		words = append(words, titleWord(word))
		if len(words) == 4 {
			break
		}
	}

	if len(words) == 0 {
		return DefaultName
	}

	return strings.Join(words, " ")
}

// titleWord upper-cases the first rune and keeps the rest as written so
// acronyms like API survive.
func titleWord(word string) string {
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}

	runes[0] = unicode.ToUpper(runes[0])

	return string(runes)
}
