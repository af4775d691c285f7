package models

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateNodeName is returned when a workflow cannot be projected to the
	// name-keyed export format because two nodes share a name.
	ErrDuplicateNodeName = errors.New("duplicate node name")

	// ErrUnknownConnectionEndpoint is returned when a connection references a node id
	// that is not part of the workflow.
	ErrUnknownConnectionEndpoint = errors.New("connection references unknown node")
)

// Position is a canvas coordinate, serialized as [x, y].
type Position [2]int

// X returns the horizontal coordinate.
func (p Position) X() int { return p[0] }

// Y returns the vertical coordinate.
func (p Position) Y() int { return p[1] }

// GeneratedNode is a node instance placed into a generated workflow.
type GeneratedNode struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	TypeVersion int            `json:"type_version"`
	Position    Position       `json:"position"`
	Parameters  map[string]any `json:"parameters"`
	WebhookID   string         `json:"webhook_id,omitempty"`
}

// Connection is a directed edge between two generated nodes, keyed by node id.
// Output is the source port index (0 for the main/true branch, 1 for false).
type Connection struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Output int    `json:"output"`
}

// GeneratedWorkflow is the aggregate produced by the builder.
type GeneratedWorkflow struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Type        WorkflowType     `json:"type"`
	Nodes       []*GeneratedNode `json:"nodes"`
	Connections []*Connection    `json:"connections"`
}

// NodeByID returns the node with the given id.
func (w *GeneratedWorkflow) NodeByID(id string) (*GeneratedNode, bool) {
	for _, n := range w.Nodes {
		if n.ID == id {
			return n, true
		}
	}

	return nil, false
}

// Document projects the workflow to the name-keyed export format. Names must be
// unique at this boundary.
func (w *GeneratedWorkflow) Document() (*WorkflowDocument, error) {
	names := make(map[string]string, len(w.Nodes))
	seen := make(map[string]bool, len(w.Nodes))
	nodes := make([]*DocumentNode, 0, len(w.Nodes))

	for _, n := range w.Nodes {
		if seen[n.Name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateNodeName, n.Name)
		}

		seen[n.Name] = true
		names[n.ID] = n.Name

		parameters := n.Parameters
		if parameters == nil {
			parameters = map[string]any{}
		}

		nodes = append(nodes, &DocumentNode{
			ID:          n.ID,
			Name:        n.Name,
			Type:        n.Type,
			TypeVersion: float64(n.TypeVersion),
			Position:    [2]float64{float64(n.Position.X()), float64(n.Position.Y())},
			Parameters:  parameters,
			WebhookID:   n.WebhookID,
		})
	}

	connections := make(map[string]*NodeConnections)

	for _, c := range w.Connections {
		from, ok := names[c.From]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownConnectionEndpoint, c.From)
		}

		to, ok := names[c.To]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownConnectionEndpoint, c.To)
		}

		conns, ok := connections[from]
		if !ok {
			conns = &NodeConnections{Main: [][]*ConnectionTarget{}}
			connections[from] = conns
		}

		for len(conns.Main) <= c.Output {
			conns.Main = append(conns.Main, []*ConnectionTarget{})
		}

		conns.Main[c.Output] = append(conns.Main[c.Output], &ConnectionTarget{
			Node:  to,
			Type:  ConnectionTypeMain,
			Index: 0,
		})
	}

	return &WorkflowDocument{
		Name:        w.Name,
		Nodes:       nodes,
		Connections: connections,
		Active:      false,
		Settings:    map[string]any{},
	}, nil
}

// PreviewNode is the reduced node shape used by the UI canvas preview.
type PreviewNode struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	DisplayType string   `json:"display_type"`
	Position    Position `json:"position"`
}

// PreviewEdge is a flattened connection between two node names.
type PreviewEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Preview is the UI projection of a generated workflow.
type Preview struct {
	Nodes       []PreviewNode `json:"nodes"`
	Connections []PreviewEdge `json:"connections"`
}

// Preview returns the UI projection of the workflow. Edges whose endpoints are
// missing are skipped.
func (w *GeneratedWorkflow) Preview() Preview {
	preview := Preview{
		Nodes:       make([]PreviewNode, 0, len(w.Nodes)),
		Connections: make([]PreviewEdge, 0, len(w.Connections)),
	}

	for _, n := range w.Nodes {
		preview.Nodes = append(preview.Nodes, PreviewNode{
			ID:          n.ID,
			Name:        n.Name,
			DisplayType: ShortName(n.Type),
			Position:    n.Position,
		})
	}

	for _, c := range w.Connections {
		from, okFrom := w.NodeByID(c.From)
		to, okTo := w.NodeByID(c.To)

		if !okFrom || !okTo {
			continue
		}

		preview.Connections = append(preview.Connections, PreviewEdge{From: from.Name, To: to.Name})
	}

	return preview
}
