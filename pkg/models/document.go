package models

import (
	"encoding/json"
	"strings"
)

// ConnectionTypeMain is the only connection type emitted by the generator.
const ConnectionTypeMain = "main"

// WorkflowDocument is the export format consumed by the automation platform.
// Connections are keyed by source node name and grouped by output port index.
// A nil Nodes slice means the "nodes" field was absent from the input.
type WorkflowDocument struct {
	Name        string                      `json:"name"`
	Nodes       []*DocumentNode             `json:"nodes"`
	Connections map[string]*NodeConnections `json:"connections"`
	Active      bool                        `json:"active"`
	Settings    map[string]any              `json:"settings"`
}

// DocumentNode is a node inside a WorkflowDocument.
type DocumentNode struct {
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	TypeVersion float64        `json:"typeVersion"`
	Position    [2]float64     `json:"position"`
	Parameters  map[string]any `json:"parameters"`
	WebhookID   string         `json:"webhookId,omitempty"`
}

// NodeConnections holds the outgoing edges of one node, one slice per output port.
type NodeConnections struct {
	Main [][]*ConnectionTarget `json:"main"`
}

// ConnectionTarget is the receiving end of an edge.
type ConnectionTarget struct {
	Node  string `json:"node"`
	Type  string `json:"type"`
	Index int    `json:"index"`
}

// IsType reports whether typeID names the same node type as want, comparing the
// trailing segment so foreign namespaces of the same node still match.
func IsType(typeID, want string) bool {
	return strings.EqualFold(ShortName(typeID), ShortName(want))
}

// Node returns the node with the given name.
func (d *WorkflowDocument) Node(name string) (*DocumentNode, bool) {
	for _, n := range d.Nodes {
		if n != nil && n.Name == name {
			return n, true
		}
	}

	return nil, false
}

// CountType returns how many nodes are of the given type.
func (d *WorkflowDocument) CountType(typeID string) int {
	count := 0

	for _, n := range d.Nodes {
		if n != nil && IsType(n.Type, typeID) {
			count++
		}
	}

	return count
}

// NullNodes returns the indexes of null entries in the nodes array.
func (d *WorkflowDocument) NullNodes() []int {
	var indexes []int

	for i, n := range d.Nodes {
		if n == nil {
			indexes = append(indexes, i)
		}
	}

	return indexes
}

// DuplicateNodeNames returns every node name used more than once, in order of
// first repetition. Connections are keyed by name, so such documents are ambiguous.
func (d *WorkflowDocument) DuplicateNodeNames() []string {
	seen := make(map[string]int, len(d.Nodes))
	duplicates := make([]string, 0)

	for _, n := range d.Nodes {
		if n == nil {
			continue
		}

		seen[n.Name]++
		if seen[n.Name] == 2 {
			duplicates = append(duplicates, n.Name)
		}
	}

	return duplicates
}

// ConnectionCount returns the number of edges across all ports.
func (d *WorkflowDocument) ConnectionCount() int {
	count := 0

	for _, conns := range d.Connections {
		if conns == nil {
			continue
		}

		for _, port := range conns.Main {
			count += len(port)
		}
	}

	return count
}

// Clone returns a deep copy of the document.
func (d *WorkflowDocument) Clone() (*WorkflowDocument, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}

	var clone WorkflowDocument

	if err := json.Unmarshal(data, &clone); err != nil {
		return nil, err
	}

	return &clone, nil
}

// ParseDocument decodes a workflow document from JSON.
func ParseDocument(data []byte) (*WorkflowDocument, error) {
	var doc WorkflowDocument

	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	return &doc, nil
}
