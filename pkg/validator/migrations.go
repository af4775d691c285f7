package validator

import (
	"fmt"
	"strings"

	"github.com/dukex/flowgen/pkg/models"
)

// Migration rewrites one deprecated node type into its successor. Apply
// mutates the node in place and returns a description of the change.
type Migration struct {
	From  string
	To    string
	Apply func(node *models.DocumentNode) string
}

// Registry holds the migrations the auto-fixer knows how to run. Deprecated
// types without a registered migration are reported but never rewritten.
type Registry struct {
	byType map[string]*Migration
}

// NewRegistry creates a registry with the given migrations.
func NewRegistry(migrations ...*Migration) *Registry {
	r := &Registry{byType: make(map[string]*Migration, len(migrations))}

	for _, m := range migrations {
		r.Register(m)
	}

	return r
}

// DefaultRegistry returns the built-in migrations.
func DefaultRegistry() *Registry {
	return NewRegistry(FunctionToCode())
}

// Register adds m, replacing any migration for the same source type.
func (r *Registry) Register(m *Migration) {
	r.byType[registryKey(m.From)] = m
}

// Lookup returns the migration for typeID. Namespaces are ignored.
func (r *Registry) Lookup(typeID string) (*Migration, bool) {
	m, ok := r.byType[registryKey(typeID)]

	return m, ok
}

func registryKey(typeID string) string {
	return strings.ToLower(models.ShortName(typeID))
}

// FunctionToCode rewrites the legacy function node into a code node.
func FunctionToCode() *Migration {
	return &Migration{
		From: models.NodeTypeFunction,
		To:   models.NodeTypeCode,
		Apply: func(node *models.DocumentNode) string {
			if node.Parameters == nil {
				node.Parameters = map[string]any{}
			}

			moved := false
			if code, ok := node.Parameters["functionCode"]; ok {
				node.Parameters["jsCode"] = code
				delete(node.Parameters, "functionCode")

				moved = true
			}

			node.Type = models.NodeTypeCode
			node.TypeVersion = 2
			node.Parameters["mode"] = "runOnceForAllItems"

			if moved {
				return fmt.Sprintf("Converted %q from Function to Code node (functionCode moved to jsCode)", node.Name)
			}

			return fmt.Sprintf("Converted %q from Function to Code node", node.Name)
		},
	}
}
