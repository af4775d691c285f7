package scorer

import (
	"fmt"
	"testing"

	"github.com/dukex/flowgen/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(name, typeID string, params map[string]any) *models.DocumentNode {
	if params == nil {
		params = map[string]any{}
	}

	return &models.DocumentNode{Name: name, Type: typeID, Parameters: params}
}

func httpNode(name, auth string) *models.DocumentNode {
	return node(name, models.NodeTypeHTTPRequest, map[string]any{
		"url":            "https://api.example.com",
		"authentication": auth,
	})
}

func assertBounds(t *testing.T, s *models.Score) {
	t.Helper()

	for _, v := range []int{s.Performance, s.Security, s.Maintainability} {
		assert.GreaterOrEqual(t, v, 0)
		assert.LessOrEqual(t, v, 100)
	}
}

func TestScore_Bounds(t *testing.T) {
	many := &models.WorkflowDocument{}
	for i := range 50 {
		many.Nodes = append(many.Nodes, node(fmt.Sprintf("Node %d", i), models.NodeTypeHTTPRequest, map[string]any{
			"url":      "https://api.example.com",
			"password": "hunter2",
		}))
	}

	tests := map[string]*models.WorkflowDocument{
		"nil":           nil,
		"empty":         {Nodes: []*models.DocumentNode{}},
		"50 http nodes": many,
		"single code": {Nodes: []*models.DocumentNode{
			node("Transform", models.NodeTypeCode, map[string]any{"jsCode": "// tidy\nreturn items;"}),
		}},
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			assertBounds(t, Score(doc))
		})
	}

	s := Score(many)
	assert.Equal(t, 0, s.Performance)
	assert.Equal(t, 0, s.Security)
	assert.Equal(t, 0, s.Maintainability)
	assert.NotEmpty(t, s.Recommendations)
}

func TestScore_Performance(t *testing.T) {
	doc := &models.WorkflowDocument{}
	for i := range 7 {
		doc.Nodes = append(doc.Nodes, httpNode(fmt.Sprintf("Call %d", i), "genericCredentialType"))
	}

	for i := range 4 {
		doc.Nodes = append(doc.Nodes, node(fmt.Sprintf("Shape %d", i), models.NodeTypeSet, nil))
	}

	// -10*2 http, -5*1 set
	assert.Equal(t, 75, Score(doc).Performance)

	bonus := &models.WorkflowDocument{Nodes: []*models.DocumentNode{
		node("Transform", models.NodeTypeCode, map[string]any{"jsCode": "return items;"}),
		node("Shape", models.NodeTypeSet, nil),
	}}
	assert.Equal(t, 100, Score(bonus).Performance)
}

func TestScore_Security(t *testing.T) {
	tests := []struct {
		name string
		node *models.DocumentNode
		want int
	}{
		{
			name: "hardcoded token",
			node: node("Call", models.NodeTypeCode, map[string]any{"jsCode": "const token = 'abc';"}),
			want: 80,
		},
		{
			name: "token from expression",
			node: node("Call", models.NodeTypeCode, map[string]any{"jsCode": "const token = $env.TOKEN;"}),
			want: 100,
		},
		{
			name: "http without auth",
			node: httpNode("Call", "none"),
			want: 95,
		},
		{
			name: "http with auth",
			node: httpNode("Call", "predefinedCredentialType"),
			want: 100,
		},
		{
			name: "open webhook",
			node: node("Receive", models.NodeTypeWebhook, map[string]any{"path": "in"}),
			want: 90,
		},
		{
			name: "restricted webhook",
			node: node("Receive", models.NodeTypeWebhook, map[string]any{
				"path":    "in",
				"options": map[string]any{"allowedOrigins": "https://app.example.com"},
			}),
			want: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Score(&models.WorkflowDocument{Nodes: []*models.DocumentNode{tt.node}})
			assert.Equal(t, tt.want, s.Security)
		})
	}
}

func TestScore_Maintainability(t *testing.T) {
	t.Run("generic names", func(t *testing.T) {
		doc := &models.WorkflowDocument{Nodes: []*models.DocumentNode{
			node("set", models.NodeTypeSet, nil),
			node("Untitled", models.NodeTypeSet, nil),
			node("Node 3", models.NodeTypeSet, nil),
			node("Normalize Payload", models.NodeTypeSet, nil),
		}}

		assert.Equal(t, 85, Score(doc).Maintainability)
	})

	t.Run("http without error handling", func(t *testing.T) {
		doc := &models.WorkflowDocument{Nodes: []*models.DocumentNode{httpNode("Call", "none")}}
		assert.Equal(t, 85, Score(doc).Maintainability)

		doc.Nodes = append(doc.Nodes, node("Guard", models.NodeTypeIf, nil))
		assert.Equal(t, 100, Score(doc).Maintainability)

		withErr := &models.WorkflowDocument{Nodes: []*models.DocumentNode{
			node("Call", models.NodeTypeHTTPRequest, map[string]any{"options": map[string]any{"onError": "continue"}}),
		}}
		assert.Equal(t, 100, Score(withErr).Maintainability)
	})

	t.Run("large workflow", func(t *testing.T) {
		doc := &models.WorkflowDocument{}
		for i := range 25 {
			doc.Nodes = append(doc.Nodes, node(fmt.Sprintf("Step %d", i), models.NodeTypeMerge, nil))
		}

		assert.Equal(t, 90, Score(doc).Maintainability)
	})

	t.Run("commented code is capped", func(t *testing.T) {
		doc := &models.WorkflowDocument{Nodes: []*models.DocumentNode{
			node("Transform", models.NodeTypeCode, map[string]any{"jsCode": "// enrich\nreturn items;"}),
		}}

		assert.Equal(t, 100, Score(doc).Maintainability)
	})
}

func TestScore_NullNodes(t *testing.T) {
	doc, err := models.ParseDocument([]byte(`{"nodes":[null,{"name":"Call","type":"n8n-nodes-base.httpRequest","parameters":{"authentication":"none"}}]}`))
	require.NoError(t, err)

	s := Score(doc)
	assertBounds(t, s)
	assert.Equal(t, 95, s.Security)
	assert.Equal(t, 85, s.Maintainability)
}
