package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkflowDocument_NullNodes(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"nodes":[null,{"name":"Call","type":"n8n-nodes-base.httpRequest"},null]}`))
	require.NoError(t, err)

	assert.Equal(t, []int{0, 2}, doc.NullNodes())
	assert.Equal(t, 1, doc.CountType(NodeTypeHTTPRequest))
	assert.Empty(t, doc.DuplicateNodeNames())

	_, ok := doc.Node("Call")
	assert.True(t, ok)

	_, ok = doc.Node("")
	assert.False(t, ok)
}

func TestWorkflowDocument_DuplicateNodeNames(t *testing.T) {
	doc := &WorkflowDocument{Nodes: []*DocumentNode{
		{Name: "Call"},
		{Name: "Shape"},
		{Name: "Call"},
		{Name: "Call"},
		{Name: "Shape"},
		{Name: "Done"},
	}}

	assert.Equal(t, []string{"Call", "Shape"}, doc.DuplicateNodeNames())
}
