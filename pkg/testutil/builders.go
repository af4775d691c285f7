// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"github.com/dukex/flowgen/pkg/models"
	"github.com/google/uuid"
)

// CreateTestNode creates a test DocumentNode with default values that can be overridden.
func CreateTestNode(overrides ...func(*models.DocumentNode)) *models.DocumentNode {
	node := &models.DocumentNode{
		ID:          uuid.New().String(),
		Name:        "Transform Payload",
		Type:        models.NodeTypeCode,
		TypeVersion: 2,
		Position:    [2]float64{250, 300},
		Parameters:  map[string]any{"jsCode": "return items;", "mode": "runOnceForAllItems"},
	}

	for _, override := range overrides {
		override(node)
	}

	return node
}

// WithName sets the node name.
func WithName(name string) func(*models.DocumentNode) {
	return func(n *models.DocumentNode) {
		n.Name = name
	}
}

// WithType sets the node type.
func WithType(typeID string) func(*models.DocumentNode) {
	return func(n *models.DocumentNode) {
		n.Type = typeID
	}
}

// WithParameters replaces the node parameters.
func WithParameters(parameters map[string]any) func(*models.DocumentNode) {
	return func(n *models.DocumentNode) {
		n.Parameters = parameters
	}
}

// WithPosition sets the node canvas position.
func WithPosition(x, y float64) func(*models.DocumentNode) {
	return func(n *models.DocumentNode) {
		n.Position = [2]float64{x, y}
	}
}

// CreateTestDocument creates a two node webhook → code document.
func CreateTestDocument() *models.WorkflowDocument {
	trigger := CreateTestNode(
		WithName("Incoming Webhook"),
		WithType(models.NodeTypeWebhook),
		WithParameters(map[string]any{"path": "orders", "httpMethod": "POST"}),
	)
	process := CreateTestNode(WithPosition(470, 300))

	return &models.WorkflowDocument{
		Name:  "Test Workflow",
		Nodes: []*models.DocumentNode{trigger, process},
		Connections: map[string]*models.NodeConnections{
			trigger.Name: {Main: [][]*models.ConnectionTarget{{
				{Node: process.Name, Type: models.ConnectionTypeMain, Index: 0},
			}}},
		},
		Settings: map[string]any{},
	}
}

// CreateTestWorkflow creates a draft workflow owned by ownerID.
func CreateTestWorkflow(ownerID string) *models.Workflow {
	return &models.Workflow{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Name:        "Test Workflow",
		Description: "A test workflow",
		Document:    CreateTestDocument(),
		Status:      models.WorkflowStatusDraft,
	}
}

// CreateTestTemplate creates a private template owned by ownerID.
func CreateTestTemplate(ownerID string) *models.WorkflowTemplate {
	return &models.WorkflowTemplate{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Name:        "Webhook Processor",
		Description: "Receive and process webhook payloads",
		Document:    CreateTestDocument(),
		Category:    "integration",
		Tags:        []string{"webhook", "code"},
		UseCase:     "process incoming events",
		Difficulty:  "beginner",
	}
}
