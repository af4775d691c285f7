// Package persistence provides the storage abstraction for the node catalog,
// saved workflows and workflow templates.
package persistence

import (
	"context"

	"github.com/dukex/flowgen/pkg/models"
)

// Persistence is implemented by every storage backend. Lookups by id return
// nil and no error when the row does not exist. List calls apply the
// "owner or public" rule for viewerID.
type Persistence interface {
	NodeTypes(ctx context.Context) ([]*models.NodeTypeDefinition, error)
	SaveNodeTypes(ctx context.Context, defs []*models.NodeTypeDefinition) error

	SaveWorkflow(ctx context.Context, workflow *models.Workflow) error
	WorkflowByID(ctx context.Context, id string) (*models.Workflow, error)
	Workflows(ctx context.Context, viewerID string) ([]*models.Workflow, error)

	SaveTemplate(ctx context.Context, template *models.WorkflowTemplate) error
	Templates(ctx context.Context, viewerID string) ([]*models.WorkflowTemplate, error)

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
