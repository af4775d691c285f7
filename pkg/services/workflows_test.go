package services

import (
	"context"
	"testing"
	"time"

	"github.com/dukex/flowgen/pkg/catalog"
	"github.com/dukex/flowgen/pkg/models"
	"github.com/dukex/flowgen/pkg/persistence/file"
	"github.com/dukex/flowgen/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorkflowService(t *testing.T) (*Workflows, *GenerationStore) {
	t.Helper()

	sessions := NewGenerationStore(time.Minute)

	return NewWorkflows(testLogger(), file.NewPersistence(t.TempDir()), sessions, nil, nil), sessions
}

func TestWorkflows_RequiresAuthentication(t *testing.T) {
	service, _ := newWorkflowService(t)
	ctx := context.Background()

	_, err := service.SaveWorkflow(ctx, "", SaveWorkflowRequest{Name: "x", Document: testutil.CreateTestDocument()})
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = service.ListWorkflows(ctx, "")
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = service.GetWorkflow(ctx, "", "wf-1")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestWorkflows_SaveDocument(t *testing.T) {
	service, _ := newWorkflowService(t)
	ctx := context.Background()

	conversation := "conv-1"
	saved, err := service.SaveWorkflow(ctx, "user-1", SaveWorkflowRequest{
		Document:       testutil.CreateTestDocument(),
		ConversationID: &conversation,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "Test Workflow", saved.Name)
	assert.Equal(t, models.WorkflowStatusDraft, saved.Status)
	assert.Equal(t, "user-1", saved.OwnerID)

	got, err := service.GetWorkflow(ctx, "user-1", saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)

	_, err = service.GetWorkflow(ctx, "user-2", saved.ID)
	assert.True(t, IsNotFoundError(err))
}

func TestWorkflows_SaveValidation(t *testing.T) {
	service, _ := newWorkflowService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		req   SaveWorkflowRequest
		check func(error) bool
	}{
		{
			name:  "no document",
			req:   SaveWorkflowRequest{Name: "x"},
			check: IsValidationError,
		},
		{
			name: "no name",
			req: SaveWorkflowRequest{Document: &models.WorkflowDocument{
				Nodes: []*models.DocumentNode{testutil.CreateTestNode()},
			}},
			check: IsValidationError,
		},
		{
			name: "bad status",
			req: SaveWorkflowRequest{
				Name:     "x",
				Document: testutil.CreateTestDocument(),
				Status:   "archived",
			},
			check: IsValidationError,
		},
		{
			name: "duplicate node names",
			req: SaveWorkflowRequest{Name: "x", Document: &models.WorkflowDocument{
				Nodes: []*models.DocumentNode{testutil.CreateTestNode(), testutil.CreateTestNode()},
			}},
			check: IsConflictError,
		},
		{
			name: "null node",
			req: SaveWorkflowRequest{Name: "x", Document: &models.WorkflowDocument{
				Nodes: []*models.DocumentNode{testutil.CreateTestNode(), nil},
			}},
			check: IsValidationError,
		},
		{
			name:  "expired generation",
			req:   SaveWorkflowRequest{GenerationID: "gone"},
			check: IsNotFoundError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.SaveWorkflow(ctx, "user-1", tt.req)
			require.Error(t, err)
			assert.True(t, tt.check(err), err.Error())
		})
	}
}

func TestWorkflows_SaveGeneration(t *testing.T) {
	service, sessions := newWorkflowService(t)
	ctx := context.Background()

	generator := newTestGenerator(t, catalog.StaticSource(catalog.Builtin()))
	generation := generator.Generate(ctx, "Create a webhook that validates and processes incoming data")
	sessions.Put("user-1", generation)

	_, err := service.SaveWorkflow(ctx, "user-2", SaveWorkflowRequest{GenerationID: generation.ID})
	assert.ErrorIs(t, err, ErrGenerationNotFound)

	saved, err := service.SaveWorkflow(ctx, "user-1", SaveWorkflowRequest{GenerationID: generation.ID, IsPublic: true})
	require.NoError(t, err)

	assert.Equal(t, generation.Workflow.Name, saved.Name)
	assert.Equal(t, generation.Description, saved.Description)
	assert.Len(t, saved.Document.Nodes, 4)

	_, ok := sessions.Get(generation.ID, "user-1")
	assert.False(t, ok, "saved generations leave the session store")

	visible, err := service.ListWorkflows(ctx, "user-2")
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, saved.ID, visible[0].ID)
}

func TestWorkflows_HealthCheck(t *testing.T) {
	service, _ := newWorkflowService(t)

	message, ok := service.HealthCheck(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "Persistence layer is healthy", message)
}
