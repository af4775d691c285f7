package testutil

import (
	"context"
	"testing"

	"github.com/dukex/flowgen/pkg/catalog"
	"github.com/dukex/flowgen/pkg/models"
	"github.com/dukex/flowgen/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunPersistenceTests exercises the behaviour every persistence backend shares.
// newStore must return an empty store.
func RunPersistenceTests(t *testing.T, newStore func(t *testing.T) persistence.Persistence) {
	t.Helper()

	t.Run("health check", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.HealthCheck(context.Background()))
	})

	t.Run("node types round trip in order", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		empty, err := store.NodeTypes(ctx)
		require.NoError(t, err)
		assert.Empty(t, empty)

		defs := catalog.Builtin()
		require.NoError(t, store.SaveNodeTypes(ctx, defs))

		loaded, err := store.NodeTypes(ctx)
		require.NoError(t, err)
		require.Len(t, loaded, len(defs))

		for i, def := range defs {
			assert.Equal(t, def.TypeID, loaded[i].TypeID)
			assert.Equal(t, def.Deprecated, loaded[i].Deprecated)
			assert.Equal(t, def.ReplacedBy, loaded[i].ReplacedBy)
			assert.Len(t, loaded[i].ParameterSchema, len(def.ParameterSchema))
		}

		require.NoError(t, store.SaveNodeTypes(ctx, catalog.Fallback()))

		loaded, err = store.NodeTypes(ctx)
		require.NoError(t, err)
		assert.Len(t, loaded, len(catalog.Fallback()))
	})

	t.Run("workflow save and lookup", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		workflow := CreateTestWorkflow("user-1")
		conversation := "conversation-1"
		workflow.ConversationID = &conversation

		require.NoError(t, store.SaveWorkflow(ctx, workflow))
		assert.False(t, workflow.CreatedAt.IsZero())
		assert.False(t, workflow.UpdatedAt.IsZero())

		loaded, err := store.WorkflowByID(ctx, workflow.ID)
		require.NoError(t, err)
		require.NotNil(t, loaded)

		assert.Equal(t, workflow.Name, loaded.Name)
		assert.Equal(t, "user-1", loaded.OwnerID)
		assert.Equal(t, models.WorkflowStatusDraft, loaded.Status)
		require.NotNil(t, loaded.ConversationID)
		assert.Equal(t, conversation, *loaded.ConversationID)
		require.NotNil(t, loaded.Document)
		assert.Len(t, loaded.Document.Nodes, 2)
		assert.Equal(t, 1, loaded.Document.ConnectionCount())

		loaded.Status = models.WorkflowStatusDeployed
		require.NoError(t, store.SaveWorkflow(ctx, loaded))

		updated, err := store.WorkflowByID(ctx, workflow.ID)
		require.NoError(t, err)
		assert.Equal(t, models.WorkflowStatusDeployed, updated.Status)
	})

	t.Run("missing workflow returns nil", func(t *testing.T) {
		store := newStore(t)

		workflow, err := store.WorkflowByID(context.Background(), "0197a1a4-0000-7000-8000-000000000000")
		require.NoError(t, err)
		assert.Nil(t, workflow)
	})

	t.Run("workflow listing applies owner or public", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		own := CreateTestWorkflow("user-1")
		other := CreateTestWorkflow("user-2")
		public := CreateTestWorkflow("user-2")
		public.IsPublic = true

		for _, w := range []*models.Workflow{own, other, public} {
			require.NoError(t, store.SaveWorkflow(ctx, w))
		}

		visible, err := store.Workflows(ctx, "user-1")
		require.NoError(t, err)

		ids := make([]string, 0, len(visible))
		for _, w := range visible {
			ids = append(ids, w.ID)
		}

		assert.ElementsMatch(t, []string{own.ID, public.ID}, ids)
	})

	t.Run("template listing applies owner or public", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		own := CreateTestTemplate("user-1")
		other := CreateTestTemplate("user-2")
		public := CreateTestTemplate("user-3")
		public.IsPublic = true

		for _, tmpl := range []*models.WorkflowTemplate{own, other, public} {
			require.NoError(t, store.SaveTemplate(ctx, tmpl))
		}

		visible, err := store.Templates(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, visible, 2)

		for _, tmpl := range visible {
			assert.True(t, tmpl.VisibleTo("user-1"))
			assert.Equal(t, []string{"webhook", "code"}, tmpl.Tags)
			assert.NotNil(t, tmpl.Document)
		}

		anonymous, err := store.Templates(ctx, "")
		require.NoError(t, err)
		require.Len(t, anonymous, 1)
		assert.Equal(t, public.ID, anonymous[0].ID)
	})
}
