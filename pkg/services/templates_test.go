package services

import (
	"context"
	"testing"
	"time"

	"github.com/dukex/flowgen/pkg/persistence/file"
	"github.com/dukex/flowgen/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplates(t *testing.T) {
	ctx := context.Background()
	service := NewTemplates(testLogger(), file.NewPersistence(t.TempDir()), NewGenerationStore(time.Minute), nil, nil)

	_, err := service.SaveTemplate(ctx, "", SaveTemplateRequest{Name: "x", Category: "y", Document: testutil.CreateTestDocument()})
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = service.SaveTemplate(ctx, "user-1", SaveTemplateRequest{Name: "x", Document: testutil.CreateTestDocument()})
	assert.True(t, IsValidationError(err), "category is required")

	_, err = service.SaveTemplate(ctx, "user-1", SaveTemplateRequest{
		Name:       "x",
		Category:   "y",
		Difficulty: "legendary",
		Document:   testutil.CreateTestDocument(),
	})
	assert.True(t, IsValidationError(err), "difficulty must be a known level")

	private, err := service.SaveTemplate(ctx, "user-1", SaveTemplateRequest{
		Name:       "Order intake",
		Category:   "integration",
		Tags:       []string{"webhook"},
		Difficulty: "beginner",
		Document:   testutil.CreateTestDocument(),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, private.ID)

	public, err := service.SaveTemplate(ctx, "user-2", SaveTemplateRequest{
		Name:     "Shared",
		Category: "integration",
		IsPublic: true,
		Document: testutil.CreateTestDocument(),
	})
	require.NoError(t, err)

	own, err := service.ListTemplates(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, own, 2)

	other, err := service.ListTemplates(ctx, "user-3")
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, public.ID, other[0].ID)

	_, err = service.ListTemplates(ctx, "")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}
