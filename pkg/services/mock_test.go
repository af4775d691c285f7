package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dukex/flowgen/pkg/catalog"
	"github.com/dukex/flowgen/pkg/events"
	"github.com/dukex/flowgen/pkg/mocks"
	"github.com/dukex/flowgen/pkg/models"
	"github.com/dukex/flowgen/pkg/persistence"
	"github.com/dukex/flowgen/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var errStoreDown = errors.New("store down")

func TestWorkflows_PublishesSavedEvent(t *testing.T) {
	store := &mocks.MockPersistence{}
	bus := &mocks.MockEventBus{}

	store.On("SaveWorkflow", mock.Anything, mock.AnythingOfType("*models.Workflow")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Workflow).ID = "wf-1"
		}).
		Return(nil)

	bus.On("Publish", mock.Anything, "wf-1", mock.MatchedBy(func(e events.WorkflowSaved) bool {
		return e.WorkflowID == "wf-1" && e.OwnerID == "user-1" && e.Status == models.WorkflowStatusDraft
	})).Return(nil)

	service := NewWorkflows(testLogger(), store, NewGenerationStore(time.Minute), bus, nil)

	saved, err := service.SaveWorkflow(context.Background(), "user-1", SaveWorkflowRequest{
		Name:     "Order intake",
		Document: testutil.CreateTestDocument(),
	})
	require.NoError(t, err)
	assert.Equal(t, "wf-1", saved.ID)

	store.AssertExpectations(t)
	bus.AssertExpectations(t)
}

func TestWorkflows_UnauthenticatedNeverTouchesStore(t *testing.T) {
	store := &mocks.MockPersistence{}
	service := NewWorkflows(testLogger(), store, NewGenerationStore(time.Minute), nil, nil)

	_, err := service.SaveWorkflow(context.Background(), "", SaveWorkflowRequest{
		Name:     "Order intake",
		Document: testutil.CreateTestDocument(),
	})
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	store.AssertNotCalled(t, "SaveWorkflow", mock.Anything, mock.Anything)
}

func TestWorkflows_StoreFailures(t *testing.T) {
	store := &mocks.MockPersistence{}
	store.On("SaveWorkflow", mock.Anything, mock.Anything).Return(errStoreDown)
	store.On("WorkflowByID", mock.Anything, "wf-1").Return(nil, persistence.NewWorkflowError("WorkflowByID", "wf-1", errStoreDown))
	store.On("HealthCheck", mock.Anything).Return(errStoreDown)

	service := NewWorkflows(testLogger(), store, NewGenerationStore(time.Minute), nil, nil)
	ctx := context.Background()

	_, err := service.SaveWorkflow(ctx, "user-1", SaveWorkflowRequest{Name: "x", Document: testutil.CreateTestDocument()})
	assert.ErrorIs(t, err, errStoreDown)
	assert.False(t, IsValidationError(err))

	_, err = service.GetWorkflow(ctx, "user-1", "wf-1")
	assert.ErrorIs(t, err, errStoreDown)
	assert.False(t, IsNotFoundError(err))

	message, ok := service.HealthCheck(ctx)
	assert.False(t, ok)
	assert.Contains(t, message, "store down")
}

func TestCatalogSeeder_StoreFailure(t *testing.T) {
	store := &mocks.MockPersistence{}
	bus := &mocks.MockEventBus{}

	store.On("SaveNodeTypes", mock.Anything, mock.Anything).Return(errStoreDown)

	err := NewCatalogSeeder(testLogger(), store, bus).Seed(context.Background(), catalog.Builtin())
	assert.ErrorIs(t, err, errStoreDown)

	bus.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestTemplates_PublishFailureDoesNotFailSave(t *testing.T) {
	store := &mocks.MockPersistence{}
	bus := &mocks.MockEventBus{}

	store.On("SaveTemplate", mock.Anything, mock.Anything).Return(nil)
	bus.On("Publish", mock.Anything, mock.Anything, mock.AnythingOfType("events.TemplateSaved")).Return(errors.New("broker down"))

	service := NewTemplates(testLogger(), store, NewGenerationStore(time.Minute), bus, nil)

	_, err := service.SaveTemplate(context.Background(), "user-1", SaveTemplateRequest{
		Name:     "Order intake",
		Category: "integration",
		Document: testutil.CreateTestDocument(),
	})
	require.NoError(t, err)

	bus.AssertExpectations(t)
}
