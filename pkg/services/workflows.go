package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukex/flowgen/pkg/eventbus"
	"github.com/dukex/flowgen/pkg/events"
	"github.com/dukex/flowgen/pkg/metrics"
	"github.com/dukex/flowgen/pkg/models"
	"github.com/dukex/flowgen/pkg/persistence"
	"github.com/go-playground/validator/v10"
)

// SaveWorkflowRequest persists either a raw document or a session generation.
type SaveWorkflowRequest struct {
	Name           string                   `json:"name"`
	Description    string                   `json:"description"`
	Document       *models.WorkflowDocument `json:"document"`
	GenerationID   string                   `json:"generation_id"`
	ConversationID *string                  `json:"conversation_id"`
	Status         models.WorkflowStatus    `json:"status"`
	IsPublic       bool                     `json:"is_public"`
}

// Workflows saves and reads persisted workflows on behalf of a user.
type Workflows struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	sessions    *GenerationStore
	publisher   eventbus.EventPublisher
	metrics     *metrics.Metrics
	validate    *validator.Validate
}

// NewWorkflows creates a workflow service. publisher and m may be nil.
func NewWorkflows(
	logger *slog.Logger,
	persistence persistence.Persistence,
	sessions *GenerationStore,
	publisher eventbus.EventPublisher,
	m *metrics.Metrics,
) *Workflows {
	return &Workflows{
		logger:      logger.With("module", "workflows"),
		persistence: persistence,
		sessions:    sessions,
		publisher:   publisher,
		metrics:     m,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflows) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := w.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// SaveWorkflow persists a workflow owned by userID. It fails with
// ErrNotAuthenticated before touching storage when userID is empty.
func (w *Workflows) SaveWorkflow(ctx context.Context, userID string, req SaveWorkflowRequest) (*models.Workflow, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	doc, name, description, err := resolveDocument(w.sessions, userID, req.GenerationID, req.Document)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		name = req.Name
	}

	if req.Description != "" {
		description = req.Description
	}

	if name == "" {
		return nil, ErrWorkflowNameRequired
	}

	err = checkNodeNames(doc)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.WorkflowStatusDraft
	}

	workflow := &models.Workflow{
		OwnerID:        userID,
		ConversationID: req.ConversationID,
		Name:           name,
		Description:    description,
		Document:       doc,
		Status:         status,
		IsPublic:       req.IsPublic,
	}

	err = w.validate.Struct(workflow)
	if err != nil {
		if status != models.WorkflowStatusDraft && status != models.WorkflowStatusDeployed && status != models.WorkflowStatusActive {
			return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
		}

		return nil, NewValidationError("SaveWorkflow", "INVALID_WORKFLOW", err.Error(), ErrInvalidRequest)
	}

	err = w.persistence.SaveWorkflow(ctx, workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to save workflow: %w", err)
	}

	if req.GenerationID != "" {
		w.sessions.Delete(req.GenerationID)
	}

	w.metrics.RecordWorkflowSaved()

	if w.publisher != nil {
		err = w.publisher.Publish(ctx, workflow.ID, events.WorkflowSaved{
			BaseEvent: events.NewBaseEvent(events.WorkflowSavedEvent, workflow.ID),
			OwnerID:   workflow.OwnerID,
			Name:      workflow.Name,
			Status:    workflow.Status,
		})
		if err != nil {
			w.logger.ErrorContext(ctx, "Failed to publish workflow saved event", "workflow_id", workflow.ID, "error", err)
		}
	}

	return workflow, nil
}

// GetWorkflow returns a workflow visible to userID.
func (w *Workflows) GetWorkflow(ctx context.Context, userID, id string) (*models.Workflow, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	workflow, err := w.persistence.WorkflowByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}

	if workflow == nil || !workflow.VisibleTo(userID) {
		return nil, persistence.NewWorkflowError("GetWorkflow", id, ErrWorkflowNotFound)
	}

	return workflow, nil
}

// ListWorkflows returns the workflows owned by userID plus the public ones.
func (w *Workflows) ListWorkflows(ctx context.Context, userID string) ([]*models.Workflow, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	workflows, err := w.persistence.Workflows(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	return workflows, nil
}

func resolveDocument(
	sessions *GenerationStore,
	userID, generationID string,
	document *models.WorkflowDocument,
) (*models.WorkflowDocument, string, string, error) {
	if generationID != "" {
		if sessions == nil {
			return nil, "", "", ErrGenerationNotFound
		}

		generation, ok := sessions.Get(generationID, userID)
		if !ok {
			return nil, "", "", ErrGenerationNotFound
		}

		return generation.Document, generation.Workflow.Name, generation.Description, nil
	}

	if document == nil || document.Nodes == nil {
		return nil, "", "", ErrDocumentRequired
	}

	return document, document.Name, "", nil
}

func checkNodeNames(doc *models.WorkflowDocument) error {
	if nulls := doc.NullNodes(); len(nulls) > 0 {
		return NewValidationError("CheckNodeNames", "NULL_NODE", fmt.Sprintf("node at index %d is null", nulls[0]), ErrInvalidRequest)
	}

	if duplicates := doc.DuplicateNodeNames(); len(duplicates) > 0 {
		return fmt.Errorf("%w: %q", ErrDuplicateNodeName, duplicates[0])
	}

	return nil
}
