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

// SaveTemplateRequest stores a reusable workflow from a document or a session generation.
type SaveTemplateRequest struct {
	Name         string                   `json:"name"`
	Description  string                   `json:"description"`
	Document     *models.WorkflowDocument `json:"document"`
	GenerationID string                   `json:"generation_id"`
	Category     string                   `json:"category"`
	Tags         []string                 `json:"tags"`
	UseCase      string                   `json:"use_case"`
	Difficulty   string                   `json:"difficulty"`
	IsPublic     bool                     `json:"is_public"`
}

// Templates saves and lists workflow templates.
type Templates struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	sessions    *GenerationStore
	publisher   eventbus.EventPublisher
	metrics     *metrics.Metrics
	validate    *validator.Validate
}

// NewTemplates creates a template service. publisher and m may be nil.
func NewTemplates(
	logger *slog.Logger,
	persistence persistence.Persistence,
	sessions *GenerationStore,
	publisher eventbus.EventPublisher,
	m *metrics.Metrics,
) *Templates {
	return &Templates{
		logger:      logger.With("module", "templates"),
		persistence: persistence,
		sessions:    sessions,
		publisher:   publisher,
		metrics:     m,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

// SaveTemplate persists a template owned by userID.
func (t *Templates) SaveTemplate(ctx context.Context, userID string, req SaveTemplateRequest) (*models.WorkflowTemplate, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	doc, name, description, err := resolveDocument(t.sessions, userID, req.GenerationID, req.Document)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		name = req.Name
	}

	if req.Description != "" {
		description = req.Description
	}

	err = checkNodeNames(doc)
	if err != nil {
		return nil, err
	}

	template := &models.WorkflowTemplate{
		OwnerID:     userID,
		Name:        name,
		Description: description,
		Document:    doc,
		Category:    req.Category,
		Tags:        req.Tags,
		UseCase:     req.UseCase,
		Difficulty:  req.Difficulty,
		IsPublic:    req.IsPublic,
	}

	err = t.validate.Struct(template)
	if err != nil {
		return nil, NewValidationError("SaveTemplate", "INVALID_TEMPLATE", err.Error(), ErrInvalidRequest)
	}

	err = t.persistence.SaveTemplate(ctx, template)
	if err != nil {
		return nil, fmt.Errorf("failed to save template: %w", err)
	}

	t.metrics.RecordTemplateSaved()

	if t.publisher != nil {
		err = t.publisher.Publish(ctx, template.ID, events.TemplateSaved{
			BaseEvent:  events.NewBaseEvent(events.TemplateSavedEvent, ""),
			TemplateID: template.ID,
			OwnerID:    template.OwnerID,
			Category:   template.Category,
			IsPublic:   template.IsPublic,
		})
		if err != nil {
			t.logger.ErrorContext(ctx, "Failed to publish template saved event", "template_id", template.ID, "error", err)
		}
	}

	return template, nil
}

// ListTemplates returns the templates owned by userID plus the public ones.
func (t *Templates) ListTemplates(ctx context.Context, userID string) ([]*models.WorkflowTemplate, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	templates, err := t.persistence.Templates(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	return templates, nil
}
