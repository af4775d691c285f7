// Package web provides the HTTP handlers, request types and middleware of the
// workflow generation API.
package web

import (
	"github.com/dukex/flowgen/pkg/models"
	"github.com/dukex/flowgen/pkg/services"
)

// GenerateRequest is the body of POST /generate.
type GenerateRequest struct {
	Description string `json:"description"       validate:"max=4000"`
	Pattern     string `json:"pattern,omitempty"`
}

// SaveWorkflowRequest is the body of POST /workflows. Either Document or
// GenerationID must be set.
type SaveWorkflowRequest struct {
	Name           string                   `json:"name"                      validate:"omitempty,max=255"`
	Description    string                   `json:"description"`
	Document       *models.WorkflowDocument `json:"document,omitempty"`
	GenerationID   string                   `json:"generation_id,omitempty"   validate:"required_without=Document"`
	ConversationID *string                  `json:"conversation_id,omitempty"`
	Status         models.WorkflowStatus    `json:"status,omitempty"          validate:"omitempty,oneof=draft deployed active"`
	IsPublic       bool                     `json:"is_public"`
}

// Service converts the request for the workflow service.
func (r SaveWorkflowRequest) Service() services.SaveWorkflowRequest {
	return services.SaveWorkflowRequest{
		Name:           r.Name,
		Description:    r.Description,
		Document:       r.Document,
		GenerationID:   r.GenerationID,
		ConversationID: r.ConversationID,
		Status:         r.Status,
		IsPublic:       r.IsPublic,
	}
}

// SaveTemplateRequest is the body of POST /templates.
type SaveTemplateRequest struct {
	Name         string                   `json:"name"                    validate:"omitempty,max=255"`
	Description  string                   `json:"description"`
	Document     *models.WorkflowDocument `json:"document,omitempty"`
	GenerationID string                   `json:"generation_id,omitempty" validate:"required_without=Document"`
	Category     string                   `json:"category"                validate:"required"`
	Tags         []string                 `json:"tags"                    validate:"max=20,dive,required"`
	UseCase      string                   `json:"use_case"`
	Difficulty   string                   `json:"difficulty"              validate:"omitempty,oneof=beginner intermediate advanced"`
	IsPublic     bool                     `json:"is_public"`
}

// Service converts the request for the template service.
func (r SaveTemplateRequest) Service() services.SaveTemplateRequest {
	return services.SaveTemplateRequest{
		Name:         r.Name,
		Description:  r.Description,
		Document:     r.Document,
		GenerationID: r.GenerationID,
		Category:     r.Category,
		Tags:         r.Tags,
		UseCase:      r.UseCase,
		Difficulty:   r.Difficulty,
		IsPublic:     r.IsPublic,
	}
}

// NodeTypesResponse lists the catalog.
type NodeTypesResponse struct {
	NodeTypes []*models.NodeTypeDefinition `json:"node_types"`
	Degraded  bool                         `json:"degraded"`
}

// ListResponse wraps a collection with its size.
type ListResponse[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"total_count"`
}

func newListResponse[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}

	return ListResponse[T]{Items: items, TotalCount: len(items)}
}
