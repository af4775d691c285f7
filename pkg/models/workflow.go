package models

import "time"

// WorkflowStatus represents the lifecycle state of a persisted workflow.
type WorkflowStatus string

const (
	WorkflowStatusDraft    WorkflowStatus = "draft"
	WorkflowStatusDeployed WorkflowStatus = "deployed"
	WorkflowStatusActive   WorkflowStatus = "active"
)

// Workflow is the persisted form of a generated workflow.
type Workflow struct {
	ID             string            `json:"id"`
	OwnerID        string            `json:"owner_id"                  validate:"required"`
	ConversationID *string           `json:"conversation_id,omitempty"`
	Name           string            `json:"name"                      validate:"required"`
	Description    string            `json:"description"`
	Document       *WorkflowDocument `json:"document"                  validate:"required"`
	Status         WorkflowStatus    `json:"status"                    validate:"required,oneof=draft deployed active"`
	IsPublic       bool              `json:"is_public"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// VisibleTo implements the "owner or public" row rule.
func (w *Workflow) VisibleTo(userID string) bool {
	return w.IsPublic || (userID != "" && w.OwnerID == userID)
}

// WorkflowTemplate is a reusable, optionally public workflow.
type WorkflowTemplate struct {
	ID          string            `json:"id"`
	OwnerID     string            `json:"owner_id"              validate:"required"`
	Name        string            `json:"name"                  validate:"required"`
	Description string            `json:"description"`
	Document    *WorkflowDocument `json:"document"              validate:"required"`
	Category    string            `json:"category"              validate:"required"`
	Tags        []string          `json:"tags,omitempty"`
	UseCase     string            `json:"use_case,omitempty"`
	Difficulty  string            `json:"difficulty,omitempty"  validate:"omitempty,oneof=beginner intermediate advanced"`
	IsPublic    bool              `json:"is_public"`
	CreatedAt   time.Time         `json:"created_at"`
}

// VisibleTo implements the "owner or public" row rule.
func (t *WorkflowTemplate) VisibleTo(userID string) bool {
	return t.IsPublic || (userID != "" && t.OwnerID == userID)
}
