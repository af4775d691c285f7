// Package events defines event types and structures for workflow lifecycle notifications.
package events

import (
	"time"

	"github.com/dukex/flowgen/pkg/models"
	"github.com/google/uuid"
)

type EventType string

// Kafka topic.
const Topic = "flowgen.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	WorkflowGeneratedEvent EventType = "workflow.generated"
	WorkflowSavedEvent     EventType = "workflow.saved"
	TemplateSavedEvent     EventType = "template.saved"
	CatalogSeededEvent     EventType = "catalog.seeded"
)

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	WorkflowID string         `json:"workflow_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// WorkflowGenerated is published after every generation, including degraded ones.
// WorkflowID is the generation id, not a persisted workflow id.
type WorkflowGenerated struct {
	BaseEvent

	WorkflowType    models.WorkflowType `json:"workflow_type"`
	NodeCount       int                 `json:"node_count"`
	Valid           bool                `json:"valid"`
	Degraded        bool                `json:"degraded"`
	MatchedPatterns []string            `json:"matched_patterns,omitempty"`
	Pattern         string              `json:"pattern,omitempty"`
}

func (w WorkflowGenerated) GetType() EventType {
	return WorkflowGeneratedEvent
}

type WorkflowSaved struct {
	BaseEvent

	OwnerID string                `json:"owner_id"`
	Name    string                `json:"name"`
	Status  models.WorkflowStatus `json:"status"`
}

func (w WorkflowSaved) GetType() EventType {
	return WorkflowSavedEvent
}

type TemplateSaved struct {
	BaseEvent

	TemplateID string `json:"template_id"`
	OwnerID    string `json:"owner_id"`
	Category   string `json:"category"`
	IsPublic   bool   `json:"is_public"`
}

func (t TemplateSaved) GetType() EventType {
	return TemplateSavedEvent
}

// CatalogSeeded tells running API instances to drop their cached catalog.
type CatalogSeeded struct {
	BaseEvent

	NodeTypes int `json:"node_types"`
}

func (c CatalogSeeded) GetType() EventType {
	return CatalogSeededEvent
}

func NewBaseEvent(eventType EventType, workflowID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
		Metadata:   make(map[string]any),
	}
}
