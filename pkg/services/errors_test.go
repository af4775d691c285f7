package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dukex/flowgen/pkg/models"
	"github.com/dukex/flowgen/pkg/persistence"
	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		validation bool
		auth       bool
		notFound   bool
		conflict   bool
	}{
		{name: "invalid request", err: NewValidationError("SaveWorkflow", "INVALID", "bad", ErrInvalidRequest), validation: true},
		{name: "unknown pattern", err: fmt.Errorf("generate: %w", ErrUnknownPattern), validation: true},
		{name: "not authenticated", err: ErrNotAuthenticated, auth: true},
		{name: "workflow not found", err: persistence.NewWorkflowError("GetByID", "wf-1", persistence.ErrWorkflowNotFound), notFound: true},
		{name: "generation expired", err: ErrGenerationNotFound, notFound: true},
		{name: "duplicate node name", err: fmt.Errorf("%w: %q", models.ErrDuplicateNodeName, "Set"), conflict: true},
		{name: "unclassified", err: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.validation, IsValidationError(tt.err))
			assert.Equal(t, tt.auth, IsAuthError(tt.err))
			assert.Equal(t, tt.notFound, IsNotFoundError(tt.err))
			assert.Equal(t, tt.conflict, IsConflictError(tt.err))
		})
	}
}

func TestServiceError(t *testing.T) {
	err := NewValidationError("SaveTemplate", "INVALID_CATEGORY", "category is required", ErrInvalidRequest)

	assert.Equal(t, "SaveTemplate: category is required", err.Error())
	assert.ErrorIs(t, err, ErrInvalidRequest)

	bare := &ServiceError{Op: "SaveWorkflow", Err: ErrNotAuthenticated}
	assert.Equal(t, "SaveWorkflow: not authenticated", bare.Error())
}
