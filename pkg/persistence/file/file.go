// Package file provides file-based persistence for workflows, templates and
// the node catalog.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dukex/flowgen/pkg/models"
	"github.com/dukex/flowgen/pkg/persistence"
	"github.com/google/uuid"
)

const nodeTypesFile = "node_types.json"

// Persistence implements the persistence.Persistence interface using the file system.
type Persistence struct {
	root string
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string) *Persistence {
	return &Persistence{root: strings.Replace(root, "file://", "", 1)}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks if the file persistence layer is healthy by verifying the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// NodeTypes returns the stored catalog, empty when it was never seeded.
func (fp *Persistence) NodeTypes(_ context.Context) ([]*models.NodeTypeDefinition, error) {
	body, err := os.ReadFile(filepath.Clean(path.Join(fp.root, nodeTypesFile)))
	if err != nil {
		if os.IsNotExist(err) {
			return make([]*models.NodeTypeDefinition, 0), nil
		}

		return nil, fmt.Errorf("failed to read node types: %w", err)
	}

	defs := make([]*models.NodeTypeDefinition, 0)

	err = json.Unmarshal(body, &defs)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal node types: %w", err)
	}

	return defs, nil
}

// SaveNodeTypes replaces the stored catalog with defs.
func (fp *Persistence) SaveNodeTypes(_ context.Context, defs []*models.NodeTypeDefinition) error {
	err := os.MkdirAll(fp.root, 0750)
	if err != nil {
		return fmt.Errorf("failed to create root directory: %w", err)
	}

	data, err := json.MarshalIndent(defs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal node types: %w", err)
	}

	return os.WriteFile(path.Join(fp.root, nodeTypesFile), data, 0600)
}

// SaveWorkflow saves a workflow to the file system.
func (fp *Persistence) SaveWorkflow(_ context.Context, workflow *models.Workflow) error {
	now := time.Now().UTC()
	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	if workflow.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return persistence.NewWorkflowError("Save", "", fmt.Errorf("failed to generate workflow ID: %w", err))
		}

		workflow.ID = id.String()
	}

	err := writeJSON(fp.root, "workflows", workflow.ID, workflow)
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	return nil
}

// WorkflowByID returns the workflow with id, or nil when it does not exist.
func (fp *Persistence) WorkflowByID(_ context.Context, id string) (*models.Workflow, error) {
	var workflow models.Workflow

	found, err := readJSON(fp.root, "workflows", id, &workflow)
	if err != nil {
		return nil, persistence.NewWorkflowError("GetByID", id, err)
	}

	if !found {
		return nil, nil
	}

	return &workflow, nil
}

// Workflows returns the workflows owned by viewerID plus every public one,
// newest first.
func (fp *Persistence) Workflows(_ context.Context, viewerID string) ([]*models.Workflow, error) {
	ids, err := listIDs(fp.root, "workflows")
	if err != nil {
		return nil, err
	}

	workflows := make([]*models.Workflow, 0, len(ids))

	for _, id := range ids {
		var workflow models.Workflow

		found, err := readJSON(fp.root, "workflows", id, &workflow)
		if err != nil {
			return nil, fmt.Errorf("failed to load workflow %s: %w", id, err)
		}

		if found && workflow.VisibleTo(viewerID) {
			workflows = append(workflows, &workflow)
		}
	}

	sort.SliceStable(workflows, func(i, j int) bool {
		return workflows[i].CreatedAt.After(workflows[j].CreatedAt)
	})

	return workflows, nil
}

// SaveTemplate saves a workflow template to the file system.
func (fp *Persistence) SaveTemplate(_ context.Context, template *models.WorkflowTemplate) error {
	if template.CreatedAt.IsZero() {
		template.CreatedAt = time.Now().UTC()
	}

	if template.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return persistence.NewTemplateError("Save", "", fmt.Errorf("failed to generate template ID: %w", err))
		}

		template.ID = id.String()
	}

	err := writeJSON(fp.root, "templates", template.ID, template)
	if err != nil {
		return persistence.NewTemplateError("Save", template.ID, err)
	}

	return nil
}

// Templates returns the templates owned by viewerID plus every public one.
func (fp *Persistence) Templates(_ context.Context, viewerID string) ([]*models.WorkflowTemplate, error) {
	ids, err := listIDs(fp.root, "templates")
	if err != nil {
		return nil, err
	}

	templates := make([]*models.WorkflowTemplate, 0, len(ids))

	for _, id := range ids {
		var template models.WorkflowTemplate

		found, err := readJSON(fp.root, "templates", id, &template)
		if err != nil {
			return nil, fmt.Errorf("failed to load template %s: %w", id, err)
		}

		if found && template.VisibleTo(viewerID) {
			templates = append(templates, &template)
		}
	}

	sort.SliceStable(templates, func(i, j int) bool {
		return templates[i].CreatedAt.After(templates[j].CreatedAt)
	})

	return templates, nil
}

func listIDs(root, kind string) ([]string, error) {
	dir := path.Join(root, kind)

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}

	jsonFiles, err := fs.Glob(os.DirFS(dir), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list %s files: %w", kind, err)
	}

	ids := make([]string, 0, len(jsonFiles))
	for _, file := range jsonFiles {
		ids = append(ids, strings.TrimSuffix(file, ".json"))
	}

	return ids, nil
}

func readJSON(root, kind, id string, v any) (bool, error) {
	filePath := filepath.Clean(path.Join(root, kind, id+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	err = json.Unmarshal(body, v)
	if err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", filePath, err)
	}

	return true, nil
}

func writeJSON(root, kind, id string, v any) error {
	dir := path.Join(root, kind)

	err := os.MkdirAll(dir, 0750)
	if err != nil {
		return fmt.Errorf("failed to create %s directory: %w", kind, err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", id, err)
	}

	return os.WriteFile(path.Join(dir, id+".json"), data, 0600)
}
