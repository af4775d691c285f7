package sqlbase

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/flowgen/pkg/models"
	"github.com/dukex/flowgen/pkg/persistence"
	"github.com/google/uuid"
)

// Store implements persistence.Persistence on top of any database/sql driver
// accepting numbered placeholders and ON CONFLICT upserts.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore runs the migrations on db and returns a store backed by it.
func NewStore(ctx context.Context, logger *slog.Logger, db *sql.DB, migrations map[int]string) (*Store, error) {
	err := NewMigrationManager(logger, db, migrations).RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close(_ context.Context) error {
	if s.db != nil {
		err := s.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (s *Store) HealthCheck(ctx context.Context) error {
	err := s.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// NodeTypes returns the stored catalog in seed order.
func (s *Store) NodeTypes(ctx context.Context) ([]*models.NodeTypeDefinition, error) {
	query := `
		SELECT
			type_id
		  , display_name
		  , category
		  , description
		  , version
		  , deprecated
		  , replaced_by
		  , keywords
		  , parameter_schema
		FROM node_types
		ORDER BY sort_order
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query node types: %w", err)
	}

	defer s.closeRows(ctx, rows)

	defs := make([]*models.NodeTypeDefinition, 0)

	for rows.Next() {
		var (
			def        models.NodeTypeDefinition
			category   string
			keywords   string
			parameters string
		)

		err := rows.Scan(
			&def.TypeID,
			&def.DisplayName,
			&category,
			&def.Description,
			&def.Version,
			&def.Deprecated,
			&def.ReplacedBy,
			&keywords,
			&parameters,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan node type: %w", err)
		}

		def.Category = models.CategoryType(category)

		if err := json.Unmarshal([]byte(keywords), &def.Keywords); err != nil {
			return nil, fmt.Errorf("failed to unmarshal keywords of %s: %w", def.TypeID, err)
		}

		if err := json.Unmarshal([]byte(parameters), &def.ParameterSchema); err != nil {
			return nil, fmt.Errorf("failed to unmarshal parameter schema of %s: %w", def.TypeID, err)
		}

		defs = append(defs, &def)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating node types: %w", err)
	}

	return defs, nil
}

// SaveNodeTypes replaces the stored catalog with defs.
func (s *Store) SaveNodeTypes(ctx context.Context, defs []*models.NodeTypeDefinition) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, "DELETE FROM node_types")
	if err != nil {
		return fmt.Errorf("failed to clear node types: %w", err)
	}

	query := `
		INSERT INTO node_types (type_id, display_name, category, description, version,
			deprecated, replaced_by, keywords, parameter_schema, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	for i, def := range defs {
		keywords, marshalErr := marshalJSON(def.Keywords, "[]")
		if marshalErr != nil {
			return fmt.Errorf("failed to marshal keywords of %s: %w", def.TypeID, marshalErr)
		}

		parameters, marshalErr := marshalJSON(def.ParameterSchema, "[]")
		if marshalErr != nil {
			return fmt.Errorf("failed to marshal parameter schema of %s: %w", def.TypeID, marshalErr)
		}

		_, err = tx.ExecContext(ctx, query,
			def.TypeID,
			def.DisplayName,
			string(def.Category),
			def.Description,
			def.Version,
			def.Deprecated,
			def.ReplacedBy,
			keywords,
			parameters,
			i,
		)
		if err != nil {
			return fmt.Errorf("failed to save node type %s: %w", def.TypeID, err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit node types: %w", err)
	}

	return nil
}

// SaveWorkflow inserts or updates a workflow, assigning an id and timestamps.
func (s *Store) SaveWorkflow(ctx context.Context, workflow *models.Workflow) error {
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

	document, err := marshalJSON(workflow.Document, "{}")
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, fmt.Errorf("failed to marshal document: %w", err))
	}

	var conversationID sql.NullString
	if workflow.ConversationID != nil {
		conversationID = sql.NullString{String: *workflow.ConversationID, Valid: true}
	}

	query := `
		INSERT INTO workflows (id, owner_id, conversation_id, name, description,
			document, status, is_public, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			conversation_id = EXCLUDED.conversation_id,
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			document = EXCLUDED.document,
			status = EXCLUDED.status,
			is_public = EXCLUDED.is_public,
			updated_at = EXCLUDED.updated_at
	`

	_, err = s.db.ExecContext(ctx, query,
		workflow.ID,
		workflow.OwnerID,
		conversationID,
		workflow.Name,
		workflow.Description,
		document,
		string(workflow.Status),
		workflow.IsPublic,
		workflow.CreatedAt,
		workflow.UpdatedAt,
	)
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	return nil
}

const workflowColumns = `
		SELECT
			id
		  , owner_id
		  , conversation_id
		  , name
		  , description
		  , document
		  , status
		  , is_public
		  , created_at
		  , updated_at
		FROM workflows
`

// WorkflowByID returns the workflow with id, or nil when it does not exist.
func (s *Store) WorkflowByID(ctx context.Context, id string) (*models.Workflow, error) {
	row := s.db.QueryRowContext(ctx, workflowColumns+" WHERE id = $1", id)

	workflow, err := scanWorkflow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, persistence.NewWorkflowError("GetByID", id, err)
	}

	return workflow, nil
}

// Workflows returns the workflows owned by viewerID plus every public one.
func (s *Store) Workflows(ctx context.Context, viewerID string) ([]*models.Workflow, error) {
	rows, err := s.db.QueryContext(ctx, workflowColumns+" WHERE owner_id = $1 OR is_public ORDER BY created_at DESC", viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}

	defer s.closeRows(ctx, rows)

	workflows := make([]*models.Workflow, 0)

	for rows.Next() {
		workflow, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}

		workflows = append(workflows, workflow)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating workflows: %w", err)
	}

	return workflows, nil
}

// SaveTemplate inserts or updates a workflow template.
func (s *Store) SaveTemplate(ctx context.Context, template *models.WorkflowTemplate) error {
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

	document, err := marshalJSON(template.Document, "{}")
	if err != nil {
		return persistence.NewTemplateError("Save", template.ID, fmt.Errorf("failed to marshal document: %w", err))
	}

	tags, err := marshalJSON(template.Tags, "[]")
	if err != nil {
		return persistence.NewTemplateError("Save", template.ID, fmt.Errorf("failed to marshal tags: %w", err))
	}

	query := `
		INSERT INTO workflow_templates (id, owner_id, name, description, document,
			category, tags, use_case, difficulty, is_public, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			document = EXCLUDED.document,
			category = EXCLUDED.category,
			tags = EXCLUDED.tags,
			use_case = EXCLUDED.use_case,
			difficulty = EXCLUDED.difficulty,
			is_public = EXCLUDED.is_public
	`

	_, err = s.db.ExecContext(ctx, query,
		template.ID,
		template.OwnerID,
		template.Name,
		template.Description,
		document,
		template.Category,
		tags,
		template.UseCase,
		template.Difficulty,
		template.IsPublic,
		template.CreatedAt,
	)
	if err != nil {
		return persistence.NewTemplateError("Save", template.ID, err)
	}

	return nil
}

// Templates returns the templates owned by viewerID plus every public one.
func (s *Store) Templates(ctx context.Context, viewerID string) ([]*models.WorkflowTemplate, error) {
	query := `
		SELECT
			id
		  , owner_id
		  , name
		  , description
		  , document
		  , category
		  , tags
		  , use_case
		  , difficulty
		  , is_public
		  , created_at
		FROM workflow_templates
		WHERE owner_id = $1 OR is_public
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}

	defer s.closeRows(ctx, rows)

	templates := make([]*models.WorkflowTemplate, 0)

	for rows.Next() {
		var (
			template  models.WorkflowTemplate
			document  string
			tags      string
			createdAt Timestamp
		)

		err := rows.Scan(
			&template.ID,
			&template.OwnerID,
			&template.Name,
			&template.Description,
			&document,
			&template.Category,
			&tags,
			&template.UseCase,
			&template.Difficulty,
			&template.IsPublic,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}

		if err := json.Unmarshal([]byte(document), &template.Document); err != nil {
			return nil, fmt.Errorf("failed to unmarshal template %s document: %w", template.ID, err)
		}

		if err := json.Unmarshal([]byte(tags), &template.Tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal template %s tags: %w", template.ID, err)
		}

		template.CreatedAt = createdAt.Time

		templates = append(templates, &template)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating templates: %w", err)
	}

	return templates, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row scanner) (*models.Workflow, error) {
	var (
		workflow       models.Workflow
		conversationID sql.NullString
		document       string
		status         string
		createdAt      Timestamp
		updatedAt      Timestamp
	)

	err := row.Scan(
		&workflow.ID,
		&workflow.OwnerID,
		&conversationID,
		&workflow.Name,
		&workflow.Description,
		&document,
		&status,
		&workflow.IsPublic,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if conversationID.Valid {
		workflow.ConversationID = &conversationID.String
	}

	if err := json.Unmarshal([]byte(document), &workflow.Document); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow %s document: %w", workflow.ID, err)
	}

	workflow.Status = models.WorkflowStatus(status)
	workflow.CreatedAt = createdAt.Time
	workflow.UpdatedAt = updatedAt.Time

	return &workflow, nil
}

func (s *Store) closeRows(ctx context.Context, rows *sql.Rows) {
	err := rows.Close()
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to close rows", "error", err)
	}
}

func marshalJSON(v any, empty string) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	if string(data) == "null" {
		return empty, nil
	}

	return string(data), nil
}
