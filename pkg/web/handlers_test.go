package web_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dukex/flowgen/pkg/auth"
	"github.com/dukex/flowgen/pkg/catalog"
	"github.com/dukex/flowgen/pkg/models"
	"github.com/dukex/flowgen/pkg/persistence/file"
	"github.com/dukex/flowgen/pkg/services"
	"github.com/dukex/flowgen/pkg/testutil"
	"github.com/dukex/flowgen/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	app      *fiber.App
	verifier *auth.Verifier
}

func setupTestApp(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	persistence := file.NewPersistence(t.TempDir())
	nodeCatalog := catalog.New(logger, catalog.StaticSource(catalog.Builtin()))
	sessions := services.NewGenerationStore(time.Minute)

	handlers := web.NewAPIHandlers(
		logger,
		services.NewGenerator(logger, nodeCatalog),
		nodeCatalog,
		sessions,
		services.NewWorkflows(logger, persistence, sessions, nil, nil),
		services.NewTemplates(logger, persistence, sessions, nil, nil),
		validator.New(validator.WithRequiredStructEnabled()),
	)

	verifier, err := auth.NewVerifier("test-secret")
	require.NoError(t, err)

	app := fiber.New()
	app.Use(web.Authenticate(logger, verifier))

	app.Get("/health", handlers.HealthCheck)
	app.Get("/node-types", handlers.ListNodeTypes)
	app.Get("/node-types/:type", handlers.GetNodeType)
	app.Get("/patterns", handlers.ListPatterns)
	app.Post("/generate", handlers.Generate)
	app.Get("/generations/:id", handlers.GetGeneration)
	app.Post("/validate", handlers.Validate)
	app.Post("/autofix", handlers.Autofix)
	app.Post("/score", handlers.Score)

	w := app.Group("/workflows")
	w.Get("/", handlers.ListWorkflows)
	w.Post("/", handlers.SaveWorkflow)
	w.Get("/:id", handlers.GetWorkflow)

	tpl := app.Group("/templates")
	tpl.Get("/", handlers.ListTemplates)
	tpl.Post("/", handlers.SaveTemplate)

	return &testServer{app: app, verifier: verifier}
}

func (s *testServer) token(t *testing.T, userID string) string {
	t.Helper()

	token, err := s.verifier.Issue(userID, time.Hour)
	require.NoError(t, err)

	return token
}

func (s *testServer) do(t *testing.T, method, path string, body any, token string) (int, []byte) {
	t.Helper()

	var reader io.Reader

	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)

		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req)
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		if err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))

	return v
}

func TestAPIHandlers_HealthCheck(t *testing.T) {
	s := setupTestApp(t)

	status, body := s.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, status)

	health := decode[map[string]any](t, body)
	assert.Equal(t, "healthy", health["status"])
}

func TestAPIHandlers_NodeTypes(t *testing.T) {
	s := setupTestApp(t)

	status, body := s.do(t, http.MethodGet, "/node-types", nil, "")
	require.Equal(t, http.StatusOK, status)

	list := decode[web.NodeTypesResponse](t, body)
	assert.False(t, list.Degraded)
	assert.Len(t, list.NodeTypes, len(catalog.Builtin()))

	status, body = s.do(t, http.MethodGet, "/node-types/webhook", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.NodeTypeWebhook, decode[models.NodeTypeDefinition](t, body).TypeID)

	status, body = s.do(t, http.MethodGet, "/node-types/"+models.NodeTypeHTTPRequest, nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.NodeTypeHTTPRequest, decode[models.NodeTypeDefinition](t, body).TypeID)

	status, body = s.do(t, http.MethodGet, "/node-types/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "node_type_not_found", decode[map[string]any](t, body)["type"])
}

func TestAPIHandlers_Patterns(t *testing.T) {
	s := setupTestApp(t)

	status, body := s.do(t, http.MethodGet, "/patterns", nil, "")
	require.Equal(t, http.StatusOK, status)

	list := decode[web.ListResponse[models.WorkflowPattern]](t, body)
	assert.NotZero(t, list.TotalCount)
	assert.Len(t, list.Items, list.TotalCount)
}

func TestAPIHandlers_Generate(t *testing.T) {
	s := setupTestApp(t)

	tests := []struct {
		name           string
		body           any
		expectedStatus int
		check          func(t *testing.T, body []byte)
	}{
		{
			name:           "webhook description",
			body:           web.GenerateRequest{Description: "Create a webhook that validates and processes incoming data"},
			expectedStatus: http.StatusCreated,
			check: func(t *testing.T, body []byte) {
				t.Helper()

				generation := decode[services.Generation](t, body)
				assert.NotEmpty(t, generation.ID)
				assert.Equal(t, models.WorkflowTypeWebhook, generation.Workflow.Type)
				assert.Len(t, generation.Document.Nodes, 4)
				assert.True(t, generation.Validation.IsValid)
				assert.NotEmpty(t, generation.Message)
			},
		},
		{
			name:           "empty description",
			body:           web.GenerateRequest{},
			expectedStatus: http.StatusCreated,
			check: func(t *testing.T, body []byte) {
				t.Helper()

				generation := decode[services.Generation](t, body)
				assert.Equal(t, models.WorkflowTypeBasic, generation.Workflow.Type)
			},
		},
		{
			name:           "unknown pattern",
			body:           web.GenerateRequest{Pattern: "Nope"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid json",
			body:           "{",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := s.do(t, http.MethodPost, "/generate", tt.body, "")
			assert.Equal(t, tt.expectedStatus, status, string(body))

			if tt.check != nil {
				tt.check(t, body)
			}
		})
	}
}

func TestAPIHandlers_GetGeneration(t *testing.T) {
	s := setupTestApp(t)
	owner := s.token(t, "user-1")

	status, body := s.do(t, http.MethodPost, "/generate", web.GenerateRequest{Description: "send an email"}, owner)
	require.Equal(t, http.StatusCreated, status)

	id := decode[services.Generation](t, body).ID

	status, _ = s.do(t, http.MethodGet, "/generations/"+id, nil, owner)
	assert.Equal(t, http.StatusOK, status)

	status, _ = s.do(t, http.MethodGet, "/generations/"+id, nil, s.token(t, "user-2"))
	assert.Equal(t, http.StatusNotFound, status)

	status, body = s.do(t, http.MethodGet, "/generations/unknown", nil, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "generation_not_found", decode[map[string]any](t, body)["type"])
}

func TestAPIHandlers_ValidateAutofixScore(t *testing.T) {
	s := setupTestApp(t)

	legacy := &models.WorkflowDocument{
		Name: "Legacy",
		Nodes: []*models.DocumentNode{{
			Name:       "Legacy Transform",
			Type:       models.NodeTypeFunction,
			Parameters: map[string]any{"functionCode": "return items;"},
		}},
		Connections: map[string]*models.NodeConnections{},
	}

	status, body := s.do(t, http.MethodPost, "/validate", legacy, "")
	require.Equal(t, http.StatusOK, status)

	result := decode[models.WorkflowValidationResult](t, body)
	require.NotNil(t, result.ModernizedWorkflow)
	assert.Equal(t, models.NodeTypeCode, result.ModernizedWorkflow.Nodes[0].Type)

	status, body = s.do(t, http.MethodPost, "/validate", map[string]any{"name": "no nodes"}, "")
	require.Equal(t, http.StatusOK, status)
	assert.False(t, decode[models.WorkflowValidationResult](t, body).IsValid)

	status, body = s.do(t, http.MethodPost, "/autofix", legacy, "")
	require.Equal(t, http.StatusOK, status)

	fixed := decode[models.AutofixResult](t, body)
	assert.Len(t, fixed.Changes, 1)
	assert.Equal(t, "return items;", fixed.Fixed.Nodes[0].Parameters["jsCode"])

	status, _ = s.do(t, http.MethodPost, "/autofix", map[string]any{"name": "no nodes"}, "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = s.do(t, http.MethodPost, "/score", testutil.CreateTestDocument(), "")
	require.Equal(t, http.StatusOK, status)

	score := decode[models.Score](t, body)
	assert.LessOrEqual(t, score.Security, 100)
	assert.GreaterOrEqual(t, score.Security, 0)
}

func TestAPIHandlers_NullNodes(t *testing.T) {
	s := setupTestApp(t)
	body := `{"name":"broken","nodes":[null,{"name":"Call","type":"n8n-nodes-base.httpRequest","parameters":{}}],"connections":{}}`

	status, data := s.do(t, http.MethodPost, "/validate", body, "")
	require.Equal(t, http.StatusOK, status)

	result := decode[models.WorkflowValidationResult](t, data)
	assert.False(t, result.IsValid)
	assert.Equal(t, "Node at index 0 is null", result.Issues[0].Message)

	status, data = s.do(t, http.MethodPost, "/autofix", body, "")
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[models.AutofixResult](t, data).Changes)

	status, data = s.do(t, http.MethodPost, "/score", body, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 95, decode[models.Score](t, data).Security)

	status, _ = s.do(t, http.MethodPost, "/workflows", `{"name":"broken","document":{"nodes":[null]}}`, s.token(t, "user-1"))
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAPIHandlers_Workflows(t *testing.T) {
	s := setupTestApp(t)
	owner := s.token(t, "user-1")
	other := s.token(t, "user-2")

	save := web.SaveWorkflowRequest{Name: "Order intake", Document: testutil.CreateTestDocument()}

	status, _ := s.do(t, http.MethodPost, "/workflows", save, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = s.do(t, http.MethodPost, "/workflows", save, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := s.do(t, http.MethodPost, "/workflows", save, owner)
	require.Equal(t, http.StatusCreated, status, string(body))

	saved := decode[models.Workflow](t, body)
	assert.Equal(t, "user-1", saved.OwnerID)
	assert.Equal(t, models.WorkflowStatusDraft, saved.Status)

	status, _ = s.do(t, http.MethodGet, "/workflows/"+saved.ID, nil, owner)
	assert.Equal(t, http.StatusOK, status)

	status, body = s.do(t, http.MethodGet, "/workflows/"+saved.ID, nil, other)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "workflow_not_found", decode[map[string]any](t, body)["type"])

	status, body = s.do(t, http.MethodGet, "/workflows", nil, other)
	require.Equal(t, http.StatusOK, status)
	assert.Zero(t, decode[web.ListResponse[models.Workflow]](t, body).TotalCount)

	status, body = s.do(t, http.MethodGet, "/workflows", nil, owner)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, decode[web.ListResponse[models.Workflow]](t, body).TotalCount)

	status, _ = s.do(t, http.MethodGet, "/workflows", nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAPIHandlers_SaveWorkflowErrors(t *testing.T) {
	s := setupTestApp(t)
	owner := s.token(t, "user-1")

	duplicate := &models.WorkflowDocument{
		Nodes: []*models.DocumentNode{testutil.CreateTestNode(), testutil.CreateTestNode()},
	}

	tests := []struct {
		name           string
		body           any
		expectedStatus int
	}{
		{name: "no document or generation", body: web.SaveWorkflowRequest{Name: "x"}, expectedStatus: http.StatusBadRequest},
		{
			name:           "bad status",
			body:           web.SaveWorkflowRequest{Name: "x", Document: testutil.CreateTestDocument(), Status: "archived"},
			expectedStatus: http.StatusBadRequest,
		},
		{name: "duplicate node names", body: web.SaveWorkflowRequest{Name: "x", Document: duplicate}, expectedStatus: http.StatusConflict},
		{name: "expired generation", body: web.SaveWorkflowRequest{GenerationID: "gone"}, expectedStatus: http.StatusNotFound},
		{name: "invalid json", body: "{", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := s.do(t, http.MethodPost, "/workflows", tt.body, owner)
			assert.Equal(t, tt.expectedStatus, status, string(body))
		})
	}
}

func TestAPIHandlers_SaveWorkflowFromGeneration(t *testing.T) {
	s := setupTestApp(t)
	owner := s.token(t, "user-1")

	status, body := s.do(t, http.MethodPost, "/generate", web.GenerateRequest{Description: "Sync the orders table daily"}, owner)
	require.Equal(t, http.StatusCreated, status)

	generation := decode[services.Generation](t, body)

	status, body = s.do(t, http.MethodPost, "/workflows", web.SaveWorkflowRequest{GenerationID: generation.ID}, owner)
	require.Equal(t, http.StatusCreated, status, string(body))

	saved := decode[models.Workflow](t, body)
	assert.Equal(t, generation.Workflow.Name, saved.Name)
	assert.Len(t, saved.Document.Nodes, len(generation.Document.Nodes))

	status, _ = s.do(t, http.MethodGet, "/generations/"+generation.ID, nil, owner)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAPIHandlers_Templates(t *testing.T) {
	s := setupTestApp(t)
	owner := s.token(t, "user-1")

	save := web.SaveTemplateRequest{
		Name:       "Order intake",
		Document:   testutil.CreateTestDocument(),
		Category:   "integration",
		Tags:       []string{"webhook"},
		Difficulty: "beginner",
		IsPublic:   true,
	}

	status, _ := s.do(t, http.MethodPost, "/templates", save, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = s.do(t, http.MethodPost, "/templates", web.SaveTemplateRequest{Name: "x", Document: testutil.CreateTestDocument()}, owner)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := s.do(t, http.MethodPost, "/templates", save, owner)
	require.Equal(t, http.StatusCreated, status, string(body))

	status, body = s.do(t, http.MethodGet, "/templates", nil, s.token(t, "user-2"))
	require.Equal(t, http.StatusOK, status)

	list := decode[web.ListResponse[models.WorkflowTemplate]](t, body)
	require.Equal(t, 1, list.TotalCount)
	assert.Equal(t, "Order intake", list.Items[0].Name)
}
