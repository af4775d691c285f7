package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukex/flowgen/pkg/models"
	"github.com/dukex/flowgen/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	logger    *slog.Logger
	generator *services.Generator
	catalog   services.Catalog
	sessions  *services.GenerationStore
	workflows *services.Workflows
	templates *services.Templates
	validator *validator.Validate
}

func NewAPIHandlers(
	logger *slog.Logger,
	generator *services.Generator,
	catalog services.Catalog,
	sessions *services.GenerationStore,
	workflows *services.Workflows,
	templates *services.Templates,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		logger:    logger.With("module", "web"),
		generator: generator,
		catalog:   catalog,
		sessions:  sessions,
		workflows: workflows,
		templates: templates,
		validator: validator,
	}
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	catalogCheck, catalogOk := "Node catalog is healthy", true
	if h.catalog.Degraded() {
		catalogCheck, catalogOk = "Node catalog is degraded, serving fallback node types", false
	}

	repositoryCheck, repOk := h.workflows.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Flowgen API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		message = "Flowgen API is healthy"
		httpStatus = http.StatusOK

		if !catalogOk {
			status = "degraded"
			message = "Flowgen API is degraded"
		}
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"catalog":    catalogCheck,
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) ListNodeTypes(c fiber.Ctx) error {
	return c.JSON(NodeTypesResponse{
		NodeTypes: h.catalog.List(c.Context()),
		Degraded:  h.catalog.Degraded(),
	})
}

func (h *APIHandlers) GetNodeType(c fiber.Ctx) error {
	typeID := c.Params("type")

	if def, ok := h.catalog.Lookup(c.Context(), typeID); ok {
		return c.JSON(def)
	}

	for _, def := range h.catalog.List(c.Context()) {
		if models.IsType(def.TypeID, typeID) {
			return c.JSON(def)
		}
	}

	return handleServiceError(c, fmt.Errorf("%w: %s", services.ErrNodeTypeNotFound, typeID))
}

func (h *APIHandlers) ListPatterns(c fiber.Ctx) error {
	return c.JSON(newListResponse(h.generator.ListPatterns()))
}

func (h *APIHandlers) Generate(c fiber.Ctx) error {
	var req GenerateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	var generation *services.Generation

	if req.Pattern != "" {
		var err error

		generation, err = h.generator.GenerateFromPattern(c.Context(), req.Pattern, req.Description)
		if err != nil {
			return handleServiceError(c, err)
		}
	} else {
		generation = h.generator.Generate(c.Context(), req.Description)
	}

	h.sessions.Put(UserID(c), generation)

	return c.Status(fiber.StatusCreated).JSON(generation)
}

func (h *APIHandlers) GetGeneration(c fiber.Ctx) error {
	generation, ok := h.sessions.Get(c.Params("id"), UserID(c))
	if !ok {
		return handleServiceError(c, services.ErrGenerationNotFound)
	}

	return c.JSON(generation)
}

func (h *APIHandlers) Validate(c fiber.Ctx) error {
	doc, err := h.bindDocument(c)
	if err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	return c.JSON(h.generator.Validate(c.Context(), doc))
}

func (h *APIHandlers) Autofix(c fiber.Ctx) error {
	doc, err := h.bindDocument(c)
	if err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	result, err := h.generator.Autofix(c.Context(), doc)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) Score(c fiber.Ctx) error {
	doc, err := h.bindDocument(c)
	if err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	return c.JSON(h.generator.Score(doc))
}

func (h *APIHandlers) SaveWorkflow(c fiber.Ctx) error {
	var req SaveWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	workflow, err := h.workflows.SaveWorkflow(c.Context(), UserID(c), req.Service())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(workflow)
}

func (h *APIHandlers) ListWorkflows(c fiber.Ctx) error {
	workflows, err := h.workflows.ListWorkflows(c.Context(), UserID(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(newListResponse(workflows))
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	workflow, err := h.workflows.GetWorkflow(c.Context(), UserID(c), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) SaveTemplate(c fiber.Ctx) error {
	var req SaveTemplateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	template, err := h.templates.SaveTemplate(c.Context(), UserID(c), req.Service())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(template)
}

func (h *APIHandlers) ListTemplates(c fiber.Ctx) error {
	templates, err := h.templates.ListTemplates(c.Context(), UserID(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(newListResponse(templates))
}

func (h *APIHandlers) bindDocument(c fiber.Ctx) (*models.WorkflowDocument, error) {
	var doc models.WorkflowDocument
	if err := c.Bind().JSON(&doc); err != nil {
		return nil, err
	}

	return &doc, nil
}
