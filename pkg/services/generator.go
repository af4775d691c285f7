package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/flowgen/pkg/analyzer"
	"github.com/dukex/flowgen/pkg/builder"
	"github.com/dukex/flowgen/pkg/classifier"
	"github.com/dukex/flowgen/pkg/eventbus"
	"github.com/dukex/flowgen/pkg/events"
	"github.com/dukex/flowgen/pkg/insights"
	"github.com/dukex/flowgen/pkg/metrics"
	"github.com/dukex/flowgen/pkg/models"
	"github.com/dukex/flowgen/pkg/otelhelper"
	"github.com/dukex/flowgen/pkg/recommender"
	"github.com/dukex/flowgen/pkg/scorer"
	"github.com/dukex/flowgen/pkg/validator"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Catalog is the node catalog view the pipeline needs.
type Catalog interface {
	Lookup(ctx context.Context, typeID string) (*models.NodeTypeDefinition, bool)
	List(ctx context.Context) []*models.NodeTypeDefinition
	Degraded() bool
}

// Generation is the complete output of one pipeline run.
type Generation struct {
	ID              string                            `json:"id"`
	Description     string                            `json:"description"`
	Pattern         string                            `json:"pattern,omitempty"`
	Workflow        *models.GeneratedWorkflow         `json:"workflow"`
	Document        *models.WorkflowDocument          `json:"document"`
	Preview         models.Preview                    `json:"preview"`
	Validation      *models.WorkflowValidationResult  `json:"validation"`
	Score           *models.Score                     `json:"score"`
	Insights        *models.Insights                  `json:"insights"`
	Recommendations []*recommender.NodeRecommendation `json:"recommendations"`
	Message         string                            `json:"message"`
	MessageHTML     string                            `json:"message_html"`
	Degraded        bool                              `json:"degraded"`
	CreatedAt       time.Time                         `json:"created_at"`
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithTracer sets the tracer used for pipeline spans.
func WithTracer(tracer trace.Tracer) GeneratorOption {
	return func(g *Generator) { g.tracer = tracer }
}

// WithMetrics records pipeline metrics on m.
func WithMetrics(m *metrics.Metrics) GeneratorOption {
	return func(g *Generator) { g.metrics = m }
}

// WithPublisher publishes a workflow.generated event after every run.
func WithPublisher(publisher eventbus.EventPublisher) GeneratorOption {
	return func(g *Generator) { g.publisher = publisher }
}

// WithClock replaces the real clock.
func WithClock(clock clockwork.Clock) GeneratorOption {
	return func(g *Generator) { g.clock = clock }
}

// WithBuilderOptions forwards options to the workflow builder.
func WithBuilderOptions(opts ...builder.Option) GeneratorOption {
	return func(g *Generator) { g.builderOpts = append(g.builderOpts, opts...) }
}

// Generator runs the generation pipeline and exposes the validation entry points.
type Generator struct {
	logger      *slog.Logger
	catalog     Catalog
	builder     *builder.Builder
	builderOpts []builder.Option
	recommender *recommender.Recommender
	validator   *validator.Validator
	tracer      trace.Tracer
	metrics     *metrics.Metrics
	publisher   eventbus.EventPublisher
	clock       clockwork.Clock
}

// NewGenerator wires the pipeline stages over catalog.
func NewGenerator(logger *slog.Logger, catalog Catalog, opts ...GeneratorOption) *Generator {
	g := &Generator{
		logger:  logger.With("module", "generator"),
		catalog: catalog,
		tracer:  otelhelper.Tracer("flowgen"),
		clock:   clockwork.NewRealClock(),
	}

	for _, opt := range opts {
		opt(g)
	}

	g.builder = builder.New(catalog, g.builderOpts...)
	g.recommender = recommender.New(catalog)
	g.validator = validator.New(logger.With("module", "validator"), catalog)

	return g
}

// Generate turns a free-text description into a workflow. It never fails: an
// empty description yields a basic workflow and an unavailable catalog yields
// a degraded result with an explanatory message.
func (g *Generator) Generate(ctx context.Context, description string) *Generation {
	return g.run(ctx, description, nil)
}

// GenerateFromPattern builds the named pattern's node sequence.
func (g *Generator) GenerateFromPattern(ctx context.Context, name, description string) (*Generation, error) {
	pattern, ok := analyzer.PatternByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPattern, name)
	}

	return g.run(ctx, description, pattern), nil
}

// ListPatterns returns the compiled-in workflow patterns.
func (g *Generator) ListPatterns() []*models.WorkflowPattern {
	return analyzer.Patterns()
}

// Validate checks a user supplied document.
func (g *Generator) Validate(ctx context.Context, doc *models.WorkflowDocument) *models.WorkflowValidationResult {
	ctx, span := otelhelper.StartSpan(ctx, g.tracer, "validate")
	defer span.End()

	result := g.validator.Validate(ctx, doc)
	g.metrics.RecordValidation(result)

	span.SetAttributes(attribute.Int(otelhelper.IssueCountKey, len(result.Issues)))

	return result
}

// Autofix rewrites the deprecated nodes of doc that have a registered migration.
func (g *Generator) Autofix(ctx context.Context, doc *models.WorkflowDocument) (*models.AutofixResult, error) {
	ctx, span := otelhelper.StartSpan(ctx, g.tracer, "autofix")
	defer span.End()

	result, err := g.validator.Autofix(ctx, doc)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, NewValidationError("Autofix", "MISSING_NODES", err.Error(), ErrInvalidRequest)
	}

	return result, nil
}

// Score rates doc.
func (g *Generator) Score(doc *models.WorkflowDocument) *models.Score {
	return scorer.Score(doc)
}

func (g *Generator) run(ctx context.Context, description string, pattern *models.WorkflowPattern) *Generation {
	started := g.clock.Now()
	generationID := uuid.NewString()

	ctx, span := otelhelper.StartSpan(ctx, g.tracer, "generate",
		attribute.String(otelhelper.GenerationIDKey, generationID))
	defer span.End()

	g.catalog.List(ctx)
	degraded := g.catalog.Degraded()

	if degraded {
		g.logger.WarnContext(ctx, "Generating with fallback node catalog", "generation_id", generationID)
	}

	analysis := analyzer.Analyze(description)

	var workflow *models.GeneratedWorkflow

	if pattern != nil {
		workflow = g.builder.FromPattern(ctx, pattern, description)
	} else {
		workflow = g.builder.Build(ctx, classifier.Classify(description), description)
	}

	current := make([]string, 0, len(workflow.Nodes))
	for _, n := range workflow.Nodes {
		current = append(current, n.Type)
	}

	// Advisory only: the strategy picks the nodes, recommendations feed the insights.
	recommendations := g.recommender.Recommend(ctx, description, current)

	doc, err := workflow.Document()
	if err != nil {
		otelhelper.SetError(span, err)
		g.logger.ErrorContext(ctx, "Failed to project generated workflow", "generation_id", generationID, "error", err)

		doc = &models.WorkflowDocument{
			Name:        workflow.Name,
			Nodes:       []*models.DocumentNode{},
			Connections: map[string]*models.NodeConnections{},
			Settings:    map[string]any{},
		}
	}

	validation := g.validator.Validate(ctx, doc)
	score := scorer.Score(doc)

	in := insights.Input{
		Workflow:        workflow,
		Document:        doc,
		Validation:      validation,
		Score:           score,
		Patterns:        analysis.Patterns,
		Recommendations: recommendations,
		Degraded:        degraded,
	}
	summary := insights.Build(in)

	generation := &Generation{
		ID:              generationID,
		Description:     description,
		Workflow:        workflow,
		Document:        doc,
		Preview:         workflow.Preview(),
		Validation:      validation,
		Score:           score,
		Insights:        summary,
		Recommendations: recommendations,
		Degraded:        degraded,
		CreatedAt:       started.UTC(),
	}

	if pattern != nil {
		generation.Pattern = pattern.Name
	}

	reply, err := insights.Compose(in, summary)
	if err != nil {
		g.logger.ErrorContext(ctx, "Failed to compose reply", "generation_id", generationID, "error", err)

		generation.Message = fmt.Sprintf("I created %q with %d nodes.", workflow.Name, len(workflow.Nodes))
	} else {
		generation.Message = reply.Message
		generation.MessageHTML = reply.MessageHTML
	}

	span.SetAttributes(
		attribute.String(otelhelper.WorkflowTypeKey, string(workflow.Type)),
		attribute.Int(otelhelper.NodeCountKey, len(workflow.Nodes)),
		attribute.Int(otelhelper.IssueCountKey, len(validation.Issues)),
		attribute.Bool(otelhelper.DegradedKey, degraded),
	)

	g.metrics.RecordGeneration(workflow.Type, degraded, g.clock.Since(started))
	g.metrics.RecordValidation(validation)
	g.publish(ctx, generation)

	g.logger.DebugContext(ctx, "Generated workflow",
		"generation_id", generationID,
		"workflow_type", workflow.Type,
		"nodes", len(workflow.Nodes),
		"valid", validation.IsValid,
		"degraded", degraded,
	)

	return generation
}

func (g *Generator) publish(ctx context.Context, generation *Generation) {
	if g.publisher == nil {
		return
	}

	err := g.publisher.Publish(ctx, generation.ID, events.WorkflowGenerated{
		BaseEvent:       events.NewBaseEvent(events.WorkflowGeneratedEvent, generation.ID),
		WorkflowType:    generation.Workflow.Type,
		NodeCount:       len(generation.Workflow.Nodes),
		Valid:           generation.Validation.IsValid,
		Degraded:        generation.Degraded,
		MatchedPatterns: generation.Insights.MatchedPatterns,
		Pattern:         generation.Pattern,
	})
	if err != nil {
		g.logger.ErrorContext(ctx, "Failed to publish generation event", "generation_id", generation.ID, "error", err)
	}
}
