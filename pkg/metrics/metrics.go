// Package metrics holds the Prometheus collectors of the generation pipeline.
package metrics

import (
	"time"

	"github.com/dukex/flowgen/pkg/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all custom Prometheus metrics for the application. Methods on
// a nil *Metrics do nothing.
type Metrics struct {
	Generations        *prometheus.CounterVec
	GenerationDuration prometheus.Histogram
	ValidationIssues   *prometheus.CounterVec
	CatalogRefreshes   *prometheus.CounterVec
	CatalogSize        prometheus.Gauge
	SavedWorkflows     prometheus.Counter
	SavedTemplates     prometheus.Counter
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Generations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "flowgen_generations_total",
			Help: "Total number of generated workflows by workflow type and catalog state",
		}, []string{"workflow_type", "degraded"}),

		GenerationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "flowgen_generation_duration_seconds",
			Help:    "Time spent running the generation pipeline",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),

		ValidationIssues: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "flowgen_validation_issues_total",
			Help: "Total number of validation issues reported by type",
		}, []string{"type"}),

		CatalogRefreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "flowgen_catalog_refreshes_total",
			Help: "Total number of node catalog loads by outcome",
		}, []string{"outcome"}),

		CatalogSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "flowgen_catalog_node_types",
			Help: "Number of node types in the active catalog snapshot",
		}),

		SavedWorkflows: factory.NewCounter(prometheus.CounterOpts{
			Name: "flowgen_workflows_saved_total",
			Help: "Total number of workflows saved",
		}),

		SavedTemplates: factory.NewCounter(prometheus.CounterOpts{
			Name: "flowgen_templates_saved_total",
			Help: "Total number of templates saved",
		}),
	}
}

// CatalogRefreshed records a catalog load.
func (m *Metrics) CatalogRefreshed(size int, degraded bool) {
	if m == nil {
		return
	}

	outcome := "ok"
	if degraded {
		outcome = "fallback"
	}

	m.CatalogRefreshes.WithLabelValues(outcome).Inc()
	m.CatalogSize.Set(float64(size))
}

// RecordGeneration records one pipeline run.
func (m *Metrics) RecordGeneration(workflowType models.WorkflowType, degraded bool, elapsed time.Duration) {
	if m == nil {
		return
	}

	state := "false"
	if degraded {
		state = "true"
	}

	m.Generations.WithLabelValues(string(workflowType), state).Inc()
	m.GenerationDuration.Observe(elapsed.Seconds())
}

// RecordValidation counts the issues of a validation result.
func (m *Metrics) RecordValidation(result *models.WorkflowValidationResult) {
	if m == nil || result == nil {
		return
	}

	for _, issue := range result.Issues {
		m.ValidationIssues.WithLabelValues(string(issue.Type)).Inc()
	}
}

// RecordWorkflowSaved counts a saved workflow.
func (m *Metrics) RecordWorkflowSaved() {
	if m == nil {
		return
	}

	m.SavedWorkflows.Inc()
}

// RecordTemplateSaved counts a saved template.
func (m *Metrics) RecordTemplateSaved() {
	if m == nil {
		return
	}

	m.SavedTemplates.Inc()
}
