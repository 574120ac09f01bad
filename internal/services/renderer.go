package services

import (
	"errors"
	"fmt"
	"sort"

	"github.com/pulsecheck-tools/pulsecheck_backend/internal/models"
)

// RendererKind is the closed set of report renderers
type RendererKind string

const (
	RendererVisualization RendererKind = "visualization"
	RendererPDF           RendererKind = "pdf"
	RendererDashboard     RendererKind = "dashboard"
)

// Built-in visualization chart types
const (
	ChartBar   = "bar"
	ChartLine  = "line"
	ChartPie   = "pie"
	ChartRadar = "radar"
)

// Renderer errors
var (
	ErrInsufficientResponses = errors.New("insufficient responses")
	ErrNoRenderableData      = errors.New("no data to render")
	ErrUnknownRendererKind   = errors.New("unknown renderer kind")
)

// MissingConfigError names the absent config section a renderer requires
type MissingConfigError struct {
	Section string
}

func (e *MissingConfigError) Error() string {
	return fmt.Sprintf("missing %s configuration", e.Section)
}

// UnsupportedChartError names a visualization type that is neither built
// in nor registered. A config referencing one is a template-authoring
// error, caught before production rendering.
type UnsupportedChartError struct {
	ChartType string
}

func (e *UnsupportedChartError) Error() string {
	return fmt.Sprintf("unsupported visualization type: %s", e.ChartType)
}

// RenderedElement is one dimension prepared for presentation output
type RenderedElement struct {
	Dimension    string             `json:"dimension"`
	ChartType    string             `json:"chart_type,omitempty"`
	Value        float64            `json:"value"`
	Responses    int                `json:"responses"`
	Distribution map[string]float64 `json:"distribution,omitempty"`
}

// RenderedReport is the presentation-ready output of a renderer
type RenderedReport struct {
	Kind           RendererKind      `json:"kind"`
	Title          string            `json:"title,omitempty"`
	Layout         string            `json:"layout,omitempty"`
	OverallScore   float64           `json:"overall_score"`
	ResponseCount  int               `json:"response_count"`
	CompletionRate float64           `json:"completion_rate"`
	Elements       []RenderedElement `json:"elements"`
}

// ChartBuilder produces a custom visualization element for one dimension
type ChartBuilder func(dimension string, data models.DimensionData, cfg *models.VisualizationConfig) (RenderedElement, error)

// Renderer turns computed report data into presentation output for one
// renderer kind. Custom chart builders are injected at construction and
// the registry is read-only afterwards.
type Renderer struct {
	kind         RendererKind
	customCharts map[string]ChartBuilder
}

// NewRenderer creates a renderer for the given kind
func NewRenderer(kind RendererKind, customCharts map[string]ChartBuilder) *Renderer {
	registry := make(map[string]ChartBuilder, len(customCharts))
	for name, fn := range customCharts {
		registry[name] = fn
	}
	return &Renderer{kind: kind, customCharts: registry}
}

// Validate checks the template config carries what this renderer needs
func (r *Renderer) Validate(cfg *models.ReportTemplateConfig) error {
	if err := checkDataMappings(cfg); err != nil {
		return err
	}
	_, err := r.kindConfig(cfg)
	return err
}

// Render produces presentation output for ready report data
func (r *Renderer) Render(data *models.ComputedReportData, cfg *models.ReportTemplateConfig) (*RenderedReport, error) {
	if err := checkDataMappings(cfg); err != nil {
		return nil, err
	}
	if err := checkRenderableData(data); err != nil {
		return nil, err
	}
	if _, err := r.kindConfig(cfg); err != nil {
		return nil, err
	}

	switch r.kind {
	case RendererVisualization:
		return r.renderVisualization(data, cfg)
	case RendererPDF:
		return r.renderPDF(data, cfg)
	case RendererDashboard:
		return r.renderDashboard(data, cfg)
	}
	return nil, ErrUnknownRendererKind
}

func (r *Renderer) renderVisualization(data *models.ComputedReportData, cfg *models.ReportTemplateConfig) (*RenderedReport, error) {
	vis := cfg.Visualization
	elements := make([]RenderedElement, 0, len(data.Dimensions))
	for _, dimension := range sortedDimensions(data.Dimensions) {
		dimData := data.Dimensions[dimension]
		chartType := chartTypeFor(vis, dimension)

		if isBuiltinChart(chartType) {
			elements = append(elements, RenderedElement{
				Dimension:    dimension,
				ChartType:    chartType,
				Value:        dimData.Value,
				Responses:    dimData.Responses,
				Distribution: dimData.Distribution,
			})
			continue
		}

		builder, ok := r.customCharts[chartType]
		if !ok {
			return nil, &UnsupportedChartError{ChartType: chartType}
		}
		element, err := builder(dimension, dimData, vis)
		if err != nil {
			return nil, fmt.Errorf("chart %q: %w", chartType, err)
		}
		elements = append(elements, element)
	}

	return r.newReport(data, elements, "", ""), nil
}

func (r *Renderer) renderPDF(data *models.ComputedReportData, cfg *models.ReportTemplateConfig) (*RenderedReport, error) {
	elements := plainElements(data)
	return r.newReport(data, elements, cfg.PDF.Title, cfg.PDF.PageSize), nil
}

func (r *Renderer) renderDashboard(data *models.ComputedReportData, cfg *models.ReportTemplateConfig) (*RenderedReport, error) {
	dash := cfg.Dashboard
	elements := plainElements(data)

	// Panel list restricts and orders the dimensions when present
	if len(dash.Panels) > 0 {
		byDimension := make(map[string]RenderedElement, len(elements))
		for _, e := range elements {
			byDimension[e.Dimension] = e
		}
		filtered := make([]RenderedElement, 0, len(dash.Panels))
		for _, panel := range dash.Panels {
			if e, ok := byDimension[panel]; ok {
				filtered = append(filtered, e)
			}
		}
		elements = filtered
	}

	return r.newReport(data, elements, "", dash.Layout), nil
}

func (r *Renderer) newReport(data *models.ComputedReportData, elements []RenderedElement, title, layout string) *RenderedReport {
	return &RenderedReport{
		Kind:           r.kind,
		Title:          title,
		Layout:         layout,
		OverallScore:   data.OverallScore,
		ResponseCount:  data.ResponseCount,
		CompletionRate: data.CompletionRate,
		Elements:       elements,
	}
}

// kindConfig returns the renderer's required config sub-object
func (r *Renderer) kindConfig(cfg *models.ReportTemplateConfig) (interface{}, error) {
	switch r.kind {
	case RendererVisualization:
		if cfg.Visualization == nil {
			return nil, &MissingConfigError{Section: "visualization"}
		}
		return cfg.Visualization, nil
	case RendererPDF:
		if cfg.PDF == nil {
			return nil, &MissingConfigError{Section: "pdf"}
		}
		return cfg.PDF, nil
	case RendererDashboard:
		if cfg.Dashboard == nil {
			return nil, &MissingConfigError{Section: "dashboard"}
		}
		return cfg.Dashboard, nil
	}
	return nil, ErrUnknownRendererKind
}

// Shared validation, free functions rather than inherited methods

func checkDataMappings(cfg *models.ReportTemplateConfig) error {
	if cfg == nil || len(cfg.DataMappings) == 0 {
		return models.ErrMissingDataMappings
	}
	return nil
}

func checkRenderableData(data *models.ComputedReportData) error {
	if data == nil || data.ResponseCount == 0 {
		return ErrNoRenderableData
	}
	if data.ResponseCount < MinimumResponses {
		return ErrInsufficientResponses
	}
	return nil
}

func chartTypeFor(vis *models.VisualizationConfig, dimension string) string {
	if t, ok := vis.Charts[dimension]; ok && t != "" {
		return t
	}
	if vis.DefaultChartType != "" {
		return vis.DefaultChartType
	}
	return ChartBar
}

func isBuiltinChart(t string) bool {
	switch t {
	case ChartBar, ChartLine, ChartPie, ChartRadar:
		return true
	}
	return false
}

func plainElements(data *models.ComputedReportData) []RenderedElement {
	elements := make([]RenderedElement, 0, len(data.Dimensions))
	for _, dimension := range sortedDimensions(data.Dimensions) {
		d := data.Dimensions[dimension]
		elements = append(elements, RenderedElement{
			Dimension:    dimension,
			Value:        d.Value,
			Responses:    d.Responses,
			Distribution: d.Distribution,
		})
	}
	return elements
}

func sortedDimensions(dimensions map[string]models.DimensionData) []string {
	keys := make([]string, 0, len(dimensions))
	for k := range dimensions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
