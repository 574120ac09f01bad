package services

import (
	"errors"
	"testing"
	"time"

	"github.com/pulsecheck-tools/pulsecheck_backend/internal/models"
)

func renderableData() *models.ComputedReportData {
	return &models.ComputedReportData{
		Dimensions: map[string]models.DimensionData{
			"energy": {Value: 3.4, Responses: 6, Distribution: map[string]float64{"3": 2, "4": 4}},
			"mood":   {Value: 0, Responses: 6, Distribution: map[string]float64{"Calm": 4, "Tense": 2}},
		},
		OverallScore:   3.4,
		ResponseCount:  6,
		CompletionRate: 0.95,
		GeneratedAt:    time.Now().UTC(),
	}
}

func rendererConfig() *models.ReportTemplateConfig {
	return &models.ReportTemplateConfig{
		DataMappings: map[string]models.DataMapping{
			"energy": {QuestionIDs: []string{"q1"}, AggregationType: models.AggregationAverage},
			"mood":   {QuestionIDs: []string{"q2"}, AggregationType: models.AggregationDistribution},
		},
		Visualization: &models.VisualizationConfig{
			Charts:           map[string]string{"mood": ChartPie},
			DefaultChartType: ChartBar,
		},
		PDF:       &models.PDFConfig{Title: "Quarterly Pulse", PageSize: "A4"},
		Dashboard: &models.DashboardConfig{Layout: "grid", Panels: []string{"mood", "energy"}},
	}
}

func TestRenderer_Validate(t *testing.T) {
	tests := []struct {
		name    string
		kind    RendererKind
		mutate  func(*models.ReportTemplateConfig)
		wantErr error
	}{
		{"Visualization with config", RendererVisualization, nil, nil},
		{"PDF with config", RendererPDF, nil, nil},
		{"Dashboard with config", RendererDashboard, nil, nil},
		{
			"No data mappings",
			RendererVisualization,
			func(cfg *models.ReportTemplateConfig) { cfg.DataMappings = nil },
			models.ErrMissingDataMappings,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := rendererConfig()
			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			err := NewRenderer(tt.kind, nil).Validate(cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRenderer_Validate_MissingSection(t *testing.T) {
	tests := []struct {
		name        string
		kind        RendererKind
		mutate      func(*models.ReportTemplateConfig)
		wantSection string
	}{
		{"Visualization section absent", RendererVisualization,
			func(cfg *models.ReportTemplateConfig) { cfg.Visualization = nil }, "visualization"},
		{"PDF section absent", RendererPDF,
			func(cfg *models.ReportTemplateConfig) { cfg.PDF = nil }, "pdf"},
		{"Dashboard section absent", RendererDashboard,
			func(cfg *models.ReportTemplateConfig) { cfg.Dashboard = nil }, "dashboard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := rendererConfig()
			tt.mutate(cfg)
			err := NewRenderer(tt.kind, nil).Validate(cfg)

			var missingErr *MissingConfigError
			if !errors.As(err, &missingErr) {
				t.Fatalf("Validate() error = %v, want *MissingConfigError", err)
			}
			if missingErr.Section != tt.wantSection {
				t.Errorf("Section = %q, want %q", missingErr.Section, tt.wantSection)
			}
		})
	}
}

func TestRenderer_Render_DataGates(t *testing.T) {
	renderer := NewRenderer(RendererVisualization, nil)
	cfg := rendererConfig()

	tests := []struct {
		name    string
		data    *models.ComputedReportData
		wantErr error
	}{
		{"Nil data", nil, ErrNoRenderableData},
		{"Zero responses", &models.ComputedReportData{}, ErrNoRenderableData},
		{
			"Below minimum responses",
			&models.ComputedReportData{ResponseCount: MinimumResponses - 1},
			ErrInsufficientResponses,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := renderer.Render(tt.data, cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Render() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRenderer_RenderVisualization(t *testing.T) {
	renderer := NewRenderer(RendererVisualization, nil)

	report, err := renderer.Render(renderableData(), rendererConfig())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if report.Kind != RendererVisualization {
		t.Errorf("Kind = %v, want %v", report.Kind, RendererVisualization)
	}
	if len(report.Elements) != 2 {
		t.Fatalf("Elements = %d, want 2", len(report.Elements))
	}
	// Dimensions render in sorted order
	if report.Elements[0].Dimension != "energy" || report.Elements[1].Dimension != "mood" {
		t.Errorf("element order = %q, %q; want energy, mood",
			report.Elements[0].Dimension, report.Elements[1].Dimension)
	}
	// energy falls to the default chart, mood has an explicit type
	if report.Elements[0].ChartType != ChartBar {
		t.Errorf("energy chart = %q, want %q", report.Elements[0].ChartType, ChartBar)
	}
	if report.Elements[1].ChartType != ChartPie {
		t.Errorf("mood chart = %q, want %q", report.Elements[1].ChartType, ChartPie)
	}
	if report.OverallScore != 3.4 || report.ResponseCount != 6 {
		t.Errorf("summary = %v/%d, want 3.4/6", report.OverallScore, report.ResponseCount)
	}
}

func TestRenderer_RenderVisualization_FallbackChartWithoutDefault(t *testing.T) {
	renderer := NewRenderer(RendererVisualization, nil)
	cfg := rendererConfig()
	cfg.Visualization = &models.VisualizationConfig{}

	report, err := renderer.Render(renderableData(), cfg)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for _, e := range report.Elements {
		if e.ChartType != ChartBar {
			t.Errorf("chart for %q = %q, want bar fallback", e.Dimension, e.ChartType)
		}
	}
}

func TestRenderer_RenderVisualization_UnsupportedChart(t *testing.T) {
	renderer := NewRenderer(RendererVisualization, nil)
	cfg := rendererConfig()
	cfg.Visualization.Charts["energy"] = "hologram"

	_, err := renderer.Render(renderableData(), cfg)

	var chartErr *UnsupportedChartError
	if !errors.As(err, &chartErr) {
		t.Fatalf("Render() error = %v, want *UnsupportedChartError", err)
	}
	if chartErr.ChartType != "hologram" {
		t.Errorf("ChartType = %q, want %q", chartErr.ChartType, "hologram")
	}
}

func TestRenderer_RenderVisualization_CustomChart(t *testing.T) {
	calls := 0
	custom := map[string]ChartBuilder{
		"gauge": func(dimension string, data models.DimensionData, cfg *models.VisualizationConfig) (RenderedElement, error) {
			calls++
			return RenderedElement{Dimension: dimension, ChartType: "gauge", Value: data.Value}, nil
		},
	}
	renderer := NewRenderer(RendererVisualization, custom)
	cfg := rendererConfig()
	cfg.Visualization.Charts["energy"] = "gauge"

	report, err := renderer.Render(renderableData(), cfg)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("custom builder called %d times, want 1", calls)
	}
	if report.Elements[0].ChartType != "gauge" {
		t.Errorf("energy chart = %q, want %q", report.Elements[0].ChartType, "gauge")
	}
}

func TestRenderer_RenderVisualization_CustomChartError(t *testing.T) {
	buildErr := errors.New("gauge build failed")
	custom := map[string]ChartBuilder{
		"gauge": func(string, models.DimensionData, *models.VisualizationConfig) (RenderedElement, error) {
			return RenderedElement{}, buildErr
		},
	}
	renderer := NewRenderer(RendererVisualization, custom)
	cfg := rendererConfig()
	cfg.Visualization.Charts["energy"] = "gauge"

	_, err := renderer.Render(renderableData(), cfg)
	if !errors.Is(err, buildErr) {
		t.Errorf("Render() error = %v, want wrapped %v", err, buildErr)
	}
}

func TestRenderer_RenderPDF(t *testing.T) {
	renderer := NewRenderer(RendererPDF, nil)

	report, err := renderer.Render(renderableData(), rendererConfig())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if report.Kind != RendererPDF {
		t.Errorf("Kind = %v, want %v", report.Kind, RendererPDF)
	}
	if report.Title != "Quarterly Pulse" {
		t.Errorf("Title = %q, want %q", report.Title, "Quarterly Pulse")
	}
	if report.Layout != "A4" {
		t.Errorf("Layout = %q, want %q", report.Layout, "A4")
	}
	if len(report.Elements) != 2 {
		t.Errorf("Elements = %d, want 2", len(report.Elements))
	}
}

func TestRenderer_RenderDashboard(t *testing.T) {
	renderer := NewRenderer(RendererDashboard, nil)

	report, err := renderer.Render(renderableData(), rendererConfig())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if report.Layout != "grid" {
		t.Errorf("Layout = %q, want %q", report.Layout, "grid")
	}
	// Panels restrict and order the elements
	if len(report.Elements) != 2 {
		t.Fatalf("Elements = %d, want 2", len(report.Elements))
	}
	if report.Elements[0].Dimension != "mood" || report.Elements[1].Dimension != "energy" {
		t.Errorf("panel order = %q, %q; want mood, energy",
			report.Elements[0].Dimension, report.Elements[1].Dimension)
	}
}

func TestRenderer_RenderDashboard_PanelFiltering(t *testing.T) {
	renderer := NewRenderer(RendererDashboard, nil)
	cfg := rendererConfig()
	cfg.Dashboard.Panels = []string{"energy", "nonexistent"}

	report, err := renderer.Render(renderableData(), cfg)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if len(report.Elements) != 1 {
		t.Fatalf("Elements = %d, want 1 (unknown panel dropped)", len(report.Elements))
	}
	if report.Elements[0].Dimension != "energy" {
		t.Errorf("element = %q, want energy", report.Elements[0].Dimension)
	}
}

func TestRenderer_RenderDashboard_NoPanelsShowsAll(t *testing.T) {
	renderer := NewRenderer(RendererDashboard, nil)
	cfg := rendererConfig()
	cfg.Dashboard.Panels = nil

	report, err := renderer.Render(renderableData(), cfg)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if len(report.Elements) != 2 {
		t.Errorf("Elements = %d, want all dimensions", len(report.Elements))
	}
}
