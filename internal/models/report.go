package models

import (
	"encoding/json"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AggregationType selects the built-in reduction applied to a dimension
type AggregationType string

const (
	AggregationAverage      AggregationType = "AVERAGE"
	AggregationSum          AggregationType = "SUM"
	AggregationCount        AggregationType = "COUNT"
	AggregationMedian       AggregationType = "MEDIAN"
	AggregationMode         AggregationType = "MODE"
	AggregationDistribution AggregationType = "DISTRIBUTION"
	AggregationPercentage   AggregationType = "PERCENTAGE"
	AggregationCustom       AggregationType = "CUSTOM"
)

// MarshalJSON converts AggregationType to lowercase for JSON serialization
func (at AggregationType) MarshalJSON() ([]byte, error) {
	return json.Marshal(strings.ToLower(string(at)))
}

// UnmarshalJSON converts lowercase JSON to AggregationType
func (at *AggregationType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*at = AggregationType(strings.ToUpper(s))
	return nil
}

// IsValid checks if the AggregationType is a valid value
func (at AggregationType) IsValid() bool {
	switch at {
	case AggregationAverage, AggregationSum, AggregationCount, AggregationMedian,
		AggregationMode, AggregationDistribution, AggregationPercentage, AggregationCustom:
		return true
	}
	return false
}

// ScaleRange optionally bounds a dimension's value space, used for
// normalization by custom aggregators
type ScaleRange struct {
	Min float64 `bson:"min" json:"min"`
	Max float64 `bson:"max" json:"max"`
}

// DataMapping maps one report dimension onto schema questions and the
// reduction applied to their answers.
type DataMapping struct {
	QuestionIDs     []string               `bson:"question_ids" json:"question_ids"`
	AggregationType AggregationType        `bson:"aggregation_type" json:"aggregation_type"`
	Scale           *ScaleRange            `bson:"scale,omitempty" json:"scale,omitempty"`
	Weights         map[string]float64     `bson:"weights,omitempty" json:"weights,omitempty"`
	Filters         map[string]interface{} `bson:"filters,omitempty" json:"filters,omitempty"`

	// Name of a runtime-registered aggregator; takes precedence over
	// AggregationType whenever the name is actually registered
	CustomAggregator string `bson:"custom_aggregator,omitempty" json:"custom_aggregator,omitempty"`
}

// VisualizationConfig configures the chart rendering of a report
type VisualizationConfig struct {
	// Chart type per dimension key; DefaultChartType covers the rest
	Charts           map[string]string `bson:"charts,omitempty" json:"charts,omitempty"`
	DefaultChartType string            `bson:"default_chart_type,omitempty" json:"default_chart_type,omitempty"`
	Palette          []string          `bson:"palette,omitempty" json:"palette,omitempty"`
}

// PDFConfig configures the PDF rendering of a report
type PDFConfig struct {
	Title         string `bson:"title,omitempty" json:"title,omitempty"`
	PageSize      string `bson:"page_size,omitempty" json:"page_size,omitempty"`
	IncludeCharts bool   `bson:"include_charts" json:"include_charts"`
}

// DashboardConfig configures the dashboard rendering of a report
type DashboardConfig struct {
	Layout string   `bson:"layout,omitempty" json:"layout,omitempty"`
	Panels []string `bson:"panels,omitempty" json:"panels,omitempty"`
}

// ReportTemplateConfig is the full configuration a report template carries
type ReportTemplateConfig struct {
	DataMappings  map[string]DataMapping `bson:"data_mappings" json:"data_mappings"`
	Visualization *VisualizationConfig   `bson:"visualization,omitempty" json:"visualization,omitempty"`
	PDF           *PDFConfig             `bson:"pdf,omitempty" json:"pdf,omitempty"`
	Dashboard     *DashboardConfig       `bson:"dashboard,omitempty" json:"dashboard,omitempty"`
}

// ReportTemplate bundles a reusable report configuration, typically shipped
// as part of an approach and assignable to organizations.
type ReportTemplate struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OrganizationID *primitive.ObjectID `bson:"organization_id,omitempty" json:"organization_id,omitempty"`
	ApproachID     *primitive.ObjectID `bson:"approach_id,omitempty" json:"approach_id,omitempty"`

	Name        string               `bson:"name" json:"name"`
	Description string               `bson:"description,omitempty" json:"description,omitempty"`
	Config      ReportTemplateConfig `bson:"config" json:"config"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// CollectionName returns the MongoDB collection name for report templates
func (ReportTemplate) CollectionName() string {
	return "report_templates"
}

// BeforeCreate sets default values before inserting a new template
func (t *ReportTemplate) BeforeCreate() {
	now := time.Now().UTC()
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	t.CreatedAt = now
	t.UpdatedAt = now
}

// BeforeUpdate sets the UpdatedAt timestamp
func (t *ReportTemplate) BeforeUpdate() {
	t.UpdatedAt = time.Now().UTC()
}

// Validate checks the template carries a usable configuration
func (t *ReportTemplate) Validate() error {
	if len(t.Config.DataMappings) == 0 {
		return ErrMissingDataMappings
	}
	return nil
}

// DimensionData is the computed result for one report dimension
type DimensionData struct {
	Value        float64            `bson:"value" json:"value"`
	Responses    int                `bson:"responses" json:"responses"`
	Distribution map[string]float64 `bson:"distribution,omitempty" json:"distribution,omitempty"`
}

// ComputedReportData is the full aggregation output stored on a report
type ComputedReportData struct {
	Dimensions     map[string]DimensionData `bson:"dimensions" json:"dimensions"`
	OverallScore   float64                  `bson:"overall_score" json:"overall_score"`
	ResponseCount  int                      `bson:"response_count" json:"response_count"`
	CompletionRate float64                  `bson:"completion_rate" json:"completion_rate"`
	GeneratedAt    time.Time                `bson:"generated_at" json:"generated_at"`
}

// ReportStatus represents the lifecycle state of a report record
// #IMPLEMENTATION_DECISION: PENDING -> GENERATING -> READY | ERROR lifecycle
type ReportStatus string

const (
	ReportStatusPending    ReportStatus = "PENDING"
	ReportStatusGenerating ReportStatus = "GENERATING"
	ReportStatusReady      ReportStatus = "READY"
	ReportStatusError      ReportStatus = "ERROR"
)

// MarshalJSON converts ReportStatus to lowercase for JSON serialization
func (rs ReportStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(strings.ToLower(string(rs)))
}

// UnmarshalJSON converts lowercase JSON to ReportStatus
func (rs *ReportStatus) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*rs = ReportStatus(strings.ToUpper(s))
	return nil
}

// IsValid checks if the ReportStatus is a valid value
func (rs ReportStatus) IsValid() bool {
	switch rs {
	case ReportStatusPending, ReportStatusGenerating, ReportStatusReady, ReportStatusError:
		return true
	}
	return false
}

// Report is the persisted outcome of one report computation, keyed by
// (organization, template, questionnaire). Regeneration overwrites it in
// place; without force the existing record is reused untouched.
type Report struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID  primitive.ObjectID `bson:"organization_id" json:"organization_id"`
	TemplateID      primitive.ObjectID `bson:"template_id" json:"template_id"`
	QuestionnaireID primitive.ObjectID `bson:"questionnaire_id" json:"questionnaire_id"`

	Status        ReportStatus        `bson:"status" json:"status"`
	ComputedData  *ComputedReportData `bson:"computed_data,omitempty" json:"computed_data,omitempty"`
	ResponseCount int                 `bson:"response_count" json:"response_count"`
	ErrorMessage  string              `bson:"error_message,omitempty" json:"error_message,omitempty"`
	GeneratedAt   *time.Time          `bson:"generated_at,omitempty" json:"generated_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// CollectionName returns the MongoDB collection name for reports
func (Report) CollectionName() string {
	return "organization_reports"
}

// BeforeCreate sets default values before inserting a new report
func (r *Report) BeforeCreate() {
	now := time.Now().UTC()
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	r.CreatedAt = now
	r.UpdatedAt = now
	if r.Status == "" {
		r.Status = ReportStatusPending
	}
}

// BeforeUpdate sets the UpdatedAt timestamp
func (r *Report) BeforeUpdate() {
	r.UpdatedAt = time.Now().UTC()
}

// MarkGenerating moves the report into the generating state
func (r *Report) MarkGenerating() {
	r.Status = ReportStatusGenerating
	r.ErrorMessage = ""
	r.UpdatedAt = time.Now().UTC()
}

// MarkReady stores computed data and clears any previous error
func (r *Report) MarkReady(data *ComputedReportData) {
	now := time.Now().UTC()
	r.Status = ReportStatusReady
	r.ComputedData = data
	r.ResponseCount = data.ResponseCount
	r.ErrorMessage = ""
	r.GeneratedAt = &now
	r.UpdatedAt = now
}

// MarkError records a failed computation. The message is retained for
// display; a failed report is never a blank record.
func (r *Report) MarkError(message string) {
	r.Status = ReportStatusError
	r.ErrorMessage = message
	r.UpdatedAt = time.Now().UTC()
}

// IsReady returns true when computed data is available
func (r *Report) IsReady() bool {
	return r.Status == ReportStatusReady
}
