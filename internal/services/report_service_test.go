package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pulsecheck-tools/pulsecheck_backend/internal/models"
)

// spyAggregator counts Aggregate calls and returns a scripted result
type spyAggregator struct {
	calls int
	data  *models.ComputedReportData
	err   error
}

func (s *spyAggregator) Aggregate(_ context.Context, _, _ primitive.ObjectID, _ models.ReportTemplateConfig) (*models.ComputedReportData, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.data, nil
}

func readyData() *models.ComputedReportData {
	return &models.ComputedReportData{
		Dimensions:     map[string]models.DimensionData{"energy": {Value: 3.4, Responses: 6}},
		OverallScore:   3.4,
		ResponseCount:  6,
		CompletionRate: 0.9,
		GeneratedAt:    time.Now().UTC(),
	}
}

func validTemplate() *models.ReportTemplate {
	tpl := &models.ReportTemplate{
		Name: "Engagement Overview",
		Config: models.ReportTemplateConfig{
			DataMappings: map[string]models.DataMapping{
				"energy": {QuestionIDs: []string{"q1"}, AggregationType: models.AggregationAverage},
			},
		},
	}
	tpl.BeforeCreate()
	return tpl
}

func ownedQuestionnaire(orgID primitive.ObjectID) *models.Questionnaire {
	return &models.Questionnaire{
		ID:             primitive.NewObjectID(),
		OrganizationID: orgID,
		Title:          "Team Pulse",
		MasterLanguage: "en",
	}
}

func TestReportService_GenerateFresh(t *testing.T) {
	tpl := validTemplate()
	orgID := primitive.NewObjectID()
	questionnaire := ownedQuestionnaire(orgID)
	reportRepo := newFakeReportRepo()
	aggregator := &spyAggregator{data: readyData()}
	svc := NewReportService(reportRepo, newFakeTemplateRepo(tpl), newFakeQuestionnaireRepo(questionnaire), newFakeResponseRepo(), aggregator)

	report, err := svc.Generate(context.Background(), orgID, tpl.ID, questionnaire.ID, false)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if report.Status != models.ReportStatusReady {
		t.Errorf("Status = %v, want %v", report.Status, models.ReportStatusReady)
	}
	if report.ComputedData == nil || report.ComputedData.OverallScore != 3.4 {
		t.Errorf("ComputedData = %+v, want overall score 3.4", report.ComputedData)
	}
	if report.ResponseCount != 6 {
		t.Errorf("ResponseCount = %d, want 6", report.ResponseCount)
	}
	if report.GeneratedAt == nil {
		t.Error("GeneratedAt not set on ready report")
	}
	if aggregator.calls != 1 {
		t.Errorf("aggregator called %d times, want 1", aggregator.calls)
	}
}

func TestReportService_GenerateReusesExisting(t *testing.T) {
	tpl := validTemplate()
	orgID := primitive.NewObjectID()
	questionnaire := ownedQuestionnaire(orgID)
	reportRepo := newFakeReportRepo()
	aggregator := &spyAggregator{data: readyData()}
	svc := NewReportService(reportRepo, newFakeTemplateRepo(tpl), newFakeQuestionnaireRepo(questionnaire), newFakeResponseRepo(), aggregator)

	first, err := svc.Generate(context.Background(), orgID, tpl.ID, questionnaire.ID, false)
	if err != nil {
		t.Fatalf("first Generate() error = %v", err)
	}

	second, err := svc.Generate(context.Background(), orgID, tpl.ID, questionnaire.ID, false)
	if err != nil {
		t.Fatalf("second Generate() error = %v", err)
	}

	if aggregator.calls != 1 {
		t.Errorf("aggregator called %d times, want 1 (existing record reused)", aggregator.calls)
	}
	if second.ID != first.ID {
		t.Errorf("second report ID = %v, want existing %v", second.ID, first.ID)
	}
}

func TestReportService_ForceRecomputes(t *testing.T) {
	tpl := validTemplate()
	orgID := primitive.NewObjectID()
	questionnaire := ownedQuestionnaire(orgID)
	reportRepo := newFakeReportRepo()
	aggregator := &spyAggregator{data: readyData()}
	svc := NewReportService(reportRepo, newFakeTemplateRepo(tpl), newFakeQuestionnaireRepo(questionnaire), newFakeResponseRepo(), aggregator)

	first, err := svc.Generate(context.Background(), orgID, tpl.ID, questionnaire.ID, false)
	if err != nil {
		t.Fatalf("first Generate() error = %v", err)
	}

	second, err := svc.Generate(context.Background(), orgID, tpl.ID, questionnaire.ID, true)
	if err != nil {
		t.Fatalf("forced Generate() error = %v", err)
	}

	if aggregator.calls != 2 {
		t.Errorf("aggregator called %d times, want 2 (force recomputes)", aggregator.calls)
	}
	// The record is overwritten in place, never duplicated
	if second.ID != first.ID {
		t.Errorf("forced report ID = %v, want existing %v", second.ID, first.ID)
	}
}

func TestReportService_AggregationFailurePersisted(t *testing.T) {
	tpl := validTemplate()
	orgID := primitive.NewObjectID()
	questionnaire := ownedQuestionnaire(orgID)
	reportRepo := newFakeReportRepo()
	aggregator := &spyAggregator{err: &InsufficientDataError{Got: 2, Minimum: MinimumResponses}}
	svc := NewReportService(reportRepo, newFakeTemplateRepo(tpl), newFakeQuestionnaireRepo(questionnaire), newFakeResponseRepo(), aggregator)

	report, err := svc.Generate(context.Background(), orgID, tpl.ID, questionnaire.ID, false)
	if err != nil {
		t.Fatalf("Generate() error = %v, want nil (failure persisted on record)", err)
	}

	if report.Status != models.ReportStatusError {
		t.Errorf("Status = %v, want %v", report.Status, models.ReportStatusError)
	}
	if report.ErrorMessage == "" {
		t.Error("ErrorMessage empty, want aggregation failure text")
	}
	if report.ComputedData != nil {
		t.Errorf("ComputedData = %+v, want nil on failed report", report.ComputedData)
	}

	stored, err := reportRepo.GetByKey(context.Background(), orgID, tpl.ID, questionnaire.ID)
	if err != nil {
		t.Fatalf("GetByKey() error = %v", err)
	}
	if stored.Status != models.ReportStatusError {
		t.Errorf("stored Status = %v, want %v", stored.Status, models.ReportStatusError)
	}
}

func TestReportService_ErrorRecordRetriedOnNextGenerate(t *testing.T) {
	tpl := validTemplate()
	orgID := primitive.NewObjectID()
	questionnaire := ownedQuestionnaire(orgID)
	reportRepo := newFakeReportRepo()
	aggregator := &spyAggregator{err: &InsufficientDataError{Got: 3, Minimum: MinimumResponses}}
	svc := NewReportService(reportRepo, newFakeTemplateRepo(tpl), newFakeQuestionnaireRepo(questionnaire), newFakeResponseRepo(), aggregator)

	if _, err := svc.Generate(context.Background(), orgID, tpl.ID, questionnaire.ID, false); err != nil {
		t.Fatalf("failing Generate() error = %v", err)
	}

	// More responses arrived; a forced regeneration succeeds and clears
	// the persisted error
	aggregator.err = nil
	aggregator.data = readyData()
	report, err := svc.Generate(context.Background(), orgID, tpl.ID, questionnaire.ID, true)
	if err != nil {
		t.Fatalf("forced Generate() error = %v", err)
	}
	if report.Status != models.ReportStatusReady {
		t.Errorf("Status = %v, want %v", report.Status, models.ReportStatusReady)
	}
	if report.ErrorMessage != "" {
		t.Errorf("ErrorMessage = %q, want cleared", report.ErrorMessage)
	}
}

func TestReportService_InvalidTemplateSurfacesBeforeAnyRecord(t *testing.T) {
	tpl := &models.ReportTemplate{Name: "Empty"}
	tpl.BeforeCreate()

	reportRepo := newFakeReportRepo()
	aggregator := &spyAggregator{data: readyData()}
	svc := NewReportService(reportRepo, newFakeTemplateRepo(tpl), newFakeQuestionnaireRepo(), newFakeResponseRepo(), aggregator)

	_, err := svc.Generate(context.Background(), primitive.NewObjectID(), tpl.ID, primitive.NewObjectID(), false)
	if !errors.Is(err, models.ErrMissingDataMappings) {
		t.Fatalf("Generate() error = %v, want %v", err, models.ErrMissingDataMappings)
	}
	if reportRepo.upserts != 0 {
		t.Errorf("upserts = %d, want 0 (no record for config errors)", reportRepo.upserts)
	}
	if aggregator.calls != 0 {
		t.Errorf("aggregator called %d times, want 0", aggregator.calls)
	}
}

func TestReportService_ForeignTemplateHidden(t *testing.T) {
	tpl := validTemplate()
	otherOrg := primitive.NewObjectID()
	tpl.OrganizationID = &otherOrg

	orgID := primitive.NewObjectID()
	questionnaire := ownedQuestionnaire(orgID)
	reportRepo := newFakeReportRepo()
	aggregator := &spyAggregator{data: readyData()}
	svc := NewReportService(reportRepo, newFakeTemplateRepo(tpl), newFakeQuestionnaireRepo(questionnaire), newFakeResponseRepo(), aggregator)

	// A template owned by another tenant reads as not-found
	_, err := svc.Generate(context.Background(), orgID, tpl.ID, questionnaire.ID, false)
	if !errors.Is(err, models.ErrReportTemplateNotFound) {
		t.Fatalf("Generate() error = %v, want %v", err, models.ErrReportTemplateNotFound)
	}
	if reportRepo.upserts != 0 {
		t.Errorf("upserts = %d, want 0 (no record for foreign templates)", reportRepo.upserts)
	}
	if aggregator.calls != 0 {
		t.Errorf("aggregator called %d times, want 0", aggregator.calls)
	}
}

func TestReportService_ForeignQuestionnaireHidden(t *testing.T) {
	tpl := validTemplate()
	questionnaire := ownedQuestionnaire(primitive.NewObjectID())
	reportRepo := newFakeReportRepo()
	aggregator := &spyAggregator{data: readyData()}
	svc := NewReportService(reportRepo, newFakeTemplateRepo(tpl), newFakeQuestionnaireRepo(questionnaire), newFakeResponseRepo(), aggregator)

	// Guessing another tenant's questionnaire ObjectID yields the same
	// not-found as a questionnaire that does not exist, before any record
	// is written
	_, err := svc.Generate(context.Background(), primitive.NewObjectID(), tpl.ID, questionnaire.ID, false)
	if !errors.Is(err, models.ErrQuestionnaireNotFound) {
		t.Fatalf("Generate() error = %v, want %v", err, models.ErrQuestionnaireNotFound)
	}
	if reportRepo.upserts != 0 {
		t.Errorf("upserts = %d, want 0 (no record for foreign questionnaires)", reportRepo.upserts)
	}
	if aggregator.calls != 0 {
		t.Errorf("aggregator called %d times, want 0", aggregator.calls)
	}
}

func TestReportService_TemplateNotFound(t *testing.T) {
	svc := NewReportService(newFakeReportRepo(), newFakeTemplateRepo(), newFakeQuestionnaireRepo(), newFakeResponseRepo(), &spyAggregator{})

	_, err := svc.Generate(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID(), false)
	if !errors.Is(err, models.ErrReportTemplateNotFound) {
		t.Errorf("Generate() error = %v, want %v", err, models.ErrReportTemplateNotFound)
	}
}

func TestReportService_CanGenerate(t *testing.T) {
	qid := primitive.NewObjectID()
	responseRepo := newFakeResponseRepo()
	svc := NewReportService(newFakeReportRepo(), newFakeTemplateRepo(), newFakeQuestionnaireRepo(), responseRepo, &spyAggregator{})

	for i := 0; i < MinimumResponses-1; i++ {
		responseRepo.Create(context.Background(), &models.RawResponse{QuestionnaireID: qid})
	}

	ok, count, err := svc.CanGenerate(context.Background(), qid)
	if err != nil {
		t.Fatalf("CanGenerate() error = %v", err)
	}
	if ok || count != MinimumResponses-1 {
		t.Errorf("CanGenerate() = (%v, %d), want (false, %d)", ok, count, MinimumResponses-1)
	}

	responseRepo.Create(context.Background(), &models.RawResponse{QuestionnaireID: qid})
	ok, count, err = svc.CanGenerate(context.Background(), qid)
	if err != nil {
		t.Fatalf("CanGenerate() error = %v", err)
	}
	if !ok || count != MinimumResponses {
		t.Errorf("CanGenerate() = (%v, %d), want (true, %d)", ok, count, MinimumResponses)
	}
}
