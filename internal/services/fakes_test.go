package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pulsecheck-tools/pulsecheck_backend/internal/models"
	"github.com/pulsecheck-tools/pulsecheck_backend/internal/repository"
)

// In-memory repository fakes shared by service tests

// testOrgID is the tenant every fixture questionnaire belongs to
var testOrgID = primitive.NewObjectID()

func f64(v float64) *float64 {
	return &v
}

type fakeQuestionnaireRepo struct {
	questionnaires map[primitive.ObjectID]*models.Questionnaire
}

func newFakeQuestionnaireRepo(qs ...*models.Questionnaire) *fakeQuestionnaireRepo {
	repo := &fakeQuestionnaireRepo{questionnaires: map[primitive.ObjectID]*models.Questionnaire{}}
	for _, q := range qs {
		repo.questionnaires[q.ID] = q
	}
	return repo
}

func (f *fakeQuestionnaireRepo) Create(_ context.Context, q *models.Questionnaire) error {
	f.questionnaires[q.ID] = q
	return nil
}

func (f *fakeQuestionnaireRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Questionnaire, error) {
	q, ok := f.questionnaires[id]
	if !ok {
		return nil, models.ErrQuestionnaireNotFound
	}
	return q, nil
}

func (f *fakeQuestionnaireRepo) Update(_ context.Context, q *models.Questionnaire) error {
	if _, ok := f.questionnaires[q.ID]; !ok {
		return models.ErrQuestionnaireNotFound
	}
	f.questionnaires[q.ID] = q
	return nil
}

func (f *fakeQuestionnaireRepo) ListByOrganization(_ context.Context, orgID primitive.ObjectID, opts repository.PaginationOptions) (*repository.PaginatedResult[models.Questionnaire], error) {
	items := []models.Questionnaire{}
	for _, q := range f.questionnaires {
		if q.OrganizationID == orgID {
			items = append(items, *q)
		}
	}
	return &repository.PaginatedResult[models.Questionnaire]{
		Items:      items,
		TotalCount: int64(len(items)),
		Page:       opts.Page,
		Limit:      opts.Limit,
		TotalPages: 1,
	}, nil
}

type fakeVersionRepo struct {
	versions     map[primitive.ObjectID][]models.QuestionnaireVersion
	translations map[primitive.ObjectID][]*models.Translation
}

func newFakeVersionRepo() *fakeVersionRepo {
	return &fakeVersionRepo{
		versions:     map[primitive.ObjectID][]models.QuestionnaireVersion{},
		translations: map[primitive.ObjectID][]*models.Translation{},
	}
}

func (f *fakeVersionRepo) CreateVersion(_ context.Context, v *models.QuestionnaireVersion) error {
	f.versions[v.QuestionnaireID] = append(f.versions[v.QuestionnaireID], *v)
	return nil
}

func (f *fakeVersionRepo) GetVersion(_ context.Context, id primitive.ObjectID) (*models.QuestionnaireVersion, error) {
	for _, list := range f.versions {
		for i := range list {
			if list[i].ID == id {
				return &list[i], nil
			}
		}
	}
	return nil, models.ErrVersionNotFound
}

func (f *fakeVersionRepo) GetCurrentVersion(_ context.Context, questionnaireID primitive.ObjectID) (*models.QuestionnaireVersion, error) {
	list := f.versions[questionnaireID]
	if len(list) == 0 {
		return nil, models.ErrVersionNotFound
	}
	current := &list[0]
	for i := range list {
		if list[i].VersionNumber > current.VersionNumber {
			current = &list[i]
		}
	}
	return current, nil
}

func (f *fakeVersionRepo) ListVersions(_ context.Context, questionnaireID primitive.ObjectID) ([]models.QuestionnaireVersion, error) {
	return f.versions[questionnaireID], nil
}

func (f *fakeVersionRepo) CreateTranslation(_ context.Context, t *models.Translation) error {
	for _, existing := range f.translations[t.VersionID] {
		if existing.Language == t.Language {
			return models.ErrTranslationAlreadyExists
		}
	}
	f.translations[t.VersionID] = append(f.translations[t.VersionID], t)
	return nil
}

func (f *fakeVersionRepo) ListTranslations(_ context.Context, versionID primitive.ObjectID) ([]*models.Translation, error) {
	return f.translations[versionID], nil
}

type fakeResponseRepo struct {
	responses map[primitive.ObjectID][]*models.RawResponse
}

func newFakeResponseRepo() *fakeResponseRepo {
	return &fakeResponseRepo{responses: map[primitive.ObjectID][]*models.RawResponse{}}
}

func (f *fakeResponseRepo) Create(_ context.Context, r *models.RawResponse) error {
	f.responses[r.QuestionnaireID] = append(f.responses[r.QuestionnaireID], r)
	return nil
}

func (f *fakeResponseRepo) ListByQuestionnaire(_ context.Context, questionnaireID primitive.ObjectID) ([]*models.RawResponse, error) {
	return f.responses[questionnaireID], nil
}

func (f *fakeResponseRepo) CountByQuestionnaire(_ context.Context, questionnaireID primitive.ObjectID) (int64, error) {
	return int64(len(f.responses[questionnaireID])), nil
}

type fakeTemplateRepo struct {
	templates map[primitive.ObjectID]*models.ReportTemplate
}

func newFakeTemplateRepo(ts ...*models.ReportTemplate) *fakeTemplateRepo {
	repo := &fakeTemplateRepo{templates: map[primitive.ObjectID]*models.ReportTemplate{}}
	for _, t := range ts {
		repo.templates[t.ID] = t
	}
	return repo
}

func (f *fakeTemplateRepo) Create(_ context.Context, t *models.ReportTemplate) error {
	f.templates[t.ID] = t
	return nil
}

func (f *fakeTemplateRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.ReportTemplate, error) {
	t, ok := f.templates[id]
	if !ok {
		return nil, models.ErrReportTemplateNotFound
	}
	return t, nil
}

func (f *fakeTemplateRepo) ListForOrganization(_ context.Context, orgID primitive.ObjectID) ([]models.ReportTemplate, error) {
	out := []models.ReportTemplate{}
	for _, t := range f.templates {
		if t.OrganizationID == nil || *t.OrganizationID == orgID {
			out = append(out, *t)
		}
	}
	return out, nil
}

type reportKey struct {
	org, template, questionnaire primitive.ObjectID
}

type fakeReportRepo struct {
	byKey   map[reportKey]*models.Report
	upserts int
	updates int
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{byKey: map[reportKey]*models.Report{}}
}

func (f *fakeReportRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Report, error) {
	for _, r := range f.byKey {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, models.ErrReportNotFound
}

func (f *fakeReportRepo) GetByKey(_ context.Context, orgID, templateID, questionnaireID primitive.ObjectID) (*models.Report, error) {
	r, ok := f.byKey[reportKey{orgID, templateID, questionnaireID}]
	if !ok {
		return nil, models.ErrReportNotFound
	}
	return r, nil
}

func (f *fakeReportRepo) Upsert(_ context.Context, report *models.Report) error {
	f.upserts++
	f.byKey[reportKey{report.OrganizationID, report.TemplateID, report.QuestionnaireID}] = report
	return nil
}

func (f *fakeReportRepo) Update(_ context.Context, report *models.Report) error {
	f.updates++
	f.byKey[reportKey{report.OrganizationID, report.TemplateID, report.QuestionnaireID}] = report
	return nil
}

func (f *fakeReportRepo) ListByQuestionnaire(_ context.Context, questionnaireID primitive.ObjectID) ([]models.Report, error) {
	out := []models.Report{}
	for _, r := range f.byKey {
		if r.QuestionnaireID == questionnaireID {
			out = append(out, *r)
		}
	}
	return out, nil
}

// Interface conformance for the fakes
var (
	_ repository.QuestionnaireRepository  = (*fakeQuestionnaireRepo)(nil)
	_ repository.VersionRepository        = (*fakeVersionRepo)(nil)
	_ repository.ResponseRepository       = (*fakeResponseRepo)(nil)
	_ repository.ReportTemplateRepository = (*fakeTemplateRepo)(nil)
	_ repository.ReportRepository         = (*fakeReportRepo)(nil)
)
