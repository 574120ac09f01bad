// Package repository provides data access layer factories
// #IMPLEMENTATION_DECISION: Factory functions wrap raw MongoDB constructors for our database.Client
package repository

import (
	"github.com/pulsecheck-tools/pulsecheck_backend/internal/database"
)

// NewOrganizationRepository creates a new organization repository using our database client
func NewOrganizationRepository(client *database.Client) OrganizationRepository {
	return NewMongoOrganizationRepository(client.Database())
}

// NewQuestionnaireRepository creates a new questionnaire repository
func NewQuestionnaireRepository(client *database.Client) QuestionnaireRepository {
	return NewMongoQuestionnaireRepository(client.Database())
}

// NewVersionRepository creates a new version repository
func NewVersionRepository(client *database.Client) VersionRepository {
	return NewMongoVersionRepository(client.Database())
}

// NewResponseRepository creates a new response repository
func NewResponseRepository(client *database.Client) ResponseRepository {
	return NewMongoResponseRepository(client.Database())
}

// NewReportTemplateRepository creates a new report template repository
func NewReportTemplateRepository(client *database.Client) ReportTemplateRepository {
	return NewMongoReportTemplateRepository(client.Database())
}

// NewReportRepository creates a new report repository
func NewReportRepository(client *database.Client) ReportRepository {
	return NewMongoReportRepository(client.Database())
}
