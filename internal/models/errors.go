package models

import "errors"

// Model validation and operation errors
var (
	// General errors
	ErrNotFound                = errors.New("resource not found")
	ErrAlreadyExists           = errors.New("resource already exists")
	ErrInvalidInput            = errors.New("invalid input")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrForbidden               = errors.New("forbidden")
	ErrInvalidStatusTransition = errors.New("invalid status transition")

	// Organization errors
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrSlugAlreadyExists    = errors.New("organization slug already exists")

	// Questionnaire errors
	ErrQuestionnaireNotFound     = errors.New("questionnaire not found")
	ErrQuestionnaireNotDraft     = errors.New("questionnaire is not in draft status")
	ErrQuestionnaireNotPublished = errors.New("questionnaire is not published")

	// Version and translation errors
	ErrVersionNotFound          = errors.New("questionnaire version not found")
	ErrVersionAlreadyExists     = errors.New("questionnaire version already exists")
	ErrTranslationNotFound      = errors.New("translation not found")
	ErrTranslationAlreadyExists = errors.New("translation already exists for this language")

	// Schema and answer errors
	ErrQuestionNotFound    = errors.New("question not found in schema")
	ErrInvalidQuestionType = errors.New("invalid question type")
	ErrInvalidScaleBounds  = errors.New("scale min must not exceed max")
	ErrAnswerTypeMismatch  = errors.New("answer value does not match question type")
	ErrInvalidOptionShape  = errors.New("options must be a list or a language map")

	// Response errors
	ErrResponseNotFound = errors.New("response not found")

	// Report template errors
	ErrReportTemplateNotFound = errors.New("report template not found")
	ErrMissingDataMappings    = errors.New("report template has no data mappings")

	// Report errors
	ErrReportNotFound      = errors.New("report not found")
	ErrReportAlreadyExists = errors.New("report already exists for this questionnaire and template")
)
