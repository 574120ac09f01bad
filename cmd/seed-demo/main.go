// Package main provides a CLI tool to seed a demo organization with a
// published questionnaire, a German translation, mixed-encoding responses
// and a report template.
// Usage: go run cmd/seed-demo/main.go -org "Acme GmbH" -responses 12
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pulsecheck-tools/pulsecheck_backend/internal/database"
	"github.com/pulsecheck-tools/pulsecheck_backend/internal/models"
	"github.com/pulsecheck-tools/pulsecheck_backend/internal/repository"
)

func main() {
	orgName := flag.String("org", "", "Organization name (required)")
	slug := flag.String("slug", "", "URL-safe slug (auto-generated from name if not provided)")
	responses := flag.Int("responses", 12, "Number of demo responses to insert")
	envFile := flag.String("env", "", "Path to .env file (defaults to .env in current dir)")
	dryRun := flag.Bool("dry-run", false, "Print what would be created without writing to database")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Seeds a demo organization with a published questionnaire, a German\n")
		fmt.Fprintf(os.Stderr, "translation and demo responses in the PulseCheck database.\n\n")
		fmt.Fprintf(os.Stderr, "Required config (via .env or environment):\n")
		fmt.Fprintf(os.Stderr, "  PULSECHECK_DATABASE_URI   MongoDB connection URI\n")
		fmt.Fprintf(os.Stderr, "  PULSECHECK_DATABASE_NAME  Database name (default: pulsecheck)\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -org \"Acme GmbH\"\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -org \"Acme GmbH\" -responses 25 -env /path/to/.env\n", os.Args[0])
	}

	flag.Parse()
	loadEnvFile(*envFile)

	if *orgName == "" {
		log.Fatal("Error: -org is required")
	}
	if *slug == "" {
		*slug = generateSlug(*orgName)
	}
	if *responses < 0 {
		log.Fatal("Error: -responses must not be negative")
	}

	dbURI := os.Getenv("PULSECHECK_DATABASE_URI")
	if dbURI == "" {
		log.Fatal("Error: PULSECHECK_DATABASE_URI is required")
	}
	dbName := os.Getenv("PULSECHECK_DATABASE_NAME")
	if dbName == "" {
		dbName = "pulsecheck"
	}

	if *dryRun {
		fmt.Printf("Would create organization %q (slug %q) with 1 questionnaire, 1 translation, %d responses\n",
			*orgName, *slug, *responses)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(dbURI))
	if err != nil {
		log.Fatalf("Error connecting to MongoDB: %v", err)
	}
	defer func() {
		if err := client.Disconnect(ctx); err != nil {
			log.Printf("Error disconnecting: %v", err)
		}
	}()

	db := client.Database(dbName)
	if err := seed(ctx, db, *orgName, *slug, *responses); err != nil {
		log.Fatalf("Error seeding demo data: %v", err)
	}
}

func seed(ctx context.Context, db *mongo.Database, orgName, slug string, responseCount int) error {
	org := &models.Organization{
		Name:            orgName,
		Slug:            slug,
		DefaultLanguage: "en",
	}
	if err := repository.NewMongoOrganizationRepository(db).Create(ctx, org); err != nil {
		return fmt.Errorf("insert organization: %w", err)
	}
	fmt.Printf("Created organization %s (%s)\n", org.Name, org.ID.Hex())

	questionnaire := demoQuestionnaire(org.ID)
	questionnaire.BeforeCreate()

	version, err := questionnaire.Publish()
	if err != nil {
		return fmt.Errorf("publish questionnaire: %w", err)
	}
	if _, err := db.Collection(database.CollectionQuestionnaires).InsertOne(ctx, questionnaire); err != nil {
		return fmt.Errorf("insert questionnaire: %w", err)
	}
	if _, err := db.Collection(database.CollectionVersions).InsertOne(ctx, version); err != nil {
		return fmt.Errorf("insert version: %w", err)
	}
	fmt.Printf("Published questionnaire %q as version %d\n", questionnaire.Title, version.VersionNumber)

	translation := germanTranslation(version.ID)
	translation.BeforeCreate()
	if _, err := db.Collection(database.CollectionTranslations).InsertOne(ctx, translation); err != nil {
		return fmt.Errorf("insert translation: %w", err)
	}

	for i := 0; i < responseCount; i++ {
		response := demoResponse(questionnaire.ID, i)
		response.BeforeCreate()
		if _, err := db.Collection(database.CollectionResponses).InsertOne(ctx, response); err != nil {
			return fmt.Errorf("insert response %d: %w", i, err)
		}
	}
	fmt.Printf("Inserted %d demo responses\n", responseCount)

	template := demoTemplate(org.ID)
	template.BeforeCreate()
	if _, err := db.Collection(database.CollectionReportTemplates).InsertOne(ctx, template); err != nil {
		return fmt.Errorf("insert report template: %w", err)
	}
	fmt.Printf("Created report template %q (%s)\n", template.Name, template.ID.Hex())

	return nil
}

// demoQuestionnaire covers every question type and both option shapes
func demoQuestionnaire(orgID primitive.ObjectID) *models.Questionnaire {
	return &models.Questionnaire{
		OrganizationID: orgID,
		Title:          "Team Pulse Survey",
		Description:    "Quarterly engagement check",
		MasterLanguage: "en",
		Schema: models.QuestionnaireSchema{
			Sections: []models.Section{
				{
					ID:    "s_engagement",
					Title: "Engagement",
					Questions: []models.Question{
						{
							ID:    "q_engagement_1",
							Text:  "How motivated do you feel at work?",
							Type:  models.QuestionTypeScale,
							Scale: &models.ScaleBounds{Min: 1, Max: 5, MinLabel: "Not at all", MaxLabel: "Very"},
						},
						{
							ID:    "q_engagement_2",
							Text:  "How likely are you to recommend us as an employer?",
							Type:  models.QuestionTypeScale,
							Scale: &models.ScaleBounds{Min: 1, Max: 5},
						},
						{
							ID:   "q_mood",
							Text: "Which word describes your week?",
							Type: models.QuestionTypeSingleChoice,
							Options: &models.OptionSet{ByLanguage: map[string][]string{
								"en": {"Energized", "Steady", "Stretched", "Drained"},
								"de": {"Energiegeladen", "Stabil", "Angespannt", "Erschöpft"},
							}},
						},
					},
				},
				{
					ID:    "s_collaboration",
					Title: "Collaboration",
					Questions: []models.Question{
						{
							ID:      "q_blockers",
							Text:    "What slows you down?",
							Type:    models.QuestionTypeMultipleChoice,
							Options: &models.OptionSet{Flat: []string{"Meetings", "Tooling", "Unclear goals", "Dependencies"}},
						},
						{
							ID:      "q_priorities",
							Text:    "Rank what we should improve first",
							Type:    models.QuestionTypeRanking,
							Options: &models.OptionSet{Flat: []string{"Documentation", "Planning", "Code review"}},
						},
						{
							ID:        "q_feedback",
							Text:      "Anything else you want to share?",
							Type:      models.QuestionTypeFreeText,
							Required:  boolPtr(false),
							MaxLength: 300,
						},
					},
				},
			},
		},
	}
}

func germanTranslation(versionID primitive.ObjectID) *models.Translation {
	return &models.Translation{
		VersionID: versionID,
		Language:  "de",
		Title:     "Team-Puls-Umfrage",
		Schema: models.QuestionnaireSchema{
			Sections: []models.Section{
				{
					ID:    "s_engagement",
					Title: "Engagement",
					Questions: []models.Question{
						{ID: "q_engagement_1", Text: "Wie motiviert fühlst du dich bei der Arbeit?", Type: models.QuestionTypeScale},
						{ID: "q_engagement_2", Text: "Wie wahrscheinlich würdest du uns als Arbeitgeber empfehlen?", Type: models.QuestionTypeScale},
						{
							ID:   "q_mood",
							Text: "Welches Wort beschreibt deine Woche?",
							Type: models.QuestionTypeSingleChoice,
							Options: &models.OptionSet{Flat: []string{
								"Energiegeladen", "Stabil", "Angespannt", "Erschöpft",
							}},
						},
					},
				},
			},
		},
	}
}

// demoResponse mixes index-encoded answers with legacy German labels so the
// reconciliation path is exercised end to end
func demoResponse(questionnaireID primitive.ObjectID, i int) *models.RawResponse {
	moods := []interface{}{0, 1, "Angespannt", "Erschöpft", 2}
	feedback := []string{
		"More pairing time would help.",
		"Der Sprint war zu voll.",
		"",
		"Great quarter overall!",
	}

	answers := map[string]interface{}{
		"q_engagement_1": 1 + rand.Intn(5),
		"q_engagement_2": 1 + rand.Intn(5),
		"q_mood":         moods[i%len(moods)],
		"q_blockers":     []interface{}{0, "Dependencies"}[:1+i%2],
		"q_priorities":   []interface{}{"Planning", 0, 2}[:3],
	}
	if text := feedback[i%len(feedback)]; text != "" {
		answers["q_feedback"] = text
	}

	return &models.RawResponse{
		QuestionnaireID: questionnaireID,
		ParticipantID:   uuid.New().String(),
		Answers:         answers,
		Metadata: map[string]interface{}{
			"department": []string{"engineering", "sales", "support"}[i%3],
			"language":   []string{"en", "de"}[i%2],
		},
	}
}

func demoTemplate(orgID primitive.ObjectID) *models.ReportTemplate {
	return &models.ReportTemplate{
		OrganizationID: &orgID,
		Name:           "Demo Engagement Report",
		Description:    "Engagement score with mood distribution",
		Config: models.ReportTemplateConfig{
			DataMappings: map[string]models.DataMapping{
				"engagement": {
					QuestionIDs:      []string{"q_engagement_1", "q_engagement_2"},
					AggregationType:  models.AggregationAverage,
					Scale:            &models.ScaleRange{Min: 1, Max: 5},
					CustomAggregator: "flower_score",
				},
				"mood": {
					QuestionIDs:     []string{"q_mood"},
					AggregationType: models.AggregationDistribution,
				},
			},
			Visualization: &models.VisualizationConfig{
				DefaultChartType: "bar",
				Charts:           map[string]string{"mood": "pie"},
			},
			Dashboard: &models.DashboardConfig{
				Layout: "grid",
				Panels: []string{"engagement", "mood"},
			},
		},
	}
}

func boolPtr(b bool) *bool { return &b }

// generateSlug converts a name into a URL-safe slug
func generateSlug(name string) string {
	slug := strings.ToLower(name)
	slug = regexp.MustCompile(`[^a-z0-9]+`).ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// loadEnvFile loads environment variables from a .env file
func loadEnvFile(path string) {
	if path == "" {
		cwd, _ := os.Getwd()
		if _, err := os.Stat(filepath.Join(cwd, ".env")); err == nil {
			path = ".env"
		}
	}

	if path != "" {
		if err := godotenv.Load(path); err != nil {
			log.Printf("Error loading .env file: %v", err)
		}
	}
}
