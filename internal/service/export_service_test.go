package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"qualitivate/internal/domains"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exportFixture(analytics *stubAnalyticsProvider) (*ExportService, domains.Actor) {
	survey := domains.Survey{
		ID:        "s1",
		CompanyID: int64Ptr(10),
		Title:     "Team Pulse",
		Type:      domains.SurveyTypeNPS,
		Status:    domains.SurveyStatusActive,
	}
	questions := []domains.Question{
		{ID: "q1", SurveyID: "s1", Type: domains.QuestionTypeNPS, Content: "How likely are you to recommend us?", OrderIndex: 0},
		{ID: "q2", SurveyID: "s1", Type: domains.QuestionTypeMultipleChoice, Content: "Which of the following aspects of the workplace matter most to you?", OrderIndex: 1},
		{ID: "q3", SurveyID: "s1", Type: domains.QuestionTypeTextShort, Content: "Anything else?", OrderIndex: 2},
	}
	surveys := newStubSurveyProvider(survey)
	questionsProvider := newStubQuestionProvider(questions...)
	responses := newStubResponseProvider(questions...)
	stats := NewAnalyticsService(surveys, questionsProvider, responses, analytics)
	svc := NewExportService(surveys, questionsProvider, stats, analytics)
	return svc, adminActor(10)
}

func completedResponse(id string, completedAt time.Time) domains.Response {
	return domains.Response{
		ID:          id,
		SurveyID:    "s1",
		Status:      domains.ResponseStatusCompleted,
		StartedAt:   completedAt.Add(-5 * time.Minute),
		CompletedAt: &completedAt,
	}
}

func TestExportCSVHeadersAndRows(t *testing.T) {
	completedAt := time.Date(2026, 3, 14, 12, 30, 0, 0, time.UTC)
	analytics := &stubAnalyticsProvider{
		total:     2,
		completed: 2,
		responses: []domains.Response{
			completedResponse("r1", completedAt),
			completedResponse("r2", completedAt.Add(time.Hour)),
		},
		answers: []domains.Answer{
			{ID: "a1", ResponseID: "r1", QuestionID: "q1", Value: rawValue(map[string]any{"value": 9})},
			{ID: "a2", ResponseID: "r1", QuestionID: "q2", Value: rawValue(map[string]any{"value": []string{"pay", "flexibility"}})},
			{ID: "a3", ResponseID: "r1", QuestionID: "q3", Value: rawValue(map[string]any{"value": "keep it, up"})},
			{ID: "a4", ResponseID: "r2", QuestionID: "q1", Value: rawValue(map[string]any{"value": 4})},
		},
	}
	svc, actor := exportFixture(analytics)

	out, err := svc.ExportCSV(context.Background(), actor, "s1")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	require.Len(t, lines, 3)

	// The second question's content is over forty runes and gets cut.
	assert.Equal(t,
		`response_id,started_at,completed_at,Q1. How likely are you to recommend us?,Q2. Which of the following aspects of the wo,Q3. Anything else?`,
		lines[0])
	assert.Equal(t,
		`r1,2026-03-14T12:25:00Z,2026-03-14T12:30:00Z,9,pay; flexibility,"keep it, up"`,
		lines[1])
	assert.Equal(t,
		`r2,2026-03-14T13:25:00Z,2026-03-14T13:30:00Z,4,,`,
		lines[2])
}

func TestExportCSVNoResponses(t *testing.T) {
	svc, actor := exportFixture(&stubAnalyticsProvider{})

	out, err := svc.ExportCSV(context.Background(), actor, "s1")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "response_id,started_at,completed_at,"))
}

func TestExportJSONKeepsNativeValues(t *testing.T) {
	completedAt := time.Date(2026, 3, 14, 12, 30, 0, 0, time.UTC)
	analytics := &stubAnalyticsProvider{
		responses: []domains.Response{completedResponse("r1", completedAt)},
		answers: []domains.Answer{
			{ID: "a1", ResponseID: "r1", QuestionID: "q1", Value: rawValue(map[string]any{"value": 9})},
			{ID: "a2", ResponseID: "r1", QuestionID: "q2", Value: rawValue(map[string]any{"value": []string{"pay"}})},
		},
	}
	svc, actor := exportFixture(analytics)

	out, err := svc.ExportJSON(context.Background(), actor, "s1")
	require.NoError(t, err)

	var doc struct {
		SurveyID  string             `json:"survey_id"`
		Title     string             `json:"title"`
		Questions []domains.Question `json:"questions"`
		Responses []struct {
			ResponseID string         `json:"response_id"`
			Answers    map[string]any `json:"answers"`
		} `json:"responses"`
	}
	require.NoError(t, json.Unmarshal(out, &doc))

	assert.Equal(t, "s1", doc.SurveyID)
	assert.Equal(t, "Team Pulse", doc.Title)
	require.Len(t, doc.Questions, 3)
	require.Len(t, doc.Responses, 1)
	assert.Equal(t, "r1", doc.Responses[0].ResponseID)
	assert.Equal(t, float64(9), doc.Responses[0].Answers["q1"])
	assert.Equal(t, []any{"pay"}, doc.Responses[0].Answers["q2"])
}

func TestExportPDFRendersDocument(t *testing.T) {
	analytics := &stubAnalyticsProvider{
		total:     3,
		completed: 2,
		answers:   npsAnswers("q1", 9, 3),
	}
	svc, actor := exportFixture(analytics)

	out, err := svc.ExportPDF(context.Background(), actor, "s1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF-"))
}

func TestExportForbiddenOutsideCompany(t *testing.T) {
	svc, _ := exportFixture(&stubAnalyticsProvider{})

	_, err := svc.ExportCSV(context.Background(), adminActor(99), "s1")
	assert.ErrorIs(t, err, ErrForbidden)
}
