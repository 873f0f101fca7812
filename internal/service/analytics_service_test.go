package service

import (
	"context"
	"errors"
	"testing"

	"qualitivate/internal/domains"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func npsAnswers(questionID string, scores ...any) []domains.Answer {
	answers := make([]domains.Answer, 0, len(scores))
	for i, score := range scores {
		answers = append(answers, domains.Answer{
			ID:         string(rune('a' + i)),
			ResponseID: "r",
			QuestionID: questionID,
			Value:      rawValue(score),
		})
	}
	return answers
}

func analyticsFixture(questions []domains.Question, analytics *stubAnalyticsProvider) (*AnalyticsService, domains.Actor) {
	survey := domains.Survey{
		ID:        "s1",
		CompanyID: int64Ptr(10),
		Type:      domains.SurveyTypeNPS,
		Status:    domains.SurveyStatusActive,
	}
	surveys := newStubSurveyProvider(survey)
	questionsProvider := newStubQuestionProvider(questions...)
	responses := newStubResponseProvider(questions...)
	svc := NewAnalyticsService(surveys, questionsProvider, responses, analytics)
	return svc, adminActor(10)
}

func npsQuestion() domains.Question {
	return domains.Question{ID: "q-nps", SurveyID: "s1", Type: domains.QuestionTypeNPS, OrderIndex: 0}
}

func TestOverviewNPSAllPromoters(t *testing.T) {
	analytics := &stubAnalyticsProvider{
		total:     5,
		completed: 5,
		answers:   npsAnswers("q-nps", 9, 10, 9, 10, 10),
	}
	svc, actor := analyticsFixture([]domains.Question{npsQuestion()}, analytics)

	overview, err := svc.Overview(context.Background(), actor, "s1")
	require.NoError(t, err)
	require.NotNil(t, overview.NPS)
	assert.Equal(t, 100, overview.NPS.Score)
	assert.Equal(t, 5, overview.NPS.Promoters)
	assert.Equal(t, 0, overview.NPS.Detractors)
	assert.Equal(t, 100, overview.CompletionRate)
}

func TestOverviewNPSAllDetractors(t *testing.T) {
	analytics := &stubAnalyticsProvider{
		total:     7,
		completed: 7,
		answers:   npsAnswers("q-nps", 0, 1, 2, 3, 4, 5, 6),
	}
	svc, actor := analyticsFixture([]domains.Question{npsQuestion()}, analytics)

	overview, err := svc.Overview(context.Background(), actor, "s1")
	require.NoError(t, err)
	require.NotNil(t, overview.NPS)
	assert.Equal(t, -100, overview.NPS.Score)
	assert.Equal(t, 7, overview.NPS.Detractors)
}

func TestOverviewNPSMixed(t *testing.T) {
	// 1 promoter, 2 passives, 2 detractors of 5: 20% - 40% = -20.
	analytics := &stubAnalyticsProvider{
		total:     5,
		completed: 5,
		answers:   npsAnswers("q-nps", 9, 8, 7, 6, 5),
	}
	svc, actor := analyticsFixture([]domains.Question{npsQuestion()}, analytics)

	overview, err := svc.Overview(context.Background(), actor, "s1")
	require.NoError(t, err)
	require.NotNil(t, overview.NPS)
	assert.Equal(t, -20, overview.NPS.Score)
	assert.Equal(t, 1, overview.NPS.Promoters)
	assert.Equal(t, 2, overview.NPS.Passives)
	assert.Equal(t, 2, overview.NPS.Detractors)
}

func TestOverviewNPSEnvelopeAndBareScoresMatch(t *testing.T) {
	answers := []domains.Answer{
		{ID: "a1", QuestionID: "q-nps", Value: rawValue(map[string]any{"value": 7})},
		{ID: "a2", QuestionID: "q-nps", Value: rawValue(7)},
	}
	analytics := &stubAnalyticsProvider{total: 2, completed: 2, answers: answers}
	svc, actor := analyticsFixture([]domains.Question{npsQuestion()}, analytics)

	overview, err := svc.Overview(context.Background(), actor, "s1")
	require.NoError(t, err)
	require.NotNil(t, overview.NPS)
	assert.Equal(t, 2, overview.NPS.Passives)
	assert.Equal(t, 0, overview.NPS.Score)
}

func TestOverviewNoScorableAnswersYieldsNilNPS(t *testing.T) {
	textQuestion := domains.Question{ID: "q-t", SurveyID: "s1", Type: domains.QuestionTypeTextShort}
	analytics := &stubAnalyticsProvider{total: 3, completed: 1}
	svc, actor := analyticsFixture([]domains.Question{textQuestion}, analytics)

	overview, err := svc.Overview(context.Background(), actor, "s1")
	require.NoError(t, err)
	assert.Nil(t, overview.NPS)
	assert.Equal(t, 33, overview.CompletionRate)
}

func TestOverviewZeroResponses(t *testing.T) {
	svc, actor := analyticsFixture([]domains.Question{npsQuestion()}, &stubAnalyticsProvider{})

	overview, err := svc.Overview(context.Background(), actor, "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, overview.CompletionRate)
	assert.Nil(t, overview.NPS)
}

func TestOverviewForbiddenForOtherCompany(t *testing.T) {
	svc, _ := analyticsFixture([]domains.Question{npsQuestion()}, &stubAnalyticsProvider{})

	outsider := adminActor(99)
	_, err := svc.Overview(context.Background(), outsider, "s1")
	assert.True(t, errors.Is(err, ErrForbidden))
}

func TestQuestionBreakdown(t *testing.T) {
	questions := []domains.Question{
		{ID: "q-rate", SurveyID: "s1", Type: domains.QuestionTypeRatingScale, Content: "Rate us", OrderIndex: 0},
		{ID: "q-choice", SurveyID: "s1", Type: domains.QuestionTypeMultipleChoice, Content: "Pick", OrderIndex: 1},
		{ID: "q-text", SurveyID: "s1", Type: domains.QuestionTypeTextLong, Content: "Tell us", OrderIndex: 2},
	}
	answers := []domains.Answer{
		{ID: "a1", QuestionID: "q-rate", Value: rawValue(4)},
		{ID: "a2", QuestionID: "q-rate", Value: rawValue(2)},
		{ID: "a3", QuestionID: "q-choice", Value: rawValue([]string{"red", "blue"})},
		{ID: "a4", QuestionID: "q-choice", Value: rawValue("red")},
		{ID: "a5", QuestionID: "q-text", Value: rawValue("hello")},
		{ID: "a6", QuestionID: "q-text", Value: rawValue("   ")},
	}
	svc, actor := analyticsFixture(questions, &stubAnalyticsProvider{answers: answers})

	stats, err := svc.QuestionBreakdown(context.Background(), actor, "s1")
	require.NoError(t, err)
	require.Len(t, stats, 3)

	rate := stats[0]
	require.NotNil(t, rate.Numeric)
	assert.Equal(t, float64(2), rate.Numeric.Min)
	assert.Equal(t, float64(4), rate.Numeric.Max)
	assert.Equal(t, float64(3), rate.Numeric.Average)
	assert.Equal(t, map[string]int{"2": 1, "4": 1}, rate.Numeric.Histogram)

	choice := stats[1]
	require.NotNil(t, choice.Choice)
	assert.Equal(t, map[string]int{"red": 2, "blue": 1}, choice.Choice.Counts)

	text := stats[2]
	require.NotNil(t, text.Text)
	assert.Equal(t, 1, text.Text.Count)
	assert.Equal(t, float64(5), text.Text.AverageLength)
}

func TestListResponsesClampsPaging(t *testing.T) {
	svc, actor := analyticsFixture([]domains.Question{npsQuestion()}, &stubAnalyticsProvider{})

	page, err := svc.ListResponses(context.Background(), actor, "s1", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.PerPage)

	page, err = svc.ListResponses(context.Background(), actor, "s1", 2, 500)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 100, page.PerPage)
}

func TestCompletionRateRounding(t *testing.T) {
	assert.Equal(t, 0, domains.CompletionRate(0, 0))
	assert.Equal(t, 0, domains.CompletionRate(5, 0))
	assert.Equal(t, 33, domains.CompletionRate(1, 3))
	assert.Equal(t, 67, domains.CompletionRate(2, 3))
	assert.Equal(t, 50, domains.CompletionRate(1, 2))
	assert.Equal(t, 100, domains.CompletionRate(4, 4))
}
