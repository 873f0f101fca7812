package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"qualitivate/internal/domains"
)

const trendWindowDays = 30

const (
	npsPromoterMin  = 9
	npsDetractorMax = 6
)

type AnalyticsService struct {
	surveys   SurveyProvider
	questions QuestionProvider
	responses ResponseProvider
	analytics AnalyticsProvider
	now       func() time.Time
}

type AnalyticsProvider interface {
	GetResponseCounts(ctx context.Context, surveyID string) (total, completed int, err error)
	ListCompletedAnswers(ctx context.Context, surveyID string) ([]domains.Answer, error)
	GetTrend(ctx context.Context, surveyID string, since time.Time) ([]domains.TrendPoint, error)
}

func NewAnalyticsService(surveys SurveyProvider, questions QuestionProvider, responses ResponseProvider, analytics AnalyticsProvider) *AnalyticsService {
	return &AnalyticsService{
		surveys:   surveys,
		questions: questions,
		responses: responses,
		analytics: analytics,
		now:       time.Now,
	}
}

// Overview aggregates counts, the NPS breakdown and a 30 day trend for one
// survey. Only completed responses are scorable.
func (s *AnalyticsService) Overview(ctx context.Context, actor domains.Actor, surveyID string) (domains.SurveyOverview, error) {
	survey, err := s.surveys.GetSurveyByID(ctx, surveyID)
	if err != nil {
		return domains.SurveyOverview{}, err
	}
	if err := authorizeSurveyRead(actor, survey); err != nil {
		return domains.SurveyOverview{}, err
	}

	total, completed, err := s.analytics.GetResponseCounts(ctx, surveyID)
	if err != nil {
		return domains.SurveyOverview{}, err
	}

	since := s.now().AddDate(0, 0, -trendWindowDays)
	trend, err := s.analytics.GetTrend(ctx, surveyID, since)
	if err != nil {
		return domains.SurveyOverview{}, err
	}

	nps, err := s.npsBreakdown(ctx, surveyID)
	if err != nil {
		return domains.SurveyOverview{}, err
	}

	return domains.SurveyOverview{
		SurveyID:       surveyID,
		TotalResponses: total,
		Completed:      completed,
		CompletionRate: domains.CompletionRate(completed, total),
		NPS:            nps,
		Trend:          trend,
	}, nil
}

// npsBreakdown classifies answers to nps questions of completed responses.
// Returns nil when the survey has no scorable answers at all, so a custom
// survey without an nps question renders no score instead of zero.
func (s *AnalyticsService) npsBreakdown(ctx context.Context, surveyID string) (*domains.NPSBreakdown, error) {
	questions, err := s.questions.ListQuestions(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	npsQuestions := make(map[string]struct{})
	for _, q := range questions {
		if q.Type == domains.QuestionTypeNPS {
			npsQuestions[q.ID] = struct{}{}
		}
	}
	if len(npsQuestions) == 0 {
		return nil, nil
	}

	answers, err := s.analytics.ListCompletedAnswers(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	var breakdown domains.NPSBreakdown
	for _, answer := range answers {
		if _, ok := npsQuestions[answer.QuestionID]; !ok {
			continue
		}
		score, ok := domains.NumericValue(domains.DecodeAnswerValue(answer.Value))
		if !ok {
			continue
		}
		breakdown.Total++
		switch {
		case score >= npsPromoterMin:
			breakdown.Promoters++
		case score <= npsDetractorMax:
			breakdown.Detractors++
		default:
			breakdown.Passives++
		}
	}
	if breakdown.Total == 0 {
		return nil, nil
	}

	promoterPct := float64(breakdown.Promoters) / float64(breakdown.Total) * 100
	detractorPct := float64(breakdown.Detractors) / float64(breakdown.Total) * 100
	breakdown.Score = roundHalfUp(promoterPct - detractorPct)
	return &breakdown, nil
}

func roundHalfUp(v float64) int {
	if v >= 0 {
		return int(v + 0.5)
	}
	return int(v - 0.5)
}

// QuestionBreakdown builds a per-question distribution over completed
// responses. The stat block populated per question follows its type.
func (s *AnalyticsService) QuestionBreakdown(ctx context.Context, actor domains.Actor, surveyID string) ([]domains.QuestionStats, error) {
	survey, err := s.surveys.GetSurveyByID(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	if err := authorizeSurveyRead(actor, survey); err != nil {
		return nil, err
	}

	questions, err := s.questions.ListQuestions(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	answers, err := s.analytics.ListCompletedAnswers(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	byQuestion := make(map[string][]any)
	for _, answer := range answers {
		byQuestion[answer.QuestionID] = append(byQuestion[answer.QuestionID], domains.DecodeAnswerValue(answer.Value))
	}

	stats := make([]domains.QuestionStats, 0, len(questions))
	for _, q := range questions {
		values := byQuestion[q.ID]
		qs := domains.QuestionStats{
			QuestionID: q.ID,
			Type:       q.Type,
			Content:    q.Content,
			OrderIndex: q.OrderIndex,
			Answered:   len(values),
		}
		switch q.Type {
		case domains.QuestionTypeNPS, domains.QuestionTypeRatingScale:
			qs.Numeric = numericStats(values)
		case domains.QuestionTypeMultipleChoice, domains.QuestionTypeMatrix:
			qs.Choice = choiceStats(values)
		case domains.QuestionTypeTextShort, domains.QuestionTypeTextLong:
			qs.Text = textStats(values)
		}
		stats = append(stats, qs)
	}
	return stats, nil
}

func numericStats(values []any) *domains.NumericStats {
	stats := domains.NumericStats{Histogram: map[string]int{}}
	var sum float64
	var count int
	for _, v := range values {
		n, ok := domains.NumericValue(v)
		if !ok {
			continue
		}
		if count == 0 || n < stats.Min {
			stats.Min = n
		}
		if count == 0 || n > stats.Max {
			stats.Max = n
		}
		sum += n
		count++
		stats.Histogram[strconv.FormatFloat(n, 'f', -1, 64)]++
	}
	if count == 0 {
		return nil
	}
	stats.Average = sum / float64(count)
	return &stats
}

func choiceStats(values []any) *domains.ChoiceStats {
	stats := domains.ChoiceStats{Counts: map[string]int{}}
	var seen bool
	for _, v := range values {
		for _, choice := range domains.StringValues(v) {
			stats.Counts[choice]++
			seen = true
		}
	}
	if !seen {
		return nil
	}
	return &stats
}

func textStats(values []any) *domains.TextStats {
	var stats domains.TextStats
	var totalLen int
	for _, v := range values {
		text, ok := v.(string)
		if !ok {
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		stats.Count++
		totalLen += len([]rune(text))
	}
	if stats.Count == 0 {
		return nil
	}
	stats.AverageLength = float64(totalLen) / float64(stats.Count)
	return &stats
}

// ListResponses pages through a survey's responses, newest first.
func (s *AnalyticsService) ListResponses(ctx context.Context, actor domains.Actor, surveyID string, page, perPage int) (domains.ResponsePage, error) {
	survey, err := s.surveys.GetSurveyByID(ctx, surveyID)
	if err != nil {
		return domains.ResponsePage{}, err
	}
	if err := authorizeSurveyRead(actor, survey); err != nil {
		return domains.ResponsePage{}, err
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	return s.responses.ListResponses(ctx, surveyID, page, perPage)
}

// ResponseDetail returns one response with all of its answers. Scope is
// checked against the owning survey, not the response itself.
func (s *AnalyticsService) ResponseDetail(ctx context.Context, actor domains.Actor, responseID string) (domains.ResponseDetail, error) {
	response, err := s.responses.GetResponse(ctx, responseID)
	if err != nil {
		return domains.ResponseDetail{}, err
	}
	survey, err := s.surveys.GetSurveyByID(ctx, response.SurveyID)
	if err != nil {
		return domains.ResponseDetail{}, fmt.Errorf("load owning survey: %w", err)
	}
	if err := authorizeSurveyRead(actor, survey); err != nil {
		return domains.ResponseDetail{}, err
	}

	answers, err := s.responses.ListAnswers(ctx, responseID)
	if err != nil {
		return domains.ResponseDetail{}, err
	}
	return domains.ResponseDetail{Response: response, Answers: answers}, nil
}
