package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"qualitivate/internal/domains"
	"qualitivate/internal/storage"
)

// In-memory provider stubs shared by the service tests. They reproduce the
// error contract of the real providers (storage.ErrNotFound on misses) so
// the services under test see the same taxonomy.

type stubSurveyProvider struct {
	surveys        map[string]domains.Survey
	savedQuestions map[string][]domains.Question
	responseCount  int
}

func newStubSurveyProvider(surveys ...domains.Survey) *stubSurveyProvider {
	p := &stubSurveyProvider{
		surveys:        map[string]domains.Survey{},
		savedQuestions: map[string][]domains.Question{},
	}
	for _, s := range surveys {
		p.surveys[s.ID] = s
	}
	return p
}

func (p *stubSurveyProvider) SaveSurvey(_ context.Context, survey domains.Survey, questions []domains.Question) (domains.Survey, error) {
	p.surveys[survey.ID] = survey
	p.savedQuestions[survey.ID] = questions
	return survey, nil
}

func (p *stubSurveyProvider) GetSurveyByID(_ context.Context, surveyID string) (domains.Survey, error) {
	survey, ok := p.surveys[surveyID]
	if !ok {
		return domains.Survey{}, fmt.Errorf("get survey: %w", storage.ErrNotFound)
	}
	return survey, nil
}

func (p *stubSurveyProvider) ListSurveys(_ context.Context, companyID *int64) ([]domains.Survey, error) {
	var out []domains.Survey
	for _, s := range p.surveys {
		if companyID == nil || s.CompanyID == nil || *s.CompanyID == *companyID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (p *stubSurveyProvider) UpdateSurvey(_ context.Context, surveyID string, update domains.SurveyUpdate) (domains.Survey, error) {
	survey, ok := p.surveys[surveyID]
	if !ok {
		return domains.Survey{}, storage.ErrNotFound
	}
	if update.Title != nil {
		survey.Title = *update.Title
	}
	if update.Status != nil {
		survey.Status = *update.Status
	}
	if update.IsPublic != nil {
		survey.IsPublic = *update.IsPublic
	}
	if update.StartsAt.Present {
		survey.StartsAt = update.StartsAt.Value
	}
	if update.EndsAt.Present {
		survey.EndsAt = update.EndsAt.Value
	}
	p.surveys[surveyID] = survey
	return survey, nil
}

func (p *stubSurveyProvider) DeleteSurveyCascade(_ context.Context, surveyID string) error {
	if _, ok := p.surveys[surveyID]; !ok {
		return storage.ErrNotFound
	}
	delete(p.surveys, surveyID)
	return nil
}

func (p *stubSurveyProvider) DuplicateSurvey(_ context.Context, surveyID, newID, title string, createdBy int64) (domains.Survey, error) {
	survey, ok := p.surveys[surveyID]
	if !ok {
		return domains.Survey{}, storage.ErrNotFound
	}
	copied := survey
	copied.ID = newID
	copied.Title = title
	copied.Status = domains.SurveyStatusDraft
	copied.CreatedBy = createdBy
	p.surveys[newID] = copied
	return copied, nil
}

func (p *stubSurveyProvider) CountResponses(_ context.Context, _ string) (int, error) {
	return p.responseCount, nil
}

type stubQuestionProvider struct {
	questions    map[string]domains.Question
	translations map[string]domains.Translation
}

func newStubQuestionProvider(questions ...domains.Question) *stubQuestionProvider {
	p := &stubQuestionProvider{
		questions:    map[string]domains.Question{},
		translations: map[string]domains.Translation{},
	}
	for _, q := range questions {
		p.questions[q.ID] = q
	}
	return p
}

func (p *stubQuestionProvider) AddQuestion(_ context.Context, question domains.Question) (domains.Question, error) {
	question.OrderIndex = len(p.surveyQuestions(question.SurveyID))
	p.questions[question.ID] = question
	return question, nil
}

func (p *stubQuestionProvider) GetQuestion(_ context.Context, questionID string) (domains.Question, error) {
	question, ok := p.questions[questionID]
	if !ok {
		return domains.Question{}, fmt.Errorf("get question: %w", storage.ErrNotFound)
	}
	return question, nil
}

func (p *stubQuestionProvider) surveyQuestions(surveyID string) []domains.Question {
	var out []domains.Question
	for _, q := range p.questions {
		if q.SurveyID == surveyID {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out
}

func (p *stubQuestionProvider) ListQuestions(_ context.Context, surveyID string) ([]domains.Question, error) {
	return p.surveyQuestions(surveyID), nil
}

func (p *stubQuestionProvider) UpdateQuestion(_ context.Context, questionID string, update domains.QuestionUpdate) (domains.Question, error) {
	question, ok := p.questions[questionID]
	if !ok {
		return domains.Question{}, storage.ErrNotFound
	}
	if update.Content != nil {
		question.Content = *update.Content
	}
	if update.Options != nil {
		question.Options = *update.Options
	}
	if update.SkipRules != nil {
		question.SkipRules = *update.SkipRules
	}
	if update.IsRequired != nil {
		question.IsRequired = *update.IsRequired
	}
	p.questions[questionID] = question
	return question, nil
}

func (p *stubQuestionProvider) DeleteQuestion(_ context.Context, questionID string) error {
	question, ok := p.questions[questionID]
	if !ok {
		return storage.ErrNotFound
	}
	delete(p.questions, questionID)
	for id, q := range p.questions {
		if q.SurveyID == question.SurveyID && q.OrderIndex > question.OrderIndex {
			q.OrderIndex--
			p.questions[id] = q
		}
	}
	return nil
}

func (p *stubQuestionProvider) ReorderQuestions(_ context.Context, surveyID string, orderedIDs []string) error {
	for index, id := range orderedIDs {
		question, ok := p.questions[id]
		if !ok || question.SurveyID != surveyID {
			return storage.ErrNotFound
		}
		question.OrderIndex = index
		p.questions[id] = question
	}
	return nil
}

func (p *stubQuestionProvider) UpsertTranslation(_ context.Context, translation domains.Translation) (domains.Translation, error) {
	key := translation.QuestionID + "/" + translation.Language
	if existing, ok := p.translations[key]; ok {
		translation.ID = existing.ID
	}
	p.translations[key] = translation
	return translation, nil
}

func (p *stubQuestionProvider) ListTranslations(_ context.Context, surveyID, language string) ([]domains.Translation, error) {
	var out []domains.Translation
	for _, t := range p.translations {
		if t.Language != language {
			continue
		}
		if q, ok := p.questions[t.QuestionID]; ok && q.SurveyID == surveyID {
			out = append(out, t)
		}
	}
	return out, nil
}

type stubResponseProvider struct {
	questions map[string]domains.Question
	responses map[string]domains.Response
	answers   map[string]map[string]domains.Answer
}

func newStubResponseProvider(questions ...domains.Question) *stubResponseProvider {
	p := &stubResponseProvider{
		questions: map[string]domains.Question{},
		responses: map[string]domains.Response{},
		answers:   map[string]map[string]domains.Answer{},
	}
	for _, q := range questions {
		p.questions[q.ID] = q
	}
	return p
}

func (p *stubResponseProvider) StartResponse(_ context.Context, response domains.Response) (domains.Response, error) {
	response.StartedAt = time.Now().UTC()
	p.responses[response.ID] = response
	return response, nil
}

func (p *stubResponseProvider) GetResponse(_ context.Context, responseID string) (domains.Response, error) {
	response, ok := p.responses[responseID]
	if !ok {
		return domains.Response{}, fmt.Errorf("get response: %w", storage.ErrNotFound)
	}
	return response, nil
}

func (p *stubResponseProvider) SaveAnswer(_ context.Context, answerID, responseID, questionID string, value json.RawMessage) (domains.Answer, error) {
	response, ok := p.responses[responseID]
	if !ok || response.Status != domains.ResponseStatusStarted {
		return domains.Answer{}, fmt.Errorf("save answer: %w", storage.ErrNotFound)
	}
	answer := domains.Answer{
		ID:         answerID,
		ResponseID: responseID,
		QuestionID: questionID,
		Value:      value,
		AnsweredAt: time.Now().UTC(),
	}
	if existing, ok := p.answers[responseID][questionID]; ok {
		answer.ID = existing.ID
	}
	if p.answers[responseID] == nil {
		p.answers[responseID] = map[string]domains.Answer{}
	}
	p.answers[responseID][questionID] = answer
	return answer, nil
}

func (p *stubResponseProvider) ListAnswers(_ context.Context, responseID string) ([]domains.Answer, error) {
	var out []domains.Answer
	for _, a := range p.answers[responseID] {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out, nil
}

func (p *stubResponseProvider) CompleteResponse(_ context.Context, responseID string, answers []domains.Answer, completedAt time.Time) (domains.Response, error) {
	response, ok := p.responses[responseID]
	if !ok || response.Status != domains.ResponseStatusStarted {
		return domains.Response{}, fmt.Errorf("complete response: %w", storage.ErrNotFound)
	}
	if p.answers[responseID] == nil {
		p.answers[responseID] = map[string]domains.Answer{}
	}
	for _, answer := range answers {
		p.answers[responseID][answer.QuestionID] = answer
	}
	response.Status = domains.ResponseStatusCompleted
	response.CompletedAt = &completedAt
	p.responses[responseID] = response
	return response, nil
}

func (p *stubResponseProvider) ListRequiredQuestionIDs(_ context.Context, surveyID string) ([]string, error) {
	var questions []domains.Question
	for _, q := range p.questions {
		if q.SurveyID == surveyID && q.IsRequired {
			questions = append(questions, q)
		}
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].OrderIndex < questions[j].OrderIndex })
	ids := make([]string, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.ID)
	}
	return ids, nil
}

func (p *stubResponseProvider) ListAnsweredQuestionIDs(_ context.Context, responseID string) ([]string, error) {
	var ids []string
	for questionID := range p.answers[responseID] {
		ids = append(ids, questionID)
	}
	sort.Strings(ids)
	return ids, nil
}

func (p *stubResponseProvider) ListResponses(_ context.Context, surveyID string, page, perPage int) (domains.ResponsePage, error) {
	var all []domains.Response
	for _, r := range p.responses {
		if r.SurveyID == surveyID {
			all = append(all, r)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	start := (page - 1) * perPage
	if start > len(all) {
		start = len(all)
	}
	end := start + perPage
	if end > len(all) {
		end = len(all)
	}
	return domains.ResponsePage{
		Responses: all[start:end],
		Total:     len(all),
		Page:      page,
		PerPage:   perPage,
	}, nil
}

type stubAnalyticsProvider struct {
	total     int
	completed int
	answers   []domains.Answer
	responses []domains.Response
	trend     []domains.TrendPoint
}

func (p *stubAnalyticsProvider) GetResponseCounts(_ context.Context, _ string) (int, int, error) {
	return p.total, p.completed, nil
}

func (p *stubAnalyticsProvider) ListCompletedAnswers(_ context.Context, _ string) ([]domains.Answer, error) {
	return p.answers, nil
}

func (p *stubAnalyticsProvider) ListCompletedResponses(_ context.Context, _ string) ([]domains.Response, error) {
	return p.responses, nil
}

func (p *stubAnalyticsProvider) GetTrend(_ context.Context, _ string, _ time.Time) ([]domains.TrendPoint, error) {
	return p.trend, nil
}

type stubDashboardProvider struct {
	companies        int
	surveys          int
	total            int
	completed        int
	sites            []domains.SiteBreakdown
	siteTotal        int
	siteCompleted    int
	deptTotal        int
	deptCompleted    int
	personal         []domains.PersonalEntry
	lastCompanyID    int64
	lastSiteID       int64
	lastDepartmentID int64
}

func (p *stubDashboardProvider) GetPlatformCounts(_ context.Context) (int, int, int, int, error) {
	return p.companies, p.surveys, p.total, p.completed, nil
}

func (p *stubDashboardProvider) GetCompanyCounts(_ context.Context, companyID int64) (int, int, int, error) {
	p.lastCompanyID = companyID
	return p.surveys, p.total, p.completed, nil
}

func (p *stubDashboardProvider) GetSiteBreakdown(_ context.Context, companyID int64) ([]domains.SiteBreakdown, error) {
	p.lastCompanyID = companyID
	return p.sites, nil
}

func (p *stubDashboardProvider) GetSiteCounts(_ context.Context, siteID int64) (int, int, error) {
	p.lastSiteID = siteID
	return p.siteTotal, p.siteCompleted, nil
}

func (p *stubDashboardProvider) GetDepartmentCounts(_ context.Context, departmentID int64) (int, int, error) {
	p.lastDepartmentID = departmentID
	return p.deptTotal, p.deptCompleted, nil
}

func (p *stubDashboardProvider) ListPersonalEntries(_ context.Context, _ int64) ([]domains.PersonalEntry, error) {
	return p.personal, nil
}

type stubDistributionProvider struct {
	distributions map[string]domains.Distribution
}

func newStubDistributionProvider() *stubDistributionProvider {
	return &stubDistributionProvider{distributions: map[string]domains.Distribution{}}
}

func (p *stubDistributionProvider) SaveDistribution(_ context.Context, distribution domains.Distribution) (domains.Distribution, error) {
	distribution.CreatedAt = time.Now().UTC()
	p.distributions[distribution.ID] = distribution
	return distribution, nil
}

func (p *stubDistributionProvider) GetDistribution(_ context.Context, distributionID string) (domains.Distribution, error) {
	distribution, ok := p.distributions[distributionID]
	if !ok {
		return domains.Distribution{}, fmt.Errorf("get distribution: %w", storage.ErrNotFound)
	}
	return distribution, nil
}

func (p *stubDistributionProvider) ListDistributions(_ context.Context, surveyID string) ([]domains.DistributionSummary, error) {
	var out []domains.DistributionSummary
	for _, d := range p.distributions {
		if d.SurveyID == surveyID {
			out = append(out, domains.DistributionSummary{Distribution: d})
		}
	}
	return out, nil
}

type stubMailer struct {
	sent    []string
	failFor map[string]error
}

func (m *stubMailer) Send(to, _, _ string) error {
	if err, ok := m.failFor[to]; ok {
		return err
	}
	m.sent = append(m.sent, to)
	return nil
}

func rawValue(v any) json.RawMessage {
	encoded, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return encoded
}

func int64Ptr(v int64) *int64 { return &v }

func adminActor(companyID int64) domains.Actor {
	return domains.Actor{
		UserID:    1,
		Role:      domains.RoleCompanyAdmin,
		CompanyID: int64Ptr(companyID),
	}
}
