package service

import (
	"context"
	"testing"
	"time"

	"qualitivate/internal/domains"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func surveyFixture(surveys ...domains.Survey) (*SurveyService, *stubSurveyProvider, *stubQuestionProvider) {
	provider := newStubSurveyProvider(surveys...)
	questions := newStubQuestionProvider()
	return NewSurveyService(provider, questions), provider, questions
}

func TestCreateSurveyBuildsDraft(t *testing.T) {
	svc, provider, _ := surveyFixture()

	created, err := svc.CreateSurvey(context.Background(), adminActor(10), domains.SurveyCreate{
		Title: "Team Pulse",
		Type:  domains.SurveyTypeNPS,
		Questions: []domains.QuestionCreate{
			{Type: "nps", Content: "How likely are you to recommend us?", IsRequired: true},
			{Type: "text_short", Content: "Why?"},
		},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, domains.SurveyStatusDraft, created.Status)
	assert.Equal(t, "en", created.DefaultLanguage)
	assert.Equal(t, int64(10), *created.CompanyID)
	assert.Equal(t, int64(1), created.CreatedBy)

	saved := provider.savedQuestions[created.ID]
	require.Len(t, saved, 2)
	assert.Equal(t, 0, saved[0].OrderIndex)
	assert.Equal(t, 1, saved[1].OrderIndex)
}

func TestCreateSurveyRejectsInvalidType(t *testing.T) {
	svc, _, _ := surveyFixture()

	_, err := svc.CreateSurvey(context.Background(), adminActor(10), domains.SurveyCreate{
		Title: "Broken",
		Type:  "poll",
	})

	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestCreateSurveyRejectsInvertedWindow(t *testing.T) {
	svc, _, _ := surveyFixture()

	starts := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	ends := starts.Add(-time.Hour)
	_, err := svc.CreateSurvey(context.Background(), adminActor(10), domains.SurveyCreate{
		Title:    "Backwards",
		Type:     domains.SurveyTypeCustom,
		StartsAt: &starts,
		EndsAt:   &ends,
	})

	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestCreateSurveyForbiddenBelowDepartmentAdmin(t *testing.T) {
	svc, _, _ := surveyFixture()

	_, err := svc.CreateSurvey(context.Background(), domains.Actor{UserID: 9, Role: domains.RoleUser}, domains.SurveyCreate{
		Title: "Nope",
		Type:  domains.SurveyTypeNPS,
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestListSurveysScopedByCompany(t *testing.T) {
	svc, _, _ := surveyFixture(
		domains.Survey{ID: "s1", CompanyID: int64Ptr(10)},
		domains.Survey{ID: "s2", CompanyID: int64Ptr(20)},
	)

	mine, err := svc.ListSurveys(context.Background(), adminActor(10))
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "s1", mine[0].ID)

	all, err := svc.ListSurveys(context.Background(), domains.Actor{UserID: 1, Role: domains.RoleSuperAdmin})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGetSurveyViewHidesInactiveSurveys(t *testing.T) {
	svc, _, _ := surveyFixture(domains.Survey{ID: "s1", Status: domains.SurveyStatusDraft})

	_, err := svc.GetSurveyView(context.Background(), "s1", "")
	assert.ErrorIs(t, err, ErrSurveyNotActive)
}

func TestGetSurveyViewHonorsWindow(t *testing.T) {
	starts := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	ends := starts.AddDate(0, 0, 7)
	svc, _, _ := surveyFixture(domains.Survey{
		ID:       "s1",
		Status:   domains.SurveyStatusActive,
		StartsAt: &starts,
		EndsAt:   &ends,
	})

	svc.now = func() time.Time { return starts.Add(-time.Hour) }
	_, err := svc.GetSurveyView(context.Background(), "s1", "")
	assert.ErrorIs(t, err, ErrSurveyNotStarted)

	svc.now = func() time.Time { return ends.Add(time.Hour) }
	_, err = svc.GetSurveyView(context.Background(), "s1", "")
	assert.ErrorIs(t, err, ErrSurveyEnded)

	svc.now = func() time.Time { return starts.Add(time.Hour) }
	_, err = svc.GetSurveyView(context.Background(), "s1", "")
	assert.NoError(t, err)
}

func TestGetSurveyViewAppliesTranslations(t *testing.T) {
	svc, _, questions := surveyFixture(domains.Survey{
		ID:              "s1",
		Status:          domains.SurveyStatusActive,
		DefaultLanguage: "en",
	})
	_, err := questions.AddQuestion(context.Background(), domains.Question{
		ID: "q1", SurveyID: "s1", Type: domains.QuestionTypeTextShort, Content: "Why?",
	})
	require.NoError(t, err)
	_, err = questions.UpsertTranslation(context.Background(), domains.Translation{
		ID: "t1", QuestionID: "q1", Language: "fr", Content: "Pourquoi ?",
	})
	require.NoError(t, err)

	view, err := svc.GetSurveyView(context.Background(), "s1", "fr")
	require.NoError(t, err)
	assert.Equal(t, "fr", view.Language)
	require.Len(t, view.Questions, 1)
	assert.Equal(t, "Pourquoi ?", view.Questions[0].Content)

	// An untranslated language falls back to the default content.
	view, err = svc.GetSurveyView(context.Background(), "s1", "de")
	require.NoError(t, err)
	assert.Equal(t, "en", view.Language)
	assert.Equal(t, "Why?", view.Questions[0].Content)
}

func TestUpdateSurveyReopenBlockedByResponses(t *testing.T) {
	svc, provider, _ := surveyFixture(domains.Survey{
		ID: "s1", CompanyID: int64Ptr(10), Status: domains.SurveyStatusClosed,
	})
	provider.responseCount = 3

	active := domains.SurveyStatusActive
	_, err := svc.UpdateSurvey(context.Background(), adminActor(10), "s1", domains.SurveyUpdate{Status: &active})
	assert.ErrorIs(t, err, ErrSurveyHasResponses)

	provider.responseCount = 0
	updated, err := svc.UpdateSurvey(context.Background(), adminActor(10), "s1", domains.SurveyUpdate{Status: &active})
	require.NoError(t, err)
	assert.Equal(t, domains.SurveyStatusActive, updated.Status)
}

func TestUpdateSurveyValidatesMergedWindow(t *testing.T) {
	starts := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	svc, _, _ := surveyFixture(domains.Survey{
		ID: "s1", CompanyID: int64Ptr(10), Status: domains.SurveyStatusDraft, StartsAt: &starts,
	})

	// The new end predates the existing start.
	ends := starts.Add(-time.Hour)
	update := domains.SurveyUpdate{EndsAt: domains.Optional[time.Time]{Present: true, Value: &ends}}
	_, err := svc.UpdateSurvey(context.Background(), adminActor(10), "s1", update)

	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestDuplicateSurveyDefaultsTitle(t *testing.T) {
	svc, _, _ := surveyFixture(domains.Survey{
		ID: "s1", CompanyID: int64Ptr(10), Title: "Team Pulse", Status: domains.SurveyStatusActive,
	})

	copied, err := svc.DuplicateSurvey(context.Background(), adminActor(10), "s1", "")
	require.NoError(t, err)

	assert.NotEqual(t, "s1", copied.ID)
	assert.Equal(t, "Team Pulse (copy)", copied.Title)
	assert.Equal(t, domains.SurveyStatusDraft, copied.Status)
}

func TestNextQuestionFollowsSkipRules(t *testing.T) {
	svc, _, questions := surveyFixture(domains.Survey{ID: "s1", Status: domains.SurveyStatusActive})
	for _, q := range flowQuestions() {
		q.SurveyID = "s1"
		questions.questions[q.ID] = q
	}

	// Low score jumps straight to the end.
	index, next, err := svc.NextQuestion(context.Background(), "s1", "q0", 0)
	require.NoError(t, err)
	assert.Equal(t, FlowEnd, index)
	assert.Nil(t, next)

	// No rule matches, flow advances to the following question.
	index, next, err = svc.NextQuestion(context.Background(), "s1", "q0", 5)
	require.NoError(t, err)
	assert.Equal(t, 1, index)
	require.NotNil(t, next)
	assert.Equal(t, "q1", next.ID)
}

func TestNextQuestionHiddenOnInactiveSurvey(t *testing.T) {
	svc, _, _ := surveyFixture(domains.Survey{ID: "s1", Status: domains.SurveyStatusClosed})

	_, _, err := svc.NextQuestion(context.Background(), "s1", "q0", 5)
	assert.ErrorIs(t, err, ErrSurveyNotActive)
}

func TestNextQuestionHiddenOutsideWindow(t *testing.T) {
	starts := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	svc, _, questions := surveyFixture(domains.Survey{
		ID:       "s1",
		Status:   domains.SurveyStatusActive,
		StartsAt: &starts,
	})
	for _, q := range flowQuestions() {
		q.SurveyID = "s1"
		questions.questions[q.ID] = q
	}

	svc.now = func() time.Time { return starts.Add(-time.Hour) }
	_, _, err := svc.NextQuestion(context.Background(), "s1", "q0", 5)
	assert.ErrorIs(t, err, ErrSurveyNotStarted)
}
