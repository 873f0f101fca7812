package service

import (
	"context"
	"log/slog"
	"time"

	"qualitivate/internal/domains"
	"qualitivate/internal/storage"

	"github.com/google/uuid"
)

type SurveyService struct {
	provider  SurveyProvider
	questions QuestionProvider
	now       func() time.Time
}

type SurveyProvider interface {
	SaveSurvey(ctx context.Context, survey domains.Survey, questions []domains.Question) (domains.Survey, error)
	GetSurveyByID(ctx context.Context, surveyID string) (domains.Survey, error)
	ListSurveys(ctx context.Context, companyID *int64) ([]domains.Survey, error)
	UpdateSurvey(ctx context.Context, surveyID string, update domains.SurveyUpdate) (domains.Survey, error)
	DeleteSurveyCascade(ctx context.Context, surveyID string) error
	DuplicateSurvey(ctx context.Context, surveyID, newID, title string, createdBy int64) (domains.Survey, error)
	CountResponses(ctx context.Context, surveyID string) (int, error)
}

type QuestionProvider interface {
	AddQuestion(ctx context.Context, question domains.Question) (domains.Question, error)
	GetQuestion(ctx context.Context, questionID string) (domains.Question, error)
	ListQuestions(ctx context.Context, surveyID string) ([]domains.Question, error)
	UpdateQuestion(ctx context.Context, questionID string, update domains.QuestionUpdate) (domains.Question, error)
	DeleteQuestion(ctx context.Context, questionID string) error
	ReorderQuestions(ctx context.Context, surveyID string, orderedIDs []string) error
	UpsertTranslation(ctx context.Context, translation domains.Translation) (domains.Translation, error)
	ListTranslations(ctx context.Context, surveyID, language string) ([]domains.Translation, error)
}

func NewSurveyService(provider SurveyProvider, questions QuestionProvider) *SurveyService {
	return &SurveyService{
		provider:  provider,
		questions: questions,
		now:       time.Now,
	}
}

func (s *SurveyService) CreateSurvey(ctx context.Context, actor domains.Actor, payload domains.SurveyCreate) (domains.Survey, error) {
	if actor.Role.Level() < domains.RoleDepartmentAdmin.Level() {
		return domains.Survey{}, ErrForbidden
	}
	if !domains.ValidSurveyType(payload.Type) {
		return domains.Survey{}, NewValidationError("invalid survey type %q", payload.Type)
	}
	if payload.StartsAt != nil && payload.EndsAt != nil && !payload.EndsAt.After(*payload.StartsAt) {
		return domains.Survey{}, NewValidationError("ends_at must be after starts_at")
	}

	language := payload.DefaultLanguage
	if language == "" {
		language = "en"
	}

	survey := domains.Survey{
		ID:              uuid.NewString(),
		CompanyID:       actor.CompanyID,
		Title:           payload.Title,
		Description:     payload.Description,
		Type:            payload.Type,
		Status:          domains.SurveyStatusDraft,
		IsPublic:        payload.IsPublic,
		IsAnonymous:     payload.IsAnonymous,
		DefaultLanguage: language,
		Settings:        payload.Settings,
		StartsAt:        payload.StartsAt,
		EndsAt:          payload.EndsAt,
		CreatedBy:       actor.UserID,
	}

	questions := make([]domains.Question, 0, len(payload.Questions))
	ids := make(map[string]struct{}, len(payload.Questions))
	for i, create := range payload.Questions {
		question, err := buildQuestion(survey.ID, create, i)
		if err != nil {
			return domains.Survey{}, err
		}
		questions = append(questions, question)
		ids[question.ID] = struct{}{}
	}
	for _, question := range questions {
		if err := domains.ValidateSkipRules(question.SkipRules, ids); err != nil {
			return domains.Survey{}, NewValidationError("question %s: %v", question.ID, err)
		}
	}

	created, err := s.provider.SaveSurvey(ctx, survey, questions)
	if err != nil {
		slog.Error("save survey failed", "err", err)
		return domains.Survey{}, err
	}
	return created, nil
}

func buildQuestion(surveyID string, create domains.QuestionCreate, orderIndex int) (domains.Question, error) {
	if !domains.ValidQuestionType(create.Type) {
		return domains.Question{}, NewValidationError("invalid question type %q", create.Type)
	}
	questionType := domains.NormalizeQuestionType(create.Type)
	if err := domains.ValidateQuestionOptions(questionType, create.Options); err != nil {
		return domains.Question{}, NewValidationError("question options: %v", err)
	}
	return domains.Question{
		ID:         uuid.NewString(),
		SurveyID:   surveyID,
		Type:       questionType,
		Content:    create.Content,
		Options:    create.Options,
		SkipRules:  create.SkipRules,
		IsRequired: create.IsRequired,
		OrderIndex: orderIndex,
	}, nil
}

func (s *SurveyService) GetSurvey(ctx context.Context, actor domains.Actor, surveyID string) (domains.Survey, error) {
	survey, err := s.provider.GetSurveyByID(ctx, surveyID)
	if err != nil {
		return domains.Survey{}, err
	}
	if err := authorizeSurveyRead(actor, survey); err != nil {
		return domains.Survey{}, err
	}
	return survey, nil
}

func (s *SurveyService) ListSurveys(ctx context.Context, actor domains.Actor) ([]domains.Survey, error) {
	if actor.Role == domains.RoleSuperAdmin {
		return s.provider.ListSurveys(ctx, nil)
	}
	if actor.CompanyID == nil {
		return nil, ErrForbidden
	}
	return s.provider.ListSurveys(ctx, actor.CompanyID)
}

// GetSurveyView returns the public takeable projection: metadata plus the
// ordered question list, translated when the requested language has
// translations and falling back to default content where it does not.
// Only surveys inside their open window are viewable, same as StartResponse.
func (s *SurveyService) GetSurveyView(ctx context.Context, surveyID, language string) (domains.SurveyView, error) {
	survey, err := s.provider.GetSurveyByID(ctx, surveyID)
	if err != nil {
		return domains.SurveyView{}, err
	}
	if err := WindowOpen(survey, s.now()); err != nil {
		return domains.SurveyView{}, err
	}

	questions, err := s.questions.ListQuestions(ctx, surveyID)
	if err != nil {
		return domains.SurveyView{}, err
	}

	applied := survey.DefaultLanguage
	if language != "" && language != survey.DefaultLanguage {
		translations, err := s.questions.ListTranslations(ctx, surveyID, language)
		if err != nil {
			return domains.SurveyView{}, err
		}
		if len(translations) > 0 {
			applied = language
			byQuestion := make(map[string]domains.Translation, len(translations))
			for _, t := range translations {
				byQuestion[t.QuestionID] = t
			}
			for i := range questions {
				if t, ok := byQuestion[questions[i].ID]; ok {
					questions[i].Content = t.Content
				}
			}
		}
	}

	return domains.SurveyView{
		Survey:    survey,
		Questions: questions,
		Language:  applied,
	}, nil
}

// NextQuestion evaluates the flow from the given question and answer
// value. Returns FlowEnd and nil when the flow is finished. Only surveys
// inside their open window are evaluated, matching the takeable view.
func (s *SurveyService) NextQuestion(ctx context.Context, surveyID, questionID string, value any) (int, *domains.Question, error) {
	survey, err := s.provider.GetSurveyByID(ctx, surveyID)
	if err != nil {
		return FlowEnd, nil, err
	}
	if err := WindowOpen(survey, s.now()); err != nil {
		return FlowEnd, nil, err
	}

	questions, err := s.questions.ListQuestions(ctx, surveyID)
	if err != nil {
		return FlowEnd, nil, err
	}

	var current *domains.Question
	for i := range questions {
		if questions[i].ID == questionID {
			current = &questions[i]
			break
		}
	}
	if current == nil {
		return FlowEnd, nil, storage.ErrNotFound
	}

	nextIndex := EvaluateNext(*current, value, questions)
	if nextIndex == FlowEnd {
		return FlowEnd, nil, nil
	}
	for i := range questions {
		if questions[i].OrderIndex == nextIndex {
			return nextIndex, &questions[i], nil
		}
	}
	return FlowEnd, nil, nil
}

func (s *SurveyService) UpdateSurvey(ctx context.Context, actor domains.Actor, surveyID string, update domains.SurveyUpdate) (domains.Survey, error) {
	survey, err := s.provider.GetSurveyByID(ctx, surveyID)
	if err != nil {
		return domains.Survey{}, err
	}
	if err := authorizeSurveyManage(actor, survey); err != nil {
		return domains.Survey{}, err
	}
	if !update.HasChanges() {
		return survey, nil
	}

	if update.Status != nil {
		if !domains.ValidSurveyStatus(*update.Status) {
			return domains.Survey{}, NewValidationError("invalid status %q", *update.Status)
		}
		if survey.Status == domains.SurveyStatusClosed && *update.Status == domains.SurveyStatusActive {
			count, err := s.provider.CountResponses(ctx, surveyID)
			if err != nil {
				return domains.Survey{}, err
			}
			if count > 0 {
				return domains.Survey{}, ErrSurveyHasResponses
			}
		}
	}

	updatedStarts := survey.StartsAt
	if update.StartsAt.Present {
		updatedStarts = update.StartsAt.Value
	}
	updatedEnds := survey.EndsAt
	if update.EndsAt.Present {
		updatedEnds = update.EndsAt.Value
	}
	if updatedStarts != nil && updatedEnds != nil && !updatedEnds.After(*updatedStarts) {
		return domains.Survey{}, NewValidationError("ends_at must be after starts_at")
	}

	updated, err := s.provider.UpdateSurvey(ctx, surveyID, update)
	if err != nil {
		slog.Error("update survey failed", "err", err, "survey_id", surveyID)
		return domains.Survey{}, err
	}
	return updated, nil
}

func (s *SurveyService) DeleteSurvey(ctx context.Context, actor domains.Actor, surveyID string) error {
	survey, err := s.provider.GetSurveyByID(ctx, surveyID)
	if err != nil {
		return err
	}
	if err := authorizeSurveyManage(actor, survey); err != nil {
		return err
	}
	if err := s.provider.DeleteSurveyCascade(ctx, surveyID); err != nil {
		slog.Error("delete survey failed", "err", err, "survey_id", surveyID)
		return err
	}
	return nil
}

func (s *SurveyService) DuplicateSurvey(ctx context.Context, actor domains.Actor, surveyID, title string) (domains.Survey, error) {
	survey, err := s.provider.GetSurveyByID(ctx, surveyID)
	if err != nil {
		return domains.Survey{}, err
	}
	if err := authorizeSurveyManage(actor, survey); err != nil {
		return domains.Survey{}, err
	}
	if title == "" {
		title = survey.Title + " (copy)"
	}
	duplicated, err := s.provider.DuplicateSurvey(ctx, surveyID, uuid.NewString(), title, actor.UserID)
	if err != nil {
		slog.Error("duplicate survey failed", "err", err, "survey_id", surveyID)
		return domains.Survey{}, err
	}
	return duplicated, nil
}

// WindowOpen reports whether the survey may accept responses at the given
// instant, and which boundary rejects it otherwise.
func WindowOpen(survey domains.Survey, now time.Time) error {
	if survey.Status != domains.SurveyStatusActive {
		return ErrSurveyNotActive
	}
	if survey.StartsAt != nil && now.Before(*survey.StartsAt) {
		return ErrSurveyNotStarted
	}
	if survey.EndsAt != nil && now.After(*survey.EndsAt) {
		return ErrSurveyEnded
	}
	return nil
}
