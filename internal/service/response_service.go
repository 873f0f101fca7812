package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"qualitivate/internal/domains"

	"github.com/google/uuid"
	"github.com/mileusna/useragent"
)

type ResponseService struct {
	surveys   SurveyProvider
	responses ResponseProvider
	now       func() time.Time
}

type ResponseProvider interface {
	StartResponse(ctx context.Context, response domains.Response) (domains.Response, error)
	GetResponse(ctx context.Context, responseID string) (domains.Response, error)
	SaveAnswer(ctx context.Context, answerID, responseID, questionID string, value json.RawMessage) (domains.Answer, error)
	ListAnswers(ctx context.Context, responseID string) ([]domains.Answer, error)
	CompleteResponse(ctx context.Context, responseID string, answers []domains.Answer, completedAt time.Time) (domains.Response, error)
	ListRequiredQuestionIDs(ctx context.Context, surveyID string) ([]string, error)
	ListAnsweredQuestionIDs(ctx context.Context, responseID string) ([]string, error)
	ListResponses(ctx context.Context, surveyID string, page, perPage int) (domains.ResponsePage, error)
}

func NewResponseService(surveys SurveyProvider, responses ResponseProvider) *ResponseService {
	return &ResponseService{
		surveys:   surveys,
		responses: responses,
		now:       time.Now,
	}
}

// RequestInfo is what the handler captures from the incoming request for
// response metadata. The raw user agent is parsed here so the stored meta
// carries browser/OS/device alongside the raw string.
type RequestInfo struct {
	IP        string
	UserAgent string
}

func parseMeta(info RequestInfo) domains.ResponseMeta {
	meta := domains.ResponseMeta{IP: info.IP}
	if info.UserAgent == "" {
		return meta
	}
	ua := useragent.Parse(info.UserAgent)
	meta.Browser = ua.Name
	meta.OS = ua.OS
	meta.UserAgent = info.UserAgent
	switch {
	case ua.Mobile:
		meta.Device = "mobile"
	case ua.Tablet:
		meta.Device = "tablet"
	case ua.Bot:
		meta.Device = "bot"
	default:
		meta.Device = "desktop"
	}
	return meta
}

// anonymousToken correlates a response with its originating distribution
// without storing respondent identity.
func anonymousToken(distributionID *string) string {
	if distributionID != nil && *distributionID != "" {
		return fmt.Sprintf("dist_%s_%s", *distributionID, uuid.NewString())
	}
	return "direct_" + uuid.NewString()
}

// StartResponse opens a new response in started state. The survey must be
// active and inside its window; private surveys additionally require an
// authenticated respondent.
func (s *ResponseService) StartResponse(ctx context.Context, start domains.ResponseStart, respondentID *int64, info RequestInfo) (domains.Response, error) {
	survey, err := s.surveys.GetSurveyByID(ctx, start.SurveyID)
	if err != nil {
		return domains.Response{}, err
	}
	if err := WindowOpen(survey, s.now()); err != nil {
		return domains.Response{}, err
	}
	if !survey.IsPublic && respondentID == nil {
		return domains.Response{}, ErrSurveyNotPublic
	}

	language := start.Language
	if language == "" {
		language = survey.DefaultLanguage
	}
	if survey.IsAnonymous {
		respondentID = nil
	}

	response := domains.Response{
		ID:             uuid.NewString(),
		SurveyID:       survey.ID,
		DistributionID: start.DistributionID,
		RespondentID:   respondentID,
		AnonymousToken: anonymousToken(start.DistributionID),
		Status:         domains.ResponseStatusStarted,
		Language:       language,
		Meta:           parseMeta(info),
	}

	created, err := s.responses.StartResponse(ctx, response)
	if err != nil {
		slog.Error("start response failed", "err", err, "survey_id", survey.ID)
		return domains.Response{}, err
	}
	return created, nil
}

// SaveAnswer upserts one answer. Idempotent: saving the same question twice
// keeps a single row holding the latest value. The provider reports
// ErrNotFound both for a missing response and for one no longer in started
// state.
func (s *ResponseService) SaveAnswer(ctx context.Context, responseID string, submit domains.AnswerSubmit) (domains.Answer, error) {
	value := domains.CanonicalValue(submit.Value)
	answer, err := s.responses.SaveAnswer(ctx, uuid.NewString(), responseID, submit.QuestionID, value)
	if err != nil {
		return domains.Answer{}, err
	}
	return answer, nil
}

// SubmitAnswers persists the supplied batch and completes the response in
// one transaction. Required questions not covered by an existing answer row
// or the batch fail the call before anything is written.
func (s *ResponseService) SubmitAnswers(ctx context.Context, responseID string, submission domains.ResponseSubmission) (domains.Response, error) {
	response, err := s.responses.GetResponse(ctx, responseID)
	if err != nil {
		return domains.Response{}, err
	}

	batch := make([]domains.Answer, 0, len(submission.Answers))
	batchIDs := make(map[string]struct{}, len(submission.Answers))
	for _, submit := range submission.Answers {
		if submit.QuestionID == "" {
			continue
		}
		batch = append(batch, domains.Answer{
			ID:         uuid.NewString(),
			ResponseID: responseID,
			QuestionID: submit.QuestionID,
			Value:      domains.CanonicalValue(submit.Value),
		})
		batchIDs[submit.QuestionID] = struct{}{}
	}

	missing, err := s.missingRequired(ctx, response, batchIDs)
	if err != nil {
		return domains.Response{}, err
	}
	if len(missing) > 0 {
		return domains.Response{}, &ValidationError{
			Message:          "required questions unanswered",
			MissingQuestions: missing,
		}
	}

	completed, err := s.responses.CompleteResponse(ctx, responseID, batch, s.now().UTC())
	if err != nil {
		slog.Error("submit answers failed", "err", err, "response_id", responseID)
		return domains.Response{}, err
	}
	return completed, nil
}

// Complete marks the response completed without new answers.
func (s *ResponseService) Complete(ctx context.Context, responseID string) (domains.Response, error) {
	return s.SubmitAnswers(ctx, responseID, domains.ResponseSubmission{})
}

// missingRequired returns the required question ids of the response's
// survey with no answer row and no entry in the pending batch, in survey
// order.
func (s *ResponseService) missingRequired(ctx context.Context, response domains.Response, batchIDs map[string]struct{}) ([]string, error) {
	required, err := s.responses.ListRequiredQuestionIDs(ctx, response.SurveyID)
	if err != nil {
		return nil, err
	}
	answered, err := s.responses.ListAnsweredQuestionIDs(ctx, response.ID)
	if err != nil {
		return nil, err
	}

	have := make(map[string]struct{}, len(answered)+len(batchIDs))
	for _, id := range answered {
		have[id] = struct{}{}
	}
	for id := range batchIDs {
		have[id] = struct{}{}
	}

	var missing []string
	for _, id := range required {
		if _, ok := have[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// GetProgress returns the response with its stored answers decoded into a
// question→value map, so a client can replay saved progress into its UI
// state.
func (s *ResponseService) GetProgress(ctx context.Context, responseID string) (domains.ResponseProgress, error) {
	response, err := s.responses.GetResponse(ctx, responseID)
	if err != nil {
		return domains.ResponseProgress{}, err
	}
	answers, err := s.responses.ListAnswers(ctx, responseID)
	if err != nil {
		return domains.ResponseProgress{}, err
	}

	values := make(map[string]any, len(answers))
	for _, answer := range answers {
		values[answer.QuestionID] = domains.DecodeAnswerValue(answer.Value)
	}

	return domains.ResponseProgress{
		Response: response,
		Answers:  answers,
		Values:   values,
	}, nil
}
