package service

import (
	"context"
	"log/slog"

	"qualitivate/internal/domains"

	"github.com/google/uuid"
)

type QuestionService struct {
	surveys   SurveyProvider
	questions QuestionProvider
}

func NewQuestionService(surveys SurveyProvider, questions QuestionProvider) *QuestionService {
	return &QuestionService{
		surveys:   surveys,
		questions: questions,
	}
}

func (s *QuestionService) ListQuestions(ctx context.Context, actor domains.Actor, surveyID string) ([]domains.Question, error) {
	survey, err := s.surveys.GetSurveyByID(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	if err := authorizeSurveyRead(actor, survey); err != nil {
		return nil, err
	}
	return s.questions.ListQuestions(ctx, surveyID)
}

func (s *QuestionService) AddQuestion(ctx context.Context, actor domains.Actor, surveyID string, create domains.QuestionCreate) (domains.Question, error) {
	survey, err := s.surveys.GetSurveyByID(ctx, surveyID)
	if err != nil {
		return domains.Question{}, err
	}
	if err := authorizeSurveyManage(actor, survey); err != nil {
		return domains.Question{}, err
	}

	// The provider assigns the order index; 0 here is a placeholder.
	question, err := buildQuestion(surveyID, create, 0)
	if err != nil {
		return domains.Question{}, err
	}

	existing, err := s.questions.ListQuestions(ctx, surveyID)
	if err != nil {
		return domains.Question{}, err
	}
	known := make(map[string]struct{}, len(existing)+1)
	for _, q := range existing {
		known[q.ID] = struct{}{}
	}
	known[question.ID] = struct{}{}
	if err := domains.ValidateSkipRules(question.SkipRules, known); err != nil {
		return domains.Question{}, NewValidationError("skip rules: %v", err)
	}

	added, err := s.questions.AddQuestion(ctx, question)
	if err != nil {
		slog.Error("add question failed", "err", err, "survey_id", surveyID)
		return domains.Question{}, err
	}
	return added, nil
}

func (s *QuestionService) UpdateQuestion(ctx context.Context, actor domains.Actor, questionID string, update domains.QuestionUpdate) (domains.Question, error) {
	question, err := s.questions.GetQuestion(ctx, questionID)
	if err != nil {
		return domains.Question{}, err
	}
	survey, err := s.surveys.GetSurveyByID(ctx, question.SurveyID)
	if err != nil {
		return domains.Question{}, err
	}
	if err := authorizeSurveyManage(actor, survey); err != nil {
		return domains.Question{}, err
	}

	if update.Options != nil {
		if err := domains.ValidateQuestionOptions(question.Type, *update.Options); err != nil {
			return domains.Question{}, NewValidationError("question options: %v", err)
		}
	}
	if update.SkipRules != nil {
		existing, err := s.questions.ListQuestions(ctx, question.SurveyID)
		if err != nil {
			return domains.Question{}, err
		}
		known := make(map[string]struct{}, len(existing))
		for _, q := range existing {
			known[q.ID] = struct{}{}
		}
		if err := domains.ValidateSkipRules(*update.SkipRules, known); err != nil {
			return domains.Question{}, NewValidationError("skip rules: %v", err)
		}
	}

	updated, err := s.questions.UpdateQuestion(ctx, questionID, update)
	if err != nil {
		slog.Error("update question failed", "err", err, "question_id", questionID)
		return domains.Question{}, err
	}
	return updated, nil
}

func (s *QuestionService) DeleteQuestion(ctx context.Context, actor domains.Actor, questionID string) error {
	question, err := s.questions.GetQuestion(ctx, questionID)
	if err != nil {
		return err
	}
	survey, err := s.surveys.GetSurveyByID(ctx, question.SurveyID)
	if err != nil {
		return err
	}
	if err := authorizeSurveyManage(actor, survey); err != nil {
		return err
	}
	if err := s.questions.DeleteQuestion(ctx, questionID); err != nil {
		slog.Error("delete question failed", "err", err, "question_id", questionID)
		return err
	}
	return nil
}

// ReorderQuestions applies an all-or-nothing index rewrite. The supplied
// ids must be an exact permutation of the survey's question ids; a
// duplicate, a foreign id, or a count mismatch rejects the whole request
// and changes nothing.
func (s *QuestionService) ReorderQuestions(ctx context.Context, actor domains.Actor, surveyID string, orderedIDs []string) ([]domains.Question, error) {
	survey, err := s.surveys.GetSurveyByID(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	if err := authorizeSurveyManage(actor, survey); err != nil {
		return nil, err
	}

	existing, err := s.questions.ListQuestions(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	if len(orderedIDs) != len(existing) {
		return nil, NewValidationError("expected %d question ids, got %d", len(existing), len(orderedIDs))
	}
	known := make(map[string]struct{}, len(existing))
	for _, q := range existing {
		known[q.ID] = struct{}{}
	}
	seen := make(map[string]struct{}, len(orderedIDs))
	for _, id := range orderedIDs {
		if _, ok := known[id]; !ok {
			return nil, NewValidationError("question %s does not belong to survey %s", id, surveyID)
		}
		if _, dup := seen[id]; dup {
			return nil, NewValidationError("duplicate question id %s", id)
		}
		seen[id] = struct{}{}
	}

	if err := s.questions.ReorderQuestions(ctx, surveyID, orderedIDs); err != nil {
		slog.Error("reorder questions failed", "err", err, "survey_id", surveyID)
		return nil, err
	}
	return s.questions.ListQuestions(ctx, surveyID)
}

func (s *QuestionService) UpsertTranslation(ctx context.Context, actor domains.Actor, questionID string, upsert domains.TranslationUpsert) (domains.Translation, error) {
	question, err := s.questions.GetQuestion(ctx, questionID)
	if err != nil {
		return domains.Translation{}, err
	}
	survey, err := s.surveys.GetSurveyByID(ctx, question.SurveyID)
	if err != nil {
		return domains.Translation{}, err
	}
	if err := authorizeSurveyManage(actor, survey); err != nil {
		return domains.Translation{}, err
	}

	translation := domains.Translation{
		ID:         uuid.NewString(),
		QuestionID: questionID,
		Language:   upsert.Language,
		Content:    upsert.Content,
		Options:    upsert.Options,
	}
	saved, err := s.questions.UpsertTranslation(ctx, translation)
	if err != nil {
		slog.Error("upsert translation failed", "err", err, "question_id", questionID)
		return domains.Translation{}, err
	}
	return saved, nil
}
