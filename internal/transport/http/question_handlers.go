package httptransport

import (
	"context"
	"net/http"

	"qualitivate/internal/domains"
	"qualitivate/internal/httpx"
)

type QuestionHandlers struct {
	service QuestionServices
}

type QuestionServices interface {
	ListQuestions(ctx context.Context, actor domains.Actor, surveyID string) ([]domains.Question, error)
	AddQuestion(ctx context.Context, actor domains.Actor, surveyID string, create domains.QuestionCreate) (domains.Question, error)
	UpdateQuestion(ctx context.Context, actor domains.Actor, questionID string, update domains.QuestionUpdate) (domains.Question, error)
	DeleteQuestion(ctx context.Context, actor domains.Actor, questionID string) error
	ReorderQuestions(ctx context.Context, actor domains.Actor, surveyID string, orderedIDs []string) ([]domains.Question, error)
	UpsertTranslation(ctx context.Context, actor domains.Actor, questionID string, upsert domains.TranslationUpsert) (domains.Translation, error)
}

func NewQuestionHandlers(service QuestionServices) *QuestionHandlers {
	return &QuestionHandlers{service: service}
}

func (h *QuestionHandlers) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	questions, err := h.service.ListQuestions(r.Context(), actor, httpx.PathID(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, questions)
}

func (h *QuestionHandlers) Add(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	create, err := httpx.ReadBody[domains.QuestionCreate](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	question, err := h.service.AddQuestion(r.Context(), actor, httpx.PathID(r, "id"), create)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, question)
}

func (h *QuestionHandlers) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	update, err := httpx.ReadBody[domains.QuestionUpdate](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	question, err := h.service.UpdateQuestion(r.Context(), actor, httpx.PathID(r, "questionId"), update)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, question)
}

func (h *QuestionHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteQuestion(r.Context(), actor, httpx.PathID(r, "questionId")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Reorder accepts the full permutation of the survey's question ids and
// returns the questions in their new order.
func (h *QuestionHandlers) Reorder(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	body, err := httpx.ReadBody[ReorderRequest](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	questions, err := h.service.ReorderQuestions(r.Context(), actor, httpx.PathID(r, "id"), body.QuestionIDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, questions)
}

func (h *QuestionHandlers) UpsertTranslation(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	upsert, err := httpx.ReadBody[domains.TranslationUpsert](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	translation, err := h.service.UpsertTranslation(r.Context(), actor, httpx.PathID(r, "questionId"), upsert)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, translation)
}
