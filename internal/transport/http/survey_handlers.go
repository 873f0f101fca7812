package httptransport

import (
	"context"
	"net/http"

	"qualitivate/internal/domains"
	"qualitivate/internal/httpx"
)

type SurveyHandlers struct {
	service SurveyServices
}

type SurveyServices interface {
	CreateSurvey(ctx context.Context, actor domains.Actor, payload domains.SurveyCreate) (domains.Survey, error)
	GetSurvey(ctx context.Context, actor domains.Actor, surveyID string) (domains.Survey, error)
	ListSurveys(ctx context.Context, actor domains.Actor) ([]domains.Survey, error)
	GetSurveyView(ctx context.Context, surveyID, language string) (domains.SurveyView, error)
	UpdateSurvey(ctx context.Context, actor domains.Actor, surveyID string, update domains.SurveyUpdate) (domains.Survey, error)
	DeleteSurvey(ctx context.Context, actor domains.Actor, surveyID string) error
	DuplicateSurvey(ctx context.Context, actor domains.Actor, surveyID, title string) (domains.Survey, error)
}

func NewSurveyHandlers(service SurveyServices) *SurveyHandlers {
	return &SurveyHandlers{service: service}
}

func requireActor(w http.ResponseWriter, r *http.Request) (domains.Actor, bool) {
	actor, ok := httpx.ActorFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized")
	}
	return actor, ok
}

func (h *SurveyHandlers) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	payload, err := httpx.ReadBody[domains.SurveyCreate](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	survey, err := h.service.CreateSurvey(r.Context(), actor, payload)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, survey)
}

func (h *SurveyHandlers) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	surveys, err := h.service.ListSurveys(r.Context(), actor)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, surveys)
}

func (h *SurveyHandlers) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	survey, err := h.service.GetSurvey(r.Context(), actor, httpx.PathID(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, survey)
}

// View serves the public takeable projection. No auth; only active surveys
// resolve.
func (h *SurveyHandlers) View(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.GetSurveyView(r.Context(), httpx.PathID(r, "id"), r.URL.Query().Get("lang"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *SurveyHandlers) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	update, err := httpx.ReadBody[domains.SurveyUpdate](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	survey, err := h.service.UpdateSurvey(r.Context(), actor, httpx.PathID(r, "id"), update)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, survey)
}

func (h *SurveyHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteSurvey(r.Context(), actor, httpx.PathID(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SurveyHandlers) Duplicate(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	body, err := httpx.ReadBody[DuplicateRequest](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	survey, err := h.service.DuplicateSurvey(r.Context(), actor, httpx.PathID(r, "id"), body.Title)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, survey)
}
