package httptransport

import (
	"context"
	"net/http"

	"qualitivate/internal/domains"
	"qualitivate/internal/httpx"
)

type DistributionHandlers struct {
	service DistributionServices
}

type DistributionServices interface {
	Create(ctx context.Context, actor domains.Actor, surveyID string, create domains.DistributionCreate) (domains.Distribution, error)
	Get(ctx context.Context, actor domains.Actor, distributionID string) (domains.Distribution, error)
	List(ctx context.Context, actor domains.Actor, surveyID string) ([]domains.DistributionSummary, error)
}

func NewDistributionHandlers(service DistributionServices) *DistributionHandlers {
	return &DistributionHandlers{service: service}
}

func (h *DistributionHandlers) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	create, err := httpx.ReadBody[domains.DistributionCreate](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	distribution, err := h.service.Create(r.Context(), actor, httpx.PathID(r, "id"), create)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, distribution)
}

func (h *DistributionHandlers) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	distribution, err := h.service.Get(r.Context(), actor, httpx.PathID(r, "distributionId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, distribution)
}

func (h *DistributionHandlers) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	summaries, err := h.service.List(r.Context(), actor, httpx.PathID(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summaries)
}
