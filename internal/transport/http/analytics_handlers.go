package httptransport

import (
	"context"
	"net/http"
	"strconv"

	"qualitivate/internal/domains"
	"qualitivate/internal/httpx"
)

type AnalyticsHandlers struct {
	analytics  AnalyticsServices
	dashboards DashboardServices
}

type AnalyticsServices interface {
	Overview(ctx context.Context, actor domains.Actor, surveyID string) (domains.SurveyOverview, error)
	QuestionBreakdown(ctx context.Context, actor domains.Actor, surveyID string) ([]domains.QuestionStats, error)
	ListResponses(ctx context.Context, actor domains.Actor, surveyID string, page, perPage int) (domains.ResponsePage, error)
	ResponseDetail(ctx context.Context, actor domains.Actor, responseID string) (domains.ResponseDetail, error)
}

type DashboardServices interface {
	Get(ctx context.Context, actor domains.Actor) (domains.Dashboard, error)
}

func NewAnalyticsHandlers(analytics AnalyticsServices, dashboards DashboardServices) *AnalyticsHandlers {
	return &AnalyticsHandlers{analytics: analytics, dashboards: dashboards}
}

func (h *AnalyticsHandlers) Overview(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	overview, err := h.analytics.Overview(r.Context(), actor, httpx.PathID(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, overview)
}

func (h *AnalyticsHandlers) Questions(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	stats, err := h.analytics.QuestionBreakdown(r.Context(), actor, httpx.PathID(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *AnalyticsHandlers) Responses(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", 20)

	responses, err := h.analytics.ListResponses(r.Context(), actor, httpx.PathID(r, "id"), page, perPage)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, responses)
}

func (h *AnalyticsHandlers) ResponseDetail(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	detail, err := h.analytics.ResponseDetail(r.Context(), actor, httpx.PathID(r, "responseId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, detail)
}

func (h *AnalyticsHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	dashboard, err := h.dashboards.Get(r.Context(), actor)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dashboard)
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
