package httptransport

import (
	"context"
	"net"
	"net/http"
	"strings"

	"qualitivate/internal/domains"
	"qualitivate/internal/httpx"
	"qualitivate/internal/service"
)

type ResponseHandlers struct {
	responses ResponseServices
	flow      FlowServices
}

type ResponseServices interface {
	StartResponse(ctx context.Context, start domains.ResponseStart, respondentID *int64, info service.RequestInfo) (domains.Response, error)
	SaveAnswer(ctx context.Context, responseID string, submit domains.AnswerSubmit) (domains.Answer, error)
	SubmitAnswers(ctx context.Context, responseID string, submission domains.ResponseSubmission) (domains.Response, error)
	Complete(ctx context.Context, responseID string) (domains.Response, error)
	GetProgress(ctx context.Context, responseID string) (domains.ResponseProgress, error)
}

type FlowServices interface {
	NextQuestion(ctx context.Context, surveyID, questionID string, value any) (int, *domains.Question, error)
}

func NewResponseHandlers(responses ResponseServices, flow FlowServices) *ResponseHandlers {
	return &ResponseHandlers{responses: responses, flow: flow}
}

// clientIP prefers the first X-Forwarded-For hop, falling back to the
// connection address.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if first, _, ok := strings.Cut(forwarded, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(forwarded)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Start opens a response. Anonymous callers pass through; an authenticated
// caller is attributed as the respondent unless the survey is anonymous.
func (h *ResponseHandlers) Start(w http.ResponseWriter, r *http.Request) {
	start, err := httpx.ReadBody[domains.ResponseStart](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	start.SurveyID = httpx.PathID(r, "id")

	var respondentID *int64
	if userID, ok := httpx.UserIDFromContext(r.Context()); ok {
		respondentID = &userID
	}
	info := service.RequestInfo{IP: clientIP(r), UserAgent: r.UserAgent()}

	response, err := h.responses.StartResponse(r.Context(), start, respondentID, info)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, response)
}

func (h *ResponseHandlers) SaveAnswer(w http.ResponseWriter, r *http.Request) {
	submit, err := httpx.ReadBody[domains.AnswerSubmit](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	answer, err := h.responses.SaveAnswer(r.Context(), httpx.PathID(r, "responseId"), submit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, answer)
}

func (h *ResponseHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	submission, err := httpx.ReadBody[domains.ResponseSubmission](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	response, err := h.responses.SubmitAnswers(r.Context(), httpx.PathID(r, "responseId"), submission)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, response)
}

func (h *ResponseHandlers) Complete(w http.ResponseWriter, r *http.Request) {
	response, err := h.responses.Complete(r.Context(), httpx.PathID(r, "responseId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, response)
}

func (h *ResponseHandlers) Progress(w http.ResponseWriter, r *http.Request) {
	progress, err := h.responses.GetProgress(r.Context(), httpx.PathID(r, "responseId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, progress)
}

// Next evaluates skip logic for the answered question and tells the client
// which question to render next.
func (h *ResponseHandlers) Next(w http.ResponseWriter, r *http.Request) {
	body, err := httpx.ReadBody[NextQuestionRequest](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	nextIndex, next, err := h.flow.NextQuestion(r.Context(), httpx.PathID(r, "id"), body.QuestionID, body.Value)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := NextQuestionResponse{NextIndex: nextIndex, Done: next == nil}
	if next != nil {
		resp.NextQuestionID = next.ID
	}
	httpx.JSON(w, http.StatusOK, resp)
}
