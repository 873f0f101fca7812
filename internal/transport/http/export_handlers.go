package httptransport

import (
	"context"
	"fmt"
	"net/http"

	"qualitivate/internal/domains"
	"qualitivate/internal/httpx"
)

type ExportHandlers struct {
	service ExportServices
}

type ExportServices interface {
	ExportCSV(ctx context.Context, actor domains.Actor, surveyID string) ([]byte, error)
	ExportJSON(ctx context.Context, actor domains.Actor, surveyID string) ([]byte, error)
	ExportPDF(ctx context.Context, actor domains.Actor, surveyID string) ([]byte, error)
}

func NewExportHandlers(service ExportServices) *ExportHandlers {
	return &ExportHandlers{service: service}
}

// Export serves one endpoint for all formats, selected by the format
// query parameter. csv is the default.
func (h *ExportHandlers) Export(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	surveyID := httpx.PathID(r, "id")

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	switch format {
	case "csv":
		data, err := h.service.ExportCSV(r.Context(), actor, surveyID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeAttachment(w, data, "text/csv; charset=utf-8", fmt.Sprintf("survey-%s.csv", surveyID))
	case "json":
		data, err := h.service.ExportJSON(r.Context(), actor, surveyID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	case "pdf":
		data, err := h.service.ExportPDF(r.Context(), actor, surveyID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeAttachment(w, data, "application/pdf", fmt.Sprintf("survey-%s.pdf", surveyID))
	default:
		httpx.Error(w, http.StatusBadRequest, "unknown export format")
	}
}

func writeAttachment(w http.ResponseWriter, data []byte, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
