package httptransport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"qualitivate/internal/domains"
	"qualitivate/internal/httpx"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
)

type stubExportService struct {
	surveyID string
}

func (s *stubExportService) ExportCSV(_ context.Context, _ domains.Actor, surveyID string) ([]byte, error) {
	s.surveyID = surveyID
	return []byte("response_id,started_at\n"), nil
}

func (s *stubExportService) ExportJSON(_ context.Context, _ domains.Actor, surveyID string) ([]byte, error) {
	s.surveyID = surveyID
	return []byte("[]"), nil
}

func (s *stubExportService) ExportPDF(_ context.Context, _ domains.Actor, surveyID string) ([]byte, error) {
	s.surveyID = surveyID
	return []byte("%PDF-1.4"), nil
}

func exportRequest(target string) (*httptest.ResponseRecorder, *stubExportService) {
	exports := &stubExportService{}
	router := mux.NewRouter()
	router.HandleFunc("/surveys/{id}/export", NewExportHandlers(exports).Export).Methods(http.MethodGet)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	actor := domains.Actor{UserID: 1, Role: domains.RoleSuperAdmin}
	req = req.WithContext(httpx.ContextWithActor(req.Context(), actor))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec, exports
}

func TestExportDefaultsToCSV(t *testing.T) {
	rec, exports := exportRequest("/surveys/s1/export")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s1", exports.surveyID)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="survey-s1.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "response_id,started_at\n", rec.Body.String())
}

func TestExportFormatSelectsRenderer(t *testing.T) {
	rec, _ := exportRequest("/surveys/s1/export?format=json")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "[]", rec.Body.String())

	rec, _ = exportRequest("/surveys/s1/export?format=pdf")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="survey-s1.pdf"`, rec.Header().Get("Content-Disposition"))
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	rec, _ := exportRequest("/surveys/s1/export?format=xml")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown export format")
}
