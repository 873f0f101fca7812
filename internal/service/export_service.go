package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"qualitivate/internal/domains"

	"github.com/jung-kurt/gofpdf"
)

const csvHeaderMaxLen = 40

type ExportService struct {
	surveys   SurveyProvider
	questions QuestionProvider
	stats     *AnalyticsService
	exports   ExportProvider
}

type ExportProvider interface {
	ListCompletedResponses(ctx context.Context, surveyID string) ([]domains.Response, error)
	ListCompletedAnswers(ctx context.Context, surveyID string) ([]domains.Answer, error)
}

func NewExportService(surveys SurveyProvider, questions QuestionProvider, stats *AnalyticsService, exports ExportProvider) *ExportService {
	return &ExportService{
		surveys:   surveys,
		questions: questions,
		stats:     stats,
		exports:   exports,
	}
}

// exportData is the flattened dataset shared by the CSV and JSON writers:
// one row per completed response, answers keyed by question id.
type exportData struct {
	survey    domains.Survey
	questions []domains.Question
	responses []domains.Response
	answers   map[string]map[string]any
}

func (s *ExportService) load(ctx context.Context, actor domains.Actor, surveyID string) (exportData, error) {
	survey, err := s.surveys.GetSurveyByID(ctx, surveyID)
	if err != nil {
		return exportData{}, err
	}
	if err := authorizeSurveyRead(actor, survey); err != nil {
		return exportData{}, err
	}

	questions, err := s.questions.ListQuestions(ctx, surveyID)
	if err != nil {
		return exportData{}, err
	}
	responses, err := s.exports.ListCompletedResponses(ctx, surveyID)
	if err != nil {
		return exportData{}, err
	}
	answers, err := s.exports.ListCompletedAnswers(ctx, surveyID)
	if err != nil {
		return exportData{}, err
	}

	byResponse := make(map[string]map[string]any, len(responses))
	for _, answer := range answers {
		values := byResponse[answer.ResponseID]
		if values == nil {
			values = make(map[string]any)
			byResponse[answer.ResponseID] = values
		}
		values[answer.QuestionID] = domains.DecodeAnswerValue(answer.Value)
	}

	return exportData{
		survey:    survey,
		questions: questions,
		responses: responses,
		answers:   byResponse,
	}, nil
}

// questionHeader renders the CSV column label for a question.
func questionHeader(q domains.Question) string {
	content := q.Content
	if runes := []rune(content); len(runes) > csvHeaderMaxLen {
		content = string(runes[:csvHeaderMaxLen])
	}
	return fmt.Sprintf("Q%d. %s", q.OrderIndex+1, content)
}

// cellValue flattens a decoded answer value into one CSV cell. Arrays join
// with "; ", objects fall back to their JSON text.
func cellValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, cellValue(item))
		}
		return strings.Join(parts, "; ")
	default:
		encoded, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(encoded)
	}
}

// ExportCSV writes one row per completed response. Question columns follow
// survey order; csv.Writer handles quoting of embedded commas and quotes.
func (s *ExportService) ExportCSV(ctx context.Context, actor domains.Actor, surveyID string) ([]byte, error) {
	data, err := s.load(ctx, actor, surveyID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"response_id", "started_at", "completed_at"}
	for _, q := range data.questions {
		header = append(header, questionHeader(q))
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, response := range data.responses {
		row := []string{
			response.ID,
			response.StartedAt.UTC().Format(time.RFC3339),
			"",
		}
		if response.CompletedAt != nil {
			row[2] = response.CompletedAt.UTC().Format(time.RFC3339)
		}
		values := data.answers[response.ID]
		for _, q := range data.questions {
			row = append(row, cellValue(values[q.ID]))
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

type exportRow struct {
	ResponseID  string         `json:"response_id"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	Answers     map[string]any `json:"answers"`
}

type exportDocument struct {
	SurveyID  string             `json:"survey_id"`
	Title     string             `json:"title"`
	Questions []domains.Question `json:"questions"`
	Responses []exportRow        `json:"responses"`
}

// ExportJSON mirrors the CSV dataset with native values instead of cell
// strings. Answers are keyed by question id.
func (s *ExportService) ExportJSON(ctx context.Context, actor domains.Actor, surveyID string) ([]byte, error) {
	data, err := s.load(ctx, actor, surveyID)
	if err != nil {
		return nil, err
	}

	doc := exportDocument{
		SurveyID:  data.survey.ID,
		Title:     data.survey.Title,
		Questions: data.questions,
		Responses: make([]exportRow, 0, len(data.responses)),
	}
	for _, response := range data.responses {
		values := data.answers[response.ID]
		if values == nil {
			values = map[string]any{}
		}
		doc.Responses = append(doc.Responses, exportRow{
			ResponseID:  response.ID,
			StartedAt:   response.StartedAt.UTC(),
			CompletedAt: response.CompletedAt,
			Answers:     values,
		})
	}

	encoded, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return encoded, nil
}

// ExportPDF renders the analytics snapshot: totals, NPS and per-question
// distributions.
func (s *ExportService) ExportPDF(ctx context.Context, actor domains.Actor, surveyID string) ([]byte, error) {
	survey, err := s.surveys.GetSurveyByID(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	if err := authorizeSurveyRead(actor, survey); err != nil {
		return nil, err
	}
	overview, err := s.stats.Overview(ctx, actor, surveyID)
	if err != nil {
		return nil, err
	}
	breakdown, err := s.stats.QuestionBreakdown(ctx, actor, surveyID)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, survey.Title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Generated "+time.Now().UTC().Format("2006-01-02 15:04 MST"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Responses: %d (%d completed, %d%% completion)",
		overview.TotalResponses, overview.Completed, overview.CompletionRate), "", 1, "L", false, 0, "")
	if overview.NPS != nil {
		pdf.CellFormat(0, 6, fmt.Sprintf("NPS: %d (promoters %d, passives %d, detractors %d)",
			overview.NPS.Score, overview.NPS.Promoters, overview.NPS.Passives, overview.NPS.Detractors),
			"", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Questions", "", 1, "L", false, 0, "")
	for _, qs := range breakdown {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.MultiCell(0, 6, fmt.Sprintf("Q%d. %s", qs.OrderIndex+1, qs.Content), "", "L", false)
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 5, fmt.Sprintf("Answered: %d", qs.Answered), "", 1, "L", false, 0, "")
		writeStatLines(pdf, qs)
		pdf.Ln(2)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeStatLines(pdf *gofpdf.Fpdf, qs domains.QuestionStats) {
	switch {
	case qs.Numeric != nil:
		pdf.CellFormat(0, 5, fmt.Sprintf("Min %.1f / Max %.1f / Avg %.2f",
			qs.Numeric.Min, qs.Numeric.Max, qs.Numeric.Average), "", 1, "L", false, 0, "")
		for _, bucket := range sortedKeys(qs.Numeric.Histogram) {
			pdf.CellFormat(0, 5, fmt.Sprintf("  %s: %d", bucket, qs.Numeric.Histogram[bucket]), "", 1, "L", false, 0, "")
		}
	case qs.Choice != nil:
		for _, choice := range sortedKeys(qs.Choice.Counts) {
			pdf.CellFormat(0, 5, fmt.Sprintf("  %s: %d", choice, qs.Choice.Counts[choice]), "", 1, "L", false, 0, "")
		}
	case qs.Text != nil:
		pdf.CellFormat(0, 5, fmt.Sprintf("%d texts, avg length %.0f chars",
			qs.Text.Count, qs.Text.AverageLength), "", 1, "L", false, 0, "")
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
