package domains

import "time"

// SurveyOverview is the per-survey analytics projection. NPS is nil when
// the survey has no scorable nps answers.
type SurveyOverview struct {
	SurveyID       string        `json:"survey_id"`
	TotalResponses int           `json:"total_responses"`
	Completed      int           `json:"completed"`
	CompletionRate int           `json:"completion_rate"`
	NPS            *NPSBreakdown `json:"nps,omitempty"`
	Trend          []TrendPoint  `json:"trend"`
}

type NPSBreakdown struct {
	Score      int `json:"score"`
	Promoters  int `json:"promoters"`
	Passives   int `json:"passives"`
	Detractors int `json:"detractors"`
	Total      int `json:"total"`
}

// TrendPoint is one calendar-day bucket of the rolling trend window.
type TrendPoint struct {
	Date      string `json:"date"`
	Started   int    `json:"started"`
	Completed int    `json:"completed"`
}

// QuestionStats is the per-question breakdown. Exactly one of the three
// stat blocks is populated according to the question type.
type QuestionStats struct {
	QuestionID string        `json:"question_id"`
	Type       string        `json:"type"`
	Content    string        `json:"content"`
	OrderIndex int           `json:"order_index"`
	Answered   int           `json:"answered"`
	Choice     *ChoiceStats  `json:"choice,omitempty"`
	Numeric    *NumericStats `json:"numeric,omitempty"`
	Text       *TextStats    `json:"text,omitempty"`
}

type ChoiceStats struct {
	Counts map[string]int `json:"counts"`
}

type NumericStats struct {
	Min       float64        `json:"min"`
	Max       float64        `json:"max"`
	Average   float64        `json:"average"`
	Histogram map[string]int `json:"histogram"`
}

// TextStats deliberately carries no content distribution, only volume.
type TextStats struct {
	Count         int     `json:"count"`
	AverageLength float64 `json:"average_length"`
}

// Dashboard payloads per role. Which fields are populated follows the
// caller's role; see service.DashboardService.
type Dashboard struct {
	Role           Role            `json:"role"`
	Surveys        int             `json:"surveys"`
	TotalResponses int             `json:"total_responses"`
	Completed      int             `json:"completed"`
	CompletionRate int             `json:"completion_rate"`
	Companies      int             `json:"companies,omitempty"`
	Sites          []SiteBreakdown `json:"sites,omitempty"`
	Personal       []PersonalEntry `json:"personal,omitempty"`
}

type SiteBreakdown struct {
	SiteID         int64  `json:"site_id"`
	SiteName       string `json:"site_name"`
	TotalResponses int    `json:"total_responses"`
	Completed      int    `json:"completed"`
	CompletionRate int    `json:"completion_rate"`
}

type PersonalEntry struct {
	SurveyID    string     `json:"survey_id"`
	SurveyTitle string     `json:"survey_title"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// CompletionRate reproduces the platform's rounding: round(completed/total
// * 100), 0 when total is 0.
func CompletionRate(completed, total int) int {
	if total == 0 {
		return 0
	}
	rate := float64(completed) / float64(total) * 100
	if rate >= 0 {
		return int(rate + 0.5)
	}
	return int(rate - 0.5)
}
