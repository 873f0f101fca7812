package domains

import (
	"encoding/json"
	"time"
)

const (
	ResponseStatusStarted   = "started"
	ResponseStatusCompleted = "completed"
	// Abandoned is never set by the normal flow; an administrative sweep
	// may mark stale started responses with it.
	ResponseStatusAbandoned = "abandoned"
)

// ResponseMeta is the request metadata captured when a response starts.
type ResponseMeta struct {
	IP        string `json:"ip,omitempty"`
	Browser   string `json:"browser,omitempty"`
	OS        string `json:"os,omitempty"`
	Device    string `json:"device,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

type Response struct {
	ID             string       `json:"id"`
	SurveyID       string       `json:"survey_id"`
	DistributionID *string      `json:"distribution_id,omitempty"`
	RespondentID   *int64       `json:"respondent_id,omitempty"`
	AnonymousToken string       `json:"anonymous_token"`
	Status         string       `json:"status"`
	Language       string       `json:"language"`
	Meta           ResponseMeta `json:"meta"`
	StartedAt      time.Time    `json:"started_at"`
	CompletedAt    *time.Time   `json:"completed_at,omitempty"`
}

// Answer holds one (response, question) value. The stored value is always
// the canonical {"value": x} envelope; DecodeAnswerValue tolerates both the
// envelope and a bare scalar on read.
type Answer struct {
	ID         string          `json:"id"`
	ResponseID string          `json:"response_id"`
	QuestionID string          `json:"question_id"`
	Value      json.RawMessage `json:"value"`
	AnsweredAt time.Time       `json:"answered_at"`
}

type ResponseStart struct {
	SurveyID       string  `json:"survey_id"`
	DistributionID *string `json:"distribution_id,omitempty"`
	Language       string  `json:"language,omitempty"`
}

type AnswerSubmit struct {
	QuestionID string          `json:"question_id" validate:"required"`
	Value      json.RawMessage `json:"value"`
}

type ResponseSubmission struct {
	Answers []AnswerSubmit `json:"answers"`
}

// ResponseProgress lets a client reload saved progress and replay it into
// local UI state.
type ResponseProgress struct {
	Response Response        `json:"response"`
	Answers  []Answer        `json:"answers"`
	Values   map[string]any  `json:"values"`
}

type ResponseDetail struct {
	Response Response `json:"response"`
	Answers  []Answer `json:"answers"`
}

type ResponsePage struct {
	Responses []Response `json:"responses"`
	Total     int        `json:"total"`
	Page      int        `json:"page"`
	PerPage   int        `json:"per_page"`
}
