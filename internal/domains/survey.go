package domains

import (
	"encoding/json"
	"time"
)

const (
	SurveyTypeNPS    = "nps"
	SurveyTypeCustom = "custom"

	SurveyStatusDraft  = "draft"
	SurveyStatusActive = "active"
	SurveyStatusClosed = "closed"
)

type Survey struct {
	ID              string          `json:"id"`
	CompanyID       *int64          `json:"company_id,omitempty"`
	Title           string          `json:"title"`
	Description     *string         `json:"description,omitempty"`
	Type            string          `json:"type"`
	Status          string          `json:"status"`
	IsPublic        bool            `json:"is_public"`
	IsAnonymous     bool            `json:"is_anonymous"`
	DefaultLanguage string          `json:"default_language"`
	Settings        json.RawMessage `json:"settings,omitempty"`
	StartsAt        *time.Time      `json:"starts_at,omitempty"`
	EndsAt          *time.Time      `json:"ends_at,omitempty"`
	CreatedBy       int64           `json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type SurveyCreate struct {
	Title           string           `json:"title" validate:"required"`
	Description     *string          `json:"description,omitempty"`
	Type            string           `json:"type" validate:"required"`
	IsPublic        bool             `json:"is_public"`
	IsAnonymous     bool             `json:"is_anonymous"`
	DefaultLanguage string           `json:"default_language"`
	Settings        json.RawMessage  `json:"settings,omitempty"`
	StartsAt        *time.Time       `json:"starts_at,omitempty"`
	EndsAt          *time.Time       `json:"ends_at,omitempty"`
	Questions       []QuestionCreate `json:"questions,omitempty"`
}

// Optional distinguishes "field absent" from "field set to null" in
// partial updates.
type Optional[T any] struct {
	Present bool
	Value   *T
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Present = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

type SurveyUpdate struct {
	Title       *string             `json:"title,omitempty"`
	Description Optional[string]    `json:"description,omitempty"`
	Status      *string             `json:"status,omitempty"`
	IsPublic    *bool               `json:"is_public,omitempty"`
	IsAnonymous *bool               `json:"is_anonymous,omitempty"`
	Settings    json.RawMessage     `json:"settings,omitempty"`
	StartsAt    Optional[time.Time] `json:"starts_at,omitempty"`
	EndsAt      Optional[time.Time] `json:"ends_at,omitempty"`
}

func (u SurveyUpdate) HasChanges() bool {
	return u.Title != nil || u.Description.Present || u.Status != nil ||
		u.IsPublic != nil || u.IsAnonymous != nil || len(u.Settings) > 0 ||
		u.StartsAt.Present || u.EndsAt.Present
}

// SurveyView is the public takeable projection: metadata plus the ordered
// question list, translated when a translation exists for the requested
// language.
type SurveyView struct {
	Survey    Survey     `json:"survey"`
	Questions []Question `json:"questions"`
	Language  string     `json:"language"`
}

type Translation struct {
	ID         string          `json:"id"`
	QuestionID string          `json:"question_id"`
	Language   string          `json:"language"`
	Content    string          `json:"content"`
	Options    json.RawMessage `json:"options,omitempty"`
}

type TranslationUpsert struct {
	Language string          `json:"language" validate:"required"`
	Content  string          `json:"content" validate:"required"`
	Options  json.RawMessage `json:"options,omitempty"`
}
