package domains

const (
	QuestionTypeNPS            = "nps"
	QuestionTypeMultipleChoice = "multiple_choice"
	QuestionTypeTextShort      = "text_short"
	QuestionTypeTextLong       = "text_long"
	QuestionTypeRatingScale    = "rating_scale"
	QuestionTypeMatrix         = "matrix"
)

// questionTypeAliases maps UI-level extended types onto the persisted base
// set. Unknown types fall through NormalizeQuestionType unchanged so the
// validator can reject them.
var questionTypeAliases = map[string]string{
	"rating":   QuestionTypeRatingScale,
	"scale":    QuestionTypeRatingScale,
	"checkbox": QuestionTypeMultipleChoice,
	"dropdown": QuestionTypeMultipleChoice,
	"text":     QuestionTypeTextShort,
	"textarea": QuestionTypeTextLong,
}

func NormalizeQuestionType(t string) string {
	if base, ok := questionTypeAliases[t]; ok {
		return base
	}
	return t
}

// QuestionOptions is the type-specific option payload. Which fields are
// meaningful depends on the question type: Choices for multiple_choice,
// Min/Max for rating_scale, Rows/Columns for matrix, MultiSelect for
// checkbox-style choice questions.
type QuestionOptions struct {
	Choices     []string `json:"choices,omitempty"`
	MultiSelect bool     `json:"multi_select,omitempty"`
	Min         *float64 `json:"min,omitempty"`
	Max         *float64 `json:"max,omitempty"`
	Rows        []string `json:"rows,omitempty"`
	Columns     []string `json:"columns,omitempty"`
}

// Skip rule targets either a question id or the end of the survey.
const SkipTargetEnd = "end"

const (
	SkipOpEquals      = "equals"
	SkipOpNotEquals   = "not_equals"
	SkipOpIn          = "in"
	SkipOpGreaterThan = "greater_than"
	SkipOpLessThan    = "less_than"
	SkipOpBetween     = "between"
)

// SkipRule is one conditional branch attached to a question. Rules are
// evaluated in declaration order against the just-submitted answer value;
// the first match wins.
type SkipRule struct {
	Op     string   `json:"op"`
	Value  any      `json:"value,omitempty"`
	Values []any    `json:"values,omitempty"`
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
	Target string   `json:"target"`
}

type Question struct {
	ID         string          `json:"id"`
	SurveyID   string          `json:"survey_id"`
	Type       string          `json:"type"`
	Content    string          `json:"content"`
	Options    QuestionOptions `json:"options"`
	SkipRules  []SkipRule      `json:"skip_rules,omitempty"`
	IsRequired bool            `json:"is_required"`
	OrderIndex int             `json:"order_index"`
}

type QuestionCreate struct {
	Type       string          `json:"type" validate:"required"`
	Content    string          `json:"content" validate:"required"`
	Options    QuestionOptions `json:"options"`
	SkipRules  []SkipRule      `json:"skip_rules,omitempty"`
	IsRequired bool            `json:"is_required"`
}

type QuestionUpdate struct {
	Content    *string          `json:"content,omitempty"`
	Options    *QuestionOptions `json:"options,omitempty"`
	SkipRules  *[]SkipRule      `json:"skip_rules,omitempty"`
	IsRequired *bool            `json:"is_required,omitempty"`
}
