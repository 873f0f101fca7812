package domains

import "fmt"

func ValidSurveyType(t string) bool {
	switch t {
	case SurveyTypeNPS, SurveyTypeCustom:
		return true
	default:
		return false
	}
}

func ValidSurveyStatus(s string) bool {
	switch s {
	case SurveyStatusDraft, SurveyStatusActive, SurveyStatusClosed:
		return true
	default:
		return false
	}
}

func ValidQuestionType(t string) bool {
	switch NormalizeQuestionType(t) {
	case QuestionTypeNPS, QuestionTypeMultipleChoice, QuestionTypeTextShort,
		QuestionTypeTextLong, QuestionTypeRatingScale, QuestionTypeMatrix:
		return true
	default:
		return false
	}
}

func ValidDistributionChannel(c string) bool {
	switch c {
	case DistributionChannelLink, DistributionChannelQR,
		DistributionChannelEmbed, DistributionChannelEmail:
		return true
	default:
		return false
	}
}

func ValidResponseStatus(s string) bool {
	switch s {
	case ResponseStatusStarted, ResponseStatusCompleted, ResponseStatusAbandoned:
		return true
	default:
		return false
	}
}

// ValidateQuestionOptions checks the option shape against the base question
// type. The type must already be normalized.
func ValidateQuestionOptions(questionType string, options QuestionOptions) error {
	switch questionType {
	case QuestionTypeMultipleChoice:
		if len(options.Choices) < 2 {
			return fmt.Errorf("multiple_choice requires at least 2 choices, got %d", len(options.Choices))
		}
		seen := make(map[string]struct{}, len(options.Choices))
		for _, choice := range options.Choices {
			if choice == "" {
				return fmt.Errorf("multiple_choice choices must be non-empty")
			}
			if _, dup := seen[choice]; dup {
				return fmt.Errorf("duplicate choice %q", choice)
			}
			seen[choice] = struct{}{}
		}
	case QuestionTypeRatingScale:
		if options.Min == nil || options.Max == nil {
			return fmt.Errorf("rating_scale requires min and max")
		}
		if *options.Min >= *options.Max {
			return fmt.Errorf("rating_scale min %v must be below max %v", *options.Min, *options.Max)
		}
	case QuestionTypeMatrix:
		if len(options.Rows) == 0 || len(options.Columns) == 0 {
			return fmt.Errorf("matrix requires rows and columns")
		}
	case QuestionTypeNPS, QuestionTypeTextShort, QuestionTypeTextLong:
		// No option shape to enforce.
	default:
		return fmt.Errorf("unknown question type %q", questionType)
	}
	return nil
}

// ValidateSkipRules checks each rule's operator and target against the
// survey's known question ids.
func ValidateSkipRules(rules []SkipRule, knownQuestionIDs map[string]struct{}) error {
	for i, rule := range rules {
		switch rule.Op {
		case SkipOpEquals, SkipOpNotEquals:
			if rule.Value == nil {
				return fmt.Errorf("skip rule %d: %s requires value", i, rule.Op)
			}
		case SkipOpIn:
			if len(rule.Values) == 0 {
				return fmt.Errorf("skip rule %d: in requires values", i)
			}
		case SkipOpGreaterThan, SkipOpLessThan:
			if _, ok := NumericValue(rule.Value); !ok {
				return fmt.Errorf("skip rule %d: %s requires a numeric value", i, rule.Op)
			}
		case SkipOpBetween:
			if rule.Min == nil || rule.Max == nil {
				return fmt.Errorf("skip rule %d: between requires min and max", i)
			}
		default:
			return fmt.Errorf("skip rule %d: unknown op %q", i, rule.Op)
		}
		if rule.Target == "" {
			return fmt.Errorf("skip rule %d: target is required", i)
		}
		if rule.Target != SkipTargetEnd && knownQuestionIDs != nil {
			if _, ok := knownQuestionIDs[rule.Target]; !ok {
				return fmt.Errorf("skip rule %d: target %q is not a question in this survey", i, rule.Target)
			}
		}
	}
	return nil
}
