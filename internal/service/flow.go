package service

import (
	"qualitivate/internal/domains"
)

// FlowEnd is returned by EvaluateNext when the flow should stop and the
// client must submit.
const FlowEnd = -1

// EvaluateNext decides which question index to present after answering
// current. The question's skip rules are checked in declaration order
// against the just-submitted value; the first match wins. With no match the
// flow falls through to the next static order index, and anything past the
// last question means the survey is done.
//
// This is a pure function: identical inputs always give identical output.
func EvaluateNext(current domains.Question, answerValue any, questions []domains.Question) int {
	for _, rule := range current.SkipRules {
		if !skipRuleMatches(rule, answerValue) {
			continue
		}
		if rule.Target == domains.SkipTargetEnd {
			return FlowEnd
		}
		for i, question := range questions {
			if question.ID == rule.Target {
				return i
			}
		}
		// Target not in the list: treat like a fall-through rather than
		// trapping the respondent.
		break
	}

	next := current.OrderIndex + 1
	if next >= len(questions) {
		return FlowEnd
	}
	return next
}

func skipRuleMatches(rule domains.SkipRule, value any) bool {
	switch rule.Op {
	case domains.SkipOpEquals:
		return valuesEqual(rule.Value, value)
	case domains.SkipOpNotEquals:
		return !valuesEqual(rule.Value, value)
	case domains.SkipOpIn:
		for _, candidate := range rule.Values {
			if valuesEqual(candidate, value) {
				return true
			}
		}
		return false
	case domains.SkipOpGreaterThan:
		threshold, ok1 := domains.NumericValue(rule.Value)
		actual, ok2 := domains.NumericValue(value)
		return ok1 && ok2 && actual > threshold
	case domains.SkipOpLessThan:
		threshold, ok1 := domains.NumericValue(rule.Value)
		actual, ok2 := domains.NumericValue(value)
		return ok1 && ok2 && actual < threshold
	case domains.SkipOpBetween:
		if rule.Min == nil || rule.Max == nil {
			return false
		}
		actual, ok := domains.NumericValue(value)
		return ok && actual >= *rule.Min && actual <= *rule.Max
	default:
		return false
	}
}

// valuesEqual compares answer values loosely: numbers compare numerically
// regardless of JSON representation, everything else by string identity.
// Multi-valued answers match when any selected entry matches.
func valuesEqual(expected, actual any) bool {
	if list, ok := actual.([]any); ok {
		for _, item := range list {
			if valuesEqual(expected, item) {
				return true
			}
		}
		return false
	}
	if en, ok1 := domains.NumericValue(expected); ok1 {
		if an, ok2 := domains.NumericValue(actual); ok2 {
			return en == an
		}
	}
	es, eok := expected.(string)
	as, aok := actual.(string)
	return eok && aok && es == as
}

// VisitedPath tracks the questions a respondent has actually seen, in
// order. Skip logic can shorten or branch the effective path, so progress
// and back navigation work off this sequence rather than the static
// question count.
type VisitedPath struct {
	ids []string
}

func (p *VisitedPath) Visit(questionID string) {
	p.ids = append(p.ids, questionID)
}

// Back pops the most recent question and returns it, enabling "back"
// navigation distinct from sequential pagination.
func (p *VisitedPath) Back() (string, bool) {
	if len(p.ids) == 0 {
		return "", false
	}
	last := p.ids[len(p.ids)-1]
	p.ids = p.ids[:len(p.ids)-1]
	return last, true
}

func (p *VisitedPath) Len() int {
	return len(p.ids)
}

// Progress reports the visited share of the estimated path as a 0-100
// percentage. The denominator is visited + remaining static questions, so
// skipped branches never deflate the figure.
func (p *VisitedPath) Progress(questions []domains.Question, nextIndex int) int {
	visited := len(p.ids)
	if visited == 0 {
		return 0
	}
	if nextIndex == FlowEnd {
		return 100
	}
	remaining := len(questions) - nextIndex
	if remaining < 0 {
		remaining = 0
	}
	total := visited + remaining
	return int(float64(visited)/float64(total)*100 + 0.5)
}
