package validation

import "errors"

// Rule checks one value. Evaluate returns nil or a *FieldError for field.
// Rules are pure; none perform I/O.
type Rule interface {
	Evaluate(value any, field string) error
}

// RuleFunc adapts a function to Rule.
type RuleFunc func(value any, field string) error

func (f RuleFunc) Evaluate(value any, field string) error {
	return f(value, field)
}

// RecordRule checks relations between fields of one record.
type RecordRule interface {
	EvaluateRecord(fields map[string]any) error
}

// RecordRuleFunc adapts a function to RecordRule.
type RecordRuleFunc func(fields map[string]any) error

func (f RecordRuleFunc) EvaluateRecord(fields map[string]any) error {
	return f(fields)
}

// asFieldError normalizes whatever a rule returned into a *FieldError for field.
func asFieldError(err error, field string) *FieldError {
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe
	}
	return ruleError(field, err.Error())
}
