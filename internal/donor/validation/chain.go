package validation

import (
	"sort"
)

// Policy decides what a Chain does after a failing rule.
type Policy int

const (
	// AccumulateAll runs every rule and collects every failure.
	AccumulateAll Policy = iota
	// FailFast stops at the first failing rule in declaration order.
	FailFast
)

func (p Policy) String() string {
	if p == FailFast {
		return "fail_fast"
	}
	return "accumulate_all"
}

type binding struct {
	field string
	rule  Rule
}

// Chain is an ordered list of rules for one entity kind.
//
// Run evaluates, in order: field bindings as declared, record rules as declared,
// then sweep rules against every string-valued field sorted by field name.
type Chain struct {
	policy   Policy
	bindings []binding
	records  []RecordRule
	sweep    []Rule
}

func NewChain(policy Policy) *Chain {
	return &Chain{policy: policy}
}

func (c *Chain) Policy() Policy {
	return c.policy
}

// Field binds rules to a named field.
func (c *Chain) Field(field string, rules ...Rule) *Chain {
	for _, r := range rules {
		c.bindings = append(c.bindings, binding{field: field, rule: r})
	}
	return c
}

// Record appends record-level rules.
func (c *Chain) Record(rules ...RecordRule) *Chain {
	c.records = append(c.records, rules...)
	return c
}

// Sweep appends rules applied to every string value in the record, whatever its field.
func (c *Chain) Sweep(rules ...Rule) *Chain {
	c.sweep = append(c.sweep, rules...)
	return c
}

// Run validates fields. It returns nil or an ErrorMap.
func (c *Chain) Run(fields map[string]any) error {
	errs := ErrorMap{}
	stop := func(err error, field string) bool {
		if err == nil {
			return false
		}
		errs.Add(asFieldError(err, field))
		return c.policy == FailFast
	}

	for _, b := range c.bindings {
		if stop(b.rule.Evaluate(fields[b.field], b.field), b.field) {
			return errs
		}
	}

	for _, r := range c.records {
		err := r.EvaluateRecord(fields)
		if err == nil {
			continue
		}
		fe := asFieldError(err, "")
		if stop(fe, fe.Field) {
			return errs
		}
	}

	for _, field := range sortedKeys(fields) {
		for _, s := range stringsOf(fields[field]) {
			for _, r := range c.sweep {
				if stop(r.Evaluate(s, field), field) {
					return errs
				}
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func sortedKeys(fields map[string]any) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func stringsOf(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case *string:
		if t == nil {
			return nil
		}
		return []string{*t}
	case []string:
		return t
	case []any:
		var out []string
		for _, e := range t {
			out = append(out, stringsOf(e)...)
		}
		return out
	default:
		return nil
	}
}
