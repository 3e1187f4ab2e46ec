package validation

import (
	"regexp"
	"strings"
)

// These are heuristics, not parsers. The SQL pattern in particular matches ordinary
// prose (a keyword such as "or" or "alter" followed later by an operator-like
// character) and such values are rejected. That posture is intentional; changing it
// needs its own design decision.
var (
	scriptTagPattern = regexp.MustCompile(`(?i)<script.*?>.*?</script>`)
	htmlTagPattern   = regexp.MustCompile(`<[^>]+>`)
	sqlPattern       = regexp.MustCompile(`(?i)` + strings.Join(sqlAlternatives, "|"))
)

// sqlAlternatives mirror the regex101 qE9gR7 injection pattern. The optional
// leading quote/control run and trailing ";" groups of that pattern can match
// empty input, so for searching they reduce to the alternation itself.
var sqlAlternatives = []string{
	`select\s*.+\s*from\s*.+`,
	`insert\s*.+\s*into\s*.+`,
	`update\s*.+\s*set\s*.+`,
	`delete\s*.+\s*from\s*.+`,
	`drop\s*.+`,
	`truncate\s*.+`,
	`alter\s*.+`,
	`exec\s*.+`,
	`\s*(?:all|any|not|and|between|in|like|or|some|contains|containsall|containskey)\s*.+[=><!~]+.+`,
	`let\s+.+=\s*.*`,
	`begin\s*.*\s*end`,
	`\s*[/*]+\s*.*\s*[*/]+`,
	`\s*--\s*.*\s+`,
	`\s*(?:contains|containsall|containskey)\s+.*`,
}

// ScriptTag rejects <script ...>...</script> blocks, case-insensitively.
func ScriptTag() Rule {
	return patternRule(scriptTagPattern, "contains script tags, which are not allowed")
}

// HTMLTag rejects anything shaped like an HTML tag.
func HTMLTag() Rule {
	return patternRule(htmlTagPattern, "contains HTML tags, which are not allowed")
}

// SQLInjection rejects text matching the SQL keyword/operator/comment heuristic.
func SQLInjection() Rule {
	return patternRule(sqlPattern, "contains characters that may be used for SQL injection")
}

// SecurityRules returns the sweep applied to every string field.
func SecurityRules() []Rule {
	return []Rule{ScriptTag(), HTMLTag(), SQLInjection()}
}

func patternRule(re *regexp.Regexp, message string) Rule {
	return RuleFunc(func(value any, field string) error {
		s, ok := value.(string)
		if !ok {
			return nil
		}
		if re.MatchString(s) {
			return securityError(field, message)
		}
		return nil
	})
}
