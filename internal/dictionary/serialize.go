package dictionary

import "strings"

// SerializeRules renders a [RuleSet] in the canonical dictionary text form:
// one rule per line, protect rules as "protect: p1 | p2" and replace rules
// as "p1 | p2 -> to". Rules that would render empty — no patterns, or a
// replace rule with an empty To — are dropped. Lines are joined with "\n".
//
// For any rule set with non-empty pattern lists and non-empty To values,
// parsing the serialized form yields the same rules in the same order with
// no errors.
func SerializeRules(rules RuleSet) string {
	lines := make([]string, 0, len(rules))

	for _, rule := range rules {
		if len(rule.From) == 0 {
			continue
		}
		patterns := strings.Join(rule.From, " | ")

		switch rule.Kind {
		case KindProtect:
			lines = append(lines, "protect: "+patterns)
		case KindReplace:
			if rule.To == "" {
				continue
			}
			lines = append(lines, patterns+" -> "+rule.To)
		}
	}

	return strings.Join(lines, "\n")
}
