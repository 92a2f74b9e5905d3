package dictionary

import "strings"

// Substitution records one pattern's application during a traced rewrite:
// which pattern was found, what replaced it, and how many unprotected
// occurrences were rewritten. Patterns that never occurred, or whose every
// occurrence was protected, do not appear in a trace.
type Substitution struct {
	Pattern     string `json:"pattern"`
	Replacement string `json:"replacement"`
	Count       int    `json:"count"`
}

// ApplyRules rewrites text according to rules and returns the result.
//
// Replace rules are applied sequentially in rule order, pattern by pattern
// in authored order. An occurrence of a pattern is skipped when its byte
// range overlaps a protected span — a region of the current text matching
// any protect pattern in the set.
//
// Protected spans are recomputed against the current working text before
// every pattern application, not once against the original input: earlier
// replacements shift offsets and can create or destroy protect-pattern
// occurrences, and protection must follow the text as it evolves. This is
// the load-bearing invariant of the whole engine.
//
// ApplyRules never fails. The rules are expected to have passed
// [ValidateRules]; on an inconsistent set the output is still deterministic,
// just possibly surprising. Empty input or an empty rule set returns the
// input unchanged.
func ApplyRules(text string, rules RuleSet) string {
	out, _ := ApplyRulesTraced(text, rules)
	return out
}

// ApplyRulesTraced is [ApplyRules] plus an ordered record of every
// substitution made, so callers can show the user exactly what the
// dictionary changed. The rewritten text is identical to what ApplyRules
// returns for the same inputs.
func ApplyRulesTraced(text string, rules RuleSet) (string, []Substitution) {
	protect, replace := partition(rules)

	result := text
	var trace []Substitution

	for _, rule := range replace {
		for _, pattern := range rule.From {
			if pattern == "" || !strings.Contains(result, pattern) {
				continue
			}

			spans := protectedSpans(result, protect)

			var count int
			if len(spans) == 0 {
				// Nothing is protected in the current text; plain global
				// replacement is behaviorally identical and cheaper.
				count = strings.Count(result, pattern)
				result = strings.ReplaceAll(result, pattern, rule.To)
			} else {
				result, count = replaceOutsideSpans(result, pattern, rule.To, spans)
			}

			if count > 0 {
				trace = append(trace, Substitution{
					Pattern:     pattern,
					Replacement: rule.To,
					Count:       count,
				})
			}
		}
	}

	return result, trace
}

// partition splits a rule set into the flattened protect pattern list and
// the replace rules, both in rule order.
func partition(rules RuleSet) (protect []string, replace []Rule) {
	for _, rule := range rules {
		switch rule.Kind {
		case KindProtect:
			protect = append(protect, rule.From...)
		case KindReplace:
			replace = append(replace, rule)
		}
	}
	return protect, replace
}
