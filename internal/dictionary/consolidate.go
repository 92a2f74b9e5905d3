package dictionary

import "strings"

// ConsolidateReplaceRules merges replace rules that share the same To value
// into a single rule per target, in the order each target was first seen.
// The merged From list is the deduplicated union of every contributing
// rule's patterns, also in first-seen order. Rules whose To is empty or
// blank are dropped.
//
// Editing surfaces call this before re-serializing so that a user can keep
// adding "x -> Gandalf" lines without hand-merging them. [ApplyRules] does
// not need consolidated input; consolidation only keeps the stored file
// compact and deterministic.
func ConsolidateReplaceRules(rules []Rule) []Rule {
	var order []string
	patterns := make(map[string][]string)
	seen := make(map[string]map[string]struct{})

	for _, rule := range rules {
		if rule.Kind != KindReplace || strings.TrimSpace(rule.To) == "" {
			continue
		}
		if _, ok := seen[rule.To]; !ok {
			order = append(order, rule.To)
			seen[rule.To] = make(map[string]struct{})
		}
		for _, p := range rule.From {
			if _, dup := seen[rule.To][p]; dup {
				continue
			}
			seen[rule.To][p] = struct{}{}
			patterns[rule.To] = append(patterns[rule.To], p)
		}
	}

	out := make([]Rule, 0, len(order))
	for _, to := range order {
		out = append(out, Rule{Kind: KindReplace, From: patterns[to], To: to})
	}
	return out
}
