// Package dictionary implements the custom-dictionary rewriting engine that
// dictato applies to finalized speech-to-text output.
//
// A dictionary is a small user-authored text file, one rule per line. Two
// kinds of rule exist:
//
//   - Replace rules map one or more misheard phrases to a corrected spelling:
//     "gandolf | gandalph -> Gandalf"
//   - Protect rules pin phrases that must never be altered, even when they
//     textually contain a phrase some replace rule would match:
//     "protect: Gandalf the White"
//
// Patterns are exact literal substrings. There is no regex syntax, no case
// folding, and no escaping; pattern and replacement text is taken verbatim
// after trimming surrounding whitespace.
//
// The engine is a chain of pure functions: [ParseRules] turns rule text into
// a [RuleSet] plus line-addressed syntax errors, [ValidateRules] detects
// duplicate and conflicting patterns across rules, [ConsolidateReplaceRules]
// merges replace rules that share a target, [ApplyRules] performs the actual
// rewrite, and [SerializeRules] renders a [RuleSet] back to the canonical
// text form. No function holds state between calls, so every entry point is
// safe for any number of concurrent callers.
package dictionary

// RuleKind discriminates the two rule variants in a [Rule].
type RuleKind string

const (
	// KindReplace substitutes every unprotected occurrence of a pattern
	// with the rule's To text.
	KindReplace RuleKind = "replace"

	// KindProtect shields every occurrence of a pattern from all replace
	// rules in the same rule set.
	KindProtect RuleKind = "protect"
)

// Rule is a single dictionary entry. For KindReplace both From and To are
// populated; for KindProtect only From is. From patterns are non-empty and
// unique within the rule, in authored order.
type Rule struct {
	Kind RuleKind
	From []string
	To   string
}

// RuleSet is an ordered list of rules. Order is preserved through
// parse/serialize round trips and determines the sequence in which
// [ApplyRules] processes replace rules. The protect/replace relationship
// itself is order-independent; [ValidateRules] enforces that.
type RuleSet []Rule

// Replace constructs a replace rule. Intended for programmatic rule-set
// construction (editors, tests); [ParseRules] is the usual source of rules.
func Replace(to string, from ...string) Rule {
	return Rule{Kind: KindReplace, From: from, To: to}
}

// Protect constructs a protect rule.
func Protect(from ...string) Rule {
	return Rule{Kind: KindProtect, From: from}
}
