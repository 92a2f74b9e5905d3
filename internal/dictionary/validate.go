package dictionary

import (
	"errors"
	"fmt"
)

// ValidateRules checks a [RuleSet] for duplicate and conflicting patterns
// across rules and returns nil when the set is clean.
//
// A pattern conflicts when it would have two different effects: named in two
// replace rules with different To values, or named in both a replace and a
// protect rule. A pattern repeated with the same effect (same To, or two
// protect rules) is a duplicate; still an error, because callers are
// expected to consolidate before persisting.
//
// Every problem found is accumulated into the returned error (via
// [errors.Join]) rather than short-circuiting on the first, so a user can
// fix the whole dictionary in one editing pass. Rows in messages are
// 1-based rule indices.
func ValidateRules(rules RuleSet) error {
	type replaceEntry struct {
		to  string
		row int
	}

	seenReplace := make(map[string]replaceEntry)
	seenProtect := make(map[string]int)
	var errs []error

	for i, rule := range rules {
		row := i + 1
		// Duplicates inside one rule count once.
		inRule := make(map[string]struct{}, len(rule.From))

		for _, pattern := range rule.From {
			if _, done := inRule[pattern]; done {
				continue
			}
			inRule[pattern] = struct{}{}

			switch rule.Kind {
			case KindProtect:
				if prev, ok := seenProtect[pattern]; ok && prev != row {
					errs = append(errs, fmt.Errorf(
						"duplicate pattern %q: protected in row %d and row %d", pattern, prev, row))
					continue
				}
				if prev, ok := seenReplace[pattern]; ok {
					errs = append(errs, fmt.Errorf(
						"conflicting pattern %q: replaced with %q in row %d but protected in row %d",
						pattern, prev.to, prev.row, row))
					continue
				}
				seenProtect[pattern] = row

			case KindReplace:
				if prev, ok := seenProtect[pattern]; ok {
					errs = append(errs, fmt.Errorf(
						"conflicting pattern %q: protected in row %d but replaced with %q in row %d",
						pattern, prev, rule.To, row))
					continue
				}
				prev, ok := seenReplace[pattern]
				switch {
				case !ok:
					seenReplace[pattern] = replaceEntry{to: rule.To, row: row}
				case prev.row == row:
					// Already counted for this rule.
				case prev.to == rule.To:
					errs = append(errs, fmt.Errorf(
						"duplicate pattern %q -> %q in row %d and row %d", pattern, rule.To, prev.row, row))
				default:
					errs = append(errs, fmt.Errorf(
						"conflicting pattern %q: row %d replaces with %q, row %d replaces with %q",
						pattern, prev.row, prev.to, row, rule.To))
				}
			}
		}
	}

	return errors.Join(errs...)
}
