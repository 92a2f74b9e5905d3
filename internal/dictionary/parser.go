package dictionary

import (
	"fmt"
	"strings"
)

// protectPrefix marks a protect line. Matched case-insensitively.
const protectPrefix = "protect:"

// arrowTokens are the accepted from/to separators on a replace line, checked
// for their first occurrence in the line. "->" must be listed before "→" so
// both spellings are found wherever they appear; only position decides which
// one wins.
var arrowTokens = []string{"->", "=>", "→"}

// ParseRules parses multi-line dictionary text into a [RuleSet].
//
// Blank lines and lines starting with '#' are skipped. A line whose
// (case-insensitive) prefix is "protect:" contributes a protect rule; any
// other line must contain one of the arrow tokens "->", "=>" or "→" and
// contributes a replace rule. Pattern lists are split on '|' or ',', with
// each piece trimmed and empty pieces dropped.
//
// Parsing never fails: malformed lines are skipped and reported in the
// returned error list, one message per line, addressed by 1-based line
// number. A line of the form "pattern ->" with nothing after the arrow is a
// syntax error, not an implicit protect rule.
func ParseRules(text string) (RuleSet, []string) {
	var (
		rules RuleSet
		errs  []string
	)

	for i, raw := range strings.Split(text, "\n") {
		lineNo := i + 1
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if len(line) >= len(protectPrefix) && strings.EqualFold(line[:len(protectPrefix)], protectPrefix) {
			patterns := splitPatterns(line[len(protectPrefix):])
			if len(patterns) == 0 {
				errs = append(errs, fmt.Sprintf("empty protect patterns at line %d", lineNo))
				continue
			}
			rules = append(rules, Rule{Kind: KindProtect, From: patterns})
			continue
		}

		from, to, ok := splitArrow(line)
		if !ok {
			errs = append(errs, fmt.Sprintf("expected from -> to at line %d", lineNo))
			continue
		}
		if from == "" || to == "" {
			errs = append(errs, fmt.Sprintf("empty from or to at line %d", lineNo))
			continue
		}

		patterns := splitPatterns(from)
		if len(patterns) == 0 {
			errs = append(errs, fmt.Sprintf("empty from patterns at line %d", lineNo))
			continue
		}
		rules = append(rules, Rule{Kind: KindReplace, From: patterns, To: to})
	}

	return rules, errs
}

// splitArrow splits line at the first occurrence of any arrow token and
// returns the trimmed left and right parts. ok is false when no arrow token
// is present.
func splitArrow(line string) (from, to string, ok bool) {
	at := -1
	width := 0
	for _, tok := range arrowTokens {
		idx := strings.Index(line, tok)
		if idx < 0 {
			continue
		}
		if at < 0 || idx < at {
			at = idx
			width = len(tok)
		}
	}
	if at < 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:at]), strings.TrimSpace(line[at+width:]), true
}

// splitPatterns splits s on '|' or ',', trims each piece, and drops empties
// and duplicates. The result preserves first-seen order.
func splitPatterns(s string) []string {
	pieces := strings.FieldsFunc(s, func(r rune) bool {
		return r == '|' || r == ','
	})

	var out []string
	seen := make(map[string]struct{}, len(pieces))
	for _, p := range pieces {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
