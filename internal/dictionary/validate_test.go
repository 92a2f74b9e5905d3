package dictionary_test

import (
	"strings"
	"testing"

	"github.com/mkarren/dictato/internal/dictionary"
)

// errorLines splits a joined validation error into its individual messages.
func errorLines(t *testing.T, err error) []string {
	t.Helper()
	if err == nil {
		return nil
	}
	return strings.Split(err.Error(), "\n")
}

func TestValidateRules_CleanSet(t *testing.T) {
	t.Parallel()

	rules := dictionary.RuleSet{
		dictionary.Replace("Gandalf", "gandolf", "gandalph"),
		dictionary.Replace("Saruman", "sorumon"),
		dictionary.Protect("Gandalf the White"),
	}
	if err := dictionary.ValidateRules(rules); err != nil {
		t.Errorf("ValidateRules() = %v, want nil", err)
	}
}

func TestValidateRules_ConflictingReplaceTargets(t *testing.T) {
	t.Parallel()

	rules := dictionary.RuleSet{
		dictionary.Replace("x", "a"),
		dictionary.Replace("y", "a"),
	}
	err := dictionary.ValidateRules(rules)
	if err == nil {
		t.Fatal("ValidateRules() = nil, want conflict error")
	}

	lines := errorLines(t, err)
	if len(lines) != 1 {
		t.Fatalf("got %d errors, want exactly 1: %v", len(lines), lines)
	}
	msg := lines[0]
	for _, want := range []string{`"a"`, "row 1", "row 2", `"x"`, `"y"`} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q does not mention %s", msg, want)
		}
	}
}

func TestValidateRules_ProtectReplaceConflict(t *testing.T) {
	t.Parallel()

	// Both orderings must be caught; the relationship is order-independent.
	tests := []struct {
		name  string
		rules dictionary.RuleSet
	}{
		{
			name: "protect first",
			rules: dictionary.RuleSet{
				dictionary.Protect("a"),
				dictionary.Replace("y", "a"),
			},
		},
		{
			name: "replace first",
			rules: dictionary.RuleSet{
				dictionary.Replace("y", "a"),
				dictionary.Protect("a"),
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := dictionary.ValidateRules(tc.rules)
			if err == nil {
				t.Fatal("ValidateRules() = nil, want conflict error")
			}
			lines := errorLines(t, err)
			if len(lines) != 1 {
				t.Fatalf("got %d errors, want exactly 1: %v", len(lines), lines)
			}
			if !strings.Contains(lines[0], "conflicting pattern") || !strings.Contains(lines[0], `"a"`) {
				t.Errorf("unexpected message: %q", lines[0])
			}
		})
	}
}

func TestValidateRules_Duplicates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		rules dictionary.RuleSet
	}{
		{
			name: "same replace target twice",
			rules: dictionary.RuleSet{
				dictionary.Replace("x", "a"),
				dictionary.Replace("x", "a"),
			},
		},
		{
			name: "same protect pattern twice",
			rules: dictionary.RuleSet{
				dictionary.Protect("a"),
				dictionary.Protect("a"),
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := dictionary.ValidateRules(tc.rules)
			if err == nil {
				t.Fatal("ValidateRules() = nil, want duplicate error")
			}
			lines := errorLines(t, err)
			if len(lines) != 1 {
				t.Fatalf("got %d errors, want exactly 1: %v", len(lines), lines)
			}
			if !strings.Contains(lines[0], "duplicate pattern") {
				t.Errorf("unexpected message: %q", lines[0])
			}
		})
	}
}

func TestValidateRules_SamePatternTwiceInOneRule(t *testing.T) {
	t.Parallel()

	// A pattern repeated inside one rule's From list is counted once and
	// produces no cross-rule error.
	rules := dictionary.RuleSet{
		{Kind: dictionary.KindReplace, From: []string{"a", "a"}, To: "x"},
	}
	if err := dictionary.ValidateRules(rules); err != nil {
		t.Errorf("ValidateRules() = %v, want nil", err)
	}
}

func TestValidateRules_AccumulatesAllErrors(t *testing.T) {
	t.Parallel()

	rules := dictionary.RuleSet{
		dictionary.Replace("x", "a", "b"),
		dictionary.Replace("y", "a"), // conflict on "a"
		dictionary.Replace("x", "b"), // duplicate on "b"
		dictionary.Protect("c"),
		dictionary.Replace("z", "c"), // protect/replace conflict on "c"
	}
	err := dictionary.ValidateRules(rules)
	if err == nil {
		t.Fatal("ValidateRules() = nil, want errors")
	}
	if lines := errorLines(t, err); len(lines) != 3 {
		t.Errorf("got %d errors, want 3: %v", len(lines), lines)
	}
}

func TestValidateRules_OrderChangesRowsNotOutcome(t *testing.T) {
	t.Parallel()

	rules := dictionary.RuleSet{
		dictionary.Replace("x", "a"),
		dictionary.Protect("b"),
		dictionary.Replace("y", "a"),
		dictionary.Replace("z", "b"),
	}
	reversed := make(dictionary.RuleSet, len(rules))
	for i, r := range rules {
		reversed[len(rules)-1-i] = r
	}

	errFwd := dictionary.ValidateRules(rules)
	errRev := dictionary.ValidateRules(reversed)
	if (errFwd == nil) != (errRev == nil) {
		t.Fatalf("order changed the outcome: forward=%v reversed=%v", errFwd, errRev)
	}
	if len(errorLines(t, errFwd)) != len(errorLines(t, errRev)) {
		t.Errorf("order changed the error count: forward=%v reversed=%v", errFwd, errRev)
	}
}

func TestValidateRules_EmptySet(t *testing.T) {
	t.Parallel()

	if err := dictionary.ValidateRules(nil); err != nil {
		t.Errorf("ValidateRules(nil) = %v, want nil", err)
	}
}
