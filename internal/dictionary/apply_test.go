package dictionary_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/mkarren/dictato/internal/dictionary"
)

func TestApplyRules_BasicReplace(t *testing.T) {
	t.Parallel()

	got := dictionary.ApplyRules("I said テキスト loudly", dictionary.RuleSet{
		dictionary.Replace("テクスト", "テキスト"),
	})
	if want := "I said テクスト loudly"; got != want {
		t.Errorf("ApplyRules() = %q, want %q", got, want)
	}
}

func TestApplyRules_ProtectedOverlap(t *testing.T) {
	t.Parallel()

	// The standalone occurrence is replaced; the one inside the protected
	// phrase is not.
	got := dictionary.ApplyRules("テキストエディタ and テキスト", dictionary.RuleSet{
		dictionary.Replace("テクスト", "テキスト"),
		dictionary.Protect("テキストエディタ"),
	})
	if want := "テキストエディタ and テクスト"; got != want {
		t.Errorf("ApplyRules() = %q, want %q", got, want)
	}
}

func TestApplyRules_ProtectionInvariant(t *testing.T) {
	t.Parallel()

	// For any protect phrase Q containing a replace pattern P, every
	// occurrence of Q must survive byte for byte.
	tests := []struct {
		name    string
		text    string
		pattern string
		to      string
		guard   string
	}{
		{
			name:    "pattern at guard start",
			text:    "color is nice but color scheme stays",
			pattern: "color",
			to:      "colour",
			guard:   "color scheme",
		},
		{
			name:    "pattern mid guard",
			text:    "the old capital of the old kingdom",
			pattern: "old",
			to:      "ancient",
			guard:   "the old kingdom",
		},
		{
			name:    "guard repeated",
			text:    "sam, sam wise, sam wise, sam",
			pattern: "sam",
			to:      "Sam",
			guard:   "sam wise",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := dictionary.ApplyRules(tc.text, dictionary.RuleSet{
				dictionary.Replace(tc.to, tc.pattern),
				dictionary.Protect(tc.guard),
			})
			if strings.Count(got, tc.guard) != strings.Count(tc.text, tc.guard) {
				t.Errorf("protected phrase %q damaged: %q -> %q", tc.guard, tc.text, got)
			}
		})
	}
}

func TestApplyRules_SpansTrackEvolvingText(t *testing.T) {
	t.Parallel()

	// The first rule rewrites "color scheme" into "colour scheme", which is
	// exactly the protected phrase. The second rule must then leave "scheme"
	// alone: protection is computed against the current text, not the
	// original input.
	rules := dictionary.RuleSet{
		dictionary.Replace("colour", "color"),
		dictionary.Replace("plan", "scheme"),
		dictionary.Protect("colour scheme"),
	}
	got := dictionary.ApplyRules("my color scheme and my scheme", rules)
	if want := "my colour scheme and my plan"; got != want {
		t.Errorf("ApplyRules() = %q, want %q", got, want)
	}
}

func TestApplyRules_EarlierReplacementShiftsOffsets(t *testing.T) {
	t.Parallel()

	// The first replacement grows the text; protected span offsets for the
	// second pattern must be correct in the shifted text.
	rules := dictionary.RuleSet{
		dictionary.Replace("abcdefgh", "ab"),
		dictionary.Replace("X", "cd"),
		dictionary.Protect("cde"),
	}
	// "ab cd cde" grows to "abcdefgh cd cde". The grown text contains a new
	// "cde" occurrence inside "abcdefgh", so of the three "cd" occurrences
	// only the bare middle one is replaced — the other two start a protected
	// "cde" in the current text.
	got := dictionary.ApplyRules("ab cd cde", rules)
	if want := "abcdefgh X cde"; got != want {
		t.Errorf("ApplyRules() = %q, want %q", got, want)
	}
}

func TestApplyRules_SequentialRuleOrder(t *testing.T) {
	t.Parallel()

	// Rules apply in order over the evolving text: a -> b, then b -> c turns
	// the original "a" into "c".
	got := dictionary.ApplyRules("a", dictionary.RuleSet{
		dictionary.Replace("b", "a"),
		dictionary.Replace("c", "b"),
	})
	if want := "c"; got != want {
		t.Errorf("ApplyRules() = %q, want %q", got, want)
	}
}

func TestApplyRules_LongestProtectPatternWins(t *testing.T) {
	t.Parallel()

	// Two protect patterns start at the same position; the longer one claims
	// the span, so the tail of the longer phrase is covered as well.
	rules := dictionary.RuleSet{
		dictionary.Replace("CITY", "Minas"),
		dictionary.Replace("TOWER", "Tirith"),
		dictionary.Protect("Minas"),
		dictionary.Protect("Minas Tirith"),
	}
	got := dictionary.ApplyRules("Minas Tirith", rules)
	if want := "Minas Tirith"; got != want {
		t.Errorf("ApplyRules() = %q, want %q", got, want)
	}
}

func TestApplyRules_NoOpSafety(t *testing.T) {
	t.Parallel()

	rules := dictionary.RuleSet{
		dictionary.Replace("x", "a"),
		dictionary.Protect("guard"),
	}

	if got := dictionary.ApplyRules("anything at all", nil); got != "anything at all" {
		t.Errorf("empty rule set changed text: %q", got)
	}
	if got := dictionary.ApplyRules("", rules); got != "" {
		t.Errorf("empty text became %q", got)
	}
	if got := dictionary.ApplyRules("no patterns here", dictionary.RuleSet{dictionary.Protect("zzz")}); got != "no patterns here" {
		t.Errorf("protect-only rule set changed text: %q", got)
	}
}

func TestApplyRules_AllOccurrencesReplaced(t *testing.T) {
	t.Parallel()

	got := dictionary.ApplyRules("aa b aa b aa", dictionary.RuleSet{
		dictionary.Replace("X", "aa"),
	})
	if want := "X b X b X"; got != want {
		t.Errorf("ApplyRules() = %q, want %q", got, want)
	}
}

func TestApplyRulesTraced(t *testing.T) {
	t.Parallel()

	text := "gandolf met gandolf and borromir near テキストエディタ"
	rules := dictionary.RuleSet{
		dictionary.Replace("Gandalf", "gandolf"),
		dictionary.Replace("Boromir", "borromir"),
		dictionary.Replace("テクスト", "テキスト"),
		dictionary.Protect("テキストエディタ"),
	}

	got, trace := dictionary.ApplyRulesTraced(text, rules)
	want := "Gandalf met Gandalf and Boromir near テキストエディタ"
	if got != want {
		t.Errorf("text = %q, want %q", got, want)
	}

	// "テキスト" occurs only inside the protected phrase, so it must not
	// appear in the trace at all.
	wantTrace := []dictionary.Substitution{
		{Pattern: "gandolf", Replacement: "Gandalf", Count: 2},
		{Pattern: "borromir", Replacement: "Boromir", Count: 1},
	}
	if !reflect.DeepEqual(trace, wantTrace) {
		t.Errorf("trace = %+v, want %+v", trace, wantTrace)
	}

	if plain := dictionary.ApplyRules(text, rules); plain != got {
		t.Errorf("ApplyRules and ApplyRulesTraced disagree: %q vs %q", plain, got)
	}
}

func TestApplyRules_UnvalidatedRulesStillDeterministic(t *testing.T) {
	t.Parallel()

	// A conflicting set would never pass ValidateRules, but the applier must
	// not fail on it: sequential application gives a deterministic answer.
	rules := dictionary.RuleSet{
		dictionary.Replace("x", "a"),
		dictionary.Replace("y", "a"),
	}
	first := dictionary.ApplyRules("a a a", rules)
	for range 10 {
		if got := dictionary.ApplyRules("a a a", rules); got != first {
			t.Fatalf("non-deterministic result: %q vs %q", got, first)
		}
	}
	if first != "x x x" {
		t.Errorf("ApplyRules() = %q, want %q (first rule wins every occurrence)", first, "x x x")
	}
}
