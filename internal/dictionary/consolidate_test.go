package dictionary_test

import (
	"reflect"
	"testing"

	"github.com/mkarren/dictato/internal/dictionary"
)

func TestConsolidateReplaceRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		rules []dictionary.Rule
		want  []dictionary.Rule
	}{
		{
			name: "merges shared targets in first-seen order",
			rules: []dictionary.Rule{
				dictionary.Replace("x", "a"),
				dictionary.Replace("x", "b"),
				dictionary.Replace("y", "c"),
			},
			want: []dictionary.Rule{
				dictionary.Replace("x", "a", "b"),
				dictionary.Replace("y", "c"),
			},
		},
		{
			name: "deduplicates merged patterns",
			rules: []dictionary.Rule{
				dictionary.Replace("x", "a", "b"),
				dictionary.Replace("x", "b", "c"),
			},
			want: []dictionary.Rule{
				dictionary.Replace("x", "a", "b", "c"),
			},
		},
		{
			name: "drops blank targets",
			rules: []dictionary.Rule{
				dictionary.Replace("", "a"),
				dictionary.Replace("   ", "b"),
				dictionary.Replace("x", "c"),
			},
			want: []dictionary.Rule{
				dictionary.Replace("x", "c"),
			},
		},
		{
			name: "ignores protect rules",
			rules: []dictionary.Rule{
				dictionary.Protect("keep me"),
				dictionary.Replace("x", "a"),
			},
			want: []dictionary.Rule{
				dictionary.Replace("x", "a"),
			},
		},
		{
			name:  "empty input",
			rules: nil,
			want:  []dictionary.Rule{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := dictionary.ConsolidateReplaceRules(tc.rules)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("ConsolidateReplaceRules() = %+v, want %+v", got, tc.want)
			}
		})
	}
}
