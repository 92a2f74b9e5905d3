// Package suggest proposes dictionary entries for the rule editor.
//
// Given a finalized transcript and the user's known vocabulary (names,
// product terms, jargon), it finds utterance n-grams that sound like a
// vocabulary term but are spelled differently — the misheard phrases a user
// would otherwise hunt down by hand. Candidates are filtered by Double
// Metaphone code overlap and ranked by Jaro-Winkler similarity.
//
// Suggestions are only ever offered to the user; the rewrite engine itself
// stays exact-match. Accepting a suggestion simply adds a "from -> to" line
// to the dictionary.
package suggest

import (
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
)

const (
	defaultPhoneticThreshold = 0.70
	defaultFuzzyThreshold    = 0.85
)

// Suggestion is one proposed dictionary entry: the phrase as transcribed and
// the vocabulary term it probably meant, with the ranking score in [0, 1].
type Suggestion struct {
	From       string  `json:"from"`
	To         string  `json:"to"`
	Confidence float64 `json:"confidence"`
}

// Option is a functional option for configuring a [Matcher].
type Option func(*Matcher)

// WithPhoneticThreshold sets the minimum Jaro-Winkler score required for a
// phonetically-matched term to be suggested. Default: 0.70.
func WithPhoneticThreshold(threshold float64) Option {
	return func(m *Matcher) {
		m.phoneticThreshold = threshold
	}
}

// WithFuzzyThreshold sets the minimum Jaro-Winkler score required when no
// phonetic overlap exists and the matcher falls back to pure string
// similarity. Default: 0.85.
func WithFuzzyThreshold(threshold float64) Option {
	return func(m *Matcher) {
		m.fuzzyThreshold = threshold
	}
}

// Matcher generates dictionary suggestions. All methods are safe for
// concurrent use — the Matcher is read-only after construction.
type Matcher struct {
	phoneticThreshold float64
	fuzzyThreshold    float64
}

// New returns a [Matcher] configured with the supplied options.
func New(opts ...Option) *Matcher {
	m := &Matcher{
		phoneticThreshold: defaultPhoneticThreshold,
		fuzzyThreshold:    defaultFuzzyThreshold,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Suggest scans text for n-grams that plausibly mishear one of the
// vocabulary terms and returns one suggestion per distinct transcribed
// phrase, best match first. Exact (case-insensitive) occurrences of a term
// produce no suggestion — they need no rule.
func (m *Matcher) Suggest(text string, vocabulary []string) []Suggestion {
	tokens := strings.Fields(text)
	if len(tokens) == 0 || len(vocabulary) == 0 {
		return nil
	}

	maxWords := 1
	for _, v := range vocabulary {
		if n := len(strings.Fields(v)); n > maxWords {
			maxWords = n
		}
	}

	seen := make(map[string]struct{})
	var out []Suggestion

	for i := 0; i < len(tokens); i++ {
		maxN := maxWords
		if i+maxN > len(tokens) {
			maxN = len(tokens) - i
		}
		// Longest window first so multi-word terms beat their own fragments.
		for n := maxN; n >= 1; n-- {
			window := strings.Join(tokens[i:i+n], " ")
			term, score, ok := m.match(window, vocabulary)
			if !ok {
				continue
			}
			key := strings.ToLower(window)
			if _, dup := seen[key]; dup {
				break
			}
			seen[key] = struct{}{}
			out = append(out, Suggestion{From: window, To: term, Confidence: score})
			break
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	return out
}

// match finds the vocabulary term most similar to phrase, or ok=false when
// nothing clears the thresholds or the phrase already matches a term exactly.
func (m *Matcher) match(phrase string, vocabulary []string) (term string, score float64, ok bool) {
	phraseLower := strings.ToLower(strings.TrimSpace(phrase))
	if phraseLower == "" {
		return "", 0, false
	}
	phraseTokens := strings.Fields(phraseLower)
	phraseCodes := codesForTokens(phraseTokens)

	type candidate struct {
		term     string
		score    float64
		phonetic bool
	}
	var best candidate

	for _, v := range vocabulary {
		vLower := strings.ToLower(strings.TrimSpace(v))
		if vLower == "" {
			continue
		}
		if vLower == phraseLower {
			// Already transcribed correctly; nothing to suggest.
			return "", 0, false
		}
		if strings.Contains(phraseLower, vLower) {
			// The window swallowed a correct occurrence of the term plus
			// neighbouring words; a rule built from it would corrupt text.
			continue
		}
		vTokens := strings.Fields(vLower)

		phonetic := codesOverlap(phraseCodes, codesForTokens(vTokens))
		jw := bestJWScore(phraseTokens, vTokens, phraseLower, vLower)

		if phonetic {
			if jw >= m.phoneticThreshold && (!best.phonetic || jw > best.score) {
				best = candidate{term: v, score: jw, phonetic: true}
			}
		} else if !best.phonetic && jw >= m.fuzzyThreshold && jw > best.score {
			best = candidate{term: v, score: jw, phonetic: false}
		}
	}

	if best.term == "" {
		return "", 0, false
	}
	return best.term, best.score, true
}

// codesForTokens returns the union of all Double Metaphone codes for the
// given tokens. Empty codes are excluded.
func codesForTokens(tokens []string) map[string]struct{} {
	codes := make(map[string]struct{}, len(tokens)*2)
	for _, t := range tokens {
		p, s := matchr.DoubleMetaphone(t)
		if p != "" {
			codes[p] = struct{}{}
		}
		if s != "" {
			codes[s] = struct{}{}
		}
	}
	return codes
}

// codesOverlap reports whether the two code sets share at least one code.
func codesOverlap(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for code := range a {
		if _, ok := b[code]; ok {
			return true
		}
	}
	return false
}

// bestJWScore computes the highest Jaro-Winkler similarity between the
// phrase and the term, comparing both the full strings and the
// space-stripped concatenations (so "el drinax" still lines up with
// "Eldrinax"). Per-token pairwise scoring is deliberately not used: a single
// shared token would score 1.0 and drown out how different the rest of the
// window is. longTolerance is false for standard Jaro-Winkler scoring.
func bestJWScore(phraseTokens, termTokens []string, phraseFull, termFull string) float64 {
	score := matchr.JaroWinkler(phraseFull, termFull, false)

	if len(phraseTokens) > 1 || len(termTokens) > 1 {
		concat1 := strings.Join(phraseTokens, "")
		concat2 := strings.Join(termTokens, "")
		if s := matchr.JaroWinkler(concat1, concat2, false); s > score {
			score = s
		}
	}

	return score
}
