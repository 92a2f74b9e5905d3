package dictionary

import (
	"sort"
	"strings"
)

// span is a half-open byte offset range [start, end) into one specific text
// snapshot. Spans are never compared across snapshots and are never stored;
// they exist only for the duration of a single pattern application.
type span struct {
	start int
	end   int
}

// overlaps reports whether s intersects the half-open range [start, end).
func (s span) overlaps(start, end int) bool {
	return s.start < end && s.end > start
}

// protectedSpans locates every occurrence of every protect pattern in text
// and returns the merged, non-overlapping spans covering them, sorted by
// start offset.
//
// Candidate patterns are indexed by their first byte and tried
// longest-first, so when several protect patterns could match at the same
// position the longest (most specific) one claims the span. Touching and
// overlapping matches are then merged, which makes the later per-occurrence
// overlap test a single sweep.
func protectedSpans(text string, patterns []string) []span {
	if len(patterns) == 0 {
		return nil
	}

	byFirst := make(map[byte][]string, len(patterns))
	for _, p := range patterns {
		if p == "" {
			continue
		}
		byFirst[p[0]] = append(byFirst[p[0]], p)
	}
	for _, cands := range byFirst {
		sort.Slice(cands, func(i, j int) bool { return len(cands[i]) > len(cands[j]) })
	}

	var spans []span
	for i := 0; i < len(text); i++ {
		for _, p := range byFirst[text[i]] {
			if strings.HasPrefix(text[i:], p) {
				spans = append(spans, span{start: i, end: i + len(p)})
				break
			}
		}
	}

	return mergeSpans(spans)
}

// mergeSpans sorts spans by start (then end) and merges every touching or
// overlapping pair into maximal non-overlapping spans.
func mergeSpans(spans []span) []span {
	if len(spans) < 2 {
		return spans
	}

	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end < spans[j].end
	})

	merged := spans[:1]
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s.start <= last.end {
			if s.end > last.end {
				last.end = s.end
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

// replaceOutsideSpans replaces every occurrence of pattern in text with repl,
// except occurrences overlapping one of the given merged spans. It returns
// the rewritten text and the number of replacements made.
//
// Occurrences are found left to right and do not overlap each other; the
// search resumes past each occurrence whether it was replaced or kept. The
// span cursor only ever advances, so the whole call is a single pass over
// text and spans.
func replaceOutsideSpans(text, pattern, repl string, spans []span) (string, int) {
	var b strings.Builder
	count := 0
	last := 0
	si := 0

	for pos := 0; ; {
		idx := strings.Index(text[pos:], pattern)
		if idx < 0 {
			break
		}
		occStart := pos + idx
		occEnd := occStart + len(pattern)

		for si < len(spans) && spans[si].end <= occStart {
			si++
		}

		if si < len(spans) && spans[si].overlaps(occStart, occEnd) {
			// Protected: leave the occurrence untouched.
			pos = occEnd
			continue
		}

		b.WriteString(text[last:occStart])
		b.WriteString(repl)
		count++
		last = occEnd
		pos = occEnd
	}

	if count == 0 {
		return text, 0
	}
	b.WriteString(text[last:])
	return b.String(), count
}
