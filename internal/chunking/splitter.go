// Package chunking splits document text into size-bounded, overlap-preserving
// chunks without breaking markdown image or link spans.
package chunking

import (
	"regexp"
	"sort"
	"strings"
)

// Unit is the smallest fragment a chunk boundary may fall between. Protected
// units hold a full markdown image/link span and are never subdivided, even
// when they exceed the requested chunk size.
type Unit struct {
	Text      string
	Protected bool
}

var (
	imageSpanRe = regexp.MustCompile(`!\[.*?\]\(.*?\)`)
	linkSpanRe  = regexp.MustCompile(`\[.*?\]\(.*?\)`)
)

// sentence period used to re-split fragments that still exceed chunkSize
// after the primary separator pass.
var secondarySeparators = []string{"."}

type span struct {
	start int
	end   int
}

// protectedSpans locates markdown image and link spans in text. Spans fully
// nested inside another span are dropped. For partially overlapping spans the
// earlier (and at equal start, longer) span wins; the loser's tail is treated
// as ordinary text.
func protectedSpans(text string) []span {
	var spans []span
	for _, m := range imageSpanRe.FindAllStringIndex(text, -1) {
		spans = append(spans, span{m[0], m[1]})
	}
	for _, m := range linkSpanRe.FindAllStringIndex(text, -1) {
		spans = append(spans, span{m[0], m[1]})
	}
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end > spans[j].end
	})
	kept := spans[:0]
	lastEnd := 0
	for _, s := range spans {
		if s.start < lastEnd {
			// Nested or partially overlapping an already kept span.
			continue
		}
		kept = append(kept, s)
		lastEnd = s.end
	}
	return kept
}

// Split breaks text into an ordered unit list whose concatenation reproduces
// text exactly. Free segments are split on the separator list (separators are
// emitted as their own units); fragments still longer than chunkSize are
// re-split on sentence periods. Protected spans become single atomic units.
func Split(text string, separators []string, chunkSize int) []Unit {
	if text == "" {
		return nil
	}
	spans := protectedSpans(text)

	var units []Unit
	last := 0
	for _, s := range spans {
		if s.start > last {
			units = appendFreeUnits(units, text[last:s.start], separators, chunkSize)
		}
		units = append(units, Unit{Text: text[s.start:s.end], Protected: true})
		last = s.end
	}
	if last < len(text) {
		units = appendFreeUnits(units, text[last:], separators, chunkSize)
	}
	return units
}

func appendFreeUnits(units []Unit, segment string, separators []string, chunkSize int) []Unit {
	for _, frag := range splitKeepSeparators(segment, separators) {
		if len(frag) <= chunkSize || isSeparator(frag, separators) {
			units = append(units, Unit{Text: frag})
			continue
		}
		for _, sub := range splitKeepSeparators(frag, secondarySeparators) {
			units = append(units, Unit{Text: sub})
		}
	}
	return units
}

// splitKeepSeparators splits text on the first matching separator at each
// position, emitting separators as standalone fragments so that rejoining
// reproduces the input. Separator priority follows list order when several
// match at the same offset.
func splitKeepSeparators(text string, separators []string) []string {
	var out []string
	rest := text
	for rest != "" {
		idx, sep := nextSeparator(rest, separators)
		if idx < 0 {
			out = append(out, rest)
			break
		}
		if idx > 0 {
			out = append(out, rest[:idx])
		}
		out = append(out, sep)
		rest = rest[idx+len(sep):]
	}
	return out
}

func nextSeparator(text string, separators []string) (int, string) {
	best := -1
	var bestSep string
	for _, sep := range separators {
		if sep == "" {
			continue
		}
		idx := strings.Index(text, sep)
		if idx < 0 {
			continue
		}
		if best < 0 || idx < best {
			best = idx
			bestSep = sep
		}
	}
	return best, bestSep
}

func isSeparator(frag string, separators []string) bool {
	for _, sep := range separators {
		if frag == sep {
			return true
		}
	}
	return false
}

// separatorRunes collects every rune appearing in any separator; used to
// detect pure separator carry-over in overlap seeds.
func separatorRunes(separators []string) map[rune]struct{} {
	set := make(map[rune]struct{})
	for _, sep := range separators {
		for _, r := range sep {
			set[r] = struct{}{}
		}
	}
	return set
}

func isSeparatorOnly(text string, set map[rune]struct{}) bool {
	if text == "" {
		return true
	}
	for _, r := range text {
		if _, ok := set[r]; !ok {
			return false
		}
	}
	return true
}
