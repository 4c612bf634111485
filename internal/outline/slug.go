package outline

import (
	"fmt"
	"strings"
	"unicode"
)

// Slugify produces a URL-safe base slug from heading text: lowercased, with
// every run of non-alphanumeric characters collapsed to a single hyphen and
// leading/trailing hyphens trimmed. Returns "" when nothing survives.
func Slugify(text string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		} else {
			pendingHyphen = true
		}
	}
	return b.String()
}

// AllocateSlug returns a pass-unique anchor for the given heading text.
//
// counters maps base slugs to the number of prior occurrences within the
// current extraction pass; the caller shares one map across the whole pass
// and resets it for the next. The first occurrence of a base returns it
// unchanged; the Nth occurrence (N >= 2) returns "<base>-N". Counting is
// purely sequential in document order.
//
// fallback is used when the text slugifies to nothing (e.g. a heading made
// entirely of punctuation); it, too, participates in dedup counting.
func AllocateSlug(text, fallback string, counters map[string]int) string {
	base := Slugify(text)
	if base == "" {
		base = fallback
	}
	n := counters[base]
	counters[base] = n + 1
	if n == 0 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, n+1)
}
