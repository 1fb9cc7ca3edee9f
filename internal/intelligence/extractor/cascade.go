package extractor

import (
	"regexp"
)

// rule is one entry of a field cascade: a pattern plus an optional acceptor.
// The acceptor receives the submatch slice (index 0 is the whole match) and
// returns the canonical value; returning ok=false rejects the candidate and
// lets the cascade continue.  A nil acceptor keeps the default candidate: the
// first capture group when the pattern has one, the whole match otherwise,
// whitespace-collapsed.
type rule struct {
	re     *regexp.Regexp
	accept func(groups []string) (value string, ok bool)
}

// candidate extracts the default candidate value from a submatch slice.
func candidate(groups []string) string {
	v := groups[0]
	if len(groups) > 1 {
		v = groups[1]
	}
	return collapseSpaces(v)
}

// firstValidMatch tries each rule in order against area, inspecting only the
// first occurrence of each pattern.  The first rule producing a non-empty
// accepted value wins.
func firstValidMatch(area string, rules []rule) string {
	for _, r := range rules {
		groups := r.re.FindStringSubmatch(area)
		if groups == nil {
			continue
		}
		v := candidate(groups)
		if r.accept != nil {
			accepted, ok := r.accept(groups)
			if !ok {
				continue
			}
			v = accepted
		}
		if v != "" {
			return v
		}
	}
	return ""
}

// firstAcceptedMatch tries each rule in order against area, inspecting every
// occurrence of each pattern before falling through to the next rule.  The
// first accepted occurrence wins.  Rules used here must carry an acceptor.
func firstAcceptedMatch(area string, rules []rule) string {
	for _, r := range rules {
		for _, groups := range r.re.FindAllStringSubmatch(area, -1) {
			if v, ok := r.accept(groups); ok {
				return v
			}
		}
	}
	return ""
}

// headRunes returns the first n runes of s.
func headRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// tailRunes returns the last n runes of s.
func tailRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
