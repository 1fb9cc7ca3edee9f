package legalcase

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// ─────────────────────────────────────────────────────────────────────────────
// Statute citation grammar
// ─────────────────────────────────────────────────────────────────────────────
//
// A single citation is an article reference with optional clause and letter:
//
//   Pasal 55
//   Pasal 2 Ayat (1)
//   Pasal 112 Ayat (2) huruf a
//
// Rulings chain citations with connectors (jo., juncto, dan, atau, serta):
//
//   Pasal 5 jo Pasal 3 Undang-Undang Nomor 31
//
// Extraction, prediction, and evaluation all parse citations through the
// functions in this file so that a statute voted on by the predictor is
// byte-identical to the one the extractor stored and the evaluator compares.

// citationExpr matches one citation.  citationChainExpr captures a run of
// citations joined by connector words or punctuation.
const (
	citationExpr = `Pasal\s+\d+(?:\s+Ayat\s*\(\d+\))?(?:\s+huruf\s+[a-zA-Z])?`

	citationChainExpr = `((?:` + citationExpr + `)` +
		`(?:[\s\.\,\;]*(?:jo\.?|juncto|dan|atau|serta)?\s*` + citationExpr + `)*)`
)

var (
	// reCitation finds individual citations inside an already-normalized
	// field value.
	reCitation = regexp.MustCompile(`(?i)` + citationExpr)

	// reCitationHead is the minimal shape a chain fragment must contain to
	// survive splitting.
	reCitationHead = regexp.MustCompile(`(?i)Pasal\s+\d+`)

	// statuteChainPatterns locate citation chains in full ruling text, in
	// priority order: verdict-anchored first, ruling-verb-anchored second,
	// bare chains last.  All three feed the same normalization, so the order
	// only affects which duplicates are seen first.
	statuteChainPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?is)(?:terbukti|bersalah|melakukan\s+tindak\s+pidana|dihukum)\s+.*?` +
			`(?:sebagaimana\s+diatur\s+dalam|melanggar|berdasarkan)\s+` +
			citationChainExpr +
			`(?:\s+Undang-Undang\s+Nomor\s+\d+)?`),
		regexp.MustCompile(`(?is)(?:menyatakan|memutuskan|menimbang|mengadili|berdasarkan)\s+.*?` +
			citationChainExpr +
			`(?:\s+Undang-Undang\s+Nomor\s+\d+)?`),
		regexp.MustCompile(`(?i)` + citationChainExpr),
	}

	reSpaceRun       = regexp.MustCompile(`\s+`)
	reAyatSpacing    = regexp.MustCompile(`(?i)Ayat\s*\(\s*(\d+)\s*\)`)
	reHurufSpacing   = regexp.MustCompile(`(?i)huruf\s*([a-zA-Z])`)
	reChainConnector = regexp.MustCompile(`(?i)\s+(?:jo|dan)\s+`)

	// connectorFolding rewrites every connector spelling onto the two split
	// tokens reChainConnector understands.
	connectorFolding = strings.NewReplacer(
		"jo.", "jo",
		"juncto", "jo",
		"serta", "dan",
		"atau", "dan",
	)
)

// Citation fragments shorter or longer than these bounds are regex noise, not
// statutes.
const (
	minCitationLength = 5
	maxCitationLength = 150
)

// StatuteSeparator joins citation lists into the stored field value.
const StatuteSeparator = "; "

// ─────────────────────────────────────────────────────────────────────────────
// Extraction and parsing
// ─────────────────────────────────────────────────────────────────────────────

// ExtractStatutes scans full ruling text for statute citations and returns
// them as a deduplicated, alphabetically sorted list of canonical citations.
// The whole document is scanned; citations appear in the charges near the top
// and again in the verdict near the end, and both occurrences fold onto one
// entry.
func ExtractStatutes(text string) []string {
	found := make(map[string]struct{})

	for _, re := range statuteChainPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			chain := m[0]
			if len(m) > 1 && m[1] != "" {
				chain = m[1]
			}
			for _, part := range splitCitationChain(chain) {
				if !reCitationHead.MatchString(part) {
					continue
				}
				if len(part) < minCitationLength || len(part) > maxCitationLength {
					continue
				}
				found[TitleCase(part)] = struct{}{}
			}
		}
	}

	out := make([]string, 0, len(found))
	for citation := range found {
		out = append(out, citation)
	}
	sort.Strings(out)
	return out
}

// splitCitationChain normalizes a matched chain and splits it into individual
// citation fragments.
func splitCitationChain(chain string) []string {
	chain = normalizeCitationSpacing(chain)
	chain = connectorFolding.Replace(chain)

	parts := reChainConnector.Split(chain, -1)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// ParseStatuteField parses a stored statute field (or any short citation
// string) into canonical citations, preserving first-seen order.  Prediction
// uses this to vote on neighbor statutes; evaluation uses it to compare
// predicted and actual citation sets.
func ParseStatuteField(field string) []string {
	matches := reCitation.FindAllString(field, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		citation := TitleCase(normalizeCitationSpacing(m))
		if _, dup := seen[citation]; dup {
			continue
		}
		seen[citation] = struct{}{}
		out = append(out, citation)
	}
	return out
}

// JoinStatutes renders a citation list into the stored field form.
func JoinStatutes(citations []string) string {
	return strings.Join(citations, StatuteSeparator)
}

// normalizeCitationSpacing collapses whitespace runs and canonicalizes the
// spacing of clause and letter qualifiers: "Ayat ( 1 )" becomes "Ayat (1)",
// "huruf  a" becomes "huruf a".
func normalizeCitationSpacing(s string) string {
	s = strings.TrimSpace(reSpaceRun.ReplaceAllString(s, " "))
	s = reAyatSpacing.ReplaceAllString(s, "Ayat ($1)")
	s = reHurufSpacing.ReplaceAllString(s, "huruf $1")
	return s
}

// ─────────────────────────────────────────────────────────────────────────────
// Canonical casing
// ─────────────────────────────────────────────────────────────────────────────

// TitleCase uppercases the first letter of every letter run and lowercases
// the rest: "pasal 112 ayat (2) HURUF a" becomes "Pasal 112 Ayat (2) Huruf A".
// Stored citations, party names, and category labels all use this casing.
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	prevLetter := false
	for _, r := range s {
		switch {
		case !unicode.IsLetter(r):
			prevLetter = false
			b.WriteRune(r)
		case prevLetter:
			b.WriteRune(unicode.ToLower(r))
		default:
			prevLetter = true
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}
