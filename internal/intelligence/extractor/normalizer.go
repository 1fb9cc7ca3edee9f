// Package extractor turns raw Indonesian court-ruling text into the
// structured metadata fields of a case record.  Each field is produced by a
// prioritized cascade of regex recognizers run by a generic first-success
// combinator; recognizers are pure and the cascades are plain data tables, so
// every entry is unit-testable on its own.
//
// Extraction is best-effort over noisy OCR-grade text: a field that no
// recognizer can validate is returned empty, never as an error.
package extractor

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	reNewlineRun = regexp.MustCompile(`[\r\n]+`)
	reSpaceRun   = regexp.MustCompile(`[ \t]+`)
	reOpenParen  = regexp.MustCompile(`\s*\(\s*`)
	reCloseParen = regexp.MustCompile(`\s*\)\s*`)
	reWhitespace = regexp.MustCompile(`\s+`)
)

// Normalize cleans raw ruling text for pattern matching and indexing: NUL and
// non-breaking-space artifacts become spaces, CR/LF runs collapse to single
// newlines, space/tab runs to one space, and whitespace around parentheses is
// tightened.  Pure and idempotent; empty input yields empty output.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = norm.NFC.String(text)
	text = strings.ReplaceAll(text, "\x00", " ")
	text = strings.ReplaceAll(text, "\u00a0", " ")
	text = reNewlineRun.ReplaceAllString(text, "\n")
	text = reSpaceRun.ReplaceAllString(text, " ")
	text = reOpenParen.ReplaceAllString(text, "(")
	text = reCloseParen.ReplaceAllString(text, ")")
	return strings.TrimSpace(text)
}

// collapseSpaces folds every whitespace run in s to a single space and trims.
func collapseSpaces(s string) string {
	return strings.TrimSpace(reWhitespace.ReplaceAllString(s, " "))
}
