package extractor

import (
	"regexp"
	"unicode/utf8"
)

// Verdict clauses live at the bottom of a ruling, after the MENGADILI header.
// The cascade scans the tail region only; anything shorter than a sentence or
// longer than a paragraph is noise from OCR run-ons.
var verdictRules = []rule{
	{re: regexp.MustCompile(`(?is)(?:menyatakan|mengadili).*?(?:terbukti|bersalah|tidak\s+terbukti|bebas|dihukum|dipidana).*?dengan\s+pidana\s+([^.\n]{20,300}\.?)(?:\n|$)`), accept: acceptVerdict},
	{re: regexp.MustCompile(`(?is)(?:menyatakan|memutuskan|mengadili).*?(?:terbukti\s+secara\s+sah\s+dan\s+meyakinkan|bersalah|tidak\s+terbukti|bebas)[^.]*\.?`), accept: acceptVerdict},
	{re: regexp.MustCompile(`(?is)(?:pidana|hukuman).*?(?:penjara|denda|kurungan|rehabilitasi|bebas).*?[^.]*\.?`), accept: acceptVerdict},
	{re: regexp.MustCompile(`(?is)(?:terdakwa|pemohon).*?(?:dipidana|dijatuhi|dihukum).*?[^.]*\.?`), accept: acceptVerdict},
}

func acceptVerdict(groups []string) (string, bool) {
	v := candidate(groups)
	if n := utf8.RuneCountInString(v); n < 30 || n > 500 {
		return "", false
	}
	return v, true
}

func (e *Extractor) extractVerdict(text string) string {
	return firstAcceptedMatch(tailRunes(text, e.cfg.VerdictRegion), verdictRules)
}
