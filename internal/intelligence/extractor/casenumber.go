package extractor

import (
	"regexp"
	"strings"
)

// Case-number cascade, most specific first.  Indonesian case numbers follow
// the registry shape digits/chamber-code/year[/court], e.g.
// "123/Pid.B/2021/PN.Jkt" or the cassation shape "456 K/Pid.Sus/2020".
var caseNumberRules = []rule{
	// "PUTUSAN Nomor : 123/Pid.B/2021/PN.Jkt"
	{re: regexp.MustCompile(`(?i)PUTUSAN\s+Nomor\s*[:\-]?\s*(\d{1,5}/[\w.\-]+?/\d{4}/[\w.]+)`)},
	// "Nomor : 123/Pid.B/2021/PN.Jkt" without the PUTUSAN anchor
	{re: regexp.MustCompile(`(?i)Nomor\s*[:\-]?\s*(\d{1,5}/[\w.\-]+?/\d{4}/[\w.]+)`)},
	// "No. 123/Pdt.G/2019" without the court suffix
	{re: regexp.MustCompile(`(?i)No\.\s*(\d{1,5}/[\w.\-]+?/\d{4})`)},
	// bare number shape at end of line
	{re: regexp.MustCompile(`(?i)(\d{1,5}/[\w.\-]+?/\d{4}(?:/[\w.]+)?)\s*\n`)},
	// cassation / review numbers: "456 K/Pid.Sus/2020", "789 PK/TUN/2018"
	{re: regexp.MustCompile(`(?i)(\d{1,5}\s*[PK]{1,2}/[\w.\-]+?/\d{4})`)},
}

// extractCaseNumber finds the registry case number in the document header.
// Label prefixes that leak into the capture are stripped from the winner.
func (e *Extractor) extractCaseNumber(text string) string {
	nomor := firstValidMatch(headRunes(text, e.cfg.HeaderRegion), caseNumberRules)
	nomor = strings.ReplaceAll(nomor, "Nomor :", "")
	nomor = strings.ReplaceAll(nomor, "No.", "")
	return strings.TrimSpace(nomor)
}
