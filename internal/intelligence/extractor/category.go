package extractor

import (
	"regexp"
	"strings"

	"github.com/turtacn/CaseLaw-Intelligence/internal/domain/legalcase"
)

// Case-category cascade: classification phrases as they appear in ruling
// headers, most specific first.
var caseCategoryRules = []rule{
	{re: regexp.MustCompile(`(?i)Tindak\s+Pidana\s+Korupsi`)},
	{re: regexp.MustCompile(`(?i)Tipikor`)},
	{re: regexp.MustCompile(`(?i)Narkotika`)},
	{re: regexp.MustCompile(`(?i)Pidana\s+Khusus`)},
	{re: regexp.MustCompile(`(?i)Pidana\s+Umum`)},
	{re: regexp.MustCompile(`(?i)Perdata`)},
	{re: regexp.MustCompile(`(?i)Tata\s+Usaha\s+Negara`)},
	{re: regexp.MustCompile(`(?i)TUN`)},
	{re: regexp.MustCompile(`(?i)PHI`)},
	{re: regexp.MustCompile(`(?i)Perkawinan`)},
	{re: regexp.MustCompile(`(?i)Waris`)},
	{re: regexp.MustCompile(`(?i)Ekonomi\s+Syariah`)},
	{re: regexp.MustCompile(`(?i)Gugatan\s+Sederhana`)},
	{re: regexp.MustCompile(`(?i)Lalu\s+Lintas`)},
	{re: regexp.MustCompile(`(?i)Ketenagakerjaan`)},
}

// categoryFallback maps whole-text keyword scans to canonical category
// labels, applied in priority order when no header pattern matched.
var categoryFallbacks = []struct {
	re    *regexp.Regexp
	label string
}{
	{regexp.MustCompile(`tindak\s+pidana\s+korupsi|korupsi|suap|gratifikasi|tipikor`), "Tindak Pidana Korupsi"},
	{regexp.MustCompile(`narkoba|narkotika|psikotropika`), "Narkotika"},
	{regexp.MustCompile(`pidana\s+khusus|pid.sus`), "Pidana Khusus"},
	{regexp.MustCompile(`pidana\s+umum|pid.umum`), "Pidana Umum"},
	{regexp.MustCompile(`perdata|pdt`), "Perdata"},
	{regexp.MustCompile(`tata\s+usaha\s+negara|tun`), "Tata Usaha Negara"},
}

// extractCaseCategory classifies the ruling.  Header phrases win and are
// title-cased; otherwise a lowercase whole-text keyword scan applies fixed
// priorities, corruption first.
func (e *Extractor) extractCaseCategory(text string) string {
	if jenis := firstValidMatch(headRunes(text, e.cfg.HeaderRegion), caseCategoryRules); jenis != "" {
		return legalcase.TitleCase(jenis)
	}

	lower := strings.ToLower(text)
	for _, fb := range categoryFallbacks {
		if fb.re.MatchString(lower) {
			return fb.label
		}
	}
	return ""
}
