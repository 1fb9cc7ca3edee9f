package extractor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/logging"
)

// Date cascade.  Every pattern captures three groups read as (day, month,
// year); the numeric YYYY/MM/DD shape therefore never validates (its "day" is
// a four-digit year), which matches how rulings are actually dated.
var rulingDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d{1,2})\s+(Januari|Februari|Maret|April|Mei|Juni|Juli|Agustus|September|Oktober|November|Desember)\s+(\d{4})`),
	regexp.MustCompile(`(\d{1,2})[/\-](\d{1,2})[/\-](\d{4})`),
	regexp.MustCompile(`(\d{4})[/\-](\d{1,2})[/\-](\d{1,2})`),
	regexp.MustCompile(`(?i)tanggal\s+(\d{1,2})\s+(\w+)\s+(\d{4})`),
	regexp.MustCompile(`(?i)pada\s+hari\s+\w+\s+tanggal\s+(\d{1,2})\s+(\w+)\s+(\d{4})`),
}

// monthNumbers maps Indonesian month names to zero-padded month numbers.
var monthNumbers = map[string]string{
	"januari": "01", "februari": "02", "maret": "03", "april": "04",
	"mei": "05", "juni": "06", "juli": "07", "agustus": "08",
	"september": "09", "oktober": "10", "november": "11", "desember": "12",
}

// identityContextKeywords mark a date as personal data (birth dates, ID-card
// dates) rather than the ruling date.
var identityContextKeywords = []string{
	"lahir", "usia", "umur", "ktp", "identitas", "akta", "ijazah",
}

// contextWindow is how far around a date match the identity-keyword check
// looks, in bytes.
const contextWindow = 150

// extractRulingDate finds the ruling date in the opening recitals and renders
// it as zero-padded ISO YYYY-MM-DD.  Matches whose surrounding context names
// identity keywords are skipped so party birthdates never win.
func (e *Extractor) extractRulingDate(text string) string {
	area := headRunes(text, e.cfg.DateRegion)

	for _, pattern := range rulingDatePatterns {
		for _, loc := range pattern.FindAllStringSubmatchIndex(area, -1) {
			start := loc[0] - contextWindow
			if start < 0 {
				start = 0
			}
			end := loc[1] + contextWindow
			if end > len(area) {
				end = len(area)
			}
			context := strings.ToLower(area[start:end])

			if containsAny(context, identityContextKeywords) {
				e.log.Debug("skipping date in identity context",
					logging.String("date", area[loc[0]:loc[1]]))
				continue
			}

			day := area[loc[2]:loc[3]]
			month := area[loc[4]:loc[5]]
			year := area[loc[6]:loc[7]]

			if iso, ok := buildISODate(day, month, year); ok {
				return iso
			}
		}
	}
	return ""
}

// buildISODate validates the (day, month, year) triple and renders it as
// YYYY-MM-DD.  Month accepts Indonesian names or numbers 1..12; day must fall
// in 1..31 and year in 1990..current+5.
func buildISODate(day, month, year string) (string, bool) {
	monthStr, ok := monthNumbers[strings.ToLower(month)]
	if !ok {
		m, err := strconv.Atoi(month)
		if err != nil || m < 1 || m > 12 {
			return "", false
		}
		monthStr = fmt.Sprintf("%02d", m)
	}

	dayNum, err := strconv.Atoi(day)
	if err != nil {
		return "", false
	}
	yearNum, err := strconv.Atoi(year)
	if err != nil {
		return "", false
	}

	if dayNum < 1 || dayNum > 31 {
		return "", false
	}
	if yearNum < 1990 || yearNum > time.Now().Year()+5 {
		return "", false
	}
	return fmt.Sprintf("%d-%s-%02d", yearNum, monthStr, dayNum), true
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
