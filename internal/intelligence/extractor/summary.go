package extractor

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/logging"
)

// ─── fact summary ─────────────────────────────────────────────────────────────

// Section markers bounding the facts narrative.  Rulings open the narrative
// with one of the start markers (DUDUK PERKARA for most chambers, POKOK
// GUGATAN for civil and administrative cases, URAIAN PERBUATAN for criminal
// indictments) and close it where the legal reasoning or the operative part
// begins.
var summaryStartMarkers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)DUDUK\s+PERKARA`),
	regexp.MustCompile(`(?i)I\.\s*PERKARA`),
	regexp.MustCompile(`(?i)FAKTA-FAKTA`),
	regexp.MustCompile(`(?i)MENIMBANG(?:\s+BAHWA|,\s+bahwa)?\s+permohonan`),
	regexp.MustCompile(`(?i)DALAM\s+POKOK\s+PERKARA`),
	regexp.MustCompile(`(?i)TENTANG\s+PERKARA`),
	regexp.MustCompile(`(?i)POKOK\s+GUGATAN`),
	regexp.MustCompile(`(?i)URAIAN\s+PERBUATAN`),
}

var summaryEndMarkers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)TENTANG\s+HUKUM`),
	regexp.MustCompile(`(?i)MENIMBANG(?:\s+TENTANG|,\s+tentang)?\s+HUKUM`),
	regexp.MustCompile(`(?i)DALAM\s+PERTIMBANGAN\s+HUKUM`),
	regexp.MustCompile(`(?i)MEMUTUSKAN`),
	regexp.MustCompile(`(?i)MENGADILI`),
	regexp.MustCompile(`(?i)AMAR\s+PUTUSAN`),
	regexp.MustCompile(`(?i)DALAM\s+EKSEPSI`),
	regexp.MustCompile(`(?i)Demikian\s+diputus\s+dalam\s+rapat\s+musyawarah`),
}

// summaryHeaderStrip removes the formal preamble when no section markers were
// found and the summary has to fall back to the leading substantial lines.
var summaryHeaderStrip = regexp.MustCompile(
	`(?is)^(?:PUTUSAN\s+NOMOR\s+[\s\S]*?DENGAN\s+RAHMAT\s+TUHAN\s+YANG\s+MAHA\s+ESA|PENGADILAN\s+NEGERI.*?\n+)*`)

// summaryAggressiveHeader is a bolder preamble cut used only when the normal
// path produced less than the minimum summary length.
var summaryAggressiveHeader = regexp.MustCompile(
	`(?is)^(.*?PUTUSAN\s+NOMOR\s+[\s\S]*?(?:DENGAN\s+RAHMAT\s+TUHAN\s+YANG\s+MAHA\s+ESA|MAJELIS\s+HAKIM|MENIMBANG|MENGADILI)\s*?\n+)?`)

// Boilerplate that survives segmentation: court-portal disclaimers, page
// footers and the certified-copy block between SALINAN and PANITERA.
var summaryCleanupPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)Disclaimer\s*[:-].*$`),
	regexp.MustCompile(`(?is)Halaman\s+\d+\s+dari\s+\d+.*$`),
	regexp.MustCompile(`(?is)MAHKAMAH\s+AGUNG.*$`),
	regexp.MustCompile(`(?is)Kepaniteraan.*@mahkamahagung\.go\.id.*$`),
	regexp.MustCompile(`(?is)Catatan\s*:\s*Putusan\s*ini.*$`),
	regexp.MustCompile(`(?is)\bSALINAN\b[\s\S]*?\bPANITERA\b`),
}

var (
	rePageNumberLine = regexp.MustCompile(`^\s*[-_]?\s*\d+\s*[-_]?\s*$`)
	reAllCapsLine    = regexp.MustCompile(`^\s*[A-Z\s]+\s*$`)
	reNoAlnumLine    = regexp.MustCompile(`^[^\p{L}\p{N}]*$`)
	reHasASCIIAlnum  = regexp.MustCompile(`[a-zA-Z0-9]`)
)

// extractFactSummary slices the facts narrative out of a normalized ruling,
// strips portal boilerplate and bounds the result to the configured length.
// It degrades stepwise: marker pair, single marker, substantial-line filter,
// then an aggressive head cut when everything else came up short.
func (e *Extractor) extractFactSummary(text string) string {
	text = Normalize(text)
	if text == "" {
		return ""
	}

	start := -1
	for _, re := range summaryStartMarkers {
		if loc := re.FindStringIndex(text); loc != nil {
			start = loc[1]
			break
		}
	}

	searchFrom := 0
	if start != -1 {
		searchFrom = start
	}
	end := -1
	for _, re := range summaryEndMarkers {
		if loc := re.FindStringIndex(text[searchFrom:]); loc != nil {
			end = searchFrom + loc[0]
			break
		}
	}

	var content string
	switch {
	case start != -1 && end != -1 && end > start:
		content = strings.TrimSpace(text[start:end])
		e.log.Debug("fact section located",
			logging.Int("start", start), logging.Int("end", end))
	case start != -1:
		content = strings.TrimSpace(text[start:])
	case end != -1:
		content = strings.TrimSpace(text[:end])
	default:
		e.log.Debug("no fact markers found, filtering substantial lines")
		stripped := strings.TrimSpace(summaryHeaderStrip.ReplaceAllString(text, ""))
		content = filterSubstantialLines(stripped)
	}

	content = Normalize(content)
	for _, re := range summaryCleanupPatterns {
		content = re.ReplaceAllString(content, "")
	}
	content = Normalize(content)

	if runes := []rune(content); len(runes) > e.cfg.SummaryMaxLength {
		runes = runes[:e.cfg.SummaryMaxLength]
		lastPeriod := -1
		for i, r := range runes {
			if r == '.' {
				lastPeriod = i
			}
		}
		if lastPeriod > e.cfg.SummaryMinLength {
			content = string(runes[:lastPeriod+1])
		} else {
			cut := string(runes)
			if i := strings.LastIndex(cut, " "); i >= 0 {
				cut = cut[:i]
			}
			content = cut + "..."
		}
	}

	if utf8.RuneCountInString(content) < e.cfg.SummaryMinLength &&
		utf8.RuneCountInString(text) >= e.cfg.SummaryMinLength {
		e.log.Warn("fact summary too short, applying aggressive fallback",
			logging.Int("summary_length", utf8.RuneCountInString(content)),
			logging.Int("text_length", utf8.RuneCountInString(text)))
		fallback := Normalize(summaryAggressiveHeader.ReplaceAllString(text, ""))
		if utf8.RuneCountInString(fallback) > e.cfg.SummaryMinLength {
			head := string([]rune(fallback)[:e.cfg.SummaryMinLength])
			return strings.TrimSpace(head) + "..."
		}
		return strings.TrimSpace(fallback)
	}

	return strings.TrimSpace(content)
}

// filterSubstantialLines keeps narrative lines and drops page numbers,
// all-caps headings and symbol runs.  Long lines must look like prose; short
// lines survive only when they contain words or digits.
func filterSubstantialLines(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		n := utf8.RuneCountInString(line)
		switch {
		case n > 50 && !rePageNumberLine.MatchString(line) &&
			!reAllCapsLine.MatchString(line) && !reNoAlnumLine.MatchString(line):
			kept = append(kept, line)
		case n > 10 && reHasASCIIAlnum.MatchString(line):
			kept = append(kept, line)
		}
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
