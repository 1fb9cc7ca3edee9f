package extractor

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/turtacn/CaseLaw-Intelligence/internal/domain/legalcase"
)

// ─── defendant name ──────────────────────────────────────────────────────────

// Name cascade, most specific first.  Every pattern captures the name as its
// single group; the optional "bin"/"binti" patronymic is folded into the
// capture because it is the strongest signal of a complete personal name.
var defendantNamePatterns = []*regexp.Regexp{
	// name directly followed by identity-field labels (TTL, Umur, Alamat...)
	regexp.MustCompile(`(?i)(?:Terdakwa|Penggugat|Tergugat|Pemohon|Pembanding|Terbanding|Kuasa Hukum|Jaksa Penuntut Umum|Penasehat Hukum|Saksi|Ahli)?\s*[:\-,.()\s]*([A-Za-z][a-zA-Z\s.\-']{2,80}(?:\s+(?:bin|binti)\s+[A-Za-z][a-zA-Z\s.\-']{2,80})?)(?:\s*,)?\s*(?:Tempat\s+lahir|TTL|lahir|Umur|Usia|Jenis\s+Kelamin|Pekerjaan|Alamat|Jabatan)`),
	// explicit "Nama :" label
	regexp.MustCompile(`(?i)(?:Nama|Nama Lengkap)\s*[:\-]?\s*([A-Za-z][a-zA-Z\s.\-']{2,80}(?:\s+(?:bin|binti)\s+[A-Za-z][a-zA-Z\s.\-']{2,80})?)`),
	// role-prefixed: "Terdakwa: Budi Santoso"
	regexp.MustCompile(`(?i)(?:Terdakwa|Penggugat|Tergugat|Pemohon|Pembanding|Terbanding|Pemohon Kasasi|Termohon Kasasi|Jaksa Penuntut Umum)\s*[:\-]?\s*([A-Za-z][a-zA-Z\s.\-']{2,80}(?:\s+(?:bin|binti)\s+[A-Za-z][a-zA-Z\s.\-']{2,80})?)`),
	// "a.n. Budi Santoso" / "oleh: Budi Santoso"
	regexp.MustCompile(`(?i)(?:a\.n\.|oleh)\s*:\s*([A-Za-z][a-zA-Z\s.\-']{2,80}(?:\s+(?:bin|binti)\s+[A-Za-z][a-zA-Z\s.\-']{2,80})?)`),
	// verdict clause: "menjatuhkan pidana kepada Terdakwa Budi Santoso"
	regexp.MustCompile(`(?i)(?:menyatakan|menjatuhkan)\s+(?:pidana|hukuman)\s+kepada\s+(?:Terdakwa|Para Terdakwa|Anak)\s+([A-Za-z][a-zA-Z\s.\-']{2,80}(?:\s+(?:bin|binti)\s+[A-Za-z][a-zA-Z\s.\-']{2,80})?)`),
}

// Role nouns that regularly leak into name captures.  A candidate equal to or
// containing any of these is not a personal name.
var nameExcludedTerms = []string{
	"terdakwa", "penggugat", "tergugat", "pemohon", "kuasa hukum",
	"majelis hakim", "saksi", "ahli", "jaksa penuntut umum", "panitera",
	"hakim ketua", "hakim anggota", "panitera pengganti",
	"para terdakwa", "para penggugat",
}

var (
	rePatronymic    = regexp.MustCompile(`(?i)\b(bin|binti)\b`)
	reMultiWordName = regexp.MustCompile(`^(?:[A-Z][a-zA-Z.\-']+\s+)+[A-Z][a-zA-Z.\-']+$`)
	reCapitalated   = regexp.MustCompile(`^[A-Z][a-zA-Z\s.\-']+$`)
	reHasASCIIAlpha = regexp.MustCompile(`[a-zA-Z]`)

	// rePersonalNoise strips characters that never belong in extracted
	// personal values; letters/digits/underscore, whitespace and .,-()/ stay.
	rePersonalNoise = regexp.MustCompile(`[^\p{L}\p{N}_\s.,()/-]`)
)

// cleanPersonalValue removes noise characters and collapses whitespace.
func cleanPersonalValue(v string) string {
	return collapseSpaces(rePersonalNoise.ReplaceAllString(strings.TrimSpace(v), ""))
}

// extractDefendantName finds the primary party name in the identity block.
// Candidates carrying a patronymic with at least three words are accepted
// immediately; otherwise the longest capitalized multi-word shape wins, and
// the cascade stops early once a two-word best exists.
func (e *Extractor) extractDefendantName(text string) string {
	area := headRunes(text, e.cfg.PersonalRegion)

	best := ""
	for _, pattern := range defendantNamePatterns {
		for _, groups := range pattern.FindAllStringSubmatch(area, -1) {
			value := cleanPersonalValue(groups[1])
			if utf8.RuneCountInString(value) < 3 || !reHasASCIIAlpha.MatchString(value) {
				continue
			}
			if nameIsExcluded(value) {
				continue
			}

			if rePatronymic.MatchString(value) && len(strings.Fields(value)) >= 3 {
				return legalcase.TitleCase(value)
			}

			if reMultiWordName.MatchString(value) {
				if utf8.RuneCountInString(value) > utf8.RuneCountInString(best) {
					best = legalcase.TitleCase(value)
				}
			} else if reCapitalated.MatchString(value) {
				if utf8.RuneCountInString(value) > utf8.RuneCountInString(best) {
					best = legalcase.TitleCase(value)
				}
			}

			if best != "" && len(strings.Fields(best)) > 1 {
				break
			}
		}
	}
	return best
}

func nameIsExcluded(value string) bool {
	lower := strings.ToLower(value)
	for _, term := range nameExcludedTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// ─── age, gender, occupation, address ────────────────────────────────────────

var ageRules = []rule{
	{re: regexp.MustCompile(`(?i)Umur[/\s]*Tanggal\s*lahir\s*[:\-]?\s*(\d{1,3})\s*(?:tahun|thn)`), accept: acceptAge},
	{re: regexp.MustCompile(`(?i)Umur\s*[:\-]?\s*(\d{1,3})\s*(?:tahun|thn)`), accept: acceptAge},
}

func acceptAge(groups []string) (string, bool) {
	value := cleanPersonalValue(groups[1])
	n, err := strconv.Atoi(value)
	if err != nil || n < 10 || n > 100 {
		return "", false
	}
	return value, true
}

var genderRules = []rule{
	{re: regexp.MustCompile(`(?i)Jenis\s+Kelamin\s*[:\-]?\s*(Laki-laki|Perempuan|L|P)\b`), accept: acceptGender},
	{re: regexp.MustCompile(`(?i)Kelamin\s*[:\-]?\s*(Laki-laki|Perempuan|L|P)\b`), accept: acceptGender},
}

func acceptGender(groups []string) (string, bool) {
	switch strings.ToLower(cleanPersonalValue(groups[1])) {
	case "laki-laki", "l":
		return legalcase.GenderMale, true
	case "perempuan", "p":
		return legalcase.GenderFemale, true
	}
	return "", false
}

var occupationRules = []rule{
	{re: regexp.MustCompile(`(?i)Pekerjaan\s*[:\-]?\s*([^:\n]{3,60})`), accept: acceptOccupation},
	{re: regexp.MustCompile(`(?i)Jabatan\s*[:\-]?\s*([^:\n]{3,60})`), accept: acceptOccupation},
}

func acceptOccupation(groups []string) (string, bool) {
	value := cleanPersonalValue(groups[1])
	if n := utf8.RuneCountInString(value); n < 3 || n > 60 {
		return "", false
	}
	return value, true
}

// addressKeywords must appear in a candidate for it to count as an address.
var addressKeywords = []string{
	"jalan", "no", "rt", "rw", "kelurahan", "kecamatan", "kota", "kabupaten",
}

var addressRules = []rule{
	{re: regexp.MustCompile(`(?i)(?:Tempat\s+Tinggal|Alamat)\s*[:\-]?\s*([^:\n]{10,250}\.?\s*(?:RT|RW|No|Jalan|Kelurahan|Kecamatan|Kota|Kabupaten|Provinsi)\s*[^:\n]{5,100})?`), accept: acceptAddress},
	{re: regexp.MustCompile(`(?i)beralamat\s+di\s+([^:\n]{10,250}\.?\s*(?:RT|RW|No|Jalan|Kelurahan|Kecamatan|Kota|Kabupaten|Provinsi)\s*[^:\n]{5,100})?`), accept: acceptAddress},
}

func acceptAddress(groups []string) (string, bool) {
	value := cleanPersonalValue(groups[1])
	if n := utf8.RuneCountInString(value); n < 20 || n > 250 {
		return "", false
	}
	if !containsAny(strings.ToLower(value), addressKeywords) {
		return "", false
	}
	return value, true
}

func (e *Extractor) extractAge(text string) string {
	return firstAcceptedMatch(headRunes(text, e.cfg.PersonalRegion), ageRules)
}

func (e *Extractor) extractGender(text string) string {
	return firstAcceptedMatch(headRunes(text, e.cfg.PersonalRegion), genderRules)
}

func (e *Extractor) extractOccupation(text string) string {
	return firstAcceptedMatch(headRunes(text, e.cfg.PersonalRegion), occupationRules)
}

func (e *Extractor) extractAddress(text string) string {
	return firstAcceptedMatch(headRunes(text, e.cfg.PersonalRegion), addressRules)
}
