package extractor

import (
	"unicode/utf8"

	"github.com/turtacn/CaseLaw-Intelligence/internal/domain/legalcase"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Configuration
// ─────────────────────────────────────────────────────────────────────────────

// Config bounds the per-field search regions (in runes from the start of the
// normalized text, or from its end for the verdict) and the fact-summary
// length window.
type Config struct {
	// HeaderRegion is the region searched for the case number and category.
	HeaderRegion int
	// DateRegion is the region searched for the ruling date.
	DateRegion int
	// PersonalRegion is the region searched for party identity fields.
	PersonalRegion int
	// VerdictRegion is the tail region searched for the verdict clause.
	VerdictRegion int
	// SummaryMinLength and SummaryMaxLength bound the fact summary, in runes.
	SummaryMinLength int
	SummaryMaxLength int
}

// DefaultConfig returns the region and length bounds tuned on Supreme Court
// portal rulings.
func DefaultConfig() Config {
	return Config{
		HeaderRegion:     5000,
		DateRegion:       8000,
		PersonalRegion:   20000,
		VerdictRegion:    7000,
		SummaryMinLength: 200,
		SummaryMaxLength: 1500,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Extraction result
// ─────────────────────────────────────────────────────────────────────────────

// Fields holds the metadata extracted from one ruling.  Values are empty
// strings when no recognizer validated a candidate; Pasal carries the
// semicolon-joined canonical statute citations.
type Fields struct {
	NoPerkara      string
	Tanggal        string
	JenisPerkara   string
	Pasal          string
	Nama           string
	Umur           string
	JenisKelamin   string
	Pekerjaan      string
	Alamat         string
	StatusHukuman  string
	RingkasanFakta string

	// TextLength is the rune length of the normalized text the fields were
	// extracted from.
	TextLength int
}

// Apply copies the extracted values onto a case record, leaving identity and
// provenance fields untouched.
func (f Fields) Apply(rec *legalcase.CaseRecord) {
	rec.NoPerkara = f.NoPerkara
	rec.Tanggal = f.Tanggal
	rec.JenisPerkara = f.JenisPerkara
	rec.Pasal = f.Pasal
	rec.Nama = f.Nama
	rec.Umur = f.Umur
	rec.JenisKelamin = f.JenisKelamin
	rec.Pekerjaan = f.Pekerjaan
	rec.Alamat = f.Alamat
	rec.StatusHukuman = f.StatusHukuman
	rec.RingkasanFakta = f.RingkasanFakta
	rec.TextLength = f.TextLength
}

// Filled returns the names of the metadata fields that carry an extracted
// value, in artifact order.
func (f Fields) Filled() []string {
	var rec legalcase.CaseRecord
	f.Apply(&rec)
	return rec.FilledFields()
}

// ─────────────────────────────────────────────────────────────────────────────
// Extractor
// ─────────────────────────────────────────────────────────────────────────────

// Extractor runs every field cascade against a ruling text.  It is stateless
// apart from configuration and safe for concurrent use.
type Extractor struct {
	cfg Config
	log logging.Logger
}

// New builds an Extractor.  Non-positive config values fall back to
// DefaultConfig; a nil logger falls back to a no-op logger.
func New(cfg Config, log logging.Logger) *Extractor {
	def := DefaultConfig()
	if cfg.HeaderRegion <= 0 {
		cfg.HeaderRegion = def.HeaderRegion
	}
	if cfg.DateRegion <= 0 {
		cfg.DateRegion = def.DateRegion
	}
	if cfg.PersonalRegion <= 0 {
		cfg.PersonalRegion = def.PersonalRegion
	}
	if cfg.VerdictRegion <= 0 {
		cfg.VerdictRegion = def.VerdictRegion
	}
	if cfg.SummaryMinLength <= 0 {
		cfg.SummaryMinLength = def.SummaryMinLength
	}
	if cfg.SummaryMaxLength <= 0 {
		cfg.SummaryMaxLength = def.SummaryMaxLength
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Extractor{cfg: cfg, log: log.Named("extractor")}
}

// Extract normalizes text once and runs every field cascade over the result.
// Empty or whitespace-only input yields zero-valued Fields.
func (e *Extractor) Extract(text string) Fields {
	normalized := Normalize(text)
	if normalized == "" {
		e.log.Warn("input text is empty, returning empty fields")
		return Fields{}
	}

	f := Fields{
		NoPerkara:      e.extractCaseNumber(normalized),
		Tanggal:        e.extractRulingDate(normalized),
		JenisPerkara:   e.extractCaseCategory(normalized),
		Pasal:          legalcase.JoinStatutes(legalcase.ExtractStatutes(normalized)),
		Nama:           e.extractDefendantName(normalized),
		Umur:           e.extractAge(normalized),
		JenisKelamin:   e.extractGender(normalized),
		Pekerjaan:      e.extractOccupation(normalized),
		Alamat:         e.extractAddress(normalized),
		StatusHukuman:  e.extractVerdict(normalized),
		RingkasanFakta: e.extractFactSummary(normalized),
		TextLength:     utf8.RuneCountInString(normalized),
	}

	e.log.Debug("extraction complete",
		logging.Strings("filled_fields", f.Filled()),
		logging.Int("text_length", f.TextLength))
	return f
}
