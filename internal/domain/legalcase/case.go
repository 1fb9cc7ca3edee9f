// Package legalcase defines the core vocabulary of the CaseLaw-Intelligence
// platform: court-ruling case records, generated query records, and the
// canonical statute-citation grammar shared by extraction, prediction, and
// evaluation.  All rules that decide what counts as "the same case" or "the
// same statute" live here; pipeline mechanics (pattern cascades, indexing,
// scoring) are handled by the intelligence and application layers.
package legalcase

import (
	"path/filepath"
	"strings"

	"github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Metadata field names (artifact schema)
// ─────────────────────────────────────────────────────────────────────────────

// Field name constants mirror the JSON keys of the case-base artifact.  They
// are used wherever a field is addressed by name: query text selection,
// fill-rate statistics, and search indexing.
const (
	FieldNoPerkara      = "no_perkara"
	FieldTanggal        = "tanggal"
	FieldJenisPerkara   = "jenis_perkara"
	FieldPasal          = "pasal"
	FieldNama           = "nama"
	FieldUmur           = "umur"
	FieldJenisKelamin   = "jenis_kelamin"
	FieldPekerjaan      = "pekerjaan"
	FieldAlamat         = "alamat"
	FieldStatusHukuman  = "status_hukuman"
	FieldRingkasanFakta = "ringkasan_fakta"
)

// MetadataFields lists every extracted metadata field in artifact order.
// Ingestion fill-rate statistics iterate this slice.
var MetadataFields = []string{
	FieldNoPerkara,
	FieldTanggal,
	FieldJenisPerkara,
	FieldPasal,
	FieldNama,
	FieldUmur,
	FieldJenisKelamin,
	FieldPekerjaan,
	FieldAlamat,
	FieldStatusHukuman,
	FieldRingkasanFakta,
}

// Canonical gender labels.  The extractor folds every recognized spelling
// ("L", "laki-laki", "P", …) onto exactly these two values.
const (
	GenderMale   = "Laki-laki"
	GenderFemale = "Perempuan"
)

// nonValues are stored field values that count as "not extracted" for
// fill-rate purposes even though they are non-empty strings.
var nonValues = map[string]bool{
	"N/A":     true,
	"UNKNOWN": true,
}

// ─────────────────────────────────────────────────────────────────────────────
// CaseRecord
// ─────────────────────────────────────────────────────────────────────────────

// CaseRecord is one court ruling reduced to structured metadata.  Records are
// created once by the extraction stage and are immutable afterwards; the case
// base persists them as a flat JSON array whose field names form the artifact
// schema shared with every downstream stage.
type CaseRecord struct {
	// ── Identity and provenance ───────────────────────────────────────────────
	CaseID     string `json:"case_id"`
	FileName   string `json:"file_name"`
	FileSize   int    `json:"file_size"`
	TextLength int    `json:"text_length"`

	// ── Extracted metadata ────────────────────────────────────────────────────
	NoPerkara      string `json:"no_perkara"`
	Tanggal        string `json:"tanggal"`
	JenisPerkara   string `json:"jenis_perkara"`
	Pasal          string `json:"pasal"`
	Nama           string `json:"nama"`
	Umur           string `json:"umur"`
	JenisKelamin   string `json:"jenis_kelamin"`
	Pekerjaan      string `json:"pekerjaan"`
	Alamat         string `json:"alamat"`
	StatusHukuman  string `json:"status_hukuman"`
	RingkasanFakta string `json:"ringkasan_fakta"`

	// ── Processing audit ──────────────────────────────────────────────────────
	ProcessedAt string `json:"processed_at"`
}

// Validate checks the minimal structural invariants a record must satisfy
// before it may enter a case base.
func (c CaseRecord) Validate() error {
	if strings.TrimSpace(c.CaseID) == "" {
		return errors.InvalidParam("case record must have a case_id")
	}
	if strings.TrimSpace(c.FileName) == "" {
		return errors.InvalidParam("case record must reference a source file_name")
	}
	return nil
}

// FieldValue returns the named metadata field's value.  The second return is
// false when the name is not a known metadata field.
func (c CaseRecord) FieldValue(name string) (string, bool) {
	switch name {
	case FieldNoPerkara:
		return c.NoPerkara, true
	case FieldTanggal:
		return c.Tanggal, true
	case FieldJenisPerkara:
		return c.JenisPerkara, true
	case FieldPasal:
		return c.Pasal, true
	case FieldNama:
		return c.Nama, true
	case FieldUmur:
		return c.Umur, true
	case FieldJenisKelamin:
		return c.JenisKelamin, true
	case FieldPekerjaan:
		return c.Pekerjaan, true
	case FieldAlamat:
		return c.Alamat, true
	case FieldStatusHukuman:
		return c.StatusHukuman, true
	case FieldRingkasanFakta:
		return c.RingkasanFakta, true
	}
	return "", false
}

// FilledFields returns the names of the metadata fields, in artifact order,
// that carry an extracted value.  Whitespace-only values and the "N/A" /
// "UNKNOWN" sentinels do not count.
func (c CaseRecord) FilledFields() []string {
	filled := make([]string, 0, len(MetadataFields))
	for _, name := range MetadataFields {
		v, _ := c.FieldValue(name)
		if FieldExtracted(v) {
			filled = append(filled, name)
		}
	}
	return filled
}

// FieldExtracted reports whether a stored field value represents an actual
// extraction result.
func FieldExtracted(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !nonValues[v]
}

// Statutes parses the record's semicolon-joined statute field into individual
// canonical citations, preserving stored order.
func (c CaseRecord) Statutes() []string {
	return ParseStatuteField(c.Pasal)
}

// ─────────────────────────────────────────────────────────────────────────────
// Identifier assignment and deduplication
// ─────────────────────────────────────────────────────────────────────────────

// A case number shorter than this is considered too weak to identify a case,
// and the source filename stem is used instead.
const minCaseNumberIDLength = 10

var caseIDSanitizer = strings.NewReplacer("/", "_", ".", "_")

// CaseIDFor derives the unique identifier for a record.  The extracted case
// number wins when it is long enough to be trusted; path separators and dots
// are flattened so the identifier stays safe as a filename or key.  Otherwise
// the source filename stem is used.
func CaseIDFor(noPerkara, fileName string) string {
	if len(noPerkara) > minCaseNumberIDLength {
		return strings.TrimSpace(caseIDSanitizer.Replace(noPerkara))
	}
	return FileStem(fileName)
}

// FileStem returns the base name of a path without its extension.
func FileStem(fileName string) string {
	base := filepath.Base(fileName)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Deduplicate removes records whose case_id was already seen, keeping the
// first occurrence.  The dropped records are returned so the caller can log
// each one; the survivors keep their original relative order.
func Deduplicate(records []CaseRecord) (unique []CaseRecord, dropped []CaseRecord) {
	seen := make(map[string]bool, len(records))
	unique = make([]CaseRecord, 0, len(records))
	for _, rec := range records {
		if seen[rec.CaseID] {
			dropped = append(dropped, rec)
			continue
		}
		seen[rec.CaseID] = true
		unique = append(unique, rec)
	}
	return unique, dropped
}
