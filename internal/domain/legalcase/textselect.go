package legalcase

import (
	"strings"
)

// ─────────────────────────────────────────────────────────────────────────────
// Query text selection
// ─────────────────────────────────────────────────────────────────────────────

// fieldCombination pairs an ordered field list with the provenance label
// recorded on queries generated from it.
type fieldCombination struct {
	fields []string
	label  string
}

// queryFieldCombinations is the priority order for building query text out of
// a case record.  The fact summary alone is the strongest signal; the later
// combinations degrade gracefully down to bare docket metadata.  Within one
// combination every usable field contributes, and the first combination that
// contributes anything wins.
var queryFieldCombinations = []fieldCombination{
	{
		fields: []string{FieldRingkasanFakta},
		label:  "ringkasan_fakta",
	},
	{
		fields: []string{FieldJenisPerkara, FieldPasal, FieldStatusHukuman},
		label:  "jenis_perkara, pasal, status_hukuman",
	},
	{
		fields: []string{FieldJenisPerkara, FieldPasal},
		label:  "jenis_perkara, pasal",
	},
	{
		fields: []string{FieldNoPerkara, FieldJenisPerkara, FieldTanggal},
		label:  "no_perkara, jenis_perkara, tanggal",
	},
}

// placeholderValues are separator artifacts and null spellings that survive
// extraction as literal field values.  They never contribute to query text.
var placeholderValues = map[string]bool{
	"===":       true,
	"---":       true,
	"...":       true,
	"N/A":       true,
	"null":      true,
	"undefined": true,
}

const (
	// A usable field value must have at least this many characters and more
	// than one distinct character.
	minQueryFieldLength = 10

	// Long statute lists and verdicts are clipped so a single field cannot
	// dominate the query text.
	maxStatuteQueryLength = 200
	maxVerdictQueryLength = 300
)

// CompositeText builds retrieval query text from the highest-priority field
// combination that yields usable content.  It returns the joined text, the
// combination's provenance label, and false when no combination produced
// anything.
func (c CaseRecord) CompositeText() (text, fieldsUsed string, ok bool) {
	for _, combo := range queryFieldCombinations {
		var parts []string

		for _, name := range combo.fields {
			value, _ := c.FieldValue(name)
			value = strings.TrimSpace(value)
			if !usableQueryValue(value) {
				continue
			}

			switch name {
			case FieldPasal:
				value = clipRunes(value, maxStatuteQueryLength)
			case FieldStatusHukuman:
				value = clipRunes(value, maxVerdictQueryLength)
			}
			parts = append(parts, value)
		}

		if len(parts) > 0 {
			return strings.Join(parts, ". "), combo.label, true
		}
	}
	return "", "", false
}

// usableQueryValue reports whether a field value carries enough real content
// to appear in query text: non-placeholder, long enough, and not a single
// repeated character.
func usableQueryValue(v string) bool {
	if v == "" || placeholderValues[v] {
		return false
	}

	distinct := make(map[rune]struct{}, 2)
	length := 0
	for _, r := range v {
		length++
		if len(distinct) < 2 {
			distinct[r] = struct{}{}
		}
	}
	return length >= minQueryFieldLength && len(distinct) > 1
}

// clipRunes truncates v to at most max runes, marking the cut with an
// ellipsis.
func clipRunes(v string, max int) string {
	runes := []rune(v)
	if len(runes) <= max {
		return v
	}
	return string(runes[:max]) + "..."
}
