package legalcase

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompositeText_PrefersFactSummary(t *testing.T) {
	rec := CaseRecord{
		RingkasanFakta: "Terdakwa mengedarkan narkotika golongan satu di wilayah Jakarta Barat",
		JenisPerkara:   "Narkotika",
		Pasal:          "Pasal 114 Ayat (2)",
	}

	text, fieldsUsed, ok := rec.CompositeText()
	require.True(t, ok)
	assert.Equal(t, rec.RingkasanFakta, text)
	assert.Equal(t, "ringkasan_fakta", fieldsUsed)
}

func TestCompositeText_FallsBackToKeyFields(t *testing.T) {
	rec := CaseRecord{
		RingkasanFakta: "---",
		JenisPerkara:   "Tindak Pidana Korupsi",
		Pasal:          "Pasal 2 Ayat (1); Pasal 3",
	}

	text, fieldsUsed, ok := rec.CompositeText()
	require.True(t, ok)
	assert.Equal(t, "Tindak Pidana Korupsi. Pasal 2 Ayat (1); Pasal 3", text)
	assert.Equal(t, "jenis_perkara, pasal, status_hukuman", fieldsUsed)
}

func TestCompositeText_ClipsLongStatuteList(t *testing.T) {
	rec := CaseRecord{
		Pasal: strings.TrimSpace(strings.Repeat("Pasal 2 Ayat (1); ", 20)),
	}

	text, fieldsUsed, ok := rec.CompositeText()
	require.True(t, ok)
	assert.Len(t, []rune(text), 203)
	assert.True(t, strings.HasSuffix(text, "..."))
	assert.Equal(t, "jenis_perkara, pasal, status_hukuman", fieldsUsed)
}

func TestCompositeText_SkipsPlaceholdersAndRepeats(t *testing.T) {
	rec := CaseRecord{
		RingkasanFakta: "------------",
		JenisPerkara:   "N/A",
		NoPerkara:      "123/Pid.B/2021/PN.Jkt",
		Tanggal:        "2021-03-15",
	}

	text, fieldsUsed, ok := rec.CompositeText()
	require.True(t, ok)
	assert.Equal(t, "123/Pid.B/2021/PN.Jkt. 2021-03-15", text)
	assert.Equal(t, "no_perkara, jenis_perkara, tanggal", fieldsUsed)
}

func TestCompositeText_NoUsableContent(t *testing.T) {
	_, _, ok := CaseRecord{JenisPerkara: "Perdata"}.CompositeText()
	assert.False(t, ok, "short single field must not produce query text")

	_, _, ok = CaseRecord{}.CompositeText()
	assert.False(t, ok)
}

func TestQueryIDAt(t *testing.T) {
	assert.Equal(t, "query_0000", QueryIDAt(0))
	assert.Equal(t, "query_0042", QueryIDAt(42))
	assert.Equal(t, "query_1234", QueryIDAt(1234))
}

func TestQueryRecordValidate(t *testing.T) {
	q := QueryRecord{QueryID: "query_0001", Text: "Tindak Pidana Korupsi. Pasal 2"}
	require.NoError(t, q.Validate())

	assert.Error(t, QueryRecord{Text: "x"}.Validate())
	assert.Error(t, QueryRecord{QueryID: "q"}.Validate())
}

func TestQueryRecordRelevantSet(t *testing.T) {
	explicit := QueryRecord{CaseID: "case-a", RelevantCaseIDs: []string{"case-b", "case-c"}}
	assert.Equal(t, []string{"case-b", "case-c"}, explicit.RelevantSet())

	generated := QueryRecord{CaseID: "case-a"}
	assert.Equal(t, []string{"case-a"}, generated.RelevantSet())

	external := QueryRecord{QueryID: "query_0001"}
	assert.Nil(t, external.RelevantSet())
}
