package legalcase

import (
	"reflect"
	"testing"

	"github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
)

func TestCaseIDFor(t *testing.T) {
	cases := []struct {
		name      string
		noPerkara string
		fileName  string
		want      string
	}{
		{
			name:      "long case number is sanitized",
			noPerkara: "123/Pid.B/2021/PN.Jkt",
			fileName:  "putusan_123.txt",
			want:      "123_Pid_B_2021_PN_Jkt",
		},
		{
			name:      "short case number falls back to file stem",
			noPerkara: "99/2021",
			fileName:  "putusan_99.txt",
			want:      "putusan_99",
		},
		{
			name:      "boundary length still falls back",
			noPerkara: "1234567890",
			fileName:  "case_010.txt",
			want:      "case_010",
		},
		{
			name:      "missing case number uses stem of full path",
			noPerkara: "",
			fileName:  "data/raw/case_001.txt",
			want:      "case_001",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CaseIDFor(tc.noPerkara, tc.fileName); got != tc.want {
				t.Errorf("CaseIDFor(%q, %q) = %q, want %q", tc.noPerkara, tc.fileName, got, tc.want)
			}
		})
	}
}

func TestDeduplicate_KeepsFirstOccurrence(t *testing.T) {
	records := []CaseRecord{
		{CaseID: "123_PID_2021", FileName: "a.txt"},
		{CaseID: "456_PID_2022", FileName: "b.txt"},
		{CaseID: "123_PID_2021", FileName: "c.txt"},
	}

	unique, dropped := Deduplicate(records)

	if len(unique) != 2 {
		t.Fatalf("expected 2 unique records, got %d", len(unique))
	}
	if unique[0].FileName != "a.txt" || unique[1].FileName != "b.txt" {
		t.Errorf("unexpected survivors: %+v", unique)
	}
	if len(dropped) != 1 || dropped[0].FileName != "c.txt" {
		t.Errorf("expected the later duplicate to be dropped, got %+v", dropped)
	}
}

func TestDeduplicate_NoDuplicates(t *testing.T) {
	records := []CaseRecord{
		{CaseID: "a"},
		{CaseID: "b"},
	}

	unique, dropped := Deduplicate(records)
	if len(unique) != 2 || dropped != nil {
		t.Errorf("expected all records kept, got unique=%d dropped=%d", len(unique), len(dropped))
	}
}

func TestFilledFields(t *testing.T) {
	rec := CaseRecord{
		NoPerkara:    "123/Pid.B/2021/PN.Jkt",
		JenisPerkara: "N/A",
		Pasal:        "Pasal 2 Ayat (1)",
		Nama:         "   ",
	}

	got := rec.FilledFields()
	want := []string{FieldNoPerkara, FieldPasal}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestFieldValue_UnknownField(t *testing.T) {
	var rec CaseRecord
	if _, ok := rec.FieldValue("case_id"); ok {
		t.Error("case_id is not a metadata field and must not resolve")
	}
}

func TestCaseRecordStatutes(t *testing.T) {
	rec := CaseRecord{Pasal: "Pasal 10; Pasal 11 Huruf B"}

	got := rec.Statutes()
	want := []string{"Pasal 10", "Pasal 11 Huruf B"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestCaseRecordValidate(t *testing.T) {
	rec := CaseRecord{CaseID: "123_PID_2021", FileName: "a.txt"}
	if err := rec.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := (CaseRecord{FileName: "a.txt"}).Validate(); !errors.IsValidation(err) {
		t.Errorf("expected validation error for missing case_id, got %v", err)
	}
	if err := (CaseRecord{CaseID: "x"}).Validate(); !errors.IsValidation(err) {
		t.Errorf("expected validation error for missing file_name, got %v", err)
	}
}
