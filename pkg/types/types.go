// Package types holds the wire types shared between the HTTP API and the
// Go SDK client.  It deliberately has no dependency on internal packages so
// external consumers can import it.
package types

import "time"

// Envelope wraps every API response.  Exactly one of Data or Error is set.
type Envelope[T any] struct {
	Data  T          `json:"data,omitempty"`
	Error *ErrorBody `json:"error,omitempty"`
	Meta  *Page      `json:"meta,omitempty"`
}

// ErrorBody is the JSON rendering of an application error.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// Page describes the window of a list response and the unfiltered total.
type Page struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// Case is the archived court-ruling record served by the API.  Field names
// mirror the extraction schema of the ingestion pipeline.
type Case struct {
	CaseID     string `json:"case_id"`
	FileName   string `json:"file_name"`
	FileSize   int    `json:"file_size"`
	TextLength int    `json:"text_length"`

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

	ProcessedAt string `json:"processed_at"`
}

// SearchHit is one full-text search result.
type SearchHit struct {
	CaseID         string  `json:"case_id"`
	NoPerkara      string  `json:"no_perkara"`
	JenisPerkara   string  `json:"jenis_perkara"`
	RingkasanFakta string  `json:"ringkasan_fakta"`
	Score          float64 `json:"score"`
}

// RelatedStatute is a statute co-cited with the requested one.
type RelatedStatute struct {
	Ref         string `json:"ref"`
	SharedCases int64  `json:"shared_cases"`
}

// Component health states reported by the readiness endpoint.
const (
	HealthOK   = "ok"
	HealthDown = "down"
)

// HealthReport is the body of the liveness and readiness endpoints.
type HealthReport struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
	CheckedAt  time.Time         `json:"checked_at"`
}

// Healthy reports whether every component check passed.
func (r HealthReport) Healthy() bool {
	return r.Status == HealthOK
}
