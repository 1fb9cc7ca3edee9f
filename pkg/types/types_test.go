package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeOmitsEmptyFields(t *testing.T) {
	data, err := json.Marshal(Envelope[[]Case]{Data: []Case{{CaseID: "case-a"}}})
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"error"`)
	assert.NotContains(t, string(data), `"meta"`)

	data, err = json.Marshal(Envelope[struct{}]{Error: &ErrorBody{Code: "COMMON_002", Message: "bad request"}})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"code":"COMMON_002"`)
	assert.NotContains(t, string(data), `"detail"`)
}

func TestEnvelopeRoundTrip(t *testing.T) {
	in := Envelope[[]SearchHit]{
		Data: []SearchHit{{CaseID: "case-a", Score: 1.5}},
		Meta: &Page{Limit: 10, Offset: 0, Total: 1},
	}
	raw, err := json.Marshal(in)
	require.NoError(t, err)

	var out Envelope[[]SearchHit]
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in.Data, out.Data)
	assert.Equal(t, in.Meta, out.Meta)
}

func TestHealthReportHealthy(t *testing.T) {
	assert.True(t, HealthReport{Status: HealthOK}.Healthy())
	assert.False(t, HealthReport{Status: HealthDown}.Healthy())
}
