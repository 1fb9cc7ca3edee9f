package prediction

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/CaseLaw-Intelligence/internal/config"
	"github.com/turtacn/CaseLaw-Intelligence/internal/domain/legalcase"
	"github.com/turtacn/CaseLaw-Intelligence/internal/domain/retrieval"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/storage/artifact"
)

func fixtureCase(id, pasal string) legalcase.CaseRecord {
	return legalcase.CaseRecord{CaseID: id, Pasal: pasal}
}

func writeArtifacts(t *testing.T, cases []legalcase.CaseRecord, results []retrieval.QueryResult) (casesPath, resultsPath string, pipeline config.PipelineConfig) {
	t.Helper()
	dir := t.TempDir()
	casesPath = filepath.Join(dir, "cases.json")
	resultsPath = filepath.Join(dir, "retrieval_results.json")
	require.NoError(t, artifact.SaveJSON(casesPath, cases))
	require.NoError(t, artifact.SaveJSON(resultsPath, results))
	return casesPath, resultsPath, config.PipelineConfig{ResultsDir: dir}
}

func TestRunWritesPredictionTablePerMethod(t *testing.T) {
	cases := []legalcase.CaseRecord{
		fixtureCase("case-a", "Pasal 112 Ayat (1) UU Nomor 35 Tahun 2009"),
		fixtureCase("case-b", "Pasal 112 Ayat (1) UU Nomor 35 Tahun 2009; Pasal 127"),
		fixtureCase("case-c", "Pasal 362 KUHP"),
	}
	results := []retrieval.QueryResult{
		{
			QueryID: "query_0000",
			Results: map[retrieval.Method]retrieval.MethodResult{
				retrieval.MethodTFIDF: {
					CaseIDs: []string{"case-a", "case-b", "case-c"},
					Scores:  []float64{0.9, 0.8, 0.1},
				},
				retrieval.MethodHybrid: {
					CaseIDs: []string{"case-c"},
					Scores:  []float64{0.7},
				},
			},
		},
	}
	casesPath, resultsPath, pipeline := writeArtifacts(t, cases, results)

	svc := NewService(retrieval.DefaultVotePolicy(), logging.NewNopLogger())
	summary, err := svc.Run(context.Background(), casesPath, resultsPath, pipeline)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Queries)
	assert.Equal(t, []string{"tfidf", "hybrid"}, summary.Methods)

	header, rows, err := artifact.LoadCSV(pipeline.PredictionsPath("tfidf"))
	require.NoError(t, err)
	// External consumers parse the tables by column name.
	assert.Equal(t, []string{"query_id", "predicted_solution", "top_retrieved_case_ids_for_method"}, header)
	require.Len(t, rows, 1)
	assert.Equal(t, "query_0000", rows[0][0])
	// Pasal 112 accumulates 0.9 + 0.8 and outranks the others.
	assert.Contains(t, rows[0][1], "Pasal 112 Ayat (1)")
	assert.Equal(t, "case-a, case-b, case-c", rows[0][2])

	_, hybridRows, err := artifact.LoadCSV(pipeline.PredictionsPath("hybrid"))
	require.NoError(t, err)
	assert.Contains(t, hybridRows[0][1], "Pasal 362")
}

func TestRunTopNPolicyClipsPrediction(t *testing.T) {
	cases := []legalcase.CaseRecord{
		fixtureCase("case-a", "Pasal 112; Pasal 127; Pasal 114"),
	}
	results := []retrieval.QueryResult{
		{
			QueryID: "query_0000",
			Results: map[retrieval.Method]retrieval.MethodResult{
				retrieval.MethodTFIDF: {CaseIDs: []string{"case-a"}, Scores: []float64{1.0}},
			},
		},
	}
	casesPath, resultsPath, pipeline := writeArtifacts(t, cases, results)

	svc := NewService(PolicyFromConfig(config.PredictionConfig{Policy: "topn", TopN: 1}), logging.NewNopLogger())
	_, err := svc.Run(context.Background(), casesPath, resultsPath, pipeline)
	require.NoError(t, err)

	_, rows, err := artifact.LoadCSV(pipeline.PredictionsPath("tfidf"))
	require.NoError(t, err)
	assert.Equal(t, "Pasal 112", rows[0][1])
}

func TestRunNoCitingNeighborsPredictsNoAnswer(t *testing.T) {
	cases := []legalcase.CaseRecord{fixtureCase("case-a", "")}
	results := []retrieval.QueryResult{
		{
			QueryID: "query_0000",
			Results: map[retrieval.Method]retrieval.MethodResult{
				retrieval.MethodTFIDF: {CaseIDs: []string{"case-a", "case-missing"}, Scores: []float64{0.5, 0.4}},
			},
		},
	}
	casesPath, resultsPath, pipeline := writeArtifacts(t, cases, results)

	svc := NewService(retrieval.DefaultVotePolicy(), logging.NewNopLogger())
	summary, err := svc.Run(context.Background(), casesPath, resultsPath, pipeline)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.NoAnswer["tfidf"])

	_, rows, err := artifact.LoadCSV(pipeline.PredictionsPath("tfidf"))
	require.NoError(t, err)
	assert.Equal(t, retrieval.NoPrediction, rows[0][1])
	// Unknown retrieved ids stay visible in the provenance column.
	assert.Equal(t, "case-a, case-missing", rows[0][2])
}

func TestRunEmptyResultsSkipsWrite(t *testing.T) {
	casesPath, resultsPath, pipeline := writeArtifacts(t, nil, []retrieval.QueryResult{})

	svc := NewService(retrieval.DefaultVotePolicy(), logging.NewNopLogger())
	summary, err := svc.Run(context.Background(), casesPath, resultsPath, pipeline)
	require.NoError(t, err)
	assert.Empty(t, summary.Methods)
	assert.Empty(t, summary.Outputs)
}

func TestPolicyFromConfig(t *testing.T) {
	threshold := PolicyFromConfig(config.PredictionConfig{Policy: "threshold", Threshold: 0.3})
	assert.True(t, threshold.UseThreshold)
	assert.Equal(t, 0.3, threshold.Threshold)

	topn := PolicyFromConfig(config.PredictionConfig{Policy: "topn", TopN: 5})
	assert.False(t, topn.UseThreshold)
	assert.Equal(t, 5, topn.TopN)

	fallback := PolicyFromConfig(config.PredictionConfig{Policy: "weird"})
	assert.Equal(t, retrieval.DefaultVotePolicy(), fallback)
}
