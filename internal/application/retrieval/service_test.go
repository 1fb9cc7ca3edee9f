package retrieval

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/CaseLaw-Intelligence/internal/domain/legalcase"
	"github.com/turtacn/CaseLaw-Intelligence/internal/domain/retrieval"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/storage/artifact"
	"github.com/turtacn/CaseLaw-Intelligence/internal/intelligence/embedding"
	"github.com/turtacn/CaseLaw-Intelligence/internal/intelligence/similarity"
	pkgerrors "github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
)

type failingEmbedder struct{}

func (failingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, pkgerrors.New(pkgerrors.ErrCodeServiceUnavailable, "embedding service down")
}

func fixtureCase(id, summary string) legalcase.CaseRecord {
	return legalcase.CaseRecord{
		CaseID:         id,
		FileName:       id + ".txt",
		RingkasanFakta: summary,
	}
}

func writeFixtures(t *testing.T) (casesPath, queriesPath, outputPath string) {
	t.Helper()
	dir := t.TempDir()
	casesPath = filepath.Join(dir, "cases.json")
	queriesPath = filepath.Join(dir, "queries.json")
	outputPath = filepath.Join(dir, "retrieval_results.json")

	cases := []legalcase.CaseRecord{
		fixtureCase("case-narkotika", "Terdakwa menguasai narkotika golongan satu jenis sabu seberat nol koma empat gram untuk dipakai sendiri."),
		fixtureCase("case-korupsi", "Terdakwa selaku bendahara memalsukan bukti pertanggungjawaban anggaran sehingga merugikan keuangan negara."),
		fixtureCase("case-pencurian", "Terdakwa mengambil sepeda motor milik korban dari halaman rumah tanpa izin pada malam hari."),
	}
	queries := []legalcase.QueryRecord{
		{
			QueryID: "query_0000",
			Text:    "Terdakwa menguasai narkotika golongan satu jenis sabu untuk dipakai sendiri.",
			CaseID:  "case-narkotika",
		},
	}
	require.NoError(t, artifact.SaveJSON(casesPath, cases))
	require.NoError(t, artifact.SaveJSON(queriesPath, queries))
	return casesPath, queriesPath, outputPath
}

func newDenseService() *Service {
	embedder := embedding.NewDeterministicEmbedder(64)
	return NewService(DefaultConfig(), embedder, similarity.NewMemoryDenseIndex(), nil)
}

func TestRunTFIDFRanksMatchingCaseFirst(t *testing.T) {
	casesPath, queriesPath, outputPath := writeFixtures(t)
	svc := NewService(DefaultConfig(), nil, nil, nil)

	summary, err := svc.Run(context.Background(), casesPath, queriesPath, outputPath,
		[]retrieval.Method{retrieval.MethodTFIDF})
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Cases)
	assert.Equal(t, 1, summary.Queries)

	results, err := artifact.LoadJSONArray[retrieval.QueryResult](outputPath)
	require.NoError(t, err)
	require.Len(t, results, 1)

	mr, ok := results[0].Results[retrieval.MethodTFIDF]
	require.True(t, ok)
	require.NotEmpty(t, mr.CaseIDs)
	assert.Equal(t, "case-narkotika", mr.CaseIDs[0])
	for _, score := range mr.Scores {
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	}
}

func TestRunAllMethods(t *testing.T) {
	casesPath, queriesPath, outputPath := writeFixtures(t)
	svc := newDenseService()

	summary, err := svc.Run(context.Background(), casesPath, queriesPath, outputPath, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"tfidf", "embedding", "hybrid"}, summary.Methods)
	assert.Empty(t, summary.Degraded)

	results, err := artifact.LoadJSONArray[retrieval.QueryResult](outputPath)
	require.NoError(t, err)
	require.Len(t, results, 1)

	for _, method := range retrieval.Methods() {
		mr, ok := results[0].Results[method]
		require.True(t, ok, "missing %s", method)
		assert.NotEmpty(t, mr.CaseIDs, "empty %s", method)
		assert.LessOrEqual(t, len(mr.CaseIDs), 10)
	}
}

func TestRunEmbedderFailureDegradesDenseMethods(t *testing.T) {
	casesPath, queriesPath, outputPath := writeFixtures(t)
	svc := NewService(DefaultConfig(), failingEmbedder{}, similarity.NewMemoryDenseIndex(), nil)

	summary, err := svc.Run(context.Background(), casesPath, queriesPath, outputPath, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"embedding", "hybrid"}, summary.Degraded)

	results, err := artifact.LoadJSONArray[retrieval.QueryResult](outputPath)
	require.NoError(t, err)

	assert.NotEmpty(t, results[0].Results[retrieval.MethodTFIDF].CaseIDs)
	assert.Empty(t, results[0].Results[retrieval.MethodEmbedding].CaseIDs)
	// Hybrid degrades to its lexical half.
	assert.NotEmpty(t, results[0].Results[retrieval.MethodHybrid].CaseIDs)
}

func TestRunUnknownMethodRejected(t *testing.T) {
	casesPath, queriesPath, outputPath := writeFixtures(t)
	svc := NewService(DefaultConfig(), nil, nil, nil)

	_, err := svc.Run(context.Background(), casesPath, queriesPath, outputPath,
		[]retrieval.Method{retrieval.Method("bm25")})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeMethodUnsupported))
}

func TestRunEmptyQuerySetSkipsWrite(t *testing.T) {
	dir := t.TempDir()
	casesPath := filepath.Join(dir, "cases.json")
	queriesPath := filepath.Join(dir, "queries.json")
	outputPath := filepath.Join(dir, "retrieval_results.json")
	require.NoError(t, artifact.SaveJSON(casesPath, []legalcase.CaseRecord{fixtureCase("case-a", "Ringkasan fakta yang cukup panjang untuk dipakai.")}))
	require.NoError(t, artifact.SaveJSON(queriesPath, []legalcase.QueryRecord{}))

	svc := NewService(DefaultConfig(), nil, nil, nil)
	_, err := svc.Run(context.Background(), casesPath, queriesPath, outputPath, nil)
	require.NoError(t, err)

	_, statErr := os.Stat(outputPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunTopKBound(t *testing.T) {
	dir := t.TempDir()
	casesPath := filepath.Join(dir, "cases.json")
	queriesPath := filepath.Join(dir, "queries.json")
	outputPath := filepath.Join(dir, "retrieval_results.json")

	var cases []legalcase.CaseRecord
	for i := 0; i < 15; i++ {
		cases = append(cases, fixtureCase(
			legalcase.QueryIDAt(i),
			"Terdakwa melakukan perbuatan melawan hukum dalam perkara nomor "+legalcase.QueryIDAt(i)+" di wilayah hukum yang sama."))
	}
	queries := []legalcase.QueryRecord{{QueryID: "query_0000", Text: "perbuatan melawan hukum di wilayah hukum"}}
	require.NoError(t, artifact.SaveJSON(casesPath, cases))
	require.NoError(t, artifact.SaveJSON(queriesPath, queries))

	cfg := DefaultConfig()
	cfg.TopK = 3
	svc := NewService(cfg, nil, nil, nil)
	_, err := svc.Run(context.Background(), casesPath, queriesPath, outputPath,
		[]retrieval.Method{retrieval.MethodTFIDF})
	require.NoError(t, err)

	results, err := artifact.LoadJSONArray[retrieval.QueryResult](outputPath)
	require.NoError(t, err)
	assert.Len(t, results[0].Results[retrieval.MethodTFIDF].CaseIDs, 3)
}
