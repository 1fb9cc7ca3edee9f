package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/CaseLaw-Intelligence/internal/application/evaluation"
	"github.com/turtacn/CaseLaw-Intelligence/internal/application/ingestion"
	"github.com/turtacn/CaseLaw-Intelligence/internal/application/prediction"
	"github.com/turtacn/CaseLaw-Intelligence/internal/application/querygen"
	appretrieval "github.com/turtacn/CaseLaw-Intelligence/internal/application/retrieval"
	"github.com/turtacn/CaseLaw-Intelligence/internal/config"
	"github.com/turtacn/CaseLaw-Intelligence/internal/domain/legalcase"
	"github.com/turtacn/CaseLaw-Intelligence/internal/domain/retrieval"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/storage/artifact"
	"github.com/turtacn/CaseLaw-Intelligence/internal/intelligence/embedding"
	"github.com/turtacn/CaseLaw-Intelligence/internal/intelligence/extractor"
	"github.com/turtacn/CaseLaw-Intelligence/internal/intelligence/similarity"
	"github.com/turtacn/CaseLaw-Intelligence/internal/testutil"
)

// TestFullPipeline drives every offline stage back to back over a small
// corpus of synthetic rulings: extraction, query generation, retrieval by
// all three methods, statute prediction, and metric evaluation. Each stage
// reads the artifact the previous one wrote, exactly as the CLI chains them.
func TestFullPipeline(t *testing.T) {
	ctx := context.Background()
	log := logging.NewNopLogger()

	dir := t.TempDir()
	rawDir := filepath.Join(dir, "raw")
	require.NoError(t, os.MkdirAll(rawDir, 0o755))

	rulings := map[string]string{
		"putusan_narkotika_1.txt": testutil.NarcoticsRuling("123/Pid.Sus/2020/PN Jkt.Pst"),
		"putusan_korupsi_1.txt":   testutil.CorruptionRuling("45/Pid.Sus-TPK/2021/PN Sby"),
		"putusan_pencurian_1.txt": testutil.RulingText(
			"77/Pid.B/2022/PN Bdg",
			"Asep Sunandar",
			"Bahwa terdakwa pada hari Kamis mengambil satu unit sepeda motor milik korban yang terparkir "+
				"di halaman rumah tanpa izin pemiliknya dengan maksud untuk dimiliki secara melawan hukum, "+
				"kemudian menjual sepeda motor tersebut kepada pihak ketiga di wilayah Bandung.",
			"Pasal 362 KUHP",
		),
	}
	for name, text := range rulings {
		require.NoError(t, os.WriteFile(filepath.Join(rawDir, name), []byte(text), 0o644))
	}

	casesPath := filepath.Join(dir, "case_base.json")
	queriesPath := filepath.Join(dir, "queries.json")
	resultsPath := filepath.Join(dir, "retrieval_results.json")
	pipelineCfg := config.PipelineConfig{
		CaseBasePath:         casesPath,
		QuerySetPath:         queriesPath,
		RetrievalResultsPath: resultsPath,
		ResultsDir:           filepath.Join(dir, "results"),
	}

	// Stage 1: extraction.
	source, err := ingestion.NewDirSource(rawDir)
	require.NoError(t, err)
	ingestSvc := ingestion.NewService(extractor.New(extractor.DefaultConfig(), log), 2, log)
	ingestSum, err := ingestSvc.Run(ctx, source, casesPath)
	require.NoError(t, err)
	assert.Equal(t, 3, ingestSum.Documents)
	assert.Equal(t, 3, ingestSum.Processed)
	assert.Zero(t, ingestSum.Failed)

	cases, err := artifact.LoadJSONArray[legalcase.CaseRecord](casesPath)
	require.NoError(t, err)
	require.Len(t, cases, 3)
	byFile := make(map[string]legalcase.CaseRecord, len(cases))
	for _, c := range cases {
		byFile[c.FileName] = c
	}
	narkotika := byFile["putusan_narkotika_1.txt"]
	assert.Equal(t, "123/Pid.Sus/2020/PN Jkt.Pst", narkotika.NoPerkara)
	assert.Contains(t, narkotika.Pasal, "112")

	// Stage 2: query generation.
	querySum, err := querygen.NewService(log).Run(ctx, casesPath, queriesPath)
	require.NoError(t, err)
	assert.Equal(t, 3, querySum.Generated)
	assert.Zero(t, querySum.Skipped)

	queries, err := artifact.LoadJSONArray[legalcase.QueryRecord](queriesPath)
	require.NoError(t, err)
	require.Len(t, queries, 3)
	queryCase := make(map[string]string, len(queries))
	for _, q := range queries {
		require.NotEmpty(t, q.Text)
		queryCase[q.QueryID] = q.CaseID
	}

	// Stage 3: retrieval, all methods.
	retSvc := appretrieval.NewService(
		appretrieval.Config{TopK: 3, TFIDFWeight: 0.5, EmbeddingWeight: 0.5},
		embedding.NewDeterministicEmbedder(64),
		similarity.NewMemoryDenseIndex(),
		log,
	)
	retSum, err := retSvc.Run(ctx, casesPath, queriesPath, resultsPath, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, retSum.Queries)
	assert.Len(t, retSum.Methods, 3)
	assert.Empty(t, retSum.Degraded)

	results, err := artifact.LoadJSONArray[retrieval.QueryResult](resultsPath)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, res := range results {
		// A query built from a case's own fields must rank that case first.
		tfidf := res.Results[retrieval.MethodTFIDF].Ranked()
		require.NotEmpty(t, tfidf, "query %s has no tfidf hits", res.QueryID)
		assert.Equal(t, queryCase[res.QueryID], tfidf[0].CaseID)
	}

	// Stage 4: statute prediction.
	predSvc := prediction.NewService(prediction.PolicyFromConfig(config.PredictionConfig{Policy: "topn", TopN: 10}), log)
	predSum, err := predSvc.Run(ctx, casesPath, resultsPath, pipelineCfg)
	require.NoError(t, err)
	assert.Equal(t, 3, predSum.Queries)
	for _, method := range []string{"tfidf", "embedding", "hybrid"} {
		path := pipelineCfg.PredictionsPath(method)
		header, rows, err := artifact.LoadCSV(path)
		require.NoError(t, err, "missing predictions for %s", method)
		assert.NotEmpty(t, header)
		assert.Len(t, rows, 3)
	}

	// Stage 5: evaluation.
	evalSvc := evaluation.NewService(config.EvaluationConfig{Cutoff: 3, MatchRatio: 0.24}, log)
	evalSum, err := evalSvc.Run(ctx, casesPath, queriesPath, resultsPath, pipelineCfg)
	require.NoError(t, err)
	assert.Equal(t, 3, evalSum.Queries)

	header, rows, err := artifact.LoadCSV(pipelineCfg.RetrievalMetricsPath())
	require.NoError(t, err)
	tfidfCol := -1
	for i, col := range header {
		if col == "tfidf" {
			tfidfCol = i
		}
	}
	require.GreaterOrEqual(t, tfidfCol, 1, "retrieval metrics header lacks a tfidf column: %v", header)

	// Every query's sole relevant case sits at rank one, so MRR is perfect.
	mrr := ""
	for _, row := range rows {
		if len(row) > tfidfCol && row[0] == "MRR" {
			mrr = row[tfidfCol]
		}
	}
	assert.Equal(t, "1.0000", mrr)

	_, predRows, err := artifact.LoadCSV(pipelineCfg.PredictionMetricsPath())
	require.NoError(t, err)
	assert.NotEmpty(t, predRows)
}
