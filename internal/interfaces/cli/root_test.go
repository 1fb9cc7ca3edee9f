package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appretrieval "github.com/turtacn/CaseLaw-Intelligence/internal/application/retrieval"
	"github.com/turtacn/CaseLaw-Intelligence/internal/config"
	"github.com/turtacn/CaseLaw-Intelligence/internal/domain/legalcase"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/storage/artifact"
	"github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
)

// runCLI executes the root command with the given args and captures stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// writeCaseBase saves a small case base artifact and returns its path.
func writeCaseBase(t *testing.T, dir string) string {
	t.Helper()
	cases := []legalcase.CaseRecord{
		{
			CaseID:       "case-narkotika",
			FileName:     "case-narkotika.txt",
			NoPerkara:    "101/Pid.Sus/2021/PN Dpk",
			JenisPerkara: "narkotika",
			Pasal:        "Pasal 112 Ayat (1); Pasal 127 Ayat (1) huruf a",
			RingkasanFakta: "Terdakwa tanpa hak menguasai narkotika golongan satu jenis sabu " +
				"seberat nol koma empat gram untuk dipakai sendiri tanpa izin pihak berwenang.",
		},
		{
			CaseID:       "case-korupsi",
			FileName:     "case-korupsi.txt",
			NoPerkara:    "44/Pid.Sus-TPK/2021/PN Jkt",
			JenisPerkara: "korupsi",
			Pasal:        "Pasal 2 Ayat (1); Pasal 3",
			RingkasanFakta: "Terdakwa selaku bendahara dinas menggunakan anggaran negara untuk " +
				"kepentingan pribadi dengan memalsukan bukti pertanggungjawaban korupsi.",
		},
		{
			CaseID:       "case-pencurian",
			FileName:     "case-pencurian.txt",
			NoPerkara:    "87/Pid.B/2021/PN Smg",
			JenisPerkara: "pencurian",
			Pasal:        "Pasal 362",
			RingkasanFakta: "Terdakwa mengambil sepeda motor milik korban dari halaman rumah " +
				"pada malam hari tanpa sepengetahuan pemiliknya untuk dijual kembali.",
		},
	}
	path := filepath.Join(dir, "cases.json")
	require.NoError(t, artifact.SaveJSON(path, cases))
	return path
}

func TestNewRootCommandWiring(t *testing.T) {
	root := NewRootCommand()

	want := []string{"ingest", "queries", "retrieve", "predict", "evaluate", "archive"}
	for _, name := range want {
		sub, _, err := root.Find([]string{name})
		require.NoError(t, err, "subcommand %s", name)
		assert.Equal(t, name, sub.Name())
	}

	for _, flag := range []string{"config", "log-level", "output"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), "persistent flag %s", flag)
	}

	archiveCmd, _, err := root.Find([]string{"archive"})
	require.NoError(t, err)
	assert.Len(t, archiveCmd.Commands(), 3)
}

func TestGetRunContextMissing(t *testing.T) {
	root := NewRootCommand()
	root.SetContext(context.Background())

	_, err := getRunContext(root)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestPrintResultFormats(t *testing.T) {
	newCmd := func() (*bytes.Buffer, func(rc *runContext, data interface{}) error) {
		root := NewRootCommand()
		var out bytes.Buffer
		root.SetOut(&out)
		return &out, func(rc *runContext, data interface{}) error {
			return printResult(root, rc, data)
		}
	}

	t.Run("json", func(t *testing.T) {
		out, print := newCmd()
		rc := &runContext{Output: "json"}
		require.NoError(t, print(rc, map[string]int{"queries": 3}))

		var decoded map[string]int
		require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
		assert.Equal(t, 3, decoded["queries"])
	})

	t.Run("text stringer", func(t *testing.T) {
		out, print := newCmd()
		report := queriesReport{Cases: 3, Generated: 3, Output: "queries.json", Duration: 1200 * time.Microsecond}
		require.NoError(t, print(&runContext{Output: "text"}, report))
		assert.Contains(t, out.String(), "Generated 3 queries from 3 cases")
		assert.Contains(t, out.String(), "1ms")
	})

	t.Run("plain string", func(t *testing.T) {
		out, print := newCmd()
		require.NoError(t, print(&runContext{Output: "text"}, "done"))
		assert.Equal(t, "done\n", out.String())
	})
}

func TestLoadConfigFallsBackToEnv(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Pipeline.CaseBasePath)
}

func TestLoadConfigExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "caselaw.yaml")
	yaml := "pipeline:\n  data_dir: " + dir + "\nretrieval:\n  top_k: 3\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Retrieval.TopK)
	assert.Equal(t, dir, cfg.Pipeline.DataDir)
}

func TestExtractorConfigOverrides(t *testing.T) {
	ec := extractorConfig(config.ExtractionConfig{SummaryMinLength: 100, SummaryMaxLength: 900})
	assert.Equal(t, 100, ec.SummaryMinLength)
	assert.Equal(t, 900, ec.SummaryMaxLength)

	defaults := extractorConfig(config.ExtractionConfig{})
	assert.Equal(t, defaults.HeaderRegion, ec.HeaderRegion)
	assert.Greater(t, defaults.HeaderRegion, 0)
}

func TestBuildEmbedderUnknownProvider(t *testing.T) {
	cfg, err := config.LoadFromEnv()
	require.NoError(t, err)
	cfg.Embedding.Provider = "quantum"

	_, err = buildEmbedder(context.Background(), cfg, logging.NewNopLogger())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))
}

func TestBuildDenseIndexUnknownBackend(t *testing.T) {
	cfg, err := config.LoadFromEnv()
	require.NoError(t, err)
	cfg.Retrieval.DenseBackend = "faiss"

	_, err = buildDenseIndex(context.Background(), cfg, logging.NewNopLogger())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))
}

func TestBuildSourceLocalDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "case.txt"), []byte("PUTUSAN"), 0o644))

	root := NewRootCommand()
	root.SetContext(context.Background())
	rc := &runContext{Config: &config.Config{}}

	source, err := buildSource(root, rc, dir)
	require.NoError(t, err)

	names, err := source.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"case.txt"}, names)
}

func TestPipelineEndToEnd(t *testing.T) {
	dir := t.TempDir()
	casesPath := writeCaseBase(t, dir)
	queriesPath := filepath.Join(dir, "queries.json")
	resultsPath := filepath.Join(dir, "retrieval_results.json")

	out, err := runCLI(t, "queries", "generate", "--cases", casesPath, "-O", queriesPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Generated 3 queries from 3 cases")
	require.FileExists(t, queriesPath)

	out, err = runCLI(t, "retrieve",
		"--cases", casesPath,
		"--queries", queriesPath,
		"-O", resultsPath,
		"--top-k", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Ranked 3 queries over 3 cases")
	assert.Contains(t, out, "tfidf, embedding, hybrid")
	require.FileExists(t, resultsPath)

	out, err = runCLI(t, "predict",
		"--cases", casesPath,
		"--retrieval", resultsPath,
		"--output-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Predicted statutes for 3 queries")
	for _, slug := range []string{"tfidf", "embedding", "hybrid"} {
		require.FileExists(t, filepath.Join(dir, fmt.Sprintf("predictions_%s.csv", slug)))
	}

	out, err = runCLI(t, "evaluate",
		"--cases", casesPath,
		"--queries", queriesPath,
		"--retrieval", resultsPath,
		"--output-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Evaluated 3 queries")
	require.FileExists(t, filepath.Join(dir, "retrieval_metrics.csv"))
	require.FileExists(t, filepath.Join(dir, "prediction_metrics.csv"))

	header, rows, err := artifact.LoadCSV(filepath.Join(dir, "retrieval_metrics.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Metric", header[0])
	assert.NotEmpty(t, rows)
}

func TestPipelineEndToEndJSONOutput(t *testing.T) {
	dir := t.TempDir()
	casesPath := writeCaseBase(t, dir)
	queriesPath := filepath.Join(dir, "queries.json")

	out, err := runCLI(t, "-o", "json", "queries", "generate", "--cases", casesPath, "-O", queriesPath)
	require.NoError(t, err)

	var summary struct {
		Cases     int    `json:"cases"`
		Generated int    `json:"generated"`
		Output    string `json:"output"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 3, summary.Cases)
	assert.Equal(t, 3, summary.Generated)
	assert.Equal(t, queriesPath, summary.Output)
}

func TestRetrieveRejectsUnknownMethod(t *testing.T) {
	dir := t.TempDir()
	casesPath := writeCaseBase(t, dir)
	queriesPath := filepath.Join(dir, "queries.json")

	_, err := runCLI(t, "queries", "generate", "--cases", casesPath, "-O", queriesPath)
	require.NoError(t, err)

	_, err = runCLI(t, "retrieve",
		"--cases", casesPath,
		"--queries", queriesPath,
		"-O", filepath.Join(dir, "results.json"),
		"--methods", "bm25")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMethodUnsupported))
}

func TestReportStringers(t *testing.T) {
	ingest := ingestReport{
		Documents: 4, Processed: 3, Failed: 1, Dropped: 0,
		Output: "cases.json", Duration: 42 * time.Millisecond,
		FieldFill: map[string]int{"pasal": 3, "nama": 2},
	}
	s := ingest.String()
	assert.Contains(t, s, "Ingested 3 of 4 documents (1 failed, 0 duplicates dropped)")
	assert.Contains(t, s, "pasal")
	assert.Contains(t, s, "3/3")

	retrieve := retrieveReport(appretrieval.Summary{
		Cases: 10, Queries: 5, Methods: []string{"tfidf", "hybrid"},
		Degraded: []string{"embedding"}, Output: "results.json",
	})
	s = retrieve.String()
	assert.Contains(t, s, "Ranked 5 queries over 10 cases")
	assert.Contains(t, s, "Degraded methods (embedding unavailable): embedding")

	sync := archiveReport{Cases: 7, Synced: 6, Failed: 1, Duration: time.Second}
	assert.Equal(t, "Synced 6 of 7 cases (1 failed) in 1s", sync.String())
}
