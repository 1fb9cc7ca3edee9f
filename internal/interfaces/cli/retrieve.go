package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	appretrieval "github.com/turtacn/CaseLaw-Intelligence/internal/application/retrieval"
	"github.com/turtacn/CaseLaw-Intelligence/internal/domain/retrieval"
)

func newRetrieveCmd() *cobra.Command {
	var cases string
	var queries string
	var output string
	var topK int
	var methodNames []string

	cmd := &cobra.Command{
		Use:   "retrieve",
		Short: "Rank similar cases per query for each retrieval method",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rc, err := getRunContext(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			pipeline := rc.Config.Pipeline

			if cases == "" {
				cases = pipeline.CaseBasePath
			}
			if queries == "" {
				queries = pipeline.QuerySetPath
			}
			if output == "" {
				output = pipeline.RetrievalResultsPath
			}

			methods := make([]retrieval.Method, 0, len(methodNames))
			for _, name := range methodNames {
				methods = append(methods, retrieval.Method(strings.TrimSpace(name)))
			}

			embedder, err := buildEmbedder(ctx, rc.Config, rc.Logger)
			if err != nil {
				return err
			}
			denseIndex, err := buildDenseIndex(ctx, rc.Config, rc.Logger)
			if err != nil {
				return err
			}

			cfg := appretrieval.Config{
				TopK:            rc.Config.Retrieval.TopK,
				MaxFeatures:     rc.Config.Retrieval.MaxFeatures,
				TFIDFWeight:     rc.Config.Retrieval.HybridTFIDFWeight,
				EmbeddingWeight: rc.Config.Retrieval.HybridEmbeddingWeight,
			}
			if topK > 0 {
				cfg.TopK = topK
			}

			svc := appretrieval.NewService(cfg, embedder, denseIndex, rc.Logger)
			summary, err := svc.Run(ctx, cases, queries, output, methods)
			if err != nil {
				return err
			}
			return printResult(cmd, rc, retrieveReport(*summary))
		},
	}

	cmd.Flags().StringVar(&cases, "cases", "", "case base path (default: pipeline.case_base_path)")
	cmd.Flags().StringVar(&queries, "queries", "", "query set path (default: pipeline.query_set_path)")
	cmd.Flags().StringVarP(&output, "output", "O", "", "results output path (default: pipeline.retrieval_results_path)")
	cmd.Flags().IntVar(&topK, "top-k", 0, "hits per query (default: retrieval.top_k)")
	cmd.Flags().StringSliceVar(&methodNames, "methods", nil, "retrieval methods (default: tfidf,embedding,hybrid)")
	return cmd
}

type retrieveReport appretrieval.Summary

func (r retrieveReport) String() string {
	s := fmt.Sprintf("Ranked %d queries over %d cases with methods %s\nResults written to %s in %s",
		r.Queries, r.Cases, strings.Join(r.Methods, ", "), r.Output, r.Duration.Round(timeUnit))
	if len(r.Degraded) > 0 {
		s += fmt.Sprintf("\nDegraded methods (embedding unavailable): %s", strings.Join(r.Degraded, ", "))
	}
	return s
}
