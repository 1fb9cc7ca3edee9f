package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/CaseLaw-Intelligence/internal/application/evaluation"
)

func newEvaluateCmd() *cobra.Command {
	var cases string
	var queries string
	var results string
	var resultsDir string

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score retrieval rankings and statute predictions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rc, err := getRunContext(cmd)
			if err != nil {
				return err
			}
			pipeline := rc.Config.Pipeline

			if cases == "" {
				cases = pipeline.CaseBasePath
			}
			if queries == "" {
				queries = pipeline.QuerySetPath
			}
			if results == "" {
				results = pipeline.RetrievalResultsPath
			}
			if resultsDir != "" {
				pipeline.ResultsDir = resultsDir
			}

			svc := evaluation.NewService(rc.Config.Evaluation, rc.Logger)
			summary, err := svc.Run(cmd.Context(), cases, queries, results, pipeline)
			if err != nil {
				return err
			}
			return printResult(cmd, rc, evaluateReport(*summary))
		},
	}

	cmd.Flags().StringVar(&cases, "cases", "", "case base path (default: pipeline.case_base_path)")
	cmd.Flags().StringVar(&queries, "queries", "", "query set path (default: pipeline.query_set_path)")
	cmd.Flags().StringVar(&results, "retrieval", "", "retrieval results path (default: pipeline.retrieval_results_path)")
	cmd.Flags().StringVar(&resultsDir, "output-dir", "", "metrics and prediction table directory (default: pipeline.results_dir)")
	return cmd
}

type evaluateReport evaluation.Summary

func (r evaluateReport) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Evaluated %d queries in %s\n", r.Queries, r.Duration.Round(timeUnit))
	if r.RetrievalOutput != "" {
		fmt.Fprintf(&sb, "Retrieval metrics (%s) written to %s\n",
			strings.Join(r.RetrievalMethods, ", "), r.RetrievalOutput)
	}
	if r.PredictionOutput != "" {
		fmt.Fprintf(&sb, "Prediction metrics (%s) written to %s\n",
			strings.Join(r.PredictionMethods, ", "), r.PredictionOutput)
	}
	return strings.TrimRight(sb.String(), "\n")
}
