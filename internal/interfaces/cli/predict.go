package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/CaseLaw-Intelligence/internal/application/prediction"
)

func newPredictCmd() *cobra.Command {
	var cases string
	var results string
	var outputDir string
	var policy string

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Vote applicable statutes for every query from its retrieved neighbors",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rc, err := getRunContext(cmd)
			if err != nil {
				return err
			}
			pipeline := rc.Config.Pipeline

			if cases == "" {
				cases = pipeline.CaseBasePath
			}
			if results == "" {
				results = pipeline.RetrievalResultsPath
			}
			if outputDir != "" {
				pipeline.ResultsDir = outputDir
			}
			predCfg := rc.Config.Prediction
			if policy != "" {
				predCfg.Policy = policy
			}

			svc := prediction.NewService(prediction.PolicyFromConfig(predCfg), rc.Logger)
			summary, err := svc.Run(cmd.Context(), cases, results, pipeline)
			if err != nil {
				return err
			}
			return printResult(cmd, rc, predictReport(*summary))
		},
	}

	cmd.Flags().StringVar(&cases, "cases", "", "case base path (default: pipeline.case_base_path)")
	cmd.Flags().StringVar(&results, "retrieval", "", "retrieval results path (default: pipeline.retrieval_results_path)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "prediction table directory (default: pipeline.results_dir)")
	cmd.Flags().StringVar(&policy, "policy", "", "vote policy: topn or threshold (default: prediction.policy)")
	return cmd
}

type predictReport prediction.Summary

func (r predictReport) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Predicted statutes for %d queries in %s\n", r.Queries, r.Duration.Round(timeUnit))
	for _, method := range r.Methods {
		line := fmt.Sprintf("  %-10s %s", method, r.Outputs[method])
		if n := r.NoAnswer[method]; n > 0 {
			line += fmt.Sprintf(" (%d without answer)", n)
		}
		sb.WriteString(line + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
