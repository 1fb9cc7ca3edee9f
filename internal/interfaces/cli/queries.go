package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/CaseLaw-Intelligence/internal/application/querygen"
)

func newQueriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queries",
		Short: "Evaluation query set commands",
	}
	cmd.AddCommand(newQueriesGenerateCmd())
	return cmd
}

func newQueriesGenerateCmd() *cobra.Command {
	var cases string
	var output string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Derive the evaluation query set from the case base",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rc, err := getRunContext(cmd)
			if err != nil {
				return err
			}
			if cases == "" {
				cases = rc.Config.Pipeline.CaseBasePath
			}
			if output == "" {
				output = rc.Config.Pipeline.QuerySetPath
			}

			svc := querygen.NewService(rc.Logger)
			summary, err := svc.Run(cmd.Context(), cases, output)
			if err != nil {
				return err
			}
			return printResult(cmd, rc, queriesReport(*summary))
		},
	}

	cmd.Flags().StringVar(&cases, "cases", "", "case base path (default: pipeline.case_base_path)")
	cmd.Flags().StringVarP(&output, "output", "O", "", "query set output path (default: pipeline.query_set_path)")
	return cmd
}

type queriesReport querygen.Summary

func (r queriesReport) String() string {
	s := fmt.Sprintf("Generated %d queries from %d cases (%d skipped)\nQuery set written to %s in %s",
		r.Generated, r.Cases, r.Skipped, r.Output, r.Duration.Round(timeUnit))
	if r.Backup != "" {
		s += fmt.Sprintf("\nPrevious query set backed up to %s", r.Backup)
	}
	return s
}
