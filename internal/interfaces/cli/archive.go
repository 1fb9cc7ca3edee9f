package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/CaseLaw-Intelligence/internal/application/archive"
)

func newArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Case archive commands (PostgreSQL, OpenSearch, Neo4j)",
	}
	cmd.AddCommand(newArchiveSyncCmd(), newArchiveRelatedCmd(), newArchiveCitingCmd())
	return cmd
}

func newArchiveSyncCmd() *cobra.Command {
	var cases string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync the case base into every reachable archive sink",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rc, err := getRunContext(cmd)
			if err != nil {
				return err
			}
			if cases == "" {
				cases = rc.Config.Pipeline.CaseBasePath
			}

			svc, closeSinks, err := buildArchiveService(cmd.Context(), rc.Config, rc.Logger)
			if err != nil {
				return err
			}
			defer closeSinks()

			summary, err := svc.SyncAll(cmd.Context(), cases)
			if err != nil {
				return err
			}
			return printResult(cmd, rc, archiveReport(*summary))
		},
	}

	cmd.Flags().StringVar(&cases, "cases", "", "case base path (default: pipeline.case_base_path)")
	return cmd
}

func newArchiveRelatedCmd() *cobra.Command {
	var statute string
	var limit int

	cmd := &cobra.Command{
		Use:   "related",
		Short: "List statutes co-cited with one statute, strongest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rc, err := getRunContext(cmd)
			if err != nil {
				return err
			}

			svc, closeSinks, err := buildArchiveService(cmd.Context(), rc.Config, rc.Logger)
			if err != nil {
				return err
			}
			defer closeSinks()

			related, err := svc.RelatedStatutes(cmd.Context(), statute, limit)
			if err != nil {
				return err
			}
			if rc.Output == "json" {
				return printResult(cmd, rc, related)
			}

			var sb strings.Builder
			fmt.Fprintf(&sb, "Statutes co-cited with %q:\n", statute)
			for _, r := range related {
				fmt.Fprintf(&sb, "  %-40s %d shared cases\n", r.Ref, r.SharedCases)
			}
			return printResult(cmd, rc, strings.TrimRight(sb.String(), "\n"))
		},
	}

	cmd.Flags().StringVar(&statute, "statute", "", "statute citation, e.g. \"Pasal 2 Ayat (1)\"")
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum statutes returned")
	_ = cmd.MarkFlagRequired("statute")
	return cmd
}

func newArchiveCitingCmd() *cobra.Command {
	var statute string
	var limit int

	cmd := &cobra.Command{
		Use:   "citing",
		Short: "List archived cases citing one statute",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rc, err := getRunContext(cmd)
			if err != nil {
				return err
			}

			svc, closeSinks, err := buildArchiveService(cmd.Context(), rc.Config, rc.Logger)
			if err != nil {
				return err
			}
			defer closeSinks()

			caseIDs, err := svc.CasesCiting(cmd.Context(), statute, limit)
			if err != nil {
				return err
			}
			if rc.Output == "json" {
				return printResult(cmd, rc, caseIDs)
			}
			return printResult(cmd, rc, strings.Join(caseIDs, "\n"))
		},
	}

	cmd.Flags().StringVar(&statute, "statute", "", "statute citation, e.g. \"Pasal 112 Ayat (1)\"")
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum cases returned")
	_ = cmd.MarkFlagRequired("statute")
	return cmd
}

type archiveReport archive.Summary

func (r archiveReport) String() string {
	return fmt.Sprintf("Synced %d of %d cases (%d failed) in %s",
		r.Synced, r.Cases, r.Failed, r.Duration.Round(timeUnit))
}
