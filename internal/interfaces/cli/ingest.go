package cli

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/CaseLaw-Intelligence/internal/application/ingestion"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/storage/minio"
	"github.com/turtacn/CaseLaw-Intelligence/internal/intelligence/extractor"
)

const minioScheme = "minio://"

func newIngestCmd() *cobra.Command {
	var input string
	var output string
	var workers int

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Extract structured case records from raw ruling texts",
		Long: "Reads every .txt ruling under the input directory (or a MinIO\n" +
			"bucket/prefix with --input minio://bucket/prefix), extracts the metadata\n" +
			"fields, drops duplicate case numbers and writes the case base artifact.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rc, err := getRunContext(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if input == "" {
				input = rc.Config.Pipeline.RawDir
			}
			if output == "" {
				output = rc.Config.Pipeline.CaseBasePath
			}
			if workers <= 0 {
				workers = rc.Config.Pipeline.EffectiveWorkers()
			}

			source, err := buildSource(cmd, rc, input)
			if err != nil {
				return err
			}

			var opts []ingestion.Option
			if len(rc.Config.Kafka.Brokers) > 0 {
				producer, err := kafka.NewProducer(rc.Config.Kafka, rc.Logger)
				if err != nil {
					rc.Logger.Warn("kafka unavailable, pipeline events disabled", logging.Err(err))
				} else {
					defer producer.Close()
					opts = append(opts, ingestion.WithPublisher(producer))
				}
			}

			ex := extractor.New(extractorConfig(rc.Config.Extraction), rc.Logger)
			svc := ingestion.NewService(ex, workers, rc.Logger, opts...)

			summary, err := svc.Run(ctx, source, output)
			if err != nil {
				return err
			}
			return printResult(cmd, rc, ingestReport(*summary))
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "ruling directory or minio://bucket/prefix (default: pipeline.raw_dir)")
	cmd.Flags().StringVarP(&output, "output", "O", "", "case base output path (default: pipeline.case_base_path)")
	cmd.Flags().IntVar(&workers, "workers", 0, "extraction concurrency (default: pipeline.workers)")
	return cmd
}

// buildSource resolves the --input value into a document source: a local
// directory, or a MinIO bucket/prefix when the minio:// scheme is used.
func buildSource(cmd *cobra.Command, rc *runContext, input string) (ingestion.TextSource, error) {
	if !strings.HasPrefix(input, minioScheme) {
		return ingestion.NewDirSource(input)
	}

	rest := strings.TrimPrefix(input, minioScheme)
	bucket, prefix, _ := strings.Cut(rest, "/")

	cfg := rc.Config.MinIO
	if bucket != "" {
		cfg.RawBucket = bucket
	}
	client, err := minio.NewClient(cmd.Context(), cfg, rc.Logger)
	if err != nil {
		return nil, err
	}
	store := minio.NewDocumentStore(client, rc.Logger)
	return ingestion.NewObjectSource(store, prefix), nil
}

// ingestReport formats the run summary for text output.
type ingestReport ingestion.Summary

func (r ingestReport) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Ingested %d of %d documents (%d failed, %d duplicates dropped)\n",
		r.Processed, r.Documents, r.Failed, r.Dropped)
	fmt.Fprintf(&sb, "Case base written to %s in %s\n", filepath.Clean(r.Output), r.Duration.Round(timeUnit))

	if len(r.FieldFill) > 0 {
		fields := make([]string, 0, len(r.FieldFill))
		for f := range r.FieldFill {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		sb.WriteString("Field fill rates:\n")
		for _, f := range fields {
			fmt.Fprintf(&sb, "  %-16s %d/%d\n", f, r.FieldFill[f], r.Processed)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
