package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jurisio/casebrain/internal/application/brain"
	"github.com/jurisio/casebrain/internal/bootstrap"
	"github.com/jurisio/casebrain/internal/config"
	"github.com/jurisio/casebrain/internal/infrastructure/monitoring/logging"
	"github.com/jurisio/casebrain/internal/infrastructure/storage/minio"
	"github.com/jurisio/casebrain/pkg/types/common"
)

type configLoader func() (*config.Config, error)

// cliOrchestrator connects the infrastructure and builds a bare
// orchestrator: no metrics, no events, no cache.  The caller must invoke
// the returned cleanup.
func cliOrchestrator(ctx context.Context, load configLoader) (*brain.Orchestrator, *bootstrap.Infra, func(), error) {
	cfg, err := load()
	if err != nil {
		return nil, nil, nil, err
	}

	// CLI runs log to stderr so stdout stays parseable JSON.
	logger, err := bootstrap.NewLogger(config.LogConfig{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return nil, nil, nil, err
	}

	infra, err := bootstrap.Connect(ctx, cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	orchestrator, err := infra.NewOrchestrator(cfg, bootstrap.OrchestratorOptions{})
	if err != nil {
		infra.Close()
		return nil, nil, nil, err
	}
	return orchestrator, infra, infra.Close, nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(out))
	return nil
}

func newAnalyzeCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <case-id>",
		Short: "Run a full analysis for one case and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			orchestrator, _, cleanup, err := cliOrchestrator(ctx, load)
			if err != nil {
				return err
			}
			defer cleanup()

			analysis, err := orchestrator.AnalyzeCase(ctx, common.ID(args[0]))
			if err != nil {
				return err
			}
			return printJSON(cmd, analysis)
		},
	}
}

func newSummaryCmd(load configLoader) *cobra.Command {
	var export bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the practice-wide dashboard summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			orchestrator, infra, cleanup, err := cliOrchestrator(ctx, load)
			if err != nil {
				return err
			}
			defer cleanup()

			summary, err := orchestrator.GetBrainSummary(ctx)
			if err != nil {
				return err
			}
			if err := printJSON(cmd, summary); err != nil {
				return err
			}

			if export {
				data, err := json.MarshalIndent(summary, "", "  ")
				if err != nil {
					return err
				}
				blobs := minio.NewBlobStore(infra.MinIO, logging.NewNopLogger())
				name := fmt.Sprintf("summary-%s.json", time.Time(summary.GeneratedAt).Format("2006-01-02"))
				location, err := blobs.StoreExport(ctx, name, data, "application/json")
				if err != nil {
					return err
				}
				cmd.PrintErrf("summary exported to %s\n", location)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&export, "export", false, "also store the summary in the exports bucket")
	return cmd
}
