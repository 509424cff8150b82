package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Crawl once and write the CSV table.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, cfg, _, err := opts.setup(cmd)
			if err != nil {
				return err
			}

			svc, err := newCrawlService(cfg, logger)
			if err != nil {
				return err
			}

			stats, err := crawlOnce(cmd.Context(), cfg, svc, logger)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows (%d senators, %d bills) to %s\n",
				stats.Rows, stats.Senators, stats.Bills, cfg.OutputPath)
			if err == nil && len(stats.FailedSenators) > 0 {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "skipped %d senators after fetch errors\n", len(stats.FailedSenators))
			}
			return err
		},
	}
}
