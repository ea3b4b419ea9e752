// Package extract implements the extract command: walk retained session
// archives and convert raw filings into normalized text.
package extract

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/legisync/cmd/common"
	"github.com/jonesrussell/legisync/internal/dataset"
	"github.com/jonesrussell/legisync/internal/extract"
	"github.com/jonesrussell/legisync/internal/normalize"
	"github.com/jonesrussell/legisync/internal/pipeline"
)

// Command returns the extract command.
func Command() *cobra.Command {
	var (
		useAPI        bool
		state         string
		sessionID     int
		after         string
		limit         int
		skip          bool
		frequencyDays int
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract and normalize bill text from session archives",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			deps, err := common.Build(ctx, useAPI)
			if err != nil {
				return err
			}
			defer deps.Close()

			frequency := deps.Config.Frequency()
			if frequencyDays > 0 {
				frequency = time.Duration(frequencyDays) * 24 * time.Hour
			}

			run := pipeline.NewRun(useAPI, deps.Config.APIBudget)
			log := deps.Logger.With("run_id", run.ID)

			fetcher := dataset.NewFetcher(deps.File, deps.Ledger, deps.Client, log,
				frequency, deps.Config.RetainedListings)
			listing, err := fetcher.EnsureListing(ctx, run)
			if err != nil {
				return err
			}

			normalizer, err := normalize.NewNormalizer(log)
			if err != nil {
				return err
			}
			documents := extract.NewDocumentFetcher(deps.File, deps.Ledger, deps.Client, http.DefaultClient, log)
			extractor := extract.NewExtractor(deps.File, deps.Ledger, documents, normalizer, deps.Summaries, log)

			stats, err := extractor.Run(ctx, run, listing, extract.Options{
				StateCode:    state,
				SessionID:    sessionID,
				After:        after,
				Limit:        limit,
				Skip:         skip,
				SessionLimit: deps.Config.SessionLimit,
			})
			if err != nil {
				return err
			}

			if stats.Processed == 0 && stats.Failed > 0 {
				return fmt.Errorf("extraction failed: %d bills errored, none processed", stats.Failed)
			}
			if stats.Processed == 0 {
				return common.ErrNothingToDo
			}

			log.Info("Extract complete",
				"processed", stats.Processed, "skipped", stats.Skipped, "failed", stats.Failed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&useAPI, "api", false, "enable upstream API calls")
	cmd.Flags().StringVar(&state, "state", "OH", "2-letter jurisdiction code")
	cmd.Flags().IntVar(&sessionID, "session-id", 0, "restrict to one session id")
	cmd.Flags().StringVar(&after, "after", "", "resume after this bill key (exclusive)")
	cmd.Flags().IntVar(&limit, "limit", 0, "max bills to process (0 = unlimited)")
	cmd.Flags().BoolVar(&skip, "skip", false, "skip bills whose text item already exists")
	cmd.Flags().IntVar(&frequencyDays, "frequency", 0, "listing refresh window in days (0 = configured default)")

	return cmd
}
