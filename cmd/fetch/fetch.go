// Package fetch implements the fetch command: refresh the dataset
// listing and the per-session archives for one jurisdiction.
package fetch

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/legisync/cmd/common"
	"github.com/jonesrussell/legisync/internal/dataset"
	"github.com/jonesrussell/legisync/internal/domain"
	"github.com/jonesrussell/legisync/internal/pipeline"
)

// resolveSessionLimit picks the per-run session ceiling: an explicit
// --limit wins (0 or negative = unlimited), otherwise the configured
// default applies.
func resolveSessionLimit(flagSet bool, flag, configured int) int {
	if !flagSet {
		return configured
	}
	if flag < 0 {
		return 0
	}
	return flag
}

// Command returns the fetch command.
func Command() *cobra.Command {
	var (
		useAPI        bool
		state         string
		limit         int
		frequencyDays int
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch the dataset listing and session archives",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			deps, err := common.Build(ctx, useAPI)
			if err != nil {
				return err
			}
			defer deps.Close()

			jur, ok := domain.JurisdictionByCode(state)
			if !ok {
				return fmt.Errorf("configuration error: unknown state code %q", state)
			}

			frequency := deps.Config.Frequency()
			if frequencyDays > 0 {
				frequency = time.Duration(frequencyDays) * 24 * time.Hour
			}
			sessionLimit := resolveSessionLimit(cmd.Flags().Changed("limit"), limit, deps.Config.SessionLimit)

			run := pipeline.NewRun(useAPI, deps.Config.APIBudget)
			log := deps.Logger.With("run_id", run.ID)
			fetcher := dataset.NewFetcher(deps.File, deps.Ledger, deps.Client, log,
				frequency, deps.Config.RetainedListings)

			listing, err := fetcher.EnsureListing(ctx, run)
			if err != nil {
				return err
			}

			fetched, err := fetcher.FetchDatasets(ctx, run, listing, jur.ID, sessionLimit)
			if err != nil {
				return err
			}
			if fetched == 0 {
				log.Info("All session datasets current", "state", jur.Code)
				return common.ErrNothingToDo
			}

			log.Info("Fetch complete", "state", jur.Code, "fetched", fetched)
			return nil
		},
	}

	cmd.Flags().BoolVar(&useAPI, "api", false, "enable upstream API calls")
	cmd.Flags().StringVar(&state, "state", "OH", "2-letter jurisdiction code")
	cmd.Flags().IntVar(&limit, "limit", 0, "max sessions to refresh (0 = unlimited, omit for configured default)")
	cmd.Flags().IntVar(&frequencyDays, "frequency", 0, "listing refresh window in days (0 = configured default)")

	return cmd
}
