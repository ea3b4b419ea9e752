// Package sync implements the sync command: reconcile the item sets of
// the two storage backends.
package sync

import (
	"github.com/spf13/cobra"

	"github.com/jonesrussell/legisync/cmd/common"
	"github.com/jonesrussell/legisync/internal/domain"
	syncengine "github.com/jonesrussell/legisync/internal/sync"
)

// Command returns the sync command.
func Command() *cobra.Command {
	var (
		from       string
		to         string
		deletes    bool
		puts       bool
		gets       bool
		maxDeletes int
		maxPuts    int
		maxGets    int
		skip       bool
		name       string
		prefix     string
		suffix     string
		after      string
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile the FILE and OBJECT backends",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			deps, err := common.Build(ctx, false)
			if err != nil {
				return err
			}
			defer deps.Close()

			engine := syncengine.NewEngine(deps.File, deps.Object, deps.Ledger, deps.Logger)
			res, err := engine.Run(ctx, syncengine.Options{
				From:         domain.Backend(from),
				To:           domain.Backend(to),
				Deletes:      deletes,
				Puts:         puts,
				Gets:         gets,
				MaxDeletes:   maxDeletes,
				MaxPuts:      maxPuts,
				MaxGets:      maxGets,
				SkipExisting: skip,
				Name:         name,
				Prefix:       prefix,
				Suffix:       suffix,
				After:        after,
			})
			if err != nil {
				return err
			}

			if res.Deleted+res.Put+res.Got == 0 {
				return common.ErrNothingToDo
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", string(domain.BackendFile), "source backend (FILE or OBJECT)")
	cmd.Flags().StringVar(&to, "to", string(domain.BackendObject), "destination backend (FILE or OBJECT)")
	cmd.Flags().BoolVar(&deletes, "deletes", false, "delete destination items absent from the source")
	cmd.Flags().BoolVar(&puts, "puts", true, "copy source items missing from the destination")
	cmd.Flags().BoolVar(&gets, "gets", false, "copy destination items missing from the source")
	cmd.Flags().IntVar(&maxDeletes, "max-deletes", 0, "delete ceiling (0 = unlimited)")
	cmd.Flags().IntVar(&maxPuts, "max-puts", 0, "put ceiling (0 = unlimited)")
	cmd.Flags().IntVar(&maxGets, "max-gets", 0, "get ceiling (0 = unlimited)")
	cmd.Flags().BoolVar(&skip, "skip", false, "skip items present in both backends without hash comparison")
	cmd.Flags().StringVar(&name, "name", "", "sync a single item by name")
	cmd.Flags().StringVar(&prefix, "prefix", "", "item name prefix filter")
	cmd.Flags().StringVar(&suffix, "suffix", "", "item name suffix filter")
	cmd.Flags().StringVar(&after, "after", "", "exclusive name cursor")

	return cmd
}
