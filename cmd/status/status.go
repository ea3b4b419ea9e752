// Package status implements the status command: display ledger entries
// and retained dataset listings in a formatted table.
package status

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/legisync/cmd/common"
	"github.com/jonesrussell/legisync/internal/domain"
)

// Command returns the status command.
func Command() *cobra.Command {
	var (
		backend string
		prefix  string
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show ledger entries and retained dataset listings",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			deps, err := common.Build(ctx, false)
			if err != nil {
				return err
			}
			defer deps.Close()

			entries, err := deps.Ledger.List(ctx, domain.Backend(backend), prefix)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Name", "Backend", "Hash", "Date", "Size", "Description"})

			for _, e := range entries {
				hash := e.Hash
				if len(hash) > 12 {
					hash = hash[:12]
				}
				t.AppendRow(table.Row{
					e.Name,
					e.Backend,
					hash,
					e.Date.Format("2006-01-02"),
					e.Size,
					e.Description,
				})
			}
			t.Render()

			return nil
		},
	}

	cmd.Flags().StringVar(&backend, "backend", string(domain.BackendFile), "backend to inspect (FILE or OBJECT)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "item name prefix filter")

	return cmd
}
