package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check a catalog without connecting to any database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := opts.loadCatalog()
			if err != nil {
				return err
			}
			forms, err := cat.Forms()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "catalog ok: %d grids, %d forms\n", len(cat.Grids), len(forms))
			return nil
		},
	}
}
