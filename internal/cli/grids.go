package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newGridsCommand(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "grids",
		Short: "List the grids of a catalog by group",
		Example: `  # List grids
  gridctl grids --catalog grids.yaml

  # As JSON
  gridctl grids -c grids.yaml --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, _, cleanup, err := opts.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			groups := svc.ListGridsByGroup()
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(groups)
			}

			names := make([]string, 0, len(groups))
			for g := range groups {
				names = append(names, g)
			}
			sort.Strings(names)

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "GROUP\tKEY\tLABEL\tCOLUMNS")
			for _, g := range names {
				for _, info := range groups[g] {
					def, err := svc.Grid(info.Key)
					if err != nil {
						return err
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", g, info.Key, info.Label, len(def.Columns))
				}
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}
