package cmd

import (
	"fmt"

	"github.com/aislelist/aislelist/pkg/listfilter"
	"github.com/spf13/cobra"
)

func newSortCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sort LOCATION",
		Short: "Sort aisles and products alphabetically",
		Long: `Renumber every aisle of LOCATION and every product inside them
alphabetically. The default aisle stays last.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			s, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			locationID, err := resolveLocation(ctx, s, args[0])
			if err != nil {
				return err
			}
			loc, err := s.GetLocation(ctx, locationID)
			if err != nil {
				return err
			}

			list, err := a.openList(ctx, s, locationID, loc.DefaultFilter, false, listfilter.MatchSubstring)
			if err != nil {
				return err
			}
			defer list.Close()

			if err := list.SortListByName(ctx); err != nil {
				return userError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sorted %s\n", loc.Name)
			return nil
		},
	}
}
