package cmd

import (
	"fmt"

	"github.com/aislelist/aislelist/pkg/fuzzyfinder"
	"github.com/spf13/cobra"
)

func newSearchCmd(a *app) *cobra.Command {
	var limit int

	searchCmd := &cobra.Command{
		Use:   "search LOCATION QUERY",
		Short: "Fuzzy-find products of a location, closest first",
		Args:  cobra.ExactArgs(2),
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

			var (
				names []string
				ids   []int64
			)
			for _, aisle := range loc.Aisles {
				for _, ap := range aisle.Products {
					names = append(names, ap.Product.Name)
					ids = append(ids, ap.Product.ID)
				}
			}

			ranks := fuzzyfinder.RankFind(names, args[1])
			if limit > 0 && len(ranks) > limit {
				ranks = ranks[:limit]
			}
			for _, r := range ranks {
				fmt.Fprintf(cmd.OutOrStdout(), "product:%d\t%d\t%s\n", ids[r.OriginalIndex], r.Distance, r.Target)
			}
			return nil
		},
	}

	searchCmd.Flags().IntVar(&limit, "limit", 10, "maximum number of matches, 0 for all")
	return searchCmd
}
