package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed FILE",
		Short: "Import locations, aisles and products from a YAML file",
		Long: `Import locations, aisles and products from a YAML file in one
transaction. Products are shared by name, so a product listed under two
locations is the same product in both.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			s, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			ids, err := s.ImportYAML(ctx, f)
			if err != nil {
				return userError(err)
			}
			a.logger.Info("seeded", "file", args[0], "locations", len(ids))
			for _, id := range ids {
				loc, err := s.GetLocation(ctx, id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", loc.ID, loc.Type, loc.Name)
			}
			return nil
		},
	}
}
