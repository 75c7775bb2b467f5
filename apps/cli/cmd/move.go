package cmd

import (
	"fmt"

	"github.com/aislelist/aislelist/pkg/displayitem"
	"github.com/aislelist/aislelist/pkg/listfilter"
	"github.com/aislelist/aislelist/pkg/model/mlocation"
	"github.com/aislelist/aislelist/pkg/session"
	"github.com/spf13/cobra"
)

func newMoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "move LOCATION ITEM [AFTER]",
		Short: "Drop an aisle or product right after another item",
		Long: `Drop ITEM directly after AFTER, as if dragged there in the list. Items
are written aisle:ID or product:ID, as printed by show. Without AFTER the
item goes to the top. A product dropped after an aisle header becomes the
first product of that aisle.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			itemArg, err := parseItemRef(args[1])
			if err != nil {
				return err
			}
			var afterArg *itemRef
			if len(args) == 3 {
				ref, err := parseItemRef(args[2])
				if err != nil {
					return err
				}
				afterArg = &ref
			}

			s, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			locationID, err := resolveLocation(ctx, s, args[0])
			if err != nil {
				return err
			}

			// Every product of every aisle, collapsed or not, so any row can be dragged.
			list, err := a.openList(ctx, s, locationID, mlocation.FilterTypeAll, true, listfilter.MatchSubstring,
				session.WithCollapsedProducts())
			if err != nil {
				return err
			}
			defer list.Close()

			item, err := itemArg.find(list.state.Items)
			if err != nil {
				return err
			}
			if err := list.MovedItem(item); err != nil {
				return err
			}
			if err := list.next(ctx); err != nil {
				return err
			}

			var preceding displayitem.Item
			if afterArg != nil {
				if preceding, err = afterArg.find(list.state.Items); err != nil {
					return err
				}
			}
			if err := list.UpdateItemRank(ctx, item, preceding); err != nil {
				return userError(err)
			}

			where := "to the top"
			if preceding != nil {
				where = fmt.Sprintf("after %s %q", preceding.Kind(), preceding.ItemName())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "moved %s %q %s\n", item.Kind(), item.ItemName(), where)
			return nil
		},
	}
}
