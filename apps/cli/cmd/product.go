package cmd

import (
	"fmt"
	"strconv"

	"github.com/aislelist/aislelist/pkg/errmap"
	"github.com/aislelist/aislelist/pkg/store"
	"github.com/spf13/cobra"
)

func parseProductID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, errmap.New(errmap.CodeValidation, fmt.Sprintf("Invalid product id %q.", arg), errmap.ErrValidation)
	}
	return id, nil
}

// withProduct opens the store and checks the product exists before fn
// writes to it. Writes to unknown ids are otherwise silent no-ops.
func (a *app) withProduct(cmd *cobra.Command, arg string, fn func(s *store.Store, id int64) error) error {
	ctx := cmd.Context()

	id, err := parseProductID(arg)
	if err != nil {
		return err
	}
	s, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("product %d does not exist", id)
	}
	return fn(s, id)
}

func newQtyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "qty PRODUCT N",
		Short: "Set how many of a product are needed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return errmap.New(errmap.CodeValidation, fmt.Sprintf("Invalid quantity %q.", args[1]), errmap.ErrValidation)
			}
			return a.withProduct(cmd, args[0], func(s *store.Store, id int64) error {
				if err := s.UpdateProductQty(cmd.Context(), id, qty); err != nil {
					return userError(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "product %d needs %d\n", id, qty)
				return nil
			})
		},
	}
}

func newStockCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stock PRODUCT true|false",
		Short: "Mark a product in stock or needed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			inStock, err := strconv.ParseBool(args[1])
			if err != nil {
				return errmap.New(errmap.CodeValidation, fmt.Sprintf("Invalid stock state %q.", args[1]), errmap.ErrValidation)
			}
			return a.withProduct(cmd, args[0], func(s *store.Store, id int64) error {
				if err := s.UpdateProductStock(cmd.Context(), id, inStock); err != nil {
					return userError(err)
				}
				state := "needed"
				if inStock {
					state = "in stock"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "product %d %s\n", id, state)
				return nil
			})
		},
	}
}
