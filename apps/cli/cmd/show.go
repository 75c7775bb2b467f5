package cmd

import (
	"context"

	"github.com/aislelist/aislelist/pkg/eventstream"
	"github.com/aislelist/aislelist/pkg/listfilter"
	"github.com/aislelist/aislelist/pkg/model/mlocation"
	"github.com/aislelist/aislelist/pkg/session"
	"github.com/aislelist/aislelist/pkg/store"
	"github.com/spf13/cobra"
)

// listSession is a controller hydrated on one location together with the
// subscription its states arrive on.
type listSession struct {
	*session.Controller
	events <-chan eventstream.Event[int64, session.DisplayState]
	state  session.DisplayState
}

func (a *app) openList(ctx context.Context, s *store.Store, locationID int64, ft mlocation.FilterType, showEmpty bool, mode listfilter.MatchMode, extra ...session.Option) (*listSession, error) {
	opts := []session.Option{
		session.WithLogger(a.logger),
		session.WithDebounce(a.debounce()),
		session.WithPreferences(s),
		session.WithMatchMode(mode),
	}
	c := session.New(s, append(opts, extra...)...)
	events, err := c.Subscribe(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}
	if err := c.Hydrate(locationID, ft, showEmpty); err != nil {
		c.Close()
		return nil, err
	}
	state, err := awaitUpdated(ctx, events)
	if err != nil {
		c.Close()
		return nil, err
	}
	return &listSession{Controller: c, events: events, state: state}, nil
}

func (l *listSession) next(ctx context.Context) error {
	state, err := awaitUpdated(ctx, l.events)
	if err != nil {
		return err
	}
	l.state = state
	return nil
}

func newShowCmd(a *app) *cobra.Command {
	var (
		filter    string
		showEmpty bool
		search    string
		fuzzy     bool
		asJSON    bool
	)

	showCmd := &cobra.Command{
		Use:   "show LOCATION",
		Short: "Print the list of a location",
		Long: `Print the list of a location, by id or name. Without --filter the
location's default filter applies. A search shows every aisle and every
matching product regardless of stock state.`,
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

			ft := loc.DefaultFilter
			if cmd.Flags().Changed("filter") {
				if ft, err = mlocation.ParseFilterType(filter); err != nil {
					return err
				}
			}
			if !cmd.Flags().Changed("show-empty") {
				if showEmpty, err = s.ShowEmptyAisles(ctx); err != nil {
					return err
				}
			}
			mode := listfilter.MatchSubstring
			if fuzzy {
				mode = listfilter.MatchFuzzy
			}

			list, err := a.openList(ctx, s, locationID, ft, showEmpty, mode)
			if err != nil {
				return err
			}
			defer list.Close()

			if search != "" {
				list.SubmitProductSearch(search)
				if err := list.next(ctx); err != nil {
					return err
				}
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), list.state.Items)
			}
			return writeText(cmd.OutOrStdout(), list.state.Items)
		},
	}

	showCmd.Flags().StringVar(&filter, "filter", "", "product filter: all, in-stock or needed")
	showCmd.Flags().BoolVar(&showEmpty, "show-empty", false, "show aisles with no matching products (default from preferences)")
	showCmd.Flags().StringVar(&search, "search", "", "show products whose name contains this text")
	showCmd.Flags().BoolVar(&fuzzy, "fuzzy", false, "match --search fuzzily instead of by substring")
	showCmd.Flags().BoolVar(&asJSON, "json", false, "print the list as JSON")
	return showCmd
}
