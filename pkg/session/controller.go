package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aislelist/aislelist/pkg/displayitem"
	"github.com/aislelist/aislelist/pkg/errmap"
	"github.com/aislelist/aislelist/pkg/listfilter"
	"github.com/aislelist/aislelist/pkg/model/mlocation"
	"github.com/aislelist/aislelist/pkg/movable"
	"github.com/aislelist/aislelist/pkg/serialdispatch"
)

// Hydrate starts following locationID. Any previous subscription is
// dropped and the filter resets to filterType with empty aisles shown or
// hidden per showEmptyAisles. Snapshots arrive asynchronously; each one
// publishes Loading followed by Updated.
func (c *Controller) Hydrate(locationID int64, filterType mlocation.FilterType, showEmptyAisles bool) error {
	c.searchJob.Cancel()
	return c.dispatcher.Dispatch(func() error {
		if c.subCancel != nil {
			c.subCancel()
			c.subCancel = nil
		}
		c.hydrateGen++
		gen := c.hydrateGen

		c.locationID = locationID
		c.location = nil
		c.defaults = listfilter.Default(filterType, false, showEmptyAisles)
		c.defaults.MatchMode = c.matchMode
		c.defaults.ShowAllProducts = c.showAllProducts
		c.params = c.defaults
		c.publish(loadingState())

		ctx, cancel := context.WithCancel(c.ctx)
		snapshots, err := c.repo.LocationStream(ctx, locationID)
		if err != nil {
			cancel()
			return c.fail("hydrate", err)
		}
		c.subCancel = cancel

		c.watchers.Add(1)
		go c.watch(ctx, gen, snapshots)
		c.logger.Debug("hydrated", "location", locationID, "filter", filterType.String())
		return nil
	})
}

func (c *Controller) watch(ctx context.Context, gen uint64, snapshots <-chan *mlocation.Location) {
	defer c.watchers.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			err := c.dispatcher.Dispatch(func() error {
				c.applySnapshot(gen, snap)
				return nil
			})
			if errors.Is(err, serialdispatch.ErrClosed) {
				return
			}
		}
	}
}

func (c *Controller) applySnapshot(gen uint64, snap *mlocation.Location) {
	if gen != c.hydrateGen {
		return
	}
	c.location = snap
	if snap != nil {
		c.params.ShowDefaultAisle = snap.ShowDefaultAisle
		c.defaults.ShowDefaultAisle = snap.ShowDefaultAisle
	}
	c.publish(loadingState())
	c.render()
}

// SubmitProductSearch applies query after the debounce delay, replacing any
// search still waiting. Applying a search shows every aisle and every
// product regardless of stock filter or collapse.
func (c *Controller) SubmitProductSearch(query string) {
	c.searchJob.Submit(func(ctx context.Context) {
		_ = c.dispatcher.Dispatch(func() error {
			if ctx.Err() != nil {
				return nil
			}
			c.params = c.params.Search(query)
			c.render()
			c.logger.Debug("search applied", "query", query)
			return nil
		})
	})
}

// UpdateProductNeededQuantity writes qty after the debounce delay, replacing
// any quantity edit still waiting. A failed write publishes an Error state;
// the last list stays available through LastItems. A write interrupted by a
// newer edit or by Close is dropped without an Error state.
func (c *Controller) UpdateProductNeededQuantity(item displayitem.Product, qty int) {
	c.qtyJob.Submit(func(ctx context.Context) {
		_ = c.dispatcher.Dispatch(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if err := c.repo.UpdateProductQty(ctx, item.ID, qty); err != nil {
				if ctx.Err() != nil {
					c.logger.Debug("quantity edit superseded", "product", item.ID, "qty", qty)
					return nil
				}
				return c.fail("update quantity", fmt.Errorf("product %d qty %d: %w", item.ID, qty, err))
			}
			return nil
		})
	})
}

// RequestDefaultList drops any pending search and restores the filter the
// session was hydrated with.
func (c *Controller) RequestDefaultList() error {
	c.searchJob.Cancel()
	return c.dispatcher.Dispatch(func() error {
		c.params = c.defaults
		c.render()
		return nil
	})
}

// MovedItem keeps every aisle visible while item is being dragged so it
// always has a drop target. UpdateItemRank ends the drag.
func (c *Controller) MovedItem(item displayitem.Item) error {
	return c.dispatcher.Dispatch(func() error {
		c.params.ShowAllAisles = true
		c.render()
		c.logger.Debug("item moving", "kind", item.Kind().String(), "id", item.ItemID())
		return nil
	})
}

// UpdateItemRank persists a drop of item directly after preceding, which
// may be nil for the top of the list. Once the drop is stored, empty aisles
// go back to the session setting unless a search is showing them.
func (c *Controller) UpdateItemRank(ctx context.Context, item, preceding displayitem.Item) error {
	return c.dispatcher.Dispatch(func() error {
		result, err := movable.Apply(ctx, c.repo, movable.MoveOperation{Item: item, Preceding: preceding})
		if err != nil {
			return c.fail("update rank", err)
		}
		if !c.params.IsSearching() && c.params.ShowAllAisles != c.defaults.ShowAllAisles {
			c.params.ShowAllAisles = c.defaults.ShowAllAisles
			c.render()
		}
		switch {
		case result.Aisle != nil:
			c.logger.Debug("aisle moved", "aisle", result.Aisle.AisleID, "rank", result.Aisle.Rank)
		case result.Product != nil:
			c.logger.Debug("product moved",
				"product", result.Product.ProductID,
				"aisle", result.Product.AisleID,
				"rank", result.Product.Rank)
		}
		return nil
	})
}

// RemoveItem deletes an aisle or product. An aisle that is already gone is
// not an error.
func (c *Controller) RemoveItem(ctx context.Context, item displayitem.Item) error {
	return c.dispatcher.Dispatch(func() error {
		var err error
		switch it := item.(type) {
		case displayitem.Aisle:
			err = c.removeAisle(ctx, it.ID)
		case displayitem.Product:
			err = c.repo.RemoveProduct(ctx, it.ID)
		default:
			return nil
		}
		if err != nil {
			return c.fail("remove item", err)
		}
		return nil
	})
}

func (c *Controller) removeAisle(ctx context.Context, aisleID int64) error {
	aisle, err := c.repo.GetAisle(ctx, aisleID)
	if err != nil {
		return err
	}
	if aisle == nil {
		return nil
	}
	return c.repo.RemoveAisle(ctx, *aisle)
}

// SortListByName renumbers every aisle and product of the hydrated
// location alphabetically.
func (c *Controller) SortListByName(ctx context.Context) error {
	return c.dispatcher.Dispatch(func() error {
		if err := c.repo.SortLocationByName(ctx, c.locationID); err != nil {
			return c.fail("sort by name", err)
		}
		return nil
	})
}

func (c *Controller) UpdateProductStatus(ctx context.Context, item displayitem.Product, inStock bool) error {
	return c.dispatcher.Dispatch(func() error {
		if err := c.repo.UpdateProductStock(ctx, item.ID, inStock); err != nil {
			return c.fail("update stock", err)
		}
		return nil
	})
}

func (c *Controller) UpdateAisleExpanded(ctx context.Context, aisle displayitem.Aisle, expanded bool) error {
	return c.dispatcher.Dispatch(func() error {
		if err := c.repo.UpdateAisleExpanded(ctx, aisle.ID, expanded); err != nil {
			return c.fail("update expanded", err)
		}
		return nil
	})
}

// SetFilterType switches the stock filter for the rest of the session.
func (c *Controller) SetFilterType(filterType mlocation.FilterType) error {
	return c.dispatcher.Dispatch(func() error {
		c.params.FilterType = filterType
		c.defaults.FilterType = filterType
		c.render()
		return nil
	})
}

// ToggleShowEmptyAisles persists the preference when a Preferences store is
// configured, then updates the filter. A failed save leaves the filter as it
// was.
func (c *Controller) ToggleShowEmptyAisles(ctx context.Context, show bool) error {
	return c.dispatcher.Dispatch(func() error {
		if c.prefs != nil {
			if err := c.prefs.SetShowEmptyAisles(ctx, show); err != nil {
				return c.fail("save preference", err)
			}
		}
		c.params.ShowAllAisles = show
		c.defaults.ShowAllAisles = show
		c.render()
		return nil
	})
}

// LoyaltyCard returns the card linked to the hydrated location, or nil.
func (c *Controller) LoyaltyCard(ctx context.Context) (*mlocation.LoyaltyCard, error) {
	var card *mlocation.LoyaltyCard
	err := c.dispatcher.Dispatch(func() error {
		var err error
		card, err = c.repo.LoyaltyCardForLocation(ctx, c.locationID)
		if err != nil {
			return errmap.Map(err)
		}
		return nil
	})
	return card, err
}

// ClearState resets the published state to Empty, typically after an
// Error has been shown.
func (c *Controller) ClearState() error {
	return c.dispatcher.Dispatch(func() error {
		c.publish(emptyState())
		return nil
	})
}

// fail publishes err as an Error state and returns the mapped error. It
// must run on the dispatcher.
func (c *Controller) fail(op string, err error) error {
	mapped := errmap.Map(err)
	code := errmap.CodeOf(mapped)
	level := slog.LevelError
	if code != errmap.CodeGeneric {
		level = slog.LevelWarn
	}
	c.logger.Log(c.ctx, level, "operation failed", "op", op, "code", string(code), "error", err)
	c.publish(errorState(code, errmap.Friendly(mapped)))
	return mapped
}
