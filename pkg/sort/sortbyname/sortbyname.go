// Package sortbyname rewrites the ranks of a location so aisles, and the
// products inside each aisle, read alphabetically.
package sortbyname

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/aislelist/aislelist/pkg/model/maisle"
	"github.com/aislelist/aislelist/pkg/movable"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// maxParallelLoads caps concurrent per-aisle product reads.
const maxParallelLoads = 4

type Repository interface {
	GetAisles(ctx context.Context, locationID int64) ([]maisle.Aisle, error)
	GetAisleProducts(ctx context.Context, aisleID int64) ([]maisle.AisleProduct, error)
	// UpdateRanks writes every update atomically.
	UpdateRanks(ctx context.Context, aisles []movable.AisleRankUpdate, products []movable.ProductRankUpdate) error
}

// Plan is the full set of rank writes for one location.
type Plan struct {
	Aisles   []movable.AisleRankUpdate
	Products []movable.ProductRankUpdate
}

// collator is not safe for concurrent use, so each plan builds its own.
func newCollator() *collate.Collator {
	return collate.New(language.Und, collate.IgnoreCase)
}

func compareNames(c *collate.Collator, a, b string, aID, bID int64) int {
	if r := c.CompareString(a, b); r != 0 {
		return r
	}
	if r := strings.Compare(a, b); r != 0 {
		return r
	}
	switch {
	case aID < bID:
		return -1
	case aID > bID:
		return 1
	}
	return 0
}

// PlanAisles orders aisles by name with the default aisle last and assigns
// ranks 1..N.
func PlanAisles(aisles []maisle.Aisle) []movable.AisleRankUpdate {
	c := newCollator()
	sorted := slices.Clone(aisles)
	slices.SortFunc(sorted, func(a, b maisle.Aisle) int {
		if a.IsDefault != b.IsDefault {
			if a.IsDefault {
				return 1
			}
			return -1
		}
		return compareNames(c, a.Name, b.Name, a.ID, b.ID)
	})

	updates := make([]movable.AisleRankUpdate, len(sorted))
	for i, a := range sorted {
		updates[i] = movable.AisleRankUpdate{AisleID: a.ID, LocationID: a.LocationID, Rank: i + 1}
	}
	return updates
}

// PlanProducts orders the products of one aisle by name and assigns ranks
// 1..M.
func PlanProducts(products []maisle.AisleProduct) []movable.ProductRankUpdate {
	c := newCollator()
	sorted := slices.Clone(products)
	slices.SortFunc(sorted, func(a, b maisle.AisleProduct) int {
		return compareNames(c, a.Product.Name, b.Product.Name, a.ID, b.ID)
	})

	updates := make([]movable.ProductRankUpdate, len(sorted))
	for i, ap := range sorted {
		updates[i] = movable.ProductRankUpdate{
			AisleProductID: ap.ID,
			ProductID:      ap.Product.ID,
			AisleID:        ap.AisleID,
			Rank:           i + 1,
		}
	}
	return updates
}

// Build loads a location through repo and computes its plan without writing
// anything.
func Build(ctx context.Context, repo Repository, locationID int64) (Plan, error) {
	aisles, err := repo.GetAisles(ctx, locationID)
	if err != nil {
		return Plan{}, fmt.Errorf("load aisles: %w", err)
	}

	perAisle := make([][]maisle.AisleProduct, len(aisles))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLoads)
	for i, aisle := range aisles {
		g.Go(func() error {
			products, err := repo.GetAisleProducts(gctx, aisle.ID)
			if err != nil {
				return fmt.Errorf("load products of aisle %d: %w", aisle.ID, err)
			}
			perAisle[i] = products
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Plan{}, err
	}

	plan := Plan{Aisles: PlanAisles(aisles)}
	for _, products := range perAisle {
		plan.Products = append(plan.Products, PlanProducts(products)...)
	}
	return plan, nil
}

// Run sorts a whole location by name in a single write.
func Run(ctx context.Context, repo Repository, locationID int64) (Plan, error) {
	plan, err := Build(ctx, repo, locationID)
	if err != nil {
		return Plan{}, err
	}
	if err := repo.UpdateRanks(ctx, plan.Aisles, plan.Products); err != nil {
		return Plan{}, fmt.Errorf("write ranks: %w", err)
	}
	return plan, nil
}
