// Package movable computes the rank an aisle or product takes when it is
// dropped after another row of the display list.
//
// Only the moved item is re-ranked; neighbours keep their ranks. Duplicate
// ranks are expected and resolved by the display ordering's name tie-break.
package movable

import (
	"context"

	"github.com/aislelist/aislelist/pkg/displayitem"
)

// AisleRankUpdate is the persisted outcome of an aisle move.
type AisleRankUpdate struct {
	AisleID    int64
	LocationID int64
	Rank       int
}

// ProductRankUpdate is the persisted outcome of a product move. AisleID is
// the aisle the product ends up in.
type ProductRankUpdate struct {
	AisleProductID int64
	ProductID      int64
	AisleID        int64
	Rank           int
}

// MoveOperation describes a drop: Item lands directly after Preceding. A nil
// Preceding means the item was dropped at the top of the list.
type MoveOperation struct {
	Item      displayitem.Item
	Preceding displayitem.Item
}

// MoveResult holds exactly one non-nil update.
type MoveResult struct {
	Aisle   *AisleRankUpdate
	Product *ProductRankUpdate
}

// Repository persists rank changes. Writes for ids that no longer exist are
// expected to be ignored.
type Repository interface {
	UpdateAisleRank(ctx context.Context, update AisleRankUpdate) error
	UpdateProductRank(ctx context.Context, update ProductRankUpdate) error
}

// ReconcileAisle ranks aisle one past the aisle rank of preceding, or first
// when nothing precedes it.
func ReconcileAisle(aisle displayitem.Aisle, preceding displayitem.Item) AisleRankUpdate {
	preceding = normalize(preceding)
	rank := 1
	if preceding != nil {
		rank = preceding.OwnerAisleRank() + 1
	}
	return AisleRankUpdate{
		AisleID:    aisle.ID,
		LocationID: aisle.LocationID,
		Rank:       rank,
	}
}

// ReconcileProduct ranks product one past preceding when preceding is itself
// a product, and first otherwise. The product joins preceding's aisle; with
// nothing preceding it stays where it is.
func ReconcileProduct(product displayitem.Product, preceding displayitem.Item) ProductRankUpdate {
	preceding = normalize(preceding)
	update := ProductRankUpdate{
		AisleProductID: product.AisleProductID,
		ProductID:      product.ID,
		AisleID:        product.AisleID,
		Rank:           1,
	}
	if preceding == nil {
		return update
	}
	if p, ok := preceding.(displayitem.Product); ok {
		update.Rank = p.Rank + 1
	}
	update.AisleID = preceding.OwnerAisleID()
	return update
}

// Reconcile dispatches on the moved item's variant. The empty-list sentinel
// is not movable and yields ok=false.
func Reconcile(op MoveOperation) (MoveResult, bool) {
	switch item := op.Item.(type) {
	case displayitem.Aisle:
		u := ReconcileAisle(item, op.Preceding)
		return MoveResult{Aisle: &u}, true
	case displayitem.Product:
		u := ReconcileProduct(item, op.Preceding)
		return MoveResult{Product: &u}, true
	default:
		return MoveResult{}, false
	}
}

// Apply reconciles op and writes the result through repo. Unmovable items are
// a no-op.
func Apply(ctx context.Context, repo Repository, op MoveOperation) (MoveResult, error) {
	result, ok := Reconcile(op)
	if !ok {
		return result, nil
	}
	if result.Aisle != nil {
		return result, repo.UpdateAisleRank(ctx, *result.Aisle)
	}
	return result, repo.UpdateProductRank(ctx, *result.Product)
}

// normalize treats the empty-list sentinel like no preceding row.
func normalize(item displayitem.Item) displayitem.Item {
	if _, ok := item.(displayitem.EmptyList); ok {
		return nil
	}
	return item
}
