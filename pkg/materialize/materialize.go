// Package materialize turns a location snapshot and filter parameters into
// the ordered display list.
package materialize

import (
	"github.com/aislelist/aislelist/pkg/displayitem"
	"github.com/aislelist/aislelist/pkg/listfilter"
	"github.com/aislelist/aislelist/pkg/model/mlocation"
)

// Materialize recomputes the full display list. It never fails: a nil
// location or a list filtered down to nothing yields exactly one
// displayitem.EmptyList.
func Materialize(loc *mlocation.Location, params listfilter.Parameters) []displayitem.Item {
	var items []displayitem.Item
	if loc != nil {
		for _, aisle := range loc.Aisles {
			if !listfilter.IsValidAisle(aisle, params) {
				continue
			}
			items = append(items, displayitem.Aisle{
				ID:         aisle.ID,
				Rank:       aisle.Rank,
				Name:       aisle.Name,
				IsDefault:  aisle.IsDefault,
				LocationID: aisle.LocationID,
				Expanded:   aisle.Expanded,
				ChildCount: listfilter.CountValidProducts(aisle, params),
			})
		}

		for _, aisle := range loc.Aisles {
			if !listfilter.IsValidAisle(aisle, params) {
				continue
			}
			for _, ap := range aisle.Products {
				if !listfilter.IsValidAisleProduct(ap, params, aisle.Expanded) {
					continue
				}
				items = append(items, displayitem.Product{
					ID:             ap.Product.ID,
					AisleProductID: ap.ID,
					AisleID:        aisle.ID,
					AisleRank:      aisle.Rank,
					Rank:           ap.Rank,
					Name:           ap.Product.Name,
					InStock:        ap.Product.InStock,
					QtyNeeded:      ap.Product.QtyNeeded,
					Price:          ap.Product.Price,
				})
			}
		}
	}

	displayitem.Sort(items)

	if len(items) == 0 {
		return []displayitem.Item{displayitem.EmptyList{}}
	}
	return items
}
