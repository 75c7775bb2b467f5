package maisle

import "github.com/aislelist/aislelist/pkg/model/mproduct"

// Aisle is a named bucket of products inside a location. Rank orders aisles
// within the location and is not required to be unique.
type Aisle struct {
	ID         int64
	Name       string
	Rank       int
	IsDefault  bool
	Expanded   bool
	LocationID int64
	Products   []AisleProduct
}

// AisleProduct places one product in one aisle. Rank orders products within
// the aisle.
type AisleProduct struct {
	ID      int64
	Rank    int
	AisleID int64
	Product mproduct.Product
}

