package mlocation

import (
	"fmt"
	"strings"

	"github.com/aislelist/aislelist/pkg/model/maisle"
)

type LocationType int

const (
	LocationTypeShop LocationType = iota
	LocationTypeHome
)

func (t LocationType) String() string {
	switch t {
	case LocationTypeHome:
		return "HOME"
	default:
		return "SHOP"
	}
}

func ParseLocationType(s string) (LocationType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "SHOP":
		return LocationTypeShop, nil
	case "HOME":
		return LocationTypeHome, nil
	}
	return LocationTypeShop, fmt.Errorf("unknown location type %q", s)
}

// FilterType selects products by stock state.
type FilterType int

const (
	FilterTypeAll FilterType = iota
	FilterTypeInStock
	FilterTypeNeeded
)

func (f FilterType) String() string {
	switch f {
	case FilterTypeInStock:
		return "IN_STOCK"
	case FilterTypeNeeded:
		return "NEEDED"
	default:
		return "ALL"
	}
}

// ParseFilterType accepts the canonical names as well as the dashed lower
// case spelling used on the command line ("in-stock").
func ParseFilterType(s string) (FilterType, error) {
	normalized := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), "-", "_")
	switch normalized {
	case "ALL":
		return FilterTypeAll, nil
	case "IN_STOCK":
		return FilterTypeInStock, nil
	case "NEEDED":
		return FilterTypeNeeded, nil
	}
	return FilterTypeAll, fmt.Errorf("unknown filter type %q", s)
}

// Location is the snapshot the list engine materializes: a shop or home with
// its aisles and their products.
type Location struct {
	ID               int64
	Name             string
	Type             LocationType
	DefaultFilter    FilterType
	ShowDefaultAisle bool
	Aisles           []maisle.Aisle
}

// DefaultAisle returns the location's catch-all aisle, if it has one.
func (l Location) DefaultAisle() (maisle.Aisle, bool) {
	for _, a := range l.Aisles {
		if a.IsDefault {
			return a, true
		}
	}
	return maisle.Aisle{}, false
}

type LoyaltyCard struct {
	ID         int64
	LocationID int64
	Name       string
	CardNumber string
}
