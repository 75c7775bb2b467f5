// Package displayitem holds the rows of a materialized shopping list and the
// ordering contract that places them.
//
// Item is a closed sum type with three variants: Aisle, Product and
// EmptyList. Callers discriminate with a type switch.
package displayitem

import (
	"cmp"
	"slices"
	"strings"
)

// Kind orders the variants inside a single aisle: the aisle header first,
// then its products, then the empty-list sentinel.
type Kind int

const (
	KindAisle Kind = iota
	KindProduct
	KindEmptyList
)

func (k Kind) String() string {
	switch k {
	case KindAisle:
		return "aisle"
	case KindProduct:
		return "product"
	case KindEmptyList:
		return "empty"
	}
	return "unknown"
}

// Item is one row of the display list.
type Item interface {
	Kind() Kind
	ItemID() int64
	// OwnerAisleID is the aisle the row belongs to. An aisle owns itself.
	OwnerAisleID() int64
	// OwnerAisleRank is the rank of the aisle the row belongs to.
	OwnerAisleRank() int
	ItemRank() int
	ItemName() string

	item()
}

type Aisle struct {
	ID         int64
	Rank       int
	Name       string
	IsDefault  bool
	LocationID int64
	Expanded   bool
	// ChildCount is the number of products passing the filter, whether or
	// not the aisle is collapsed.
	ChildCount int
}

func (a Aisle) Kind() Kind          { return KindAisle }
func (a Aisle) ItemID() int64       { return a.ID }
func (a Aisle) OwnerAisleID() int64 { return a.ID }
func (a Aisle) OwnerAisleRank() int { return a.Rank }
func (a Aisle) ItemRank() int       { return a.Rank }
func (a Aisle) ItemName() string    { return a.Name }
func (Aisle) item()                 {}

type Product struct {
	ID int64
	// AisleProductID identifies the aisle placement so rank writes can target it.
	AisleProductID int64
	AisleID        int64
	// AisleRank mirrors the rank of the containing aisle.
	AisleRank int
	Rank      int
	Name      string
	InStock   bool
	QtyNeeded int
	Price     float64
}

func (p Product) Kind() Kind          { return KindProduct }
func (p Product) ItemID() int64       { return p.ID }
func (p Product) OwnerAisleID() int64 { return p.AisleID }
func (p Product) OwnerAisleRank() int { return p.AisleRank }
func (p Product) ItemRank() int       { return p.Rank }
func (p Product) ItemName() string    { return p.Name }
func (Product) item()                 {}

// EmptyList stands in for a list with nothing to show.
type EmptyList struct{}

func (EmptyList) Kind() Kind          { return KindEmptyList }
func (EmptyList) ItemID() int64       { return 0 }
func (EmptyList) OwnerAisleID() int64 { return 0 }
func (EmptyList) OwnerAisleRank() int { return 1 }
func (EmptyList) ItemRank() int       { return 1 }
func (EmptyList) ItemName() string    { return "" }
func (EmptyList) item()               {}

// Compare orders two items by (aisleRank, aisleID, kind, rank, name).
// Ranks may collide; name is the final tie-break.
func Compare(a, b Item) int {
	if c := cmp.Compare(a.OwnerAisleRank(), b.OwnerAisleRank()); c != 0 {
		return c
	}
	if c := cmp.Compare(a.OwnerAisleID(), b.OwnerAisleID()); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Kind(), b.Kind()); c != 0 {
		return c
	}
	if c := cmp.Compare(a.ItemRank(), b.ItemRank()); c != 0 {
		return c
	}
	return strings.Compare(a.ItemName(), b.ItemName())
}

// Sort stable-sorts items in place by Compare.
func Sort(items []Item) {
	slices.SortStableFunc(items, Compare)
}

// IsEmptyList reports whether items is exactly the empty-list sentinel.
func IsEmptyList(items []Item) bool {
	if len(items) != 1 {
		return false
	}
	_, ok := items[0].(EmptyList)
	return ok
}

// Find returns the item of the given kind and id.
func Find(items []Item, kind Kind, id int64) (Item, bool) {
	for _, it := range items {
		if it.Kind() == kind && it.ItemID() == id {
			return it, true
		}
	}
	return nil, false
}
