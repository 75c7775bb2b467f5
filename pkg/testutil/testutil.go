// Package testutil builds location snapshots for tests.
package testutil

import (
	"github.com/aislelist/aislelist/pkg/model/maisle"
	"github.com/aislelist/aislelist/pkg/model/mlocation"
	"github.com/aislelist/aislelist/pkg/model/mproduct"
)

// LocationBuilder assembles a mlocation.Location with sequential ids.
// Aisle and product ids start at 1; aisle-product ids start at 100.
type LocationBuilder struct {
	loc        mlocation.Location
	nextAisle  int64
	nextProd   int64
	nextAssoc  int64
	aisleIndex map[string]int
}

func NewLocation(id int64, name string) *LocationBuilder {
	return &LocationBuilder{
		loc: mlocation.Location{
			ID:               id,
			Name:             name,
			DefaultFilter:    mlocation.FilterTypeNeeded,
			ShowDefaultAisle: true,
		},
		nextAisle:  1,
		nextProd:   1,
		nextAssoc:  100,
		aisleIndex: make(map[string]int),
	}
}

func (b *LocationBuilder) ShowDefaultAisle(show bool) *LocationBuilder {
	b.loc.ShowDefaultAisle = show
	return b
}

// Aisle appends an expanded aisle.
func (b *LocationBuilder) Aisle(name string, rank int) *LocationBuilder {
	return b.addAisle(name, rank, false, true)
}

func (b *LocationBuilder) DefaultAisle(name string, rank int) *LocationBuilder {
	return b.addAisle(name, rank, true, true)
}

func (b *LocationBuilder) CollapsedAisle(name string, rank int) *LocationBuilder {
	return b.addAisle(name, rank, false, false)
}

func (b *LocationBuilder) addAisle(name string, rank int, isDefault, expanded bool) *LocationBuilder {
	b.aisleIndex[name] = len(b.loc.Aisles)
	b.loc.Aisles = append(b.loc.Aisles, maisle.Aisle{
		ID:         b.nextAisle,
		Name:       name,
		Rank:       rank,
		IsDefault:  isDefault,
		Expanded:   expanded,
		LocationID: b.loc.ID,
	})
	b.nextAisle++
	return b
}

// Product places a new product in the named aisle. It panics on an unknown
// aisle name.
func (b *LocationBuilder) Product(aisle, name string, rank int, inStock bool) *LocationBuilder {
	idx, ok := b.aisleIndex[aisle]
	if !ok {
		panic("testutil: unknown aisle " + aisle)
	}
	a := &b.loc.Aisles[idx]
	a.Products = append(a.Products, maisle.AisleProduct{
		ID:      b.nextAssoc,
		Rank:    rank,
		AisleID: a.ID,
		Product: mproduct.Product{
			ID:        b.nextProd,
			Name:      name,
			InStock:   inStock,
			QtyNeeded: 1,
		},
	})
	b.nextAssoc++
	b.nextProd++
	return b
}

func (b *LocationBuilder) Build() *mlocation.Location {
	loc := b.loc
	loc.Aisles = make([]maisle.Aisle, len(b.loc.Aisles))
	for i, a := range b.loc.Aisles {
		a.Products = append([]maisle.AisleProduct(nil), a.Products...)
		loc.Aisles[i] = a
	}
	return &loc
}

// ProduceScenario is the two-aisle location used across the engine tests:
// Produce(rank 1) holding Apple (needed) and Milk (in stock), and an empty
// default aisle at rank 2.
func ProduceScenario() *mlocation.Location {
	return NewLocation(1, "Corner Shop").
		Aisle("Produce", 1).
		DefaultAisle("Default", 2).
		Product("Produce", "Apple", 1, false).
		Product("Produce", "Milk", 2, true).
		Build()
}
