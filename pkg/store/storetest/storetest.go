// Package storetest opens isolated in-memory stores for tests.
package storetest

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/aislelist/aislelist/pkg/logger/mocklogger"
	"github.com/aislelist/aislelist/pkg/model/maisle"
	"github.com/aislelist/aislelist/pkg/model/mlocation"
	"github.com/aislelist/aislelist/pkg/model/mproduct"
	"github.com/aislelist/aislelist/pkg/store"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"
)

// New returns a store backed by a uniquely named in-memory database that is
// closed when the test ends.
func New(t testing.TB) *store.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:testdb_%s?mode=memory&cache=shared", ulid.Make().String())
	db, err := sql.Open("sqlite", store.DSN(dsn))
	require.NoError(t, err)

	s, err := store.New(context.Background(), db, mocklogger.NewMockLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// Produce holds the ids created by SeedProduce.
type Produce struct {
	LocationID int64
	Produce    maisle.Aisle
	Default    maisle.Aisle
	Apple      maisle.AisleProduct
	Milk       maisle.AisleProduct
}

// SeedProduce writes the Corner Shop location: Produce (rank 1) holding a
// needed Apple and an in-stock Milk, then an empty default aisle (rank 2).
func SeedProduce(t testing.TB, s *store.Store) Produce {
	t.Helper()
	ctx := context.Background()

	loc := mlocation.Location{Name: "Corner Shop", DefaultFilter: mlocation.FilterTypeNeeded, ShowDefaultAisle: true}
	require.NoError(t, s.CreateLocation(ctx, &loc))

	out := Produce{LocationID: loc.ID}
	out.Produce = maisle.Aisle{LocationID: loc.ID, Name: "Produce", Rank: 1, Expanded: true}
	require.NoError(t, s.CreateAisle(ctx, &out.Produce))
	out.Default = maisle.Aisle{LocationID: loc.ID, Name: "Default", Rank: 2, IsDefault: true, Expanded: true}
	require.NoError(t, s.CreateAisle(ctx, &out.Default))

	add := func(name string, inStock bool, rank int) maisle.AisleProduct {
		p := mproduct.Product{Name: name, InStock: inStock, QtyNeeded: 1}
		require.NoError(t, s.CreateProduct(ctx, &p))
		ap := maisle.AisleProduct{AisleID: out.Produce.ID, Rank: rank, Product: p}
		require.NoError(t, s.AddProductToAisle(ctx, &ap))
		return ap
	}
	out.Apple = add("Apple", false, 1)
	out.Milk = add("Milk", true, 2)
	return out
}
