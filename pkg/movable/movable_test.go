package movable_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aislelist/aislelist/pkg/displayitem"
	"github.com/aislelist/aislelist/pkg/movable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockRepository records the updates it is asked to write.
type MockRepository struct {
	aisles   []movable.AisleRankUpdate
	products []movable.ProductRankUpdate
	err      error
}

func (m *MockRepository) UpdateAisleRank(ctx context.Context, u movable.AisleRankUpdate) error {
	m.aisles = append(m.aisles, u)
	return m.err
}

func (m *MockRepository) UpdateProductRank(ctx context.Context, u movable.ProductRankUpdate) error {
	m.products = append(m.products, u)
	return m.err
}

var (
	produce = displayitem.Aisle{ID: 1, Rank: 4, Name: "Produce", LocationID: 9}
	dairy   = displayitem.Aisle{ID: 2, Rank: 7, Name: "Dairy", LocationID: 9}
	milk    = displayitem.Product{ID: 11, AisleProductID: 111, AisleID: 2, AisleRank: 7, Rank: 3, Name: "Milk"}
	x       = displayitem.Product{ID: 12, AisleProductID: 112, AisleID: 1, AisleRank: 4, Rank: 5, Name: "X"}
)

func TestReconcileAisle(t *testing.T) {
	tests := []struct {
		name      string
		preceding displayitem.Item
		wantRank  int
	}{
		{"dropped at top", nil, 1},
		{"after aisle header", dairy, 8},
		{"after product uses its aisle rank", milk, 8},
		{"after sentinel behaves like top", displayitem.EmptyList{}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := movable.ReconcileAisle(produce, tt.preceding)
			assert.Equal(t, tt.wantRank, u.Rank)
			assert.Equal(t, produce.ID, u.AisleID)
			assert.Equal(t, produce.LocationID, u.LocationID, "location is unchanged")
		})
	}
}

func TestReconcileProduct(t *testing.T) {
	tests := []struct {
		name      string
		preceding displayitem.Item
		wantRank  int
		wantAisle int64
	}{
		{"dropped at top keeps aisle", nil, 1, x.AisleID},
		{"after aisle header", dairy, 1, dairy.ID},
		{"after product in other aisle", milk, 4, milk.AisleID},
		{"after product in same aisle", displayitem.Product{ID: 13, AisleID: 1, AisleRank: 4, Rank: 9}, 10, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := movable.ReconcileProduct(x, tt.preceding)
			assert.Equal(t, tt.wantRank, u.Rank)
			assert.Equal(t, tt.wantAisle, u.AisleID)
			assert.Equal(t, x.AisleProductID, u.AisleProductID)
			assert.Equal(t, x.ID, u.ProductID)
		})
	}
}

func TestReconcileProduct_AfterAisleHeaderIsRankOne(t *testing.T) {
	// X has rank 5; dropping it right under an aisle header resets it to 1.
	u := movable.ReconcileProduct(x, produce)
	assert.Equal(t, 1, u.Rank)
}

func TestReconcile_Monotonicity(t *testing.T) {
	preceding := []displayitem.Item{nil, produce, dairy, milk, x}
	for _, p := range preceding {
		res, ok := movable.Reconcile(movable.MoveOperation{Item: x, Preceding: p})
		require.True(t, ok)
		require.NotNil(t, res.Product)
		if pp, isProduct := p.(displayitem.Product); isProduct {
			assert.Equal(t, pp.Rank+1, res.Product.Rank)
		} else {
			assert.Equal(t, 1, res.Product.Rank)
		}

		res, ok = movable.Reconcile(movable.MoveOperation{Item: produce, Preceding: p})
		require.True(t, ok)
		require.NotNil(t, res.Aisle)
		if p == nil {
			assert.Equal(t, 1, res.Aisle.Rank)
		} else {
			assert.Equal(t, p.OwnerAisleRank()+1, res.Aisle.Rank)
		}
	}
}

func TestReconcile_EmptyListNotMovable(t *testing.T) {
	_, ok := movable.Reconcile(movable.MoveOperation{Item: displayitem.EmptyList{}})
	assert.False(t, ok)
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepository{}

	res, err := movable.Apply(ctx, repo, movable.MoveOperation{Item: produce, Preceding: dairy})
	require.NoError(t, err)
	require.NotNil(t, res.Aisle)
	assert.Equal(t, []movable.AisleRankUpdate{{AisleID: 1, LocationID: 9, Rank: 8}}, repo.aisles)

	_, err = movable.Apply(ctx, repo, movable.MoveOperation{Item: x, Preceding: milk})
	require.NoError(t, err)
	assert.Equal(t, []movable.ProductRankUpdate{{AisleProductID: 112, ProductID: 12, AisleID: 2, Rank: 4}}, repo.products)

	_, err = movable.Apply(ctx, repo, movable.MoveOperation{Item: displayitem.EmptyList{}})
	require.NoError(t, err)
	assert.Len(t, repo.aisles, 1)
	assert.Len(t, repo.products, 1)
}

func TestApply_PropagatesRepositoryError(t *testing.T) {
	boom := errors.New("disk full")
	repo := &MockRepository{err: boom}
	_, err := movable.Apply(context.Background(), repo, movable.MoveOperation{Item: x})
	require.ErrorIs(t, err, boom)
}
