package displayitem_test

import (
	"testing"

	"github.com/aislelist/aislelist/pkg/displayitem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(items []displayitem.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ItemName()
	}
	return out
}

func TestCompare_AisleBeforeItsProducts(t *testing.T) {
	produce := displayitem.Aisle{ID: 10, Rank: 1, Name: "Produce"}
	apple := displayitem.Product{ID: 1, AisleID: 10, AisleRank: 1, Rank: 0, Name: "Apple"}

	assert.Negative(t, displayitem.Compare(produce, apple))
	assert.Positive(t, displayitem.Compare(apple, produce))
	assert.Zero(t, displayitem.Compare(apple, apple))
}

func TestSort_TupleOrder(t *testing.T) {
	items := []displayitem.Item{
		displayitem.Product{ID: 4, AisleID: 20, AisleRank: 2, Rank: 1, Name: "Bread"},
		displayitem.Product{ID: 2, AisleID: 10, AisleRank: 1, Rank: 2, Name: "Banana"},
		displayitem.Aisle{ID: 20, Rank: 2, Name: "Bakery"},
		displayitem.Product{ID: 1, AisleID: 10, AisleRank: 1, Rank: 1, Name: "Apple"},
		displayitem.Aisle{ID: 10, Rank: 1, Name: "Produce"},
	}
	displayitem.Sort(items)
	assert.Equal(t, []string{"Produce", "Apple", "Banana", "Bakery", "Bread"}, names(items))
}

func TestSort_AisleIDSeparatesEqualAisleRanks(t *testing.T) {
	// Two aisles share rank 1 after a move; their products must stay grouped.
	items := []displayitem.Item{
		displayitem.Product{ID: 1, AisleID: 7, AisleRank: 1, Rank: 1, Name: "Zucchini"},
		displayitem.Aisle{ID: 7, Rank: 1, Name: "Veg"},
		displayitem.Product{ID: 2, AisleID: 3, AisleRank: 1, Rank: 1, Name: "Milk"},
		displayitem.Aisle{ID: 3, Rank: 1, Name: "Dairy"},
	}
	displayitem.Sort(items)
	assert.Equal(t, []string{"Dairy", "Milk", "Veg", "Zucchini"}, names(items))
}

func TestSort_NameBreaksRankTies(t *testing.T) {
	items := []displayitem.Item{
		displayitem.Product{ID: 3, AisleID: 1, AisleRank: 1, Rank: 5, Name: "Cherries"},
		displayitem.Product{ID: 1, AisleID: 1, AisleRank: 1, Rank: 5, Name: "Apples"},
		displayitem.Product{ID: 2, AisleID: 1, AisleRank: 1, Rank: 5, Name: "Bananas"},
	}
	displayitem.Sort(items)
	assert.Equal(t, []string{"Apples", "Bananas", "Cherries"}, names(items))
}

func TestEmptyList(t *testing.T) {
	var e displayitem.Item = displayitem.EmptyList{}
	assert.Equal(t, 1, e.ItemRank())
	assert.Equal(t, 1, e.OwnerAisleRank())
	assert.Equal(t, int64(0), e.ItemID())
	assert.Equal(t, int64(0), e.OwnerAisleID())
	assert.Equal(t, "", e.ItemName())

	assert.True(t, displayitem.IsEmptyList([]displayitem.Item{e}))
	assert.False(t, displayitem.IsEmptyList(nil))
	assert.False(t, displayitem.IsEmptyList([]displayitem.Item{displayitem.Aisle{ID: 1}}))

	// Within the same aisle scope the sentinel sorts after aisles and products.
	assert.Positive(t, displayitem.Compare(e, displayitem.Product{AisleRank: 1}))
}

func TestFind(t *testing.T) {
	items := []displayitem.Item{
		displayitem.Aisle{ID: 1, Name: "Produce"},
		displayitem.Product{ID: 1, AisleID: 1, Name: "Apple"},
	}
	got, ok := displayitem.Find(items, displayitem.KindProduct, 1)
	require.True(t, ok)
	assert.Equal(t, "Apple", got.ItemName())

	_, ok = displayitem.Find(items, displayitem.KindProduct, 2)
	assert.False(t, ok)
}
