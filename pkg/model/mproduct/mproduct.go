package mproduct

// Product is a shopping item. A product may be placed in aisles of several
// locations through maisle.AisleProduct.
type Product struct {
	ID        int64
	Name      string
	InStock   bool
	QtyNeeded int
	Price     float64
}

// IsNeeded reports whether the product is on the shopping list.
func (p Product) IsNeeded() bool {
	return !p.InStock
}
