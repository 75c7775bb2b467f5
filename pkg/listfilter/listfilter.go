// Package listfilter decides which aisles and products of a location are
// visible for a given set of filter parameters.
package listfilter

import (
	"strings"

	"github.com/aislelist/aislelist/pkg/fuzzyfinder"
	"github.com/aislelist/aislelist/pkg/model/maisle"
	"github.com/aislelist/aislelist/pkg/model/mlocation"
	"golang.org/x/text/cases"
)

// MatchMode selects how ProductNameQuery is compared with product names.
type MatchMode int

const (
	// MatchSubstring is a trimmed, case-folded substring match.
	MatchSubstring MatchMode = iota
	// MatchFuzzy matches the query runes in order, ignoring case and accents.
	MatchFuzzy
)

// Parameters is the mutable criteria set of one list session.
type Parameters struct {
	FilterType       mlocation.FilterType
	ShowDefaultAisle bool
	// ShowAllAisles includes aisles with no visible products.
	ShowAllAisles    bool
	ProductNameQuery string
	// ShowAllProducts ignores collapsed aisles. Set while searching.
	ShowAllProducts bool
	MatchMode       MatchMode
}

// Default returns the parameters a session starts from.
func Default(filterType mlocation.FilterType, showDefaultAisle, showEmptyAisles bool) Parameters {
	return Parameters{
		FilterType:       filterType,
		ShowDefaultAisle: showDefaultAisle,
		ShowAllAisles:    showEmptyAisles,
	}
}

// Search returns p switched into product search mode for query.
func (p Parameters) Search(query string) Parameters {
	p.FilterType = mlocation.FilterTypeAll
	p.ProductNameQuery = query
	p.ShowAllProducts = true
	p.ShowAllAisles = true
	return p
}

// IsSearching reports whether a non-blank name query is active.
func (p Parameters) IsSearching() bool {
	return strings.TrimSpace(p.ProductNameQuery) != ""
}

// IsValidAisle reports whether aisle gets a header row: it must be allowed by
// the default-aisle toggle and either hold a visible product or be shown
// because ShowAllAisles is set.
func IsValidAisle(aisle maisle.Aisle, p Parameters) bool {
	if aisle.IsDefault && !p.ShowDefaultAisle {
		return false
	}
	if p.ShowAllAisles {
		return true
	}
	for _, ap := range aisle.Products {
		if IsValidAisleProduct(ap, p, true) {
			return true
		}
	}
	return false
}

// IsValidAisleProduct reports whether ap passes the stock filter and the name
// query, and is not hidden by a collapsed aisle.
func IsValidAisleProduct(ap maisle.AisleProduct, p Parameters, aisleExpanded bool) bool {
	if !matchesFilterType(ap, p.FilterType) {
		return false
	}
	if !matchesName(ap.Product.Name, p) {
		return false
	}
	return p.ShowAllProducts || aisleExpanded
}

// CountValidProducts is the badge count of aisle: passing products, ignoring
// collapse.
func CountValidProducts(aisle maisle.Aisle, p Parameters) int {
	n := 0
	for _, ap := range aisle.Products {
		if IsValidAisleProduct(ap, p, true) {
			n++
		}
	}
	return n
}

func matchesFilterType(ap maisle.AisleProduct, ft mlocation.FilterType) bool {
	switch ft {
	case mlocation.FilterTypeInStock:
		return ap.Product.InStock
	case mlocation.FilterTypeNeeded:
		return ap.Product.IsNeeded()
	default:
		return true
	}
}

func matchesName(name string, p Parameters) bool {
	query := strings.TrimSpace(p.ProductNameQuery)
	if query == "" {
		return true
	}
	if p.MatchMode == MatchFuzzy {
		return fuzzyfinder.Matches(query, name)
	}
	fold := cases.Fold()
	return strings.Contains(fold.String(name), fold.String(query))
}
