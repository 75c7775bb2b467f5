package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/aislelist/aislelist/pkg/errmap"
	"github.com/aislelist/aislelist/pkg/model/maisle"
	"github.com/aislelist/aislelist/pkg/model/mlocation"
	"github.com/aislelist/aislelist/pkg/model/mproduct"
	"gopkg.in/yaml.v3"
)

// Seed is the YAML layout accepted by ImportYAML:
//
//	locations:
//	  - name: Corner Shop
//	    type: shop
//	    filter: needed
//	    show_default_aisle: true
//	    loyalty_card: {name: Points, number: "0042"}
//	    aisles:
//	      - name: Produce
//	        products:
//	          - {name: Apple, in_stock: false, qty: 2, price: 0.5}
//	      - name: Uncategorized
//	        default: true
//
// Aisles and products are ranked in file order. Products are shared by
// name, so listing one in two locations links the same product.
type Seed struct {
	Locations []SeedLocation `yaml:"locations"`
}

type SeedLocation struct {
	Name             string      `yaml:"name"`
	Type             string      `yaml:"type"`
	Filter           string      `yaml:"filter"`
	ShowDefaultAisle *bool       `yaml:"show_default_aisle"`
	LoyaltyCard      *SeedCard   `yaml:"loyalty_card"`
	Aisles           []SeedAisle `yaml:"aisles"`
}

type SeedCard struct {
	Name   string `yaml:"name"`
	Number string `yaml:"number"`
}

type SeedAisle struct {
	Name      string        `yaml:"name"`
	Default   bool          `yaml:"default"`
	Collapsed bool          `yaml:"collapsed"`
	Products  []SeedProduct `yaml:"products"`
}

type SeedProduct struct {
	Name    string  `yaml:"name"`
	InStock bool    `yaml:"in_stock"`
	Qty     *int    `yaml:"qty"`
	Price   float64 `yaml:"price"`
}

// ParseSeed decodes and validates a seed document.
func ParseSeed(r io.Reader) (*Seed, error) {
	var seed Seed
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil {
		if errors.Is(err, io.EOF) {
			return &seed, nil
		}
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	for i, l := range seed.Locations {
		if l.Name == "" {
			return nil, fmt.Errorf("location #%d has no name: %w", i+1, errmap.ErrValidation)
		}
		for _, a := range l.Aisles {
			if a.Name == "" {
				return nil, fmt.Errorf("location %q has an unnamed aisle: %w", l.Name, errmap.ErrValidation)
			}
		}
	}
	return &seed, nil
}

// ImportYAML loads a seed document in a single transaction and returns the
// ids of the created locations.
func (s *Store) ImportYAML(ctx context.Context, r io.Reader) ([]int64, error) {
	seed, err := ParseSeed(r)
	if err != nil {
		return nil, err
	}

	var created []int64
	err = s.write(ctx, "import", func(w *Writer) ([]int64, error) {
		for _, sl := range seed.Locations {
			id, err := importLocation(ctx, w, sl)
			if err != nil {
				return nil, fmt.Errorf("location %q: %w", sl.Name, err)
			}
			created = append(created, id)
		}
		return created, nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "seed imported", "locations", len(created))
	return created, nil
}

func importLocation(ctx context.Context, w *Writer, sl SeedLocation) (int64, error) {
	loc := mlocation.Location{Name: sl.Name, ShowDefaultAisle: true, DefaultFilter: mlocation.FilterTypeNeeded}
	if sl.Type != "" {
		t, err := mlocation.ParseLocationType(sl.Type)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", err, errmap.ErrValidation)
		}
		loc.Type = t
	}
	if sl.Filter != "" {
		f, err := mlocation.ParseFilterType(sl.Filter)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", err, errmap.ErrValidation)
		}
		loc.DefaultFilter = f
	}
	if sl.ShowDefaultAisle != nil {
		loc.ShowDefaultAisle = *sl.ShowDefaultAisle
	}
	if _, err := w.CreateLocation(ctx, &loc); err != nil {
		return 0, err
	}

	if sl.LoyaltyCard != nil {
		card := mlocation.LoyaltyCard{LocationID: loc.ID, Name: sl.LoyaltyCard.Name, CardNumber: sl.LoyaltyCard.Number}
		if _, err := w.SetLoyaltyCard(ctx, &card); err != nil {
			return 0, err
		}
	}

	for i, sa := range sl.Aisles {
		aisle := maisle.Aisle{
			LocationID: loc.ID,
			Name:       sa.Name,
			Rank:       i + 1,
			IsDefault:  sa.Default,
			Expanded:   !sa.Collapsed,
		}
		if _, err := w.CreateAisle(ctx, &aisle); err != nil {
			return 0, err
		}
		for j, sp := range sa.Products {
			product, err := findOrCreateProduct(ctx, w, sp)
			if err != nil {
				return 0, err
			}
			ap := maisle.AisleProduct{AisleID: aisle.ID, Rank: j + 1, Product: product}
			if _, err := w.AddProductToAisle(ctx, &ap); err != nil {
				return 0, err
			}
		}
	}
	return loc.ID, nil
}

func findOrCreateProduct(ctx context.Context, w *Writer, sp SeedProduct) (mproduct.Product, error) {
	existing, err := w.queries.getProductByName(ctx, sp.Name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return mproduct.Product{}, err
	}

	p := mproduct.Product{Name: sp.Name, InStock: sp.InStock, QtyNeeded: 1, Price: sp.Price}
	if sp.Qty != nil {
		p.QtyNeeded = *sp.Qty
	}
	if err := w.CreateProduct(ctx, &p); err != nil {
		return mproduct.Product{}, err
	}
	return p, nil
}
