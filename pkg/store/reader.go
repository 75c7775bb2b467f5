package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/aislelist/aislelist/pkg/errmap"
	"github.com/aislelist/aislelist/pkg/model/maisle"
	"github.com/aislelist/aislelist/pkg/model/mlocation"
	"github.com/aislelist/aislelist/pkg/model/mproduct"
)

const prefShowEmptyAisles = "show_empty_aisles"

type Reader struct {
	queries *queries
	logger  *slog.Logger
}

func NewReader(db DBTX, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{queries: newQueries(db), logger: logger}
}

// GetLocation assembles the full snapshot of a location: its aisles in rank
// order, each holding its products in rank order.
func (r *Reader) GetLocation(ctx context.Context, id int64) (*mlocation.Location, error) {
	loc, err := r.queries.getLocation(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.DebugContext(ctx, "location not found", "location_id", id)
			return nil, fmt.Errorf("location %d: %w", id, errmap.ErrInvalidLocation)
		}
		return nil, err
	}

	aisles, err := r.queries.listAisles(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list aisles: %w", err)
	}
	products, err := r.queries.listLocationProducts(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	index := make(map[int64]int, len(aisles))
	for i, a := range aisles {
		index[a.ID] = i
	}
	for _, ap := range products {
		if i, ok := index[ap.AisleID]; ok {
			aisles[i].Products = append(aisles[i].Products, ap)
		}
	}
	loc.Aisles = aisles
	return &loc, nil
}

// FindLocation resolves a location by exact name.
func (r *Reader) FindLocation(ctx context.Context, name string) (int64, error) {
	id, err := r.queries.getLocationIDByName(ctx, name)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("location %q: %w", name, errmap.ErrInvalidLocation)
	}
	return id, err
}

// ListLocations returns every location without its aisles.
func (r *Reader) ListLocations(ctx context.Context) ([]mlocation.Location, error) {
	return r.queries.listLocations(ctx)
}

// GetAisle returns nil, nil when the aisle does not exist.
func (r *Reader) GetAisle(ctx context.Context, id int64) (*maisle.Aisle, error) {
	a, err := r.queries.getAisle(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *Reader) GetAisles(ctx context.Context, locationID int64) ([]maisle.Aisle, error) {
	return r.queries.listAisles(ctx, locationID)
}

func (r *Reader) GetAisleProducts(ctx context.Context, aisleID int64) ([]maisle.AisleProduct, error) {
	return r.queries.listAisleProducts(ctx, aisleID)
}

// GetProduct returns nil, nil when the product does not exist.
func (r *Reader) GetProduct(ctx context.Context, id int64) (*mproduct.Product, error) {
	p, err := r.queries.getProduct(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// LoyaltyCardForLocation returns nil, nil when no card is linked.
func (r *Reader) LoyaltyCardForLocation(ctx context.Context, locationID int64) (*mlocation.LoyaltyCard, error) {
	c, err := r.queries.getLoyaltyCard(ctx, locationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// ShowEmptyAisles reads the stored preference, false when never set.
func (r *Reader) ShowEmptyAisles(ctx context.Context) (bool, error) {
	v, err := r.queries.getPreference(ctx, prefShowEmptyAisles)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return strconv.ParseBool(v)
}
