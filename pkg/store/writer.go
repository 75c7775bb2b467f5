package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/aislelist/aislelist/pkg/errmap"
	"github.com/aislelist/aislelist/pkg/model/maisle"
	"github.com/aislelist/aislelist/pkg/model/mlocation"
	"github.com/aislelist/aislelist/pkg/model/mproduct"
	"github.com/aislelist/aislelist/pkg/movable"
)

// Writer runs mutations against a single transaction. Each method returns
// the ids of the locations whose snapshot it changed.
type Writer struct {
	queries *queries
}

func NewWriter(tx DBTX) *Writer {
	return &Writer{queries: newQueries(tx)}
}

func (w *Writer) CreateLocation(ctx context.Context, l *mlocation.Location) ([]int64, error) {
	res, err := w.queries.db.ExecContext(ctx,
		`INSERT INTO locations (name, type, default_filter, show_default_aisle) VALUES (?, ?, ?, ?)`,
		l.Name, int(l.Type), int(l.DefaultFilter), l.ShowDefaultAisle)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("location %q already exists: %w", l.Name, errmap.ErrValidation)
		}
		return nil, err
	}
	if l.ID, err = res.LastInsertId(); err != nil {
		return nil, err
	}
	return []int64{l.ID}, nil
}

// CreateAisle appends a to its location. A zero Rank places it after the
// existing aisles. A location has at most one default aisle.
func (w *Writer) CreateAisle(ctx context.Context, a *maisle.Aisle) ([]int64, error) {
	if _, err := w.queries.getLocation(ctx, a.LocationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("location %d: %w", a.LocationID, errmap.ErrInvalidLocation)
		}
		return nil, err
	}
	if a.IsDefault {
		dflt, err := w.queries.getDefaultAisle(ctx, a.LocationID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return nil, err
		default:
			return nil, fmt.Errorf("location %d already has a default aisle %q: %w", a.LocationID, dflt.Name, errmap.ErrValidation)
		}
	}
	if a.Rank == 0 {
		rank, err := w.queries.nextAisleRank(ctx, a.LocationID)
		if err != nil {
			return nil, err
		}
		a.Rank = rank
	}

	res, err := w.queries.db.ExecContext(ctx,
		`INSERT INTO aisles (location_id, name, rank, is_default, expanded) VALUES (?, ?, ?, ?, ?)`,
		a.LocationID, a.Name, a.Rank, a.IsDefault, a.Expanded)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("aisle %q: %w", a.Name, errmap.ErrDuplicateAisleName)
		}
		return nil, err
	}
	if a.ID, err = res.LastInsertId(); err != nil {
		return nil, err
	}
	return []int64{a.LocationID}, nil
}

func (w *Writer) CreateProduct(ctx context.Context, p *mproduct.Product) error {
	if p.QtyNeeded < 0 {
		return fmt.Errorf("quantity %d: %w", p.QtyNeeded, errmap.ErrValidation)
	}
	res, err := w.queries.db.ExecContext(ctx,
		`INSERT INTO products (name, in_stock, qty_needed, price) VALUES (?, ?, ?, ?)`,
		p.Name, p.InStock, p.QtyNeeded, p.Price)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("product %q: %w", p.Name, errmap.ErrDuplicateProductName)
		}
		return err
	}
	p.ID, err = res.LastInsertId()
	return err
}

// AddProductToAisle links an existing product to an aisle. A zero Rank
// places it after the aisle's products. A product sits in at most one aisle
// per location.
func (w *Writer) AddProductToAisle(ctx context.Context, ap *maisle.AisleProduct) ([]int64, error) {
	locationID, err := w.queries.aisleLocation(ctx, ap.AisleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("aisle %d does not exist: %w", ap.AisleID, errmap.ErrValidation)
		}
		return nil, err
	}
	listed, err := w.queries.productInLocation(ctx, locationID, ap.Product.ID)
	if err != nil {
		return nil, err
	}
	if listed {
		return nil, fmt.Errorf("product %d is already in location %d: %w", ap.Product.ID, locationID, errmap.ErrValidation)
	}
	if ap.Rank == 0 {
		if ap.Rank, err = w.queries.nextProductRank(ctx, ap.AisleID); err != nil {
			return nil, err
		}
	}
	res, err := w.queries.db.ExecContext(ctx,
		`INSERT INTO aisle_products (aisle_id, product_id, rank) VALUES (?, ?, ?)`,
		ap.AisleID, ap.Product.ID, ap.Rank)
	if err != nil {
		return nil, err
	}
	if ap.ID, err = res.LastInsertId(); err != nil {
		return nil, err
	}
	return []int64{locationID}, nil
}

func (w *Writer) SetLoyaltyCard(ctx context.Context, c *mlocation.LoyaltyCard) ([]int64, error) {
	err := w.queries.db.QueryRowContext(ctx, `
INSERT INTO loyalty_cards (location_id, name, card_number) VALUES (?, ?, ?)
ON CONFLICT (location_id) DO UPDATE SET name = excluded.name, card_number = excluded.card_number
RETURNING id`, c.LocationID, c.Name, c.CardNumber).Scan(&c.ID)
	if err != nil {
		return nil, err
	}
	return []int64{c.LocationID}, nil
}

func (w *Writer) UpdateAisleRank(ctx context.Context, u movable.AisleRankUpdate) ([]int64, error) {
	locationID, err := w.queries.aisleLocation(ctx, u.AisleID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if _, err := w.queries.db.ExecContext(ctx, `UPDATE aisles SET rank = ? WHERE id = ?`, u.Rank, u.AisleID); err != nil {
		return nil, err
	}
	return []int64{locationID}, nil
}

func (w *Writer) UpdateProductRank(ctx context.Context, u movable.ProductRankUpdate) ([]int64, error) {
	locationID, err := w.queries.aisleLocation(ctx, u.AisleID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	res, err := w.queries.db.ExecContext(ctx,
		`UPDATE aisle_products SET rank = ?, aisle_id = ? WHERE id = ?`, u.Rank, u.AisleID, u.AisleProductID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return []int64{locationID}, nil
}

// UpdateRanks applies a full renumbering.
func (w *Writer) UpdateRanks(ctx context.Context, aisles []movable.AisleRankUpdate, products []movable.ProductRankUpdate) ([]int64, error) {
	var touched []int64
	for _, u := range aisles {
		ids, err := w.UpdateAisleRank(ctx, u)
		if err != nil {
			return nil, fmt.Errorf("aisle %d: %w", u.AisleID, err)
		}
		touched = append(touched, ids...)
	}
	for _, u := range products {
		ids, err := w.UpdateProductRank(ctx, u)
		if err != nil {
			return nil, fmt.Errorf("aisle product %d: %w", u.AisleProductID, err)
		}
		touched = append(touched, ids...)
	}
	slices.Sort(touched)
	return slices.Compact(touched), nil
}

// RemoveAisle deletes a non-default aisle. Its products move to the
// location's default aisle, or are unlinked when there is none. A product
// the default aisle already holds keeps its place there.
func (w *Writer) RemoveAisle(ctx context.Context, aisleID int64) ([]int64, error) {
	a, err := w.queries.getAisle(ctx, aisleID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if a.IsDefault {
		return nil, fmt.Errorf("aisle %q: %w", a.Name, errmap.ErrDeleteDefaultAisle)
	}

	dflt, err := w.queries.getDefaultAisle(ctx, a.LocationID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, err
	default:
		if _, err := w.queries.db.ExecContext(ctx, `
DELETE FROM aisle_products
WHERE aisle_id = ? AND product_id IN (SELECT product_id FROM aisle_products WHERE aisle_id = ?)`,
			a.ID, dflt.ID); err != nil {
			return nil, err
		}
		next, err := w.queries.nextProductRank(ctx, dflt.ID)
		if err != nil {
			return nil, err
		}
		if _, err := w.queries.db.ExecContext(ctx,
			`UPDATE aisle_products SET aisle_id = ?, rank = rank + ? WHERE aisle_id = ?`,
			dflt.ID, next-1, a.ID); err != nil {
			return nil, err
		}
	}

	if _, err := w.queries.db.ExecContext(ctx, `DELETE FROM aisles WHERE id = ?`, a.ID); err != nil {
		return nil, err
	}
	return []int64{a.LocationID}, nil
}

func (w *Writer) RemoveProduct(ctx context.Context, productID int64) ([]int64, error) {
	locations, err := w.queries.productLocations(ctx, productID)
	if err != nil {
		return nil, err
	}
	if _, err := w.queries.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, productID); err != nil {
		return nil, err
	}
	return locations, nil
}

func (w *Writer) UpdateProductStock(ctx context.Context, productID int64, inStock bool) ([]int64, error) {
	return w.updateProduct(ctx, productID, `UPDATE products SET in_stock = ? WHERE id = ?`, inStock)
}

func (w *Writer) UpdateProductQty(ctx context.Context, productID int64, qty int) ([]int64, error) {
	if qty < 0 {
		return nil, fmt.Errorf("quantity %d: %w", qty, errmap.ErrValidation)
	}
	return w.updateProduct(ctx, productID, `UPDATE products SET qty_needed = ? WHERE id = ?`, qty)
}

func (w *Writer) updateProduct(ctx context.Context, productID int64, stmt string, value any) ([]int64, error) {
	res, err := w.queries.db.ExecContext(ctx, stmt, value, productID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return w.queries.productLocations(ctx, productID)
}

func (w *Writer) UpdateAisleExpanded(ctx context.Context, aisleID int64, expanded bool) ([]int64, error) {
	locationID, err := w.queries.aisleLocation(ctx, aisleID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if _, err := w.queries.db.ExecContext(ctx, `UPDATE aisles SET expanded = ? WHERE id = ?`, expanded, aisleID); err != nil {
		return nil, err
	}
	return []int64{locationID}, nil
}

func (w *Writer) SetShowEmptyAisles(ctx context.Context, show bool) error {
	return w.queries.setPreference(ctx, prefShowEmptyAisles, strconv.FormatBool(show))
}

// RemoveLocation deletes a location with its aisles and loyalty card.
// Products stay, since other locations may list them.
func (w *Writer) RemoveLocation(ctx context.Context, locationID int64) ([]int64, error) {
	res, err := w.queries.db.ExecContext(ctx, `DELETE FROM locations WHERE id = ?`, locationID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return []int64{locationID}, nil
}
