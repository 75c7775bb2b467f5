package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/aislelist/aislelist/pkg/model/maisle"
	"github.com/aislelist/aislelist/pkg/model/mlocation"
	"github.com/aislelist/aislelist/pkg/model/mproduct"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type queries struct {
	db DBTX
}

func newQueries(db DBTX) *queries {
	return &queries{db: db}
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		return strings.Contains(se.Error(), "UNIQUE")
	}
	return false
}

const getLocation = `
SELECT id, name, type, default_filter, show_default_aisle
FROM locations WHERE id = ?`

func (q *queries) getLocation(ctx context.Context, id int64) (mlocation.Location, error) {
	var l mlocation.Location
	err := q.db.QueryRowContext(ctx, getLocation, id).
		Scan(&l.ID, &l.Name, &l.Type, &l.DefaultFilter, &l.ShowDefaultAisle)
	return l, err
}

const getLocationByName = `SELECT id FROM locations WHERE name = ?`

func (q *queries) getLocationIDByName(ctx context.Context, name string) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, getLocationByName, name).Scan(&id)
	return id, err
}

const listLocations = `
SELECT id, name, type, default_filter, show_default_aisle
FROM locations ORDER BY name, id`

func (q *queries) listLocations(ctx context.Context) ([]mlocation.Location, error) {
	rows, err := q.db.QueryContext(ctx, listLocations)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []mlocation.Location
	for rows.Next() {
		var l mlocation.Location
		if err := rows.Scan(&l.ID, &l.Name, &l.Type, &l.DefaultFilter, &l.ShowDefaultAisle); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

const aisleColumns = `id, location_id, name, rank, is_default, expanded`

func scanAisle(row interface{ Scan(...any) error }) (maisle.Aisle, error) {
	var a maisle.Aisle
	err := row.Scan(&a.ID, &a.LocationID, &a.Name, &a.Rank, &a.IsDefault, &a.Expanded)
	return a, err
}

func (q *queries) getAisle(ctx context.Context, id int64) (maisle.Aisle, error) {
	return scanAisle(q.db.QueryRowContext(ctx, `SELECT `+aisleColumns+` FROM aisles WHERE id = ?`, id))
}

func (q *queries) getDefaultAisle(ctx context.Context, locationID int64) (maisle.Aisle, error) {
	return scanAisle(q.db.QueryRowContext(ctx,
		`SELECT `+aisleColumns+` FROM aisles WHERE location_id = ? AND is_default = 1`, locationID))
}

func (q *queries) listAisles(ctx context.Context, locationID int64) ([]maisle.Aisle, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+aisleColumns+` FROM aisles WHERE location_id = ? ORDER BY rank, id`, locationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []maisle.Aisle
	for rows.Next() {
		a, err := scanAisle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

const aisleProductSelect = `
SELECT ap.id, ap.rank, ap.aisle_id, p.id, p.name, p.in_stock, p.qty_needed, p.price
FROM aisle_products ap
JOIN products p ON p.id = ap.product_id
JOIN aisles a ON a.id = ap.aisle_id`

func (q *queries) queryAisleProducts(ctx context.Context, where string, arg int64) ([]maisle.AisleProduct, error) {
	rows, err := q.db.QueryContext(ctx, aisleProductSelect+` WHERE `+where+` ORDER BY ap.rank, ap.id`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []maisle.AisleProduct
	for rows.Next() {
		var ap maisle.AisleProduct
		p := &ap.Product
		if err := rows.Scan(&ap.ID, &ap.Rank, &ap.AisleID, &p.ID, &p.Name, &p.InStock, &p.QtyNeeded, &p.Price); err != nil {
			return nil, err
		}
		out = append(out, ap)
	}
	return out, rows.Err()
}

func (q *queries) listAisleProducts(ctx context.Context, aisleID int64) ([]maisle.AisleProduct, error) {
	return q.queryAisleProducts(ctx, `ap.aisle_id = ?`, aisleID)
}

func (q *queries) listLocationProducts(ctx context.Context, locationID int64) ([]maisle.AisleProduct, error) {
	return q.queryAisleProducts(ctx, `a.location_id = ?`, locationID)
}

func (q *queries) getProduct(ctx context.Context, id int64) (mproduct.Product, error) {
	var p mproduct.Product
	err := q.db.QueryRowContext(ctx,
		`SELECT id, name, in_stock, qty_needed, price FROM products WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.InStock, &p.QtyNeeded, &p.Price)
	return p, err
}

func (q *queries) getProductByName(ctx context.Context, name string) (mproduct.Product, error) {
	var p mproduct.Product
	err := q.db.QueryRowContext(ctx,
		`SELECT id, name, in_stock, qty_needed, price FROM products WHERE name = ?`, name).
		Scan(&p.ID, &p.Name, &p.InStock, &p.QtyNeeded, &p.Price)
	return p, err
}

// productLocations lists every location showing productID.
func (q *queries) productLocations(ctx context.Context, productID int64) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, `
SELECT DISTINCT a.location_id
FROM aisle_products ap JOIN aisles a ON a.id = ap.aisle_id
WHERE ap.product_id = ?`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (q *queries) productInLocation(ctx context.Context, locationID, productID int64) (bool, error) {
	var found bool
	err := q.db.QueryRowContext(ctx, `
SELECT EXISTS (
  SELECT 1 FROM aisle_products ap JOIN aisles a ON a.id = ap.aisle_id
  WHERE a.location_id = ? AND ap.product_id = ?
)`, locationID, productID).Scan(&found)
	return found, err
}

func (q *queries) aisleLocation(ctx context.Context, aisleID int64) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, `SELECT location_id FROM aisles WHERE id = ?`, aisleID).Scan(&id)
	return id, err
}

func (q *queries) nextAisleRank(ctx context.Context, locationID int64) (int, error) {
	var rank int
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(rank), 0) + 1 FROM aisles WHERE location_id = ?`, locationID).
		Scan(&rank)
	return rank, err
}

func (q *queries) nextProductRank(ctx context.Context, aisleID int64) (int, error) {
	var rank int
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(rank), 0) + 1 FROM aisle_products WHERE aisle_id = ?`, aisleID).
		Scan(&rank)
	return rank, err
}

func (q *queries) getLoyaltyCard(ctx context.Context, locationID int64) (mlocation.LoyaltyCard, error) {
	var c mlocation.LoyaltyCard
	err := q.db.QueryRowContext(ctx,
		`SELECT id, location_id, name, card_number FROM loyalty_cards WHERE location_id = ?`, locationID).
		Scan(&c.ID, &c.LocationID, &c.Name, &c.CardNumber)
	return c, err
}

func (q *queries) getPreference(ctx context.Context, key string) (string, error) {
	var v string
	err := q.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&v)
	return v, err
}

func (q *queries) setPreference(ctx context.Context, key, value string) error {
	_, err := q.db.ExecContext(ctx, `
INSERT INTO preferences (key, value) VALUES (?, ?)
ON CONFLICT (key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}
