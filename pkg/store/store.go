// Package store is the SQLite persistence behind the list engine. Every
// committed write re-reads the affected locations and publishes their
// snapshots, which is what LocationStream subscribers observe.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aislelist/aislelist/pkg/errmap"
	"github.com/aislelist/aislelist/pkg/eventstream"
	"github.com/aislelist/aislelist/pkg/eventstream/memory"
	"github.com/aislelist/aislelist/pkg/model/maisle"
	"github.com/aislelist/aislelist/pkg/model/mlocation"
	"github.com/aislelist/aislelist/pkg/model/mproduct"
	"github.com/aislelist/aislelist/pkg/movable"
	"github.com/aislelist/aislelist/pkg/sort/sortbyname"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// CreateTables creates every table in schema.sql. It is idempotent.
func CreateTables(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

type Store struct {
	*Reader

	db       *sql.DB
	logger   *slog.Logger
	snapshot eventstream.SyncStreamer[int64, *mlocation.Location]
}

// DSN turns a file path into a modernc connection string with foreign keys
// enforced. Strings already starting with "file:" only get the pragmas
// appended.
func DSN(path string) string {
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Open connects to the database at path, creating tables as needed.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	s, err := New(ctx, db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database. The store pins it to one connection, so
// nothing may query db while a write transaction is open.
func New(ctx context.Context, db *sql.DB, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := CreateTables(ctx, db); err != nil {
		return nil, err
	}
	return &Store{
		Reader:   NewReader(db, logger),
		db:       db,
		logger:   logger,
		snapshot: memory.NewInMemorySyncStreamer[int64, *mlocation.Location](),
	}, nil
}

func (s *Store) DB() *sql.DB { return s.db }

// Close ends every LocationStream and closes the database.
func (s *Store) Close() error {
	s.snapshot.Shutdown()
	return s.db.Close()
}

// write runs fn in a transaction and, once committed, publishes a fresh
// snapshot for every location fn reports as touched.
func (s *Store) write(ctx context.Context, op string, fn func(w *Writer) ([]int64, error)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	touched, err := fn(NewWriter(tx))
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}
	s.publish(context.WithoutCancel(ctx), touched...)
	return nil
}

func (s *Store) publish(ctx context.Context, locationIDs ...int64) {
	seen := make(map[int64]struct{}, len(locationIDs))
	for _, id := range locationIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		loc, err := s.GetLocation(ctx, id)
		if errors.Is(err, errmap.ErrInvalidLocation) {
			s.snapshot.Publish(id, nil)
			continue
		}
		if err != nil {
			s.logger.WarnContext(ctx, "snapshot read failed", "location_id", id, "error", err)
			continue
		}
		s.snapshot.Publish(id, loc)
	}
}

func (s *Store) CreateLocation(ctx context.Context, l *mlocation.Location) error {
	return s.write(ctx, "create location", func(w *Writer) ([]int64, error) {
		return w.CreateLocation(ctx, l)
	})
}

func (s *Store) RemoveLocation(ctx context.Context, locationID int64) error {
	return s.write(ctx, "remove location", func(w *Writer) ([]int64, error) {
		return w.RemoveLocation(ctx, locationID)
	})
}

func (s *Store) CreateAisle(ctx context.Context, a *maisle.Aisle) error {
	return s.write(ctx, "create aisle", func(w *Writer) ([]int64, error) {
		return w.CreateAisle(ctx, a)
	})
}

func (s *Store) CreateProduct(ctx context.Context, p *mproduct.Product) error {
	return s.write(ctx, "create product", func(w *Writer) ([]int64, error) {
		return nil, w.CreateProduct(ctx, p)
	})
}

func (s *Store) AddProductToAisle(ctx context.Context, ap *maisle.AisleProduct) error {
	return s.write(ctx, "add product", func(w *Writer) ([]int64, error) {
		return w.AddProductToAisle(ctx, ap)
	})
}

func (s *Store) SetLoyaltyCard(ctx context.Context, c *mlocation.LoyaltyCard) error {
	return s.write(ctx, "set loyalty card", func(w *Writer) ([]int64, error) {
		return w.SetLoyaltyCard(ctx, c)
	})
}

func (s *Store) UpdateAisleRank(ctx context.Context, u movable.AisleRankUpdate) error {
	return s.write(ctx, "update aisle rank", func(w *Writer) ([]int64, error) {
		return w.UpdateAisleRank(ctx, u)
	})
}

func (s *Store) UpdateProductRank(ctx context.Context, u movable.ProductRankUpdate) error {
	return s.write(ctx, "update product rank", func(w *Writer) ([]int64, error) {
		return w.UpdateProductRank(ctx, u)
	})
}

func (s *Store) UpdateRanks(ctx context.Context, aisles []movable.AisleRankUpdate, products []movable.ProductRankUpdate) error {
	return s.write(ctx, "update ranks", func(w *Writer) ([]int64, error) {
		return w.UpdateRanks(ctx, aisles, products)
	})
}

func (s *Store) RemoveAisle(ctx context.Context, aisle maisle.Aisle) error {
	return s.write(ctx, "remove aisle", func(w *Writer) ([]int64, error) {
		return w.RemoveAisle(ctx, aisle.ID)
	})
}

func (s *Store) RemoveProduct(ctx context.Context, productID int64) error {
	return s.write(ctx, "remove product", func(w *Writer) ([]int64, error) {
		return w.RemoveProduct(ctx, productID)
	})
}

func (s *Store) UpdateProductStock(ctx context.Context, productID int64, inStock bool) error {
	return s.write(ctx, "update stock", func(w *Writer) ([]int64, error) {
		return w.UpdateProductStock(ctx, productID, inStock)
	})
}

func (s *Store) UpdateProductQty(ctx context.Context, productID int64, qty int) error {
	return s.write(ctx, "update quantity", func(w *Writer) ([]int64, error) {
		return w.UpdateProductQty(ctx, productID, qty)
	})
}

func (s *Store) UpdateAisleExpanded(ctx context.Context, aisleID int64, expanded bool) error {
	return s.write(ctx, "update expanded", func(w *Writer) ([]int64, error) {
		return w.UpdateAisleExpanded(ctx, aisleID, expanded)
	})
}

func (s *Store) SetShowEmptyAisles(ctx context.Context, show bool) error {
	return s.write(ctx, "set preference", func(w *Writer) ([]int64, error) {
		return nil, w.SetShowEmptyAisles(ctx, show)
	})
}

// SortLocationByName renumbers the location alphabetically in one
// transaction.
func (s *Store) SortLocationByName(ctx context.Context, locationID int64) error {
	plan, err := sortbyname.Run(ctx, s, locationID)
	if err != nil {
		return fmt.Errorf("sort location %d: %w", locationID, err)
	}
	s.logger.DebugContext(ctx, "location sorted",
		"location_id", locationID, "aisles", len(plan.Aisles), "products", len(plan.Products))
	return nil
}
