package session_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/aislelist/aislelist/pkg/errmap"
	"github.com/aislelist/aislelist/pkg/model/maisle"
	"github.com/aislelist/aislelist/pkg/model/mlocation"
	"github.com/aislelist/aislelist/pkg/movable"
)

// MockRepository keeps one location in memory and pushes a fresh snapshot
// to every open stream after each write, like the SQLite store does.
type MockRepository struct {
	mu      sync.Mutex
	loc     *mlocation.Location
	streams map[chan *mlocation.Location]struct{}
	card    *mlocation.LoyaltyCard

	removeAisleErr error

	aisleRanks      []movable.AisleRankUpdate
	productRanks    []movable.ProductRankUpdate
	qtyWrites       map[int64]int
	removedAisles   []int64
	removedProducts []int64
	sorted          []int64
}

func NewMockRepository(loc *mlocation.Location) *MockRepository {
	return &MockRepository{
		loc:       loc,
		streams:   make(map[chan *mlocation.Location]struct{}),
		qtyWrites: make(map[int64]int),
	}
}

func cloneLocation(loc *mlocation.Location) *mlocation.Location {
	if loc == nil {
		return nil
	}
	out := *loc
	out.Aisles = make([]maisle.Aisle, len(loc.Aisles))
	for i, a := range loc.Aisles {
		a.Products = append([]maisle.AisleProduct(nil), a.Products...)
		out.Aisles[i] = a
	}
	return &out
}

func (m *MockRepository) LocationStream(ctx context.Context, locationID int64) (<-chan *mlocation.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loc == nil || m.loc.ID != locationID {
		return nil, fmt.Errorf("location %d: %w", locationID, errmap.ErrInvalidLocation)
	}
	ch := make(chan *mlocation.Location, 16)
	ch <- cloneLocation(m.loc)
	m.streams[ch] = struct{}{}
	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.streams, ch)
		close(ch)
		m.mu.Unlock()
	}()
	return ch, nil
}

// pushLocked must be called with mu held.
func (m *MockRepository) pushLocked() {
	for ch := range m.streams {
		select {
		case ch <- cloneLocation(m.loc):
		default:
		}
	}
}

func (m *MockRepository) OpenStreams() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.streams)
}

func (m *MockRepository) UpdateAisleRank(ctx context.Context, u movable.AisleRankUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.aisleRanks = append(m.aisleRanks, u)
	return nil
}

func (m *MockRepository) UpdateProductRank(ctx context.Context, u movable.ProductRankUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.productRanks = append(m.productRanks, u)
	return nil
}

func (m *MockRepository) GetAisle(ctx context.Context, aisleID int64) (*maisle.Aisle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.loc.Aisles {
		if a.ID == aisleID {
			return &a, nil
		}
	}
	return nil, nil
}

func (m *MockRepository) RemoveAisle(ctx context.Context, aisle maisle.Aisle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.removeAisleErr != nil {
		return m.removeAisleErr
	}
	m.removedAisles = append(m.removedAisles, aisle.ID)
	return nil
}

func (m *MockRepository) RemoveProduct(ctx context.Context, productID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removedProducts = append(m.removedProducts, productID)
	return nil
}

func (m *MockRepository) UpdateProductStock(ctx context.Context, productID int64, inStock bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.editProduct(productID, func(ap *maisle.AisleProduct) { ap.Product.InStock = inStock })
	m.pushLocked()
	return nil
}

func (m *MockRepository) UpdateProductQty(ctx context.Context, productID int64, qty int) error {
	if qty < 0 {
		return fmt.Errorf("quantity %d: %w", qty, errmap.ErrValidation)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.qtyWrites[productID] = qty
	m.editProduct(productID, func(ap *maisle.AisleProduct) { ap.Product.QtyNeeded = qty })
	m.pushLocked()
	return nil
}

func (m *MockRepository) UpdateAisleExpanded(ctx context.Context, aisleID int64, expanded bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.loc.Aisles {
		if m.loc.Aisles[i].ID == aisleID {
			m.loc.Aisles[i].Expanded = expanded
		}
	}
	m.pushLocked()
	return nil
}

func (m *MockRepository) SortLocationByName(ctx context.Context, locationID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sorted = append(m.sorted, locationID)
	return nil
}

func (m *MockRepository) LoyaltyCardForLocation(ctx context.Context, locationID int64) (*mlocation.LoyaltyCard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.card, nil
}

func (m *MockRepository) editProduct(productID int64, edit func(*maisle.AisleProduct)) {
	for i := range m.loc.Aisles {
		for j := range m.loc.Aisles[i].Products {
			if m.loc.Aisles[i].Products[j].Product.ID == productID {
				edit(&m.loc.Aisles[i].Products[j])
			}
		}
	}
}

// slowQtyRepository holds a write of blockQty until its context is
// cancelled, then fails with the context error. Other writes go through.
type slowQtyRepository struct {
	*MockRepository
	blockQty int
	started  chan struct{}
}

func newSlowQtyRepository(m *MockRepository, blockQty int) *slowQtyRepository {
	return &slowQtyRepository{MockRepository: m, blockQty: blockQty, started: make(chan struct{}, 1)}
}

func (r *slowQtyRepository) UpdateProductQty(ctx context.Context, productID int64, qty int) error {
	if qty != r.blockQty {
		return r.MockRepository.UpdateProductQty(ctx, productID, qty)
	}
	r.started <- struct{}{}
	<-ctx.Done()
	return fmt.Errorf("write product %d: %w", productID, ctx.Err())
}

type MockPreferences struct {
	mu     sync.Mutex
	values []bool
	err    error
}

func (p *MockPreferences) SetShowEmptyAisles(ctx context.Context, show bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.values = append(p.values, show)
	return nil
}
