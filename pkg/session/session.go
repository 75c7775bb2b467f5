// Package session drives one list view: it follows a location's snapshots,
// owns the filter parameters, and publishes the materialized list as a
// DisplayState stream.
//
// All state changes run on a serial dispatcher, so a Controller is safe for
// concurrent use. Search and quantity edits are debounced, each on its own
// single-slot job.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aislelist/aislelist/pkg/clock"
	"github.com/aislelist/aislelist/pkg/debounce"
	"github.com/aislelist/aislelist/pkg/displayitem"
	"github.com/aislelist/aislelist/pkg/eventstream"
	"github.com/aislelist/aislelist/pkg/eventstream/memory"
	"github.com/aislelist/aislelist/pkg/listfilter"
	"github.com/aislelist/aislelist/pkg/materialize"
	"github.com/aislelist/aislelist/pkg/model/maisle"
	"github.com/aislelist/aislelist/pkg/model/mlocation"
	"github.com/aislelist/aislelist/pkg/movable"
	"github.com/aislelist/aislelist/pkg/serialdispatch"
	"github.com/oklog/ulid/v2"
)

// Repository is the persistence the controller reads snapshots from and
// writes through. Writes surface again as new snapshots on LocationStream.
type Repository interface {
	movable.Repository

	// LocationStream sends the current snapshot, then one per change, until
	// ctx is done. A nil snapshot means the location no longer exists.
	LocationStream(ctx context.Context, locationID int64) (<-chan *mlocation.Location, error)
	GetAisle(ctx context.Context, aisleID int64) (*maisle.Aisle, error)
	RemoveAisle(ctx context.Context, aisle maisle.Aisle) error
	RemoveProduct(ctx context.Context, productID int64) error
	UpdateProductStock(ctx context.Context, productID int64, inStock bool) error
	// UpdateProductQty fails with errmap.ErrValidation for negative qty.
	UpdateProductQty(ctx context.Context, productID int64, qty int) error
	UpdateAisleExpanded(ctx context.Context, aisleID int64, expanded bool) error
	SortLocationByName(ctx context.Context, locationID int64) error
	LoyaltyCardForLocation(ctx context.Context, locationID int64) (*mlocation.LoyaltyCard, error)
}

type Preferences interface {
	SetShowEmptyAisles(ctx context.Context, show bool) error
}

type Option func(*Controller)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

func WithClock(clk clock.Clock) Option {
	return func(c *Controller) { c.clock = clk }
}

// WithDebounce sets the delay used for search and quantity edits.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) { c.delay = d }
}

func WithPreferences(p Preferences) Option {
	return func(c *Controller) { c.prefs = p }
}

func WithMatchMode(m listfilter.MatchMode) Option {
	return func(c *Controller) { c.matchMode = m }
}

// WithCollapsedProducts lists the products of collapsed aisles too. Aisle
// headers still report whether they are expanded.
func WithCollapsedProducts() Option {
	return func(c *Controller) { c.showAllProducts = true }
}

type Controller struct {
	id        ulid.ULID
	repo      Repository
	prefs     Preferences
	logger    *slog.Logger
	clock     clock.Clock
	delay     time.Duration
	matchMode listfilter.MatchMode

	showAllProducts bool

	ctx    context.Context
	cancel context.CancelFunc

	dispatcher *serialdispatch.Dispatcher
	states     eventstream.SyncStreamer[int64, DisplayState]
	searchJob  *debounce.Job
	qtyJob     *debounce.Job
	watchers   sync.WaitGroup
	closeOnce  sync.Once

	// Owned by the dispatcher.
	locationID int64
	location   *mlocation.Location
	params     listfilter.Parameters
	defaults   listfilter.Parameters
	lastItems  []displayitem.Item
	hydrateGen uint64
	subCancel  context.CancelFunc

	stateMu sync.RWMutex
	state   DisplayState
}

// New returns a Controller in the Empty state. Call Hydrate to start
// following a location and Close to release it.
func New(repo Repository, opts ...Option) *Controller {
	c := &Controller{
		id:     ulid.Make(),
		repo:   repo,
		logger: slog.Default(),
		clock:  clock.Real(),
		delay:  debounce.DefaultDelay,
		state:  emptyState(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("session", c.id.String())
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.dispatcher = serialdispatch.New(64)
	c.states = memory.NewInMemorySyncStreamer[int64, DisplayState]()
	c.searchJob = debounce.New(c.ctx, c.clock, c.delay)
	c.qtyJob = debounce.New(c.ctx, c.clock, c.delay)
	return c
}

// ID identifies the session in logs.
func (c *Controller) ID() ulid.ULID { return c.id }

// State returns the most recently published state.
func (c *Controller) State() DisplayState {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

// Subscribe streams every state published after the call. Events carry the
// hydrated location id as their topic.
func (c *Controller) Subscribe(ctx context.Context) (<-chan eventstream.Event[int64, DisplayState], error) {
	return c.states.Subscribe(ctx, nil)
}

// LastItems returns the list from the latest Updated state. It survives an
// Error state.
func (c *Controller) LastItems() []displayitem.Item {
	var items []displayitem.Item
	_ = c.dispatcher.Dispatch(func() error {
		items = c.lastItems
		return nil
	})
	return items
}

// Close stops the snapshot subscription and any pending debounced work,
// then closes every subscriber channel. It is safe to call more than once.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		c.cancel()
		c.searchJob.Cancel()
		c.qtyJob.Cancel()
		c.watchers.Wait()
		c.dispatcher.Close()
		c.states.Shutdown()
		c.logger.Debug("session closed")
	})
}

// publish must run on the dispatcher.
func (c *Controller) publish(state DisplayState) {
	c.stateMu.Lock()
	c.state = state
	c.stateMu.Unlock()
	c.states.Publish(c.locationID, state)
}

// render re-materializes the current snapshot and publishes it.
func (c *Controller) render() {
	items := materialize.Materialize(c.location, c.params)
	c.lastItems = items
	c.publish(updatedState(items))
}
