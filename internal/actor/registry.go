// Package actor generalizes the worker-pool-plus-tomb pattern the teacher
// used to supervise TCP connection handlers into a registry of per-symbol
// actors: one *engine.OrderBook and one single-consumer goroutine per
// canonical trading symbol. Submitting a closure to a symbol's actor is how
// every external operation in spec.md §6 gets serialized per spec.md §5:
// calls to the same symbol are admitted and observed in submission order,
// while distinct symbols run fully concurrently.
package actor

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"matchbook/internal/engine"
)

const taskQueueSize = 256

// task is a unit of work submitted to a symbol's actor goroutine.
type task struct {
	run  func()
	done chan struct{}
}

// symbolActor owns one OrderBook and the single goroutine allowed to mutate
// it. All access to book goes through run, never directly.
type symbolActor struct {
	canonical string
	book      *engine.OrderBook
	tasks     chan task
}

func newSymbolActor(canonical string) *symbolActor {
	return &symbolActor{
		canonical: canonical,
		book:      engine.NewOrderBook(),
		tasks:     make(chan task, taskQueueSize),
	}
}

// run is the actor's goroutine body, supervised by the registry's tomb. It
// drains tasks one at a time for as long as the tomb is alive, the same
// "select on t.Dying() vs. work channel" shape as the teacher's worker pool.
func (s *symbolActor) run(t *tomb.Tomb) error {
	log.Info().Str("symbol", s.canonical).Msg("symbol actor starting")
	for {
		select {
		case <-t.Dying():
			return nil
		case tk := <-s.tasks:
			tk.run()
			close(tk.done)
		}
	}
}

// submit enqueues fn and blocks until it has run, giving callers a simple
// synchronous call shape over the serialized actor.
func (s *symbolActor) submit(fn func()) {
	done := make(chan struct{})
	s.tasks <- task{run: fn, done: done}
	<-done
}

// Registry lazily creates one symbolActor per canonical symbol
// ("{baseAsset}_{quoteAsset}", per spec.md §6) and dispatches every external
// operation onto the right one.
type Registry struct {
	mu      sync.Mutex
	symbols map[string]*symbolActor
	t       *tomb.Tomb
}

// NewRegistry constructs a registry whose actor goroutines are supervised by t.
func NewRegistry(t *tomb.Tomb) *Registry {
	return &Registry{
		symbols: make(map[string]*symbolActor),
		t:       t,
	}
}

// Canonical builds the "{baseAsset}_{quoteAsset}" symbol spec.md §6 specifies.
func Canonical(baseAsset, quoteAsset string) string {
	return fmt.Sprintf("%s_%s", baseAsset, quoteAsset)
}

func (r *Registry) actorFor(canonical string) *symbolActor {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.symbols[canonical]
	if !ok {
		a = newSymbolActor(canonical)
		r.symbols[canonical] = a
		r.t.Go(func() error { return a.run(r.t) })
	}
	return a
}

// existingActorFor looks up a symbol's actor without creating one, for read
// operations that should report "not found" rather than materialize a book.
func (r *Registry) existingActorFor(canonical string) (*symbolActor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.symbols[canonical]
	return a, ok
}

// ErrSymbolNotFound is returned by CancelOrder, GetOrder and Snapshot against
// a symbol that has never had an order registered; GetBestOrder reports
// found=false with a nil error instead.
var ErrSymbolNotFound = fmt.Errorf("symbol not found")

// RegisterOrder submits req to the symbol's actor and returns the match result.
func (r *Registry) RegisterOrder(baseAsset, quoteAsset string, req engine.OrderRequest) (*engine.MatchResult, error) {
	a := r.actorFor(Canonical(baseAsset, quoteAsset))
	var result *engine.MatchResult
	var err error
	a.submit(func() {
		result, err = a.book.ProcessOrder(req)
	})
	return result, err
}

// CancelOrder submits a cancellation to the symbol's actor.
func (r *Registry) CancelOrder(baseAsset, quoteAsset string, side engine.Side, orderID uint64) (engine.OrderView, error) {
	canonical := Canonical(baseAsset, quoteAsset)
	a, ok := r.existingActorFor(canonical)
	if !ok {
		return engine.OrderView{}, ErrSymbolNotFound
	}
	var view engine.OrderView
	var err error
	a.submit(func() {
		view, err = a.book.CancelOrder(side, orderID)
	})
	return view, err
}

// GetOrder searches the symbol's book for orderID.
func (r *Registry) GetOrder(baseAsset, quoteAsset string, orderID uint64) (engine.OrderView, bool, error) {
	canonical := Canonical(baseAsset, quoteAsset)
	a, ok := r.existingActorFor(canonical)
	if !ok {
		return engine.OrderView{}, false, ErrSymbolNotFound
	}
	var view engine.OrderView
	var found bool
	a.submit(func() {
		view, found = a.book.GetOrder(orderID)
	})
	return view, found, nil
}

// GetBestOrder returns the head order resting at the best price on side.
func (r *Registry) GetBestOrder(baseAsset, quoteAsset string, side engine.Side) (engine.OrderView, bool, error) {
	canonical := Canonical(baseAsset, quoteAsset)
	a, ok := r.existingActorFor(canonical)
	if !ok {
		return engine.OrderView{}, false, nil
	}
	var view engine.OrderView
	var found bool
	a.submit(func() {
		view, found = a.book.GetBestOrder(side)
	})
	return view, found, nil
}

// Snapshot returns the aggregated book view for symbol ("{base}_{quote}").
func (r *Registry) Snapshot(symbol string) (engine.Snapshot, error) {
	a, ok := r.existingActorFor(symbol)
	if !ok {
		return engine.Snapshot{}, ErrSymbolNotFound
	}
	var snap engine.Snapshot
	a.submit(func() {
		snap = a.book.Snapshot(symbol)
	})
	return snap, nil
}
