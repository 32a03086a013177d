// Package catalog holds the product catalog view: the product store, the draft of a new
// product, the edit session and the render trigger, all owned by a single event loop.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/iyhunko/catalogo-prodotti/internal/metrics"
	"github.com/iyhunko/catalogo-prodotti/internal/model"
)

// Title is the name shown above the catalog.
const Title = "catalogo-prodotti"

const (
	ConfirmDeleteMessage      = "Confermi di voler eliminare questo prodotto?"
	UpdateFailedMessage       = "Errore aggiornamento prodotto"
	AvailabilityFailedMessage = "Errore aggiornamento disponibilità"
)

var (
	// ErrStopped is returned by every event method once Run has returned.
	ErrStopped = errors.New("catalog view stopped")

	// ErrProductNotFound is returned when an event refers to an id missing from the store.
	ErrProductNotFound = errors.New("product not found in catalog")

	// ErrNotEditing is returned when an edit event arrives with no open edit session.
	ErrNotEditing = errors.New("no edit session open")
)

// Gateway is the REST backend as seen by the view.
type Gateway interface {
	List(ctx context.Context) ([]model.Product, error)
	Create(ctx context.Context, product model.NewProduct) (model.Product, error)
	Update(ctx context.Context, id int64, patch model.ProductPatch) error
	Delete(ctx context.Context, id int64) error
}

// UI renders the view and talks to the user. All methods are called from the event loop,
// so they must not call back into the View; Alert and Confirm block it until the user answers.
type UI interface {
	Render(state State)
	Alert(message string)
	Confirm(message string) bool
}

// View is the catalog view. Every exported method is executed on the goroutine running Run,
// so the store is never mutated concurrently. Gateway calls run on their own goroutines and
// their continuations are queued back on the loop in completion order.
type View struct {
	gateway Gateway
	ui      UI

	events chan func(ctx context.Context)
	done   chan struct{}
	stop   sync.Once

	// owned by the event loop
	inflight int
	idle     []chan struct{}
	products []model.Product
	draft    Draft
	session  session
}

// New creates a View. Call Run to start its event loop.
func New(gateway Gateway, ui UI) *View {
	return &View{
		gateway: gateway,
		ui:      ui,
		events:  make(chan func(ctx context.Context)),
		done:    make(chan struct{}),
		session: newSession(),
	}
}

// Run loads the catalog and processes events until ctx is done. Continuations of gateway
// calls still in flight when Run returns are dropped.
func (v *View) Run(ctx context.Context) error {
	defer v.stop.Do(func() { close(v.done) })

	v.reload(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-v.events:
			fn(ctx)
		}
	}
}

// Settle blocks until no gateway call is in flight, counting the calls started by
// continuations. It waits for Run to start the loop and returns once Run has returned.
// It is safe to call from any number of goroutines.
func (v *View) Settle() {
	idle := make(chan struct{})
	err := v.dispatch(func(context.Context) error {
		if v.inflight == 0 {
			close(idle)
			return nil
		}
		v.idle = append(v.idle, idle)
		return nil
	})
	if err != nil {
		return
	}
	select {
	case <-idle:
	case <-v.done:
	}
}

// State returns a snapshot of the view.
func (v *View) State() (State, error) {
	var state State
	err := v.dispatch(func(context.Context) error {
		state = v.snapshot()
		return nil
	})
	return state, err
}

// Reload fetches the full product list and replaces the store with it.
func (v *View) Reload() error {
	return v.dispatch(func(ctx context.Context) error {
		v.reload(ctx)
		return nil
	})
}

// Add records the draft and creates the product when the draft is valid.
func (v *View) Add(name string, price float64) error {
	return v.dispatch(func(ctx context.Context) error {
		v.draft = Draft{Name: name, Price: price}
		if err := model.ValidateFields(name, price); err != nil {
			v.ui.Alert(model.InvalidProductMessage)
			v.render()
			return err
		}

		product := model.NewProduct{Name: name, Price: price, Available: true}
		var created model.Product
		v.async(ctx, func(ctx context.Context) (err error) {
			created, err = v.gateway.Create(ctx, product)
			return err
		}, func(ctx context.Context, err error) {
			if err != nil {
				slog.Error("failed to create product", slog.Any("err", err), slog.String("name", name))
				return
			}
			slog.Info("product added", slog.Int64("id", created.ID), slog.String("name", created.Name))
			v.draft = Draft{}
			v.reload(ctx)
		})
		return nil
	})
}

// Remove deletes the product after the user confirms. A zero id is ignored.
func (v *View) Remove(id int64) error {
	return v.dispatch(func(ctx context.Context) error {
		if id == 0 {
			return nil
		}
		if !v.ui.Confirm(ConfirmDeleteMessage) {
			return nil
		}

		v.async(ctx, func(ctx context.Context) error {
			return v.gateway.Delete(ctx, id)
		}, func(ctx context.Context, err error) {
			if err != nil {
				slog.Error("failed to delete product", slog.Any("err", err), slog.Int64("id", id))
				return
			}
			slog.Info("product deleted", slog.Int64("id", id))
			v.reload(ctx)
		})
		return nil
	})
}

// ToggleAvailability flips availability in the store at once and sends the change.
// A failed update restores the previous value and alerts the user.
func (v *View) ToggleAvailability(id int64) error {
	return v.dispatch(func(ctx context.Context) error {
		i := v.indexOf(id)
		if i < 0 {
			return ErrProductNotFound
		}
		previous := v.products[i].Available
		next := !previous
		v.products[i].Available = next
		v.render()

		v.async(ctx, func(ctx context.Context) error {
			return v.gateway.Update(ctx, id, model.AvailabilityPatch(next))
		}, func(_ context.Context, err error) {
			if err != nil {
				slog.Error("failed to update availability", slog.Any("err", err), slog.Int64("id", id))
				metrics.OptimisticRollbacks.WithLabelValues("toggle").Inc()
				if i := v.indexOf(id); i >= 0 {
					v.products[i].Available = previous
				}
				v.render()
				v.ui.Alert(AvailabilityFailedMessage)
				return
			}
			slog.Info("availability updated", slog.Int64("id", id), slog.Bool("available", next))
		})
		return nil
	})
}

func (v *View) reload(ctx context.Context) {
	var products []model.Product
	v.async(ctx, func(ctx context.Context) (err error) {
		products, err = v.gateway.List(ctx)
		return err
	}, func(_ context.Context, err error) {
		if err != nil {
			slog.Error("failed to load products", slog.Any("err", err))
			v.render()
			return
		}
		if products == nil {
			products = []model.Product{}
		}
		v.products = products
		slog.Debug("products received", slog.Int("count", len(products)))
		v.render()
	})
}

// async runs call on its own goroutine and queues then on the event loop with its error.
// It must be called from the event loop.
func (v *View) async(ctx context.Context, call func(ctx context.Context) error, then func(ctx context.Context, err error)) {
	v.inflight++
	go func() {
		err := call(ctx)
		select {
		case v.events <- func(ctx context.Context) {
			then(ctx, err)
			v.finish()
		}:
		case <-v.done:
		}
	}()
}

// finish records a handled continuation and wakes the Settle callers once nothing is in flight.
func (v *View) finish() {
	v.inflight--
	if v.inflight > 0 {
		return
	}
	for _, idle := range v.idle {
		close(idle)
	}
	v.idle = nil
}

// dispatch runs fn on the event loop and waits for its result.
func (v *View) dispatch(fn func(ctx context.Context) error) error {
	result := make(chan error, 1)
	select {
	case v.events <- func(ctx context.Context) { result <- fn(ctx) }:
	case <-v.done:
		return ErrStopped
	}
	return <-result
}

func (v *View) indexOf(id int64) int {
	for i := range v.products {
		if v.products[i].ID == id {
			return i
		}
	}
	return -1
}

func (v *View) render() {
	v.ui.Render(v.snapshot())
}

func (v *View) snapshot() State {
	state := State{
		Products: append([]model.Product(nil), v.products...),
		Draft:    v.draft,
	}
	if v.session.open {
		state.Editing = &EditSession{ID: v.session.id, Fields: v.session.fields}
	}
	return state
}
