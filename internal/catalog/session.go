package catalog

import (
	"context"
	"log/slog"
	"strings"

	"github.com/iyhunko/catalogo-prodotti/internal/metrics"
	"github.com/iyhunko/catalogo-prodotti/internal/model"
)

// Draft holds the input fields of a product not yet created.
type Draft struct {
	Name  string
	Price float64
}

// EditFields is the scratch copy of the editable product fields.
type EditFields struct {
	Name      string
	Price     float64
	Available bool
}

// EditSession is an open edit of the product with the given ID.
type EditSession struct {
	ID     int64
	Fields EditFields
}

// State is a snapshot of the view handed to the UI.
type State struct {
	Products []model.Product
	Draft    Draft
	Editing  *EditSession
}

// session is the edit state machine: closed (Idle) or open on one product (Editing).
// While a save is in flight it is closed but the fields are kept for a rollback.
type session struct {
	open   bool
	id     int64
	fields EditFields
}

func newSession() session {
	return session{fields: EditFields{Available: true}}
}

func (s *session) start(product model.Product) {
	s.open = true
	s.id = product.ID
	s.fields = EditFields{Name: product.Name, Price: product.Price, Available: product.Available}
}

func (s *session) reset() {
	*s = newSession()
}

// StartEdit opens an edit session on the stored product with the given id,
// replacing any session already open.
func (v *View) StartEdit(id int64) error {
	return v.dispatch(func(context.Context) error {
		i := v.indexOf(id)
		if i < 0 {
			return ErrProductNotFound
		}
		v.session.start(v.products[i])
		v.render()
		return nil
	})
}

// UpdateEdit replaces the scratch fields of the open session.
func (v *View) UpdateEdit(fields EditFields) error {
	return v.dispatch(func(context.Context) error {
		if !v.session.open {
			return ErrNotEditing
		}
		v.session.fields = fields
		v.render()
		return nil
	})
}

// CancelEdit closes the edit session and clears the scratch fields.
func (v *View) CancelEdit() error {
	return v.dispatch(func(context.Context) error {
		v.session.reset()
		v.render()
		return nil
	})
}

// SaveEdit commits the open session. The session closes before the update is sent;
// if the update fails it is reopened with the same fields and the user is alerted.
// Invalid fields are rejected before any request and keep the session open.
func (v *View) SaveEdit() error {
	return v.dispatch(func(ctx context.Context) error {
		if !v.session.open {
			return nil
		}
		if err := model.ValidateFields(v.session.fields.Name, v.session.fields.Price); err != nil {
			v.ui.Alert(model.InvalidProductMessage)
			v.render()
			return err
		}

		committed := v.session
		v.session.open = false
		v.render()

		fields := trimmed(committed.fields)
		patch := model.FullPatch(fields.Name, fields.Price, fields.Available)
		v.async(ctx, func(ctx context.Context) error {
			return v.gateway.Update(ctx, committed.id, patch)
		}, func(ctx context.Context, err error) {
			if err != nil {
				slog.Error("failed to update product", slog.Any("err", err), slog.Int64("id", committed.id))
				metrics.OptimisticRollbacks.WithLabelValues("edit").Inc()
				v.session = committed
				v.render()
				v.ui.Alert(UpdateFailedMessage)
				return
			}
			slog.Info("product updated", slog.Int64("id", committed.id))
			// a session opened on another product meanwhile is left alone
			if !v.session.open {
				v.session.reset()
			}
			v.reload(ctx)
		})
		return nil
	})
}

func trimmed(fields EditFields) EditFields {
	fields.Name = strings.TrimSpace(fields.Name)
	return fields
}
