package views

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"retailadmin/apiclient"
	"retailadmin/logger"
	"retailadmin/models"
	"retailadmin/resources"
)

// LookupLimit is the page size used to fetch reference options.
const LookupLimit = 100

var (
	// ErrUnknownField is returned when input targets a field the form does not show.
	ErrUnknownField = errors.New("unknown field")
	// ErrSubmitting is returned when Submit is called while a submission is in flight.
	ErrSubmitting = errors.New("submission already in progress")
)

// Option is one choice of a reference field.
type Option struct {
	Value string
	Label string
}

// FormSnapshot is a copy of a form's state for rendering.
type FormSnapshot struct {
	Schema  *resources.Schema
	Mode    resources.Mode
	ID      string
	Values  models.Record
	Options map[string][]Option
}

// FormView creates or edits one record of a resource.
type FormView struct {
	schema *resources.Schema
	api    RecordAPI
	nav    Navigator
	notify Notifier
	log    *zap.Logger
	mode   resources.Mode
	id     string

	mu         sync.Mutex
	values     models.Record
	options    map[string][]Option
	submitting bool
}

func newForm(schema *resources.Schema, api RecordAPI, nav Navigator, notify Notifier, mode resources.Mode) *FormView {
	return &FormView{
		schema:  schema,
		api:     api,
		nav:     nav,
		notify:  notify,
		log:     logger.Get().With(zap.String("resource", schema.Name)),
		mode:    mode,
		options: map[string][]Option{},
	}
}

// NewCreateForm returns a create form holding the schema defaults.
func NewCreateForm(schema *resources.Schema, api RecordAPI, nav Navigator, notify Notifier) *FormView {
	f := newForm(schema, api, nav, notify, resources.Create)
	f.values = schema.Defaults()
	return f
}

// OpenEdit fetches a record and returns an edit form populated with it. On failure the operator is notified and
// sent back to the list, and no form is returned.
func OpenEdit(ctx context.Context, schema *resources.Schema, api RecordAPI, nav Navigator, notify Notifier, id string) (*FormView, error) {
	rec, err := api.Fetch(ctx, schema.ItemPath(id))
	if err != nil {
		notify.Notify(Failure, apiclient.Message(err, fmt.Sprintf("Failed to fetch %s data", schema.Singular)))
		nav.Navigate(schema.Route())
		return nil, err
	}
	f := newForm(schema, api, nav, notify, resources.Edit)
	f.id = id
	if schema.AfterFetch != nil {
		rec = schema.AfterFetch(rec)
	}
	f.values = rec.Clone()
	return f, nil
}

// Schema returns the resource being edited.
func (f *FormView) Schema() *resources.Schema { return f.schema }

// Mode reports whether the form creates or edits.
func (f *FormView) Mode() resources.Mode { return f.mode }

// Set parses raw input for a field and stores it. Empty input clears the field.
func (f *FormView) Set(field, raw string) error {
	fd, ok := f.formField(field)
	if !ok {
		return fmt.Errorf("%w %q for %s", ErrUnknownField, field, f.schema.Name)
	}
	v, err := fd.Parse(raw)
	if err != nil {
		return &resources.ValidationError{Fields: map[string]string{field: err.Error()}}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if v == nil {
		delete(f.values, field)
	} else {
		f.values[field] = v
	}
	return nil
}

// Submit validates every field and, only when all rules pass, sends exactly one create or update request with
// the full field set. On success the operator is sent back to the list; on failure the entered values stay.
func (f *FormView) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return ErrSubmitting
	}
	values := f.values.Clone()
	if err := f.schema.Validate(values, f.mode); err != nil {
		f.mu.Unlock()
		return err
	}
	f.submitting = true
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.submitting = false
		f.mu.Unlock()
	}()

	payload := models.Record{}
	for _, fd := range f.schema.FormFields(f.mode) {
		if v, ok := values[fd.Name]; ok && v != nil {
			payload[fd.Name] = v
		}
	}
	if f.schema.BeforeSubmit != nil {
		payload = f.schema.BeforeSubmit(payload)
	}

	var err error
	verb := "created"
	if f.mode == resources.Edit {
		verb = "updated"
		_, err = f.api.Update(ctx, f.schema.ItemPath(f.id), payload)
	} else {
		_, err = f.api.Create(ctx, f.schema.Endpoint, payload)
	}
	if err != nil {
		action := "create"
		if f.mode == resources.Edit {
			action = "update"
		}
		f.log.Warn("submit failed", zap.String("action", action), zap.Error(err))
		f.notify.Notify(Failure, apiclient.Message(err, fmt.Sprintf("Failed to %s %s", action, f.schema.Singular)))
		return err
	}
	f.notify.Notify(Success, fmt.Sprintf("%s %s successfully!", f.schema.Noun(), verb))
	f.nav.Navigate(f.schema.Route())
	return nil
}

// Upload sends a file and stores the returned URL in an image field. The file is kept by the API even if the
// form is never submitted.
func (f *FormView) Upload(ctx context.Context, field, filename string, r io.Reader) error {
	fd, ok := f.formField(field)
	if !ok || fd.Kind != resources.Image {
		return fmt.Errorf("%w %q: not an image field of %s", ErrUnknownField, field, f.schema.Name)
	}
	url, err := f.api.Upload(ctx, filename, r)
	if err != nil {
		f.notify.Notify(Failure, "Image upload failed")
		return err
	}
	f.mu.Lock()
	f.values[field] = url
	f.mu.Unlock()
	f.notify.Notify(Success, "Image uploaded successfully")
	return nil
}

// LoadLookups fetches the option lists of every reference field concurrently. A failure is reported but the
// form stays usable; reference values can still be typed by id.
func (f *FormView) LoadLookups(ctx context.Context) error {
	refs := f.schema.References()
	if len(refs) == 0 {
		return nil
	}

	var mu sync.Mutex
	found := make(map[string][]Option, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	for _, fd := range refs {
		fd := fd
		target, ok := resources.Lookup(fd.Ref)
		if !ok {
			return fmt.Errorf("field %s references unknown resource %q", fd.Name, fd.Ref)
		}
		g.Go(func() error {
			page, err := f.api.List(gctx, target.Endpoint, models.Filter{Page: 1, Limit: LookupLimit})
			if err != nil {
				return fmt.Errorf("load %s options: %w", target.Name, err)
			}
			opts := make([]Option, 0, len(page.Items))
			for _, rec := range page.Items {
				opts = append(opts, Option{Value: rec.ID(), Label: target.Label(rec)})
			}
			mu.Lock()
			found[fd.Name] = opts
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		f.log.Warn("lookup load failed", zap.Error(err))
		f.notify.Notify(Failure, "Failed to load dropdown data")
		return err
	}

	f.mu.Lock()
	f.options = found
	f.mu.Unlock()
	return nil
}

// Cancel abandons the form and returns to the list.
func (f *FormView) Cancel() { f.nav.Navigate(f.schema.Route()) }

// Snapshot copies the current state.
func (f *FormView) Snapshot() FormSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	opts := make(map[string][]Option, len(f.options))
	for k, v := range f.options {
		opts[k] = append([]Option(nil), v...)
	}
	return FormSnapshot{
		Schema:  f.schema,
		Mode:    f.mode,
		ID:      f.id,
		Values:  f.values.Clone(),
		Options: opts,
	}
}

func (f *FormView) formField(name string) (resources.Field, bool) {
	for _, fd := range f.schema.FormFields(f.mode) {
		if fd.Name == name {
			return fd, true
		}
	}
	return resources.Field{}, false
}
