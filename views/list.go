package views

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"retailadmin/apiclient"
	"retailadmin/logger"
	"retailadmin/models"
	"retailadmin/resources"
	"retailadmin/utils"
)

// ListState is the lifecycle of a list view.
type ListState int

const (
	Idle ListState = iota
	Loading
	Loaded
	Errored
)

func (s ListState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Errored:
		return "error"
	default:
		return "idle"
	}
}

// ListSnapshot is a copy of a list view's state, safe to render while loads continue.
type ListSnapshot struct {
	Schema     *resources.Schema
	State      ListState
	Filter     models.Filter
	Items      []models.Record
	TotalCount int
	Error      string
}

// Pages is the number of pages the current total spans.
func (s ListSnapshot) Pages() int {
	return utils.CreatePagination(s.TotalCount, s.Filter.Page, s.Filter.Limit).TotalPages
}

// ListView shows one page of a resource collection. Every load is numbered when issued and a result is applied
// only if no later load was issued meanwhile, so the view always reflects the newest request.
type ListView struct {
	schema *resources.Schema
	api    RecordAPI
	nav    Navigator
	notify Notifier
	log    *zap.Logger

	mu     sync.Mutex
	filter models.Filter
	state  ListState
	items  []models.Record
	total  int
	errMsg string
	issued uint64
}

// NewListView creates an idle list view on the first page.
func NewListView(schema *resources.Schema, api RecordAPI, nav Navigator, notify Notifier, limit int) *ListView {
	f := models.DefaultFilter()
	if limit > 0 {
		f.Limit = limit
	}
	return &ListView{
		schema: schema,
		api:    api,
		nav:    nav,
		notify: notify,
		log:    logger.Get().With(zap.String("resource", schema.Name)),
		filter: f,
		items:  []models.Record{},
	}
}

// Schema returns the resource this view lists.
func (v *ListView) Schema() *resources.Schema { return v.schema }

// Load fetches the current filter's page. A failure keeps the previous records visible and is also returned.
// A result overtaken by a later load is dropped and Load returns nil.
func (v *ListView) Load(ctx context.Context) error {
	v.mu.Lock()
	v.issued++
	seq := v.issued
	f := v.filter
	v.state = Loading
	v.mu.Unlock()

	page, err := v.api.List(ctx, v.schema.ListPath, f)

	v.mu.Lock()
	defer v.mu.Unlock()
	if seq != v.issued {
		v.log.Debug("discarding superseded list result", zap.Uint64("seq", seq), zap.Uint64("latest", v.issued))
		return nil
	}
	if err != nil {
		v.state = Errored
		v.errMsg = apiclient.Message(err, "")
		v.log.Warn("list load failed", zap.Error(err))
		return err
	}
	v.state = Loaded
	v.errMsg = ""
	v.items = page.Items
	v.total = page.TotalCount
	return nil
}

// Search restarts from the first page with term and loads.
func (v *ListView) Search(ctx context.Context, term string) error {
	v.mu.Lock()
	v.filter.Search = term
	v.filter.Page = models.DefaultPage
	v.mu.Unlock()
	return v.Load(ctx)
}

// ChangePage moves to page with the given page size and loads. A limit of 0 keeps the current size.
func (v *ListView) ChangePage(ctx context.Context, page, limit int) error {
	v.mu.Lock()
	f := v.filter
	f.Page = page
	if limit != 0 {
		f.Limit = limit
	}
	if err := resources.ValidateFilter(f); err != nil {
		v.mu.Unlock()
		return err
	}
	v.filter = f
	v.mu.Unlock()
	return v.Load(ctx)
}

// SetFilter replaces the filter without loading.
func (v *ListView) SetFilter(f models.Filter) error {
	if err := resources.ValidateFilter(f); err != nil {
		return err
	}
	v.mu.Lock()
	v.filter = f
	v.mu.Unlock()
	return nil
}

// Delete removes a record and reloads the current page. The list is never patched locally.
func (v *ListView) Delete(ctx context.Context, id string) error {
	if err := v.api.Remove(ctx, v.schema.ItemPath(id)); err != nil {
		msg := apiclient.Message(err, fmt.Sprintf("Failed to delete %s", v.schema.Singular))
		v.notify.Notify(Failure, msg)
		return err
	}
	v.notify.Notify(Success, fmt.Sprintf("%s deleted successfully!", v.schema.Noun()))
	return v.Load(ctx)
}

// Create opens the create form.
func (v *ListView) Create() { v.nav.Navigate(v.schema.NewRoute()) }

// Edit opens the edit form of a record.
func (v *ListView) Edit(id string) { v.nav.Navigate(v.schema.EditRoute(id)) }

// View opens the read-only view of a record.
func (v *ListView) View(id string) { v.nav.Navigate(v.schema.DetailRoute(id)) }

// Snapshot copies the current state.
func (v *ListView) Snapshot() ListSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	items := make([]models.Record, len(v.items))
	copy(items, v.items)
	return ListSnapshot{
		Schema:     v.schema,
		State:      v.state,
		Filter:     v.filter,
		Items:      items,
		TotalCount: v.total,
		Error:      v.errMsg,
	}
}
