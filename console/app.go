package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"retailadmin/apiclient"
	"retailadmin/logger"
	"retailadmin/models"
	"retailadmin/resources"
	"retailadmin/session"
	"retailadmin/views"
)

const maxHops = 8

// API is everything the console needs from the API client.
type API interface {
	views.RecordAPI
	views.AuthAPI
	views.StatsAPI
}

// App owns the current location and screen. It is the Navigator and Notifier of every view it creates.
type App struct {
	api    API
	store  session.Store
	out    io.Writer
	limit  int
	router *Router
	log    *zap.Logger

	mu       sync.Mutex
	pending  string
	location string
	current  Screen
}

// NewApp wires the routing table. limit is the list page size.
func NewApp(api API, store session.Store, out io.Writer, limit int) *App {
	a := &App{
		api:    api,
		store:  store,
		out:    out,
		limit:  limit,
		router: &Router{},
		log:    logger.Get(),
	}
	a.routes()
	return a
}

func (a *App) routes() {
	gate := func(h Handler) Handler { return RequireSession(a.store, h) }

	a.router.Handle("/login", a.loginScreen)
	a.router.Handle("/", gate(func(context.Context, Request) (Screen, error) {
		return nil, &Redirect{To: views.HomeRoute}
	}))
	a.router.Handle(views.HomeRoute, gate(a.dashboardScreen))
	for _, s := range resources.All() {
		a.router.Handle(s.Route(), gate(a.listScreen(s)))
		a.router.Handle(s.NewRoute(), gate(a.createScreen(s)))
		a.router.Handle(s.Route()+"/:id/edit", gate(a.editScreen(s)))
		a.router.Handle(s.Route()+"/:id", gate(a.detailScreen(s)))
	}
}

// Router exposes the routing table.
func (a *App) Router() *Router { return a.router }

// Navigate records a location to open once the current command finishes.
func (a *App) Navigate(path string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pending = path
}

// Notify prints a notification line.
func (a *App) Notify(level views.Level, message string) {
	fmt.Fprintf(a.out, "[%s] %s\n", level, message)
}

// Location is the path of the current screen.
func (a *App) Location() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.location
}

// Current is the screen being shown, nil before the first Open.
func (a *App) Current() Screen {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// Open resolves path, follows redirects and navigation requested while building the screen, then renders it.
func (a *App) Open(ctx context.Context, path string) error {
	from := ""
	for hop := 0; hop < maxHops; hop++ {
		a.takePending()
		h, req, err := a.router.Resolve(path)
		if err != nil {
			return err
		}
		req.From = from
		screen, err := h(ctx, req)

		var redirect *Redirect
		if errors.As(err, &redirect) {
			path, from = redirect.To, redirect.From
			continue
		}
		if next := a.takePending(); next != "" {
			// the view has already reported the failure that sent us elsewhere
			path, from = next, ""
			continue
		}
		if err != nil {
			return err
		}

		a.mu.Lock()
		a.current, a.location = screen, req.Path
		a.mu.Unlock()
		return screen.Render(a.out)
	}
	return fmt.Errorf("too many redirects opening %s", path)
}

// Follow opens the location a view asked for during the last command, if any.
func (a *App) Follow(ctx context.Context) error {
	next := a.takePending()
	if next == "" {
		return nil
	}
	return a.Open(ctx, next)
}

// Show renders the current screen again.
func (a *App) Show() error {
	screen := a.Current()
	if screen == nil {
		return errors.New("nothing to show, open a location first")
	}
	return screen.Render(a.out)
}

func (a *App) takePending() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	p := a.pending
	a.pending = ""
	return p
}

// --- Screens ---

// ListScreen shows a resource list.
type ListScreen struct{ View *views.ListView }

func (s *ListScreen) Render(w io.Writer) error { return views.RenderList(w, s.View.Snapshot()) }

// FormScreen shows a create or edit form.
type FormScreen struct{ View *views.FormView }

func (s *FormScreen) Render(w io.Writer) error { return views.RenderForm(w, s.View.Snapshot()) }

// DetailScreen shows one record read-only.
type DetailScreen struct {
	Schema *resources.Schema
	Record models.Record
}

func (s *DetailScreen) Render(w io.Writer) error {
	fmt.Fprintf(w, "%s %s\n", s.Schema.Noun(), s.Record.ID())
	return views.RenderRecord(w, s.Schema, s.Record)
}

// LoginScreen prompts for credentials.
type LoginScreen struct{ View *views.LoginView }

func (s *LoginScreen) Render(w io.Writer) error {
	_, err := fmt.Fprintln(w, "Login required: login <email or phone> <password>")
	return err
}

// DashboardScreen shows record counts.
type DashboardScreen struct{ View *views.DashboardView }

func (s *DashboardScreen) Render(w io.Writer) error { return views.RenderDashboard(w, s.View.Counts()) }

func (a *App) loginScreen(_ context.Context, req Request) (Screen, error) {
	return &LoginScreen{View: views.NewLoginView(a.api, a.store, a, a, req.From)}, nil
}

func (a *App) dashboardScreen(ctx context.Context, _ Request) (Screen, error) {
	d := views.NewDashboardView(a.api, a)
	if err := d.Load(ctx); err != nil {
		a.log.Warn("dashboard load failed", zap.Error(err))
	}
	return &DashboardScreen{View: d}, nil
}

func (a *App) listScreen(s *resources.Schema) Handler {
	return func(ctx context.Context, _ Request) (Screen, error) {
		v := views.NewListView(s, a.api, a, a, a.limit)
		// a failed first load still shows the list with its error
		_ = v.Load(ctx)
		return &ListScreen{View: v}, nil
	}
}

func (a *App) createScreen(s *resources.Schema) Handler {
	return func(ctx context.Context, _ Request) (Screen, error) {
		f := views.NewCreateForm(s, a.api, a, a)
		_ = f.LoadLookups(ctx)
		return &FormScreen{View: f}, nil
	}
}

func (a *App) editScreen(s *resources.Schema) Handler {
	return func(ctx context.Context, req Request) (Screen, error) {
		f, err := views.OpenEdit(ctx, s, a.api, a, a, req.Params["id"])
		if err != nil {
			return nil, err
		}
		_ = f.LoadLookups(ctx)
		return &FormScreen{View: f}, nil
	}
}

func (a *App) detailScreen(s *resources.Schema) Handler {
	return func(ctx context.Context, req Request) (Screen, error) {
		rec, err := a.api.Fetch(ctx, s.ItemPath(req.Params["id"]))
		if err != nil {
			a.Notify(views.Failure, apiclient.Message(err, fmt.Sprintf("Failed to fetch %s data", s.Singular)))
			a.Navigate(s.Route())
			return nil, err
		}
		return &DetailScreen{Schema: s, Record: rec}, nil
	}
}
