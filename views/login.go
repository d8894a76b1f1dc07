package views

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"retailadmin/apiclient"
	"retailadmin/logger"
	"retailadmin/models"
	"retailadmin/resources"
	"retailadmin/session"
)

// Locations the auth flow moves between. A login lands on HomeRoute when no location was preserved.
const (
	HomeRoute  = "/dashboard"
	LoginRoute = "/login"
)

// LoginView authenticates the operator and stores the session.
type LoginView struct {
	api    AuthAPI
	store  session.Store
	nav    Navigator
	notify Notifier
	from   string
}

// NewLoginView creates a login view. from is the location the operator was turned away from, if any.
func NewLoginView(api AuthAPI, store session.Store, nav Navigator, notify Notifier, from string) *LoginView {
	return &LoginView{api: api, store: store, nav: nav, notify: notify, from: from}
}

// Submit logs in. Token and user are stored together before navigating to the preserved location, or the
// dashboard when there is none.
func (v *LoginView) Submit(ctx context.Context, identifier, password string) (*models.Session, error) {
	problems := map[string]string{}
	if strings.TrimSpace(identifier) == "" {
		problems["identifier"] = "Please input your email or phone number"
	}
	if password == "" {
		problems["password"] = "Please input your password"
	}
	if len(problems) > 0 {
		return nil, &resources.ValidationError{Fields: problems}
	}

	s, err := v.api.Login(ctx, strings.TrimSpace(identifier), password)
	if err != nil {
		v.notify.Notify(Failure, apiclient.Message(err, "Login failed"))
		return nil, err
	}
	if err := v.store.Save(*s); err != nil {
		v.notify.Notify(Failure, "Could not save session")
		return nil, fmt.Errorf("save session: %w", err)
	}
	logger.Get().Info("logged in", zap.String("user", s.DisplayName()))
	v.notify.Notify(Success, "Login successful!")

	dest := v.from
	if dest == "" || dest == LoginRoute {
		dest = HomeRoute
	}
	v.nav.Navigate(dest)
	return s, nil
}

// Logout removes the stored session and returns to the login screen.
func Logout(store session.Store, nav Navigator, notify Notifier) error {
	if err := store.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	notify.Notify(Info, "Logged out")
	nav.Navigate(LoginRoute)
	return nil
}

// DashboardView summarizes record counts per resource.
type DashboardView struct {
	api    StatsAPI
	notify Notifier
	counts map[string]int
}

// NewDashboardView creates an empty dashboard.
func NewDashboardView(api StatsAPI, notify Notifier) *DashboardView {
	return &DashboardView{api: api, notify: notify, counts: map[string]int{}}
}

// Load fetches the counts. On failure the previous counts are kept.
func (d *DashboardView) Load(ctx context.Context) error {
	counts, err := d.api.Stats(ctx)
	if err != nil {
		d.notify.Notify(Failure, apiclient.Message(err, "Failed to load dashboard"))
		return err
	}
	d.counts = counts
	return nil
}

// Counts returns the count of every known resource, zero when the API omitted it.
func (d *DashboardView) Counts() []ResourceCount {
	out := make([]ResourceCount, 0, len(resources.All()))
	for _, s := range resources.All() {
		out = append(out, ResourceCount{Schema: s, Count: d.counts[s.Name]})
	}
	return out
}

// ResourceCount pairs a resource with its record count.
type ResourceCount struct {
	Schema *resources.Schema
	Count  int
}
