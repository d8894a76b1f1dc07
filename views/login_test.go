package views

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailadmin/apiclient"
	"retailadmin/models"
	"retailadmin/resources"
	"retailadmin/session"
)

type fakeAuth struct {
	calls int
	resp  *models.Session
	err   error
}

func (a *fakeAuth) Login(_ context.Context, identifier, password string) (*models.Session, error) {
	a.calls++
	return a.resp, a.err
}

type fakeStats struct {
	counts map[string]int
	err    error
}

func (s fakeStats) Stats(context.Context) (map[string]int, error) { return s.counts, s.err }

func TestLoginView_NavigatesToPreservedLocation(t *testing.T) {
	tests := []struct {
		from string
		want string
	}{
		{"/items/3/edit", "/items/3/edit"},
		{"", HomeRoute},
		{LoginRoute, HomeRoute},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.want, func(t *testing.T) {
			auth := &fakeAuth{resp: &models.Session{Token: "jwt", User: models.Record{"fullName": "Ada"}}}
			store := session.NewMemoryStore()
			rec := &recorder{}

			s, err := NewLoginView(auth, store, rec, rec, tt.from).Submit(context.Background(), " ada@example.com ", "pw")
			require.NoError(t, err)
			assert.Equal(t, "jwt", s.Token)
			assert.Equal(t, tt.want, rec.lastPath())

			stored, err := store.Load()
			require.NoError(t, err)
			assert.Equal(t, "Ada", stored.DisplayName())
		})
	}
}

func TestLoginView_RequiresCredentials(t *testing.T) {
	auth := &fakeAuth{}
	rec := &recorder{}
	_, err := NewLoginView(auth, session.NewMemoryStore(), rec, rec, "").Submit(context.Background(), "", "")
	var verr *resources.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)
	assert.Zero(t, auth.calls)
}

func TestLoginView_FailureStoresNothing(t *testing.T) {
	auth := &fakeAuth{err: &apiclient.HTTPError{Status: 401, Message: "Invalid credentials"}}
	store := session.NewMemoryStore()
	rec := &recorder{}

	_, err := NewLoginView(auth, store, rec, rec, "").Submit(context.Background(), "ada", "bad")
	require.Error(t, err)
	_, ok := store.Token()
	assert.False(t, ok)
	assert.Empty(t, rec.paths)
	assert.Equal(t, notice{Failure, "Invalid credentials"}, rec.lastNotice())
}

func TestLogout(t *testing.T) {
	store := session.NewMemoryStore()
	require.NoError(t, store.Save(models.Session{Token: "jwt", User: models.Record{}}))
	rec := &recorder{}

	require.NoError(t, Logout(store, rec, rec))
	_, err := store.Load()
	assert.ErrorIs(t, err, session.ErrNoSession)
	assert.Equal(t, LoginRoute, rec.lastPath())
}

func TestDashboardView(t *testing.T) {
	rec := &recorder{}
	d := NewDashboardView(fakeStats{counts: map[string]int{"items": 4, "users": 2}}, rec)
	require.NoError(t, d.Load(context.Background()))

	counts := map[string]int{}
	for _, c := range d.Counts() {
		counts[c.Schema.Name] = c.Count
	}
	assert.Equal(t, 4, counts["items"])
	assert.Equal(t, 0, counts["brands"])
	assert.Len(t, counts, 7)

	var buf bytes.Buffer
	require.NoError(t, RenderDashboard(&buf, d.Counts()))
	assert.Contains(t, buf.String(), "Items")

	failing := NewDashboardView(fakeStats{err: &apiclient.HTTPError{Status: 500, Message: "down"}}, rec)
	require.Error(t, failing.Load(context.Background()))
	assert.Equal(t, notice{Failure, "down"}, rec.lastNotice())
}

func TestRenderList(t *testing.T) {
	snap := ListSnapshot{
		Schema: resources.Customers,
		State:  Loaded,
		Filter: models.Filter{Page: 2, Limit: 1, Search: "acme"},
		Items: []models.Record{{
			"id": json.Number("7"), "fullName": "Acme Corp", "creditLimit": json.Number("1500"),
			"balance": json.Number("12.5"), "status": "active",
		}},
		TotalCount: 3,
	}
	var buf bytes.Buffer
	require.NoError(t, RenderList(&buf, snap))
	out := buf.String()
	assert.Contains(t, out, `Customers (search: "acme")`)
	assert.Contains(t, out, "$1500.00")
	assert.Contains(t, out, "$12.50")
	assert.Contains(t, out, "ACTIVE")
	assert.Contains(t, out, "2-2 of 3  page 2/3")
}

func TestRenderFormMasksPassword(t *testing.T) {
	rec := &recorder{}
	f := NewCreateForm(resources.Users, &fakeAPI{}, rec, rec)
	require.NoError(t, f.Set("password", "secret1"))

	var buf bytes.Buffer
	require.NoError(t, RenderForm(&buf, f.Snapshot()))
	assert.Contains(t, buf.String(), "*******")
	assert.NotContains(t, buf.String(), "secret1")
	assert.Contains(t, buf.String(), "New User")
}
