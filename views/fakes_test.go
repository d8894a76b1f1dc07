package views

import (
	"context"
	"io"
	"sync"

	"retailadmin/models"
)

type notice struct {
	Level   Level
	Message string
}

type recorder struct {
	mu      sync.Mutex
	paths   []string
	notices []notice
}

func (r *recorder) Navigate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

func (r *recorder) Notify(level Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, notice{level, message})
}

func (r *recorder) lastPath() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.paths) == 0 {
		return ""
	}
	return r.paths[len(r.paths)-1]
}

func (r *recorder) lastNotice() notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return notice{}
	}
	return r.notices[len(r.notices)-1]
}

type call struct {
	Method string
	Path   string
	Filter models.Filter
	Body   models.Record
}

type fakeAPI struct {
	mu    sync.Mutex
	calls []call

	list   func(ctx context.Context, path string, f models.Filter) (*models.Page, error)
	fetch  func(path string) (models.Record, error)
	save   func(method, path string, rec models.Record) (models.Record, error)
	remove func(path string) error
	upload func(filename string, body []byte) (string, error)
}

func (a *fakeAPI) record(c call) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, c)
}

func (a *fakeAPI) Calls() []call {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]call(nil), a.calls...)
}

func (a *fakeAPI) List(ctx context.Context, path string, f models.Filter) (*models.Page, error) {
	a.record(call{Method: "GET", Path: path, Filter: f})
	if a.list == nil {
		return &models.Page{Items: []models.Record{}}, nil
	}
	return a.list(ctx, path, f)
}

func (a *fakeAPI) Fetch(_ context.Context, path string) (models.Record, error) {
	a.record(call{Method: "GET", Path: path})
	return a.fetch(path)
}

func (a *fakeAPI) Create(_ context.Context, path string, rec models.Record) (models.Record, error) {
	a.record(call{Method: "POST", Path: path, Body: rec})
	if a.save == nil {
		return rec, nil
	}
	return a.save("POST", path, rec)
}

func (a *fakeAPI) Update(_ context.Context, path string, rec models.Record) (models.Record, error) {
	a.record(call{Method: "PUT", Path: path, Body: rec})
	if a.save == nil {
		return rec, nil
	}
	return a.save("PUT", path, rec)
}

func (a *fakeAPI) Remove(_ context.Context, path string) error {
	a.record(call{Method: "DELETE", Path: path})
	if a.remove == nil {
		return nil
	}
	return a.remove(path)
}

func (a *fakeAPI) Upload(_ context.Context, filename string, r io.Reader) (string, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	a.record(call{Method: "UPLOAD", Path: filename})
	return a.upload(filename, body)
}
