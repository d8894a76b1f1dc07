// Package console is the terminal front end: a static routing table over the views, an auth gate, an
// interactive shell and the one-shot cobra commands.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"retailadmin/session"
)

// ErrNotFound is returned for a location no route matches.
var ErrNotFound = errors.New("page not found")

// Redirect asks the caller to open To instead. From is the location that was turned away.
type Redirect struct {
	To   string
	From string
}

func (r *Redirect) Error() string {
	return "redirect to " + r.To
}

// Screen is a rendered view the shell can show and operate on.
type Screen interface {
	Render(w io.Writer) error
}

// Request is a resolved location.
type Request struct {
	Path   string
	Params map[string]string
	// From is the location a redirect turned away, carried to the login screen.
	From string
}

// Handler builds the screen for a location.
type Handler func(ctx context.Context, req Request) (Screen, error)

type route struct {
	pattern  string
	segments []string
	handler  Handler
}

// Router matches locations against a static table of patterns. A ":name" segment captures one path segment.
type Router struct {
	routes []route
}

// Handle registers a pattern.
func (r *Router) Handle(pattern string, h Handler) {
	r.routes = append(r.routes, route{pattern: pattern, segments: split(pattern), handler: h})
}

// Patterns lists the registered patterns in registration order.
func (r *Router) Patterns() []string {
	out := make([]string, 0, len(r.routes))
	for _, rt := range r.routes {
		out = append(out, rt.pattern)
	}
	return out
}

// Resolve finds the handler for path.
func (r *Router) Resolve(path string) (Handler, Request, error) {
	segs := split(path)
	for _, rt := range r.routes {
		params, ok := match(rt.segments, segs)
		if ok {
			return rt.handler, Request{Path: normalize(path), Params: params}, nil
		}
	}
	return nil, Request{}, fmt.Errorf("%w: %s", ErrNotFound, path)
}

// RequireSession guards h: without a stored token the request is redirected to the login screen, remembering
// where it was headed. Only presence is checked; an expired token fails on its first API call.
func RequireSession(store session.Store, h Handler) Handler {
	return func(ctx context.Context, req Request) (Screen, error) {
		if _, ok := store.Token(); !ok {
			return nil, &Redirect{To: "/login", From: req.Path}
		}
		return h(ctx, req)
	}
}

func match(pattern, segs []string) (map[string]string, bool) {
	if len(pattern) != len(segs) {
		return nil, false
	}
	params := map[string]string{}
	for i, p := range pattern {
		if strings.HasPrefix(p, ":") {
			if segs[i] == "" {
				return nil, false
			}
			params[p[1:]] = segs[i]
			continue
		}
		if p != segs[i] {
			return nil, false
		}
	}
	return params, true
}

func split(path string) []string {
	path = strings.Trim(normalize(path), "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func normalize(path string) string {
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}
