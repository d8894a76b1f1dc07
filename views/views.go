// Package views holds the console's screens: a generic list and a generic form configured by resource schemas,
// plus login and dashboard. Views never touch the terminal; they report through a Navigator and a Notifier and
// expose snapshots for rendering.
package views

import (
	"context"
	"io"

	"retailadmin/models"
)

// Navigator moves the console to another location.
type Navigator interface {
	Navigate(path string)
}

// Level classifies a notification.
type Level int

const (
	Info Level = iota
	Success
	Failure
)

func (l Level) String() string {
	switch l {
	case Success:
		return "success"
	case Failure:
		return "error"
	default:
		return "info"
	}
}

// Notifier shows transient messages to the operator.
type Notifier interface {
	Notify(level Level, message string)
}

// RecordAPI is the part of the API client the resource views use.
type RecordAPI interface {
	List(ctx context.Context, path string, f models.Filter) (*models.Page, error)
	Fetch(ctx context.Context, path string) (models.Record, error)
	Create(ctx context.Context, path string, rec models.Record) (models.Record, error)
	Update(ctx context.Context, path string, rec models.Record) (models.Record, error)
	Remove(ctx context.Context, path string) error
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

// AuthAPI exchanges credentials for a session.
type AuthAPI interface {
	Login(ctx context.Context, identifier, password string) (*models.Session, error)
}

// StatsAPI reports per-resource record counts.
type StatsAPI interface {
	Stats(ctx context.Context) (map[string]int, error)
}
