// Package database stores the sandbox API's records. Every resource is a collection of JSON documents with a
// numeric id assigned by the store.
package database

import (
	"context"
	"errors"

	"retailadmin/models"
	"retailadmin/utils"
)

// secretField is never matched by a search.
const secretField = "passwordHash"

var (
	// ErrNotFound is returned when no record matches.
	ErrNotFound = errors.New("record not found")
)

// ListQuery selects one page of a collection. Search matches any field value, case-insensitively.
type ListQuery struct {
	Search string
	Offset int
	Limit  int
}

// Store is the record storage used by the handlers.
type Store interface {
	List(ctx context.Context, collection string, q ListQuery) ([]models.Record, int, error)
	Get(ctx context.Context, collection, id string) (models.Record, error)
	// FindBy returns the first record whose field equals value.
	FindBy(ctx context.Context, collection, field, value string) (models.Record, error)
	Insert(ctx context.Context, collection string, rec models.Record) (models.Record, error)
	Update(ctx context.Context, collection, id string, rec models.Record) (models.Record, error)
	Delete(ctx context.Context, collection, id string) error
	Counts(ctx context.Context) (map[string]int, error)
	Ping(ctx context.Context) error
	Close() error
}

// document strips the id so it is never stored inside the record body.
func document(rec models.Record) models.Record {
	doc := rec.Clone()
	if doc == nil {
		doc = models.Record{}
	}
	delete(doc, "id")
	return doc
}

func matches(rec models.Record, search string) bool {
	if search == "" {
		return true
	}
	for k := range rec {
		if k == secretField {
			continue
		}
		if utils.ContainsFold(rec.Text(k), search) {
			return true
		}
	}
	return false
}
