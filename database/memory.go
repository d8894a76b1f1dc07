package database

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"retailadmin/models"
)

type collection struct {
	nextID int64
	order  []int64
	rows   map[int64]models.Record
}

// MemoryStore keeps records in process memory, ordered by id.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: map[string]*collection{}}
}

func (m *MemoryStore) coll(name string) *collection {
	c, ok := m.collections[name]
	if !ok {
		c = &collection{rows: map[int64]models.Record{}}
		m.collections[name] = c
	}
	return c
}

func withID(id int64, doc models.Record) models.Record {
	out := doc.Clone()
	out["id"] = json.Number(strconv.FormatInt(id, 10))
	return out
}

func (m *MemoryStore) List(_ context.Context, name string, q ListQuery) ([]models.Record, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.collections[name]
	if !ok {
		return []models.Record{}, 0, nil
	}
	var hits []models.Record
	for _, id := range c.order {
		if doc := c.rows[id]; matches(doc, q.Search) {
			hits = append(hits, withID(id, doc))
		}
	}
	total := len(hits)
	start := min(q.Offset, total)
	end := total
	if q.Limit > 0 {
		end = min(start+q.Limit, total)
	}
	page := make([]models.Record, 0, end-start)
	page = append(page, hits[start:end]...)
	return page, total, nil
}

func (m *MemoryStore) Get(_ context.Context, name, id string) (models.Record, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, ErrNotFound
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.collections[name]
	if !ok {
		return nil, ErrNotFound
	}
	doc, ok := c.rows[n]
	if !ok {
		return nil, ErrNotFound
	}
	return withID(n, doc), nil
}

func (m *MemoryStore) FindBy(_ context.Context, name, field, value string) (models.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.collections[name]
	if !ok {
		return nil, ErrNotFound
	}
	for _, id := range c.order {
		if doc := c.rows[id]; doc.Text(field) == value {
			return withID(id, doc), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) Insert(_ context.Context, name string, rec models.Record) (models.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.coll(name)
	c.nextID++
	c.rows[c.nextID] = document(rec)
	c.order = append(c.order, c.nextID)
	return withID(c.nextID, c.rows[c.nextID]), nil
}

func (m *MemoryStore) Update(_ context.Context, name, id string, rec models.Record) (models.Record, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, ErrNotFound
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.collections[name]
	if !ok {
		return nil, ErrNotFound
	}
	if _, ok := c.rows[n]; !ok {
		return nil, ErrNotFound
	}
	c.rows[n] = document(rec)
	return withID(n, c.rows[n]), nil
}

func (m *MemoryStore) Delete(_ context.Context, name, id string) error {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return ErrNotFound
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.collections[name]
	if !ok {
		return ErrNotFound
	}
	if _, ok := c.rows[n]; !ok {
		return ErrNotFound
	}
	delete(c.rows, n)
	for i, v := range c.order {
		if v == n {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MemoryStore) Counts(context.Context) (map[string]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]int, len(m.collections))
	for name, c := range m.collections {
		out[name] = len(c.rows)
	}
	return out, nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }
