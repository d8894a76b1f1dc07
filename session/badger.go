package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"

	"retailadmin/models"
)

// BadgerStore persists the session in an embedded badger database.
type BadgerStore struct {
	db *badger.DB
}

// Open opens (creating if needed) the session database in dir.
func Open(dir string) (*BadgerStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// OpenInMemory opens a store that lives only as long as the process.
func OpenInMemory() (*BadgerStore, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Close releases the database.
func (b *BadgerStore) Close() error {
	return b.db.Close()
}

// Load returns the stored session, or ErrNoSession when either key is missing.
func (b *BadgerStore) Load() (*models.Session, error) {
	var s models.Session
	err := b.db.View(func(txn *badger.Txn) error {
		token, err := get(txn, KeyToken)
		if err != nil {
			return err
		}
		user, err := get(txn, KeyUser)
		if err != nil {
			return err
		}
		s.Token = string(token)
		if err := json.Unmarshal(user, &s.User); err != nil {
			return fmt.Errorf("decode session user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Save writes token and user in one transaction.
func (b *BadgerStore) Save(s models.Session) error {
	if err := check(s); err != nil {
		return err
	}
	user := s.User
	if user == nil {
		user = models.Record{}
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode session user: %w", err)
	}
	return b.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(KeyToken), []byte(s.Token)); err != nil {
			return err
		}
		return txn.Set([]byte(KeyUser), raw)
	})
}

// Clear removes both keys in one transaction.
func (b *BadgerStore) Clear() error {
	return b.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(KeyToken)); err != nil {
			return err
		}
		return txn.Delete([]byte(KeyUser))
	})
}

// Token reports the stored bearer token. It is read on every call.
func (b *BadgerStore) Token() (string, bool) {
	s, err := b.Load()
	if err != nil {
		return "", false
	}
	return s.Token, true
}

func get(txn *badger.Txn, key string) ([]byte, error) {
	item, err := txn.Get([]byte(key))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNoSession
		}
		return nil, err
	}
	return item.ValueCopy(nil)
}
