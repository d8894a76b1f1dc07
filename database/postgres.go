package database

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib"
	"go.uber.org/zap"

	"retailadmin/logger"
	"retailadmin/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
    id          BIGSERIAL PRIMARY KEY,
    collection  TEXT        NOT NULL,
    data        JSONB       NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS records_collection_idx ON records (collection, id);`

// searchClause matches field values only, never key names or the password hash. $2 is a LIKE-escaped term.
const searchClause = `collection = $1 AND ($2 = '' OR EXISTS (
    SELECT 1 FROM jsonb_each_text(data) AS kv
    WHERE kv.key <> '` + secretField + `' AND kv.value ILIKE '%' || $2 || '%' ESCAPE '\'))`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes term match literally inside a LIKE pattern.
func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}

// SQLStore keeps records as JSONB documents in a single Postgres table.
type SQLStore struct {
	db  *sql.DB
	log *zap.Logger
}

// Connect opens a pgx-backed pool, checks it and creates the table when missing.
func Connect(ctx context.Context, databaseURL string) (*SQLStore, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	s := NewSQLStore(db)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	s.log.Info("Successfully connected to the database")
	return s, nil
}

// NewSQLStore wraps an open database.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, log: logger.Get()}
}

// Migrate creates the records table.
func (s *SQLStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create records table: %w", err)
	}
	return nil
}

func (s *SQLStore) List(ctx context.Context, collection string, q ListQuery) ([]models.Record, int, error) {
	var total int
	term := escapeLike(q.Search)
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM records WHERE `+searchClause, collection, term).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", collection, err)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = total
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, data FROM records WHERE `+searchClause+` ORDER BY id LIMIT $3 OFFSET $4`,
		collection, term, limit, q.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	out := []models.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", collection, err)
	}
	return out, total, nil
}

func (s *SQLStore) Get(ctx context.Context, collection, id string) (models.Record, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, `SELECT id, data FROM records WHERE collection = $1 AND id = $2`, collection, n)
	return s.one(row, collection)
}

func (s *SQLStore) FindBy(ctx context.Context, collection, field, value string) (models.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, data FROM records WHERE collection = $1 AND data->>$2 = $3 ORDER BY id LIMIT 1`,
		collection, field, value)
	return s.one(row, collection)
}

func (s *SQLStore) Insert(ctx context.Context, collection string, rec models.Record) (models.Record, error) {
	doc := document(rec)
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode %s record: %w", collection, err)
	}
	var id int64
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO records (collection, data) VALUES ($1, $2) RETURNING id`, collection, body).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", collection, err)
	}
	return withID(id, doc), nil
}

func (s *SQLStore) Update(ctx context.Context, collection, id string, rec models.Record) (models.Record, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, ErrNotFound
	}
	doc := document(rec)
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode %s record: %w", collection, err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE records SET data = $3, updated_at = now() WHERE collection = $1 AND id = $2`, collection, n, body)
	if err != nil {
		return nil, fmt.Errorf("update %s/%d: %w", collection, n, err)
	}
	if err := affected(res); err != nil {
		return nil, err
	}
	return withID(n, doc), nil
}

func (s *SQLStore) Delete(ctx context.Context, collection, id string) error {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE collection = $1 AND id = $2`, collection, n)
	if err != nil {
		return fmt.Errorf("delete %s/%d: %w", collection, n, err)
	}
	return affected(res)
}

func (s *SQLStore) Counts(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT collection, count(*) FROM records GROUP BY collection`)
	if err != nil {
		return nil, fmt.Errorf("count records: %w", err)
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var (
			name string
			n    int
		)
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("count records: %w", err)
		}
		out[name] = n
	}
	return out, rows.Err()
}

// Ping checks the connection.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the connection pool.
func (s *SQLStore) Close() error {
	s.log.Info("Database connection pool closed")
	return s.db.Close()
}

func (s *SQLStore) one(row *sql.Row, collection string) (models.Record, error) {
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", collection, err)
	}
	return rec, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(sc scanner) (models.Record, error) {
	var (
		id   int64
		body []byte
	)
	if err := sc.Scan(&id, &body); err != nil {
		return nil, err
	}
	doc := models.Record{}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode record %d: %w", id, err)
	}
	return withID(id, doc), nil
}

func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
