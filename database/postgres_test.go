package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailadmin/models"
)

func newMock(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
	})
	return NewSQLStore(db), mock
}

func TestSQLStore_Migrate(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS records")).WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, s.Migrate(context.Background()))
}

func TestSQLStore_List(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM records WHERE collection = $1`)).
		WithArgs("customers", "acme").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, data FROM records WHERE collection = $1`)).
		WithArgs("customers", "acme", 10, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "data"}).
			AddRow(int64(42), []byte(`{"fullName":"Acme Corp","creditLimit":1500.5}`)))

	items, total, err := s.List(context.Background(), "customers", ListQuery{Search: "acme", Offset: 10, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 11, total)
	require.Len(t, items, 1)
	assert.Equal(t, json.Number("42"), items[0]["id"])
	assert.Equal(t, json.Number("1500.5"), items[0]["creditLimit"])
}

func TestSQLStore_GetNotFound(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, data FROM records WHERE collection = $1 AND id = $2`)).
		WithArgs("stores", int64(9)).
		WillReturnError(sql.ErrNoRows)

	_, err := s.Get(context.Background(), "stores", "9")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Get(context.Background(), "stores", "not-a-number")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLStore_FindBy(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`data->>$2 = $3`)).
		WithArgs("users", "email", "ada@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "data"}).AddRow(int64(1), []byte(`{"email":"ada@example.com"}`)))

	u, err := s.FindBy(context.Background(), "users", "email", "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "1", u.ID())
}

func TestSQLStore_InsertStripsID(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO records (collection, data) VALUES ($1, $2) RETURNING id`)).
		WithArgs("brands", []byte(`{"brandName":"Acme"}`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))

	rec, err := s.Insert(context.Background(), "brands", models.Record{"id": json.Number("99"), "brandName": "Acme"})
	require.NoError(t, err)
	assert.Equal(t, json.Number("5"), rec["id"])
}

func TestSQLStore_UpdateAndDeleteMissing(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE records SET data = $3`)).
		WithArgs("brands", int64(3), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM records WHERE collection = $1 AND id = $2`)).
		WithArgs("brands", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := s.Update(context.Background(), "brands", "3", models.Record{"brandName": "X"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, s.Delete(context.Background(), "brands", "3"))
}

func TestSQLStore_Counts(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT collection, count(*) FROM records GROUP BY collection`)).
		WillReturnRows(sqlmock.NewRows([]string{"collection", "count"}).AddRow("items", 3).AddRow("users", 1))

	counts, err := s.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"items": 3, "users": 1}, counts)
}

func TestSQLStore_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	s := NewSQLStore(db)

	mock.ExpectPing()
	require.NoError(t, s.Ping(context.Background()))

	mock.ExpectPing().WillReturnError(sql.ErrConnDone)
	assert.ErrorIs(t, s.Ping(context.Background()), sql.ErrConnDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_ListSearchesValuesOnly(t *testing.T) {
	s, mock := newMock(t)
	clause := regexp.QuoteMeta(`jsonb_each_text(data) AS kv`) + `\s+` +
		regexp.QuoteMeta(`WHERE kv.key <> 'passwordHash' AND kv.value ILIKE '%' || $2 || '%' ESCAPE '\'`)
	mock.ExpectQuery(`(?s)SELECT count\(\*\) FROM records WHERE .*` + clause).
		WithArgs("users", `50\%\_off\\`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`(?s)SELECT id, data FROM records WHERE .*` + clause).
		WithArgs("users", `50\%\_off\\`, 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "data"}))

	items, total, err := s.List(context.Background(), "users", ListQuery{Search: `50%_off\`, Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "acme", escapeLike("acme"))
	assert.Equal(t, "$2a$", escapeLike("$2a$"))
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\tmp`, escapeLike(`c:\tmp`))
}
