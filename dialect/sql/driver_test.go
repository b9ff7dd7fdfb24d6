package sql

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*DBPool, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewDBPool(db), mock
}

func TestDBPool(t *testing.T) {
	ctx := context.Background()
	pool, mock := newMock(t)
	mock.ExpectQuery("select 1").WillReturnRows(sqlmock.NewRows([]string{"one"}).AddRow(int64(1)))
	mock.ExpectExec("delete from t").WillReturnResult(sqlmock.NewResult(0, 3))

	c, err := pool.Acquire(ctx)
	require.NoError(t, err)
	rs, err := c.Query(ctx, "select 1", nil)
	require.NoError(t, err)
	rows, err := ScanRows(rs)
	require.NoError(t, err)
	assert.Equal(t, []Row{{"one": int64(1)}}, rows)

	res, err := c.Exec(ctx, "delete from t", nil)
	require.NoError(t, err)
	n, err := res.RowsAffected()
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	require.NoError(t, c.Release())
	assert.ErrorIs(t, c.Release(), ErrConnReturned)
	assert.ErrorIs(t, c.Destroy(), ErrConnReturned)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDBPoolQueryError(t *testing.T) {
	ctx := context.Background()
	pool, mock := newMock(t)
	mock.ExpectQuery("select nope").WillReturnError(errors.New("no such column: nope"))

	c, err := pool.Acquire(ctx)
	require.NoError(t, err)
	defer c.Release()
	rs, err := c.Query(ctx, "select nope", nil)
	require.EqualError(t, err, "no such column: nope")
	assert.Nil(t, rs)
}

func TestSharedPool(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectQuery("select ?").WithArgs(1).WillReturnRows(sqlmock.NewRows([]string{"x"}).AddRow(int64(1)))

	pool := NewSharedPool(db)
	c, err := pool.Acquire(ctx)
	require.NoError(t, err)
	rs, err := c.Query(ctx, "select ?", []any{1})
	require.NoError(t, err)
	rows, err := ScanRows(rs)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.NoError(t, c.Release())
	assert.NoError(t, c.Release())
	assert.NoError(t, c.Destroy())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScanRows(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("select").WillReturnRows(
		sqlmock.NewRows([]string{"id", "name", "user_active"}).
			AddRow(int64(1), "alex", []byte("1")).
			AddRow(int64(2), nil, []byte("0")),
	)
	rs, err := db.QueryContext(ctx, "select")
	require.NoError(t, err)
	rows, err := ScanRows(rs)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, Row{"id": int64(1), "name": "alex", "user_active": []byte("1")}, rows[0])
	assert.Equal(t, Row{"id": int64(2), "name": nil, "user_active": []byte("0")}, rows[1])

	mock.ExpectQuery("select").WillReturnRows(
		sqlmock.NewRows([]string{"id"}).AddRow(int64(1)).AddRow(int64(2)).RowError(1, errors.New("read: connection reset")),
	)
	rs, err = db.QueryContext(ctx, "select")
	require.NoError(t, err)
	_, err = ScanRows(rs)
	require.EqualError(t, err, "read: connection reset")
	require.NoError(t, mock.ExpectationsWereMet())
}
