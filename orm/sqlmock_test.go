package orm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Orochi-Adde/drogon/internal/demo"
	"github.com/Orochi-Adde/drogon/orm"
	"github.com/Orochi-Adde/drogon/query/dialect"
	"github.com/Orochi-Adde/drogon/runtime/client"
)

func newMockClient(t *testing.T, typ dialect.ClientType) (*client.SQLClient, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return client.New(db, typ), mock
}

func TestPostgres_InsertReturning(t *testing.T) {
	c, mock := newMockClient(t, dialect.PostgreSQL)
	mock.ExpectQuery("insert into users (name, email) values ($1, $2) returning *").
		WithArgs("a", "a@x").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).AddRow(int64(1), "a", "a@x"))

	got, err := orm.NewKeyed[demo.User, int64](c).Insert(context.Background(), demo.NewUser("a", "a@x"))
	require.NoError(t, err)
	assert.Equal(t, "{id:1 name:\"a\" email:\"a@x\"}", got.String())
}

func TestPostgres_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	c, mock := newMockClient(t, dialect.PostgreSQL)
	users := orm.NewKeyed[demo.User, int64](c)

	mock.ExpectExec("update users set name = $1 where id = $2").
		WithArgs("b", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("delete from users where id = $1").
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	u := demo.User{ID: 1}
	u.SetName("b")
	n, err := users.Update(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)

	n, err = users.DeleteByPrimaryKey(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)
}

func TestPostgres_UniqueViolationPassesThrough(t *testing.T) {
	c, mock := newMockClient(t, dialect.PostgreSQL)
	mock.ExpectExec("insert into accounts (id, owner, status) values ($1, $2, $3)").
		WithArgs(int64(1), "ann", "active").
		WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "accounts_pkey"`))

	// every column assigned: nothing to read back
	a := newAccount("ann")
	a.assign(0, 2)
	a.ID = 1
	a.Status = "active"
	_, err := orm.NewKeyed[account, int64](c).Insert(context.Background(), a)
	require.Error(t, err)

	var failure *orm.Failure
	assert.False(t, errors.As(err, &failure))
	assert.ErrorIs(t, err, client.ErrUniqueConstraint)
}

func TestMySQL_InsertIDAndReadBack(t *testing.T) {
	c, mock := newMockClient(t, dialect.MySQL)
	mock.ExpectExec("insert into accounts (owner) values (?)").
		WithArgs("ann").
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectQuery("select * from accounts where id = ?").
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner", "status"}).AddRow(int64(9), "ann", "active"))

	got, err := orm.NewKeyed[account, int64](c).Insert(context.Background(), newAccount("ann"))
	require.NoError(t, err)
	assert.Equal(t, account{ID: 9, Owner: "ann", Status: "active"}, got)
}

func TestMySQL_ReadBackFailureIsWrapped(t *testing.T) {
	c, mock := newMockClient(t, dialect.MySQL)
	lost := errors.New("invalid connection")
	mock.ExpectExec("insert into accounts (owner) values (?)").
		WithArgs("bob").
		WillReturnResult(sqlmock.NewResult(4, 1))
	mock.ExpectQuery("select * from accounts where id = ?").
		WithArgs(int64(4)).
		WillReturnError(lost)

	_, err := orm.NewKeyed[account, int64](c).Insert(context.Background(), newAccount("bob"))
	require.Error(t, err)

	var failure *orm.Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "insert", failure.Op)
	assert.ErrorIs(t, err, lost)
	assert.Contains(t, err.Error(), "orm: insert: invalid connection")
}

func TestMySQL_FindOneForUpdate(t *testing.T) {
	c, mock := newMockClient(t, dialect.MySQL)
	mock.ExpectQuery("select * from users where id = ? for update").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}))

	_, err := orm.NewKeyed[demo.User, int64](c).ForUpdate().FindByPrimaryKey(context.Background(), 5)
	assert.ErrorIs(t, err, orm.ErrNoneFound)
}
