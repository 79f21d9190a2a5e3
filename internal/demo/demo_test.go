package demo

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Orochi-Adde/drogon/query/criteria"
	"github.com/Orochi-Adde/drogon/query/dialect"
	"github.com/Orochi-Adde/drogon/runtime/client"
)

func setupTestDB(t *testing.T) *client.SQLClient {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	c := client.New(db, dialect.SQLite3)
	t.Cleanup(func() { _ = c.Close() })
	_, err = client.Exec(context.Background(), c, Schema(dialect.SQLite3))
	require.NoError(t, err)
	return c
}

func TestUser_Dirty(t *testing.T) {
	u := NewUser("a", "a@x")
	assert.Equal(t, []int{ColName, ColEmail}, u.Dirty().Indexes())

	stmt, needSelection := u.SQLForInserting(dialect.PostgreSQL)
	assert.Equal(t, "insert into users (name, email) values ($?, $?) returning *", stmt)
	assert.True(t, needSelection)
	assert.Equal(t, []any{"a", "a@x"}, u.InsertArgs())

	loaded := User{ID: 1, Name: "a"}
	assert.Empty(t, loaded.UpdateColumns())
	loaded.ClearEmail()
	assert.Equal(t, []string{"email"}, loaded.UpdateColumns())
	assert.Equal(t, []any{nil}, loaded.UpdateArgs())

	assert.Equal(t, "select * from users where id = $?", loaded.SQLForFindingByPrimaryKey())
	assert.Equal(t, "delete from users where id = $?", loaded.SQLForDeletingByPrimaryKey())
}

func TestUser_Scan(t *testing.T) {
	res := client.NewResult([]string{"id", "name", "email"}, [][]any{{int64(3), "c", nil}}, 1, 0)

	u := NewUser("stale", "stale@x")
	require.NoError(t, u.Scan(res.Row(0)))
	assert.Equal(t, User{ID: 3, Name: "c"}, u)
	assert.Equal(t, "{id:3 name:\"c\" email:\"\"}", u.String())
}

func TestLifecycle(t *testing.T) {
	steps, err := Lifecycle(context.Background(), setupTestDB(t))
	require.NoError(t, err)
	require.Len(t, steps, 5)
	assert.Equal(t, Step{"insert", `{id:1 name:"a" email:"a@x"}`}, steps[0])
	assert.Equal(t, Step{"update", "1 row(s)"}, steps[1])
	assert.Equal(t, Step{"findByPrimaryKey", `{id:1 name:"b" email:"a@x"}`}, steps[2])
	assert.Equal(t, Step{"deleteOne", "1 row(s)"}, steps[3])
	assert.Equal(t, Step{"count", "0"}, steps[4])
}

func TestConcurrentPages(t *testing.T) {
	ctx := context.Background()
	c := setupTestDB(t)

	pages := []Page{{Limit: 3}, {Limit: 4, Offset: 5}, {Limit: 5, Offset: 8}, {Offset: 7}}
	got, err := ConcurrentPages(ctx, c, 10, pages)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, got[Page{Limit: 3}])
	assert.Equal(t, []int64{6, 7, 8, 9}, got[Page{Limit: 4, Offset: 5}])
	assert.Equal(t, []int64{9, 10}, got[Page{Limit: 5, Offset: 8}])
	assert.Equal(t, []int64{8, 9, 10}, got[Page{Offset: 7}])

	n, err := NewUserMapper(c).Count(ctx, criteria.Criteria{})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n, "seeded rows are removed")
}

func TestWindow(t *testing.T) {
	ids := []int64{1, 2, 3}
	assert.Equal(t, []int64{1, 2, 3}, window(ids, Page{}))
	assert.Equal(t, []int64{2}, window(ids, Page{Limit: 1, Offset: 1}))
	assert.Nil(t, window(ids, Page{Offset: 3}))
}
