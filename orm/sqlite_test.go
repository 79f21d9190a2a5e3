package orm_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/Orochi-Adde/drogon/internal/demo"
	"github.com/Orochi-Adde/drogon/orm"
	"github.com/Orochi-Adde/drogon/query/criteria"
	"github.com/Orochi-Adde/drogon/query/dialect"
	"github.com/Orochi-Adde/drogon/query/sqlgen"
	"github.com/Orochi-Adde/drogon/runtime/client"
)

// setupTestDB creates an in-memory SQLite database with the users table.
func setupTestDB(t *testing.T) *client.SQLClient {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// one connection so every statement sees the same in-memory database
	db.SetMaxOpenConns(1)

	c := client.New(db, dialect.SQLite3)
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, client.ExecAll(context.Background(), c,
		demo.Schema(dialect.SQLite3),
		"create table accounts (id integer primary key autoincrement, owner text not null, status text not null default 'active')",
	))
	return c
}

func seedUsers(t *testing.T, users *orm.KeyedMapper[demo.User, int64, *demo.User], n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		_, err := users.Insert(context.Background(), demo.NewUser(fmt.Sprintf("u%d", i), fmt.Sprintf("u%d@x", i)))
		require.NoError(t, err)
	}
}

func ids(users []demo.User) []int64 {
	out := make([]int64, len(users))
	for i, u := range users {
		out[i] = u.ID
	}
	return out
}

func TestSQLite_UserLifecycle(t *testing.T) {
	ctx := context.Background()
	users := orm.NewKeyed[demo.User, int64](setupTestDB(t))

	inserted, err := users.Insert(ctx, demo.NewUser("a", "a@x"))
	require.NoError(t, err)
	assert.Equal(t, `{id:1 name:"a" email:"a@x"}`, inserted.String())

	found, err := users.FindByPrimaryKey(ctx, inserted.ID)
	require.NoError(t, err)
	assert.Equal(t, inserted.String(), found.String())

	change := demo.User{ID: 1}
	change.SetName("b")
	n, err := users.Update(ctx, change)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)

	found, err = users.FindByPrimaryKey(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, `{id:1 name:"b" email:"a@x"}`, found.String())

	n, err = users.DeleteOne(ctx, found)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)

	count, err := users.Count(ctx, criteria.Criteria{})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSQLite_FindByPrimaryKeyMissing(t *testing.T) {
	users := orm.NewKeyed[demo.User, int64](setupTestDB(t))

	_, err := users.FindByPrimaryKey(context.Background(), 1)
	assert.ErrorIs(t, err, orm.ErrNoneFound)
}

func TestSQLite_FindOne(t *testing.T) {
	ctx := context.Background()
	users := orm.NewKeyed[demo.User, int64](setupTestDB(t))
	seedUsers(t, users, 2)
	_, err := users.Insert(ctx, demo.NewUser("u1", "other@x"))
	require.NoError(t, err)

	got, err := users.FindOne(ctx, criteria.Eq("email", "u2@x"))
	require.NoError(t, err)
	assert.Equal(t, "u2", got.Name)

	_, err = users.FindOne(ctx, criteria.Eq("name", "u1"))
	assert.ErrorIs(t, err, orm.ErrMultipleFound)

	_, err = users.FindOne(ctx, criteria.Eq("name", "nobody"))
	assert.ErrorIs(t, err, orm.ErrNoneFound)
}

func TestSQLite_CountIgnoresPagination(t *testing.T) {
	ctx := context.Background()
	users := orm.NewKeyed[demo.User, int64](setupTestDB(t))

	n, err := users.Count(ctx, criteria.Criteria{})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)

	seedUsers(t, users, 5)

	n, err = users.Limit(2).Offset(1).Count(ctx, criteria.Criteria{})
	require.NoError(t, err)
	assert.Equal(t, uint64(5), n)

	n, err = users.Paginate(3, 1).Count(ctx, criteria.New("id", criteria.In, []int64{1, 3, 9}))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)
}

func TestSQLite_Pagination(t *testing.T) {
	ctx := context.Background()
	users := orm.NewKeyed[demo.User, int64](setupTestDB(t))
	seedUsers(t, users, 6)

	page, err := users.OrderBy("id", sqlgen.ASC).Paginate(2, 2).FindAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 4}, ids(page))

	tail, err := users.OrderBy("id", sqlgen.ASC).Offset(4).FindAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 6}, ids(tail))

	desc, err := users.OrderBy("id", sqlgen.DESC).Limit(2).FindBy(ctx, criteria.New("id", criteria.LE, 4))
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 3}, ids(desc))

	// locks are dropped on SQLite instead of failing
	locked, err := users.ForUpdate().FindByPrimaryKey(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), locked.ID)
}

func TestSQLite_UpdateIdempotent(t *testing.T) {
	ctx := context.Background()
	users := orm.NewKeyed[demo.User, int64](setupTestDB(t))
	seedUsers(t, users, 1)

	change := demo.User{ID: 1}
	change.SetName("same")
	for i := 0; i < 2; i++ {
		n, err := users.Update(ctx, change)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), n)
	}

	missing := demo.User{ID: 99}
	missing.SetName("x")
	n, err := users.Update(ctx, missing)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)

	// no dirty columns: nothing is written, the count reflects the key
	n, err = users.Update(ctx, demo.User{ID: 1})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)
	n, err = users.Update(ctx, demo.User{ID: 99})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)
}

func TestSQLite_DeleteByPrimaryKeyTwice(t *testing.T) {
	ctx := context.Background()
	users := orm.NewKeyed[demo.User, int64](setupTestDB(t))
	seedUsers(t, users, 2)

	n, err := users.DeleteByPrimaryKey(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)

	n, err = users.DeleteByPrimaryKey(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)

	n, err = users.DeleteBy(ctx, criteria.New("name", criteria.Like, "u%"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)
}

func TestSQLite_InsertWithAssignedKey(t *testing.T) {
	ctx := context.Background()
	users := orm.NewKeyed[demo.User, int64](setupTestDB(t))

	u := demo.NewUser("k", "k@x")
	u.SetID(40)
	got, err := users.Insert(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, int64(40), got.ID)

	_, err = users.Insert(ctx, u)
	assert.ErrorIs(t, err, client.ErrUniqueConstraint)
}

func TestSQLite_InsertReadsBackServerDefaults(t *testing.T) {
	ctx := context.Background()
	accounts := orm.NewKeyed[account, int64](setupTestDB(t))

	got, err := accounts.Insert(ctx, newAccount("ann"))
	require.NoError(t, err)
	assert.Equal(t, account{ID: 1, Owner: "ann", Status: "active"}, got)
}

func TestSQLite_IndependentMappersConcurrently(t *testing.T) {
	c := setupTestDB(t)
	seedUsers(t, orm.NewKeyed[demo.User, int64](c), 10)

	pages := []struct {
		limit, offset uint64
		want          []int64
	}{
		{3, 0, []int64{1, 2, 3}},
		{4, 5, []int64{6, 7, 8, 9}},
		{2, 8, []int64{9, 10}},
	}

	g, ctx := errgroup.WithContext(context.Background())
	for _, p := range pages {
		users := orm.NewKeyed[demo.User, int64](c)
		g.Go(func() error {
			for i := 0; i < 20; i++ {
				got, err := users.OrderBy("id", sqlgen.ASC).Limit(p.limit).Offset(p.offset).FindAll(ctx)
				if err != nil {
					return err
				}
				if fmt.Sprint(ids(got)) != fmt.Sprint(p.want) {
					return fmt.Errorf("limit %d offset %d: got %v", p.limit, p.offset, ids(got))
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}
