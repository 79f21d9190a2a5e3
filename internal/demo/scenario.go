package demo

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/Orochi-Adde/drogon/orm"
	"github.com/Orochi-Adde/drogon/query/criteria"
	"github.com/Orochi-Adde/drogon/query/sqlgen"
	"github.com/Orochi-Adde/drogon/runtime/client"
	"github.com/Orochi-Adde/drogon/runtime/future"
)

// UserMapper is the keyed mapper for users.
type UserMapper = orm.KeyedMapper[User, int64, *User]

// NewUserMapper returns a users mapper on c.
func NewUserMapper(c client.Client) *UserMapper {
	return orm.NewKeyed[User, int64](c)
}

// Step is one completed scenario operation.
type Step struct {
	Op     string
	Result string
}

// Lifecycle inserts a user, renames it, reads it back, deletes it and
// counts what is left. It touches only the row it creates.
func Lifecycle(ctx context.Context, c client.Client) ([]Step, error) {
	users := NewUserMapper(c)
	var steps []Step

	inserted, err := users.Insert(ctx, NewUser("a", "a@x"))
	if err != nil {
		return steps, fmt.Errorf("insert: %w", err)
	}
	steps = append(steps, Step{"insert", inserted.String()})

	change := User{ID: inserted.ID}
	change.SetName("b")
	n, err := users.Update(ctx, change)
	if err != nil {
		return steps, fmt.Errorf("update: %w", err)
	}
	steps = append(steps, Step{"update", fmt.Sprintf("%d row(s)", n)})

	found, err := users.FindByPrimaryKey(ctx, inserted.ID)
	if err != nil {
		return steps, fmt.Errorf("find by primary key: %w", err)
	}
	steps = append(steps, Step{"findByPrimaryKey", found.String()})

	n, err = users.DeleteOne(ctx, found)
	if err != nil {
		return steps, fmt.Errorf("delete: %w", err)
	}
	steps = append(steps, Step{"deleteOne", fmt.Sprintf("%d row(s)", n)})

	left, err := users.Count(ctx, criteria.Eq("id", inserted.ID))
	if err != nil {
		return steps, fmt.Errorf("count: %w", err)
	}
	steps = append(steps, Step{"count", fmt.Sprint(left)})

	if found.Name != "b" || n != 1 || left != 0 {
		return steps, fmt.Errorf("lifecycle mismatch: found %s, deleted %d, left %d", found, n, left)
	}
	return steps, nil
}

// Page is a limit/offset window over users ordered by id.
type Page struct {
	Limit  uint64
	Offset uint64
}

// ConcurrentPages seeds n users, then reads every page at once, each on its
// own mapper sharing c. The seeded rows are removed before returning; a
// failed cleanup is reported alongside any read error.
func ConcurrentPages(ctx context.Context, c client.Client, n int, pages []Page) (out map[Page][]int64, err error) {
	seeder := NewUserMapper(c)
	var ids []int64
	defer func() {
		if len(ids) == 0 {
			return
		}
		if _, cleanupErr := seeder.DeleteBy(context.WithoutCancel(ctx), criteria.New("id", criteria.In, ids)); cleanupErr != nil {
			err = future.Combine(err, fmt.Errorf("cleanup: %w", cleanupErr))
			out = nil
		}
	}()
	for i := 0; i < n; i++ {
		u, err := seeder.Insert(ctx, NewUser(fmt.Sprintf("page-%d", i), fmt.Sprintf("page-%d@x", i)))
		if err != nil {
			return nil, fmt.Errorf("seed: %w", err)
		}
		ids = append(ids, u.ID)
	}
	seeded := criteria.New("id", criteria.In, ids)

	results := make([][]int64, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range pages {
		users := NewUserMapper(c)
		g.Go(func() error {
			got, err := users.OrderBy("id", sqlgen.ASC).Limit(p.Limit).Offset(p.Offset).FindBy(gctx, seeded)
			if err != nil {
				return err
			}
			for _, u := range got {
				results[i] = append(results[i], u.ID)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out = make(map[Page][]int64, len(pages))
	for i, p := range pages {
		want := window(ids, p)
		if !slices.Equal(want, results[i]) {
			return nil, fmt.Errorf("page limit %d offset %d: got %v, want %v", p.Limit, p.Offset, results[i], want)
		}
		out[p] = results[i]
	}
	return out, nil
}

func window(ids []int64, p Page) []int64 {
	if p.Offset >= uint64(len(ids)) {
		return nil
	}
	end := uint64(len(ids))
	if p.Limit > 0 && p.Offset+p.Limit < end {
		end = p.Offset + p.Limit
	}
	return ids[p.Offset:end]
}
