package orm_test

import (
	"github.com/Orochi-Adde/drogon/query/dialect"
	"github.com/Orochi-Adde/drogon/runtime/client"
	"github.com/Orochi-Adde/drogon/runtime/model"
)

// event is a keyless append-only row whose timestamp the database fills in.
type event struct {
	Payload   string
	CreatedAt string
}

var events = &model.Table{
	Name:           "events",
	Columns:        []string{"payload", "created_at"},
	ServerDefaults: []string{"created_at"},
}

func (event) TableName() string { return events.Name }

func (e event) SQLForInserting(typ dialect.ClientType) (string, bool) {
	var set model.Dirty
	set.Set(0)
	return events.InsertSQL(typ, set)
}

func (e event) InsertArgs() []any {
	var set model.Dirty
	set.Set(0)
	return events.InsertArgs([]any{e.Payload, e.CreatedAt}, set)
}

func (e *event) Scan(row client.Row) error {
	if err := row.Column("payload", &e.Payload); err != nil {
		return err
	}
	return row.Column("created_at", &e.CreatedAt)
}

func (e *event) SetInsertID(int64) {}

// account has a generated key and a server-side default status.
type account struct {
	ID     int64
	Owner  string
	Status string
	dirty  model.Dirty
}

var accounts = &model.Table{
	Name:           "accounts",
	Columns:        []string{"id", "owner", "status"},
	PrimaryKey:     []string{"id"},
	AutoIncrement:  "id",
	ServerDefaults: []string{"status"},
}

func newAccount(owner string) account {
	a := account{Owner: owner}
	a.dirty.Set(1)
	return a
}

func (a *account) assign(cols ...int) {
	for _, c := range cols {
		a.dirty.Set(c)
	}
}

func (a account) values() []any { return []any{a.ID, a.Owner, a.Status} }

func (account) TableName() string { return accounts.Name }

func (a account) SQLForInserting(typ dialect.ClientType) (string, bool) {
	return accounts.InsertSQL(typ, a.dirty)
}

func (a account) InsertArgs() []any          { return accounts.InsertArgs(a.values(), a.dirty) }
func (a account) PrimaryKey() int64          { return a.ID }
func (account) PrimaryKeyColumns() []string  { return accounts.PrimaryKey }
func (a account) UpdateColumns() []string    { return accounts.UpdateColumns(a.dirty) }
func (a account) UpdateArgs() []any          { return accounts.UpdateArgs(a.values(), a.dirty) }

func (account) SQLForFindingByPrimaryKey() string  { return "" }
func (account) SQLForDeletingByPrimaryKey() string { return "" }

func (a *account) Scan(row client.Row) error {
	*a = account{}
	return row.Scan(&a.ID, &a.Owner, &a.Status)
}

func (a *account) SetInsertID(id int64) { a.ID = id }

// ledger declares a two-column key but is keyed by a single value.
type ledger struct{ account }

func (ledger) PrimaryKeyColumns() []string { return []string{"id", "owner"} }

// membershipKey is the composite key of membership.
type membershipKey struct {
	UserID  int64
	GroupID int64
}

func (k membershipKey) KeyValues() []any { return []any{k.UserID, k.GroupID} }

type membership struct {
	UserID  int64
	GroupID int64
	Role    string
	dirty   model.Dirty
}

var memberships = &model.Table{
	Name:       "memberships",
	Columns:    []string{"user_id", "group_id", "role"},
	PrimaryKey: []string{"user_id", "group_id"},
}

func (m membership) values() []any { return []any{m.UserID, m.GroupID, m.Role} }

func (membership) TableName() string { return memberships.Name }

func (m membership) SQLForInserting(typ dialect.ClientType) (string, bool) {
	return memberships.InsertSQL(typ, model.All(3))
}

func (m membership) InsertArgs() []any { return m.values() }

func (m membership) PrimaryKey() membershipKey {
	return membershipKey{UserID: m.UserID, GroupID: m.GroupID}
}

func (membership) PrimaryKeyColumns() []string { return memberships.PrimaryKey }
func (m membership) UpdateColumns() []string   { return memberships.UpdateColumns(m.dirty) }
func (m membership) UpdateArgs() []any         { return memberships.UpdateArgs(m.values(), m.dirty) }

func (membership) SQLForFindingByPrimaryKey() string  { return "" }
func (membership) SQLForDeletingByPrimaryKey() string { return "" }

func (m *membership) Scan(row client.Row) error {
	*m = membership{}
	return row.Scan(&m.UserID, &m.GroupID, &m.Role)
}

func (m *membership) SetInsertID(int64) {}
