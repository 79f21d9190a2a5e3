// Package demo holds the users model shared by the CLI and the examples.
package demo

import (
	"fmt"

	"github.com/Orochi-Adde/drogon/query/dialect"
	"github.com/Orochi-Adde/drogon/runtime/client"
	"github.com/Orochi-Adde/drogon/runtime/model"
)

// Column indexes of users.
const (
	ColID = iota
	ColName
	ColEmail
)

// Users describes the users table.
var Users = &model.Table{
	Name:          "users",
	Columns:       []string{"id", "name", "email"},
	PrimaryKey:    []string{"id"},
	AutoIncrement: "id",
}

// Schema returns the DDL for users on the given backend.
func Schema(t dialect.ClientType) string {
	switch t {
	case dialect.PostgreSQL:
		return "create table if not exists users (id bigserial primary key, name text not null, email text)"
	case dialect.MySQL:
		return "create table if not exists users (id bigint auto_increment primary key, name varchar(255) not null, email varchar(255))"
	case dialect.DuckDB:
		return "create sequence if not exists users_id_seq; " +
			"create table if not exists users (id bigint primary key default nextval('users_id_seq'), name varchar not null, email varchar)"
	default:
		return "create table if not exists users (id integer primary key autoincrement, name text not null, email text)"
	}
}

// User is a row of users.
type User struct {
	ID    int64
	Name  string
	Email *string

	dirty model.Dirty
}

// NewUser returns an unsaved user with name and email assigned.
func NewUser(name, email string) User {
	var u User
	u.SetName(name)
	u.SetEmail(email)
	return u
}

// SetID assigns the key.
func (u *User) SetID(id int64) {
	u.ID = id
	u.dirty.Set(ColID)
}

// SetName assigns name.
func (u *User) SetName(name string) {
	u.Name = name
	u.dirty.Set(ColName)
}

// SetEmail assigns email.
func (u *User) SetEmail(email string) {
	u.Email = &email
	u.dirty.Set(ColEmail)
}

// ClearEmail sets email to null.
func (u *User) ClearEmail() {
	u.Email = nil
	u.dirty.Set(ColEmail)
}

// Dirty returns the columns assigned since the user was loaded or built.
func (u User) Dirty() model.Dirty {
	return u.dirty
}

// EmailOr returns the email or def when it is null.
func (u User) EmailOr(def string) string {
	if u.Email == nil {
		return def
	}
	return *u.Email
}

func (u User) String() string {
	return fmt.Sprintf("{id:%d name:%q email:%q}", u.ID, u.Name, u.EmailOr(""))
}

func (u User) values() []any {
	var email any
	if u.Email != nil {
		email = *u.Email
	}
	return []any{u.ID, u.Name, email}
}

// TableName implements orm.Model.
func (User) TableName() string {
	return Users.Name
}

// SQLForInserting implements orm.Model.
func (u User) SQLForInserting(typ dialect.ClientType) (string, bool) {
	return Users.InsertSQL(typ, u.dirty)
}

// InsertArgs implements orm.Model.
func (u User) InsertArgs() []any {
	return Users.InsertArgs(u.values(), u.dirty)
}

// PrimaryKey implements orm.Keyed.
func (u User) PrimaryKey() int64 {
	return u.ID
}

// PrimaryKeyColumns implements orm.Keyed.
func (User) PrimaryKeyColumns() []string {
	return Users.PrimaryKey
}

// UpdateColumns implements orm.Keyed.
func (u User) UpdateColumns() []string {
	return Users.UpdateColumns(u.dirty)
}

// UpdateArgs implements orm.Keyed.
func (u User) UpdateArgs() []any {
	return Users.UpdateArgs(u.values(), u.dirty)
}

var (
	findUserSQL   = Users.FindByPrimaryKeySQL()
	deleteUserSQL = Users.DeleteByPrimaryKeySQL()
)

// SQLForFindingByPrimaryKey implements orm.Keyed.
func (User) SQLForFindingByPrimaryKey() string {
	return findUserSQL
}

// SQLForDeletingByPrimaryKey implements orm.Keyed.
func (User) SQLForDeletingByPrimaryKey() string {
	return deleteUserSQL
}

// Scan implements orm.RowPtr. The loaded user has no dirty columns.
func (u *User) Scan(row client.Row) error {
	var (
		out   User
		email *string
	)
	if err := row.Column("id", &out.ID); err != nil {
		return err
	}
	if err := row.Column("name", &out.Name); err != nil {
		return err
	}
	if err := row.Column("email", &email); err != nil {
		return err
	}
	out.Email = email
	*u = out
	return nil
}

// SetInsertID implements orm.RowPtr.
func (u *User) SetInsertID(id int64) {
	u.ID = id
}
