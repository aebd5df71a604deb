// Package testutil holds helpers shared by the storage, action and http tests.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"wtfSocial/crud"
	"wtfSocial/domain"
)

// NewDB opens a fresh in-memory SQLite database with every table migrated.
// Each call gets its own database, so tests can run in parallel.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A shared cache in-memory database disappears with its last connection.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, crud.AutoMigrate(db), "Failed to run migrations")
	return db
}

// NewStore returns the crud services on top of a fresh test database.
func NewStore(t *testing.T) (*crud.Services, *gorm.DB) {
	t.Helper()
	db := NewDB(t)
	s, err := crud.NewAllServices(db)
	require.NoError(t, err)
	return s, db
}

// CreateUser inserts a user with the given handle. Its external id is "ext|<handle>".
func CreateUser(t *testing.T, db *gorm.DB, handle string) *domain.User {
	t.Helper()
	email := handle + "@example.com"
	u := &domain.User{
		ExternalID: "ext|" + handle,
		Email:      &email,
		Name:       handle,
		Handle:     handle,
	}
	require.NoError(t, db.Create(u).Error, "Failed to create test user")
	return u
}

// CreatePost inserts a post by author created at the given time.
func CreatePost(t *testing.T, db *gorm.DB, authorID, content string, at time.Time) *domain.Post {
	t.Helper()
	p := &domain.Post{
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: at,
	}
	require.NoError(t, db.Create(p).Error, "Failed to create test post")
	return p
}

// CreateComment inserts a comment created at the given time.
func CreateComment(t *testing.T, db *gorm.DB, postID, authorID, content string, at time.Time) *domain.Comment {
	t.Helper()
	c := &domain.Comment{
		PostID:    postID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: at,
	}
	require.NoError(t, db.Create(c).Error, "Failed to create test comment")
	return c
}

// FailCreatesOn makes every insert into table fail with err, until the test ends.
func FailCreatesOn(t *testing.T, db *gorm.DB, table string, err error) {
	t.Helper()
	name := "testutil:fail_" + table
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register(name, func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			_ = tx.AddError(err)
		}
	}))
	t.Cleanup(func() { _ = db.Callback().Create().Remove(name) })
}

// FailQueriesOn makes every select from table fail with err, until the test ends.
func FailQueriesOn(t *testing.T, db *gorm.DB, table string, err error) {
	t.Helper()
	name := "testutil:fail_query_" + table
	require.NoError(t, db.Callback().Query().Before("gorm:query").Register(name, func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			_ = tx.AddError(err)
		}
	}))
	t.Cleanup(func() { _ = db.Callback().Query().Remove(name) })
}

// AfterQueryOn runs fn once, right after the first select from table has read its rows.
func AfterQueryOn(t *testing.T, db *gorm.DB, table string, fn func()) {
	t.Helper()
	name := "testutil:after_query_" + table
	var once sync.Once
	require.NoError(t, db.Callback().Query().After("gorm:query").Register(name, func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			once.Do(fn)
		}
	}))
	t.Cleanup(func() { _ = db.Callback().Query().Remove(name) })
}

// Count returns the number of rows of model matching the query.
func Count(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.WithContext(context.Background()).Model(model).Where(query, args...).Count(&n).Error)
	return n
}
