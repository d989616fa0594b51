// Package testutil provides shared database fixtures for repository tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cloudnativeg23/stadium-matching/internal/models"
)

var dbSerial uint64

// OpenTestDB opens a private in-memory database with the full schema
// migrated. TranslateError matches the production gorm config, so unique
// index violations surface as gorm.ErrDuplicatedKey in tests too.
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named in-memory database keeps the schema alive across pooled
	// connections while staying isolated per test. The counter keeps repeated
	// runs of the same test (go test -count=N) from sharing a database.
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, atomic.AddUint64(&dbSerial, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	err = db.AutoMigrate(
		&models.User{},
		&models.Stadium{}, &models.StadiumCourt{},
		&models.StadiumAvailableTime{}, &models.StadiumDisable{},
		&models.Order{}, &models.Team{}, &models.TeamMember{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// CreateUser inserts a user with a fixed password hash placeholder.
func CreateUser(t *testing.T, db *gorm.DB, name, email string) models.User {
	t.Helper()
	user := models.User{Name: name, Email: email, Password: "x", IsActive: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}
