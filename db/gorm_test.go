package db

import (
	"path/filepath"
	"strings"
	"testing"

	"melodify/config"
	"melodify/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestDSN(t *testing.T) {
	cfg := &config.Config{
		DBHost:     "db.internal",
		DBPort:     "3307",
		DBUser:     "melo",
		DBPassword: "p@ss",
		DBName:     "music",
	}

	dsn := DSN(cfg)

	for _, want := range []string{"melo:p@ss@tcp(db.internal:3307)/music", "parseTime=true", "charset=utf8mb4"} {
		if !strings.Contains(dsn, want) {
			t.Fatalf("DSN %q missing %q", dsn, want)
		}
	}
}

func TestAutoMigrateCreatesTables(t *testing.T) {
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "melodify.db")), &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := AutoMigrate(gdb); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}

	for _, table := range []string{"users", "songs", "likes", "playlists", "playlist_songs"} {
		if !gdb.Migrator().HasTable(table) {
			t.Fatalf("expected table %s", table)
		}
	}
	if !gdb.Migrator().HasIndex(&model.Like{}, "idx_likes_user_song") {
		t.Fatal("expected unique index on likes(user_id, song_id)")
	}
}

func TestAutoMigrateRequiresDB(t *testing.T) {
	if err := AutoMigrate(nil); err == nil {
		t.Fatal("expected error for nil db")
	}
}
