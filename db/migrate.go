package db

import (
	"fmt"

	"melodify/logger"
	"melodify/model"

	"gorm.io/gorm"
)

// Models lists every table owned by the service, in creation order.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Song{},
		&model.Like{},
		&model.Playlist{},
		&model.PlaylistSong{},
	}
}

// AutoMigrate creates or updates the schema for all models.
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("GORM database not initialized")
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to auto migrate models: %w", err)
	}
	logger.Info("Models migrated successfully with GORM")
	return nil
}
