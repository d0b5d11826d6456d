package repository

import (
	"context"

	"melodify/model"

	"gorm.io/gorm"
)

// PlaylistRepository 歌单数据访问接口
type PlaylistRepository interface {
	Create(ctx context.Context, playlist *model.Playlist) error
	// AddSong inserts a join row. Neither the playlist owner nor the song is checked.
	AddSong(ctx context.Context, entry *model.PlaylistSong) error
	// ListByUser returns the user's playlists newest first, each with its
	// entries in insertion order and the entry songs loaded.
	ListByUser(ctx context.Context, userID string) ([]model.Playlist, error)
}

type gormPlaylistRepository struct {
	db *gorm.DB
}

// NewGormPlaylistRepository 创建 GORM 歌单仓库
func NewGormPlaylistRepository(db *gorm.DB) PlaylistRepository {
	return &gormPlaylistRepository{db: db}
}

func (r *gormPlaylistRepository) Create(ctx context.Context, playlist *model.Playlist) error {
	return translate(r.db.WithContext(ctx).Create(playlist).Error)
}

func (r *gormPlaylistRepository) AddSong(ctx context.Context, entry *model.PlaylistSong) error {
	return translate(r.db.WithContext(ctx).Create(entry).Error)
}

func (r *gormPlaylistRepository) ListByUser(ctx context.Context, userID string) ([]model.Playlist, error) {
	playlists := []model.Playlist{}
	err := r.db.WithContext(ctx).
		Preload("Songs", func(db *gorm.DB) *gorm.DB {
			return db.Order("playlist_songs.id ASC")
		}).
		Preload("Songs.Song").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&playlists).Error
	return playlists, translate(err)
}
