package repository

import (
	"context"

	"melodify/model"

	"gorm.io/gorm"
)

// SongRepository 歌曲数据访问接口
type SongRepository interface {
	// List returns every song, newest id first.
	List(ctx context.Context) ([]model.Song, error)
	GetByID(ctx context.Context, id int64) (*model.Song, error)
	Create(ctx context.Context, song *model.Song) error
}

type gormSongRepository struct {
	db *gorm.DB
}

// NewGormSongRepository 创建 GORM 歌曲仓库
func NewGormSongRepository(db *gorm.DB) SongRepository {
	return &gormSongRepository{db: db}
}

func (r *gormSongRepository) List(ctx context.Context) ([]model.Song, error) {
	songs := []model.Song{}
	err := r.db.WithContext(ctx).Order("id DESC").Find(&songs).Error
	return songs, translate(err)
}

func (r *gormSongRepository) GetByID(ctx context.Context, id int64) (*model.Song, error) {
	var song model.Song
	if err := r.db.WithContext(ctx).First(&song, id).Error; err != nil {
		return nil, translate(err)
	}
	return &song, nil
}

func (r *gormSongRepository) Create(ctx context.Context, song *model.Song) error {
	return translate(r.db.WithContext(ctx).Create(song).Error)
}
