package repository

import (
	"context"

	"melodify/model"

	"gorm.io/gorm"
)

// LikeRepository 点赞数据访问接口
type LikeRepository interface {
	// Find returns ErrNotFound when the user has not liked the song.
	Find(ctx context.Context, userID string, songID int64) (*model.Like, error)
	Create(ctx context.Context, like *model.Like) error
	Delete(ctx context.Context, userID string, songID int64) error
	// CountBySong returns the exact number of likes without loading rows.
	CountBySong(ctx context.Context, songID int64) (int64, error)
	// ListByUser returns the user's likes with their songs, most recent first.
	ListByUser(ctx context.Context, userID string) ([]model.Like, error)
}

type gormLikeRepository struct {
	db *gorm.DB
}

// NewGormLikeRepository 创建 GORM 点赞仓库
func NewGormLikeRepository(db *gorm.DB) LikeRepository {
	return &gormLikeRepository{db: db}
}

func (r *gormLikeRepository) Find(ctx context.Context, userID string, songID int64) (*model.Like, error) {
	var like model.Like
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND song_id = ?", userID, songID).
		First(&like).Error
	if err != nil {
		return nil, translate(err)
	}
	return &like, nil
}

func (r *gormLikeRepository) Create(ctx context.Context, like *model.Like) error {
	return translate(r.db.WithContext(ctx).Create(like).Error)
}

func (r *gormLikeRepository) Delete(ctx context.Context, userID string, songID int64) error {
	return translate(r.db.WithContext(ctx).
		Where("user_id = ? AND song_id = ?", userID, songID).
		Delete(&model.Like{}).Error)
}

func (r *gormLikeRepository) CountBySong(ctx context.Context, songID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Like{}).Where("song_id = ?", songID).Count(&count).Error
	return count, translate(err)
}

func (r *gormLikeRepository) ListByUser(ctx context.Context, userID string) ([]model.Like, error) {
	likes := []model.Like{}
	err := r.db.WithContext(ctx).
		Preload("Song").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&likes).Error
	return likes, translate(err)
}
