package model

import "time"

// Like marks that a user currently likes a song. The combination of UserID
// and SongID is unique; toggling inserts or deletes the row.
type Like struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    string    `json:"user_id" gorm:"size:36;not null;uniqueIndex:idx_likes_user_song"`
	SongID    int64     `json:"song_id" gorm:"not null;uniqueIndex:idx_likes_user_song;index"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`

	Song *Song `json:"song,omitempty" gorm:"foreignKey:SongID"`
}

// TableName 指定表名
func (Like) TableName() string {
	return "likes"
}

// ToggleLikeResult is the outcome of flipping a like.
type ToggleLikeResult struct {
	Message    string `json:"message"`
	User       string `json:"user"`
	Song       string `json:"song"`
	Liked      bool   `json:"liked"`
	LikesCount int64  `json:"likes_count"`
}
