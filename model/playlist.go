package model

import "time"

// Playlist is owned by the user who created it.
type Playlist struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	UserID    string    `json:"user_id" gorm:"size:36;not null;index"`
	CreatedAt time.Time `json:"created_at"`

	Songs []PlaylistSong `json:"playlist_songs,omitempty" gorm:"foreignKey:PlaylistID"`
}

// TableName 指定表名
func (Playlist) TableName() string {
	return "playlists"
}

// PlaylistSong joins a playlist to a song.
type PlaylistSong struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	PlaylistID int64     `json:"playlist_id" gorm:"not null;index"`
	SongID     int64     `json:"song_id" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`

	Song *Song `json:"song,omitempty" gorm:"foreignKey:SongID"`
}

// TableName 指定表名
func (PlaylistSong) TableName() string {
	return "playlist_songs"
}
