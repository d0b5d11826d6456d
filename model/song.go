package model

import "time"

// Song is the metadata row for an uploaded track. Audio and cover files live
// in object storage; only their public URLs are kept here.
type Song struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Title        string    `json:"title" gorm:"size:255;not null"`
	Artist       string    `json:"artist" gorm:"size:255;not null"`
	Album        *string   `json:"album" gorm:"size:255"`
	Genre        *string   `json:"genre" gorm:"size:100"`
	AudioURL     string    `json:"audio_url" gorm:"size:1024;not null"`
	CoverURL     string    `json:"cover_url" gorm:"size:1024;not null"`
	ReelAudioURL *string   `json:"reel_audio_url" gorm:"size:1024"`
	Lyrics       *string   `json:"lyrics" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName 指定表名
func (Song) TableName() string {
	return "songs"
}

// CreateSongRequest is the body of POST /songs.
type CreateSongRequest struct {
	Title        string  `json:"title"`
	Artist       string  `json:"artist"`
	Album        *string `json:"album"`
	Genre        *string `json:"genre"`
	AudioURL     string  `json:"audio_url"`
	CoverURL     string  `json:"cover_url"`
	ReelAudioURL *string `json:"reel_audio_url"`
	Lyrics       *string `json:"lyrics"`
}

// MissingFields lists the required fields that are empty, in request order.
func (r CreateSongRequest) MissingFields() []string {
	var missing []string
	if r.Title == "" {
		missing = append(missing, "title")
	}
	if r.Artist == "" {
		missing = append(missing, "artist")
	}
	if r.AudioURL == "" {
		missing = append(missing, "audio_url")
	}
	if r.CoverURL == "" {
		missing = append(missing, "cover_url")
	}
	return missing
}

// ToSong converts the request into a row ready for insert.
func (r CreateSongRequest) ToSong() *Song {
	return &Song{
		Title:        r.Title,
		Artist:       r.Artist,
		Album:        r.Album,
		Genre:        r.Genre,
		AudioURL:     r.AudioURL,
		CoverURL:     r.CoverURL,
		ReelAudioURL: r.ReelAudioURL,
		Lyrics:       r.Lyrics,
	}
}
