package server

import (
	"net/http"
	"strings"

	"melodify/model"
)

type createPlaylistRequest struct {
	Name string `json:"name"`
}

type addPlaylistSongRequest struct {
	SongID int64 `json:"song_id"`
}

func (h *APIHandler) CreatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, r, unauthorized("Missing auth token"))
		return
	}
	var req createPlaylistRequest
	if apiErr := decodeJSON(r, &req); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, r, badRequest("Playlist name is required"))
		return
	}

	playlist := &model.Playlist{Name: name, UserID: user.ID}
	if err := h.playlistRepo.Create(r.Context(), playlist); err != nil {
		writeError(w, r, internalError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Playlist created",
		"playlist": playlist,
	})
}

// AddPlaylistSongHandler inserts the join row as given. Neither playlist
// ownership nor song existence is checked.
func (h *APIHandler) AddPlaylistSongHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := UserFromContext(r.Context()); !ok {
		writeError(w, r, unauthorized("Missing auth token"))
		return
	}
	playlistID, ok := pathID(r, "id")
	if !ok || playlistID <= 0 {
		writeError(w, r, badRequest("Invalid playlist id"))
		return
	}
	var req addPlaylistSongRequest
	if apiErr := decodeJSON(r, &req); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	if req.SongID <= 0 {
		writeError(w, r, badRequest("song_id must be a positive integer"))
		return
	}

	entry := &model.PlaylistSong{PlaylistID: playlistID, SongID: req.SongID}
	if err := h.playlistRepo.AddSong(r.Context(), entry); err != nil {
		writeError(w, r, internalError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Song added to playlist",
		"entry":   entry,
	})
}

func (h *APIHandler) MyPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, r, unauthorized("Missing auth token"))
		return
	}
	playlists, err := h.playlistRepo.ListByUser(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, internalError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"playlists": playlists})
}
