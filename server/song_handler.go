package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"melodify/logger"
	"melodify/model"
	"melodify/repository"
)

// GetSongsHandler lists every song, newest id first.
func (h *APIHandler) GetSongsHandler(w http.ResponseWriter, r *http.Request) {
	songs, err := h.songRepo.List(r.Context())
	if err != nil {
		writeError(w, r, internalError(err))
		return
	}
	writeJSON(w, http.StatusOK, songs)
}

// CreateSongHandler inserts song metadata for files uploaded beforehand.
func (h *APIHandler) CreateSongHandler(w http.ResponseWriter, r *http.Request) {
	var req model.CreateSongRequest
	if apiErr := decodeJSON(r, &req); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	if missing := req.MissingFields(); len(missing) > 0 {
		writeError(w, r, badRequest("Missing required fields: "+strings.Join(missing, ", ")))
		return
	}

	song := req.ToSong()
	if err := h.songRepo.Create(r.Context(), song); err != nil {
		writeError(w, r, internalError(err))
		return
	}

	logger.Info("[Songs] 歌曲创建成功", logger.Int64("song_id", song.ID), logger.String("title", song.Title))
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Song created successfully",
		"song":    song,
	})
}

// ToggleLikeHandler likes the song if the caller has not, and unlikes it
// otherwise.
func (h *APIHandler) ToggleLikeHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, r, unauthorized("Missing auth token"))
		return
	}
	songID, ok := pathID(r, "songId")
	if !ok {
		writeError(w, r, badRequest("Invalid song id"))
		return
	}
	ctx := r.Context()

	song, err := h.songRepo.GetByID(ctx, songID)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, r, notFound("Song not found"))
		return
	}
	if err != nil {
		writeError(w, r, internalError(err))
		return
	}

	liked := false
	_, err = h.likeRepo.Find(ctx, user.ID, songID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		if err := h.likeRepo.Create(ctx, &model.Like{UserID: user.ID, SongID: songID}); err != nil {
			writeError(w, r, internalError(err))
			return
		}
		liked = true
	case err != nil:
		writeError(w, r, internalError(err))
		return
	default:
		if err := h.likeRepo.Delete(ctx, user.ID, songID); err != nil {
			writeError(w, r, internalError(err))
			return
		}
	}

	count, err := h.likeRepo.CountBySong(ctx, songID)
	if err != nil {
		writeError(w, r, internalError(err))
		return
	}

	message := "Song unliked"
	if liked {
		message = "Song liked"
	}
	writeJSON(w, http.StatusOK, model.ToggleLikeResult{
		Message:    message,
		User:       user.ID,
		Song:       song.Title,
		Liked:      liked,
		LikesCount: count,
	})
}

// LikesCountHandler counts likes without checking that the song exists.
func (h *APIHandler) LikesCountHandler(w http.ResponseWriter, r *http.Request) {
	songID, ok := pathID(r, "songId")
	if !ok {
		writeError(w, r, badRequest("Invalid song id"))
		return
	}
	count, err := h.likeRepo.CountBySong(r.Context(), songID)
	if err != nil {
		writeError(w, r, internalError(fmt.Errorf("failed to count likes: %w", err)))
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

func (h *APIHandler) MyLikesHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, r, unauthorized("Missing auth token"))
		return
	}
	likes, err := h.likeRepo.ListByUser(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, internalError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"likes": likes})
}
