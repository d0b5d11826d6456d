package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"melodify/config"
	"melodify/core/auth"
	"melodify/repository"
	"melodify/storage"

	"github.com/gorilla/mux"
)

// HealthCheck probes one backing service.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// APIHandler 处理所有API请求
type APIHandler struct {
	songRepo     repository.SongRepository
	likeRepo     repository.LikeRepository
	playlistRepo repository.PlaylistRepository
	store        storage.ObjectStore
	auth         auth.Provider
	cfg          *config.Config
	checks       []HealthCheck
	now          func() time.Time
}

// NewAPIHandler 创建新的API处理器
func NewAPIHandler(
	songRepo repository.SongRepository,
	likeRepo repository.LikeRepository,
	playlistRepo repository.PlaylistRepository,
	store storage.ObjectStore,
	provider auth.Provider,
	cfg *config.Config,
	checks ...HealthCheck,
) *APIHandler {
	return &APIHandler{
		songRepo:     songRepo,
		likeRepo:     likeRepo,
		playlistRepo: playlistRepo,
		store:        store,
		auth:         provider,
		cfg:          cfg,
		checks:       checks,
		now:          time.Now,
	}
}

func (h *APIHandler) RootHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Melodify API is running"})
}

// HealthHandler reports 503 as soon as one backing service fails its probe.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	for _, check := range h.checks {
		if err := check.Check(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"error":  check.Name + ": " + err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeJSON reads a JSON body. An empty body decodes to the zero value so
// that field validation reports what is missing.
func decodeJSON(r *http.Request, v interface{}) *APIError {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return badRequest("Invalid request body")
	}
	return nil
}

// pathID parses an integer path variable. Range checks are left to the
// handler.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
