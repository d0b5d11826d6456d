package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"melodify/config"
	"melodify/logger"

	"github.com/gorilla/mux"
)

// NewRouter registers every route of the API and wraps the router in the
// shared middleware chain.
func NewRouter(h *APIHandler, cfg *config.Config) http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, notFound("Route not found"))
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
	})

	router.HandleFunc("/", h.RootHandler).Methods(http.MethodGet)
	router.HandleFunc("/healthz", h.HealthHandler).Methods(http.MethodGet)

	// 歌曲与上传
	router.HandleFunc("/songs", h.GetSongsHandler).Methods(http.MethodGet)
	router.HandleFunc("/songs", h.CreateSongHandler).Methods(http.MethodPost)
	router.HandleFunc("/upload/audio", h.UploadAudioHandler).Methods(http.MethodPost)
	router.HandleFunc("/upload/reel_audio", h.UploadReelAudioHandler).Methods(http.MethodPost)
	router.HandleFunc("/upload/cover", h.UploadCoverHandler).Methods(http.MethodPost)

	// 用户认证
	authRouter := router.PathPrefix("/auth").Subrouter()
	if cfg.AuthRateLimitPerMinute > 0 {
		trusted, err := config.ParseTrustedProxies(cfg.TrustedProxies)
		if err != nil {
			logger.Warn("Ignoring TRUSTED_PROXIES", logger.ErrorField(err))
			trusted = nil
		}
		authRouter.Use(newIPRateLimiter(cfg.AuthRateLimitPerMinute, trusted).Middleware)
	}
	authRouter.HandleFunc("/signup", h.SignUpHandler).Methods(http.MethodPost)
	authRouter.HandleFunc("/resend-verification", h.ResendVerificationHandler).Methods(http.MethodPost)
	authRouter.HandleFunc("/verify", h.VerifyEmailHandler).Methods(http.MethodGet)
	authRouter.HandleFunc("/login", h.LoginHandler).Methods(http.MethodPost)
	authRouter.HandleFunc("/session", h.AuthMiddleware(h.SessionHandler)).Methods(http.MethodGet)
	authRouter.HandleFunc("/logout", h.AuthMiddleware(h.LogoutHandler)).Methods(http.MethodPost)
	router.HandleFunc("/profile", h.AuthMiddleware(h.ProfileHandler)).Methods(http.MethodGet)

	// 喜欢
	router.HandleFunc("/songs/{songId}/toggle-like", h.AuthMiddleware(h.ToggleLikeHandler)).Methods(http.MethodPost)
	router.HandleFunc("/songs/{songId}/likes-count", h.LikesCountHandler).Methods(http.MethodGet)
	router.HandleFunc("/me/likes", h.AuthMiddleware(h.MyLikesHandler)).Methods(http.MethodGet)

	// 播放列表
	router.HandleFunc("/playlists", h.AuthMiddleware(h.CreatePlaylistHandler)).Methods(http.MethodPost)
	router.HandleFunc("/playlists/{id}/songs", h.AuthMiddleware(h.AddPlaylistSongHandler)).Methods(http.MethodPost)
	router.HandleFunc("/me/playlists", h.AuthMiddleware(h.MyPlaylistsHandler)).Methods(http.MethodGet)

	// CORS wraps the router so preflight requests never reach route matching.
	return recoverMiddleware(requestIDMiddleware(accessLogMiddleware(corsMiddleware(router))))
}

// Start serves handler on cfg.Port until SIGINT or SIGTERM, then shuts down
// gracefully.
func Start(cfg *config.Config, handler http.Handler) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return Serve(ctx, cfg, handler)
}

// Serve runs the HTTP server until ctx is cancelled.
func Serve(ctx context.Context, cfg *config.Config, handler http.Handler) error {
	// 设置服务器超时
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", logger.String("addr", server.Addr), logger.String("service_url", cfg.ServiceURL))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	// 创建一个5秒超时的上下文
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("Server stopped")
	return nil
}
