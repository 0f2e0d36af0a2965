package main

import (
	"net/http"

	"golang.org/x/time/rate"

	"selfmusic/internal/app/albums"
	"selfmusic/internal/app/artists"
	"selfmusic/internal/app/discovery"
	"selfmusic/internal/app/importer"
	"selfmusic/internal/app/moods"
	"selfmusic/internal/app/playlists"
	"selfmusic/internal/app/songs"
	"selfmusic/internal/app/users"
	"selfmusic/internal/auth"
	"selfmusic/internal/http/middleware"
	"selfmusic/internal/httpapi"
	"selfmusic/internal/store"
)

func newHTTPHandler(cfg Config, dataStore *store.Store) http.Handler {
	tokens := auth.NewTokenManager(cfg.JWTSecret)

	userSvc := users.New(dataStore, tokens)
	artistSvc := artists.New(dataStore)
	albumSvc := albums.New(dataStore)
	songSvc := songs.New(dataStore)
	moodSvc := moods.New(dataStore)
	playlistSvc := playlists.New(dataStore)
	discoverySvc := discovery.New(dataStore)
	importSvc := importer.New(dataStore)

	api := httpapi.New(
		userSvc,
		artistSvc,
		albumSvc,
		songSvc,
		moodSvc,
		playlistSvc,
		discoverySvc,
		importSvc,
		tokens,
		cfg.UploadDir,
	)

	limiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)

	handler := api.Routes()
	handler = limiter.Middleware(handler)
	handler = middleware.CORS(cfg.AllowedOrigins)(handler)
	handler = middleware.RequestLogging()(handler)
	handler = middleware.Recovery()(handler)
	return handler
}
