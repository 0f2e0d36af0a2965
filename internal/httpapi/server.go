// Package httpapi exposes the catalog over HTTP: an admin surface gated by
// bearer tokens and a public read/browse surface.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"selfmusic/internal/store"
)

// UserService captures the login workflow needed by the HTTP handlers.
type UserService interface {
	Login(ctx context.Context, username, password string) (store.User, string, error)
}

// ArtistService describes artist catalog workflows.
type ArtistService interface {
	Create(ctx context.Context, artist store.Artist) (store.Artist, error)
	List(ctx context.Context) ([]store.Artist, error)
	ListPage(ctx context.Context, page, limit int) ([]store.Artist, int, error)
	Get(ctx context.Context, id string) (store.Artist, error)
	Update(ctx context.Context, id string, artist store.Artist) (store.Artist, error)
	Delete(ctx context.Context, id string) error
	Songs(ctx context.Context, id string) ([]store.Song, error)
	Albums(ctx context.Context, id string) ([]store.Album, error)
}

// AlbumService describes album catalog workflows.
type AlbumService interface {
	Create(ctx context.Context, album store.Album) (store.Album, error)
	List(ctx context.Context) ([]store.Album, error)
	ListPage(ctx context.Context, page, limit int) ([]store.Album, int, error)
	Get(ctx context.Context, id string) (store.Album, error)
	Update(ctx context.Context, id string, album store.Album) (store.Album, error)
	Delete(ctx context.Context, id string) error
	Songs(ctx context.Context, id string) ([]store.Song, error)
}

// SongService describes song catalog workflows.
type SongService interface {
	Create(ctx context.Context, song store.Song) (store.Song, error)
	List(ctx context.Context) ([]store.Song, error)
	ListPage(ctx context.Context, page, limit int) ([]store.Song, int, error)
	Get(ctx context.Context, id string) (store.Song, error)
	Update(ctx context.Context, id string, song store.Song) (store.Song, error)
	Delete(ctx context.Context, id string) error
	RecordPlay(ctx context.Context, id string) error
}

// MoodService describes mood catalog workflows.
type MoodService interface {
	Create(ctx context.Context, mood store.Mood) (store.Mood, error)
	List(ctx context.Context) ([]store.Mood, error)
	ListPage(ctx context.Context, page, limit int) ([]store.Mood, int, error)
	Get(ctx context.Context, id string) (store.Mood, error)
	Update(ctx context.Context, id string, mood store.Mood) (store.Mood, error)
	Delete(ctx context.Context, id string) error
	Songs(ctx context.Context, id string) ([]store.Song, error)
}

// PlaylistService describes playlist workflows.
type PlaylistService interface {
	Create(ctx context.Context, playlist store.Playlist) (store.Playlist, error)
	List(ctx context.Context) ([]store.Playlist, error)
	ListPublicPage(ctx context.Context, page, limit int) ([]store.Playlist, int, error)
	Get(ctx context.Context, id string) (store.Playlist, error)
	Update(ctx context.Context, id string, playlist store.Playlist) (store.Playlist, error)
	Delete(ctx context.Context, id string) error
	AddSong(ctx context.Context, playlistID, songID string) (store.Playlist, error)
	RemoveSong(ctx context.Context, playlistID, songID string) (store.Playlist, error)
	Reorder(ctx context.Context, playlistID string, songIDs []string) (store.Playlist, error)
}

// DiscoveryService exposes the read-only browse surface.
type DiscoveryService interface {
	Search(ctx context.Context, query string) (store.SearchResults, error)
	Similar(ctx context.Context, songID string, limit int) ([]store.Song, error)
	Recommendations(ctx context.Context, filter store.RecommendationFilter) ([]store.Song, error)
	Trending(ctx context.Context, limit int) ([]store.Song, error)
	Hot(ctx context.Context, limit int) ([]store.Song, error)
	New(ctx context.Context, limit int) ([]store.Song, error)
}

// ImportService exposes batch import reconciliation.
type ImportService interface {
	CheckExists(ctx context.Context, keys []store.SongKey) ([]store.ExistsResult, error)
	ImportBatch(ctx context.Context, items []store.ImportItem) (store.ImportSummary, error)
}

// TokenVerifier checks bearer tokens and returns the subject username.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	users     UserService
	artists   ArtistService
	albums    AlbumService
	songs     SongService
	moods     MoodService
	playlists PlaylistService
	discovery DiscoveryService
	importer  ImportService
	tokens    TokenVerifier
	uploadDir string
}

// New configures a Server with the given services.
func New(
	users UserService,
	artists ArtistService,
	albums AlbumService,
	songs SongService,
	moods MoodService,
	playlists PlaylistService,
	discovery DiscoveryService,
	importer ImportService,
	tokens TokenVerifier,
	uploadDir string,
) *Server {
	return &Server{
		users:     users,
		artists:   artists,
		albums:    albums,
		songs:     songs,
		moods:     moods,
		playlists: playlists,
		discovery: discovery,
		importer:  importer,
		tokens:    tokens,
		uploadDir: uploadDir,
	}
}

// Routes exposes the HTTP handlers for the admin and public surfaces.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	// Admin surface, bearer token required.
	mux.HandleFunc("GET /api/admin/artists", s.admin(s.handleAdminListArtists))
	mux.HandleFunc("POST /api/admin/artists", s.admin(s.handleCreateArtist))
	mux.HandleFunc("PUT /api/admin/artists/{id}", s.admin(s.handleUpdateArtist))
	mux.HandleFunc("DELETE /api/admin/artists/{id}", s.admin(s.handleDeleteArtist))

	mux.HandleFunc("GET /api/admin/albums", s.admin(s.handleAdminListAlbums))
	mux.HandleFunc("POST /api/admin/albums", s.admin(s.handleCreateAlbum))
	mux.HandleFunc("PUT /api/admin/albums/{id}", s.admin(s.handleUpdateAlbum))
	mux.HandleFunc("DELETE /api/admin/albums/{id}", s.admin(s.handleDeleteAlbum))

	mux.HandleFunc("GET /api/admin/songs", s.admin(s.handleAdminListSongs))
	mux.HandleFunc("POST /api/admin/songs", s.admin(s.handleCreateSong))
	mux.HandleFunc("PUT /api/admin/songs/{id}", s.admin(s.handleUpdateSong))
	mux.HandleFunc("DELETE /api/admin/songs/{id}", s.admin(s.handleDeleteSong))

	mux.HandleFunc("GET /api/admin/moods", s.admin(s.handleAdminListMoods))
	mux.HandleFunc("POST /api/admin/moods", s.admin(s.handleCreateMood))
	mux.HandleFunc("PUT /api/admin/moods/{id}", s.admin(s.handleUpdateMood))
	mux.HandleFunc("DELETE /api/admin/moods/{id}", s.admin(s.handleDeleteMood))

	mux.HandleFunc("GET /api/admin/playlists", s.admin(s.handleAdminListPlaylists))
	mux.HandleFunc("POST /api/admin/playlists", s.admin(s.handleAdminCreatePlaylist))
	mux.HandleFunc("PUT /api/admin/playlists/{id}", s.admin(s.handleUpdatePlaylist))
	mux.HandleFunc("DELETE /api/admin/playlists/{id}", s.admin(s.handleDeletePlaylist))
	mux.HandleFunc("PUT /api/admin/playlists/{id}/reorder", s.admin(s.handleReorderPlaylist))

	mux.HandleFunc("POST /api/admin/upload", s.admin(s.handleUpload))
	mux.HandleFunc("POST /api/admin/import/check-exists", s.admin(s.handleCheckExists))
	mux.HandleFunc("POST /api/admin/import/batch", s.admin(s.handleImportBatch))

	// Public read surface.
	mux.HandleFunc("GET /api/artists", s.handleListArtists)
	mux.HandleFunc("GET /api/artists/{id}", s.handleGetArtist)
	mux.HandleFunc("GET /api/artists/{id}/songs", s.handleArtistSongs)
	mux.HandleFunc("GET /api/artists/{id}/albums", s.handleArtistAlbums)

	mux.HandleFunc("GET /api/albums", s.handleListAlbums)
	mux.HandleFunc("GET /api/albums/{id}", s.handleGetAlbum)
	mux.HandleFunc("GET /api/albums/{id}/songs", s.handleAlbumSongs)

	mux.HandleFunc("GET /api/songs", s.handleListSongs)
	mux.HandleFunc("GET /api/songs/{id}", s.handleGetSong)
	mux.HandleFunc("GET /api/songs/{id}/stream", s.handleStreamSong)
	mux.HandleFunc("GET /api/songs/{id}/similar", s.handleSimilarSongs)

	mux.HandleFunc("GET /api/moods", s.handleListMoods)
	mux.HandleFunc("GET /api/moods/{id}", s.handleGetMood)
	mux.HandleFunc("GET /api/moods/{id}/songs", s.handleMoodSongs)

	// Public playlist surface. Mutation here is deliberately unauthenticated,
	// matching the asymmetry with the admin routes.
	mux.HandleFunc("GET /api/playlists", s.handleListPlaylists)
	mux.HandleFunc("GET /api/playlists/{id}", s.handleGetPlaylist)
	mux.HandleFunc("POST /api/playlists", s.handlePublicCreatePlaylist)
	mux.HandleFunc("PUT /api/playlists/{id}", s.handleUpdatePlaylist)
	mux.HandleFunc("DELETE /api/playlists/{id}", s.handleDeletePlaylist)
	mux.HandleFunc("POST /api/playlists/{id}/songs", s.handleAddPlaylistSong)
	mux.HandleFunc("DELETE /api/playlists/{id}/songs/{songId}", s.handleRemovePlaylistSong)

	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("GET /api/recommendations", s.handleRecommendations)
	mux.HandleFunc("GET /api/trending/songs", s.handleTrendingSongs)
	mux.HandleFunc("GET /api/hot/songs", s.handleHotSongs)
	mux.HandleFunc("GET /api/new/songs", s.handleNewSongs)

	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.uploadDir))))

	return mux
}

// admin wraps a handler with bearer token verification.
func (s *Server) admin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := parseBearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeDetail(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if _, err := s.tokens.Verify(token); err != nil {
			writeDetail(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		next(w, r)
	}
}

type dataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type pageResponse struct {
	Success    bool `json:"success"`
	Data       any  `json:"data"`
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalPages int  `json:"totalPages"`
}

type detailResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, dataResponse{Success: true, Data: data})
}

func writeMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: message})
}

func writePage(w http.ResponseWriter, data any, total, page, limit int) {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	writeJSON(w, http.StatusOK, pageResponse{
		Success:    true,
		Data:       data,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	})
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, detailResponse{Detail: detail})
}

// writeError maps store sentinel errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrArtistNotFound),
		errors.Is(err, store.ErrAlbumNotFound),
		errors.Is(err, store.ErrSongNotFound),
		errors.Is(err, store.ErrMoodNotFound),
		errors.Is(err, store.ErrPlaylistNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrNameTaken):
		status = http.StatusConflict
	case errors.Is(err, store.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	}
	writeDetail(w, status, err.Error())
}

func parseBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// pageParams reads the page/limit query parameters, falling back to the
// first page of twenty.
func pageParams(r *http.Request) (int, int) {
	page := 1
	limit := 20
	if raw := r.URL.Query().Get("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page = n
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	return page, limit
}

func limitParam(r *http.Request, fallback int) int {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			return n
		}
	}
	return fallback
}

func decodeBody(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
