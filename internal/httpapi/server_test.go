package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"selfmusic/internal/store"
)

type stubUserService struct {
	loginFn func(ctx context.Context, username, password string) (store.User, string, error)
}

func (s *stubUserService) Login(ctx context.Context, username, password string) (store.User, string, error) {
	if s.loginFn != nil {
		return s.loginFn(ctx, username, password)
	}
	return store.User{}, "", nil
}

type stubArtistService struct {
	createFn   func(ctx context.Context, artist store.Artist) (store.Artist, error)
	listFn     func(ctx context.Context) ([]store.Artist, error)
	listPageFn func(ctx context.Context, page, limit int) ([]store.Artist, int, error)
	getFn      func(ctx context.Context, id string) (store.Artist, error)
	deleteFn   func(ctx context.Context, id string) error
}

func (s *stubArtistService) Create(ctx context.Context, artist store.Artist) (store.Artist, error) {
	if s.createFn != nil {
		return s.createFn(ctx, artist)
	}
	return artist, nil
}

func (s *stubArtistService) List(ctx context.Context) ([]store.Artist, error) {
	if s.listFn != nil {
		return s.listFn(ctx)
	}
	return nil, nil
}

func (s *stubArtistService) ListPage(ctx context.Context, page, limit int) ([]store.Artist, int, error) {
	if s.listPageFn != nil {
		return s.listPageFn(ctx, page, limit)
	}
	return nil, 0, nil
}

func (s *stubArtistService) Get(ctx context.Context, id string) (store.Artist, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return store.Artist{ID: id}, nil
}

func (s *stubArtistService) Update(ctx context.Context, id string, artist store.Artist) (store.Artist, error) {
	return artist, nil
}

func (s *stubArtistService) Delete(ctx context.Context, id string) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

func (s *stubArtistService) Songs(ctx context.Context, id string) ([]store.Song, error) {
	return nil, nil
}

func (s *stubArtistService) Albums(ctx context.Context, id string) ([]store.Album, error) {
	return nil, nil
}

type stubAlbumService struct{}

func (stubAlbumService) Create(ctx context.Context, album store.Album) (store.Album, error) {
	return album, nil
}
func (stubAlbumService) List(context.Context) ([]store.Album, error) { return nil, nil }
func (stubAlbumService) ListPage(context.Context, int, int) ([]store.Album, int, error) {
	return nil, 0, nil
}
func (stubAlbumService) Get(ctx context.Context, id string) (store.Album, error) {
	return store.Album{ID: id}, nil
}
func (stubAlbumService) Update(ctx context.Context, id string, album store.Album) (store.Album, error) {
	return album, nil
}
func (stubAlbumService) Delete(context.Context, string) error { return nil }
func (stubAlbumService) Songs(context.Context, string) ([]store.Song, error) { return nil, nil }

type stubSongService struct {
	getFn func(ctx context.Context, id string) (store.Song, error)
}

func (s *stubSongService) Create(ctx context.Context, song store.Song) (store.Song, error) {
	return song, nil
}
func (s *stubSongService) List(context.Context) ([]store.Song, error) { return nil, nil }
func (s *stubSongService) ListPage(context.Context, int, int) ([]store.Song, int, error) {
	return nil, 0, nil
}
func (s *stubSongService) Get(ctx context.Context, id string) (store.Song, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return store.Song{ID: id}, nil
}
func (s *stubSongService) Update(ctx context.Context, id string, song store.Song) (store.Song, error) {
	return song, nil
}
func (s *stubSongService) Delete(context.Context, string) error { return nil }

func (s *stubSongService) RecordPlay(context.Context, string) error { return nil }

type stubMoodService struct{}

func (stubMoodService) Create(ctx context.Context, mood store.Mood) (store.Mood, error) {
	return mood, nil
}
func (stubMoodService) List(context.Context) ([]store.Mood, error) { return nil, nil }
func (stubMoodService) ListPage(context.Context, int, int) ([]store.Mood, int, error) {
	return nil, 0, nil
}
func (stubMoodService) Get(ctx context.Context, id string) (store.Mood, error) {
	return store.Mood{ID: id}, nil
}
func (stubMoodService) Update(ctx context.Context, id string, mood store.Mood) (store.Mood, error) {
	return mood, nil
}
func (stubMoodService) Delete(context.Context, string) error { return nil }
func (stubMoodService) Songs(context.Context, string) ([]store.Song, error) { return nil, nil }

type stubPlaylistService struct {
	createFn  func(ctx context.Context, playlist store.Playlist) (store.Playlist, error)
	addFn     func(ctx context.Context, playlistID, songID string) (store.Playlist, error)
	removeFn  func(ctx context.Context, playlistID, songID string) (store.Playlist, error)
	reorderFn func(ctx context.Context, playlistID string, songIDs []string) (store.Playlist, error)
}

func (s *stubPlaylistService) Create(ctx context.Context, playlist store.Playlist) (store.Playlist, error) {
	if s.createFn != nil {
		return s.createFn(ctx, playlist)
	}
	return playlist, nil
}
func (s *stubPlaylistService) List(context.Context) ([]store.Playlist, error) { return nil, nil }
func (s *stubPlaylistService) ListPublicPage(context.Context, int, int) ([]store.Playlist, int, error) {
	return nil, 0, nil
}
func (s *stubPlaylistService) Get(ctx context.Context, id string) (store.Playlist, error) {
	return store.Playlist{ID: id}, nil
}
func (s *stubPlaylistService) Update(ctx context.Context, id string, playlist store.Playlist) (store.Playlist, error) {
	return playlist, nil
}
func (s *stubPlaylistService) Delete(context.Context, string) error { return nil }
func (s *stubPlaylistService) AddSong(ctx context.Context, playlistID, songID string) (store.Playlist, error) {
	if s.addFn != nil {
		return s.addFn(ctx, playlistID, songID)
	}
	return store.Playlist{ID: playlistID}, nil
}
func (s *stubPlaylistService) RemoveSong(ctx context.Context, playlistID, songID string) (store.Playlist, error) {
	if s.removeFn != nil {
		return s.removeFn(ctx, playlistID, songID)
	}
	return store.Playlist{ID: playlistID}, nil
}
func (s *stubPlaylistService) Reorder(ctx context.Context, playlistID string, songIDs []string) (store.Playlist, error) {
	if s.reorderFn != nil {
		return s.reorderFn(ctx, playlistID, songIDs)
	}
	return store.Playlist{ID: playlistID, SongIDs: songIDs}, nil
}

type stubDiscoveryService struct {
	searchFn func(ctx context.Context, query string) (store.SearchResults, error)
}

func (s *stubDiscoveryService) Search(ctx context.Context, query string) (store.SearchResults, error) {
	if s.searchFn != nil {
		return s.searchFn(ctx, query)
	}
	return store.SearchResults{}, nil
}
func (s *stubDiscoveryService) Similar(context.Context, string, int) ([]store.Song, error) {
	return nil, nil
}
func (s *stubDiscoveryService) Recommendations(context.Context, store.RecommendationFilter) ([]store.Song, error) {
	return nil, nil
}
func (s *stubDiscoveryService) Trending(context.Context, int) ([]store.Song, error) {
	return nil, nil
}

func (s *stubDiscoveryService) Hot(context.Context, int) ([]store.Song, error) { return nil, nil }

func (s *stubDiscoveryService) New(context.Context, int) ([]store.Song, error) { return nil, nil }

type stubImportService struct{}

func (stubImportService) CheckExists(context.Context, []store.SongKey) ([]store.ExistsResult, error) {
	return nil, nil
}
func (stubImportService) ImportBatch(context.Context, []store.ImportItem) (store.ImportSummary, error) {
	return store.ImportSummary{}, nil
}

type stubTokenVerifier struct {
	verifyFn func(token string) (string, error)
}

func (s *stubTokenVerifier) Verify(token string) (string, error) {
	if s.verifyFn != nil {
		return s.verifyFn(token)
	}
	return "admin", nil
}

type testStubs struct {
	users     *stubUserService
	artists   *stubArtistService
	songs     *stubSongService
	playlists *stubPlaylistService
	discovery *stubDiscoveryService
	tokens    *stubTokenVerifier
}

func newTestServer(t *testing.T) (http.Handler, *testStubs) {
	t.Helper()
	stubs := &testStubs{
		users:     &stubUserService{},
		artists:   &stubArtistService{},
		songs:     &stubSongService{},
		playlists: &stubPlaylistService{},
		discovery: &stubDiscoveryService{},
		tokens:    &stubTokenVerifier{},
	}
	srv := New(
		stubs.users,
		stubs.artists,
		stubAlbumService{},
		stubs.songs,
		stubMoodService{},
		stubs.playlists,
		stubs.discovery,
		stubImportService{},
		stubs.tokens,
		t.TempDir(),
	)
	return srv.Routes(), stubs
}

func doJSON(t *testing.T, handler http.Handler, method, target string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func adminHeader() http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer valid-token")
	return h
}

func TestLogin(t *testing.T) {
	handler, stubs := newTestServer(t)
	stubs.users.loginFn = func(ctx context.Context, username, password string) (store.User, string, error) {
		if username != "admin" || password != "admin123" {
			return store.User{}, "", store.ErrInvalidCredentials
		}
		return store.User{ID: "u1", Username: "admin", Role: "admin"}, "signed-token", nil
	}

	rec := doJSON(t, handler, http.MethodPost, "/api/auth/login",
		map[string]string{"username": "admin", "password": "admin123"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		AccessToken string     `json:"access_token"`
		TokenType   string     `json:"token_type"`
		User        store.User `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.AccessToken != "signed-token" || resp.TokenType != "bearer" || resp.User.Username != "admin" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/auth/login",
		map[string]string{"username": "admin", "password": "nope"}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAdminRequiresToken(t *testing.T) {
	handler, stubs := newTestServer(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/admin/artists", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	var detail struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if detail.Detail != "missing bearer token" {
		t.Fatalf("unexpected detail: %q", detail.Detail)
	}

	stubs.tokens.verifyFn = func(token string) (string, error) {
		return "", fmt.Errorf("bad token")
	}
	rec = doJSON(t, handler, http.MethodGet, "/api/admin/artists", nil, adminHeader())
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bad token, got %d", rec.Code)
	}

	stubs.tokens.verifyFn = nil
	rec = doJSON(t, handler, http.MethodGet, "/api/admin/artists", nil, adminHeader())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid token, got %d", rec.Code)
	}
}

func TestListArtistsPagination(t *testing.T) {
	handler, stubs := newTestServer(t)

	var gotPage, gotLimit int
	stubs.artists.listPageFn = func(ctx context.Context, page, limit int) ([]store.Artist, int, error) {
		gotPage, gotLimit = page, limit
		return []store.Artist{{ID: "a1"}}, 12, nil
	}

	rec := doJSON(t, handler, http.MethodGet, "/api/artists?page=2&limit=5", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotPage != 2 || gotLimit != 5 {
		t.Fatalf("expected page 2 limit 5, got %d/%d", gotPage, gotLimit)
	}

	var resp struct {
		Success    bool `json:"success"`
		Total      int  `json:"total"`
		Page       int  `json:"page"`
		Limit      int  `json:"limit"`
		TotalPages int  `json:"totalPages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.Total != 12 || resp.Page != 2 || resp.Limit != 5 || resp.TotalPages != 3 {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
}

func TestCreateArtistConflict(t *testing.T) {
	handler, stubs := newTestServer(t)
	stubs.artists.createFn = func(ctx context.Context, artist store.Artist) (store.Artist, error) {
		return store.Artist{}, fmt.Errorf("%w: artist name already exists", store.ErrNameTaken)
	}

	rec := doJSON(t, handler, http.MethodPost, "/api/admin/artists",
		map[string]string{"name": "Taken"}, adminHeader())
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestDeleteArtistMessage(t *testing.T) {
	handler, stubs := newTestServer(t)

	var deletedID string
	stubs.artists.deleteFn = func(ctx context.Context, id string) error {
		deletedID = id
		return nil
	}

	rec := doJSON(t, handler, http.MethodDelete, "/api/admin/artists/a1", nil, adminHeader())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if deletedID != "a1" {
		t.Fatalf("expected delete of a1, got %q", deletedID)
	}

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.Message != "Artist deleted successfully" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestGetSongNotFound(t *testing.T) {
	handler, stubs := newTestServer(t)
	stubs.songs.getFn = func(ctx context.Context, id string) (store.Song, error) {
		return store.Song{}, store.ErrSongNotFound
	}

	rec := doJSON(t, handler, http.MethodGet, "/api/songs/missing", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAddPlaylistSongRequiresID(t *testing.T) {
	handler, _ := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/playlists/p1/songs",
		map[string]string{}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRemovePlaylistSongPathValues(t *testing.T) {
	handler, stubs := newTestServer(t)

	var gotPlaylist, gotSong string
	stubs.playlists.removeFn = func(ctx context.Context, playlistID, songID string) (store.Playlist, error) {
		gotPlaylist, gotSong = playlistID, songID
		return store.Playlist{ID: playlistID}, nil
	}

	rec := doJSON(t, handler, http.MethodDelete, "/api/playlists/p1/songs/s7", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotPlaylist != "p1" || gotSong != "s7" {
		t.Fatalf("expected p1/s7, got %q/%q", gotPlaylist, gotSong)
	}
}

func TestReorderPlaylistInvalid(t *testing.T) {
	handler, stubs := newTestServer(t)
	stubs.playlists.reorderFn = func(ctx context.Context, playlistID string, songIDs []string) (store.Playlist, error) {
		return store.Playlist{}, fmt.Errorf("%w: reorder must contain exactly the current songs", store.ErrInvalidInput)
	}

	rec := doJSON(t, handler, http.MethodPut, "/api/admin/playlists/p1/reorder",
		map[string][]string{"songIds": {"s1", "s1"}}, adminHeader())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCreatePlaylistDefaultCreator(t *testing.T) {
	handler, stubs := newTestServer(t)

	var gotCreator string
	stubs.playlists.createFn = func(ctx context.Context, playlist store.Playlist) (store.Playlist, error) {
		gotCreator = playlist.Creator
		return playlist, nil
	}

	rec := doJSON(t, handler, http.MethodPost, "/api/playlists",
		map[string]string{"name": "My Mix"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotCreator != "user" {
		t.Fatalf("expected creator %q, got %q", "user", gotCreator)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/admin/playlists",
		map[string]string{"name": "Staff Picks"}, adminHeader())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotCreator != "admin" {
		t.Fatalf("expected creator %q, got %q", "admin", gotCreator)
	}
}

func TestSearchEnvelope(t *testing.T) {
	handler, stubs := newTestServer(t)

	var gotQuery string
	stubs.discovery.searchFn = func(ctx context.Context, query string) (store.SearchResults, error) {
		gotQuery = query
		return store.SearchResults{
			Songs:     []store.Song{{ID: "s1", Title: "Hit"}},
			Artists:   []store.Artist{},
			Albums:    []store.Album{},
			Playlists: []store.Playlist{},
		}, nil
	}

	rec := doJSON(t, handler, http.MethodGet, "/api/search?q=hit", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotQuery != "hit" {
		t.Fatalf("expected query %q, got %q", "hit", gotQuery)
	}

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Songs []store.Song `json:"songs"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || len(resp.Data.Songs) != 1 || resp.Data.Songs[0].Title != "Hit" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}
