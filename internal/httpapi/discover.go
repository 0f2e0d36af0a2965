package httpapi

import (
	"context"
	"net/http"

	"selfmusic/internal/store"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	results, err := s.discovery.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, results)
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := store.RecommendationFilter{
		Type:     query.Get("type"),
		MoodID:   query.Get("moodId"),
		ArtistID: query.Get("artistId"),
		Genre:    query.Get("genreId"),
		Limit:    limitParam(r, 0),
	}

	songs, err := s.discovery.Recommendations(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if songs == nil {
		songs = []store.Song{}
	}
	writeData(w, http.StatusOK, songs)
}

func (s *Server) handleTrendingSongs(w http.ResponseWriter, r *http.Request) {
	s.writeSongList(w, r, s.discovery.Trending)
}

func (s *Server) handleHotSongs(w http.ResponseWriter, r *http.Request) {
	s.writeSongList(w, r, s.discovery.Hot)
}

func (s *Server) handleNewSongs(w http.ResponseWriter, r *http.Request) {
	s.writeSongList(w, r, s.discovery.New)
}

func (s *Server) writeSongList(w http.ResponseWriter, r *http.Request, fetch func(ctx context.Context, limit int) ([]store.Song, error)) {
	songs, err := fetch(r.Context(), limitParam(r, 0))
	if err != nil {
		writeError(w, err)
		return
	}
	if songs == nil {
		songs = []store.Song{}
	}
	writeData(w, http.StatusOK, songs)
}
