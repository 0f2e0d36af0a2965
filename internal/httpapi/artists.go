package httpapi

import (
	"net/http"

	"selfmusic/internal/store"
)

func (s *Server) handleAdminListArtists(w http.ResponseWriter, r *http.Request) {
	artists, err := s.artists.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if artists == nil {
		artists = []store.Artist{}
	}
	writeData(w, http.StatusOK, artists)
}

func (s *Server) handleCreateArtist(w http.ResponseWriter, r *http.Request) {
	var artist store.Artist
	if err := decodeBody(r, &artist); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	created, err := s.artists.Create(r.Context(), artist)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, created)
}

func (s *Server) handleUpdateArtist(w http.ResponseWriter, r *http.Request) {
	var artist store.Artist
	if err := decodeBody(r, &artist); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	updated, err := s.artists.Update(r.Context(), r.PathValue("id"), artist)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteArtist(w http.ResponseWriter, r *http.Request) {
	if err := s.artists.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, "Artist deleted successfully")
}

func (s *Server) handleListArtists(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	artists, total, err := s.artists.ListPage(r.Context(), page, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if artists == nil {
		artists = []store.Artist{}
	}
	writePage(w, artists, total, page, limit)
}

func (s *Server) handleGetArtist(w http.ResponseWriter, r *http.Request) {
	artist, err := s.artists.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, artist)
}

func (s *Server) handleArtistSongs(w http.ResponseWriter, r *http.Request) {
	songs, err := s.artists.Songs(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if songs == nil {
		songs = []store.Song{}
	}
	writeData(w, http.StatusOK, songs)
}

func (s *Server) handleArtistAlbums(w http.ResponseWriter, r *http.Request) {
	albums, err := s.artists.Albums(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if albums == nil {
		albums = []store.Album{}
	}
	writeData(w, http.StatusOK, albums)
}
