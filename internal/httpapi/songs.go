package httpapi

import (
	"net/http"

	"selfmusic/internal/store"
)

func (s *Server) handleAdminListSongs(w http.ResponseWriter, r *http.Request) {
	songs, err := s.songs.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if songs == nil {
		songs = []store.Song{}
	}
	writeData(w, http.StatusOK, songs)
}

func (s *Server) handleCreateSong(w http.ResponseWriter, r *http.Request) {
	var song store.Song
	if err := decodeBody(r, &song); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	created, err := s.songs.Create(r.Context(), song)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, created)
}

func (s *Server) handleUpdateSong(w http.ResponseWriter, r *http.Request) {
	var song store.Song
	if err := decodeBody(r, &song); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	updated, err := s.songs.Update(r.Context(), r.PathValue("id"), song)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteSong(w http.ResponseWriter, r *http.Request) {
	if err := s.songs.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, "Song deleted successfully")
}

func (s *Server) handleListSongs(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	songs, total, err := s.songs.ListPage(r.Context(), page, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if songs == nil {
		songs = []store.Song{}
	}
	writePage(w, songs, total, page, limit)
}

func (s *Server) handleGetSong(w http.ResponseWriter, r *http.Request) {
	song, err := s.songs.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, song)
}

func (s *Server) handleSimilarSongs(w http.ResponseWriter, r *http.Request) {
	songs, err := s.discovery.Similar(r.Context(), r.PathValue("id"), limitParam(r, 0))
	if err != nil {
		writeError(w, err)
		return
	}
	if songs == nil {
		songs = []store.Song{}
	}
	writeData(w, http.StatusOK, songs)
}
