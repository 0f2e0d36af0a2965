package httpapi

import (
	"net/http"

	"selfmusic/internal/store"
)

func (s *Server) handleAdminListMoods(w http.ResponseWriter, r *http.Request) {
	moods, err := s.moods.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if moods == nil {
		moods = []store.Mood{}
	}
	writeData(w, http.StatusOK, moods)
}

func (s *Server) handleCreateMood(w http.ResponseWriter, r *http.Request) {
	var mood store.Mood
	if err := decodeBody(r, &mood); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	created, err := s.moods.Create(r.Context(), mood)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, created)
}

func (s *Server) handleUpdateMood(w http.ResponseWriter, r *http.Request) {
	var mood store.Mood
	if err := decodeBody(r, &mood); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	updated, err := s.moods.Update(r.Context(), r.PathValue("id"), mood)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteMood(w http.ResponseWriter, r *http.Request) {
	if err := s.moods.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, "Mood deleted successfully")
}

func (s *Server) handleListMoods(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	moods, total, err := s.moods.ListPage(r.Context(), page, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if moods == nil {
		moods = []store.Mood{}
	}
	writePage(w, moods, total, page, limit)
}

func (s *Server) handleGetMood(w http.ResponseWriter, r *http.Request) {
	mood, err := s.moods.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, mood)
}

func (s *Server) handleMoodSongs(w http.ResponseWriter, r *http.Request) {
	songs, err := s.moods.Songs(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if songs == nil {
		songs = []store.Song{}
	}
	writeData(w, http.StatusOK, songs)
}
