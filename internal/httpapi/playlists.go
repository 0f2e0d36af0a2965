package httpapi

import (
	"net/http"

	"selfmusic/internal/store"
)

func (s *Server) handleAdminListPlaylists(w http.ResponseWriter, r *http.Request) {
	playlists, err := s.playlists.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if playlists == nil {
		playlists = []store.Playlist{}
	}
	writeData(w, http.StatusOK, playlists)
}

func (s *Server) handleAdminCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	s.createPlaylist(w, r, "admin")
}

// handlePublicCreatePlaylist mirrors the admin create without a credential.
// Playlists made here default to the "user" creator.
func (s *Server) handlePublicCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	s.createPlaylist(w, r, "user")
}

func (s *Server) createPlaylist(w http.ResponseWriter, r *http.Request, defaultCreator string) {
	var playlist store.Playlist
	if err := decodeBody(r, &playlist); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if playlist.Creator == "" {
		playlist.Creator = defaultCreator
	}

	created, err := s.playlists.Create(r.Context(), playlist)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, created)
}

func (s *Server) handleUpdatePlaylist(w http.ResponseWriter, r *http.Request) {
	var playlist store.Playlist
	if err := decodeBody(r, &playlist); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	updated, err := s.playlists.Update(r.Context(), r.PathValue("id"), playlist)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, updated)
}

func (s *Server) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	if err := s.playlists.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, "Playlist deleted successfully")
}

func (s *Server) handleListPlaylists(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	playlists, total, err := s.playlists.ListPublicPage(r.Context(), page, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if playlists == nil {
		playlists = []store.Playlist{}
	}
	writePage(w, playlists, total, page, limit)
}

func (s *Server) handleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	playlist, err := s.playlists.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, playlist)
}

type addSongRequest struct {
	SongID string `json:"songId"`
}

func (s *Server) handleAddPlaylistSong(w http.ResponseWriter, r *http.Request) {
	var req addSongRequest
	if err := decodeBody(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if req.SongID == "" {
		writeDetail(w, http.StatusBadRequest, "songId is required")
		return
	}

	playlist, err := s.playlists.AddSong(r.Context(), r.PathValue("id"), req.SongID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, playlist)
}

func (s *Server) handleRemovePlaylistSong(w http.ResponseWriter, r *http.Request) {
	playlist, err := s.playlists.RemoveSong(r.Context(), r.PathValue("id"), r.PathValue("songId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, playlist)
}

type reorderRequest struct {
	SongIDs []string `json:"songIds"`
}

func (s *Server) handleReorderPlaylist(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeBody(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if req.SongIDs == nil {
		req.SongIDs = []string{}
	}

	playlist, err := s.playlists.Reorder(r.Context(), r.PathValue("id"), req.SongIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, playlist)
}
