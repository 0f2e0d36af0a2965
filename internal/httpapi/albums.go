package httpapi

import (
	"net/http"

	"selfmusic/internal/store"
)

func (s *Server) handleAdminListAlbums(w http.ResponseWriter, r *http.Request) {
	albums, err := s.albums.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if albums == nil {
		albums = []store.Album{}
	}
	writeData(w, http.StatusOK, albums)
}

func (s *Server) handleCreateAlbum(w http.ResponseWriter, r *http.Request) {
	var album store.Album
	if err := decodeBody(r, &album); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	created, err := s.albums.Create(r.Context(), album)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, created)
}

func (s *Server) handleUpdateAlbum(w http.ResponseWriter, r *http.Request) {
	var album store.Album
	if err := decodeBody(r, &album); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	updated, err := s.albums.Update(r.Context(), r.PathValue("id"), album)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteAlbum(w http.ResponseWriter, r *http.Request) {
	if err := s.albums.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, "Album deleted successfully")
}

func (s *Server) handleListAlbums(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	albums, total, err := s.albums.ListPage(r.Context(), page, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if albums == nil {
		albums = []store.Album{}
	}
	writePage(w, albums, total, page, limit)
}

func (s *Server) handleGetAlbum(w http.ResponseWriter, r *http.Request) {
	album, err := s.albums.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, album)
}

func (s *Server) handleAlbumSongs(w http.ResponseWriter, r *http.Request) {
	songs, err := s.albums.Songs(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if songs == nil {
		songs = []store.Song{}
	}
	writeData(w, http.StatusOK, songs)
}
