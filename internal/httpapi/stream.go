package httpapi

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// handleStreamSong serves a song's audio file. ServeContent handles byte
// ranges and chunked reads; the file is never loaded wholesale.
func (s *Server) handleStreamSong(w http.ResponseWriter, r *http.Request) {
	song, err := s.songs.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if song.AudioURL == "" {
		writeDetail(w, http.StatusNotFound, "song has no audio file")
		return
	}

	// Audio URLs point into the uploads directory; only the base name is
	// trusted so a crafted URL cannot escape it.
	name := filepath.Base(strings.TrimPrefix(song.AudioURL, "/uploads/"))
	path := filepath.Join(s.uploadDir, name)

	file, err := os.Open(path)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "audio file not found")
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to read audio file")
		return
	}

	if err := s.songs.RecordPlay(r.Context(), song.ID); err != nil {
		log.Warn().Err(err).Str("song_id", song.ID).Msg("failed to record play")
	}

	w.Header().Set("Accept-Ranges", "bytes")
	http.ServeContent(w, r, name, info.ModTime(), file)
}
