package httpapi

import (
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const maxUploadMemory = 32 << 20 // 32 MiB held in memory, the rest spills to disk

type uploadResponse struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// handleUpload stores a multipart file under a generated name and returns the
// public URL it will be served from.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid multipart payload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "no file selected")
		return
	}
	defer file.Close()

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to prepare upload directory")
		return
	}

	filename := uuid.NewString() + filepath.Ext(header.Filename)
	dst, err := os.Create(filepath.Join(s.uploadDir, filename))
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to store file")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to store file")
		return
	}

	writeData(w, http.StatusOK, uploadResponse{
		Filename: filename,
		URL:      "/uploads/" + filename,
	})
}
