package httpapi

import (
	"net/http"

	"selfmusic/internal/store"
)

type checkExistsRequest struct {
	Songs []store.SongKey `json:"songs"`
}

func (s *Server) handleCheckExists(w http.ResponseWriter, r *http.Request) {
	var req checkExistsRequest
	if err := decodeBody(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	results, err := s.importer.CheckExists(r.Context(), req.Songs)
	if err != nil {
		writeError(w, err)
		return
	}
	if results == nil {
		results = []store.ExistsResult{}
	}
	writeData(w, http.StatusOK, results)
}

type importBatchRequest struct {
	Items []store.ImportItem `json:"items"`
}

func (s *Server) handleImportBatch(w http.ResponseWriter, r *http.Request) {
	var req importBatchRequest
	if err := decodeBody(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	summary, err := s.importer.ImportBatch(r.Context(), req.Items)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, summary)
}
