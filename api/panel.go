package api

import (
	"fmt"
	"net/http"

	"github.com/openclaw/qrlink/qr"
)

type setLinkRequest struct {
	Text *string `json:"text"`
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Panel.State())
}

func (s *Server) handleSetLink(w http.ResponseWriter, r *http.Request) {
	var req setLinkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == nil {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	s.Panel.SetLinkText(*req.Text)
	writeJSON(w, http.StatusOK, s.Panel.State())
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	img, ok := s.Panel.Image()
	if !ok {
		writeError(w, http.StatusNotFound, "no image generated yet")
		return
	}

	data, err := qr.DecodeDataURI(img.DataURI)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.Panel.Filename()))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
