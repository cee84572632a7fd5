package api

import (
	"net/http"
	"time"
)

type statusResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
	Theme   string `json:"theme"`
	Mode    string `json:"mode"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	th := s.Panel.Theme()
	uptime := time.Since(s.StartTime).Truncate(time.Second).String()

	writeJSON(w, http.StatusOK, statusResponse{
		Status:  "ok",
		Uptime:  uptime,
		Version: s.Version,
		Theme:   string(th.Preference()),
		Mode:    th.Mode().String(),
	})
}
