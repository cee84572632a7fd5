package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/openclaw/qrlink/theme"
)

// clientHintHeader carries the browser's prefers-color-scheme value when the
// page opted in with Accept-CH.
const clientHintHeader = "Sec-CH-Prefers-Color-Scheme"

type themeResponse struct {
	Preference theme.Preference `json:"preference"`
	Mode       string           `json:"mode"`
	Dark       bool             `json:"dark"`
}

type selectThemeRequest struct {
	Preference string `json:"preference"`
}

type osSchemeRequest struct {
	Dark *bool `json:"dark"`
}

func (s *Server) themeResponse() themeResponse {
	th := s.Panel.Theme()
	mode := th.Mode()
	return themeResponse{
		Preference: th.Preference(),
		Mode:       mode.String(),
		Dark:       mode.IsDark(),
	}
}

func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.themeResponse())
}

func (s *Server) handleSelectTheme(w http.ResponseWriter, r *http.Request) {
	var req selectThemeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.Panel.SelectTheme(r.Context(), theme.Preference(req.Preference)); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, theme.ErrUnknownPreference) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.themeResponse())
}

func (s *Server) handleOSScheme(w http.ResponseWriter, r *http.Request) {
	var req osSchemeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Dark == nil {
		writeError(w, http.StatusBadRequest, "dark is required")
		return
	}

	s.Signal.Report(*req.Dark)
	writeJSON(w, http.StatusOK, s.themeResponse())
}

// applyClientHint feeds the Sec-CH-Prefers-Color-Scheme header, when present,
// into the OS signal.
func (s *Server) applyClientHint(r *http.Request) {
	switch strings.Trim(r.Header.Get(clientHintHeader), `"`) {
	case "dark":
		s.Signal.Report(true)
	case "light":
		s.Signal.Report(false)
	}
}
