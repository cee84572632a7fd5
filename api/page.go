package api

import (
	"bytes"
	_ "embed"
	"html/template"
	"net/http"

	"github.com/openclaw/qrlink/theme"
)

//go:embed panel.html
var panelPageHTML string

var panelPage = template.Must(template.New("panel").Parse(panelPageHTML))

type themeOption struct {
	Value    theme.Preference
	Label    string
	Selected bool
}

type panelPageData struct {
	Dark     bool
	Text     string
	SVG      template.HTML
	Image    template.URL
	Filename string
	Themes   []themeOption
}

func (s *Server) handlePanelPage(w http.ResponseWriter, r *http.Request) {
	// The OS signal is shared, so the last browser to report wins.
	s.applyClientHint(r)

	st := s.Panel.State()
	data := panelPageData{
		Dark:     st.Dark,
		Text:     st.Text,
		SVG:      template.HTML(st.SVG), // produced by our renderer, not user markup
		Image:    template.URL(st.Image),
		Filename: st.Filename,
	}
	for _, opt := range []struct {
		pref  theme.Preference
		label string
	}{
		{theme.Light, "Light"},
		{theme.Dark, "Dark"},
		{theme.System, "System"},
	} {
		data.Themes = append(data.Themes, themeOption{
			Value:    opt.pref,
			Label:    opt.label,
			Selected: opt.pref == st.Theme,
		})
	}

	var buf bytes.Buffer
	if err := panelPage.Execute(&buf, data); err != nil {
		s.Log.Error("render panel page", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render page")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Accept-CH", clientHintHeader)
	w.Header().Set("Vary", clientHintHeader)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
