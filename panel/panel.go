// Package panel implements the Link-to-QR panel: the current link text, the
// vector code shown on screen, the downloadable PNG and the theme.
package panel

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/openclaw/qrlink/metrics"
	"github.com/openclaw/qrlink/qr"
	"github.com/openclaw/qrlink/theme"
)

// DefaultFilename is the file name offered for downloads.
const DefaultFilename = "qrcode.png"

// Image is a resolved downloadable image.
type Image struct {
	DataURI string // data:image/png;base64,...
	Text    string // text the image was encoded from
}

// State is a snapshot of the panel.
type State struct {
	Text        string           `json:"text"`
	SVG         string           `json:"svg"`
	RenderError string           `json:"render_error,omitempty"`
	Image       string           `json:"image,omitempty"`
	ImageText   string           `json:"image_text"`
	HasImage    bool             `json:"has_image"`
	Pending     int              `json:"pending"`
	EncodeError string           `json:"encode_error,omitempty"`
	Filename    string           `json:"filename"`
	Theme       theme.Preference `json:"theme"`
	Mode        string           `json:"mode"`
	Dark        bool             `json:"dark"`
}

// Options configures a Panel. Theme is required.
type Options struct {
	Encoder  qr.Encoder
	Renderer qr.Renderer
	Encode   qr.Options
	Filename string
	Theme    *theme.Controller
	Metrics  *metrics.Metrics
	Log      *slog.Logger
}

// Panel holds the link text and everything derived from it.
//
// SetLinkText updates the rendered code synchronously and starts one encode
// per call. Each encode overwrites the image when it resolves, even if a
// newer encode was issued after it, so the image is the last one resolved
// and not necessarily the last one requested.
type Panel struct {
	encoder  qr.Encoder
	renderer qr.Renderer
	opts     qr.Options
	filename string
	theme    *theme.Controller
	metrics  *metrics.Metrics
	log      *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.RWMutex
	text      string
	svg       string
	renderErr string
	image     Image
	hasImage  bool
	imageSeq  uint64
	issued    uint64
	pending   int
	encodeErr string
}

// New creates a Panel with empty text and renders the initial code.
func New(o Options) *Panel {
	if o.Encoder == nil {
		o.Encoder = qr.PNGEncoder{}
	}
	if o.Renderer == nil {
		o.Renderer = qr.SVGRenderer{}
	}
	if o.Encode.Width == 0 {
		o.Encode = qr.DefaultOptions()
	}
	if o.Filename == "" {
		o.Filename = DefaultFilename
	}
	if o.Log == nil {
		o.Log = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Panel{
		encoder:  o.Encoder,
		renderer: o.Renderer,
		opts:     o.Encode,
		filename: o.Filename,
		theme:    o.Theme,
		metrics:  o.Metrics,
		log:      o.Log,
		ctx:      ctx,
		cancel:   cancel,
	}
	p.svg, p.renderErr = p.render("")
	return p
}

// SetLinkText replaces the text, re-renders the code and issues an encode.
func (p *Panel) SetLinkText(text string) {
	svg, renderErr := p.render(text)

	p.mu.Lock()
	p.text = text
	p.svg = svg
	p.renderErr = renderErr
	p.issued++
	seq := p.issued
	p.pending++
	p.wg.Add(1)
	p.mu.Unlock()

	p.metrics.AddInFlight(1)
	go p.encode(seq, text)
}

func (p *Panel) render(text string) (string, string) {
	svg, err := p.renderer.Render(text)
	if err != nil {
		p.log.Warn("render failed", "error", err, "length", len(text))
		return "", err.Error()
	}
	return svg, ""
}

func (p *Panel) encode(seq uint64, text string) {
	defer p.wg.Done()
	defer p.metrics.AddInFlight(-1)

	start := time.Now()
	uri, err := p.encoder.Encode(p.ctx, text, p.opts)
	p.metrics.ObserveEncode(time.Since(start), err)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending--

	if err != nil {
		// The previous image stays downloadable.
		p.encodeErr = err.Error()
		p.log.Warn("encode failed", "error", err, "length", len(text))
		return
	}

	if seq < p.imageSeq {
		p.metrics.StaleImage()
		p.log.Debug("stale encode replaced a newer image", "seq", seq, "image_seq", p.imageSeq)
	}
	p.image = Image{DataURI: uri, Text: text}
	p.hasImage = true
	p.imageSeq = seq
	p.encodeErr = ""
}

// Text returns the current link text.
func (p *Panel) Text() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.text
}

// SVG returns the rendered code for the current text, or "" when the text
// could not be rendered.
func (p *Panel) SVG() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.svg
}

// Image returns the most recently resolved image. ok is false until the
// first encode succeeds.
func (p *Panel) Image() (img Image, ok bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.image, p.hasImage
}

// Filename returns the download file name.
func (p *Panel) Filename() string {
	return p.filename
}

// Theme returns the panel's theme controller.
func (p *Panel) Theme() *theme.Controller {
	return p.theme
}

// SelectTheme applies an explicit theme choice. Unknown choices return an
// error wrapping theme.ErrUnknownPreference.
func (p *Panel) SelectTheme(ctx context.Context, pref theme.Preference) error {
	err := p.theme.Select(ctx, pref)
	if errors.Is(err, theme.ErrUnknownPreference) {
		return err
	}
	p.metrics.ThemeSelected(string(p.theme.Preference()))
	return err
}

// State returns a snapshot of the panel.
func (p *Panel) State() State {
	mode := p.theme.Mode()

	p.mu.RLock()
	defer p.mu.RUnlock()
	return State{
		Text:        p.text,
		SVG:         p.svg,
		RenderError: p.renderErr,
		Image:       p.image.DataURI,
		ImageText:   p.image.Text,
		HasImage:    p.hasImage,
		Pending:     p.pending,
		EncodeError: p.encodeErr,
		Filename:    p.filename,
		Theme:       p.theme.Preference(),
		Mode:        mode.String(),
		Dark:        mode.IsDark(),
	}
}

// Wait blocks until every issued encode has resolved.
func (p *Panel) Wait() {
	p.wg.Wait()
}

// Close cancels in-flight encodes, waits for them and releases the theme
// controller's OS signal subscription.
func (p *Panel) Close() {
	p.cancel()
	p.wg.Wait()
	p.theme.Close()
}
