package qr

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	svg "github.com/ajstarks/svgo"
	"github.com/mdp/qrterminal/v3"
	rsqr "rsc.io/qr"
)

// DisplaySize is the on-screen edge length of a rendered code, in CSS pixels.
const DisplaySize = 256

// Renderer turns text into a displayable vector code.
type Renderer interface {
	Render(text string) (string, error)
}

// SVGRenderer renders the symbol with rsc.io/qr and writes it as SVG. The
// output is a pure function of the text.
type SVGRenderer struct {
	Size int // rendered edge length; DisplaySize when zero
}

// Render returns an SVG document for text. Empty text yields a minimal
// version 1 symbol.
func (r SVGRenderer) Render(text string) (string, error) {
	code, err := rsqr.Encode(text, rsqr.L)
	if err != nil {
		return "", fmt.Errorf("render qr: %w", err)
	}

	size := r.Size
	if size <= 0 {
		size = DisplaySize
	}

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Startview(size, size, 0, 0, code.Size, code.Size)
	canvas.Rect(0, 0, code.Size, code.Size, "fill:#FFFFFF")
	canvas.Path(modulePath(code), "fill:#000000")
	canvas.End()
	return buf.String(), nil
}

// modulePath draws each dark module as a unit square, merging horizontal
// runs into one rectangle.
func modulePath(code *rsqr.Code) string {
	var sb strings.Builder
	for y := 0; y < code.Size; y++ {
		for x := 0; x < code.Size; {
			if !code.Black(x, y) {
				x++
				continue
			}
			start := x
			for x < code.Size && code.Black(x, y) {
				x++
			}
			fmt.Fprintf(&sb, "M%d %dh%dv1h-%dz", start, y, x-start, x-start)
		}
	}
	return sb.String()
}

// WriteTerminal prints text as a half-block QR code for terminals.
func WriteTerminal(w io.Writer, text string) {
	qrterminal.GenerateHalfBlock(text, qrterminal.L, w)
}
