package topics

import (
	"os"
	"sync"

	"github.com/charmbracelet/glamour"
)

// Renderer formats topic content for the terminal. ext is the topic file's
// extension, including the dot.
type Renderer interface {
	Render(content string, ext string) string
}

// RendererFunc adapts a function to Renderer
type RendererFunc func(content, ext string) string

// Render implements Renderer
func (f RendererFunc) Render(content, ext string) string {
	return f(content, ext)
}

// PlainRenderer prints topics as written
type PlainRenderer struct{}

// Render implements Renderer
func (r *PlainRenderer) Render(content string, ext string) string {
	return content
}

// GlamourRenderer renders markdown topics with glamour. Other formats pass
// through unchanged.
type GlamourRenderer struct {
	// Style is a glamour style name or path; "" or "auto" detects from the
	// terminal. NO_COLOR forces "notty".
	Style string
	// Width wraps output; 0 leaves glamour's default.
	Width int

	once sync.Once
	term *glamour.TermRenderer
}

// NewGlamourRenderer creates a markdown renderer with terminal detection
func NewGlamourRenderer() *GlamourRenderer {
	return &GlamourRenderer{Style: "auto"}
}

// Render implements Renderer. Markdown that fails to render is returned as is.
func (r *GlamourRenderer) Render(content string, ext string) string {
	if ext != ".md" {
		return content
	}
	r.once.Do(r.init)
	if r.term == nil {
		return content
	}
	out, err := r.term.Render(content)
	if err != nil {
		return content
	}
	return out
}

func (r *GlamourRenderer) init() {
	var opts []glamour.TermRendererOption
	switch {
	case os.Getenv("NO_COLOR") != "":
		opts = append(opts, glamour.WithStandardStyle("notty"))
	case r.Style == "" || r.Style == "auto":
		opts = append(opts, glamour.WithAutoStyle())
	default:
		opts = append(opts, glamour.WithStylePath(r.Style))
	}
	if r.Width > 0 {
		opts = append(opts, glamour.WithWordWrap(r.Width))
	}

	term, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return
	}
	r.term = term
}
