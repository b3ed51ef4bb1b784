package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const (
	StyleEntry  = "project.css"
	ScriptEntry = "project.js"
)

// Assets is what pages need from the static asset resolver.
type Assets interface {
	Static(name string) string
	CSS(name string) []string
	ViteClientURL() string
}

type Page struct {
	Title     string
	Assets    Assets
	Debug     bool
	UseVite   bool
	CSRFToken string
	Body      templ.Component
}

type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) attr(name, value string) {
	h.raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

func (h *htmlWriter) component(ctx context.Context, c templ.Component) {
	if h.err == nil && c != nil {
		h.err = c.Render(ctx, h.w)
	}
}

func Base(p Page) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		if p.CSRFToken != "" {
			h.raw(`<meta name="csrf-token"`)
			h.attr("content", p.CSRFToken)
			h.raw(`>`)
		}
		h.raw(`<title>`)
		h.text(p.Title)
		h.raw(`</title>`)

		if p.Assets != nil {
			if client := p.Assets.ViteClientURL(); client != "" {
				h.raw(`<script type="module"`)
				h.attr("src", client)
				h.raw(`></script>`)
			}
			for _, href := range p.Assets.CSS(StyleEntry) {
				h.raw(`<link rel="stylesheet"`)
				h.attr("href", href)
				h.raw(`>`)
			}
			h.raw(`<script type="module" defer`)
			h.attr("src", p.Assets.Static(ScriptEntry))
			h.raw(`></script>`)
		}
		h.raw(`</head>`)

		h.raw(`<body`)
		if p.CSRFToken != "" {
			h.attr("hx-headers", `{"X-CSRFToken": "`+p.CSRFToken+`"}`)
		}
		h.raw(`>`)
		h.component(ctx, p.Body)
		if p.Debug {
			h.raw(`<footer class="debug-banner">debug`)
			if p.UseVite {
				h.raw(` &middot; vite`)
			}
			h.raw(`</footer>`)
		}
		h.raw(`</body></html>`)
		return h.err
	})
}

func Home() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<main class="container"><h1>yads</h1>`)
		h.raw(`<p x-data="{ open: false }">Your project is up and running.</p></main>`)
		return h.err
	})
}
