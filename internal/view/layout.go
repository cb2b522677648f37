// Package view renders pages and Datastar fragments as templ components.
package view

import (
	"context"
	"io"
	"net/url"

	"github.com/a-h/templ"

	"github.com/msomdec/task-tracker/internal/domain"
)

const datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"

// Element ids patched over SSE.
const (
	ToastID = "toast"
	BoardID = "task-board"
)

// csrfField is the form field gorilla/csrf reads by default.
const csrfField = "gorilla.csrf.Token"

// htmlWriter accumulates the first write error so components can emit
// markup without checking every call.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(parts ...string) {
	for _, p := range parts {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, p)
	}
}

// text writes s escaped for element content and quoted attribute values.
func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) component(ctx context.Context, c templ.Component) {
	if h.err != nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

func (h *htmlWriter) csrf(token string) {
	if token == "" {
		return
	}
	h.raw(`<input type="hidden" name="`, csrfField, `" value="`)
	h.text(token)
	h.raw(`">`)
}

// TODO: move these components to .templ sources once templ generate runs
// as part of the build.
func component(fn func(ctx context.Context, h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		fn(ctx, h)
		return h.err
	})
}

// Page wraps body in the document shell shared by every page.
func Page(title string, notice *domain.Notice, body templ.Component) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`,
			`<meta name="viewport" content="width=device-width, initial-scale=1">`,
			`<title>`)
		h.text(title)
		h.raw(`</title><script type="module" src="`, datastarScript, `"></script></head><body>`)
		h.component(ctx, body)
		h.component(ctx, Toast(notice))
		h.raw(`</body></html>`)
	})
}

// Toast renders a notice, or an empty slot when notice is nil.
func Toast(notice *domain.Notice) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		if notice == nil || notice.Message == "" {
			h.raw(`<div id="`, ToastID, `"></div>`)
			return
		}
		h.raw(`<div id="`, ToastID, `" class="toast toast-`)
		h.text(string(notice.Severity))
		h.raw(`" role="status">`)
		h.text(notice.Message)
		h.raw(`</div>`)
	})
}

// ErrorPage is shown for failures outside the dashboards.
func ErrorPage(status int, message string) templ.Component {
	return Page("Error", nil, component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<main class="error"><h1>`)
		h.text(httpStatusText(status))
		h.raw(`</h1><p>`)
		h.text(message)
		h.raw(`</p><a href="/">Back to start</a></main>`)
	}))
}

// streamURL ends with the filter value so the filter select can append to
// it.
func streamURL(tab, filter string) string {
	return "/tasks/stream?tab=" + url.QueryEscape(tab) + "&filter=" + url.QueryEscape(filter)
}
