// Package internal hosts the operator-facing inspect page: a plain HTML
// view over the relay's live connections for debugging sessions.
package internal

import (
	"embed"
	"html/template"
	"net/http"
)

//go:embed inspect.html
var templatesFS embed.FS

// InspectRow is one live connection as shown on the page.
type InspectRow struct {
	Connection string
	Name       string
	Groups     string
}

type RowsProvider func() []InspectRow
type StatsProvider func() map[string]any

type PageData struct {
	Items []InspectRow
	Stats map[string]any
}

// NewInspectHandler renders the current connections and hub counters.
// Mounted by cmd/server next to the chat endpoint; read-only.
func NewInspectHandler(rows RowsProvider, stats StatsProvider) http.Handler {
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data := PageData{Stats: make(map[string]any)}
		if stats != nil {
			data.Stats = stats()
		}
		if rows != nil {
			data.Items = rows()
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})
}
