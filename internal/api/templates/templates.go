package templates

import (
	"embed"
	"html/template"
	"strings"
	"time"
)

//go:embed *.html
var files embed.FS

// Funcs are the helpers available to every page
var Funcs = template.FuncMap{
	"rank": func(i int) int { return i + 1 },
	"parClass": func(relative int) string {
		switch {
		case relative < 0:
			return "under"
		case relative > 0:
			return "over"
		default:
			return "even"
		}
	},
	"clock": func(t time.Time) string {
		if t.IsZero() {
			return "never"
		}
		return t.Format("15:04:05")
	},
	"join": strings.Join,
}

// Parse loads all embedded pages. Page templates are addressed by file name.
func Parse() (*template.Template, error) {
	return template.New("").Funcs(Funcs).ParseFS(files, "*.html")
}
