// Package templates embeds and renders the portal's HTML pages.
package templates

import (
	"embed"
	"html/template"
	"io"
)

//go:embed *.tmpl
var files embed.FS

var pages = template.Must(template.ParseFS(files, "*.tmpl"))

// Render executes the named page template. Rendering happens into the given
// writer; callers that need all-or-nothing output render into a buffer.
func Render(w io.Writer, name string, data interface{}) error {
	return pages.ExecuteTemplate(w, name, data)
}
