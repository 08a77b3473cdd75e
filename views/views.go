// Package views holds the HTML templates, embedded so the binary (and the
// tests) render the same markup regardless of working directory.
package views

import (
	"embed"
	"net/http"

	"github.com/gofiber/template/html/v2"
)

//go:embed *.html
var files embed.FS

// Engine returns a Fiber template engine backed by the embedded views.
func Engine() *html.Engine {
	return html.NewFileSystem(http.FS(files), ".html")
}
