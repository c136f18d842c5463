// Package static holds the kiosk and admin pages served by the web server.
package static

import (
	"embed"
	"io/fs"
)

//go:embed pages/*.html
var pagesFS embed.FS

// Page returns the contents of an embedded page, e.g. "kiosk.html".
func Page(name string) ([]byte, error) {
	return fs.ReadFile(pagesFS, "pages/"+name)
}
