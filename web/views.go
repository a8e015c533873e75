package web

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/django/v3"
)

//go:embed views public
var viewsFS embed.FS

// ViewsFS returns the embedded templates rooted at the views directory.
func ViewsFS() fs.FS {
	sub, err := fs.Sub(viewsFS, "views")
	if err != nil {
		panic(fmt.Sprintf("portal views not embedded: %v", err))
	}
	return sub
}

// AssetsFS returns the embedded static assets.
func AssetsFS() fs.FS {
	sub, err := fs.Sub(viewsFS, "public")
	if err != nil {
		panic(fmt.Sprintf("portal assets not embedded: %v", err))
	}
	return sub
}

// NewEngine builds the django view engine over fsys, or over the embedded
// templates when fsys is nil.
func NewEngine(fsys fs.FS, reload bool) *django.Engine {
	if fsys == nil {
		fsys = ViewsFS()
	}
	engine := django.NewPathForwardingFileSystem(http.FS(fsys), "/", ".html")
	engine.Reload(reload)
	return engine
}
