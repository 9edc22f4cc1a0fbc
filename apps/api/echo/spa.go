package echoapi

import (
	"os"
	"path"
	"path/filepath"

	"github.com/labstack/echo/v4"
)

const spaIndex = "index.html"

// newSPAHandler serves files from dir, falling back to the single page app index for unknown paths.
func newSPAHandler(dir string) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		p := path.Clean("/" + ctx.Param("*"))
		file := filepath.Join(dir, filepath.FromSlash(p))
		if fi, err := os.Stat(file); err == nil && !fi.IsDir() {
			return ctx.File(file)
		}
		return ctx.File(filepath.Join(dir, spaIndex))
	}
}
