package api

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
)

var allowedImageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// uploadImage stores a scenario asset under the configured image directory.
func (s *Server) uploadImage(c echo.Context) error {
	if !s.hasGate(c, gateAdmin) {
		return c.Redirect(http.StatusSeeOther, "/admin")
	}

	fh, err := c.FormFile("image")
	if err != nil {
		return s.adminRedirect(c, "no image selected")
	}

	name := sanitizeFilename(fh.Filename)
	if name == "" || !allowedImageExts[strings.ToLower(filepath.Ext(name))] {
		return s.adminRedirect(c, "allowed image types: png, jpg, jpeg, gif")
	}

	src, err := fh.Open()
	if err != nil {
		return s.adminRedirect(c, err.Error())
	}
	defer src.Close()

	if err := os.MkdirAll(s.cfg.Upload.ImageDir, 0o755); err != nil {
		return s.adminRedirect(c, err.Error())
	}
	dst, err := os.Create(filepath.Join(s.cfg.Upload.ImageDir, name))
	if err != nil {
		return s.adminRedirect(c, err.Error())
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return s.adminRedirect(c, err.Error())
	}

	s.log.Info("image uploaded", "name", name)
	return s.adminRedirect(c, "image '"+name+"' uploaded")
}

// sanitizeFilename strips any path components and characters that do not
// belong in a stored file name.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	return strings.Trim(name, "._")
}
