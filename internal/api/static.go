package api

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aarambhveda/counselor/pkg/logger"
)

// StaticFileHandler serves the site build. Paths without a file extension that
// match no file are client routes (/colleges/3, /compare) and get index.html.
type StaticFileHandler struct {
	root   string
	logger *logger.Logger
}

// NewStaticFileHandler creates a new static file handler
func NewStaticFileHandler(staticDir string, logger *logger.Logger) *StaticFileHandler {
	root, err := filepath.Abs(staticDir)
	if err != nil {
		root = filepath.Clean(staticDir)
	}
	return &StaticFileHandler{
		root:   root,
		logger: logger.Named("static-handler"),
	}
}

func (h *StaticFileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	// path.Clean on a rooted path cannot climb above "/"
	rel := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	file, ok := h.resolve(rel)
	if !ok {
		if path.Ext(rel) != "" || isServicePath(rel) {
			h.logger.Debug("Static file not found", logger.String("path", rel))
			http.NotFound(w, r)
			return
		}
		file, ok = h.resolve("index.html")
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.logger.Debug("Serving client route", logger.String("path", r.URL.Path))
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	http.ServeFile(w, r, file)
}

// resolve maps a cleaned relative path to a regular file under root,
// using a directory's index.html when present
func (h *StaticFileHandler) resolve(rel string) (string, bool) {
	full := filepath.Join(h.root, filepath.FromSlash(rel))
	if full != h.root && !strings.HasPrefix(full, h.root+string(filepath.Separator)) {
		h.logger.Warn("Rejected path outside static directory", logger.String("path", rel))
		return "", false
	}

	info, err := os.Stat(full)
	if err != nil {
		if !os.IsNotExist(err) {
			h.logger.Error("Failed to stat static file", logger.String("path", full), logger.Error(err))
		}
		return "", false
	}
	if info.IsDir() {
		index := filepath.Join(full, "index.html")
		if st, err := os.Stat(index); err == nil && !st.IsDir() {
			return index, true
		}
		return "", false
	}
	return full, true
}

// unknown API paths stay 404 rather than rendering the site shell
func isServicePath(rel string) bool {
	return rel == "api" || strings.HasPrefix(rel, "api/") ||
		rel == "functions" || strings.HasPrefix(rel, "functions/")
}
