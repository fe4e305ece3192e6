package httpapi

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
)

// mountStatic serves StaticDir/index.html at "/" and the directory itself
// under /static/.
func (s *server) mountStatic(r chi.Router) {
	if s.StaticDir == "" {
		return
	}
	dir := s.StaticDir
	index := filepath.Join(dir, "index.html")
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		if _, err := os.Stat(index); err != nil {
			writeJSONError(w, http.StatusNotFound, "frontend not installed")
			return
		}
		http.ServeFile(w, req, index)
	})
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(dir))))
}
