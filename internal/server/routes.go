package server

import (
	"net/http"
	"strings"
)

// registerRoutes wires the API endpoints.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	reviews := s.app.ReviewHandler
	api := s.app.APIHandler

	mux.HandleFunc("/api/reviews", reviews.SubmitHandler)
	mux.HandleFunc("/api/jobs/status", reviews.StatusHandler)
	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/artifact") {
			reviews.ArtifactHandler(w, r)
			return
		}
		api.NotFoundHandler(w, r)
	})

	mux.HandleFunc("/api/health", api.HealthHandler)
	mux.HandleFunc("/api/version", api.VersionHandler)
	mux.HandleFunc("/api/status", api.StatusHandler)

	mux.HandleFunc("/", api.NotFoundHandler)
}
