package api

import (
	"encoding/json"
	"net/http"
)

// handleCrawl runs a synchronous crawl of the announcement listing and
// returns the discovered announcements with downloaded attachment
// paths. Crawls are operator-triggered and infrequent, so they run in
// the request rather than through the job queue.
func (s *Server) handleCrawl(w http.ResponseWriter, r *http.Request) {
	if s.crawler == nil {
		jsonError(w, "crawler is not configured", http.StatusServiceUnavailable)
		return
	}

	announcements, err := s.crawler.Crawl(r.Context())
	if err != nil {
		s.log.Error("crawl failed", "error", err)
		jsonError(w, "crawl failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"count":         len(announcements),
		"announcements": announcements,
	})
}
