package api

import (
	"context"
	"log"
	"net/http"
)

// IndexData feeds the dashboard template. Slider ranges and defaults live in
// the template itself; the hidden appliances keep fixed household baseline
// values there too.
type IndexData struct {
	HistoryCount int
	CO2Threshold float64
	NarrativeOn  bool
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.OpTimeout)
	defer cancel()

	n, err := s.store.Count(ctx)
	if err != nil {
		log.Printf("api: index: count history: %v", err)
	}

	data := IndexData{
		HistoryCount: n,
		CO2Threshold: s.cfg.CO2Threshold,
		NarrativeOn:  s.narrator != nil,
	}

	if err := s.tmpl.ExecuteTemplate(w, "index.html", data); err != nil {
		log.Printf("api: render index: %v", err)
	}
}
