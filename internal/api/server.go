package api

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lkane/hearthwatch/internal/advisor"
	"github.com/lkane/hearthwatch/internal/inference"
	"github.com/lkane/hearthwatch/internal/series"
	"github.com/lkane/hearthwatch/internal/store"
)

//go:embed templates/*
var templateFS embed.FS

// Config carries the tunables the server needs beyond its collaborators.
type Config struct {
	Port         string
	CO2Threshold float64       // predicted kg above which emissions count as high
	GapThreshold time.Duration // chart segmentation gap
	OpTimeout    time.Duration // per-request budget for inference and store I/O
}

type Server struct {
	store    *store.Store
	model    inference.Model
	narrator *advisor.Narrator // nil when narrative generation is disabled
	cfg      Config
	loc      *time.Location
	tmpl     *template.Template
}

func NewServer(st *store.Store, model inference.Model, narrator *advisor.Narrator, cfg Config, loc *time.Location) *Server {
	tmpl := template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))

	if cfg.CO2Threshold == 0 {
		cfg.CO2Threshold = advisor.DefaultCO2Threshold
	}
	if cfg.GapThreshold == 0 {
		cfg.GapThreshold = series.DefaultGapThreshold
	}
	if cfg.OpTimeout == 0 {
		cfg.OpTimeout = 10 * time.Second
	}

	return &Server{
		store:    st,
		model:    model,
		narrator: narrator,
		cfg:      cfg,
		loc:      loc,
		tmpl:     tmpl,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/predict", s.handlePredict)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/profile", s.handleProfile)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    ":" + s.cfg.Port,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
