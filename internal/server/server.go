package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"medminder/internal/llm"
	"medminder/internal/metrics"
	"medminder/internal/notify"
	"medminder/internal/store"
	"medminder/internal/wizard"
)

// Options carries the collaborators the HTTP surface exposes.
type Options struct {
	Store    *store.Store
	Wizard   *wizard.Manager
	Gateway  *llm.Gateway
	Notifier *notify.Notifier
	Hub      *notify.Hub
	Metrics  *metrics.Collector
	Logger   *zap.Logger

	EmergencyNumber string
	CaregiverNumber string
	AllowedOrigins  []string
}

// Server is the JSON/HTTP surface consumed by the browser UI.
type Server struct {
	opts   Options
	logger *zap.Logger
	router chi.Router
}

// New builds the router with middleware and all routes registered.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	s := &Server{opts: opts, logger: opts.Logger}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(s.logRequests)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/medications", s.listMedications)
		r.Get("/medications/schedule", s.schedule)
		r.Post("/medications/{id}/status", s.updateDoseStatus)
		r.Post("/medications/info", s.medicationInfo)

		r.Route("/wizard", func(r chi.Router) {
			r.Post("/", s.wizardStart)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", s.wizardGet)
				r.Post("/details", s.wizardDetails)
				r.Post("/time", s.wizardTime)
				r.Post("/back", s.wizardBack)
				r.Post("/photo", s.wizardPhoto)
				r.Post("/capture", s.wizardStartCapture)
				r.Post("/capture/frame", s.wizardCaptureFrame)
				r.Delete("/capture", s.wizardStopCapture)
				r.Post("/identify", s.wizardIdentify)
				r.Post("/submit", s.wizardSubmit)
				r.Delete("/", s.wizardEscape)
			})
		})

		r.Get("/emergency", s.emergencyContacts)
		r.Post("/emergency/alert", s.emergencyAlert)
		r.Get("/notifications/tone", s.notificationTone)
	})

	if opts.Hub != nil {
		r.Get("/ws", opts.Hub.HandleWS)
	}
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics.Handler())
	}

	s.router = r
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("requestId", chimw.GetReqID(r.Context())))
	})
}
