package webserver

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/cors"

	"f1dashboard/log"
	"f1dashboard/pkg/dashboard"
	"f1dashboard/pkg/livetiming"
	"f1dashboard/pkg/pubsub"
)

//go:embed templates/*.html
var templatesFS embed.FS

type Pages interface {
	CurrentSeason() int
	Season(ctx context.Context, season int) (dashboard.SeasonPage, error)
	Round(ctx context.Context, season, round int) (dashboard.RoundPage, error)
	Qualifying(ctx context.Context, season, round int) (dashboard.QualifyingPage, error)
	Race(ctx context.Context, season, round int) (dashboard.RacePage, error)
	Stats(ctx context.Context, season, round int) (dashboard.StatsPage, error)
}

// LiveSource exposes the last board of the live feed.
type LiveSource interface {
	Board() (livetiming.Board, bool)
}

type Server struct {
	r           *mux.Router
	pages       Pages
	live        LiveSource
	pubsubMgr   *pubsub.PubSub[string]
	tmpl        *template.Template
	broadcaster *Broadcaster
}

func NewServer(pages Pages, live LiveSource, pubsubMgr *pubsub.PubSub[string]) (*Server, error) {
	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "parsing templates")
	}
	s := &Server{
		r:           mux.NewRouter(),
		pages:       pages,
		live:        live,
		pubsubMgr:   pubsubMgr,
		tmpl:        tmpl,
		broadcaster: NewBroadcaster(pubsubMgr.Subscribe(livetiming.PubSubSnapshotTopic)),
	}
	s.routes()
	go s.broadcaster.Run()
	return s, nil
}

func (s *Server) routes() {
	s.r.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)

	s.r.HandleFunc("/", s.currentSeasonPage).Methods(http.MethodGet)
	s.r.HandleFunc("/seasons", s.seasonsPage).Methods(http.MethodGet)
	s.r.HandleFunc("/seasons/{season:[0-9]{4}}", s.seasonPage).Methods(http.MethodGet)
	s.r.HandleFunc("/seasons/{season:[0-9]{4}}/{round:[0-9]+}", s.roundPage).Methods(http.MethodGet)
	s.r.HandleFunc("/seasons/{season:[0-9]{4}}/{round:[0-9]+}/quali", s.qualifyingPage).Methods(http.MethodGet)
	s.r.HandleFunc("/{season:[0-9]{4}}/{round:[0-9]+}/race", s.racePage).Methods(http.MethodGet)
	s.r.HandleFunc("/{season:[0-9]{4}}/{round:[0-9]+}/race/stats", s.statsPage).Methods(http.MethodGet)

	s.r.HandleFunc("/live", s.livePage).Methods(http.MethodGet)
	s.r.HandleFunc("/live/events", s.liveEvents).Methods(http.MethodGet)
	s.r.HandleFunc("/live/ws", s.broadcaster.Handler())

	api := s.r.PathPrefix("/api").Subrouter()
	api.Use(newCORS().Handler)
	api.HandleFunc("/seasons/{season:[0-9]{4}}", s.apiSeason).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/seasons/{season:[0-9]{4}}/{round:[0-9]+}", s.apiRound).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/seasons/{season:[0-9]{4}}/{round:[0-9]+}/quali", s.apiQualifying).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/seasons/{season:[0-9]{4}}/{round:[0-9]+}/race", s.apiRace).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/seasons/{season:[0-9]{4}}/{round:[0-9]+}/stats", s.apiStats).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/live", s.apiLive).Methods(http.MethodGet, http.MethodOptions)
}

func (s *Server) Handler() http.Handler {
	return s.r
}

// Serve listens on addr until ctx is done and then shuts the server down.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      s.r,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("webserver listening", log.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("webserver shutting down")
	s.broadcaster.Close()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func newCORS() *cors.Cors {
	// the JSON API is public and read only
	return cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
		},
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowedHeaders: []string{"*"},
		MaxAge:         7200,
	})
}
