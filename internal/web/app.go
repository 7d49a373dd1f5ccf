package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/teris-io/shortid"

	"github.com/nroberts/go-topicrooms/internal/config"
	"github.com/nroberts/go-topicrooms/internal/database"
	"github.com/nroberts/go-topicrooms/internal/stats"
)

const (
	metricSessionsStarted = "SessionsStarted"
	metricRoomsCreated    = "RoomsCreated"
	metricMessagesPosted  = "MessagesPosted"
)

type TopicRoomsApp struct {
	log        *log.Logger
	db         database.Repository
	mux        *http.Server
	renderer   Renderer
	stats      stats.StatsProvider
	signingKey []byte

	// overridable in tests
	generateShortId func() (string, error)
}

func NewTopicRoomsApp(mux *http.ServeMux, logger *log.Logger, db database.Repository,
	renderer Renderer, statsProvider stats.StatsProvider, cfg *config.Config) *TopicRoomsApp {
	s := &TopicRoomsApp{
		log:             logger,
		db:              db,
		renderer:        renderer,
		stats:           statsProvider,
		signingKey:      cfg.SigningKey,
		generateShortId: shortid.Generate,
	}

	mux.HandleFunc("GET /{$}", s.home)
	mux.HandleFunc("GET /login/{$}", s.loginPage)
	mux.HandleFunc("POST /login/{$}", s.login)
	mux.HandleFunc("/logout/{$}", s.requireLogin(s.logout))
	mux.HandleFunc("GET /register/{$}", s.registerPage)
	mux.HandleFunc("POST /register/{$}", s.register)
	mux.HandleFunc("GET /profile/{userId}/{$}", s.userProfile)
	mux.HandleFunc("GET /room/{roomId}/{$}", s.room)
	mux.HandleFunc("POST /room/{roomId}/{$}", s.requireLogin(s.createMessage))
	mux.HandleFunc("GET /create-room/{$}", s.requireLogin(s.createRoomForm))
	mux.HandleFunc("POST /create-room/{$}", s.requireLogin(s.createRoom))
	mux.HandleFunc("GET /update-room/{roomId}/{$}", s.requireLogin(s.updateRoomForm))
	mux.HandleFunc("POST /update-room/{roomId}/{$}", s.requireLogin(s.updateRoom))
	mux.HandleFunc("/delete-room/{roomId}/{$}", s.requireLogin(s.deleteRoom))
	mux.HandleFunc("/delete-message/{messageId}/{$}", s.requireLogin(s.deleteMessage))
	mux.HandleFunc("GET /update-user/{$}", s.requireLogin(s.updateUserForm))
	mux.HandleFunc("POST /update-user/{$}", s.requireLogin(s.updateUser))
	mux.HandleFunc("GET /topics/{$}", s.topicsPage)
	mux.HandleFunc("GET /activity/{$}", s.activityPage)
	mux.HandleFunc("GET /healthz", s.healthCheck)

	if statsProvider != nil {
		statsProvider.RegisterMetric(metricSessionsStarted)
		statsProvider.RegisterMetric(metricRoomsCreated)
		statsProvider.RegisterMetric(metricMessagesPosted)
	}

	h := handlers.CombinedLoggingHandler(os.Stdout, s.sessionMiddleware(mux))
	h = s.errorHandler(h)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	s.mux = srv
	return s
}

func (s *TopicRoomsApp) Start() error {
	s.log.Printf("starting server on %s\n", s.mux.Addr)
	return s.mux.ListenAndServe()
}

func (s *TopicRoomsApp) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}

func (s *TopicRoomsApp) incrStat(name string) {
	if s.stats != nil {
		s.stats.Incr(name)
	}
}
