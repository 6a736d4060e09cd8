// Package server is the http façade: it turns portal credentials arriving in
// urls into calendar and statistics responses. Credentials come as base64
// blobs or sealed tokens; calendar routes always answer 200 so subscribing
// clients never drop the feed.
package server

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"

	"github.com/kreta-tools/go-kreta-bridge/internal/core/cache"
	"github.com/kreta-tools/go-kreta-bridge/internal/core/combine"
	"github.com/kreta-tools/go-kreta-bridge/internal/core/model"
	"github.com/kreta-tools/go-kreta-bridge/internal/data/credstore"
	"github.com/kreta-tools/go-kreta-bridge/internal/data/kreta"
	"github.com/kreta-tools/go-kreta-bridge/internal/util"
)

// portalClient is the slice of the portal client the handlers use
type portalClient interface {
	combine.Fetcher
	RefreshIfNeeded(ctx context.Context) error
	AbsencesSinceAnchor(ctx context.Context, anchor, now time.Time) ([]model.Absence, error)
}

// sessionIdleTimeout is how long an unused login session survives before the
// background sweep drops it.
const sessionIdleTimeout = 2 * time.Hour

// Server wires the session cache, the credential sealer and the fiber app
type Server struct {
	app      *fiber.App
	sessions *cache.SessionCache[portalClient]
	sealer   *credstore.Sealer

	// store backs the /my/ default-account routes; nil when no credentials
	// file is configured
	store *credstore.FileStore

	pruneStop chan struct{}
}

// New builds a ready-to-listen server from the configuration
func New(cfg Config) (*Server, error) {
	if err := util.InitializeTimeProvider(cfg.Timezone); err != nil {
		return nil, err
	}

	key, err := credstore.LoadOrCreateKey(cfg.SealKeyPath)
	if err != nil {
		return nil, err
	}
	sealer, err := credstore.NewSealer(key)
	if err != nil {
		return nil, err
	}

	var store *credstore.FileStore
	if cfg.CredentialsFile != "" {
		store, err = credstore.NewFileStore(cfg.CredentialsFile)
		if err != nil {
			return nil, err
		}
	}

	login := func(ctx context.Context, creds *kreta.Credentials) (portalClient, error) {
		return kreta.FullLogin(ctx, creds)
	}
	return newServer(sealer, store, login), nil
}

// newServer is the injectable core of New, shared with the tests
func newServer(sealer *credstore.Sealer, store *credstore.FileStore, login cache.LoginFunc[portalClient]) *Server {
	s := &Server{
		sessions:  cache.NewSessionCache(login),
		sealer:    sealer,
		store:     store,
		pruneStop: make(chan struct{}),
	}

	s.app = fiber.New(fiber.Config{
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		DisableStartupMessage: true,
	})
	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	s.app.Get("/", s.handleLanding)

	s.app.Get("/base64/:blob/timetable.ics", s.calendarHandler(credsFromBlob, s.timetableCalendar))
	s.app.Get("/base64/:blob/combine.ics", s.calendarHandler(credsFromBlob, s.combinedCalendar))
	s.app.Get("/base64/:blob/absences.html", s.statsHandler(credsFromBlob))

	s.app.Get("/k/:token/timetable.ics", s.calendarHandler(s.credsFromToken, s.timetableCalendar))
	s.app.Get("/k/:token/combine.ics", s.calendarHandler(s.credsFromToken, s.combinedCalendar))
	s.app.Get("/k/:token/absences.html", s.statsHandler(s.credsFromToken))

	s.app.Post("/seal", s.handleSeal)

	// default-account routes, served from the watched credentials file so a
	// password change on disk takes effect without a restart
	if s.store != nil {
		s.app.Get("/my/timetable.ics", s.calendarHandler(s.credsFromStore, s.timetableCalendar))
		s.app.Get("/my/combine.ics", s.calendarHandler(s.credsFromStore, s.combinedCalendar))
		s.app.Get("/my/absences.html", s.statsHandler(s.credsFromStore))
	}
}

// Listen serves until Shutdown, pruning idle sessions in the background
func (s *Server) Listen(addr string) error {
	go s.pruneLoop()
	util.LogInfof("listening on %s", addr)
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown() error {
	close(s.pruneStop)
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			util.LogWarnf("closing credentials store: %v", err)
		}
	}
	return s.app.Shutdown()
}

func (s *Server) pruneLoop() {
	ticker := time.NewTicker(15 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sessions.Prune(sessionIdleTimeout)
		case <-s.pruneStop:
			return
		}
	}
}
