package server

import (
	"log/slog"
	"net/http"
	"sync"

	"live-trivia/internal/config"
	"live-trivia/internal/game"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Server struct {
	games  *game.Registry
	db     *gorm.DB
	ws     *wsHub
	cfg    config.Config
	logger *slog.Logger

	journalMu sync.Mutex
	journal   map[string]uint
}

func New(conn *gorm.DB, cfg config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	defaults := game.Settings{
		LivesPerPlayer: cfg.DefaultLives,
		TotalQuestions: cfg.DefaultTotalQuestions,
	}
	registerValidators()
	return &Server{
		games: game.NewRegistry(game.Options{
			Logger:   logger.With("component", "registry"),
			Defaults: &defaults,
		}),
		db:      conn,
		ws:      newWSHub(logger.With("component", "ws")),
		cfg:     cfg,
		logger:  logger,
		journal: make(map[string]uint),
	}
}

func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(s.corsConfig()))

	r.GET("/healthz", s.handleHealth)
	r.GET("/api/sessions", s.handleListSessions)
	r.GET("/api/sessions/:code", s.handleGetSession)
	r.GET("/ws", s.handleWebsocket)
	return r
}

func (s *Server) corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost}
	if s.cfg.ClientURL == "" || s.cfg.ClientURL == "*" {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = []string{s.cfg.ClientURL}
	return cfg
}
