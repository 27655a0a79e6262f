package server

import (
	"backend-geoattend/internal/config"
	"backend-geoattend/internal/ledger"
	"backend-geoattend/internal/stream"
	"backend-geoattend/internal/verification"
	"backend-geoattend/internal/zone"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Zones  *zone.Registry
	Ledger *ledger.Store
	Stream *stream.Hub
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Zones:  zone.Load(cfg.ZonesFile),
		Ledger: ledger.NewStore(db),
		Stream: stream.NewHub(redisClient),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	svc := verification.NewService(s.Ledger, s.Zones, s.Stream)
	verification.RegisterRoutes(s.App, svc, s.Ledger)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
