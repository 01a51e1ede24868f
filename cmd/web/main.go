package main

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"microblog/cmd/web/internal/cache"
	"microblog/cmd/web/internal/producer"
	"microblog/cmd/web/internal/repo"
	"microblog/cmd/web/internal/storage"
	"microblog/cmd/web/internal/web"
	"microblog/internal/logger"
	"microblog/internal/rabbitmq"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DSN           string `yaml:"dsn"`
	Host          string `yaml:"host"`
	HostMetrics   string `yaml:"host_metrics"`
	MigrateDir    string `yaml:"migrate_dir"`
	Driver        string `yaml:"driver"`
	LogLevel      int    `yaml:"loglevel"`
	ViewsDir      string `yaml:"views_dir"`
	MediaDir      string `yaml:"media_dir"`
	AddrCache     string `yaml:"addr_cache"`
	PasswordCache string `yaml:"password_cache"`
	DBCacheList   int    `yaml:"db_cache_list"`
	HostRBMQ      string `yaml:"host_rbmq"`
	PortRBMQ      string `yaml:"port_rbmq"`
	UserNameRBMQ  string `yaml:"username_rbmq"`
	PasswordRBMQ  string `yaml:"password_rbmq"`
	VHostRBMQ     string `yaml:"vhost_rbmq"`
}

func main() {

	yamlConfig, err := os.ReadFile("./config.yaml")
	if err != nil {
		log.Fatal(err)
	}

	var cfg Config
	err = yaml.Unmarshal(yamlConfig, &cfg)
	if err != nil {
		log.Fatal(err)
	}

	rabbit, err := rabbitmq.NewRabbitMQClient(cfg.HostRBMQ, cfg.PortRBMQ, cfg.UserNameRBMQ, cfg.PasswordRBMQ, cfg.VHostRBMQ)
	if err != nil {
		log.Fatal(err)
	}
	defer rabbit.Close()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.Level(cfg.LogLevel),
	}))

	ctxParent := logger.NewContext(context.Background(), log)

	ctx, cancel := signal.NotifyContext(ctxParent, os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGABRT, syscall.SIGTERM)
	defer cancel()
	go forceShutdown(ctx)

	producer := producer.NewProducer(rabbit.Ch)

	migrator, err := migrate.New(cfg.MigrateDir, cfg.DSN)
	if err != nil {
		log.Error(err.Error())
	}

	if err := migrator.Up(); err != nil && err != migrate.ErrNoChange {
		log.Error(err.Error())
	}

	rowSQLConn, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		log.Error(err.Error())
	}

	repo := repo.NewRepository(rowSQLConn)

	redisClientList := cache.NewRedisClient(cfg.AddrCache, cfg.PasswordCache, cfg.DBCacheList)

	if err := redisClientList.Connect(ctx); err != nil {
		log.Error("RedisTweetList - not connected")
	} else {
		log.Warn("RedisTweetList - connected")
	}

	defer redisClientList.Close()

	handlers := web.Handlers{
		Database: repo,
		CacheDB:  redisClientList,
		Producer: producer,
		Images:   storage.NewFileStorage(cfg.MediaDir),
		Sessions: session.New(),
	}

	engine := html.New(cfg.ViewsDir, ".html")

	app := fiber.New(fiber.Config{
		AppName: "Microblog",
		Views:   engine,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(web.MetricsMiddleware())
	app.Use(func(c *fiber.Ctx) error {
		c.SetUserContext(logger.NewContext(c.UserContext(), log))
		return c.Next()
	})

	web.SetupRoutes(app, handlers, cfg.MediaDir)

	StartMetricsServer(cfg.HostMetrics)

	log.Warn("HTTP server - started")
	go func() {
		if err := app.Listen(cfg.Host); err != nil {
			log.Error(err.Error())
		}
	}()

	<-ctx.Done()
	if err := app.Shutdown(); err != nil {
		log.Error(err.Error())
	}
}

func StartMetricsServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		log.Printf("Starting metrics server on %s", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Fatalf("Failed to start metrics server: %v", err)
		}
	}()
}

func forceShutdown(ctx context.Context) {
	log := logger.FromContext(ctx)
	const shutdownDelay = 15 * time.Second

	<-ctx.Done()
	time.Sleep(shutdownDelay)

	log.Error("failed to graceful shutdown")
	os.Exit(1)
}
