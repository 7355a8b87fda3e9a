package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	httpapi "github.com/citysense/weather-etl/internal/api/http"
	"github.com/citysense/weather-etl/internal/cities"
	"github.com/citysense/weather-etl/internal/config"
	"github.com/citysense/weather-etl/internal/etl"
	"github.com/citysense/weather-etl/internal/normalize"
	"github.com/citysense/weather-etl/internal/provider"
	"github.com/citysense/weather-etl/internal/scheduler"
	"github.com/citysense/weather-etl/internal/store"
	"github.com/citysense/weather-etl/internal/timezone"
)

func main() {
	serve := flag.Bool("serve", false, "run on a schedule and expose run status over HTTP")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.WithError(err).Info("no .env file loaded")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := initLogger(cfg.LogLevel); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	cityList, err := cities.Load(cfg.CityFile)
	if err != nil {
		log.Fatalf("failed to load city reference data: %v", err)
	}

	resolver, err := timezone.NewFinderResolver()
	if err != nil {
		log.Fatalf("failed to init timezone resolver: %v", err)
	}
	converter, err := timezone.NewConverter(resolver, cfg.ReferenceTZ)
	if err != nil {
		log.Fatalf("failed to init timezone converter: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Opened once before any load, closed once after all of them.
	pool, err := store.Connect(ctx, cfg.DSN())
	if err != nil {
		log.Fatalf("failed to open store connection: %v", err)
	}
	defer pool.Close()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	client := provider.NewClient(httpClient, cfg.OpenWeatherAPIKey, cfg.RequestInterval)

	service := etl.NewService(
		etl.NewFetcher(client),
		normalize.New(converter),
		store.NewPostgres(pool),
		store.NewFallback(cfg.FallbackDir),
	)

	if *serve {
		runServer(ctx, cfg, service, cityList)
		return
	}

	summary, err := service.Run(ctx, cityList)
	if err != nil {
		log.Fatalf("run aborted: %v", err)
	}
	if summary.Failed() {
		log.WithFields(log.Fields{
			"weather_sink":   summary.WeatherSink,
			"pollution_sink": summary.PollutionSink,
		}).Error("run completed with failures")
		pool.Close()
		os.Exit(1)
	}
}

// runServer starts the periodic scheduler and the status API, then blocks
// until a termination signal arrives.
func runServer(ctx context.Context, cfg *config.AppConfig, service *etl.Service, cityList []cities.City) {
	runs := store.NewRunLog()

	sched := scheduler.New(service, runs, cityList, cfg.FetchInterval)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-etl",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-etl",
		})
	})

	httpapi.RegisterRoutes(app, runs)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.WithError(err).Error("fiber server stopped")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.WithError(err).Error("error during shutdown")
	}
}

// initLogger parses the configured level and applies it to logrus.
func initLogger(level string) error {
	parsed, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetFormatter(&log.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})
	log.SetLevel(parsed)
	return nil
}
