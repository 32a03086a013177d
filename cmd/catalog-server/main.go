package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/catalogo-prodotti/internal/config"
	httpAPI "github.com/iyhunko/catalogo-prodotti/internal/http"
	"github.com/iyhunko/catalogo-prodotti/internal/http/controller"
	"github.com/iyhunko/catalogo-prodotti/internal/logger"
	"github.com/iyhunko/catalogo-prodotti/internal/metrics"
	"github.com/iyhunko/catalogo-prodotti/internal/repository"
	"github.com/iyhunko/catalogo-prodotti/internal/repository/memory"
	"github.com/iyhunko/catalogo-prodotti/internal/repository/sql"
	"github.com/iyhunko/catalogo-prodotti/internal/service"
	sqspkg "github.com/iyhunko/catalogo-prodotti/internal/sqs"
)

const shutdownTimeout = 10 * time.Second

func main() {
	conf, err := config.LoadServerFromEnv()
	handleErr("loading config", err)

	logger.InitJSONLogger(os.Stdout, logger.ParseLevel(conf.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var productRepository repository.ProductRepository
	switch conf.StoreDriver {
	case config.StoreDriverPostgres:
		db, err := sql.StartDB(ctx, conf.Database, sql.DefaultMigrationsURL)
		handleErr("starting database", err)
		defer db.Close()
		productRepository = sql.NewProductRepository(db)
	default:
		productRepository = memory.NewProductRepository()
	}
	slog.Info("store ready", slog.String("driver", conf.StoreDriver))

	// Change notifications are optional
	var publisher service.Publisher
	if conf.AWS.Enabled() {
		sqsClient, err := sqspkg.NewClient(ctx, conf.AWS.Region, conf.AWS.Endpoint)
		handleErr("creating SQS client", err)
		publisher = sqspkg.NewPublisher(sqsClient, conf.AWS.SQSQueueURL)
	}
	productService := service.NewProductService(productRepository, publisher)

	metrics.StartMetricsServer(conf.MetricsServer.Port)

	if !conf.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpAPI.InitRouter(gin.New(), controller.New(), controller.NewProductController(productService))
	httpServer := &http.Server{
		Addr:              ":" + conf.HTTPServer.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("HTTP server starting", slog.String("port", conf.HTTPServer.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			handleErr("listening to HTTP requests", err)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to stop HTTP server", slog.Any("err", err))
	}
}

func handleErr(msg string, err error) {
	if err != nil {
		log.Fatalf("error while %s: %v", msg, err)
	}
}
