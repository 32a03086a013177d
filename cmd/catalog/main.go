package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iyhunko/catalogo-prodotti/internal/catalog"
	"github.com/iyhunko/catalogo-prodotti/internal/config"
	"github.com/iyhunko/catalogo-prodotti/internal/gateway"
	"github.com/iyhunko/catalogo-prodotti/internal/logger"
	sqspkg "github.com/iyhunko/catalogo-prodotti/internal/sqs"
	"github.com/iyhunko/catalogo-prodotti/internal/terminal"
	"golang.org/x/sync/errgroup"
)

func main() {
	conf, err := config.LoadClientFromEnv()
	handleErr("loading config", err)

	// stdout belongs to the catalog view
	logger.InitJSONLogger(os.Stderr, logger.ParseLevel(conf.LogLevel))

	signalCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(signalCtx)
	defer cancel()

	term := terminal.New(os.Stdin, os.Stdout)
	view := catalog.New(gateway.New(conf.API.BaseURL, conf.API.Resource), term)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return view.Run(gctx)
	})

	// Refetch whenever another client changes the catalog
	if conf.AWS.Enabled() {
		sqsClient, err := sqspkg.NewClient(ctx, conf.AWS.Region, conf.AWS.Endpoint)
		handleErr("creating SQS client", err)

		consumer := sqspkg.NewConsumer(sqsClient, conf.AWS.SQSQueueURL, func(_ context.Context, msg sqspkg.ProductMessage) error {
			slog.Debug("catalog changed remotely", slog.String("action", msg.Action), slog.Int64("product_id", msg.ProductID))
			return view.Reload()
		})
		g.Go(func() error {
			return consumer.Start(gctx)
		})
	}

	term.Printf("%s - scrivi help per i comandi\n", catalog.Title)
	shellDone := make(chan error, 1)
	go func() {
		shellDone <- terminal.NewShell(view, term).Run(gctx)
	}()

	// the shell may be blocked reading stdin when a signal arrives
	select {
	case err := <-shellDone:
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("shell stopped", slog.Any("err", err))
		}
	case <-gctx.Done():
	}

	// a delete confirmation may hold the view loop on stdin
	term.Stop()
	cancel()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("catalog stopped", slog.Any("err", err))
	}
}

func handleErr(msg string, err error) {
	if err != nil {
		log.Fatalf("error while %s: %v", msg, err)
	}
}
