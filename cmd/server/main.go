package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	cfgPkg "github.com/xhad/faqgen/pkg/config"
	"github.com/xhad/faqgen/pkg/pipeline"
	"github.com/xhad/faqgen/server"
)

func main() {
	var configPath, addr string
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.StringVar(&addr, "addr", "", "Listen address")
	flag.Parse()

	cfg, err := cfgPkg.LoadConfig(configPath)
	if err != nil {
		logrus.Fatal(err)
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if port := os.Getenv("PORT"); port != "" && addr == "" {
		cfg.Server.Addr = ":" + port
	}

	logger := cfgPkg.NewLogger(cfg.Log, os.Stderr)
	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			logger.WithField("field", e.Field).Error(e.Message)
		}
		os.Exit(1)
	}

	ws := server.NewWSServer(server.Config{
		Password: cfg.Server.Password,
		Logger:   logger,
	}, func(onProgress func(done, total int)) (server.Runner, error) {
		p, err := pipeline.NewFromConfig(cfg, logger, onProgress)
		if err != nil {
			return nil, err
		}
		return p, nil
	})

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           ws.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	logger.WithField("addr", cfg.Server.Addr).Info("starting websocket server")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal(err)
	}
}
