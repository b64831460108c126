package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/pevans/newsgrab/collector"
	"github.com/pevans/newsgrab/config"
	"github.com/pevans/newsgrab/web"
	"go.uber.org/zap"
)

func handleServe(cfg *config.Config, log *zap.Logger) {
	for _, dir := range []string{cfg.Paths.Templates, cfg.Paths.Static} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatal("failed to create directory", zap.String("dir", dir), zap.Error(err))
		}
	}

	store := openStore(cfg)
	defer store.Close()

	coll := collector.New(newFetcher(cfg, log), store, log)

	// Debug mode is meant for local use only.
	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	server := web.NewServer(store, coll, web.Options{
		TemplatesDir: cfg.Paths.Templates,
		StaticDir:    cfg.Paths.Static,
		Logger:       log,
	})

	router, err := server.SetupRouter()
	if err != nil {
		log.Fatal("failed to set up router", zap.Error(err))
	}

	log.Info("starting newsgrab",
		zap.String("addr", cfg.Server.Addr),
		zap.String("dsn", cfg.Storage.DSN),
		zap.Bool("debug", cfg.Server.Debug),
	)

	if err := router.Run(cfg.Server.Addr); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}
