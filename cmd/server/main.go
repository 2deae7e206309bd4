package main

import (
	"fmt"

	"portfoliodash/internal/config"
	"portfoliodash/internal/database"
	"portfoliodash/internal/handlers"
	"portfoliodash/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(lvl)
	} else {
		logger.Warnf("unknown LOG_LEVEL %q, using info", cfg.LogLevel)
	}

	var src service.Source
	if cfg.PostgresURL != "" {
		db, err := database.Open(cfg.PostgresURL)
		if err != nil {
			logger.Fatalf("db connect failed: %v", err)
		}
		defer db.Close()
		src = service.DatabaseSource(database.New(db, logger))
		logger.Info("serving holdings from postgres")
	} else {
		src = service.FileSource(cfg.PortfolioFile)
		logger.Infof("serving holdings from %s", cfg.PortfolioFile)
	}

	cache := service.NewSourceCache(cfg.UploadTTL, logger)
	dash := service.NewDashboard(cache, cfg.MappingsDir, logger)
	h := handlers.NewHandler(dash, cache, src, cfg.MaxUploadBytes, logger).WithDefaultLang(cfg.DefaultLang)

	rg := gin.Default()
	h.Register(rg)

	logger.Infof("server starting on :%s", cfg.Port)
	if err := rg.Run(fmt.Sprintf(":%s", cfg.Port)); err != nil {
		logger.Fatalf("server stopped: %v", err)
	}
}
