package main

import (
	"os"
	"sync"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"nswproperty/config"
	"nswproperty/internal/analytics"
	"nswproperty/internal/api"
	"nswproperty/internal/database"
	"nswproperty/internal/geo"
	"nswproperty/internal/ingest"
	"nswproperty/internal/processor"
	"nswproperty/internal/queue"
	"nswproperty/internal/scheduler"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using environment")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	logger.Infof("Using database at: %s", cfg.Database.Path)
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()
	db.SetChunkSize(cfg.Database.ChunkSize)

	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	gormDB, err := database.OpenGorm(cfg.Database.Path)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open gorm connection")
	}

	saleQueue := queue.NewSaleQueue(cfg.BatchProcessing.QueueSize, logger)
	batchProcessor := processor.NewBatchProcessor(gormDB, saleQueue, cfg, logger)
	batchProcessor.Start()
	defer batchProcessor.Stop()

	ingester := ingest.NewIngester(saleQueue, cfg, logger)
	analyzer := analytics.NewAnalyzer(db, cfg.Analysis.StartYear, logger)
	stations := geo.NewStationIndex(cfg.Stations.CSVPath, logger)

	jobMutex := &sync.Mutex{}

	if cfg.Scheduler.Enabled {
		sched := scheduler.NewScheduler(ingester, analyzer, jobMutex, cfg.Scheduler.Hour, logger)
		sched.Start()
		defer sched.Stop()
	}

	handler := api.NewHandler(db, analyzer, ingester, stations, jobMutex, logger)

	router := gin.Default()
	router.Use(cors.Default())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api.SetupRoutes(router, handler)

	logger.Infof("Starting server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
