package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"
	config "github.com/thegymcollege/reelflow/configs"
	"github.com/thegymcollege/reelflow/internal/api/handlers"
	"github.com/thegymcollege/reelflow/internal/api/middleware"
	job "github.com/thegymcollege/reelflow/internal/jobs"
	"github.com/thegymcollege/reelflow/internal/queue"
	"github.com/thegymcollege/reelflow/internal/repository"
	"github.com/thegymcollege/reelflow/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Api-Key, X-Owner-Id",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	scheduleRepo := repository.NewScheduleRepository(db)
	socialAccountRepo := repository.NewSocialAccountRepository(db)
	historyRepo := repository.NewPostingHistoryRepository(db)

	r2Service := service.NewR2Service(*cfg)
	assetService := service.NewAssetService(r2Service)
	slotService := service.NewSlotService(scheduleRepo)
	scheduleService := service.NewScheduleService(scheduleRepo, historyRepo, slotService)
	accountService := service.NewAccountService(*cfg, socialAccountRepo)
	instagramService := service.NewInstagramService()
	facebookService := service.NewFacebookService()
	tiktokService := service.NewTiktokService(*cfg, socialAccountRepo)
	youtubeService := service.NewYoutubeService(*cfg, socialAccountRepo)
	publisherService := service.NewPublisherService(*cfg, scheduleRepo, socialAccountRepo, historyRepo,
		instagramService, facebookService, tiktokService, youtubeService)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	schedule := handlers.NewScheduleHandler(scheduleService)
	api.Post("/schedules/create", schedule.CreateSchedule)
	api.Get("/schedules", schedule.ListSchedules)
	api.Post("/schedules/remove", schedule.RemoveSchedule)
	api.Post("/schedules/retry", schedule.RetrySchedule)
	api.Get("/schedules/history", schedule.ScheduleHistory)

	account := handlers.NewAccountHandler(accountService)
	api.Post("/accounts/connect", account.ConnectAccount)
	api.Post("/accounts/disconnect", account.DisconnectAccount)

	session := handlers.NewSessionHandler(*cfg)
	api.Post("/session/new", session.CreateSession)

	slots := handlers.NewSlotHandler(slotService)
	api.Get("/slots/next", slots.NextSlot)
	api.Get("/slots/matrix", slots.SlotMatrix)

	assets := handlers.NewAssetsHandler(assetService)
	api.Post("/assets/upload", assets.UploadAssets)

	// cron jobs
	tickerJob := job.NewPublishTickerJob(scheduleRepo, client)
	refreshTokenJob := job.NewTokenRefreshJob(socialAccountRepo, youtubeService, tiktokService)

	// queue
	queueW := queue.NewQueue(scheduleRepo, publisherService)

	// Recover anything a previous process left in publishing before
	// the first tick can claim new work.
	tickerJob.Sweep()

	c := cron.New()
	c.AddFunc("@every 00h01m00s", tickerJob.Tick)
	c.AddFunc("@every 00h10m00s", tickerJob.Sweep)
	c.AddFunc("@every 00h10m00s", refreshTokenJob.RefreshTokens)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypePublishSchedule, queueW.HandlePublishScheduleTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
