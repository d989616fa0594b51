package main

import (
	"log"

	"github.com/cloudnativeg23/stadium-matching/config"
	_ "github.com/cloudnativeg23/stadium-matching/docs"
	"github.com/cloudnativeg23/stadium-matching/internal/booking"
	"github.com/cloudnativeg23/stadium-matching/internal/mailer"
	"github.com/cloudnativeg23/stadium-matching/internal/matching"
	"github.com/cloudnativeg23/stadium-matching/internal/models"
	"github.com/cloudnativeg23/stadium-matching/pkg/logger"
	"github.com/cloudnativeg23/stadium-matching/routes"
)

// @title Stadium Matching REST API
// @version 1.0
// @description Stadium booking and team matching backend.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
func main() {
	if err := config.Initialize(); err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	cfg := config.GetConfig()
	if err := logger.Init(cfg.App.Env, ""); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	err := config.DB.AutoMigrate(
		&models.User{},
		&models.Stadium{}, &models.StadiumCourt{},
		&models.StadiumAvailableTime{}, &models.StadiumDisable{},
		&models.Order{}, &models.Team{}, &models.TeamMember{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}
	log.Println("AutoMigrate successful")

	var notifier mailer.Notifier = mailer.NoopNotifier{}
	if cfg.Mail.Enabled {
		notifier, err = mailer.NewSESNotifier(
			cfg.Mail.AccessKeyID, cfg.Mail.SecretAccessKey, cfg.Mail.AWSRegion, cfg.Mail.Sender)
		if err != nil {
			log.Fatalf("Failed to build SES notifier: %v", err)
		}
	}

	bookingRepo := booking.NewBookingRepository(config.DB)
	matchClient := matching.NewClient(cfg.Matching.ServiceURL)
	scheduler, err := matching.NewService(config.DB, bookingRepo, matchClient, notifier)
	if err != nil {
		log.Fatalf("Failed to build matching scheduler: %v", err)
	}
	if err := scheduler.RescanPending(); err != nil {
		log.Fatalf("Failed to re-queue pending matching orders: %v", err)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Printf("Scheduler shutdown: %v", err)
		}
	}()

	r := routes.SetupRoutes(config.DB, notifier, scheduler, cfg)

	// Use port from loaded configuration
	log.Printf("Starting server on port %s in %s mode\n", cfg.App.Port, cfg.App.Env)
	if err := r.Run(":" + cfg.App.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
